package domain

// Side represents the inferred aggressor side of a trade print.
// It is a best-effort heuristic, never ground truth.
type Side string

const (
	SideBuy     Side = "BUY"
	SideSell    Side = "SELL"
	SideUnknown Side = "UNKNOWN"
)

// String returns the string representation of Side.
func (s Side) String() string {
	return string(s)
}

// IsValid checks if the side is a valid value.
func (s Side) IsValid() bool {
	return s == SideBuy || s == SideSell || s == SideUnknown
}

// SideSource records which evidence source produced a side decision.
type SideSource string

const (
	// SideSourceMid marks a side carried on the upstream message,
	// understood to come from a bid/ask-midpoint comparison done upstream.
	SideSourceMid SideSource = "MID"
	// SideSourceTick marks a side inferred from the cached book midpoint.
	SideSourceTick SideSource = "TICK"
	// SideSourceUptick marks a side inferred from the previous trade price.
	SideSourceUptick SideSource = "UPTICK"
	// SideSourceNone marks an unresolved side.
	SideSourceNone SideSource = "NONE"
)

// String returns the string representation of SideSource.
func (s SideSource) String() string {
	return string(s)
}

// IsValid checks if the side source is a valid value.
func (s SideSource) IsValid() bool {
	switch s {
	case SideSourceMid, SideSourceTick, SideSourceUptick, SideSourceNone:
		return true
	}
	return false
}
