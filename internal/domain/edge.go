package domain

// Edge marks a print that landed at the inside bid or ask.
// The zero value means no classification was possible; a print between
// the quotes is deliberately left unlabelled rather than called "mid".
type Edge string

const (
	EdgeNone Edge = ""
	EdgeBid  Edge = "BID"
	EdgeAsk  Edge = "ASK"
)

// String returns the string representation of Edge.
func (e Edge) String() string {
	return string(e)
}
