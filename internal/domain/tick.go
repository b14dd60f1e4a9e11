package domain

// TickEvent is one observed trade or trade-like quote update, after
// classification. Events with non-positive price or quantity never
// become TickEvents.
type TickEvent struct {
	ID         string     // per-connection sequence id
	Key        string     // tracking key: underlying symbol or option root
	Timestamp  int64      // epoch milliseconds, event time
	Price      float64    // trade price, > 0
	Quantity   int64      // shares or contracts, > 0
	Notional   float64    // price * quantity * contract multiplier
	Side       Side       // inferred aggressor side
	SideSource SideSource // provenance of the side decision
	Edge       Edge       // at-bid / at-ask label, EdgeNone when unknown
	Provider   string     // data source tag carried on the message
	RawTime    string     // provider timestamp string when available

	// Option-only fields; nil/zero for equity prints.
	Contract     *Contract        // decoded contract descriptor
	OpenInterest *int64           // open interest, when the feed carries it
	PriorVolume  *int64           // prior day volume, when the feed carries it
	Action       Action           // open/close lean
	ActionConf   ActionConfidence // confidence of the lean
}
