package domain

// BookSnapshot is the most recently observed inside bid/ask for a key.
// Last write wins; no history is kept. Either side may be unknown.
type BookSnapshot struct {
	Bid *float64
	Ask *float64
}

// Complete reports whether both sides of the book are known.
func (b BookSnapshot) Complete() bool {
	return b.Bid != nil && b.Ask != nil
}
