package domain

import "github.com/shopspring/decimal"

// Right identifies a call or put contract.
type Right string

const (
	RightCall Right = "C"
	RightPut  Right = "P"
)

// IsValid checks if the right is a valid value.
func (r Right) IsValid() bool {
	return r == RightCall || r == RightPut
}

// Contract is a structured option contract descriptor decoded from a
// compact OCC-style identifier.
type Contract struct {
	Root   string          // underlying ticker, 1-6 letters
	Expiry string          // expiry date, YYYY-MM-DD
	Right  Right           // call or put
	Strike decimal.Decimal // exact strike, 8-digit fixed point / 1000
}
