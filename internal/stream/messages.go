// Package stream maintains the persistent feed connection and decodes
// the JSON message envelope it delivers.
package stream

import (
	"encoding/json"
	"fmt"
)

// Message type discriminators carried in the envelope. Anything else is
// forward-compatible noise and is ignored.
const (
	TypeQuotes   = "quotes"
	TypeEquityTS = "equity_ts"
	TypeTrade    = "trade" // legacy alias for equity_ts
	TypeOptionTS = "option_ts"
)

// Message is one decoded feed message. Exactly one of Quote, Equity,
// Option is set for the known types; all are nil for ignored types.
type Message struct {
	Type     string
	Provider string
	Symbol   string

	Quote  *QuoteData
	Equity *EquityData
	Option *OptionData

	// Side fields carried at the envelope level (quotes only).
	Side       string
	SideSource string
}

// QuoteData is a best-effort inside-quote update. Some feeds echo
// trade-like last/size fields here as well.
type QuoteData struct {
	Symbol    string   `json:"symbol"`
	Last      *float64 `json:"last"`
	Bid       *float64 `json:"bid"`
	Ask       *float64 `json:"ask"`
	Size      *int64   `json:"size"`
	Volume    *int64   `json:"volume"`
	TradeTime *int64   `json:"trade_time"`
	Time      string   `json:"time"`
}

// BookLevels is the optional bid/ask context attached to a print.
type BookLevels struct {
	Bid *float64 `json:"bid"`
	Ask *float64 `json:"ask"`
	Mid *float64 `json:"mid"`
}

// EquityData is one equity trade print. Feeds disagree on the quantity
// field name, so all aliases are accepted.
type EquityData struct {
	Time       string      `json:"time"`
	Price      *float64    `json:"price"`
	Last       *float64    `json:"last"`
	Volume     *int64      `json:"volume"`
	Size       *int64      `json:"size"`
	Qty        *int64      `json:"qty"`
	Quantity   *int64      `json:"quantity"`
	Side       string      `json:"side"`
	SideSource string      `json:"side_src"`
	Bid        *float64    `json:"bid"`
	Ask        *float64    `json:"ask"`
	Book       *BookLevels `json:"book"`
}

// PriceQty resolves the price and quantity across field aliases.
func (d *EquityData) PriceQty() (float64, int64) {
	var price float64
	if d.Price != nil {
		price = *d.Price
	} else if d.Last != nil {
		price = *d.Last
	}

	var qty int64
	switch {
	case d.Volume != nil:
		qty = *d.Volume
	case d.Size != nil:
		qty = *d.Size
	case d.Qty != nil:
		qty = *d.Qty
	case d.Quantity != nil:
		qty = *d.Quantity
	}
	return price, qty
}

// OptionLeg is the contract descriptor some feeds attach to a print,
// used as fallback when the envelope symbol cannot be decoded.
type OptionLeg struct {
	Expiry string  `json:"expiry"`
	Strike float64 `json:"strike"`
	Right  string  `json:"right"`
}

// OptionData is one option trade print.
type OptionData struct {
	ID         string      `json:"id"`
	TS         int64       `json:"ts"`
	Option     *OptionLeg  `json:"option"`
	Qty        int64       `json:"qty"`
	Price      float64     `json:"price"`
	Side       string      `json:"side"`
	SideSource string      `json:"side_src"`
	OI         *int64      `json:"oi"`
	PriorVol   *int64      `json:"priorVol"`
	Book       *BookLevels `json:"book"`
}

// envelope is the raw wire shape before payload-specific decoding.
type envelope struct {
	Type     string          `json:"type"`
	Provider string          `json:"provider"`
	Symbol   string          `json:"symbol"`
	Data     json.RawMessage `json:"data"`
	Side     string          `json:"side"`
	SideSrc  string          `json:"side_src"`
}

// Decode parses a raw feed message. Unknown types decode into a Message
// with only Type/Provider set so the caller can count and skip them;
// malformed JSON is an error.
func Decode(raw []byte) (*Message, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}

	msg := &Message{
		Type:       env.Type,
		Provider:   env.Provider,
		Symbol:     env.Symbol,
		Side:       env.Side,
		SideSource: env.SideSrc,
	}

	switch env.Type {
	case TypeQuotes:
		var q QuoteData
		if err := json.Unmarshal(env.Data, &q); err != nil {
			return nil, fmt.Errorf("decode quotes payload: %w", err)
		}
		msg.Quote = &q
		if msg.Symbol == "" {
			msg.Symbol = q.Symbol
		}
	case TypeEquityTS, TypeTrade:
		var d EquityData
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return nil, fmt.Errorf("decode equity payload: %w", err)
		}
		msg.Equity = &d
	case TypeOptionTS:
		var d OptionData
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return nil, fmt.Errorf("decode option payload: %w", err)
		}
		msg.Option = &d
	}

	return msg, nil
}
