package domain

// Action is the inferred open/close lean of an option print.
// Inferred from quantity versus open interest and day volume; best effort.
type Action string

const (
	ActionNone         Action = ""
	ActionBuyToOpen    Action = "BTO"
	ActionSellToOpen   Action = "STO"
	ActionBuyToClose   Action = "BTC"
	ActionSellToClose  Action = "STC"
	ActionOpenUnsided  Action = "OPEN?"
	ActionCloseUnsided Action = "CLOSE?"
)

// ActionConfidence grades how strongly the inputs support the action lean.
type ActionConfidence string

const (
	ConfidenceNone   ActionConfidence = ""
	ConfidenceHigh   ActionConfidence = "high"
	ConfidenceMedium ActionConfidence = "medium"
	ConfidenceLow    ActionConfidence = "low"
)
