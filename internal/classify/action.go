package classify

import "tickflash/internal/domain"

// closeLeanRatio: day volume approaching open interest suggests traders
// are cycling existing positions rather than opening new ones.
const closeLeanRatio = 0.8

// Action infers an open/close lean for an option print from its
// quantity versus open interest and prior day volume.
//
// A print larger than OI plus day volume cannot be pure position
// closing, so it leans open; day volume near OI leans close. With a
// resolved side the lean sharpens into BTO/STO/BTC/STC. Nil inputs
// yield no lean.
func Action(side domain.Side, qty int64, openInterest, dayVolume *int64) (domain.Action, domain.ActionConfidence) {
	if openInterest == nil || dayVolume == nil {
		return domain.ActionNone, domain.ConfidenceNone
	}
	oi, vol := *openInterest, *dayVolume

	if qty > oi+vol {
		switch side {
		case domain.SideBuy:
			return domain.ActionBuyToOpen, domain.ConfidenceHigh
		case domain.SideSell:
			return domain.ActionSellToOpen, domain.ConfidenceHigh
		default:
			return domain.ActionOpenUnsided, domain.ConfidenceMedium
		}
	}

	if oi > 0 && float64(vol) >= closeLeanRatio*float64(oi) {
		switch side {
		case domain.SideBuy:
			return domain.ActionBuyToClose, domain.ConfidenceMedium
		case domain.SideSell:
			return domain.ActionSellToClose, domain.ConfidenceMedium
		default:
			return domain.ActionCloseUnsided, domain.ConfidenceLow
		}
	}

	return domain.ActionNone, domain.ConfidenceNone
}
