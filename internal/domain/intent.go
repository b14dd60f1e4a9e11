package domain

// Intent is the instrument/provider tuple the user currently wants
// watched. It has no lifecycle beyond the session.
type Intent struct {
	Instruments       []string // option roots to watch
	EquityInstruments []string // symbols for equity time & sales
	Provider          string   // requested data provider
	Moneyness         float64  // strike band around spot, e.g. 0.25
	BackfillDepth     int      // minutes of history requested on watch
	Limit             int      // server-side row limit
	Live              bool     // request live data
	Replay            bool     // request replay data
}

// KeyFieldsEqual reports whether two intents watch the same instruments
// through the same provider. A change in any of these fields invalidates
// cached per-key state; parameter-only changes do not.
func (i Intent) KeyFieldsEqual(other Intent) bool {
	if i.Provider != other.Provider {
		return false
	}
	return stringSlicesEqual(i.Instruments, other.Instruments) &&
		stringSlicesEqual(i.EquityInstruments, other.EquityInstruments)
}

func stringSlicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
