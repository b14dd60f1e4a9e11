package domain

import "encoding/json"

// ProviderUnknown marks an environment whose provider could not be
// confirmed, either before the first watch response or after a failure.
const ProviderUnknown = "unknown"

// Environment is the data environment the server reports as actually
// active. It is tracked separately from the requested Intent so a
// provider discrepancy stays observable instead of being coerced away.
type Environment struct {
	Provider string          // provider the server activated
	Raw      json.RawMessage // raw env payload from the watch response
}

// UnknownEnvironment returns the explicit "unknown" marker used before
// the first confirmation and after a failed or timed-out watch request.
func UnknownEnvironment() Environment {
	return Environment{Provider: ProviderUnknown}
}
