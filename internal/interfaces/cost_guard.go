package interfaces

// CostGuardUsage is a read-only snapshot of one provider's spend counters,
// exposed for diagnostics.
type CostGuardUsage struct {
	Provider   string `json:"provider"`
	DailyCount int    `json:"daily_count"`
	DailyCap   int    `json:"daily_cap"`
	RPMCount   int    `json:"rpm_count"`
	RPMCap     int    `json:"rpm_cap"`
}

// CostGuard gates provider spend against daily and per-minute budgets.
// A denial is a normal outcome, not an error.
type CostGuard interface {
	// TryAdmit atomically checks and, when allowed, increments both counters
	// for the provider. When denied, reason explains which cap was hit,
	// e.g. "DailyCap (1000/1000)".
	TryAdmit(provider string) (allowed bool, reason string)

	// Snapshot returns current usage for all configured providers.
	Snapshot() []CostGuardUsage
}
