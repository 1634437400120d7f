package sim

// SimConfig groups run-wide simulator parameters.
type SimConfig struct {
	Horizon float64 // stop executing events past this time (<= 0 means unbounded)
	Seed    int64   // master seed for PartitionedRNG
	RunID   string  // identifier stamped into every monitoring record
}

// NewSimConfig creates a SimConfig.
func NewSimConfig(horizon float64, seed int64, runID string) SimConfig {
	return SimConfig{Horizon: horizon, Seed: seed, RunID: runID}
}
