// Package monitor provides monitoring records for process simulations.
// It has no dependencies on sim/ and stores pure data types.
package monitor

// ArrivalRecord captures the end of an arrival's journey.
type ArrivalRecord struct {
	RunID    string
	Name     string
	Start    float64
	End      float64
	Activity float64 // time spent in timed steps
	Finished bool    // false when aborted (rejected, reneged, cut at shutdown)
}

// ReleaseRecord captures one period of resource usage by an arrival.
type ReleaseRecord struct {
	RunID    string
	Name     string
	Resource string
	Start    float64
	End      float64
	Activity float64
}

// AttributeRecord captures an attribute change. Name is empty for global attributes.
type AttributeRecord struct {
	RunID string
	Time  float64
	Name  string
	Key   string
	Value float64
}
