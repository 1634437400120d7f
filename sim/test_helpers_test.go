package sim

import (
	"testing"

	"github.com/inference-sim/procsim/sim/monitor"
)

// newTestSimulator returns an unbounded simulator recording into a fresh Recorder.
func newTestSimulator(t *testing.T) (*Simulator, *monitor.Recorder) {
	t.Helper()
	rec := monitor.NewRecorder()
	return NewSimulator(NewSimConfig(0, 42, "test"), rec), rec
}

// newBatchOf creates a non-permanent batch holding n fresh monitored arrivals.
func newBatchOf(s *Simulator, name string, n int) (*Batched, []*Arrival) {
	b := NewBatched(s, name, false, 0)
	members := make([]*Arrival, n)
	for i := range members {
		members[i] = NewArrival(s, name+"_member"+string(rune('0'+i)), nil, 0, true)
		b.Insert(members[i])
	}
	return b, members
}

// finished returns the arrival records with Finished set, keyed by name.
func finished(rec *monitor.Recorder) map[string]monitor.ArrivalRecord {
	out := make(map[string]monitor.ArrivalRecord)
	for _, a := range rec.Arrivals {
		if a.Finished {
			out[a.Name] = a
		}
	}
	return out
}
