package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Source generates arrivals that start walking a trajectory.
type Source struct {
	Name         string
	First        Activity // head of the trajectory walked by the arrivals
	Interarrival Value
	Count        int // 0 = unlimited
	Priority     int
	Monitored    bool

	generated int
}

// Generated returns the number of arrivals created so far.
func (s *Source) Generated() int { return s.generated }

// schedule books the next generation, unless the count limit is reached.
func (s *Source) schedule(sim *Simulator) error {
	if s.Count > 0 && s.generated >= s.Count {
		return nil
	}
	gap, err := evalValue(s.Interarrival, nil)
	if err != nil {
		return fmt.Errorf("source %s: interarrival: %w", s.Name, err)
	}
	if gap < 0 {
		logrus.Debugf("source %s: negative interarrival, stopping", s.Name)
		return nil
	}
	sim.Schedule(&GenerateEvent{time: sim.Now() + gap, Source: s})
	return nil
}

func (s *Source) generate(sim *Simulator) error {
	name := fmt.Sprintf("%s%d", s.Name, s.generated)
	s.generated++
	a := NewArrival(sim, name, s.First, s.Priority, s.Monitored)
	a.Activate()
	logrus.Debugf("[t %10.4f] << Arrival: %s", sim.Now(), name)
	return s.schedule(sim)
}
