package sim

import "github.com/sirupsen/logrus"

// Event defines the interface for all simulation events.
// Each event has a Timestamp, a Priority used to break ties (higher runs first) and an
// Execute method that advances simulation state when invoked.
type Event interface {
	Timestamp() float64
	Priority() int
	Execute(*Simulator) error
}

// StepEvent runs the current activity of an entity.
type StepEvent struct {
	time      float64
	priority  int
	id        EntityID
	cancelled bool
}

func (e *StepEvent) Timestamp() float64 { return e.time }
func (e *StepEvent) Priority() int      { return e.priority }

// Execute runs one step of the entity unless it was deactivated or destroyed meanwhile.
func (e *StepEvent) Execute(sim *Simulator) error {
	if e.cancelled {
		return nil
	}
	if sim.pending[e.id] == e {
		delete(sim.pending, e.id)
	}
	return sim.step(e.id)
}

// GenerateEvent creates the next arrival of a source.
type GenerateEvent struct {
	time   float64
	Source *Source
}

func (e *GenerateEvent) Timestamp() float64 { return e.time }
func (e *GenerateEvent) Priority() int      { return maxPriority }

func (e *GenerateEvent) Execute(sim *Simulator) error {
	return e.Source.generate(sim)
}

// RenegeEvent makes an entity abandon the system.
type RenegeEvent struct {
	time float64
	id   EntityID
}

func (e *RenegeEvent) Timestamp() float64 { return e.time }
func (e *RenegeEvent) Priority() int      { return maxPriority }

func (e *RenegeEvent) Execute(sim *Simulator) error {
	sim.renege(e.id)
	return nil
}

// BatchTimeoutEvent triggers a pending batch that did not fill up in time.
type BatchTimeoutEvent struct {
	time  float64
	batch *Batch
	id    EntityID
}

func (e *BatchTimeoutEvent) Timestamp() float64 { return e.time }
func (e *BatchTimeoutEvent) Priority() int      { return maxPriority }

func (e *BatchTimeoutEvent) Execute(sim *Simulator) error {
	if e.batch.pending != e.id {
		return nil
	}
	b := sim.Batch(e.id)
	if b == nil || b.Size() == 0 {
		logrus.Warnf("[t %10.4f] batch timeout on an empty batch", sim.Now())
		return nil
	}
	e.batch.trigger(b)
	return nil
}
