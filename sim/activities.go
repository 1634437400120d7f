package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// SetAttribute sets an attribute of the entity (or a global one) to an evaluated value.
type SetAttribute struct {
	node
	key    string
	value  Value
	global bool
}

// NewSetAttribute creates a SetAttribute activity.
func NewSetAttribute(key string, value Value, global bool) *SetAttribute {
	return &SetAttribute{node: node{name: "SetAttribute"}, key: key, value: value, global: global}
}

func (s *SetAttribute) Clone() Activity {
	return &SetAttribute{node: s.unlinked(), key: s.key, value: s.value.Clone(), global: s.global}
}

func (s *SetAttribute) Run(e Entity) (float64, error) {
	v, err := evalValue(s.value, e)
	if err != nil {
		return 0, err
	}
	e.SetAttribute(s.key, v, s.global)
	return 0, nil
}

// Batch collects entities into a Batched of size n. The batch starts walking the rest
// of the trajectory when it is full, or when the optional timeout expires with at
// least one member.
type Batch struct {
	node
	n         int
	timeout   Value
	permanent bool
	label     string

	pending EntityID
	count   int
}

// NewBatch creates a Batch activity. A zero timeout waits indefinitely.
func NewBatch(n int, timeout Value, permanent bool, label string) *Batch {
	if n < 1 {
		panic(fmt.Sprintf("NewBatch: batch size must be positive, got %d", n))
	}
	return &Batch{node: node{name: "Batch"}, n: n, timeout: timeout, permanent: permanent, label: label}
}

// Clone returns a Batch with the same settings and no pending batch.
func (s *Batch) Clone() Activity {
	return &Batch{
		node:      s.unlinked(),
		n:         s.n,
		timeout:   s.timeout.Clone(),
		permanent: s.permanent,
		label:     s.label,
	}
}

func (s *Batch) Run(e Entity) (float64, error) {
	sim := e.base().sim
	b := sim.Batch(s.pending)
	if b == nil {
		var err error
		if b, err = s.open(sim, e); err != nil {
			return 0, err
		}
	}
	b.Insert(e)
	if b.Size() == s.n {
		s.trigger(b)
	}
	return Reject, nil
}

func (s *Batch) open(sim *Simulator, first Entity) (*Batched, error) {
	var timeout float64
	if !s.timeout.IsConstant() || s.timeout.Eval(nil) != 0 {
		v, err := evalValue(s.timeout, first)
		if err != nil {
			return nil, fmt.Errorf("batch timeout: %w", err)
		}
		timeout = v
	}
	s.count++
	b := NewBatched(sim, fmt.Sprintf("batch_%s%d", s.label, s.count-1), s.permanent, first.Priority())
	s.pending = b.ID()
	if timeout > 0 {
		sim.Schedule(&BatchTimeoutEvent{time: sim.Now() + timeout, batch: s, id: b.ID()})
	}
	return b, nil
}

func (s *Batch) trigger(b *Batched) {
	s.pending = 0
	b.SetActivity(s.Next())
	b.Activate()
	logrus.Debugf("[t %10.4f] %s triggered with %d member(s)", b.sim.Now(), b.Name(), b.Size())
}

// Separate releases the members of a non-permanent batch to continue individually.
// Plain arrivals and permanent batches pass through.
type Separate struct {
	node
}

// NewSeparate creates a Separate activity.
func NewSeparate() *Separate {
	return &Separate{node: node{name: "Separate"}}
}

func (s *Separate) Clone() Activity {
	return &Separate{node: s.unlinked()}
}

func (s *Separate) Run(e Entity) (float64, error) {
	b, ok := e.(*Batched)
	if !ok || !b.PopAll(s.Next()) {
		return 0, nil
	}
	return Reject, nil
}

// RenegeIn makes the entity abandon after the evaluated time, wherever it is by then.
// A member of a permanent batch cannot abandon.
type RenegeIn struct {
	node
	timeout Value
}

// NewRenegeIn creates a RenegeIn activity.
func NewRenegeIn(timeout Value) *RenegeIn {
	return &RenegeIn{node: node{name: "RenegeIn"}, timeout: timeout}
}

func (s *RenegeIn) Clone() Activity {
	return &RenegeIn{node: s.unlinked(), timeout: s.timeout.Clone()}
}

func (s *RenegeIn) Run(e Entity) (float64, error) {
	v, err := evalValue(s.timeout, e)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		v = 0
	}
	sim := e.base().sim
	sim.Schedule(&RenegeEvent{time: sim.Now() + v, id: e.ID()})
	return 0, nil
}
