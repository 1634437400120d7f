// Defines Batched, a composite entity that groups several arrivals into a single
// scheduling unit that moves, times and reports as one.

package sim

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
)

// Batched is a group of entities processed together.
// Members are exclusively owned by the batch while contained; each member's batch
// handle points back at it. A permanent batch is never split or released.
type Batched struct {
	Arrival
	members   []Entity
	permanent bool
}

// NewBatched creates an empty batch and registers it with sim.
func NewBatched(sim *Simulator, name string, permanent bool, priority int) *Batched {
	b := &Batched{
		Arrival:   newArrival(sim, name, nil, priority, true),
		permanent: permanent,
	}
	b.id = sim.register(b)
	return b
}

// Permanent reports whether the batch can never be split.
func (b *Batched) Permanent() bool { return b.permanent }

// Size returns the current member count.
func (b *Batched) Size() int { return len(b.members) }

// Members returns a copy of the member list, in insertion order.
func (b *Batched) Members() []Entity {
	out := make([]Entity, len(b.members))
	copy(out, b.members)
	return out
}

// parent returns the enclosing batch, if any.
func (b *Batched) parent() *Batched {
	return b.sim.Batch(b.batch)
}

// Insert adds e to the batch. The member stops following its own trajectory: from
// now on it is driven by the batch.
func (b *Batched) Insert(e Entity) {
	e.SetActivity(nil)
	b.members = append(b.members, e)
	e.base().batch = b.id
}

// Erase removes e from the batch. It returns false, without changes, for a
// permanent batch.
//
// When e was the last member, the batch either suspends itself (top-level batch) or
// dissolves into its parent (nested batch), in which case it is destroyed after e has
// been detached.
func (b *Batched) Erase(e Entity) bool {
	if b.permanent {
		return false
	}
	idx := b.indexOf(e)
	if idx < 0 {
		panic(fmt.Sprintf("Batched.Erase: %s is not a member of %s", e.Name(), b.name))
	}

	parent := b.parent()
	destroy := false
	switch {
	case len(b.members) > 1 || (parent != nil && parent.permanent):
		if e.IsMonitored() {
			for up := b; up != nil; up = up.parent() {
				up.reportMember(e)
			}
		}
	case len(b.members) == 1 && parent == nil:
		if !b.LeaveResources(b.activity == nil) {
			b.Deactivate()
		}
		logrus.Debugf("%s: last member %s left, batch suspended", b.name, e.Name())
	default:
		destroy = true
		b.LeaveResources(false)
		parent.Erase(b)
		logrus.Debugf("%s: last member %s left, batch dissolved into %s", b.name, e.Name(), parent.name)
	}

	b.members = append(b.members[:idx], b.members[idx+1:]...)
	e.base().batch = 0
	if destroy {
		b.sim.destroy(b.id)
	}
	return true
}

// PopAll releases every member to continue independently at next, then destroys the
// batch. Resources still held by the batch are handed back first. It returns false, without changes, for a permanent batch.
func (b *Batched) PopAll(next Activity) bool {
	if b.permanent {
		return false
	}
	if len(b.resources) > 0 {
		logrus.Warnf("%s: released while holding %d resource(s)", b.name, len(b.resources))
		b.LeaveResources(false)
	}
	for _, e := range b.members {
		e.SetActivity(next)
		e.base().batch = 0
		e.Activate()
	}
	logrus.Debugf("%s: released %d member(s)", b.name, len(b.members))
	b.members = nil
	b.sim.destroy(b.id)
	return true
}

// Terminate ends every member, then the batch itself. No resource hand-back or
// member reporting takes place.
func (b *Batched) Terminate(finished bool) {
	for _, e := range b.members {
		e.Terminate(finished)
	}
	b.members = nil
	b.Arrival.terminate(finished, false)
}

// SetAttribute sets key on the batch and on every member, or on the simulator when
// global.
func (b *Batched) SetAttribute(key string, value float64, global bool) {
	if global {
		b.sim.SetAttribute(key, value)
		return
	}
	b.attributes[key] = value
	for _, e := range b.members {
		e.SetAttribute(key, value, false)
	}
}

func (b *Batched) UpdateActivity(value float64) {
	b.Arrival.UpdateActivity(value)
	for _, e := range b.members {
		e.UpdateActivity(value)
	}
}

func (b *Batched) SetRemaining(value float64) {
	b.Arrival.SetRemaining(value)
	for _, e := range b.members {
		e.SetRemaining(value)
	}
}

func (b *Batched) SetBusy(value float64) {
	b.Arrival.SetBusy(value)
	for _, e := range b.members {
		e.SetBusy(value)
	}
}

// reportResource reports the batch's record of resource to every monitored member.
func (b *Batched) reportResource(resource string) {
	t, ok := b.restime[resource]
	if !ok {
		return
	}
	for _, e := range b.members {
		if e.IsMonitored() {
			e.Report(resource, t.start, t.activity)
		}
	}
}

// reportResourceSpan reports an explicit interval to every monitored member.
func (b *Batched) reportResourceSpan(resource string, start, activity float64) {
	for _, e := range b.members {
		if e.IsMonitored() {
			e.Report(resource, start, activity)
		}
	}
}

// reportMember reports every resource the batch holds to e, counting only the activity
// consumed so far in the current step. A nested batch passes the records on to its
// own members.
func (b *Batched) reportMember(e Entity) {
	now := b.sim.Now()
	names := make([]string, 0, len(b.restime))
	for name := range b.restime {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		t := b.restime[name]
		e.reportResourceSpan(name, t.start, t.activity-b.status.busyUntil+now)
	}
}

func (b *Batched) indexOf(e Entity) int {
	for i, m := range b.members {
		if m.ID() == e.ID() {
			return i
		}
	}
	return -1
}

func (b *Batched) String() string {
	return fmt.Sprintf("Batched: (ID: %d, Name: %s, Members: %d, Permanent: %v)", b.id, b.name, len(b.members), b.permanent)
}
