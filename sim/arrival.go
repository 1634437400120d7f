// Defines the Arrival struct that models an individual entity walking a trajectory.
// Tracks attributes, busy/remaining time, lifetime and per-resource timing records.

package sim

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/procsim/sim/monitor"
)

// resTime is the occupancy record of one resource: when it was seized and how much
// activity time has accumulated since.
type resTime struct {
	start    float64
	activity float64
}

type arrivalStatus struct {
	busyUntil float64 // end of the current timed step
	remaining float64 // time left in the current step when it was interrupted
}

type lifetime struct {
	start    float64 // first time the entity ran, -1 until then
	activity float64 // accumulated time spent in timed steps
}

// Arrival is the base scheduling entity.
type Arrival struct {
	sim       *Simulator
	id        EntityID
	name      string
	monitored bool
	priority  int

	activity   Activity
	attributes map[string]float64
	status     arrivalStatus
	lifetime   lifetime
	restime    map[string]*resTime
	resources  []*Resource // held or queued, in acquisition order

	batch EntityID // enclosing batch; non-owning
}

func newArrival(sim *Simulator, name string, first Activity, priority int, monitored bool) Arrival {
	return Arrival{
		sim:        sim,
		name:       name,
		monitored:  monitored,
		priority:   priority,
		activity:   first,
		attributes: make(map[string]float64),
		lifetime:   lifetime{start: -1},
		restime:    make(map[string]*resTime),
	}
}

// NewArrival creates an arrival positioned at first and registers it with sim.
// The arrival is not runnable until Activate is called.
func NewArrival(sim *Simulator, name string, first Activity, priority int, monitored bool) *Arrival {
	a := &Arrival{}
	*a = newArrival(sim, name, first, priority, monitored)
	a.id = sim.register(a)
	return a
}

func (a *Arrival) ID() EntityID           { return a.id }
func (a *Arrival) Name() string           { return a.name }
func (a *Arrival) Priority() int          { return a.priority }
func (a *Arrival) IsMonitored() bool      { return a.monitored }
func (a *Arrival) Activity() Activity     { return a.activity }
func (a *Arrival) SetActivity(x Activity) { a.activity = x }
func (a *Arrival) base() *Arrival         { return a }

// BatchID returns the handle of the enclosing batch, or zero.
func (a *Arrival) BatchID() EntityID { return a.batch }

// BusyUntil returns the end of the current timed step.
func (a *Arrival) BusyUntil() float64 { return a.status.busyUntil }

// Remaining returns the unfinished time of an interrupted step.
func (a *Arrival) Remaining() float64 { return a.status.remaining }

// ActivityTime returns the accumulated time spent in timed steps.
func (a *Arrival) ActivityTime() float64 { return a.lifetime.activity }

// Attribute returns the value of key, or NaN when it was never set.
func (a *Arrival) Attribute(key string, global bool) float64 {
	if global {
		return a.sim.Attribute(key)
	}
	if v, ok := a.attributes[key]; ok {
		return v
	}
	return math.NaN()
}

// SetAttribute sets key on the arrival, or on the simulator when global.
func (a *Arrival) SetAttribute(key string, value float64, global bool) {
	if global {
		a.sim.SetAttribute(key, value)
		return
	}
	a.attributes[key] = value
	if a.monitored {
		a.sim.monitor.RecordAttribute(monitor.AttributeRecord{
			RunID: a.sim.runID,
			Time:  a.sim.Now(),
			Name:  a.name,
			Key:   key,
			Value: value,
		})
	}
}

// UpdateActivity accumulates value into the lifetime and into every open resource record.
func (a *Arrival) UpdateActivity(value float64) {
	a.lifetime.activity += value
	for _, t := range a.restime {
		t.activity += value
	}
}

func (a *Arrival) SetRemaining(value float64) { a.status.remaining = value }
func (a *Arrival) SetBusy(value float64)      { a.status.busyUntil = value }

// Report emits a resource usage record ending now.
func (a *Arrival) Report(resource string, start, activity float64) {
	a.sim.monitor.RecordRelease(monitor.ReleaseRecord{
		RunID:    a.sim.runID,
		Name:     a.name,
		Resource: resource,
		Start:    start,
		End:      a.sim.Now(),
		Activity: activity,
	})
}

func (a *Arrival) reportResource(resource string) {
	if !a.monitored {
		return
	}
	if t, ok := a.restime[resource]; ok {
		a.Report(resource, t.start, t.activity)
	}
}

func (a *Arrival) reportResourceSpan(resource string, start, activity float64) {
	if a.monitored {
		a.Report(resource, start, activity)
	}
}

// LeaveResources drops every resource the entity holds or waits for; held servers are
// released and their usage reported. It returns true when the entity ended up out of
// the runnable set: it was waiting in a queue, or final was set.
func (a *Arrival) LeaveResources(final bool) bool {
	a.interrupt()
	self := a.self()
	deactivated := false
	for len(a.resources) > 0 {
		if a.resources[0].Remove(self) {
			deactivated = true
		}
	}
	if final {
		self.Deactivate()
		deactivated = true
	}
	return deactivated
}

// interrupt cuts the current timed step short at the current time. The unserved part
// does not count as activity.
func (a *Arrival) interrupt() {
	now := a.sim.Now()
	self := a.self()
	if a.status.busyUntil > now {
		self.SetRemaining(a.status.busyUntil - now)
		self.SetBusy(now)
	}
	if a.status.remaining > 0 {
		self.UpdateActivity(-a.status.remaining)
		self.SetRemaining(0)
	}
}

// Activate makes the entity runnable at the current simulation time.
func (a *Arrival) Activate() { a.sim.activate(a.id, 0) }

// Deactivate removes the entity from the runnable set.
func (a *Arrival) Deactivate() { a.sim.deactivate(a.id) }

// Terminate ends the entity and removes it from the simulator.
func (a *Arrival) Terminate(finished bool) { a.terminate(finished, true) }

func (a *Arrival) terminate(finished, record bool) {
	a.interrupt()
	if len(a.resources) > 0 {
		if finished {
			logrus.Warnf("%s: finished while holding %d resource(s)", a.name, len(a.resources))
		}
		a.LeaveResources(false)
	}
	a.sim.deactivate(a.id)
	if record && a.monitored {
		start := a.lifetime.start
		if start < 0 {
			start = a.sim.Now()
		}
		a.sim.monitor.RecordArrival(monitor.ArrivalRecord{
			RunID:    a.sim.runID,
			Name:     a.name,
			Start:    start,
			End:      a.sim.Now(),
			Activity: a.lifetime.activity,
			Finished: finished,
		})
	}
	logrus.Debugf("%s: terminated (finished=%v)", a.name, finished)
	a.sim.destroy(a.id)
}

// self returns the entity registered under a's handle, so that overridden methods of
// an enclosing Batched are honored.
func (a *Arrival) self() Entity {
	if e := a.sim.Entity(a.id); e != nil {
		return e
	}
	return a
}

// seized opens a resource record.
func (a *Arrival) seized(r *Resource) {
	a.restime[r.name] = &resTime{start: a.sim.Now()}
}

func (a *Arrival) track(r *Resource) {
	a.resources = append(a.resources, r)
}

// untrack forgets r and its timing record.
func (a *Arrival) untrack(r *Resource) {
	for i, x := range a.resources {
		if x == r {
			a.resources = append(a.resources[:i], a.resources[i+1:]...)
			break
		}
	}
	delete(a.restime, r.name)
}

func (a *Arrival) String() string {
	return fmt.Sprintf("Arrival: (ID: %d, Name: %s, BusyUntil: %g, Batch: %d)", a.id, a.name, a.status.busyUntil, a.batch)
}
