// sim/simulator.go
package sim

import (
	"container/heap"
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/procsim/sim/monitor"
)

const maxPriority = math.MaxInt

// EventQueue implements heap.Interface with deterministic ordering.
// Order by: timestamp → priority (higher first) → insertion sequence.
type EventQueue struct {
	events []Event
	seqs   []int64
}

func (eq *EventQueue) Len() int { return len(eq.events) }

func (eq *EventQueue) Less(i, j int) bool {
	ei, ej := eq.events[i], eq.events[j]
	if ei.Timestamp() != ej.Timestamp() {
		return ei.Timestamp() < ej.Timestamp()
	}
	if ei.Priority() != ej.Priority() {
		return ei.Priority() > ej.Priority()
	}
	return eq.seqs[i] < eq.seqs[j]
}

func (eq *EventQueue) Swap(i, j int) {
	eq.events[i], eq.events[j] = eq.events[j], eq.events[i]
	eq.seqs[i], eq.seqs[j] = eq.seqs[j], eq.seqs[i]
}

type sequenced struct {
	ev  Event
	seq int64
}

func (eq *EventQueue) Push(x any) {
	s := x.(sequenced)
	eq.events = append(eq.events, s.ev)
	eq.seqs = append(eq.seqs, s.seq)
}

func (eq *EventQueue) Pop() any {
	n := len(eq.events)
	item := eq.events[n-1]
	eq.events = eq.events[:n-1]
	eq.seqs = eq.seqs[:n-1]
	return item
}

// Monitor consumes the records produced while the simulation runs.
type Monitor = monitor.Sink

// Simulator holds simulation time, the entity arena and the event loop.
//
// Entities are addressed by EntityID; destroying an entity removes it from the arena,
// after which any event still referring to it is ignored.
// Thread-safety: NOT thread-safe. Must be driven from a single goroutine.
type Simulator struct {
	clock   float64
	horizon float64
	runID   string

	events EventQueue
	seq    int64

	nextID   EntityID
	entities map[EntityID]Entity
	pending  map[EntityID]*StepEvent // runnable set

	resources  map[string]*Resource
	attributes map[string]float64
	sources    []*Source

	rng     *PartitionedRNG
	monitor Monitor
}

// NewSimulator creates a simulator. A nil mon discards every record.
func NewSimulator(cfg SimConfig, mon Monitor) *Simulator {
	if mon == nil {
		mon = monitor.Discard{}
	}
	horizon := cfg.Horizon
	if horizon <= 0 {
		horizon = math.Inf(1)
	}
	return &Simulator{
		horizon:    horizon,
		runID:      cfg.RunID,
		entities:   make(map[EntityID]Entity),
		pending:    make(map[EntityID]*StepEvent),
		resources:  make(map[string]*Resource),
		attributes: make(map[string]float64),
		rng:        NewPartitionedRNG(NewSimulationKey(cfg.Seed)),
		monitor:    mon,
	}
}

// Now returns the simulation clock.
func (sim *Simulator) Now() float64 { return sim.clock }

// RunID returns the identifier stamped into monitoring records.
func (sim *Simulator) RunID() string { return sim.runID }

// RNG returns the partitioned random source of the run.
func (sim *Simulator) RNG() *PartitionedRNG { return sim.rng }

// Schedule pushes an event into the event queue.
func (sim *Simulator) Schedule(ev Event) {
	sim.seq++
	heap.Push(&sim.events, sequenced{ev: ev, seq: sim.seq})
}

// Run executes events until the queue is empty or the horizon is passed.
// The first activity error aborts the run.
func (sim *Simulator) Run() error {
	for sim.events.Len() > 0 {
		ev := heap.Pop(&sim.events).(Event)
		if ev.Timestamp() > sim.horizon {
			sim.clock = sim.horizon
			break
		}
		sim.clock = ev.Timestamp()
		logrus.Debugf("[t %10.4f] Executing %T", sim.clock, ev)
		if err := ev.Execute(sim); err != nil {
			return err
		}
	}
	logrus.Infof("[t %10.4f] Simulation ended", sim.clock)
	return nil
}

// Shutdown terminates every live top-level entity as unfinished.
func (sim *Simulator) Shutdown() {
	ids := make([]EntityID, 0, len(sim.entities))
	for id, e := range sim.entities {
		if e.base().batch == 0 {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		if e, ok := sim.entities[id]; ok {
			e.Terminate(false)
		}
	}
}

// Entity returns the live entity registered under id, or nil.
func (sim *Simulator) Entity(id EntityID) Entity {
	return sim.entities[id]
}

// Batch returns the live batch registered under id, or nil.
func (sim *Simulator) Batch(id EntityID) *Batched {
	b, _ := sim.entities[id].(*Batched)
	return b
}

// Len returns the number of live entities.
func (sim *Simulator) Len() int { return len(sim.entities) }

// IsActive reports whether the entity has a pending step.
func (sim *Simulator) IsActive(id EntityID) bool {
	_, ok := sim.pending[id]
	return ok
}

// Attribute returns a global attribute, or NaN when it was never set.
func (sim *Simulator) Attribute(key string) float64 {
	if v, ok := sim.attributes[key]; ok {
		return v
	}
	return math.NaN()
}

// SetAttribute sets a global attribute.
func (sim *Simulator) SetAttribute(key string, value float64) {
	sim.attributes[key] = value
	sim.monitor.RecordAttribute(monitor.AttributeRecord{
		RunID: sim.runID,
		Time:  sim.clock,
		Key:   key,
		Value: value,
	})
}

// Resource returns the named resource, or nil.
func (sim *Simulator) Resource(name string) *Resource {
	return sim.resources[name]
}

func (sim *Simulator) addResource(r *Resource) {
	sim.resources[r.name] = r
}

// AddSource registers a source and schedules its first arrival.
func (sim *Simulator) AddSource(src *Source) error {
	sim.sources = append(sim.sources, src)
	return src.schedule(sim)
}

func (sim *Simulator) register(e Entity) EntityID {
	sim.nextID++
	sim.entities[sim.nextID] = e
	return sim.nextID
}

// destroy removes the entity from the arena. Pending steps are dropped with it.
func (sim *Simulator) destroy(id EntityID) {
	sim.deactivate(id)
	delete(sim.entities, id)
}

func (sim *Simulator) activate(id EntityID, delay float64) {
	e, ok := sim.entities[id]
	if !ok {
		return
	}
	if _, ok := sim.pending[id]; ok {
		return
	}
	ev := &StepEvent{time: sim.clock + delay, priority: e.Priority(), id: id}
	sim.pending[id] = ev
	sim.Schedule(ev)
}

func (sim *Simulator) deactivate(id EntityID) {
	if ev, ok := sim.pending[id]; ok {
		ev.cancelled = true
		delete(sim.pending, id)
	}
}

// step runs the current activity of an entity and schedules its next step.
func (sim *Simulator) step(id EntityID) error {
	e, ok := sim.entities[id]
	if !ok {
		return nil
	}
	a := e.base()
	if a.lifetime.start < 0 {
		a.lifetime.start = sim.clock
	}
	act := e.Activity()
	if act == nil {
		e.Terminate(true)
		return nil
	}
	delay, err := act.Run(e)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", e.Name(), act.Name(), err)
	}
	if delay == Reject {
		return nil
	}
	e.SetActivity(act.Next())
	if delay == Enqueue {
		return nil
	}
	if delay > 0 {
		e.SetBusy(sim.clock + delay)
		e.UpdateActivity(delay)
	}
	sim.activate(id, delay)
	return nil
}

// renege makes an entity abandon: it leaves its batch (unless the batch is permanent),
// drops its resources and terminates as unfinished.
func (sim *Simulator) renege(id EntityID) {
	e, ok := sim.entities[id]
	if !ok {
		return
	}
	if b := sim.Batch(e.base().batch); b != nil {
		if !b.Erase(e) {
			return
		}
	}
	e.LeaveResources(false)
	e.Terminate(false)
	logrus.Debugf("[t %10.4f] %s reneged", sim.clock, e.Name())
}
