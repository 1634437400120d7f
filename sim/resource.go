package sim

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
)

// queued is an entity waiting for a server.
type queued struct {
	entity   Entity
	arrived  float64
	sequence int64
}

// Resource is a named pool of identical servers with a waiting queue.
// Capacity and QueueSize of -1 mean unbounded.
type Resource struct {
	sim       *Simulator
	name      string
	capacity  int
	queueSize int

	servers []Entity // current holders, in seize order
	queue   []queued // ordered by priority (desc), then arrival
	seq     int64
}

// NewResource creates a resource and registers it with sim.
func NewResource(sim *Simulator, name string, capacity, queueSize int) *Resource {
	r := &Resource{
		sim:       sim,
		name:      name,
		capacity:  capacity,
		queueSize: queueSize,
	}
	sim.addResource(r)
	return r
}

func (r *Resource) Name() string    { return r.name }
func (r *Resource) Server() int     { return len(r.servers) }
func (r *Resource) QueueCount() int { return len(r.queue) }

func (r *Resource) hasServer() bool {
	return r.capacity < 0 || len(r.servers) < r.capacity
}

func (r *Resource) hasRoom() bool {
	return r.queueSize < 0 || len(r.queue) < r.queueSize
}

// Seize requests a server for e. It returns 0 when a server was granted, Enqueue when
// e has to wait, or Reject when the queue is full.
func (r *Resource) Seize(e Entity) float64 {
	if r.hasServer() {
		r.grant(e)
		return 0
	}
	if !r.hasRoom() {
		logrus.Debugf("%s: queue full, %s rejected", r.name, e.Name())
		return Reject
	}
	r.seq++
	r.queue = append(r.queue, queued{entity: e, arrived: r.sim.Now(), sequence: r.seq})
	sort.SliceStable(r.queue, func(i, j int) bool {
		if r.queue[i].entity.Priority() != r.queue[j].entity.Priority() {
			return r.queue[i].entity.Priority() > r.queue[j].entity.Priority()
		}
		return r.queue[i].sequence < r.queue[j].sequence
	})
	e.base().track(r)
	return Enqueue
}

// Release returns the server held by e, reports its usage and hands the server to the
// next waiting entity.
func (r *Resource) Release(e Entity) error {
	idx := r.serverIndex(e)
	if idx < 0 {
		return fmt.Errorf("%s: %s does not hold the resource", r.name, e.Name())
	}
	r.drop(idx, e)
	r.serveQueue()
	return nil
}

// Remove takes e out of the resource, wherever it is. It returns true when e was
// waiting in the queue.
func (r *Resource) Remove(e Entity) bool {
	if idx := r.serverIndex(e); idx >= 0 {
		r.drop(idx, e)
		r.serveQueue()
		return false
	}
	for i, q := range r.queue {
		if q.entity.ID() == e.ID() {
			r.queue = append(r.queue[:i], r.queue[i+1:]...)
			e.reportResourceSpan(r.name, q.arrived, 0)
			e.base().untrack(r)
			return true
		}
	}
	e.base().untrack(r)
	return false
}

func (r *Resource) grant(e Entity) {
	r.servers = append(r.servers, e)
	a := e.base()
	a.seized(r)
	for _, x := range a.resources {
		if x == r {
			return
		}
	}
	a.track(r)
}

func (r *Resource) drop(idx int, e Entity) {
	r.servers = append(r.servers[:idx], r.servers[idx+1:]...)
	e.reportResource(r.name)
	e.base().untrack(r)
}

func (r *Resource) serveQueue() {
	for len(r.queue) > 0 && r.hasServer() {
		next := r.queue[0]
		r.queue = r.queue[1:]
		r.grant(next.entity)
		next.entity.Activate()
	}
}

func (r *Resource) serverIndex(e Entity) int {
	for i, s := range r.servers {
		if s.ID() == e.ID() {
			return i
		}
	}
	return -1
}

// Seize requests one server of a resource.
type Seize struct {
	node
	resource string
}

// NewSeize creates a Seize activity for the named resource.
func NewSeize(resource string) *Seize {
	return &Seize{node: node{name: "Seize"}, resource: resource}
}

func (s *Seize) Clone() Activity {
	return &Seize{node: s.unlinked(), resource: s.resource}
}

func (s *Seize) Run(e Entity) (float64, error) {
	r := e.base().sim.Resource(s.resource)
	if r == nil {
		return 0, fmt.Errorf("seize: unknown resource %q", s.resource)
	}
	switch res := r.Seize(e); res {
	case Reject:
		e.Terminate(false)
		return Reject, nil
	default:
		return res, nil
	}
}

// Release returns a server of a resource.
type Release struct {
	node
	resource string
}

// NewRelease creates a Release activity for the named resource.
func NewRelease(resource string) *Release {
	return &Release{node: node{name: "Release"}, resource: resource}
}

func (s *Release) Clone() Activity {
	return &Release{node: s.unlinked(), resource: s.resource}
}

func (s *Release) Run(e Entity) (float64, error) {
	r := e.base().sim.Resource(s.resource)
	if r == nil {
		return 0, fmt.Errorf("release: unknown resource %q", s.resource)
	}
	if err := r.Release(e); err != nil {
		return 0, err
	}
	return 0, nil
}
