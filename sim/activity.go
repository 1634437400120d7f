package sim

import "fmt"

// Control results returned by Activity.Run in place of a delay.
const (
	// Enqueue means the entity was suspended (e.g. waiting in a resource queue or a
	// pending batch) and will be reactivated by someone else.
	Enqueue = -1.0
	// Reject means the entity was consumed by the activity (dropped, absorbed into a
	// batch that was released, or destroyed) and must not be rescheduled.
	Reject = -2.0
)

// Activity is one step of a trajectory.
//
// Run evaluates the step against the entity currently executing it and returns the
// delay (>= 0) to wait before the entity moves to Next(), or one of Enqueue / Reject.
// Activities are shared by every entity walking the same trajectory; Clone returns an
// independent copy for a separate walk.
//
// The set of activities is closed: every implementation embeds node.
type Activity interface {
	Name() string
	Next() Activity
	SetNext(next Activity)
	Clone() Activity
	Run(e Entity) (float64, error)

	link() *node
}

// node holds the state common to all activities.
type node struct {
	name string
	next Activity
}

func (n *node) Name() string          { return n.name }
func (n *node) Next() Activity        { return n.next }
func (n *node) SetNext(next Activity) { n.next = next }
func (n *node) link() *node           { return n }
func (n *node) String() string        { return n.name }
func (n *node) unlinked() node        { return node{name: n.name} }

// Trajectory is an ordered chain of activities.
// The trajectory owns its activities; entities only hold references into the chain.
type Trajectory struct {
	name       string
	activities []Activity
}

// NewTrajectory creates an empty trajectory.
func NewTrajectory(name string) *Trajectory {
	return &Trajectory{name: name}
}

// Name returns the trajectory label.
func (t *Trajectory) Name() string { return t.name }

// Add appends activities to the end of the trajectory, linking each to its predecessor.
func (t *Trajectory) Add(acts ...Activity) *Trajectory {
	for _, a := range acts {
		if n := len(t.activities); n > 0 {
			t.activities[n-1].SetNext(a)
		}
		t.activities = append(t.activities, a)
	}
	return t
}

// Head returns the first activity, or nil for an empty trajectory.
func (t *Trajectory) Head() Activity {
	if len(t.activities) == 0 {
		return nil
	}
	return t.activities[0]
}

// Len returns the number of activities.
func (t *Trajectory) Len() int { return len(t.activities) }

// Clone returns a trajectory made of clones of every activity, relinked in order.
func (t *Trajectory) Clone() *Trajectory {
	c := NewTrajectory(t.name)
	for _, a := range t.activities {
		c.Add(a.Clone())
	}
	return c
}

func (t *Trajectory) String() string {
	return fmt.Sprintf("Trajectory: (name: %s, activities: %d)", t.name, len(t.activities))
}
