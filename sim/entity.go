package sim

// EntityID is a stable handle for an entity in the simulator arena.
// The zero value never names an entity.
type EntityID uint64

// Entity is anything that walks a trajectory: a plain Arrival or a Batched group.
//
// Batched overrides the mutators so every update is fanned out to its members;
// callers must always go through the interface to get that behavior.
type Entity interface {
	ID() EntityID
	Name() string
	Priority() int
	IsMonitored() bool

	Activity() Activity
	SetActivity(a Activity)

	Attribute(key string, global bool) float64
	SetAttribute(key string, value float64, global bool)

	UpdateActivity(value float64)
	SetRemaining(value float64)
	SetBusy(value float64)

	Report(resource string, start, activity float64)
	LeaveResources(final bool) bool

	Activate()
	Deactivate()
	Terminate(finished bool)

	base() *Arrival
	reportResource(resource string)
	reportResourceSpan(resource string, start, activity float64)
}

var (
	_ Entity = (*Arrival)(nil)
	_ Entity = (*Batched)(nil)
)
