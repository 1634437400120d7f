// Package sim provides the execution core of the procsim discrete-event process simulator.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - activity.go: the Activity contract and the Trajectory that links activities together
//   - arrival.go: the Arrival entity (attributes, timing, resource bookkeeping)
//   - batched.go: Batched, a composite entity that moves a group of arrivals as one
//   - simulator.go: the event loop, the entity arena, and the runnable set
//
// # Architecture
//
// Entities (arrivals and batches) live in an arena owned by the Simulator and are
// addressed by EntityID. An entity walks a Trajectory: the simulator runs the entity's
// current Activity, which returns the delay before the next step (or Enqueue / Reject
// when the entity was suspended or consumed). Batched entities fan timing and attribute
// updates out to their members, and implement the split/dissolve protocol used when
// members leave (Erase) or the whole group is released (PopAll).
//
// Sub-packages:
//   - sim/monitor/: monitoring records, in-memory recorder and Prometheus sink
//   - sim/scenario/: YAML scenario loading and simulator construction
package sim
