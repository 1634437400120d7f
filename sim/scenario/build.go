package scenario

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/procsim/sim"
)

// Build validates the scenario and constructs a simulator with its resources and
// sources registered. cfg carries the effective horizon, seed and run identifier.
//
// A trajectory used by more than one source is cloned for every additional source, so
// per-activity state (pending batches, sampler streams) is never shared between them.
func (s *Scenario) Build(cfg sim.SimConfig, mon sim.Monitor) (*sim.Simulator, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	simulator := sim.NewSimulator(cfg, mon)
	rng := simulator.RNG()

	for _, r := range s.Resources {
		queue := -1
		if r.QueueSize != nil {
			queue = *r.QueueSize
		}
		sim.NewResource(simulator, r.Name, r.Capacity, queue)
	}

	trajectories := make(map[string]*sim.Trajectory, len(s.Trajectories))
	for _, t := range s.Trajectories {
		traj := sim.NewTrajectory(t.Name)
		for i, st := range t.Steps {
			act, err := buildStep(st, func(v *ValueSpec) sim.Value {
				return buildValue(v, rng, sim.SubsystemActivity(t.Name, i))
			}, t.Name)
			if err != nil {
				return nil, fmt.Errorf("trajectory %s step %d: %w", t.Name, i, err)
			}
			traj.Add(act)
		}
		trajectories[t.Name] = traj
	}

	used := make(map[string]bool)
	for _, src := range s.Sources {
		traj := trajectories[src.Trajectory]
		if used[src.Trajectory] {
			traj = traj.Clone()
			logrus.Debugf("source %s: walking a clone of trajectory %s", src.Name, src.Trajectory)
		}
		used[src.Trajectory] = true
		interarrival := src.Interarrival
		err := simulator.AddSource(&sim.Source{
			Name:         src.Name,
			First:        traj.Head(),
			Interarrival: buildValue(&interarrival, rng, sim.SubsystemSource(src.Name)),
			Count:        src.Count,
			Priority:     src.Priority,
			Monitored:    src.Monitor,
		})
		if err != nil {
			return nil, err
		}
	}
	return simulator, nil
}

func buildStep(st StepSpec, value func(*ValueSpec) sim.Value, label string) (sim.Activity, error) {
	switch st.Type {
	case "timeout":
		return sim.NewTimeout(value(st.Delay)), nil
	case "seize":
		return sim.NewSeize(st.Resource), nil
	case "release":
		return sim.NewRelease(st.Resource), nil
	case "set_attribute":
		return sim.NewSetAttribute(st.Key, value(st.Value), st.Global), nil
	case "batch":
		timeout := sim.Constant(0)
		if st.Timeout != nil {
			timeout = value(st.Timeout)
		}
		return sim.NewBatch(st.N, timeout, st.Permanent, label), nil
	case "separate":
		return sim.NewSeparate(), nil
	case "renege_in":
		return sim.NewRenegeIn(value(st.Timeout)), nil
	default:
		return nil, fmt.Errorf("unhandled step type %q", st.Type)
	}
}

func buildValue(v *ValueSpec, rng *sim.PartitionedRNG, stream string) sim.Value {
	switch v.Type {
	case "exponential":
		return sim.Dynamic(sim.NewExponentialExpr(v.Mean, rng, stream))
	case "uniform":
		return sim.Dynamic(sim.NewUniformExpr(v.Min, v.Max, rng, stream))
	case "attribute":
		return sim.Dynamic(sim.AttributeExpr{Key: v.Key, Default: v.Default, Global: v.Global})
	default:
		return sim.Constant(v.Value)
	}
}
