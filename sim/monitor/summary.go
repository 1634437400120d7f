package monitor

// ResourceUsage aggregates the usage records of one resource.
type ResourceUsage struct {
	Releases      int     `json:"releases"`
	TotalActivity float64 `json:"total_activity"`
	MeanActivity  float64 `json:"mean_activity"`
}

// Summary aggregates statistics from a Recorder.
type Summary struct {
	RunID        string                   `json:"run_id,omitempty"`
	Arrivals     int                      `json:"arrivals"`
	Finished     int                      `json:"finished"`
	Aborted      int                      `json:"aborted"`
	MeanFlowTime float64                  `json:"mean_flow_time"`
	MeanActivity float64                  `json:"mean_activity"`
	Resources    map[string]ResourceUsage `json:"resources"`
}

// Summarize computes aggregate statistics from a Recorder.
// Flow time means are over finished arrivals only.
// Safe for nil or empty recorders (returns zero-value fields).
func Summarize(r *Recorder) *Summary {
	summary := &Summary{
		Resources: make(map[string]ResourceUsage),
	}
	if r == nil {
		return summary
	}

	summary.Arrivals = len(r.Arrivals)
	var flow, activity float64
	for _, a := range r.Arrivals {
		if summary.RunID == "" {
			summary.RunID = a.RunID
		}
		if !a.Finished {
			summary.Aborted++
			continue
		}
		summary.Finished++
		flow += a.End - a.Start
		activity += a.Activity
	}
	if summary.Finished > 0 {
		summary.MeanFlowTime = flow / float64(summary.Finished)
		summary.MeanActivity = activity / float64(summary.Finished)
	}

	for _, rel := range r.Releases {
		u := summary.Resources[rel.Resource]
		u.Releases++
		u.TotalActivity += rel.Activity
		summary.Resources[rel.Resource] = u
	}
	for name, u := range summary.Resources {
		u.MeanActivity = u.TotalActivity / float64(u.Releases)
		summary.Resources[name] = u
	}

	return summary
}
