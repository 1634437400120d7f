package monitor

import (
	"math"
	"testing"
)

func TestSummarize_NilRecorder_ZeroValues(t *testing.T) {
	// GIVEN no recorder
	// WHEN summarized
	summary := Summarize(nil)

	// THEN all counts are zero and the resource map is usable
	if summary.Arrivals != 0 || summary.Finished != 0 || summary.Aborted != 0 {
		t.Errorf("expected zero counts, got %+v", summary)
	}
	if summary.Resources == nil || len(summary.Resources) != 0 {
		t.Error("expected empty, non-nil resource map")
	}
}

func TestSummarize_MixedOutcomes_MeansOverFinishedOnly(t *testing.T) {
	// GIVEN two finished arrivals and one aborted one
	r := NewRecorder()
	r.RecordArrival(ArrivalRecord{RunID: "run", Name: "a", Start: 0, End: 4, Activity: 2, Finished: true})
	r.RecordArrival(ArrivalRecord{RunID: "run", Name: "b", Start: 1, End: 7, Activity: 4, Finished: true})
	r.RecordArrival(ArrivalRecord{RunID: "run", Name: "c", Start: 2, End: 100, Activity: 50})

	// WHEN summarized
	summary := Summarize(r)

	// THEN the aborted arrival is counted but excluded from the means
	if summary.RunID != "run" {
		t.Errorf("expected run id %q, got %q", "run", summary.RunID)
	}
	if summary.Arrivals != 3 || summary.Finished != 2 || summary.Aborted != 1 {
		t.Errorf("unexpected counts: %+v", summary)
	}
	if math.Abs(summary.MeanFlowTime-5) > 1e-9 {
		t.Errorf("expected mean flow time 5, got %f", summary.MeanFlowTime)
	}
	if math.Abs(summary.MeanActivity-3) > 1e-9 {
		t.Errorf("expected mean activity 3, got %f", summary.MeanActivity)
	}
}

func TestSummarize_ResourceUsage_PerResource(t *testing.T) {
	r := NewRecorder()
	r.RecordRelease(ReleaseRecord{Name: "a", Resource: "doctor", Activity: 2})
	r.RecordRelease(ReleaseRecord{Name: "b", Resource: "doctor", Activity: 4})
	r.RecordRelease(ReleaseRecord{Name: "a", Resource: "nurse", Activity: 1})

	summary := Summarize(r)

	doctor := summary.Resources["doctor"]
	if doctor.Releases != 2 || doctor.TotalActivity != 6 || doctor.MeanActivity != 3 {
		t.Errorf("unexpected doctor usage: %+v", doctor)
	}
	if nurse := summary.Resources["nurse"]; nurse.Releases != 1 || nurse.MeanActivity != 1 {
		t.Errorf("unexpected nurse usage: %+v", nurse)
	}
}
