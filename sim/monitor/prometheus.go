package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus exports monitoring records as Prometheus metrics.
type Prometheus struct {
	arrivals   *prometheus.CounterVec
	flowTime   prometheus.Histogram
	usage      *prometheus.HistogramVec
	attributes *prometheus.CounterVec
}

// NewPrometheus creates the metrics and registers them with reg.
func NewPrometheus(reg prometheus.Registerer) (*Prometheus, error) {
	p := &Prometheus{
		arrivals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "procsim",
			Name:      "arrivals_total",
			Help:      "Arrivals that left the system, by outcome.",
		}, []string{"outcome"}),
		flowTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "procsim",
			Name:      "flow_time",
			Help:      "Simulated time between first step and exit of finished arrivals.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 16),
		}),
		usage: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "procsim",
			Name:      "resource_activity",
			Help:      "Activity time accumulated per resource usage period.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 16),
		}, []string{"resource"}),
		attributes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "procsim",
			Name:      "attribute_updates_total",
			Help:      "Attribute updates, by scope.",
		}, []string{"scope"}),
	}
	for _, c := range []prometheus.Collector{p.arrivals, p.flowTime, p.usage, p.attributes} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Prometheus) RecordArrival(rec ArrivalRecord) {
	if !rec.Finished {
		p.arrivals.WithLabelValues("aborted").Inc()
		return
	}
	p.arrivals.WithLabelValues("finished").Inc()
	p.flowTime.Observe(rec.End - rec.Start)
}

func (p *Prometheus) RecordRelease(rec ReleaseRecord) {
	p.usage.WithLabelValues(rec.Resource).Observe(rec.Activity)
}

func (p *Prometheus) RecordAttribute(rec AttributeRecord) {
	scope := "local"
	if rec.Name == "" {
		scope = "global"
	}
	p.attributes.WithLabelValues(scope).Inc()
}
