package monitor

// Recorder collects monitoring records in memory, in emission order.
type Recorder struct {
	Arrivals   []ArrivalRecord
	Releases   []ReleaseRecord
	Attributes []AttributeRecord
}

// NewRecorder creates a Recorder ready for recording.
func NewRecorder() *Recorder {
	return &Recorder{
		Arrivals:   make([]ArrivalRecord, 0),
		Releases:   make([]ReleaseRecord, 0),
		Attributes: make([]AttributeRecord, 0),
	}
}

// RecordArrival appends an arrival record.
func (r *Recorder) RecordArrival(rec ArrivalRecord) {
	r.Arrivals = append(r.Arrivals, rec)
}

// RecordRelease appends a resource usage record.
func (r *Recorder) RecordRelease(rec ReleaseRecord) {
	r.Releases = append(r.Releases, rec)
}

// RecordAttribute appends an attribute record.
func (r *Recorder) RecordAttribute(rec AttributeRecord) {
	r.Attributes = append(r.Attributes, rec)
}

// ReleasesOf returns the usage records of the named arrival.
func (r *Recorder) ReleasesOf(name string) []ReleaseRecord {
	var out []ReleaseRecord
	for _, rec := range r.Releases {
		if rec.Name == name {
			out = append(out, rec)
		}
	}
	return out
}

// Discard drops every record.
type Discard struct{}

func (Discard) RecordArrival(ArrivalRecord)     {}
func (Discard) RecordRelease(ReleaseRecord)     {}
func (Discard) RecordAttribute(AttributeRecord) {}

// Sink is the set of methods shared by every monitor.
type Sink interface {
	RecordArrival(ArrivalRecord)
	RecordRelease(ReleaseRecord)
	RecordAttribute(AttributeRecord)
}

// Tee forwards every record to each sink in order.
type Tee []Sink

func (t Tee) RecordArrival(rec ArrivalRecord) {
	for _, s := range t {
		s.RecordArrival(rec)
	}
}

func (t Tee) RecordRelease(rec ReleaseRecord) {
	for _, s := range t {
		s.RecordRelease(rec)
	}
}

func (t Tee) RecordAttribute(rec AttributeRecord) {
	for _, s := range t {
		s.RecordAttribute(rec)
	}
}
