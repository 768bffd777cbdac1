package notify

// Recorder keeps every call as an Event, in order. Used by tests and by
// hosts that poll for presentation work.
type Recorder struct {
	Sink
	events []Event
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	r := &Recorder{}
	r.Sink = func(e Event) { r.events = append(r.events, e) }
	return r
}

// Events returns the recorded events.
func (r *Recorder) Events() []Event {
	return r.events
}

// OfType returns recorded events of type t.
func (r *Recorder) OfType(t EventType) []Event {
	var out []Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// Tags returns effect tags in order.
func (r *Recorder) Tags() []string {
	var out []string
	for _, e := range r.events {
		if e.Type == EventEffect {
			out = append(out, e.Tag)
		}
	}
	return out
}

// Reset forgets recorded events.
func (r *Recorder) Reset() {
	r.events = nil
}
