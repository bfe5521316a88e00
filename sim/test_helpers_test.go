package sim

// recorder is an Entity that remembers every event it receives.
type recorder struct {
	name    string
	id      int
	engine  *Engine
	started bool
	got     []Event
	onEvent func(r *recorder, ev *Event)
}

func newRecorder(e *Engine, name string) *recorder {
	r := &recorder{name: name, engine: e}
	r.id = e.Register(r)
	return r
}

func (r *recorder) Name() string { return r.name }

func (r *recorder) StartEntity() { r.started = true }

func (r *recorder) ProcessEvent(ev *Event) {
	r.got = append(r.got, *ev)
	if r.onEvent != nil {
		r.onEvent(r, ev)
	}
}

func (r *recorder) tags() []EventTag {
	out := make([]EventTag, len(r.got))
	for i, ev := range r.got {
		out[i] = ev.Tag
	}
	return out
}
