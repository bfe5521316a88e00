package sim

// RepeatingTimer delivers the same tag to an entity every Interval units of
// virtual time, forever. The k-th firing happens at exactly Start+k*Interval,
// so the cadence does not drift however many ticks have fired. There is no
// cancellation: the timer ends only when the engine stops.
type RepeatingTimer struct {
	Source   int
	Target   int
	Tag      EventTag
	Data     any
	Start    float64
	Interval float64

	fired int64
}

// Repeat arms a RepeatingTimer whose first firing is one interval from now.
// Panics if interval is not positive.
func (e *Engine) Repeat(source, target int, interval float64, tag EventTag, data any) *RepeatingTimer {
	if interval <= 0 {
		panic("Engine.Repeat: interval must be > 0")
	}
	t := &RepeatingTimer{
		Source:   source,
		Target:   target,
		Tag:      tag,
		Data:     data,
		Start:    e.clock,
		Interval: interval,
	}
	t.schedule(e, 1)
	return t
}

// Fired returns how many times the timer has fired.
func (t *RepeatingTimer) Fired() int64 {
	return t.fired
}

// NextAt returns the virtual time of the next firing.
func (t *RepeatingTimer) NextAt() float64 {
	return t.at(t.fired + 1)
}

func (t *RepeatingTimer) at(k int64) float64 {
	return t.Start + float64(k)*t.Interval
}

func (t *RepeatingTimer) schedule(e *Engine, k int64) {
	e.push(&Event{
		Time:   t.at(k),
		Source: t.Source,
		Target: t.Target,
		Tag:    t.Tag,
		Data:   t.Data,
		timer:  t,
	})
}

// rearm is called by the engine when a firing is popped, before delivery.
func (t *RepeatingTimer) rearm(e *Engine) {
	t.fired++
	t.schedule(e, t.fired+1)
}
