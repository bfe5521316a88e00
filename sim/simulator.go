// sim/simulator.go
package sim

import (
	"container/heap"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Entity is anything that receives events from the Engine.
type Entity interface {
	Name() string
	// StartEntity is called once, in registration order, when Run begins.
	StartEntity()
	// ProcessEvent handles one event addressed to this entity.
	ProcessEvent(ev *Event)
}

// Engine holds the virtual clock, the event queue and the entity registry.
// It processes exactly one event at a time, in nondecreasing time order,
// with FIFO order among events scheduled for the same instant.
//
// Thread-safety: NOT thread-safe. Must be driven from a single goroutine.
type Engine struct {
	clock    float64
	queue    EventQueue
	entities []Entity
	nextSeq  int64
	stopped  bool
	hasRun   bool
	// Dispatched counts events delivered to entities.
	Dispatched int64
}

// NewEngine creates an Engine at virtual time 0 with no entities.
func NewEngine() *Engine {
	return &Engine{queue: make(EventQueue, 0)}
}

// Register adds an entity and returns its stable id.
// Ids are dense and start at 0, in registration order.
func (e *Engine) Register(ent Entity) int {
	if e.hasRun {
		panic(fmt.Sprintf("Engine.Register(%s) after Run", ent.Name()))
	}
	e.entities = append(e.entities, ent)
	return len(e.entities) - 1
}

// Entity returns the entity registered under id, or nil.
func (e *Engine) Entity(id int) Entity {
	if id < 0 || id >= len(e.entities) {
		return nil
	}
	return e.entities[id]
}

// Clock returns the current virtual time.
func (e *Engine) Clock() float64 {
	return e.clock
}

// Stopped reports whether Stop has been called.
func (e *Engine) Stopped() bool {
	return e.stopped
}

// Pending returns the number of queued events.
func (e *Engine) Pending() int {
	return len(e.queue)
}

// ScheduleAfter queues an event for target at Clock()+delay.
// Panics on a negative delay: events cannot be scheduled in the past.
func (e *Engine) ScheduleAfter(source, target int, delay float64, tag EventTag, data any) {
	if delay < 0 {
		panic(fmt.Sprintf("Engine.ScheduleAfter: negative delay %g for %s", delay, tag))
	}
	e.push(&Event{Time: e.clock + delay, Source: source, Target: target, Tag: tag, Data: data})
}

// ScheduleNow queues an event for target at the current instant. It runs
// after every event already queued for this instant.
func (e *Engine) ScheduleNow(source, target int, tag EventTag, data any) {
	e.ScheduleAfter(source, target, 0, tag, data)
}

func (e *Engine) push(ev *Event) {
	ev.seqID = e.nextSeq
	e.nextSeq++
	heap.Push(&e.queue, ev)
}

// Stop halts the clock. The event being processed completes; nothing
// queued afterwards is dispatched.
func (e *Engine) Stop() {
	if !e.stopped {
		logrus.Debugf("[t=%g] Engine stopped with %d pending events", e.clock, len(e.queue))
	}
	e.stopped = true
}

// Run starts every entity, then dispatches events until the queue drains
// or Stop is called. Panics if called more than once.
func (e *Engine) Run() {
	if e.hasRun {
		panic("Engine.Run() called more than once")
	}
	e.hasRun = true

	for _, ent := range e.entities {
		ent.StartEntity()
	}

	for len(e.queue) > 0 && !e.stopped {
		ev := heap.Pop(&e.queue).(*Event)
		e.clock = ev.Time
		if ev.timer != nil {
			ev.timer.rearm(e)
		}
		target := e.Entity(ev.Target)
		if target == nil {
			logrus.Warnf("[t=%g] Dropping %s: no entity with id %d", e.clock, ev.Tag, ev.Target)
			continue
		}
		logrus.Debugf("[t=%g] %s -> %s", e.clock, ev.Tag, target.Name())
		e.Dispatched++
		target.ProcessEvent(ev)
	}
	logrus.Infof("[t=%g] Simulation ended", e.clock)
}
