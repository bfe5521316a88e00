package entity

import (
	"github.com/tzaika/iFogSim/sim/application"
	"github.com/tzaika/iFogSim/sim/monitor"
)

// Hop is one named stop (sensor type, module or actuator type) a tuple, or
// the tuple it was derived from, passed through.
type Hop struct {
	Name string
	Time float64
}

// Tuple is a unit of data flowing along application edges.
type Tuple struct {
	ID         int64
	AppID      string
	Type       string
	SrcModule  string
	DestModule string
	CPULength  float64
	NwLength   float64
	Direction  application.Direction
	Hops       []Hop
}

// newTuple builds a tuple travelling along edge.
func newTuple(id int64, appID, src string, edge *application.AppEdge) *Tuple {
	return &Tuple{
		ID:         id,
		AppID:      appID,
		Type:       edge.TupleType,
		SrcModule:  src,
		DestModule: edge.Destination,
		CPULength:  edge.TupleCPULength,
		NwLength:   edge.TupleNwLength,
		Direction:  edge.Direction,
	}
}

// derive creates the output tuple of t along edge, inheriting t's hops.
func (t *Tuple) derive(id int64, src string, edge *application.AppEdge) *Tuple {
	out := newTuple(id, t.AppID, src, edge)
	out.Hops = append([]Hop(nil), t.Hops...)
	return out
}

// visit appends a hop and records every loop of app the hop completes.
func (t *Tuple) visit(name string, now float64, app *application.Application, tk *monitor.TimeKeeper) {
	t.Hops = append(t.Hops, Hop{Name: name, Time: now})
	for _, loop := range app.Loops {
		n := len(loop.Modules)
		if n < 2 || !loop.EndsWith(name) || len(t.Hops) < n {
			continue
		}
		base := len(t.Hops) - n
		matched := true
		for i, m := range loop.Modules {
			if t.Hops[base+i].Name != m {
				matched = false
				break
			}
		}
		if matched {
			tk.RecordLoopDelay(monitor.LoopKey{AppID: app.AppID, LoopID: loop.ID}, t.ID, now-t.Hops[base].Time)
		}
	}
}
