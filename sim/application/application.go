// Package application models a distributed application as a directed graph
// of modules, the edges tuples travel along, and the loops whose end-to-end
// latency is monitored.
package application

import (
	"fmt"
	"strings"
)

// EdgeType classifies the endpoints of an AppEdge.
type EdgeType int

const (
	// EdgeSensor carries tuples from a sensor type into a module.
	EdgeSensor EdgeType = iota + 1
	// EdgeModule carries tuples between two modules.
	EdgeModule
	// EdgeActuator carries tuples from a module to an actuator type.
	EdgeActuator
)

func (t EdgeType) String() string {
	switch t {
	case EdgeSensor:
		return "SENSOR"
	case EdgeModule:
		return "MODULE"
	case EdgeActuator:
		return "ACTUATOR"
	}
	return fmt.Sprintf("EdgeType(%d)", int(t))
}

// Direction is the tree direction a tuple travels in.
type Direction int

const (
	Up Direction = iota + 1
	Down
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "UP"
	case Down:
		return "DOWN"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// AppEdge is a directed edge of the application graph.
type AppEdge struct {
	Source         string
	Destination    string
	Periodicity    float64 // 0 for event-driven edges
	TupleCPULength float64 // MI needed to process one tuple
	TupleNwLength  float64 // bytes per tuple on the wire
	TupleType      string
	Direction      Direction
	Type           EdgeType
}

// TupleMapping says that Module, on receiving InputType, emits OutputType
// with probability Selectivity.
type TupleMapping struct {
	Module      string
	InputType   string
	OutputType  string
	Selectivity float64
}

// AppLoop is an ordered path of module (or sensor/actuator type) names whose
// end-to-end latency is monitored. IDs are unique within an application.
type AppLoop struct {
	ID      int
	Modules []string
}

// String renders the loop as "[a, b, c]".
func (l *AppLoop) String() string {
	return "[" + strings.Join(l.Modules, ", ") + "]"
}

// StartsWith reports whether name is the loop's first element.
func (l *AppLoop) StartsWith(name string) bool {
	return len(l.Modules) > 0 && l.Modules[0] == name
}

// EndsWith reports whether name is the loop's last element.
func (l *AppLoop) EndsWith(name string) bool {
	return len(l.Modules) > 0 && l.Modules[len(l.Modules)-1] == name
}

// GeoCoverage is the rectangle an application serves.
type GeoCoverage struct {
	LatMin float64 `yaml:"lat_min"`
	LatMax float64 `yaml:"lat_max"`
	LonMin float64 `yaml:"lon_min"`
	LonMax float64 `yaml:"lon_max"`
}

// Application is a directed graph of AppModules connected by AppEdges.
// Modules, edges and loops keep their declaration order.
type Application struct {
	AppID       string
	UserID      int
	GeoCoverage GeoCoverage

	Modules       []*AppModule
	Edges         []*AppEdge
	TupleMappings []TupleMapping
	Loops         []*AppLoop

	moduleIndex map[string]*AppModule
}

// New creates an empty application graph.
func New(appID string, userID int) *Application {
	return &Application{
		AppID:       appID,
		UserID:      userID,
		moduleIndex: make(map[string]*AppModule),
	}
}

// AddModule adds a module vertex. A second module with the same name
// replaces the first.
func (a *Application) AddModule(m *AppModule) *AppModule {
	if old, ok := a.moduleIndex[m.Name]; ok {
		for i, existing := range a.Modules {
			if existing == old {
				a.Modules[i] = m
			}
		}
	} else {
		a.Modules = append(a.Modules, m)
	}
	a.moduleIndex[m.Name] = m
	return m
}

// AddEdge appends an edge.
func (a *Application) AddEdge(e *AppEdge) {
	a.Edges = append(a.Edges, e)
}

// AddTupleMapping appends an input→output mapping for a module.
func (a *Application) AddTupleMapping(module, input, output string, selectivity float64) {
	a.TupleMappings = append(a.TupleMappings, TupleMapping{
		Module:      module,
		InputType:   input,
		OutputType:  output,
		Selectivity: selectivity,
	})
}

// AddLoop declares a monitored loop and returns it. IDs start at 1.
func (a *Application) AddLoop(modules ...string) *AppLoop {
	l := &AppLoop{ID: len(a.Loops) + 1, Modules: append([]string(nil), modules...)}
	a.Loops = append(a.Loops, l)
	return l
}

// ModuleByName returns the named module and whether it exists.
func (a *Application) ModuleByName(name string) (*AppModule, bool) {
	m, ok := a.moduleIndex[name]
	return m, ok
}

// LoopByID returns the loop with the given id, or nil.
func (a *Application) LoopByID(id int) *AppLoop {
	for _, l := range a.Loops {
		if l.ID == id {
			return l
		}
	}
	return nil
}

// EdgesFrom returns the edges leaving source that carry tupleType, in
// declaration order.
func (a *Application) EdgesFrom(source, tupleType string) []*AppEdge {
	var out []*AppEdge
	for _, e := range a.Edges {
		if e.Source == source && e.TupleType == tupleType {
			out = append(out, e)
		}
	}
	return out
}

// SensorEdges returns the SENSOR edges fed by sensorType.
func (a *Application) SensorEdges(sensorType string) []*AppEdge {
	var out []*AppEdge
	for _, e := range a.Edges {
		if e.Type == EdgeSensor && e.Source == sensorType {
			out = append(out, e)
		}
	}
	return out
}

// MappingsFor returns the tuple mappings of module triggered by inputType.
func (a *Application) MappingsFor(module, inputType string) []TupleMapping {
	var out []TupleMapping
	for _, tm := range a.TupleMappings {
		if tm.Module == module && tm.InputType == inputType {
			out = append(out, tm)
		}
	}
	return out
}
