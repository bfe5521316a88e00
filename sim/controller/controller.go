// Package controller drives a fog simulation run: it wires devices into a
// tree, submits applications according to their placements, runs the
// periodic resource-management tick and writes the reports at shutdown.
package controller

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tzaika/iFogSim/sim"
	"github.com/tzaika/iFogSim/sim/application"
	"github.com/tzaika/iFogSim/sim/entity"
	"github.com/tzaika/iFogSim/sim/placement"
	"github.com/tzaika/iFogSim/sim/report"
	"github.com/tzaika/iFogSim/sim/topology"
	"github.com/tzaika/iFogSim/sim/trace"
)

var (
	// ErrMissingPlacement means an application reached submission with no
	// module placement bound to its id.
	ErrMissingPlacement = errors.New("no module placement bound to application")
	// ErrNilPlacement is returned when SubmitApplication is given a nil placement.
	ErrNilPlacement = errors.New("module placement is nil")
	// ErrStopped is returned when submitting to a stopped controller.
	ErrStopped = errors.New("controller already stopped")
)

// State is the lifecycle phase of a Controller.
type State int

const (
	Idle State = iota
	Running
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Running:
		return "Running"
	case Stopped:
		return "Stopped"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ResourceManager is run on every CONTROLLER_RESOURCE_MANAGE tick.
type ResourceManager interface {
	ManageResources(c *Controller, now float64)
}

// ResourceManagerFunc adapts a function to ResourceManager.
type ResourceManagerFunc func(c *Controller, now float64)

func (f ResourceManagerFunc) ManageResources(c *Controller, now float64) { f(c, now) }

// noopManager is the baseline resource manager.
type noopManager struct{}

func (noopManager) ManageResources(*Controller, float64) {}

// Controller is the event-driven orchestrator of a run.
//
// Applications, launch delays and placements are kept in submission order
// and never removed during a run.
type Controller struct {
	id   int
	name string
	env  *entity.Env
	cfg  Config

	devices   []*entity.FogDevice
	sensors   []*entity.Sensor
	actuators []*entity.Actuator
	topo      topology.Result

	appOrder     []string
	applications map[string]*application.Application
	launchDelays map[string]float64
	placements   map[string]placement.ModulePlacement

	state           State
	handlers        map[sim.EventTag]func(*sim.Event)
	resourceManager ResourceManager
	resourceTimer   *sim.RepeatingTimer
	ticks           int64
	finishedTuples  int64

	trace    *trace.SimulationTrace
	reports  *report.Writer
	snapshot *report.Snapshot
	err      error
}

// New registers a controller with env's engine, takes ownership of the
// given entities and links the devices into a tree using each device's
// parent id and uplink latency.
func New(env *entity.Env, name string, devices []*entity.FogDevice, sensors []*entity.Sensor,
	actuators []*entity.Actuator, cfg Config) *Controller {
	c := &Controller{
		name:            name,
		env:             env,
		cfg:             cfg,
		devices:         devices,
		sensors:         sensors,
		actuators:       actuators,
		applications:    make(map[string]*application.Application),
		launchDelays:    make(map[string]float64),
		placements:      make(map[string]placement.ModulePlacement),
		resourceManager: noopManager{},
		trace:           trace.NewSimulationTrace(cfg.Trace),
	}
	if cfg.ResultsDir != "" {
		c.reports = report.NewWriter(cfg.ResultsDir)
	}
	c.handlers = map[sim.EventTag]func(*sim.Event){
		sim.TagAppSubmit:                c.handleAppSubmit,
		sim.TagTupleFinished:            c.handleTupleFinished,
		sim.TagControllerResourceManage: c.handleResourceManage,
		sim.TagStopSimulation:           c.handleStopSimulation,
	}
	c.id = env.Engine.Register(c)

	for _, d := range devices {
		d.SetControllerID(c.id)
	}
	for _, s := range sensors {
		s.SetControllerID(c.id)
	}
	for _, a := range actuators {
		a.SetControllerID(c.id)
	}

	c.topo = topology.Connect(devices)
	for _, d := range devices {
		d.AttachFabric(c.topo.Tree)
	}
	for _, u := range c.topo.Unresolved {
		logrus.Warnf("controller %s: device %d has unknown parent %d and acts as a root", name, u.DeviceID, u.ParentID)
	}
	return c
}

func (c *Controller) ID() int                       { return c.id }
func (c *Controller) Name() string                  { return c.name }
func (c *Controller) State() State                  { return c.state }
func (c *Controller) Config() Config                { return c.cfg }
func (c *Controller) Devices() []*entity.FogDevice  { return c.devices }
func (c *Controller) Sensors() []*entity.Sensor     { return c.sensors }
func (c *Controller) Actuators() []*entity.Actuator { return c.actuators }
func (c *Controller) Topology() topology.Result     { return c.topo }
func (c *Controller) Trace() *trace.SimulationTrace { return c.trace }
func (c *Controller) ResourceTicks() int64          { return c.ticks }
func (c *Controller) FinishedTuples() int64         { return c.finishedTuples }

// SetResourceManager replaces the per-tick resource manager.
func (c *Controller) SetResourceManager(m ResourceManager) { c.resourceManager = m }

// Err returns the configuration error that stopped the run, if any.
func (c *Controller) Err() error { return c.err }

// Snapshot returns the report data captured at shutdown, or nil before it.
func (c *Controller) Snapshot() *report.Snapshot { return c.snapshot }

// Applications returns the stored applications in submission order.
func (c *Controller) Applications() []*application.Application {
	out := make([]*application.Application, 0, len(c.appOrder))
	for _, id := range c.appOrder {
		out = append(out, c.applications[id])
	}
	return out
}

// Application returns the application stored under appID.
func (c *Controller) Application(appID string) (*application.Application, bool) {
	app, ok := c.applications[appID]
	return app, ok
}

// LaunchDelay returns the launch delay registered for appID.
func (c *Controller) LaunchDelay(appID string) (float64, bool) {
	d, ok := c.launchDelays[appID]
	return d, ok
}

// Placement returns the placement bound to appID.
func (c *Controller) Placement(appID string) (placement.ModulePlacement, bool) {
	mp, ok := c.placements[appID]
	return mp, ok
}

// DeviceByID returns the owned device with the given id.
func (c *Controller) DeviceByID(id int) (*entity.FogDevice, bool) {
	for _, d := range c.devices {
		if d.ID() == id {
			return d, true
		}
	}
	return nil, false
}

// DeviceByName returns the first owned device with the given name.
func (c *Controller) DeviceByName(name string) (*entity.FogDevice, bool) {
	for _, d := range c.devices {
		if d.Name() == name {
			return d, true
		}
	}
	return nil, false
}

// SubmitApplication registers app for launch at simulation start.
func (c *Controller) SubmitApplication(app *application.Application, mp placement.ModulePlacement) error {
	return c.SubmitApplicationAfter(app, 0, mp)
}

// SubmitApplicationAfter registers app with a launch delay and a placement,
// binds the matching sensors and actuators to it, and subscribes the source
// module of every ACTUATOR edge to the actuators of the edge's destination
// type. Submitting while Running schedules the launch delay from now; bound
// sensors start emitting from the current clock.
func (c *Controller) SubmitApplicationAfter(app *application.Application, delay float64, mp placement.ModulePlacement) error {
	if c.state == Stopped {
		return fmt.Errorf("submitting %s: %w", app.AppID, ErrStopped)
	}
	if mp == nil {
		return fmt.Errorf("submitting %s: %w", app.AppID, ErrNilPlacement)
	}
	if delay < 0 {
		return fmt.Errorf("submitting %s: negative launch delay %g", app.AppID, delay)
	}

	c.env.Monitor.SetGeoCoverage(app.AppID, app.GeoCoverage)
	c.store(app)
	c.launchDelays[app.AppID] = delay
	c.placements[app.AppID] = mp
	c.recordPlacement(mp)

	for _, s := range c.sensors {
		if s.AppID() == app.AppID {
			s.SetApp(app)
		}
	}
	for _, a := range c.actuators {
		if a.AppID() == app.AppID {
			a.SetApp(app)
		}
	}
	c.subscribeActuators(app)

	if c.state == Running {
		c.env.Engine.ScheduleAfter(c.id, c.id, delay, sim.TagAppSubmit, app)
	}
	return nil
}

func (c *Controller) store(app *application.Application) {
	if _, seen := c.applications[app.AppID]; !seen {
		c.appOrder = append(c.appOrder, app.AppID)
	}
	c.applications[app.AppID] = app
}

func (c *Controller) subscribeActuators(app *application.Application) {
	for _, edge := range app.Edges {
		if edge.Type != application.EdgeActuator {
			continue
		}
		module, ok := app.ModuleByName(edge.Source)
		if !ok {
			logrus.Warnf("application %s: actuator edge source %q is not a module", app.AppID, edge.Source)
			continue
		}
		for _, a := range c.actuators {
			if strings.EqualFold(a.ActuatorType(), edge.Destination) {
				module.SubscribeActuator(a.ID(), edge.TupleType)
			}
		}
	}
}

func (c *Controller) StartEntity() {
	engine := c.env.Engine
	if err := c.cfg.Validate(); err != nil {
		c.fail(err)
		return
	}
	c.state = Running
	c.env.Monitor.Time.SetStart(time.Now())

	for _, appID := range c.appOrder {
		app := c.applications[appID]
		if delay := c.launchDelays[appID]; delay == 0 {
			if err := c.processAppSubmit(app); err != nil {
				c.fail(err)
				return
			}
		} else {
			engine.ScheduleAfter(c.id, c.id, delay, sim.TagAppSubmit, app)
		}
	}

	c.resourceTimer = engine.Repeat(c.id, c.id, c.cfg.ResourceManageInterval, sim.TagControllerResourceManage, nil)
	engine.ScheduleAfter(c.id, c.id, c.cfg.MaxSimulationTime, sim.TagStopSimulation, nil)

	for _, d := range c.devices {
		engine.ScheduleNow(c.id, d.ID(), sim.TagResourceMgmt, nil)
	}
}

func (c *Controller) ProcessEvent(ev *sim.Event) {
	h, ok := c.handlers[ev.Tag]
	if !ok {
		logrus.Debugf("[t=%g] controller %s ignores %s", ev.Time, c.name, ev.Tag)
		return
	}
	h(ev)
}

func (c *Controller) handleAppSubmit(ev *sim.Event) {
	if err := c.processAppSubmit(ev.Data.(*application.Application)); err != nil {
		c.fail(err)
	}
}

func (c *Controller) handleTupleFinished(*sim.Event) {
	c.finishedTuples++
}

func (c *Controller) handleResourceManage(ev *sim.Event) {
	c.ticks++
	c.resourceManager.ManageResources(c, ev.Time)
}

func (c *Controller) handleStopSimulation(*sim.Event) {
	c.shutdown()
}

// fail records a fatal configuration error and halts the run.
func (c *Controller) fail(err error) {
	logrus.Errorf("controller %s: %v", c.name, err)
	if c.err == nil {
		c.err = err
	}
	c.state = Stopped
	c.env.Engine.Stop()
}
