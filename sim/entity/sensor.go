package entity

import (
	"github.com/sirupsen/logrus"

	"github.com/tzaika/iFogSim/sim"
	"github.com/tzaika/iFogSim/sim/application"
)

// Sensor periodically emits tuples of its type into its gateway device.
type Sensor struct {
	id           int
	env          *Env
	name         string
	sensorType   string
	userID       int
	appID        string
	app          *application.Application
	gatewayID    int
	latency      float64
	dist         Distribution
	controllerID int
	emitted      int64
	started      bool
	armed        bool
}

// NewSensor registers a sensor with env's engine. It emits nothing until
// bound to its application with SetApp. Binding after the run has started
// arms the first emission from the current clock.
func NewSensor(env *Env, name, sensorType string, userID int, appID string, dist Distribution) *Sensor {
	s := &Sensor{
		env:          env,
		name:         name,
		sensorType:   sensorType,
		userID:       userID,
		appID:        appID,
		gatewayID:    NoParent,
		dist:         dist,
		controllerID: NoParent,
	}
	s.id = env.Engine.Register(s)
	return s
}

func (s *Sensor) ID() int                       { return s.id }
func (s *Sensor) Name() string                  { return s.name }
func (s *Sensor) SensorType() string            { return s.sensorType }
func (s *Sensor) UserID() int                   { return s.userID }
func (s *Sensor) AppID() string                 { return s.appID }
func (s *Sensor) App() *application.Application { return s.app }
func (s *Sensor) GatewayDeviceID() int          { return s.gatewayID }
func (s *Sensor) SetGatewayDeviceID(id int)     { s.gatewayID = id }
func (s *Sensor) Latency() float64              { return s.latency }
func (s *Sensor) SetLatency(l float64)          { s.latency = l }
func (s *Sensor) SetControllerID(id int)        { s.controllerID = id }
func (s *Sensor) Emitted() int64                { return s.emitted }

// SetApp binds the sensor to app.
func (s *Sensor) SetApp(app *application.Application) {
	s.app = app
	if s.started {
		s.arm()
	}
}

func (s *Sensor) StartEntity() {
	s.started = true
	if s.app == nil {
		logrus.Debugf("sensor %s is not bound to application %q yet", s.name, s.appID)
		return
	}
	s.arm()
}

// arm schedules the first emission once.
func (s *Sensor) arm() {
	if s.armed || s.app == nil {
		return
	}
	s.armed = true
	s.env.Engine.ScheduleAfter(s.id, s.id, s.dist.Next(), sim.TagSensorEmit, nil)
}

func (s *Sensor) ProcessEvent(ev *sim.Event) {
	if ev.Tag != sim.TagSensorEmit {
		return
	}
	s.transmit(ev.Time)
	s.env.Engine.ScheduleAfter(s.id, s.id, s.dist.Next(), sim.TagSensorEmit, nil)
}

func (s *Sensor) transmit(now float64) {
	tk := s.env.Monitor.Time
	for _, edge := range s.app.SensorEdges(s.sensorType) {
		t := newTuple(tk.NextTupleID(), s.appID, s.sensorType, edge)
		t.visit(s.sensorType, now, s.app, tk)
		s.env.Engine.ScheduleAfter(s.id, s.gatewayID, s.latency, sim.TagTupleArrival, t)
		s.emitted++
	}
}
