package entity

import (
	"github.com/tzaika/iFogSim/sim"
	"github.com/tzaika/iFogSim/sim/application"
)

// Actuator receives action tuples from the modules subscribed to it.
type Actuator struct {
	id           int
	env          *Env
	name         string
	actuatorType string
	userID       int
	appID        string
	app          *application.Application
	gatewayID    int
	latency      float64
	controllerID int
	received     int64
}

// NewActuator registers an actuator with env's engine.
func NewActuator(env *Env, name string, userID int, appID, actuatorType string) *Actuator {
	a := &Actuator{
		env:          env,
		name:         name,
		actuatorType: actuatorType,
		userID:       userID,
		appID:        appID,
		gatewayID:    NoParent,
		controllerID: NoParent,
	}
	a.id = env.Engine.Register(a)
	return a
}

func (a *Actuator) ID() int                             { return a.id }
func (a *Actuator) Name() string                        { return a.name }
func (a *Actuator) ActuatorType() string                { return a.actuatorType }
func (a *Actuator) UserID() int                         { return a.userID }
func (a *Actuator) AppID() string                       { return a.appID }
func (a *Actuator) App() *application.Application       { return a.app }
func (a *Actuator) SetApp(app *application.Application) { a.app = app }
func (a *Actuator) GatewayDeviceID() int                { return a.gatewayID }
func (a *Actuator) SetGatewayDeviceID(id int)           { a.gatewayID = id }
func (a *Actuator) Latency() float64                    { return a.latency }
func (a *Actuator) SetLatency(l float64)                { a.latency = l }
func (a *Actuator) SetControllerID(id int)              { a.controllerID = id }
func (a *Actuator) Received() int64                     { return a.received }

func (a *Actuator) StartEntity() {}

func (a *Actuator) ProcessEvent(ev *sim.Event) {
	if ev.Tag != sim.TagTupleArrival {
		return
	}
	t := ev.Data.(*Tuple)
	a.received++
	if a.app != nil {
		t.visit(a.actuatorType, ev.Time, a.app, a.env.Monitor.Time)
	}
	if a.controllerID != NoParent {
		a.env.Engine.ScheduleNow(a.id, a.controllerID, sim.TagTupleFinished, t)
	}
}
