package sim

import "fmt"

// EventTag names every kind of event the simulation dispatches.
// The set is closed: entities dispatch on it through handler tables.
type EventTag int

const (
	// TagAppSubmit delivers an *application.Application to the controller
	// (delayed launch) or to a device (deployment notice).
	TagAppSubmit EventTag = iota
	// TagLaunchModule delivers an *application.ModuleInstance to a device.
	TagLaunchModule
	// TagActiveAppUpdate announces an *application.Application to a device.
	TagActiveAppUpdate
	// TagResourceMgmt asks a device to start its own power/cost accounting.
	TagResourceMgmt
	// TagControllerResourceManage is the controller's periodic tick.
	TagControllerResourceManage
	// TagStopSimulation ends the run.
	TagStopSimulation
	// TagTupleArrival delivers a tuple to a device or actuator.
	TagTupleArrival
	// TagTupleFinished notifies the controller that a tuple completed.
	TagTupleFinished
	// TagSensorEmit wakes a sensor to transmit its next tuple.
	TagSensorEmit
	// TagDeviceUpdate is a device's periodic power/cost accounting tick.
	TagDeviceUpdate
)

var tagNames = map[EventTag]string{
	TagAppSubmit:                "APP_SUBMIT",
	TagLaunchModule:             "LAUNCH_MODULE",
	TagActiveAppUpdate:          "ACTIVE_APP_UPDATE",
	TagResourceMgmt:             "RESOURCE_MGMT",
	TagControllerResourceManage: "CONTROLLER_RESOURCE_MANAGE",
	TagStopSimulation:           "STOP_SIMULATION",
	TagTupleArrival:             "TUPLE_ARRIVAL",
	TagTupleFinished:            "TUPLE_FINISHED",
	TagSensorEmit:               "SENSOR_EMIT",
	TagDeviceUpdate:             "DEVICE_UPDATE",
}

func (t EventTag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return fmt.Sprintf("EventTag(%d)", int(t))
}

// priority orders events sharing a timestamp. Lower runs first.
// STOP_SIMULATION runs after everything else scheduled for the same instant.
func (t EventTag) priority() int {
	if t == TagStopSimulation {
		return 1
	}
	return 0
}

// Event is a timed message between two registered entities.
type Event struct {
	Time   float64  // virtual time at which the event fires
	Source int      // sending entity id
	Target int      // receiving entity id
	Tag    EventTag // event kind
	Data   any      // payload, typed per Tag

	seqID int64
	timer *RepeatingTimer
}

func (e *Event) String() string {
	return fmt.Sprintf("%s@%g %d->%d", e.Tag, e.Time, e.Source, e.Target)
}
