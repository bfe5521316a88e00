package application

import "github.com/google/uuid"

// AppModule is a deployable vertex of the application graph.
type AppModule struct {
	Name   string
	RAM    int     // MB
	MIPS   float64 // compute the module is allocated per instance
	Size   int64   // MB of storage
	BW     int64   // kbps
	NumPEs int

	// actuatorSubscriptions maps tuple type to subscribed actuator ids,
	// in subscription order.
	actuatorSubscriptions map[string][]int
}

// SubscribeActuator routes tuples of tupleType emitted by this module to the
// actuator with the given entity id. Repeated subscriptions are ignored.
func (m *AppModule) SubscribeActuator(actuatorID int, tupleType string) {
	if m.actuatorSubscriptions == nil {
		m.actuatorSubscriptions = make(map[string][]int)
	}
	for _, id := range m.actuatorSubscriptions[tupleType] {
		if id == actuatorID {
			return
		}
	}
	m.actuatorSubscriptions[tupleType] = append(m.actuatorSubscriptions[tupleType], actuatorID)
}

// SubscribedActuators returns the actuator ids subscribed for tupleType.
func (m *AppModule) SubscribedActuators(tupleType string) []int {
	return m.actuatorSubscriptions[tupleType]
}

// ModuleInstance is one placed copy of an AppModule. Several instances of
// the same module may share a device.
type ModuleInstance struct {
	ID     uuid.UUID
	AppID  string
	Module *AppModule
}

// NewModuleInstance creates an instance with a fresh random identity.
func NewModuleInstance(appID string, m *AppModule) *ModuleInstance {
	return &ModuleInstance{ID: uuid.New(), AppID: appID, Module: m}
}

// Name returns the module type name.
func (mi *ModuleInstance) Name() string {
	return mi.Module.Name
}
