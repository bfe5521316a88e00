// Package trace provides decision-trace recording for placement and
// controller dispatch analysis.
// It stores pure data types and imports no other sim/ package.
package trace

// PlacementRecord captures one (device, module) pair of a module mapping.
type PlacementRecord struct {
	AppID      string
	DeviceName string
	ModuleName string
	Placed     bool
	Reason     string // empty when placed
}

// DispatchRecord captures one event the controller sent to a device.
type DispatchRecord struct {
	Clock      float64
	Tag        string
	AppID      string
	DeviceID   int
	ModuleName string // set for LAUNCH_MODULE only
	InstanceID string // set for LAUNCH_MODULE only; tells replicas apart
}
