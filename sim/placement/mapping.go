package placement

import "golang.org/x/exp/slices"

// ModuleMapping is a user-authored table of device name → module names.
// Devices keep the order in which they were first named; each device's
// modules keep insertion order.
type ModuleMapping struct {
	devices []string
	modules map[string][]string
}

// NewModuleMapping creates an empty mapping.
func NewModuleMapping() *ModuleMapping {
	return &ModuleMapping{modules: make(map[string][]string)}
}

func (mm *ModuleMapping) ensure(device string) {
	if _, ok := mm.modules[device]; !ok {
		mm.devices = append(mm.devices, device)
		mm.modules[device] = nil
	}
}

// AddModuleToDevice appends module to device unconditionally. Calling it
// twice places two instances of the module on the device.
func (mm *ModuleMapping) AddModuleToDevice(module, device string) {
	mm.ensure(device)
	mm.modules[device] = append(mm.modules[device], module)
}

// AddModuleToDeviceIfNotPresent appends module to device only if the device
// does not list it yet.
func (mm *ModuleMapping) AddModuleToDeviceIfNotPresent(module, device string) {
	mm.ensure(device)
	if !slices.Contains(mm.modules[device], module) {
		mm.modules[device] = append(mm.modules[device], module)
	}
}

// Devices returns the device names in first-mention order.
func (mm *ModuleMapping) Devices() []string {
	return slices.Clone(mm.devices)
}

// ModulesOn returns the module names listed for device.
func (mm *ModuleMapping) ModulesOn(device string) []string {
	return slices.Clone(mm.modules[device])
}

// Pairs returns the number of (device, module) entries.
func (mm *ModuleMapping) Pairs() int {
	n := 0
	for _, mods := range mm.modules {
		n += len(mods)
	}
	return n
}
