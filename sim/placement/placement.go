// Package placement resolves a declarative ModuleMapping against an
// application graph into concrete module instances on devices.
package placement

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"

	"github.com/tzaika/iFogSim/sim/application"
	"github.com/tzaika/iFogSim/sim/entity"
)

// ErrUnresolved is returned under MissFail when a mapping names an unknown
// device or module.
var ErrUnresolved = errors.New("unresolved module mapping entry")

// Assignment lists the module instances placed on one device.
type Assignment struct {
	DeviceID  int
	Instances []*application.ModuleInstance
}

// ModulePlacement is the output contract shared by placement strategies.
// Results are computed once and never change afterwards.
type ModulePlacement interface {
	// Application is the application being placed.
	Application() *application.Application
	// DeviceToModules lists assignments in insertion order.
	DeviceToModules() []Assignment
	// ModuleToDevices maps a module name to the devices hosting it.
	ModuleToDevices() map[string][]int
	// ModuleInstanceCount maps device id → module name → instance count.
	ModuleInstanceCount() map[int]map[string]int
}

// MissReason says why a mapping pair was not placed.
type MissReason string

const (
	UnknownDevice MissReason = "unknown-device"
	UnknownModule MissReason = "unknown-module"
)

// Miss is a (device, module) pair that could not be resolved.
type Miss struct {
	DeviceName string
	ModuleName string
	Reason     MissReason
}

func (m Miss) String() string {
	return fmt.Sprintf("%s on %s (%s)", m.ModuleName, m.DeviceName, m.Reason)
}

// MissPolicy decides what an unresolved pair does.
type MissPolicy int

const (
	// MissIgnore drops unresolved pairs and keeps going.
	MissIgnore MissPolicy = iota
	// MissFail turns any unresolved pair into an error.
	MissFail
)

// Option configures a MappingPlacement.
type Option func(*MappingPlacement)

// WithMissPolicy sets how unresolved pairs are handled. Default MissIgnore.
func WithMissPolicy(p MissPolicy) Option {
	return func(mp *MappingPlacement) { mp.policy = p }
}

// MappingPlacement executes a user-supplied ModuleMapping as-is. It does no
// optimisation.
type MappingPlacement struct {
	devices []*entity.FogDevice
	app     *application.Application
	mapping *ModuleMapping
	policy  MissPolicy

	deviceToModules []Assignment
	deviceIndex     map[int]int
	moduleToDevices map[string][]int
	instanceCount   map[int]map[string]int
	misses          []Miss
}

// NewMappingPlacement resolves mapping against app and devices. Under the
// default MissIgnore policy it never fails: unresolved pairs are recorded in
// Misses and skipped.
func NewMappingPlacement(devices []*entity.FogDevice, app *application.Application,
	mapping *ModuleMapping, opts ...Option) (*MappingPlacement, error) {
	mp := &MappingPlacement{
		devices:         devices,
		app:             app,
		mapping:         mapping,
		deviceIndex:     make(map[int]int),
		moduleToDevices: make(map[string][]int),
		instanceCount:   make(map[int]map[string]int, len(devices)),
	}
	for _, opt := range opts {
		opt(mp)
	}
	for _, d := range devices {
		mp.instanceCount[d.ID()] = make(map[string]int)
	}
	mp.mapModules()

	if mp.policy == MissFail && len(mp.misses) > 0 {
		return nil, fmt.Errorf("placing %s: %w: %v", app.AppID, ErrUnresolved, mp.misses)
	}
	return mp, nil
}

func (mp *MappingPlacement) mapModules() {
	for _, deviceName := range mp.mapping.Devices() {
		device, found := mp.deviceByName(deviceName)
		for _, moduleName := range mp.mapping.ModulesOn(deviceName) {
			if !found {
				mp.miss(deviceName, moduleName, UnknownDevice)
				continue
			}
			module, ok := mp.app.ModuleByName(moduleName)
			if !ok {
				mp.miss(deviceName, moduleName, UnknownModule)
				continue
			}
			mp.createModuleInstanceOnDevice(module, device)
		}
	}
}

func (mp *MappingPlacement) miss(device, module string, reason MissReason) {
	m := Miss{DeviceName: device, ModuleName: module, Reason: reason}
	logrus.Debugf("placement %s: dropping %s", mp.app.AppID, m)
	mp.misses = append(mp.misses, m)
}

// deviceByName looks a device up by name. The first match wins.
func (mp *MappingPlacement) deviceByName(name string) (*entity.FogDevice, bool) {
	for _, d := range mp.devices {
		if d.Name() == name {
			return d, true
		}
	}
	return nil, false
}

func (mp *MappingPlacement) createModuleInstanceOnDevice(m *application.AppModule, d *entity.FogDevice) {
	inst := application.NewModuleInstance(mp.app.AppID, m)

	idx, ok := mp.deviceIndex[d.ID()]
	if !ok {
		idx = len(mp.deviceToModules)
		mp.deviceIndex[d.ID()] = idx
		mp.deviceToModules = append(mp.deviceToModules, Assignment{DeviceID: d.ID()})
	}
	mp.deviceToModules[idx].Instances = append(mp.deviceToModules[idx].Instances, inst)

	if !slices.Contains(mp.moduleToDevices[m.Name], d.ID()) {
		mp.moduleToDevices[m.Name] = append(mp.moduleToDevices[m.Name], d.ID())
	}
	mp.instanceCount[d.ID()][m.Name]++
}

func (mp *MappingPlacement) Application() *application.Application { return mp.app }


func (mp *MappingPlacement) DeviceToModules() []Assignment {
	out := make([]Assignment, len(mp.deviceToModules))
	for i, a := range mp.deviceToModules {
		out[i] = Assignment{DeviceID: a.DeviceID, Instances: append([]*application.ModuleInstance(nil), a.Instances...)}
	}
	return out
}

func (mp *MappingPlacement) ModuleToDevices() map[string][]int {
	out := make(map[string][]int, len(mp.moduleToDevices))
	for k, v := range mp.moduleToDevices {
		out[k] = append([]int(nil), v...)
	}
	return out
}

func (mp *MappingPlacement) ModuleInstanceCount() map[int]map[string]int {
	out := make(map[int]map[string]int, len(mp.instanceCount))
	for dev, counts := range mp.instanceCount {
		inner := make(map[string]int, len(counts))
		for k, v := range counts {
			inner[k] = v
		}
		out[dev] = inner
	}
	return out
}

// Misses returns the pairs that were dropped, in mapping order.
func (mp *MappingPlacement) Misses() []Miss {
	return append([]Miss(nil), mp.misses...)
}

// TotalInstances is the number of module instances placed.
func (mp *MappingPlacement) TotalInstances() int {
	n := 0
	for _, a := range mp.deviceToModules {
		n += len(a.Instances)
	}
	return n
}
