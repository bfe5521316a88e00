// Package entity implements the simulated participants of a fog run: fog
// devices, sensors and actuators, and the tuples they exchange.
package entity

import (
	"github.com/tzaika/iFogSim/sim"
	"github.com/tzaika/iFogSim/sim/monitor"
)

// Env bundles the per-run collaborators every entity needs.
type Env struct {
	Engine    *sim.Engine
	Monitor   *monitor.Context
	Directory *ModuleDirectory
	RNG       *sim.PartitionedRNG
}

// NewEnv creates an Env with a fresh engine, monitor and directory.
func NewEnv(seed int64) *Env {
	return &Env{
		Engine:    sim.NewEngine(),
		Monitor:   monitor.NewContext(),
		Directory: NewModuleDirectory(),
		RNG:       sim.NewPartitionedRNG(sim.NewSimulationKey(seed)),
	}
}

// Fabric answers how long a tuple takes to travel between two devices.
// ok is false when no path connects them.
type Fabric interface {
	PathLatency(from, to int) (latency float64, ok bool)
}

// localFabric is used before a topology is attached: only a device itself
// is reachable.
type localFabric struct{}

func (localFabric) PathLatency(from, to int) (float64, bool) {
	return 0, from == to
}

// ModuleDirectory tracks which devices host instances of each module.
type ModuleDirectory struct {
	hosts map[string]map[string][]int
}

// NewModuleDirectory creates an empty directory.
func NewModuleDirectory() *ModuleDirectory {
	return &ModuleDirectory{hosts: make(map[string]map[string][]int)}
}

// Register records that deviceID hosts module of appID.
func (md *ModuleDirectory) Register(appID, module string, deviceID int) {
	byModule, ok := md.hosts[appID]
	if !ok {
		byModule = make(map[string][]int)
		md.hosts[appID] = byModule
	}
	for _, id := range byModule[module] {
		if id == deviceID {
			return
		}
	}
	byModule[module] = append(byModule[module], deviceID)
}

// Hosts returns the devices hosting module of appID, in launch order.
func (md *ModuleDirectory) Hosts(appID, module string) []int {
	return md.hosts[appID][module]
}
