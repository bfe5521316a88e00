package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/tzaika/iFogSim/sim"
	"github.com/tzaika/iFogSim/sim/application"
	"github.com/tzaika/iFogSim/sim/controller"
	"github.com/tzaika/iFogSim/sim/entity"
	"github.com/tzaika/iFogSim/sim/placement"
)

// Build wires a validated scenario into a ready-to-run controller: devices
// in declaration order, their sensors and actuators, then every application
// submitted with its placement and launch delay.
func Build(sc *Scenario, seed int64, cfg controller.Config) (*controller.Controller, *entity.Env, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	env := entity.NewEnv(seed)

	devices := make([]*entity.FogDevice, 0, len(sc.Devices))
	byName := make(map[string]*entity.FogDevice, len(sc.Devices))
	for _, spec := range sc.Devices {
		d := entity.NewFogDevice(env, spec.DeviceParameters)
		devices = append(devices, d)
		byName[spec.Name] = d
	}

	var sensors []*entity.Sensor
	var actuators []*entity.Actuator
	for _, spec := range sc.Devices {
		d := byName[spec.Name]
		if spec.Parent != "" {
			parent, ok := byName[spec.Parent]
			if !ok {
				return nil, nil, fmt.Errorf("device %s: unknown parent %q", spec.Name, spec.Parent)
			}
			if err := d.SetParentID(parent.ID()); err != nil {
				return nil, nil, err
			}
		}
		for _, ss := range spec.Sensors {
			a, b := ss.Distribution.Params()
			dist, err := entity.NewDistribution(ss.Distribution.Kind, a, b, env.RNG.ForSubsystem(sim.SubsystemSensor(ss.Name)))
			if err != nil {
				return nil, nil, fmt.Errorf("sensor %s: %w", ss.Name, err)
			}
			s := entity.NewSensor(env, ss.Name, ss.Type, ss.UserID, ss.AppID, dist)
			s.SetGatewayDeviceID(d.ID())
			s.SetLatency(ss.Latency)
			sensors = append(sensors, s)
		}
		for _, as := range spec.Actuators {
			a := entity.NewActuator(env, as.Name, as.UserID, as.AppID, as.Type)
			a.SetGatewayDeviceID(d.ID())
			a.SetLatency(as.Latency)
			actuators = append(actuators, a)
		}
	}

	if cfg.CloudName == "" {
		cfg.CloudName = sc.CloudName
	}
	c := controller.New(env, sc.Name, devices, sensors, actuators, cfg)

	for _, spec := range sc.Applications {
		app := buildApplication(spec)
		mp, err := placement.NewMappingPlacement(devices, app, buildMapping(spec), placement.WithMissPolicy(missPolicy(spec.MissPolicy)))
		if err != nil {
			return nil, nil, err
		}
		for _, m := range mp.Misses() {
			logrus.Warnf("application %s: placement skipped %s", app.AppID, m)
		}
		logrus.Infof("application %s: %d module instances on %d devices", app.AppID, mp.TotalInstances(), len(mp.DeviceToModules()))
		if err := c.SubmitApplicationAfter(app, spec.LaunchDelay, mp); err != nil {
			return nil, nil, err
		}
	}
	return c, env, nil
}

func buildApplication(spec AppSpec) *application.Application {
	app := application.New(spec.ID, spec.UserID)
	app.GeoCoverage = spec.GeoCoverage
	for _, m := range spec.Modules {
		app.AddModule(&application.AppModule{Name: m.Name, RAM: m.RAM, MIPS: m.MIPS, Size: m.Size, BW: m.BW, NumPEs: 1})
	}
	for _, e := range spec.Edges {
		app.AddEdge(&application.AppEdge{
			Source:         e.Source,
			Destination:    e.Destination,
			Periodicity:    e.Periodicity,
			TupleCPULength: e.CPULength,
			TupleNwLength:  e.NwLength,
			TupleType:      e.TupleType,
			Direction:      directions[e.Direction],
			Type:           edgeTypes[e.Type],
		})
	}
	for _, tm := range spec.TupleMappings {
		selectivity := 1.0
		if tm.Selectivity != nil {
			selectivity = *tm.Selectivity
		}
		app.AddTupleMapping(tm.Module, tm.Input, tm.Output, selectivity)
	}
	for _, l := range spec.Loops {
		app.AddLoop(l...)
	}
	return app
}

func buildMapping(spec AppSpec) *placement.ModuleMapping {
	mm := placement.NewModuleMapping()
	for _, p := range spec.Placement {
		for _, module := range p.Modules {
			if p.Unique {
				mm.AddModuleToDeviceIfNotPresent(module, p.Device)
			} else {
				mm.AddModuleToDevice(module, p.Device)
			}
		}
	}
	return mm
}

func missPolicy(name string) placement.MissPolicy {
	if name == "fail" {
		return placement.MissFail
	}
	return placement.MissIgnore
}
