package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tzaika/iFogSim/sim/application"
	"github.com/tzaika/iFogSim/sim/entity"
)

// Scenario is the YAML description of one simulation run.
// Every section must be listed here to satisfy KnownFields(true) strict parsing.
type Scenario struct {
	Name                   string       `yaml:"name"`
	Seed                   *int64       `yaml:"seed"`
	MaxSimulationTime      float64      `yaml:"max_simulation_time"`
	ResourceManageInterval float64      `yaml:"resource_manage_interval"`
	CloudName              string       `yaml:"cloud"`
	Devices                []DeviceSpec `yaml:"devices"`
	Applications           []AppSpec    `yaml:"applications"`
}

// DeviceSpec is a fog device. Unset parameters keep their defaults from
// entity.DefaultDeviceParameters.
type DeviceSpec struct {
	entity.DeviceParameters `yaml:",inline"`
	Parent                  string         `yaml:"parent"`
	Sensors                 []SensorSpec   `yaml:"sensors"`
	Actuators               []ActuatorSpec `yaml:"actuators"`
}

// UnmarshalYAML decodes on top of the default device parameters.
func (d *DeviceSpec) UnmarshalYAML(value *yaml.Node) error {
	type plain DeviceSpec
	p := plain{DeviceParameters: entity.DefaultDeviceParameters()}
	p.Name = ""
	if err := decodeNodeStrict(value, &p); err != nil {
		return err
	}
	*d = DeviceSpec(p)
	return nil
}

// SensorSpec is a sensor attached to the enclosing device.
type SensorSpec struct {
	Name         string           `yaml:"name"`
	Type         string           `yaml:"type"`
	AppID        string           `yaml:"app"`
	UserID       int              `yaml:"user_id"`
	Latency      float64          `yaml:"latency"`
	Distribution DistributionSpec `yaml:"distribution"`
}

// DistributionSpec selects a sensor's inter-transmission time.
// deterministic uses Value, uniform uses Min and Max, normal uses Mean and StdDev.
type DistributionSpec struct {
	Kind   string  `yaml:"kind"`
	Value  float64 `yaml:"value"`
	Min    float64 `yaml:"min"`
	Max    float64 `yaml:"max"`
	Mean   float64 `yaml:"mean"`
	StdDev float64 `yaml:"stdev"`
}

// Params returns the two positional parameters for entity.NewDistribution.
func (ds DistributionSpec) Params() (float64, float64) {
	switch ds.Kind {
	case "uniform":
		return ds.Min, ds.Max
	case "normal":
		return ds.Mean, ds.StdDev
	}
	return ds.Value, 0
}

// ActuatorSpec is an actuator attached to the enclosing device.
type ActuatorSpec struct {
	Name    string  `yaml:"name"`
	Type    string  `yaml:"type"`
	AppID   string  `yaml:"app"`
	UserID  int     `yaml:"user_id"`
	Latency float64 `yaml:"latency"`
}

// AppSpec is an application graph with its launch delay and placement.
type AppSpec struct {
	ID            string                  `yaml:"id"`
	UserID        int                     `yaml:"user_id"`
	LaunchDelay   float64                 `yaml:"launch_delay"`
	GeoCoverage   application.GeoCoverage `yaml:"geo_coverage"`
	Modules       []ModuleSpec            `yaml:"modules"`
	Edges         []EdgeSpec              `yaml:"edges"`
	TupleMappings []TupleMappingSpec      `yaml:"tuple_mappings"`
	Loops         [][]string              `yaml:"loops"`
	Placement     []PlacementSpec         `yaml:"placement"`
	MissPolicy    string                  `yaml:"miss_policy"` // "ignore" (default) or "fail"
}

type ModuleSpec struct {
	Name string  `yaml:"name"`
	RAM  int     `yaml:"ram"`
	MIPS float64 `yaml:"mips"`
	Size int64   `yaml:"size"`
	BW   int64   `yaml:"bw"`
}

type EdgeSpec struct {
	Source      string  `yaml:"source"`
	Destination string  `yaml:"destination"`
	Periodicity float64 `yaml:"periodicity"`
	CPULength   float64 `yaml:"cpu_length"`
	NwLength    float64 `yaml:"nw_length"`
	TupleType   string  `yaml:"tuple_type"`
	Direction   string  `yaml:"direction"` // "up" or "down"
	Type        string  `yaml:"type"`      // "sensor", "module" or "actuator"
}

type TupleMappingSpec struct {
	Module      string   `yaml:"module"`
	Input       string   `yaml:"input"`
	Output      string   `yaml:"output"`
	Selectivity *float64 `yaml:"selectivity"` // defaults to 1
}

// PlacementSpec pins modules to a device by name. With Unique set a module
// already mapped to the device is not added again.
type PlacementSpec struct {
	Device  string   `yaml:"device"`
	Modules []string `yaml:"modules"`
	Unique  bool     `yaml:"unique"`
}

var (
	edgeTypes = map[string]application.EdgeType{
		"sensor":   application.EdgeSensor,
		"module":   application.EdgeModule,
		"actuator": application.EdgeActuator,
	}
	directions = map[string]application.Direction{
		"up":   application.Up,
		"down": application.Down,
	}
	missPolicies = map[string]bool{"": true, "ignore": true, "fail": true}
)

// LoadScenario reads and validates a scenario file.
// Uses strict field checking: typos must cause errors.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&sc); err != nil {
		return nil, fmt.Errorf("parsing scenario YAML: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func decodeNodeStrict(node *yaml.Node, out any) error {
	data, err := yaml.Marshal(node)
	if err != nil {
		return err
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	return decoder.Decode(out)
}

// Validate checks the references and enumerations a scenario relies on.
// All problems are reported together.
func (sc *Scenario) Validate() error {
	var errs []error
	if sc.Name == "" {
		errs = append(errs, errors.New("scenario: name is required"))
	}
	if sc.MaxSimulationTime < 0 {
		errs = append(errs, fmt.Errorf("scenario: max_simulation_time must be >= 0, got %g", sc.MaxSimulationTime))
	}
	if sc.ResourceManageInterval < 0 {
		errs = append(errs, fmt.Errorf("scenario: resource_manage_interval must be >= 0, got %g", sc.ResourceManageInterval))
	}

	names := make(map[string]bool, len(sc.Devices))
	for _, d := range sc.Devices {
		if d.Name == "" {
			errs = append(errs, errors.New("device: name is required"))
			continue
		}
		if names[d.Name] {
			errs = append(errs, fmt.Errorf("device %s: duplicate name", d.Name))
		}
		names[d.Name] = true
	}
	if len(sc.Devices) == 0 {
		errs = append(errs, errors.New("scenario: at least one device is required"))
	}

	apps := make(map[string]bool, len(sc.Applications))
	for _, a := range sc.Applications {
		if a.ID == "" {
			errs = append(errs, errors.New("application: id is required"))
			continue
		}
		if apps[a.ID] {
			errs = append(errs, fmt.Errorf("application %s: duplicate id", a.ID))
		}
		apps[a.ID] = true
		errs = append(errs, a.validate()...)
	}

	for _, d := range sc.Devices {
		if d.Parent != "" && !names[d.Parent] {
			errs = append(errs, fmt.Errorf("device %s: unknown parent %q", d.Name, d.Parent))
		}
		if d.Parent == d.Name && d.Name != "" {
			errs = append(errs, fmt.Errorf("device %s: cannot be its own parent", d.Name))
		}
		for _, s := range d.Sensors {
			if s.Name == "" || s.Type == "" {
				errs = append(errs, fmt.Errorf("device %s: sensor needs name and type", d.Name))
			}
			if !apps[s.AppID] {
				errs = append(errs, fmt.Errorf("sensor %s: unknown application %q", s.Name, s.AppID))
			}
		}
		for _, a := range d.Actuators {
			if a.Name == "" || a.Type == "" {
				errs = append(errs, fmt.Errorf("device %s: actuator needs name and type", d.Name))
			}
			if !apps[a.AppID] {
				errs = append(errs, fmt.Errorf("actuator %s: unknown application %q", a.Name, a.AppID))
			}
		}
	}
	errs = append(errs, parentCycles(sc.Devices)...)
	return errors.Join(errs...)
}

// parentCycles reports every device whose parent chain leads back to
// itself. Self-parents are reported by Validate directly.
func parentCycles(devices []DeviceSpec) []error {
	parent := make(map[string]string, len(devices))
	for _, d := range devices {
		if d.Name != "" && d.Parent != "" {
			parent[d.Name] = d.Parent
		}
	}
	var errs []error
	for _, d := range devices {
		if d.Parent == "" || d.Parent == d.Name {
			continue
		}
		seen := map[string]bool{d.Name: true}
		for cur := d.Parent; cur != ""; cur = parent[cur] {
			if cur == d.Name {
				errs = append(errs, fmt.Errorf("device %s: parent chain forms a cycle", d.Name))
				break
			}
			if seen[cur] {
				break
			}
			seen[cur] = true
		}
	}
	return errs
}

func (a AppSpec) validate() []error {
	var errs []error
	if a.LaunchDelay < 0 {
		errs = append(errs, fmt.Errorf("application %s: launch_delay must be >= 0", a.ID))
	}
	if !missPolicies[a.MissPolicy] {
		errs = append(errs, fmt.Errorf("application %s: unknown miss_policy %q", a.ID, a.MissPolicy))
	}
	for _, e := range a.Edges {
		if _, ok := edgeTypes[e.Type]; !ok {
			errs = append(errs, fmt.Errorf("application %s: edge %s->%s has unknown type %q", a.ID, e.Source, e.Destination, e.Type))
		}
		if _, ok := directions[e.Direction]; !ok {
			errs = append(errs, fmt.Errorf("application %s: edge %s->%s has unknown direction %q", a.ID, e.Source, e.Destination, e.Direction))
		}
	}
	for _, tm := range a.TupleMappings {
		if tm.Selectivity != nil && (*tm.Selectivity < 0 || *tm.Selectivity > 1) {
			errs = append(errs, fmt.Errorf("application %s: selectivity of %s %s->%s must be in [0,1]", a.ID, tm.Module, tm.Input, tm.Output))
		}
	}
	for i, l := range a.Loops {
		if len(l) < 2 {
			errs = append(errs, fmt.Errorf("application %s: loop %d needs at least two elements", a.ID, i+1))
		}
	}
	return errs
}
