package entity

import (
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/tzaika/iFogSim/sim"
	"github.com/tzaika/iFogSim/sim/application"
)

// NoParent is the parent id of a root device.
const NoParent = -1

// FogDevice is a compute node in the device hierarchy.
//
// Hierarchy fields (parent, children, child latencies) are written once by
// the topology builder and read-only afterwards. Energy and cost are
// runtime counters advanced by the device's own accounting tick.
type FogDevice struct {
	id     int
	env    *Env
	params DeviceParameters
	fabric Fabric

	parentID     int
	parentSet    bool
	children     []int
	childLatency map[int]float64
	controllerID int

	activeApps map[string]*application.Application
	deployed   map[string]bool
	instances  []*application.ModuleInstance

	allocatedMIPS   float64
	energy          float64
	cost            float64
	lastUpdate      float64
	lastUtilization float64
	powerTimer      *sim.RepeatingTimer
	processed       int64

	handlers map[sim.EventTag]func(*sim.Event)
}

// NewFogDevice registers a device with env's engine. The device starts as
// a root (NoParent) until SetParentID is called.
func NewFogDevice(env *Env, params DeviceParameters) *FogDevice {
	d := &FogDevice{
		env:          env,
		params:       params,
		fabric:       localFabric{},
		parentID:     NoParent,
		childLatency: make(map[int]float64),
		controllerID: NoParent,
		activeApps:   make(map[string]*application.Application),
		deployed:     make(map[string]bool),
	}
	d.handlers = map[sim.EventTag]func(*sim.Event){
		sim.TagResourceMgmt:    d.handleResourceMgmt,
		sim.TagDeviceUpdate:    d.handleDeviceUpdate,
		sim.TagActiveAppUpdate: d.handleActiveAppUpdate,
		sim.TagAppSubmit:       d.handleAppSubmit,
		sim.TagLaunchModule:    d.handleLaunchModule,
		sim.TagTupleArrival:    d.handleTupleArrival,
	}
	d.id = env.Engine.Register(d)
	return d
}

func (d *FogDevice) ID() int                  { return d.id }
func (d *FogDevice) Name() string             { return d.params.Name }
func (d *FogDevice) Level() int               { return d.params.Level }
func (d *FogDevice) UplinkLatency() float64   { return d.params.UplinkLatency }
func (d *FogDevice) Params() DeviceParameters { return d.params }
func (d *FogDevice) ParentID() int            { return d.parentID }
func (d *FogDevice) ControllerID() int        { return d.controllerID }

// SetParentID sets the device's parent. The parent can be set only once.
func (d *FogDevice) SetParentID(id int) error {
	if d.parentSet && d.parentID != id {
		return fmt.Errorf("device %s: parent already set to %d", d.Name(), d.parentID)
	}
	d.parentID = id
	d.parentSet = true
	return nil
}

// SetControllerID records the controller that owns this device.
func (d *FogDevice) SetControllerID(id int) { d.controllerID = id }

// AttachFabric sets the path-latency oracle used for routing tuples.
func (d *FogDevice) AttachFabric(f Fabric) { d.fabric = f }

// AddChild links a child device reached over a link of the given latency.
func (d *FogDevice) AddChild(childID int, latency float64) {
	if _, ok := d.childLatency[childID]; !ok {
		d.children = append(d.children, childID)
	}
	d.childLatency[childID] = latency
}

// ChildrenIDs returns the child ids in link order.
func (d *FogDevice) ChildrenIDs() []int {
	return append([]int(nil), d.children...)
}

// ChildLatency returns the link latency to childID.
func (d *FogDevice) ChildLatency(childID int) (float64, bool) {
	l, ok := d.childLatency[childID]
	return l, ok
}

// ChildLatencies returns a copy of the child→latency map.
func (d *FogDevice) ChildLatencies() map[int]float64 {
	out := make(map[int]float64, len(d.childLatency))
	for k, v := range d.childLatency {
		out[k] = v
	}
	return out
}

// EnergyConsumption returns the energy accrued so far.
func (d *FogDevice) EnergyConsumption() float64 { return d.energy }

// TotalCost returns the monetary cost accrued so far.
func (d *FogDevice) TotalCost() float64 { return d.cost }

// Instances returns the module instances launched on this device.
func (d *FogDevice) Instances() []*application.ModuleInstance {
	return append([]*application.ModuleInstance(nil), d.instances...)
}

// ActiveApp returns the application announced under appID.
func (d *FogDevice) ActiveApp(appID string) (*application.Application, bool) {
	app, ok := d.activeApps[appID]
	return app, ok
}

// Deployed reports whether appID was submitted to this device.
func (d *FogDevice) Deployed(appID string) bool { return d.deployed[appID] }

// ProcessedTuples returns how many tuples were executed here.
func (d *FogDevice) ProcessedTuples() int64 { return d.processed }

// Utilization is the share of device MIPS allocated to launched modules.
func (d *FogDevice) Utilization() float64 {
	total := d.params.TotalMIPS()
	if total <= 0 {
		return 0
	}
	return math.Min(1, d.allocatedMIPS/total)
}

func (d *FogDevice) StartEntity() {}

func (d *FogDevice) ProcessEvent(ev *sim.Event) {
	h, ok := d.handlers[ev.Tag]
	if !ok {
		logrus.Debugf("[t=%g] %s ignores %s", ev.Time, d.Name(), ev.Tag)
		return
	}
	h(ev)
}

func (d *FogDevice) handleResourceMgmt(ev *sim.Event) {
	d.updateEnergy(ev.Time)
	if d.powerTimer == nil && d.params.SchedulingInterval > 0 {
		d.powerTimer = d.env.Engine.Repeat(d.id, d.id, d.params.SchedulingInterval, sim.TagDeviceUpdate, nil)
	}
}

func (d *FogDevice) handleDeviceUpdate(ev *sim.Event) {
	d.updateEnergy(ev.Time)
}

// updateEnergy accrues energy and cost at the utilisation held since the
// last update.
func (d *FogDevice) updateEnergy(now float64) {
	dt := now - d.lastUpdate
	if dt > 0 {
		d.energy += d.params.Power(d.lastUtilization) * dt
		d.cost += dt * d.params.RatePerMIPS * d.lastUtilization * d.params.TotalMIPS()
	}
	d.lastUpdate = now
	d.lastUtilization = d.Utilization()
}

func (d *FogDevice) handleActiveAppUpdate(ev *sim.Event) {
	app := ev.Data.(*application.Application)
	d.activeApps[app.AppID] = app
}

func (d *FogDevice) handleAppSubmit(ev *sim.Event) {
	app := ev.Data.(*application.Application)
	d.activeApps[app.AppID] = app
	d.deployed[app.AppID] = true
}

func (d *FogDevice) handleLaunchModule(ev *sim.Event) {
	inst := ev.Data.(*application.ModuleInstance)
	d.updateEnergy(ev.Time)
	d.instances = append(d.instances, inst)
	d.allocatedMIPS += inst.Module.MIPS
	d.lastUtilization = d.Utilization()
	d.env.Directory.Register(inst.AppID, inst.Name(), d.id)
	logrus.Debugf("[t=%g] %s launched %s/%s (instance %s)", ev.Time, d.Name(), inst.AppID, inst.Name(), inst.ID)
}

func (d *FogDevice) instanceOf(appID, module string) *application.ModuleInstance {
	for _, inst := range d.instances {
		if inst.AppID == appID && inst.Name() == module {
			return inst
		}
	}
	return nil
}

func (d *FogDevice) handleTupleArrival(ev *sim.Event) {
	t := ev.Data.(*Tuple)
	if inst := d.instanceOf(t.AppID, t.DestModule); inst != nil {
		d.execute(t, inst, ev.Time)
		return
	}
	d.route(t, 0)
}

// execute runs t on inst and emits its outputs once the CPU time elapses.
func (d *FogDevice) execute(t *Tuple, inst *application.ModuleInstance, now float64) {
	app, ok := d.activeApps[t.AppID]
	if !ok {
		logrus.Debugf("[t=%g] %s drops tuple %d: application %s not active", now, d.Name(), t.ID, t.AppID)
		return
	}
	tk := d.env.Monitor.Time
	t.visit(inst.Name(), now, app, tk)

	cpu := 0.0
	if inst.Module.MIPS > 0 {
		cpu = t.CPULength / inst.Module.MIPS
	}
	tk.RecordTupleCPU(t.Type, cpu)
	d.processed++

	rng := d.env.RNG.ForSubsystem(sim.SubsystemSelectivity)
	for _, tm := range app.MappingsFor(inst.Name(), t.Type) {
		if tm.Selectivity < 1 && rng.Float64() >= tm.Selectivity {
			continue
		}
		for _, edge := range app.EdgesFrom(inst.Name(), tm.OutputType) {
			out := t.derive(tk.NextTupleID(), inst.Name(), edge)
			switch edge.Type {
			case application.EdgeModule:
				d.route(out, cpu)
			case application.EdgeActuator:
				d.actuate(out, inst.Module, edge, cpu)
			}
		}
	}
}

// route sends t towards the nearest device hosting its destination module.
func (d *FogDevice) route(t *Tuple, after float64) {
	engine := d.env.Engine
	if d.instanceOf(t.AppID, t.DestModule) != nil {
		engine.ScheduleAfter(d.id, d.id, after, sim.TagTupleArrival, t)
		return
	}
	target, latency, ok := d.nearest(d.env.Directory.Hosts(t.AppID, t.DestModule))
	if !ok {
		logrus.Debugf("[t=%g] %s drops tuple %d: no reachable host for %s/%s",
			engine.Clock(), d.Name(), t.ID, t.AppID, t.DestModule)
		return
	}
	d.env.Monitor.Network.SendingTuple(latency, t.NwLength)
	engine.ScheduleAfter(d.id, target, after+latency, sim.TagTupleArrival, t)
}

// nearest picks the lowest-latency reachable device; ties go to the lower id.
func (d *FogDevice) nearest(candidates []int) (int, float64, bool) {
	sorted := append([]int(nil), candidates...)
	sort.Ints(sorted)
	best, bestLatency, found := 0, 0.0, false
	for _, id := range sorted {
		l, ok := d.fabric.PathLatency(d.id, id)
		if !ok {
			continue
		}
		if !found || l < bestLatency {
			best, bestLatency, found = id, l, true
		}
	}
	return best, bestLatency, found
}

func (d *FogDevice) actuate(t *Tuple, m *application.AppModule, edge *application.AppEdge, after float64) {
	engine := d.env.Engine
	for _, aid := range m.SubscribedActuators(edge.TupleType) {
		act, ok := engine.Entity(aid).(*Actuator)
		if !ok || act.AppID() != t.AppID {
			continue
		}
		latency, ok := d.fabric.PathLatency(d.id, act.GatewayDeviceID())
		if !ok {
			logrus.Debugf("[t=%g] %s cannot reach actuator %s", engine.Clock(), d.Name(), act.Name())
			continue
		}
		if latency > 0 {
			d.env.Monitor.Network.SendingTuple(latency, t.NwLength)
		}
		out := *t
		out.Hops = append([]Hop(nil), t.Hops...)
		engine.ScheduleAfter(d.id, aid, after+latency+act.Latency(), sim.TagTupleArrival, &out)
	}
}
