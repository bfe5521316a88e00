package controller

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/tzaika/iFogSim/sim"
	"github.com/tzaika/iFogSim/sim/application"
	"github.com/tzaika/iFogSim/sim/placement"
	"github.com/tzaika/iFogSim/sim/trace"
)

// processAppSubmit launches app on the devices chosen by its placement:
// every device learns the application graph, then each assigned device gets
// one APP_SUBMIT followed by one LAUNCH_MODULE per placed instance.
func (c *Controller) processAppSubmit(app *application.Application) error {
	engine := c.env.Engine
	logrus.Infof("[t=%g] Submitted application %s", engine.Clock(), app.AppID)

	c.env.Monitor.SetGeoCoverage(app.AppID, app.GeoCoverage)
	c.store(app)

	mp, ok := c.placements[app.AppID]
	if !ok || mp == nil {
		return fmt.Errorf("submitting %s: %w", app.AppID, ErrMissingPlacement)
	}

	for _, d := range c.devices {
		c.dispatch(d.ID(), sim.TagActiveAppUpdate, app, app.AppID)
	}

	for _, a := range mp.DeviceToModules() {
		c.dispatch(a.DeviceID, sim.TagAppSubmit, app, app.AppID)
		for _, inst := range a.Instances {
			c.dispatch(a.DeviceID, sim.TagLaunchModule, inst, app.AppID)
		}
	}
	return nil
}

func (c *Controller) dispatch(deviceID int, tag sim.EventTag, data any, appID string) {
	engine := c.env.Engine
	engine.ScheduleNow(c.id, deviceID, tag, data)
	if !c.trace.Config.Enabled() {
		return
	}
	rec := trace.DispatchRecord{
		Clock:    engine.Clock(),
		Tag:      tag.String(),
		AppID:    appID,
		DeviceID: deviceID,
	}
	if inst, ok := data.(*application.ModuleInstance); ok {
		rec.ModuleName = inst.Name()
		rec.InstanceID = inst.ID.String()
	}
	c.trace.RecordDispatch(rec)
}

// missReporter is implemented by placements that keep unresolved pairs.
type missReporter interface {
	Misses() []placement.Miss
}

func (c *Controller) recordPlacement(mp placement.ModulePlacement) {
	if !c.trace.Config.Enabled() {
		return
	}
	appID := mp.Application().AppID
	for _, a := range mp.DeviceToModules() {
		name := fmt.Sprintf("device-%d", a.DeviceID)
		if d, ok := c.DeviceByID(a.DeviceID); ok {
			name = d.Name()
		}
		for _, inst := range a.Instances {
			c.trace.RecordPlacement(trace.PlacementRecord{
				AppID:      appID,
				DeviceName: name,
				ModuleName: inst.Name(),
				Placed:     true,
			})
		}
	}
	if mr, ok := mp.(missReporter); ok {
		for _, m := range mr.Misses() {
			c.trace.RecordPlacement(trace.PlacementRecord{
				AppID:      appID,
				DeviceName: m.DeviceName,
				ModuleName: m.ModuleName,
				Reason:     string(m.Reason),
			})
		}
	}
}
