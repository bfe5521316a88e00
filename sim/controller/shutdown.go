package controller

import (
	"github.com/sirupsen/logrus"

	"github.com/tzaika/iFogSim/sim/monitor"
	"github.com/tzaika/iFogSim/sim/report"
)

// shutdown halts the clock, captures the results and writes the reports.
// Report failures are logged by the writer and do not abort the others.
func (c *Controller) shutdown() {
	c.env.Engine.Stop()
	c.state = Stopped

	snap := c.buildSnapshot()
	c.snapshot = &snap

	if c.reports != nil {
		if errs := c.reports.WriteAll(snap); len(errs) > 0 {
			logrus.Warnf("controller %s: %d of 3 reports failed", c.name, len(errs))
		}
	}
	if c.cfg.Summary != nil {
		report.PrintSummary(c.cfg.Summary, snap, c.cfg.CloudName)
	}
}

// buildSnapshot reads every aggregate once. Loop rows cover each declared
// loop of every stored application, in submission then declaration order;
// unobserved loops report a zero delay.
func (c *Controller) buildSnapshot() report.Snapshot {
	tk := c.env.Monitor.Time
	snap := report.Snapshot{
		Name:              c.name,
		ExecutionTime:     tk.ExecutionTime(),
		NetworkUsage:      c.env.Monitor.Network.Total(),
		NetworkTransfers:  c.env.Monitor.Network.Transfers(),
		MaxSimulationTime: c.cfg.MaxSimulationTime,
	}
	for _, d := range c.devices {
		snap.Devices = append(snap.Devices, report.DeviceRow{
			Name:   d.Name(),
			Energy: d.EnergyConsumption(),
			Cost:   d.TotalCost(),
		})
	}
	for _, appID := range c.appOrder {
		for _, loop := range c.applications[appID].Loops {
			key := monitor.LoopKey{AppID: appID, LoopID: loop.ID}
			delay, ok := tk.LoopAverage(key)
			snap.Loops = append(snap.Loops, report.LoopRow{
				Label:    loop.String(),
				Delay:    delay,
				Observed: ok,
				Samples:  len(tk.LoopTupleIDs(key)),
			})
		}
	}
	for _, tt := range tk.TupleTypes() {
		cpu, _ := tk.TupleAverageCPU(tt)
		snap.Tuples = append(snap.Tuples, report.TupleRow{Type: tt, CPU: cpu})
	}
	return snap
}
