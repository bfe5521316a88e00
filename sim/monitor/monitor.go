// Package monitor holds the aggregators shared by every entity of one
// simulation run: geo-coverage per application, network usage and the
// TimeKeeper. A Context is constructed once per run and passed explicitly.
package monitor

import (
	"time"

	"github.com/tzaika/iFogSim/sim/application"
)

// Context is the per-run aggregator state.
//
// Thread-safety: NOT thread-safe. Written only from inside event handlers,
// which the engine runs one at a time.
type Context struct {
	geoCoverage map[string]application.GeoCoverage
	Network     *NetworkUsage
	Time        *TimeKeeper
}

// NewContext creates empty aggregators. The wall-clock start is taken now;
// call Time.SetStart to override it.
func NewContext() *Context {
	return &Context{
		geoCoverage: make(map[string]application.GeoCoverage),
		Network:     &NetworkUsage{},
		Time:        NewTimeKeeper(time.Now()),
	}
}

// SetGeoCoverage records the coverage of appID, replacing any previous value.
func (c *Context) SetGeoCoverage(appID string, g application.GeoCoverage) {
	c.geoCoverage[appID] = g
}

// GeoCoverage returns the coverage recorded for appID.
func (c *Context) GeoCoverage(appID string) (application.GeoCoverage, bool) {
	g, ok := c.geoCoverage[appID]
	return g, ok
}

// NetworkUsage accumulates latency × bytes over every inter-device transfer.
type NetworkUsage struct {
	total     float64
	transfers int64
}

// SendingTuple records one transfer of size bytes over a path of the given latency.
func (n *NetworkUsage) SendingTuple(latency, size float64) {
	n.total += latency * size
	n.transfers++
}

// Total returns the accumulated usage.
func (n *NetworkUsage) Total() float64 {
	return n.total
}

// Transfers returns how many transfers were recorded.
func (n *NetworkUsage) Transfers() int64 {
	return n.transfers
}
