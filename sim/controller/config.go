package controller

import (
	"fmt"
	"io"

	"github.com/tzaika/iFogSim/sim/trace"
)

// Default timing, in virtual time units.
const (
	DefaultResourceManageInterval = 100.0
	DefaultMaxSimulationTime      = 10000.0
	DefaultResultsDir             = "results"
)

// Config controls a Controller.
type Config struct {
	// ResourceManageInterval is the period of the CONTROLLER_RESOURCE_MANAGE tick.
	ResourceManageInterval float64
	// MaxSimulationTime is when STOP_SIMULATION fires, relative to start.
	MaxSimulationTime float64
	// ResultsDir receives the report files. Empty disables file output.
	ResultsDir string
	// Trace enables decision tracing.
	Trace trace.TraceConfig
	// Summary, when set, receives a console digest at shutdown.
	Summary io.Writer
	// CloudName names the device whose cost the summary singles out.
	CloudName string
}

// DefaultConfig returns the standard timing with reports under ./results.
func DefaultConfig() Config {
	return Config{
		ResourceManageInterval: DefaultResourceManageInterval,
		MaxSimulationTime:      DefaultMaxSimulationTime,
		ResultsDir:             DefaultResultsDir,
		CloudName:              "cloud",
	}
}

// Validate rejects timing that cannot drive a run.
func (c Config) Validate() error {
	if c.ResourceManageInterval <= 0 {
		return fmt.Errorf("resource manage interval must be > 0, got %g", c.ResourceManageInterval)
	}
	if c.MaxSimulationTime < 0 {
		return fmt.Errorf("max simulation time must be >= 0, got %g", c.MaxSimulationTime)
	}
	return nil
}
