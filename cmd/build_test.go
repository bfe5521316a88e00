package cmd

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tzaika/iFogSim/sim/controller"
)

func TestBuild_WiresScenario(t *testing.T) {
	// GIVEN a parsed scenario
	sc, err := ParseScenario([]byte(minimalScenario))
	require.NoError(t, err)
	cfg := controller.DefaultConfig()
	cfg.ResultsDir = ""

	// WHEN it is built
	c, env, err := Build(sc, 7, cfg)
	require.NoError(t, err)

	// THEN devices keep declaration order and the edge hangs under the cloud
	require.Len(t, c.Devices(), 2)
	cloud, edge := c.Devices()[0], c.Devices()[1]
	assert.Equal(t, cloud.ID(), edge.ParentID())
	assert.Equal(t, []int{edge.ID()}, cloud.ChildrenIDs())

	// THEN sensors and actuators sit on their device and are bound to the app
	require.Len(t, c.Sensors(), 1)
	assert.Equal(t, edge.ID(), c.Sensors()[0].GatewayDeviceID())
	require.NotNil(t, c.Sensors()[0].App())
	require.Len(t, c.Actuators(), 1)
	assert.Equal(t, edge.ID(), c.Actuators()[0].GatewayDeviceID())

	// THEN the app is stored with its placement
	mp, ok := c.Placement("app")
	require.True(t, ok)
	assert.Len(t, mp.DeviceToModules(), 2)
	assert.NotNil(t, env.Engine)
}

func TestBuild_MissPolicyFail(t *testing.T) {
	sc, err := ParseScenario([]byte(minimalScenario))
	require.NoError(t, err)
	sc.Applications[0].MissPolicy = "fail"
	sc.Applications[0].Placement = append(sc.Applications[0].Placement, PlacementSpec{Device: "mars", Modules: []string{"client"}})

	_, _, err = Build(sc, 7, controller.DefaultConfig())

	assert.Error(t, err)
}

func TestBuild_RejectsInvalidTiming(t *testing.T) {
	sc, err := ParseScenario([]byte(minimalScenario))
	require.NoError(t, err)
	cfg := controller.DefaultConfig()
	cfg.ResourceManageInterval = 0

	_, _, err = Build(sc, 7, cfg)

	assert.ErrorContains(t, err, "resource manage interval")
}

func TestBuild_BadDistribution(t *testing.T) {
	sc, err := ParseScenario([]byte(minimalScenario))
	require.NoError(t, err)
	sc.Devices[1].Sensors[0].Distribution = DistributionSpec{Kind: "uniform", Min: 5, Max: 1}

	_, _, err = Build(sc, 7, controller.DefaultConfig())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "sensor cam")
}

func TestBuild_RunProducesReports(t *testing.T) {
	// GIVEN a built scenario writing into a temp dir
	sc, err := ParseScenario([]byte(minimalScenario))
	require.NoError(t, err)
	cfg := controller.DefaultConfig()
	cfg.MaxSimulationTime = sc.MaxSimulationTime
	cfg.ResultsDir = t.TempDir()
	c, env, err := Build(sc, 7, cfg)
	require.NoError(t, err)

	// WHEN it runs
	env.Engine.Run()

	// THEN it stops cleanly and writes all three reports
	require.NoError(t, c.Err())
	assert.Equal(t, controller.Stopped, c.State())
	for _, suffix := range []string{"_header.txt", "_values.csv", "_totals.csv"} {
		_, err := os.Stat(filepath.Join(cfg.ResultsDir, "tiny"+suffix))
		assert.NoError(t, err, suffix)
	}
	require.Len(t, c.Snapshot().Loops, 1)
	assert.Equal(t, "[CAM, client, backend, client, SCREEN]", c.Snapshot().Loops[0].Label)
}

// parseGerman reads a number written with "." grouping and "," decimals.
func parseGerman(t *testing.T, v string) float64 {
	t.Helper()
	f, err := strconv.ParseFloat(strings.ReplaceAll(strings.ReplaceAll(v, ".", ""), ",", "."), 64)
	require.NoError(t, err, v)
	return f
}

// readTotals splits a totals file into its total rows and its loop rows.
func readTotals(t *testing.T, path string) (totals map[string]float64, loops []string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	totals = make(map[string]float64)
	inLoops := false
	for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
		fields := strings.Split(line, " ; ")
		switch {
		case line == "loop ; delay":
			inLoops = true
		case inLoops:
			require.Len(t, fields, 2, line)
			parseGerman(t, fields[1])
			loops = append(loops, fields[0])
		case len(fields) == 2 && fields[0] != "total" && fields[0] != "":
			totals[fields[0]] = parseGerman(t, fields[1])
		}
	}
	return totals, loops
}

func TestBuild_SimpleDistributedEndToEnd(t *testing.T) {
	// GIVEN the cloud, local server and mobile node example
	sc, err := LoadScenario("../examples/simple_distributed.yaml")
	require.NoError(t, err)
	cfg := controller.DefaultConfig()
	cfg.MaxSimulationTime = sc.MaxSimulationTime
	cfg.ResourceManageInterval = sc.ResourceManageInterval
	cfg.ResultsDir = t.TempDir()
	c, env, err := Build(sc, 42, cfg)
	require.NoError(t, err)

	// WHEN it runs to completion
	env.Engine.Run()
	require.NoError(t, c.Err())

	// THEN the totals hold non-negative energy and cost
	totals, loops := readTotals(t, filepath.Join(cfg.ResultsDir, sc.Name+"_totals.csv"))
	require.Contains(t, totals, "energy")
	require.Contains(t, totals, "cost")
	assert.Positive(t, totals["energy"])
	assert.GreaterOrEqual(t, totals["cost"], 0.0)
	assert.GreaterOrEqual(t, totals["network"], 0.0)

	// THEN there is one loop row per declared loop, in declaration order
	app, ok := c.Application("PDM-Demonstrator")
	require.True(t, ok)
	var want []string
	for _, l := range app.Loops {
		want = append(want, l.String())
	}
	require.Len(t, want, 6)
	assert.Equal(t, want, loops)

	// THEN the sensor-side loops were actually observed
	snap := c.Snapshot()
	require.NotNil(t, snap)
	assert.True(t, snap.Loops[0].Observed)
	assert.Positive(t, snap.Loops[0].Samples)
	assert.Equal(t, int64(c.Config().MaxSimulationTime/c.Config().ResourceManageInterval), c.ResourceTicks())
}

func TestResolveConfig_ScenarioThenFlags(t *testing.T) {
	sc := &Scenario{Name: "x", MaxSimulationTime: 500, ResourceManageInterval: 25, CloudName: "dc"}

	// GIVEN no explicit flags, scenario values apply
	cfg := resolveConfig(runCmd, sc)
	assert.Equal(t, 500.0, cfg.MaxSimulationTime)
	assert.Equal(t, 25.0, cfg.ResourceManageInterval)
	assert.Equal(t, "dc", cfg.CloudName)

	// GIVEN an explicit flag, it wins over the scenario
	require.NoError(t, runCmd.Flags().Set("max-simulation-time", "42"))
	t.Cleanup(func() { maxSimulationTime = controller.DefaultMaxSimulationTime })
	cfg = resolveConfig(runCmd, sc)
	assert.Equal(t, 42.0, cfg.MaxSimulationTime)
	assert.Equal(t, 25.0, cfg.ResourceManageInterval)
}
