package controller

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tzaika/iFogSim/sim/entity"
	"github.com/tzaika/iFogSim/sim/placement"
	"github.com/tzaika/iFogSim/sim/trace"
)

func TestNew_LinksDevicesIntoTree(t *testing.T) {
	// GIVEN cloud <- gateway <- mobile
	f := newThreeTier(t, "app")

	// WHEN a controller takes ownership of them
	c := New(f.env, "demo", f.devices, f.sensors, f.actuator, testConfig(10, 5))

	// THEN every child is recorded by its parent with its uplink latency
	assert.Equal(t, []int{f.gateway.ID()}, f.cloud.ChildrenIDs())
	assert.Equal(t, []int{f.mobile.ID()}, f.gateway.ChildrenIDs())
	assert.Empty(t, f.mobile.ChildrenIDs())
	l, ok := f.gateway.ChildLatency(f.mobile.ID())
	require.True(t, ok)
	assert.Equal(t, 2.0, l)

	assert.Equal(t, []int{f.cloud.ID()}, c.Topology().Roots)
	assert.Empty(t, c.Topology().Unresolved)
	assert.Equal(t, c.ID(), f.cloud.ControllerID())
	assert.Equal(t, Idle, c.State())
}

func TestNew_UnknownParentIsTolerated(t *testing.T) {
	env := entity.NewEnv(1)
	root := device(env, "root", 1000, 0)
	orphan := device(env, "orphan", 1000, 3)
	require.NoError(t, orphan.SetParentID(99))

	c := New(env, "demo", []*entity.FogDevice{root, orphan}, nil, nil, testConfig(10, 5))

	require.Len(t, c.Topology().Unresolved, 1)
	assert.Equal(t, orphan.ID(), c.Topology().Unresolved[0].DeviceID)
	assert.ElementsMatch(t, []int{root.ID(), orphan.ID()}, c.Topology().Roots)
	assert.Empty(t, root.ChildrenIDs())
}

func TestSubmitApplication_BindsSensorsAndActuators(t *testing.T) {
	// GIVEN a sensor for the app and one for another app
	f := newThreeTier(t, "app")
	other := entity.NewSensor(f.env, "cam-x", "CAM", 1, "other", entity.Deterministic{Value: 5})
	lowercase := entity.NewActuator(f.env, "display-1", 1, "app", "display")
	c := New(f.env, "demo", f.devices, append(f.sensors, other), append(f.actuator, lowercase), testConfig(10, 5))
	app := sensingApp("app")

	// WHEN the app is submitted
	require.NoError(t, c.SubmitApplication(app, mobileAndCloud(t, f, app)))

	// THEN only matching entities are bound
	assert.Same(t, app, f.camera.App())
	assert.Same(t, app, f.display.App())
	assert.Nil(t, other.App())

	// THEN the actuator edge source subscribes every actuator of the destination type
	client, _ := app.ModuleByName("client")
	assert.Equal(t, []int{f.display.ID(), lowercase.ID()}, client.SubscribedActuators("SHOW"))

	got, ok := c.Application("app")
	require.True(t, ok)
	assert.Same(t, app, got)
	delay, ok := c.LaunchDelay("app")
	require.True(t, ok)
	assert.Zero(t, delay)
	_, ok = f.env.Monitor.GeoCoverage("app")
	assert.True(t, ok)
}

func TestSubmitApplication_Rejects(t *testing.T) {
	f := newThreeTier(t, "app")
	c := New(f.env, "demo", f.devices, f.sensors, f.actuator, testConfig(10, 5))
	app := sensingApp("app")

	err := c.SubmitApplication(app, nil)
	assert.ErrorIs(t, err, ErrNilPlacement)

	err = c.SubmitApplicationAfter(app, -1, mobileAndCloud(t, f, app))
	assert.Error(t, err)
	assert.Empty(t, c.Applications())
}

func TestSubmission_DispatchesActiveAppThenSubmitAndLaunch(t *testing.T) {
	// GIVEN three devices and a placement touching two of them
	f := newThreeTier(t, "app")
	cfg := testConfig(1, 5)
	cfg.Trace = trace.TraceConfig{Level: trace.TraceLevelDecisions}
	c := New(f.env, "demo", f.devices, f.sensors, f.actuator, cfg)
	app := sensingApp("app")
	require.NoError(t, c.SubmitApplication(app, mobileAndCloud(t, f, app)))

	// WHEN the run starts
	f.env.Engine.Run()

	// THEN N ACTIVE_APP_UPDATE come first, then APP_SUBMIT and LAUNCH_MODULE per assignment
	var tags []string
	for _, d := range c.Trace().Dispatches {
		tags = append(tags, d.Tag)
	}
	assert.Equal(t, []string{
		"ACTIVE_APP_UPDATE", "ACTIVE_APP_UPDATE", "ACTIVE_APP_UPDATE",
		"APP_SUBMIT", "LAUNCH_MODULE",
		"APP_SUBMIT", "LAUNCH_MODULE",
	}, tags)
	assert.Equal(t, f.mobile.ID(), c.Trace().Dispatches[3].DeviceID)
	assert.Equal(t, "analytics", c.Trace().Dispatches[6].ModuleName)

	// THEN launches carry the identity of the instance they start
	launches := []trace.DispatchRecord{c.Trace().Dispatches[4], c.Trace().Dispatches[6]}
	for _, rec := range launches {
		assert.NotEmpty(t, rec.InstanceID)
	}
	assert.NotEqual(t, launches[0].InstanceID, launches[1].InstanceID)
	assert.Empty(t, c.Trace().Dispatches[3].InstanceID)

	// THEN every device knows the app but only placed devices run it
	for _, d := range f.devices {
		_, ok := d.ActiveApp("app")
		assert.True(t, ok, d.Name())
	}
	assert.True(t, f.cloud.Deployed("app"))
	assert.True(t, f.mobile.Deployed("app"))
	assert.False(t, f.gateway.Deployed("app"))
	assert.Len(t, f.mobile.Instances(), 1)
	assert.Empty(t, f.gateway.Instances())

	assert.Len(t, c.Trace().Placements, 2)
}

func TestSubmission_ReplicasOnOneDeviceAreDistinguishable(t *testing.T) {
	// GIVEN analytics mapped twice onto the cloud
	f := newThreeTier(t, "app")
	cfg := testConfig(1, 5)
	cfg.Trace = trace.TraceConfig{Level: trace.TraceLevelDecisions}
	c := New(f.env, "demo", f.devices, f.sensors, f.actuator, cfg)
	app := sensingApp("app")
	mm := placement.NewModuleMapping()
	mm.AddModuleToDevice("analytics", "cloud")
	mm.AddModuleToDevice("analytics", "cloud")
	mp, err := placement.NewMappingPlacement(f.devices, app, mm)
	require.NoError(t, err)
	require.NoError(t, c.SubmitApplication(app, mp))

	// WHEN the run starts
	f.env.Engine.Run()

	// THEN both launches name analytics with different instance ids
	var ids []string
	for _, d := range c.Trace().Dispatches {
		if d.Tag == "LAUNCH_MODULE" {
			assert.Equal(t, "analytics", d.ModuleName)
			assert.Equal(t, f.cloud.ID(), d.DeviceID)
			ids = append(ids, d.InstanceID)
		}
	}
	require.Len(t, ids, 2)
	assert.NotEqual(t, ids[0], ids[1])
	assert.Equal(t, 2, trace.Summarize(c.Trace()).InstancesLaunched)
	require.Len(t, f.cloud.Instances(), 2)
	assert.Equal(t, ids[0], f.cloud.Instances()[0].ID.String())
}

func TestResourceManageTick_Cadence(t *testing.T) {
	tests := []struct {
		name     string
		maxTime  float64
		interval float64
		want     int64
	}{
		{"exact multiple fires at stop instant", 1000, 100, 10},
		{"partial interval", 250, 100, 2},
		{"horizon shorter than interval", 99, 100, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := entity.NewEnv(1)
			d := device(env, "cloud", 1000, 0)
			c := New(env, "demo", []*entity.FogDevice{d}, nil, nil, testConfig(tc.maxTime, tc.interval))
			var at []float64
			c.SetResourceManager(ResourceManagerFunc(func(_ *Controller, now float64) {
				at = append(at, now)
			}))

			env.Engine.Run()

			assert.Equal(t, tc.want, c.ResourceTicks())
			for k, now := range at {
				assert.Equal(t, float64(k+1)*tc.interval, now)
			}
			assert.Equal(t, tc.maxTime, env.Engine.Clock())
		})
	}
}

func TestDelayedSubmission(t *testing.T) {
	// GIVEN an app launched 30 time units in
	f := newThreeTier(t, "app")
	c := New(f.env, "demo", f.devices, f.sensors, f.actuator, testConfig(50, 10))
	app := sensingApp("app")
	require.NoError(t, c.SubmitApplicationAfter(app, 30, mobileAndCloud(t, f, app)))

	deployedAt := map[float64]bool{}
	c.SetResourceManager(ResourceManagerFunc(func(_ *Controller, now float64) {
		deployedAt[now] = f.cloud.Deployed("app")
	}))

	// WHEN the run completes
	f.env.Engine.Run()

	// THEN the devices only see the app after the delay
	assert.False(t, deployedAt[20])
	assert.True(t, deployedAt[40])
	assert.NoError(t, c.Err())
}

func TestSubmitWhileRunning_ActivatesSensors(t *testing.T) {
	// GIVEN no application at start and one submitted on the first tick
	f := newThreeTier(t, "app")
	c := New(f.env, "demo", f.devices, f.sensors, f.actuator, testConfig(40, 10))
	app := sensingApp("app")
	submitted := false
	c.SetResourceManager(ResourceManagerFunc(func(c *Controller, now float64) {
		if submitted {
			return
		}
		submitted = true
		require.NoError(t, c.SubmitApplication(app, mobileAndCloud(t, f, app)))
	}))

	// WHEN the run completes
	f.env.Engine.Run()

	// THEN the camera emits every 5 units from t=10 through t=40
	require.NoError(t, c.Err())
	assert.Same(t, app, f.camera.App())
	assert.Equal(t, int64(6), f.camera.Emitted())
	assert.True(t, f.cloud.Deployed("app"))
}

func TestMissingPlacement_FailsFast(t *testing.T) {
	// GIVEN an app whose placement binding is gone
	f := newThreeTier(t, "app")
	c := New(f.env, "demo", f.devices, f.sensors, f.actuator, testConfig(100, 10))
	app := sensingApp("app")
	require.NoError(t, c.SubmitApplication(app, mobileAndCloud(t, f, app)))
	delete(c.placements, "app")

	// WHEN the run starts
	f.env.Engine.Run()

	// THEN the run stops with a configuration error and no reports
	assert.ErrorIs(t, c.Err(), ErrMissingPlacement)
	assert.Contains(t, c.Err().Error(), "app")
	assert.Equal(t, Stopped, c.State())
	assert.Nil(t, c.Snapshot())
	assert.Zero(t, c.ResourceTicks())
	assert.ErrorIs(t, c.SubmitApplication(app, mobileAndCloud(t, f, app)), ErrStopped)
}

func TestStart_InvalidIntervalFails(t *testing.T) {
	f := newThreeTier(t, "app")
	c := New(f.env, "demo", f.devices, f.sensors, f.actuator, testConfig(100, 0))

	f.env.Engine.Run()

	require.Error(t, c.Err())
	assert.Contains(t, c.Err().Error(), "resource manage interval")
	assert.Equal(t, Stopped, c.State())
	assert.Zero(t, c.ResourceTicks())
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.Error(t, testConfig(100, -1).Validate())
	assert.Error(t, testConfig(-5, 10).Validate())
}

func TestProcessAppSubmit_UnknownApplication(t *testing.T) {
	f := newThreeTier(t, "app")
	c := New(f.env, "demo", f.devices, f.sensors, f.actuator, testConfig(100, 10))

	err := c.processAppSubmit(sensingApp("ghost"))

	assert.ErrorIs(t, err, ErrMissingPlacement)
	assert.Contains(t, err.Error(), "ghost")
}

func TestRun_EndToEnd_WritesReports(t *testing.T) {
	// GIVEN a sensing app spanning mobile and cloud
	f := newThreeTier(t, "app")
	cfg := testConfig(1000, 100)
	cfg.ResultsDir = t.TempDir()
	c := New(f.env, "demo", f.devices, f.sensors, f.actuator, cfg)
	app := sensingApp("app")
	require.NoError(t, c.SubmitApplication(app, mobileAndCloud(t, f, app)))

	// WHEN the simulation runs to its horizon
	f.env.Engine.Run()

	// THEN the run stops cleanly at the horizon
	require.NoError(t, c.Err())
	assert.Equal(t, Stopped, c.State())
	assert.Equal(t, int64(10), c.ResourceTicks())
	snap := c.Snapshot()
	require.NotNil(t, snap)

	// THEN devices are reported in order with non-negative totals
	require.Len(t, snap.Devices, 3)
	assert.Equal(t, "cloud", snap.Devices[0].Name)
	for _, d := range snap.Devices {
		assert.Positive(t, d.Energy, d.Name)
		assert.GreaterOrEqual(t, d.Cost, 0.0, d.Name)
	}
	assert.Positive(t, snap.Devices[2].Cost)

	// THEN every declared loop has a row, in declaration order
	require.Len(t, snap.Loops, 2)
	assert.Equal(t, "[CAM, client, analytics, client, DISPLAY]", snap.Loops[0].Label)
	assert.True(t, snap.Loops[0].Observed)
	assert.Positive(t, snap.Loops[0].Delay)
	assert.Equal(t, "[analytics, nowhere]", snap.Loops[1].Label)
	assert.False(t, snap.Loops[1].Observed)
	assert.Zero(t, snap.Loops[1].Delay)

	assert.Positive(t, snap.NetworkUsage)
	assert.Positive(t, f.display.Received())
	assert.Equal(t, f.display.Received(), c.FinishedTuples())

	// THEN the three report files exist
	for _, name := range []string{"demo_header.txt", "demo_values.csv", "demo_totals.csv"} {
		_, err := os.Stat(filepath.Join(cfg.ResultsDir, name))
		assert.NoError(t, err, name)
	}
}

func TestRun_SameSeedSameResults(t *testing.T) {
	run := func() ([]float64, []float64) {
		f := newThreeTier(t, "app")
		c := New(f.env, "demo", f.devices, f.sensors, f.actuator, testConfig(500, 100))
		app := sensingApp("app")
		require.NoError(t, c.SubmitApplication(app, mobileAndCloud(t, f, app)))
		f.env.Engine.Run()
		var energy, loops []float64
		for _, d := range c.Snapshot().Devices {
			energy = append(energy, d.Energy)
		}
		for _, l := range c.Snapshot().Loops {
			loops = append(loops, l.Delay)
		}
		return energy, loops
	}
	e1, l1 := run()
	e2, l2 := run()
	assert.Equal(t, e1, e2)
	assert.Equal(t, l1, l2)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "Idle", Idle.String())
	assert.Equal(t, "Running", Running.String())
	assert.Equal(t, "Stopped", Stopped.String())
	assert.Equal(t, "State(7)", State(7).String())
}
