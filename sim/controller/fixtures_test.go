package controller

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tzaika/iFogSim/sim/application"
	"github.com/tzaika/iFogSim/sim/entity"
	"github.com/tzaika/iFogSim/sim/placement"
)

// threeTier is cloud <- gateway <- mobile, with one camera sensor and one
// display actuator attached to the mobile device.
type threeTier struct {
	env      *entity.Env
	cloud    *entity.FogDevice
	gateway  *entity.FogDevice
	mobile   *entity.FogDevice
	camera   *entity.Sensor
	display  *entity.Actuator
	devices  []*entity.FogDevice
	sensors  []*entity.Sensor
	actuator []*entity.Actuator
}

func device(env *entity.Env, name string, mips, latency float64) *entity.FogDevice {
	p := entity.DefaultDeviceParameters()
	p.Name = name
	p.MIPSPerPE = mips
	p.UplinkLatency = latency
	p.SchedulingInterval = 10
	return entity.NewFogDevice(env, p)
}

func newThreeTier(t *testing.T, appID string) *threeTier {
	t.Helper()
	env := entity.NewEnv(42)
	f := &threeTier{env: env}
	f.cloud = device(env, "cloud", 44800, 0)
	f.gateway = device(env, "gateway", 2800, 100)
	f.mobile = device(env, "mobile", 1000, 2)
	require.NoError(t, f.gateway.SetParentID(f.cloud.ID()))
	require.NoError(t, f.mobile.SetParentID(f.gateway.ID()))

	f.camera = entity.NewSensor(env, "cam-0", "CAM", 1, appID, entity.Deterministic{Value: 5})
	f.camera.SetGatewayDeviceID(f.mobile.ID())
	f.camera.SetLatency(1)
	f.display = entity.NewActuator(env, "display-0", 1, appID, "DISPLAY")
	f.display.SetGatewayDeviceID(f.mobile.ID())
	f.display.SetLatency(1)

	f.devices = []*entity.FogDevice{f.cloud, f.gateway, f.mobile}
	f.sensors = []*entity.Sensor{f.camera}
	f.actuator = []*entity.Actuator{f.display}
	return f
}

// sensingApp is CAM -> client -> analytics -> client -> DISPLAY with one
// loop over the whole path and one loop that never closes.
func sensingApp(appID string) *application.Application {
	app := application.New(appID, 1)
	app.AddModule(&application.AppModule{Name: "client", RAM: 10, MIPS: 100})
	app.AddModule(&application.AppModule{Name: "analytics", RAM: 10, MIPS: 1000})

	app.AddEdge(&application.AppEdge{Source: "CAM", Destination: "client", TupleCPULength: 1000, TupleNwLength: 500,
		TupleType: "CAM", Direction: application.Up, Type: application.EdgeSensor})
	app.AddEdge(&application.AppEdge{Source: "client", Destination: "analytics", TupleCPULength: 2000, TupleNwLength: 500,
		TupleType: "RAW", Direction: application.Up, Type: application.EdgeModule})
	app.AddEdge(&application.AppEdge{Source: "analytics", Destination: "client", TupleCPULength: 100, TupleNwLength: 50,
		TupleType: "RESULT", Direction: application.Down, Type: application.EdgeModule})
	app.AddEdge(&application.AppEdge{Source: "client", Destination: "DISPLAY", TupleCPULength: 100, TupleNwLength: 50,
		TupleType: "SHOW", Direction: application.Down, Type: application.EdgeActuator})

	app.AddTupleMapping("client", "CAM", "RAW", 1)
	app.AddTupleMapping("analytics", "RAW", "RESULT", 1)
	app.AddTupleMapping("client", "RESULT", "SHOW", 1)

	app.AddLoop("CAM", "client", "analytics", "client", "DISPLAY")
	app.AddLoop("analytics", "nowhere")
	return app
}

// mobileAndCloud places client on mobile and analytics on cloud.
func mobileAndCloud(t *testing.T, f *threeTier, app *application.Application) *placement.MappingPlacement {
	t.Helper()
	mm := placement.NewModuleMapping()
	mm.AddModuleToDevice("client", "mobile")
	mm.AddModuleToDevice("analytics", "cloud")
	mp, err := placement.NewMappingPlacement(f.devices, app, mm)
	require.NoError(t, err)
	return mp
}

func testConfig(maxTime, interval float64) Config {
	cfg := DefaultConfig()
	cfg.MaxSimulationTime = maxTime
	cfg.ResourceManageInterval = interval
	cfg.ResultsDir = ""
	return cfg
}
