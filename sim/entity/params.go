package entity

// Device types recognised by scenarios.
const (
	DeviceTypeCloud       = "cloud"
	DeviceTypeFogNode     = "fcn"
	DeviceTypeClient      = "client"
	DeviceTypeGenericHost = "generic"
)

// DeviceParameters describes a fog device's capacity, power and cost.
// Zero-valued scenarios should start from DefaultDeviceParameters.
type DeviceParameters struct {
	Name                 string  `yaml:"name"`
	MIPSPerPE            float64 `yaml:"mips_per_pe"`
	NumPEs               int     `yaml:"pes"`
	RAM                  int     `yaml:"ram"`                // MB
	UplinkBandwidth      float64 `yaml:"uplink_bandwidth"`   // kbps
	DownlinkBandwidth    float64 `yaml:"downlink_bandwidth"` // kbps
	Level                int     `yaml:"level"`
	RatePerMIPS          float64 `yaml:"rate_per_mips"`
	MaxBusyPower         float64 `yaml:"max_busy_power"`     // W
	IdlePowerPercent     float64 `yaml:"idle_power_percent"` // share of MaxBusyPower drawn when idle
	DeviceType           string  `yaml:"device_type"`
	HostStorage          int64   `yaml:"host_storage"`
	HostBandwidth        int64   `yaml:"host_bandwidth"`
	Architecture         string  `yaml:"architecture"`
	OS                   string  `yaml:"os"`
	VMM                  string  `yaml:"vmm"`
	TimeZone             float64 `yaml:"time_zone"`
	ProcessingCost       float64 `yaml:"processing_cost"`
	MemoryCost           float64 `yaml:"memory_cost"`
	StorageCost          float64 `yaml:"storage_cost"`
	BandwidthCost        float64 `yaml:"bandwidth_cost"`
	SchedulingInterval   float64 `yaml:"scheduling_interval"`
	ClusterLinkBandwidth float64 `yaml:"cluster_link_bandwidth"`
	UplinkLatency        float64 `yaml:"uplink_latency"` // ms to the parent
}

// DefaultDeviceParameters returns the parameters of a generic cloud host.
func DefaultDeviceParameters() DeviceParameters {
	return DeviceParameters{
		Name:                 "DefaultFogDevice",
		MIPSPerPE:            1000,
		NumPEs:               1,
		RAM:                  2048,
		UplinkBandwidth:      10000,
		DownlinkBandwidth:    10000,
		Level:                0,
		RatePerMIPS:          0.05,
		MaxBusyPower:         100,
		IdlePowerPercent:     0.05,
		DeviceType:           DeviceTypeCloud,
		HostStorage:          262144,
		HostBandwidth:        10000,
		Architecture:         "x86",
		OS:                   "Linux",
		VMM:                  "Xen",
		TimeZone:             10.0,
		ProcessingCost:       3.0,
		MemoryCost:           0.05,
		StorageCost:          0.001,
		BandwidthCost:        0.0001,
		SchedulingInterval:   0.05,
		ClusterLinkBandwidth: 10000,
		UplinkLatency:        0.1,
	}
}

// TotalMIPS is the device's aggregate compute rate.
func (p DeviceParameters) TotalMIPS() float64 {
	return p.MIPSPerPE * float64(p.NumPEs)
}

// Power returns the draw of a linear power model at utilisation u in [0,1].
func (p DeviceParameters) Power(u float64) float64 {
	idle := p.MaxBusyPower * p.IdlePowerPercent
	return idle + (p.MaxBusyPower-idle)*u
}
