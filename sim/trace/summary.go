package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	PlacedPairs       int
	DroppedPairs      int
	TagCounts         map[string]int // dispatch tag → count
	DevicesDispatched int            // distinct device ids that received a dispatch
	InstancesLaunched int            // distinct module instances launched
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		TagCounts: make(map[string]int),
	}
	if st == nil {
		return summary
	}

	for _, p := range st.Placements {
		if p.Placed {
			summary.PlacedPairs++
		} else {
			summary.DroppedPairs++
		}
	}

	devices := make(map[int]bool)
	instances := make(map[string]bool)
	for _, d := range st.Dispatches {
		summary.TagCounts[d.Tag]++
		devices[d.DeviceID] = true
		if d.InstanceID != "" {
			instances[d.InstanceID] = true
		}
	}
	summary.DevicesDispatched = len(devices)
	summary.InstancesLaunched = len(instances)

	return summary
}
