package report

import (
	"fmt"
	"io"
)

// PrintSummary writes a human-readable digest of s to w: execution time,
// loop and tuple delays, per-device power and cost, the cost of the device
// named cloudName (if present) and the normalised network usage.
func PrintSummary(w io.Writer, s Snapshot, cloudName string) {
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "============== RESULTS ==================")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "EXECUTION TIME : %d\n", s.ExecutionTime.Milliseconds())
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "APPLICATION LOOP DELAYS")
	fmt.Fprintln(w, rule)
	for _, l := range s.Loops {
		if l.Observed {
			fmt.Fprintf(w, "%s ---> %v (%d samples)\n", l.Label, l.Delay, l.Samples)
		} else {
			fmt.Fprintf(w, "%s ---> (no samples)\n", l.Label)
		}
	}
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "TUPLE CPU EXECUTION DELAY")
	fmt.Fprintln(w, rule)
	for _, t := range s.Tuples {
		fmt.Fprintf(w, "%s ---> %v\n", t.Type, t.CPU)
	}
	fmt.Fprintln(w, rule)

	for _, d := range s.Devices {
		fmt.Fprintf(w, "%s : Energy Consumed = %v\n", d.Name, d.Energy)
	}
	fmt.Fprintf(w, "\nTotal energy consumption = %v\n", s.TotalEnergy())

	for _, d := range s.Devices {
		if d.Name == cloudName {
			fmt.Fprintf(w, "\nCost of execution in cloud = %v\n", d.Cost)
		}
	}
	for _, d := range s.Devices {
		fmt.Fprintf(w, "%s : Cost = %v\n", d.Name, d.Cost)
	}
	fmt.Fprintf(w, "\nTotal cost = %v\n", s.TotalCost())
	fmt.Fprintf(w, "Total network usage = %v\n", s.NetworkPerUnitTime())
	fmt.Fprintf(w, "Network transfers = %d\n", s.NetworkTransfers)
}
