// Package report formats and writes the result artifacts of a run.
package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// Separator joins CSV fields.
const Separator = " ; "

const rule = "========================================="

// DeviceRow is one device's accrued energy and cost.
type DeviceRow struct {
	Name   string
	Energy float64
	Cost   float64
}

// LoopRow is the average delay of one monitored loop.
type LoopRow struct {
	Label    string
	Delay    float64
	Observed bool
	Samples  int
}

// TupleRow is the average CPU time of one tuple type.
type TupleRow struct {
	Type string
	CPU  float64
}

// Snapshot is everything the reports need, read once at shutdown.
type Snapshot struct {
	Name              string
	ExecutionTime     time.Duration
	Devices           []DeviceRow
	Loops             []LoopRow
	Tuples            []TupleRow
	NetworkUsage      float64
	NetworkTransfers  int64
	MaxSimulationTime float64
}

// TotalEnergy sums device energy.
func (s Snapshot) TotalEnergy() float64 {
	total := 0.0
	for _, d := range s.Devices {
		total += d.Energy
	}
	return total
}

// TotalCost sums device cost.
func (s Snapshot) TotalCost() float64 {
	total := 0.0
	for _, d := range s.Devices {
		total += d.Cost
	}
	return total
}

// NetworkPerUnitTime is network usage normalised by the simulated horizon.
func (s Snapshot) NetworkPerUnitTime() float64 {
	if s.MaxSimulationTime <= 0 {
		return 0
	}
	return s.NetworkUsage / s.MaxSimulationTime
}

// WriteHeader writes the banner, execution time, loop delays and tuple
// CPU delays.
func WriteHeader(w io.Writer, s Snapshot) error {
	ew := &errWriter{w: w}
	ew.line("============== %s =============", s.Name)
	ew.line(rule)
	ew.line("================ RESULTS ================")
	ew.line(rule)
	ew.line("EXECUTION TIME : %d", s.ExecutionTime.Milliseconds())
	ew.line(rule)
	ew.line("APPLICATION LOOP DELAYS")
	ew.line(rule)
	for _, l := range s.Loops {
		ew.line("%s ---> %v", l.Label, l.Delay)
	}
	ew.line(rule)
	ew.line("TUPLE CPU EXECUTION DELAY")
	ew.line(rule)
	for _, t := range s.Tuples {
		ew.line("%s ---> %v", t.Type, t.CPU)
	}
	ew.line(rule)
	return ew.err
}

// WriteValues writes one energy/cost row per device.
func WriteValues(w io.Writer, s Snapshot, nf *NumberFormat) error {
	ew := &errWriter{w: w}
	ew.line("fogDevice%senergy%scost", Separator, Separator)
	for _, d := range s.Devices {
		ew.line("%s%s%s%s%s", d.Name, Separator, nf.Format(d.Energy), Separator, nf.Format(d.Cost))
	}
	return ew.err
}

// WriteTotals writes total energy, cost and network usage, then one row per loop.
func WriteTotals(w io.Writer, s Snapshot, nf *NumberFormat) error {
	ew := &errWriter{w: w}
	ew.line("total%svalue", Separator)
	ew.line("energy%s%s", Separator, nf.Format(s.TotalEnergy()))
	ew.line("cost%s%s", Separator, nf.Format(s.TotalCost()))
	ew.line("network%s%s", Separator, nf.Format(s.NetworkPerUnitTime()))
	ew.line("%s", Separator)
	ew.line("loop%sdelay", Separator)
	for _, l := range s.Loops {
		ew.line("%s%s%s", l.Label, Separator, nf.Format(l.Delay))
	}
	return ew.err
}

type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) line(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format+"\n", args...)
}

// Writer writes the three report files of a run into Dir.
type Writer struct {
	Dir    string
	Format *NumberFormat
}

// NewWriter creates a Writer using DefaultLocale.
func NewWriter(dir string) *Writer {
	return &Writer{Dir: dir, Format: NewNumberFormat(DefaultLocale)}
}

// Paths returns the header, values and totals file paths for name.
func (rw *Writer) Paths(name string) (header, values, totals string) {
	return filepath.Join(rw.Dir, name+"_header.txt"),
		filepath.Join(rw.Dir, name+"_values.csv"),
		filepath.Join(rw.Dir, name+"_totals.csv")
}

// WriteAll writes header, values and totals, in that order. A failing file
// is logged and skipped; the others are still written. The returned slice
// holds every failure.
func (rw *Writer) WriteAll(s Snapshot) []error {
	header, values, totals := rw.Paths(s.Name)
	var errs []error
	steps := []struct {
		path  string
		write func(io.Writer) error
	}{
		{header, func(w io.Writer) error { return WriteHeader(w, s) }},
		{values, func(w io.Writer) error { return WriteValues(w, s, rw.Format) }},
		{totals, func(w io.Writer) error { return WriteTotals(w, s, rw.Format) }},
	}
	for _, step := range steps {
		if err := writeFile(step.path, step.write); err != nil {
			logrus.Errorf("Error writing report %s: %v", step.path, err)
			errs = append(errs, err)
			continue
		}
		logrus.Debugf("Successfully wrote to '%s'", step.path)
	}
	return errs
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	writer := bufio.NewWriter(file)
	if err := write(writer); err != nil {
		return err
	}
	return writer.Flush()
}
