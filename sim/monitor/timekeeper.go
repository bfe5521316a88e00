package monitor

import (
	"time"

	"gonum.org/v1/gonum/stat"
)

// LoopKey identifies a loop across applications.
type LoopKey struct {
	AppID  string
	LoopID int
}

// TimeKeeper collects loop delays and per-tuple-type CPU times.
// Tuple types are reported in first-observation order.
type TimeKeeper struct {
	start time.Time

	loopDelays  map[LoopKey][]float64
	loopTuples  map[LoopKey][]int64
	tupleOrder  []string
	tupleCPU    map[string][]float64
	nextTupleID int64
}

// NewTimeKeeper creates an empty TimeKeeper with the given wall-clock start.
func NewTimeKeeper(start time.Time) *TimeKeeper {
	return &TimeKeeper{
		start:      start,
		loopDelays: make(map[LoopKey][]float64),
		loopTuples: make(map[LoopKey][]int64),
		tupleCPU:   make(map[string][]float64),
	}
}

// SetStart resets the wall-clock start of the run.
func (tk *TimeKeeper) SetStart(t time.Time) {
	tk.start = t
}

// Start returns the wall-clock start of the run.
func (tk *TimeKeeper) Start() time.Time {
	return tk.start
}

// ExecutionTime returns the wall-clock time elapsed since Start.
func (tk *TimeKeeper) ExecutionTime() time.Duration {
	return time.Since(tk.start)
}

// NextTupleID hands out run-unique tuple ids, starting at 1.
func (tk *TimeKeeper) NextTupleID() int64 {
	tk.nextTupleID++
	return tk.nextTupleID
}

// RecordLoopDelay records that tuple tupleID completed loop key in delay time units.
func (tk *TimeKeeper) RecordLoopDelay(key LoopKey, tupleID int64, delay float64) {
	tk.loopDelays[key] = append(tk.loopDelays[key], delay)
	tk.loopTuples[key] = append(tk.loopTuples[key], tupleID)
}

// LoopAverage returns the mean delay of key and whether any sample exists.
func (tk *TimeKeeper) LoopAverage(key LoopKey) (float64, bool) {
	samples := tk.loopDelays[key]
	if len(samples) == 0 {
		return 0, false
	}
	return stat.Mean(samples, nil), true
}

// LoopTupleIDs returns the tuple ids observed completing key, one per sample.
func (tk *TimeKeeper) LoopTupleIDs(key LoopKey) []int64 {
	return tk.loopTuples[key]
}

// RecordTupleCPU records cpuTime spent executing one tuple of tupleType.
func (tk *TimeKeeper) RecordTupleCPU(tupleType string, cpuTime float64) {
	if _, ok := tk.tupleCPU[tupleType]; !ok {
		tk.tupleOrder = append(tk.tupleOrder, tupleType)
	}
	tk.tupleCPU[tupleType] = append(tk.tupleCPU[tupleType], cpuTime)
}

// TupleTypes returns every tuple type with a CPU sample, first seen first.
func (tk *TimeKeeper) TupleTypes() []string {
	return append([]string(nil), tk.tupleOrder...)
}

// TupleAverageCPU returns the mean CPU time of tupleType.
func (tk *TimeKeeper) TupleAverageCPU(tupleType string) (float64, bool) {
	samples := tk.tupleCPU[tupleType]
	if len(samples) == 0 {
		return 0, false
	}
	return stat.Mean(samples, nil), true
}
