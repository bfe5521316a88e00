package sim

// EventQueue is a min-heap ordered by (Time, tag priority, seqID).
// seqID preserves FIFO order between events scheduled for the same instant.
// Implements heap.Interface.
type EventQueue []*Event

func (q EventQueue) Len() int { return len(q) }

func (q EventQueue) Less(i, j int) bool {
	if q[i].Time != q[j].Time {
		return q[i].Time < q[j].Time
	}
	if pi, pj := q[i].Tag.priority(), q[j].Tag.priority(); pi != pj {
		return pi < pj
	}
	return q[i].seqID < q[j].seqID
}

func (q EventQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *EventQueue) Push(x any) {
	*q = append(*q, x.(*Event))
}

func (q *EventQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}
