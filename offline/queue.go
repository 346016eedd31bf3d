package offline

import "container/heap"

type (
	callback struct {
		frame int64
		seq   uint64
		f     func()
	}

	// callbackQueue is a min-heap of callbacks ordered by frame, and by the
	// order of scheduling within a frame.
	callbackQueue []callback
)

func (q callbackQueue) Len() int { return len(q) }

func (q callbackQueue) Less(i, j int) bool {
	if q[i].frame != q[j].frame {
		return q[i].frame < q[j].frame
	}
	return q[i].seq < q[j].seq
}

func (q callbackQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *callbackQueue) Push(x any) { *q = append(*q, x.(callback)) }

func (q *callbackQueue) Pop() any {
	old := *q
	n := len(old)
	ret := old[n-1]
	old[n-1] = callback{}
	*q = old[:n-1]
	return ret
}

func (q *callbackQueue) push(c callback) { heap.Push(q, c) }

func (q *callbackQueue) pop() callback { return heap.Pop(q).(callback) }

// peek returns the frame of the earliest callback.
func (q callbackQueue) peek() (int64, bool) {
	if len(q) == 0 {
		return 0, false
	}
	return q[0].frame, true
}
