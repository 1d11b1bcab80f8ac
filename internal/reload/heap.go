package reload

import (
	"container/heap"
	"time"
)

// jobHeap is a min-heap of reload jobs ordered by EndTime, then by start
// order for jobs finishing at the same instant.
type jobHeap []*Job

func (h jobHeap) Len() int {
	return len(h)
}

func (h jobHeap) Less(i, j int) bool {
	if h[i].EndTime.Equal(h[j].EndTime) {
		return h[i].seq < h[j].seq
	}
	return h[i].EndTime.Before(h[j].EndTime)
}

func (h jobHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

func (h *jobHeap) Push(x any) {
	*h = append(*h, x.(*Job))
}

func (h *jobHeap) Pop() any {
	old := *h
	n := len(old)
	job := old[n-1]
	old[n-1] = nil
	*h = old[0 : n-1]
	return job
}

// Peek returns the job with the earliest end time without removing it.
func (h *jobHeap) Peek() *Job {
	if len(*h) == 0 {
		return nil
	}
	return (*h)[0]
}

// Remove removes a job from the heap by ID.
func (h *jobHeap) Remove(id JobID) bool {
	for i, job := range *h {
		if job.ID == id {
			heap.Remove(h, i)
			return true
		}
	}
	return false
}

func newJobHeap() *jobHeap {
	h := &jobHeap{}
	heap.Init(h)
	return h
}

// popDue extracts every job due by now, earliest first.
func (h *jobHeap) popDue(now time.Time) []*Job {
	var due []*Job
	for {
		job := h.Peek()
		if job == nil || now.Before(job.EndTime) {
			break
		}
		heap.Pop(h)
		due = append(due, job)
	}
	return due
}
