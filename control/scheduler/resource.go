package scheduler

import "sync"

// Resource is state shared by more than one task.  It is only ever touched inside Lock.
//
// Sections must be short and must not block: no I/O other than flipping an interrupt enable or
// arming a timer, and no waiting on another task.  When a task needs more than one resource it
// nests the locks in the order clock, repeat, edge, which rules out deadlock.
type Resource[T any] struct {
	mu sync.Mutex
	v  T // must hold mu to read or write.
}

// Lock runs f with exclusive access to the resource's value.
func (r *Resource[T]) Lock(f func(*T)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f(&r.v)
}
