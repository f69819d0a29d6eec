package fetcher

import "sync/atomic"

// Task tracks the claim state, progress, and result of one resource part.
//
// The claim is the only transition requiring cross-worker exclusion and is
// a compare-and-swap on the started flag. After a successful claim the
// owning worker has exclusive write access to loaded, total, and result;
// the aggregator reads loaded from any worker's context, which is why the
// progress fields are atomics.
type Task struct {
	identifier string
	started    atomic.Bool
	loaded     atomic.Int64
	total      atomic.Int64
	result     []byte
}

// Identifier returns the resource identifier this task fetches.
func (t *Task) Identifier() string {
	return t.identifier
}

// UpdateProgress records a progress tick from the owning worker.
// Loaded is monotonically non-decreasing over a task's lifetime.
func (t *Task) UpdateProgress(loaded, total int64) {
	t.loaded.Store(loaded)
	t.total.Store(total)
}

// Loaded returns the bytes transferred so far.
func (t *Task) Loaded() int64 {
	return t.loaded.Load()
}

// Result returns the fetched bytes, or nil if the task has not completed.
func (t *Task) Result() []byte {
	return t.result
}

// setResult stores the final bytes. Called exactly once, by the owning
// worker, after which the task is immutable.
func (t *Task) setResult(data []byte) {
	t.result = data
}

// TaskSet is the ordered registry of tasks for one operation, one per
// input identifier. It doubles as the work queue: workers claim the first
// unstarted task in input order until none remain.
type TaskSet struct {
	tasks []*Task
}

// NewTaskSet creates a registry with one unstarted task per identifier,
// preserving input order.
func NewTaskSet(identifiers []string) *TaskSet {
	tasks := make([]*Task, len(identifiers))
	for i, id := range identifiers {
		tasks[i] = &Task{identifier: id}
	}
	return &TaskSet{tasks: tasks}
}

// Len returns the number of tasks.
func (s *TaskSet) Len() int {
	return len(s.tasks)
}

// ClaimNext atomically claims the first unstarted task in input order.
// Returns false when every task has been started; that is the sole
// termination condition for workers.
func (s *TaskSet) ClaimNext() (*Task, bool) {
	for _, t := range s.tasks {
		if t.started.CompareAndSwap(false, true) {
			return t, true
		}
	}
	return nil, false
}

// LoadedBytes sums the bytes loaded across all tasks.
func (s *TaskSet) LoadedBytes() int64 {
	var sum int64
	for _, t := range s.tasks {
		sum += t.loaded.Load()
	}
	return sum
}

// FinalResults returns each task's result buffer in input order.
// Tasks that did not complete contribute a nil entry.
func (s *TaskSet) FinalResults() [][]byte {
	results := make([][]byte, len(s.tasks))
	for i, t := range s.tasks {
		results[i] = t.result
	}
	return results
}
