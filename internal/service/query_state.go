package service

import (
	"sync"

	apperrors "github.com/spec-kit/ticket-console/pkg/util/errorutil"
)

// QueryState is a snapshot of one query path's loading flag and last error message.
type QueryState struct {
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
}

// errorSlot holds the user-facing message of the last failure. Several trackers may share one.
type errorSlot struct {
	mu  sync.RWMutex
	msg string
}

func (e *errorSlot) set(msg string) {
	e.mu.Lock()
	e.msg = msg
	e.mu.Unlock()
}

func (e *errorSlot) get() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.msg
}

// queryTracker drives the loading flag and error slot of one query path.
type queryTracker struct {
	mu       sync.RWMutex
	loading  bool
	errs     *errorSlot
	fallback string
}

func newQueryTracker(fallback string, errs *errorSlot) *queryTracker {
	if errs == nil {
		errs = &errorSlot{}
	}
	return &queryTracker{errs: errs, fallback: fallback}
}

// begin raises the loading flag and clears the error slot. The returned func
// records *errp and lowers the flag; callers defer it with their named error:
//
//	defer s.list.begin()(&err)
func (q *queryTracker) begin() func(*error) {
	q.setLoading(true)
	q.errs.set("")
	return func(errp *error) {
		if errp != nil && *errp != nil {
			q.fail(*errp)
		}
		q.setLoading(false)
	}
}

// fail records err without touching the loading flag.
func (q *queryTracker) fail(err error) {
	q.errs.set(apperrors.Message(err, q.fallback))
}

func (q *queryTracker) setLoading(v bool) {
	q.mu.Lock()
	q.loading = v
	q.mu.Unlock()
}

func (q *queryTracker) state() QueryState {
	q.mu.RLock()
	loading := q.loading
	q.mu.RUnlock()
	return QueryState{Loading: loading, Error: q.errs.get()}
}
