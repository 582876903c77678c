package bridge

import (
	"encoding/json"
	"sync"
	"time"
)

// callResult carries the terminal outcome of one request.
type callResult struct {
	result json.RawMessage
	err    error
}

// pendingCall is one dispatched request awaiting its response.
type pendingCall struct {
	id       int64
	issuedAt time.Time
	// ch is buffered with capacity 1 so resolution never blocks the reader.
	ch chan callResult
}

// registry tracks in-flight requests and allocates correlation ids.
// Ids start at 1 and are strictly increasing for the lifetime of the
// instance; an id is never reused, even after its request completes.
type registry struct {
	mu       sync.Mutex
	nextID   int64
	pending  map[int64]*pendingCall
	terminal error
}

func newRegistry() *registry {
	return &registry{pending: map[int64]*pendingCall{}}
}

// register allocates the next id and stores a pending entry for it.
// After failAll has been called it returns the terminal error instead,
// so no request can be registered against a dead worker.
func (r *registry) register() (*pendingCall, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.terminal != nil {
		return nil, r.terminal
	}
	r.nextID++
	call := &pendingCall{
		id:       r.nextID,
		issuedAt: time.Now(),
		ch:       make(chan callResult, 1),
	}
	r.pending[call.id] = call
	return call, nil
}

// resolve completes the pending entry for id with a result.
// It reports whether a pending entry existed.
func (r *registry) resolve(id int64, result json.RawMessage) bool {
	return r.complete(id, callResult{result: result})
}

// reject completes the pending entry for id with an error.
// It reports whether a pending entry existed.
func (r *registry) reject(id int64, err error) bool {
	return r.complete(id, callResult{err: err})
}

func (r *registry) complete(id int64, res callResult) bool {
	r.mu.Lock()
	call, ok := r.pending[id]
	delete(r.pending, id)
	r.mu.Unlock()
	if !ok {
		return false
	}
	call.ch <- res
	return true
}

// remove drops the pending entry for id without completing it. Used when the
// caller abandons the request (context cancellation, write failure).
func (r *registry) remove(id int64) {
	r.mu.Lock()
	delete(r.pending, id)
	r.mu.Unlock()
}

// failAll rejects every pending entry with err and marks the registry
// terminal: all future register calls fail with the same error. Each entry is
// completed exactly once no matter how failAll interleaves with resolve.
func (r *registry) failAll(err error) {
	r.mu.Lock()
	if r.terminal == nil {
		r.terminal = err
	}
	calls := make([]*pendingCall, 0, len(r.pending))
	for id, call := range r.pending {
		calls = append(calls, call)
		delete(r.pending, id)
	}
	r.mu.Unlock()
	for _, call := range calls {
		call.ch <- callResult{err: err}
	}
}

// inflight returns the number of outstanding requests.
func (r *registry) inflight() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}
