package suggest

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultDebounce is how long a caller waits after a keystroke before asking
// the backend.
const DefaultDebounce = 300 * time.Millisecond

// Tracker coordinates suggestion requests coming from changing input.
// Each input stream (one text box, one client) has a sequence number; a
// request is worth sending only while it is the latest one for its stream,
// and its result is worth showing only if that is still true afterwards.
// In-flight requests are never aborted, their results are just dropped.
type Tracker struct {
	mu    sync.Mutex
	seq   map[string]uint64
	next  uint64
	delay atomic.Int64
}

// NewTracker creates a tracker that debounces by delay.
func NewTracker(delay time.Duration) *Tracker {
	t := &Tracker{seq: make(map[string]uint64)}
	t.SetDebounce(delay)
	return t
}

// SetDebounce changes the delay used by tickets issued from now on.
func (t *Tracker) SetDebounce(delay time.Duration) {
	if delay < 0 {
		delay = 0
	}
	t.delay.Store(int64(delay))
}

// Debounce returns the current delay.
func (t *Tracker) Debounce() time.Duration {
	return time.Duration(t.delay.Load())
}

// Begin registers a new request on stream, superseding every earlier one.
func (t *Tracker) Begin(stream string) Ticket {
	t.mu.Lock()
	defer t.mu.Unlock()
	// ids come from one counter so a forgotten stream never reissues an old id
	t.next++
	t.seq[stream] = t.next
	return Ticket{tracker: t, stream: stream, id: t.next, delay: t.Debounce()}
}

// Forget drops the state kept for stream.
func (t *Tracker) Forget(stream string) {
	t.mu.Lock()
	delete(t.seq, stream)
	t.mu.Unlock()
}

func (t *Tracker) latest(stream string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.seq[stream]
}

// Ticket identifies one request on one stream.
type Ticket struct {
	tracker *Tracker
	stream  string
	id      uint64
	delay   time.Duration
}

// ID orders tickets; later tickets have larger ids.
func (k Ticket) ID() uint64 {
	return k.id
}

// Current reports whether no newer request has started on the stream.
func (k Ticket) Current() bool {
	return k.tracker.latest(k.stream) == k.id
}

// Wait sleeps for the debounce delay and reports whether the ticket is still
// current. It returns false early when ctx is done.
func (k Ticket) Wait(ctx context.Context) bool {
	if k.delay > 0 {
		timer := time.NewTimer(k.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return false
		case <-timer.C:
		}
	}
	return k.Current()
}
