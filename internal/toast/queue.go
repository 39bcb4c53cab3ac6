package toast

import (
	"log/slog"
	"sync"
)

// DefaultCapacity is the number of simultaneously visible notifications
// per user.
const DefaultCapacity = 3

// Queue manages one user's notifications: a FIFO of pending entries plus a
// bounded set of active (visible) ones, in insertion order. Insertion order
// of the active set is the visual stacking order. All mutations are
// serialized by the queue's mutex, so a user's notifications evolve on a
// single logical timeline.
type Queue struct {
	user     string
	renderer Renderer
	sched    Scheduler
	logger   *slog.Logger
	onShow   func(*Notification)

	mu       sync.Mutex
	pending  []*Notification
	active   []*Notification
	capacity int
	gap      int
}

// NewQueue creates a queue for the given user backed by the given renderer.
func NewQueue(user string, renderer Renderer, sched Scheduler, logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	if sched == nil {
		sched = NewScheduler()
	}
	return &Queue{
		user:     user,
		renderer: renderer,
		sched:    sched,
		logger:   logger,
		capacity: DefaultCapacity,
		gap:      DefaultGap,
	}
}

// User returns the user this queue belongs to.
func (q *Queue) User() string { return q.user }

// Enqueue appends a notification to the pending FIFO and immediately
// attempts promotion. It never blocks on rendering or timers.
func (q *Queue) Enqueue(n *Notification) {
	q.mu.Lock()
	q.pending = append(q.pending, n)
	q.promoteLocked()
	active, pending := len(q.active), len(q.pending)
	q.mu.Unlock()

	q.logger.Debug("notification enqueued",
		"toast_id", n.id,
		"user", q.user,
		"active", active,
		"pending", pending,
	)
}

// Remove deletes a notification from the active set, restacks the
// remaining ones, and promotes from pending into the freed slot. Removing
// a notification that is not present is a no-op, which makes duplicate
// removal callbacks harmless. A pending notification that was dismissed
// before promotion is dropped from the FIFO instead.
func (q *Queue) Remove(n *Notification) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, other := range q.active {
		if other == n {
			q.active = append(q.active[:i], q.active[i+1:]...)
			q.restackLocked()
			q.promoteLocked()
			q.logger.Debug("notification removed", "toast_id", n.id, "user", q.user, "active", len(q.active))
			return
		}
	}
	for i, other := range q.pending {
		if other == n {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return
		}
	}
}

// promoteLocked moves pending notifications into the active set while
// capacity allows, in strict FIFO order, restacking and showing each one.
// Caller must hold the lock.
func (q *Queue) promoteLocked() {
	for len(q.active) < q.capacity && len(q.pending) > 0 {
		n := q.pending[0]
		q.pending = q.pending[1:]
		if n.Dismissed() {
			continue
		}
		q.active = append(q.active, n)
		if err := n.Show(); err != nil {
			// Mount failed; free the slot so the next promotion can run.
			q.active = q.active[:len(q.active)-1]
			continue
		}
		// A tail append leaves preceding offsets untouched, so one restack
		// after showing positions the newcomer and re-verifies the rest.
		q.restackLocked()
		if q.onShow != nil {
			q.onShow(n)
		}
	}
}

// restackLocked recomputes stacking offsets for the active set and
// repositions every member that is still fully visible. Notifications
// mid-exit keep their place so the fade-out does not jump. The anchor of
// the first active notification stands for the whole stack; anchors are
// fixed per call site, not per notification. Caller must hold the lock.
func (q *Queue) restackLocked() {
	if len(q.active) == 0 {
		return
	}

	heights := make([]int, len(q.active))
	for i, n := range q.active {
		heights[i] = n.Height()
	}
	offsets := StackOffsets(heights, q.gap, q.active[0].Anchor().Growth())

	for i, n := range q.active {
		if !n.Visible() {
			continue
		}
		n.mu.Lock()
		handle := n.handle
		n.mu.Unlock()
		q.renderer.Reposition(handle, offsets[i])
	}
}

// SetCapacity changes the visible-set bound and promotes immediately if it
// grew. Shrinking never evicts already-visible notifications; they drain
// naturally and new promotions respect the lower bound.
func (q *Queue) SetCapacity(capacity int) {
	if capacity < 1 {
		capacity = 1
	}
	q.mu.Lock()
	q.capacity = capacity
	q.promoteLocked()
	q.mu.Unlock()
}

// SetGap changes the inter-notification spacing and restacks.
func (q *Queue) SetGap(gap int) {
	if gap < 0 {
		gap = 0
	}
	q.mu.Lock()
	q.gap = gap
	q.restackLocked()
	q.mu.Unlock()
}

// ActiveCount returns the number of active notifications.
func (q *Queue) ActiveCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.active)
}

// PendingCount returns the number of notifications waiting for a slot.
func (q *Queue) PendingCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Active returns a snapshot of the active set in stacking order.
func (q *Queue) Active() []*Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]*Notification, len(q.active))
	copy(out, q.active)
	return out
}

// Close dismisses everything in the queue. Called on session teardown; the
// dismissal path empties the active set through the usual removal
// callbacks.
func (q *Queue) Close() {
	q.mu.Lock()
	all := make([]*Notification, 0, len(q.active)+len(q.pending))
	all = append(all, q.active...)
	all = append(all, q.pending...)
	q.pending = nil
	q.mu.Unlock()

	for _, n := range all {
		n.Dismiss()
	}
	q.logger.Debug("queue closed", "user", q.user, "drained", len(all))
}
