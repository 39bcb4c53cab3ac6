package toast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQueue(t *testing.T) (*Queue, *fakeRenderer, *manualScheduler) {
	t.Helper()
	renderer := newFakeRenderer()
	sched := newManualScheduler()
	q := NewQueue("alice", renderer, sched, nil)
	return q, renderer, sched
}

func post(t *testing.T, q *Queue, title string, ttl time.Duration, actions ...Action) *Notification {
	t.Helper()
	n := newNotification(q, q.user, KindInfo, title, "body", ttl, AnchorTopRight, actions)
	q.Enqueue(n)
	return n
}

func TestShow_MountsAndAnimatesOnce(t *testing.T) {
	q, renderer, _ := newTestQueue(t)

	n := post(t, q, "hello", 5*time.Second)

	assert.True(t, n.Visible())
	assert.Equal(t, 1, renderer.mountCount())
	assert.Equal(t, 1, renderer.animateIns)

	// A second Show is a no-op.
	require.NoError(t, n.Show())
	assert.Equal(t, 1, renderer.mountCount())
	assert.Equal(t, 1, renderer.animateIns)
}

func TestShow_ArmsAutoDismissTimer(t *testing.T) {
	q, renderer, sched := newTestQueue(t)

	n := post(t, q, "timed", 5*time.Second)
	require.Equal(t, 1, sched.pendingCount())

	sched.fireAll()

	assert.True(t, n.Dismissed())
	assert.Equal(t, 1, renderer.animateOuts)
	assert.Equal(t, 1, renderer.destroys)
	assert.Equal(t, 0, q.ActiveCount())
}

func TestShow_ZeroTTLNeverSchedules(t *testing.T) {
	q, _, sched := newTestQueue(t)

	n := post(t, q, "sticky", 0)

	assert.True(t, n.Visible())
	assert.Equal(t, 0, sched.pendingCount())
}

func TestDismiss_Idempotent(t *testing.T) {
	q, renderer, sched := newTestQueue(t)

	n := post(t, q, "once", 0)

	n.Dismiss()
	n.Dismiss()
	sched.fireAll()
	n.Dismiss()

	assert.Equal(t, 1, renderer.animateOuts)
	assert.Equal(t, 1, renderer.destroys)
	assert.Equal(t, 0, q.ActiveCount())
}

func TestDismiss_DestroyBeforeQueueNotification(t *testing.T) {
	q, renderer, sched := newTestQueue(t)

	n := post(t, q, "ordered", 0)
	n.Dismiss()

	// Destroy and removal happen together after the exit animation; until
	// the scheduled step fires the queue still holds the entry.
	assert.Equal(t, 0, renderer.destroys)
	assert.Equal(t, 1, q.ActiveCount())

	sched.fireAll()

	assert.Equal(t, 1, renderer.destroys)
	assert.Equal(t, 0, q.ActiveCount())
}

func TestDismiss_BeforeTimerFires(t *testing.T) {
	q, renderer, sched := newTestQueue(t)

	n := post(t, q, "raced", 5*time.Second)

	// User dismisses before the auto-dismiss timer fires.
	n.Dismiss()
	sched.fireAll()

	// The stale timer re-checks state and does nothing; exactly one exit.
	assert.Equal(t, 1, renderer.animateOuts)
	assert.Equal(t, 1, renderer.destroys)
}

func TestDismiss_PendingNotificationLeavesQueue(t *testing.T) {
	q, renderer, sched := newTestQueue(t)
	q.SetCapacity(1)

	post(t, q, "visible", 0)
	waiting := post(t, q, "waiting", 0)
	require.Equal(t, 1, q.PendingCount())

	waiting.Dismiss()
	sched.fireAll()

	assert.Equal(t, 0, q.PendingCount())
	// Never shown, so no exit animation or destroy for it.
	assert.Equal(t, 0, renderer.animateOuts)
}

func TestInvokeAction_RunsCallback(t *testing.T) {
	q, _, _ := newTestQueue(t)

	invoked := false
	n := post(t, q, "actionable", 0, Action{
		Label:    "open",
		OnInvoke: func() { invoked = true },
	})

	n.InvokeAction(0)

	assert.True(t, invoked)
	assert.False(t, n.Dismissed())
}

func TestInvokeAction_DismissOnInvoke(t *testing.T) {
	q, _, sched := newTestQueue(t)

	n := post(t, q, "confirm", 0, Action{
		Label:           "ok",
		OnInvoke:        func() {},
		DismissOnInvoke: true,
	})

	n.InvokeAction(0)
	sched.fireAll()

	assert.True(t, n.Dismissed())
	assert.Equal(t, 0, q.ActiveCount())
}

func TestInvokeAction_PanicDoesNotBlockDismissal(t *testing.T) {
	q, renderer, sched := newTestQueue(t)

	n := post(t, q, "explosive", 0, Action{
		Label:           "boom",
		OnInvoke:        func() { panic("callback failure") },
		DismissOnInvoke: true,
	})

	assert.NotPanics(t, func() { n.InvokeAction(0) })
	sched.fireAll()

	assert.True(t, n.Dismissed())
	assert.Equal(t, 1, renderer.animateOuts)
}

func TestInvokeAction_OutOfRangeIgnored(t *testing.T) {
	q, _, _ := newTestQueue(t)

	n := post(t, q, "plain", 0, Action{Label: "only"})

	assert.NotPanics(t, func() {
		n.InvokeAction(-1)
		n.InvokeAction(1)
	})
	assert.False(t, n.Dismissed())
}

func TestActionOnlyNotification_StaysUntilInvoked(t *testing.T) {
	q, _, sched := newTestQueue(t)

	n := post(t, q, "update available", 0, Action{
		Label:           "restart",
		OnInvoke:        func() {},
		DismissOnInvoke: true,
	})

	// No auto-dismiss timer exists for a zero TTL.
	assert.Equal(t, 0, sched.pendingCount())
	assert.True(t, n.Visible())

	n.InvokeAction(0)
	sched.fireAll()
	assert.True(t, n.Dismissed())
}
