package toast

import (
	"crypto/rand"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Action is a user-invokable button on a notification.
type Action struct {
	Label string
	// OnInvoke runs when the user invokes the action. A panicking callback
	// is recovered and logged; it never corrupts engine state.
	OnInvoke func()
	// DismissOnInvoke dismisses the notification after the callback
	// returns (or panics).
	DismissOnInvoke bool
}

// Notification is a single toast instance. It is created by the System,
// owned by its user's Queue until dismissal completes, and mutated only
// through Show and Dismiss. The zero value is not usable; notifications
// are built by System.Notify.
type Notification struct {
	id      string
	owner   string
	kind    Kind
	title   string
	body    string
	ttl     time.Duration // 0 = no auto-dismiss
	anchor  Anchor
	actions []Action

	renderer Renderer
	sched    Scheduler
	queue    *Queue
	logger   *slog.Logger

	mu        sync.Mutex
	visible   bool
	dismissed bool
	handle    Handle
	height    int
	createdAt time.Time
}

func newNotification(q *Queue, owner string, kind Kind, title, body string, ttl time.Duration, anchor Anchor, actions []Action) *Notification {
	return &Notification{
		id:        ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String(),
		owner:     owner,
		kind:      kind,
		title:     title,
		body:      body,
		ttl:       ttl,
		anchor:    anchor,
		actions:   actions,
		renderer:  q.renderer,
		sched:     q.sched,
		queue:     q,
		logger:    q.logger,
		createdAt: time.Now(),
	}
}

// ID returns the notification's ULID, used for log correlation.
func (n *Notification) ID() string { return n.id }

// Owner returns the user the notification belongs to.
func (n *Notification) Owner() string { return n.owner }

// Kind returns the notification's semantic category.
func (n *Notification) Kind() Kind { return n.kind }

// Title returns the notification title.
func (n *Notification) Title() string { return n.title }

// Body returns the notification body text.
func (n *Notification) Body() string { return n.body }

// Anchor returns the screen corner the notification stacks from.
func (n *Notification) Anchor() Anchor { return n.anchor }

// TTL returns the auto-dismiss duration. Zero means the notification stays
// until dismissed.
func (n *Notification) TTL() time.Duration { return n.ttl }

// Visible reports whether the notification has been shown and its exit has
// not started.
func (n *Notification) Visible() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.visible && !n.dismissed
}

// Dismissed reports whether dismissal has been initiated.
func (n *Notification) Dismissed() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.dismissed
}

// Height returns the rendered height measured at show time.
func (n *Notification) Height() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.height
}

// Show mounts and animates the notification in, and arms the auto-dismiss
// timer when a TTL is set. Showing an already-visible or dismissed
// notification is a no-op. Only the owning Queue calls Show, during
// promotion.
func (n *Notification) Show() error {
	n.mu.Lock()
	if n.visible || n.dismissed {
		n.mu.Unlock()
		return nil
	}

	handle, err := n.renderer.Mount(Content{
		Kind:      n.kind,
		Title:     n.title,
		Body:      n.body,
		Anchor:    n.anchor,
		Actions:   actionLabels(n.actions),
		CreatedAt: n.createdAt,
	}, Events{
		OnAction:  n.InvokeAction,
		OnDismiss: n.Dismiss,
	})
	if err != nil {
		n.dismissed = true
		n.mu.Unlock()
		n.logger.Warn("failed to mount notification", "toast_id", n.id, "user", n.owner, "error", err)
		return err
	}

	n.visible = true
	n.handle = handle
	n.height = n.renderer.MeasureHeight(handle)
	n.mu.Unlock()

	n.renderer.AnimateIn(handle)

	if n.ttl > 0 {
		// The timer re-checks state at fire time; a user dismissal in the
		// meantime makes this a no-op rather than requiring cancellation.
		n.sched.ScheduleOnce(n.ttl, func() {
			n.Dismiss()
		})
	}

	n.logger.Debug("notification shown",
		"toast_id", n.id,
		"user", n.owner,
		"kind", n.kind.String(),
		"ttl", n.ttl,
	)
	return nil
}

// Dismiss initiates removal. It is safe to call at any time and idempotent:
// the first call plays the exit animation, destroys the visual once the
// animation has elapsed, and then notifies the owning Queue; later calls
// return immediately. The Queue is notified only after destruction so it
// never restacks around a half-destroyed visual.
func (n *Notification) Dismiss() {
	n.mu.Lock()
	if n.dismissed {
		n.mu.Unlock()
		return
	}
	n.dismissed = true
	wasVisible := n.visible
	handle := n.handle
	n.mu.Unlock()

	if !wasVisible {
		// Never shown: nothing to animate or destroy, just leave the queue.
		n.queue.Remove(n)
		return
	}

	exit := n.renderer.AnimateOut(handle)
	n.sched.ScheduleOnce(exit, func() {
		n.renderer.Destroy(handle)
		n.queue.Remove(n)
	})

	n.logger.Debug("notification dismissed", "toast_id", n.id, "user", n.owner)
}

// InvokeAction runs the i-th action's callback. A panic in the callback is
// recovered and logged, and never prevents a DismissOnInvoke dismissal.
// Out-of-range indices are ignored.
func (n *Notification) InvokeAction(i int) {
	if i < 0 || i >= len(n.actions) {
		return
	}
	a := n.actions[i]
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("notification action panicked",
				"toast_id", n.id,
				"action", a.Label,
				"panic", r,
			)
		}
		if a.DismissOnInvoke {
			n.Dismiss()
		}
	}()
	if a.OnInvoke != nil {
		a.OnInvoke()
	}
}

func actionLabels(actions []Action) []string {
	if len(actions) == 0 {
		return nil
	}
	labels := make([]string, len(actions))
	for i, a := range actions {
		labels[i] = a.Label
	}
	return labels
}
