package toast

import "time"

// Handle is an opaque reference to a mounted visual. The engine never
// inspects it; it only hands it back to the Renderer that produced it.
type Handle any

// Content is the immutable presentation data handed to a Renderer when a
// notification is mounted.
type Content struct {
	Kind      Kind
	Title     string
	Body      string
	Anchor    Anchor
	Actions   []string // action labels, in declaration order
	CreatedAt time.Time
}

// Events are the interaction callbacks a Renderer fires on behalf of the
// user. OnAction receives the index of the invoked action. Renderers must
// not call these while holding their own locks in a way that could re-enter
// Mount.
type Events struct {
	OnAction  func(index int)
	OnDismiss func()
}

// Renderer builds and animates the visual representation of notifications.
// The engine calls it; implementations live elsewhere (terminal, desktop).
type Renderer interface {
	// Mount builds the visual for the given content. No animation yet.
	Mount(c Content, ev Events) (Handle, error)
	// AnimateIn plays the entrance animation for a mounted visual.
	AnimateIn(h Handle)
	// AnimateOut starts the exit animation and returns its duration.
	// The engine destroys the visual after that duration has elapsed.
	AnimateOut(h Handle) time.Duration
	// Destroy releases the visual. The handle is invalid afterwards.
	Destroy(h Handle)
	// MeasureHeight returns the rendered height of the visual in the
	// renderer's layout units.
	MeasureHeight(h Handle) int
	// Reposition moves the visual to the given offset from its anchor.
	Reposition(h Handle, offset int)
}

// Scheduler runs a callback once after a delay. The engine uses it for
// auto-dismiss timers and the post-exit destroy step. Callbacks re-check
// notification state at fire time, so implementations never need to cancel
// a scheduled call.
type Scheduler interface {
	ScheduleOnce(d time.Duration, fn func())
}

type timerScheduler struct{}

// NewScheduler returns the standard Scheduler backed by time.AfterFunc.
func NewScheduler() Scheduler {
	return timerScheduler{}
}

func (timerScheduler) ScheduleOnce(d time.Duration, fn func()) {
	time.AfterFunc(d, fn)
}
