package toast

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Auto-dismiss bounds applied by the façade. An explicit zero TTL is the
// sticky sentinel and is exempt from the clamp, so action-only
// notifications can wait on user interaction indefinitely.
const (
	MinTTL     = 3 * time.Second
	MaxTTL     = 20 * time.Second
	DefaultTTL = 5 * time.Second
)

// ErrDisplayUnavailable is reported when a user has no display surface to
// render on, e.g. their session is not ready yet.
var ErrDisplayUnavailable = errors.New("display surface unavailable")

// SurfaceError carries the user and cause of a failed surface lookup. It
// matches ErrDisplayUnavailable under errors.Is.
type SurfaceError struct {
	User  string
	Cause error
}

func (e *SurfaceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("display surface unavailable for user %q: %v", e.User, e.Cause)
	}
	return fmt.Sprintf("display surface unavailable for user %q", e.User)
}

func (e *SurfaceError) Unwrap() error { return e.Cause }

func (e *SurfaceError) Is(target error) bool { return target == ErrDisplayUnavailable }

// SurfaceProvider resolves the display surface for a user. The host
// application supplies one; the engine treats failures as
// ErrDisplayUnavailable without touching any existing queue.
type SurfaceProvider interface {
	SurfaceFor(user string) (Renderer, error)
}

// SurfaceProviderFunc adapts a function to the SurfaceProvider interface.
type SurfaceProviderFunc func(user string) (Renderer, error)

func (f SurfaceProviderFunc) SurfaceFor(user string) (Renderer, error) { return f(user) }

// StaticSurface is a SurfaceProvider that hands every user the same
// renderer. Useful for single-seat hosts and tests.
func StaticSurface(r Renderer) SurfaceProvider {
	return SurfaceProviderFunc(func(string) (Renderer, error) { return r, nil })
}

// Params are the caller-supplied notification parameters. Kind and Anchor
// arrive as free-form strings and are normalized: unknown kinds become
// "info", unknown anchors become "top-right". TTL is clamped to
// [MinTTL, MaxTTL] unless it is exactly zero (sticky).
type Params struct {
	Kind    string
	Title   string
	Body    string
	TTL     time.Duration
	Anchor  string
	Actions []Action
}

// System is the process-wide notification façade: it maps users to their
// queues, normalizes creation parameters, and routes notifications.
// Concurrent users are fully independent.
type System struct {
	surfaces SurfaceProvider
	sched    Scheduler
	logger   *slog.Logger
	onShow   func(*Notification)

	mu       sync.Mutex
	queues   map[string]*Queue
	capacity int
	gap      int
}

// Option configures a System.
type Option func(*System)

// WithLogger sets the logger used by the system and its queues.
func WithLogger(logger *slog.Logger) Option {
	return func(s *System) { s.logger = logger }
}

// WithScheduler replaces the timer service. Tests use a manual scheduler.
func WithScheduler(sched Scheduler) Option {
	return func(s *System) { s.sched = sched }
}

// WithCapacity sets the per-user bound on simultaneously visible
// notifications.
func WithCapacity(capacity int) Option {
	return func(s *System) { s.capacity = capacity }
}

// WithGap sets the spacing between stacked notifications.
func WithGap(gap int) Option {
	return func(s *System) { s.gap = gap }
}

// WithShowListener registers a hook invoked whenever a notification is
// promoted and shown. Used for side effects like sound playback.
func WithShowListener(fn func(*Notification)) Option {
	return func(s *System) { s.onShow = fn }
}

// NewSystem creates the notification façade on top of the given surface
// provider.
func NewSystem(surfaces SurfaceProvider, opts ...Option) *System {
	s := &System{
		surfaces: surfaces,
		sched:    NewScheduler(),
		logger:   slog.Default(),
		queues:   make(map[string]*Queue),
		capacity: DefaultCapacity,
		gap:      DefaultGap,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Notify normalizes params, creates a notification for the user, enqueues
// it, and returns the handle for optional direct manipulation such as
// early dismissal. The user's queue is created lazily on first use; if no
// display surface is available the call fails with ErrDisplayUnavailable
// and no queue is created.
func (s *System) Notify(user string, p Params) (*Notification, error) {
	kind, knownKind := ParseKind(p.Kind)
	anchor, knownAnchor := ParseAnchor(p.Anchor)
	if p.Kind != "" && !knownKind {
		s.logger.Debug("unknown notification kind, using info", "kind", p.Kind, "user", user)
	}
	if p.Anchor != "" && !knownAnchor {
		s.logger.Debug("unknown notification anchor, using top-right", "anchor", p.Anchor, "user", user)
	}
	ttl := clampTTL(p.TTL)

	q, err := s.queueFor(user)
	if err != nil {
		return nil, err
	}

	n := newNotification(q, user, kind, p.Title, p.Body, ttl, anchor, p.Actions)
	q.Enqueue(n)
	return n, nil
}

// Success posts a success-kind notification. The optional params override
// everything but kind, title, and body.
func (s *System) Success(user, title, body string, p ...Params) (*Notification, error) {
	return s.notifyKind(user, KindSuccess, title, body, p)
}

// Info posts an info-kind notification.
func (s *System) Info(user, title, body string, p ...Params) (*Notification, error) {
	return s.notifyKind(user, KindInfo, title, body, p)
}

// Warning posts a warning-kind notification.
func (s *System) Warning(user, title, body string, p ...Params) (*Notification, error) {
	return s.notifyKind(user, KindWarning, title, body, p)
}

// Error posts an error-kind notification.
func (s *System) Error(user, title, body string, p ...Params) (*Notification, error) {
	return s.notifyKind(user, KindError, title, body, p)
}

func (s *System) notifyKind(user string, kind Kind, title, body string, p []Params) (*Notification, error) {
	params := Params{TTL: DefaultTTL}
	if len(p) > 0 {
		params = p[0]
	}
	params.Kind = kind.String()
	params.Title = title
	params.Body = body
	return s.Notify(user, params)
}

// EndSession tears down a user's queue in response to the host's
// session-end signal, dismissing anything still displayed or pending.
// Unknown users are a no-op.
func (s *System) EndSession(user string) {
	s.mu.Lock()
	q, ok := s.queues[user]
	delete(s.queues, user)
	s.mu.Unlock()

	if !ok {
		return
	}
	q.Close()
	s.logger.Info("session ended", "user", user)
}

// SetCapacity updates the visible-set bound for all current and future
// queues. Raising it promotes pending notifications immediately.
func (s *System) SetCapacity(capacity int) {
	if capacity < 1 {
		capacity = 1
	}
	s.mu.Lock()
	s.capacity = capacity
	queues := make([]*Queue, 0, len(s.queues))
	for _, q := range s.queues {
		queues = append(queues, q)
	}
	s.mu.Unlock()

	for _, q := range queues {
		q.SetCapacity(capacity)
	}
}

// SetGap updates the stacking gap for all current and future queues.
func (s *System) SetGap(gap int) {
	if gap < 0 {
		gap = 0
	}
	s.mu.Lock()
	s.gap = gap
	queues := make([]*Queue, 0, len(s.queues))
	for _, q := range s.queues {
		queues = append(queues, q)
	}
	s.mu.Unlock()

	for _, q := range queues {
		q.SetGap(gap)
	}
}

// Users returns the users that currently have a queue.
func (s *System) Users() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]string, 0, len(s.queues))
	for user := range s.queues {
		users = append(users, user)
	}
	return users
}

// QueueFor returns the user's queue, or nil if none exists yet.
func (s *System) QueueFor(user string) *Queue {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queues[user]
}

func (s *System) queueFor(user string) (*Queue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if q, ok := s.queues[user]; ok {
		return q, nil
	}

	renderer, err := s.surfaces.SurfaceFor(user)
	if err != nil {
		return nil, &SurfaceError{User: user, Cause: err}
	}
	if renderer == nil {
		return nil, &SurfaceError{User: user}
	}

	q := NewQueue(user, renderer, s.sched, s.logger)
	q.capacity = s.capacity
	q.gap = s.gap
	q.onShow = s.onShow
	s.queues[user] = q
	s.logger.Debug("queue created", "user", user, "capacity", s.capacity)
	return q, nil
}

// clampTTL applies the [MinTTL, MaxTTL] bounds. Zero is preserved as the
// sticky sentinel.
func clampTTL(ttl time.Duration) time.Duration {
	if ttl == 0 {
		return 0
	}
	if ttl < MinTTL {
		return MinTTL
	}
	if ttl > MaxTTL {
		return MaxTTL
	}
	return ttl
}
