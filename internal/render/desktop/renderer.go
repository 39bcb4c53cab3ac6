// Package desktop forwards notifications to the freedesktop notification
// daemon over D-Bus. The daemon owns placement and animation, so stacking
// geometry degrades to no-ops; lifecycle events flow back through the
// ActionInvoked and NotificationClosed signals.
package desktop

import (
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/croutonhq/crouton/internal/toast"
)

const (
	dbusObjectPath             = "/org/freedesktop/Notifications"
	dbusNotificationsInterface = "org.freedesktop.Notifications"
	signalNotificationClosed   = dbusNotificationsInterface + ".NotificationClosed"
	signalActionInvoked        = dbusNotificationsInterface + ".ActionInvoked"
	callNotify                 = dbusNotificationsInterface + ".Notify"
	callCloseNotification      = dbusNotificationsInterface + ".CloseNotification"
	callGetCapabilities        = dbusNotificationsInterface + ".GetCapabilities"

	signalBufferSize = 16
)

const (
	urgencyLow      = byte(0)
	urgencyNormal   = byte(1)
	urgencyCritical = byte(2)
)

type remote struct {
	id     uint32
	events toast.Events
}

// Renderer implements toast.Renderer against org.freedesktop.Notifications.
type Renderer struct {
	mu      sync.Mutex
	conn    *dbus.Conn
	logger  *slog.Logger
	appName string
	appIcon string
	signals chan *dbus.Signal
	done    chan struct{}
	byID    map[uint32]*remote
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithAppName sets the application name sent with each notification.
func WithAppName(name string) Option {
	return func(r *Renderer) { r.appName = name }
}

// WithAppIcon sets the icon name sent with each notification.
func WithAppIcon(icon string) Option {
	return func(r *Renderer) { r.appIcon = icon }
}

// WithLogger sets the renderer's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) { r.logger = logger }
}

// New connects to the session bus, subscribes to notification signals and
// starts the event loop.
func New(opts ...Option) (*Renderer, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}

	r := &Renderer{
		conn:    conn,
		logger:  slog.Default(),
		appName: "crouton",
		signals: make(chan *dbus.Signal, signalBufferSize),
		done:    make(chan struct{}),
		byID:    make(map[uint32]*remote),
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := conn.AddMatchSignal(
		dbus.WithMatchObjectPath(dbusObjectPath),
		dbus.WithMatchInterface(dbusNotificationsInterface),
	); err != nil {
		return nil, fmt.Errorf("failed to subscribe to notification signals: %w", err)
	}
	conn.Signal(r.signals)
	go r.eventLoop()

	return r, nil
}

// Mount sends the notification to the daemon and records its server ID so
// later signals can be routed back.
func (r *Renderer) Mount(c toast.Content, ev toast.Events) (toast.Handle, error) {
	obj := r.conn.Object(dbusNotificationsInterface, dbusObjectPath)

	actions := make([]string, 0, len(c.Actions)*2)
	for i, label := range c.Actions {
		actions = append(actions, strconv.Itoa(i), label)
	}
	hints := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(urgencyForKind(c.Kind)),
	}

	// The engine owns expiry, so the daemon is told never to expire and
	// notifications are closed explicitly on destroy.
	call := obj.Call(callNotify, 0,
		r.appName,
		uint32(0),
		r.appIcon,
		c.Title,
		c.Body,
		actions,
		hints,
		int32(0),
	)
	if call.Err != nil {
		return nil, fmt.Errorf("notify call failed: %w", call.Err)
	}

	var id uint32
	if err := call.Store(&id); err != nil {
		return nil, fmt.Errorf("failed to read notification id: %w", err)
	}

	rm := &remote{id: id, events: ev}
	r.mu.Lock()
	r.byID[id] = rm
	r.mu.Unlock()

	r.logger.Debug("desktop notification sent", "id", id, "title", c.Title)
	return rm, nil
}

// AnimateIn is a no-op; the daemon animates on its own.
func (r *Renderer) AnimateIn(h toast.Handle) {}

// AnimateOut returns zero; the daemon removes the notification when it is
// closed, with no client-side exit phase.
func (r *Renderer) AnimateOut(h toast.Handle) time.Duration { return 0 }

// Destroy closes the notification on the daemon and drops the routing entry.
func (r *Renderer) Destroy(h toast.Handle) {
	rm := h.(*remote)

	r.mu.Lock()
	delete(r.byID, rm.id)
	r.mu.Unlock()

	obj := r.conn.Object(dbusNotificationsInterface, dbusObjectPath)
	if call := obj.Call(callCloseNotification, 0, rm.id); call.Err != nil {
		r.logger.Debug("close notification failed", "id", rm.id, "error", call.Err)
	}
}

// MeasureHeight returns a nominal unit height. The daemon stacks its own
// popups, so heights only keep the engine's bookkeeping consistent.
func (r *Renderer) MeasureHeight(h toast.Handle) int { return 1 }

// Reposition is a no-op; placement belongs to the daemon.
func (r *Renderer) Reposition(h toast.Handle, offset int) {}

// Capabilities returns the notification server's optional capabilities.
func (r *Renderer) Capabilities() ([]string, error) {
	obj := r.conn.Object(dbusNotificationsInterface, dbusObjectPath)
	call := obj.Call(callGetCapabilities, 0)
	if call.Err != nil {
		return nil, call.Err
	}
	var caps []string
	if err := call.Store(&caps); err != nil {
		return nil, err
	}
	return caps, nil
}

// Close stops the event loop and unsubscribes from signals.
func (r *Renderer) Close() error {
	close(r.done)
	r.conn.RemoveSignal(r.signals)
	return r.conn.RemoveMatchSignal(
		dbus.WithMatchObjectPath(dbusObjectPath),
		dbus.WithMatchInterface(dbusNotificationsInterface),
	)
}

func (r *Renderer) eventLoop() {
	for {
		select {
		case sig, ok := <-r.signals:
			if !ok {
				return
			}
			r.handleSignal(sig)
		case <-r.done:
			return
		}
	}
}

func (r *Renderer) handleSignal(sig *dbus.Signal) {
	switch sig.Name {
	case signalActionInvoked:
		if len(sig.Body) < 2 {
			return
		}
		id, _ := sig.Body[0].(uint32)
		key, _ := sig.Body[1].(string)
		r.routeAction(id, key)
	case signalNotificationClosed:
		if len(sig.Body) < 1 {
			return
		}
		id, _ := sig.Body[0].(uint32)
		r.routeClosed(id)
	}
}

func (r *Renderer) routeAction(id uint32, key string) {
	r.mu.Lock()
	rm := r.byID[id]
	r.mu.Unlock()
	if rm == nil || rm.events.OnAction == nil {
		return
	}

	index, err := strconv.Atoi(key)
	if err != nil {
		r.logger.Debug("ignoring unknown action key", "id", id, "key", key)
		return
	}
	rm.events.OnAction(index)
}

func (r *Renderer) routeClosed(id uint32) {
	r.mu.Lock()
	rm := r.byID[id]
	r.mu.Unlock()
	if rm == nil || rm.events.OnDismiss == nil {
		return
	}
	rm.events.OnDismiss()
}

// urgencyForKind maps notification kinds onto freedesktop urgency levels.
func urgencyForKind(k toast.Kind) byte {
	switch k {
	case toast.KindError:
		return urgencyCritical
	case toast.KindSuccess:
		return urgencyLow
	default:
		return urgencyNormal
	}
}
