package desktop

import (
	"log/slog"
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"

	"github.com/croutonhq/crouton/internal/toast"
)

func newTestRenderer() *Renderer {
	return &Renderer{
		logger: slog.Default(),
		byID:   make(map[uint32]*remote),
	}
}

func TestUrgencyForKind(t *testing.T) {
	assert.Equal(t, urgencyCritical, urgencyForKind(toast.KindError))
	assert.Equal(t, urgencyLow, urgencyForKind(toast.KindSuccess))
	assert.Equal(t, urgencyNormal, urgencyForKind(toast.KindInfo))
	assert.Equal(t, urgencyNormal, urgencyForKind(toast.KindWarning))
}

func TestActionSignalRouting(t *testing.T) {
	r := newTestRenderer()

	var invoked []int
	r.byID[7] = &remote{id: 7, events: toast.Events{
		OnAction: func(i int) { invoked = append(invoked, i) },
	}}

	r.handleSignal(&dbus.Signal{
		Name: signalActionInvoked,
		Body: []any{uint32(7), "1"},
	})
	assert.Equal(t, []int{1}, invoked)

	// Unknown IDs and malformed keys are dropped.
	r.handleSignal(&dbus.Signal{Name: signalActionInvoked, Body: []any{uint32(99), "0"}})
	r.handleSignal(&dbus.Signal{Name: signalActionInvoked, Body: []any{uint32(7), "default"}})
	assert.Equal(t, []int{1}, invoked)
}

func TestClosedSignalRouting(t *testing.T) {
	r := newTestRenderer()

	dismissed := false
	r.byID[3] = &remote{id: 3, events: toast.Events{
		OnDismiss: func() { dismissed = true },
	}}

	r.handleSignal(&dbus.Signal{
		Name: signalNotificationClosed,
		Body: []any{uint32(3), uint32(2)},
	})
	assert.True(t, dismissed)
}

func TestClosedSignalUnknownIDIsNoop(t *testing.T) {
	r := newTestRenderer()
	r.handleSignal(&dbus.Signal{
		Name: signalNotificationClosed,
		Body: []any{uint32(42), uint32(1)},
	})
}

func TestTruncatedSignalBodyIgnored(t *testing.T) {
	r := newTestRenderer()
	r.handleSignal(&dbus.Signal{Name: signalActionInvoked, Body: []any{uint32(1)}})
	r.handleSignal(&dbus.Signal{Name: signalNotificationClosed, Body: nil})
}
