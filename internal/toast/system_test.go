package toast

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSystem(t *testing.T) (*System, *fakeRenderer, *manualScheduler) {
	t.Helper()
	renderer := newFakeRenderer()
	sched := newManualScheduler()
	sys := NewSystem(StaticSurface(renderer), WithScheduler(sched))
	return sys, renderer, sched
}

func TestNotify_NormalizesUnknownKind(t *testing.T) {
	sys, _, _ := newTestSystem(t)

	n, err := sys.Notify("alice", Params{Kind: "Critical", Title: "t", TTL: 5 * time.Second})
	require.NoError(t, err)

	assert.Equal(t, KindInfo, n.Kind())
	assert.True(t, n.Visible())
}

func TestNotify_NormalizesUnknownAnchor(t *testing.T) {
	sys, _, _ := newTestSystem(t)

	n, err := sys.Notify("alice", Params{Anchor: "middle-out", Title: "t", TTL: 5 * time.Second})
	require.NoError(t, err)

	assert.Equal(t, AnchorTopRight, n.Anchor())
}

func TestNotify_ClampsTTL(t *testing.T) {
	tests := []struct {
		name string
		in   time.Duration
		want time.Duration
	}{
		{"below minimum", time.Second, MinTTL},
		{"just below minimum", MinTTL - time.Millisecond, MinTTL},
		{"at minimum", MinTTL, MinTTL},
		{"in range", 10 * time.Second, 10 * time.Second},
		{"at maximum", MaxTTL, MaxTTL},
		{"above maximum", time.Minute, MaxTTL},
		{"negative", -time.Second, MinTTL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys, _, _ := newTestSystem(t)
			n, err := sys.Notify("alice", Params{Title: "t", TTL: tt.in})
			require.NoError(t, err)
			assert.Equal(t, tt.want, n.TTL())
		})
	}
}

func TestNotify_ZeroTTLIsStickySentinel(t *testing.T) {
	sys, _, sched := newTestSystem(t)

	n, err := sys.Notify("alice", Params{Title: "stay", TTL: 0})
	require.NoError(t, err)

	// Zero is exempt from the clamp: no timer, stays until dismissed.
	assert.Equal(t, time.Duration(0), n.TTL())
	assert.Equal(t, 0, sched.pendingCount())
	assert.True(t, n.Visible())
}

func TestNotify_ReturnsHandleForEarlyDismissal(t *testing.T) {
	sys, renderer, sched := newTestSystem(t)

	n, err := sys.Notify("alice", Params{Title: "t", TTL: 10 * time.Second})
	require.NoError(t, err)

	n.Dismiss()
	sched.fireAll()

	assert.Equal(t, 1, renderer.destroys)
	assert.Equal(t, 0, sys.QueueFor("alice").ActiveCount())
}

func TestNotify_DisplayUnavailable(t *testing.T) {
	renderer := newFakeRenderer()
	surfaces := &flakySurfaces{renderer: renderer, deny: map[string]bool{"ghost": true}}
	sys := NewSystem(surfaces, WithScheduler(newManualScheduler()))

	// An established user is unaffected by another user's failure.
	_, err := sys.Notify("alice", Params{Title: "ok"})
	require.NoError(t, err)

	n, err := sys.Notify("ghost", Params{Title: "nope"})
	assert.Nil(t, n)
	assert.ErrorIs(t, err, ErrDisplayUnavailable)
	assert.ErrorIs(t, err, errNoSurface)
	assert.Nil(t, sys.QueueFor("ghost"))

	assert.Equal(t, 1, sys.QueueFor("alice").ActiveCount())
}

func TestConvenienceWrappers_SetKind(t *testing.T) {
	sys, _, _ := newTestSystem(t)

	success, err := sys.Success("alice", "done", "it worked")
	require.NoError(t, err)
	info, err := sys.Info("alice", "fyi", "")
	require.NoError(t, err)
	warning, err := sys.Warning("alice", "careful", "")
	require.NoError(t, err)
	failure, err := sys.Error("alice", "broke", "")
	require.NoError(t, err)

	assert.Equal(t, KindSuccess, success.Kind())
	assert.Equal(t, KindInfo, info.Kind())
	assert.Equal(t, KindWarning, warning.Kind())
	assert.Equal(t, KindError, failure.Kind())

	// Wrappers without params use the default TTL.
	assert.Equal(t, DefaultTTL, success.TTL())
}

func TestConvenienceWrappers_OptionalParams(t *testing.T) {
	sys, _, _ := newTestSystem(t)

	n, err := sys.Warning("alice", "careful", "details", Params{
		TTL:    15 * time.Second,
		Anchor: "bottom-left",
	})
	require.NoError(t, err)

	assert.Equal(t, KindWarning, n.Kind())
	assert.Equal(t, "careful", n.Title())
	assert.Equal(t, 15*time.Second, n.TTL())
	assert.Equal(t, AnchorBottomLeft, n.Anchor())
}

func TestSystem_UsersAreIndependent(t *testing.T) {
	sys, renderer, _ := newTestSystem(t)

	for i := 0; i < 5; i++ {
		_, err := sys.Notify("alice", Params{Title: fmt.Sprintf("a-%d", i)})
		require.NoError(t, err)
	}
	_, err := sys.Notify("bob", Params{Title: "b-0"})
	require.NoError(t, err)

	// Alice's full queue does not delay Bob's display.
	assert.Equal(t, DefaultCapacity, sys.QueueFor("alice").ActiveCount())
	assert.Equal(t, 2, sys.QueueFor("alice").PendingCount())
	assert.Equal(t, 1, sys.QueueFor("bob").ActiveCount())
	assert.Equal(t, DefaultCapacity+1, renderer.mountCount())
}

func TestSystem_EndSession(t *testing.T) {
	sys, _, sched := newTestSystem(t)

	for i := 0; i < 5; i++ {
		_, err := sys.Notify("alice", Params{Title: fmt.Sprintf("a-%d", i)})
		require.NoError(t, err)
	}

	sys.EndSession("alice")
	sched.fireAll()

	assert.Nil(t, sys.QueueFor("alice"))
	assert.NotContains(t, sys.Users(), "alice")

	// The user can come back; a fresh queue is created lazily.
	_, err := sys.Notify("alice", Params{Title: "back"})
	require.NoError(t, err)
	assert.Equal(t, 1, sys.QueueFor("alice").ActiveCount())
}

func TestSystem_EndSessionUnknownUser(t *testing.T) {
	sys, _, _ := newTestSystem(t)
	assert.NotPanics(t, func() { sys.EndSession("nobody") })
}

func TestSystem_SetCapacityPropagates(t *testing.T) {
	sys, _, _ := newTestSystem(t)

	for i := 0; i < 6; i++ {
		_, err := sys.Notify("alice", Params{Title: fmt.Sprintf("a-%d", i)})
		require.NoError(t, err)
	}
	require.Equal(t, 3, sys.QueueFor("alice").ActiveCount())

	sys.SetCapacity(6)
	assert.Equal(t, 6, sys.QueueFor("alice").ActiveCount())

	// New queues pick up the new bound too.
	for i := 0; i < 6; i++ {
		_, err := sys.Notify("bob", Params{Title: fmt.Sprintf("b-%d", i)})
		require.NoError(t, err)
	}
	assert.Equal(t, 6, sys.QueueFor("bob").ActiveCount())
}

func TestSystem_ShowListener(t *testing.T) {
	renderer := newFakeRenderer()
	var shown []Kind
	sys := NewSystem(StaticSurface(renderer),
		WithScheduler(newManualScheduler()),
		WithShowListener(func(n *Notification) { shown = append(shown, n.Kind()) }),
	)

	_, err := sys.Success("alice", "one", "")
	require.NoError(t, err)
	_, err = sys.Error("alice", "two", "")
	require.NoError(t, err)

	assert.Equal(t, []Kind{KindSuccess, KindError}, shown)
}
