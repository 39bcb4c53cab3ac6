package toast

import (
	"errors"
	"sync"
	"time"
)

// fakeHandle is what the fake renderer hands back for a mounted visual.
type fakeHandle struct {
	content   Content
	events    Events
	height    int
	offset    int
	destroyed bool
}

// fakeRenderer records every renderer call so tests can assert on ordering
// and counts.
type fakeRenderer struct {
	mu sync.Mutex

	height   int
	exit     time.Duration
	mountErr error

	mounts      []*fakeHandle
	animateIns  int
	animateOuts int
	destroys    int
	repositions []reposition
}

type reposition struct {
	handle *fakeHandle
	offset int
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{height: 4}
}

func (r *fakeRenderer) Mount(c Content, ev Events) (Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.mountErr != nil {
		return nil, r.mountErr
	}
	h := &fakeHandle{content: c, events: ev, height: r.height}
	r.mounts = append(r.mounts, h)
	return h, nil
}

func (r *fakeRenderer) AnimateIn(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.animateIns++
}

func (r *fakeRenderer) AnimateOut(h Handle) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.animateOuts++
	return r.exit
}

func (r *fakeRenderer) Destroy(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.destroys++
	h.(*fakeHandle).destroyed = true
}

func (r *fakeRenderer) MeasureHeight(h Handle) int {
	return h.(*fakeHandle).height
}

func (r *fakeRenderer) Reposition(h Handle, offset int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fh := h.(*fakeHandle)
	fh.offset = offset
	r.repositions = append(r.repositions, reposition{handle: fh, offset: offset})
}

func (r *fakeRenderer) mountCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.mounts)
}

func (r *fakeRenderer) mountedTitles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	titles := make([]string, len(r.mounts))
	for i, h := range r.mounts {
		titles[i] = h.content.Title
	}
	return titles
}

// manualScheduler collects scheduled callbacks and fires them only when a
// test says so, making timer interleavings deterministic.
type manualScheduler struct {
	mu    sync.Mutex
	tasks []scheduledTask
}

type scheduledTask struct {
	delay time.Duration
	fn    func()
}

func newManualScheduler() *manualScheduler {
	return &manualScheduler{}
}

func (s *manualScheduler) ScheduleOnce(d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, scheduledTask{delay: d, fn: fn})
}

// fireAll runs every queued task, including tasks scheduled by the tasks
// themselves, until none remain.
func (s *manualScheduler) fireAll() {
	for {
		s.mu.Lock()
		tasks := s.tasks
		s.tasks = nil
		s.mu.Unlock()
		if len(tasks) == 0 {
			return
		}
		for _, t := range tasks {
			t.fn()
		}
	}
}

// fireNext runs the oldest queued task.
func (s *manualScheduler) fireNext() bool {
	s.mu.Lock()
	if len(s.tasks) == 0 {
		s.mu.Unlock()
		return false
	}
	t := s.tasks[0]
	s.tasks = s.tasks[1:]
	s.mu.Unlock()
	t.fn()
	return true
}

func (s *manualScheduler) pendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

var errNoSurface = errors.New("session not ready")

// flakySurfaces fails surface lookups for users in the deny set.
type flakySurfaces struct {
	renderer Renderer
	deny     map[string]bool
}

func (f *flakySurfaces) SurfaceFor(user string) (Renderer, error) {
	if f.deny[user] {
		return nil, errNoSurface
	}
	return f.renderer, nil
}
