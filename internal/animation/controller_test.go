package animation

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/1broseidon/tether/internal/eventloop"
	"github.com/1broseidon/tether/internal/geom"
	"github.com/1broseidon/tether/internal/platform"
)

type movingWindow struct {
	bounds geom.Rect
	alive  bool
	writes []geom.Rect
}

func (w *movingWindow) ID() platform.WindowID { return 7 }

func (w *movingWindow) Bounds() (geom.Rect, bool) {
	if !w.alive {
		return geom.Rect{}, false
	}
	return w.bounds, true
}

func (w *movingWindow) SetBounds(b geom.Rect) error {
	if !w.alive {
		return errors.New("gone")
	}
	w.bounds = b
	w.writes = append(w.writes, b)
	return nil
}

func (w *movingWindow) SetPosition(x, y int) error {
	return w.SetBounds(geom.Rect{X: x, Y: y, Width: w.bounds.Width, Height: w.bounds.Height})
}

func (w *movingWindow) IsVisible() bool { return w.alive }
func (w *movingWindow) IsAlive() bool   { return w.alive }
func (w *movingWindow) Raise() error    { return nil }

func newController(t *testing.T) (*Controller, *eventloop.Manual, *int) {
	t.Helper()
	sched := eventloop.NewManual(time.Unix(100, 0))
	completions := 0
	c := NewController(sched, DefaultOptions(), func() { completions++ }, nil)
	return c, sched, &completions
}

func TestAnimateTo_ConvergesWithinDurationPlusTick(t *testing.T) {
	c, sched, completions := newController(t)
	win := &movingWindow{bounds: geom.Rect{Width: 100, Height: 80}, alive: true}

	if !c.AnimateTo(win, 500, 300) {
		t.Fatalf("expected animation to start")
	}
	if !c.IsAnimating(win.ID()) {
		t.Fatalf("expected window marked animating")
	}

	opts := DefaultOptions()
	sched.Advance(opts.Duration + opts.Tick)

	want := geom.Rect{X: 500, Y: 300, Width: 100, Height: 80}
	if win.bounds != want {
		t.Fatalf("expected %+v, got %+v", want, win.bounds)
	}
	if c.IsAnimating(win.ID()) {
		t.Fatalf("expected animating flag cleared")
	}
	if sched.PendingTimers() != 0 {
		t.Fatalf("expected no pending ticks, got %d", sched.PendingTimers())
	}
	if *completions != 1 {
		t.Fatalf("expected one completion callback, got %d", *completions)
	}

	prev := 0
	for _, w := range win.writes {
		if w.X < prev || w.X > 500 {
			t.Fatalf("expected monotonic progress toward target, got x=%d after %d", w.X, prev)
		}
		prev = w.X
	}

	n := len(win.writes)
	sched.Advance(time.Second)
	if len(win.writes) != n {
		t.Fatalf("expected no writes after completion")
	}
}

func TestAnimateTo_NonFiniteInputIsRejected(t *testing.T) {
	c, sched, _ := newController(t)
	start := geom.Rect{X: 40, Y: 50, Width: 100, Height: 80}
	win := &movingWindow{bounds: start, alive: true}

	for _, target := range [][2]float64{
		{math.NaN(), 100},
		{100, math.Inf(1)},
		{math.Inf(-1), 0},
	} {
		if c.AnimateTo(win, target[0], target[1]) {
			t.Fatalf("expected %v to be rejected", target)
		}
	}
	if win.bounds != start || len(win.writes) != 0 {
		t.Fatalf("expected bounds unchanged, got %+v", win.bounds)
	}
	if sched.PendingTimers() != 0 || sched.Pending() != 0 {
		t.Fatalf("expected nothing scheduled, got %d timers and %d tasks", sched.PendingTimers(), sched.Pending())
	}
	if c.IsAnimating(win.ID()) {
		t.Fatalf("expected no animation state")
	}
}

func TestAnimateTo_DeadWindowIsSkipped(t *testing.T) {
	c, sched, _ := newController(t)
	win := &movingWindow{bounds: geom.Rect{Width: 100, Height: 80}}

	if c.AnimateTo(win, 10, 10) {
		t.Fatalf("expected destroyed window to be skipped")
	}
	if c.AnimateTo(nil, 10, 10) {
		t.Fatalf("expected nil window to be skipped")
	}
	if sched.PendingTimers() != 0 || sched.Pending() != 0 {
		t.Fatalf("expected nothing scheduled")
	}
}

func TestAnimateTo_WindowDestroyedBeforeStart(t *testing.T) {
	c, sched, completions := newController(t)
	win := &movingWindow{bounds: geom.Rect{Width: 100, Height: 80}, alive: true}

	if !c.AnimateTo(win, 300, 300) {
		t.Fatalf("expected animation to be queued")
	}
	win.alive = false
	sched.Advance(time.Second)

	if len(win.writes) != 0 {
		t.Fatalf("expected no writes, got %d", len(win.writes))
	}
	if c.IsAnimating(win.ID()) {
		t.Fatalf("expected no animation state")
	}
	if sched.PendingTimers() != 0 || *completions != 0 {
		t.Fatalf("expected no ticks and no completion")
	}
}

func TestAnimateTo_NewTargetSupersedes(t *testing.T) {
	c, sched, completions := newController(t)
	win := &movingWindow{bounds: geom.Rect{Width: 100, Height: 80}, alive: true}

	c.AnimateTo(win, 1000, 0)
	sched.Advance(50 * time.Millisecond)
	midX := win.bounds.X
	if midX <= 0 {
		t.Fatalf("expected first animation to make progress, got x=%d", midX)
	}

	c.AnimateTo(win, 0, 400)
	restart := len(win.writes)
	sched.Advance(400 * time.Millisecond)

	want := geom.Rect{X: 0, Y: 400, Width: 100, Height: 80}
	if win.bounds != want {
		t.Fatalf("expected %+v, got %+v", want, win.bounds)
	}
	prev := midX
	for _, w := range win.writes[restart:] {
		if w.X > prev {
			t.Fatalf("stale tick wrote x=%d after being superseded", w.X)
		}
		prev = w.X
	}
	if *completions != 1 {
		t.Fatalf("expected only the newest animation to complete, got %d", *completions)
	}
}

func TestAnimateTo_WindowDestroyedMidFlight(t *testing.T) {
	c, sched, completions := newController(t)
	win := &movingWindow{bounds: geom.Rect{Width: 100, Height: 80}, alive: true}

	c.AnimateTo(win, 600, 600)
	sched.Advance(40 * time.Millisecond)
	win.alive = false
	n := len(win.writes)

	sched.Advance(time.Second)

	if len(win.writes) != n {
		t.Fatalf("expected no writes after destruction")
	}
	if c.IsAnimating(win.ID()) {
		t.Fatalf("expected animation to stop")
	}
	if sched.PendingTimers() != 0 {
		t.Fatalf("expected tick loop to end")
	}
	if *completions != 0 {
		t.Fatalf("expected no completion for an aborted animation")
	}
}

func TestCancel(t *testing.T) {
	c, sched, completions := newController(t)
	win := &movingWindow{bounds: geom.Rect{Width: 100, Height: 80}, alive: true}

	c.AnimateTo(win, 600, 0)
	sched.Advance(16 * time.Millisecond)
	c.Cancel(win.ID())
	at := win.bounds

	sched.Advance(time.Second)
	if win.bounds != at {
		t.Fatalf("expected window to stay at %+v after cancel, got %+v", at, win.bounds)
	}
	if *completions != 0 {
		t.Fatalf("expected no completion after cancel")
	}
	if c.IsAnimating(win.ID()) {
		t.Fatalf("expected animating flag cleared by cancel")
	}
}

// gatedWindow blocks inside its first SetPosition until released, and logs
// every read and write in order.
type gatedWindow struct {
	mu      sync.Mutex
	bounds  geom.Rect
	events  []event
	gated   bool
	entered chan struct{}
	release chan struct{}
}

type event struct {
	read bool
	x    int
}

func (w *gatedWindow) ID() platform.WindowID { return 9 }

func (w *gatedWindow) Bounds() (geom.Rect, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.events = append(w.events, event{read: true, x: w.bounds.X})
	return w.bounds, true
}

func (w *gatedWindow) SetBounds(b geom.Rect) error {
	w.mu.Lock()
	block := !w.gated
	w.gated = true
	w.mu.Unlock()

	if block {
		close(w.entered)
		<-w.release
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.bounds = b
	w.events = append(w.events, event{x: b.X})
	return nil
}

func (w *gatedWindow) SetPosition(x, y int) error {
	w.mu.Lock()
	b := geom.Rect{X: x, Y: y, Width: w.bounds.Width, Height: w.bounds.Height}
	w.mu.Unlock()
	return w.SetBounds(b)
}

func (w *gatedWindow) IsVisible() bool { return true }
func (w *gatedWindow) IsAlive() bool   { return true }
func (w *gatedWindow) Raise() error    { return nil }

func TestAnimateTo_RetargetDuringBlockedWrite(t *testing.T) {
	loop := eventloop.New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	done := make(chan struct{}, 1)
	c := NewController(loop, Options{Duration: 40 * time.Millisecond, Tick: 2 * time.Millisecond},
		func() { done <- struct{}{} }, nil)
	win := &gatedWindow{
		bounds:  geom.Rect{Width: 100, Height: 80},
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}

	if !c.AnimateTo(win, 1000, 0) {
		t.Fatalf("expected first animation to start")
	}
	select {
	case <-win.entered:
	case <-time.After(2 * time.Second):
		t.Fatalf("first tick never wrote")
	}

	if !c.AnimateTo(win, -1000, 0) {
		t.Fatalf("expected retarget to start")
	}
	close(win.release)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("retargeted animation never completed")
	}

	win.mu.Lock()
	defer win.mu.Unlock()
	if win.bounds.X != -1000 {
		t.Fatalf("expected final x=-1000, got %d", win.bounds.X)
	}

	// The last read is the retarget sampling its start; every write after
	// it must come from the retargeted animation.
	last := -1
	for i, e := range win.events {
		if e.read {
			last = i
		}
	}
	if last < 0 {
		t.Fatalf("expected the retarget to read the window position")
	}
	prev := win.events[last].x
	for _, e := range win.events[last+1:] {
		if e.x > prev {
			t.Fatalf("write x=%d landed after the retarget started from x=%d", e.x, win.events[last].x)
		}
		prev = e.x
	}
}

func TestEaseOutCubic(t *testing.T) {
	cases := map[float64]float64{0: 0, 0.5: 0.875, 1: 1}
	for in, want := range cases {
		if got := EaseOutCubic(in); math.Abs(got-want) > 1e-9 {
			t.Fatalf("EaseOutCubic(%v) = %v, want %v", in, got, want)
		}
	}
}
