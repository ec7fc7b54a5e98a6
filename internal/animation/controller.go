package animation

import (
	"io"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/1broseidon/tether/internal/eventloop"
	"github.com/1broseidon/tether/internal/platform"
)

// maxCoordinate bounds animation targets so rounding to int stays exact.
const maxCoordinate = 1 << 24

// Options set the timing of every animation.
type Options struct {
	Duration time.Duration
	Tick     time.Duration
}

// DefaultOptions returns a 300ms ease-out sampled every 8ms.
func DefaultOptions() Options {
	return Options{Duration: 300 * time.Millisecond, Tick: 8 * time.Millisecond}
}

// Controller moves windows along a cubic ease-out. Each window has at most
// one animation in flight; starting another bumps the window's generation
// and the older ticks stop on their next run. Starts, ticks and cancels all
// run on the scheduler.
type Controller struct {
	sched      eventloop.Scheduler
	onComplete func()
	logger     *slog.Logger

	mu          sync.Mutex
	opts        Options
	generations map[platform.WindowID]uint64
	running     map[platform.WindowID]bool
	starting    map[platform.WindowID]int
}

// NewController creates a controller ticking on sched. onComplete runs after
// an animation lands on its target and may be nil.
func NewController(sched eventloop.Scheduler, opts Options, onComplete func(), logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Controller{
		sched:       sched,
		onComplete:  onComplete,
		logger:      logger,
		opts:        opts,
		generations: make(map[platform.WindowID]uint64),
		running:     make(map[platform.WindowID]bool),
		starting:    make(map[platform.WindowID]int),
	}
}

// SetOptions changes timing for animations started afterwards.
func (c *Controller) SetOptions(opts Options) {
	c.mu.Lock()
	c.opts = opts
	c.mu.Unlock()
}

// AnimateTo starts moving win to (x, y). It reports false, and touches
// nothing, when the window is gone or the target is unusable. The start
// itself is posted to the scheduler and reads the window position there.
func (c *Controller) AnimateTo(win platform.Window, x, y float64) bool {
	if win == nil || !win.IsAlive() {
		return false
	}
	if !finite(x, y) {
		c.logger.Debug("animation rejected, non-finite target",
			"window", win.ID(), "x", x, "y", y)
		return false
	}

	id := win.ID()
	c.mu.Lock()
	c.starting[id]++
	c.mu.Unlock()

	c.sched.Post(func() { c.start(win, x, y) })
	return true
}

func (c *Controller) start(win platform.Window, x, y float64) {
	id := win.ID()
	c.mu.Lock()
	if c.starting[id]--; c.starting[id] <= 0 {
		delete(c.starting, id)
	}
	c.mu.Unlock()

	if !win.IsAlive() {
		return
	}
	bounds, ok := win.Bounds()
	if !ok {
		return
	}
	startX, startY := float64(bounds.X), float64(bounds.Y)
	if !finite(startX, startY) {
		c.logger.Debug("animation rejected, non-finite start",
			"window", id, "x", startX, "y", startY)
		return
	}

	c.mu.Lock()
	opts := c.opts
	c.generations[id]++
	gen := c.generations[id]
	c.running[id] = true
	c.mu.Unlock()

	t0 := c.sched.Now()
	targetX, targetY := int(math.Round(x)), int(math.Round(y))

	var step func()
	step = func() {
		if !c.current(id, gen) {
			return
		}
		if !win.IsAlive() {
			c.finish(id, gen)
			return
		}

		progress := 1.0
		if opts.Duration > 0 {
			progress = math.Min(float64(c.sched.Now().Sub(t0))/float64(opts.Duration), 1)
		}

		if progress >= 1 {
			if err := win.SetPosition(targetX, targetY); err != nil {
				c.logger.Debug("animation final write failed", "window", id, "error", err)
			}
			if c.finish(id, gen) && c.onComplete != nil {
				c.onComplete()
			}
			return
		}

		eased := EaseOutCubic(progress)
		nx := startX + (x-startX)*eased
		ny := startY + (y-startY)*eased
		if !finite(nx, ny) {
			c.finish(id, gen)
			return
		}
		if err := win.SetPosition(int(math.Round(nx)), int(math.Round(ny))); err != nil {
			c.logger.Debug("animation stopped", "window", id, "error", err)
			c.finish(id, gen)
			return
		}
		c.sched.After(opts.Tick, step)
	}
	c.sched.After(opts.Tick, step)
}

// IsAnimating reports whether an animation for id is in flight or queued
// to start.
func (c *Controller) IsAnimating(id platform.WindowID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running[id] || c.starting[id] > 0
}

// Cancel stops the animation for id, if any, where it currently is. It runs
// on the scheduler after any start already posted.
func (c *Controller) Cancel(id platform.WindowID) {
	c.sched.Post(func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.running[id] {
			c.generations[id]++
			delete(c.running, id)
		}
	})
}

func (c *Controller) current(id platform.WindowID, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[id] == gen
}

// finish clears the running flag if gen is still current.
func (c *Controller) finish(id platform.WindowID, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[id] != gen {
		return false
	}
	delete(c.running, id)
	return true
}

// EaseOutCubic maps linear progress p in [0,1] to 1-(1-p)^3.
func EaseOutCubic(p float64) float64 {
	inv := 1 - p
	return 1 - inv*inv*inv
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > maxCoordinate {
			return false
		}
	}
	return true
}
