package display

import (
	"io"
	"log/slog"

	"github.com/1broseidon/tether/internal/platform"
)

// Resolver answers "which usable area applies here" against the host's
// current display list. Nothing is cached between calls so hot-plugged or
// resized monitors are picked up on the next query.
type Resolver struct {
	source platform.DisplaySource
	logger *slog.Logger
}

// NewResolver creates a resolver over source.
func NewResolver(source platform.DisplaySource, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Resolver{source: source, logger: logger}
}

func (r *Resolver) displays() []platform.Display {
	if r.source == nil {
		return nil
	}
	displays, err := r.source.Displays()
	if err != nil {
		r.logger.Warn("display enumeration failed", "error", err)
		return nil
	}
	return displays
}

// Primary returns the primary display, or the first one when none is
// flagged. With no displays at all the zero Display is returned and its
// empty usable area tells callers to skip placement.
func (r *Resolver) Primary() platform.Display {
	return primaryOf(r.displays())
}

// DisplayFor returns the display nearest to the center of win. Missing or
// destroyed windows resolve to the primary display.
func (r *Resolver) DisplayFor(win platform.Window) platform.Display {
	displays := r.displays()
	if win == nil || !win.IsAlive() {
		return primaryOf(displays)
	}
	bounds, ok := win.Bounds()
	if !ok {
		return primaryOf(displays)
	}
	cx, cy := bounds.Center()
	return nearest(displays, cx, cy)
}

// DisplayAt returns the display nearest to the point (x, y).
func (r *Resolver) DisplayAt(x, y int) platform.Display {
	return nearest(r.displays(), x, y)
}

// DisplayByID returns the display with the given id, falling back to the
// primary display.
func (r *Resolver) DisplayByID(id int) platform.Display {
	displays := r.displays()
	for _, d := range displays {
		if d.ID == id {
			return d
		}
	}
	return primaryOf(displays)
}

// All returns the current display list.
func (r *Resolver) All() []platform.Display {
	return r.displays()
}

func primaryOf(displays []platform.Display) platform.Display {
	if len(displays) == 0 {
		return platform.Display{}
	}
	for _, d := range displays {
		if d.Primary {
			return d
		}
	}
	return displays[0]
}

// nearest prefers a display whose full bounds contain the point and
// otherwise picks the one with the smallest squared distance to it.
func nearest(displays []platform.Display, x, y int) platform.Display {
	if len(displays) == 0 {
		return platform.Display{}
	}
	for _, d := range displays {
		if d.Bounds.Contains(x, y) {
			return d
		}
	}

	best := displays[0]
	bestDist := -1
	for _, d := range displays {
		dx := axisDistance(x, d.Bounds.X, d.Bounds.Right())
		dy := axisDistance(y, d.Bounds.Y, d.Bounds.Bottom())
		dist := dx*dx + dy*dy
		if bestDist < 0 || dist < bestDist {
			best = d
			bestDist = dist
		}
	}
	return best
}

func axisDistance(v, lo, hi int) int {
	switch {
	case v < lo:
		return lo - v
	case v >= hi:
		return v - hi + 1
	default:
		return 0
	}
}
