package geom

// Rect represents a window position and size in global screen coordinates.
type Rect struct {
	X      int `json:"x" yaml:"x"`
	Y      int `json:"y" yaml:"y"`
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Right returns the x coordinate one past the right edge.
func (r Rect) Right() int { return r.X + r.Width }

// Bottom returns the y coordinate one past the bottom edge.
func (r Rect) Bottom() int { return r.Y + r.Height }

// Center returns the integer center point of the rectangle.
func (r Rect) Center() (int, int) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains reports whether the point lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Inset shrinks the rectangle by n pixels on every side. A negative n grows it.
func (r Rect) Inset(n int) Rect {
	return Rect{X: r.X + n, Y: r.Y + n, Width: r.Width - 2*n, Height: r.Height - 2*n}
}

// ContainsRect reports whether inner lies fully inside r.
func (r Rect) ContainsRect(inner Rect) bool {
	return inner.X >= r.X && inner.Y >= r.Y &&
		inner.Right() <= r.Right() && inner.Bottom() <= r.Bottom()
}

// Overlaps reports whether a and b intersect once each is padded by margin.
// Rectangles are clear of each other only when one of them ends more than
// margin pixels before the other begins on some axis.
func Overlaps(a, b Rect, margin int) bool {
	clear := a.Right()+margin < b.X ||
		b.Right()+margin < a.X ||
		a.Bottom()+margin < b.Y ||
		b.Bottom()+margin < a.Y
	return !clear
}

// OverlapsAny reports whether r overlaps any of others under margin.
func OverlapsAny(r Rect, others []Rect, margin int) bool {
	for _, o := range others {
		if Overlaps(r, o, margin) {
			return true
		}
	}
	return false
}

// Clamp moves rect so it lies within bounds, keeping padding pixels clear of
// every edge. The size is never changed. When rect does not fit, its origin
// snaps to the bounds origin plus padding on that axis.
func Clamp(rect, bounds Rect, padding int) Rect {
	out := rect
	out.X = clampAxis(rect.X, bounds.X+padding, bounds.X+bounds.Width-rect.Width-padding)
	out.Y = clampAxis(rect.Y, bounds.Y+padding, bounds.Y+bounds.Height-rect.Height-padding)
	return out
}

func clampAxis(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
