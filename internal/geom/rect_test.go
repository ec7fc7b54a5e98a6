package geom

import "testing"

func TestOverlaps_Symmetric(t *testing.T) {
	cases := []struct {
		name   string
		a, b   Rect
		margin int
		want   bool
	}{
		{"disjoint horizontally", Rect{0, 0, 100, 100}, Rect{200, 0, 100, 100}, 10, false},
		{"gap smaller than margin", Rect{0, 0, 100, 100}, Rect{105, 0, 100, 100}, 10, true},
		{"gap equal to margin", Rect{0, 0, 100, 100}, Rect{110, 0, 100, 100}, 10, true},
		{"gap one past margin", Rect{0, 0, 100, 100}, Rect{111, 0, 100, 100}, 10, false},
		{"nested", Rect{0, 0, 500, 500}, Rect{100, 100, 10, 10}, 0, true},
		{"disjoint vertically", Rect{0, 0, 100, 100}, Rect{0, 300, 100, 100}, 10, false},
		{"touching edges zero margin", Rect{0, 0, 100, 100}, Rect{100, 0, 100, 100}, 0, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Overlaps(tc.a, tc.b, tc.margin); got != tc.want {
				t.Fatalf("Overlaps(a,b)=%v, want %v", got, tc.want)
			}
			if got := Overlaps(tc.b, tc.a, tc.margin); got != tc.want {
				t.Fatalf("Overlaps(b,a)=%v, want %v", got, tc.want)
			}
		})
	}
}

func TestClamp_KeepsSizeAndPadding(t *testing.T) {
	bounds := Rect{X: 0, Y: 0, Width: 1920, Height: 1080}

	got := Clamp(Rect{X: -204, Y: 168, Width: 1008, Height: 500}, bounds, 8)
	if got.X != 8 || got.Y != 168 {
		t.Fatalf("expected origin (8,168), got (%d,%d)", got.X, got.Y)
	}
	if got.Width != 1008 || got.Height != 500 {
		t.Fatalf("size changed: %dx%d", got.Width, got.Height)
	}

	got = Clamp(Rect{X: 1900, Y: 1000, Width: 200, Height: 200}, bounds, 10)
	if got.X != 1920-200-10 || got.Y != 1080-200-10 {
		t.Fatalf("expected origin clamped to far edge, got (%d,%d)", got.X, got.Y)
	}
}

func TestClamp_OversizedSnapsToPaddedOrigin(t *testing.T) {
	bounds := Rect{X: 1920, Y: 100, Width: 300, Height: 200}
	got := Clamp(Rect{X: 5000, Y: -50, Width: 400, Height: 400}, bounds, 10)
	if got.X != 1930 || got.Y != 110 {
		t.Fatalf("expected (1930,110), got (%d,%d)", got.X, got.Y)
	}
}

func TestRectHelpers(t *testing.T) {
	r := Rect{X: 100, Y: 100, Width: 400, Height: 60}
	if cx, cy := r.Center(); cx != 300 || cy != 130 {
		t.Fatalf("center=(%d,%d)", cx, cy)
	}
	if r.Right() != 500 || r.Bottom() != 160 {
		t.Fatalf("right=%d bottom=%d", r.Right(), r.Bottom())
	}
	if !r.Inset(-8).ContainsRect(r) {
		t.Fatalf("expanded rect should contain original")
	}
	if (Rect{Width: 0, Height: 10}).Empty() != true {
		t.Fatalf("zero width should be empty")
	}
}
