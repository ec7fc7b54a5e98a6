package layout

import "github.com/1broseidon/tether/internal/geom"

// Side is a direction relative to the anchor window.
type Side string

const (
	SideBelow Side = "below"
	SideAbove Side = "above"
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// Strategy names where satellites go for one reflow pass. Primary is the
// side of the anchor the satellite band prefers; Secondary orders windows
// within that band.
type Strategy struct {
	Name      string `json:"name"`
	Primary   Side   `json:"primary"`
	Secondary Side   `json:"secondary"`
}

const (
	StrategyBelow     = "below"
	StrategyAbove     = "above"
	StrategyRightSide = "right-side"
	StrategyLeftSide  = "left-side"
	StrategyAdaptive  = "adaptive"
)

// Thresholds are the free-space requirements for committing to a side.
type Thresholds struct {
	// VerticalBand is the room needed above or below the anchor.
	VerticalBand int
	// HorizontalBand is the room needed left or right of the anchor.
	HorizontalBand int
}

// DefaultThresholds fit a satellite up to ~700px tall or ~1000px of
// combined width.
func DefaultThresholds() Thresholds {
	return Thresholds{VerticalBand: 400, HorizontalBand: 800}
}

// SelectStrategy picks a placement strategy for satellites around anchor.
// relX and relY are the anchor center normalised to usable, in [0,1]. The
// first rule that fits wins; the adaptive rule always matches.
func SelectStrategy(anchor, usable geom.Rect, relX, relY float64, th Thresholds) Strategy {
	spaceBelow := usable.Bottom() - anchor.Bottom()
	spaceAbove := anchor.Y - usable.Y
	spaceLeft := anchor.X - usable.X
	spaceRight := usable.Right() - anchor.Right()

	horizontal := SideLeft
	if relX < 0.5 {
		horizontal = SideRight
	}
	vertical := SideAbove
	if spaceBelow > spaceAbove {
		vertical = SideBelow
	}

	switch {
	case spaceBelow >= th.VerticalBand:
		return Strategy{Name: StrategyBelow, Primary: SideBelow, Secondary: horizontal}
	case spaceAbove >= th.VerticalBand:
		return Strategy{Name: StrategyAbove, Primary: SideAbove, Secondary: horizontal}
	case relX < 0.3 && spaceRight >= th.HorizontalBand:
		return Strategy{Name: StrategyRightSide, Primary: SideRight, Secondary: vertical}
	case relX >= 0.7 && spaceLeft >= th.HorizontalBand:
		return Strategy{Name: StrategyLeftSide, Primary: SideLeft, Secondary: vertical}
	}

	adaptive := Strategy{Name: StrategyAdaptive, Primary: SideAbove, Secondary: SideLeft}
	if spaceBelow >= spaceAbove {
		adaptive.Primary = SideBelow
	}
	if spaceRight >= spaceLeft {
		adaptive.Secondary = SideRight
	}
	return adaptive
}

// RelativeCenter returns the center of anchor normalised to usable and
// clamped to [0,1]. ok is false when usable has no area.
func RelativeCenter(anchor, usable geom.Rect) (relX, relY float64, ok bool) {
	if usable.Empty() {
		return 0, 0, false
	}
	cx, cy := anchor.Center()
	relX = clampUnit(float64(cx-usable.X) / float64(usable.Width))
	relY = clampUnit(float64(cy-usable.Y) / float64(usable.Height))
	return relX, relY, true
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
