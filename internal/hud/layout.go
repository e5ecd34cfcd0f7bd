package hud

import "github.com/verte-zerg/telehud/internal/model"

const (
	// lineSpacing is added to the time box height between text lines and
	// lifts the background box above the first line.
	lineSpacing = 5
	// shadowOffset shifts each shadow copy right and down.
	shadowOffset = 2
	// textLines is the number of readout lines.
	textLines = 3
)

// Point is a pixel position.
type Point struct {
	X int
	Y int
}

// Rect is a pixel rectangle anchored at its top-left corner.
type Rect struct {
	X int
	Y int
	W int
	H int
}

// Right returns the exclusive right edge.
func (r Rect) Right() int { return r.X + r.W }

// Bottom returns the exclusive bottom edge.
func (r Rect) Bottom() int { return r.Y + r.H }

// Offset returns r moved by dx, dy.
func (r Rect) Offset(dx, dy int) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// Clamp returns the rectangle spanned by r's edges after clamping each edge
// to be non-negative.
func (r Rect) Clamp() Rect {
	left := max(r.X, 0)
	top := max(r.Y, 0)
	right := max(r.Right(), 0)
	bottom := max(r.Bottom(), 0)
	return Rect{X: left, Y: top, W: right - left, H: bottom - top}
}

// Layout is the screen placement for one frame.
type Layout struct {
	CenterX    int
	Bar        Rect
	Background Rect
	Text       [textLines]Rect
	Shadow     [textLines]Rect
}

// ComputeLayout places the bar marker, the background box and the three
// text lines. cfg must already be resolved against the screen. Note the
// horizontal anchor sits at a quarter of the screen width; screenHeight is
// already folded into cfg by Resolve.
func ComputeLayout(cfg model.HUDConfig, screenWidth, screenHeight int) Layout {
	centerX := screenWidth / 4
	lineStep := cfg.Time.Height + lineSpacing

	l := Layout{
		CenterX: centerX,
		Bar: Rect{
			X: centerX,
			Y: cfg.Bar.Top + 1,
			W: 1,
			H: cfg.Bar.Height - 2,
		},
	}

	first := Rect{
		X: cfg.Bar.Gutter,
		Y: cfg.Bar.Top,
		W: cfg.Time.Width,
		H: lineStep,
	}
	for i := 0; i < textLines; i++ {
		l.Text[i] = first.Offset(0, i*lineStep)
		l.Shadow[i] = l.Text[i].Offset(shadowOffset, shadowOffset)
	}

	last := l.Text[textLines-1]
	l.Background = Rect{
		X: first.X,
		Y: first.Y - lineSpacing,
		W: first.W,
		H: last.Bottom() - (first.Y - lineSpacing),
	}.Clamp()
	return l
}
