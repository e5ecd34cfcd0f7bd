// Package screen implements the overlay drawing device on a terminal cell
// grid. Pixel coordinates are mapped onto cells of CellWidth by CellHeight.
package screen

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/telehud/internal/hud"
)

const (
	// CellWidth is the pixel width of one terminal cell.
	CellWidth = 8
	// CellHeight is the pixel height of one terminal cell.
	CellHeight = 16
)

// Cell is one terminal cell. A zero Rune marks the right half of a wide rune.
type Cell struct {
	Rune rune
	FG   hud.Color
	BG   hud.Color
}

// Canvas is a grid of cells addressed in pixels.
type Canvas struct {
	cols  int
	rows  int
	clear hud.Color
	cells []Cell
}

// NewCanvas returns a canvas of cols by rows cells cleared to bg.
func NewCanvas(cols, rows int, bg hud.Color) *Canvas {
	c := &Canvas{clear: bg}
	c.Resize(cols, rows)
	return c
}

// Resize changes the grid size and clears it.
func (c *Canvas) Resize(cols, rows int) {
	c.cols = max(cols, 0)
	c.rows = max(rows, 0)
	c.cells = make([]Cell, c.cols*c.rows)
	c.Clear()
}

// Clear blanks every cell.
func (c *Canvas) Clear() {
	for i := range c.cells {
		c.cells[i] = Cell{Rune: ' ', FG: c.clear, BG: c.clear}
	}
}

// Cols returns the grid width in cells.
func (c *Canvas) Cols() int { return c.cols }

// Rows returns the grid height in cells.
func (c *Canvas) Rows() int { return c.rows }

// Width returns the grid width in pixels.
func (c *Canvas) Width() int { return c.cols * CellWidth }

// Height returns the grid height in pixels.
func (c *Canvas) Height() int { return c.rows * CellHeight }

// Cell returns the cell at column x, row y.
func (c *Canvas) Cell(x, y int) (Cell, bool) {
	if x < 0 || y < 0 || x >= c.cols || y >= c.rows {
		return Cell{}, false
	}
	return c.cells[y*c.cols+x], true
}

func (c *Canvas) at(x, y int) *Cell {
	if x < 0 || y < 0 || x >= c.cols || y >= c.rows {
		return nil
	}
	return &c.cells[y*c.cols+x]
}

// FillRect blends tint over the background of every cell the pixel
// rectangle touches.
func (c *Canvas) FillRect(r hud.Rect, tint hud.Color) {
	if r.W <= 0 || r.H <= 0 {
		return
	}
	x0, y0 := floorDiv(r.X, CellWidth), floorDiv(r.Y, CellHeight)
	x1, y1 := floorDiv(r.Right()-1, CellWidth), floorDiv(r.Bottom()-1, CellHeight)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if cell := c.at(x, y); cell != nil {
				cell.BG = Blend(cell.BG, tint)
			}
		}
	}
}

// DrawText writes text starting at the cell containing the pixel point.
// Text running past the grid is clipped.
func (c *Canvas) DrawText(text string, pos hud.Point, fg hud.Color) {
	x := floorDiv(pos.X, CellWidth)
	y := floorDiv(pos.Y, CellHeight)
	if y < 0 || y >= c.rows {
		return
	}
	for _, r := range text {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if x+w > c.cols {
			return
		}
		if x >= 0 {
			cell := c.at(x, y)
			cell.Rune = r
			cell.FG = Blend(cell.BG, fg)
			if w == 2 {
				next := c.at(x+1, y)
				next.Rune = 0
				next.FG = cell.FG
			}
		}
		x += w
	}
}

// Render returns the grid as styled terminal lines.
func (c *Canvas) Render() string {
	lines := make([]string, 0, c.rows)
	for y := 0; y < c.rows; y++ {
		var line strings.Builder
		var run strings.Builder
		var fg, bg hud.Color
		flush := func() {
			if run.Len() == 0 {
				return
			}
			style := lipgloss.NewStyle().
				Foreground(lipgloss.Color(fg.Hex())).
				Background(lipgloss.Color(bg.Hex()))
			line.WriteString(style.Render(run.String()))
			run.Reset()
		}
		for x := 0; x < c.cols; x++ {
			cell := c.cells[y*c.cols+x]
			if cell.Rune == 0 {
				continue
			}
			if run.Len() > 0 && (cell.FG != fg || cell.BG != bg) {
				flush()
			}
			fg, bg = cell.FG, cell.BG
			run.WriteRune(cell.Rune)
		}
		flush()
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

// Blend composites top over an opaque base using top's alpha.
func Blend(base, top hud.Color) hud.Color {
	a := uint32(top.A())
	mix := func(b, t uint8) uint8 {
		return uint8((uint32(t)*a + uint32(b)*(255-a) + 127) / 255)
	}
	return hud.RGBA(mix(base.R(), top.R()), mix(base.G(), top.G()), mix(base.B(), top.B()), 0xFF)
}

func floorDiv(v, d int) int {
	q := v / d
	if v%d != 0 && v < 0 {
		q--
	}
	return q
}
