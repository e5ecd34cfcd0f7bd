package screen

import (
	"strings"
	"testing"

	"github.com/verte-zerg/telehud/internal/hud"
	"github.com/verte-zerg/telehud/internal/model"
)

func rowText(c *Canvas, y, from, n int) string {
	var b strings.Builder
	for x := from; x < from+n; x++ {
		cell, ok := c.Cell(x, y)
		if !ok {
			break
		}
		if cell.Rune != 0 {
			b.WriteRune(cell.Rune)
		}
	}
	return b.String()
}

func TestBlend(t *testing.T) {
	if got := Blend(0xFF000000, 0xFF505050); got != 0xFF505050 {
		t.Fatalf("opaque blend: got %08x", uint32(got))
	}
	if got := Blend(0xFF000000, 0x80FF0000); got != 0xFF800000 {
		t.Fatalf("half blend: got %08x", uint32(got))
	}
	if got := Blend(0xFF123456, 0x00FFFFFF); got != 0xFF123456 {
		t.Fatalf("transparent blend: got %08x", uint32(got))
	}
}

func TestFillRectCoversTouchedCells(t *testing.T) {
	c := NewCanvas(10, 4, DefaultBackground)
	c.FillRect(hud.Rect{X: 4, Y: 0, W: 8, H: 17}, 0xFF505050)

	for _, pt := range [][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}} {
		cell, _ := c.Cell(pt[0], pt[1])
		if cell.BG != 0xFF505050 {
			t.Fatalf("cell %v not filled: %08x", pt, uint32(cell.BG))
		}
	}
	if cell, _ := c.Cell(2, 0); cell.BG != DefaultBackground {
		t.Fatalf("cell outside rect filled: %08x", uint32(cell.BG))
	}

	c.FillRect(hud.Rect{X: 0, Y: 0, W: 0, H: 10}, 0xFFFFFFFF)
	if cell, _ := c.Cell(0, 0); cell.BG != 0xFF505050 {
		t.Fatalf("empty rect drew: %08x", uint32(cell.BG))
	}
}

func TestDrawTextClipsAndHandlesWideRunes(t *testing.T) {
	c := NewCanvas(6, 2, DefaultBackground)
	c.DrawText("ab", hud.Point{X: 16, Y: 16}, 0xFFF00000)
	if got := rowText(c, 1, 2, 2); got != "ab" {
		t.Fatalf("unexpected text %q", got)
	}
	cell, _ := c.Cell(2, 1)
	if cell.FG != 0xFFF00000 {
		t.Fatalf("unexpected fg %08x", uint32(cell.FG))
	}

	c.Clear()
	c.DrawText("abcdefgh", hud.Point{}, 0xFFFFFFFF)
	if got := rowText(c, 0, 0, 6); got != "abcdef" {
		t.Fatalf("expected clipping, got %q", got)
	}

	c.Clear()
	c.DrawText("界x", hud.Point{}, 0xFFFFFFFF)
	if cell, _ := c.Cell(1, 0); cell.Rune != 0 {
		t.Fatalf("expected wide rune continuation, got %q", cell.Rune)
	}
	if cell, _ := c.Cell(2, 0); cell.Rune != 'x' {
		t.Fatalf("expected x after wide rune, got %q", cell.Rune)
	}
	if strings.Count(c.Render(), "\n") != 1 {
		t.Fatalf("expected two rendered lines")
	}
}

func TestDeviceRejectsBadFont(t *testing.T) {
	d := NewDevice(10, 10)
	if _, err := d.CreateFont(hud.FontSpec{Name: "", Size: 16}); err == nil {
		t.Fatalf("expected error for empty font name")
	}
	if _, err := d.CreateFont(hud.FontSpec{Name: "Arial Black", Size: 0}); err == nil {
		t.Fatalf("expected error for zero font size")
	}
	d.Release()
	if _, err := d.CreateSprite(); err == nil {
		t.Fatalf("expected error from released device")
	}
}

func hudConfig() model.HUDConfig {
	return model.HUDConfig{
		Bar: model.BarConfig{Enabled: true, Top: 130, Width: 300, Height: 20, Gutter: 5},
		Time: model.TimeConfig{
			Enabled:  true,
			Width:    62,
			Height:   20,
			FontSize: 16,
			FontName: "Arial Black",
		},
		Keyboard: model.KeyboardConfig{MagicKey: 'T'},
	}
}

func TestControllerDrawsOntoCanvas(t *testing.T) {
	d := NewDevice(80, 30)
	c := d.Canvas()
	ctrl := hud.NewController(hud.StaticConfig(hudConfig()), nil, "")
	ctrl.InitScreen(hud.Screen{Width: c.Width(), Height: c.Height(), Device: d})
	if !ctrl.Ready() {
		t.Fatalf("expected resources to be created")
	}

	sample := model.Telemetry{DeltaTime: 0.05, Drag: 120, FrontDownforce: 300, RearDownforce: 450}
	sample.Wheels[model.WheelFL] = model.Wheel{TireLoad: 1500, Wear: 0.01}
	sample.Wheels[model.WheelFR] = model.Wheel{TireLoad: 1490, Wear: 0.012}
	ctrl.EnterLive()
	ctrl.UpdateTelemetry(sample, false)
	if !ctrl.RenderBeforeOverlays(c.Width(), c.Height()) {
		t.Fatalf("expected frame to render")
	}

	lines := hud.TextLines(sample, false)
	// Lines start at y=130, 155 and 180: rows 8, 9 and 11.
	for i, row := range []int{8, 9, 11} {
		if got := rowText(c, row, 0, len(lines[i])); got != lines[i] {
			t.Fatalf("line %d: got %q want %q", i, got, lines[i])
		}
	}
	cell, _ := c.Cell(0, 8)
	if cell.BG != hud.BackgroundColor {
		t.Fatalf("expected background box behind text, got %08x", uint32(cell.BG))
	}
	if want := Blend(hud.BackgroundColor, hud.TextColor(1)); cell.FG != want {
		t.Fatalf("unexpected text color %08x want %08x", uint32(cell.FG), uint32(want))
	}
}

func TestLostDeviceSkipsDrawing(t *testing.T) {
	d := NewDevice(80, 30)
	c := d.Canvas()
	ctrl := hud.NewController(hud.StaticConfig(hudConfig()), nil, "")
	ctrl.InitScreen(hud.Screen{Width: c.Width(), Height: c.Height(), Device: d})
	ctrl.EnterLive()

	ctrl.PreReset()
	ctrl.RenderBeforeOverlays(c.Width(), c.Height())
	if cell, _ := c.Cell(0, 8); cell.BG != DefaultBackground || cell.Rune != ' ' {
		t.Fatalf("expected nothing drawn while lost: %+v", cell)
	}

	ctrl.PostReset()
	ctrl.RenderBeforeOverlays(c.Width(), c.Height())
	if cell, _ := c.Cell(0, 8); cell.BG != hud.BackgroundColor {
		t.Fatalf("expected drawing after reset: %+v", cell)
	}
}
