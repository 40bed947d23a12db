package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// Draw paints the framebuffer into area, two pixel rows per cell using the
// upper half block with the top pixel as foreground and the bottom one as
// background.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := (row - area.Min.Y) * 2
		if topY >= fb.Height {
			return
		}
		for col := area.Min.X; col < area.Max.X; col++ {
			x := col - area.Min.X
			if x >= fb.Width {
				break
			}
			scr.SetCell(col, row, &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: cellColor(fb.GetPixel(x, topY)),
					Bg: cellColor(fb.GetPixel(x, topY+1)),
				},
			})
		}
	}
}

// cellColor maps transparent pixels to the terminal default.
func cellColor(c Color) color.Color {
	if c.A == 0 {
		return nil
	}
	return c
}

// Display is a screen that presents its cells on demand, such as an
// ultraviolet terminal.
type Display interface {
	uv.Screen
	Display() error
}

// TerminalRenderer presents framebuffers on a terminal of a fixed cell
// size.
type TerminalRenderer struct {
	scr           Display
	width, height int
}

// NewTerminalRenderer creates a renderer for a width x height cell area.
func NewTerminalRenderer(scr Display, width, height int) *TerminalRenderer {
	return &TerminalRenderer{scr: scr, width: max(width, 0), height: max(height, 0)}
}

// FramebufferSize returns the pixel size that fills the terminal.
func (t *TerminalRenderer) FramebufferSize() (width, height int) {
	return t.width, t.height * 2
}

// Render copies fb into the screen's cells.
func (t *TerminalRenderer) Render(fb *Framebuffer) {
	fb.Draw(t.scr, uv.Rect(0, 0, t.width, t.height))
}

// Flush presents the rendered cells.
func (t *TerminalRenderer) Flush() error {
	return t.scr.Display()
}
