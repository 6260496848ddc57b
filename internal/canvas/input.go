package canvas

import (
	"millionGridAPI/internal/geometry"
	"millionGridAPI/internal/pixel"
)

// Button identifies a pointer button.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonMiddle
	ButtonSecondary
)

// Modifiers carries the keyboard state alongside a pointer event.
type Modifiers struct {
	Ctrl bool
}

// PointerDown enters a drag mode. Secondary or middle button, held space,
// or the pan tool start a pan; otherwise a primary click over empty board
// space starts a selection drag, and a click over an existing item fires
// the view-item event without entering any mode.
func (g *Grid) PointerDown(x, y float64, b Button, mods Modifiers) {
	panning := g.spaceHeld ||
		b == ButtonSecondary || b == ButtonMiddle ||
		(g.tool == ToolPan && !mods.Ctrl)

	cell := geometry.ScreenToGrid(x, y, g.transform)

	if !panning {
		if hit := g.hitTest(cell.X, cell.Y); hit != nil {
			if g.cb.OnViewItem != nil {
				g.cb.OnViewItem(*hit)
			}
			return
		}
	}

	g.lastMouseX, g.lastMouseY = x, y
	g.panning = panning
	g.dragging = true
	g.updateCursor()

	if !panning {
		if cell.X >= 0 && cell.X < pixel.GridSize && cell.Y >= 0 && cell.Y < pixel.GridSize {
			g.dragSel = &geometry.Selection{
				StartX: cell.X, StartY: cell.Y,
				EndX: cell.X, EndY: cell.Y,
			}
			g.scheduleDraw()
		}
	}
}

// PointerMove tracks the pointer. While panning it translates the viewport
// by the raw screen delta; while selecting it extends the drag's end corner
// (clamped to the board); otherwise it maintains hover state.
func (g *Grid) PointerMove(x, y float64) {
	dx := x - g.lastMouseX
	dy := y - g.lastMouseY
	g.lastMouseX, g.lastMouseY = x, y

	cell := geometry.ScreenToGrid(x, y, g.transform)
	clamped := geometry.Point{
		X: geometry.Clamp(cell.X, 0, pixel.GridSize-1),
		Y: geometry.Clamp(cell.Y, 0, pixel.GridSize-1),
	}
	if clamped != g.lastCell {
		g.lastCell = clamped
		if g.cb.OnCursorMove != nil {
			g.cb.OnCursorMove(clamped)
		}
	}

	if !g.dragging {
		hovered := g.hitTest(cell.X, cell.Y)
		if hovered != g.hovered {
			g.hovered = hovered
			g.updateCursor()
			g.scheduleDraw()
		} else if hovered != nil && hovered.Link != "" {
			// Keep the tooltip glued to the pointer.
			g.scheduleDraw()
		}
		return
	}

	if g.panning {
		g.transform.X += dx
		g.transform.Y += dy
		g.scheduleDraw()
		return
	}

	if prev := g.dragSel; prev != nil && (prev.EndX != clamped.X || prev.EndY != clamped.Y) {
		sel := *prev
		sel.EndX = clamped.X
		sel.EndY = clamped.Y
		g.dragSel = &sel
		g.scheduleDraw()
	}
}

// PointerUp exits the current drag mode. A completed selection drag emits
// the raw corner pair upward.
func (g *Grid) PointerUp() {
	if !g.dragging {
		return
	}
	g.dragging = false
	g.updateCursor()

	if !g.panning && g.dragSel != nil {
		if g.cb.OnSelectionComplete != nil {
			g.cb.OnSelectionComplete(*g.dragSel)
		}
		g.dragSel = nil
	}
	g.panning = false
	g.scheduleDraw()
}

// Wheel zooms by a fixed 10% step per notch, clamped to the zoom bounds,
// keeping the world point under the pointer stationary on screen.
func (g *Grid) Wheel(x, y, deltaY float64) {
	factor := 1 + zoomStep
	if deltaY > 0 {
		factor = 1 - zoomStep
	}
	g.transform = geometry.ZoomAt(g.transform, x, y, factor, wheelMinZoom, wheelMaxZoom)
	g.scheduleDraw()
}

// SpaceDown and SpaceUp toggle the space-held pan override.
func (g *Grid) SpaceDown() {
	g.spaceHeld = true
	g.updateCursor()
}

func (g *Grid) SpaceUp() {
	g.spaceHeld = false
	g.updateCursor()
}
