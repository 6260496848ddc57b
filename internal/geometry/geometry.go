// Package geometry holds the pure screen/grid coordinate math shared by the
// canvas render loop and the toolbar-style view helpers. Nothing in here
// carries state.
package geometry

import "math"

// CellSize is the side of one grid cell in world pixels at scale 1. Image
// framing offsets are normalized against a reference cell of 20px, so
// changing this keeps stored offsets meaningful.
const CellSize = 20.0

const (
	MinZoom = 0.05
	MaxZoom = 40.0
)

// Point is a grid cell coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Selection is a raw two-corner drag, not yet normalized.
type Selection struct {
	StartX int `json:"startX"`
	StartY int `json:"startY"`
	EndX   int `json:"endX"`
	EndY   int `json:"endY"`
}

// Rect is a normalized cell rectangle.
type Rect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// ViewportTransform maps world (grid-pixel) space to screen space: a point
// at world w lands at w*Scale + translation.
type ViewportTransform struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale"`
}

// ScreenToGrid inverse-transforms a screen pixel into the grid cell under
// it. Results are not clamped: values outside [0, GridSize) are preserved
// so drag tracking keeps working past the board edge.
func ScreenToGrid(screenX, screenY float64, t ViewportTransform) Point {
	worldX := (screenX - t.X) / t.Scale
	worldY := (screenY - t.Y) / t.Scale
	return Point{
		X: int(math.Floor(worldX / CellSize)),
		Y: int(math.Floor(worldY / CellSize)),
	}
}

// GridToScreen maps the top-left corner of a grid cell to screen pixels.
func GridToScreen(cell Point, t ViewportTransform) (float64, float64) {
	return float64(cell.X)*CellSize*t.Scale + t.X,
		float64(cell.Y)*CellSize*t.Scale + t.Y
}

// NormalizeSelection canonicalizes two opposite corners into a top-left
// anchored rectangle. Any pair of integer corners yields w,h >= 1; a
// single-cell click becomes a 1x1 rectangle.
func NormalizeSelection(x1, y1, x2, y2 int) Rect {
	return Rect{
		X: min(x1, x2),
		Y: min(y1, y2),
		W: abs(x2-x1) + 1,
		H: abs(y2-y1) + 1,
	}
}

// Normalize is NormalizeSelection applied to a Selection value.
func (s Selection) Normalize() Rect {
	return NormalizeSelection(s.StartX, s.StartY, s.EndX, s.EndY)
}

// ZoomAt rescales the transform by factor, clamped to [minZoom, maxZoom],
// keeping the world point under the screen pixel (sx, sy) stationary.
func ZoomAt(t ViewportTransform, sx, sy, factor, minZoom, maxZoom float64) ViewportTransform {
	newScale := math.Max(minZoom, math.Min(maxZoom, t.Scale*factor))
	return ViewportTransform{
		X:     sx - (sx-t.X)*(newScale/t.Scale),
		Y:     sy - (sy-t.Y)*(newScale/t.Scale),
		Scale: newScale,
	}
}

// CenterOn returns a scale-1 transform that centers a gridSize x gridSize
// board inside a viewW x viewH screen.
func CenterOn(viewW, viewH float64, gridSize int) ViewportTransform {
	dim := float64(gridSize) * CellSize
	return ViewportTransform{
		X:     viewW/2 - dim/2,
		Y:     viewH/2 - dim/2,
		Scale: 1,
	}
}

// FitRect frames a cell rectangle in the viewport: the rectangle's longer
// side fills roughly a third of the smaller screen dimension, with the
// scale clamped to [2, maxZoom].
func FitRect(r Rect, viewW, viewH, maxZoom float64) ViewportTransform {
	minScreenDim := math.Min(viewW, viewH)
	itemMaxDim := float64(max(r.W, r.H)) * CellSize
	scale := math.Max(2, math.Min(maxZoom, (minScreenDim*0.3)/itemMaxDim))
	cx := (float64(r.X) + float64(r.W)/2) * CellSize
	cy := (float64(r.Y) + float64(r.H)/2) * CellSize
	return ViewportTransform{
		X:     viewW/2 - cx*scale,
		Y:     viewH/2 - cy*scale,
		Scale: scale,
	}
}

// Clamp bounds v into [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
