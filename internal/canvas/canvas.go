// Package canvas implements the board's render loop: a headless,
// single-threaded view of the grid that turns pointer gestures into
// selection, pan, zoom and hover events and draws into a gg context on
// demand. The host owns the frame clock; it forwards input events, then
// calls Frame once per tick and draws only when Frame says so.
package canvas

import (
	"image"
	"math"

	"github.com/gogpu/gg"
	ggtext "github.com/gogpu/gg/text"

	"millionGridAPI/internal/geometry"
	"millionGridAPI/internal/pixel"
)

const (
	cellSize     = geometry.CellSize
	cullBuffer   = 5
	tooltipPad   = 8.0
	tooltipH     = 24.0
	zoomStep     = 0.1
	wheelMinZoom = geometry.MinZoom
	wheelMaxZoom = geometry.MaxZoom
)

// Tool selects how primary-button drags are interpreted.
type Tool string

const (
	ToolSelect Tool = "select"
	ToolPan    Tool = "pan"
	ToolText   Tool = "text"
)

// Cursor is the pointer style the host should display.
type Cursor string

const (
	CursorDefault   Cursor = "default"
	CursorPointer   Cursor = "pointer"
	CursorGrab      Cursor = "grab"
	CursorGrabbing  Cursor = "grabbing"
	CursorText      Cursor = "text"
	CursorCrosshair Cursor = "crosshair"
)

// ImageLoader resolves an item's src into a decoded image. Loaders run on
// their own goroutine; results come back to the render loop through the
// grid's completion channel.
type ImageLoader func(src string) (image.Image, error)

// Callbacks are the upward events the render loop reports. Nil fields are
// skipped.
type Callbacks struct {
	// OnSelectionComplete fires on pointer-up with the raw, unnormalized
	// drag corners.
	OnSelectionComplete func(sel geometry.Selection)
	// OnViewItem fires when an existing item is clicked with the select tool.
	OnViewItem func(item pixel.GridItem)
	// OnCursorMove fires when the clamped cell under the pointer changes.
	OnCursorMove func(cell geometry.Point)
}

type decodeResult struct {
	id  string
	img image.Image
}

// Grid owns the viewport transform, the drag/hover state and the decode
// cache. All mutation happens on the host's event thread; the only
// cross-goroutine traffic is the decode completion channel.
type Grid struct {
	width, height float64
	transform     geometry.ViewportTransform
	tool          Tool
	items         []pixel.GridItem
	active        *geometry.Selection

	dragging   bool
	panning    bool
	spaceHeld  bool
	dragSel    *geometry.Selection
	lastMouseX float64
	lastMouseY float64
	lastCell   geometry.Point

	hovered *pixel.GridItem
	cursor  Cursor

	cache   *imageCache
	loader  ImageLoader
	decoded chan decodeResult

	font *ggtext.FontSource

	drawPending bool
	cb          Callbacks
}

// Option configures a Grid at construction.
type Option func(*Grid)

// WithCacheSize bounds the image decode cache.
func WithCacheSize(n int) Option {
	return func(g *Grid) { g.cache = newImageCache(n) }
}

// WithFont sets the font source used for text items and tooltips. Without
// one, text items render only their background color. Per-item FontFamily
// and FontWeight are stored but not honored yet; every text item renders
// through this single source.
func WithFont(src *ggtext.FontSource) Option {
	return func(g *Grid) { g.font = src }
}

// New creates a grid view centered on the board at scale 1.
func New(width, height float64, loader ImageLoader, cb Callbacks, opts ...Option) *Grid {
	g := &Grid{
		width:     width,
		height:    height,
		transform: geometry.CenterOn(width, height, pixel.GridSize),
		tool:      ToolSelect,
		lastCell:  geometry.Point{X: -1, Y: -1},
		cursor:    CursorDefault,
		cache:     newImageCache(DefaultCacheSize),
		loader:    loader,
		decoded:   make(chan decodeResult, 64),
		cb:        cb,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.scheduleDraw()
	return g
}

// Resize updates the viewport dimensions.
func (g *Grid) Resize(width, height float64) {
	g.width = width
	g.height = height
	g.scheduleDraw()
}

// SetItems replaces the item list wholesale, the way a refetch does.
func (g *Grid) SetItems(items []pixel.GridItem) {
	g.items = items
	g.hovered = nil
	g.scheduleDraw()
}

// SetTool switches the active tool. Any in-progress drag selection is
// stale under the new tool and is cleared.
func (g *Grid) SetTool(t Tool) {
	g.tool = t
	g.dragSel = nil
	g.updateCursor()
	g.scheduleDraw()
}

// SetActiveSelection sets the confirmed selection drawn while the editor
// modal is open. Pass nil to clear.
func (g *Grid) SetActiveSelection(sel *geometry.Selection) {
	g.active = sel
	g.scheduleDraw()
}

// Transform returns the current viewport transform.
func (g *Grid) Transform() geometry.ViewportTransform {
	return g.transform
}

// SetTransform replaces the viewport transform (reset view, navigate-to).
func (g *Grid) SetTransform(t geometry.ViewportTransform) {
	g.transform = t
	g.scheduleDraw()
}

// Cursor returns the pointer style the host should show.
func (g *Grid) Cursor() Cursor {
	return g.cursor
}

// Tool returns the active tool.
func (g *Grid) Tool() Tool {
	return g.tool
}

// OccupiedCells sums the cells covered by the current item list.
func (g *Grid) OccupiedCells() int {
	total := 0
	for i := range g.items {
		total += g.items[i].Cells()
	}
	return total
}

// RemainingCells is the number of unclaimed cells on the board.
func (g *Grid) RemainingCells() int {
	return pixel.GridSize*pixel.GridSize - g.OccupiedCells()
}

func (g *Grid) scheduleDraw() {
	g.drawPending = true
}

// Frame drains decode completions and reports whether a draw is due. When
// it returns true the host must call Draw; the pending flag coalesces any
// number of mutations into a single draw per tick.
func (g *Grid) Frame() bool {
	for {
		select {
		case res := <-g.decoded:
			g.cache.complete(res.id, res.img)
			g.scheduleDraw()
		default:
			if !g.drawPending {
				return false
			}
			g.drawPending = false
			return true
		}
	}
}

// Draw renders the current view into dc. The context must match the grid's
// viewport dimensions.
func (g *Grid) Draw(dc *gg.Context) {
	t := g.transform

	dc.SetHexColor("#ffffff")
	dc.DrawRectangle(0, 0, g.width, g.height)
	dc.Fill()

	dc.Push()
	dc.Translate(t.X, t.Y)
	dc.Scale(t.Scale, t.Scale)

	startCol, endCol, startRow, endRow := g.cullWindow()

	g.drawGridLines(dc, startCol, endCol, startRow, endRow)
	g.drawItems(dc, startCol, endCol, startRow, endRow)
	g.drawSelection(dc)

	// Board border.
	dc.SetHexColor("#000000")
	dc.SetLineWidth(4 / t.Scale)
	dc.DrawRectangle(0, 0, pixel.GridSize*cellSize, pixel.GridSize*cellSize)
	dc.Stroke()

	dc.Pop()

	g.drawTooltip(dc)
}

// cullWindow computes the visible cell range plus a fixed buffer, clamped
// to the board.
func (g *Grid) cullWindow() (startCol, endCol, startRow, endRow int) {
	t := g.transform
	startCol = max(0, int(math.Floor(-t.X/t.Scale/cellSize))-cullBuffer)
	endCol = min(pixel.GridSize, int(math.Ceil((g.width-t.X)/t.Scale/cellSize))+cullBuffer)
	startRow = max(0, int(math.Floor(-t.Y/t.Scale/cellSize))-cullBuffer)
	endRow = min(pixel.GridSize, int(math.Ceil((g.height-t.Y)/t.Scale/cellSize))+cullBuffer)
	return
}

func (g *Grid) drawGridLines(dc *gg.Context, startCol, endCol, startRow, endRow int) {
	dc.SetLineWidth(1 / g.transform.Scale)
	dc.SetHexColor("#f1f5f9")
	for i := max(0, startCol-1); i <= min(pixel.GridSize, endCol+1); i++ {
		x := float64(i) * cellSize
		dc.MoveTo(x, float64(startRow)*cellSize)
		dc.LineTo(x, float64(endRow)*cellSize)
	}
	for i := max(0, startRow-1); i <= min(pixel.GridSize, endRow+1); i++ {
		y := float64(i) * cellSize
		dc.MoveTo(float64(startCol)*cellSize, y)
		dc.LineTo(float64(endCol)*cellSize, y)
	}
	dc.Stroke()
}

func (g *Grid) drawItems(dc *gg.Context, startCol, endCol, startRow, endRow int) {
	for i := range g.items {
		it := &g.items[i]
		if it.X+it.W < startCol || it.X > endCol || it.Y+it.H < startRow || it.Y > endRow {
			continue
		}

		boxX := float64(it.X) * cellSize
		boxY := float64(it.Y) * cellSize
		boxW := float64(it.W) * cellSize
		boxH := float64(it.H) * cellSize

		dc.Push()
		dc.ClipRect(boxX, boxY, boxW, boxH)

		switch it.Type {
		case pixel.TypeImage:
			g.drawImageItem(dc, it, boxX, boxY, boxW, boxH)
		case pixel.TypeText:
			g.drawTextItem(dc, it, boxX, boxY, boxW, boxH)
		}

		dc.Pop()
	}
}

func (g *Grid) drawImageItem(dc *gg.Context, it *pixel.GridItem, boxX, boxY, boxW, boxH float64) {
	entry, ok := g.cache.get(it.ID)
	if !ok {
		g.requestDecode(it)
		return
	}
	if entry.state != entryReady {
		return
	}

	cx := boxX + boxW/2
	cy := boxY + boxH/2
	dc.Push()
	dc.RotateAbout(it.Rotation*math.Pi/180, cx, cy)

	// Framing: zoom scales the image about the rectangle center, offsets
	// pan the crop. Offsets are stored against a 20px reference cell.
	z := it.Zoom
	if z == 0 {
		z = 1
	}
	ox := it.OffsetX * (cellSize / 20)
	oy := it.OffsetY * (cellSize / 20)

	dc.DrawImageEx(entry.buf, gg.DrawImageOptions{
		X:         cx + (-boxW/2)*z + ox,
		Y:         cy + (-boxH/2)*z + oy,
		DstWidth:  boxW * z,
		DstHeight: boxH * z,
	})
	dc.Pop()
}

func (g *Grid) drawTextItem(dc *gg.Context, it *pixel.GridItem, boxX, boxY, boxW, boxH float64) {
	if it.BgColor != "" {
		dc.SetHexColor(it.BgColor)
		dc.DrawRectangle(boxX, boxY, boxW, boxH)
		dc.Fill()
	}
	if g.font == nil || it.Content == "" {
		return
	}

	fontSize := it.FontSize * cellSize
	if fontSize <= 0 {
		fontSize = cellSize
	}
	dc.SetFont(g.font.Face(fontSize))
	if it.Color != "" {
		dc.SetHexColor(it.Color)
	} else {
		dc.SetHexColor("#000000")
	}

	lines := wrapText(dc, it.Content, boxW-4)
	lineHeight := fontSize * 1.2
	y := boxY + (boxH-float64(len(lines))*lineHeight)/2 + lineHeight/2
	for _, line := range lines {
		dc.DrawStringAnchored(line, boxX+boxW/2, y, 0.5, 0.5)
		y += lineHeight
	}
}

func (g *Grid) drawSelection(dc *gg.Context) {
	sel := g.active
	if g.dragging {
		sel = g.dragSel
	}
	if sel == nil {
		return
	}

	r := sel.Normalize()
	x := float64(r.X) * cellSize
	y := float64(r.Y) * cellSize
	w := float64(r.W) * cellSize
	h := float64(r.H) * cellSize

	if g.tool == ToolText {
		dc.SetRGBA(147/255.0, 51/255.0, 234/255.0, 0.2)
	} else {
		dc.SetRGBA(59/255.0, 130/255.0, 246/255.0, 0.2)
	}
	dc.DrawRectangle(x, y, w, h)
	dc.Fill()

	if g.tool == ToolText {
		dc.SetHexColor("#9333ea")
	} else {
		dc.SetHexColor("#2563eb")
	}
	dc.SetLineWidth(2 / g.transform.Scale)
	dc.DrawRectangle(x, y, w, h)
	dc.Stroke()
}

// drawTooltip renders the hovered item's link near the pointer, flipped to
// stay on screen. Drawn in screen space, after the world transform pops.
func (g *Grid) drawTooltip(dc *gg.Context) {
	if g.dragging || g.hovered == nil || g.hovered.Link == "" || g.font == nil {
		return
	}

	linkText := g.hovered.Link
	dc.SetFont(g.font.Face(11))
	textW, _ := dc.MeasureString(linkText)
	bW := textW + tooltipPad*2
	bH := tooltipH

	tx := g.lastMouseX + 15
	ty := g.lastMouseY + 15
	if tx+bW > g.width {
		tx = g.lastMouseX - bW - 10
	}
	if ty+bH > g.height {
		ty = g.lastMouseY - bH - 10
	}

	dc.SetRGBA(0, 0, 0, 0.8)
	dc.DrawRoundedRectangle(tx, ty, bW, bH, 6)
	dc.Fill()

	dc.SetHexColor("#ffffff")
	dc.DrawStringAnchored(linkText, tx+tooltipPad, ty+bH/2, 0, 0.5)
}

// requestDecode kicks off an asynchronous decode for an image item seen for
// the first time. Brightness and contrast are baked into the cached pixels,
// since they are fixed per item and the cache is keyed by item id.
func (g *Grid) requestDecode(it *pixel.GridItem) {
	if g.loader == nil {
		return
	}
	g.cache.insertLoading(it.ID)

	id, src := it.ID, it.Src
	brightness, contrast := it.Brightness, it.Contrast
	loader := g.loader
	go func() {
		img, err := loader(src)
		if err != nil || img == nil {
			g.decoded <- decodeResult{id: id, img: nil}
			return
		}
		g.decoded <- decodeResult{id: id, img: applyFilter(img, brightness, contrast)}
	}()
}

// hitTest finds the item under a grid cell, searching in reverse insertion
// order so later items win.
func (g *Grid) hitTest(gx, gy int) *pixel.GridItem {
	for i := len(g.items) - 1; i >= 0; i-- {
		if g.items[i].Contains(gx, gy) {
			return &g.items[i]
		}
	}
	return nil
}

func (g *Grid) updateCursor() {
	if g.dragging {
		if g.panning {
			g.cursor = CursorGrabbing
		} else {
			g.cursor = CursorCrosshair
		}
		return
	}
	switch {
	case g.spaceHeld || g.tool == ToolPan:
		g.cursor = CursorGrab
	case g.hovered != nil:
		g.cursor = CursorPointer
	case g.tool == ToolText:
		g.cursor = CursorText
	default:
		g.cursor = CursorDefault
	}
}
