package canvas

import (
	"errors"
	"image"
	"testing"
	"time"

	"github.com/gogpu/gg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"millionGridAPI/internal/geometry"
	"millionGridAPI/internal/pixel"
)

// identityGrid returns a grid whose transform maps world pixels straight to
// screen pixels, so cell (c, r) sits at screen (c*20, r*20).
func identityGrid(cb Callbacks, opts ...Option) *Grid {
	g := New(800, 600, nil, cb, opts...)
	g.SetTransform(geometry.ViewportTransform{X: 0, Y: 0, Scale: 1})
	return g
}

func imageItem(id string, x, y, w, h int) pixel.GridItem {
	return pixel.GridItem{
		ID: id, Type: pixel.TypeImage,
		X: x, Y: y, W: w, H: h,
		Src: "mem://" + id, Title: id,
		Brightness: 100, Contrast: 100, Zoom: 1,
	}
}

func TestNewStartsCentered(t *testing.T) {
	g := New(800, 600, nil, Callbacks{})
	tr := g.Transform()
	assert.Equal(t, 1.0, tr.Scale)

	// Board center under the screen center.
	center := geometry.ScreenToGrid(400, 300, tr)
	assert.Equal(t, geometry.Point{X: 500, Y: 300}, center)

	assert.True(t, g.Frame(), "a fresh grid wants an initial draw")
	assert.False(t, g.Frame(), "the pending flag clears after one frame")
}

func TestSelectionDragEmitsRawCorners(t *testing.T) {
	var got *geometry.Selection
	g := identityGrid(Callbacks{
		OnSelectionComplete: func(sel geometry.Selection) { got = &sel },
	})

	// Drag from cell (2,2) to cell (4,5).
	g.PointerDown(50, 50, ButtonPrimary, Modifiers{})
	assert.Equal(t, CursorCrosshair, g.Cursor())
	g.PointerMove(90, 110)
	g.PointerUp()

	require.NotNil(t, got)
	assert.Equal(t, geometry.Selection{StartX: 2, StartY: 2, EndX: 4, EndY: 5}, *got)
	assert.Equal(t, geometry.Rect{X: 2, Y: 2, W: 3, H: 4}, got.Normalize())
}

func TestReverseDragNormalizesSame(t *testing.T) {
	var got *geometry.Selection
	g := identityGrid(Callbacks{
		OnSelectionComplete: func(sel geometry.Selection) { got = &sel },
	})

	g.PointerDown(90, 110, ButtonPrimary, Modifiers{})
	g.PointerMove(50, 50)
	g.PointerUp()

	require.NotNil(t, got)
	assert.Equal(t, geometry.Rect{X: 2, Y: 2, W: 3, H: 4}, got.Normalize())
}

func TestClickOnItemFiresViewEvent(t *testing.T) {
	var viewed *pixel.GridItem
	var selected bool
	g := identityGrid(Callbacks{
		OnViewItem:          func(it pixel.GridItem) { viewed = &it },
		OnSelectionComplete: func(geometry.Selection) { selected = true },
	})
	g.SetItems([]pixel.GridItem{imageItem("a", 2, 2, 3, 3)})

	g.PointerDown(60, 60, ButtonPrimary, Modifiers{})
	g.PointerUp()

	require.NotNil(t, viewed)
	assert.Equal(t, "a", viewed.ID)
	assert.False(t, selected, "clicking an item never starts a selection")
}

func TestHitTestPrefersLaterItems(t *testing.T) {
	g := identityGrid(Callbacks{})
	g.SetItems([]pixel.GridItem{
		imageItem("under", 0, 0, 10, 10),
		imageItem("over", 5, 5, 10, 10),
	})

	hit := g.hitTest(7, 7)
	require.NotNil(t, hit)
	assert.Equal(t, "over", hit.ID, "later items draw on top and win the hit")

	hit = g.hitTest(2, 2)
	require.NotNil(t, hit)
	assert.Equal(t, "under", hit.ID)

	assert.Nil(t, g.hitTest(500, 500))
}

func TestHoverUpdatesCursor(t *testing.T) {
	g := identityGrid(Callbacks{})
	g.SetItems([]pixel.GridItem{imageItem("a", 2, 2, 3, 3)})

	g.PointerMove(60, 60)
	assert.Equal(t, CursorPointer, g.Cursor())

	g.PointerMove(400, 400)
	assert.Equal(t, CursorDefault, g.Cursor())
}

func TestPanGestures(t *testing.T) {
	g := identityGrid(Callbacks{})
	before := g.Transform()

	// Secondary button pans regardless of tool.
	g.PointerDown(100, 100, ButtonSecondary, Modifiers{})
	assert.Equal(t, CursorGrabbing, g.Cursor())
	g.PointerMove(130, 80)
	g.PointerUp()

	after := g.Transform()
	assert.Equal(t, before.X+30, after.X)
	assert.Equal(t, before.Y-20, after.Y)
	assert.Equal(t, before.Scale, after.Scale)

	// Held space turns the primary button into a pan too.
	g.SpaceDown()
	assert.Equal(t, CursorGrab, g.Cursor())
	g.PointerDown(100, 100, ButtonPrimary, Modifiers{})
	g.PointerMove(110, 110)
	g.PointerUp()
	g.SpaceUp()

	assert.Equal(t, after.X+10, g.Transform().X)
	assert.Equal(t, after.Y+10, g.Transform().Y)
}

func TestPanDoesNotEmitSelection(t *testing.T) {
	fired := false
	g := identityGrid(Callbacks{
		OnSelectionComplete: func(geometry.Selection) { fired = true },
	})
	g.SetTool(ToolPan)

	g.PointerDown(100, 100, ButtonPrimary, Modifiers{})
	g.PointerMove(200, 200)
	g.PointerUp()

	assert.False(t, fired)
}

func TestWheelZoomKeepsCursorCellStable(t *testing.T) {
	g := identityGrid(Callbacks{})
	sx, sy := 410.0, 230.0
	cellBefore := geometry.ScreenToGrid(sx, sy, g.Transform())

	g.Wheel(sx, sy, -1) // zoom in
	assert.InDelta(t, 1.1, g.Transform().Scale, 1e-9)
	assert.Equal(t, cellBefore, geometry.ScreenToGrid(sx, sy, g.Transform()))

	g.Wheel(sx, sy, 1) // zoom out
	assert.Equal(t, cellBefore, geometry.ScreenToGrid(sx, sy, g.Transform()))
}

func TestSetToolClearsDragSelection(t *testing.T) {
	g := identityGrid(Callbacks{})
	g.PointerDown(50, 50, ButtonPrimary, Modifiers{})
	g.PointerMove(90, 110)
	require.NotNil(t, g.dragSel)

	g.SetTool(ToolText)
	assert.Nil(t, g.dragSel)
	assert.Equal(t, ToolText, g.Tool())
}

func TestCursorMoveEventFiresOncePerCell(t *testing.T) {
	var cells []geometry.Point
	g := identityGrid(Callbacks{
		OnCursorMove: func(cell geometry.Point) { cells = append(cells, cell) },
	})

	g.PointerMove(10, 10) // cell (0,0)
	g.PointerMove(15, 15) // still (0,0)
	g.PointerMove(30, 10) // cell (1,0)
	g.PointerMove(-500, 10)

	assert.Equal(t, []geometry.Point{
		{X: 0, Y: 0},
		{X: 1, Y: 0},
		{X: 0, Y: 0}, // off-board positions clamp to the edge cell
	}, cells)
}

func TestOccupiedAndRemainingCells(t *testing.T) {
	g := identityGrid(Callbacks{})
	assert.Equal(t, 0, g.OccupiedCells())
	assert.Equal(t, pixel.GridSize*pixel.GridSize, g.RemainingCells())

	g.SetItems([]pixel.GridItem{
		imageItem("a", 0, 0, 3, 4),
		imageItem("b", 10, 10, 2, 2),
	})
	assert.Equal(t, 16, g.OccupiedCells())
	assert.Equal(t, pixel.GridSize*pixel.GridSize-16, g.RemainingCells())
}

func TestCullWindowClampsToBoard(t *testing.T) {
	g := identityGrid(Callbacks{})

	startCol, endCol, startRow, endRow := g.cullWindow()
	assert.Equal(t, 0, startCol)
	assert.Equal(t, 0, startRow)
	// 800px wide at scale 1 shows 40 cells, plus the buffer.
	assert.Equal(t, 40+cullBuffer, endCol)
	assert.Equal(t, 30+cullBuffer, endRow)

	// Deep inside the board the buffer extends both ways.
	g.SetTransform(geometry.ViewportTransform{X: -10000, Y: -10000, Scale: 1})
	startCol, endCol, startRow, endRow = g.cullWindow()
	assert.Equal(t, 500-cullBuffer, startCol)
	assert.Equal(t, 500+40+cullBuffer, endCol)
	assert.Equal(t, 500-cullBuffer, startRow)
	assert.Equal(t, 500+30+cullBuffer, endRow)
}

func TestFrameDrainsDecodeResults(t *testing.T) {
	loaded := make(chan string, 8)
	loader := func(src string) (image.Image, error) {
		loaded <- src
		if src == "mem://broken" {
			return nil, errors.New("bad image data")
		}
		return image.NewNRGBA(image.Rect(0, 0, 8, 8)), nil
	}

	g := New(800, 600, loader, Callbacks{})
	g.SetTransform(geometry.ViewportTransform{X: 0, Y: 0, Scale: 1})
	g.SetItems([]pixel.GridItem{
		imageItem("ok", 2, 2, 3, 3),
		imageItem("broken", 10, 2, 3, 3),
	})

	// First draw kicks off the decodes.
	dc := gg.NewContext(800, 600)
	g.Frame()
	g.Draw(dc)

	for i := 0; i < 2; i++ {
		select {
		case <-loaded:
		case <-time.After(time.Second):
			t.Fatal("loader was not invoked")
		}
	}

	// Completions arrive through the channel; Frame picks them up and
	// schedules a redraw.
	deadline := time.After(time.Second)
	for {
		if g.Frame() {
			okEntry, ok1 := g.cache.get("ok")
			brokenEntry, ok2 := g.cache.get("broken")
			if ok1 && ok2 && okEntry.state != entryLoading && brokenEntry.state != entryLoading {
				assert.Equal(t, entryReady, okEntry.state)
				assert.Equal(t, entryBroken, brokenEntry.state)
				break
			}
		}
		select {
		case <-deadline:
			t.Fatal("decode results never arrived")
		case <-time.After(5 * time.Millisecond):
		}
	}

	// Broken entries draw as empty rectangles without re-requesting.
	g.Draw(dc)
	select {
	case src := <-loaded:
		t.Fatalf("unexpected second decode for %s", src)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDrawSmoke(t *testing.T) {
	g := identityGrid(Callbacks{})
	g.SetItems([]pixel.GridItem{
		imageItem("img", 2, 2, 3, 3),
		{
			ID: "txt", Type: pixel.TypeText,
			X: 10, Y: 10, W: 5, H: 2,
			Content: "HELLO", BgColor: "#ffee00", Title: "txt",
		},
	})
	g.SetActiveSelection(&geometry.Selection{StartX: 20, StartY: 20, EndX: 22, EndY: 21})

	dc := gg.NewContext(800, 600)
	g.Draw(dc)

	// The board background must have been painted.
	img := dc.Image()
	assert.NotNil(t, img)
}
