package pixel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validImage() *GridItem {
	return &GridItem{
		ID:    "test-1",
		Type:  TypeImage,
		X:     2,
		Y:     2,
		W:     3,
		H:     4,
		Src:   "data:image/png;base64,xxx",
		Title: "My plot",
	}
}

func TestCellsAndPrice(t *testing.T) {
	it := validImage()
	assert.Equal(t, 12, it.Cells())
	assert.Equal(t, 12*PricePerCell, it.Price())

	single := &GridItem{W: 1, H: 1}
	assert.Equal(t, 1, single.Cells())
	assert.Equal(t, PricePerCell, single.Price())
}

func TestContains(t *testing.T) {
	it := validImage() // (2,2) 3x4 covers x in [2,5), y in [2,6)
	assert.True(t, it.Contains(2, 2))
	assert.True(t, it.Contains(4, 5))
	assert.False(t, it.Contains(5, 2), "right edge is exclusive")
	assert.False(t, it.Contains(2, 6), "bottom edge is exclusive")
	assert.False(t, it.Contains(1, 2))
}

func TestOverlaps(t *testing.T) {
	a := &GridItem{X: 0, Y: 0, W: 5, H: 5}

	assert.True(t, a.Overlaps(&GridItem{X: 4, Y: 4, W: 5, H: 5}), "corner cell shared")
	assert.True(t, a.Overlaps(&GridItem{X: 1, Y: 1, W: 2, H: 2}), "fully inside")
	assert.False(t, a.Overlaps(&GridItem{X: 5, Y: 0, W: 5, H: 5}), "edge-adjacent is not overlap")
	assert.False(t, a.Overlaps(&GridItem{X: 0, Y: 5, W: 5, H: 5}))
	assert.False(t, a.Overlaps(&GridItem{X: 100, Y: 100, W: 1, H: 1}))
}

func TestApplyDefaults(t *testing.T) {
	it := &GridItem{}
	it.ApplyDefaults()
	assert.Equal(t, 100.0, it.Brightness)
	assert.Equal(t, 100.0, it.Contrast)
	assert.Equal(t, 1.0, it.Zoom)
	assert.Equal(t, 0.0, it.Rotation)
	assert.Equal(t, 0.0, it.OffsetX)

	set := &GridItem{Brightness: 130, Contrast: 80, Zoom: 2.5}
	set.ApplyDefaults()
	assert.Equal(t, 130.0, set.Brightness)
	assert.Equal(t, 80.0, set.Contrast)
	assert.Equal(t, 2.5, set.Zoom)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, validImage().Validate())

	tests := []struct {
		name   string
		mutate func(*GridItem)
	}{
		{"missing id", func(it *GridItem) { it.ID = "" }},
		{"missing title", func(it *GridItem) { it.Title = "" }},
		{"zero width", func(it *GridItem) { it.W = 0 }},
		{"negative height", func(it *GridItem) { it.H = -1 }},
		{"negative origin", func(it *GridItem) { it.X = -1 }},
		{"overflows right edge", func(it *GridItem) { it.X = GridSize - 1; it.W = 2 }},
		{"overflows bottom edge", func(it *GridItem) { it.Y = GridSize - 2; it.H = 3 }},
		{"image without src", func(it *GridItem) { it.Src = "" }},
		{"unknown type", func(it *GridItem) { it.Type = "video" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := validImage()
			tt.mutate(it)
			assert.Error(t, it.Validate())
		})
	}
}

func TestValidateTextVariant(t *testing.T) {
	it := &GridItem{
		ID:      "txt-1",
		Type:    TypeText,
		X:       0,
		Y:       0,
		W:       10,
		H:       2,
		Content: "HELLO",
		Title:   "Banner",
	}
	assert.NoError(t, it.Validate())

	it.Content = ""
	assert.Error(t, it.Validate())
}

func TestValidateBoardCorners(t *testing.T) {
	it := validImage()
	it.X, it.Y, it.W, it.H = GridSize-1, GridSize-1, 1, 1
	assert.NoError(t, it.Validate(), "last cell is inside the board")

	full := validImage()
	full.X, full.Y, full.W, full.H = 0, 0, GridSize, GridSize
	assert.NoError(t, full.Validate(), "whole-board rectangle is legal")
}
