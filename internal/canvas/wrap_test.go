package canvas

import (
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/gg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapTextEmpty(t *testing.T) {
	dc := gg.NewContext(100, 100)
	assert.Nil(t, wrapText(dc, "", 50))
	assert.Nil(t, wrapText(dc, "   ", 50))
}

func TestWrapTextWithoutFontKeepsOneLine(t *testing.T) {
	// With no font set, measurement reports zero width and nothing wraps.
	dc := gg.NewContext(100, 100)
	lines := wrapText(dc, "one two three", 50)
	assert.Equal(t, []string{"one two three"}, lines)
}

func filterSource(val uint8) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: val, G: val, B: val, A: 255})
		}
	}
	return img
}

func TestApplyFilterIdentity(t *testing.T) {
	out := applyFilter(filterSource(90), 100, 100)
	nrgba, ok := out.(*image.NRGBA)
	require.True(t, ok)
	assert.Equal(t, uint8(90), nrgba.NRGBAAt(0, 0).R)
	assert.Equal(t, uint8(255), nrgba.NRGBAAt(0, 0).A)

	// Zero means "unset" and falls back to identity.
	out = applyFilter(filterSource(90), 0, 0)
	assert.Equal(t, uint8(90), out.(*image.NRGBA).NRGBAAt(1, 1).R)
}

func TestApplyFilterBrightness(t *testing.T) {
	out := applyFilter(filterSource(100), 50, 100).(*image.NRGBA)
	assert.Equal(t, uint8(50), out.NRGBAAt(0, 0).R)
	assert.Equal(t, uint8(255), out.NRGBAAt(0, 0).A, "alpha untouched")

	bright := applyFilter(filterSource(200), 200, 100).(*image.NRGBA)
	assert.Equal(t, uint8(255), bright.NRGBAAt(0, 0).R, "clamped at white")
}

func TestApplyFilterContrast(t *testing.T) {
	// Mid-gray is the contrast pivot and must not move.
	out := applyFilter(filterSource(128), 100, 200).(*image.NRGBA)
	assert.Equal(t, uint8(128), out.NRGBAAt(0, 0).R)

	// Doubled contrast pushes values away from the pivot.
	dark := applyFilter(filterSource(64), 100, 200).(*image.NRGBA)
	assert.Equal(t, uint8(0), dark.NRGBAAt(0, 0).R)

	light := applyFilter(filterSource(192), 100, 200).(*image.NRGBA)
	assert.Equal(t, uint8(255), light.NRGBAAt(0, 0).R)
}

func TestApplyFilterDoesNotMutateSource(t *testing.T) {
	src := filterSource(100).(*image.NRGBA)
	applyFilter(src, 50, 150)
	assert.Equal(t, uint8(100), src.NRGBAAt(0, 0).R)
}
