package canvas

import (
	"image"
	"strings"

	"github.com/gogpu/gg"
	xdraw "golang.org/x/image/draw"
)

// wrapText greedily packs words into lines no wider than maxWidth, measured
// with the context's current font. A single over-long word still gets its
// own line rather than being split.
func wrapText(dc *gg.Context, text string, maxWidth float64) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	lines := []string{}
	current := words[0]
	for _, word := range words[1:] {
		w, _ := dc.MeasureString(current + " " + word)
		if w < maxWidth {
			current += " " + word
		} else {
			lines = append(lines, current)
			current = word
		}
	}
	return append(lines, current)
}

// applyFilter bakes a brightness/contrast display filter (both in percent,
// 100 = identity) into a copy of the image.
func applyFilter(img image.Image, brightness, contrast float64) image.Image {
	if brightness == 0 {
		brightness = 100
	}
	if contrast == 0 {
		contrast = 100
	}

	bounds := img.Bounds()
	dst := image.NewNRGBA(bounds)
	xdraw.Copy(dst, bounds.Min, img, bounds, xdraw.Src, nil)

	if brightness == 100 && contrast == 100 {
		return dst
	}

	b := brightness / 100
	c := contrast / 100
	for i := 0; i < len(dst.Pix); i += 4 {
		for ch := 0; ch < 3; ch++ {
			v := float64(dst.Pix[i+ch])
			v = (v-128)*c + 128 // contrast pivots around mid-gray
			v *= b
			dst.Pix[i+ch] = clampByte(v)
		}
	}
	return dst
}

func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
