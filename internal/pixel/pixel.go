package pixel

import (
	"errors"
	"fmt"
	"time"
)

// GridSize is the board dimension in cells (the board is GridSize x GridSize).
const GridSize = 1000

// PricePerCell is the charge amount for a single cell, in BRL.
const PricePerCell = 1.00

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
)

type ItemType string

const (
	TypeImage ItemType = "image"
	TypeText  ItemType = "text"
)

var (
	ErrNotFound   = errors.New("pixel not found")
	ErrNotPending = errors.New("pixel is not pending")
	ErrOverlap    = errors.New("area already occupied")
)

// GridItem is a placed image or text block occupying the cell rectangle
// [X, X+W) x [Y, Y+H). The Type tag selects which variant fields apply:
// image items use Src plus the framing fields, text items use Content plus
// the font/color fields.
type GridItem struct {
	ID   string   `json:"id"`
	Type ItemType `json:"type"`
	X    int      `json:"x"`
	Y    int      `json:"y"`
	W    int      `json:"w"`
	H    int      `json:"h"`

	// Image variant
	Src        string  `json:"src,omitempty"`
	Rotation   float64 `json:"rotation"`
	Brightness float64 `json:"brightness"`
	Contrast   float64 `json:"contrast"`
	Zoom       float64 `json:"zoom"`
	OffsetX    float64 `json:"offsetX"`
	OffsetY    float64 `json:"offsetY"`

	// Text variant
	Content    string  `json:"content,omitempty"`
	FontFamily string  `json:"fontFamily,omitempty"`
	FontSize   float64 `json:"fontSize,omitempty"`
	FontWeight string  `json:"fontWeight,omitempty"`
	Color      string  `json:"color,omitempty"`
	BgColor    string  `json:"bgColor,omitempty"`

	Title   string `json:"title"`
	Link    string `json:"link,omitempty"`
	Message string `json:"message,omitempty"`

	Status    Status    `json:"status,omitempty"`
	PaymentID string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// Cells returns how many cells the item occupies.
func (it *GridItem) Cells() int {
	return it.W * it.H
}

// Price returns the charge amount for the item's rectangle.
func (it *GridItem) Price() float64 {
	return float64(it.Cells()) * PricePerCell
}

// Contains reports whether the grid cell (gx, gy) falls inside the item's
// rectangle, using inclusive-exclusive containment.
func (it *GridItem) Contains(gx, gy int) bool {
	return gx >= it.X && gx < it.X+it.W && gy >= it.Y && gy < it.Y+it.H
}

// Overlaps reports whether two cell rectangles share at least one cell.
func (it *GridItem) Overlaps(other *GridItem) bool {
	return it.X < other.X+other.W && it.X+it.W > other.X &&
		it.Y < other.Y+other.H && it.Y+it.H > other.Y
}

// ApplyDefaults fills the numeric display fields the client may omit.
func (it *GridItem) ApplyDefaults() {
	if it.Brightness == 0 {
		it.Brightness = 100
	}
	if it.Contrast == 0 {
		it.Contrast = 100
	}
	if it.Zoom == 0 {
		it.Zoom = 1
	}
}

// Validate checks the item rectangle against the board bounds and the
// variant fields against the type tag.
func (it *GridItem) Validate() error {
	if it.ID == "" {
		return errors.New("id is required")
	}
	if it.Title == "" {
		return errors.New("title is required")
	}
	if it.W < 1 || it.H < 1 {
		return errors.New("w and h must be at least 1")
	}
	if it.X < 0 || it.Y < 0 || it.X+it.W > GridSize || it.Y+it.H > GridSize {
		return fmt.Errorf("rectangle (%d,%d %dx%d) is outside the %dx%d board", it.X, it.Y, it.W, it.H, GridSize, GridSize)
	}
	switch it.Type {
	case TypeImage:
		if it.Src == "" {
			return errors.New("image items require src")
		}
	case TypeText:
		if it.Content == "" {
			return errors.New("text items require content")
		}
	default:
		return fmt.Errorf("unknown item type %q", it.Type)
	}
	return nil
}
