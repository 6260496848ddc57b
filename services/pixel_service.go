package services

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"millionGridAPI/internal/pixel"
)

type PixelService struct {
	db *pgxpool.Pool
}

func NewPixelService(db *pgxpool.Pool) *PixelService {
	return &PixelService{db: db}
}

const pixelColumns = `
	id, type, x, y, w, h, src, content, font_size, font_family, font_weight,
	color, bg_color, rotation, brightness, contrast, zoom, offset_x, offset_y,
	title, link, message, status, payment_id, created_at
`

func scanPixel(row pgx.Row) (*pixel.GridItem, error) {
	var it pixel.GridItem
	var src, content, fontFamily, fontWeight, color, bgColor, title, link, message, paymentID *string
	var fontSize *float64

	err := row.Scan(
		&it.ID, &it.Type, &it.X, &it.Y, &it.W, &it.H,
		&src, &content, &fontSize, &fontFamily, &fontWeight,
		&color, &bgColor,
		&it.Rotation, &it.Brightness, &it.Contrast,
		&it.Zoom, &it.OffsetX, &it.OffsetY,
		&title, &link, &message,
		&it.Status, &paymentID, &it.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	assign := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	assign(&it.Src, src)
	assign(&it.Content, content)
	assign(&it.FontFamily, fontFamily)
	assign(&it.FontWeight, fontWeight)
	assign(&it.Color, color)
	assign(&it.BgColor, bgColor)
	assign(&it.Title, title)
	assign(&it.Link, link)
	assign(&it.Message, message)
	assign(&it.PaymentID, paymentID)
	if fontSize != nil {
		it.FontSize = *fontSize
	}
	return &it, nil
}

// ListApproved returns every approved pixel, oldest first. Pending rows
// never appear on the public board.
func (s *PixelService) ListApproved(ctx context.Context) ([]pixel.GridItem, error) {
	query := `SELECT ` + pixelColumns + `
		FROM million_grid.pixels
		WHERE status = 'approved'
		ORDER BY created_at ASC`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list pixels: %w", err)
	}
	defer rows.Close()

	items := []pixel.GridItem{}
	for rows.Next() {
		it, err := scanPixel(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pixel: %w", err)
		}
		items = append(items, *it)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Create inserts a new pixel with status forced to pending. The insert and
// the overlap check against existing rows share one transaction, so two
// concurrent submissions for intersecting rectangles cannot both win.
func (s *PixelService) Create(ctx context.Context, it *pixel.GridItem) (*pixel.GridItem, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var occupied bool
	overlapQuery := `
		SELECT EXISTS (
			SELECT 1 FROM million_grid.pixels
			WHERE x < $1 + $3 AND x + w > $1
			  AND y < $2 + $4 AND y + h > $2
		)`
	if err := tx.QueryRow(ctx, overlapQuery, it.X, it.Y, it.W, it.H).Scan(&occupied); err != nil {
		return nil, fmt.Errorf("failed to check overlap: %w", err)
	}
	if occupied {
		return nil, pixel.ErrOverlap
	}

	// created_at is left to the column default so a decoded request body can
	// never backdate a row (board ordering) or forward-date it past the
	// reaper's TTL window.
	insertQuery := `
		INSERT INTO million_grid.pixels (
			id, type, x, y, w, h, src, content, font_size, font_family, font_weight,
			color, bg_color, rotation, brightness, contrast, zoom, offset_x, offset_y,
			title, link, message, status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16, $17, $18, $19,
			$20, $21, $22, 'pending'
		)
		RETURNING ` + pixelColumns

	created, err := scanPixel(tx.QueryRow(ctx, insertQuery,
		it.ID, it.Type, it.X, it.Y, it.W, it.H,
		nullable(it.Src), nullable(it.Content), nullableFloat(it.FontSize),
		nullable(it.FontFamily), nullable(it.FontWeight),
		nullable(it.Color), nullable(it.BgColor),
		it.Rotation, it.Brightness, it.Contrast,
		it.Zoom, it.OffsetX, it.OffsetY,
		nullable(it.Title), nullable(it.Link), nullable(it.Message),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to insert pixel: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return created, nil
}

// Status returns the pixel's stored status and payment reference.
func (s *PixelService) Status(ctx context.Context, id string) (pixel.Status, string, error) {
	var status pixel.Status
	var paymentID *string
	query := `SELECT status, payment_id FROM million_grid.pixels WHERE id = $1`
	err := s.db.QueryRow(ctx, query, id).Scan(&status, &paymentID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", "", pixel.ErrNotFound
		}
		return "", "", fmt.Errorf("failed to get pixel status: %w", err)
	}
	ref := ""
	if paymentID != nil {
		ref = *paymentID
	}
	return status, ref, nil
}

// SetPaymentID stores the provider's charge id against the pixel.
func (s *PixelService) SetPaymentID(ctx context.Context, id, paymentID string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE million_grid.pixels SET payment_id = $1 WHERE id = $2`,
		paymentID, id)
	if err != nil {
		return fmt.Errorf("failed to set payment id: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pixel.ErrNotFound
	}
	return nil
}

// Approve flips a pixel to approved. Repeating the call for an already
// approved pixel is a no-op, which keeps webhook retries safe.
func (s *PixelService) Approve(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE million_grid.pixels SET status = 'approved' WHERE id = $1`,
		id)
	if err != nil {
		return fmt.Errorf("failed to approve pixel: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pixel.ErrNotFound
	}
	return nil
}

// ApproveByPaymentID is the webhook fallback when the provider notification
// carries no external reference.
func (s *PixelService) ApproveByPaymentID(ctx context.Context, paymentID string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE million_grid.pixels SET status = 'approved' WHERE payment_id = $1`,
		paymentID)
	if err != nil {
		return fmt.Errorf("failed to approve pixel by payment id: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pixel.ErrNotFound
	}
	return nil
}

// DeletePending discards a pixel only while it is still pending. An item
// approved in the same instant the caller's timer fired survives.
func (s *PixelService) DeletePending(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM million_grid.pixels WHERE id = $1 AND status = 'pending'`,
		id)
	if err != nil {
		return fmt.Errorf("failed to delete pixel: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	err = s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM million_grid.pixels WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check pixel existence: %w", err)
	}
	if exists {
		return pixel.ErrNotPending
	}
	return pixel.ErrNotFound
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullableFloat(f float64) *float64 {
	if f == 0 {
		return nil
	}
	return &f
}
