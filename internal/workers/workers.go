package workers

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// StartReaper starts a background sweep that deletes pending pixels whose
// payment window expired without approval. The client normally discards its
// own timed-out pixel, but a closed tab or a failed charge call leaves
// orphans behind; the sweep is the backstop. Approved rows are never touched.
// The sweep stops when ctx is cancelled, alongside the server's own shutdown.
func StartReaper(ctx context.Context, db *pgxpool.Pool, interval, ttl time.Duration) {
	go runReaper(ctx, interval, func() { reapExpiredPixels(db, ttl) })
}

func runReaper(ctx context.Context, interval time.Duration, sweep func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweep()
		}
	}
}

func reapExpiredPixels(db *pgxpool.Pool, ttl time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	tag, err := db.Exec(ctx,
		`DELETE FROM million_grid.pixels
		 WHERE status = 'pending' AND created_at < now() - ($1 * interval '1 second')`,
		ttl.Seconds())
	if err != nil {
		log.Printf("Error reaping expired pixels: %v", err)
		return
	}

	if n := tag.RowsAffected(); n > 0 {
		log.Printf("Reaped %d expired pending pixels", n)
	}
}
