package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// GuestStats summarizes the guest-code population.
type GuestStats struct {
	Total   int64 `json:"total"`
	Expired int64 `json:"expired"`
	Active  int64 `json:"active"`
}

// GuestStatsRepository answers aggregate queries over guest codes.
type GuestStatsRepository interface {
	Stats(ctx context.Context, now time.Time) (*GuestStats, error)
}

type guestStatsRepository struct {
	pool *pgxpool.Pool
}

// NewGuestStatsRepository returns a pgx-backed GuestStatsRepository.
func NewGuestStatsRepository(pool *pgxpool.Pool) GuestStatsRepository {
	return &guestStatsRepository{pool: pool}
}

func (r *guestStatsRepository) Stats(ctx context.Context, now time.Time) (*GuestStats, error) {
	const query = `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE expires_at IS NOT NULL AND expires_at <= $1)
		FROM qr_codes
		WHERE is_guest`

	var stats GuestStats
	if err := r.pool.QueryRow(ctx, query, now).Scan(&stats.Total, &stats.Expired); err != nil {
		return nil, err
	}
	stats.Active = stats.Total - stats.Expired
	return &stats, nil
}
