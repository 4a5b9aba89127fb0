package postgres

import (
	"context"

	"github.com/gemnet/bidengine/internal/auction/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WatchlistRepository implements domain.WatchlistRepository on Postgres.
// Adding an entry keeps the auction's denormalized watchlist_count in step,
// since the scorer reads that counter off the auction row.
type WatchlistRepository struct {
	pool *pgxpool.Pool
}

func NewWatchlistRepository(pool *pgxpool.Pool) *WatchlistRepository {
	return &WatchlistRepository{pool: pool}
}

func (r *WatchlistRepository) Add(ctx context.Context, entry *domain.WatchlistEntry) error {
	query := `
        INSERT INTO watchlist_entries (bidder_id, auction_id, created_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (bidder_id, auction_id) DO NOTHING
    `
	tag, err := r.pool.Exec(ctx, query, entry.BidderID, entry.AuctionID, entry.CreatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// already watching
		return nil
	}

	counter := `UPDATE auctions SET watchlist_count = watchlist_count + 1 WHERE id = $1`
	_, err = r.pool.Exec(ctx, counter, entry.AuctionID)
	return err
}

func (r *WatchlistRepository) Remove(ctx context.Context, bidderID, auctionID uuid.UUID) error {
	query := `DELETE FROM watchlist_entries WHERE bidder_id = $1 AND auction_id = $2`
	tag, err := r.pool.Exec(ctx, query, bidderID, auctionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return nil
	}

	counter := `UPDATE auctions SET watchlist_count = GREATEST(watchlist_count - 1, 0) WHERE id = $1`
	_, err = r.pool.Exec(ctx, counter, auctionID)
	return err
}

func (r *WatchlistRepository) CountForAuction(ctx context.Context, auctionID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM watchlist_entries WHERE auction_id = $1`

	var count int64
	if err := r.pool.QueryRow(ctx, query, auctionID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
