package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/gemnet/bidengine/internal/auction/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const auctionColumns = `id, gem_name, description, starting_price, current_bid, minimum_next_bid, ends_at, total_bids, views, watchlist_count, status, created_at, updated_at`

// AuctionRepository implements domain.AuctionRepository on Postgres.
type AuctionRepository struct {
	pool *pgxpool.Pool
}

func NewAuctionRepository(pool *pgxpool.Pool) *AuctionRepository {
	return &AuctionRepository{pool: pool}
}

func (r *AuctionRepository) Create(ctx context.Context, a *domain.Auction) error {
	query := `
        INSERT INTO auctions (id, gem_name, description, starting_price, current_bid, minimum_next_bid, ends_at, total_bids, views, watchlist_count, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `
	_, err := r.pool.Exec(ctx, query,
		a.ID,
		a.GemName,
		a.Description,
		a.StartingPrice,
		a.CurrentBid,
		a.MinimumNextBid,
		a.EndsAt,
		a.TotalBids,
		a.Views,
		a.WatchlistCount,
		a.Status,
	)
	return err
}

// SaveExpecting writes the mutated aggregate only if current_bid has not
// moved since the caller read it. Zero rows affected means another bid
// committed in between, reported as domain.ErrStaleAuction so the caller
// can re-read and retry.
func (r *AuctionRepository) SaveExpecting(ctx context.Context, tx pgx.Tx, a *domain.Auction, expectedCurrentBid int64) error {
	query := `
        UPDATE auctions
        SET current_bid = $2,
            minimum_next_bid = $3,
            total_bids = $4,
            status = $5,
            updated_at = NOW()
        WHERE id = $1 AND current_bid = $6
    `
	tag, err := tx.Exec(ctx, query,
		a.ID,
		a.CurrentBid,
		a.MinimumNextBid,
		a.TotalBids,
		a.Status,
		expectedCurrentBid,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrStaleAuction
	}
	return nil
}

func (r *AuctionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Auction, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions WHERE id = $1`

	auction, err := scanAuction(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAuctionNotFound
		}
		return nil, err
	}
	return auction, nil
}

func (r *AuctionRepository) GetActive(ctx context.Context) ([]*domain.Auction, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions WHERE status = $1 ORDER BY ends_at ASC`

	rows, err := r.pool.Query(ctx, query, domain.StatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAuctions(rows)
}

// GetEndingSoon lists active auctions closing within the threshold, for the
// scheduler collaborator that drives settlement.
func (r *AuctionRepository) GetEndingSoon(ctx context.Context, threshold time.Duration) ([]*domain.Auction, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions WHERE status = $1 AND ends_at <= NOW() + $2 ORDER BY ends_at ASC`

	rows, err := r.pool.Query(ctx, query, domain.StatusActive, threshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAuctions(rows)
}

func scanAuction(row pgx.Row) (*domain.Auction, error) {
	a := &domain.Auction{}
	err := row.Scan(
		&a.ID,
		&a.GemName,
		&a.Description,
		&a.StartingPrice,
		&a.CurrentBid,
		&a.MinimumNextBid,
		&a.EndsAt,
		&a.TotalBids,
		&a.Views,
		&a.WatchlistCount,
		&a.Status,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func collectAuctions(rows pgx.Rows) ([]*domain.Auction, error) {
	var auctions []*domain.Auction
	for rows.Next() {
		a, err := scanAuction(rows)
		if err != nil {
			return nil, err
		}
		auctions = append(auctions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return auctions, nil
}
