package postgres

import (
	"context"
	"errors"

	"github.com/gemnet/bidengine/internal/identity/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BidderRepository implements domain.BidderRepository on Postgres.
type BidderRepository struct {
	pool *pgxpool.Pool
}

func NewBidderRepository(pool *pgxpool.Pool) *BidderRepository {
	return &BidderRepository{pool: pool}
}

func (r *BidderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Bidder, error) {
	query := `SELECT id, username, role FROM users WHERE id = $1`

	bidder := &domain.Bidder{}
	err := r.pool.QueryRow(ctx, query, id).Scan(&bidder.ID, &bidder.Username, &bidder.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBidderNotFound
		}
		return nil, err
	}
	return bidder, nil
}
