package postgres

import (
	"context"
	"errors"

	"github.com/gemnet/bidengine/internal/auction/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bidColumns = `id, auction_id, bidder_id, amount, submitted_at, outcome`

// BidRepository implements domain.BidRepository on Postgres.
type BidRepository struct {
	pool *pgxpool.Pool
}

func NewBidRepository(pool *pgxpool.Pool) *BidRepository {
	return &BidRepository{pool: pool}
}

func (r *BidRepository) Save(ctx context.Context, tx pgx.Tx, bid *domain.Bid) error {
	query := `
        INSERT INTO bids (id, auction_id, bidder_id, amount, submitted_at, outcome)
        VALUES ($1, $2, $3, $4, $5, $6)
    `
	_, err := tx.Exec(ctx, query,
		bid.ID,
		bid.AuctionID,
		bid.BidderID,
		bid.Amount,
		bid.SubmittedAt,
		bid.Outcome,
	)
	return err
}

func (r *BidRepository) MarkLeadingOutbid(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID) error {
	query := `UPDATE bids SET outcome = $1 WHERE auction_id = $2 AND outcome = $3`
	_, err := tx.Exec(ctx, query, domain.OutcomeOutbid, auctionID, domain.OutcomeLeading)
	return err
}

// SettleOutcomes finalizes every bid on the auction in one pass: the
// leading bid becomes won, everything outbid becomes lost. Already-settled
// rows match neither predicate, which is what keeps settlement idempotent
// at the storage level.
func (r *BidRepository) SettleOutcomes(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID) error {
	query := `
        UPDATE bids
        SET outcome = CASE outcome
            WHEN $2 THEN $3
            WHEN $4 THEN $5
            ELSE outcome
        END
        WHERE auction_id = $1 AND outcome IN ($2, $4)
    `
	_, err := tx.Exec(ctx, query,
		auctionID,
		domain.OutcomeLeading, domain.OutcomeWon,
		domain.OutcomeOutbid, domain.OutcomeLost,
	)
	return err
}

func (r *BidRepository) GetByAuctionID(ctx context.Context, auctionID uuid.UUID) ([]*domain.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bids WHERE auction_id = $1 ORDER BY submitted_at ASC`

	rows, err := r.pool.Query(ctx, query, auctionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bids []*domain.Bid
	for rows.Next() {
		bid := &domain.Bid{}
		err := rows.Scan(
			&bid.ID,
			&bid.AuctionID,
			&bid.BidderID,
			&bid.Amount,
			&bid.SubmittedAt,
			&bid.Outcome,
		)
		if err != nil {
			return nil, err
		}
		bids = append(bids, bid)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bids, nil
}

func (r *BidRepository) GetLeadingBid(ctx context.Context, auctionID uuid.UUID) (*domain.Bid, error) {
	return r.getByOutcome(ctx, auctionID, domain.OutcomeLeading)
}

func (r *BidRepository) GetWinningBid(ctx context.Context, auctionID uuid.UUID) (*domain.Bid, error) {
	return r.getByOutcome(ctx, auctionID, domain.OutcomeWon)
}

func (r *BidRepository) getByOutcome(ctx context.Context, auctionID uuid.UUID, outcome domain.BidOutcome) (*domain.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bids WHERE auction_id = $1 AND outcome = $2 LIMIT 1`

	bid := &domain.Bid{}
	err := r.pool.QueryRow(ctx, query, auctionID, outcome).Scan(
		&bid.ID,
		&bid.AuctionID,
		&bid.BidderID,
		&bid.Amount,
		&bid.SubmittedAt,
		&bid.Outcome,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return bid, nil
}
