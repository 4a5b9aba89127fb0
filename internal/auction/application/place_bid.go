package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gemnet/bidengine/internal/auction/domain"
	"github.com/gemnet/bidengine/internal/shared/logger"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

const defaultMaxBidAttempts = 3

// PlaceBidDTO carries a proposed bid into the engine. Now is passed in
// explicitly so the whole flow stays deterministic for a given snapshot.
type PlaceBidDTO struct {
	AuctionID uuid.UUID
	BidderID  uuid.UUID
	Amount    int64
	Now       time.Time
}

// RejectionReason names the recoverable business rejections a caller can
// act on without treating them as failures.
type RejectionReason string

const (
	ReasonAuctionNotActive RejectionReason = "auction_not_active"
	ReasonBidTooLow        RejectionReason = "bid_too_low"
)

// BidResultDTO is the outcome of a placeBid call. On acceptance it carries
// the new current bid and the advisory win prediction recomputed against
// the updated auction; on rejection it names the reason and the smallest
// amount that would have been accepted.
type BidResultDTO struct {
	Accepted          bool                  `json:"accepted"`
	BidID             uuid.UUID             `json:"bid_id,omitempty"`
	NewCurrentBid     int64                 `json:"new_current_bid,omitempty"`
	Prediction        int                   `json:"prediction,omitempty"`
	Band              domain.PredictionBand `json:"band,omitempty"`
	Reason            RejectionReason       `json:"reason,omitempty"`
	MinimumAcceptable int64                 `json:"minimum_acceptable,omitempty"`
}

// PlaceBidUseCase validates a proposed bid against a fresh auction
// snapshot and commits the acceptance atomically: the demoted leader, the
// new bid and the auction aggregate all land in one transaction guarded by
// an optimistic check on the current bid. A lost race re-reads and retries
// up to maxAttempts before surfacing ErrConcurrentBidConflict.
type PlaceBidUseCase struct {
	auctionRepo domain.AuctionRepository
	bidRepo     domain.BidRepository
	policy      domain.IncrementPolicy
	txRunner    TxRunner
	maxAttempts int
}

// NewPlaceBidUseCase wires the use case. maxAttempts < 1 falls back to the
// default retry budget.
func NewPlaceBidUseCase(auctionRepo domain.AuctionRepository,
	bidRepo domain.BidRepository,
	policy domain.IncrementPolicy,
	txRunner TxRunner,
	maxAttempts int) *PlaceBidUseCase {

	if maxAttempts < 1 {
		maxAttempts = defaultMaxBidAttempts
	}
	return &PlaceBidUseCase{
		auctionRepo: auctionRepo,
		bidRepo:     bidRepo,
		policy:      policy,
		txRunner:    txRunner,
		maxAttempts: maxAttempts,
	}
}

func (uc *PlaceBidUseCase) Execute(ctx context.Context, cmd PlaceBidDTO) (*BidResultDTO, error) {
	if cmd.Amount <= 0 {
		log.Warn("PlaceBid: invalid amount",
			zap.String("auctionID", cmd.AuctionID.String()),
			zap.String("bidderID", cmd.BidderID.String()),
			zap.Int64("amount", cmd.Amount),
		)
		return nil, domain.ErrInvalidInput
	}

	for attempt := 1; attempt <= uc.maxAttempts; attempt++ {
		result, err := uc.attempt(ctx, cmd)
		if err != nil && errors.Is(err, domain.ErrStaleAuction) {
			log.Warn("PlaceBid: lost optimistic race, retrying against fresh state",
				zap.String("auctionID", cmd.AuctionID.String()),
				zap.String("bidderID", cmd.BidderID.String()),
				zap.Int("attempt", attempt),
			)
			continue
		}
		return result, err
	}

	log.Error("PlaceBid: retry budget exhausted",
		zap.String("auctionID", cmd.AuctionID.String()),
		zap.String("bidderID", cmd.BidderID.String()),
		zap.Int("attempts", uc.maxAttempts),
	)
	return nil, domain.ErrConcurrentBidConflict
}

// attempt runs one optimistic pass: read, validate in the domain, persist.
// ErrStaleAuction out of the transaction means another bid committed after
// our read.
func (uc *PlaceBidUseCase) attempt(ctx context.Context, cmd PlaceBidDTO) (*BidResultDTO, error) {
	auction, err := uc.auctionRepo.GetByID(ctx, cmd.AuctionID)
	if err != nil {
		return nil, fmt.Errorf("place bid: failed to get auction %s: %w", cmd.AuctionID, err)
	}

	expected := auction.CurrentBid

	newBid, err := auction.ApplyBid(cmd.BidderID, cmd.Amount, cmd.Now, uc.policy)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAuctionNotActive):
			return &BidResultDTO{Accepted: false, Reason: ReasonAuctionNotActive}, nil
		case errors.Is(err, domain.ErrBidTooLow):
			return &BidResultDTO{
				Accepted:          false,
				Reason:            ReasonBidTooLow,
				MinimumAcceptable: uc.policy.MinimumAcceptable(auction),
			}, nil
		}
		return nil, fmt.Errorf("place bid: validation failed for auction %s: %w", cmd.AuctionID, err)
	}

	err = uc.txRunner.InTx(ctx, func(tx pgx.Tx) error {
		if err := uc.bidRepo.MarkLeadingOutbid(ctx, tx, auction.ID); err != nil {
			return fmt.Errorf("demote previous leader: %w", err)
		}
		if err := uc.bidRepo.Save(ctx, tx, newBid); err != nil {
			return fmt.Errorf("save bid %s: %w", newBid.ID, err)
		}
		if err := uc.auctionRepo.SaveExpecting(ctx, tx, auction, expected); err != nil {
			return fmt.Errorf("save auction %s: %w", auction.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("place bid: %w", err)
	}

	prediction := domain.PredictWinChance(auction, newBid.Amount, cmd.Now)

	return &BidResultDTO{
		Accepted:      true,
		BidID:         newBid.ID,
		NewCurrentBid: auction.CurrentBid,
		Prediction:    prediction,
		Band:          domain.BandFor(prediction),
	}, nil
}
