package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gemnet/bidengine/internal/auction/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// SettlementResultDTO reports the final state of an auction after
// settlement. Settlement is idempotent, so settling an already-ended
// auction returns the same final state with AlreadySettled set.
type SettlementResultDTO struct {
	AuctionID       uuid.UUID  `json:"auction_id"`
	AlreadySettled  bool       `json:"already_settled"`
	FinalBid        int64      `json:"final_bid"`
	TotalBids       int64      `json:"total_bids"`
	WinningBidID    *uuid.UUID `json:"winning_bid_id,omitempty"`
	WinningBidderID *uuid.UUID `json:"winning_bidder_id,omitempty"`
}

// SettleAuctionUseCase performs the one-time Active to Ended transition:
// the leading bid becomes won, all outbid bids become lost. A scheduler
// collaborator is expected to drive it once endsAt passes; running it again
// is a no-op.
type SettleAuctionUseCase struct {
	auctionRepo domain.AuctionRepository
	bidRepo     domain.BidRepository
	txRunner    TxRunner
	maxAttempts int
}

func NewSettleAuctionUseCase(auctionRepo domain.AuctionRepository,
	bidRepo domain.BidRepository,
	txRunner TxRunner,
	maxAttempts int) *SettleAuctionUseCase {

	if maxAttempts < 1 {
		maxAttempts = defaultMaxBidAttempts
	}
	return &SettleAuctionUseCase{
		auctionRepo: auctionRepo,
		bidRepo:     bidRepo,
		txRunner:    txRunner,
		maxAttempts: maxAttempts,
	}
}

func (uc *SettleAuctionUseCase) Execute(ctx context.Context, auctionID uuid.UUID, now time.Time) (*SettlementResultDTO, error) {
	for attempt := 1; attempt <= uc.maxAttempts; attempt++ {
		result, err := uc.attempt(ctx, auctionID, now)
		if err != nil && errors.Is(err, domain.ErrStaleAuction) {
			// A bid committed between our read and the close; settle
			// against the state that includes it.
			log.Warn("Settle: auction changed under us, retrying",
				zap.String("auctionID", auctionID.String()),
				zap.Int("attempt", attempt),
			)
			continue
		}
		return result, err
	}
	return nil, domain.ErrConcurrentBidConflict
}

func (uc *SettleAuctionUseCase) attempt(ctx context.Context, auctionID uuid.UUID, now time.Time) (*SettlementResultDTO, error) {
	auction, err := uc.auctionRepo.GetByID(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("settle: failed to get auction %s: %w", auctionID, err)
	}

	if auction.Status == domain.StatusEnded {
		return uc.buildResult(ctx, auction, true)
	}

	expected := auction.CurrentBid
	if err := auction.MarkEnded(now); err != nil {
		return nil, fmt.Errorf("settle: auction %s: %w", auctionID, err)
	}

	err = uc.txRunner.InTx(ctx, func(tx pgx.Tx) error {
		if err := uc.bidRepo.SettleOutcomes(ctx, tx, auction.ID); err != nil {
			return fmt.Errorf("settle outcomes: %w", err)
		}
		if err := uc.auctionRepo.SaveExpecting(ctx, tx, auction, expected); err != nil {
			return fmt.Errorf("save auction %s: %w", auction.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("settle: %w", err)
	}

	return uc.buildResult(ctx, auction, false)
}

func (uc *SettleAuctionUseCase) buildResult(ctx context.Context, auction *domain.Auction, alreadySettled bool) (*SettlementResultDTO, error) {
	result := &SettlementResultDTO{
		AuctionID:      auction.ID,
		AlreadySettled: alreadySettled,
		FinalBid:       auction.CurrentBid,
		TotalBids:      auction.TotalBids,
	}

	winning, err := uc.bidRepo.GetWinningBid(ctx, auction.ID)
	if err != nil {
		return nil, fmt.Errorf("settle: failed to get winning bid for auction %s: %w", auction.ID, err)
	}
	if winning != nil {
		result.WinningBidID = &winning.ID
		result.WinningBidderID = &winning.BidderID
	}

	return result, nil
}
