package application

import (
	"context"
	"fmt"
	"time"

	"github.com/gemnet/bidengine/internal/auction/domain"
	"github.com/google/uuid"
)

// AuctionSummaryDTO is one row of the marketplace listing view.
type AuctionSummaryDTO struct {
	AuctionID      uuid.UUID            `json:"auction_id"`
	GemName        string               `json:"gem_name"`
	CurrentBid     int64                `json:"current_bid"`
	MinimumNextBid int64                `json:"minimum_next_bid"`
	TotalBids      int64                `json:"total_bids"`
	EndsAt         time.Time            `json:"ends_at"`
	Remaining      domain.TimeRemaining `json:"remaining"`
}

// ListAuctionsUseCase queries the active auctions, optionally narrowed to
// those ending within a window (the marketplace's "ending soon" shelf).
type ListAuctionsUseCase struct {
	auctionRepo domain.AuctionRepository
}

func NewListAuctionsUseCase(auctionRepo domain.AuctionRepository) *ListAuctionsUseCase {
	return &ListAuctionsUseCase{auctionRepo: auctionRepo}
}

func (uc *ListAuctionsUseCase) Execute(ctx context.Context, endingWithin time.Duration, now time.Time) ([]*AuctionSummaryDTO, error) {
	var (
		auctions []*domain.Auction
		err      error
	)
	if endingWithin > 0 {
		auctions, err = uc.auctionRepo.GetEndingSoon(ctx, endingWithin)
	} else {
		auctions, err = uc.auctionRepo.GetActive(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("list auctions: failed to query auctions: %w", err)
	}

	summaries := make([]*AuctionSummaryDTO, 0, len(auctions))
	for _, a := range auctions {
		summaries = append(summaries, &AuctionSummaryDTO{
			AuctionID:      a.ID,
			GemName:        a.GemName,
			CurrentBid:     a.CurrentBid,
			MinimumNextBid: a.MinimumNextBid,
			TotalBids:      a.TotalBids,
			EndsAt:         a.EndsAt,
			Remaining:      domain.Countdown(now, a.EndsAt),
		})
	}
	return summaries, nil
}
