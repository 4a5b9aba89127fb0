package application

import (
	"context"
	"fmt"
	"time"

	"github.com/gemnet/bidengine/internal/auction/domain"
	"github.com/google/uuid"
)

// AuctionStateDTO is the read model exposed to the presentation layer for
// a single listing.
type AuctionStateDTO struct {
	AuctionID      uuid.UUID            `json:"auction_id"`
	GemName        string               `json:"gem_name"`
	Description    string               `json:"description"`
	StartingPrice  int64                `json:"starting_price"`
	CurrentBid     int64                `json:"current_bid"`
	MinimumNextBid int64                `json:"minimum_next_bid"`
	EndsAt         time.Time            `json:"ends_at"`
	TotalBids      int64                `json:"total_bids"`
	Views          int64                `json:"views"`
	WatchlistCount int64                `json:"watchlist_count"`
	Status         string               `json:"status"`
	Remaining      domain.TimeRemaining `json:"remaining"`
	LeadingBidder  *uuid.UUID           `json:"leading_bidder,omitempty"`
	LeadingSince   *time.Time           `json:"leading_since,omitempty"`
}

// GetAuctionStateUseCase assembles the current state of an auction plus its
// countdown and leading bidder.
type GetAuctionStateUseCase struct {
	auctionRepo domain.AuctionRepository
	bidRepo     domain.BidRepository
}

func NewGetAuctionStateUseCase(auctionRepo domain.AuctionRepository, bidRepo domain.BidRepository) *GetAuctionStateUseCase {
	return &GetAuctionStateUseCase{
		auctionRepo: auctionRepo,
		bidRepo:     bidRepo,
	}
}

func (uc *GetAuctionStateUseCase) Execute(ctx context.Context, auctionID uuid.UUID, now time.Time) (*AuctionStateDTO, error) {
	auction, err := uc.auctionRepo.GetByID(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("get auction state: failed to get auction %s: %w", auctionID, err)
	}

	dto := &AuctionStateDTO{
		AuctionID:      auction.ID,
		GemName:        auction.GemName,
		Description:    auction.Description,
		StartingPrice:  auction.StartingPrice,
		CurrentBid:     auction.CurrentBid,
		MinimumNextBid: auction.MinimumNextBid,
		EndsAt:         auction.EndsAt,
		TotalBids:      auction.TotalBids,
		Views:          auction.Views,
		WatchlistCount: auction.WatchlistCount,
		Status:         string(auction.Status),
		Remaining:      domain.Countdown(now, auction.EndsAt),
	}

	leading, err := uc.bidRepo.GetLeadingBid(ctx, auctionID)
	if err == nil && leading != nil {
		dto.LeadingBidder = &leading.BidderID
		dto.LeadingSince = &leading.SubmittedAt
	}

	return dto, nil
}
