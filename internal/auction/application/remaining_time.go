package application

import (
	"context"
	"fmt"
	"time"

	"github.com/gemnet/bidengine/internal/auction/domain"
	"github.com/google/uuid"
)

// RemainingTimeUseCase reports the countdown for one auction.
type RemainingTimeUseCase struct {
	auctionRepo domain.AuctionRepository
}

func NewRemainingTimeUseCase(auctionRepo domain.AuctionRepository) *RemainingTimeUseCase {
	return &RemainingTimeUseCase{auctionRepo: auctionRepo}
}

func (uc *RemainingTimeUseCase) Execute(ctx context.Context, auctionID uuid.UUID, now time.Time) (domain.TimeRemaining, error) {
	auction, err := uc.auctionRepo.GetByID(ctx, auctionID)
	if err != nil {
		return domain.TimeRemaining{}, fmt.Errorf("remaining time: failed to get auction %s: %w", auctionID, err)
	}
	return domain.Countdown(now, auction.EndsAt), nil
}
