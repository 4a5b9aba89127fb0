package application

import (
	"context"
	"fmt"
	"time"

	"github.com/gemnet/bidengine/internal/auction/domain"
	"github.com/google/uuid"
)

// EstimateDTO is the read-only preview a bidder sees while typing an
// amount, before any bid is submitted.
type EstimateDTO struct {
	AuctionID         uuid.UUID             `json:"auction_id"`
	CandidateAmount   int64                 `json:"candidate_amount"`
	Score             int                   `json:"score"`
	Band              domain.PredictionBand `json:"band"`
	MinimumAcceptable int64                 `json:"minimum_acceptable"`
}

// EstimateWinChanceUseCase scores a candidate amount against the current
// auction snapshot without touching any state.
type EstimateWinChanceUseCase struct {
	auctionRepo domain.AuctionRepository
	policy      domain.IncrementPolicy
}

func NewEstimateWinChanceUseCase(auctionRepo domain.AuctionRepository, policy domain.IncrementPolicy) *EstimateWinChanceUseCase {
	return &EstimateWinChanceUseCase{auctionRepo: auctionRepo, policy: policy}
}

func (uc *EstimateWinChanceUseCase) Execute(ctx context.Context, auctionID uuid.UUID, candidateAmount int64, now time.Time) (*EstimateDTO, error) {
	if candidateAmount <= 0 {
		return nil, domain.ErrInvalidInput
	}

	auction, err := uc.auctionRepo.GetByID(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("estimate win chance: failed to get auction %s: %w", auctionID, err)
	}

	score := domain.PredictWinChance(auction, candidateAmount, now)

	return &EstimateDTO{
		AuctionID:         auctionID,
		CandidateAmount:   candidateAmount,
		Score:             score,
		Band:              domain.BandFor(score),
		MinimumAcceptable: uc.policy.MinimumAcceptable(auction),
	}, nil
}
