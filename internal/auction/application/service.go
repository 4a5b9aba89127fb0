package application

import (
	"context"
	"time"

	"github.com/gemnet/bidengine/internal/auction/domain"
	"github.com/google/uuid"
)

// AuctionService is the bid engine facade exposed to presentation-layer
// adapters: validate-and-apply a bid, preview a win chance, report the
// countdown, settle a closed auction, read a listing's state, browse the
// active auctions.
type AuctionService interface {
	PlaceBid(ctx context.Context, cmd PlaceBidDTO) (*BidResultDTO, error)
	EstimateWinChance(ctx context.Context, auctionID uuid.UUID, candidateAmount int64, now time.Time) (*EstimateDTO, error)
	RemainingTime(ctx context.Context, auctionID uuid.UUID, now time.Time) (domain.TimeRemaining, error)
	Settle(ctx context.Context, auctionID uuid.UUID, now time.Time) (*SettlementResultDTO, error)
	GetAuctionState(ctx context.Context, auctionID uuid.UUID, now time.Time) (*AuctionStateDTO, error)
	ListAuctions(ctx context.Context, endingWithin time.Duration, now time.Time) ([]*AuctionSummaryDTO, error)
}

type auctionService struct {
	placeBidUC      *PlaceBidUseCase
	estimateUC      *EstimateWinChanceUseCase
	remainingTimeUC *RemainingTimeUseCase
	settleUC        *SettleAuctionUseCase
	auctionStateUC  *GetAuctionStateUseCase
	listAuctionsUC  *ListAuctionsUseCase
}

func NewAuctionService(placeBidUC *PlaceBidUseCase,
	estimateUC *EstimateWinChanceUseCase,
	remainingTimeUC *RemainingTimeUseCase,
	settleUC *SettleAuctionUseCase,
	auctionStateUC *GetAuctionStateUseCase,
	listAuctionsUC *ListAuctionsUseCase) AuctionService {

	return &auctionService{
		placeBidUC:      placeBidUC,
		estimateUC:      estimateUC,
		remainingTimeUC: remainingTimeUC,
		settleUC:        settleUC,
		auctionStateUC:  auctionStateUC,
		listAuctionsUC:  listAuctionsUC,
	}
}

func (as *auctionService) PlaceBid(ctx context.Context, cmd PlaceBidDTO) (*BidResultDTO, error) {
	return as.placeBidUC.Execute(ctx, cmd)
}

func (as *auctionService) EstimateWinChance(ctx context.Context, auctionID uuid.UUID, candidateAmount int64, now time.Time) (*EstimateDTO, error) {
	return as.estimateUC.Execute(ctx, auctionID, candidateAmount, now)
}

func (as *auctionService) RemainingTime(ctx context.Context, auctionID uuid.UUID, now time.Time) (domain.TimeRemaining, error) {
	return as.remainingTimeUC.Execute(ctx, auctionID, now)
}

func (as *auctionService) Settle(ctx context.Context, auctionID uuid.UUID, now time.Time) (*SettlementResultDTO, error) {
	return as.settleUC.Execute(ctx, auctionID, now)
}

func (as *auctionService) GetAuctionState(ctx context.Context, auctionID uuid.UUID, now time.Time) (*AuctionStateDTO, error) {
	return as.auctionStateUC.Execute(ctx, auctionID, now)
}

func (as *auctionService) ListAuctions(ctx context.Context, endingWithin time.Duration, now time.Time) ([]*AuctionSummaryDTO, error) {
	return as.listAuctionsUC.Execute(ctx, endingWithin, now)
}
