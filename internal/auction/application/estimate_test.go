package application

import (
	"context"
	"testing"
	"time"

	"github.com/gemnet/bidengine/internal/auction/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestEstimateWinChance(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	auction := testAuction(4500, 4650, 48*time.Hour, now)
	auctionRepo := newFakeAuctionRepo(auction)
	uc := NewEstimateWinChanceUseCase(auctionRepo, domain.CatalogIncrementPolicy{})

	estimate, err := uc.Execute(context.Background(), auction.ID, 5000, now)
	require.NoError(t, err)
	require.Equal(t, domain.PredictWinChance(auction, 5000, now), estimate.Score)
	require.Equal(t, domain.BandFor(estimate.Score), estimate.Band)
	require.Equal(t, int64(4650), estimate.MinimumAcceptable)

	// the preview never touches state
	stored, err := auctionRepo.GetByID(context.Background(), auction.ID)
	require.NoError(t, err)
	require.Equal(t, int64(4500), stored.CurrentBid)
	require.Zero(t, stored.TotalBids)
}

func TestEstimateWinChance_InvalidAmount(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	auction := testAuction(4500, 4650, 48*time.Hour, now)
	uc := NewEstimateWinChanceUseCase(newFakeAuctionRepo(auction), domain.CatalogIncrementPolicy{})

	_, err := uc.Execute(context.Background(), auction.ID, 0, now)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRemainingTime(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("open_auction", func(t *testing.T) {
		auction := testAuction(4500, 4650, 26*time.Hour+30*time.Minute, now)
		uc := NewRemainingTimeUseCase(newFakeAuctionRepo(auction))

		remaining, err := uc.Execute(context.Background(), auction.ID, now)
		require.NoError(t, err)
		require.Equal(t, domain.TimeRemaining{Days: 1, Hours: 2, Minutes: 30}, remaining)
	})

	t.Run("closed_auction", func(t *testing.T) {
		auction := testAuction(4500, 4650, -time.Minute, now)
		uc := NewRemainingTimeUseCase(newFakeAuctionRepo(auction))

		remaining, err := uc.Execute(context.Background(), auction.ID, now)
		require.NoError(t, err)
		require.Equal(t, domain.TimeRemaining{Ended: true}, remaining)
	})

	t.Run("unknown_auction", func(t *testing.T) {
		uc := NewRemainingTimeUseCase(newFakeAuctionRepo())
		_, err := uc.Execute(context.Background(), uuid.New(), now)
		require.ErrorIs(t, err, domain.ErrAuctionNotFound)
	})
}
