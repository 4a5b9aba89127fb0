package application

import (
	"context"
	"testing"
	"time"

	"github.com/gemnet/bidengine/internal/auction/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func testAuction(currentBid, minimumNextBid int64, endsIn time.Duration, now time.Time) *domain.Auction {
	return &domain.Auction{
		ID:             uuid.New(),
		GemName:        "Burmese Ruby",
		StartingPrice:  currentBid,
		CurrentBid:     currentBid,
		MinimumNextBid: minimumNextBid,
		EndsAt:         now.Add(endsIn),
		Views:          100,
		WatchlistCount: 10,
		Status:         domain.StatusActive,
	}
}

func newPlaceBidFixture(auctions ...*domain.Auction) (*PlaceBidUseCase, *fakeAuctionRepo, *fakeBidRepo) {
	auctionRepo := newFakeAuctionRepo(auctions...)
	bidRepo := newFakeBidRepo()
	runner := &fakeTxRunner{auctionRepo: auctionRepo, bidRepo: bidRepo}
	uc := NewPlaceBidUseCase(auctionRepo, bidRepo, domain.CatalogIncrementPolicy{}, runner, 3)
	return uc, auctionRepo, bidRepo
}

func TestPlaceBid_Accepted(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	auction := testAuction(4500, 4650, 48*time.Hour, now)
	uc, auctionRepo, bidRepo := newPlaceBidFixture(auction)
	bidder := uuid.New()

	result, err := uc.Execute(context.Background(), PlaceBidDTO{
		AuctionID: auction.ID, BidderID: bidder, Amount: 4700, Now: now,
	})
	require.NoError(t, err)
	require.True(t, result.Accepted)
	require.Equal(t, int64(4700), result.NewCurrentBid)
	require.GreaterOrEqual(t, result.Prediction, domain.MinWinChance)
	require.LessOrEqual(t, result.Prediction, domain.MaxWinChance)
	require.Equal(t, domain.BandFor(result.Prediction), result.Band)

	stored, err := auctionRepo.GetByID(context.Background(), auction.ID)
	require.NoError(t, err)
	require.Equal(t, int64(4700), stored.CurrentBid)
	require.Equal(t, int64(1), stored.TotalBids)

	leading, err := bidRepo.GetLeadingBid(context.Background(), auction.ID)
	require.NoError(t, err)
	require.Equal(t, bidder, leading.BidderID)
	require.Equal(t, int64(4700), leading.Amount)
}

func TestPlaceBid_DemotesPreviousLeader(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	auction := testAuction(4500, 4650, 48*time.Hour, now)
	uc, _, bidRepo := newPlaceBidFixture(auction)

	first := uuid.New()
	second := uuid.New()

	_, err := uc.Execute(context.Background(), PlaceBidDTO{
		AuctionID: auction.ID, BidderID: first, Amount: 4700, Now: now,
	})
	require.NoError(t, err)

	result, err := uc.Execute(context.Background(), PlaceBidDTO{
		AuctionID: auction.ID, BidderID: second, Amount: 5000, Now: now,
	})
	require.NoError(t, err)
	require.True(t, result.Accepted)

	counts := bidRepo.outcomes(auction.ID)
	require.Equal(t, 1, counts[domain.OutcomeLeading])
	require.Equal(t, 1, counts[domain.OutcomeOutbid])

	leading, err := bidRepo.GetLeadingBid(context.Background(), auction.ID)
	require.NoError(t, err)
	require.Equal(t, second, leading.BidderID)
}

func TestPlaceBid_Rejections(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		auction    func() *domain.Auction
		amount     int64
		wantReason RejectionReason
		wantMin    int64
	}{
		{
			name:       "bid_too_low_reports_minimum",
			auction:    func() *domain.Auction { return testAuction(4500, 4650, 48*time.Hour, now) },
			amount:     4000,
			wantReason: ReasonBidTooLow,
			wantMin:    4650,
		},
		{
			name: "ended_auction",
			auction: func() *domain.Auction {
				a := testAuction(4500, 4650, -time.Hour, now)
				a.Status = domain.StatusEnded
				return a
			},
			amount:     9999999,
			wantReason: ReasonAuctionNotActive,
		},
		{
			name: "upcoming_auction",
			auction: func() *domain.Auction {
				a := testAuction(4500, 4650, 48*time.Hour, now)
				a.Status = domain.StatusUpcoming
				return a
			},
			amount:     5000,
			wantReason: ReasonAuctionNotActive,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			auction := tc.auction()
			uc, auctionRepo, bidRepo := newPlaceBidFixture(auction)

			result, err := uc.Execute(context.Background(), PlaceBidDTO{
				AuctionID: auction.ID, BidderID: uuid.New(), Amount: tc.amount, Now: now,
			})
			require.NoError(t, err)
			require.False(t, result.Accepted)
			require.Equal(t, tc.wantReason, result.Reason)
			require.Equal(t, tc.wantMin, result.MinimumAcceptable)

			// rejection purity: nothing was persisted
			require.Zero(t, auctionRepo.saveCalls)
			stored, err := auctionRepo.GetByID(context.Background(), auction.ID)
			require.NoError(t, err)
			require.Equal(t, auction.CurrentBid, stored.CurrentBid)
			require.Equal(t, auction.TotalBids, stored.TotalBids)
			bids, err := bidRepo.GetByAuctionID(context.Background(), auction.ID)
			require.NoError(t, err)
			require.Empty(t, bids)
		})
	}
}

func TestPlaceBid_InvalidInput(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	auction := testAuction(4500, 4650, 48*time.Hour, now)
	uc, _, _ := newPlaceBidFixture(auction)

	for _, amount := range []int64{0, -100} {
		_, err := uc.Execute(context.Background(), PlaceBidDTO{
			AuctionID: auction.ID, BidderID: uuid.New(), Amount: amount, Now: now,
		})
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	}
}

func TestPlaceBid_UnknownAuction(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	uc, _, _ := newPlaceBidFixture()

	_, err := uc.Execute(context.Background(), PlaceBidDTO{
		AuctionID: uuid.New(), BidderID: uuid.New(), Amount: 100, Now: now,
	})
	require.ErrorIs(t, err, domain.ErrAuctionNotFound)
}

func TestPlaceBid_RetriesAgainstFreshState(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	auction := testAuction(4800, 4850, 48*time.Hour, now)
	uc, auctionRepo, _ := newPlaceBidFixture(auction)

	// First save loses the race: a competing 5000 bid lands in between.
	auctionRepo.staleSaves = 1
	auctionRepo.onStale = func(stored *domain.Auction) {
		stored.CurrentBid = 5000
		stored.MinimumNextBid = 5050
		stored.TotalBids++
	}

	result, err := uc.Execute(context.Background(), PlaceBidDTO{
		AuctionID: auction.ID, BidderID: uuid.New(), Amount: 5100, Now: now,
	})
	require.NoError(t, err)
	require.True(t, result.Accepted)
	require.Equal(t, int64(5100), result.NewCurrentBid)

	stored, err := auctionRepo.GetByID(context.Background(), auction.ID)
	require.NoError(t, err)
	require.Equal(t, int64(5100), stored.CurrentBid)
	// the competing bid's count survived the retry
	require.Equal(t, int64(2), stored.TotalBids)
}

func TestPlaceBid_RetryLosesToHigherBid(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	auction := testAuction(4800, 4850, 48*time.Hour, now)
	uc, auctionRepo, _ := newPlaceBidFixture(auction)

	// The competing bid that wins the race is higher than ours, so the
	// retry is rejected as too low rather than failing.
	auctionRepo.staleSaves = 1
	auctionRepo.onStale = func(stored *domain.Auction) {
		stored.CurrentBid = 5100
		stored.MinimumNextBid = 5150
		stored.TotalBids++
	}

	result, err := uc.Execute(context.Background(), PlaceBidDTO{
		AuctionID: auction.ID, BidderID: uuid.New(), Amount: 5000, Now: now,
	})
	require.NoError(t, err)
	require.False(t, result.Accepted)
	require.Equal(t, ReasonBidTooLow, result.Reason)
	require.Equal(t, int64(5150), result.MinimumAcceptable)
}

func TestPlaceBid_ConflictBudgetExhausted(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	auction := testAuction(4800, 4850, 48*time.Hour, now)
	uc, auctionRepo, bidRepo := newPlaceBidFixture(auction)

	auctionRepo.staleSaves = 100
	auctionRepo.onStale = func(stored *domain.Auction) {
		stored.CurrentBid += 200
		stored.MinimumNextBid += 200
		stored.TotalBids++
	}

	_, err := uc.Execute(context.Background(), PlaceBidDTO{
		AuctionID: auction.ID, BidderID: uuid.New(), Amount: 100000, Now: now,
	})
	require.ErrorIs(t, err, domain.ErrConcurrentBidConflict)

	// rolled-back attempts left no bids behind
	bids, err := bidRepo.GetByAuctionID(context.Background(), auction.ID)
	require.NoError(t, err)
	require.Empty(t, bids)
}
