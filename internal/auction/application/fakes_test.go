package application

import (
	"context"
	"sort"
	"time"

	"github.com/gemnet/bidengine/internal/auction/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// In-memory doubles for the storage collaborator. The fake tx runner
// snapshots both repos and restores them when the callback fails, matching
// the rollback semantics the real pgx transaction provides.

type fakeAuctionRepo struct {
	auctions map[uuid.UUID]*domain.Auction
	// staleSaves makes the next N SaveExpecting calls fail as stale. Each
	// stale save queues onStale, and the next GetByID applies it to stored
	// state, like a competing transaction that committed between our read
	// and our write. Queued this way the competitor survives the rollback
	// of our own failed transaction.
	staleSaves int
	onStale    func(stored *domain.Auction)
	committed  []func(stored *domain.Auction)
	saveCalls  int
}

func newFakeAuctionRepo(auctions ...*domain.Auction) *fakeAuctionRepo {
	f := &fakeAuctionRepo{auctions: make(map[uuid.UUID]*domain.Auction)}
	for _, a := range auctions {
		cp := *a
		f.auctions[a.ID] = &cp
	}
	return f
}

func (f *fakeAuctionRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Auction, error) {
	a, ok := f.auctions[id]
	if !ok {
		return nil, domain.ErrAuctionNotFound
	}
	for _, mutate := range f.committed {
		mutate(a)
	}
	f.committed = nil
	cp := *a
	return &cp, nil
}

func (f *fakeAuctionRepo) Create(_ context.Context, a *domain.Auction) error {
	cp := *a
	f.auctions[a.ID] = &cp
	return nil
}

func (f *fakeAuctionRepo) SaveExpecting(_ context.Context, _ pgx.Tx, a *domain.Auction, expectedCurrentBid int64) error {
	f.saveCalls++
	stored, ok := f.auctions[a.ID]
	if !ok {
		return domain.ErrAuctionNotFound
	}
	if f.staleSaves > 0 {
		f.staleSaves--
		if f.onStale != nil {
			f.committed = append(f.committed, f.onStale)
		}
		return domain.ErrStaleAuction
	}
	if stored.CurrentBid != expectedCurrentBid {
		return domain.ErrStaleAuction
	}
	cp := *a
	f.auctions[a.ID] = &cp
	return nil
}

func (f *fakeAuctionRepo) GetActive(context.Context) ([]*domain.Auction, error) {
	return f.activeEndingBefore(time.Time{}), nil
}

func (f *fakeAuctionRepo) GetEndingSoon(_ context.Context, threshold time.Duration) ([]*domain.Auction, error) {
	return f.activeEndingBefore(time.Now().UTC().Add(threshold)), nil
}

// activeEndingBefore mirrors the SQL queries: active auctions ordered by
// ends_at, cut off at the deadline when one is given.
func (f *fakeAuctionRepo) activeEndingBefore(deadline time.Time) []*domain.Auction {
	var actives []*domain.Auction
	for _, a := range f.auctions {
		if a.Status != domain.StatusActive {
			continue
		}
		if !deadline.IsZero() && a.EndsAt.After(deadline) {
			continue
		}
		cp := *a
		actives = append(actives, &cp)
	}
	sort.Slice(actives, func(i, j int) bool { return actives[i].EndsAt.Before(actives[j].EndsAt) })
	return actives
}

func (f *fakeAuctionRepo) snapshot() map[uuid.UUID]*domain.Auction {
	snap := make(map[uuid.UUID]*domain.Auction, len(f.auctions))
	for id, a := range f.auctions {
		cp := *a
		snap[id] = &cp
	}
	return snap
}

func (f *fakeAuctionRepo) restore(snap map[uuid.UUID]*domain.Auction) {
	f.auctions = snap
}

type fakeBidRepo struct {
	bids map[uuid.UUID][]*domain.Bid
}

func newFakeBidRepo() *fakeBidRepo {
	return &fakeBidRepo{bids: make(map[uuid.UUID][]*domain.Bid)}
}

func (f *fakeBidRepo) Save(_ context.Context, _ pgx.Tx, bid *domain.Bid) error {
	cp := *bid
	f.bids[bid.AuctionID] = append(f.bids[bid.AuctionID], &cp)
	return nil
}

func (f *fakeBidRepo) MarkLeadingOutbid(_ context.Context, _ pgx.Tx, auctionID uuid.UUID) error {
	for _, b := range f.bids[auctionID] {
		if b.Outcome == domain.OutcomeLeading {
			b.Outcome = domain.OutcomeOutbid
		}
	}
	return nil
}

func (f *fakeBidRepo) SettleOutcomes(_ context.Context, _ pgx.Tx, auctionID uuid.UUID) error {
	for _, b := range f.bids[auctionID] {
		switch b.Outcome {
		case domain.OutcomeLeading:
			b.Outcome = domain.OutcomeWon
		case domain.OutcomeOutbid:
			b.Outcome = domain.OutcomeLost
		}
	}
	return nil
}

func (f *fakeBidRepo) GetByAuctionID(_ context.Context, auctionID uuid.UUID) ([]*domain.Bid, error) {
	return f.bids[auctionID], nil
}

func (f *fakeBidRepo) GetLeadingBid(_ context.Context, auctionID uuid.UUID) (*domain.Bid, error) {
	return f.byOutcome(auctionID, domain.OutcomeLeading), nil
}

func (f *fakeBidRepo) GetWinningBid(_ context.Context, auctionID uuid.UUID) (*domain.Bid, error) {
	return f.byOutcome(auctionID, domain.OutcomeWon), nil
}

func (f *fakeBidRepo) byOutcome(auctionID uuid.UUID, outcome domain.BidOutcome) *domain.Bid {
	for _, b := range f.bids[auctionID] {
		if b.Outcome == outcome {
			cp := *b
			return &cp
		}
	}
	return nil
}

func (f *fakeBidRepo) outcomes(auctionID uuid.UUID) map[domain.BidOutcome]int {
	counts := make(map[domain.BidOutcome]int)
	for _, b := range f.bids[auctionID] {
		counts[b.Outcome]++
	}
	return counts
}

func (f *fakeBidRepo) snapshot() map[uuid.UUID][]*domain.Bid {
	snap := make(map[uuid.UUID][]*domain.Bid, len(f.bids))
	for id, bids := range f.bids {
		cps := make([]*domain.Bid, len(bids))
		for i, b := range bids {
			cp := *b
			cps[i] = &cp
		}
		snap[id] = cps
	}
	return snap
}

func (f *fakeBidRepo) restore(snap map[uuid.UUID][]*domain.Bid) {
	f.bids = snap
}

type fakeTxRunner struct {
	auctionRepo *fakeAuctionRepo
	bidRepo     *fakeBidRepo
}

func (r *fakeTxRunner) InTx(_ context.Context, fn func(tx pgx.Tx) error) error {
	auctionSnap := r.auctionRepo.snapshot()
	bidSnap := r.bidRepo.snapshot()
	if err := fn(nil); err != nil {
		r.auctionRepo.restore(auctionSnap)
		r.bidRepo.restore(bidSnap)
		return err
	}
	return nil
}
