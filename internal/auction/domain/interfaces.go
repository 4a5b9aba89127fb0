package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AuctionRepository is the auction catalog collaborator. SaveExpecting is
// the optimistic write that keeps the single-leader invariant under racing
// bidders: the update applies only while CurrentBid still equals
// expectedCurrentBid, and returns ErrStaleAuction otherwise.
type AuctionRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Auction, error)
	Create(ctx context.Context, a *Auction) error
	SaveExpecting(ctx context.Context, tx pgx.Tx, a *Auction, expectedCurrentBid int64) error
	GetActive(ctx context.Context) ([]*Auction, error)
	GetEndingSoon(ctx context.Context, threshold time.Duration) ([]*Auction, error)
}

// BidRepository stores accepted bids and their outcomes.
type BidRepository interface {
	Save(ctx context.Context, tx pgx.Tx, bid *Bid) error
	// MarkLeadingOutbid demotes the current leading bid, if any, to outbid.
	MarkLeadingOutbid(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID) error
	// SettleOutcomes finalizes the auction's bids: leading becomes won,
	// everything still outbid becomes lost.
	SettleOutcomes(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID) error
	GetByAuctionID(ctx context.Context, auctionID uuid.UUID) ([]*Bid, error)
	GetLeadingBid(ctx context.Context, auctionID uuid.UUID) (*Bid, error)
	GetWinningBid(ctx context.Context, auctionID uuid.UUID) (*Bid, error)
}

// WatchlistRepository maintains the observational bidder-auction links.
type WatchlistRepository interface {
	Add(ctx context.Context, entry *WatchlistEntry) error
	Remove(ctx context.Context, bidderID, auctionID uuid.UUID) error
	CountForAuction(ctx context.Context, auctionID uuid.UUID) (int64, error)
}
