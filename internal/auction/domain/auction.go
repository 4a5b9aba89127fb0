package domain

import (
	"time"

	"github.com/gemnet/bidengine/internal/shared/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// AuctionStatus represents the lifecycle state of a gem auction.
type AuctionStatus string

const (
	StatusUpcoming AuctionStatus = "upcoming"
	StatusActive   AuctionStatus = "active"
	StatusEnded    AuctionStatus = "ended"
)

// Auction is the aggregate for a single gem listing accepting competitive
// bids until EndsAt. The bid engine only ever advances CurrentBid,
// MinimumNextBid, TotalBids and Status; Views and WatchlistCount are
// engagement counters maintained by the catalog and read here purely as
// scoring signals.
type Auction struct {
	ID             uuid.UUID
	GemName        string
	Description    string
	StartingPrice  int64
	CurrentBid     int64
	MinimumNextBid int64
	EndsAt         time.Time
	TotalBids      int64
	Views          int64
	WatchlistCount int64
	Status         AuctionStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewAuction creates a listing in its initial state. CurrentBid starts at
// the starting price and MinimumNextBid one increment above it.
func NewAuction(id uuid.UUID, gemName, description string, startingPrice, increment int64, endsAt time.Time, status AuctionStatus) *Auction {
	if increment < 1 {
		increment = 1
	}
	return &Auction{
		ID:             id,
		GemName:        gemName,
		Description:    description,
		StartingPrice:  startingPrice,
		CurrentBid:     startingPrice,
		MinimumNextBid: startingPrice + increment,
		EndsAt:         endsAt,
		Status:         status,
	}
}

// increment is the catalog-defined spread between the current bid and the
// minimum next bid, kept stable as bids are accepted.
func (a *Auction) increment() int64 {
	if spread := a.MinimumNextBid - a.CurrentBid; spread > 0 {
		return spread
	}
	return 1
}

// ApplyBid validates a proposed amount against the auction snapshot and, on
// acceptance, advances the aggregate and returns the new leading bid. Rules
// run in order: the auction must be active, then the amount must reach the
// policy's minimum acceptable. Rejection leaves the snapshot untouched.
//
// The caller is responsible for persisting the mutated snapshot together
// with the returned bid (and demoting the previous leader) atomically.
func (a *Auction) ApplyBid(bidderID uuid.UUID, amount int64, now time.Time, policy IncrementPolicy) (*Bid, error) {
	if a.Status != StatusActive {
		log.Warn("Bid rejected: auction not active",
			zap.String("auctionID", a.ID.String()),
			zap.String("status", string(a.Status)),
			zap.Int64("amount", amount),
			zap.String("bidderID", bidderID.String()),
		)
		return nil, ErrAuctionNotActive
	}

	minAcceptable := policy.MinimumAcceptable(a)
	if amount < minAcceptable {
		log.Warn("Bid rejected: amount too low",
			zap.String("auctionID", a.ID.String()),
			zap.Int64("amount", amount),
			zap.Int64("currentBid", a.CurrentBid),
			zap.Int64("minimumAcceptable", minAcceptable),
			zap.String("bidderID", bidderID.String()),
		)
		return nil, ErrBidTooLow
	}

	spread := a.increment()
	a.CurrentBid = amount
	a.MinimumNextBid = amount + spread
	a.TotalBids++

	newBid := NewLeadingBid(uuid.New(), a.ID, bidderID, amount, now)

	log.Info("Bid accepted",
		zap.String("auctionID", a.ID.String()),
		zap.String("bidID", newBid.ID.String()),
		zap.String("bidderID", bidderID.String()),
		zap.Int64("amount", amount),
		zap.Int64("newMinimumNextBid", a.MinimumNextBid),
		zap.Int64("totalBids", a.TotalBids),
	)

	return newBid, nil
}

// MarkEnded transitions an active auction to ended once its close time has
// passed. Calling it on an already-ended auction is a no-op so settlement
// stays idempotent.
func (a *Auction) MarkEnded(now time.Time) error {
	if a.Status == StatusEnded {
		return nil
	}
	if now.Before(a.EndsAt) {
		log.Warn("Settlement refused: auction still open",
			zap.String("auctionID", a.ID.String()),
			zap.Time("endsAt", a.EndsAt),
			zap.Time("now", now),
		)
		return ErrAuctionNotEnded
	}
	a.Status = StatusEnded
	log.Info("Auction ended",
		zap.String("auctionID", a.ID.String()),
		zap.Int64("finalBid", a.CurrentBid),
		zap.Int64("totalBids", a.TotalBids),
	)
	return nil
}
