package domain

import (
	"time"

	"github.com/google/uuid"
)

// WatchlistEntry associates a bidder with an auction they are watching.
// Purely observational: it carries no bid semantics and only feeds the
// WatchlistCount scoring signal.
type WatchlistEntry struct {
	BidderID  uuid.UUID
	AuctionID uuid.UUID
	CreatedAt time.Time
}
