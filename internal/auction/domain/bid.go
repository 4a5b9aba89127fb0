package domain

import (
	"time"

	"github.com/google/uuid"
)

// BidOutcome tracks where a bid stands in the auction lifecycle. While the
// auction is active exactly one bid is Leading and every other accepted bid
// is Outbid; settlement turns those into Won and Lost.
type BidOutcome string

const (
	OutcomeLeading BidOutcome = "leading"
	OutcomeOutbid  BidOutcome = "outbid"
	OutcomeWon     BidOutcome = "won"
	OutcomeLost    BidOutcome = "lost"
)

// Bid is an accepted bid on an auction. Amounts are integer minor-free
// currency units, same as Auction.CurrentBid.
type Bid struct {
	ID          uuid.UUID
	AuctionID   uuid.UUID
	BidderID    uuid.UUID
	Amount      int64
	SubmittedAt time.Time
	Outcome     BidOutcome
}

// NewLeadingBid creates the bid record for a just-accepted amount.
func NewLeadingBid(id, auctionID, bidderID uuid.UUID, amount int64, submittedAt time.Time) *Bid {
	return &Bid{
		ID:          id,
		AuctionID:   auctionID,
		BidderID:    bidderID,
		Amount:      amount,
		SubmittedAt: submittedAt,
		Outcome:     OutcomeLeading,
	}
}
