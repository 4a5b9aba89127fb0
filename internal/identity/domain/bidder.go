package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrBidderNotFound = errors.New("bidder not found")

// Role is the tagged account role. Only buyers may place bids; enforcement
// happens at the adapter boundary before the bid engine is invoked.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

// Bidder is a marketplace identity as the bid engine sees it.
type Bidder struct {
	ID       uuid.UUID
	Username string
	Role     Role
}

// CanPlaceBids reports whether this identity is allowed to submit bids.
func (b *Bidder) CanPlaceBids() bool {
	return b.Role == RoleBuyer
}

type BidderRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Bidder, error)
}
