package websocket

import (
	"time"

	"github.com/gemnet/bidengine/internal/auction/domain"
	"github.com/google/uuid"
)

// MessageType tags the websocket payloads exchanged on an auction channel.
type MessageType string

const (
	MessageTypeClientBid           MessageType = "client_bid"
	MessageTypeServerBidResult     MessageType = "server_bid_result"
	MessageTypeServerAuctionUpdate MessageType = "server_auction_update"
	MessageTypeServerError         MessageType = "server_error"
)

// BaseMessage carries the type tag shared by every websocket payload.
type BaseMessage struct {
	Type MessageType `json:"type"`
}

// ClientBidMessage is an inbound bid from a watching client.
type ClientBidMessage struct {
	BaseMessage
	Payload struct {
		AuctionID uuid.UUID `json:"auction_id"`
		BidderID  uuid.UUID `json:"bidder_id"`
		Amount    int64     `json:"amount"`
	} `json:"payload"`
}

// ServerBidResultMessage goes back to the submitting client only: whether
// the bid was accepted, and either the advisory prediction or the minimum
// acceptable amount to prompt with.
type ServerBidResultMessage struct {
	BaseMessage
	Payload struct {
		AuctionID         uuid.UUID             `json:"auction_id"`
		Accepted          bool                  `json:"accepted"`
		NewCurrentBid     int64                 `json:"new_current_bid,omitempty"`
		Prediction        int                   `json:"prediction,omitempty"`
		Band              domain.PredictionBand `json:"band,omitempty"`
		Reason            string                `json:"reason,omitempty"`
		MinimumAcceptable int64                 `json:"minimum_acceptable,omitempty"`
	} `json:"payload"`
}

// ServerAuctionUpdateMessage is broadcast to every client watching the
// auction after an accepted bid.
type ServerAuctionUpdateMessage struct {
	BaseMessage
	Payload struct {
		AuctionID      uuid.UUID            `json:"auction_id"`
		CurrentBid     int64                `json:"current_bid"`
		MinimumNextBid int64                `json:"minimum_next_bid"`
		TotalBids      int64                `json:"total_bids"`
		EndsAt         time.Time            `json:"ends_at"`
		Status         string               `json:"status"`
		Remaining      domain.TimeRemaining `json:"remaining"`
	} `json:"payload"`
}

type ServerErrorMessage struct {
	BaseMessage
	Payload struct {
		Error string `json:"error"`
	} `json:"payload"`
}
