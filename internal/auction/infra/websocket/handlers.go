package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gemnet/bidengine/internal/auction/application"
	"github.com/gemnet/bidengine/internal/auction/domain"
	identity "github.com/gemnet/bidengine/internal/identity/domain"
	"github.com/gemnet/bidengine/internal/shared/logger"
	"github.com/gemnet/bidengine/internal/shared/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// AuctionWSHandler processes inbound auction-channel messages: it runs bids
// through the engine, answers the submitting client and broadcasts accepted
// bids to everyone watching the auction.
type AuctionWSHandler struct {
	auctionService application.AuctionService
	bidders        identity.BidderRepository
	hub            *websocket.Hub
}

func NewAuctionWSHandler(auctionService application.AuctionService, bidders identity.BidderRepository, hub *websocket.Hub) *AuctionWSHandler {
	return &AuctionWSHandler{
		auctionService: auctionService,
		bidders:        bidders,
		hub:            hub,
	}
}

// ListenForMessages consumes the hub's inbound channel until the context is
// cancelled.
func (h *AuctionWSHandler) ListenForMessages(ctx context.Context) {
	log.Info("AuctionWSHandler listening for inbound messages")
	for {
		select {
		case <-ctx.Done():
			log.Info("AuctionWSHandler stopped")
			return
		case msg := <-h.hub.InboundMessages:
			go h.processMessage(ctx, msg.Client, msg.Data)
		}
	}
}

func (h *AuctionWSHandler) processMessage(ctx context.Context, client *websocket.Client, data []byte) {
	var baseMsg BaseMessage
	if err := json.Unmarshal(data, &baseMsg); err != nil {
		h.sendErrorToClient(client, "invalid message format")
		return
	}
	switch baseMsg.Type {
	case MessageTypeClientBid:
		h.handleClientBid(ctx, client, data)
	default:
		h.sendErrorToClient(client, "unknown message type")
	}
}

func (h *AuctionWSHandler) handleClientBid(ctx context.Context, client *websocket.Client, data []byte) {
	var bidMsg ClientBidMessage
	if err := json.Unmarshal(data, &bidMsg); err != nil {
		h.sendErrorToClient(client, "invalid bid message format")
		return
	}

	if bidMsg.Payload.AuctionID.String() != client.AuctionID {
		h.sendErrorToClient(client, "auction ID mismatch")
		return
	}

	// Role check belongs here at the boundary, never inside the engine.
	bidder, err := h.bidders.GetByID(ctx, bidMsg.Payload.BidderID)
	if err != nil {
		h.sendErrorToClient(client, "unknown bidder")
		return
	}
	if !bidder.CanPlaceBids() {
		h.sendErrorToClient(client, "only buyer accounts may place bids")
		return
	}

	now := time.Now().UTC()
	result, err := h.auctionService.PlaceBid(ctx, application.PlaceBidDTO{
		AuctionID: bidMsg.Payload.AuctionID,
		BidderID:  bidMsg.Payload.BidderID,
		Amount:    bidMsg.Payload.Amount,
		Now:       now,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			h.sendErrorToClient(client, "bid amount must be a positive integer")
		case errors.Is(err, domain.ErrAuctionNotFound):
			h.sendErrorToClient(client, "auction not found")
		case errors.Is(err, domain.ErrConcurrentBidConflict):
			h.sendErrorToClient(client, "auction is busy, please retry")
		default:
			h.sendErrorToClient(client, "failed to place bid")
		}
		return
	}

	h.sendBidResult(client, bidMsg.Payload.AuctionID, result)

	if !result.Accepted {
		return
	}

	state, err := h.auctionService.GetAuctionState(ctx, bidMsg.Payload.AuctionID, now)
	if err != nil {
		log.Error("failed to load auction state for broadcast",
			zap.String("auctionID", bidMsg.Payload.AuctionID.String()),
			zap.Error(err),
		)
		return
	}

	updateMsg := ServerAuctionUpdateMessage{
		BaseMessage: BaseMessage{Type: MessageTypeServerAuctionUpdate},
	}
	updateMsg.Payload.AuctionID = state.AuctionID
	updateMsg.Payload.CurrentBid = state.CurrentBid
	updateMsg.Payload.MinimumNextBid = state.MinimumNextBid
	updateMsg.Payload.TotalBids = state.TotalBids
	updateMsg.Payload.EndsAt = state.EndsAt
	updateMsg.Payload.Status = state.Status
	updateMsg.Payload.Remaining = state.Remaining

	updateData, err := json.Marshal(updateMsg)
	if err != nil {
		log.Error("failed to marshal auction update", zap.Error(err))
		return
	}
	h.hub.BroadcastToAuction(client.AuctionID, updateData)
}

func (h *AuctionWSHandler) sendBidResult(client *websocket.Client, auctionID uuid.UUID, result *application.BidResultDTO) {
	msg := ServerBidResultMessage{
		BaseMessage: BaseMessage{Type: MessageTypeServerBidResult},
	}
	msg.Payload.AuctionID = auctionID
	msg.Payload.Accepted = result.Accepted
	msg.Payload.NewCurrentBid = result.NewCurrentBid
	msg.Payload.Prediction = result.Prediction
	msg.Payload.Band = result.Band
	msg.Payload.Reason = string(result.Reason)
	msg.Payload.MinimumAcceptable = result.MinimumAcceptable

	data, err := json.Marshal(msg)
	if err != nil {
		log.Error("failed to marshal bid result", zap.Error(err))
		return
	}
	select {
	case client.Send <- data:
	default:
		log.Warn("client send channel full, dropping bid result",
			zap.String("clientID", client.ID),
		)
	}
}

func (h *AuctionWSHandler) sendErrorToClient(client *websocket.Client, errorMessage string) {
	errMsg := ServerErrorMessage{
		BaseMessage: BaseMessage{Type: MessageTypeServerError},
	}
	errMsg.Payload.Error = errorMessage
	data, err := json.Marshal(errMsg)
	if err != nil {
		log.Error("failed to marshal error message", zap.Error(err))
		return
	}
	select {
	case client.Send <- data:
	default:
		log.Warn("client send channel full, dropping error message",
			zap.String("clientID", client.ID),
		)
	}
}
