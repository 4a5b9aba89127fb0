package http

import (
	"errors"
	"time"

	"github.com/gemnet/bidengine/internal/auction/application"
	"github.com/gemnet/bidengine/internal/auction/domain"
	identity "github.com/gemnet/bidengine/internal/identity/domain"
	"github.com/gemnet/bidengine/internal/shared/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// AuctionHandler exposes the bid engine over HTTP. It is a thin adapter:
// request parsing, role checks and error-to-status mapping live here, all
// auction semantics stay in the application and domain layers.
type AuctionHandler struct {
	auctionService application.AuctionService
	bidders        identity.BidderRepository
	watchlist      domain.WatchlistRepository
}

func NewAuctionHandler(auctionService application.AuctionService,
	bidders identity.BidderRepository,
	watchlist domain.WatchlistRepository) *AuctionHandler {

	return &AuctionHandler{
		auctionService: auctionService,
		bidders:        bidders,
		watchlist:      watchlist,
	}
}

// RegisterRoutes mounts the auction API on the fiber app.
func (h *AuctionHandler) RegisterRoutes(app *fiber.App) {
	api := app.Group("/api/v1")
	api.Get("/auctions", h.ListAuctions)
	api.Get("/auctions/:id", h.GetAuction)
	api.Post("/auctions/:id/bids", h.PlaceBid)
	api.Get("/auctions/:id/estimate", h.EstimateWinChance)
	api.Get("/auctions/:id/remaining", h.RemainingTime)
	api.Post("/auctions/:id/settle", h.Settle)
	api.Post("/auctions/:id/watchlist", h.AddToWatchlist)
	api.Delete("/auctions/:id/watchlist", h.RemoveFromWatchlist)
}

type placeBidRequest struct {
	BidderID uuid.UUID `json:"bidder_id"`
	Amount   int64     `json:"amount"`
}

type watchlistRequest struct {
	BidderID uuid.UUID `json:"bidder_id"`
}

// ListAuctions returns the active auctions ordered by closing time.
// ?ending_within_hours=N narrows the listing to the ending-soon shelf.
func (h *AuctionHandler) ListAuctions(c *fiber.Ctx) error {
	hours := c.QueryInt("ending_within_hours")
	if hours < 0 {
		return badRequest(c, "ending_within_hours must not be negative")
	}

	summaries, err := h.auctionService.ListAuctions(c.Context(), time.Duration(hours)*time.Hour, time.Now().UTC())
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(fiber.Map{"auctions": summaries})
}

func (h *AuctionHandler) GetAuction(c *fiber.Ctx) error {
	auctionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid auction id")
	}

	state, err := h.auctionService.GetAuctionState(c.Context(), auctionID, time.Now().UTC())
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(state)
}

func (h *AuctionHandler) PlaceBid(c *fiber.Ctx) error {
	auctionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid auction id")
	}

	var req placeBidRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	// Only buyer accounts may bid; checked at the boundary, not inside
	// the engine.
	bidder, err := h.bidders.GetByID(c.Context(), req.BidderID)
	if err != nil {
		if errors.Is(err, identity.ErrBidderNotFound) {
			return badRequest(c, "unknown bidder")
		}
		return h.mapError(c, err)
	}
	if !bidder.CanPlaceBids() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "only buyer accounts may place bids",
		})
	}

	result, err := h.auctionService.PlaceBid(c.Context(), application.PlaceBidDTO{
		AuctionID: auctionID,
		BidderID:  req.BidderID,
		Amount:    req.Amount,
		Now:       time.Now().UTC(),
	})
	if err != nil {
		return h.mapError(c, err)
	}

	if !result.Accepted {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(result)
	}
	return c.JSON(result)
}

func (h *AuctionHandler) EstimateWinChance(c *fiber.Ctx) error {
	auctionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid auction id")
	}

	amount := c.QueryInt("amount")
	estimate, err := h.auctionService.EstimateWinChance(c.Context(), auctionID, int64(amount), time.Now().UTC())
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(estimate)
}

func (h *AuctionHandler) RemainingTime(c *fiber.Ctx) error {
	auctionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid auction id")
	}

	remaining, err := h.auctionService.RemainingTime(c.Context(), auctionID, time.Now().UTC())
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(remaining)
}

func (h *AuctionHandler) Settle(c *fiber.Ctx) error {
	auctionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid auction id")
	}

	result, err := h.auctionService.Settle(c.Context(), auctionID, time.Now().UTC())
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(result)
}

func (h *AuctionHandler) AddToWatchlist(c *fiber.Ctx) error {
	auctionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid auction id")
	}

	var req watchlistRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	entry := &domain.WatchlistEntry{
		BidderID:  req.BidderID,
		AuctionID: auctionID,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.watchlist.Add(c.Context(), entry); err != nil {
		return h.mapError(c, err)
	}
	return h.watchlistCount(c, auctionID)
}

func (h *AuctionHandler) RemoveFromWatchlist(c *fiber.Ctx) error {
	auctionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid auction id")
	}

	var req watchlistRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	if err := h.watchlist.Remove(c.Context(), req.BidderID, auctionID); err != nil {
		return h.mapError(c, err)
	}
	return h.watchlistCount(c, auctionID)
}

// watchlistCount reports the authoritative entry count so clients can
// refresh their badge without a second round trip.
func (h *AuctionHandler) watchlistCount(c *fiber.Ctx, auctionID uuid.UUID) error {
	count, err := h.watchlist.CountForAuction(c.Context(), auctionID)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(fiber.Map{"watchlist_count": count})
}

func (h *AuctionHandler) mapError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrAuctionNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "auction not found"})
	case errors.Is(err, domain.ErrInvalidInput):
		return badRequest(c, "bid amount must be a positive integer")
	case errors.Is(err, domain.ErrAuctionNotEnded):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "auction has not reached its end time"})
	case errors.Is(err, domain.ErrConcurrentBidConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "auction is busy, please retry"})
	}
	log.Error("unexpected error", zap.String("path", c.Path()), zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}
