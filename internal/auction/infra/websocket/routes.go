package websocket

import (
	"context"

	shared "github.com/gemnet/bidengine/internal/shared/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// RegisterRoutes mounts the per-auction websocket endpoint. Each upgraded
// connection becomes a hub client scoped to one auction.
func RegisterRoutes(ctx context.Context, app *fiber.App, hub *shared.Hub) {
	app.Use("/ws/auctions/:id", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			if _, err := uuid.Parse(c.Params("id")); err != nil {
				return fiber.ErrBadRequest
			}
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/auctions/:id", websocket.New(func(conn *websocket.Conn) {
		client := &shared.Client{
			Hub:       hub,
			Conn:      conn,
			Send:      make(chan []byte, 16),
			AuctionID: conn.Params("id"),
			ID:        uuid.NewString(),
		}
		hub.RegisterClient(client)

		go client.WritePump(ctx)
		client.ReadPump(ctx)
	}))
}
