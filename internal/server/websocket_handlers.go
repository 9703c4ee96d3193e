package server

import (
	"log/slog"

	"aura/internal/middleware"
	"aura/internal/realtime"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebSocketUpgrade rejects plain HTTP requests to /ws.
func (s *Server) WebSocketUpgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

// WebSocketHandler serves the live mood relay on /ws. Connections are
// anonymous; each frame is routed by the hub.
func (s *Server) WebSocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		registry := s.hub.Registry()
		client := realtime.NewClient(conn, s.config.WSInboundPerSecond)
		client.IncomingHandler = s.hub.HandleMessage

		if err := registry.Add(client); err != nil {
			middleware.Logger.Warn("rejecting websocket connection", slog.String("error", err.Error()))
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "server busy"))
			_ = conn.Close()
			return
		}

		middleware.Logger.Debug("websocket connected", slog.String("client_id", client.ID))

		go client.WritePump()
		client.ReadPump(registry)

		middleware.Logger.Debug("websocket disconnected", slog.String("client_id", client.ID))
	})
}
