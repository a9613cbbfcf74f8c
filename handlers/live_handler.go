package handlers

import (
	"github.com/anviedo/examline/services"
	ws "github.com/anviedo/examline/websocket"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var hub *ws.Hub

// SetupHub hands the broadcast hub to the live route. Called once from main.
func SetupHub(h *ws.Hub) {
	hub = h
}

// UpgradeRequired rejects plain HTTP requests on websocket paths.
func UpgradeRequired(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// ExamLive subscribes the connection to one exam's lifecycle events: opened,
// advanced, finished.
func ExamLive() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		examID, err := uuid.Parse(conn.Params("examId"))
		if err != nil {
			conn.Close()
			return
		}

		client := &ws.Client{Channel: services.ExamChannel(examID), Conn: conn}
		hub.Register <- client
		defer func() { hub.Unregister <- client }()

		// Clients only listen on this socket; the read loop just detects
		// disconnects.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	})
}
