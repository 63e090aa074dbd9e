package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/nvaghela/dukaan-backend/internal/middleware"
	ws "github.com/nvaghela/dukaan-backend/internal/websocket"
)

type EventsController struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
}

// NewEventsController exposes the verification status event stream. Only the
// configured frontend origins may open a connection.
func NewEventsController(hub *ws.Hub, allowedOrigins []string) *EventsController {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		origins[origin] = true
	}

	return &EventsController{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return origins[r.Header.Get("Origin")]
			},
		},
	}
}

// Connect upgrades the request and streams status events for the caller
// GET /api/v1/kyc/events
func (ctrl *EventsController) Connect(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("Failed to upgrade to WebSocket", err, map[string]interface{}{
			"user_id": userID,
		})
		return
	}

	client := &ws.Client{
		Hub:    ctrl.hub,
		Conn:   &ws.Conn{Conn: conn},
		UserID: userID,
		Send:   make(chan []byte, 256),
	}

	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	log.Info("Status event stream connected", map[string]interface{}{
		"user_id": userID,
	})
}
