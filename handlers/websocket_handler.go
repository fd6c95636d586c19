package handlers

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/courtware/draw-system/draws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// TODO: restrict Origin to the dashboard host once it is deployed.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WebSocketHandler struct {
	hub *draws.Hub
}

func NewWebSocketHandler(hub *draws.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// ServeDivision subscribes the caller to live draw events for one division.
func (h *WebSocketHandler) ServeDivision(w http.ResponseWriter, r *http.Request) {
	divisionID, err := urlParamInt(r, "divisionID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		log.Warn().Err(err).Int("division_id", divisionID).Msg("websocket upgrade failed")
		return
	}

	room := fmt.Sprintf("division:%d", divisionID)
	client := draws.NewClient(uuid.NewString(), h.hub, conn, room)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
