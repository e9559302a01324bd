package handlers

import (
	"log/slog"
	"net/http"

	"github.com/athletelink/athletelink/live"
	"github.com/athletelink/athletelink/services"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: сверять Origin со списком разрешённых доменов фронтенда.
		return true
	},
}

type WebSocketHandler struct {
	hub          *live.Hub
	eventService services.EventService
}

func NewWebSocketHandler(hub *live.Hub, eventService services.EventService) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, eventService: eventService}
}

// ServeEventRoom подключает клиента к комнате события. Дальше он получает
// кадры ROSTER_UPDATED и EVENT_STATUS_UPDATED без дополнительных запросов.
func (h *WebSocketHandler) ServeEventRoom(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDParam(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	// Комната существует только для реального события.
	if _, err := h.eventService.GetEventByID(r.Context(), eventID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed",
			slog.Int("event_id", eventID),
			slog.Any("error", err))
		return
	}

	client := live.NewClient(h.hub, conn, services.EventRoomID(eventID))
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
