package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// SessionServer upgrades authorised requests into websocket sessions.
type SessionServer interface {
	ServeRoom(w http.ResponseWriter, r *http.Request, roomID, userID string)
	ServeRooms(w http.ResponseWriter, r *http.Request)
}

type WSHandlers struct {
	rooms RoomService
	ws    SessionServer
}

func NewWSHandlers(rooms RoomService, ws SessionServer) *WSHandlers {
	return &WSHandlers{rooms: rooms, ws: ws}
}

// RoomSession checks access before the upgrade so refusals are plain HTTP
// errors.
func (h *WSHandlers) RoomSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := chi.URLParam(r, "room_id")
		userID := chi.URLParam(r, "user_id")
		if err := h.rooms.AuthorizeSession(r.Context(), roomID, userID); err != nil {
			writeDomainError(w, r, err)
			return
		}
		h.ws.ServeRoom(w, r, roomID, userID)
	}
}

func (h *WSHandlers) RoomsFeed() http.HandlerFunc {
	return h.ws.ServeRooms
}
