package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"loser-pays/internal/app/rooms"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type RoomService interface {
	CreateUser(ctx context.Context, req rooms.CreateUserRequest) (*rooms.UserItem, error)
	CreateRoom(ctx context.Context, req rooms.CreateRoomRequest) (*rooms.RoomItem, error)
	ListRooms(ctx context.Context) (*rooms.RoomsResponse, error)
	JoinRoom(ctx context.Context, roomID string, req rooms.JoinRoomRequest) (*rooms.MemberItem, error)
	RoomUsers(ctx context.Context, roomID, requesterID string) (*rooms.MembersResponse, error)
	DecideMembership(ctx context.Context, roomID, userID string, req rooms.ApprovalRequest) (*rooms.MemberItem, error)
	History(ctx context.Context, roomID string, limit int) (*rooms.HistoryResponse, error)
	Actions(ctx context.Context, roomID string) (*rooms.ActionsResponse, error)
	AuthorizeSession(ctx context.Context, roomID, userID string) error
}

type RoomHandlers struct {
	svc RoomService
}

func NewRoomHandlers(svc RoomService) *RoomHandlers {
	return &RoomHandlers{svc: svc}
}

var domainStatus = []struct {
	err    error
	status int
}{
	{rooms.ErrInvalidRequest, http.StatusBadRequest},
	{rooms.ErrUserNotFound, http.StatusNotFound},
	{rooms.ErrRoomNotFound, http.StatusNotFound},
	{rooms.ErrUserNotInRoom, http.StatusNotFound},
	{rooms.ErrRoomNameNotUnique, http.StatusConflict},
	{rooms.ErrUserAlreadyInRoom, http.StatusConflict},
	{rooms.ErrUserNotPending, http.StatusConflict},
	{rooms.ErrNotRoomAdmin, http.StatusForbidden},
	{rooms.ErrNotApprovedMember, http.StatusForbidden},
}

func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	for _, d := range domainStatus {
		if errors.Is(err, d.err) {
			WriteHTTPError(w, d.status, d.err.Error())
			return
		}
	}
	log.Error().Err(err).Str("path", r.URL.Path).Msg("request_failed")
	WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
		return false
	}
	return true
}

func (h *RoomHandlers) CreateUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req rooms.CreateUserRequest
		if !decodeBody(w, r, &req) {
			return
		}
		resp, err := h.svc.CreateUser(r.Context(), req)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, resp)
	}
}

func (h *RoomHandlers) CreateRoom() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req rooms.CreateRoomRequest
		if !decodeBody(w, r, &req) {
			return
		}
		resp, err := h.svc.CreateRoom(r.Context(), req)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, resp)
	}
}

func (h *RoomHandlers) ListRooms() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.svc.ListRooms(r.Context())
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *RoomHandlers) JoinRoom() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req rooms.JoinRoomRequest
		if !decodeBody(w, r, &req) {
			return
		}
		resp, err := h.svc.JoinRoom(r.Context(), chi.URLParam(r, "room_id"), req)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, resp)
	}
}

func (h *RoomHandlers) RoomUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.svc.RoomUsers(r.Context(), chi.URLParam(r, "room_id"), r.URL.Query().Get("user_id"))
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *RoomHandlers) DecideMembership() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req rooms.ApprovalRequest
		if !decodeBody(w, r, &req) {
			return
		}
		resp, err := h.svc.DecideMembership(r.Context(), chi.URLParam(r, "room_id"), chi.URLParam(r, "user_id"), req)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *RoomHandlers) History() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.svc.History(r.Context(), chi.URLParam(r, "room_id"), parseLimit(r))
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *RoomHandlers) Actions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.svc.Actions(r.Context(), chi.URLParam(r, "room_id"))
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
