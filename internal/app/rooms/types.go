package rooms

import (
	"time"

	"loser-pays/internal/actionlog"
	"loser-pays/internal/store"
)

type CreateUserRequest struct {
	UserID string `json:"user_id" validate:"required,max=64"`
}

type CreateRoomRequest struct {
	Name   string `json:"name" validate:"required,max=15"`
	UserID string `json:"user_id" validate:"required"`
}

type JoinRoomRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

type ApprovalRequest struct {
	AdminID string `json:"admin_id" validate:"required"`
	Approve *bool  `json:"approve" validate:"required"`
}

type UserItem struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

type RoomItem struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

type RoomsResponse struct {
	Items []RoomItem `json:"items"`
}

type MemberItem struct {
	UserID  string               `json:"user_id"`
	IsAdmin bool                 `json:"is_admin"`
	Status  store.ApprovalStatus `json:"status"`
}

type MembersResponse struct {
	RoomID string       `json:"room_id"`
	Items  []MemberItem `json:"items"`
}

type HistoryResponse struct {
	RoomID string       `json:"room_id"`
	Items  []store.Game `json:"items"`
	Limit  int          `json:"limit"`
}

type ActionsResponse struct {
	RoomID string             `json:"room_id"`
	Items  []actionlog.Record `json:"items"`
}

func roomItem(r store.Room) RoomItem {
	return RoomItem{ID: r.ID, Name: r.Name, CreatedBy: r.CreatedBy, CreatedAt: r.CreatedAt}
}

func memberItem(ru store.RoomUser) MemberItem {
	return MemberItem{UserID: ru.UserID, IsAdmin: ru.IsAdmin, Status: ru.Status}
}
