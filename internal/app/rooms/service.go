package rooms

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"loser-pays/internal/actionlog"
	"loser-pays/internal/cache"
	"loser-pays/internal/channel"
	"loser-pays/internal/store"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

const (
	historyDefaultLimit = 20
	historyMaxLimit     = 100
)

// Repository is the slice of *store.Store the service needs.
type Repository interface {
	EnsureUser(ctx context.Context, id string) (*store.User, error)
	GetUser(ctx context.Context, id string) (*store.User, error)
	CreateRoom(ctx context.Context, name, createdBy string) (*store.Room, error)
	GetRoom(ctx context.Context, id string) (*store.Room, error)
	ListRooms(ctx context.Context) ([]store.Room, error)
	CreateRoomUser(ctx context.Context, roomID, userID string, isAdmin bool, status store.ApprovalStatus) (*store.RoomUser, error)
	GetRoomUser(ctx context.Context, roomID, userID string) (*store.RoomUser, error)
	ListRoomUsers(ctx context.Context, roomID string, approvedOnly bool) ([]store.RoomUser, error)
	UpdateRoomUserStatus(ctx context.Context, roomID, userID string, status store.ApprovalStatus) error
	ListGames(ctx context.Context, roomID string, limit int) ([]store.Game, error)
}

type Publisher interface {
	BroadcastJSON(ctx context.Context, name string, v any) error
}

type Service struct {
	repo     Repository
	cache    *cache.Cache
	pub      Publisher
	actions  actionlog.Log
	validate *validator.Validate
}

// NewService wires the room service. cache may be nil, in which case every
// read goes to the store.
func NewService(repo Repository, c *cache.Cache, pub Publisher, actions actionlog.Log) *Service {
	return &Service{
		repo:     repo,
		cache:    c,
		pub:      pub,
		actions:  actions,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (s *Service) check(req any) error {
	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}

func (s *Service) CreateUser(ctx context.Context, req CreateUserRequest) (*UserItem, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	if err := s.check(req); err != nil {
		return nil, err
	}
	u, err := s.repo.EnsureUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	return &UserItem{ID: u.ID, CreatedAt: u.CreatedAt}, nil
}

func (s *Service) CreateRoom(ctx context.Context, req CreateRoomRequest) (*RoomItem, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.check(req); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetUser(ctx, req.UserID); err != nil {
		return nil, mapStoreErr(err, ErrUserNotFound)
	}
	room, err := s.repo.CreateRoom(ctx, req.Name, req.UserID)
	if err != nil {
		if errors.Is(err, store.ErrRoomNameNotUnique) {
			return nil, ErrRoomNameNotUnique
		}
		return nil, mapStoreErr(err, ErrUserNotFound)
	}
	s.invalidate(ctx, cache.RoomsKey)
	item := roomItem(*room)
	if s.pub != nil {
		if err := s.pub.BroadcastJSON(ctx, channel.RoomsChannel, item); err != nil {
			log.Warn().Err(err).Str("room_id", room.ID).Msg("room_created_publish_failed")
		}
	}
	log.Info().Str("room_id", room.ID).Str("user_id", req.UserID).Msg("room_created")
	return &item, nil
}

func (s *Service) ListRooms(ctx context.Context) (*RoomsResponse, error) {
	items, err := cache.Aside(ctx, s.cache, cache.RoomsKey, func(ctx context.Context) ([]RoomItem, error) {
		rows, err := s.repo.ListRooms(ctx)
		if err != nil {
			return nil, err
		}
		return lo.Map(rows, func(r store.Room, _ int) RoomItem { return roomItem(r) }), nil
	})
	if err != nil {
		return nil, err
	}
	return &RoomsResponse{Items: items}, nil
}

// JoinRoom asks for membership; the request stays pending until an admin
// decides it.
func (s *Service) JoinRoom(ctx context.Context, roomID string, req JoinRoomRequest) (*MemberItem, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetRoom(ctx, roomID); err != nil {
		return nil, mapStoreErr(err, ErrRoomNotFound)
	}
	if _, err := s.repo.GetUser(ctx, req.UserID); err != nil {
		return nil, mapStoreErr(err, ErrUserNotFound)
	}
	ru, err := s.repo.CreateRoomUser(ctx, roomID, req.UserID, false, store.StatusPending)
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, ErrUserAlreadyInRoom
		}
		return nil, mapStoreErr(err, ErrRoomNotFound)
	}
	s.invalidate(ctx, cache.RoomUsersKey(roomID, cache.UserTypeAdmin))
	m := memberItem(*ru)
	return &m, nil
}

// RoomUsers lists members as seen by requesterID: admins see every request,
// everyone else only approved members. The requester's role always comes
// from the store.
func (s *Service) RoomUsers(ctx context.Context, roomID, requesterID string) (*MembersResponse, error) {
	if requesterID == "" {
		return nil, ErrInvalidRequest
	}
	if _, err := s.repo.GetRoom(ctx, roomID); err != nil {
		return nil, mapStoreErr(err, ErrRoomNotFound)
	}
	requester, err := s.repo.GetRoomUser(ctx, roomID, requesterID)
	if err != nil {
		return nil, mapStoreErr(err, ErrUserNotInRoom)
	}
	if requester.Status != store.StatusApproved {
		return nil, ErrUserNotInRoom
	}
	ut := cache.UserTypeNonAdmin
	if requester.IsAdmin {
		ut = cache.UserTypeAdmin
	}
	items, err := cache.Aside(ctx, s.cache, cache.RoomUsersKey(roomID, ut), func(ctx context.Context) ([]MemberItem, error) {
		rows, err := s.repo.ListRoomUsers(ctx, roomID, ut == cache.UserTypeNonAdmin)
		if err != nil {
			return nil, err
		}
		return lo.Map(rows, func(ru store.RoomUser, _ int) MemberItem { return memberItem(ru) }), nil
	})
	if err != nil {
		return nil, err
	}
	return &MembersResponse{RoomID: roomID, Items: items}, nil
}

// DecideMembership approves or rejects a pending member on behalf of an
// approved admin of the room.
func (s *Service) DecideMembership(ctx context.Context, roomID, userID string, req ApprovalRequest) (*MemberItem, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetRoom(ctx, roomID); err != nil {
		return nil, mapStoreErr(err, ErrRoomNotFound)
	}
	admin, err := s.repo.GetRoomUser(ctx, roomID, req.AdminID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotRoomAdmin
		}
		return nil, err
	}
	if !admin.IsAdmin || admin.Status != store.StatusApproved {
		return nil, ErrNotRoomAdmin
	}
	target, err := s.repo.GetRoomUser(ctx, roomID, userID)
	if err != nil {
		return nil, mapStoreErr(err, ErrUserNotInRoom)
	}
	if target.Status != store.StatusPending {
		return nil, ErrUserNotPending
	}
	status := store.StatusRejected
	if *req.Approve {
		status = store.StatusApproved
	}
	if err := s.repo.UpdateRoomUserStatus(ctx, roomID, userID, status); err != nil {
		return nil, mapStoreErr(err, ErrUserNotInRoom)
	}
	s.invalidate(ctx,
		cache.RoomUsersKey(roomID, cache.UserTypeAdmin),
		cache.RoomUsersKey(roomID, cache.UserTypeNonAdmin),
	)
	target.Status = status
	log.Info().Str("room_id", roomID).Str("user_id", userID).Str("status", string(status)).Msg("membership_decided")
	m := memberItem(*target)
	return &m, nil
}

// IsApprovedMember reads membership straight from the store.
func (s *Service) IsApprovedMember(ctx context.Context, roomID, userID string) (bool, error) {
	ru, err := s.repo.GetRoomUser(ctx, roomID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return ru.Status == store.StatusApproved, nil
}

// AuthorizeSession gates a live room connection: the room must exist and
// userID must be an approved member.
func (s *Service) AuthorizeSession(ctx context.Context, roomID, userID string) error {
	if _, err := s.repo.GetRoom(ctx, roomID); err != nil {
		return mapStoreErr(err, ErrRoomNotFound)
	}
	ok, err := s.IsApprovedMember(ctx, roomID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotApprovedMember
	}
	return nil
}

func (s *Service) History(ctx context.Context, roomID string, limit int) (*HistoryResponse, error) {
	if limit <= 0 {
		limit = historyDefaultLimit
	}
	limit = min(limit, historyMaxLimit)
	if _, err := s.repo.GetRoom(ctx, roomID); err != nil {
		return nil, mapStoreErr(err, ErrRoomNotFound)
	}
	games, err := s.repo.ListGames(ctx, roomID, limit)
	if err != nil {
		return nil, err
	}
	if games == nil {
		games = []store.Game{}
	}
	return &HistoryResponse{RoomID: roomID, Items: games, Limit: limit}, nil
}

// Actions is the public view of the current round; wagers are never included.
func (s *Service) Actions(ctx context.Context, roomID string) (*ActionsResponse, error) {
	if _, err := s.repo.GetRoom(ctx, roomID); err != nil {
		return nil, mapStoreErr(err, ErrRoomNotFound)
	}
	recs, err := s.actions.Fetch(ctx, roomID, false)
	if err != nil {
		return nil, err
	}
	if recs == nil {
		recs = []actionlog.Record{}
	}
	return &ActionsResponse{RoomID: roomID, Items: recs}, nil
}

func (s *Service) invalidate(ctx context.Context, keys ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		log.Warn().Err(err).Strs("keys", keys).Msg("cache_invalidate_failed")
	}
}

func mapStoreErr(err, notFound error) error {
	if errors.Is(err, store.ErrNotFound) {
		return notFound
	}
	return err
}
