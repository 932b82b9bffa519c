package ws

import (
	"context"
	"encoding/json"
	"net/http"

	"loser-pays/internal/actionlog"
	"loser-pays/internal/app/rooms"
	"loser-pays/internal/channel"
	"loser-pays/internal/currency"
	"loser-pays/internal/game"
	"loser-pays/internal/store"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Directory is the durable state a session touches.
type Directory interface {
	EnsureUser(ctx context.Context, id string) (*store.User, error)
	CreateGameSettlement(ctx context.Context, g store.NewGame) (string, error)
}

type RoomLister interface {
	ListRooms(ctx context.Context) (*rooms.RoomsResponse, error)
}

type Deps struct {
	Directory Directory
	Rooms     RoomLister
	Channels  *channel.Manager
	Actions   actionlog.Log
	Evaluator *game.Evaluator
	Rounds    *game.Rounds
	Rates     currency.RateSource
}

type Server struct {
	deps     Deps
	upgrader websocket.Upgrader
}

func NewServer(deps Deps) *Server {
	if deps.Rounds == nil {
		deps.Rounds = game.NewRounds()
	}
	return &Server{
		deps:     deps,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

// ServeRoom upgrades r into a room session for userID. Access checks happen
// before this is called.
func (s *Server) ServeRoom(w http.ResponseWriter, r *http.Request, roomID, userID string) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Str("room_id", roomID).Msg("ws_upgrade_failed")
		return
	}
	c := newClient(conn)
	go c.writeLoop()

	metricSessionsActive.Inc()
	defer metricSessionsActive.Dec()
	sess := &session{
		srv:     s,
		client:  c,
		roomID:  roomID,
		userID:  userID,
		channel: channel.RoomChannel(roomID),
	}
	sess.run(r.Context())
}

// ServeRooms upgrades r into a rooms feed: the current list on connect, then
// each newly created room.
func (s *Server) ServeRooms(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Msg("ws_upgrade_failed")
		return
	}
	c := newClient(conn)
	go c.writeLoop()
	defer c.close()

	metricLobbyActive.Inc()
	defer metricLobbyActive.Dec()

	ctx := r.Context()
	if err := s.deps.Channels.Join(ctx, channel.RoomsChannel, c); err != nil {
		log.Error().Err(err).Msg("rooms_feed_join_failed")
		return
	}
	defer func() {
		if err := s.deps.Channels.Leave(context.WithoutCancel(ctx), channel.RoomsChannel, c); err != nil {
			log.Warn().Err(err).Msg("rooms_feed_leave_failed")
		}
	}()

	list, err := s.deps.Rooms.ListRooms(ctx)
	if err != nil {
		log.Error().Err(err).Msg("rooms_feed_list_failed")
		return
	}
	b, err := json.Marshal(list.Items)
	if err != nil {
		return
	}
	c.Send(b)

	// The feed is push-only; reads just detect the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
