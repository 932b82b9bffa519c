package httptransport

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type RouterDeps struct {
	Rooms       RoomService
	WS          SessionServer
	MCP         http.Handler
	Health      map[string]Pinger
	CORSOrigins []string
}

func NewRouter(deps RouterDeps) *chi.Mux {
	roomHandlers := NewRoomHandlers(deps.Rooms)
	wsHandlers := NewWSHandlers(deps.Rooms, deps.WS)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(CORSMiddleware(deps.CORSOrigins))

	r.With(APILogMiddleware()).Get("/healthz", Health(deps.Health))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	if deps.MCP != nil {
		r.With(APILogMiddleware()).MethodFunc(http.MethodOptions, "/mcp", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Allow", "POST, GET, DELETE, OPTIONS")
			w.WriteHeader(http.StatusNoContent)
		})
		r.With(APILogMiddleware()).Method(http.MethodPost, "/mcp", deps.MCP)
		r.With(APILogMiddleware()).Method(http.MethodGet, "/mcp", deps.MCP)
		r.With(APILogMiddleware()).Method(http.MethodDelete, "/mcp", deps.MCP)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(APILogMiddleware())
		r.Post("/users", roomHandlers.CreateUser())
		r.Get("/rooms", roomHandlers.ListRooms())
		r.Post("/rooms", roomHandlers.CreateRoom())
		r.Post("/rooms/{room_id}/join", roomHandlers.JoinRoom())
		r.Get("/rooms/{room_id}/users", roomHandlers.RoomUsers())
		r.Post("/rooms/{room_id}/users/{user_id}/approval", roomHandlers.DecideMembership())
		r.Get("/rooms/{room_id}/history", roomHandlers.History())
		r.Get("/rooms/{room_id}/actions", roomHandlers.Actions())
	})

	// Websocket routes skip the request logger: upgrades need the raw writer.
	r.Get("/ws/rooms", wsHandlers.RoomsFeed())
	r.Get("/ws/room/{room_id}/{user_id}", wsHandlers.RoomSession())
	return r
}

func LogRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 32)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}
