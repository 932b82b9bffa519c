package mcpserver

import (
	"context"
	"net/http"

	"loser-pays/internal/app/rooms"

	"github.com/mark3labs/mcp-go/server"
)

// RoomService is the read side exposed to MCP clients.
type RoomService interface {
	ListRooms(ctx context.Context) (*rooms.RoomsResponse, error)
	Actions(ctx context.Context, roomID string) (*rooms.ActionsResponse, error)
	History(ctx context.Context, roomID string, limit int) (*rooms.HistoryResponse, error)
}

type Server struct {
	rooms RoomService

	mcpServer  *server.MCPServer
	httpServer *server.StreamableHTTPServer
}

func New(svc RoomService) *Server {
	mcpSrv := server.NewMCPServer(
		"loser-pays",
		"0.1.0",
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	s := &Server{
		rooms:      svc,
		mcpServer:  mcpSrv,
		httpServer: server.NewStreamableHTTPServer(mcpSrv, server.WithStateLess(true), server.WithDisableStreaming(true)),
	}
	s.registerTools()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.httpServer
}
