package mcpserver

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

const defaultHistoryLimit = 20

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"list_rooms",
			mcp.WithDescription("List rooms, newest first"),
		),
		s.handleListRooms,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_room_actions",
			mcp.WithDescription("Public actions of the room's current round; wagers are never included"),
			mcp.WithString("room_id", mcp.Required(), mcp.Description("Room id")),
		),
		s.handleRoomActions,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_game_history",
			mcp.WithDescription("Settled games of a room with per-user prices, newest first"),
			mcp.WithString("room_id", mcp.Required(), mcp.Description("Room id")),
			mcp.WithNumber("limit", mcp.Description("Max games, default 20, max 100")),
		),
		s.handleGameHistory,
	)
}

func (s *Server) handleListRooms(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resp, err := s.rooms.ListRooms(ctx)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(resp), nil
}

func (s *Server) handleRoomActions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	roomID := strings.TrimSpace(request.GetString("room_id", ""))
	if roomID == "" {
		return toolError("invalid_request", "room_id is required"), nil
	}
	resp, err := s.rooms.Actions(ctx, roomID)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(resp), nil
}

func (s *Server) handleGameHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	roomID := strings.TrimSpace(request.GetString("room_id", ""))
	if roomID == "" {
		return toolError("invalid_request", "room_id is required"), nil
	}
	resp, err := s.rooms.History(ctx, roomID, request.GetInt("limit", defaultHistoryLimit))
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(resp), nil
}
