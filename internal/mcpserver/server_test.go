package mcpserver

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"loser-pays/internal/actionlog"
	"loser-pays/internal/app/rooms"
	"loser-pays/internal/store"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/shopspring/decimal"
)

type fakeRooms struct {
	lastLimit int
}

func (f *fakeRooms) ListRooms(context.Context) (*rooms.RoomsResponse, error) {
	return &rooms.RoomsResponse{Items: []rooms.RoomItem{{ID: "r1", Name: "lunch", CreatedBy: "alice"}}}, nil
}

func (f *fakeRooms) Actions(_ context.Context, roomID string) (*rooms.ActionsResponse, error) {
	if roomID != "r1" {
		return nil, rooms.ErrRoomNotFound
	}
	return &rooms.ActionsResponse{RoomID: roomID, Items: []actionlog.Record{
		{RoomID: "r1", UserID: "alice", Action: actionlog.KindJoin, Message: "User alice joined the room.", Timestamp: time.Unix(0, 0).UTC()},
	}}, nil
}

func (f *fakeRooms) History(_ context.Context, roomID string, limit int) (*rooms.HistoryResponse, error) {
	f.lastLimit = limit
	if roomID != "r1" {
		return nil, rooms.ErrRoomNotFound
	}
	return &rooms.HistoryResponse{RoomID: roomID, Limit: limit, Items: []store.Game{
		{ID: "g1", RoomID: "r1", Loser: "bob", Draw: 5000, TotalCZK: decimal.NewFromInt(2360)},
	}}, nil
}

func TestMCPServerTools(t *testing.T) {
	svc := &fakeRooms{}
	httpSrv := httptest.NewServer(New(svc).Handler())
	defer httpSrv.Close()

	c, closeClient := newMCPClient(t, httpSrv.URL+"/mcp")
	defer closeClient()

	assertToolNames(t, mustListTools(t, c), "list_rooms", "get_room_actions", "get_game_history")

	res := mustCallTool(t, c, "list_rooms", map[string]any{})
	if res.IsError {
		t.Fatalf("list_rooms error: %v", res.StructuredContent)
	}
	items, _ := structured(t, res)["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("list_rooms items = %v", items)
	}

	res = mustCallTool(t, c, "get_room_actions", map[string]any{"room_id": "r1"})
	if res.IsError {
		t.Fatalf("get_room_actions error: %v", res.StructuredContent)
	}
	if items, _ := structured(t, res)["items"].([]any); len(items) != 1 {
		t.Fatalf("actions = %v", items)
	}

	res = mustCallTool(t, c, "get_game_history", map[string]any{"room_id": "r1", "limit": 5})
	if res.IsError {
		t.Fatalf("get_game_history error: %v", res.StructuredContent)
	}
	if svc.lastLimit != 5 {
		t.Fatalf("limit = %d, want 5", svc.lastLimit)
	}
	games, _ := structured(t, res)["items"].([]any)
	if len(games) != 1 || games[0].(map[string]any)["total_czk"] != "2360" {
		t.Fatalf("history = %v", games)
	}
}

func TestMCPServerToolErrors(t *testing.T) {
	httpSrv := httptest.NewServer(New(&fakeRooms{}).Handler())
	defer httpSrv.Close()
	c, closeClient := newMCPClient(t, httpSrv.URL+"/mcp")
	defer closeClient()

	tests := []struct {
		tool string
		args map[string]any
		code string
	}{
		{"get_room_actions", map[string]any{"room_id": " "}, "invalid_request"},
		{"get_room_actions", map[string]any{"room_id": "missing"}, "room_not_found"},
		{"get_game_history", map[string]any{"room_id": "missing"}, "room_not_found"},
	}
	for _, tt := range tests {
		res := mustCallTool(t, c, tt.tool, tt.args)
		if !res.IsError {
			t.Fatalf("%s(%v) expected error", tt.tool, tt.args)
		}
		errObj, _ := structured(t, res)["error"].(map[string]any)
		if errObj["code"] != tt.code {
			t.Fatalf("%s(%v) code = %v, want %s", tt.tool, tt.args, errObj["code"], tt.code)
		}
	}
}

func newMCPClient(t *testing.T, endpoint string) (*client.Client, func()) {
	t.Helper()
	ctx := context.Background()
	trans, err := transport.NewStreamableHTTP(endpoint)
	if err != nil {
		t.Fatalf("new transport: %v", err)
	}
	if err := trans.Start(ctx); err != nil {
		t.Fatalf("transport start: %v", err)
	}
	c := client.NewClient(trans)
	_, err = c.Initialize(ctx, mcp.InitializeRequest{Params: mcp.InitializeParams{ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION}})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return c, func() { _ = trans.Close() }
}

func mustListTools(t *testing.T, c *client.Client) []mcp.Tool {
	t.Helper()
	res, err := c.ListTools(context.Background(), mcp.ListToolsRequest{})
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}
	return res.Tools
}

func assertToolNames(t *testing.T, tools []mcp.Tool, expected ...string) {
	t.Helper()
	got := make([]string, 0, len(tools))
	for _, tool := range tools {
		got = append(got, tool.Name)
	}
	sort.Strings(got)
	sort.Strings(expected)
	if len(got) != len(expected) {
		t.Fatalf("tool count mismatch got=%v expected=%v", got, expected)
	}
	for i := range got {
		if got[i] != expected[i] {
			t.Fatalf("tool list mismatch got=%v expected=%v", got, expected)
		}
	}
}

func mustCallTool(t *testing.T, c *client.Client, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	res, err := c.CallTool(context.Background(), mcp.CallToolRequest{Params: mcp.CallToolParams{Name: name, Arguments: args}})
	if err != nil {
		t.Fatalf("call tool %s: %v", name, err)
	}
	return res
}

func structured(t *testing.T, res *mcp.CallToolResult) map[string]any {
	t.Helper()
	b, err := json.Marshal(res.StructuredContent)
	if err != nil {
		t.Fatalf("marshal structured content: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal structured content: %v", err)
	}
	return out
}
