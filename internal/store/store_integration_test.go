package store

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestRoomLifecycle(t *testing.T) {
	st, ctx, cleanup := openStore(t)
	defer cleanup()

	if _, err := st.EnsureUser(ctx, "alice"); err != nil {
		t.Fatalf("ensure alice: %v", err)
	}
	if _, err := st.EnsureUser(ctx, "alice"); err != nil {
		t.Fatalf("ensure alice twice: %v", err)
	}
	if _, err := st.EnsureUser(ctx, "bob"); err != nil {
		t.Fatalf("ensure bob: %v", err)
	}

	room, err := st.CreateRoom(ctx, "lunch", "alice")
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	if _, err := st.CreateRoom(ctx, "lunch", "bob"); !errors.Is(err, ErrRoomNameNotUnique) {
		t.Fatalf("duplicate room err = %v, want ErrRoomNameNotUnique", err)
	}

	admin, err := st.GetRoomUser(ctx, room.ID, "alice")
	if err != nil {
		t.Fatalf("get admin: %v", err)
	}
	if !admin.IsAdmin || admin.Status != StatusApproved {
		t.Fatalf("creator membership = %+v", admin)
	}

	if _, err := st.CreateRoomUser(ctx, room.ID, "bob", false, StatusPending); err != nil {
		t.Fatalf("join bob: %v", err)
	}
	if _, err := st.CreateRoomUser(ctx, room.ID, "bob", false, StatusPending); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("rejoin err = %v, want ErrAlreadyExists", err)
	}
	approved, err := st.ListRoomUsers(ctx, room.ID, true)
	if err != nil {
		t.Fatalf("list approved: %v", err)
	}
	if len(approved) != 1 {
		t.Fatalf("approved members = %d, want 1", len(approved))
	}
	if err := st.UpdateRoomUserStatus(ctx, room.ID, "bob", StatusApproved); err != nil {
		t.Fatalf("approve bob: %v", err)
	}
	all, err := st.ListRoomUsers(ctx, room.ID, false)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 || all[1].Status != StatusApproved {
		t.Fatalf("members = %+v", all)
	}

	rooms, err := st.ListRooms(ctx)
	if err != nil || len(rooms) != 1 || rooms[0].Name != "lunch" {
		t.Fatalf("list rooms = %+v err=%v", rooms, err)
	}
}

func TestGameSettlementRoundTrip(t *testing.T) {
	st, ctx, cleanup := openStore(t)
	defer cleanup()

	for _, id := range []string{"alice", "bob"} {
		if _, err := st.EnsureUser(ctx, id); err != nil {
			t.Fatalf("ensure %s: %v", id, err)
		}
	}
	room, err := st.CreateRoom(ctx, "dinner", "alice")
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	gameID, err := st.CreateGameSettlement(ctx, NewGame{
		RoomID:   room.ID,
		Loser:    "bob",
		Draw:     5000,
		TotalCZK: decimal.RequireFromString("2360"),
		Prices: []GamePrice{
			{UserID: "alice", OriginalPrice: decimal.RequireFromString("100"), OriginalCurrency: "eur",
				ConversionRate: decimal.NewNullDecimal(decimal.RequireFromString("23.10")), PriceInCZK: decimal.RequireFromString("2310")},
			{UserID: "bob", OriginalPrice: decimal.RequireFromString("50"), OriginalCurrency: "czk", PriceInCZK: decimal.RequireFromString("50")},
		},
	})
	if err != nil {
		t.Fatalf("create settlement: %v", err)
	}

	games, err := st.ListGames(ctx, room.ID, 10)
	if err != nil {
		t.Fatalf("list games: %v", err)
	}
	if len(games) != 1 || games[0].ID != gameID || games[0].Loser != "bob" {
		t.Fatalf("games = %+v", games)
	}
	g := games[0]
	if !g.TotalCZK.Equal(decimal.RequireFromString("2360")) {
		t.Fatalf("total = %s", g.TotalCZK)
	}
	if len(g.Prices) != 2 {
		t.Fatalf("prices = %+v", g.Prices)
	}
	if g.Prices[1].ConversionRate.Valid {
		t.Fatalf("canonical price should have null rate: %+v", g.Prices[1])
	}
	if !g.Prices[0].ConversionRate.Decimal.Equal(decimal.RequireFromString("23.10")) {
		t.Fatalf("eur rate = %s", g.Prices[0].ConversionRate.Decimal)
	}
}
