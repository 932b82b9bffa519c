package actionlog

import (
	"context"
	"testing"
	"time"

	"loser-pays/internal/currency"
	"loser-pays/internal/testutil"

	"github.com/shopspring/decimal"
)

func newRedisLog(t *testing.T) *RedisLog {
	t.Helper()
	rdb, _ := testutil.OpenRedis(t)
	return NewRedisLog(rdb)
}

func newBadgerLog(t *testing.T) *BadgerLog {
	t.Helper()
	l, err := OpenBadgerLog("")
	if err != nil {
		t.Fatalf("open badger: %v", err)
	}
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func backends(t *testing.T) map[string]Log {
	return map[string]Log{
		"redis":  newRedisLog(t),
		"badger": newBadgerLog(t),
	}
}

func sampleRound(roomID string) []Record {
	price := decimal.NewFromInt(100)
	bet := 4200
	ts := time.Unix(1_700_000_000, 0).UTC()
	return []Record{
		{RoomID: roomID, UserID: "alice", Action: KindJoin, Message: "User alice joined the room.", Timestamp: ts},
		{RoomID: roomID, UserID: "alice", Action: KindSetPrice, Message: "User alice set price 100 EUR.", Timestamp: ts, Price: &price, Currency: currency.EUR},
		{RoomID: roomID, UserID: "alice", Action: KindSetBet, Message: "User alice placed a bet.", Timestamp: ts},
		{RoomID: roomID, UserID: "alice", Action: KindBet, Message: "User alice bet 4200.", Timestamp: ts, Bet: &bet},
		{RoomID: roomID, UserID: "bob", Action: KindJoin, Message: "User bob joined the room.", Timestamp: ts},
	}
}

func TestLogRoundTripPreservesOrder(t *testing.T) {
	for name, l := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			in := sampleRound("r1")
			for _, rec := range in {
				if err := l.Append(ctx, "r1", rec); err != nil {
					t.Fatalf("Append: %v", err)
				}
			}

			all, err := l.Fetch(ctx, "r1", true)
			if err != nil {
				t.Fatalf("Fetch(all): %v", err)
			}
			if len(all) != len(in) {
				t.Fatalf("Fetch(all) len = %d, want %d", len(all), len(in))
			}
			for i := range in {
				if all[i].Action != in[i].Action || all[i].UserID != in[i].UserID {
					t.Fatalf("record %d = %+v, want %+v", i, all[i], in[i])
				}
			}
			if all[3].Bet == nil || *all[3].Bet != 4200 {
				t.Fatalf("bet payload lost: %+v", all[3])
			}
			if all[1].Price == nil || !all[1].Price.Equal(decimal.NewFromInt(100)) || all[1].Currency != currency.EUR {
				t.Fatalf("price payload lost: %+v", all[1])
			}

			public, err := l.Fetch(ctx, "r1", false)
			if err != nil {
				t.Fatalf("Fetch(public): %v", err)
			}
			want := []Kind{KindJoin, KindSetPrice, KindSetBet, KindJoin}
			if len(public) != len(want) {
				t.Fatalf("Fetch(public) len = %d, want %d", len(public), len(want))
			}
			for i, k := range want {
				if public[i].Action != k {
					t.Fatalf("public[%d] = %s, want %s", i, public[i].Action, k)
				}
			}
		})
	}
}

func TestLogClearIsPerRoom(t *testing.T) {
	for name, l := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, room := range []string{"r1", "r2"} {
				for _, rec := range sampleRound(room) {
					if err := l.Append(ctx, room, rec); err != nil {
						t.Fatalf("Append: %v", err)
					}
				}
			}
			if err := l.Clear(ctx, "r1"); err != nil {
				t.Fatalf("Clear: %v", err)
			}
			got, err := l.Fetch(ctx, "r1", true)
			if err != nil {
				t.Fatalf("Fetch: %v", err)
			}
			if len(got) != 0 {
				t.Fatalf("r1 after clear = %d records", len(got))
			}
			other, err := l.Fetch(ctx, "r2", true)
			if err != nil {
				t.Fatalf("Fetch r2: %v", err)
			}
			if len(other) != 5 {
				t.Fatalf("r2 len = %d, want 5", len(other))
			}
			if err := l.Clear(ctx, "missing"); err != nil {
				t.Fatalf("Clear(missing): %v", err)
			}
		})
	}
}

func TestLogAppendsBatchInOrder(t *testing.T) {
	for name, l := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			in := sampleRound("r1")
			if err := l.Append(ctx, "r1", in...); err != nil {
				t.Fatalf("Append: %v", err)
			}
			if err := l.Append(ctx, "r1"); err != nil {
				t.Fatalf("Append(empty): %v", err)
			}
			all, err := l.Fetch(ctx, "r1", true)
			if err != nil {
				t.Fatalf("Fetch: %v", err)
			}
			if len(all) != len(in) {
				t.Fatalf("len = %d, want %d", len(all), len(in))
			}
			for i := range in {
				if all[i].Action != in[i].Action || all[i].UserID != in[i].UserID {
					t.Fatalf("record %d = %+v, want %+v", i, all[i], in[i])
				}
			}
		})
	}
}

func TestRedisLogKeyLayout(t *testing.T) {
	rdb, mr := testutil.OpenRedis(t)
	l := NewRedisLog(rdb)

	if err := l.Append(context.Background(), "abc", Record{RoomID: "abc", UserID: "u", Action: KindGameStart}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	items, err := mr.List("room:abc:actions")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
}

func TestRedisLogReportsUnavailableStorage(t *testing.T) {
	rdb, mr := testutil.OpenRedis(t)
	l := NewRedisLog(rdb)
	mr.Close()

	if err := l.Append(context.Background(), "r1", Record{Action: KindJoin}); err == nil {
		t.Fatal("Append should fail when redis is down")
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range kinds {
		got, ok := ParseKind(string(k))
		if !ok || got != k {
			t.Fatalf("ParseKind(%q) = %q, %v", k, got, ok)
		}
	}
	if _, ok := ParseKind("fold"); ok {
		t.Fatal("ParseKind(fold) should fail")
	}
	if !KindBet.Internal() || KindSetBet.Internal() {
		t.Fatal("only bet is internal")
	}
}
