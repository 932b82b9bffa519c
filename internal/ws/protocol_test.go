package ws

import (
	"errors"
	"fmt"
	"testing"

	"loser-pays/internal/currency"
	"loser-pays/internal/game"

	"github.com/shopspring/decimal"
)

func TestParseEvent(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Event
		wantErr error
	}{
		{name: "game start", raw: `{"type":"game_start","user_id":"alice"}`, want: GameStartEvent{UserID: "alice"}},
		{name: "game end", raw: `{"type":"game_end","user_id":"alice"}`, want: GameEndEvent{UserID: "alice"}},
		{name: "evaluate", raw: `{"type":"evaluate","user_id":"alice"}`, want: EvaluateEvent{UserID: "alice"}},
		{name: "bet", raw: `{"type":"set_bet","user_id":"alice","bet":42}`, want: SetBetEvent{UserID: "alice", Bet: 42}},
		{name: "bet lower bound", raw: `{"type":"set_bet","user_id":"alice","bet":1}`, want: SetBetEvent{UserID: "alice", Bet: 1}},
		{name: "bet upper bound", raw: `{"type":"set_bet","user_id":"alice","bet":10000}`, want: SetBetEvent{UserID: "alice", Bet: 10000}},
		{name: "bet zero", raw: `{"type":"set_bet","user_id":"alice","bet":0}`, wantErr: ErrInvalidEventFormat},
		{name: "bet too high", raw: `{"type":"set_bet","user_id":"alice","bet":10001}`, wantErr: ErrInvalidEventFormat},
		{name: "bet missing", raw: `{"type":"set_bet","user_id":"alice"}`, wantErr: ErrInvalidEventFormat},
		{name: "not json", raw: `{"type":`, wantErr: ErrInvalidEventFormat},
		{name: "missing type", raw: `{"user_id":"alice"}`, wantErr: ErrInvalidEventFormat},
		{name: "missing user", raw: `{"type":"game_start"}`, wantErr: ErrInvalidEventFormat},
		{name: "foreign user", raw: `{"type":"game_start","user_id":"mallory"}`, wantErr: ErrInvalidEventFormat},
		{name: "unknown type", raw: `{"type":"fold","user_id":"alice"}`, wantErr: ErrNotImplemented},
		{name: "internal type", raw: `{"type":"bet","user_id":"alice","bet":5}`, wantErr: ErrNotImplemented},
		{name: "server-only type", raw: `{"type":"join","user_id":"alice"}`, wantErr: ErrNotImplemented},
		{name: "unknown currency", raw: `{"type":"set_price","user_id":"alice","price":"5","currency":"gbp"}`, wantErr: currency.ErrUnknownCurrency},
		{name: "negative price", raw: `{"type":"set_price","user_id":"alice","price":"-1","currency":"czk"}`, wantErr: ErrInvalidEventFormat},
		{name: "price missing", raw: `{"type":"set_price","user_id":"alice","currency":"czk"}`, wantErr: ErrInvalidEventFormat},
		{name: "currency missing", raw: `{"type":"set_price","user_id":"alice","price":3}`, wantErr: ErrInvalidEventFormat},
		{name: "sub-cent price", raw: `{"type":"set_price","user_id":"alice","price":"1.005","currency":"eur"}`, wantErr: ErrInvalidEventFormat},
		{name: "huge price", raw: `{"type":"set_price","user_id":"alice","price":1e13,"currency":"czk"}`, wantErr: ErrInvalidEventFormat},
		{name: "price at bound", raw: `{"type":"set_price","user_id":"alice","price":"1000000000000","currency":"czk"}`, wantErr: ErrInvalidEventFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseEvent([]byte(tt.raw), "alice")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseEvent: %v", err)
			}
			if got != tt.want {
				t.Fatalf("event = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestParseSetPrice(t *testing.T) {
	for _, raw := range []string{
		`{"type":"set_price","user_id":"alice","price":"100.50","currency":"EUR"}`,
		`{"type":"set_price","user_id":"alice","price":100.5,"currency":"eur"}`,
	} {
		ev, err := parseEvent([]byte(raw), "alice")
		if err != nil {
			t.Fatalf("parseEvent(%s): %v", raw, err)
		}
		sp, ok := ev.(SetPriceEvent)
		if !ok {
			t.Fatalf("event = %T", ev)
		}
		if sp.Currency != currency.EUR || !sp.Price.Equal(decimal.RequireFromString("100.5")) {
			t.Fatalf("event = %+v", sp)
		}
		if got := messageFor(sp); got != "User alice set price 100.5 EUR." {
			t.Fatalf("message = %q", got)
		}
	}
}

func TestParseSetPriceBounds(t *testing.T) {
	for _, price := range []string{`"999999999999.99"`, `"0"`, `"2.50"`, `"7.100"`} {
		raw := `{"type":"set_price","user_id":"alice","price":` + price + `,"currency":"czk"}`
		if _, err := parseEvent([]byte(raw), "alice"); err != nil {
			t.Fatalf("parseEvent(%s): %v", price, err)
		}
	}
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err        error
		wantCode   string
		wantClient bool
	}{
		{ErrInvalidEventFormat, CodeInvalidEventFormat, true},
		{currency.ErrUnknownCurrency, CodeUnknownCurrency, true},
		{ErrNotImplemented, CodeNotImplemented, true},
		{game.ErrNoBetsRecorded, CodeNoBetsRecorded, true},
		{fmt.Errorf("total: %w", currency.ErrAmountOutOfRange), CodeAmountOutOfRange, true},
		{errors.New("redis: connection refused"), CodeInternal, false},
	}
	for _, tt := range tests {
		code, client := errorCode(tt.err)
		if code != tt.wantCode || client != tt.wantClient {
			t.Fatalf("errorCode(%v) = %s,%v want %s,%v", tt.err, code, client, tt.wantCode, tt.wantClient)
		}
	}
}

func TestMessages(t *testing.T) {
	if got := joinMessage("u1"); got != "User u1 joined the room." {
		t.Fatalf("join = %q", got)
	}
	if got := leaveMessage("u1"); got != "User u1 left the room." {
		t.Fatalf("leave = %q", got)
	}
	if got := resultMessage("u1", decimal.RequireFromString("2360")); got != "User u1 lost and pays 2360.00 CZK." {
		t.Fatalf("result = %q", got)
	}
	if got := messageFor(SetBetEvent{UserID: "u1", Bet: 77}); got != "User u1 placed a bet." {
		t.Fatalf("bet = %q", got)
	}
}
