package main

import (
	"testing"

	"loser-pays/internal/config"
)

func TestSessionURL(t *testing.T) {
	cfg := config.BotConfig{WSURL: "ws://localhost:8080/ws/room/", RoomID: "r 1", UserID: "bot"}
	if got := sessionURL(cfg); got != "ws://localhost:8080/ws/room/r%201/bot" {
		t.Fatalf("url = %q", got)
	}
}

func TestScript(t *testing.T) {
	cfg := config.BotConfig{UserID: "bot", Currency: "eur"}
	msgs := script(cfg, 120, 77)
	if len(msgs) != 2 {
		t.Fatalf("msgs = %+v", msgs)
	}
	if msgs[0].Type != "set_price" || msgs[0].Price != "120" || msgs[0].Currency != "eur" {
		t.Fatalf("price msg = %+v", msgs[0])
	}
	if msgs[1].Type != "set_bet" || msgs[1].Bet != 77 {
		t.Fatalf("bet msg = %+v", msgs[1])
	}

	cfg.Evaluate = true
	if msgs := script(cfg, 1, 1); len(msgs) != 3 || msgs[2].Type != "evaluate" {
		t.Fatalf("evaluate script = %+v", msgs)
	}
}
