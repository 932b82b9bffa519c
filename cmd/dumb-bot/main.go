package main

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/url"
	"os"
	"strings"
	"time"

	"loser-pays/internal/config"
	"loser-pays/internal/game"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type outMessage struct {
	Type     string `json:"type"`
	UserID   string `json:"user_id"`
	Price    string `json:"price,omitempty"`
	Currency string `json:"currency,omitempty"`
	Bet      int    `json:"bet,omitempty"`
}

type inMessage struct {
	Type    string `json:"type"`
	UserID  string `json:"user_id"`
	Message string `json:"message"`
	Error   string `json:"error"`
	Loser   string `json:"loser"`
	Total   string `json:"total"`
	Draw    int    `json:"draw"`
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	cfg, err := config.LoadBot()
	if err != nil {
		log.Fatal().Err(err).Msg("load bot config failed")
	}
	if cfg.RoomID == "" {
		log.Fatal().Msg("ROOM_ID is required")
	}

	target := sessionURL(cfg)
	conn, _, err := websocket.DefaultDialer.Dial(target, nil)
	if err != nil {
		log.Fatal().Err(err).Str("url", target).Msg("dial failed")
	}
	defer conn.Close()

	for _, msg := range script(cfg, rand.N(1000)+1, rand.N(game.DrawMax)+game.DrawMin) {
		payload, _ := json.Marshal(msg)
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Fatal().Err(err).Msg("write failed")
		}
	}

	_ = conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var in inMessage
		if err := json.Unmarshal(data, &in); err != nil {
			continue
		}
		switch in.Type {
		case "error":
			log.Warn().Str("code", in.Error).Msg(in.Message)
		case "result":
			fmt.Printf("draw=%d loser=%s total=%s CZK\n", in.Draw, in.Loser, in.Total)
			return
		default:
			log.Info().Str("type", in.Type).Msg(in.Message)
			if !cfg.Evaluate && in.Type == "set_bet" && in.UserID == cfg.UserID {
				return
			}
		}
	}
}

func sessionURL(cfg config.BotConfig) string {
	return strings.TrimRight(cfg.WSURL, "/") + "/" + url.PathEscape(cfg.RoomID) + "/" + url.PathEscape(cfg.UserID)
}

// script is the bot's round: declare a price, bet, optionally settle.
func script(cfg config.BotConfig, price, bet int) []outMessage {
	msgs := []outMessage{
		{Type: "set_price", UserID: cfg.UserID, Price: fmt.Sprint(price), Currency: cfg.Currency},
		{Type: "set_bet", UserID: cfg.UserID, Bet: bet},
	}
	if cfg.Evaluate {
		msgs = append(msgs, outMessage{Type: "evaluate", UserID: cfg.UserID})
	}
	return msgs
}
