package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"loser-pays/internal/actionlog"
	"loser-pays/internal/currency"
	"loser-pays/internal/store"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

const leaveTimeout = 5 * time.Second

type session struct {
	srv     *Server
	client  *Client
	roomID  string
	userID  string
	channel string
}

// run drives one connection: join, a serial event loop, then leave. The
// leave runs on every exit path, including failed joins past registration.
func (s *session) run(ctx context.Context) {
	defer s.client.close()
	logger := log.With().Str("room_id", s.roomID).Str("user_id", s.userID).Str("conn_id", s.client.ID()).Logger()

	if _, err := s.srv.deps.Directory.EnsureUser(ctx, s.userID); err != nil {
		logger.Error().Err(err).Msg("ws_ensure_user_failed")
		return
	}
	if err := s.srv.deps.Channels.Join(ctx, s.channel, s.client); err != nil {
		logger.Error().Err(err).Msg("ws_channel_join_failed")
		return
	}
	defer s.leave(ctx)

	if err := s.act(ctx, actionlog.KindJoin, joinMessage(s.userID), nil); err != nil {
		logger.Error().Err(err).Msg("ws_join_broadcast_failed")
		return
	}
	logger.Info().Msg("ws_session_joined")

	for {
		_, raw, err := s.client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug().Err(err).Msg("ws_read_failed")
			}
			return
		}
		ev, err := parseEvent(raw, s.userID)
		if err == nil {
			metricEvents.WithLabelValues(string(ev.Kind())).Inc()
			err = s.dispatch(ctx, ev)
		}
		if err == nil {
			continue
		}
		code, clientFault := errorCode(err)
		s.sendError(code, err)
		if !clientFault {
			logger.Error().Err(err).Msg("ws_session_failed")
			s.client.flush(time.Second)
			return
		}
	}
}

func (s *session) dispatch(ctx context.Context, ev Event) error {
	switch e := ev.(type) {
	case GameStartEvent, GameEndEvent:
		return s.act(ctx, e.Kind(), messageFor(e), nil)
	case SetPriceEvent:
		table, err := s.srv.deps.Rates.Rates(ctx)
		if err != nil {
			return err
		}
		if !table.Supports(e.Currency) {
			return fmt.Errorf("%w: %s", currency.ErrUnknownCurrency, e.Currency.Code())
		}
		return s.act(ctx, e.Kind(), messageFor(e), func(rec *actionlog.Record) {
			rec.Price = &e.Price
			rec.Currency = e.Currency
		})
	case SetBetEvent:
		return s.srv.deps.Rounds.Act(s.roomID, func() error {
			public := s.record(actionlog.KindSetBet, messageFor(e))
			wager := s.record(actionlog.KindBet, "")
			wager.Bet = lo.ToPtr(e.Bet)
			// Both records land together or not at all; only the public one
			// is broadcast.
			return s.appendAndBroadcast(ctx, public, wager)
		})
	case EvaluateEvent:
		if err := s.act(ctx, e.Kind(), messageFor(e), nil); err != nil {
			return err
		}
		return s.srv.deps.Rounds.Settle(s.roomID, func() error { return s.settle(ctx) })
	default:
		return fmt.Errorf("%w: %T", ErrNotImplemented, ev)
	}
}

// settle evaluates the round, stores the settlement, announces it and clears
// the log. A failure before the store write leaves the round untouched.
func (s *session) settle(ctx context.Context) error {
	res, err := s.srv.deps.Evaluator.Evaluate(ctx, s.roomID)
	if err != nil {
		return err
	}
	gameID, err := s.srv.deps.Directory.CreateGameSettlement(ctx, store.NewGame{
		RoomID:   s.roomID,
		Loser:    res.Loser.UserID,
		Draw:     res.Draw,
		TotalCZK: res.Total,
		Prices: lo.Map(res.Prices, func(p currency.ConvertedPrice, _ int) store.GamePrice {
			return store.GamePrice{
				UserID:           p.UserID,
				OriginalPrice:    p.OriginalPrice,
				OriginalCurrency: p.OriginalCurrency.String(),
				ConversionRate:   p.ConversionRate,
				PriceInCZK:       p.PriceInCZK,
			}
		}),
	})
	if err != nil {
		return fmt.Errorf("store settlement: %w", err)
	}
	msg := ResultMessage{
		Outbound: Outbound{
			Type:      actionlog.KindResult,
			UserID:    res.Loser.UserID,
			Message:   resultMessage(res.Loser.UserID, res.Total),
			Timestamp: time.Now().UTC(),
		},
		GameID: gameID,
		Loser:  res.Loser.UserID,
		Total:  res.Total,
		Draw:   res.Draw,
		Prices: res.Prices,
	}
	if err := s.srv.deps.Channels.BroadcastJSON(ctx, s.channel, msg); err != nil {
		return fmt.Errorf("broadcast result: %w", err)
	}
	if err := s.srv.deps.Actions.Clear(ctx, s.roomID); err != nil {
		return fmt.Errorf("clear action log: %w", err)
	}
	log.Info().Str("room_id", s.roomID).Str("game_id", gameID).Str("loser", res.Loser.UserID).
		Int("draw", res.Draw).Str("total", res.Total.String()).Msg("round_settled")
	return nil
}

// act logs and broadcasts one public record while the round accepts actions.
func (s *session) act(ctx context.Context, kind actionlog.Kind, message string, fill func(*actionlog.Record)) error {
	return s.srv.deps.Rounds.Act(s.roomID, func() error {
		rec := s.record(kind, message)
		if fill != nil {
			fill(&rec)
		}
		return s.appendAndBroadcast(ctx, rec)
	})
}

func (s *session) record(kind actionlog.Kind, message string) actionlog.Record {
	return actionlog.Record{
		RoomID:    s.roomID,
		UserID:    s.userID,
		Action:    kind,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

// appendAndBroadcast appends rec and any companion records in one write, then
// broadcasts rec alone.
func (s *session) appendAndBroadcast(ctx context.Context, rec actionlog.Record, companions ...actionlog.Record) error {
	if err := s.srv.deps.Actions.Append(ctx, s.roomID, append([]actionlog.Record{rec}, companions...)...); err != nil {
		return fmt.Errorf("append %s: %w", rec.Action, err)
	}
	if err := s.srv.deps.Channels.BroadcastJSON(ctx, s.channel, outbound(rec)); err != nil {
		return fmt.Errorf("broadcast %s: %w", rec.Action, err)
	}
	return nil
}

// leave deregisters first so the departing connection does not receive its
// own leave record.
func (s *session) leave(parent context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), leaveTimeout)
	defer cancel()
	if err := s.srv.deps.Channels.Leave(ctx, s.channel, s.client); err != nil {
		log.Warn().Err(err).Str("room_id", s.roomID).Msg("ws_channel_leave_failed")
	}
	if err := s.act(ctx, actionlog.KindLeave, leaveMessage(s.userID), nil); err != nil {
		log.Warn().Err(err).Str("room_id", s.roomID).Str("user_id", s.userID).Msg("ws_leave_broadcast_failed")
		return
	}
	log.Info().Str("room_id", s.roomID).Str("user_id", s.userID).Msg("ws_session_left")
}

func (s *session) sendError(code string, err error) {
	metricEventErrors.WithLabelValues(code).Inc()
	detail := err.Error()
	if code == CodeInternal {
		detail = "internal error"
	}
	b, mErr := json.Marshal(ErrorMessage{Type: typeError, Error: code, Message: detail})
	if mErr != nil {
		return
	}
	if !s.client.Send(b) {
		log.Debug().Str("conn_id", s.client.ID()).Msg("ws_error_frame_dropped")
	}
}
