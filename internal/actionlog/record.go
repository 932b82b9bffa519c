package actionlog

import (
	"context"
	"time"

	"loser-pays/internal/currency"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Kind is the closed set of room actions.
type Kind string

const (
	KindJoin      Kind = "join"
	KindLeave     Kind = "leave"
	KindGameStart Kind = "game_start"
	KindGameEnd   Kind = "game_end"
	KindSetPrice  Kind = "set_price"
	KindSetBet    Kind = "set_bet"
	KindBet       Kind = "bet"
	KindEvaluate  Kind = "evaluate"
	KindResult    Kind = "result"
)

var kinds = []Kind{
	KindJoin, KindLeave, KindGameStart, KindGameEnd, KindSetPrice,
	KindSetBet, KindBet, KindEvaluate, KindResult,
}

func ParseKind(s string) (Kind, bool) {
	return lo.Find(kinds, func(k Kind) bool { return string(k) == s })
}

// Internal records carry secret data and are never broadcast or served to
// players.
func (k Kind) Internal() bool { return k == KindBet }

type Record struct {
	RoomID    string            `json:"room_id"`
	UserID    string            `json:"user_id"`
	Action    Kind              `json:"action"`
	Message   string            `json:"message"`
	Timestamp time.Time         `json:"timestamp"`
	Price     *decimal.Decimal  `json:"price,omitempty"`
	Currency  currency.Currency `json:"currency,omitempty"`
	Bet       *int              `json:"bet,omitempty"`
}

// Log is a per-room, append-only, ordered log of one round's actions.
type Log interface {
	// Append adds recs in order. Either all of them land or none do.
	Append(ctx context.Context, roomID string, recs ...Record) error
	// Fetch returns the room's records in insertion order. Internal records
	// are dropped unless includeInternal is set.
	Fetch(ctx context.Context, roomID string, includeInternal bool) ([]Record, error)
	// Clear atomically drops the whole room log.
	Clear(ctx context.Context, roomID string) error
}

func filterInternal(recs []Record, includeInternal bool) []Record {
	if includeInternal {
		return recs
	}
	return lo.Reject(recs, func(r Record, _ int) bool { return r.Action.Internal() })
}

func roomKey(roomID string) string {
	return "room:" + roomID + ":actions"
}
