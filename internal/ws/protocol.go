package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"loser-pays/internal/actionlog"
	"loser-pays/internal/currency"
	"loser-pays/internal/game"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidEventFormat = errors.New("invalid event format")
	ErrNotImplemented     = errors.New("event type not implemented")
)

// Error codes sent to the offending connection.
const (
	CodeInvalidEventFormat = "InvalidEventFormat"
	CodeUnknownCurrency    = "UnknownCurrency"
	CodeNotImplemented     = "NotImplemented"
	CodeNoBetsRecorded     = "NoBetsRecorded"
	CodeAmountOutOfRange   = "AmountOutOfRange"
	CodeInternal           = "InternalError"
)

const typeError = "error"

// Event is one inbound room event. The set is closed: only the types in this
// file implement it.
type Event interface {
	Kind() actionlog.Kind
	sealed()
}

type GameStartEvent struct{ UserID string }

type GameEndEvent struct{ UserID string }

type SetPriceEvent struct {
	UserID   string
	Price    decimal.Decimal
	Currency currency.Currency
}

type SetBetEvent struct {
	UserID string
	Bet    int
}

type EvaluateEvent struct{ UserID string }

func (GameStartEvent) Kind() actionlog.Kind { return actionlog.KindGameStart }
func (GameEndEvent) Kind() actionlog.Kind   { return actionlog.KindGameEnd }
func (SetPriceEvent) Kind() actionlog.Kind  { return actionlog.KindSetPrice }
func (SetBetEvent) Kind() actionlog.Kind    { return actionlog.KindSetBet }
func (EvaluateEvent) Kind() actionlog.Kind  { return actionlog.KindEvaluate }

func (GameStartEvent) sealed() {}
func (GameEndEvent) sealed()   {}
func (SetPriceEvent) sealed()  {}
func (SetBetEvent) sealed()    {}
func (EvaluateEvent) sealed()  {}

type inboundMessage struct {
	Type     string           `json:"type" validate:"required"`
	UserID   string           `json:"user_id" validate:"required"`
	Price    *decimal.Decimal `json:"price"`
	Currency string           `json:"currency"`
	Bet      *int             `json:"bet"`
}

type priceFields struct {
	Price    *decimal.Decimal `validate:"required"`
	Currency string           `validate:"required"`
}

type betFields struct {
	Bet *int `validate:"required,min=1,max=10000"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// parseEvent decodes raw for a session owned by sessionUser. Currency codes
// are checked against the known set only; the rate table is consulted when
// the event is handled.
func parseEvent(raw []byte, sessionUser string) (Event, error) {
	var in inboundMessage
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEventFormat, err)
	}
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEventFormat, err)
	}
	if in.UserID != sessionUser {
		return nil, fmt.Errorf("%w: user_id %q does not own this session", ErrInvalidEventFormat, in.UserID)
	}
	kind, ok := actionlog.ParseKind(in.Type)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotImplemented, in.Type)
	}
	switch kind {
	case actionlog.KindGameStart:
		return GameStartEvent{UserID: in.UserID}, nil
	case actionlog.KindGameEnd:
		return GameEndEvent{UserID: in.UserID}, nil
	case actionlog.KindEvaluate:
		return EvaluateEvent{UserID: in.UserID}, nil
	case actionlog.KindSetPrice:
		if err := validate.Struct(priceFields{Price: in.Price, Currency: in.Currency}); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidEventFormat, err)
		}
		if in.Price.IsNegative() {
			return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidEventFormat)
		}
		if !in.Price.Equal(in.Price.Truncate(currency.AmountDecimals)) {
			return nil, fmt.Errorf("%w: price has more than %d decimals", ErrInvalidEventFormat, currency.AmountDecimals)
		}
		if err := currency.CheckAmount(*in.Price); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidEventFormat, err)
		}
		c, err := currency.Parse(in.Currency)
		if err != nil {
			return nil, err
		}
		return SetPriceEvent{UserID: in.UserID, Price: *in.Price, Currency: c}, nil
	case actionlog.KindSetBet:
		if err := validate.Struct(betFields{Bet: in.Bet}); err != nil {
			return nil, fmt.Errorf("%w: bet must be between %d and %d", ErrInvalidEventFormat, game.DrawMin, game.DrawMax)
		}
		return SetBetEvent{UserID: in.UserID, Bet: *in.Bet}, nil
	default:
		// join, leave, bet and result are produced by the server only.
		return nil, fmt.Errorf("%w: %q", ErrNotImplemented, in.Type)
	}
}

// Outbound is the broadcast form of an action record. Wagers never appear in
// it.
type Outbound struct {
	Type      actionlog.Kind   `json:"type"`
	UserID    string           `json:"user_id"`
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
	Price     *decimal.Decimal `json:"price,omitempty"`
	Currency  string           `json:"currency,omitempty"`
}

type ResultMessage struct {
	Outbound
	GameID string                    `json:"game_id"`
	Loser  string                    `json:"loser"`
	Total  decimal.Decimal           `json:"total"`
	Draw   int                       `json:"draw"`
	Prices []currency.ConvertedPrice `json:"prices"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func outbound(rec actionlog.Record) Outbound {
	out := Outbound{
		Type:      rec.Action,
		UserID:    rec.UserID,
		Message:   rec.Message,
		Timestamp: rec.Timestamp,
		Price:     rec.Price,
	}
	if rec.Currency != "" {
		out.Currency = rec.Currency.String()
	}
	return out
}

func messageFor(e Event) string {
	switch ev := e.(type) {
	case GameStartEvent:
		return fmt.Sprintf("User %s started the game.", ev.UserID)
	case GameEndEvent:
		return fmt.Sprintf("User %s ended the game.", ev.UserID)
	case SetPriceEvent:
		return fmt.Sprintf("User %s set price %s %s.", ev.UserID, ev.Price.String(), ev.Currency.Code())
	case SetBetEvent:
		return fmt.Sprintf("User %s placed a bet.", ev.UserID)
	case EvaluateEvent:
		return fmt.Sprintf("User %s asked for evaluation.", ev.UserID)
	}
	return ""
}

func joinMessage(userID string) string  { return fmt.Sprintf("User %s joined the room.", userID) }
func leaveMessage(userID string) string { return fmt.Sprintf("User %s left the room.", userID) }

func resultMessage(loser string, total decimal.Decimal) string {
	return fmt.Sprintf("User %s lost and pays %s %s.", loser, total.StringFixed(2), currency.Canonical.Code())
}

// errorCode classifies err for the error frame. ok is false for failures the
// client did not cause.
func errorCode(err error) (code string, ok bool) {
	switch {
	case errors.Is(err, ErrInvalidEventFormat):
		return CodeInvalidEventFormat, true
	case errors.Is(err, currency.ErrUnknownCurrency):
		return CodeUnknownCurrency, true
	case errors.Is(err, ErrNotImplemented):
		return CodeNotImplemented, true
	case errors.Is(err, game.ErrNoBetsRecorded):
		return CodeNoBetsRecorded, true
	case errors.Is(err, currency.ErrAmountOutOfRange):
		return CodeAmountOutOfRange, true
	default:
		return CodeInternal, false
	}
}
