package store

import (
	"time"

	"github.com/shopspring/decimal"
)

type ApprovalStatus string

const (
	StatusApproved ApprovalStatus = "approved"
	StatusPending  ApprovalStatus = "pending"
	StatusRejected ApprovalStatus = "rejected"
)

type User struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

type Room struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

type RoomUser struct {
	RoomID    string         `json:"room_id"`
	UserID    string         `json:"user_id"`
	IsAdmin   bool           `json:"is_admin"`
	Status    ApprovalStatus `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
}

// GamePrice is one participant's declared price as recorded at settlement.
// ConversionRate is null for prices declared in the canonical currency.
type GamePrice struct {
	UserID           string              `json:"user_id"`
	OriginalPrice    decimal.Decimal     `json:"original_price"`
	OriginalCurrency string              `json:"original_currency"`
	ConversionRate   decimal.NullDecimal `json:"conversion_rate"`
	PriceInCZK       decimal.Decimal     `json:"price_in_czk"`
}

type Game struct {
	ID        string          `json:"id"`
	RoomID    string          `json:"room_id"`
	Loser     string          `json:"loser"`
	Draw      int             `json:"draw"`
	TotalCZK  decimal.Decimal `json:"total_czk"`
	CreatedAt time.Time       `json:"created_at"`
	Prices    []GamePrice     `json:"prices"`
}

type NewGame struct {
	RoomID   string
	Loser    string
	Draw     int
	TotalCZK decimal.Decimal
	Prices   []GamePrice
}
