package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Column scales of the settlement tables.
const (
	amountScale = 2
	rateScale   = 4
)

func storedRate(r decimal.NullDecimal) decimal.NullDecimal {
	if !r.Valid {
		return r
	}
	return decimal.NewNullDecimal(r.Decimal.Round(rateScale))
}

// CreateGameSettlement persists a settled round and its per-user prices.
// Amounts are rounded to the column scales here and nowhere earlier.
func (s *Store) CreateGameSettlement(ctx context.Context, g NewGame) (string, error) {
	id := NewID()
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO games (id, room_id, loser, draw, total_czk) VALUES ($1, $2, $3, $4, $5)`,
			id, g.RoomID, g.Loser, g.Draw, g.TotalCZK.Round(amountScale),
		); err != nil {
			return err
		}
		for _, p := range g.Prices {
			if _, err := tx.Exec(ctx, `
INSERT INTO game_prices (id, game_id, user_id, original_price, original_currency, conversion_rate, price_in_czk)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				NewID(), id, p.UserID, p.OriginalPrice.Round(amountScale), p.OriginalCurrency,
				storedRate(p.ConversionRate), p.PriceInCZK.Round(amountScale),
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			return "", ErrNotFound
		}
		return "", err
	}
	return id, nil
}

// ListGames returns settled games of a room, newest first, with their prices.
func (s *Store) ListGames(ctx context.Context, roomID string, limit int) ([]Game, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(ctx, `
SELECT id, room_id, loser, draw, total_czk, created_at
FROM games
WHERE room_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2`, roomID, limit)
	if err != nil {
		return nil, err
	}
	games := []Game{}
	for rows.Next() {
		var g Game
		if err := rows.Scan(&g.ID, &g.RoomID, &g.Loser, &g.Draw, &g.TotalCZK, &g.CreatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		games = append(games, g)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(games) == 0 {
		return games, nil
	}

	ids := lo.Map(games, func(g Game, _ int) string { return g.ID })
	priceRows, err := s.db.Query(ctx, `
SELECT game_id, user_id, original_price, original_currency, conversion_rate, price_in_czk
FROM game_prices
WHERE game_id = ANY($1)
ORDER BY id ASC`, ids)
	if err != nil {
		return nil, err
	}
	defer priceRows.Close()
	byGame := map[string][]GamePrice{}
	for priceRows.Next() {
		var (
			gameID string
			p      GamePrice
		)
		if err := priceRows.Scan(&gameID, &p.UserID, &p.OriginalPrice, &p.OriginalCurrency, &p.ConversionRate, &p.PriceInCZK); err != nil {
			return nil, err
		}
		byGame[gameID] = append(byGame[gameID], p)
	}
	if err := priceRows.Err(); err != nil {
		return nil, err
	}
	for i := range games {
		games[i].Prices = byGame[games[i].ID]
		if games[i].Prices == nil {
			games[i].Prices = []GamePrice{}
		}
	}
	return games, nil
}
