package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nvoronina/matching-engine/internal/domain"
	"github.com/nvoronina/matching-engine/internal/port"
)

var _ port.Journal = (*Journal)(nil)

// Journal stores executed trades in Postgres. It is append-only: the book is
// never reconstructed from it.
type Journal struct {
	pool *pgxpool.Pool
}

// NewJournal opens a pool against dsn. Call Close when done.
func NewJournal(ctx context.Context, dsn string) (*Journal, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pg: create pool: %w", err)
	}
	return &Journal{pool: pool}, nil
}

func NewJournalWithPool(pool *pgxpool.Pool) *Journal {
	return &Journal{pool: pool}
}

func (j *Journal) Close() {
	if j.pool != nil {
		j.pool.Close()
	}
}

func (j *Journal) SaveTrade(ctx context.Context, rec *domain.TradeRecord) error {
	if rec == nil {
		return errors.New("nil trade record")
	}
	_, err := j.pool.Exec(ctx, `
INSERT INTO trades(id, instrument, buy_order, sell_order, bid_price, ask_price, quantity, executed_at)
VALUES($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (id) DO NOTHING
`, rec.ID, rec.Instrument, rec.BuyOrder, rec.SellOrder, rec.BidPrice, rec.AskPrice, rec.Quantity, rec.ExecutedAt)
	if err != nil {
		return fmt.Errorf("pg: save trade: %w", err)
	}
	return nil
}

// TradesForOrder returns executions where the order appears on either side,
// oldest first.
func (j *Journal) TradesForOrder(ctx context.Context, id domain.OrderID) ([]*domain.TradeRecord, error) {
	rows, err := j.pool.Query(ctx, `
SELECT id, instrument, buy_order, sell_order, bid_price, ask_price, quantity, executed_at
FROM trades
WHERE buy_order = $1 OR sell_order = $1
ORDER BY executed_at ASC
`, id)
	if err != nil {
		return nil, fmt.Errorf("pg: load trades: %w", err)
	}
	defer rows.Close()

	var res []*domain.TradeRecord
	for rows.Next() {
		var rec domain.TradeRecord
		if err := rows.Scan(&rec.ID, &rec.Instrument, &rec.BuyOrder, &rec.SellOrder,
			&rec.BidPrice, &rec.AskPrice, &rec.Quantity, &rec.ExecutedAt); err != nil {
			return nil, fmt.Errorf("pg: scan trade: %w", err)
		}
		res = append(res, &rec)
	}
	return res, rows.Err()
}
