package fundamentals

import (
	"context"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/guregu/null/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brandt/screener/backend/internal/contracts"
)

const watchlistItemQuery = `
	SELECT w.id, w.company_id, w.note, w.target_price, w.created_at,
	       c.ticker, c.name, c.exchange_short AS exchange, c.sector,
	       s.last_price, s.market_cap, s.pe_ratio
	FROM watchlist w
	JOIN companies c ON c.id = w.company_id
	LEFT JOIN screener_snapshots s ON s.company_id = w.company_id`

// WatchlistRepository implements contracts.WatchlistRepository on Postgres.
type WatchlistRepository struct {
	pool *pgxpool.Pool
}

// NewWatchlistRepository creates a new watchlist repository.
func NewWatchlistRepository(pool *pgxpool.Pool) *WatchlistRepository {
	return &WatchlistRepository{pool: pool}
}

// List returns all watched companies, most recently added first.
func (r *WatchlistRepository) List(ctx context.Context) ([]contracts.WatchlistItem, error) {
	query := watchlistItemQuery + `
	ORDER BY w.created_at DESC, w.id DESC`

	var items []contracts.WatchlistItem
	if err := pgxscan.Select(ctx, r.pool, &items, query); err != nil {
		return nil, err
	}
	return items, nil
}

// Add puts a company on the watchlist and returns the joined item.
// Watching an already-watched company returns contracts.ErrDuplicate.
func (r *WatchlistRepository) Add(ctx context.Context, companyID int, note string, targetPrice null.Float) (*contracts.WatchlistItem, error) {
	insert := `
		INSERT INTO watchlist (company_id, note, target_price)
		VALUES ($1, $2, $3)
		ON CONFLICT (company_id) DO NOTHING
		RETURNING id
	`

	var id int
	err := r.pool.QueryRow(ctx, insert, companyID, note, targetPrice).Scan(&id)
	if err == pgx.ErrNoRows {
		return nil, contracts.ErrDuplicate
	}
	if err != nil {
		return nil, err
	}

	query := watchlistItemQuery + `
	WHERE w.id = $1`

	var item contracts.WatchlistItem
	if err := pgxscan.Get(ctx, r.pool, &item, query, id); err != nil {
		return nil, err
	}
	return &item, nil
}

// Remove deletes a watchlist entry by its own id, not the company id.
// Removing an unknown id returns contracts.ErrNotFound.
func (r *WatchlistRepository) Remove(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM watchlist WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return contracts.ErrNotFound
	}
	return nil
}

// Count returns the number of watched companies.
func (r *WatchlistRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM watchlist`).Scan(&count)
	return count, err
}
