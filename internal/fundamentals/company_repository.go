package fundamentals

import (
	"context"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brandt/screener/backend/internal/contracts"
)

const companyColumns = `id, ticker, name, exchange, exchange_short, country, sector, industry,
       is_active, created_at, updated_at`

// CompanyRepository implements contracts.CompanyRepository on Postgres.
type CompanyRepository struct {
	pool *pgxpool.Pool
}

// NewCompanyRepository creates a new company repository.
func NewCompanyRepository(pool *pgxpool.Pool) *CompanyRepository {
	return &CompanyRepository{pool: pool}
}

// Upsert creates or updates a company keyed by (ticker, exchange_short).
// On conflict only the listing fields move; profile fields are managed by
// UpdateProfile so a stock-list pass never clears them.
func (r *CompanyRepository) Upsert(ctx context.Context, company *contracts.Company) error {
	query := `
		INSERT INTO companies (ticker, name, exchange, exchange_short, country, sector, industry)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (ticker, exchange_short) DO UPDATE SET
			name = EXCLUDED.name,
			exchange = EXCLUDED.exchange,
			updated_at = NOW()
		RETURNING id, is_active, created_at, updated_at
	`

	return r.pool.QueryRow(ctx, query,
		company.Ticker, company.Name, company.Exchange, company.ExchangeShort,
		company.Country, company.Sector, company.Industry,
	).Scan(&company.ID, &company.IsActive, &company.CreatedAt, &company.UpdatedAt)
}

// UpdateProfile sets the profile-sourced descriptive fields.
func (r *CompanyRepository) UpdateProfile(ctx context.Context, companyID int, country, sector, industry string) error {
	query := `
		UPDATE companies
		SET country = $2, sector = $3, industry = $4, updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.pool.Exec(ctx, query, companyID, country, sector, industry)
	return err
}

// ListActive returns all active companies ordered by ticker.
func (r *CompanyRepository) ListActive(ctx context.Context) ([]contracts.Company, error) {
	query := `
		SELECT ` + companyColumns + `
		FROM companies
		WHERE is_active = TRUE
		ORDER BY ticker, exchange_short
	`

	var companies []contracts.Company
	if err := pgxscan.Select(ctx, r.pool, &companies, query); err != nil {
		return nil, err
	}
	return companies, nil
}

// FindByTicker resolves a ticker to a company. An empty exchangeShort
// matches the first active listing of that ticker.
func (r *CompanyRepository) FindByTicker(ctx context.Context, ticker, exchangeShort string) (*contracts.Company, error) {
	query := `
		SELECT ` + companyColumns + `
		FROM companies
		WHERE ticker = $1 AND ($2 = '' OR exchange_short = $2)
		ORDER BY is_active DESC, id
		LIMIT 1
	`

	var company contracts.Company
	err := pgxscan.Get(ctx, r.pool, &company, query, ticker, exchangeShort)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, contracts.ErrNotFound
		}
		return nil, err
	}
	return &company, nil
}

// Count returns the total number of companies.
func (r *CompanyRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM companies`).Scan(&count)
	return count, err
}
