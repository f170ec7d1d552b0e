package contracts

import (
	"context"

	"github.com/guregu/null/v5"
)

// CompanyRepository manages the screening universe.
type CompanyRepository interface {
	// Upsert creates or updates a company keyed by (ticker, exchange_short)
	// and fills in the generated ID.
	Upsert(ctx context.Context, company *Company) error

	// UpdateProfile sets the descriptive fields fetched from the company
	// profile endpoint.
	UpdateProfile(ctx context.Context, companyID int, country, sector, industry string) error

	// ListActive returns all active companies ordered by ticker.
	ListActive(ctx context.Context) ([]Company, error)

	// FindByTicker resolves a ticker to a company. When exchangeShort is
	// empty the first active match wins. Returns ErrNotFound when absent.
	FindByTicker(ctx context.Context, ticker, exchangeShort string) (*Company, error)

	// Count returns the total number of companies.
	Count(ctx context.Context) (int, error)
}

// IncomeStatementRepository stores the income-statement series.
type IncomeStatementRepository interface {
	// Upsert writes one period keyed by (company_id, date, period),
	// overwriting every value field on conflict.
	Upsert(ctx context.Context, stmt *IncomeStatement) error

	// ListByCompany returns the series for one company and period kind,
	// ordered by date descending.
	ListByCompany(ctx context.Context, companyID int, period string) ([]IncomeStatement, error)

	// UpdateRevenueGrowth sets the stored per-row YoY revenue growth.
	UpdateRevenueGrowth(ctx context.Context, id int, growth null.Float) error
}

// KeyMetricsRepository stores the key-metrics series.
type KeyMetricsRepository interface {
	// Upsert writes one period keyed by (company_id, date, period),
	// overwriting every value field on conflict.
	Upsert(ctx context.Context, metrics *KeyMetrics) error

	// ListByCompany returns the series for one company and period kind,
	// ordered by date descending.
	ListByCompany(ctx context.Context, companyID int, period string) ([]KeyMetrics, error)
}

// SnapshotRepository stores the composed screening snapshots.
type SnapshotRepository interface {
	// Upsert replaces the whole snapshot for its company in one statement.
	Upsert(ctx context.Context, snap *Snapshot) error

	// GetByCompanyID returns the snapshot for a company, or ErrNotFound.
	GetByCompanyID(ctx context.Context, companyID int) (*Snapshot, error)

	// UpdateQuote refreshes market_cap, last_price and pe_ratio in place,
	// keeping the stored value wherever the new one is null. Companies
	// without a snapshot are left alone.
	UpdateQuote(ctx context.Context, companyID int, marketCap, lastPrice, peRatio null.Float) error

	// Count returns the number of scored companies.
	Count(ctx context.Context) (int, error)
}

// WatchlistRepository manages the watchlist.
type WatchlistRepository interface {
	// List returns all watched companies with display fields joined in,
	// newest first.
	List(ctx context.Context) ([]WatchlistItem, error)

	// Add watches a company. Returns ErrDuplicate when already watched.
	Add(ctx context.Context, companyID int, note string, targetPrice null.Float) (*WatchlistItem, error)

	// Remove deletes an entry by ID. Returns ErrNotFound when absent.
	Remove(ctx context.Context, id int) error

	// Count returns the number of watched companies.
	Count(ctx context.Context) (int, error)
}
