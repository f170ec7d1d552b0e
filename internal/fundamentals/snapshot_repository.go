package fundamentals

import (
	"context"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/guregu/null/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brandt/screener/backend/internal/contracts"
)

const snapshotColumns = `
	id, company_id, ticker, name, exchange, country, sector, industry,
	market_cap, enterprise_value, last_price, pe_ratio, forward_pe,
	price_to_sales, price_to_book, ev_to_ebitda, ev_to_revenue,
	gross_margin, operating_margin, net_margin, ebitda_margin,
	roic, roe, roa,
	revenue_growth_yoy, revenue_growth_3yr_cagr, earnings_growth_yoy,
	debt_to_equity, net_debt_to_ebitda, current_ratio,
	short_percent_float, short_ratio,
	pe_5yr_avg, ev_ebitda_5yr_avg, gross_margin_5yr_avg,
	operating_margin_5yr_avg, net_margin_5yr_avg, roic_5yr_avg, roe_5yr_avg,
	forward_pe_vs_5yr_pct, ev_ebitda_vs_5yr_pct, gross_margin_vs_5yr_pct,
	operating_margin_vs_5yr_pct, roic_vs_5yr_pct, roe_vs_5yr_pct,
	computed_at`

// SnapshotRepository implements contracts.SnapshotRepository on Postgres.
type SnapshotRepository struct {
	pool *pgxpool.Pool
}

// NewSnapshotRepository creates a new snapshot repository.
func NewSnapshotRepository(pool *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{pool: pool}
}

// Upsert replaces the company's entire snapshot row. Every field is
// overwritten, so values a recomputation no longer produces (quote data,
// short interest) revert to NULL until their own refresh runs again.
func (r *SnapshotRepository) Upsert(ctx context.Context, snap *contracts.Snapshot) error {
	query := `
		INSERT INTO screener_snapshots (
			company_id, ticker, name, exchange, country, sector, industry,
			market_cap, enterprise_value, last_price, pe_ratio, forward_pe,
			price_to_sales, price_to_book, ev_to_ebitda, ev_to_revenue,
			gross_margin, operating_margin, net_margin, ebitda_margin,
			roic, roe, roa,
			revenue_growth_yoy, revenue_growth_3yr_cagr, earnings_growth_yoy,
			debt_to_equity, net_debt_to_ebitda, current_ratio,
			short_percent_float, short_ratio,
			pe_5yr_avg, ev_ebitda_5yr_avg, gross_margin_5yr_avg,
			operating_margin_5yr_avg, net_margin_5yr_avg, roic_5yr_avg, roe_5yr_avg,
			forward_pe_vs_5yr_pct, ev_ebitda_vs_5yr_pct, gross_margin_vs_5yr_pct,
			operating_margin_vs_5yr_pct, roic_vs_5yr_pct, roe_vs_5yr_pct,
			computed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
		          $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23,
		          $24, $25, $26, $27, $28, $29, $30, $31, $32, $33, $34,
		          $35, $36, $37, $38, $39, $40, $41, $42, $43, $44, $45)
		ON CONFLICT (company_id) DO UPDATE SET
			ticker = EXCLUDED.ticker,
			name = EXCLUDED.name,
			exchange = EXCLUDED.exchange,
			country = EXCLUDED.country,
			sector = EXCLUDED.sector,
			industry = EXCLUDED.industry,
			market_cap = EXCLUDED.market_cap,
			enterprise_value = EXCLUDED.enterprise_value,
			last_price = EXCLUDED.last_price,
			pe_ratio = EXCLUDED.pe_ratio,
			forward_pe = EXCLUDED.forward_pe,
			price_to_sales = EXCLUDED.price_to_sales,
			price_to_book = EXCLUDED.price_to_book,
			ev_to_ebitda = EXCLUDED.ev_to_ebitda,
			ev_to_revenue = EXCLUDED.ev_to_revenue,
			gross_margin = EXCLUDED.gross_margin,
			operating_margin = EXCLUDED.operating_margin,
			net_margin = EXCLUDED.net_margin,
			ebitda_margin = EXCLUDED.ebitda_margin,
			roic = EXCLUDED.roic,
			roe = EXCLUDED.roe,
			roa = EXCLUDED.roa,
			revenue_growth_yoy = EXCLUDED.revenue_growth_yoy,
			revenue_growth_3yr_cagr = EXCLUDED.revenue_growth_3yr_cagr,
			earnings_growth_yoy = EXCLUDED.earnings_growth_yoy,
			debt_to_equity = EXCLUDED.debt_to_equity,
			net_debt_to_ebitda = EXCLUDED.net_debt_to_ebitda,
			current_ratio = EXCLUDED.current_ratio,
			short_percent_float = EXCLUDED.short_percent_float,
			short_ratio = EXCLUDED.short_ratio,
			pe_5yr_avg = EXCLUDED.pe_5yr_avg,
			ev_ebitda_5yr_avg = EXCLUDED.ev_ebitda_5yr_avg,
			gross_margin_5yr_avg = EXCLUDED.gross_margin_5yr_avg,
			operating_margin_5yr_avg = EXCLUDED.operating_margin_5yr_avg,
			net_margin_5yr_avg = EXCLUDED.net_margin_5yr_avg,
			roic_5yr_avg = EXCLUDED.roic_5yr_avg,
			roe_5yr_avg = EXCLUDED.roe_5yr_avg,
			forward_pe_vs_5yr_pct = EXCLUDED.forward_pe_vs_5yr_pct,
			ev_ebitda_vs_5yr_pct = EXCLUDED.ev_ebitda_vs_5yr_pct,
			gross_margin_vs_5yr_pct = EXCLUDED.gross_margin_vs_5yr_pct,
			operating_margin_vs_5yr_pct = EXCLUDED.operating_margin_vs_5yr_pct,
			roic_vs_5yr_pct = EXCLUDED.roic_vs_5yr_pct,
			roe_vs_5yr_pct = EXCLUDED.roe_vs_5yr_pct,
			computed_at = EXCLUDED.computed_at
		RETURNING id
	`

	return r.pool.QueryRow(ctx, query,
		snap.CompanyID, snap.Ticker, snap.Name, snap.Exchange,
		snap.Country, snap.Sector, snap.Industry,
		snap.MarketCap, snap.EnterpriseValue, snap.LastPrice,
		snap.PERatio, snap.ForwardPE,
		snap.PriceToSales, snap.PriceToBook, snap.EVToEBITDA, snap.EVToRevenue,
		snap.GrossMargin, snap.OperatingMargin, snap.NetMargin, snap.EBITDAMargin,
		snap.ROIC, snap.ROE, snap.ROA,
		snap.RevenueGrowthYoY, snap.RevenueGrowth3YrCAGR, snap.EarningsGrowthYoY,
		snap.DebtToEquity, snap.NetDebtToEBITDA, snap.CurrentRatio,
		snap.ShortPercentFloat, snap.ShortRatio,
		snap.PE5YrAvg, snap.EVEBITDA5YrAvg, snap.GrossMargin5YrAvg,
		snap.OperatingMargin5YrAvg, snap.NetMargin5YrAvg,
		snap.ROIC5YrAvg, snap.ROE5YrAvg,
		snap.ForwardPEVs5Yr, snap.EVEBITDAVs5Yr, snap.GrossMarginVs5Yr,
		snap.OperatingMarginVs5Yr, snap.ROICVs5Yr, snap.ROEVs5Yr,
		snap.ComputedAt,
	).Scan(&snap.ID)
}

// GetByCompanyID returns the company's snapshot, or contracts.ErrNotFound
// if it has never been composed.
func (r *SnapshotRepository) GetByCompanyID(ctx context.Context, companyID int) (*contracts.Snapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM screener_snapshots WHERE company_id = $1`

	var snap contracts.Snapshot
	if err := pgxscan.Get(ctx, r.pool, &snap, query, companyID); err != nil {
		if pgxscan.NotFound(err) {
			return nil, contracts.ErrNotFound
		}
		return nil, err
	}
	return &snap, nil
}

// UpdateQuote patches quote-derived fields in place. Null arguments keep
// the stored value, so a partial quote never erases an earlier one.
func (r *SnapshotRepository) UpdateQuote(ctx context.Context, companyID int, marketCap, lastPrice, peRatio null.Float) error {
	query := `
		UPDATE screener_snapshots
		SET market_cap = COALESCE($2, market_cap),
		    last_price = COALESCE($3, last_price),
		    pe_ratio = COALESCE($4, pe_ratio)
		WHERE company_id = $1
	`

	_, err := r.pool.Exec(ctx, query, companyID, marketCap, lastPrice, peRatio)
	return err
}

// Count returns the number of companies with a composed snapshot.
func (r *SnapshotRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM screener_snapshots`).Scan(&count)
	return count, err
}
