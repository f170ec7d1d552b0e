package fundamentals

import (
	"context"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brandt/screener/backend/internal/contracts"
)

// KeyMetricsRepository implements contracts.KeyMetricsRepository on Postgres.
type KeyMetricsRepository struct {
	pool *pgxpool.Pool
}

// NewKeyMetricsRepository creates a new key-metrics repository.
func NewKeyMetricsRepository(pool *pgxpool.Pool) *KeyMetricsRepository {
	return &KeyMetricsRepository{pool: pool}
}

// Upsert writes one period keyed by (company_id, date, period),
// overwriting every value field on conflict.
func (r *KeyMetricsRepository) Upsert(ctx context.Context, m *contracts.KeyMetrics) error {
	query := `
		INSERT INTO key_metrics (
			company_id, date, period, calendar_year,
			pe_ratio, forward_pe, price_to_sales, price_to_book,
			ev_to_ebitda, ev_to_revenue, enterprise_value, market_cap,
			roic, roe, roa,
			revenue_per_share, earnings_yield, free_cash_flow_per_share,
			book_value_per_share, dividend_yield,
			debt_to_equity, net_debt_to_ebitda, current_ratio, interest_coverage
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
		          $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
		ON CONFLICT (company_id, date, period) DO UPDATE SET
			calendar_year = EXCLUDED.calendar_year,
			pe_ratio = EXCLUDED.pe_ratio,
			forward_pe = EXCLUDED.forward_pe,
			price_to_sales = EXCLUDED.price_to_sales,
			price_to_book = EXCLUDED.price_to_book,
			ev_to_ebitda = EXCLUDED.ev_to_ebitda,
			ev_to_revenue = EXCLUDED.ev_to_revenue,
			enterprise_value = EXCLUDED.enterprise_value,
			market_cap = EXCLUDED.market_cap,
			roic = EXCLUDED.roic,
			roe = EXCLUDED.roe,
			roa = EXCLUDED.roa,
			revenue_per_share = EXCLUDED.revenue_per_share,
			earnings_yield = EXCLUDED.earnings_yield,
			free_cash_flow_per_share = EXCLUDED.free_cash_flow_per_share,
			book_value_per_share = EXCLUDED.book_value_per_share,
			dividend_yield = EXCLUDED.dividend_yield,
			debt_to_equity = EXCLUDED.debt_to_equity,
			net_debt_to_ebitda = EXCLUDED.net_debt_to_ebitda,
			current_ratio = EXCLUDED.current_ratio,
			interest_coverage = EXCLUDED.interest_coverage
		RETURNING id
	`

	return r.pool.QueryRow(ctx, query,
		m.CompanyID, m.Date, m.Period, m.CalendarYear,
		m.PERatio, m.ForwardPE, m.PriceToSales, m.PriceToBook,
		m.EVToEBITDA, m.EVToRevenue, m.EnterpriseValue, m.MarketCap,
		m.ROIC, m.ROE, m.ROA,
		m.RevenuePerShare, m.EarningsYield, m.FreeCashFlowPerShare,
		m.BookValuePerShare, m.DividendYield,
		m.DebtToEquity, m.NetDebtToEBITDA, m.CurrentRatio, m.InterestCoverage,
	).Scan(&m.ID)
}

// ListByCompany returns one company's series for a period kind, newest
// first. The snapshot pipeline depends on this ordering.
func (r *KeyMetricsRepository) ListByCompany(ctx context.Context, companyID int, period string) ([]contracts.KeyMetrics, error) {
	query := `
		SELECT id, company_id, date, period, calendar_year,
		       pe_ratio, forward_pe, price_to_sales, price_to_book,
		       ev_to_ebitda, ev_to_revenue, enterprise_value, market_cap,
		       roic, roe, roa,
		       revenue_per_share, earnings_yield, free_cash_flow_per_share,
		       book_value_per_share, dividend_yield,
		       debt_to_equity, net_debt_to_ebitda, current_ratio, interest_coverage
		FROM key_metrics
		WHERE company_id = $1 AND period = $2
		ORDER BY date DESC
	`

	var metrics []contracts.KeyMetrics
	if err := pgxscan.Select(ctx, r.pool, &metrics, query, companyID, period); err != nil {
		return nil, err
	}
	return metrics, nil
}
