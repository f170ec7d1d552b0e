package fundamentals

import (
	"context"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/guregu/null/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brandt/screener/backend/internal/contracts"
)

// IncomeStatementRepository implements contracts.IncomeStatementRepository
// on Postgres.
type IncomeStatementRepository struct {
	pool *pgxpool.Pool
}

// NewIncomeStatementRepository creates a new income-statement repository.
func NewIncomeStatementRepository(pool *pgxpool.Pool) *IncomeStatementRepository {
	return &IncomeStatementRepository{pool: pool}
}

// Upsert writes one period keyed by (company_id, date, period). A conflict
// overwrites every value field so later upstream corrections replace
// earlier preliminary figures in place. The stored revenue_growth is
// overwritten too and recomputed by the ingestion pass afterwards.
func (r *IncomeStatementRepository) Upsert(ctx context.Context, stmt *contracts.IncomeStatement) error {
	query := `
		INSERT INTO income_statements (
			company_id, date, period, calendar_year,
			revenue, cost_of_revenue, gross_profit, gross_profit_ratio,
			operating_income, operating_income_ratio, ebitda, ebitda_ratio,
			net_income, net_income_ratio, revenue_growth
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (company_id, date, period) DO UPDATE SET
			calendar_year = EXCLUDED.calendar_year,
			revenue = EXCLUDED.revenue,
			cost_of_revenue = EXCLUDED.cost_of_revenue,
			gross_profit = EXCLUDED.gross_profit,
			gross_profit_ratio = EXCLUDED.gross_profit_ratio,
			operating_income = EXCLUDED.operating_income,
			operating_income_ratio = EXCLUDED.operating_income_ratio,
			ebitda = EXCLUDED.ebitda,
			ebitda_ratio = EXCLUDED.ebitda_ratio,
			net_income = EXCLUDED.net_income,
			net_income_ratio = EXCLUDED.net_income_ratio,
			revenue_growth = EXCLUDED.revenue_growth
		RETURNING id
	`

	return r.pool.QueryRow(ctx, query,
		stmt.CompanyID, stmt.Date, stmt.Period, stmt.CalendarYear,
		stmt.Revenue, stmt.CostOfRevenue, stmt.GrossProfit, stmt.GrossProfitRatio,
		stmt.OperatingIncome, stmt.OperatingIncomeRatio, stmt.EBITDA, stmt.EBITDARatio,
		stmt.NetIncome, stmt.NetIncomeRatio, stmt.RevenueGrowth,
	).Scan(&stmt.ID)
}

// ListByCompany returns one company's series for a period kind, newest
// first. The snapshot pipeline depends on this ordering.
func (r *IncomeStatementRepository) ListByCompany(ctx context.Context, companyID int, period string) ([]contracts.IncomeStatement, error) {
	query := `
		SELECT id, company_id, date, period, calendar_year,
		       revenue, cost_of_revenue, gross_profit, gross_profit_ratio,
		       operating_income, operating_income_ratio, ebitda, ebitda_ratio,
		       net_income, net_income_ratio, revenue_growth
		FROM income_statements
		WHERE company_id = $1 AND period = $2
		ORDER BY date DESC
	`

	var stmts []contracts.IncomeStatement
	if err := pgxscan.Select(ctx, r.pool, &stmts, query, companyID, period); err != nil {
		return nil, err
	}
	return stmts, nil
}

// UpdateRevenueGrowth sets the stored per-row YoY revenue growth.
func (r *IncomeStatementRepository) UpdateRevenueGrowth(ctx context.Context, id int, growth null.Float) error {
	_, err := r.pool.Exec(ctx, `UPDATE income_statements SET revenue_growth = $2 WHERE id = $1`, id, growth)
	return err
}
