package contracts

import (
	"time"

	"github.com/guregu/null/v5"
)

// Statement period kinds. Only annual periods feed the snapshot pipeline;
// quarterly rows are stored but not aggregated.
const (
	PeriodAnnual  = "annual"
	PeriodQuarter = "quarter"
)

// IncomeStatement is one reported income-statement period for a company.
// Identity is (company_id, date, period). Every numeric field is nullable;
// upstream data is frequently incomplete and zero is a legitimate value,
// never a stand-in for "missing".
type IncomeStatement struct {
	ID           int       `json:"id" db:"id"`
	CompanyID    int       `json:"company_id" db:"company_id"`
	Date         time.Time `json:"date" db:"date"`
	Period       string    `json:"period" db:"period"`
	CalendarYear null.Int  `json:"calendar_year" db:"calendar_year"`

	Revenue              null.Float `json:"revenue" db:"revenue"`
	CostOfRevenue        null.Float `json:"cost_of_revenue" db:"cost_of_revenue"`
	GrossProfit          null.Float `json:"gross_profit" db:"gross_profit"`
	GrossProfitRatio     null.Float `json:"gross_profit_ratio" db:"gross_profit_ratio"`
	OperatingIncome      null.Float `json:"operating_income" db:"operating_income"`
	OperatingIncomeRatio null.Float `json:"operating_income_ratio" db:"operating_income_ratio"`
	EBITDA               null.Float `json:"ebitda" db:"ebitda"`
	EBITDARatio          null.Float `json:"ebitda_ratio" db:"ebitda_ratio"`
	NetIncome            null.Float `json:"net_income" db:"net_income"`
	NetIncomeRatio       null.Float `json:"net_income_ratio" db:"net_income_ratio"`
	RevenueGrowth        null.Float `json:"revenue_growth" db:"revenue_growth"`
}

// KeyMetrics is one reported key-metrics period for a company.
// Identity is (company_id, date, period); same nullability rules as
// IncomeStatement.
type KeyMetrics struct {
	ID           int       `json:"id" db:"id"`
	CompanyID    int       `json:"company_id" db:"company_id"`
	Date         time.Time `json:"date" db:"date"`
	Period       string    `json:"period" db:"period"`
	CalendarYear null.Int  `json:"calendar_year" db:"calendar_year"`

	PERatio         null.Float `json:"pe_ratio" db:"pe_ratio"`
	ForwardPE       null.Float `json:"forward_pe" db:"forward_pe"`
	PriceToSales    null.Float `json:"price_to_sales" db:"price_to_sales"`
	PriceToBook     null.Float `json:"price_to_book" db:"price_to_book"`
	EVToEBITDA      null.Float `json:"ev_to_ebitda" db:"ev_to_ebitda"`
	EVToRevenue     null.Float `json:"ev_to_revenue" db:"ev_to_revenue"`
	EnterpriseValue null.Float `json:"enterprise_value" db:"enterprise_value"`
	MarketCap       null.Float `json:"market_cap" db:"market_cap"`

	ROIC null.Float `json:"roic" db:"roic"`
	ROE  null.Float `json:"roe" db:"roe"`
	ROA  null.Float `json:"roa" db:"roa"`

	RevenuePerShare      null.Float `json:"revenue_per_share" db:"revenue_per_share"`
	EarningsYield        null.Float `json:"earnings_yield" db:"earnings_yield"`
	FreeCashFlowPerShare null.Float `json:"free_cash_flow_per_share" db:"free_cash_flow_per_share"`
	BookValuePerShare    null.Float `json:"book_value_per_share" db:"book_value_per_share"`
	DividendYield        null.Float `json:"dividend_yield" db:"dividend_yield"`

	DebtToEquity     null.Float `json:"debt_to_equity" db:"debt_to_equity"`
	NetDebtToEBITDA  null.Float `json:"net_debt_to_ebitda" db:"net_debt_to_ebitda"`
	CurrentRatio     null.Float `json:"current_ratio" db:"current_ratio"`
	InterestCoverage null.Float `json:"interest_coverage" db:"interest_coverage"`
}
