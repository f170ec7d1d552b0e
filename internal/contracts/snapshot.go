package contracts

import (
	"time"

	"github.com/guregu/null/v5"
)

// Snapshot is the denormalized screening record, one row per company:
// current values, 5-year trailing averages, percent-vs-average deviations
// and growth figures. It is a pure projection of the company's statement
// series and is fully replaced on every recomputation; it is never a
// source of truth.
type Snapshot struct {
	ID        int `json:"-" db:"id"`
	CompanyID int `json:"-" db:"company_id"`

	// Denormalized company descriptors. Exchange carries the short code.
	Ticker   string `json:"ticker" db:"ticker"`
	Name     string `json:"name" db:"name"`
	Exchange string `json:"exchange" db:"exchange"`
	Country  string `json:"country" db:"country"`
	Sector   string `json:"sector" db:"sector"`
	Industry string `json:"industry" db:"industry"`

	// Current valuation
	MarketCap       null.Float `json:"market_cap" db:"market_cap"`
	EnterpriseValue null.Float `json:"enterprise_value" db:"enterprise_value"`
	LastPrice       null.Float `json:"last_price" db:"last_price"`
	PERatio         null.Float `json:"pe_ratio" db:"pe_ratio"`
	ForwardPE       null.Float `json:"forward_pe" db:"forward_pe"`
	PriceToSales    null.Float `json:"price_to_sales" db:"price_to_sales"`
	PriceToBook     null.Float `json:"price_to_book" db:"price_to_book"`
	EVToEBITDA      null.Float `json:"ev_to_ebitda" db:"ev_to_ebitda"`
	EVToRevenue     null.Float `json:"ev_to_revenue" db:"ev_to_revenue"`

	// Current profitability (decimals, 0.45 = 45%)
	GrossMargin     null.Float `json:"gross_margin" db:"gross_margin"`
	OperatingMargin null.Float `json:"operating_margin" db:"operating_margin"`
	NetMargin       null.Float `json:"net_margin" db:"net_margin"`
	EBITDAMargin    null.Float `json:"ebitda_margin" db:"ebitda_margin"`

	// Current returns
	ROIC null.Float `json:"roic" db:"roic"`
	ROE  null.Float `json:"roe" db:"roe"`
	ROA  null.Float `json:"roa" db:"roa"`

	// Growth
	RevenueGrowthYoY     null.Float `json:"revenue_growth_yoy" db:"revenue_growth_yoy"`
	RevenueGrowth3YrCAGR null.Float `json:"revenue_growth_3yr_cagr" db:"revenue_growth_3yr_cagr"`
	EarningsGrowthYoY    null.Float `json:"earnings_growth_yoy" db:"earnings_growth_yoy"`

	// Balance sheet
	DebtToEquity    null.Float `json:"debt_to_equity" db:"debt_to_equity"`
	NetDebtToEBITDA null.Float `json:"net_debt_to_ebitda" db:"net_debt_to_ebitda"`
	CurrentRatio    null.Float `json:"current_ratio" db:"current_ratio"`

	// Short interest (when available)
	ShortPercentFloat null.Float `json:"short_percent_float" db:"short_percent_float"`
	ShortRatio        null.Float `json:"short_ratio" db:"short_ratio"`

	// 5-year historical averages
	PE5YrAvg              null.Float `json:"pe_5yr_avg" db:"pe_5yr_avg"`
	EVEBITDA5YrAvg        null.Float `json:"ev_ebitda_5yr_avg" db:"ev_ebitda_5yr_avg"`
	GrossMargin5YrAvg     null.Float `json:"gross_margin_5yr_avg" db:"gross_margin_5yr_avg"`
	OperatingMargin5YrAvg null.Float `json:"operating_margin_5yr_avg" db:"operating_margin_5yr_avg"`
	NetMargin5YrAvg       null.Float `json:"net_margin_5yr_avg" db:"net_margin_5yr_avg"`
	ROIC5YrAvg            null.Float `json:"roic_5yr_avg" db:"roic_5yr_avg"`
	ROE5YrAvg             null.Float `json:"roe_5yr_avg" db:"roe_5yr_avg"`

	// Percent vs 5-year average (0.20 = 20% above average)
	ForwardPEVs5Yr       null.Float `json:"forward_pe_vs_5yr_pct" db:"forward_pe_vs_5yr_pct"`
	EVEBITDAVs5Yr        null.Float `json:"ev_ebitda_vs_5yr_pct" db:"ev_ebitda_vs_5yr_pct"`
	GrossMarginVs5Yr     null.Float `json:"gross_margin_vs_5yr_pct" db:"gross_margin_vs_5yr_pct"`
	OperatingMarginVs5Yr null.Float `json:"operating_margin_vs_5yr_pct" db:"operating_margin_vs_5yr_pct"`
	ROICVs5Yr            null.Float `json:"roic_vs_5yr_pct" db:"roic_vs_5yr_pct"`
	ROEVs5Yr             null.Float `json:"roe_vs_5yr_pct" db:"roe_vs_5yr_pct"`

	ComputedAt time.Time `json:"computed_at" db:"computed_at"`
}
