package screener

// FieldKind tells the filter builder and the frontend how to treat a
// field's values.
type FieldKind string

const (
	KindString FieldKind = "string"
	KindNumber FieldKind = "number"
)

// Display formats the frontend applies to number fields. The server never
// formats values itself.
const (
	FormatCurrencyCompact = "currency_compact"
	FormatDecimal2        = "decimal2"
	FormatPercent         = "percent"
	FormatPercentChange   = "percent_change"
)

// FieldDef describes one screenable snapshot column.
type FieldDef struct {
	Label  string    `json:"label"`
	Kind   FieldKind `json:"type"`
	Format string    `json:"format,omitempty"`
}

// Fields is the static catalog of screenable fields, keyed by column name.
// It is the only place a request field name can resolve to a column, so
// nothing user-supplied is ever spliced into SQL. GET /api/fields serves
// this map verbatim for the frontend to build its filter UI.
var Fields = map[string]FieldDef{
	// Identifiers
	"ticker":   {Label: "Ticker", Kind: KindString},
	"name":     {Label: "Company Name", Kind: KindString},
	"exchange": {Label: "Exchange", Kind: KindString},
	"country":  {Label: "Country", Kind: KindString},
	"sector":   {Label: "Sector", Kind: KindString},
	"industry": {Label: "Industry", Kind: KindString},

	// Valuation
	"market_cap":       {Label: "Market Cap", Kind: KindNumber, Format: FormatCurrencyCompact},
	"enterprise_value": {Label: "Enterprise Value", Kind: KindNumber, Format: FormatCurrencyCompact},
	"pe_ratio":         {Label: "P/E Ratio (TTM)", Kind: KindNumber, Format: FormatDecimal2},
	"forward_pe":       {Label: "Forward P/E", Kind: KindNumber, Format: FormatDecimal2},
	"price_to_sales":   {Label: "Price/Sales", Kind: KindNumber, Format: FormatDecimal2},
	"price_to_book":    {Label: "Price/Book", Kind: KindNumber, Format: FormatDecimal2},
	"ev_to_ebitda":     {Label: "EV/EBITDA", Kind: KindNumber, Format: FormatDecimal2},
	"ev_to_revenue":    {Label: "EV/Revenue", Kind: KindNumber, Format: FormatDecimal2},

	// Profitability
	"gross_margin":     {Label: "Gross Margin", Kind: KindNumber, Format: FormatPercent},
	"operating_margin": {Label: "Operating Margin", Kind: KindNumber, Format: FormatPercent},
	"net_margin":       {Label: "Net Margin", Kind: KindNumber, Format: FormatPercent},
	"ebitda_margin":    {Label: "EBITDA Margin", Kind: KindNumber, Format: FormatPercent},

	// Returns
	"roic": {Label: "ROIC", Kind: KindNumber, Format: FormatPercent},
	"roe":  {Label: "ROE", Kind: KindNumber, Format: FormatPercent},
	"roa":  {Label: "ROA", Kind: KindNumber, Format: FormatPercent},

	// Growth
	"revenue_growth_yoy":      {Label: "Revenue Growth (YoY)", Kind: KindNumber, Format: FormatPercent},
	"revenue_growth_3yr_cagr": {Label: "Revenue Growth (3yr CAGR)", Kind: KindNumber, Format: FormatPercent},
	"earnings_growth_yoy":     {Label: "Earnings Growth (YoY)", Kind: KindNumber, Format: FormatPercent},

	// Balance sheet
	"debt_to_equity":     {Label: "Debt/Equity", Kind: KindNumber, Format: FormatDecimal2},
	"net_debt_to_ebitda": {Label: "Net Debt/EBITDA", Kind: KindNumber, Format: FormatDecimal2},
	"current_ratio":      {Label: "Current Ratio", Kind: KindNumber, Format: FormatDecimal2},

	// Short interest
	"short_percent_float": {Label: "Short % Float", Kind: KindNumber, Format: FormatPercent},
	"short_ratio":         {Label: "Short Ratio", Kind: KindNumber, Format: FormatDecimal2},

	// Historical averages
	"pe_5yr_avg":               {Label: "P/E (5yr Avg)", Kind: KindNumber, Format: FormatDecimal2},
	"ev_ebitda_5yr_avg":        {Label: "EV/EBITDA (5yr Avg)", Kind: KindNumber, Format: FormatDecimal2},
	"gross_margin_5yr_avg":     {Label: "Gross Margin (5yr Avg)", Kind: KindNumber, Format: FormatPercent},
	"operating_margin_5yr_avg": {Label: "Op. Margin (5yr Avg)", Kind: KindNumber, Format: FormatPercent},
	"net_margin_5yr_avg":       {Label: "Net Margin (5yr Avg)", Kind: KindNumber, Format: FormatPercent},
	"roic_5yr_avg":             {Label: "ROIC (5yr Avg)", Kind: KindNumber, Format: FormatPercent},
	"roe_5yr_avg":              {Label: "ROE (5yr Avg)", Kind: KindNumber, Format: FormatPercent},

	// Percent vs historical average
	"forward_pe_vs_5yr_pct":       {Label: "Forward P/E vs 5yr Avg (%)", Kind: KindNumber, Format: FormatPercentChange},
	"ev_ebitda_vs_5yr_pct":        {Label: "EV/EBITDA vs 5yr Avg (%)", Kind: KindNumber, Format: FormatPercentChange},
	"gross_margin_vs_5yr_pct":     {Label: "Gross Margin vs 5yr Avg (%)", Kind: KindNumber, Format: FormatPercentChange},
	"operating_margin_vs_5yr_pct": {Label: "Op. Margin vs 5yr Avg (%)", Kind: KindNumber, Format: FormatPercentChange},
	"roic_vs_5yr_pct":             {Label: "ROIC vs 5yr Avg (%)", Kind: KindNumber, Format: FormatPercentChange},
	"roe_vs_5yr_pct":              {Label: "ROE vs 5yr Avg (%)", Kind: KindNumber, Format: FormatPercentChange},
}
