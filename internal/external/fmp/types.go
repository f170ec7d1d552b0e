package fmp

import "github.com/guregu/null/v5"

// StockListItem is one row of the FMP /v3/stock/list response.
type StockListItem struct {
	Symbol            string     `json:"symbol"`
	Name              string     `json:"name"`
	Price             null.Float `json:"price"`
	Exchange          string     `json:"exchange"`
	ExchangeShortName string     `json:"exchangeShortName"`
	Type              string     `json:"type"`
}

// CompanyProfile is the FMP /v3/profile response (FMP wraps it in a
// one-element array).
type CompanyProfile struct {
	Symbol            string     `json:"symbol"`
	CompanyName       string     `json:"companyName"`
	Currency          string     `json:"currency"`
	Exchange          string     `json:"exchange"`
	ExchangeShortName string     `json:"exchangeShortName"`
	Country           string     `json:"country"`
	Sector            string     `json:"sector"`
	Industry          string     `json:"industry"`
	MarketCap         null.Float `json:"mktCap"`
	Price             null.Float `json:"price"`
}

// IncomeStatementData is one period of the FMP /v3/income-statement
// response. CalendarYear arrives as a string ("2024"); the ebitda ratio
// key really is all lowercase upstream.
type IncomeStatementData struct {
	Symbol               string     `json:"symbol"`
	Date                 string     `json:"date"`
	Period               string     `json:"period"`
	CalendarYear         string     `json:"calendarYear"`
	Revenue              null.Float `json:"revenue"`
	CostOfRevenue        null.Float `json:"costOfRevenue"`
	GrossProfit          null.Float `json:"grossProfit"`
	GrossProfitRatio     null.Float `json:"grossProfitRatio"`
	OperatingIncome      null.Float `json:"operatingIncome"`
	OperatingIncomeRatio null.Float `json:"operatingIncomeRatio"`
	EBITDA               null.Float `json:"ebitda"`
	EBITDARatio          null.Float `json:"ebitdaratio"`
	NetIncome            null.Float `json:"netIncome"`
	NetIncomeRatio       null.Float `json:"netIncomeRatio"`
}

// KeyMetricsData is one period of the FMP /v3/key-metrics response.
type KeyMetricsData struct {
	Symbol                    string     `json:"symbol"`
	Date                      string     `json:"date"`
	Period                    string     `json:"period"`
	CalendarYear              string     `json:"calendarYear"`
	PERatio                   null.Float `json:"peRatio"`
	ForwardPE                 null.Float `json:"forwardPE"`
	PriceToSalesRatio         null.Float `json:"priceToSalesRatio"`
	PBRatio                   null.Float `json:"pbRatio"`
	EnterpriseValueOverEBITDA null.Float `json:"enterpriseValueOverEBITDA"`
	EVToRevenue               null.Float `json:"evToRevenue"`
	EnterpriseValue           null.Float `json:"enterpriseValue"`
	MarketCap                 null.Float `json:"marketCap"`
	ROIC                      null.Float `json:"roic"`
	ROE                       null.Float `json:"roe"`
	ReturnOnAssets            null.Float `json:"returnOnAssets"`
	RevenuePerShare           null.Float `json:"revenuePerShare"`
	EarningsYield             null.Float `json:"earningsYield"`
	FreeCashFlowPerShare      null.Float `json:"freeCashFlowPerShare"`
	BookValuePerShare         null.Float `json:"bookValuePerShare"`
	DividendYield             null.Float `json:"dividendYield"`
	DebtToEquity              null.Float `json:"debtToEquity"`
	NetDebtToEBITDA           null.Float `json:"netDebtToEBITDA"`
	CurrentRatio              null.Float `json:"currentRatio"`
	InterestCoverage          null.Float `json:"interestCoverage"`
}

// Quote is one row of the FMP /v3/quote batch response.
type Quote struct {
	Symbol    string     `json:"symbol"`
	Name      string     `json:"name"`
	Exchange  string     `json:"exchange"`
	Price     null.Float `json:"price"`
	MarketCap null.Float `json:"marketCap"`
	PE        null.Float `json:"pe"`
}
