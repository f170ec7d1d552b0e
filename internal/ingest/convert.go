package ingest

import (
	"strconv"
	"strings"
	"time"

	"github.com/guregu/null/v5"

	"github.com/brandt/screener/backend/internal/contracts"
	"github.com/brandt/screener/backend/internal/external/fmp"
)

// parseDate reads the upstream date form, tolerating a trailing time
// component. Periods without a parsable date are unusable as series keys.
func parseDate(s string) (time.Time, bool) {
	if len(s) < 10 {
		return time.Time{}, false
	}
	d, err := time.Parse("2006-01-02", s[:10])
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// parseCalendarYear reads the upstream calendar year, which arrives as a
// string ("2024").
func parseCalendarYear(s string) null.Int {
	year, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return null.Int{}
	}
	return null.IntFrom(int64(year))
}

// incomeStatementRecord maps one upstream income period onto the stored
// shape. Returns false when the period has no usable date. revenue_growth
// starts null on every ingest and is recomputed from the stored series
// afterwards.
func incomeStatementRecord(companyID int, period string, item fmp.IncomeStatementData) (*contracts.IncomeStatement, bool) {
	date, ok := parseDate(item.Date)
	if !ok {
		return nil, false
	}

	return &contracts.IncomeStatement{
		CompanyID:            companyID,
		Date:                 date,
		Period:               period,
		CalendarYear:         parseCalendarYear(item.CalendarYear),
		Revenue:              item.Revenue,
		CostOfRevenue:        item.CostOfRevenue,
		GrossProfit:          item.GrossProfit,
		GrossProfitRatio:     item.GrossProfitRatio,
		OperatingIncome:      item.OperatingIncome,
		OperatingIncomeRatio: item.OperatingIncomeRatio,
		EBITDA:               item.EBITDA,
		EBITDARatio:          item.EBITDARatio,
		NetIncome:            item.NetIncome,
		NetIncomeRatio:       item.NetIncomeRatio,
	}, true
}

// keyMetricsRecord maps one upstream key-metrics period onto the stored
// shape. Returns false when the period has no usable date.
func keyMetricsRecord(companyID int, period string, item fmp.KeyMetricsData) (*contracts.KeyMetrics, bool) {
	date, ok := parseDate(item.Date)
	if !ok {
		return nil, false
	}

	// FMP key metrics rarely carry a forward estimate; zero means absent
	// upstream, so trailing P/E stands in.
	forwardPE := item.ForwardPE
	if !forwardPE.Valid || forwardPE.Float64 == 0 {
		forwardPE = item.PERatio
	}

	return &contracts.KeyMetrics{
		CompanyID:            companyID,
		Date:                 date,
		Period:               period,
		CalendarYear:         parseCalendarYear(item.CalendarYear),
		PERatio:              item.PERatio,
		ForwardPE:            forwardPE,
		PriceToSales:         item.PriceToSalesRatio,
		PriceToBook:          item.PBRatio,
		EVToEBITDA:           item.EnterpriseValueOverEBITDA,
		EVToRevenue:          item.EVToRevenue,
		EnterpriseValue:      item.EnterpriseValue,
		MarketCap:            item.MarketCap,
		ROIC:                 item.ROIC,
		ROE:                  item.ROE,
		ROA:                  item.ReturnOnAssets,
		RevenuePerShare:      item.RevenuePerShare,
		EarningsYield:        item.EarningsYield,
		FreeCashFlowPerShare: item.FreeCashFlowPerShare,
		BookValuePerShare:    item.BookValuePerShare,
		DividendYield:        item.DividendYield,
		DebtToEquity:         item.DebtToEquity,
		NetDebtToEBITDA:      item.NetDebtToEBITDA,
		CurrentRatio:         item.CurrentRatio,
		InterestCoverage:     item.InterestCoverage,
	}, true
}

// keepListing reports whether a stock-list row belongs in the screening
// universe: a named listing of type "stock" (or untyped) on one of the
// target exchanges.
func keepListing(item fmp.StockListItem, targetExchanges map[string]bool) bool {
	if item.Symbol == "" || item.ExchangeShortName == "" {
		return false
	}
	if item.Type != "" && item.Type != "stock" {
		return false
	}
	return targetExchanges[item.ExchangeShortName]
}

// chunk splits tickers into batches of at most size.
func chunk(tickers []string, size int) [][]string {
	if size < 1 || len(tickers) == 0 {
		return nil
	}

	batches := make([][]string, 0, (len(tickers)+size-1)/size)
	for start := 0; start < len(tickers); start += size {
		end := start + size
		if end > len(tickers) {
			end = len(tickers)
		}
		batches = append(batches, tickers[start:end])
	}
	return batches
}
