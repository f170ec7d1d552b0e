package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/guregu/null/v5"

	"github.com/brandt/screener/backend/internal/contracts"
	"github.com/brandt/screener/backend/pkg/logger"
)

// growthPeriods is how many recent income periods feed the growth figures:
// YoY needs 2, the 3-year CAGR needs 4.
const growthPeriods = 4

// Composer builds the denormalized screening snapshot for one company from
// its income-statement and key-metrics series and upserts it, whole-record,
// into the snapshot store. It reads the statement stores and writes the
// snapshot store, nothing else.
type Composer struct {
	income    contracts.IncomeStatementRepository
	metrics   contracts.KeyMetricsRepository
	snapshots contracts.SnapshotRepository
	logger    *logger.Logger
}

// NewComposer creates a new snapshot composer.
func NewComposer(
	income contracts.IncomeStatementRepository,
	metrics contracts.KeyMetricsRepository,
	snapshots contracts.SnapshotRepository,
	log *logger.Logger,
) *Composer {
	return &Composer{
		income:    income,
		metrics:   metrics,
		snapshots: snapshots,
		logger:    log,
	}
}

// Compose recomputes and stores the snapshot for one company. A company
// with no annual income statements and no annual key metrics is skipped
// without a write and without an error. Rerunning with unchanged series
// produces an identical snapshot except for computed_at.
func (c *Composer) Compose(ctx context.Context, company *contracts.Company) error {
	incomeRows, err := c.income.ListByCompany(ctx, company.ID, contracts.PeriodAnnual)
	if err != nil {
		return fmt.Errorf("load income statements for %s: %w", company.Ticker, err)
	}

	metricRows, err := c.metrics.ListByCompany(ctx, company.ID, contracts.PeriodAnnual)
	if err != nil {
		return fmt.Errorf("load key metrics for %s: %w", company.Ticker, err)
	}

	if len(incomeRows) == 0 && len(metricRows) == 0 {
		c.logger.WithField("ticker", company.Ticker).Debug("No statement history, skipping snapshot")
		return nil
	}

	snap := c.build(company, incomeRows, metricRows)
	if err := c.snapshots.Upsert(ctx, snap); err != nil {
		return fmt.Errorf("upsert snapshot for %s: %w", company.Ticker, err)
	}

	c.logger.WithField("ticker", company.Ticker).Debug("Snapshot composed")
	return nil
}

// build assembles the full snapshot record in memory. Both series are
// ordered date-descending; either may be empty, and their dates and
// lengths are independent of each other.
func (c *Composer) build(company *contracts.Company, incomeRows []contracts.IncomeStatement, metricRows []contracts.KeyMetrics) *contracts.Snapshot {
	// An absent latest row behaves exactly like a present row whose fields
	// are all null, so the zero value stands in for "no data on this side".
	var latestIncome contracts.IncomeStatement
	if len(incomeRows) > 0 {
		latestIncome = incomeRows[0]
	}
	var latestMetric contracts.KeyMetrics
	if len(metricRows) > 0 {
		latestMetric = metricRows[0]
	}

	// 1. Baseline averages: metric-derived from the metric window,
	//    margin averages from the income window.
	peAvg := Baseline(metricValues(metricRows, func(m contracts.KeyMetrics) null.Float { return m.PERatio }))
	evEBITDAAvg := Baseline(metricValues(metricRows, func(m contracts.KeyMetrics) null.Float { return m.EVToEBITDA }))
	roicAvg := Baseline(metricValues(metricRows, func(m contracts.KeyMetrics) null.Float { return m.ROIC }))
	roeAvg := Baseline(metricValues(metricRows, func(m contracts.KeyMetrics) null.Float { return m.ROE }))
	grossAvg := Baseline(incomeValues(incomeRows, func(s contracts.IncomeStatement) null.Float { return s.GrossProfitRatio }))
	operatingAvg := Baseline(incomeValues(incomeRows, func(s contracts.IncomeStatement) null.Float { return s.OperatingIncomeRatio }))
	netAvg := Baseline(incomeValues(incomeRows, func(s contracts.IncomeStatement) null.Float { return s.NetIncomeRatio }))

	// 2. Growth figures from the most recent income periods.
	growthRows := incomeRows
	if len(growthRows) > growthPeriods {
		growthRows = growthRows[:growthPeriods]
	}
	revenueYoY := RevenueGrowthYoY(growthRows)
	revenue3Yr := RevenueGrowth3YrCAGR(growthRows)
	earningsYoY := EarningsGrowthYoY(growthRows)

	// 3. Deviations from baseline. The forward-P/E deviation substitutes
	//    trailing P/E when no forward estimate exists; many sources omit
	//    forward figures and trailing P/E still detects mean reversion.
	peCurrent := latestMetric.ForwardPE
	if !peCurrent.Valid {
		peCurrent = latestMetric.PERatio
	}

	return &contracts.Snapshot{
		CompanyID: company.ID,

		Ticker:   company.Ticker,
		Name:     company.Name,
		Exchange: company.ExchangeShort,
		Country:  company.Country,
		Sector:   company.Sector,
		Industry: company.Industry,

		MarketCap:       latestMetric.MarketCap,
		EnterpriseValue: latestMetric.EnterpriseValue,
		PERatio:         latestMetric.PERatio,
		ForwardPE:       latestMetric.ForwardPE,
		PriceToSales:    latestMetric.PriceToSales,
		PriceToBook:     latestMetric.PriceToBook,
		EVToEBITDA:      latestMetric.EVToEBITDA,
		EVToRevenue:     latestMetric.EVToRevenue,

		GrossMargin:     latestIncome.GrossProfitRatio,
		OperatingMargin: latestIncome.OperatingIncomeRatio,
		NetMargin:       latestIncome.NetIncomeRatio,
		EBITDAMargin:    latestIncome.EBITDARatio,

		ROIC: latestMetric.ROIC,
		ROE:  latestMetric.ROE,
		ROA:  latestMetric.ROA,

		RevenueGrowthYoY:     revenueYoY,
		RevenueGrowth3YrCAGR: revenue3Yr,
		EarningsGrowthYoY:    earningsYoY,

		DebtToEquity:    latestMetric.DebtToEquity,
		NetDebtToEBITDA: latestMetric.NetDebtToEBITDA,
		CurrentRatio:    latestMetric.CurrentRatio,

		PE5YrAvg:              peAvg,
		EVEBITDA5YrAvg:        evEBITDAAvg,
		GrossMargin5YrAvg:     grossAvg,
		OperatingMargin5YrAvg: operatingAvg,
		NetMargin5YrAvg:       netAvg,
		ROIC5YrAvg:            roicAvg,
		ROE5YrAvg:             roeAvg,

		ForwardPEVs5Yr:       PercentVsAverage(peCurrent, peAvg),
		EVEBITDAVs5Yr:        PercentVsAverage(latestMetric.EVToEBITDA, evEBITDAAvg),
		GrossMarginVs5Yr:     PercentVsAverage(latestIncome.GrossProfitRatio, grossAvg),
		OperatingMarginVs5Yr: PercentVsAverage(latestIncome.OperatingIncomeRatio, operatingAvg),
		ROICVs5Yr:            PercentVsAverage(latestMetric.ROIC, roicAvg),
		ROEVs5Yr:             PercentVsAverage(latestMetric.ROE, roeAvg),

		ComputedAt: time.Now().UTC(),
	}
}

// incomeValues extracts one field across an income series, preserving order.
func incomeValues(rows []contracts.IncomeStatement, field func(contracts.IncomeStatement) null.Float) []null.Float {
	values := make([]null.Float, len(rows))
	for i, r := range rows {
		values[i] = field(r)
	}
	return values
}

// metricValues extracts one field across a key-metrics series, preserving order.
func metricValues(rows []contracts.KeyMetrics, field func(contracts.KeyMetrics) null.Float) []null.Float {
	values := make([]null.Float, len(rows))
	for i, r := range rows {
		values[i] = field(r)
	}
	return values
}
