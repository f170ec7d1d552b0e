package ingest

import (
	"context"
	"fmt"
	"sync"

	"github.com/brandt/screener/backend/internal/contracts"
	"github.com/brandt/screener/backend/internal/external/fmp"
	"github.com/brandt/screener/backend/internal/snapshot"
	"github.com/brandt/screener/backend/pkg/config"
	"github.com/brandt/screener/backend/pkg/logger"
)

// MarketData is the slice of the upstream market-data API the ingestion
// pipeline consumes.
type MarketData interface {
	StockList(ctx context.Context) ([]fmp.StockListItem, error)
	Profile(ctx context.Context, ticker string) (*fmp.CompanyProfile, error)
	IncomeStatements(ctx context.Context, ticker, period string, limit int) ([]fmp.IncomeStatementData, error)
	KeyMetrics(ctx context.Context, ticker, period string, limit int) ([]fmp.KeyMetricsData, error)
	BatchQuotes(ctx context.Context, tickers []string) ([]fmp.Quote, error)
}

// Orchestrator drives the two ingestion entry points: the full pipeline
// (universe sync, statement history, snapshot composition) and the
// incremental quote refresh.
type Orchestrator struct {
	cfg       config.IngestConfig
	market    MarketData
	companies contracts.CompanyRepository
	income    contracts.IncomeStatementRepository
	metrics   contracts.KeyMetricsRepository
	snapshots contracts.SnapshotRepository
	composer  *snapshot.Composer
	tracker   *Tracker
	logger    *logger.Logger
}

// NewOrchestrator creates a new ingestion orchestrator.
func NewOrchestrator(
	cfg config.IngestConfig,
	market MarketData,
	companies contracts.CompanyRepository,
	income contracts.IncomeStatementRepository,
	metrics contracts.KeyMetricsRepository,
	snapshots contracts.SnapshotRepository,
	composer *snapshot.Composer,
	tracker *Tracker,
	log *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		market:    market,
		companies: companies,
		income:    income,
		metrics:   metrics,
		snapshots: snapshots,
		composer:  composer,
		tracker:   tracker,
		logger:    log.Component("ingest"),
	}
}

// Progress returns a point-in-time view of the current or last run.
func (o *Orchestrator) Progress() contracts.IngestionProgress {
	return o.tracker.Snapshot()
}

// RunFull executes the whole pipeline: sync the stock list, then pull
// profile, income statements and key metrics for every active company and
// recompose its snapshot. Returns ErrAlreadyRunning when a run is active.
// Per-company failures are counted and logged but do not stop the run.
func (o *Orchestrator) RunFull(ctx context.Context) error {
	if err := o.tracker.Start("Loading stock list"); err != nil {
		return err
	}
	return o.runFull(ctx)
}

// RunFullAsync claims the run synchronously, so the caller learns right
// away whether one was already active, and continues it on a background
// goroutine detached from the caller's request.
func (o *Orchestrator) RunFullAsync() error {
	if err := o.tracker.Start("Loading stock list"); err != nil {
		return err
	}
	go func() {
		if err := o.runFull(context.Background()); err != nil {
			o.logger.WithError(err).Error("Full ingestion failed")
		}
	}()
	return nil
}

func (o *Orchestrator) runFull(ctx context.Context) error {
	o.tracker.SetPhase("Pulling stock list from FMP")
	if err := o.syncStockList(ctx); err != nil {
		o.tracker.Abort(err)
		return fmt.Errorf("sync stock list: %w", err)
	}

	companies, err := o.companies.ListActive(ctx)
	if err != nil {
		o.tracker.Abort(err)
		return fmt.Errorf("list active companies: %w", err)
	}

	o.tracker.SetTotal(len(companies))
	o.tracker.SetPhase("Ingesting company data")
	o.logger.WithFields(map[string]interface{}{
		"companies": len(companies),
		"workers":   o.cfg.Workers,
	}).Info("Starting company ingestion")

	workers := o.cfg.Workers
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	companyCh := make(chan contracts.Company, len(companies))

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o.companyWorker(ctx, companyCh, len(companies))
		}()
	}

	for _, company := range companies {
		companyCh <- company
	}
	close(companyCh)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		o.tracker.Abort(err)
		return err
	}

	o.tracker.Finish("Complete")

	progress := o.tracker.Snapshot()
	o.logger.WithFields(map[string]interface{}{
		"companies": len(companies),
		"errors":    progress.Errors,
	}).Info("Full ingestion complete")
	return nil
}

// RefreshQuotes updates market cap, last price and trailing P/E on existing
// snapshots from batched quote requests. Companies without a snapshot are
// left alone, and a failed batch is logged while the remaining batches
// still run.
func (o *Orchestrator) RefreshQuotes(ctx context.Context) error {
	companies, err := o.companies.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list active companies: %w", err)
	}

	// Quotes come back keyed by bare ticker, so a ticker listed on two
	// exchanges collapses to one company here.
	byTicker := make(map[string]contracts.Company, len(companies))
	tickers := make([]string, 0, len(companies))
	for _, c := range companies {
		if _, ok := byTicker[c.Ticker]; ok {
			continue
		}
		byTicker[c.Ticker] = c
		tickers = append(tickers, c.Ticker)
	}

	o.logger.WithField("companies", len(tickers)).Info("Updating quotes")

	applied := 0
	for _, batch := range chunk(tickers, o.cfg.QuoteBatchSize) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		quotes, err := o.market.BatchQuotes(ctx, batch)
		if err != nil {
			o.logger.WithError(err).WithField("batch_size", len(batch)).Error("Quote batch failed")
			continue
		}

		for _, q := range quotes {
			company, ok := byTicker[q.Symbol]
			if !ok {
				continue
			}
			if err := o.snapshots.UpdateQuote(ctx, company.ID, q.MarketCap, q.Price, q.PE); err != nil {
				o.logger.WithError(err).WithField("ticker", q.Symbol).Error("Quote update failed")
				continue
			}
			applied++
		}
	}

	o.logger.WithField("quotes", applied).Info("Quote update complete")
	return nil
}

// syncStockList refreshes the company universe from the upstream stock
// list, keeping only common stocks on the configured target exchanges.
func (o *Orchestrator) syncStockList(ctx context.Context) error {
	listings, err := o.market.StockList(ctx)
	if err != nil {
		return err
	}

	targets := make(map[string]bool, len(o.cfg.TargetExchanges))
	for _, exchange := range o.cfg.TargetExchanges {
		targets[exchange] = true
	}

	kept := 0
	for _, item := range listings {
		if !keepListing(item, targets) {
			continue
		}
		company := &contracts.Company{
			Ticker:        item.Symbol,
			Name:          item.Name,
			Exchange:      item.Exchange,
			ExchangeShort: item.ExchangeShortName,
			IsActive:      true,
		}
		if err := o.companies.Upsert(ctx, company); err != nil {
			return fmt.Errorf("upsert %s: %w", company.Key(), err)
		}
		kept++
	}

	o.logger.WithFields(map[string]interface{}{
		"listed": len(listings),
		"kept":   kept,
	}).Info("Stock list synced")
	return nil
}

// companyWorker drains the company channel, isolating failures per company.
func (o *Orchestrator) companyWorker(ctx context.Context, companies <-chan contracts.Company, total int) {
	for company := range companies {
		select {
		case <-ctx.Done():
			return
		default:
		}

		current := o.tracker.Advance(company.Ticker)
		o.logger.WithField("ticker", company.Ticker).Debug("Ingesting company")

		if err := o.ingestCompany(ctx, &company); err != nil {
			o.tracker.Fail(company.Ticker, err)
			o.logger.WithError(err).WithField("ticker", company.Ticker).Error("Company ingestion failed")
			continue
		}

		if current%100 == 0 {
			o.logger.Infof("Progress: %d/%d companies processed", current, total)
		}
	}
}

// ingestCompany pulls profile, statement history and key metrics for one
// company, stores both series, refreshes the stored per-row revenue growth
// and recomposes the screening snapshot.
func (o *Orchestrator) ingestCompany(ctx context.Context, company *contracts.Company) error {
	profile, err := o.market.Profile(ctx, company.Ticker)
	if err != nil {
		return fmt.Errorf("profile: %w", err)
	}
	if profile != nil {
		// The composer denormalizes these into the snapshot, so the
		// in-memory company has to see them too.
		company.Country = profile.Country
		company.Sector = profile.Sector
		company.Industry = profile.Industry
		if err := o.companies.UpdateProfile(ctx, company.ID, profile.Country, profile.Sector, profile.Industry); err != nil {
			return fmt.Errorf("update profile: %w", err)
		}
	}

	incomeData, err := o.market.IncomeStatements(ctx, company.Ticker, contracts.PeriodAnnual, o.cfg.StatementYears)
	if err != nil {
		return fmt.Errorf("income statements: %w", err)
	}
	for _, item := range incomeData {
		stmt, ok := incomeStatementRecord(company.ID, contracts.PeriodAnnual, item)
		if !ok {
			continue
		}
		if err := o.income.Upsert(ctx, stmt); err != nil {
			return fmt.Errorf("store income statement %s: %w", item.Date, err)
		}
	}

	metricsData, err := o.market.KeyMetrics(ctx, company.Ticker, contracts.PeriodAnnual, o.cfg.StatementYears)
	if err != nil {
		return fmt.Errorf("key metrics: %w", err)
	}
	for _, item := range metricsData {
		metrics, ok := keyMetricsRecord(company.ID, contracts.PeriodAnnual, item)
		if !ok {
			continue
		}
		if err := o.metrics.Upsert(ctx, metrics); err != nil {
			return fmt.Errorf("store key metrics %s: %w", item.Date, err)
		}
	}

	if err := o.storeRevenueGrowth(ctx, company.ID); err != nil {
		return fmt.Errorf("revenue growth: %w", err)
	}

	return o.composer.Compose(ctx, company)
}

// storeRevenueGrowth recomputes the stored per-row YoY revenue growth for
// the whole annual series. Upserts reset the column to null, so rows whose
// growth is not computable stay null.
func (o *Orchestrator) storeRevenueGrowth(ctx context.Context, companyID int) error {
	stmts, err := o.income.ListByCompany(ctx, companyID, contracts.PeriodAnnual)
	if err != nil {
		return err
	}
	for i := 0; i+1 < len(stmts); i++ {
		growth := snapshot.YoYGrowth(stmts[i].Revenue, stmts[i+1].Revenue)
		if !growth.Valid {
			continue
		}
		if err := o.income.UpdateRevenueGrowth(ctx, stmts[i].ID, growth); err != nil {
			return err
		}
	}
	return nil
}
