package ingest

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/guregu/null/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandt/screener/backend/internal/contracts"
	"github.com/brandt/screener/backend/internal/external/fmp"
	"github.com/brandt/screener/backend/internal/snapshot"
	"github.com/brandt/screener/backend/pkg/config"
	"github.com/brandt/screener/backend/pkg/logger"
)

type fakeMarket struct {
	listings []fmp.StockListItem
	listErr  error

	profiles   map[string]*fmp.CompanyProfile
	profileErr map[string]error

	income  map[string][]fmp.IncomeStatementData
	metrics map[string][]fmp.KeyMetricsData

	quotes      map[string]fmp.Quote
	extraQuote  *fmp.Quote
	failBatches int

	batches    [][]string
	batchCalls int
}

func (f *fakeMarket) StockList(ctx context.Context) ([]fmp.StockListItem, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listings, nil
}

func (f *fakeMarket) Profile(ctx context.Context, ticker string) (*fmp.CompanyProfile, error) {
	if err := f.profileErr[ticker]; err != nil {
		return nil, err
	}
	return f.profiles[ticker], nil
}

func (f *fakeMarket) IncomeStatements(ctx context.Context, ticker, period string, limit int) ([]fmp.IncomeStatementData, error) {
	return f.income[ticker], nil
}

func (f *fakeMarket) KeyMetrics(ctx context.Context, ticker, period string, limit int) ([]fmp.KeyMetricsData, error) {
	return f.metrics[ticker], nil
}

func (f *fakeMarket) BatchQuotes(ctx context.Context, tickers []string) ([]fmp.Quote, error) {
	f.batches = append(f.batches, tickers)
	f.batchCalls++
	if f.batchCalls <= f.failBatches {
		return nil, errors.New("rate limited")
	}

	var quotes []fmp.Quote
	for _, ticker := range tickers {
		if q, ok := f.quotes[ticker]; ok {
			quotes = append(quotes, q)
		}
	}
	if f.extraQuote != nil && f.batchCalls == f.failBatches+1 {
		quotes = append(quotes, *f.extraQuote)
	}
	return quotes, nil
}

type fakeCompanyStore struct {
	mu     sync.Mutex
	nextID int
	rows   map[string]*contracts.Company
}

func newFakeCompanyStore() *fakeCompanyStore {
	return &fakeCompanyStore{rows: make(map[string]*contracts.Company)}
}

func (f *fakeCompanyStore) Upsert(ctx context.Context, company *contracts.Company) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if existing, ok := f.rows[company.Key()]; ok {
		existing.Name = company.Name
		existing.Exchange = company.Exchange
		company.ID = existing.ID
		return nil
	}
	f.nextID++
	company.ID = f.nextID
	stored := *company
	f.rows[company.Key()] = &stored
	return nil
}

func (f *fakeCompanyStore) UpdateProfile(ctx context.Context, companyID int, country, sector, industry string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, c := range f.rows {
		if c.ID == companyID {
			c.Country = country
			c.Sector = sector
			c.Industry = industry
			return nil
		}
	}
	return contracts.ErrNotFound
}

func (f *fakeCompanyStore) ListActive(ctx context.Context) ([]contracts.Company, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []contracts.Company
	for _, c := range f.rows {
		if c.IsActive {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Ticker != out[j].Ticker {
			return out[i].Ticker < out[j].Ticker
		}
		return out[i].ExchangeShort < out[j].ExchangeShort
	})
	return out, nil
}

func (f *fakeCompanyStore) FindByTicker(ctx context.Context, ticker, exchangeShort string) (*contracts.Company, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, c := range f.rows {
		if c.Ticker == ticker && (exchangeShort == "" || c.ExchangeShort == exchangeShort) {
			found := *c
			return &found, nil
		}
	}
	return nil, contracts.ErrNotFound
}

func (f *fakeCompanyStore) Count(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows), nil
}

type fakeIncomeStore struct {
	mu     sync.Mutex
	nextID int
	rows   []*contracts.IncomeStatement
}

func (f *fakeIncomeStore) Upsert(ctx context.Context, stmt *contracts.IncomeStatement) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, r := range f.rows {
		if r.CompanyID == stmt.CompanyID && r.Date.Equal(stmt.Date) && r.Period == stmt.Period {
			id := r.ID
			*r = *stmt
			r.ID = id
			stmt.ID = id
			return nil
		}
	}
	f.nextID++
	stmt.ID = f.nextID
	stored := *stmt
	f.rows = append(f.rows, &stored)
	return nil
}

func (f *fakeIncomeStore) ListByCompany(ctx context.Context, companyID int, period string) ([]contracts.IncomeStatement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []contracts.IncomeStatement
	for _, r := range f.rows {
		if r.CompanyID == companyID && r.Period == period {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (f *fakeIncomeStore) UpdateRevenueGrowth(ctx context.Context, id int, growth null.Float) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, r := range f.rows {
		if r.ID == id {
			r.RevenueGrowth = growth
			return nil
		}
	}
	return contracts.ErrNotFound
}

type fakeMetricsStore struct {
	mu     sync.Mutex
	nextID int
	rows   []*contracts.KeyMetrics
}

func (f *fakeMetricsStore) Upsert(ctx context.Context, metrics *contracts.KeyMetrics) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, r := range f.rows {
		if r.CompanyID == metrics.CompanyID && r.Date.Equal(metrics.Date) && r.Period == metrics.Period {
			id := r.ID
			*r = *metrics
			r.ID = id
			metrics.ID = id
			return nil
		}
	}
	f.nextID++
	metrics.ID = f.nextID
	stored := *metrics
	f.rows = append(f.rows, &stored)
	return nil
}

func (f *fakeMetricsStore) ListByCompany(ctx context.Context, companyID int, period string) ([]contracts.KeyMetrics, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []contracts.KeyMetrics
	for _, r := range f.rows {
		if r.CompanyID == companyID && r.Period == period {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

type fakeSnapshotStore struct {
	mu        sync.Mutex
	byCompany map[int]*contracts.Snapshot
}

func newFakeSnapshotStore() *fakeSnapshotStore {
	return &fakeSnapshotStore{byCompany: make(map[int]*contracts.Snapshot)}
}

func (f *fakeSnapshotStore) Upsert(ctx context.Context, snap *contracts.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored := *snap
	f.byCompany[snap.CompanyID] = &stored
	return nil
}

func (f *fakeSnapshotStore) GetByCompanyID(ctx context.Context, companyID int) (*contracts.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	snap, ok := f.byCompany[companyID]
	if !ok {
		return nil, contracts.ErrNotFound
	}
	found := *snap
	return &found, nil
}

func (f *fakeSnapshotStore) UpdateQuote(ctx context.Context, companyID int, marketCap, lastPrice, peRatio null.Float) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	snap, ok := f.byCompany[companyID]
	if !ok {
		return nil
	}
	if marketCap.Valid {
		snap.MarketCap = marketCap
	}
	if lastPrice.Valid {
		snap.LastPrice = lastPrice
	}
	if peRatio.Valid {
		snap.PERatio = peRatio
	}
	return nil
}

func (f *fakeSnapshotStore) Count(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byCompany), nil
}

func testLogger() *logger.Logger {
	return logger.New(&config.Config{Env: "development", LogLevel: "error", LogFormat: "json"})
}

func testIngestConfig() config.IngestConfig {
	return config.IngestConfig{
		TargetExchanges: []string{"NYSE", "NASDAQ"},
		Workers:         3,
		StatementYears:  7,
		QuoteBatchSize:  2,
	}
}

type fixture struct {
	market    *fakeMarket
	companies *fakeCompanyStore
	income    *fakeIncomeStore
	metrics   *fakeMetricsStore
	snapshots *fakeSnapshotStore
	tracker   *Tracker
	orch      *Orchestrator
}

func newFixture(market *fakeMarket, cfg config.IngestConfig) *fixture {
	log := testLogger()
	f := &fixture{
		market:    market,
		companies: newFakeCompanyStore(),
		income:    &fakeIncomeStore{},
		metrics:   &fakeMetricsStore{},
		snapshots: newFakeSnapshotStore(),
		tracker:   NewTracker(),
	}
	composer := snapshot.NewComposer(f.income, f.metrics, f.snapshots, log)
	f.orch = NewOrchestrator(cfg, market, f.companies, f.income, f.metrics, f.snapshots, composer, f.tracker, log)
	return f
}

func (f *fixture) seedCompany(t *testing.T, ticker, exchangeShort string) int {
	t.Helper()
	company := &contracts.Company{
		Ticker:        ticker,
		Name:          ticker + " Inc.",
		ExchangeShort: exchangeShort,
		IsActive:      true,
	}
	require.NoError(t, f.companies.Upsert(context.Background(), company))
	return company.ID
}

func TestOrchestrator_RunFull(t *testing.T) {
	market := &fakeMarket{
		listings: []fmp.StockListItem{
			{Symbol: "AAPL", Name: "Apple Inc.", Exchange: "NASDAQ Global Select", ExchangeShortName: "NASDAQ", Type: "stock"},
			{Symbol: "MSFT", Name: "Microsoft Corporation", Exchange: "NASDAQ Global Select", ExchangeShortName: "NASDAQ", Type: "stock"},
			{Symbol: "SPY", Name: "SPDR S&P 500", ExchangeShortName: "NYSE", Type: "etf"},
			{Symbol: "SHOP", Name: "Shopify", ExchangeShortName: "TSX", Type: "stock"},
			{Name: "Nameless", ExchangeShortName: "NYSE", Type: "stock"},
		},
		profiles: map[string]*fmp.CompanyProfile{
			"AAPL": {Symbol: "AAPL", Country: "US", Sector: "Technology", Industry: "Consumer Electronics"},
		},
		income: map[string][]fmp.IncomeStatementData{
			"AAPL": {
				{Date: "2024-09-28", CalendarYear: "2024", Revenue: null.FloatFrom(100e9), GrossProfitRatio: null.FloatFrom(0.46)},
				{Date: "2023-09-30", CalendarYear: "2023", Revenue: null.FloatFrom(80e9), GrossProfitRatio: null.FloatFrom(0.44)},
			},
		},
		metrics: map[string][]fmp.KeyMetricsData{
			"AAPL": {{Date: "2024-09-28", CalendarYear: "2024", PERatio: null.FloatFrom(30)}},
			"MSFT": {{Date: "2024-06-30", CalendarYear: "2024", PERatio: null.FloatFrom(25)}},
		},
	}

	f := newFixture(market, testIngestConfig())
	require.NoError(t, f.orch.RunFull(context.Background()))

	ctx := context.Background()

	// The universe keeps the two common stocks on target exchanges.
	count, err := f.companies.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	apple, err := f.companies.FindByTicker(ctx, "AAPL", "NASDAQ")
	require.NoError(t, err)
	assert.Equal(t, "Technology", apple.Sector)
	assert.Equal(t, "US", apple.Country)

	// The stored income series carries recomputed per-row growth:
	// (100e9 - 80e9) / 80e9 on the latest row, nothing on the oldest.
	stmts, err := f.income.ListByCompany(ctx, apple.ID, contracts.PeriodAnnual)
	require.NoError(t, err)
	require.Len(t, stmts, 2)
	require.True(t, stmts[0].RevenueGrowth.Valid)
	assert.InDelta(t, 0.25, stmts[0].RevenueGrowth.Float64, 1e-9)
	assert.False(t, stmts[1].RevenueGrowth.Valid)

	snap, err := f.snapshots.GetByCompanyID(ctx, apple.ID)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", snap.Ticker)
	assert.Equal(t, "Technology", snap.Sector)
	assert.Equal(t, null.FloatFrom(30), snap.PERatio)
	require.True(t, snap.RevenueGrowthYoY.Valid)
	assert.InDelta(t, 0.25, snap.RevenueGrowthYoY.Float64, 1e-9)

	// A company with key metrics but no profile and no income statements
	// still gets a snapshot.
	msft, err := f.companies.FindByTicker(ctx, "MSFT", "NASDAQ")
	require.NoError(t, err)
	snap, err = f.snapshots.GetByCompanyID(ctx, msft.ID)
	require.NoError(t, err)
	assert.Equal(t, null.FloatFrom(25), snap.PERatio)
	assert.False(t, snap.GrossMargin.Valid)

	p := f.tracker.Snapshot()
	assert.False(t, p.Running)
	assert.Equal(t, "Complete", p.Phase)
	assert.Equal(t, 2, p.Total)
	assert.Equal(t, 2, p.Current)
	assert.Zero(t, p.Errors)
	assert.Empty(t, p.CurrentTicker)
}

func TestOrchestrator_RunFull_SecondRunRejected(t *testing.T) {
	f := newFixture(&fakeMarket{}, testIngestConfig())
	require.NoError(t, f.tracker.Start("busy"))

	assert.ErrorIs(t, f.orch.RunFull(context.Background()), ErrAlreadyRunning)
}

func TestOrchestrator_RunFull_CompanyFailureIsolated(t *testing.T) {
	market := &fakeMarket{
		listings: []fmp.StockListItem{
			{Symbol: "BAD", Name: "Bad Co", ExchangeShortName: "NYSE", Type: "stock"},
			{Symbol: "GOOD", Name: "Good Co", ExchangeShortName: "NYSE", Type: "stock"},
		},
		profileErr: map[string]error{"BAD": errors.New("profile fetch failed")},
		metrics: map[string][]fmp.KeyMetricsData{
			"GOOD": {{Date: "2024-12-31", PERatio: null.FloatFrom(10)}},
		},
	}

	f := newFixture(market, testIngestConfig())
	require.NoError(t, f.orch.RunFull(context.Background()))

	ctx := context.Background()
	good, err := f.companies.FindByTicker(ctx, "GOOD", "NYSE")
	require.NoError(t, err)
	_, err = f.snapshots.GetByCompanyID(ctx, good.ID)
	assert.NoError(t, err)

	bad, err := f.companies.FindByTicker(ctx, "BAD", "NYSE")
	require.NoError(t, err)
	_, err = f.snapshots.GetByCompanyID(ctx, bad.ID)
	assert.ErrorIs(t, err, contracts.ErrNotFound)

	p := f.tracker.Snapshot()
	assert.False(t, p.Running)
	assert.Equal(t, "Complete", p.Phase)
	assert.Equal(t, 1, p.Errors)
	assert.Equal(t, "BAD: profile: profile fetch failed", p.LastError)
}

func TestOrchestrator_RunFull_StockListFailureAborts(t *testing.T) {
	market := &fakeMarket{listErr: errors.New("fmp is down")}

	f := newFixture(market, testIngestConfig())
	err := f.orch.RunFull(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sync stock list")

	p := f.tracker.Snapshot()
	assert.False(t, p.Running)
	assert.Equal(t, "Failed: fmp is down", p.Phase)
	assert.Equal(t, "fmp is down", p.LastError)
}

func TestOrchestrator_RefreshQuotes(t *testing.T) {
	market := &fakeMarket{
		quotes: map[string]fmp.Quote{
			"AAPL": {Symbol: "AAPL", Price: null.FloatFrom(195.5), MarketCap: null.FloatFrom(3e12), PE: null.FloatFrom(32)},
			"MSFT": {Symbol: "MSFT", Price: null.FloatFrom(420)},
			"NOQ":  {Symbol: "NOQ", Price: null.FloatFrom(5)},
		},
		extraQuote: &fmp.Quote{Symbol: "ZZZZ", Price: null.FloatFrom(1)},
	}

	f := newFixture(market, testIngestConfig())
	ctx := context.Background()

	// The same ticker on two exchanges collapses to the first listing.
	appleID := f.seedCompany(t, "AAPL", "AMEX")
	f.seedCompany(t, "AAPL", "NASDAQ")
	msftID := f.seedCompany(t, "MSFT", "NASDAQ")
	f.seedCompany(t, "NOQ", "NYSE")

	require.NoError(t, f.snapshots.Upsert(ctx, &contracts.Snapshot{
		CompanyID: appleID,
		Ticker:    "AAPL",
		MarketCap: null.FloatFrom(2.8e12),
		LastPrice: null.FloatFrom(180),
		PERatio:   null.FloatFrom(30),
	}))
	require.NoError(t, f.snapshots.Upsert(ctx, &contracts.Snapshot{
		CompanyID: msftID,
		Ticker:    "MSFT",
		PERatio:   null.FloatFrom(35),
	}))

	require.NoError(t, f.orch.RefreshQuotes(ctx))

	assert.Equal(t, [][]string{{"AAPL", "MSFT"}, {"NOQ"}}, market.batches)

	snap, err := f.snapshots.GetByCompanyID(ctx, appleID)
	require.NoError(t, err)
	assert.Equal(t, null.FloatFrom(195.5), snap.LastPrice)
	assert.Equal(t, null.FloatFrom(3e12), snap.MarketCap)
	assert.Equal(t, null.FloatFrom(32), snap.PERatio)

	// Null quote fields keep the stored values.
	snap, err = f.snapshots.GetByCompanyID(ctx, msftID)
	require.NoError(t, err)
	assert.Equal(t, null.FloatFrom(420), snap.LastPrice)
	assert.Equal(t, null.FloatFrom(35), snap.PERatio)
	assert.False(t, snap.MarketCap.Valid)

	// Companies without a snapshot stay without one.
	noq, err := f.companies.FindByTicker(ctx, "NOQ", "NYSE")
	require.NoError(t, err)
	_, err = f.snapshots.GetByCompanyID(ctx, noq.ID)
	assert.ErrorIs(t, err, contracts.ErrNotFound)
}

func TestOrchestrator_RefreshQuotes_BatchFailureContinues(t *testing.T) {
	market := &fakeMarket{
		quotes: map[string]fmp.Quote{
			"AAA": {Symbol: "AAA", Price: null.FloatFrom(10)},
			"DDD": {Symbol: "DDD", Price: null.FloatFrom(40)},
		},
		failBatches: 1,
	}

	f := newFixture(market, testIngestConfig())
	ctx := context.Background()

	aaaID := f.seedCompany(t, "AAA", "NYSE")
	f.seedCompany(t, "BBB", "NYSE")
	f.seedCompany(t, "CCC", "NYSE")
	dddID := f.seedCompany(t, "DDD", "NYSE")

	for _, id := range []int{aaaID, dddID} {
		require.NoError(t, f.snapshots.Upsert(ctx, &contracts.Snapshot{CompanyID: id}))
	}

	require.NoError(t, f.orch.RefreshQuotes(ctx))
	assert.Equal(t, 2, market.batchCalls)

	// The failed first batch left AAA untouched; the second batch landed.
	snap, err := f.snapshots.GetByCompanyID(ctx, aaaID)
	require.NoError(t, err)
	assert.False(t, snap.LastPrice.Valid)

	snap, err = f.snapshots.GetByCompanyID(ctx, dddID)
	require.NoError(t, err)
	assert.Equal(t, null.FloatFrom(40), snap.LastPrice)
}
