package screener

import (
	"context"
	"os"
	"testing"

	"github.com/guregu/null/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandt/screener/backend/internal/contracts"
	"github.com/brandt/screener/backend/internal/fundamentals"
	"github.com/brandt/screener/backend/pkg/config"
	"github.com/brandt/screener/backend/pkg/logger"
	"github.com/brandt/screener/backend/pkg/redis"
)

// screenService connects to the database named by DATABASE_URL, seeds two
// screenable companies in a throwaway sector and returns a service with
// caching disabled. Tests that call it are integration tests and skip when
// the variable is unset.
func screenService(t *testing.T) *Service {
	t.Helper()

	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	require.NoError(t, fundamentals.Migrate(url), "migration failed")

	pool, err := pgxpool.New(context.Background(), url)
	require.NoError(t, err, "database connection failed")
	t.Cleanup(pool.Close)

	cfg := &config.Config{Env: "development", LogLevel: "error"}
	client, err := redis.New(cfg)
	require.NoError(t, err)

	seedSnapshot(t, pool, "ZZSCRA", 1200, 14.0)
	seedSnapshot(t, pool, "ZZSCRB", 900, 22.5)

	return NewService(pool, redis.NewCache(client, "screener-test"), logger.New(cfg))
}

// seedSnapshot inserts a company plus a minimal snapshot row in the sector
// the tests filter on. Reruns reuse the same rows: the company upsert is
// keyed by (ticker, exchange_short) and the snapshot by company_id.
func seedSnapshot(t *testing.T, pool *pgxpool.Pool, ticker string, marketCap, pe float64) {
	t.Helper()
	ctx := context.Background()

	company := &contracts.Company{
		Ticker:        ticker,
		Name:          "Screen Test " + ticker,
		Exchange:      "NASDAQ Global Select",
		ExchangeShort: "NASDAQ",
	}
	require.NoError(t, fundamentals.NewCompanyRepository(pool).Upsert(ctx, company))

	snap := &contracts.Snapshot{
		CompanyID: company.ID,
		Ticker:    ticker,
		Name:      company.Name,
		Exchange:  "NASDAQ",
		Sector:    "Screen Test Sector",
		MarketCap: null.FloatFrom(marketCap),
		PERatio:   null.FloatFrom(pe),
	}
	require.NoError(t, fundamentals.NewSnapshotRepository(pool).Upsert(ctx, snap))

	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM companies WHERE id = $1`, company.ID)
	})
}

func TestService_Screen(t *testing.T) {
	svc := screenService(t)
	ctx := context.Background()

	sectorOnly := []contracts.ScreenFilter{
		{Field: "sector", Operator: OpEQ, Value: "Screen Test Sector"},
	}

	t.Run("filters and sorts", func(t *testing.T) {
		resp, err := svc.Screen(ctx, contracts.ScreenRequest{Filters: sectorOnly})
		require.NoError(t, err)

		require.Equal(t, 2, resp.Total)
		require.Len(t, resp.Results, 2)
		assert.Equal(t, "ZZSCRA", resp.Results[0].Ticker, "default sort is market_cap desc")
		assert.Equal(t, "ZZSCRB", resp.Results[1].Ticker)
		assert.Equal(t, contracts.DefaultScreenLimit, resp.Limit)
	})

	t.Run("numeric condition narrows the page", func(t *testing.T) {
		resp, err := svc.Screen(ctx, contracts.ScreenRequest{
			Filters: append(sectorOnly, contracts.ScreenFilter{
				Field: "pe_ratio", Operator: OpLT, Value: 20.0,
			}),
		})
		require.NoError(t, err)

		require.Equal(t, 1, resp.Total)
		require.Len(t, resp.Results, 1)
		assert.Equal(t, "ZZSCRA", resp.Results[0].Ticker)
	})

	t.Run("total ignores pagination", func(t *testing.T) {
		resp, err := svc.Screen(ctx, contracts.ScreenRequest{
			Filters: sectorOnly,
			SortBy:  "pe_ratio",
			SortDir: "asc",
			Limit:   1,
		})
		require.NoError(t, err)

		assert.Equal(t, 2, resp.Total)
		require.Len(t, resp.Results, 1)
		assert.Equal(t, "ZZSCRA", resp.Results[0].Ticker, "lowest P/E first")
	})

	t.Run("bad request surfaces the catalog error", func(t *testing.T) {
		_, err := svc.Screen(ctx, contracts.ScreenRequest{
			Filters: []contracts.ScreenFilter{{Field: "nope", Operator: OpGT, Value: 1.0}},
		})
		require.Error(t, err)
		assert.True(t, IsRequestError(err))
	})
}
