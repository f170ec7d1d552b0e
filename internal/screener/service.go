package screener

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brandt/screener/backend/internal/contracts"
	"github.com/brandt/screener/backend/pkg/logger"
	"github.com/brandt/screener/backend/pkg/redis"
)

// Service runs screen requests against the snapshot table.
type Service struct {
	pool   *pgxpool.Pool
	cache  *redis.Cache
	logger *logger.Logger
}

// NewService creates a new screen service.
func NewService(pool *pgxpool.Pool, cache *redis.Cache, log *logger.Logger) *Service {
	return &Service{
		pool:   pool,
		cache:  cache,
		logger: log.Component("screener"),
	}
}

// FieldCatalog returns the static field catalog for the filter UI.
func (s *Service) FieldCatalog() map[string]FieldDef {
	return Fields
}

// Screen validates, compiles and runs one request. Responses are cached
// briefly keyed by the request hash; snapshots refresh at most a few times
// a day, so TTL-only invalidation is enough.
func (s *Service) Screen(ctx context.Context, req contracts.ScreenRequest) (*contracts.ScreenResponse, error) {
	req.Normalize()

	q, err := buildScreen(req)
	if err != nil {
		return nil, err
	}

	key := redis.ScreenKey(requestHash(req))

	var cached contracts.ScreenResponse
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.logger.WithError(err).Warn("Screen cache read failed")
	} else if found {
		return &cached, nil
	}

	resp, err := s.run(ctx, req, q)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, resp, redis.TTLMedium); err != nil {
		s.logger.WithError(err).Warn("Screen cache write failed")
	}

	return resp, nil
}

func (s *Service) run(ctx context.Context, req contracts.ScreenRequest, q *screenQuery) (*contracts.ScreenResponse, error) {
	var total int
	if err := s.pool.QueryRow(ctx, q.countSQL, q.args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count screen matches: %w", err)
	}

	var results []contracts.Snapshot
	if err := pgxscan.Select(ctx, s.pool, &results, q.selectSQL, q.selectArgs...); err != nil {
		return nil, fmt.Errorf("run screen query: %w", err)
	}
	if results == nil {
		results = []contracts.Snapshot{}
	}

	s.logger.WithFields(map[string]interface{}{
		"filters": len(req.Filters),
		"total":   total,
		"rows":    len(results),
	}).Debug("Screen executed")

	return &contracts.ScreenResponse{
		Results: results,
		Total:   total,
		Limit:   req.Limit,
		Offset:  req.Offset,
	}, nil
}

// requestHash is the cache identity of a normalized request: canonical
// JSON hashed. Struct field order keeps the encoding deterministic.
func requestHash(req contracts.ScreenRequest) string {
	data, err := json.Marshal(req)
	if err != nil {
		return "unhashable"
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
