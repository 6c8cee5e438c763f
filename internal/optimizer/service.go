package optimizer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/platewise/mealplan-optimizer/internal/audit"
	"github.com/platewise/mealplan-optimizer/internal/cache"
	"github.com/platewise/mealplan-optimizer/internal/solver"
	"github.com/platewise/mealplan-optimizer/internal/types"
)

// Config tunes a Service.
type Config struct {
	SolveTimeLimit time.Duration
	CacheTTL       time.Duration
	SolverOptions  *solver.Options
}

// Service runs the full optimization pipeline: normalize, fetch catalog,
// build, solve, interpret, cache, audit. It holds no per-request state;
// the cache and audit sink are the only shared collaborators.
type Service struct {
	catalog    CatalogSource
	newBackend solver.Factory
	store      cache.Store
	sink       audit.Sink
	log        *zap.Logger

	solverOpts solver.Options
	cacheTTL   time.Duration

	// flight shares in-flight solves among concurrent identical requests,
	// so a burst of cache misses for one hash triggers a single solve.
	flight singleflight.Group
}

// NewService wires the pipeline. Nil collaborators get safe defaults: the
// gonum backend, an in-process cache, a no-op audit sink and a no-op logger.
func NewService(catalog CatalogSource, factory solver.Factory, store cache.Store, sink audit.Sink, log *zap.Logger, cfg Config) *Service {
	if factory == nil {
		factory = solver.NewBackend
	}
	if store == nil {
		store = cache.NewMemory()
	}
	if sink == nil {
		sink = audit.NopSink{}
	}
	if log == nil {
		log = zap.NewNop()
	}

	opts := solver.DefaultOptions()
	if cfg.SolverOptions != nil {
		opts = *cfg.SolverOptions
	}
	if cfg.SolveTimeLimit > 0 {
		opts.TimeLimit = cfg.SolveTimeLimit
	}
	ttl := cfg.CacheTTL
	if ttl == 0 {
		ttl = DefaultCacheTTL
	}

	return &Service{
		catalog:    catalog,
		newBackend: factory,
		store:      store,
		sink:       sink,
		log:        log.Named("optimizer"),
		solverOpts: opts,
		cacheTTL:   ttl,
	}
}

// Optimize plans meals for one request. Validation failures and an empty
// candidate set are returned as errors; solver outcomes, including
// infeasibility, are reported through the response status.
func (s *Service) Optimize(ctx context.Context, raw *types.MealPlanRequest) (*types.MealPlanResponse, error) {
	req, err := Normalize(raw)
	if err != nil {
		return nil, err
	}

	catalog, err := s.catalog.Fetch(ctx, req)
	if err != nil {
		s.log.Warn("catalog unavailable, using fallback", zap.Error(err))
		catalog = FallbackCatalog(req, err.Error())
	}

	modelHash := HashParts("request", req, "catalog", catalog.Metadata.VersionToken)

	if cached, ok := s.store.Get(ctx, modelHash); ok {
		resp := *cached
		resp.Diagnostics.CacheHit = true
		return &resp, nil
	}

	result, err, _ := s.flight.Do(modelHash, func() (interface{}, error) {
		return s.solveRequest(ctx, req, catalog, modelHash)
	})
	if err != nil {
		return nil, err
	}
	return result.(*types.MealPlanResponse), nil
}

// Preview resolves the candidate catalog for a request without solving.
func (s *Service) Preview(ctx context.Context, raw *types.MealPlanRequest) (*Catalog, error) {
	req, err := Normalize(raw)
	if err != nil {
		return nil, err
	}
	catalog, err := s.catalog.Fetch(ctx, req)
	if err != nil {
		s.log.Warn("catalog unavailable, using fallback", zap.Error(err))
		catalog = FallbackCatalog(req, err.Error())
	}
	return catalog, nil
}

func (s *Service) solveRequest(ctx context.Context, req *Request, catalog *Catalog, modelHash string) (*types.MealPlanResponse, error) {
	build, err := Build(req, catalog)
	if err != nil {
		return nil, err
	}
	if catalog.Metadata.Fallback {
		build.Warnings = append(build.Warnings, "using fallback recipe catalog: meal database unavailable")
	}

	opts := s.solverOpts.Tune(build.Model)
	backend := s.newBackend(opts)
	if err := backend.PassModel(build.Model); err != nil {
		return nil, fmt.Errorf("passing model to solver: %w", err)
	}

	start := time.Now()
	if err := backend.Run(ctx); err != nil {
		return nil, fmt.Errorf("running solver: %w", err)
	}
	solveMs := float64(time.Since(start).Microseconds()) / 1000

	outcome := SolveOutcome{
		Status:      backend.ModelStatus(),
		Solution:    backend.Solution(),
		Info:        backend.Info(),
		Version:     backend.Version(),
		SolveTimeMs: solveMs,
	}
	resp := Interpret(req, catalog, build, outcome, modelHash)

	s.store.Set(ctx, modelHash, resp, s.cacheTTL)
	s.writeAudit(req, catalog, build, outcome, modelHash, resp.Status)

	s.log.Info("optimization run",
		zap.String("model_hash", modelHash),
		zap.String("status", resp.Status),
		zap.Int("recipes", len(catalog.Recipes)),
		zap.Int("columns", build.Model.ColumnCount),
		zap.Int("rows", build.Model.RowCount),
		zap.Float64("solve_ms", solveMs),
	)
	return resp, nil
}

// writeAudit records the run without ever blocking or failing the response.
func (s *Service) writeAudit(req *Request, catalog *Catalog, build *BuildResult, outcome SolveOutcome, modelHash, status string) {
	rec := &audit.Record{
		ID:              uuid.NewString(),
		Timestamp:       time.Now().UTC(),
		ModelHash:       modelHash,
		Request:         req,
		CatalogMetadata: catalog.Metadata,
		Solver: audit.SolverReport{
			Status:      outcome.Status.String(),
			StatusCode:  int(outcome.Status),
			Version:     outcome.Version,
			SolveTimeMs: outcome.SolveTimeMs,
		},
		Warnings:       build.Warnings,
		ResponseStatus: status,
	}
	if outcome.Info != nil {
		rec.Solver.Iterations = outcome.Info.Iterations
		rec.Solver.ObjectiveValue = outcome.Info.ObjectiveValue
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.sink.Write(ctx, rec); err != nil {
			s.log.Warn("audit write failed", zap.Error(err))
		}
	}()
}
