package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/tilecalc/pkg/cache"
	"github.com/matzehuels/tilecalc/pkg/errors"
	"github.com/matzehuels/tilecalc/pkg/notify"
	"github.com/matzehuels/tilecalc/pkg/observability"
	"github.com/matzehuels/tilecalc/pkg/store"
	"github.com/matzehuels/tilecalc/pkg/tile"
)

// Runner encapsulates pipeline execution with caching, persistence and
// event publication. Both CLI and API use it.
//
// The Runner holds no per-run state. Multiple goroutines can safely use the
// same Runner with different options.
type Runner struct {
	Cache    cache.Cache
	Keyer    cache.Keyer
	Store    store.Store
	Notifier notify.Notifier
	Logger   *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// Store and Notifier default to an in-memory store and a no-op notifier;
// set the fields directly to change them.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:    c,
		Keyer:    keyer,
		Store:    store.NewMemoryStore(),
		Notifier: notify.Nop{},
		Logger:   logger,
	}
}

// Execute runs compute → save → render with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Compute
	computeStart := time.Now()
	rec, hash, hit, err := r.ComputeWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("compute: %w", err)
	}
	result.Record = rec
	result.RecordHash = hash
	result.Stats.ComputeTime = time.Since(computeStart)
	result.Stats.CellCount = len(rec.Cells)
	result.Stats.TilesNeeded = rec.Result.TilesNeeded
	result.CacheInfo.ComputeHit = hit

	r.Logger.Info("computed layout",
		"pattern", rec.Pattern,
		"tiles", rec.Result.TilesNeeded,
		"purchase", rec.Result.TotalTilesWithWaste,
		"duration", result.Stats.ComputeTime)

	// Stage 2: Save
	if opts.Save {
		saveStart := time.Now()
		calc, err := r.Save(ctx, rec, opts.Name, opts.Status)
		if err != nil {
			return nil, fmt.Errorf("save: %w", err)
		}
		result.Calculation = calc
		result.Stats.SaveTime = time.Since(saveStart)
		r.Logger.Info("saved calculation", "id", calc.ID, "name", calc.Name)
	} else {
		r.publish(ctx, notify.NewEvent(notify.EventComputed, "", "", rec))
	}

	// Stage 3: Render
	if len(opts.Formats) == 0 {
		return result, nil
	}
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, rec, hash, result.Calculation, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ComputeWithCacheInfo computes the layout record with caching. It returns
// the record, its content hash and whether it came from cache.
func (r *Runner) ComputeWithCacheInfo(ctx context.Context, opts Options) (*tile.Record, string, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForCompute(); err != nil {
		return nil, "", false, err
	}

	cacheKey := r.Keyer.RecordKey(opts.RecordKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var rec tile.Record
			if err := json.Unmarshal(data, &rec); err == nil {
				observability.Cache().OnCacheHit(ctx, "record")
				return &rec, cache.Hash(data), true, nil
			}
			// If deserialization fails, fall through to recompute
		} else if err != nil {
			opts.Logger.Warn("cache read failed", "error", err)
		}
		observability.Cache().OnCacheMiss(ctx, "record")
	}

	rec, err := r.compute(ctx, opts)
	if err != nil {
		return nil, "", false, err
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, "", false, errors.Wrap(errors.ErrCodeInternal, err, "encode record")
	}
	if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLRecord); err != nil {
		opts.Logger.Warn("cache write failed", "error", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "record", len(data))
	}

	return rec, cache.Hash(data), false, nil
}

// Compute is a convenience wrapper that calls ComputeWithCacheInfo and
// returns only the record.
func (r *Runner) Compute(ctx context.Context, opts Options) (*tile.Record, error) {
	rec, _, _, err := r.ComputeWithCacheInfo(ctx, opts)
	return rec, err
}

func (r *Runner) compute(ctx context.Context, opts Options) (rec *tile.Record, err error) {
	hooks := observability.Pipeline()
	hooks.OnComputeStart(ctx, string(opts.Pattern))
	start := time.Now()
	defer func() {
		tiles := 0
		if rec != nil {
			tiles = rec.Result.TilesNeeded
		}
		hooks.OnComputeComplete(ctx, string(opts.Pattern), tiles, time.Since(start), err)
	}()

	if err := checkSize(opts); err != nil {
		return nil, err
	}
	return tile.ComputeLayout(opts.Room, opts.Tile, opts.Pattern, opts.ComputeOptions()...)
}

// checkSize rejects layouts whose cell grid exceeds opts.MaxCells before
// the cells are generated. The grid size is compared as a float so that
// huge rooms cannot wrap around int.
func checkSize(opts Options) error {
	dims, err := tile.Normalize(opts.Room, opts.Tile)
	if err != nil {
		return err
	}
	policy := tile.DefaultPolicy()
	if opts.Policy != nil {
		policy = *opts.Policy
	}
	cols, rows, err := tile.GridSize(opts.Pattern, opts.Room, dims, policy)
	if err != nil {
		return err
	}
	if cells := cols * rows; !(cells <= float64(opts.MaxCells)) {
		return errors.New(errors.ErrCodeTooLarge,
			"layout has %.0f cells, limit is %d; use larger tiles or a smaller room", cells, opts.MaxCells)
	}
	return nil
}

// =============================================================================
// Persistence
// =============================================================================

// Save stores rec as a named calculation and publishes a saved event.
func (r *Runner) Save(ctx context.Context, rec *tile.Record, name, status string) (*store.Calculation, error) {
	st, err := store.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	calc, err := store.New(name, rec)
	if err != nil {
		return nil, err
	}
	calc.Status = st

	start := time.Now()
	err = r.Store.Save(ctx, calc)
	observability.Store().OnSave(ctx, calc.ID, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	r.publish(ctx, notify.NewEvent(notify.EventSaved, calc.ID, calc.Name, rec))
	return calc, nil
}

// Delete removes a saved calculation and publishes a deleted event.
func (r *Runner) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateCalculationID(id); err != nil {
		return err
	}
	calc, err := r.Store.Get(ctx, id)
	if err != nil {
		return err
	}
	err = r.Store.Delete(ctx, id)
	observability.Store().OnDelete(ctx, id, err)
	if err != nil {
		return err
	}

	r.publish(ctx, notify.NewEvent(notify.EventDeleted, calc.ID, calc.Name, calc.Record))
	return nil
}

// Get loads a saved calculation.
func (r *Runner) Get(ctx context.Context, id string) (*store.Calculation, error) {
	if err := errors.ValidateCalculationID(id); err != nil {
		return nil, err
	}
	return r.Store.Get(ctx, id)
}

// publish sends e and logs failures. Notification never fails a calculation.
func (r *Runner) publish(ctx context.Context, e notify.Event) {
	if r.Notifier == nil {
		return
	}
	if err := r.Notifier.Publish(ctx, e); err != nil {
		r.Logger.Warn("publish event failed", "type", e.Type, "error", err)
	}
}

// =============================================================================
// Batch
// =============================================================================

// ComputeBatch executes every options value with at most parallelism runs at
// once. Results keep the order of batch. The first failure cancels the rest.
func (r *Runner) ComputeBatch(ctx context.Context, batch []Options, parallelism int) ([]*Result, error) {
	if parallelism <= 0 {
		parallelism = DefaultParallelism
	}
	results := make([]*Result, len(batch))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i, opts := range batch {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := r.Execute(ctx, opts)
			if err != nil {
				return fmt.Errorf("calculation %d: %w", i+1, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Close releases resources held by the runner.
func (r *Runner) Close() error {
	var errs []error
	if r.Cache != nil {
		errs = append(errs, r.Cache.Close())
	}
	if r.Store != nil {
		errs = append(errs, r.Store.Close())
	}
	if r.Notifier != nil {
		errs = append(errs, r.Notifier.Close())
	}
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// RecordHash returns the content hash used to key artifacts of rec.
func RecordHash(rec *tile.Record) (string, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "encode record")
	}
	return cache.Hash(data), nil
}
