package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/keyplate/pkg/cache"
	"github.com/matzehuels/keyplate/pkg/observability"
	"github.com/matzehuels/keyplate/pkg/plate"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
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
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete parse → plate → export pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		RunID:      uuid.NewString(),
		LayoutHash: cache.HashLayout(opts.Layout),
		Artifacts:  make(map[string][]byte),
	}
	logger := r.Logger.With("run", result.RunID[:8])
	if opts.Name != "" {
		logger = logger.With("name", opts.Name)
	}

	// Stage 1: Parse
	parseStart := time.Now()
	keys, parseHit, err := r.ParseWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	result.Keys = keys
	result.Stats.ParseTime = time.Since(parseStart)
	result.Stats.KeyCount = len(keys)
	result.CacheInfo.ParseHit = parseHit

	logger.Info("parsed layout",
		"keys", len(keys),
		"cached", parseHit,
		"duration", result.Stats.ParseTime)

	// Stage 2: Plate
	plateStart := time.Now()
	p, plateHit, err := r.BuildPlateWithCacheInfo(ctx, keys, opts)
	if err != nil {
		return nil, fmt.Errorf("plate: %w", err)
	}
	result.Plate = p
	result.Stats.PlateTime = time.Since(plateStart)
	result.Stats.StabilizerCount = len(p.Stabilizers)
	result.CacheInfo.PlateHit = plateHit

	logger.Info("derived plate",
		"width", fmt.Sprintf("%.2f", p.Width),
		"height", fmt.Sprintf("%.2f", p.Height),
		"stabilizers", len(p.Stabilizers),
		"cached", plateHit,
		"duration", result.Stats.PlateTime)

	// Stage 3: Export
	exportStart := time.Now()
	artifacts, exportHit, err := r.ExportWithCacheInfo(ctx, p, opts)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.ExportTime = time.Since(exportStart)
	result.CacheInfo.ExportHit = exportHit

	logger.Info("exported plate",
		"formats", opts.Formats,
		"cached", exportHit,
		"duration", result.Stats.ExportTime)

	return result, nil
}

// ParseWithCacheInfo interprets the layout with caching and returns cache hit info.
func (r *Runner) ParseWithCacheInfo(ctx context.Context, opts Options) (keys []plate.Key, hit bool, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForParse(); err != nil {
		return nil, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnParseStart(ctx, len(opts.Layout))
	start := time.Now()
	defer func() { hooks.OnParseComplete(ctx, len(keys), time.Since(start), err) }()

	cacheKey := r.Keyer.LayoutKey(cache.HashLayout(opts.Layout), opts.LayoutKeyOpts())

	// Try cache first (unless refresh requested)
	if data, ok := r.lookup(ctx, cacheKey, "layout", opts.Refresh); ok {
		if cached, err := plate.UnmarshalKeys(data); err == nil && len(cached) > 0 {
			return cached, true, nil
		}
	}

	keys, err = Parse(opts)
	if err != nil {
		return nil, false, err
	}

	if data, err := plate.MarshalKeys(keys); err == nil {
		r.store(ctx, cacheKey, "layout", data, cache.TTLLayout)
	}
	return keys, false, nil
}

// Parse is a convenience wrapper that calls ParseWithCacheInfo and discards the cache hit info.
func (r *Runner) Parse(ctx context.Context, opts Options) ([]plate.Key, error) {
	keys, _, err := r.ParseWithCacheInfo(ctx, opts)
	return keys, err
}

// BuildPlateWithCacheInfo derives a plate with caching and returns cache hit info.
func (r *Runner) BuildPlateWithCacheInfo(ctx context.Context, keys []plate.Key, opts Options) (p *plate.Plate, hit bool, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForPlate(); err != nil {
		return nil, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnPlateStart(ctx, len(keys))
	start := time.Now()
	defer func() {
		n := 0
		if p != nil {
			n = len(p.Stabilizers)
		}
		hooks.OnPlateComplete(ctx, n, time.Since(start), err)
	}()

	keyData, err := plate.MarshalKeys(keys)
	if err != nil {
		return nil, false, fmt.Errorf("serialize keys for cache key: %w", err)
	}
	cacheKey := r.Keyer.PlateKey(cache.Hash(keyData), opts.PlateKeyOpts())

	if data, ok := r.lookup(ctx, cacheKey, "plate", opts.Refresh); ok {
		if cached, err := plate.UnmarshalPlate(data); err == nil {
			return &cached, true, nil
		}
		// If deserialization fails, fall through to recompute
	}

	p, err = BuildPlate(keys, opts)
	if err != nil {
		return nil, false, err
	}

	if data, err := plate.MarshalPlate(*p); err == nil {
		r.store(ctx, cacheKey, "plate", data, cache.TTLPlate)
	}
	return p, false, nil
}

// BuildPlate is a convenience wrapper that calls BuildPlateWithCacheInfo and discards the cache hit info.
func (r *Runner) BuildPlate(ctx context.Context, keys []plate.Key, opts Options) (*plate.Plate, error) {
	p, _, err := r.BuildPlateWithCacheInfo(ctx, keys, opts)
	return p, err
}

// ExportWithCacheInfo encodes the plate with caching and returns cache hit info.
// The hit is true only when every requested format came from the cache.
func (r *Runner) ExportWithCacheInfo(ctx context.Context, p *plate.Plate, opts Options) (artifacts map[string][]byte, hit bool, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForExport(); err != nil {
		return nil, false, err
	}
	if p == nil {
		return nil, false, fmt.Errorf("export: nil plate")
	}

	hooks := observability.Pipeline()
	hooks.OnExportStart(ctx, opts.Formats)
	start := time.Now()
	defer func() { hooks.OnExportComplete(ctx, opts.Formats, time.Since(start), err) }()

	plateData, err := plate.MarshalPlate(*p)
	if err != nil {
		return nil, false, fmt.Errorf("serialize plate for cache key: %w", err)
	}
	plateHash := cache.Hash(plateData)

	// Try to get all formats from cache
	artifacts = make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(plateHash, opts.ArtifactKeyOpts(format))
		data, ok := r.lookup(ctx, cacheKey, "artifact", opts.Refresh)
		if !ok {
			break
		}
		artifacts[format] = data
	}
	if len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil
	}

	artifacts, err = Export(p, opts)
	if err != nil {
		return nil, false, err
	}
	for format, data := range artifacts {
		cacheKey := r.Keyer.ArtifactKey(plateHash, opts.ArtifactKeyOpts(format))
		r.store(ctx, cacheKey, "artifact", data, cache.TTLArtifact)
	}
	return artifacts, false, nil
}

// Export is a convenience wrapper that calls ExportWithCacheInfo and discards the cache hit info.
func (r *Runner) Export(ctx context.Context, p *plate.Plate, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.ExportWithCacheInfo(ctx, p, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// lookup reads key from the cache, reporting the hit or miss to the cache
// hooks. Cache errors are logged and treated as misses.
func (r *Runner) lookup(ctx context.Context, key, keyType string, refresh bool) ([]byte, bool) {
	if refresh {
		return nil, false
	}
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "type", keyType, "err", err)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true
}

// store writes data to the cache. Failures are logged, never returned.
func (r *Runner) store(ctx context.Context, key, keyType string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
