package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/tilecalc/pkg/cache"
	"github.com/matzehuels/tilecalc/pkg/observability"
	"github.com/matzehuels/tilecalc/pkg/render"
	"github.com/matzehuels/tilecalc/pkg/report"
	"github.com/matzehuels/tilecalc/pkg/store"
	"github.com/matzehuels/tilecalc/pkg/tile"
)

// RenderWithCacheInfo generates artifacts for rec and reports whether every
// layout artifact came from cache. recordHash keys the layout artifacts; an
// empty hash disables artifact caching. calc supplies the report header and
// may be nil. Reports carry the print date and are never cached.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, rec *tile.Record, recordHash string, calc *store.Calculation, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	artifacts, hit, err := r.render(ctx, rec, recordHash, calc, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	return artifacts, hit, err
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, rec *tile.Record, recordHash string, calc *store.Calculation, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, rec, recordHash, calc, opts)
	return artifacts, err
}

func (r *Runner) render(ctx context.Context, rec *tile.Record, recordHash string, calc *store.Calculation, opts Options) (map[string][]byte, bool, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	layoutFormats := opts.layoutFormats()

	// Try to get all layout formats from cache
	var missing []string
	for _, format := range layoutFormats {
		if recordHash == "" {
			missing = append(missing, format)
			continue
		}
		key := r.Keyer.ArtifactKey(recordHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "artifact")
			artifacts[format] = data
			continue
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
		missing = append(missing, format)
	}
	allCached := len(missing) == 0

	if len(missing) > 0 {
		rendered, err := render.RenderAll(ctx, rec, missing, opts.RenderOptions()...)
		if err != nil {
			return nil, false, err
		}
		for format, data := range rendered {
			artifacts[format] = data
			if recordHash == "" {
				continue
			}
			key := r.Keyer.ArtifactKey(recordHash, opts.ArtifactKeyOpts(format))
			if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
				opts.Logger.Warn("cache write failed", "format", format, "error", err)
			} else {
				observability.Cache().OnCacheSet(ctx, "artifact", len(data))
			}
		}
	}

	for _, format := range opts.Formats {
		if !IsReportFormat(format) {
			continue
		}
		data, err := renderReport(format, rec, ReportMeta(calc), opts)
		if err != nil {
			return nil, false, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, allCached && len(layoutFormats) > 0, nil
}

func renderReport(format string, rec *tile.Record, meta report.Meta, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case FormatReportPDF:
		err = report.PDF(&buf, rec, meta, opts.RenderOptions()...)
	case FormatReportMD:
		err = report.Markdown(&buf, rec, meta)
	default:
		err = ValidateFormat(format)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReportMeta returns the report header for a saved calculation. A nil
// calculation yields an anonymous header.
func ReportMeta(calc *store.Calculation) report.Meta {
	if calc == nil {
		return report.Meta{}
	}
	return report.Meta{
		Project:   calc.Name,
		Status:    calc.Status.Label(),
		CreatedAt: calc.CreatedAt,
	}
}
