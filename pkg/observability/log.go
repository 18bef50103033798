package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every hook event to a logger at debug level.
type LogHooks struct {
	Logger *log.Logger
}

// UseLogger registers LogHooks for every hook kind.
func UseLogger(l *log.Logger) {
	h := LogHooks{Logger: l}
	SetPipelineHooks(h)
	SetCacheHooks(h)
	SetStoreHooks(h)
	SetHTTPHooks(h)
}

func (h LogHooks) OnComputeStart(_ context.Context, pattern string) {
	h.Logger.Debug("compute start", "pattern", pattern)
}

func (h LogHooks) OnComputeComplete(_ context.Context, pattern string, tiles int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("compute failed", "pattern", pattern, "duration", d, "error", err)
		return
	}
	h.Logger.Debug("compute done", "pattern", pattern, "tiles", tiles, "duration", d)
}

func (h LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.Logger.Debug("render start", "formats", formats)
}

func (h LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.Logger.Debug("render done", "formats", formats, "duration", d, "error", err)
}

func (h LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h LogHooks) OnSave(_ context.Context, id string, d time.Duration, err error) {
	h.Logger.Debug("store save", "id", id, "duration", d, "error", err)
}

func (h LogHooks) OnDelete(_ context.Context, id string, err error) {
	h.Logger.Debug("store delete", "id", id, "error", err)
}

func (h LogHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.Logger.Debug("http response", "method", method, "route", route, "status", status, "duration", d)
}

var (
	_ PipelineHooks = LogHooks{}
	_ CacheHooks    = LogHooks{}
	_ StoreHooks    = LogHooks{}
	_ HTTPHooks     = LogHooks{}
)
