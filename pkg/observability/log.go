package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level. It implements
// PipelineHooks, CacheHooks and HTTPHooks.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that log to l. A nil logger uses log.Default().
func NewLogHooks(l *log.Logger) *LogHooks {
	if l == nil {
		l = log.Default()
	}
	return &LogHooks{logger: l.WithPrefix("hooks")}
}

func (h *LogHooks) OnParseStart(_ context.Context, layoutBytes int) {
	h.logger.Debug("parse start", "bytes", layoutBytes)
}

func (h *LogHooks) OnParseComplete(_ context.Context, keyCount int, d time.Duration, err error) {
	h.done("parse", d, err, "keys", keyCount)
}

func (h *LogHooks) OnPlateStart(_ context.Context, keyCount int) {
	h.logger.Debug("plate start", "keys", keyCount)
}

func (h *LogHooks) OnPlateComplete(_ context.Context, stabilizerCount int, d time.Duration, err error) {
	h.done("plate", d, err, "stabilizers", stabilizerCount)
}

func (h *LogHooks) OnExportStart(_ context.Context, formats []string) {
	h.logger.Debug("export start", "formats", formats)
}

func (h *LogHooks) OnExportComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.done("export", d, err, "formats", formats)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, path string) {
	h.logger.Debug("request", "method", method, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "path", path, "status", status,
		"duration", d.Round(time.Microsecond))
}

func (h *LogHooks) OnError(_ context.Context, method, path string, err error) {
	h.logger.Debug("request failed", "method", method, "path", path, "err", err)
}

func (h *LogHooks) done(stage string, d time.Duration, err error, kv ...any) {
	kv = append(kv, "duration", d.Round(time.Microsecond))
	if err != nil {
		h.logger.Debug(stage+" failed", append(kv, "err", err)...)
		return
	}
	h.logger.Debug(stage+" done", kv...)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)
