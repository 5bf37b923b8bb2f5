package cli

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mindcraft/pkg/observability"
)

// logHooks routes observability events to the CLI logger. Routine events go
// to debug; failures and dropped connections are warnings.
type logHooks struct {
	logger *log.Logger
}

var registerOnce sync.Once

// registerLogHooks installs logging hooks for every event category. Only the
// first call has an effect.
func registerLogHooks(l *log.Logger) {
	registerOnce.Do(func() {
		h := &logHooks{logger: l}
		observability.SetPersistenceHooks(h)
		observability.SetStoreHooks(h)
		observability.SetRenderHooks(h)
		observability.SetCacheHooks(h)
	})
}

func elapsed(d time.Duration) time.Duration { return d.Round(time.Millisecond) }

func (h *logHooks) OnLoad(_ context.Context, source string, nodes, edges, dropped int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("load failed", "map", source, "err", err)
		return
	}
	if dropped > 0 {
		h.logger.Warn("dropped connections with unknown endpoints", "map", source, "dropped", dropped)
	}
	h.logger.Debug("loaded map", "map", source, "nodes", nodes, "edges", edges, "elapsed", elapsed(d))
}

func (h *logHooks) OnSave(_ context.Context, target string, nodes, edges int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("save failed", "map", target, "err", err)
		return
	}
	h.logger.Debug("saved map", "map", target, "nodes", nodes, "edges", edges, "elapsed", elapsed(d))
}

func (h *logHooks) OnRead(_ context.Context, backend, name string, d time.Duration, err error) {
	h.logger.Debug("store read", "backend", backend, "name", name, "elapsed", elapsed(d), "err", err)
}

func (h *logHooks) OnWrite(_ context.Context, backend, name string, size int, d time.Duration, err error) {
	h.logger.Debug("store write", "backend", backend, "name", name, "records", size, "elapsed", elapsed(d), "err", err)
}

func (h *logHooks) OnDelete(_ context.Context, backend, name string, err error) {
	h.logger.Debug("store delete", "backend", backend, "name", name, "err", err)
}

func (h *logHooks) OnRenderStart(_ context.Context, format string, nodeCount int) {
	h.logger.Debug("rendering", "format", format, "nodes", nodeCount)
}

func (h *logHooks) OnRenderComplete(_ context.Context, format string, size int, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("render failed", "format", format, "err", err)
		return
	}
	h.logger.Debug("rendered", "format", format, "bytes", size, "elapsed", elapsed(d))
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}
