package observability

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level. Events carrying
// an error are logged at warn level.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that log through l, prefixed with the event
// category.
func NewLogHooks(l *log.Logger) *LogHooks {
	return &LogHooks{logger: l}
}

func (h *LogHooks) with(category string) *log.Logger {
	return h.logger.WithPrefix(category)
}

func (h *LogHooks) done(category, msg string, err error, kv ...any) {
	l := h.with(category)
	if err != nil {
		l.Warn(msg+" failed", append(kv, "error", err)...)
		return
	}
	l.Debug(msg, kv...)
}

func (h *LogHooks) OnParseStart(_ context.Context, format, target string) {
	h.with("pipeline").Debug("parse", "format", format, "target", target)
}

func (h *LogHooks) OnParseComplete(_ context.Context, format, element string, nodeCount int, d time.Duration, err error) {
	h.done("pipeline", "parsed", err, "format", format, "element", element, "nodes", nodeCount, "took", d)
}

func (h *LogHooks) OnLayoutStart(_ context.Context, element string, nodeCount int) {
	h.with("pipeline").Debug("layout", "element", element, "nodes", nodeCount)
}

func (h *LogHooks) OnLayoutComplete(_ context.Context, element string, levels int, d time.Duration, err error) {
	h.done("pipeline", "laid out", err, "element", element, "levels", levels, "took", d)
}

func (h *LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.with("pipeline").Debug("render", "formats", strings.Join(formats, ","))
}

func (h *LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.done("pipeline", "rendered", err, "formats", strings.Join(formats, ","), "took", d)
}

func (h *LogHooks) OnStateChange(buildID, from, to string) {
	h.with("reveal").Debug("state", "build", shortID(buildID), "from", from, "to", to)
}

func (h *LogHooks) OnLevelRevealed(buildID string, depth, nodes, edges int) {
	h.with("reveal").Debug("level", "build", shortID(buildID), "depth", depth, "nodes", nodes, "edges", edges)
}

func (h *LogHooks) OnComplete(buildID string, levels int, elapsed time.Duration) {
	h.with("reveal").Debug("complete", "build", shortID(buildID), "levels", levels, "took", elapsed)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.with("cache").Debug("hit", "kind", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.with("cache").Debug("miss", "kind", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.with("cache").Debug("set", "kind", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, path string) {
	h.with("http").Debug("request", "method", method, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.with("http").Debug("response", "method", method, "path", path, "status", status, "took", d)
}

func (h *LogHooks) OnError(_ context.Context, method, path string, err error) {
	h.with("http").Warn("request failed", "method", method, "path", path, "error", err)
}

// shortID trims build IDs to their first eight characters.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
