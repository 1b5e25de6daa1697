package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/alchemytree/pkg/cache"
	apierr "github.com/matzehuels/alchemytree/pkg/errors"
	"github.com/matzehuels/alchemytree/pkg/observability"
	"github.com/matzehuels/alchemytree/pkg/pipeline"
)

const (
	mudRecipe   = `{"Mud": [["Water", "Earth"]]}`
	brickRecipe = `{"Brick": [[{"Mud": [["Water", "Earth"]]}, "Fire"], ["Clay", {"Stone": [[{"Lava": [["Earth", "Fire"]]}, "Air"], ["Earth", "Pressure"]]}]]}`
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	runner := pipeline.NewRunner(cache.NewMemoryCache(), nil, nil)
	t.Cleanup(func() { runner.Close() })
	return New(Config{Runner: runner, Delay: time.Millisecond, MinDelay: time.Millisecond})
}

func post(t *testing.T, s *Server, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody[map[string]string](t, rec)
	if body["status"] != "ok" || body["version"] == "" {
		t.Errorf("body = %v", body)
	}
}

func TestNotFound(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if body := decodeBody[errorBody](t, rec); body.Code != apierr.ErrCodeNotFound {
		t.Errorf("code = %q, want NOT_FOUND", body.Code)
	}
}

func TestLayout(t *testing.T) {
	s := newTestServer(t)
	body := `{"recipe": ` + mudRecipe + `}`

	rec := post(t, s, "/api/layout", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	first := decodeBody[layoutResponse](t, rec)
	if first.Cached {
		t.Error("first layout should not be cached")
	}
	if first.Stats != (layoutStats{Nodes: 3, Edges: 3, Levels: 2}) {
		t.Errorf("stats = %+v", first.Stats)
	}
	n, ok := first.Graph.Node("node-1")
	if !ok || n.Element.Name != "Water" || n.Position.X != -180 || n.Position.Y != 120 {
		t.Errorf("node-1 = %+v, %v", n, ok)
	}

	second := decodeBody[layoutResponse](t, post(t, s, "/api/layout", body))
	if !second.Cached || second.Graph.BuildID != first.Graph.BuildID {
		t.Errorf("second layout cached=%v build=%s, want cached %s", second.Cached, second.Graph.BuildID, first.Graph.BuildID)
	}
}

func TestLayoutOptions(t *testing.T) {
	s := newTestServer(t)

	yaml, _ := json.Marshal("Mud:\n  - [Water, Earth]\n")
	rec := post(t, s, "/api/layout", `{"recipe": `+string(yaml)+`, "format": "yaml", "horizontal_spacing": 10, "parent_edges": true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	resp := decodeBody[layoutResponse](t, rec)
	if resp.Stats.Edges != 5 {
		t.Errorf("edges = %d, want 5 with parent edges", resp.Stats.Edges)
	}
	if n, _ := resp.Graph.Node("node-1"); n.Position.X != -10 {
		t.Errorf("node-1 x = %v, want -10", n.Position.X)
	}
}

type ttlCache struct {
	cache.Cache
	mu   sync.Mutex
	ttls []time.Duration
}

func (c *ttlCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	c.mu.Lock()
	c.ttls = append(c.ttls, ttl)
	c.mu.Unlock()
	return c.Cache.Set(ctx, key, data, ttl)
}

func TestLayoutCacheTTL(t *testing.T) {
	c := &ttlCache{Cache: cache.NewMemoryCache()}
	runner := pipeline.NewRunner(c, nil, nil)
	t.Cleanup(func() { runner.Close() })
	s := New(Config{Runner: runner, TTL: time.Minute, Delay: time.Millisecond, MinDelay: time.Millisecond})

	rec := post(t, s, "/api/layout", `{"recipe": `+mudRecipe+`, "formats": ["dot"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.ttls) == 0 {
		t.Fatal("nothing was cached")
	}
	for i, ttl := range c.ttls {
		if ttl != time.Minute {
			t.Errorf("set %d ttl = %v, want %v", i, ttl, time.Minute)
		}
	}
}

func TestLayoutArtifacts(t *testing.T) {
	s := newTestServer(t)
	rec := post(t, s, "/api/layout", `{"recipe": `+mudRecipe+`, "formats": ["dot", "json"], "levels": 1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	resp := decodeBody[layoutResponse](t, rec)
	dot := string(resp.Artifacts["dot"])
	if !strings.Contains(dot, `"node-0"`) || strings.Contains(dot, `"node-1"`) {
		t.Errorf("dot with levels=1:\n%s", dot)
	}
	if !bytes.Contains(resp.Artifacts["json"], []byte(resp.Graph.BuildID)) {
		t.Error("json artifact should carry the build id")
	}
}

func TestLayoutErrors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		body   string
		status int
		code   apierr.Code
	}{
		{"bad body", `{"recipe": `, http.StatusBadRequest, apierr.ErrCodeInvalidInput},
		{"unknown field", `{"recipe": ` + mudRecipe + `, "colour": "red"}`, http.StatusBadRequest, apierr.ErrCodeInvalidInput},
		{"missing recipe", `{}`, http.StatusBadRequest, apierr.ErrCodeInvalidInput},
		{"null recipe", `{"recipe": null}`, http.StatusBadRequest, apierr.ErrCodeInvalidInput},
		{"malformed pair", `{"recipe": {"Mud": [["Water"]]}}`, http.StatusBadRequest, apierr.ErrCodeMalformedTree},
		{"unknown shape", `{"recipe": {"Mud": [[1, 2]]}}`, http.StatusBadRequest, apierr.ErrCodeInvalidInput},
		{"bad output format", `{"recipe": ` + mudRecipe + `, "formats": ["gif"]}`, http.StatusBadRequest, apierr.ErrCodeInvalidFormat},
		{"negative spacing", `{"recipe": ` + mudRecipe + `, "vertical_spacing": -1}`, http.StatusBadRequest, apierr.ErrCodeInvalidOption},
		{"unsupported input format", `{"recipe": "Mud: []", "format": "xml"}`, http.StatusUnsupportedMediaType, apierr.ErrCodeUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, s, "/api/layout", tt.body)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body)
			}
			body := decodeBody[errorBody](t, rec)
			if body.Code != tt.code || body.Message == "" {
				t.Errorf("body = %+v, want code %s", body, tt.code)
			}
		})
	}
}

func TestLayoutBodyLimit(t *testing.T) {
	runner := pipeline.NewRunner(nil, nil, nil)
	s := New(Config{Runner: runner, MaxBodyBytes: 16})
	rec := post(t, s, "/api/layout", `{"recipe": `+brickRecipe+`}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

type sseEvent struct {
	ID    string
	Event string
	Data  string
}

func parseSSE(t *testing.T, body string) []sseEvent {
	t.Helper()
	var events []sseEvent
	for _, block := range strings.Split(strings.TrimSpace(body), "\n\n") {
		var ev sseEvent
		for _, line := range strings.Split(block, "\n") {
			key, value, _ := strings.Cut(line, ":")
			switch key {
			case "id":
				ev.ID = value
			case "event":
				ev.Event = value
			case "data":
				ev.Data = value
			}
		}
		if ev.Event != "" {
			events = append(events, ev)
		}
	}
	return events
}

func TestReveal(t *testing.T) {
	s := newTestServer(t)
	rec := post(t, s, "/api/reveal", `{"recipe": `+brickRecipe+`, "delay": "1ms"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}

	events := parseSSE(t, rec.Body.String())
	if len(events) != 5 {
		t.Fatalf("got %d events, want 4 levels and complete: %+v", len(events), events)
	}

	wantNodes := []int{1, 4, 6, 2}
	wantEdges := []int{0, 6, 9, 3}
	var build string
	for d := 0; d < 4; d++ {
		if events[d].Event != eventLevel {
			t.Fatalf("event %d = %q, want level", d, events[d].Event)
		}
		var lvl levelEvent
		if err := json.Unmarshal([]byte(events[d].Data), &lvl); err != nil {
			t.Fatalf("decode level %d: %v", d, err)
		}
		if lvl.Depth != d || len(lvl.Nodes) != wantNodes[d] || len(lvl.Edges) != wantEdges[d] {
			t.Errorf("level %d: depth %d, %d nodes, %d edges; want %d nodes, %d edges",
				d, lvl.Depth, len(lvl.Nodes), len(lvl.Edges), wantNodes[d], wantEdges[d])
		}
		for _, n := range lvl.Nodes {
			if n.Depth != d {
				t.Errorf("level %d carries %s at depth %d", d, n.ID, n.Depth)
			}
		}
		if lvl.Status.Cursor != d+1 {
			t.Errorf("level %d cursor = %d", d, lvl.Status.Cursor)
		}
		if d == 0 {
			build = lvl.BuildID
		} else if lvl.BuildID != build {
			t.Errorf("level %d build = %s, want %s", d, lvl.BuildID, build)
		}
	}

	last := events[4]
	if last.Event != eventComplete {
		t.Fatalf("last event = %q, want complete", last.Event)
	}
	var done completeEvent
	if err := json.Unmarshal([]byte(last.Data), &done); err != nil {
		t.Fatal(err)
	}
	if !done.Status.Complete || done.Nodes != 13 || done.Edges != 18 || done.BuildID != build {
		t.Errorf("complete = %+v", done)
	}
	if !strings.Contains(last.Data, `"state":"complete"`) {
		t.Errorf("complete data = %s, want named state", last.Data)
	}
}

func TestRevealLeaf(t *testing.T) {
	s := newTestServer(t)
	rec := post(t, s, "/api/reveal", `{"recipe": {"Fire": null}}`)
	events := parseSSE(t, rec.Body.String())
	if len(events) != 2 || events[0].Event != eventLevel || events[1].Event != eventComplete {
		t.Fatalf("events = %+v, want one level and complete", events)
	}
}

func TestRevealErrors(t *testing.T) {
	runner := pipeline.NewRunner(nil, nil, nil)
	s := New(Config{Runner: runner, MinDelay: 100 * time.Millisecond})

	tests := []struct {
		name string
		body string
		code apierr.Code
	}{
		{"unparseable delay", `{"recipe": ` + mudRecipe + `, "delay": "soon"}`, apierr.ErrCodeInvalidOption},
		{"delay below minimum", `{"recipe": ` + mudRecipe + `, "delay": "1ms"}`, apierr.ErrCodeInvalidOption},
		{"malformed", `{"recipe": {"Mud": [["Water", "Earth", "Fire"]]}}`, apierr.ErrCodeMalformedTree},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, s, "/api/reveal", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			if body := decodeBody[errorBody](t, rec); body.Code != tt.code {
				t.Errorf("code = %q, want %q", body.Code, tt.code)
			}
		})
	}
}

type recordingHTTPHooks struct {
	observability.NoopHTTPHooks
	mu        sync.Mutex
	responses []int
	errors    int
	done      chan string
}

func (h *recordingHTTPHooks) OnResponse(_ context.Context, _, path string, status int, _ time.Duration) {
	h.mu.Lock()
	h.responses = append(h.responses, status)
	h.mu.Unlock()
	if h.done != nil {
		h.done <- path
	}
}

func (h *recordingHTTPHooks) OnError(context.Context, string, string, error) {
	h.mu.Lock()
	h.errors++
	h.mu.Unlock()
}

func TestHTTPHooks(t *testing.T) {
	hooks := &recordingHTTPHooks{}
	observability.SetHTTPHooks(hooks)
	t.Cleanup(observability.Reset)

	s := newTestServer(t)
	post(t, s, "/api/layout", `{"recipe": `+mudRecipe+`}`)
	post(t, s, "/api/layout", `{}`)

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if len(hooks.responses) != 2 || hooks.responses[0] != http.StatusOK || hooks.responses[1] != http.StatusBadRequest {
		t.Errorf("responses = %v, want [200 400]", hooks.responses)
	}
	if hooks.errors != 1 {
		t.Errorf("errors = %d, want 1", hooks.errors)
	}
}

func TestRevealClientDisconnect(t *testing.T) {
	hooks := &recordingHTTPHooks{done: make(chan string, 4)}
	observability.SetHTTPHooks(hooks)
	t.Cleanup(observability.Reset)

	runner := pipeline.NewRunner(nil, nil, nil)
	s := New(Config{Runner: runner, Delay: time.Hour})
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, srv.URL+"/api/reveal", strings.NewReader(`{"recipe": `+mudRecipe+`}`))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	cancel()
	resp.Body.Close()

	select {
	case path := <-hooks.done:
		if path != "/api/reveal" {
			t.Errorf("finished %s, want /api/reveal", path)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("reveal handler did not return after the client went away")
	}
}
