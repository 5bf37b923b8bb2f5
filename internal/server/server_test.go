package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/matzehuels/mindcraft/pkg/errors"
	"github.com/matzehuels/mindcraft/pkg/mapfile"
	"github.com/matzehuels/mindcraft/pkg/mindmap"
	"github.com/matzehuels/mindcraft/pkg/observability"
	"github.com/matzehuels/mindcraft/pkg/store"
)

func sampleMap(t *testing.T, labels ...string) *mindmap.Map {
	t.Helper()
	m := mindmap.New()
	var prev mindmap.NodeID
	for i, label := range labels {
		id, err := m.CreateNode(mindmap.Point{X: 100 + 200*float64(i), Y: 100}, label)
		if err != nil {
			t.Fatalf("CreateNode(%q): %v", label, err)
		}
		if prev != mindmap.NoNode {
			m.CreateEdge(prev, id)
		}
		prev = id
	}
	return m
}

func newTestServer(t *testing.T, st store.Store, metrics *Metrics) *Server {
	t.Helper()
	ctx := context.Background()
	if err := store.SaveMap(ctx, st, "ideas", sampleMap(t, "Idea", "Plan")); err != nil {
		t.Fatalf("SaveMap: %v", err)
	}
	s, err := New(ctx, Options{Name: "ideas", Store: st, Metrics: metrics})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, string(body)
}

func TestRoutes(t *testing.T) {
	s := newTestServer(t, store.NewMemoryStore(), nil)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	tests := []struct {
		path        string
		contentType string
		contains    string
	}{
		{"/healthz", "", "ok"},
		{"/api/map", "application/json", `"text": "Plan"`},
		{"/api/map/stats", "application/json", `"nodes":2`},
		{"/map.dot", "text/vnd.graphviz", "1 -- 2;"},
		{"/map.svg", "image/svg+xml", "<svg"},
		{"/map.html", "text/html", "<html"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, body := get(t, ts.URL+tt.path)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d, body %q", resp.StatusCode, body)
			}
			if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, tt.contentType) {
				t.Errorf("Content-Type = %q, want prefix %q", ct, tt.contentType)
			}
			if !strings.Contains(body, tt.contains) {
				t.Errorf("body does not contain %q:\n%s", tt.contains, body)
			}
		})
	}

	resp, _ := get(t, ts.URL+"/map.png")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("/map.png status = %d, want 404", resp.StatusCode)
	}
	resp, _ = get(t, ts.URL+"/metrics")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("/metrics without Metrics status = %d, want 404", resp.StatusCode)
	}
}

func TestDocumentRoundTrips(t *testing.T) {
	s := newTestServer(t, store.NewMemoryStore(), nil)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	_, body := get(t, ts.URL+"/api/map")
	doc, err := mapfile.Unmarshal([]byte(body), mapfile.Options{})
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(doc.Nodes) != 2 || len(doc.Connections) != 1 {
		t.Errorf("got %d nodes, %d connections; want 2, 1", len(doc.Nodes), len(doc.Connections))
	}
	if c := doc.Connections[0]; c.From != 1 || c.To != 2 {
		t.Errorf("connection = %+v, want 1-2", c)
	}
}

func TestNewErrors(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()

	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"missing map", Options{Name: "nope", Store: st}, errors.ErrCodeNotFound},
		{"bad name", Options{Name: "../x", Store: st}, errors.ErrCodeInvalidName},
		{"no store", Options{Name: "ideas"}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(ctx, tt.opts)
			if !errors.Is(err, tt.code) {
				t.Errorf("New() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestReloadKeepsLastGoodMap(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	s := newTestServer(t, st, nil)

	if err := st.Delete(ctx, "ideas"); err != nil {
		t.Fatal(err)
	}
	if err := s.Reload(ctx); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Fatalf("Reload() error = %v, want NOT_FOUND", err)
	}
	if got := s.Stats(); got.Nodes != 2 || got.Edges != 1 {
		t.Errorf("Stats() = %+v, want the previous map", got)
	}
}

func TestWebsocketPushesReloads(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	s := newTestServer(t, st, nil)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	readDoc := func() *mapfile.Document {
		t.Helper()
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("ReadMessage: %v", err)
		}
		var doc mapfile.Document
		if err := json.Unmarshal(data, &doc); err != nil {
			t.Fatalf("decode message: %v", err)
		}
		return &doc
	}

	if doc := readDoc(); len(doc.Nodes) != 2 {
		t.Fatalf("initial document has %d nodes, want 2", len(doc.Nodes))
	}

	if err := store.SaveMap(ctx, st, "ideas", sampleMap(t, "Idea", "Plan", "Risks")); err != nil {
		t.Fatal(err)
	}
	if err := s.Reload(ctx); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	doc := readDoc()
	if len(doc.Nodes) != 3 || len(doc.Connections) != 2 {
		t.Errorf("pushed document has %d nodes, %d connections; want 3, 2", len(doc.Nodes), len(doc.Connections))
	}
}

func TestWatchReloadsFileStore(t *testing.T) {
	fs, err := store.NewFileStore(t.TempDir(), mapfile.Options{})
	if err != nil {
		t.Fatal(err)
	}
	s := newTestServer(t, fs, nil)
	if s.WatchPath() != fs.Path("ideas") {
		t.Fatalf("WatchPath() = %q, want %q", s.WatchPath(), fs.Path("ideas"))
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Watch(ctx) }()
	defer func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Watch: %v", err)
		}
	}()

	// Keep rewriting until the watcher has picked the file up.
	bigger := sampleMap(t, "Idea", "Plan", "Risks", "Budget")
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if err := store.SaveMap(context.Background(), fs, "ideas", bigger); err != nil {
			t.Fatal(err)
		}
		time.Sleep(300 * time.Millisecond)
		if s.Stats().Nodes == 4 {
			return
		}
	}
	t.Fatalf("map not reloaded: %+v", s.Stats())
}

func TestWatchUnsupported(t *testing.T) {
	s := newTestServer(t, store.NewMemoryStore(), nil)
	if s.WatchPath() != "" {
		t.Errorf("WatchPath() = %q, want empty", s.WatchPath())
	}
	if err := s.Watch(context.Background()); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("Watch() error = %v, want UNSUPPORTED", err)
	}
}

func TestMetrics(t *testing.T) {
	metrics := NewMetrics()
	metrics.Register()
	defer observability.Reset()

	s := newTestServer(t, store.Instrument(store.NewMemoryStore(), store.BackendMemory), metrics)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	get(t, ts.URL+"/map.dot")
	_, body := get(t, ts.URL+"/metrics")

	for _, want := range []string{
		`mindcraft_map_loads_total{status="ok"} 1`,
		`mindcraft_map_saves_total{status="ok"} 1`,
		"mindcraft_map_nodes 2",
		`mindcraft_store_operations_total{backend="mem",op="read",status="ok"} 1`,
		`mindcraft_render_total{format="dot",status="ok"} 1`,
		`mindcraft_http_requests_total{code="200",route="/map.dot"} 1`,
		"go_goroutines",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}
