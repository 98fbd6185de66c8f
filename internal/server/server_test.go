package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flashaov/pkg/errors"
	"github.com/matzehuels/flashaov/pkg/observability"
	"github.com/matzehuels/flashaov/pkg/store"
)

const view1Request = `{
  "scene": {
    "name": "shot_010",
    "layers": [{
      "name": "View1",
      "passes": [
        {"name": "Image", "enabled": true},
        {"name": "Alpha", "enabled": true},
        {"name": "Depth", "enabled": true},
        {"name": "DiffCol", "enabled": true},
        {"name": "CryptoObject00", "enabled": true}
      ]
    }]
  },
  "options": {"flags": {"separate_data": true, "separate_cryptomatte": true}, "denoise": false}%s
}`

func newTestServer(t *testing.T, st store.Store) *httptest.Server {
	t.Helper()
	s := New(Options{Logger: log.New(io.Discard), Store: st})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, ts *httptest.Server, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(ts.URL+"/v1/reconcile", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp, data
}

func nodeNames(resp ReconcileResponse) map[string]bool {
	names := make(map[string]bool)
	for _, n := range resp.Graph.Nodes {
		names[n.Name] = true
	}
	return names
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, nil)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "ok" || body.Store != "null" {
		t.Errorf("health = %+v", body)
	}
}

func TestReconcileEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)
	resp, data := post(t, ts, strings.Replace(view1Request, "%s", "", 1))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, data)
	}
	var out ReconcileResponse
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	names := nodeNames(out)
	for _, want := range []string{
		"View1_RLayers_Flash",
		"View1_rgb_OutputFile_Flash",
		"View1_data_OutputFile_Flash",
		"View1_cryptomatte_OutputFile_Flash",
	} {
		if !names[want] {
			t.Errorf("response graph missing %s", want)
		}
	}
	if len(out.Graph.Links) != 4 {
		t.Errorf("links = %d, want 4", len(out.Graph.Links))
	}
	if out.Report == nil || out.Report.PassID == "" || len(out.Report.Warnings) != 0 {
		t.Errorf("report = %+v", out.Report)
	}
}

func TestReconcileEndpointIsIdempotent(t *testing.T) {
	ts := newTestServer(t, nil)
	_, data := post(t, ts, strings.Replace(view1Request, "%s", "", 1))
	var first ReconcileResponse
	if err := json.Unmarshal(data, &first); err != nil {
		t.Fatal(err)
	}
	graph, _ := json.Marshal(first.Graph)
	_, data = post(t, ts, strings.Replace(view1Request, "%s", `, "graph": `+string(graph), 1))
	var second ReconcileResponse
	if err := json.Unmarshal(data, &second); err != nil {
		t.Fatal(err)
	}
	a, _ := json.Marshal(first.Graph)
	b, _ := json.Marshal(second.Graph)
	if !bytes.Equal(a, b) {
		t.Errorf("second pass changed the graph:\n%s\n%s", a, b)
	}
	if second.Report.Stats.NodesCreated != 0 {
		t.Errorf("second pass created %d nodes", second.Report.Stats.NodesCreated)
	}
}

func TestReconcileEndpointErrors(t *testing.T) {
	ts := newTestServer(t, nil)
	tests := []struct {
		name   string
		body   string
		status int
		code   errors.Code
	}{
		{"malformed", `{"scene":`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"unknown field", `{"scene": {}, "colour": 1}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"duplicate layer", `{"scene": {"layers": [{"name": "A"}, {"name": "A"}]}}`, http.StatusBadRequest, errors.ErrCodeInvalidScene},
		{"bad graph", `{"scene": {}, "graph": {"nodes": [{"name": "X", "type": "BLUR"}], "links": []}}`, http.StatusBadRequest, errors.ErrCodeInvalidGraph},
		{"persist without name", `{"scene": {}, "persist": true}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := post(t, ts, tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d (%s)", resp.StatusCode, tt.status, data)
			}
			var body errorBody
			if err := json.Unmarshal(data, &body); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if body.Code != tt.code {
				t.Errorf("code = %q, want %q", body.Code, tt.code)
			}
		})
	}
}

func TestPersistAndFetch(t *testing.T) {
	st, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ts := newTestServer(t, st)

	resp, data := post(t, ts, strings.Replace(view1Request, "%s", `, "persist": true`, 1))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, data)
	}

	get, err := http.Get(ts.URL + "/v1/graphs/shot_010")
	if err != nil {
		t.Fatal(err)
	}
	defer get.Body.Close()
	if get.StatusCode != http.StatusOK {
		t.Fatalf("GET status = %d", get.StatusCode)
	}
	var snap struct {
		Nodes []struct{ Name string } `json:"nodes"`
	}
	if err := json.NewDecoder(get.Body).Decode(&snap); err != nil {
		t.Fatal(err)
	}
	if len(snap.Nodes) != 4 {
		t.Errorf("stored nodes = %d, want 4", len(snap.Nodes))
	}

	// Without a graph the stored snapshot is the starting point.
	_, data = post(t, ts, strings.Replace(view1Request, "%s", "", 1))
	var again ReconcileResponse
	if err := json.Unmarshal(data, &again); err != nil {
		t.Fatal(err)
	}
	if again.Report.Stats.NodesCreated != 0 {
		t.Errorf("pass over stored snapshot created %d nodes", again.Report.Stats.NodesCreated)
	}

	missing, err := http.Get(ts.URL + "/v1/graphs/none")
	if err != nil {
		t.Fatal(err)
	}
	missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Errorf("missing snapshot status = %d, want 404", missing.StatusCode)
	}
}

type recordingHTTP struct {
	mu       sync.Mutex
	requests []string
	statuses []int
}

func (h *recordingHTTP) OnRequest(_ context.Context, method, path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.requests = append(h.requests, method+" "+path)
}

func (h *recordingHTTP) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.statuses = append(h.statuses, status)
}

func TestHTTPHooks(t *testing.T) {
	hooks := &recordingHTTP{}
	observability.SetHTTPHooks(hooks)
	defer observability.Reset()

	ts := newTestServer(t, nil)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	resp, err = http.Get(ts.URL + "/nope")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if len(hooks.requests) != 2 || hooks.requests[0] != "GET /healthz" {
		t.Errorf("requests = %v", hooks.requests)
	}
	if len(hooks.statuses) != 2 || hooks.statuses[0] != 200 || hooks.statuses[1] != 404 {
		t.Errorf("statuses = %v", hooks.statuses)
	}
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	s := New(Options{Logger: log.New(io.Discard)})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
