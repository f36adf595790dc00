package testsupport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
)

// LabelAPI is a fake label API serving a mutable id → classname table at
// /images and /images/{id}.
type LabelAPI struct {
	Server *httptest.Server

	mu       sync.Mutex
	labels   map[string]string
	requests int
}

// NewLabelAPI starts a fake label API and registers cleanup.
func NewLabelAPI(t testing.TB, labels map[string]string) *LabelAPI {
	t.Helper()
	api := &LabelAPI{labels: make(map[string]string, len(labels))}
	for id, label := range labels {
		api.labels[id] = label
	}
	api.Server = httptest.NewServer(http.HandlerFunc(api.serve))
	t.Cleanup(api.Server.Close)
	return api
}

// URL returns the API root to configure clients with.
func (a *LabelAPI) URL() string {
	return a.Server.URL + "/images"
}

// Set changes or adds a label.
func (a *LabelAPI) Set(id, label string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.labels[id] = label
}

// Requests reports how many requests the API has served.
func (a *LabelAPI) Requests() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.requests
}

func (a *LabelAPI) serve(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.requests++

	path := strings.TrimSuffix(r.URL.Path, "/")
	w.Header().Set("Content-Type", "application/json")
	switch {
	case path == "/images":
		ids := make([]string, 0, len(a.labels))
		for id := range a.labels {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		records := make([]map[string]string, 0, len(ids))
		for _, id := range ids {
			records = append(records, map[string]string{"id": id, "classname": a.labels[id]})
		}
		_ = json.NewEncoder(w).Encode(records)
	case strings.HasPrefix(path, "/images/"):
		id := strings.TrimPrefix(path, "/images/")
		label, ok := a.labels[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte("{}"))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"id": id, "classname": label})
	default:
		http.NotFound(w, r)
	}
}
