package shell

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/youthcamp/portal/internal/statestore"
)

// upstream fails on demand.
type upstream struct {
	fail  bool
	calls int
}

func (u *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u.calls++
	if u.fail {
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html")
	_, _ = w.Write([]byte("page:" + r.URL.Path))
}

func navRequest(path string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Accept", "text/html")
	return req
}

func TestNavigationNetworkFirst(t *testing.T) {
	up := &upstream{}
	cache := New("v1", statestore.NewMemoryKV(), nil, up)

	rec := httptest.NewRecorder()
	cache.ServeHTTP(rec, navRequest("/"))
	if rec.Code != http.StatusOK || rec.Body.String() != "page:/" {
		t.Fatalf("expected fresh page, got %d %q", rec.Code, rec.Body.String())
	}

	// Upstream fails: the cached copy serves.
	up.fail = true
	rec = httptest.NewRecorder()
	cache.ServeHTTP(rec, navRequest("/"))
	if rec.Code != http.StatusOK || rec.Body.String() != "page:/" {
		t.Errorf("expected cache fallback, got %d %q", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Shell-Cache") != "hit" {
		t.Error("expected cache hit marker")
	}
	if up.calls != 2 {
		t.Errorf("navigation must always try the network first, got %d calls", up.calls)
	}
}

func TestNavigationNoCachePassesFailureThrough(t *testing.T) {
	up := &upstream{fail: true}
	cache := New("v1", statestore.NewMemoryKV(), nil, up)

	rec := httptest.NewRecorder()
	cache.ServeHTTP(rec, navRequest("/never-seen"))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected upstream failure to pass through, got %d", rec.Code)
	}
}

func TestAssetCacheFirst(t *testing.T) {
	up := &upstream{}
	cache := New("v1", statestore.NewMemoryKV(), nil, up)

	req := httptest.NewRequest(http.MethodGet, "/static/app.js", nil)
	rec := httptest.NewRecorder()
	cache.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if up.calls != 1 {
		t.Fatalf("expected one upstream call, got %d", up.calls)
	}

	// Second request must come from cache, not upstream.
	rec = httptest.NewRecorder()
	cache.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/app.js", nil))
	if up.calls != 1 {
		t.Errorf("asset must be served cache-first, got %d upstream calls", up.calls)
	}
	if rec.Body.String() != "page:/static/app.js" {
		t.Errorf("unexpected cached body %q", rec.Body.String())
	}
}

func TestSynthetic503WhenBothFail(t *testing.T) {
	up := &upstream{fail: true}
	cache := New("v1", statestore.NewMemoryKV(), nil, up)

	rec := httptest.NewRecorder()
	cache.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/app.js", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected synthetic 503, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "offline") {
		t.Errorf("expected offline body, got %q", rec.Body.String())
	}
}

func TestNonGetNeverIntercepted(t *testing.T) {
	up := &upstream{fail: true}
	kv := statestore.NewMemoryKV()
	cache := New("v1", kv, nil, up)

	rec := httptest.NewRecorder()
	cache.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/submit", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("POST must pass straight through, got %d", rec.Code)
	}
	if keys := kv.Keys(context.Background(), statestore.ShellPrefix); len(keys) != 0 {
		t.Errorf("POST must never be cached, got %v", keys)
	}
}

func TestActivatePrunesOldVersionsAndPrecaches(t *testing.T) {
	kv := statestore.NewMemoryKV()
	ctx := context.Background()

	// Leftovers from a previous version.
	kv.Put(ctx, statestore.ShellKey("v1", "/"), entry{Status: 200})
	kv.Put(ctx, statestore.ShellKey("v1", "/index.html"), entry{Status: 200})

	up := &upstream{}
	cache := New("v2", kv, []string{"/", "/index.html", "/static/app.js"}, up)
	cache.Activate(ctx)

	if keys := kv.Keys(ctx, statestore.ShellVersionPrefix("v1")); len(keys) != 0 {
		t.Errorf("old version entries must be pruned, got %v", keys)
	}
	if keys := kv.Keys(ctx, statestore.ShellVersionPrefix("v2")); len(keys) != 3 {
		t.Errorf("expected 3 precached entries, got %v", keys)
	}

	// Precached assets serve without touching upstream again.
	before := up.calls
	rec := httptest.NewRecorder()
	cache.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/app.js", nil))
	if up.calls != before {
		t.Error("precached asset must serve from cache")
	}
}

func TestRecorderSemantics(t *testing.T) {
	rec := newRecorder()
	if rec.code != http.StatusOK {
		t.Errorf("expected implicit 200, got %d", rec.code)
	}

	rec.Header().Set("Content-Type", "text/html")
	rec.WriteHeader(http.StatusTeapot)
	rec.WriteHeader(http.StatusOK) // superfluous, first status wins
	_, _ = rec.Write([]byte("body"))

	if rec.code != http.StatusTeapot {
		t.Errorf("expected first status to win, got %d", rec.code)
	}

	w := httptest.NewRecorder()
	writeRecorded(w, rec)
	if w.Code != http.StatusTeapot || w.Body.String() != "body" {
		t.Errorf("replay mismatch: %d %q", w.Code, w.Body.String())
	}
	if w.Header().Get("Content-Type") != "text/html" {
		t.Errorf("expected headers to replay, got %v", w.Header())
	}
}

func TestNoStoreResponsesNotCached(t *testing.T) {
	kv := statestore.NewMemoryKV()
	noStore := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("transient view"))
	})
	cache := New("v1", kv, nil, noStore)

	rec := httptest.NewRecorder()
	cache.ServeHTTP(rec, navRequest("/"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if keys := kv.Keys(context.Background(), statestore.ShellPrefix); len(keys) != 0 {
		t.Errorf("no-store response must not be cached, got %v", keys)
	}
}

func TestErrorResponsesNotCached(t *testing.T) {
	kv := statestore.NewMemoryKV()
	notFound := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	cache := New("v1", kv, nil, notFound)

	rec := httptest.NewRecorder()
	cache.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/missing.js", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 pass-through, got %d", rec.Code)
	}
	if keys := kv.Keys(context.Background(), statestore.ShellPrefix); len(keys) != 0 {
		t.Errorf("404 must not be cached, got %v", keys)
	}
}
