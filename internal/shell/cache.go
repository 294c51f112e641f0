// Package shell keeps a versioned cache of the portal's app shell so pages
// keep rendering when the backing renderer fails. Navigation requests are
// network-first with cache fallback; other GETs are cache-first with network
// fallback and a synthetic 503 when both fail. Non-GET requests are never
// intercepted.
package shell

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/youthcamp/portal/internal/statestore"
)

// entry is one cached response.
type entry struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// recorder buffers the inner handler's response so it can be cached or
// replaced before anything reaches the client.
type recorder struct {
	code   int
	wrote  bool
	header http.Header
	body   bytes.Buffer
}

func newRecorder() *recorder {
	return &recorder{code: http.StatusOK, header: make(http.Header)}
}

func (r *recorder) Header() http.Header {
	return r.header
}

func (r *recorder) WriteHeader(code int) {
	if r.wrote {
		return
	}
	r.wrote = true
	r.code = code
}

func (r *recorder) Write(b []byte) (int, error) {
	r.wrote = true
	return r.body.Write(b)
}

// Cache wraps a page handler with the shell cache policy.
type Cache struct {
	version  string
	kv       statestore.KV
	precache []string
	next     http.Handler
}

// New creates a cache for one shell version.
func New(version string, kv statestore.KV, precache []string, next http.Handler) *Cache {
	return &Cache{
		version:  version,
		kv:       kv,
		precache: precache,
		next:     next,
	}
}

// Activate prunes every cache entry belonging to another version, then warms
// the precache list. Call once at startup.
func (c *Cache) Activate(ctx context.Context) {
	current := statestore.ShellVersionPrefix(c.version)
	pruned := 0
	for _, key := range c.kv.Keys(ctx, statestore.ShellPrefix) {
		if strings.HasPrefix(key, current) {
			continue
		}
		c.kv.Delete(ctx, key)
		pruned++
	}

	warmed := 0
	for _, path := range c.precache {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
		if err != nil {
			slog.Warn("skipping precache path", "path", path, "error", err)
			continue
		}
		rec := newRecorder()
		c.next.ServeHTTP(rec, req)
		if rec.code >= 200 && rec.code < 300 {
			c.store(ctx, path, rec)
			warmed++
		}
	}

	slog.Info("shell cache activated", "version", c.version, "pruned", pruned, "precached", warmed)
}

// ServeHTTP applies the cache policy.
func (c *Cache) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		c.next.ServeHTTP(w, r)
		return
	}

	if isNavigation(r) {
		c.networkFirst(w, r)
		return
	}
	c.cacheFirst(w, r)
}

// networkFirst renders fresh, caching good responses; a failed render falls
// back to the cached copy.
func (c *Cache) networkFirst(w http.ResponseWriter, r *http.Request) {
	rec := newRecorder()
	c.next.ServeHTTP(rec, r)

	if rec.code < 500 {
		if rec.code >= 200 && rec.code < 300 {
			c.store(r.Context(), r.URL.Path, rec)
		}
		writeRecorded(w, rec)
		return
	}

	if e, ok := c.lookup(r.Context(), r.URL.Path); ok {
		slog.Warn("serving navigation from shell cache", "path", r.URL.Path, "upstream_status", rec.code)
		writeEntry(w, e)
		return
	}
	writeRecorded(w, rec)
}

// cacheFirst serves the cached copy when present, falling back to a fresh
// render, and to a synthetic 503 when both fail.
func (c *Cache) cacheFirst(w http.ResponseWriter, r *http.Request) {
	if e, ok := c.lookup(r.Context(), r.URL.Path); ok {
		writeEntry(w, e)
		return
	}

	rec := newRecorder()
	c.next.ServeHTTP(rec, r)

	if rec.code >= 500 {
		http.Error(w, "offline", http.StatusServiceUnavailable)
		return
	}
	if rec.code >= 200 && rec.code < 300 {
		c.store(r.Context(), r.URL.Path, rec)
	}
	writeRecorded(w, rec)
}

func (c *Cache) store(ctx context.Context, path string, rec *recorder) {
	if strings.Contains(rec.header.Get("Cache-Control"), "no-store") {
		return
	}
	c.kv.Put(ctx, statestore.ShellKey(c.version, path), entry{
		Status:      rec.code,
		ContentType: rec.header.Get("Content-Type"),
		Body:        rec.body.Bytes(),
	})
}

func (c *Cache) lookup(ctx context.Context, path string) (entry, bool) {
	var e entry
	ok := c.kv.Get(ctx, statestore.ShellKey(c.version, path), &e)
	return e, ok
}

// isNavigation treats requests that accept HTML as page navigations.
func isNavigation(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func writeRecorded(w http.ResponseWriter, rec *recorder) {
	for k, vs := range rec.header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(rec.code)
	_, _ = w.Write(rec.body.Bytes())
}

func writeEntry(w http.ResponseWriter, e entry) {
	if e.ContentType != "" {
		w.Header().Set("Content-Type", e.ContentType)
	}
	w.Header().Set("X-Shell-Cache", "hit")
	w.WriteHeader(e.Status)
	_, _ = w.Write(e.Body)
}
