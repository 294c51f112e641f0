// Package router matches portal paths against a flat, ordered list of
// patterns with named parameters. Matching is a single pass in declaration
// order with no implicit precedence; the first matching route wins.
package router

import (
	"net/http"
	"net/url"
	"strings"
)

// Params holds the named parameters extracted from a matched path.
type Params map[string]string

// Get returns the value for a parameter name, or "".
func (p Params) Get(name string) string {
	return p[name]
}

// Handler serves one matched portal page.
type Handler func(w http.ResponseWriter, r *http.Request, p Params)

// Route pairs a pattern with its handler.
type Route struct {
	Pattern string
	Handler Handler
}

// Normalize strips the query string and fragment and maps an empty path
// to "/".
func Normalize(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if i := strings.IndexByte(path, '#'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}
	return path
}

// Match checks a single pattern against a path. Pattern segments are compared
// literally except ":name" segments, which match any one non-empty path
// segment and are URL-decoded into the returned Params. Duplicate names within
// a pattern: the last segment wins.
func Match(pattern, path string) (Params, bool) {
	pat := segments(pattern)
	got := segments(Normalize(path))
	if len(pat) != len(got) {
		return nil, false
	}

	params := Params{}
	for i, seg := range pat {
		if strings.HasPrefix(seg, ":") && len(seg) > 1 {
			if got[i] == "" {
				return nil, false
			}
			value, err := url.PathUnescape(got[i])
			if err != nil {
				value = got[i]
			}
			params[seg[1:]] = value
			continue
		}
		if seg != got[i] {
			return nil, false
		}
	}
	return params, true
}

func segments(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// Router resolves paths against its ordered route list. The zero value is not
// usable; construct with New.
type Router struct {
	routes   []Route
	fallback Handler
}

// New creates an empty router with a fallback that serves 404.
func New() *Router {
	return &Router{
		fallback: func(w http.ResponseWriter, r *http.Request, _ Params) {
			http.NotFound(w, r)
		},
	}
}

// Handle appends a route. Registration order is match order.
func (rt *Router) Handle(pattern string, h Handler) {
	rt.routes = append(rt.routes, Route{Pattern: pattern, Handler: h})
}

// Fallback sets the handler used when no route matches.
func (rt *Router) Fallback(h Handler) {
	rt.fallback = h
}

// Resolve evaluates the full route list from scratch and returns the first
// match. The boolean is false when the fallback was selected.
func (rt *Router) Resolve(path string) (Handler, Params, bool) {
	for _, route := range rt.routes {
		if params, ok := Match(route.Pattern, path); ok {
			return route.Handler, params, true
		}
	}
	return rt.fallback, Params{}, false
}

// ServeHTTP dispatches the request path through the route list.
func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h, params, _ := rt.Resolve(r.URL.Path)
	h(w, r, params)
}
