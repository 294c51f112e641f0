// Package selectbox implements the state machine behind the portal's
// searchable, paginated dropdowns: debounced search, infinite-scroll
// pagination with label-keyed de-duplication, single/multi selection, and
// label prefetch for externally-set values.
package selectbox

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Option is one selectable record. Two options with equal labels are the same
// selection even when their values differ; use SameAs, never compare values.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// SameAs is the identity comparator for options: label equality.
func (o Option) SameAs(other Option) bool {
	return o.Label == other.Label
}

// FetchRequest asks the backing source for one page of options.
type FetchRequest struct {
	Page   int
	Search string
}

// Page is one page of fetched options.
type Page struct {
	Items      []Option
	Page       int
	TotalPages int
}

// FetchFunc loads a page of options from the backing source.
type FetchFunc func(ctx context.Context, req FetchRequest) (Page, error)

// State is the widget's lifecycle state.
type State int

const (
	StateClosed State = iota
	StateLoading
	StateIdle
	StateLoadingMore
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateLoading:
		return "loading"
	case StateIdle:
		return "idle"
	case StateLoadingMore:
		return "loading-more"
	}
	return "unknown"
}

// Config configures a Select.
type Config struct {
	Fetch FetchFunc
	// Multi toggles membership on pick instead of replacing and closing.
	Multi bool
	// Debounce delays applying search input. Zero applies synchronously.
	Debounce time.Duration
	// OnBlur fires once per open-to-closed edge, and after every toggle in
	// multi mode.
	OnBlur func()
}

// Select is the widget state machine. All methods are safe for concurrent
// use. Fetches run in the calling goroutine; each fetch carries a sequence
// token, and a completion superseded by a newer request (or by a reset or
// close) is discarded instead of applied.
type Select struct {
	mu  sync.Mutex
	cfg Config

	state      State
	search     string // raw input
	debounced  string // applied search text
	items      []Option
	page       int
	totalPages int
	selected   []Option

	seq   uint64 // latest issued fetch token
	gen   uint64 // list generation, bumped on every reset/close
	timer *time.Timer
}

// New creates a closed, empty select.
func New(cfg Config) *Select {
	return &Select{cfg: cfg}
}

// Snapshot is a consistent copy of the widget state for rendering.
type Snapshot struct {
	State      State
	Search     string
	Applied    string
	Items      []Option
	Page       int
	TotalPages int
	Selected   []Option
}

// Snapshot returns a copy of the current state.
func (s *Select) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		State:      s.state,
		Search:     s.search,
		Applied:    s.debounced,
		Items:      append([]Option(nil), s.items...),
		Page:       s.page,
		TotalPages: s.totalPages,
		Selected:   append([]Option(nil), s.selected...),
	}
}

// Open transitions Closed -> Open-Loading, clears the accumulated list, and
// loads page 1 for the current applied search. Opening an already-open select
// is a no-op.
func (s *Select) Open(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateClosed {
		s.mu.Unlock()
		return nil
	}
	s.state = StateLoading
	s.mu.Unlock()
	return s.loadFresh(ctx)
}

// Close transitions any open state to Closed. The blur callback fires exactly
// once per open-to-closed edge; closing a closed select does nothing.
// In-flight fetch completions are discarded after close.
func (s *Select) Close() {
	s.mu.Lock()
	wasOpen := s.state != StateClosed
	s.state = StateClosed
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	blur := s.cfg.OnBlur
	s.mu.Unlock()

	if wasOpen && blur != nil {
		blur()
	}
}

// SetSearch records new search input. After the debounce interval (or
// immediately for a zero interval) the text becomes the applied search; if it
// changed and the select is open, the list resets and page 1 reloads.
func (s *Select) SetSearch(ctx context.Context, text string) error {
	s.mu.Lock()
	s.search = text
	if s.cfg.Debounce <= 0 {
		s.mu.Unlock()
		return s.applySearch(ctx)
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	// The caller's context may be gone by the time the timer fires; the
	// deferred fetch must outlive it. Staleness is handled by gen/seq, not
	// by cancellation.
	apply := context.WithoutCancel(ctx)
	s.timer = time.AfterFunc(s.cfg.Debounce, func() {
		if err := s.applySearch(apply); err != nil {
			slog.Warn("debounced search fetch failed", "search", text, "error", err)
		}
	})
	s.mu.Unlock()
	return nil
}

// applySearch promotes the raw search text to the applied text and reloads
// when it changed while open.
func (s *Select) applySearch(ctx context.Context) error {
	s.mu.Lock()
	if s.search == s.debounced {
		s.mu.Unlock()
		return nil
	}
	s.debounced = s.search
	open := s.state != StateClosed
	s.mu.Unlock()

	if !open {
		return nil
	}
	return s.loadFresh(ctx)
}

// LoadMore fetches the next page when the caller reports a near-bottom
// scroll. It is a no-op unless the select is idle with pages remaining; a
// fetch already in flight blocks further loads. Results append, de-duplicated
// by label.
func (s *Select) LoadMore(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateIdle || s.page >= s.totalPages {
		s.mu.Unlock()
		return nil
	}
	s.state = StateLoadingMore
	s.seq++
	gen, token := s.gen, s.seq
	req := FetchRequest{Page: s.page + 1, Search: s.debounced}
	fetch := s.cfg.Fetch
	s.mu.Unlock()

	page, err := fetch(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen || token != s.seq {
		return nil
	}
	s.state = StateIdle
	if err != nil {
		return err
	}
	s.mergeLocked(page.Items)
	s.page = page.Page
	s.totalPages = page.TotalPages
	return nil
}

// Pick selects an option. Single mode replaces the value and closes (firing
// blur via the close edge). Multi mode toggles label membership without
// closing and fires blur after each toggle.
func (s *Select) Pick(opt Option) {
	s.mu.Lock()
	if s.cfg.Multi {
		if i := indexByLabel(s.selected, opt.Label); i >= 0 {
			s.selected = append(s.selected[:i], s.selected[i+1:]...)
		} else {
			s.selected = append(s.selected, opt)
		}
		blur := s.cfg.OnBlur
		s.mu.Unlock()
		if blur != nil {
			blur()
		}
		return
	}
	s.selected = []Option{opt}
	s.mu.Unlock()
	s.Close()
}

// IsSelected reports whether a label is in the selection set.
func (s *Select) IsSelected(label string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return indexByLabel(s.selected, label) >= 0
}

// SelectedLabels returns the labels of the current selection in order.
func (s *Select) SelectedLabels() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.selected))
	for i, opt := range s.selected {
		out[i] = opt.Label
	}
	return out
}

// SetValues replaces the selection with externally-controlled raw values and
// prefetches option records for any value the widget has never listed, so a
// human-readable label can render before first open. Fetched records merge
// into the loaded options by label; they never replace the list. Runs
// independently of the open/closed state.
func (s *Select) SetValues(ctx context.Context, values ...string) error {
	s.mu.Lock()
	var selected []Option
	var missing []string
	for _, v := range values {
		if opt, ok := findByValue(s.items, v); ok {
			if indexByLabel(selected, opt.Label) < 0 {
				selected = append(selected, opt)
			}
			continue
		}
		placeholder := Option{Value: v, Label: v}
		if indexByLabel(selected, placeholder.Label) < 0 {
			selected = append(selected, placeholder)
			missing = append(missing, v)
		}
	}
	s.selected = selected
	fetch := s.cfg.Fetch
	s.mu.Unlock()

	var firstErr error
	for _, v := range missing {
		page, err := fetch(ctx, FetchRequest{Page: 1, Search: v})
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		s.mu.Lock()
		s.mergeLocked(page.Items)
		if opt, ok := findByValue(s.items, v); ok {
			if i := indexByValue(s.selected, v); i >= 0 {
				s.selected[i] = opt
			}
		}
		s.mu.Unlock()
	}
	return firstErr
}

// loadFresh clears the list and loads page 1. The generation bump invalidates
// any fetch still in flight from before the reset.
func (s *Select) loadFresh(ctx context.Context) error {
	s.mu.Lock()
	s.gen++
	s.seq++
	gen, token := s.gen, s.seq
	s.items = nil
	s.page = 0
	s.totalPages = 0
	if s.state != StateClosed {
		s.state = StateLoading
	}
	req := FetchRequest{Page: 1, Search: s.debounced}
	fetch := s.cfg.Fetch
	s.mu.Unlock()

	page, err := fetch(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen || token != s.seq || s.state == StateClosed {
		return nil
	}
	s.state = StateIdle
	if err != nil {
		return err
	}
	s.mergeLocked(page.Items)
	s.page = page.Page
	if s.page == 0 {
		s.page = 1
	}
	s.totalPages = page.TotalPages
	return nil
}

// mergeLocked appends options whose labels are not already present. Must be
// called with the mutex held.
func (s *Select) mergeLocked(items []Option) {
	seen := make(map[string]bool, len(s.items))
	for _, it := range s.items {
		seen[it.Label] = true
	}
	for _, it := range items {
		if seen[it.Label] {
			continue
		}
		seen[it.Label] = true
		s.items = append(s.items, it)
	}
}

func indexByLabel(opts []Option, label string) int {
	for i, opt := range opts {
		if opt.Label == label {
			return i
		}
	}
	return -1
}

func indexByValue(opts []Option, value string) int {
	for i, opt := range opts {
		if opt.Value == value {
			return i
		}
	}
	return -1
}

func findByValue(opts []Option, value string) (Option, bool) {
	if i := indexByValue(opts, value); i >= 0 {
		return opts[i], true
	}
	return Option{}, false
}
