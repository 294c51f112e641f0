package selectbox

import (
	"context"
	"errors"
	"reflect"
	"sync/atomic"
	"testing"
	"time"
)

// pagedFetch serves a fixed set of pages, recording each request.
func pagedFetch(pages map[int]Page, calls *[]FetchRequest) FetchFunc {
	return func(ctx context.Context, req FetchRequest) (Page, error) {
		if calls != nil {
			*calls = append(*calls, req)
		}
		p, ok := pages[req.Page]
		if !ok {
			return Page{}, errors.New("no such page")
		}
		return p, nil
	}
}

func labels(opts []Option) []string {
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = o.Label
	}
	return out
}

func TestOpenLoadsFirstPage(t *testing.T) {
	var calls []FetchRequest
	s := New(Config{Fetch: pagedFetch(map[int]Page{
		1: {Items: []Option{{Value: "1", Label: "Abuja"}, {Value: "2", Label: "Lagos"}}, Page: 1, TotalPages: 2},
	}, &calls)})

	if err := s.Open(context.Background()); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	snap := s.Snapshot()
	if snap.State != StateIdle {
		t.Errorf("expected idle after open, got %v", snap.State)
	}
	if len(calls) != 1 || calls[0].Page != 1 || calls[0].Search != "" {
		t.Errorf("expected one fetch of page 1 with empty search, got %v", calls)
	}
	if got := labels(snap.Items); !reflect.DeepEqual(got, []string{"Abuja", "Lagos"}) {
		t.Errorf("unexpected items: %v", got)
	}
	if snap.Page != 1 || snap.TotalPages != 2 {
		t.Errorf("expected page 1/2, got %d/%d", snap.Page, snap.TotalPages)
	}
}

func TestLoadMoreAppendsAndDeduplicates(t *testing.T) {
	s := New(Config{Fetch: pagedFetch(map[int]Page{
		1: {Items: []Option{{Value: "1", Label: "Abuja"}, {Value: "2", Label: "Lagos"}}, Page: 1, TotalPages: 2},
		// Page 2 repeats Lagos under a different value; the label wins.
		2: {Items: []Option{{Value: "9", Label: "Lagos"}, {Value: "3", Label: "Kaduna"}}, Page: 2, TotalPages: 2},
	}, nil)})

	ctx := context.Background()
	if err := s.Open(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.LoadMore(ctx); err != nil {
		t.Fatalf("LoadMore failed: %v", err)
	}

	snap := s.Snapshot()
	want := []string{"Abuja", "Lagos", "Kaduna"}
	if got := labels(snap.Items); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if snap.Page != 2 {
		t.Errorf("expected page 2, got %d", snap.Page)
	}
}

func TestLoadMoreStopsAtLastPage(t *testing.T) {
	var calls []FetchRequest
	s := New(Config{Fetch: pagedFetch(map[int]Page{
		1: {Items: []Option{{Value: "1", Label: "A"}}, Page: 1, TotalPages: 1},
	}, &calls)})

	ctx := context.Background()
	if err := s.Open(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.LoadMore(ctx); err != nil {
		t.Fatal(err)
	}
	if len(calls) != 1 {
		t.Errorf("LoadMore past the last page must not fetch, got %d calls", len(calls))
	}
}

func TestLoadMoreBlockedWhileFetchInFlight(t *testing.T) {
	var inFlight int32
	release := make(chan struct{})
	fetch := func(ctx context.Context, req FetchRequest) (Page, error) {
		if req.Page == 2 {
			atomic.AddInt32(&inFlight, 1)
			<-release
		}
		return Page{
			Items:      []Option{{Value: "x", Label: "X" + time.Now().String()}},
			Page:       req.Page,
			TotalPages: 3,
		}, nil
	}

	s := New(Config{Fetch: fetch})
	ctx := context.Background()
	if err := s.Open(ctx); err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		_ = s.LoadMore(ctx)
		close(done)
	}()
	for atomic.LoadInt32(&inFlight) == 0 {
		time.Sleep(time.Millisecond)
	}

	// Second LoadMore while the first is in flight must be a no-op.
	if err := s.LoadMore(ctx); err != nil {
		t.Fatal(err)
	}
	if got := atomic.LoadInt32(&inFlight); got != 1 {
		t.Errorf("expected a single in-flight fetch, got %d", got)
	}

	close(release)
	<-done
}

func TestSearchChangeResetsList(t *testing.T) {
	var calls []FetchRequest
	fetch := func(ctx context.Context, req FetchRequest) (Page, error) {
		calls = append(calls, req)
		if req.Search == "" {
			return Page{Items: []Option{{Value: "1", Label: "Abuja"}}, Page: 1, TotalPages: 5}, nil
		}
		return Page{Items: []Option{{Value: "2", Label: "Lagos"}}, Page: 1, TotalPages: 1}, nil
	}

	s := New(Config{Fetch: fetch})
	ctx := context.Background()
	if err := s.Open(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.SetSearch(ctx, "lag"); err != nil {
		t.Fatal(err)
	}

	snap := s.Snapshot()
	if got := labels(snap.Items); !reflect.DeepEqual(got, []string{"Lagos"}) {
		t.Errorf("search change must replace the list, got %v", got)
	}
	if snap.Page != 1 || snap.TotalPages != 1 {
		t.Errorf("expected page reset to 1/1, got %d/%d", snap.Page, snap.TotalPages)
	}
	last := calls[len(calls)-1]
	if last.Page != 1 || last.Search != "lag" {
		t.Errorf("expected fresh fetch of page 1 with search, got %+v", last)
	}
}

func TestSearchWhileClosedDoesNotFetch(t *testing.T) {
	var calls []FetchRequest
	s := New(Config{Fetch: pagedFetch(map[int]Page{}, &calls)})

	if err := s.SetSearch(context.Background(), "lag"); err != nil {
		t.Fatal(err)
	}
	if len(calls) != 0 {
		t.Errorf("search while closed must not fetch, got %d calls", len(calls))
	}
}

func TestUnchangedSearchDoesNotReload(t *testing.T) {
	var calls []FetchRequest
	s := New(Config{Fetch: pagedFetch(map[int]Page{
		1: {Items: []Option{{Value: "1", Label: "A"}}, Page: 1, TotalPages: 1},
	}, &calls)})

	ctx := context.Background()
	if err := s.Open(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.SetSearch(ctx, ""); err != nil {
		t.Fatal(err)
	}
	if len(calls) != 1 {
		t.Errorf("re-applying identical search must not reload, got %d calls", len(calls))
	}
}

func TestDebounceCoalescesRapidInput(t *testing.T) {
	var calls []FetchRequest
	fetch := func(ctx context.Context, req FetchRequest) (Page, error) {
		calls = append(calls, req)
		return Page{Page: 1, TotalPages: 1}, nil
	}

	s := New(Config{Fetch: fetch, Debounce: 20 * time.Millisecond})
	ctx := context.Background()
	if err := s.Open(ctx); err != nil {
		t.Fatal(err)
	}

	_ = s.SetSearch(ctx, "l")
	_ = s.SetSearch(ctx, "la")
	_ = s.SetSearch(ctx, "lag")
	time.Sleep(100 * time.Millisecond)

	snap := s.Snapshot()
	if snap.Applied != "lag" {
		t.Errorf("expected applied search %q, got %q", "lag", snap.Applied)
	}
	// One open fetch plus exactly one debounced search fetch.
	if len(calls) != 2 {
		t.Errorf("expected 2 fetches, got %d: %v", len(calls), calls)
	}
}

func TestDebouncedSearchOutlivesCallerContext(t *testing.T) {
	fetched := make(chan FetchRequest, 2)
	fetch := func(ctx context.Context, req FetchRequest) (Page, error) {
		if err := ctx.Err(); err != nil {
			return Page{}, err
		}
		fetched <- req
		return Page{
			Items: []Option{{Value: "1", Label: "Ada Obi"}},
			Page:  1, TotalPages: 1,
		}, nil
	}

	s := New(Config{Fetch: fetch, Debounce: 20 * time.Millisecond})
	if err := s.Open(context.Background()); err != nil {
		t.Fatal(err)
	}
	<-fetched

	// The caller's context dies before the timer fires, the way a request
	// context does once its handler returns.
	ctx, cancel := context.WithCancel(context.Background())
	if err := s.SetSearch(ctx, "ada"); err != nil {
		t.Fatal(err)
	}
	cancel()

	select {
	case req := <-fetched:
		if req.Search != "ada" {
			t.Errorf("expected debounced fetch for %q, got %q", "ada", req.Search)
		}
	case <-time.After(time.Second):
		t.Fatal("debounced fetch never ran after the caller context was cancelled")
	}

	deadline := time.Now().Add(time.Second)
	for {
		snap := s.Snapshot()
		if len(snap.Items) == 1 && snap.Applied == "ada" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected 1 item for applied search %q, got %+v", "ada", snap)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestSinglePickReplacesAndCloses(t *testing.T) {
	blurs := 0
	s := New(Config{
		Fetch: pagedFetch(map[int]Page{
			1: {Items: []Option{{Value: "1", Label: "Abuja"}}, Page: 1, TotalPages: 1},
		}, nil),
		OnBlur: func() { blurs++ },
	})

	if err := s.Open(context.Background()); err != nil {
		t.Fatal(err)
	}
	s.Pick(Option{Value: "1", Label: "Abuja"})

	snap := s.Snapshot()
	if snap.State != StateClosed {
		t.Errorf("single pick must close, got %v", snap.State)
	}
	if got := labels(snap.Selected); !reflect.DeepEqual(got, []string{"Abuja"}) {
		t.Errorf("expected selection [Abuja], got %v", got)
	}
	if blurs != 1 {
		t.Errorf("expected exactly one blur, got %d", blurs)
	}

	// Replacing the value.
	_ = s.Open(context.Background())
	s.Pick(Option{Value: "2", Label: "Lagos"})
	if got := labels(s.Snapshot().Selected); !reflect.DeepEqual(got, []string{"Lagos"}) {
		t.Errorf("pick must replace in single mode, got %v", got)
	}
}

func TestMultiPickToggles(t *testing.T) {
	blurs := 0
	s := New(Config{
		Fetch: pagedFetch(map[int]Page{
			1: {Items: []Option{{Value: "1", Label: "Malaria"}, {Value: "2", Label: "Asthma"}}, Page: 1, TotalPages: 1},
		}, nil),
		Multi:  true,
		OnBlur: func() { blurs++ },
	})

	if err := s.Open(context.Background()); err != nil {
		t.Fatal(err)
	}

	s.Pick(Option{Value: "1", Label: "Malaria"})
	s.Pick(Option{Value: "2", Label: "Asthma"})
	if s.Snapshot().State == StateClosed {
		t.Fatal("multi pick must not close")
	}
	if got := labels(s.Snapshot().Selected); !reflect.DeepEqual(got, []string{"Malaria", "Asthma"}) {
		t.Errorf("expected two selections, got %v", got)
	}

	// Same label again toggles it out, even under a different value.
	s.Pick(Option{Value: "99", Label: "Malaria"})
	if got := labels(s.Snapshot().Selected); !reflect.DeepEqual(got, []string{"Asthma"}) {
		t.Errorf("expected toggle-out by label, got %v", got)
	}
	if blurs != 3 {
		t.Errorf("expected blur per toggle, got %d", blurs)
	}
}

func TestBlurFiresOncePerCloseEdge(t *testing.T) {
	blurs := 0
	s := New(Config{
		Fetch:  pagedFetch(map[int]Page{1: {Page: 1, TotalPages: 1}}, nil),
		OnBlur: func() { blurs++ },
	})

	s.Close() // already closed, no edge
	if blurs != 0 {
		t.Fatalf("closing a closed select must not blur, got %d", blurs)
	}

	if err := s.Open(context.Background()); err != nil {
		t.Fatal(err)
	}
	s.Close()
	s.Close()
	if blurs != 1 {
		t.Errorf("expected exactly one blur per open/close edge, got %d", blurs)
	}
}

func TestStaleCompletionDiscarded(t *testing.T) {
	started := make(chan string, 2)
	gates := map[string]chan Page{
		"":    make(chan Page, 1),
		"new": make(chan Page, 1),
	}
	fetch := func(ctx context.Context, req FetchRequest) (Page, error) {
		started <- req.Search
		return <-gates[req.Search], nil
	}

	s := New(Config{Fetch: fetch})
	ctx := context.Background()

	openDone := make(chan struct{})
	go func() {
		_ = s.Open(ctx)
		close(openDone)
	}()
	<-started // first fetch (search "") is in flight

	searchDone := make(chan struct{})
	go func() {
		_ = s.SetSearch(ctx, "new")
		close(searchDone)
	}()
	<-started // second fetch (search "new") is in flight

	// The newer request completes first and is applied.
	gates["new"] <- Page{Items: []Option{{Value: "n", Label: "New"}}, Page: 1, TotalPages: 1}
	<-searchDone

	// The stale request completes afterwards and must be discarded.
	gates[""] <- Page{Items: []Option{{Value: "s", Label: "Stale"}}, Page: 9, TotalPages: 9}
	<-openDone

	snap := s.Snapshot()
	if got := labels(snap.Items); !reflect.DeepEqual(got, []string{"New"}) {
		t.Errorf("stale completion must be discarded, got items %v", got)
	}
	if snap.Page != 1 || snap.TotalPages != 1 {
		t.Errorf("stale completion must not touch paging, got %d/%d", snap.Page, snap.TotalPages)
	}
}

func TestCompletionAfterCloseDiscarded(t *testing.T) {
	started := make(chan struct{})
	gate := make(chan Page)
	fetch := func(ctx context.Context, req FetchRequest) (Page, error) {
		close(started)
		return <-gate, nil
	}

	s := New(Config{Fetch: fetch})
	done := make(chan struct{})
	go func() {
		_ = s.Open(context.Background())
		close(done)
	}()
	<-started

	s.Close()
	gate <- Page{Items: []Option{{Value: "l", Label: "Late"}}, Page: 1, TotalPages: 1}
	<-done

	snap := s.Snapshot()
	if snap.State != StateClosed {
		t.Errorf("expected closed, got %v", snap.State)
	}
	if len(snap.Items) != 0 {
		t.Errorf("completion after close must not apply, got %v", snap.Items)
	}
}

func TestSetValuesPrefetchesLabels(t *testing.T) {
	var calls []FetchRequest
	fetch := func(ctx context.Context, req FetchRequest) (Page, error) {
		calls = append(calls, req)
		if req.Search == "ng-04" {
			return Page{Items: []Option{{Value: "ng-04", Label: "Bwari Area Council"}}, Page: 1, TotalPages: 1}, nil
		}
		return Page{Page: 1, TotalPages: 1}, nil
	}

	s := New(Config{Fetch: fetch})
	if err := s.SetValues(context.Background(), "ng-04"); err != nil {
		t.Fatal(err)
	}

	snap := s.Snapshot()
	if snap.State != StateClosed {
		t.Error("prefetch must run independently of the open state")
	}
	if got := labels(snap.Selected); !reflect.DeepEqual(got, []string{"Bwari Area Council"}) {
		t.Errorf("expected resolved label, got %v", got)
	}
	if len(calls) != 1 || calls[0].Search != "ng-04" {
		t.Errorf("expected one prefetch by value, got %v", calls)
	}
}

func TestSetValuesMergesWithoutReplacing(t *testing.T) {
	fetch := func(ctx context.Context, req FetchRequest) (Page, error) {
		switch req.Search {
		case "":
			return Page{Items: []Option{{Value: "1", Label: "Abuja"}}, Page: 1, TotalPages: 1}, nil
		case "2":
			return Page{Items: []Option{{Value: "2", Label: "Lagos"}}, Page: 1, TotalPages: 1}, nil
		}
		return Page{Page: 1, TotalPages: 1}, nil
	}

	s := New(Config{Fetch: fetch})
	ctx := context.Background()
	if err := s.Open(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.SetValues(ctx, "2"); err != nil {
		t.Fatal(err)
	}

	snap := s.Snapshot()
	want := []string{"Abuja", "Lagos"}
	if got := labels(snap.Items); !reflect.DeepEqual(got, want) {
		t.Errorf("prefetch must merge, not replace: want %v, got %v", want, got)
	}
}

func TestSetValuesKnownValueSkipsFetch(t *testing.T) {
	var calls []FetchRequest
	s := New(Config{Fetch: pagedFetch(map[int]Page{
		1: {Items: []Option{{Value: "1", Label: "Abuja"}}, Page: 1, TotalPages: 1},
	}, &calls)})

	ctx := context.Background()
	if err := s.Open(ctx); err != nil {
		t.Fatal(err)
	}
	calls = calls[:0]

	if err := s.SetValues(ctx, "1"); err != nil {
		t.Fatal(err)
	}
	if len(calls) != 0 {
		t.Errorf("already-listed value must not prefetch, got %v", calls)
	}
	if got := labels(s.Snapshot().Selected); !reflect.DeepEqual(got, []string{"Abuja"}) {
		t.Errorf("expected [Abuja], got %v", got)
	}
}
