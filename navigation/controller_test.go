package navigation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUnreachable = errors.New("host unreachable")

// stubFetcher answers immediately unless the target is marked as hanging,
// in which case it blocks until its context is cancelled.
type stubFetcher struct {
	mu        sync.Mutex
	titles    map[string]string
	failing   map[string]bool
	hanging   map[string]bool
	calls     []string
	cancelled chan string
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{
		titles:    map[string]string{},
		failing:   map[string]bool{},
		hanging:   map[string]bool{},
		cancelled: make(chan string, 16),
	}
}

func (f *stubFetcher) Fetch(ctx context.Context, target Target) (Page, error) {
	f.mu.Lock()
	f.calls = append(f.calls, target.String())
	hang := f.hanging[target.String()]
	fail := f.failing[target.String()]
	title := f.titles[target.String()]
	f.mu.Unlock()

	if hang {
		<-ctx.Done()
		f.cancelled <- target.String()
		return Page{}, ctx.Err()
	}
	if fail {
		return Page{}, errUnreachable
	}
	return Page{
		Title:   title,
		Content: "body of " + target.String(),
		Icon:    target.String() + "/favicon.ico",
		Links:   []Link{{Number: 1, Text: "home", URL: target.String() + "/home"}},
	}, nil
}

func (f *stubFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newTestController(t *testing.T, f Fetcher) *Controller {
	t.Helper()
	c := NewController(context.Background(), f)
	t.Cleanup(c.Close)
	return c
}

func receive(t *testing.T, c *Controller) Completion {
	t.Helper()
	select {
	case done := <-c.Completions():
		return done
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a completion")
		return Completion{}
	}
}

// settle applies completions until one is accepted and returns the
// resulting snapshot. Dropped completions must belong to other targets.
func settle(t *testing.T, c *Controller, want Target) Snapshot {
	t.Helper()
	for {
		done := receive(t, c)
		snap, applied := c.Apply(done)
		if applied {
			require.Equal(t, want, done.Target)
			return snap
		}
		require.NotEqual(t, want, done.Target, "completion for the current target was dropped")
	}
}

func waitCancelled(t *testing.T, f *stubFetcher, target string) {
	t.Helper()
	select {
	case got := <-f.cancelled:
		assert.Equal(t, target, got)
	case <-time.After(2 * time.Second):
		t.Fatalf("fetch of %s was not cancelled", target)
	}
}

func TestControllerEndToEnd(t *testing.T) {
	f := newStubFetcher()
	c := newTestController(t, f)

	snap := c.NewTab()
	require.Len(t, snap.Tabs, 2)
	assert.Equal(t, 1, snap.ActiveIndex)

	snap = c.Navigate("github.com")
	github := snap.Active.Target
	assert.Equal(t, "https://github.com", github.String())
	assert.True(t, snap.Active.Loading)
	assert.Equal(t, "Loading…", snap.Active.Title)
	assert.False(t, snap.CanGoBack)

	snap = settle(t, c, github)
	assert.False(t, snap.Active.Loading)
	assert.Equal(t, "github.com", snap.Active.Title)
	assert.Equal(t, "body of https://github.com", snap.Active.Content)

	snap = c.Navigate("rust programming")
	search := snap.Active.Target
	assert.Contains(t, search.String(), "rust%20programming")
	assert.True(t, snap.CanGoBack)
	settle(t, c, search)

	snap, ok := c.Back()
	require.True(t, ok)
	assert.Equal(t, github, snap.Active.Target)
	assert.True(t, snap.Active.Loading)
	assert.False(t, snap.CanGoBack)
	assert.True(t, snap.CanGoForward)

	snap = settle(t, c, github)
	assert.Equal(t, "github.com", snap.Active.Title)

	entries, pos := c.History()
	assert.Equal(t, []Target{github, search}, entries)
	assert.Equal(t, 0, pos)
}

func TestControllerPageTitleWins(t *testing.T) {
	f := newStubFetcher()
	f.titles["https://go.dev"] = "The Go Programming Language"
	c := newTestController(t, f)

	target := c.Navigate("go.dev").Active.Target
	snap := settle(t, c, target)

	assert.Equal(t, "The Go Programming Language", snap.Active.Title)
}

func TestControllerTraversalDoesNotRecord(t *testing.T) {
	f := newStubFetcher()
	c := newTestController(t, f)

	for _, in := range []string{"a.com", "b.com", "c.com"} {
		target := c.Navigate(in).Active.Target
		settle(t, c, target)
	}

	for i := 0; i < 5; i++ {
		c.Back()
	}
	for i := 0; i < 5; i++ {
		c.Forward()
	}
	entries, pos := c.History()
	assert.Len(t, entries, 3)
	assert.Equal(t, 2, pos)

	snap, ok := c.Forward()
	assert.False(t, ok)
	assert.False(t, snap.CanGoForward)
}

func TestControllerBackWithoutHistoryIsNoop(t *testing.T) {
	f := newStubFetcher()
	c := newTestController(t, f)

	snap, ok := c.Back()

	assert.False(t, ok)
	assert.Equal(t, Blank, snap.Active.Target)
	assert.False(t, snap.Active.Loading)
	assert.Zero(t, f.callCount())
}

func TestControllerNavigateAfterBackTruncates(t *testing.T) {
	f := newStubFetcher()
	c := newTestController(t, f)

	a := c.Navigate("a.com").Active.Target
	b := c.Navigate("b.com").Active.Target
	settle(t, c, b)
	c.Back()
	settle(t, c, a)

	d := c.Navigate("d.com").Active.Target
	snap := settle(t, c, d)

	entries, _ := c.History()
	assert.Equal(t, []Target{a, d}, entries)
	assert.False(t, snap.CanGoForward)
}

func TestControllerLastNavigationWins(t *testing.T) {
	f := newStubFetcher()
	f.hanging["https://slow.example"] = true
	c := newTestController(t, f)

	c.Navigate("slow.example")
	fast := c.Navigate("fast.example").Active.Target
	waitCancelled(t, f, "https://slow.example")

	snap := settle(t, c, fast)
	assert.Equal(t, fast, snap.Active.Target)
	assert.False(t, snap.Active.Loading)
}

func TestControllerDropsStaleCompletion(t *testing.T) {
	f := newStubFetcher()
	c := newTestController(t, f)

	first := c.Navigate("first.example").Active.Target
	tab := c.tabs.activeTab()
	stale := Completion{TabID: tab.ID, Target: first, seq: tab.seq, Page: Page{Title: "stale"}}

	second := c.Navigate("second.example").Active.Target

	snap, applied := c.Apply(stale)
	assert.False(t, applied)
	assert.Equal(t, second, snap.Active.Target)
	assert.True(t, snap.Active.Loading)

	snap = settle(t, c, second)
	assert.NotEqual(t, "stale", snap.Active.Title)
}

func TestControllerFetchFailure(t *testing.T) {
	f := newStubFetcher()
	f.failing["https://down.example"] = true
	c := newTestController(t, f)

	ok := c.Navigate("ok.example").Active.Target
	settle(t, c, ok)
	down := c.Navigate("down.example").Active.Target

	snap := settle(t, c, down)

	assert.False(t, snap.Active.Loading)
	assert.Equal(t, "down.example", snap.Active.Title)
	assert.ErrorIs(t, snap.Active.Err, errUnreachable)
	var fetchErr *FetchError
	require.ErrorAs(t, snap.Active.Err, &fetchErr)
	assert.Equal(t, down, fetchErr.Target)
	assert.True(t, strings.HasPrefix(snap.Active.Content, "Error:"))

	entries, pos := c.History()
	assert.Equal(t, []Target{ok, down}, entries)
	assert.Equal(t, 1, pos)
	assert.True(t, snap.CanGoBack)

	// A failed tab still navigates.
	again := c.Navigate("ok.example").Active.Target
	snap = settle(t, c, again)
	assert.NoError(t, snap.Active.Err)
}

func TestControllerCloseCancelsFetch(t *testing.T) {
	f := newStubFetcher()
	f.hanging["https://slow.example"] = true
	c := newTestController(t, f)

	c.NewTab()
	snap := c.Navigate("slow.example")
	closedID := snap.Active.ID

	snap, err := c.CloseTab(snap.ActiveIndex)
	require.NoError(t, err)
	assert.Len(t, snap.Tabs, 1)
	waitCancelled(t, f, "https://slow.example")

	late := Completion{TabID: closedID, Target: Normalize("slow.example"), seq: 1}
	_, applied := c.Apply(late)
	assert.False(t, applied)
}

func TestControllerCloseErrors(t *testing.T) {
	c := newTestController(t, newStubFetcher())

	snap, err := c.CloseTab(0)
	assert.ErrorIs(t, err, ErrEmptyTabSet)
	assert.Len(t, snap.Tabs, 1)

	_, err = c.CloseTab(5)
	assert.ErrorIs(t, err, ErrInvalidIndex)

	_, err = c.SwitchTab(-1)
	assert.ErrorIs(t, err, ErrInvalidIndex)
}

func TestControllerSwitchAwayAbandonsLoad(t *testing.T) {
	f := newStubFetcher()
	f.hanging["https://slow.example"] = true
	c := newTestController(t, f)

	c.NewTab()
	c.Navigate("slow.example")

	snap, err := c.SwitchTab(0)
	require.NoError(t, err)
	waitCancelled(t, f, "https://slow.example")

	left := snap.Tabs[1]
	assert.False(t, left.Loading)
	assert.Equal(t, "slow.example", left.Title)
	assert.Equal(t, "https://slow.example", left.Target.String())
	assert.Equal(t, 0, snap.ActiveIndex)
}

func TestControllerSwitchToSameTabKeepsLoad(t *testing.T) {
	f := newStubFetcher()
	c := newTestController(t, f)

	target := c.Navigate("a.com").Active.Target
	snap, err := c.SwitchTab(0)
	require.NoError(t, err)
	assert.True(t, snap.Active.Loading)

	snap = settle(t, c, target)
	assert.Equal(t, "a.com", snap.Active.Title)
}

func TestControllerNewTabAbandonsLoad(t *testing.T) {
	f := newStubFetcher()
	c := newTestController(t, f)

	target := c.Navigate("a.com").Active.Target
	done := receive(t, c)
	c.NewTab()

	snap, applied := c.Apply(done)
	assert.False(t, applied)
	assert.Equal(t, 1, snap.ActiveIndex)
	assert.Equal(t, target, snap.Tabs[0].Target)
	assert.False(t, snap.Tabs[0].Loading)
	assert.Equal(t, "a.com", snap.Tabs[0].Title)
}

func TestControllerAbandonedLoadDropsPreviousPage(t *testing.T) {
	f := newStubFetcher()
	f.hanging["https://b.example"] = true
	c := newTestController(t, f)

	a := c.Navigate("a.example").Active.Target
	snap := settle(t, c, a)
	require.Equal(t, "body of https://a.example", snap.Active.Content)
	require.Len(t, snap.Active.Links, 1)

	snap = c.Navigate("b.example")
	assert.Empty(t, snap.Active.Content, "a new load starts without the old body")
	assert.Empty(t, snap.Active.Icon)
	assert.Empty(t, snap.Active.Links)

	snap = c.NewTab()
	waitCancelled(t, f, "https://b.example")

	left := snap.Tabs[0]
	assert.Equal(t, "https://b.example", left.Target.String())
	assert.Equal(t, "b.example", left.Title)
	assert.False(t, left.Loading)
	assert.NotContains(t, left.Content, "body of")
	assert.Contains(t, left.Content, "interrupted")
	assert.Empty(t, left.Icon)
	assert.Empty(t, left.Links)
}

func TestControllerLinksAreCopied(t *testing.T) {
	f := newStubFetcher()
	c := newTestController(t, f)

	target := c.Navigate("a.example").Active.Target
	snap := settle(t, c, target)
	require.Equal(t, []Link{{Number: 1, Text: "home", URL: "https://a.example/home"}}, snap.Active.Links)

	snap.Active.Links[0].URL = "https://evil.example"
	snap.Tabs[0].Links[0].URL = "https://evil.example"
	assert.Equal(t, "https://a.example/home", c.Snapshot().Active.Links[0].URL)
}

func TestControllerOpenRecordsWithoutNormalizing(t *testing.T) {
	f := newStubFetcher()
	c := newTestController(t, f)

	a := c.Navigate("a.example").Active.Target
	settle(t, c, a)
	b := c.Navigate("b.example").Active.Target
	settle(t, c, b)

	snap, err := c.Handle(RequestOpen{Target: a})
	require.NoError(t, err)
	assert.Equal(t, a, snap.Active.Target)
	assert.True(t, snap.Active.Loading)
	settle(t, c, a)

	entries, pos := c.History()
	assert.Equal(t, []Target{a, b, a}, entries)
	assert.Equal(t, 2, pos)
	assert.False(t, c.Snapshot().CanGoForward)
}

func TestControllerReload(t *testing.T) {
	f := newStubFetcher()
	c := newTestController(t, f)

	snap := c.Reload()
	assert.False(t, snap.Active.Loading)
	assert.Zero(t, f.callCount())

	target := c.Navigate("a.com").Active.Target
	settle(t, c, target)

	snap = c.Reload()
	assert.True(t, snap.Active.Loading)
	settle(t, c, target)
	entries, _ := c.History()
	assert.Len(t, entries, 1)
	assert.Equal(t, 2, f.callCount())
}

type bogusIntent struct{}

func (bogusIntent) intent() {}

func TestControllerHandle(t *testing.T) {
	f := newStubFetcher()
	c := newTestController(t, f)

	snap, err := c.Handle(RequestNavigate{Input: "a.com"})
	require.NoError(t, err)
	a := snap.Active.Target
	settle(t, c, a)

	snap, err = c.Handle(RequestNewTab{})
	require.NoError(t, err)
	assert.Len(t, snap.Tabs, 2)

	snap, err = c.Handle(RequestSwitchTab{Index: 0})
	require.NoError(t, err)
	assert.Equal(t, a, snap.Active.Target)

	_, err = c.Handle(RequestBack{})
	assert.NoError(t, err)
	_, err = c.Handle(RequestForward{})
	assert.NoError(t, err)
	_, err = c.Handle(RequestReload{})
	assert.NoError(t, err)
	settle(t, c, a)

	snap, err = c.Handle(RequestCloseTab{Index: 1})
	require.NoError(t, err)
	assert.Len(t, snap.Tabs, 1)

	_, err = c.Handle(RequestCloseTab{Index: 0})
	assert.ErrorIs(t, err, ErrEmptyTabSet)

	_, err = c.Handle(bogusIntent{})
	assert.Error(t, err)
}

func TestControllerCloseStopsFetches(t *testing.T) {
	f := newStubFetcher()
	f.hanging["https://slow.example"] = true
	c := NewController(context.Background(), f)

	c.Navigate("slow.example")
	c.Close()

	waitCancelled(t, f, "https://slow.example")
}

func TestFetcherFunc(t *testing.T) {
	var got Target
	f := FetcherFunc(func(_ context.Context, target Target) (Page, error) {
		got = target
		return Page{Title: "x"}, nil
	})

	page, err := f.Fetch(context.Background(), Blank)
	require.NoError(t, err)
	assert.Equal(t, "x", page.Title)
	assert.Equal(t, Blank, got)
}
