package navigation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Page is what a Fetcher produces for a target.
type Page struct {
	Title   string
	Content string
	Icon    string
	Links   []Link
}

// Link is a followable hyperlink. Number is its 1-based label in the page
// content.
type Link struct {
	Number int
	Text   string
	URL    string
}

// Fetcher loads a page. It is called on its own goroutine and must honor
// ctx cancellation.
type Fetcher interface {
	Fetch(ctx context.Context, target Target) (Page, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, target Target) (Page, error)

func (f FetcherFunc) Fetch(ctx context.Context, target Target) (Page, error) {
	return f(ctx, target)
}

// Completion carries a finished fetch back to the owning goroutine.
type Completion struct {
	TabID  TabID
	Target Target
	Page   Page
	Err    error

	seq uint64
}

const completionBuffer = 16

// Controller owns the tabs and the session history. It is not safe for
// concurrent use: every method, including Apply, must be called from the
// goroutine that owns it. Fetches run elsewhere and report back through
// Completions.
type Controller struct {
	ctx    context.Context
	cancel context.CancelFunc

	fetcher    Fetcher
	normalizer Normalizer
	tabs       *TabSet
	history    *HistoryLog

	inflight    map[TabID]context.CancelFunc
	completions chan Completion

	session string
	logger  *zap.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// WithNormalizer replaces the default address normalizer.
func WithNormalizer(n Normalizer) Option {
	return func(c *Controller) { c.normalizer = n }
}

// NewController starts a session with one blank tab and an empty history.
// Cancelling ctx, or calling Close, aborts every fetch in flight.
func NewController(ctx context.Context, fetcher Fetcher, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(ctx)
	c := &Controller{
		ctx:         ctx,
		cancel:      cancel,
		fetcher:     fetcher,
		tabs:        NewTabSet(),
		history:     NewHistoryLog(),
		inflight:    make(map[TabID]context.CancelFunc),
		completions: make(chan Completion, completionBuffer),
		session:     uuid.NewString(),
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(zap.String("session", c.session))
	return c
}

// Session returns the id used to tag this session's log lines.
func (c *Controller) Session() string { return c.session }

// Completions delivers finished fetches. Pass each one to Apply.
func (c *Controller) Completions() <-chan Completion { return c.completions }

// Close cancels all outstanding fetches.
func (c *Controller) Close() { c.cancel() }

// Handle dispatches a UI intent.
func (c *Controller) Handle(in Intent) (Snapshot, error) {
	switch in := in.(type) {
	case RequestNavigate:
		return c.Navigate(in.Input), nil
	case RequestOpen:
		return c.Open(in.Target), nil
	case RequestBack:
		snap, _ := c.Back()
		return snap, nil
	case RequestForward:
		snap, _ := c.Forward()
		return snap, nil
	case RequestReload:
		return c.Reload(), nil
	case RequestNewTab:
		return c.NewTab(), nil
	case RequestCloseTab:
		return c.CloseTab(in.Index)
	case RequestSwitchTab:
		return c.SwitchTab(in.Index)
	default:
		return c.Snapshot(), fmt.Errorf("unknown intent %T", in)
	}
}

// Navigate normalizes raw, points the active tab at it, records it in the
// history and starts loading it.
func (c *Controller) Navigate(raw string) Snapshot {
	target := c.normalizer.Normalize(raw)
	c.logger.Debug("navigate",
		zap.Stringer("tab", c.tabs.activeTab().ID),
		zap.String("input", raw),
		zap.Stringer("target", target))
	return c.Open(target)
}

// Open is Navigate for a target that is already normalized, such as an
// entry picked from the history.
func (c *Controller) Open(target Target) Snapshot {
	c.load(c.tabs.activeTab(), target)
	c.history.Record(target)
	return c.Snapshot()
}

// Back loads the previous history entry in the active tab. Nothing is
// recorded; the bool is false when there was nowhere to go.
func (c *Controller) Back() (Snapshot, bool) {
	target, ok := c.history.Back()
	if !ok {
		return c.Snapshot(), false
	}
	c.load(c.tabs.activeTab(), target)
	return c.Snapshot(), true
}

// Forward is the mirror of Back.
func (c *Controller) Forward() (Snapshot, bool) {
	target, ok := c.history.Forward()
	if !ok {
		return c.Snapshot(), false
	}
	c.load(c.tabs.activeTab(), target)
	return c.Snapshot(), true
}

// Reload fetches the active tab's target again. Blank tabs are left alone.
func (c *Controller) Reload() Snapshot {
	tab := c.tabs.activeTab()
	if !tab.Target.IsBlank() {
		c.load(tab, tab.Target)
	}
	return c.Snapshot()
}

// NewTab opens a blank tab and activates it.
func (c *Controller) NewTab() Snapshot {
	c.abandon(c.tabs.activeTab())
	id := c.tabs.Create()
	c.logger.Debug("tab opened", zap.Stringer("tab", id))
	return c.Snapshot()
}

// CloseTab closes the tab at index and cancels its fetch.
func (c *Controller) CloseTab(index int) (Snapshot, error) {
	var id TabID
	if index >= 0 && index < c.tabs.Len() {
		id = c.tabs.tabs[index].ID
	}
	if err := c.tabs.Close(index); err != nil {
		return c.Snapshot(), err
	}
	c.release(id)
	c.logger.Debug("tab closed", zap.Stringer("tab", id), zap.Int("index", index))
	return c.Snapshot(), nil
}

// SwitchTab activates the tab at index. A tab left while loading has its
// fetch cancelled and goes back to idle.
func (c *Controller) SwitchTab(index int) (Snapshot, error) {
	prev := c.tabs.activeTab()
	if err := c.tabs.Switch(index); err != nil {
		return c.Snapshot(), err
	}
	if c.tabs.activeTab() != prev {
		c.abandon(prev)
	}
	return c.Snapshot(), nil
}

// Apply folds a finished fetch into its tab. Completions for closed tabs,
// or for loads that have since been superseded, are dropped and Apply
// reports false.
func (c *Controller) Apply(done Completion) (Snapshot, bool) {
	tab := c.tabs.byID(done.TabID)
	switch {
	case tab == nil:
		c.logger.Debug("dropped completion for closed tab", zap.Stringer("tab", done.TabID))
		return c.Snapshot(), false
	case tab.seq != done.seq || tab.Target != done.Target:
		c.logger.Debug("dropped stale completion",
			zap.Stringer("tab", done.TabID),
			zap.Stringer("target", done.Target))
		return c.Snapshot(), false
	}

	c.release(tab.ID)
	if done.Err != nil {
		var fetchErr *FetchError
		if !errors.As(done.Err, &fetchErr) {
			fetchErr = &FetchError{Target: done.Target, Err: done.Err}
		}
		c.logger.Warn("fetch failed", zap.Stringer("tab", tab.ID), zap.Error(fetchErr))
		tab.fail(fetchErr)
	} else {
		tab.complete(done.Page)
	}
	return c.Snapshot(), true
}

// Snapshot reports the current state for rendering.
func (c *Controller) Snapshot() Snapshot {
	return Snapshot{
		Active:       c.tabs.Active(),
		ActiveIndex:  c.tabs.ActiveIndex(),
		Tabs:         c.tabs.Tabs(),
		CanGoBack:    c.history.CanGoBack(),
		CanGoForward: c.history.CanGoForward(),
	}
}

// History returns the session log and the cursor position.
func (c *Controller) History() ([]Target, int) {
	return c.history.Entries(), c.history.Pos()
}

func (c *Controller) load(tab *Tab, target Target) {
	c.release(tab.ID)
	seq := tab.begin(target)

	ctx, cancel := context.WithCancel(c.ctx)
	c.inflight[tab.ID] = cancel
	go c.fetch(ctx, Completion{TabID: tab.ID, Target: target, seq: seq})
}

func (c *Controller) fetch(ctx context.Context, done Completion) {
	page, err := c.fetcher.Fetch(ctx, done.Target)
	if err != nil {
		done.Err = &FetchError{Target: done.Target, Err: err}
	} else {
		done.Page = page
	}
	select {
	case c.completions <- done:
	case <-ctx.Done():
	}
}

// abandon cancels tab's fetch, if any, and settles it on its target.
func (c *Controller) abandon(tab *Tab) {
	if !tab.Loading {
		return
	}
	c.release(tab.ID)
	tab.settle()
	c.logger.Debug("load abandoned", zap.Stringer("tab", tab.ID), zap.Stringer("target", tab.Target))
}

func (c *Controller) release(id TabID) {
	if cancel, ok := c.inflight[id]; ok {
		cancel()
		delete(c.inflight, id)
	}
}
