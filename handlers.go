package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/zam-dot/ferrum/navigation"
)

var (
	errBookmarksDisabled = errors.New("bookmarks are disabled")
	errHistoryDisabled   = errors.New("history is disabled")
)

// Update routes messages: keys to handleKeyMsg, finished fetches to the
// controller, everything else to the focused component.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg)
	case completionMsg:
		return m.handleCompletion(msg)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		// The loading line in the viewport carries the spinner frame too.
		if m.ready && m.view == viewPage && m.snap.Active.Loading {
			m.viewport.SetContent(m.pageContent())
		}
		return m, cmd
	}

	var cmd tea.Cmd
	m.urlInput, cmd = m.urlInput.Update(msg)
	return m, cmd
}

// handleKeyMsg handles global shortcuts first. Remaining keys go to the
// address bar when it has focus and scroll the page otherwise.
func (m *model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "ctrl+c":
		return m, tea.Quit
	case "ctrl+t":
		return m.handleNewTab()
	case "ctrl+w":
		return m.dispatch(navigation.RequestCloseTab{Index: m.snap.ActiveIndex})
	case "ctrl+n":
		return m.dispatch(navigation.RequestSwitchTab{Index: (m.snap.ActiveIndex + 1) % len(m.snap.Tabs)})
	case "ctrl+p":
		n := len(m.snap.Tabs)
		return m.dispatch(navigation.RequestSwitchTab{Index: (m.snap.ActiveIndex - 1 + n) % n})
	case "alt+left":
		return m.dispatch(navigation.RequestBack{})
	case "alt+right":
		return m.dispatch(navigation.RequestForward{})
	case "ctrl+r":
		return m.dispatch(navigation.RequestReload{})
	case "ctrl+d":
		return m.handleBookmark()
	case "ctrl+l":
		m.urlInput.Focus()
		return m, nil
	case "esc":
		return m.handleEscape()
	case "enter":
		if m.urlInput.Focused() {
			return m.handleEnter()
		}
	}

	if digit, ok := strings.CutPrefix(key, "alt+"); ok {
		if n, err := strconv.Atoi(digit); err == nil && n >= 1 && n <= 9 {
			return m.dispatch(navigation.RequestSwitchTab{Index: n - 1})
		}
	}

	var cmd tea.Cmd
	if m.urlInput.Focused() {
		m.urlInput, cmd = m.urlInput.Update(msg)
	} else {
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

// dispatch sends an intent to the controller and shows the result.
func (m *model) dispatch(in navigation.Intent) (tea.Model, tea.Cmd) {
	snap, err := m.nav.Handle(in)
	m.snap = snap
	m.view = viewPage
	if err != nil {
		m.setError(err)
	} else {
		m.setNotice("")
	}
	m.syncAddress()
	m.refresh()
	return m, nil
}

// syncAddress puts the active tab's URL in the address bar. Blank tabs get
// an empty bar so the placeholder shows.
func (m *model) syncAddress() {
	if m.snap.Active.Target.IsBlank() {
		m.urlInput.SetValue("")
		return
	}
	m.urlInput.SetValue(m.snap.Active.Target.String())
	m.urlInput.CursorEnd()
}

func (m *model) handleNewTab() (tea.Model, tea.Cmd) {
	if len(m.snap.Tabs) >= m.cfg.MaxTabs {
		m.setError(fmt.Errorf("maximum tabs (%d) reached", m.cfg.MaxTabs))
		return m, nil
	}
	m.urlInput.Focus()
	return m.dispatch(navigation.RequestNewTab{})
}

// handleEnter submits the address bar: a ":command", a number picking from
// the list on screen, or a URL or search.
func (m *model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.urlInput.Value())
	m.urlInput.SetValue("")
	if input == "" {
		return m, nil
	}

	if command, ok := strings.CutPrefix(input, ":"); ok {
		return m.handleCommand(command)
	}
	// A bare number picks from whatever list is on screen.
	if n, err := strconv.Atoi(input); err == nil {
		switch {
		case m.view == viewBookmarks:
			return m.openBookmark(n)
		case m.view == viewHistory:
			return m.openHistory(n)
		case m.view == viewPage && len(m.snap.Active.Links) > 0:
			return m.followLink(n)
		}
	}
	return m.dispatch(navigation.RequestNavigate{Input: input})
}

// followLink opens link n of the active page.
func (m *model) followLink(n int) (tea.Model, tea.Cmd) {
	links := m.snap.Active.Links
	if n < 1 || n > len(links) {
		m.setError(fmt.Errorf("no link %d (page has %d)", n, len(links)))
		return m, nil
	}
	return m.dispatch(navigation.RequestNavigate{Input: links[n-1].URL})
}

// openHistory re-opens history entry n. It is recorded as a new visit.
func (m *model) openHistory(n int) (tea.Model, tea.Cmd) {
	entries, _ := m.nav.History()
	if n < 1 || n > len(entries) {
		m.setError(fmt.Errorf("no history entry %d (have %d)", n, len(entries)))
		return m, nil
	}
	return m.dispatch(navigation.RequestOpen{Target: entries[n-1]})
}

// handleCommand runs a ":command" typed in the address bar. Tab numbers
// are 1-based as shown in the tab bar.
func (m *model) handleCommand(command string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return m, nil
	}
	arg := func() (int, error) {
		if len(fields) < 2 {
			return m.snap.ActiveIndex, nil
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return 0, fmt.Errorf("not a tab number: %q", fields[1])
		}
		return n - 1, nil
	}

	switch fields[0] {
	case "q", "quit":
		return m, tea.Quit
	case "help", "h", "?":
		return m.show(viewHelp)
	case "history":
		if !m.cfg.EnableHistory {
			m.setError(errHistoryDisabled)
			return m, nil
		}
		return m.show(viewHistory)
	case "bookmarks", "b":
		if m.bookmarks == nil {
			m.setError(errBookmarksDisabled)
			return m, nil
		}
		return m.show(viewBookmarks)
	case "bookmark", "bm":
		return m.handleBookmark()
	case "unbookmark", "rmbm":
		if len(fields) < 2 {
			m.setError(errors.New("usage: :rmbm N"))
			return m, nil
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			m.setError(fmt.Errorf("not a bookmark number: %q", fields[1]))
			return m, nil
		}
		return m.removeBookmark(n)
	case "new":
		return m.handleNewTab()
	case "back":
		return m.dispatch(navigation.RequestBack{})
	case "forward":
		return m.dispatch(navigation.RequestForward{})
	case "reload":
		return m.dispatch(navigation.RequestReload{})
	case "close":
		index, err := arg()
		if err != nil {
			m.setError(err)
			return m, nil
		}
		return m.dispatch(navigation.RequestCloseTab{Index: index})
	case "tab":
		index, err := arg()
		if err != nil {
			m.setError(err)
			return m, nil
		}
		return m.dispatch(navigation.RequestSwitchTab{Index: index})
	}

	m.setError(fmt.Errorf("unknown command :%s (try :help)", fields[0]))
	return m, nil
}

// show switches the viewport to v. List views start with an empty address
// bar so a number can be typed straight away.
func (m *model) show(v pageView) (tea.Model, tea.Cmd) {
	m.view = v
	m.setNotice("")
	if v == viewPage {
		m.syncAddress()
	} else {
		m.urlInput.SetValue("")
	}
	m.refresh()
	return m, nil
}

func (m *model) handleBookmark() (tea.Model, tea.Cmd) {
	if m.bookmarks == nil {
		m.setError(errBookmarksDisabled)
		return m, nil
	}

	tab := m.snap.Active
	if tab.Target.IsBlank() {
		m.setNotice("Nothing to bookmark on a blank tab")
		return m, nil
	}
	title := tab.Title
	if tab.Loading {
		title = navigation.DeriveTitle(tab.Target)
	}

	added, err := m.bookmarks.Add(title, tab.Target.String())
	switch {
	case err != nil:
		m.setError(err)
	case added:
		m.setNotice("Bookmarked: " + title)
	default:
		m.setNotice("Already bookmarked")
	}
	if m.view == viewBookmarks {
		m.refresh()
	}
	return m, nil
}

func (m *model) openBookmark(n int) (tea.Model, tea.Cmd) {
	all := m.bookmarks.All()
	if n < 1 || n > len(all) {
		m.setError(fmt.Errorf("no bookmark %d (have %d)", n, len(all)))
		return m, nil
	}
	return m.dispatch(navigation.RequestNavigate{Input: all[n-1].URL})
}

// removeBookmark deletes bookmark n (1-based) and shows the list.
func (m *model) removeBookmark(n int) (tea.Model, tea.Cmd) {
	if m.bookmarks == nil {
		m.setError(errBookmarksDisabled)
		return m, nil
	}
	removed, err := m.bookmarks.Remove(n - 1)
	if err != nil {
		m.setError(err)
		return m, nil
	}
	m.show(viewBookmarks)
	m.setNotice("Removed bookmark: " + removed.Title)
	return m, nil
}

func (m *model) handleEscape() (tea.Model, tea.Cmd) {
	if m.view != viewPage {
		return m.show(viewPage)
	}
	if m.urlInput.Focused() {
		m.urlInput.Blur()
	}
	return m, nil
}

// handleCompletion applies a finished fetch and waits for the next one.
// Dropped completions change nothing on screen.
func (m *model) handleCompletion(msg completionMsg) (tea.Model, tea.Cmd) {
	next := waitForCompletion(m.nav.Completions())

	snap, applied := m.nav.Apply(msg.done)
	if !applied {
		return m, next
	}
	m.snap = snap
	if msg.done.TabID == snap.Active.ID {
		if msg.done.Err != nil {
			m.setError(msg.done.Err)
		}
		if m.view == viewPage {
			m.refresh()
		}
	}
	return m, next
}

const chromeHeight = 5 // tab bar, bordered address bar, status line

// handleWindowSize sizes the viewport and rebuilds the markdown renderer
// for the new wrap width.
func (m *model) handleWindowSize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	height := max(msg.Height-chromeHeight, 1)

	if !m.ready {
		m.viewport = viewport.New(msg.Width, height)
		m.ready = true
	} else {
		m.viewport.Width = msg.Width
		m.viewport.Height = height
	}
	m.urlInput.Width = max(msg.Width-8, 10)

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(max(msg.Width-4, 20)),
	)
	if err == nil {
		m.renderer = renderer
	}
	m.refresh()
	return m, nil
}

// refresh redraws the viewport for the current view and snapshot.
func (m *model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.pageContent())
	m.viewport.GotoTop()
}
