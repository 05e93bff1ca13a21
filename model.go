package main

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/zam-dot/ferrum/bookmarks"
	"github.com/zam-dot/ferrum/navigation"
)

// pageView selects what the viewport shows.
type pageView int

const (
	viewPage pageView = iota
	viewHistory
	viewBookmarks
	viewHelp
)

// completionMsg carries a finished fetch into the update loop.
type completionMsg struct {
	done navigation.Completion
}

// model is the Bubble Tea shell around the navigation controller. It never
// mutates tabs or history itself; it sends intents and renders snapshots.
type model struct {
	cfg       Config
	nav       *navigation.Controller
	bookmarks *bookmarks.Store // nil when bookmarks are disabled

	snap navigation.Snapshot
	view pageView

	urlInput textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer

	status    string
	statusErr bool
	ready     bool
	width     int
}

func newModel(cfg Config, nav *navigation.Controller, store *bookmarks.Store, start string) *model {
	ti := textinput.New()
	ti.Placeholder = "Enter a URL or search"
	ti.CharLimit = 2048
	ti.Prompt = "› "
	ti.PromptStyle = spinnerStyle
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	m := &model{
		cfg:       cfg,
		nav:       nav,
		bookmarks: store,
		urlInput:  ti,
		spinner:   sp,
		snap:      nav.Snapshot(),
	}
	if start != "" {
		m.snap = nav.Navigate(start)
		m.syncAddress()
	}
	return m
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, waitForCompletion(m.nav.Completions()))
}

// waitForCompletion blocks on the controller's completion channel off the
// update goroutine and hands the result back as a message.
func waitForCompletion(ch <-chan navigation.Completion) tea.Cmd {
	return func() tea.Msg {
		return completionMsg{done: <-ch}
	}
}

func (m *model) setError(err error) {
	m.status = err.Error()
	m.statusErr = true
}

func (m *model) setNotice(msg string) {
	m.status = msg
	m.statusErr = false
}

// renderMarkdown styles md with glamour, falling back to the plain text
// before the first resize or if rendering fails.
func (m *model) renderMarkdown(md string) string {
	if m.renderer == nil {
		return md
	}
	out, err := m.renderer.Render(md)
	if err != nil {
		return md
	}
	return out
}
