package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zam-dot/ferrum/navigation"
)

const maxTabTitle = 20

func (m *model) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	return docStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderTabBar(),
		addressStyle.Render(m.urlInput.View()),
		m.viewport.View(),
		m.renderStatusBar(),
	))
}

// pageContent is what the viewport shows for the current view.
func (m *model) pageContent() string {
	switch m.view {
	case viewHistory:
		return m.renderHistory()
	case viewBookmarks:
		return m.renderBookmarks()
	case viewHelp:
		return m.renderMarkdown(helpText)
	}

	tab := m.snap.Active
	switch {
	case tab.Loading:
		return fmt.Sprintf("\n  %s Loading %s", m.spinner.View(), tab.Target)
	case tab.Target.IsBlank():
		return m.renderMarkdown(welcomeText)
	case tab.Err != nil:
		return "\n  " + errorStyle.Render(tab.Content) + "\n\n  Press ctrl+r to retry."
	}
	return m.renderMarkdown(tab.Content)
}

func (m *model) renderTabBar() string {
	tabs := make([]string, 0, len(m.snap.Tabs))
	for i, tab := range m.snap.Tabs {
		title := truncate(tab.Title, maxTabTitle)
		if tab.Loading {
			title = m.spinner.View() + " " + truncate(navigation.DeriveTitle(tab.Target), maxTabTitle)
		}
		label := fmt.Sprintf("%d %s", i+1, title)
		if i == m.snap.ActiveIndex {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *model) renderStatusBar() string {
	back, forward := navDisabledStyle.Render("◀"), navDisabledStyle.Render("▶")
	if m.snap.CanGoBack {
		back = navEnabledStyle.Render("◀")
	}
	if m.snap.CanGoForward {
		forward = navEnabledStyle.Render("▶")
	}

	left := back + " " + forward + "  " + m.snap.Active.Target.String()
	var right string
	switch {
	case m.statusErr:
		right = errorStyle.Render(m.status)
	case m.status != "":
		right = noticeStyle.Render(m.status)
	default:
		right = "ctrl+l address · :help"
	}

	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right)-4, 1)
	return statusStyle.Render(left + strings.Repeat(" ", gap) + right)
}

func (m *model) renderHistory() string {
	entries, pos := m.nav.History()
	if len(entries) == 0 {
		return m.renderMarkdown("# History\n\nNothing visited yet.")
	}

	var b strings.Builder
	b.WriteString("# History\n\n")
	for i, t := range entries {
		marker := "  "
		if i == pos {
			marker = "➤ "
		}
		fmt.Fprintf(&b, "%s%d. %s\n", marker, i+1, truncate(t.String(), 70))
	}
	fmt.Fprintf(&b, "\n%d entries, at %d. Type a number to open it again, or use alt+← / alt+→.\n",
		len(entries), pos+1)
	return m.renderMarkdown(b.String())
}

func (m *model) renderBookmarks() string {
	if m.bookmarks == nil {
		return m.renderMarkdown("# Bookmarks\n\nBookmarks are disabled.")
	}
	all := m.bookmarks.All()
	if len(all) == 0 {
		return m.renderMarkdown("# Bookmarks\n\nNo bookmarks yet. Press ctrl+d on a page to add one.")
	}

	var b strings.Builder
	b.WriteString("# Bookmarks\n\nType a number and press enter to open it, `:rmbm N` to remove it.\n\n")
	for i, bm := range all {
		fmt.Fprintf(&b, "%d. **%s**  \n   %s\n", i+1, bm.Title, truncate(bm.URL, 60))
	}
	return m.renderMarkdown(b.String())
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

const welcomeText = `# ferrum

Type a URL or a search into the address bar and press enter.

Try ` + "`:bookmarks`" + ` for saved pages or ` + "`:help`" + ` for keys.
`

const helpText = `# Keys

| Key | Action |
|---|---|
| enter | open the address bar input |
| N, enter | follow link N on the page |
| ctrl+l / esc | focus / leave the address bar |
| alt+← / alt+→ | back / forward |
| ctrl+r | reload |
| ctrl+t | new tab |
| ctrl+w | close tab |
| ctrl+n / ctrl+p | next / previous tab |
| alt+1 … alt+9 | jump to tab |
| ctrl+d | bookmark this page |
| ctrl+c | quit |

# Commands

| Command | Action |
|---|---|
| :history | session history, type N to reopen an entry |
| :bookmarks | saved pages |
| :bm | bookmark this page |
| :rmbm N | remove bookmark N |
| :tab N | switch to tab N |
| :close [N] | close tab N, or the current tab |
| :back, :forward, :reload, :new | same as the keys |
| :q | quit |
`
