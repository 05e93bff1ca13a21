package navigation

import (
	"fmt"
	"slices"
	"strconv"
)

// TabID identifies a tab for the life of the process. IDs are never reused.
type TabID uint64

func (id TabID) String() string { return strconv.FormatUint(uint64(id), 10) }

// Tab is one browsing context.
type Tab struct {
	ID      TabID
	Target  Target
	Title   string
	Loading bool
	Icon    string // favicon URL, empty when unknown
	Content string // last page body, or the error page
	Links   []Link // numbered links in Content
	Err     error  // last fetch failure, nil after a successful load

	// seq is bumped on every load so that completions from superseded
	// loads can be told apart.
	seq uint64
}

func newBlankTab(id TabID) *Tab {
	return &Tab{
		ID:     id,
		Target: Blank,
		Title:  NewTabTitle,
	}
}

// clone copies t for callers outside the package.
func (t *Tab) clone() Tab {
	c := *t
	c.Links = slices.Clone(t.Links)
	return c
}

// begin marks the tab as loading t and returns the sequence number the
// matching completion must carry. Page data from the previous target is
// dropped.
func (t *Tab) begin(target Target) uint64 {
	t.seq++
	t.Target = target
	t.Title = LoadingTitle
	t.Loading = true
	t.Content = ""
	t.Icon = ""
	t.Links = nil
	t.Err = nil
	return t.seq
}

// settle returns the tab to idle without page data.
func (t *Tab) settle() {
	t.seq++
	t.Loading = false
	t.Title = DeriveTitle(t.Target)
	t.Content = fmt.Sprintf("Loading %s was interrupted. Reload to try again.", t.Target)
}

func (t *Tab) complete(page Page) {
	t.Loading = false
	t.Err = nil
	t.Title = page.Title
	if t.Title == "" {
		t.Title = DeriveTitle(t.Target)
	}
	t.Content = page.Content
	t.Icon = page.Icon
	t.Links = page.Links
}

func (t *Tab) fail(err *FetchError) {
	t.Loading = false
	t.Err = err
	t.Title = DeriveTitle(t.Target)
	t.Content = "Error: " + err.Error()
}
