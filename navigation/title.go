package navigation

import "strings"

const (
	// NewTabTitle is shown for blank tabs.
	NewTabTitle = "New Tab"
	// LoadingTitle is shown while a fetch is in flight.
	LoadingTitle = "Loading…"
)

// DeriveTitle builds a display title when the page supplied none: the
// host for http(s) targets, the raw target otherwise.
func DeriveTitle(t Target) string {
	if t.IsBlank() {
		return NewTabTitle
	}
	for _, scheme := range []string{"https://", "http://"} {
		if rest, ok := strings.CutPrefix(t.raw, scheme); ok {
			host, _, _ := strings.Cut(rest, "/")
			return host
		}
	}
	return t.raw
}
