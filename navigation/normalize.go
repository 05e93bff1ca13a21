package navigation

import (
	"net/url"
	"strings"
	"unicode"
)

// DefaultSearchTemplate is used when the Normalizer has no template set.
const DefaultSearchTemplate = "https://www.google.com/search?q=%s"

// Target is a normalized, navigable address. Only the Normalizer and the
// Blank sentinel produce one.
type Target struct {
	raw string
}

// Blank is the address of a fresh tab.
var Blank = Target{raw: "about:blank"}

func (t Target) String() string { return t.raw }

// IsBlank reports whether t is the blank-page sentinel.
func (t Target) IsBlank() bool { return t == Blank }

// Normalizer turns address-bar input into a Target.
type Normalizer struct {
	// SearchTemplate holds a %s where the encoded query goes. Without a
	// %s the query is appended.
	SearchTemplate string
}

// Normalize never fails: input that is neither a URL nor a bare domain
// becomes a search.
func (n Normalizer) Normalize(raw string) Target {
	switch {
	case strings.HasPrefix(raw, "http://"), strings.HasPrefix(raw, "https://"):
		return Target{raw: raw}
	case strings.Contains(raw, ".") && !strings.ContainsFunc(raw, unicode.IsSpace):
		return Target{raw: "https://" + raw}
	default:
		return Target{raw: n.searchURL(raw)}
	}
}

func (n Normalizer) searchURL(query string) string {
	tmpl := n.SearchTemplate
	if tmpl == "" {
		tmpl = DefaultSearchTemplate
	}
	encoded := encodeQuery(query)
	if !strings.Contains(tmpl, "%s") {
		return tmpl + encoded
	}
	return strings.Replace(tmpl, "%s", encoded, 1)
}

// encodeQuery percent-encodes s with spaces as %20 rather than '+'.
// A literal '+' is already %2B after QueryEscape.
func encodeQuery(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Normalize uses the default search template.
func Normalize(raw string) Target {
	return Normalizer{}.Normalize(raw)
}
