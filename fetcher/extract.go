package fetcher

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/zam-dot/ferrum/navigation"
)

var contentSelectors = []string{
	"article", "main", "[role='main']",
	".content", ".main-content", "#content", "#main",
	"#mw-content-text", ".mw-parser-output",
}

// Extract turns a parsed document into page data. The body is markdown
// with links numbered in reading order and listed at the end; the same
// numbering is returned in Page.Links so the shell can follow them.
func Extract(doc *goquery.Document, baseURL string) navigation.Page {
	title := strings.Join(strings.Fields(doc.Find("title").First().Text()), " ")
	icon := findIcon(doc, baseURL)

	doc.Find("script, style, meta, noscript, svg, iframe").Remove()
	main := findMainContent(doc)
	main.Find("nav, header, footer, aside, .sidebar, .advertisement").Remove()

	var content strings.Builder
	var links []navigation.Link

	main.Find("h1, h2, h3, h4, h5, h6, p, li, blockquote").Each(func(i int, s *goquery.Selection) {
		// Nested matches are rendered by their outermost block.
		if s.ParentsFiltered("p, li, blockquote").Length() > 0 {
			return
		}
		text := textWithLinks(s, baseURL, &links)
		if text == "" {
			return
		}

		switch tag := goquery.NodeName(s); tag {
		case "h1":
			fmt.Fprintf(&content, "# %s\n\n", text)
		case "h2":
			fmt.Fprintf(&content, "## %s\n\n", text)
		case "h3":
			fmt.Fprintf(&content, "### %s\n\n", text)
		case "h4", "h5", "h6":
			fmt.Fprintf(&content, "#### %s\n\n", text)
		case "li":
			fmt.Fprintf(&content, "- %s\n", text)
		case "blockquote":
			fmt.Fprintf(&content, "> %s\n\n", text)
		default:
			fmt.Fprintf(&content, "%s\n\n", text)
		}
	})

	if len(links) > 0 {
		content.WriteString("\n---\n\n## Links\n\n")
		for _, l := range links {
			fmt.Fprintf(&content, "%d. %s <%s>\n", l.Number, l.Text, l.URL)
		}
	}

	return navigation.Page{
		Title:   title,
		Content: strings.TrimSpace(content.String()),
		Icon:    icon,
		Links:   links,
	}
}

// textWithLinks returns the element's text with each followable anchor
// replaced by "text [n]".
func textWithLinks(s *goquery.Selection, baseURL string, links *[]navigation.Link) string {
	cloned := s.Clone()
	cloned.Find("a[href]").Each(func(i int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		text := strings.Join(strings.Fields(a.Text()), " ")
		full := resolveURL(href, baseURL)
		if text == "" || full == "" {
			return
		}
		n := len(*links) + 1
		*links = append(*links, navigation.Link{Number: n, Text: text, URL: full})
		a.ReplaceWithHtml(fmt.Sprintf("%s [%d]", escapeHTML(text), n))
	})
	return strings.Join(strings.Fields(cloned.Text()), " ")
}

func escapeHTML(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(s)
}

func findIcon(doc *goquery.Document, baseURL string) string {
	var icon string
	doc.Find("link[rel]").EachWithBreak(func(i int, s *goquery.Selection) bool {
		rel, _ := s.Attr("rel")
		for _, r := range strings.Fields(strings.ToLower(rel)) {
			if r == "icon" {
				href, _ := s.Attr("href")
				icon = resolveURL(href, baseURL)
				return icon == ""
			}
		}
		return true
	})
	return icon
}

func findMainContent(doc *goquery.Document) *goquery.Selection {
	for _, selector := range contentSelectors {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			return sel
		}
	}
	return doc.Find("body")
}

// resolveURL makes href absolute against baseURL. Anything that is not
// http(s) after resolution, such as mailto: or in-page anchors, yields "".
func resolveURL(href, baseURL string) string {
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	resolved, err := base.Parse(href)
	if err != nil {
		return ""
	}
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return resolved.String()
}
