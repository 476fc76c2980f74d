package content

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// CollectLinks extracts every hyperlink reference from markup, resolves it
// against baseURL, and returns the surviving absolute URLs as a sorted,
// duplicate-free sequence. Rejected references: mailto and javascript
// schemes, fragment-only hrefs, and links string-equal to baseURL itself.
func CollectLinks(markup, baseURL string) ([]string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base url %q: %w", baseURL, err)
	}

	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parsing markup: %w", err)
	}

	seen := make(map[string]struct{})
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if href, ok := attrValue(n, "href"); ok {
				if abs, ok := resolveLink(base, baseURL, href); ok {
					seen[abs] = struct{}{}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	links := make([]string, 0, len(seen))
	for link := range seen {
		links = append(links, link)
	}
	sort.Strings(links)
	return links, nil
}

func resolveLink(base *url.URL, baseURL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}

	resolved, err := base.Parse(href)
	if err != nil {
		return "", false
	}
	switch strings.ToLower(resolved.Scheme) {
	case "mailto", "javascript":
		return "", false
	}

	abs := resolved.String()
	if abs == "" || abs == baseURL || abs == base.String() {
		return "", false
	}
	return abs, true
}

func attrValue(n *html.Node, key string) (string, bool) {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}
