// Package content turns rendered markup into the two artefacts the
// extraction stage consumes: compact plain text and a deduplicated,
// sorted set of absolute outbound links.
package content

import (
	"strings"

	"golang.org/x/net/html"
)

// Elements whose entire subtree is non-content and must be dropped before
// the text is flattened.
var skippedElements = map[string]struct{}{
	"script":   {},
	"style":    {},
	"noscript": {},
	"template": {},
}

// Elements that introduce a line break around their content.
var blockElements = map[string]struct{}{
	"address": {}, "article": {}, "aside": {}, "blockquote": {},
	"div": {}, "dl": {}, "dd": {}, "dt": {}, "fieldset": {},
	"figcaption": {}, "figure": {}, "footer": {}, "form": {},
	"h1": {}, "h2": {}, "h3": {}, "h4": {}, "h5": {}, "h6": {},
	"header": {}, "hr": {}, "li": {}, "main": {}, "nav": {},
	"ol": {}, "p": {}, "pre": {}, "section": {}, "table": {},
	"tr": {}, "td": {}, "th": {}, "ul": {},
}

// Clean converts rendered markup into whitespace-normalized plain text.
// Script and style subtrees are removed before flattening so embedded code
// never leaks into the output. Hyperlink anchors are link carriers owned by
// the collector and contribute no text here. Each line is trimmed, interior
// space runs collapse to one, and blank lines are dropped. Empty input
// yields empty output; there is no failure mode.
func Clean(markup string) string {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return ""
	}

	var b strings.Builder
	flatten(doc, &b)
	return normalizeWhitespace(b.String())
}

func flatten(n *html.Node, b *strings.Builder) {
	if n.Type == html.ElementNode {
		if _, skip := skippedElements[n.Data]; skip {
			return
		}
		if n.Data == "a" && hasAttr(n, "href") {
			return
		}
		if n.Data == "br" {
			b.WriteByte('\n')
			return
		}
	}

	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		return
	}

	_, block := blockElements[n.Data]
	if n.Type == html.ElementNode && block {
		b.WriteByte('\n')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		flatten(c, b)
	}
	if n.Type == html.ElementNode && block {
		b.WriteByte('\n')
	}
}

func hasAttr(n *html.Node, key string) bool {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return true
		}
	}
	return false
}

func normalizeWhitespace(raw string) string {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		lines = append(lines, strings.Join(fields, " "))
	}
	return strings.Join(lines, "\n")
}
