package browser

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// DefaultMaxHTMLLength bounds cleaned markup returned by Visit.
const DefaultMaxHTMLLength = 50000

// CleanedHTML is page markup reduced to its semantic structure.
type CleanedHTML struct {
	HTML        string
	Title       string
	Description string
	Truncated   bool
}

var (
	skippedTags = setOf("script", "style", "noscript", "iframe", "embed", "object", "svg", "template")
	blockTags   = setOf("div", "p", "section", "article", "header", "footer", "nav", "main", "aside",
		"h1", "h2", "h3", "h4", "h5", "h6", "ul", "ol", "li", "table", "tr", "td", "th",
		"form", "fieldset", "blockquote", "pre")
	voidTags    = setOf("area", "base", "br", "col", "embed", "hr", "img", "input", "link", "meta", "param", "source", "track", "wbr")
	globalAttrs = setOf("id", "class", "role", "name", "aria-label", "aria-describedby")
	tagAttrs    = map[string]map[string]bool{
		"a":        setOf("href", "target"),
		"img":      setOf("src", "alt"),
		"input":    setOf("type", "placeholder", "value", "checked"),
		"textarea": setOf("placeholder"),
		"select":   setOf("multiple"),
		"option":   setOf("value", "selected"),
		"button":   setOf("type"),
		"form":     setOf("action", "method"),
		"table":    setOf("summary"),
		"label":    setOf("for"),
	}
)

func setOf(items ...string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, item := range items {
		m[item] = true
	}
	return m
}

// cleanHTML strips scripts, styles, comments and presentational attributes
// from rawHTML, keeping the element tree and the attributes useful for
// writing selectors. Output stops once maxLength characters were written.
func cleanHTML(rawHTML string, maxLength int) (*CleanedHTML, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	if maxLength <= 0 {
		maxLength = DefaultMaxHTMLLength
	}

	c := &htmlCleaner{limit: maxLength}
	c.walk(doc, 0)

	return &CleanedHTML{
		HTML:        c.out.String(),
		Title:       findTitle(doc),
		Description: findMetaDescription(doc),
		Truncated:   c.truncated,
	}, nil
}

type htmlCleaner struct {
	out       strings.Builder
	limit     int
	used      int
	truncated bool
}

func (c *htmlCleaner) walk(n *html.Node, depth int) {
	if c.truncated {
		return
	}
	if c.used >= c.limit {
		c.truncated = true
		return
	}
	switch n.Type {
	case html.CommentNode, html.DoctypeNode:
		return
	case html.TextNode:
		c.text(n.Data)
	case html.ElementNode:
		tag := strings.ToLower(n.Data)
		if skippedTags[tag] {
			return
		}
		c.element(n, tag, depth)
	default:
		c.children(n, depth)
	}
}

func (c *htmlCleaner) children(n *html.Node, depth int) {
	for child := n.FirstChild; child != nil && !c.truncated; child = child.NextSibling {
		c.walk(child, depth)
	}
}

func (c *htmlCleaner) text(raw string) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return
	}
	if room := c.limit - c.used; len(text) > room {
		c.out.WriteString(html.EscapeString(text[:max(room, 0)]) + "...")
		c.used = c.limit
		c.truncated = true
		return
	}
	c.out.WriteString(html.EscapeString(text))
	c.used += len(text)
}

func (c *htmlCleaner) element(n *html.Node, tag string, depth int) {
	block := blockTags[tag]
	if block && depth > 0 {
		c.newline(depth)
	}

	c.out.WriteString("<" + tag)
	for _, attr := range n.Attr {
		if keepAttribute(tag, attr.Key) {
			fmt.Fprintf(&c.out, ` %s="%s"`, strings.ToLower(attr.Key), html.EscapeString(attr.Val))
		}
	}
	c.out.WriteString(">")
	c.used += len(tag) + 2

	if voidTags[tag] {
		return
	}

	c.children(n, depth+1)
	if block {
		c.newline(depth)
	}
	c.out.WriteString("</" + tag + ">")
	c.used += len(tag) + 3
}

func (c *htmlCleaner) newline(depth int) {
	c.out.WriteString("\n")
	c.out.WriteString(strings.Repeat("  ", depth))
}

// keepAttribute reports whether an attribute helps identify or target an element.
func keepAttribute(tag, attr string) bool {
	attr = strings.ToLower(attr)
	if globalAttrs[attr] || strings.HasPrefix(attr, "data-") {
		return true
	}
	return tagAttrs[tag][attr]
}

func findTitle(doc *html.Node) string {
	n := findFirst(doc, func(n *html.Node) bool { return n.Data == "title" })
	if n == nil || n.FirstChild == nil || n.FirstChild.Type != html.TextNode {
		return ""
	}
	return strings.TrimSpace(n.FirstChild.Data)
}

func findMetaDescription(doc *html.Node) string {
	n := findFirst(doc, func(n *html.Node) bool {
		return n.Data == "meta" && attrValue(n, "name") == "description" && attrValue(n, "content") != ""
	})
	if n == nil {
		return ""
	}
	return strings.TrimSpace(attrValue(n, "content"))
}

// findFirst returns the first element in document order that satisfies match.
func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findFirst(child, match); found != nil {
			return found
		}
	}
	return nil
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if strings.EqualFold(attr.Key, key) {
			return attr.Val
		}
	}
	return ""
}
