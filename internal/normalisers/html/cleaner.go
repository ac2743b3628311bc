// Package html converts raw HTML into structure-preserving markdown-ish
// text. Navigation chrome, boilerplate and UI noise are stripped;
// headings, lists and code blocks keep a lightweight markdown shape so
// chunk boundaries stay meaningful.
package html

import (
	"regexp"
	"strings"

	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Cleaner strips boilerplate from HTML and renders the remaining
// content as plain text with markdown headings and bullets.
type Cleaner struct {
	noise []*regexp.Regexp
}

// Option configures the cleaner.
type Option func(*Cleaner)

// WithNoisePatterns sets the UI-noise substrings removed from cleaned
// text. Each pattern is treated as a case-insensitive literal.
func WithNoisePatterns(patterns []string) Option {
	return func(c *Cleaner) {
		c.noise = compileNoise(patterns)
	}
}

// New creates a cleaner with the given options.
func New(opts ...Option) *Cleaner {
	c := &Cleaner{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func compileNoise(patterns []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		if p == "" {
			continue
		}
		out = append(out, regexp.MustCompile(`(?i)`+regexp.QuoteMeta(p)))
	}
	return out
}

// Clean parses raw HTML and returns the cleaned text. Malformed HTML
// degrades gracefully: the parser is tolerant, and anything it cannot
// make sense of simply contributes nothing. Empty or all-navigation
// input yields an empty string, never an error.
func (c *Cleaner) Clean(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	root, err := xhtml.Parse(strings.NewReader(raw))
	if err != nil {
		// xhtml.Parse only fails on reader errors, not bad markup.
		return ""
	}

	text := c.cleanNode(root)
	return strings.TrimSpace(c.postProcess(text))
}

// Title returns the contents of the document's <title> element, or ""
// if there is none.
func Title(raw string) string {
	root, err := xhtml.Parse(strings.NewReader(raw))
	if err != nil {
		return ""
	}

	var title string
	var walk func(*xhtml.Node)
	walk = func(n *xhtml.Node) {
		if title != "" {
			return
		}
		if n.Type == xhtml.ElementNode && n.DataAtom == atom.Title {
			title = strings.TrimSpace(textContent(n))
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)
	return title
}

// cleanNode renders one node. Elements fall into a few shapes: dropped
// entirely, preserved verbatim (code), block containers wrapped in
// newlines, or inline pass-through.
func (c *Cleaner) cleanNode(n *xhtml.Node) string {
	switch n.Type {
	case xhtml.TextNode:
		return n.Data
	case xhtml.DocumentNode:
		return c.cleanChildren(n, " ")
	case xhtml.ElementNode:
		// Fall through to the element handling below.
	default:
		// Comments, doctypes.
		return ""
	}

	if isDropped(n) {
		return ""
	}

	switch n.DataAtom {
	case atom.Pre, atom.Code:
		// Verbatim, no further cleaning of the contents.
		return "\n" + textContent(n) + "\n"

	case atom.Main:
		return "\n" + c.cleanChildren(n, " ") + "\n"

	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		level := int(n.Data[1] - '0')
		text := strings.TrimSpace(collapseSpace(textContent(n)))
		if text == "" {
			return ""
		}
		return "\n" + strings.Repeat("#", level) + " " + text + "\n"

	case atom.Ul, atom.Ol:
		var items []string
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if child.Type == xhtml.ElementNode && child.DataAtom == atom.Li {
				if item := strings.TrimSpace(c.cleanChildren(child, " ")); item != "" {
					items = append(items, "• "+item)
				}
			}
		}
		if len(items) == 0 {
			return ""
		}
		return "\n" + strings.Join(items, "\n") + "\n"

	case atom.Li:
		// A stray list item outside ul/ol still renders as a bullet.
		item := strings.TrimSpace(c.cleanChildren(n, " "))
		if item == "" {
			return ""
		}
		return "\n• " + item + "\n"

	case atom.P, atom.Div, atom.Section, atom.Article:
		inner := strings.TrimSpace(c.cleanChildren(n, " "))
		if inner == "" {
			return ""
		}
		return "\n" + inner + "\n"

	default:
		if hasMainRole(n) {
			return "\n" + c.cleanChildren(n, " ") + "\n"
		}
		// Unknown and inline elements: children joined by spaces.
		return c.cleanChildren(n, " ")
	}
}

func (c *Cleaner) cleanChildren(n *xhtml.Node, sep string) string {
	var parts []string
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if s := c.cleanNode(child); strings.TrimSpace(s) != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, sep)
}

// postProcess is applied once to the fully assembled string: space
// runs and blank lines collapse to one, then configured UI-noise
// fragments are removed. Collapsing first means a noise phrase torn
// apart by element joins ("Skip  to content") still matches.
func (c *Cleaner) postProcess(text string) string {
	text = multiSpaces.ReplaceAllString(text, " ")
	text = blankLines.ReplaceAllString(text, "\n\n")
	for _, re := range c.noise {
		text = re.ReplaceAllString(text, "")
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}

var (
	multiSpaces = regexp.MustCompile(`[ \t]{2,}`)
	blankLines  = regexp.MustCompile(`\n[ \t]*\n([ \t]*\n)+`)
)

// droppedAtoms are removed wholesale: navigation chrome plus the
// elements that never carry readable content.
var droppedAtoms = map[atom.Atom]bool{
	atom.Nav:      true,
	atom.Header:   true,
	atom.Footer:   true,
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Head:     true,
	atom.Title:    true,
	atom.Iframe:   true,
	atom.Svg:      true,
}

// isDropped reports whether the element contributes nothing: nav-like
// tags, ARIA navigation roles, or a class token containing "nav" or
// "menu".
func isDropped(n *xhtml.Node) bool {
	if droppedAtoms[n.DataAtom] {
		return true
	}

	for _, attr := range n.Attr {
		switch attr.Key {
		case "role":
			if strings.EqualFold(attr.Val, "navigation") {
				return true
			}
		case "class":
			for _, token := range strings.Fields(strings.ToLower(attr.Val)) {
				if strings.Contains(token, "nav") || strings.Contains(token, "menu") {
					return true
				}
			}
		}
	}
	return false
}

func hasMainRole(n *xhtml.Node) bool {
	for _, attr := range n.Attr {
		if attr.Key == "role" && strings.EqualFold(attr.Val, "main") {
			return true
		}
	}
	return false
}

// textContent concatenates all text descendants verbatim.
func textContent(n *xhtml.Node) string {
	var sb strings.Builder
	var walk func(*xhtml.Node)
	walk = func(n *xhtml.Node) {
		if n.Type == xhtml.TextNode {
			sb.WriteString(n.Data)
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return sb.String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
