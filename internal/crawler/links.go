package crawler

import (
	"net/url"
	"strings"

	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// normalizeURL strips the trailing slash so the visited set treats
// "https://x.com/a" and "https://x.com/a/" as one page.
func normalizeURL(raw string) string {
	return strings.TrimSuffix(raw, "/")
}

// extractLinks returns the same-domain links found in rawHTML, resolved
// against baseURL and normalised. Fragment and javascript: URLs are
// discarded, as is the base URL itself. The result is de-duplicated and
// keeps first-seen page order so depth-first recursion is
// deterministic.
func extractLinks(rawHTML, baseURL string) []string {
	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return nil
	}

	root, err := xhtml.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil
	}

	normalizedBase := normalizeURL(baseURL)
	seen := make(map[string]bool)
	var links []string

	var walk func(*xhtml.Node)
	walk = func(n *xhtml.Node) {
		if n.Type == xhtml.ElementNode && n.DataAtom == atom.A {
			if href, ok := anchorHref(n); ok {
				if link, ok := resolveLink(base, href, normalizedBase); ok && !seen[link] {
					seen[link] = true
					links = append(links, link)
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)

	return links
}

func anchorHref(n *xhtml.Node) (string, bool) {
	for _, attr := range n.Attr {
		if attr.Key == "href" && attr.Val != "" {
			return attr.Val, true
		}
	}
	return "", false
}

// resolveLink resolves href against base and applies the crawl-scope
// rules: same host only, no fragments, no javascript:, no self-link.
func resolveLink(base *url.URL, href, normalizedBase string) (string, bool) {
	resolved, err := base.Parse(href)
	if err != nil {
		return "", false
	}

	if resolved.Scheme == "javascript" || resolved.Fragment != "" {
		return "", false
	}
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", false
	}
	// Domain equality is host-based: subdomains are out of scope.
	if resolved.Host != base.Host {
		return "", false
	}

	link := normalizeURL(resolved.String())
	if link == "" || link == normalizedBase {
		return "", false
	}
	return link, true
}
