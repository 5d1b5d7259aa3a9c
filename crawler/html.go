package crawler

import (
	"bytes"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// page holds everything the crawler needs from one parsed document.
type page struct {
	title string
	text  string
	links []string
}

// skippedElements are elements whose text never contributes to page content.
var skippedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"iframe":   true,
	"object":   true,
	"embed":    true,
}

// parsePage extracts the title, visible text, and outbound links from an
// HTML document. Relative links are resolved against pageURL; anchors,
// javascript:, and mailto: links are dropped.
func parsePage(body []byte, pageURL *url.URL) (*page, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	p := &page{}
	var text strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if skippedElements[n.Data] {
				return
			}
			switch n.Data {
			case "title":
				if p.title == "" && n.FirstChild != nil {
					p.title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "a":
				if link, ok := resolveLink(n, pageURL); ok {
					p.links = append(p.links, link)
				}
			}
		}
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
			text.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	p.text = strings.Join(strings.Fields(text.String()), " ")
	return p, nil
}

// resolveLink extracts and resolves the href of an anchor node.
func resolveLink(n *html.Node, pageURL *url.URL) (string, bool) {
	var href string
	for _, attr := range n.Attr {
		if attr.Key == "href" {
			href = strings.TrimSpace(attr.Val)
			break
		}
	}

	if href == "" || strings.HasPrefix(href, "#") ||
		strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") {
		return "", false
	}

	resolved, err := pageURL.Parse(href)
	if err != nil {
		return "", false
	}
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", false
	}

	return normalizeURL(resolved), true
}

// normalizeURL canonicalizes a URL so RFC-equivalent spellings dedupe to one
// visited-set entry: the host is lowercased, an empty path becomes "/", and
// the fragment is dropped ("/docs" and "/docs#intro" are one page).
func normalizeURL(u *url.URL) string {
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" {
		u.Path = "/"
	}
	u.Fragment = ""
	return u.String()
}
