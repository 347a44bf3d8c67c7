package parser

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
	"golang.org/x/net/html"
)

// HTMLParser reads h1 through h6 elements. The <title> element, when present,
// names the document; otherwise a lone leading h1 does.
type HTMLParser struct{}

func (p *HTMLParser) Parse(ctx context.Context, r io.Reader, filename string) (*doctree.Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	title := findTitle(root)
	c := headingCollector{keepLeading: title != ""}
	collectHTMLHeadings(root, 1, &c)
	if title == "" {
		title = stem(filename)
	}
	return c.document(title, 1), nil
}

func collectHTMLHeadings(n *html.Node, page int, c *headingCollector) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "nav", "footer", "template":
			return
		}
		if level := headingLevel(n.Data); level > 0 {
			c.add(level, textContent(n), page)
			return
		}
	}
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		collectHTMLHeadings(ch, page, c)
	}
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return strings.Join(strings.Fields(textContent(n)), " ")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}
