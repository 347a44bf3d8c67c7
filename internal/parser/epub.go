package parser

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/taylorskalyo/goreader/epub"
	"golang.org/x/net/html"
)

const ncxMediaType = "application/x-dtbncx+xml"

type ncx struct {
	NavMap struct {
		Points []navPoint `xml:"navPoint"`
	} `xml:"navMap"`
}

type navPoint struct {
	Label struct {
		Text string `xml:"text"`
	} `xml:"navLabel"`
	Content struct {
		Src string `xml:"src,attr"`
	} `xml:"content"`
	Children []navPoint `xml:"navPoint"`
}

// EPUBParser reads the NCX table of contents, falling back to h1-h6 headings
// in the spine documents. Pages are 1-based spine positions.
type EPUBParser struct{}

func (p *EPUBParser) Parse(ctx context.Context, r io.Reader, filename string) (*doctree.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	rc, err := epub.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open epub: %w: %w", ErrUnreadable, err)
	}
	if len(rc.Rootfiles) == 0 {
		return nil, fmt.Errorf("open epub: %w: no rootfiles", ErrUnreadable)
	}
	book := rc.Rootfiles[0]

	title := strings.TrimSpace(book.Metadata.Title)
	c := headingCollector{keepLeading: title != ""}
	if title == "" {
		title = stem(filename)
	}

	spine := spineIndex(book)
	if points, err := readNCX(book); err == nil && len(points) > 0 {
		flattenNavPoints(points, 1, spine, &c)
	} else {
		for i, ref := range book.Spine.Itemrefs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if ref.Item == nil {
				continue
			}
			root, err := openXHTML(ref.Item)
			if err != nil {
				continue
			}
			collectHTMLHeadings(root, i+1, &c)
		}
	}

	return c.document(title, len(book.Spine.Itemrefs)), nil
}

// spineIndex maps both the full and base href of each spine item to its
// 1-based position.
func spineIndex(book *epub.Rootfile) map[string]int {
	m := make(map[string]int)
	for i, ref := range book.Spine.Itemrefs {
		if ref.Item == nil || ref.Item.HREF == "" {
			continue
		}
		if _, ok := m[ref.Item.HREF]; !ok {
			m[ref.Item.HREF] = i + 1
		}
		if _, ok := m[path.Base(ref.Item.HREF)]; !ok {
			m[path.Base(ref.Item.HREF)] = i + 1
		}
	}
	return m
}

func spinePage(spine map[string]int, src string) int {
	if idx := strings.Index(src, "#"); idx != -1 {
		src = src[:idx]
	}
	if n, ok := spine[src]; ok {
		return n
	}
	if n, ok := spine[path.Base(src)]; ok {
		return n
	}
	return 1
}

func readNCX(book *epub.Rootfile) ([]navPoint, error) {
	for i := range book.Manifest.Items {
		item := &book.Manifest.Items[i]
		if item.MediaType != ncxMediaType {
			continue
		}
		f, err := item.Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		var toc ncx
		if err := xml.NewDecoder(f).Decode(&toc); err != nil {
			return nil, fmt.Errorf("parse ncx: %w", err)
		}
		return toc.NavMap.Points, nil
	}
	return nil, fmt.Errorf("no ncx in manifest")
}

func flattenNavPoints(points []navPoint, depth int, spine map[string]int, c *headingCollector) {
	for _, np := range points {
		c.add(depth, np.Label.Text, spinePage(spine, np.Content.Src))
		flattenNavPoints(np.Children, depth+1, spine, c)
	}
}

func openXHTML(item *epub.Item) (*html.Node, error) {
	f, err := item.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return html.Parse(f)
}
