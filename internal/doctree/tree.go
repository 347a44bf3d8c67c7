package doctree

import "fmt"

// Node is a heading with the headings nested beneath it.
type Node struct {
	Level    Level    `json:"level"`
	Text     string   `json:"text"`
	Page     int      `json:"page"`
	Anchor   string   `json:"anchor"` // unique within the forest
	Path     []string `json:"path"`   // ancestor headings, outermost first
	Children []*Node  `json:"children,omitempty"`
}

// Nest turns a flat outline into a forest. A heading becomes the child of the
// nearest preceding heading with a smaller level; skipped levels are allowed.
func Nest(entries []Entry) []*Node {
	type stackEntry struct {
		node  *Node
		level Level
	}

	root := &Node{}
	stack := []stackEntry{{node: root, level: 0}}
	anchors := make(map[string]int)

	for _, e := range entries {
		for len(stack) > 1 && stack[len(stack)-1].level >= e.Level {
			stack = stack[:len(stack)-1]
		}
		parent := stack[len(stack)-1].node

		var path []string
		if parent != root {
			path = append(path, parent.Path...)
			path = append(path, parent.Text)
		}

		n := &Node{Level: e.Level, Text: e.Text, Page: e.Page, Anchor: anchor(e.Text, anchors), Path: copyPath(path)}
		parent.Children = append(parent.Children, n)
		stack = append(stack, stackEntry{node: n, level: e.Level})
	}

	return root.Children
}

// Flatten walks a forest depth-first and returns its entries in order.
func Flatten(nodes []*Node) []Entry {
	var out []Entry
	var walk func([]*Node)
	walk = func(ns []*Node) {
		for _, n := range ns {
			out = append(out, Entry{Level: n.Level, Text: n.Text, Page: n.Page})
			walk(n.Children)
		}
	}
	walk(nodes)
	return out
}

// anchor slugifies text and suffixes repeats with -2, -3 and so on.
func anchor(text string, seen map[string]int) string {
	base := Slugify(text)
	if base == "" {
		base = "section"
	}
	seen[base]++
	if n := seen[base]; n > 1 {
		return fmt.Sprintf("%s-%d", base, n)
	}
	return base
}

func copyPath(p []string) []string {
	if len(p) == 0 {
		return []string{}
	}
	c := make([]string, len(p))
	copy(c, p)
	return c
}
