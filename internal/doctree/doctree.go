package doctree

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Level is a heading depth. 1 is the top level and serializes as "H1".
type Level int

func (l Level) String() string {
	return "H" + strconv.Itoa(int(l))
}

func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

func (l *Level) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := ParseLevel(s)
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// ParseLevel accepts "H2" or "h2".
func ParseLevel(s string) (Level, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || (s[0] != 'H' && s[0] != 'h') {
		return 0, fmt.Errorf("invalid heading level %q", s)
	}
	n, err := strconv.Atoi(s[1:])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid heading level %q", s)
	}
	return Level(n), nil
}

// Entry is one heading in an outline.
type Entry struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
	Page  int    `json:"page"` // 1-based
}

// Outline is the per-document result: a title plus headings in reading order.
type Outline struct {
	Title   string  `json:"title"`
	Entries []Entry `json:"outline"`
}

// MarshalJSON always writes "outline" as an array, never null.
func (o Outline) MarshalJSON() ([]byte, error) {
	type plain Outline
	p := plain(o)
	if p.Entries == nil {
		p.Entries = []Entry{}
	}
	return json.Marshal(p)
}

// Report describes how a document was processed. It is not part of the outline JSON.
type Report struct {
	Pages       int   `json:"pages"`
	FailedPages []int `json:"failed_pages,omitempty"` // 1-based
	Lines       int   `json:"lines"`
	Empty       bool  `json:"empty"`
	Degraded    bool  `json:"degraded"` // no font size above body text
}

// Partial reports whether some, but not all, pages failed to decode.
func (r Report) Partial() bool {
	return len(r.FailedPages) > 0 && len(r.FailedPages) < r.Pages
}

// Document pairs an outline with its processing report.
type Document struct {
	Outline Outline
	Report  Report
}

// Empty returns the outline for a document with no extractable text.
func Empty() Outline {
	return Outline{Title: "", Entries: []Entry{}}
}
