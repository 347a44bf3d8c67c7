package doctree

import (
	"fmt"
	"regexp"
	"strings"
)

// Validate checks an outline before it is persisted or served.
func Validate(o Outline) error {
	prev := 0
	for i, e := range o.Entries {
		text := strings.TrimSpace(e.Text)
		if text == "" {
			return fmt.Errorf("entry %d: empty text", i)
		}
		if text != e.Text {
			return fmt.Errorf("entry %d: untrimmed text %q", i, e.Text)
		}
		if e.Level < 1 {
			return fmt.Errorf("entry %d: level %d out of range", i, e.Level)
		}
		if e.Page < 1 {
			return fmt.Errorf("entry %d: page %d out of range", i, e.Page)
		}
		if e.Page < prev {
			return fmt.Errorf("entry %d: page %d after page %d", i, e.Page, prev)
		}
		prev = e.Page
	}
	return nil
}

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9-]`)
	slugDashes  = regexp.MustCompile(`-+`)
)

// Slugify converts a string to a URL/path-safe slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugInvalid.ReplaceAllString(s, "-")
	s = slugDashes.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 50 {
		s = strings.TrimRight(s[:50], "-")
	}
	return s
}
