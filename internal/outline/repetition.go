package outline

import "strings"

// Zone is a coarse vertical region of a page.
type Zone int

const (
	ZoneBody Zone = iota
	ZoneTop
	ZoneBottom
)

func (z Zone) String() string {
	switch z {
	case ZoneTop:
		return "top"
	case ZoneBottom:
		return "bottom"
	}
	return "body"
}

// Band identifies text that recurs at the same coarse position across pages.
type Band struct {
	Zone Zone
	Key  string
}

// BandSet is the set of running headers, footers and watermarks of one document.
type BandSet struct {
	bands       map[Band]int // distinct pages per band
	marginRatio float64
}

func zoneOf(l Line, marginRatio float64) Zone {
	if l.PageHeight <= 0 {
		return ZoneBody
	}
	pos := l.CenterY() / l.PageHeight
	switch {
	case pos < marginRatio:
		return ZoneTop
	case pos > 1-marginRatio:
		return ZoneBottom
	}
	return ZoneBody
}

// bandOf keys margin text with digits masked so "Page 3" matches "Page 4".
// Body text must repeat verbatim, which keeps "Chapter 1", "Chapter 2" apart.
func bandOf(l Line, marginRatio float64) Band {
	z := zoneOf(l, marginRatio)
	if z == ZoneBody {
		return Band{Zone: z, Key: strings.ToLower(NormalizeText(l.Text))}
	}
	return Band{Zone: z, Key: repeatKey(l.Text)}
}

// DetectBands finds keys that occur on at least MinRepeatPages pages and on
// more than RepeatFraction of the pages that carry text.
func DetectBands(lines []Line, cfg Config) BandSet {
	cfg = cfg.withDefaults()
	set := BandSet{bands: make(map[Band]int), marginRatio: cfg.MarginRatio}

	pages := make(map[int]bool)
	seen := make(map[Band]map[int]bool)
	for _, l := range lines {
		pages[l.Page] = true
		b := bandOf(l, cfg.MarginRatio)
		if seen[b] == nil {
			seen[b] = make(map[int]bool)
		}
		seen[b][l.Page] = true
	}

	total := float64(len(pages))
	for b, ps := range seen {
		n := len(ps)
		if n >= cfg.MinRepeatPages && float64(n) > cfg.RepeatFraction*total {
			set.bands[b] = n
		}
	}
	return set
}

// Has reports whether l belongs to a repeated band.
func (s BandSet) Has(l Line) bool {
	if len(s.bands) == 0 {
		return false
	}
	_, ok := s.bands[bandOf(l, s.marginRatio)]
	return ok
}

// Len is the number of detected bands.
func (s BandSet) Len() int { return len(s.bands) }
