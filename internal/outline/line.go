package outline

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// Reconstruct groups each page's characters into lines and returns them in
// reading order: page, then top to bottom, then left to right.
func Reconstruct(pages []Page, cfg Config) []Line {
	cfg = cfg.withDefaults()

	var out []Line
	for _, p := range pages {
		if p.Err != nil {
			continue
		}
		out = append(out, reconstructPage(p, cfg)...)
	}
	for i := range out {
		out[i].ID = i
	}
	return out
}

func reconstructPage(p Page, cfg Config) []Line {
	chars := dropOverprint(validChars(p.Chars), cfg.OverprintTolerance)
	if len(chars) == 0 {
		return nil
	}

	rows := groupRows(chars, cfg.LineTolerance)
	w, h := pageSize(p, chars)

	var lines []Line
	for _, row := range rows {
		for _, seg := range splitRow(row, cfg.SplitFactor) {
			l, ok := buildLine(seg, cfg.SpaceFactor)
			if !ok {
				continue
			}
			l.Page = p.Index
			l.PageWidth, l.PageHeight = w, h
			lines = append(lines, l)
		}
	}

	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].Box.Y0 != lines[j].Box.Y0 {
			return lines[i].Box.Y0 < lines[j].Box.Y0
		}
		return lines[i].Box.X0 < lines[j].Box.X0
	})
	return dropFragments(lines)
}

func validChars(in []Character) []Character {
	out := make([]Character, 0, len(in))
	for _, c := range in {
		if c.valid() {
			out = append(out, c)
		}
	}
	return out
}

type glyphCell struct {
	text string
	x, y int
}

// dropOverprint removes glyphs drawn a second time at nearly the same origin,
// which is how some producers fake bold text.
func dropOverprint(chars []Character, tol float64) []Character {
	seen := make(map[glyphCell][]Character)
	out := make([]Character, 0, len(chars))
	for _, c := range chars {
		if strings.TrimSpace(c.Text) == "" {
			out = append(out, c)
			continue
		}
		limit := tol * c.Size
		cx, cy := int(math.Round(c.X0)), int(math.Round(c.Y0))
		dup := false
		for dx := -1; dx <= 1 && !dup; dx++ {
			for dy := -1; dy <= 1 && !dup; dy++ {
				for _, k := range seen[glyphCell{c.Text, cx + dx, cy + dy}] {
					if math.Abs(k.X0-c.X0) < limit && math.Abs(k.Y0-c.Y0) < limit {
						dup = true
						break
					}
				}
			}
		}
		if dup {
			continue
		}
		cell := glyphCell{c.Text, cx, cy}
		seen[cell] = append(seen[cell], c)
		out = append(out, c)
	}
	return out
}

type rowBuilder struct {
	anchor float64 // vertical center of the first glyph
	height float64
	chars  []Character
}

// groupRows assigns each glyph to the most recent row whose vertical center is
// within tol times the smaller glyph height, then orders each row left to right.
func groupRows(chars []Character, tol float64) [][]Character {
	bucket := tol * modalHeight(chars)
	if bucket < 0.5 {
		bucket = 0.5
	}

	sorted := make([]Character, len(chars))
	copy(sorted, chars)
	sort.SliceStable(sorted, func(i, j int) bool {
		bi := math.Floor(sorted[i].CenterY() / bucket)
		bj := math.Floor(sorted[j].CenterY() / bucket)
		if bi != bj {
			return bi < bj
		}
		return sorted[i].X0 < sorted[j].X0
	})

	var rows []*rowBuilder
	for _, c := range sorted {
		var target *rowBuilder
		for i := len(rows) - 1; i >= 0; i-- {
			r := rows[i]
			if r.anchor < c.CenterY()-2*math.Max(r.height, c.Height()) {
				break
			}
			eps := tol * math.Min(r.height, c.Height())
			if math.Abs(r.anchor-c.CenterY()) < eps {
				target = r
				break
			}
		}
		if target == nil {
			target = &rowBuilder{anchor: c.CenterY(), height: c.Height()}
			rows = append(rows, target)
		}
		target.chars = append(target.chars, c)
	}

	out := make([][]Character, len(rows))
	for i, r := range rows {
		sort.SliceStable(r.chars, func(a, b int) bool { return r.chars[a].X0 < r.chars[b].X0 })
		out[i] = r.chars
	}
	return out
}

func modalHeight(chars []Character) float64 {
	counts := make(map[float64]int)
	for _, c := range chars {
		counts[math.Round(c.Height()*10)/10]++
	}
	best, bestN := 0.0, 0
	for h, n := range counts {
		if n > bestN || (n == bestN && h < best) {
			best, bestN = h, n
		}
	}
	return best
}

// splitRow breaks a row wherever the horizontal gap is wide enough to separate
// columns or tabbed fragments.
func splitRow(row []Character, factor float64) [][]Character {
	var segs [][]Character
	start := 0
	for i := 1; i < len(row); i++ {
		gap := row[i].X0 - row[i-1].X1
		if gap > factor*math.Max(row[i].Size, row[i-1].Size) {
			segs = append(segs, row[start:i])
			start = i
		}
	}
	return append(segs, row[start:])
}

func buildLine(seg []Character, spaceFactor float64) (Line, bool) {
	var sb strings.Builder
	var box Box
	sizes := make(map[float64]int)
	fonts := make(map[string]int)
	glyphs := 0

	for i, c := range seg {
		if i > 0 {
			prev := seg[i-1]
			gap := c.X0 - prev.X1
			if gap > spaceFactor*math.Max(c.Size, prev.Size) && !endsSpace(prev.Text) && !startsSpace(c.Text) {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(c.Text)

		n := 0
		for _, r := range c.Text {
			if !unicode.IsSpace(r) {
				n++
			}
		}
		if n > 0 {
			// Only visible glyphs shape the line box.
			cb := Box{X0: c.X0, Y0: c.Y0, X1: c.X1, Y1: c.Y1}
			if glyphs == 0 {
				box = cb
			} else {
				box = box.union(cb)
			}
			sizes[math.Round(c.Size*100)/100] += n
			fonts[c.Font] += n
			glyphs += n
		}
	}

	text := undouble(NormalizeText(sb.String()))
	if text == "" || glyphs == 0 {
		return Line{}, false
	}
	return Line{
		Text:  text,
		Box:   box,
		Size:  dominantSize(sizes),
		Font:  dominantFont(fonts),
		Chars: glyphs,
	}, true
}

func endsSpace(s string) bool {
	r := []rune(s)
	return len(r) > 0 && unicode.IsSpace(r[len(r)-1])
}

func startsSpace(s string) bool {
	for _, r := range s {
		return unicode.IsSpace(r)
	}
	return false
}

// dominantSize is the most frequent size; ties go to the larger size.
func dominantSize(m map[float64]int) float64 {
	best, bestN := 0.0, -1
	for s, n := range m {
		if n > bestN || (n == bestN && s > best) {
			best, bestN = s, n
		}
	}
	return best
}

// dominantFont is the most frequent font; ties go to the lexically smaller name.
func dominantFont(m map[string]int) string {
	best, bestN := "", -1
	for f, n := range m {
		if n > bestN || (n == bestN && f < best) {
			best, bestN = f, n
		}
	}
	return best
}

// dropFragments removes a line that sits inside another line's box on the
// same page and whose text is part of that line's text.
func dropFragments(lines []Line) []Line {
	const slack = 1.0
	keep := make([]bool, len(lines))
	for i := range keep {
		keep[i] = true
	}

	// A container's top edge lies within one line height above the fragment,
	// so only a narrow window of lines ordered by top edge needs checking.
	order := make([]int, len(lines))
	maxH := 0.0
	for i, l := range lines {
		order[i] = i
		maxH = math.Max(maxH, l.Box.Y1-l.Box.Y0)
	}
	sort.Slice(order, func(a, b int) bool { return lines[order[a]].Box.Y0 < lines[order[b]].Box.Y0 })

	for i, a := range lines {
		lo := a.Box.Y1 - slack - maxH
		start := sort.Search(len(order), func(n int) bool { return lines[order[n]].Box.Y0 >= lo })
		for _, j := range order[start:] {
			b := lines[j]
			if b.Box.Y0 > a.Box.Y0+slack {
				break
			}
			if i == j || !keep[j] {
				continue
			}
			if !b.Box.contains(a.Box, slack) || !strings.Contains(b.Text, a.Text) {
				continue
			}
			if len(a.Text) < len(b.Text) || !a.Box.contains(b.Box, slack) || i > j {
				keep[i] = false
				break
			}
		}
	}
	out := lines[:0]
	for i, l := range lines {
		if keep[i] {
			out = append(out, l)
		}
	}
	return out
}

// pageSize falls back to the extent of the text, then to US Letter, when the
// decoder reported no media box.
func pageSize(p Page, chars []Character) (float64, float64) {
	w, h := p.Width, p.Height
	if w > 0 && h > 0 {
		return w, h
	}
	maxX, maxY := 0.0, 0.0
	for _, c := range chars {
		maxX = math.Max(maxX, c.X1)
		maxY = math.Max(maxY, c.Y1)
	}
	if w <= 0 {
		w = math.Max(612, maxX)
	}
	if h <= 0 {
		h = math.Max(792, maxY)
	}
	return w, h
}
