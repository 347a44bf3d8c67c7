package outline

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var typographic = strings.NewReplacer(
	"\u2018", "'",
	"\u2019", "'",
	"\u201c", `"`,
	"\u201d", `"`,
	"\u00a0", " ",
	"\u200b", "",
	"\u200c", "",
	"\u200d", "",
	"\ufeff", "",
	"\u00ad", "",
)

// NormalizeText folds compatibility forms (ligatures, full-width digits),
// straightens typographic quotes, collapses whitespace and trims.
// Control runes, which some producers emit for unmapped ligatures, are dropped.
func NormalizeText(s string) string {
	s = norm.NFKC.String(s)
	s = typographic.Replace(s)
	s = strings.Map(dropControl, s)
	return strings.Join(strings.Fields(s), " ")
}

func dropControl(r rune) rune {
	if unicode.IsControl(r) && !unicode.IsSpace(r) {
		return -1
	}
	return r
}

var digitRun = regexp.MustCompile(`\d+`)

// repeatKey is the comparison form used to spot running headers and footers.
func repeatKey(text string) string {
	return digitRun.ReplaceAllString(strings.ToLower(NormalizeText(text)), "#")
}

var pageNumberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d{1,4}$`),
	regexp.MustCompile(`(?i)^[ivxlcdm]{1,7}$`),
	regexp.MustCompile(`(?i)^(page|p\.|pg\.?)\s*\d+(\s*(of|/)\s*\d+)?$`),
	regexp.MustCompile(`(?i)^\d+\s*(of|/)\s*\d+$`),
	regexp.MustCompile(`^[-\x{2013}\x{2014}]\s*\d+\s*[-\x{2013}\x{2014}]$`),
}

// isPageNumber reports whether text is nothing but a page number.
func isPageNumber(text string) bool {
	for _, re := range pageNumberPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// undouble repairs text where every glyph was emitted twice in a row
// ("RReeqquueesstt" -> "Request"). It only fires when every word of four or
// more letters is doubled, so ordinary words with double letters survive.
func undouble(text string) string {
	words := strings.Fields(text)
	checked := 0
	for _, w := range words {
		r := []rune(w)
		if len(r) < 4 {
			continue
		}
		if !isDoubled(r) {
			return text
		}
		checked++
	}
	if checked == 0 {
		return text
	}
	out := make([]string, len(words))
	for i, w := range words {
		r := []rune(w)
		if len(r) >= 2 && isDoubled(r) {
			half := make([]rune, 0, len(r)/2)
			for j := 0; j < len(r); j += 2 {
				half = append(half, r[j])
			}
			out[i] = string(half)
		} else {
			out[i] = w
		}
	}
	return strings.Join(out, " ")
}

func isDoubled(r []rune) bool {
	if len(r)%2 != 0 {
		return false
	}
	for i := 0; i < len(r); i += 2 {
		if r[i] != r[i+1] {
			return false
		}
	}
	return true
}

// dedupePhrase collapses a phrase of three or more words repeated back to
// back. Shorter repeats ("Walla Walla", "New York New York") are real names.
func dedupePhrase(text string) string {
	words := strings.Fields(text)
	n := len(words)
	if n <= 4 || n%2 != 0 {
		return text
	}
	half := n / 2
	for i := 0; i < half; i++ {
		if !strings.EqualFold(words[i], words[half+i]) {
			return text
		}
	}
	return strings.Join(words[:half], " ")
}
