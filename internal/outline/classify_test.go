package outline

import (
	"context"
	"errors"
	"testing"
)

type fakeSemantic struct {
	affinity float64
	err      error
	calls    []string
}

func (f *fakeSemantic) Affinity(_ context.Context, text string) (float64, error) {
	f.calls = append(f.calls, text)
	return f.affinity, f.err
}

func scoringFixture() (classifier, lineContext) {
	cfg := DefaultConfig()
	profile := BuildProfile([]Line{
		{Size: 16, Chars: 50, Font: "Helvetica"},
		{Size: 10, Chars: 1000, Font: "Helvetica"},
	}, cfg)
	return classifier{cfg: cfg, profile: profile, bodyLeft: 72}, lineContext{bodyLeft: 72, gapAbove: 20, gapBelow: 20}
}

func shortLine(text string, size float64, font string) Line {
	return Line{Text: text, Size: size, Font: font, Box: Box{X0: 72, Y0: 100, X1: 180, Y1: 100 + size}, PageWidth: pageW, PageHeight: pageH}
}

func TestScore_FontHeading(t *testing.T) {
	c, lc := scoringFixture()
	cand, ok := c.score(context.Background(), shortLine("Overview", 16, "Helvetica"), lc)
	if !ok {
		t.Fatal("expected 16pt line to be accepted")
	}
	if cand.Level != 1 {
		t.Errorf("expected level 1, got %d", cand.Level)
	}
	if cand.Score != cand.Signals.Total() {
		t.Errorf("score %v does not match signal total %v", cand.Score, cand.Signals.Total())
	}
}

func TestScore_NumberedBodyLineUsesPatternDepth(t *testing.T) {
	c, _ := scoringFixture()
	lc := lineContext{bodyLeft: 72, gapAbove: 4, gapBelow: 4}
	cand, ok := c.score(context.Background(), shortLine("1.2.3 Configuration Options", 10, "Helvetica"), lc)
	if !ok {
		t.Fatal("expected numbered body-size line to be accepted")
	}
	if cand.Level != 3 {
		t.Errorf("expected level 3, got %d", cand.Level)
	}
}

func TestScore_FontGovernsOverPattern(t *testing.T) {
	c, lc := scoringFixture()
	cand, ok := c.score(context.Background(), shortLine("2.4 Results", 16, "Helvetica"), lc)
	if !ok || cand.Level != 1 {
		t.Errorf("expected font level 1 to win over pattern depth, got %d/%v", cand.Level, ok)
	}
}

func TestScore_RejectsProseAtAnySize(t *testing.T) {
	c, lc := scoringFixture()
	line := shortLine("This sentence is set large but reads exactly like body prose.", 16, "Helvetica")
	if _, ok := c.score(context.Background(), line, lc); ok {
		t.Error("expected prose to be rejected regardless of font size")
	}
}

func TestScore_RejectsContentsEntry(t *testing.T) {
	c, lc := scoringFixture()
	if _, ok := c.score(context.Background(), shortLine("2 Transitioning the PDF ........ 5", 16, "Helvetica"), lc); ok {
		t.Error("expected a dot-leader contents entry to be rejected")
	}
	if _, ok := c.score(context.Background(), shortLine("Chapter 3. Results", 16, "Helvetica"), lc); !ok {
		t.Error("expected Chapter 3. Results to be accepted")
	}
}

func TestScore_RejectsPlainBodyText(t *testing.T) {
	c, lc := scoringFixture()
	if _, ok := c.score(context.Background(), shortLine("Key findings", 10, "Helvetica"), lc); ok {
		t.Error("expected plain body-size line to be rejected")
	}
}

func TestScore_SemanticTipsBorderline(t *testing.T) {
	c, lc := scoringFixture()
	line := shortLine("KEY FINDINGS", 10, "Helvetica")

	if _, ok := c.score(context.Background(), line, lc); ok {
		t.Fatal("expected borderline line to be rejected without a scorer")
	}

	sem := &fakeSemantic{affinity: 1}
	c.semantic = sem
	cand, ok := c.score(context.Background(), line, lc)
	if !ok {
		t.Fatal("expected positive affinity to accept the borderline line")
	}
	if cand.Level != 2 {
		t.Errorf("expected level below the deepest font level (2), got %d", cand.Level)
	}
	if len(sem.calls) != 1 {
		t.Errorf("expected one scorer call, got %d", len(sem.calls))
	}

	c.semantic = &fakeSemantic{affinity: -1}
	if _, ok := c.score(context.Background(), line, lc); ok {
		t.Error("expected negative affinity to keep the line rejected")
	}

	c.semantic = &fakeSemantic{err: errors.New("unavailable")}
	if _, ok := c.score(context.Background(), line, lc); ok {
		t.Error("expected scorer errors to be ignored")
	}
}

func TestScore_SemanticSkippedFarFromThreshold(t *testing.T) {
	c, lc := scoringFixture()
	sem := &fakeSemantic{affinity: -1}
	c.semantic = sem
	if _, ok := c.score(context.Background(), shortLine("Overview", 16, "Helvetica"), lc); !ok {
		t.Fatal("expected clear heading to be accepted")
	}
	if len(sem.calls) != 0 {
		t.Errorf("expected no scorer calls for a clear heading, got %v", sem.calls)
	}
}

func TestScore_DegradedProfile(t *testing.T) {
	cfg := DefaultConfig()
	c := classifier{cfg: cfg, profile: BuildProfile([]Line{{Size: 10, Chars: 500}}, cfg), bodyLeft: 72}
	lc := lineContext{bodyLeft: 72, gapAbove: 20, gapBelow: 20}

	cand, ok := c.score(context.Background(), shortLine("EXECUTIVE SUMMARY", 10, ""), lc)
	if !ok || cand.Level != 1 {
		t.Errorf("expected all-caps line to be H1 on a degraded profile, got %d/%v", cand.Level, ok)
	}
	if _, ok := c.score(context.Background(), shortLine("Regards", 10, ""), lc); ok {
		t.Error("expected plain short line to be rejected on a degraded profile")
	}
}

func TestClassify_SkipsIneligible(t *testing.T) {
	cfg := DefaultConfig()
	lines := []Line{
		shortLine("Overview", 16, "Helvetica"),
		shortLine("Running Header", 16, "Helvetica"),
	}
	lines[1].ID = 1
	lines[1].Box.Y0, lines[1].Box.Y1 = 300, 316
	profile := BuildProfile(append(lines, Line{Size: 10, Chars: 900}), cfg)

	cands := Classify(context.Background(), lines, func(l Line) bool { return l.ID != 1 }, profile, cfg, nil)
	if len(cands) != 1 || cands[0].Line.Text != "Overview" {
		t.Errorf("expected only Overview, got %+v", cands)
	}
}
