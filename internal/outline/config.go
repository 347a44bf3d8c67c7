package outline

// Config holds the tunable policy of the analyzer. Distances are fractions of
// the relevant font size unless noted; scores are additive weights.
type Config struct {
	// Line reconstruction.
	LineTolerance      float64 `yaml:"line_tolerance"`      // of the smaller glyph height
	SpaceFactor        float64 `yaml:"space_factor"`        // gap that inserts a space
	SplitFactor        float64 `yaml:"split_factor"`        // gap that starts a new line
	OverprintTolerance float64 `yaml:"overprint_tolerance"` // duplicate glyph offset

	// Font profile.
	SizeTolerance float64 `yaml:"size_tolerance"` // points
	MaxLevels     int     `yaml:"max_levels"`     // 0 = unbounded

	// Repetition filter.
	MarginRatio    float64 `yaml:"margin_ratio"` // of page height
	RepeatFraction float64 `yaml:"repeat_fraction"`
	MinRepeatPages int     `yaml:"min_repeat_pages"`

	// Classifier weights.
	FontTopScore     float64 `yaml:"font_top_score"`
	FontLevelStep    float64 `yaml:"font_level_step"`
	FontFloorScore   float64 `yaml:"font_floor_score"`
	BodyPenalty      float64 `yaml:"body_penalty"`
	BelowBodyPenalty float64 `yaml:"below_body_penalty"`
	BoldBonus        float64 `yaml:"bold_bonus"`
	NumberedBonus    float64 `yaml:"numbered_bonus"`
	AllCapsBonus     float64 `yaml:"all_caps_bonus"`
	LeftMarginBonus  float64 `yaml:"left_margin_bonus"`
	IndentPenalty    float64 `yaml:"indent_penalty"`
	IsolationBonus   float64 `yaml:"isolation_bonus"`
	LengthBonus      float64 `yaml:"length_bonus"`
	LengthPenalty    float64 `yaml:"length_penalty"`
	SemanticWeight   float64 `yaml:"semantic_weight"`
	SemanticBand     float64 `yaml:"semantic_band"`
	MinScore         float64 `yaml:"min_score"`

	// Classifier shape limits.
	IndentTolerance float64 `yaml:"indent_tolerance"` // points
	ShortLineRatio  float64 `yaml:"short_line_ratio"` // of page width
	IsolationFactor float64 `yaml:"isolation_factor"`
	MaxHeadingChars int     `yaml:"max_heading_chars"`
	MaxHeadingWords int     `yaml:"max_heading_words"`
	ProseWords      int     `yaml:"prose_words"`
	MaxPatternDepth int     `yaml:"max_pattern_depth"`

	// Title selection.
	TitleGapFactor  float64 `yaml:"title_gap_factor"`
	TitleSecondPage bool    `yaml:"title_second_page"`
}

// DefaultConfig returns the standard policy.
func DefaultConfig() Config {
	return Config{
		LineTolerance:      0.5,
		SpaceFactor:        0.25,
		SplitFactor:        3.0,
		OverprintTolerance: 0.15,

		SizeTolerance: 0.05,
		MaxLevels:     6,

		MarginRatio:    0.12,
		RepeatFraction: 0.5,
		MinRepeatPages: 2,

		FontTopScore:     3.0,
		FontLevelStep:    0.25,
		FontFloorScore:   2.0,
		BodyPenalty:      -1.0,
		BelowBodyPenalty: -1.5,
		BoldBonus:        0.75,
		NumberedBonus:    2.5,
		AllCapsBonus:     1.0,
		LeftMarginBonus:  0.5,
		IndentPenalty:    -0.5,
		IsolationBonus:   0.5,
		LengthBonus:      0.5,
		LengthPenalty:    -1.5,
		SemanticWeight:   0.5,
		SemanticBand:     0.75,
		MinScore:         2.0,

		IndentTolerance: 12,
		ShortLineRatio:  0.7,
		IsolationFactor: 0.8,
		MaxHeadingChars: 150,
		MaxHeadingWords: 20,
		ProseWords:      8,
		MaxPatternDepth: 6,

		TitleGapFactor:  1.0,
		TitleSecondPage: true,
	}
}

// withDefaults fills fields that must be positive. A zero Config is the
// default policy; otherwise score weights are taken as given, except that a
// non-positive MinScore would accept every line.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c == (Config{}) {
		return d
	}
	if c.MinScore <= 0 {
		c.MinScore = d.MinScore
	}
	if c.LineTolerance <= 0 {
		c.LineTolerance = d.LineTolerance
	}
	if c.SpaceFactor <= 0 {
		c.SpaceFactor = d.SpaceFactor
	}
	if c.SplitFactor <= c.SpaceFactor {
		c.SplitFactor = d.SplitFactor
	}
	if c.OverprintTolerance <= 0 {
		c.OverprintTolerance = d.OverprintTolerance
	}
	if c.SizeTolerance <= 0 {
		c.SizeTolerance = d.SizeTolerance
	}
	if c.MaxLevels < 0 {
		c.MaxLevels = 0
	}
	if c.MarginRatio <= 0 || c.MarginRatio >= 0.5 {
		c.MarginRatio = d.MarginRatio
	}
	if c.RepeatFraction <= 0 || c.RepeatFraction >= 1 {
		c.RepeatFraction = d.RepeatFraction
	}
	if c.MinRepeatPages < 2 {
		c.MinRepeatPages = d.MinRepeatPages
	}
	if c.IndentTolerance <= 0 {
		c.IndentTolerance = d.IndentTolerance
	}
	if c.ShortLineRatio <= 0 {
		c.ShortLineRatio = d.ShortLineRatio
	}
	if c.IsolationFactor <= 0 {
		c.IsolationFactor = d.IsolationFactor
	}
	if c.MaxHeadingChars <= 0 {
		c.MaxHeadingChars = d.MaxHeadingChars
	}
	if c.MaxHeadingWords <= 0 {
		c.MaxHeadingWords = d.MaxHeadingWords
	}
	if c.ProseWords <= 0 {
		c.ProseWords = d.ProseWords
	}
	if c.MaxPatternDepth <= 0 {
		c.MaxPatternDepth = d.MaxPatternDepth
	}
	if c.TitleGapFactor <= 0 {
		c.TitleGapFactor = d.TitleGapFactor
	}
	return c
}
