// Package outline infers a document's title and heading hierarchy from
// positioned, font-tagged characters.
package outline

import (
	"errors"
	"fmt"
	"math"
)

// ErrEmptyDocument means no page produced any text.
var ErrEmptyDocument = errors.New("document has no extractable text")

// DecodeError records a page the decoder could not read. The page is skipped.
type DecodeError struct {
	Page int // 0-based
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode page %d: %v", e.Page+1, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Character is one decoded glyph. Coordinates are in points with the origin
// at the top-left corner of the page; Y grows downward.
type Character struct {
	Text string
	Page int
	X0   float64
	Y0   float64
	X1   float64
	Y1   float64
	Font string
	Size float64
}

func (c Character) Width() float64   { return c.X1 - c.X0 }
func (c Character) Height() float64  { return c.Y1 - c.Y0 }
func (c Character) CenterY() float64 { return (c.Y0 + c.Y1) / 2 }

func (c Character) valid() bool {
	for _, v := range []float64{c.X0, c.Y0, c.X1, c.Y1, c.Size} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return c.Text != "" && c.Width() > 0 && c.Height() > 0 && c.Size > 0
}

// Page is the decoder's output for one physical page.
type Page struct {
	Index  int // 0-based
	Width  float64
	Height float64
	Chars  []Character
	Err    error // non-nil when the page could not be decoded
}

// Box is an axis-aligned rectangle in page coordinates.
type Box struct {
	X0, Y0, X1, Y1 float64
}

func (b Box) Width() float64 { return b.X1 - b.X0 }

func (b Box) union(o Box) Box {
	return Box{
		X0: math.Min(b.X0, o.X0),
		Y0: math.Min(b.Y0, o.Y0),
		X1: math.Max(b.X1, o.X1),
		Y1: math.Max(b.Y1, o.Y1),
	}
}

// contains reports whether o lies inside b, allowing slack points on each edge.
func (b Box) contains(o Box, slack float64) bool {
	return o.X0 >= b.X0-slack && o.Y0 >= b.Y0-slack && o.X1 <= b.X1+slack && o.Y1 <= b.Y1+slack
}

// Line is a run of characters read as one unit of text.
type Line struct {
	ID         int // document-wide, in reading order
	Page       int // 0-based
	Text       string
	Box        Box
	Size       float64 // dominant font size
	Font       string  // dominant font name
	Chars      int     // non-space glyphs
	PageWidth  float64
	PageHeight float64
}

func (l Line) CenterY() float64 { return (l.Box.Y0 + l.Box.Y1) / 2 }
