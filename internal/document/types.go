package document

import "fmt"

// Shape is a positioned element on a slide. What a shape can provide is
// expressed through the optional capability interfaces below rather than a
// fixed type hierarchy, so readers for different formats can share one walker.
type Shape interface {
	ShapeName() string
}

// ImageSource is implemented by shapes that carry an embedded image payload.
type ImageSource interface {
	Shape
	ImageData() []byte
}

// TextSource is implemented by shapes that carry text.
type TextSource interface {
	Shape
	ShapeText() string
}

// Container is implemented by group shapes.
type Container interface {
	Shape
	Children() []Shape
}

// Picture is a shape whose content is an embedded image
type Picture struct {
	Name string
	Data []byte
}

func (p *Picture) ShapeName() string { return p.Name }
func (p *Picture) ImageData() []byte { return p.Data }

// TextShape is a text box, placeholder or autoshape with a text body.
// Paragraphs are joined with "\n".
type TextShape struct {
	Name string
	Text string
}

func (t *TextShape) ShapeName() string { return t.Name }
func (t *TextShape) ShapeText() string { return t.Text }

// Group contains other shapes in z-order
type Group struct {
	Name   string
	Shapes []Shape
}

func (g *Group) ShapeName() string  { return g.Name }
func (g *Group) Children() []Shape { return g.Shapes }

// Other is a shape that contributes neither image nor text (connectors,
// tables, charts, unresolved pictures).
type Other struct {
	Name string
}

func (o *Other) ShapeName() string { return o.Name }

// FillKind identifies the kind of a slide background fill
type FillKind int

const (
	FillNone FillKind = iota
	FillSolid
	FillGradient
	FillPattern
	FillImage
)

// Background is the slide-level fill
type Background struct {
	Kind  FillKind
	Image []byte // set only for FillImage
}

// Slide is one page of a deck. Number is 1-based in presentation order.
type Slide struct {
	Number     int
	Shapes     []Shape
	Background Background
}

// SlideScanner yields slides in presentation order and returns io.EOF when
// the deck is exhausted.
type SlideScanner interface {
	Next() (*Slide, error)
}

// Metadata holds document properties that are not part of any slide
type Metadata struct {
	Title string
}

// SlideError is returned by a SlideScanner for a single slide that could
// not be parsed. Scanning may continue after it.
type SlideError struct {
	Number int
	Err    error
}

func (e *SlideError) Error() string {
	return fmt.Sprintf("slide %d: %v", e.Number, e.Err)
}

func (e *SlideError) Unwrap() error { return e.Err }
