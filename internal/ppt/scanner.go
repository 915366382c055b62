package ppt

import (
	"fmt"
	"io"
	"strings"

	"github.com/hanpama/slidequiz/internal/document"
)

// FSp flags
const (
	spGroup      = 0x001
	spDeleted    = 0x008
	spBackground = 0x400
)

// Office Art property ids
const (
	propPib      = 0x0104
	propFillType = 0x0180
	propFillBlip = 0x0186
	propWzName   = 0x0380
)

// fill types
const (
	fillSolid   = 0
	fillPattern = 1
	fillTexture = 2
	fillPicture = 3
	fillShade   = 4
	fillShadeTo = 8
)

// SlideScanner walks the slides of a presentation in order
type SlideScanner struct {
	reader *Reader
	index  int
}

// Next returns the next slide. A slide whose drawing cannot be decoded is
// reported as a *document.SlideError and the scanner moves on.
func (s *SlideScanner) Next() (*document.Slide, error) {
	if s.index >= len(s.reader.slides) {
		return nil, io.EOF
	}
	entry := s.reader.slides[s.index]
	s.index++

	slide, err := s.reader.parseSlide(entry, s.index)
	if err != nil {
		return nil, &document.SlideError{Number: s.index, Err: err}
	}
	return slide, nil
}

// shapeBuilder converts one slide's drawing into document shapes
type shapeBuilder struct {
	reader *Reader
	texts  []outlineText
	used   []bool
}

func (r *Reader) parseSlide(entry slideEntry, number int) (*document.Slide, error) {
	rec, err := r.persistRecord(entry.persistRef)
	if err != nil {
		return nil, err
	}
	if rec.Type != rtSlide {
		return nil, fmt.Errorf("unexpected slide record type 0x%04x", rec.Type)
	}

	b := &shapeBuilder{
		reader: r,
		texts:  entry.texts,
		used:   make([]bool, len(entry.texts)),
	}
	slide := &document.Slide{Number: number}

	if drawing, ok := rec.child(rtPPDrawing); ok {
		if dg, ok := drawing.child(rtDgContainer); ok {
			children, err := dg.children()
			if err != nil {
				return nil, fmt.Errorf("failed to read drawing: %w", err)
			}
			for _, c := range children {
				switch c.Type {
				case rtSpgrContainer:
					_, shapes, err := b.group(c)
					if err != nil {
						return nil, err
					}
					slide.Shapes = shapes
				case rtSpContainer:
					sp := b.properties(c)
					if sp.flags&spBackground != 0 {
						slide.Background = b.background(sp)
					}
				}
			}
		}
	}

	// outline text no placeholder points at
	for i, t := range b.texts {
		if !b.used[i] && strings.TrimSpace(t.text) != "" {
			slide.Shapes = append(slide.Shapes, &document.TextShape{Text: t.text})
		}
	}
	return slide, nil
}

// group converts an SpgrContainer. Its first SpContainer describes the group
// itself and supplies the name.
func (b *shapeBuilder) group(rec record) (string, []document.Shape, error) {
	children, err := rec.children()
	if err != nil {
		return "", nil, fmt.Errorf("failed to read shape group: %w", err)
	}

	var name string
	var shapes []document.Shape
	for _, c := range children {
		switch c.Type {
		case rtSpContainer:
			sp := b.properties(c)
			switch {
			case sp.flags&spGroup != 0:
				name = sp.name
			case sp.flags&(spDeleted|spBackground) != 0:
			default:
				shapes = append(shapes, b.shape(sp))
			}
		case rtSpgrContainer:
			childName, childShapes, err := b.group(c)
			if err != nil {
				return "", nil, err
			}
			shapes = append(shapes, &document.Group{Name: childName, Shapes: childShapes})
		}
	}
	return name, shapes, nil
}

func (b *shapeBuilder) shape(sp shapeProps) document.Shape {
	if sp.pib != 0 {
		if data := b.reader.blip(sp.pib); data != nil {
			return &document.Picture{Name: sp.name, Data: data}
		}
	}
	if sp.hasText {
		return &document.TextShape{Name: sp.name, Text: sp.text}
	}
	return &document.Other{Name: sp.name}
}

func (b *shapeBuilder) background(sp shapeProps) document.Background {
	switch {
	case sp.fillType == fillPicture || sp.fillType == fillTexture:
		if data := b.reader.blip(sp.fillBlip); data != nil {
			return document.Background{Kind: document.FillImage, Image: data}
		}
		return document.Background{Kind: document.FillNone}
	case sp.fillType == fillSolid:
		return document.Background{Kind: document.FillSolid}
	case sp.fillType == fillPattern:
		return document.Background{Kind: document.FillPattern}
	case sp.fillType >= fillShade && sp.fillType <= fillShadeTo:
		return document.Background{Kind: document.FillGradient}
	}
	return document.Background{Kind: document.FillNone}
}

// shapeProps collects what the extractor needs from an SpContainer
type shapeProps struct {
	flags    uint32
	name     string
	pib      uint32
	fillType uint32
	fillBlip uint32
	text     string
	hasText  bool
}

func (b *shapeBuilder) properties(rec record) shapeProps {
	var sp shapeProps
	children, _ := rec.children()
	for _, c := range children {
		switch c.Type {
		case rtFSp:
			sp.flags = u32(c.Data, 4)
		case rtFOPT, rtTertiaryFOPT:
			readProperties(c, &sp)
		case rtClientTextbox:
			sp.text, sp.hasText = b.textbox(c)
		}
	}
	return sp
}

// textbox returns the text of a ClientTextbox, either stored inline or
// referenced from the slide's outline text.
func (b *shapeBuilder) textbox(rec record) (string, bool) {
	children, _ := rec.children()
	for _, c := range children {
		if c.Type != rtOutlineTextRefAtom {
			continue
		}
		idx := int(u32(c.Data, 0))
		if idx < 0 || idx >= len(b.texts) {
			return "", false
		}
		b.used[idx] = true
		return b.texts[idx].text, true
	}

	runs := readTextRun(children)
	if len(runs) == 0 {
		return "", false
	}
	parts := make([]string, len(runs))
	for i, run := range runs {
		parts[i] = run.text
	}
	return strings.Join(parts, "\n"), true
}

// readProperties decodes an OfficeArtFOPT. The property count is the record
// instance and complex values follow the fixed table in order.
func readProperties(rec record, sp *shapeProps) {
	n := int(rec.Instance)
	complexOff := 6 * n
	for i := 0; i < n; i++ {
		opid := u16(rec.Data, 6*i)
		op := u32(rec.Data, 6*i+2)

		var complexData []byte
		if opid&0x8000 != 0 {
			end := complexOff + int(op)
			if end >= complexOff && end <= len(rec.Data) {
				complexData = rec.Data[complexOff:end]
			}
			complexOff = end
		}

		switch opid & 0x3FFF {
		case propPib:
			sp.pib = op
		case propFillType:
			sp.fillType = op
		case propFillBlip:
			sp.fillBlip = op
		case propWzName:
			sp.name = strings.TrimRight(decodeUTF16(complexData), "\x00")
		}
	}
}
