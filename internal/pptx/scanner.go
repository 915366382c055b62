package pptx

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/hanpama/slidequiz/internal/document"
)

// SlideScanner parses slide parts one at a time in presentation order
type SlideScanner struct {
	reader *Reader
	index  int
}

// Next returns the next slide. A slide whose markup cannot be parsed is
// reported as a *document.SlideError and the scanner moves on.
func (s *SlideScanner) Next() (*document.Slide, error) {
	if s.index >= len(s.reader.slides) {
		return nil, io.EOF
	}
	part := s.reader.slides[s.index]
	s.index++

	slide, err := s.reader.parseSlide(part, s.index)
	if err != nil {
		return nil, &document.SlideError{Number: s.index, Err: err}
	}
	return slide, nil
}

// slideParser holds the per-slide state needed to resolve image references
type slideParser struct {
	reader  *Reader
	part    string
	dec     *xml.Decoder
	targets map[string]string // relationship id -> part name
}

func (r *Reader) parseSlide(part string, number int) (*document.Slide, error) {
	rels, err := r.relationships(part)
	if err != nil {
		return nil, fmt.Errorf("failed to read relationships: %w", err)
	}

	rc, err := r.open(part)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	p := &slideParser{
		reader:  r,
		part:    part,
		dec:     newDecoder(rc),
		targets: make(map[string]string, len(rels)),
	}
	for _, rel := range rels {
		p.targets[rel.ID] = resolveTarget(part, rel)
	}

	slide := &document.Slide{Number: number}
	for {
		token, err := p.dec.Token()
		if err == io.EOF {
			return slide, nil
		}
		if err != nil {
			return nil, fmt.Errorf("XML parse error: %w", err)
		}

		elem, ok := token.(xml.StartElement)
		if !ok {
			continue
		}
		switch elem.Name.Local {
		case "bg":
			bg, err := p.parseBackground(elem)
			if err != nil {
				return nil, err
			}
			slide.Background = bg
		case "spTree":
			_, shapes, err := p.parseChildren()
			if err != nil {
				return nil, err
			}
			slide.Shapes = shapes
		}
	}
}

// parseChildren consumes the children of the current group element up to its
// end tag. It returns the group's own name (from its non-visual properties)
// and the child shapes in document order, which is z-order.
func (p *slideParser) parseChildren() (string, []document.Shape, error) {
	var name string
	var shapes []document.Shape
	for {
		token, err := p.dec.Token()
		if err != nil {
			return "", nil, fmt.Errorf("XML parse error: %w", err)
		}

		switch elem := token.(type) {
		case xml.EndElement:
			return name, shapes, nil
		case xml.StartElement:
			switch elem.Name.Local {
			case "nvGrpSpPr":
				var nv nonVisualElement
				if err := p.dec.DecodeElement(&nv, &elem); err != nil {
					return "", nil, fmt.Errorf("failed to decode group properties: %w", err)
				}
				name = nv.CNvPr.Name
			case "AlternateContent":
				alt, err := p.parseAlternateContent()
				if err != nil {
					return "", nil, err
				}
				shapes = append(shapes, alt...)
			default:
				shape, err := p.parseShape(elem)
				if err != nil {
					return "", nil, err
				}
				if shape != nil {
					shapes = append(shapes, shape)
				}
			}
		}
	}
}

// parseShape decodes one shape element. Elements that are not shapes
// (group properties, extension lists) yield nil.
func (p *slideParser) parseShape(elem xml.StartElement) (document.Shape, error) {
	switch elem.Name.Local {
	case "sp":
		var sp shapeElement
		if err := p.dec.DecodeElement(&sp, &elem); err != nil {
			return nil, fmt.Errorf("failed to decode shape: %w", err)
		}
		if sp.TxBody == nil {
			return &document.Other{Name: sp.NvSpPr.CNvPr.Name}, nil
		}
		return &document.TextShape{Name: sp.NvSpPr.CNvPr.Name, Text: sp.TxBody.text()}, nil

	case "pic":
		var pic pictureElement
		if err := p.dec.DecodeElement(&pic, &elem); err != nil {
			return nil, fmt.Errorf("failed to decode picture: %w", err)
		}
		name := pic.NvPicPr.CNvPr.Name
		data := p.media(pic.BlipFill.Blip.Embed)
		if data == nil {
			return &document.Other{Name: name}, nil
		}
		return &document.Picture{Name: name, Data: data}, nil

	case "grpSp":
		name, children, err := p.parseChildren()
		if err != nil {
			return nil, err
		}
		return &document.Group{Name: name, Shapes: children}, nil

	case "graphicFrame", "cxnSp", "contentPart":
		var other otherElement
		if err := p.dec.DecodeElement(&other, &elem); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", elem.Name.Local, err)
		}
		return &document.Other{Name: other.name()}, nil
	}

	if err := p.dec.Skip(); err != nil {
		return nil, fmt.Errorf("XML parse error: %w", err)
	}
	return nil, nil
}

// parseAlternateContent picks the Fallback branch when present, since it
// holds the classic markup every consumer understands, and the first Choice
// otherwise.
func (p *slideParser) parseAlternateContent() ([]document.Shape, error) {
	var choice, fallback []document.Shape
	var seenChoice, seenFallback bool
	for {
		token, err := p.dec.Token()
		if err != nil {
			return nil, fmt.Errorf("XML parse error: %w", err)
		}

		switch elem := token.(type) {
		case xml.EndElement:
			if seenFallback {
				return fallback, nil
			}
			return choice, nil
		case xml.StartElement:
			switch {
			case elem.Name.Local == "Choice" && !seenChoice:
				seenChoice = true
				_, choice, err = p.parseChildren()
			case elem.Name.Local == "Fallback":
				seenFallback = true
				_, fallback, err = p.parseChildren()
			default:
				err = p.dec.Skip()
			}
			if err != nil {
				return nil, err
			}
		}
	}
}

func (p *slideParser) parseBackground(elem xml.StartElement) (document.Background, error) {
	var bg backgroundElement
	if err := p.dec.DecodeElement(&bg, &elem); err != nil {
		return document.Background{}, fmt.Errorf("failed to decode background: %w", err)
	}
	if bg.BgPr == nil {
		return document.Background{Kind: document.FillNone}, nil
	}
	switch {
	case bg.BgPr.BlipFill != nil:
		data := p.media(bg.BgPr.BlipFill.Blip.Embed)
		if data == nil {
			return document.Background{Kind: document.FillNone}, nil
		}
		return document.Background{Kind: document.FillImage, Image: data}, nil
	case bg.BgPr.SolidFill != nil:
		return document.Background{Kind: document.FillSolid}, nil
	case bg.BgPr.GradFill != nil:
		return document.Background{Kind: document.FillGradient}, nil
	case bg.BgPr.PattFill != nil:
		return document.Background{Kind: document.FillPattern}, nil
	}
	return document.Background{Kind: document.FillNone}, nil
}

// media returns the bytes of an embedded image part, or nil when the
// reference is missing, external or unreadable.
func (p *slideParser) media(relID string) []byte {
	if relID == "" {
		return nil
	}
	target := p.targets[relID]
	if target == "" {
		return nil
	}
	data, err := p.reader.readPart(target)
	if err != nil || len(data) == 0 {
		return nil
	}
	return data
}

// XML element structures. Namespaces are matched by local name only so that
// both transitional and strict markup decode.

type cNvPrElement struct {
	Name  string `xml:"name,attr"`
	Descr string `xml:"descr,attr"`
}

type nonVisualElement struct {
	CNvPr cNvPrElement `xml:"cNvPr"`
}

type shapeElement struct {
	NvSpPr nonVisualElement `xml:"nvSpPr"`
	TxBody *textBody        `xml:"txBody"`
}

type textBody struct {
	Paragraphs []textParagraph `xml:"p"`
}

func (b *textBody) text() string {
	parts := make([]string, 0, len(b.Paragraphs))
	for _, para := range b.Paragraphs {
		parts = append(parts, para.text())
	}
	return strings.Join(parts, "\n")
}

type textParagraph struct {
	Items []textItem `xml:",any"`
}

func (p *textParagraph) text() string {
	var sb strings.Builder
	for _, it := range p.Items {
		switch it.XMLName.Local {
		case "r", "fld":
			sb.WriteString(it.Text)
		case "br":
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

type textItem struct {
	XMLName xml.Name
	Text    string `xml:"t"`
}

type pictureElement struct {
	NvPicPr  nonVisualElement `xml:"nvPicPr"`
	BlipFill blipFillElement  `xml:"blipFill"`
}

type blipFillElement struct {
	Blip struct {
		Embed string `xml:"embed,attr"`
	} `xml:"blip"`
}

type otherElement struct {
	NvGraphicFramePr nonVisualElement `xml:"nvGraphicFramePr"`
	NvCxnSpPr        nonVisualElement `xml:"nvCxnSpPr"`
	NvContentPartPr  nonVisualElement `xml:"nvContentPartPr"`
}

func (o *otherElement) name() string {
	for _, n := range []string{o.NvGraphicFramePr.CNvPr.Name, o.NvCxnSpPr.CNvPr.Name, o.NvContentPartPr.CNvPr.Name} {
		if n != "" {
			return n
		}
	}
	return ""
}

type backgroundElement struct {
	BgPr *struct {
		NoFill    *struct{}        `xml:"noFill"`
		SolidFill *struct{}        `xml:"solidFill"`
		GradFill  *struct{}        `xml:"gradFill"`
		PattFill  *struct{}        `xml:"pattFill"`
		BlipFill  *blipFillElement `xml:"blipFill"`
	} `xml:"bgPr"`
}
