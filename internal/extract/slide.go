package extract

import (
	"strings"

	"github.com/hanpama/slidequiz/internal/document"
	"github.com/hanpama/slidequiz/internal/quiz"
)

// Reason explains why a slide produced no item.
type Reason int

const (
	Kept Reason = iota
	NoImage
	NoText
)

func (r Reason) String() string {
	switch r {
	case Kept:
		return "kept"
	case NoImage:
		return "no image"
	case NoText:
		return "no text"
	}
	return "unknown"
}

// Slide extracts at most one quiz item from a slide. The image is the first
// decodable shape image in z-order, falling back to an image background
// fill. Text is the trimmed text of every shape that has any, in traversal
// order. A slide lacking either is skipped.
func Slide(s *document.Slide) (quiz.Item, Reason) {
	img, format := resolveImage(s)
	if img == nil {
		return quiz.Item{}, NoImage
	}
	lines := collectText(s)
	if len(lines) == 0 {
		return quiz.Item{}, NoText
	}
	item, err := quiz.NewItem(img, format, lines, s.Number)
	if err != nil {
		return quiz.Item{}, NoText
	}
	return item, Kept
}

func resolveImage(s *document.Slide) ([]byte, string) {
	for shape := range document.WalkAll(s.Shapes) {
		src, ok := shape.(document.ImageSource)
		if !ok {
			continue
		}
		data := src.ImageData()
		if format, ok := probeImage(data); ok {
			return data, format
		}
	}
	if s.Background.Kind == document.FillImage {
		if format, ok := probeImage(s.Background.Image); ok {
			return s.Background.Image, format
		}
	}
	return nil, ""
}

func collectText(s *document.Slide) []string {
	var lines []string
	for shape := range document.WalkAll(s.Shapes) {
		src, ok := shape.(document.TextSource)
		if !ok {
			continue
		}
		if text := strings.TrimSpace(src.ShapeText()); text != "" {
			lines = append(lines, text)
		}
	}
	return lines
}
