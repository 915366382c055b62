package quiz

import (
	"errors"
	"strings"
)

// Item is one extracted (image, text lines) pair. Items are immutable once
// built; the image payload is shared with callers and must not be modified.
type Item struct {
	image  []byte
	format string
	lines  []string
	slide  int
}

// NewItem builds an Item. lines must contain at least one non-empty string
// and image must be present.
func NewItem(image []byte, format string, lines []string, slide int) (Item, error) {
	if len(image) == 0 {
		return Item{}, errors.New("item has no image")
	}
	kept := make([]string, 0, len(lines))
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			kept = append(kept, l)
		}
	}
	if len(kept) == 0 {
		return Item{}, errors.New("item has no text")
	}
	return Item{image: image, format: format, lines: kept, slide: slide}, nil
}

// Image returns the image payload.
func (it Item) Image() []byte { return it.image }

// Format returns the detected image format ("png", "jpeg", ...).
func (it Item) Format() string { return it.format }

// Lines returns a copy of the text lines in traversal order.
func (it Item) Lines() []string {
	out := make([]string, len(it.lines))
	copy(out, it.lines)
	return out
}

// Slide returns the 1-based source slide number.
func (it Item) Slide() int { return it.slide }

// Text returns all lines joined with newlines.
func (it Item) Text() string { return strings.Join(it.lines, "\n") }

// Deck is the ordered list of items extracted from one document.
type Deck struct {
	Title string
	Items []Item
}

// Len returns the number of items.
func (d Deck) Len() int { return len(d.Items) }
