package render

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Card is a boxed block of text with an optional header and footer row.
type Card struct {
	Header   string
	Lines    []string
	Footer   string
	MaxWidth int // content width limit; 0 means unlimited
}

// Render renders the card to an ASCII string. Every line has the same
// display width, including lines with wide or combining characters.
func (c *Card) Render() string {
	layout := c.buildLayout()
	return layout.render()
}

// cardLayout holds the wrapped rows of each section and the content width
type cardLayout struct {
	sections [][]string
	width    int
}

func (c *Card) buildLayout() *cardLayout {
	l := &cardLayout{width: 1}
	if c.Header != "" {
		l.sections = append(l.sections, c.wrap([]string{c.Header}))
	}
	body := c.wrap(c.Lines)
	if len(body) == 0 {
		body = []string{""}
	}
	l.sections = append(l.sections, body)
	if c.Footer != "" {
		l.sections = append(l.sections, c.wrap([]string{c.Footer}))
	}

	for _, section := range l.sections {
		for _, line := range section {
			if w := displayWidth(line); w > l.width {
				l.width = w
			}
		}
	}
	return l
}

// wrap splits embedded newlines and folds lines wider than MaxWidth
func (c *Card) wrap(lines []string) []string {
	var out []string
	for _, line := range lines {
		for _, part := range strings.Split(line, "\n") {
			if c.MaxWidth > 0 && displayWidth(part) > c.MaxWidth {
				out = append(out, strings.Split(runewidth.Wrap(part, c.MaxWidth), "\n")...)
				continue
			}
			out = append(out, part)
		}
	}
	return out
}

func (l *cardLayout) render() string {
	var sb strings.Builder
	border := "+" + strings.Repeat("-", l.width+2) + "+\n"

	sb.WriteString(border)
	for _, section := range l.sections {
		for _, line := range section {
			sb.WriteString("| ")
			sb.WriteString(line)
			sb.WriteString(strings.Repeat(" ", l.width-displayWidth(line)))
			sb.WriteString(" |\n")
		}
		sb.WriteString(border)
	}
	return sb.String()
}

// displayWidth calculates the display width of a string using go-runewidth.
// Diacritics such as "í" count once, CJK characters count twice.
func displayWidth(s string) int {
	return runewidth.StringWidth(s)
}
