package quiz

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// AnswerSelector picks the line a guess is graded against.
type AnswerSelector func(Item) string

// PairedAnswer treats the item text as "name A, name B" (or lines, or
// "name A – name B") and answers with the second name. Text with a single
// name answers with that name.
func PairedAnswer(it Item) string {
	var parts []string
	for _, line := range it.lines {
		for _, p := range strings.FieldsFunc(line, func(r rune) bool { return r == '\n' || r == ',' }) {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
	}
	if len(parts) == 1 {
		for _, sep := range []string{" – ", " — ", " - "} {
			if a, b, ok := strings.Cut(parts[0], sep); ok {
				parts = []string{strings.TrimSpace(a), strings.TrimSpace(b)}
				break
			}
		}
	}
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	default:
		return parts[1]
	}
}

// FirstLineAnswer answers with the first text line.
func FirstLineAnswer(it Item) string { return strings.TrimSpace(it.lines[0]) }

// LastLineAnswer answers with the last text line.
func LastLineAnswer(it Item) string { return strings.TrimSpace(it.lines[len(it.lines)-1]) }

// FullTextAnswer answers with every line joined by a single space.
func FullTextAnswer(it Item) string {
	return strings.Join(strings.Fields(strings.Join(it.lines, " ")), " ")
}

// AnswerSelectorByName maps a config name to a selector.
func AnswerSelectorByName(name string) (AnswerSelector, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "paired":
		return PairedAnswer, nil
	case "first":
		return FirstLineAnswer, nil
	case "last":
		return LastLineAnswer, nil
	case "full":
		return FullTextAnswer, nil
	default:
		return nil, fmt.Errorf("unknown answer mode %q", name)
	}
}

// Matches compares a guess to the canonical answer, ignoring surrounding
// whitespace and case.
func Matches(guess, answer string) bool {
	fold := cases.Fold()
	return fold.String(strings.TrimSpace(guess)) == fold.String(strings.TrimSpace(answer))
}
