package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/slidequiz/internal/extract"
	"github.com/hanpama/slidequiz/internal/quiz"
)

func TestBasicCard(t *testing.T) {
	card := &Card{Header: "Item 1 of 3", Lines: []string{"A", "BB", "CCC"}, Footer: "Score 0/0"}

	result := card.Render()
	t.Logf("\n%s", result)

	checkAllLinesEqualWidth(t, result)

	// 4 borders + header + 3 lines + footer + trailing newline
	lines := strings.Split(result, "\n")
	assert.Len(t, lines, 10)
}

func TestCardDiacritics(t *testing.T) {
	card := &Card{Lines: []string{"Dub letní", "Quercus robur", "Jírovec maďal"}}

	result := card.Render()
	t.Logf("\n%s", result)

	checkAllLinesEqualWidth(t, result)
}

func TestCardWideCharacters(t *testing.T) {
	card := &Card{Header: "제목", Lines: []string{"첫째 줄\n둘째 줄", "Acer"}}

	result := card.Render()
	t.Logf("\n%s", result)

	checkAllLinesEqualWidth(t, result)
	assert.Contains(t, result, "| 둘째 줄 |")
}

func TestCardWrapsLongLines(t *testing.T) {
	card := &Card{Lines: []string{strings.Repeat("x", 25)}, MaxWidth: 10}

	result := card.Render()
	t.Logf("\n%s", result)

	checkAllLinesEqualWidth(t, result)
	assert.Equal(t, 3, strings.Count(result, "| x"))
}

func TestEmptyCard(t *testing.T) {
	result := (&Card{}).Render()
	checkAllLinesEqualWidth(t, result)
	assert.Equal(t, "+---+\n|   |\n+---+\n", result)
}

func newItem(t *testing.T, slide int, lines ...string) quiz.Item {
	t.Helper()
	it, err := quiz.NewItem([]byte{0x89, 'P', 'N', 'G'}, "png", lines, slide)
	require.NoError(t, err)
	return it
}

func TestTurnHidesTextUntilRevealed(t *testing.T) {
	item := newItem(t, 4, "Dub letní", "Quercus robur")
	turn := quiz.Turn{Item: item, HasItem: true, Position: 2, Total: 5, Score: 1, Answered: 1}

	var buf bytes.Buffer
	r := New(&buf, false)
	require.NoError(t, r.Turn(turn, "/tmp/slidequiz/4.png"))
	out := buf.String()
	assert.Contains(t, out, "Item 2 of 5 (slide 4)")
	assert.Contains(t, out, "/tmp/slidequiz/4.png")
	assert.Contains(t, out, "Score 1/1")
	assert.NotContains(t, out, "Quercus")

	buf.Reset()
	turn.Revealed = true
	require.NoError(t, r.Turn(turn, ""))
	assert.Contains(t, buf.String(), "Quercus robur")
	assert.Contains(t, buf.String(), "png, 4 bytes")
	checkAllLinesEqualWidth(t, buf.String())
}

func TestVerdict(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, false)

	require.NoError(t, r.Verdict(quiz.Verdict{Correct: true, Counted: true, Answer: "Quercus robur"}))
	assert.Equal(t, "Correct!\n", buf.String())

	buf.Reset()
	require.NoError(t, r.Verdict(quiz.Verdict{Answer: "Quercus robur"}))
	assert.Equal(t, "Wrong. The answer is Quercus robur (not scored)\n", buf.String())
}

func TestVerdictColored(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf, true).Verdict(quiz.Verdict{Correct: true, Counted: true}))
	assert.Contains(t, buf.String(), "\x1b[")
}

func TestDeckListing(t *testing.T) {
	deck := quiz.Deck{
		Title: "Trees",
		Items: []quiz.Item{newItem(t, 2, "Dub letní", "Quercus robur"), newItem(t, 5, "Acer")},
	}

	var buf bytes.Buffer
	require.NoError(t, New(&buf, false).Deck(deck, extract.Stats{Slides: 6, Items: 2, NoImage: 3, NoText: 1}))
	out := buf.String()
	t.Logf("\n%s", out)

	assert.True(t, strings.HasPrefix(out, "Trees\n"))
	assert.Contains(t, out, "Dub letní / Quercus robur")
	assert.Contains(t, out, "Acer")
	assert.Contains(t, out, "2 items from 6 slides (3 without image, 1 without text, 0 unreadable)")
}

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf, false).Summary(3, 4, 5))
	t.Logf("\n%s", buf.String())
	assert.Contains(t, buf.String(), "75%")
}

func checkAllLinesEqualWidth(t *testing.T, result string) {
	t.Helper()
	lines := strings.Split(result, "\n")
	var firstLineWidth int
	for i, line := range lines {
		if line == "" {
			continue
		}
		width := displayWidth(line)
		if firstLineWidth == 0 {
			firstLineWidth = width
		}
		if width != firstLineWidth {
			t.Errorf("Line %d has different display width: expected %d, got %d\nLine: %s", i, firstLineWidth, width, line)
		}
	}
}
