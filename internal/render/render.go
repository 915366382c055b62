package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/hanpama/slidequiz/internal/extract"
	"github.com/hanpama/slidequiz/internal/quiz"
)

const cardWidth = 60

// Renderer writes quiz screens as plain text.
type Renderer struct {
	w       io.Writer
	correct *color.Color
	wrong   *color.Color
	dim     *color.Color
}

// New creates a Renderer. Colors are only emitted when colored is true.
func New(w io.Writer, colored bool) *Renderer {
	r := &Renderer{
		w:       w,
		correct: color.New(color.FgGreen, color.Bold),
		wrong:   color.New(color.FgRed, color.Bold),
		dim:     color.New(color.Faint),
	}
	for _, c := range []*color.Color{r.correct, r.wrong, r.dim} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

// Deck lists every item of a deck with its source slide and first line.
func (r *Renderer) Deck(deck quiz.Deck, stats extract.Stats) error {
	if deck.Title != "" {
		if _, err := fmt.Fprintln(r.w, deck.Title); err != nil {
			return err
		}
	}

	table := tablewriter.NewWriter(r.w)
	table.Header("#", "Slide", "Format", "Text")
	for i, it := range deck.Items {
		row := []string{
			strconv.Itoa(i + 1),
			strconv.Itoa(it.Slide()),
			it.Format(),
			strings.Join(it.Lines(), " / "),
		}
		if err := table.Append(row); err != nil {
			return fmt.Errorf("failed to add row: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render deck: %w", err)
	}

	_, err := fmt.Fprintf(r.w, "%d items from %d slides (%d without image, %d without text, %d unreadable)\n",
		stats.Items, stats.Slides, stats.NoImage, stats.NoText, stats.Broken)
	return err
}

// Turn renders the current item as a card. imagePath is where the image was
// exported for viewing; it may be empty.
func (r *Renderer) Turn(turn quiz.Turn, imagePath string) error {
	if !turn.HasItem {
		return nil
	}
	card := &Card{
		Header:   fmt.Sprintf("Item %d of %d (slide %d)", turn.Position, turn.Total, turn.Item.Slide()),
		Footer:   fmt.Sprintf("Score %d/%d", turn.Score, turn.Answered),
		MaxWidth: cardWidth,
	}
	if imagePath != "" {
		card.Lines = append(card.Lines, "Image: "+imagePath)
	} else {
		card.Lines = append(card.Lines, fmt.Sprintf("Image: %s, %d bytes", turn.Item.Format(), len(turn.Item.Image())))
	}
	if turn.Revealed {
		card.Lines = append(card.Lines, "")
		card.Lines = append(card.Lines, turn.Item.Lines()...)
	}
	_, err := fmt.Fprint(r.w, card.Render())
	return err
}

// Verdict reports whether a guess matched.
func (r *Renderer) Verdict(v quiz.Verdict) error {
	var err error
	if v.Correct {
		_, err = r.correct.Fprint(r.w, "Correct!")
	} else {
		_, err = r.wrong.Fprint(r.w, "Wrong.")
		if err == nil {
			_, err = fmt.Fprintf(r.w, " The answer is %s", v.Answer)
		}
	}
	if err == nil && !v.Counted {
		_, err = r.dim.Fprint(r.w, " (not scored)")
	}
	if err == nil {
		_, err = fmt.Fprintln(r.w)
	}
	return err
}

// Summary renders the final score of a pass.
func (r *Renderer) Summary(score, answered, total int) error {
	percent := 0.0
	if answered > 0 {
		percent = float64(score) * 100 / float64(answered)
	}

	table := tablewriter.NewWriter(r.w)
	table.Header("Items", "Answered", "Correct", "Score")
	row := []string{
		strconv.Itoa(total),
		strconv.Itoa(answered),
		strconv.Itoa(score),
		fmt.Sprintf("%.0f%%", percent),
	}
	if err := table.Append(row); err != nil {
		return fmt.Errorf("failed to add row: %w", err)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render summary: %w", err)
	}
	return nil
}

// Message prints a dimmed informational line.
func (r *Renderer) Message(format string, args ...any) error {
	_, err := r.dim.Fprintf(r.w, format+"\n", args...)
	return err
}
