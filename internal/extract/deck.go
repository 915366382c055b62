package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/hanpama/slidequiz/internal/document"
	"github.com/hanpama/slidequiz/internal/logger"
	"github.com/hanpama/slidequiz/internal/quiz"
)

// Stats summarizes one extraction pass.
type Stats struct {
	Slides  int // slides scanned, including broken ones
	Items   int
	NoImage int
	NoText  int
	Broken  int // slides whose markup could not be parsed
}

type Extractor struct {
	workers int
	log     *logger.Logger
}

type Option func(*Extractor)

// WithWorkers bounds how many slides are processed concurrently.
func WithWorkers(n int) Option {
	return func(e *Extractor) { e.workers = n }
}

func WithLogger(l *logger.Logger) Option {
	return func(e *Extractor) { e.log = l }
}

func New(opts ...Option) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}
	if e.workers <= 0 {
		e.workers = runtime.GOMAXPROCS(0)
	}
	if e.log == nil {
		e.log = logger.Nop()
	}
	return e
}

// Deck reads every slide from scanner and returns the items of qualifying
// slides in slide order. A deck without qualifying slides is not an error.
// The deck is only returned once every slide has been processed.
func (e *Extractor) Deck(ctx context.Context, scanner document.SlideScanner) (quiz.Deck, Stats, error) {
	var stats Stats
	var slides []*document.Slide
	for {
		if err := ctx.Err(); err != nil {
			return quiz.Deck{}, Stats{}, err
		}
		slide, err := scanner.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			var se *document.SlideError
			if errors.As(err, &se) {
				stats.Slides++
				stats.Broken++
				e.log.Debug("slide skipped", "slide", se.Number, "reason", "broken", "error", se.Err)
				continue
			}
			return quiz.Deck{}, Stats{}, fmt.Errorf("failed to scan slides: %w", err)
		}
		stats.Slides++
		slides = append(slides, slide)
	}

	items := make([]quiz.Item, len(slides))
	reasons := make([]Reason, len(slides))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, slide := range slides {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			items[i], reasons[i] = Slide(slide)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return quiz.Deck{}, Stats{}, err
	}

	deck := quiz.Deck{Items: make([]quiz.Item, 0, len(slides))}
	for i, r := range reasons {
		switch r {
		case Kept:
			deck.Items = append(deck.Items, items[i])
		case NoImage:
			stats.NoImage++
		case NoText:
			stats.NoText++
		}
		if r != Kept {
			e.log.Debug("slide skipped", "slide", slides[i].Number, "reason", r.String())
		}
	}
	stats.Items = deck.Len()
	e.log.Info("deck extracted", "slides", stats.Slides, "items", stats.Items,
		"no_image", stats.NoImage, "no_text", stats.NoText, "broken", stats.Broken)
	return deck, stats, nil
}
