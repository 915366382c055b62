// Package slidequiz turns slide decks into picture quizzes.
//
// Every slide that carries an image and some text becomes one quiz item: the
// image is the question and the text is the answer. Items are played through
// a Session, which draws them in random order without repetition.
//
// # Example Usage
//
//	file, err := os.Open("trees.pptx")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer file.Close()
//
//	deck, _, err := slidequiz.Extract(context.Background(), file)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	session := slidequiz.NewSession()
//	if err := session.Start(deck, slidequiz.AllItems); err != nil {
//		log.Fatal(err)
//	}
//
// # Supported Formats
//
// PPTX (.pptx): PresentationML package in a ZIP container
//   - Pictures, text boxes and nested groups in z-order
//   - Picture fills of the slide background
//   - mc:AlternateContent fallbacks
//
// PPT (.ppt): PowerPoint 97-2003 binary format in an OLE Compound File
//   - Office Art shape trees with embedded or delayed blips (PNG, JPEG, DIB, TIFF)
//   - Outline text from the slide list and text boxes
//   - Password encrypted presentations are rejected
package slidequiz

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/hanpama/slidequiz/internal/document"
	"github.com/hanpama/slidequiz/internal/extract"
	"github.com/hanpama/slidequiz/internal/logger"
	"github.com/hanpama/slidequiz/internal/ppt"
	"github.com/hanpama/slidequiz/internal/pptx"
	"github.com/hanpama/slidequiz/internal/quiz"
)

type (
	Item           = quiz.Item
	Deck           = quiz.Deck
	Range          = quiz.Range
	Session        = quiz.Session
	SessionOption  = quiz.Option
	State          = quiz.State
	Turn           = quiz.Turn
	Verdict        = quiz.Verdict
	AnswerSelector = quiz.AnswerSelector
	RangeError     = quiz.RangeError
	Stats          = extract.Stats
)

var (
	ErrInvalidRange      = quiz.ErrInvalidRange
	ErrInvalidTransition = quiz.ErrInvalidTransition
	ErrUnknownFormat     = errors.New("unknown document format")

	AllItems = quiz.AllItems
)

// NewSession creates an idle quiz session.
func NewSession(opts ...SessionOption) *Session { return quiz.NewSession(opts...) }

// ParseRange parses "all", "N" or "N-M" (1-based, inclusive).
func ParseRange(s string) (Range, error) { return quiz.ParseRange(s) }

// ParseError reports a document whose container or mandatory parts could not
// be read. No partial deck is returned alongside it.
type ParseError struct {
	Format string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s document: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

type options struct {
	workers int
	log     *logger.Logger
}

// Option configures extraction.
type Option func(*options)

// WithLogger routes extraction diagnostics to l.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.log = logger.Wrap(l) }
}

// WithWorkers bounds how many slides are examined concurrently.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

func newExtractor(opts []Option) (*extract.Extractor, *logger.Logger) {
	o := options{log: logger.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return extract.New(extract.WithWorkers(o.workers), extract.WithLogger(o.log)), o.log
}

type slideSource interface {
	Metadata() document.Metadata
	NewSlideScanner() document.SlideScanner
}

func extractFrom(ctx context.Context, format string, src slideSource, opts []Option) (Deck, Stats, error) {
	ex, log := newExtractor(opts)
	meta := src.Metadata()
	log.Debug("document opened", "format", format, "title", meta.Title)

	deck, stats, err := ex.Deck(ctx, src.NewSlideScanner())
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return Deck{}, Stats{}, err
		}
		return Deck{}, Stats{}, &ParseError{Format: format, Err: err}
	}
	deck.Title = meta.Title
	return deck, stats, nil
}

// ExtractPPTX reads a .pptx package and returns its quiz items in slide order.
//
// The input must implement io.ReaderAt for ZIP extraction, and size must be
// the file size. A deck without qualifying slides is not an error.
func ExtractPPTX(ctx context.Context, in io.ReaderAt, size int64, opts ...Option) (Deck, Stats, error) {
	reader, err := pptx.Open(in, size)
	if err != nil {
		return Deck{}, Stats{}, &ParseError{Format: "pptx", Err: err}
	}
	return extractFrom(ctx, "pptx", reader, opts)
}

// ExtractPPT reads a PowerPoint 97-2003 .ppt file and returns its quiz items
// in slide order.
func ExtractPPT(ctx context.Context, in io.ReaderAt, opts ...Option) (Deck, Stats, error) {
	reader, err := ppt.OpenReader(in)
	if err != nil {
		return Deck{}, Stats{}, &ParseError{Format: "ppt", Err: err}
	}
	return extractFrom(ctx, "ppt", reader, opts)
}

var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// ExtractBytes detects the format of an in-memory document from its
// signature and extracts it.
func ExtractBytes(ctx context.Context, data []byte, opts ...Option) (Deck, Stats, error) {
	switch {
	case bytes.HasPrefix(data, zipMagic):
		return ExtractPPTX(ctx, bytes.NewReader(data), int64(len(data)), opts...)
	case bytes.HasPrefix(data, oleMagic):
		return ExtractPPT(ctx, bytes.NewReader(data), opts...)
	}
	return Deck{}, Stats{}, &ParseError{Format: "unknown", Err: ErrUnknownFormat}
}

// Extract detects the format of an open file and extracts it.
//
// The file signature decides the format; the extension is only consulted
// when the signature is unreadable.
func Extract(ctx context.Context, file *os.File, opts ...Option) (Deck, Stats, error) {
	info, err := file.Stat()
	if err != nil {
		return Deck{}, Stats{}, fmt.Errorf("failed to get file info: %w", err)
	}

	head := make([]byte, len(oleMagic))
	n, _ := file.ReadAt(head, 0)
	head = head[:n]

	switch {
	case bytes.HasPrefix(head, zipMagic):
		return ExtractPPTX(ctx, file, info.Size(), opts...)
	case bytes.HasPrefix(head, oleMagic):
		return ExtractPPT(ctx, file, opts...)
	}

	switch strings.ToLower(filepath.Ext(file.Name())) {
	case ".pptx", ".pptm", ".ppsx":
		return ExtractPPTX(ctx, file, info.Size(), opts...)
	case ".ppt", ".pps":
		return ExtractPPT(ctx, file, opts...)
	}
	return Deck{}, Stats{}, &ParseError{Format: "unknown", Err: ErrUnknownFormat}
}
