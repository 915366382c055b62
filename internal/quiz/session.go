package quiz

import (
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/hanpama/slidequiz/internal/logger"
)

// State is the coarse state of a Session.
type State int

const (
	Idle State = iota
	Active
	Exhausted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Active:
		return "active"
	case Exhausted:
		return "exhausted"
	}
	return "unknown"
}

// Verdict is the outcome of a guess.
type Verdict struct {
	Correct bool
	Counted bool   // false when the item had already been revealed
	Answer  string // canonical answer the guess was compared to
}

// Turn is what the presentation layer needs to render the session.
type Turn struct {
	Item     Item
	HasItem  bool
	Position int // 1-based draw number within the current pass
	Total    int
	Revealed bool
	Text     string // full item text, set only when revealed
	Score    int
	Answered int
	Done     bool
}

type Option func(*Session)

// WithRand sets the randomness source used for shuffling.
func WithRand(r *rand.Rand) Option {
	return func(s *Session) { s.rng = r }
}

// WithResetOnRestart controls whether Restart zeroes score and answered.
func WithResetOnRestart(reset bool) Option {
	return func(s *Session) { s.resetOnRestart = reset }
}

// WithAnswer sets how the canonical answer is derived from an item.
func WithAnswer(sel AnswerSelector) Option {
	return func(s *Session) { s.answer = sel }
}

func WithLogger(l *logger.Logger) Option {
	return func(s *Session) { s.log = l }
}

// Session is a single quiz pass over a contiguous subset of a deck. Items
// are drawn from a shuffle bag so each one is shown exactly once per pass.
// A Session is not safe for concurrent use.
type Session struct {
	id             string
	rng            *rand.Rand
	answer         AnswerSelector
	resetOnRestart bool
	log            *logger.Logger

	subset    []Item
	remaining []int
	current   int // -1 when no item is drawn
	revealed  bool
	graded    bool
	score     int
	answered  int
}

func NewSession(opts ...Option) *Session {
	s := &Session{
		answer:         PairedAnswer,
		resetOnRestart: true,
		current:        -1,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	return s
}

// ID identifies the current pass; it changes on every Start.
func (s *Session) ID() string { return s.id }

func (s *Session) State() State {
	switch {
	case s.subset == nil:
		return Idle
	case s.current < 0 && len(s.remaining) == 0:
		return Exhausted
	default:
		return Active
	}
}

// Start replaces any previous session state with a fresh pass over the
// items of deck selected by r. On error the session is left untouched.
func (s *Session) Start(deck Deck, r Range) error {
	lo, hi, err := r.Bounds(deck.Len())
	if err != nil {
		return err
	}
	s.id = uuid.NewString()
	s.subset = deck.Items[lo:hi:hi]
	s.score, s.answered = 0, 0
	s.shuffle()
	s.log.Debug("quiz started", "session_id", s.id, "range", r.String(), "items", len(s.subset))
	return nil
}

// Restart begins a new pass over the same subset.
func (s *Session) Restart() error {
	if len(s.subset) == 0 {
		return &TransitionError{Op: "restart", State: s.State()}
	}
	if s.resetOnRestart {
		s.score, s.answered = 0, 0
	}
	s.shuffle()
	s.log.Debug("quiz restarted", "session_id", s.id, "reset_score", s.resetOnRestart)
	return nil
}

func (s *Session) shuffle() {
	bag := make([]int, len(s.subset))
	for i := range bag {
		bag[i] = i
	}
	for i := len(bag) - 1; i > 0; i-- {
		j := s.rng.IntN(i + 1)
		bag[i], bag[j] = bag[j], bag[i]
	}
	s.remaining = bag
	s.current = -1
	s.revealed = false
	s.graded = false
}

// EnsureCurrent draws the next item if none is pending. ok is false once the
// pass is exhausted.
func (s *Session) EnsureCurrent() (item Item, ok bool, err error) {
	if s.subset == nil {
		return Item{}, false, &TransitionError{Op: "ensureCurrent", State: Idle}
	}
	if s.current < 0 {
		if len(s.remaining) == 0 {
			return Item{}, false, nil
		}
		last := len(s.remaining) - 1
		s.current = s.remaining[last]
		s.remaining = s.remaining[:last]
		s.revealed = false
		s.graded = false
		s.log.Debug("item drawn", "session_id", s.id, "index", s.current, "left", len(s.remaining))
	}
	return s.subset[s.current], true, nil
}

// Reveal shows the answer of the current item.
func (s *Session) Reveal() error {
	if s.current < 0 {
		return &TransitionError{Op: "reveal", State: s.State()}
	}
	s.revealed = true
	return nil
}

// SubmitGuess grades text against the current item's answer and reveals it.
// Only the first guess on an unrevealed item is counted.
func (s *Session) SubmitGuess(text string) (Verdict, error) {
	if s.current < 0 {
		return Verdict{}, &TransitionError{Op: "submitGuess", State: s.State()}
	}
	answer := s.answer(s.subset[s.current])
	v := Verdict{Correct: Matches(text, answer), Answer: answer}
	if !s.revealed && !s.graded {
		v.Counted = true
		s.graded = true
		s.answered++
		if v.Correct {
			s.score++
		}
	}
	s.revealed = true
	s.log.Debug("guess submitted", "session_id", s.id, "index", s.current, "correct", v.Correct, "counted", v.Counted)
	return v, nil
}

// Next discards the current item. The following EnsureCurrent draws again.
func (s *Session) Next() error {
	if s.current < 0 {
		return &TransitionError{Op: "next", State: s.State()}
	}
	s.current = -1
	s.revealed = false
	s.graded = false
	if len(s.remaining) == 0 {
		s.log.Debug("quiz exhausted", "session_id", s.id, "score", s.score, "answered", s.answered)
	}
	return nil
}

// Score returns the number of correct and graded guesses.
func (s *Session) Score() (score, answered int) { return s.score, s.answered }

// Len returns the size of the selected subset.
func (s *Session) Len() int { return len(s.subset) }

// Remaining returns how many items have not been drawn in this pass.
func (s *Session) Remaining() int { return len(s.remaining) }

// Current returns the subset index of the drawn item.
func (s *Session) Current() (int, bool) { return s.current, s.current >= 0 }

func (s *Session) Revealed() bool { return s.revealed }

// Subset returns the selected items in deck order.
func (s *Session) Subset() []Item { return s.subset }

// Turn snapshots the session for rendering.
func (s *Session) Turn() Turn {
	t := Turn{
		Total:    len(s.subset),
		Revealed: s.revealed,
		Score:    s.score,
		Answered: s.answered,
		Done:     s.State() == Exhausted,
	}
	if s.current >= 0 {
		t.Item = s.subset[s.current]
		t.HasItem = true
		t.Position = len(s.subset) - len(s.remaining)
		if s.revealed {
			t.Text = t.Item.Text()
		}
	}
	return t
}
