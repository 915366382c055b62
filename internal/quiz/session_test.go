package quiz

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustItem(t *testing.T, lines ...string) Item {
	t.Helper()
	it, err := NewItem([]byte{0x89, 'P', 'N', 'G'}, "png", lines, 0)
	require.NoError(t, err)
	return it
}

func testDeck(t *testing.T, n int) Deck {
	t.Helper()
	d := Deck{}
	for i := 0; i < n; i++ {
		d.Items = append(d.Items, mustItem(t, fmt.Sprintf("name %d", i), fmt.Sprintf("latin %d", i)))
	}
	return d
}

func seeded(seed uint64) Option {
	return WithRand(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// drain visits the whole pass and returns the subset indices in draw order.
func drain(t *testing.T, s *Session) []int {
	t.Helper()
	var order []int
	for {
		_, ok, err := s.EnsureCurrent()
		require.NoError(t, err)
		if !ok {
			break
		}
		idx, _ := s.Current()
		order = append(order, idx)
		require.NoError(t, s.Next())
	}
	return order
}

func TestStartSelectsContiguousSubset(t *testing.T) {
	deck := testDeck(t, 10)
	for _, r := range []Range{{Start: 1, End: 10}, {Start: 3, End: 7}, {Start: 5, End: 5}, {Start: 10, End: 10}} {
		s := NewSession(seeded(1))
		require.NoError(t, s.Start(deck, r))

		subset := s.Subset()
		require.Len(t, subset, r.End-r.Start+1, r.String())
		for i := range subset {
			assert.Equal(t, deck.Items[r.Start-1+i].Lines(), subset[i].Lines())
		}
		assert.Equal(t, Active, s.State())
	}
}

func TestStartAll(t *testing.T) {
	deck := testDeck(t, 4)
	s := NewSession(seeded(2))
	require.NoError(t, s.Start(deck, AllItems))
	assert.Equal(t, 4, s.Len())
	assert.Equal(t, 4, s.Remaining())
}

func TestPassVisitsEveryIndexOnce(t *testing.T) {
	deck := testDeck(t, 25)
	s := NewSession(seeded(3))
	require.NoError(t, s.Start(deck, Range{Start: 2, End: 21}))

	order := drain(t, s)
	require.Len(t, order, 20)
	sorted := append([]int(nil), order...)
	sort.Ints(sorted)
	for i, v := range sorted {
		assert.Equal(t, i, v)
	}
	assert.Equal(t, Exhausted, s.State())

	_, ok, err := s.EnsureCurrent()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRestartCoversSameIndexSet(t *testing.T) {
	deck := testDeck(t, 12)
	s := NewSession(seeded(4))
	require.NoError(t, s.Start(deck, AllItems))

	first := drain(t, s)
	require.NoError(t, s.Restart())
	assert.Equal(t, Active, s.State())
	second := drain(t, s)

	assert.ElementsMatch(t, first, second)
}

func TestRestartMidPass(t *testing.T) {
	deck := testDeck(t, 5)
	s := NewSession(seeded(5))
	require.NoError(t, s.Start(deck, AllItems))
	_, _, err := s.EnsureCurrent()
	require.NoError(t, err)
	require.NoError(t, s.Next())

	require.NoError(t, s.Restart())
	_, ok := s.Current()
	assert.False(t, ok)
	assert.Equal(t, 5, s.Remaining())
	assert.Len(t, drain(t, s), 5)
}

func TestRestartResetsScoreByDefault(t *testing.T) {
	deck := Deck{Items: []Item{mustItem(t, "Dub letní, Quercus robur")}}
	s := NewSession(seeded(6))
	require.NoError(t, s.Start(deck, AllItems))
	_, _, err := s.EnsureCurrent()
	require.NoError(t, err)
	_, err = s.SubmitGuess("quercus robur")
	require.NoError(t, err)
	require.NoError(t, s.Next())

	score, answered := s.Score()
	require.Equal(t, 1, score)
	require.Equal(t, 1, answered)

	require.NoError(t, s.Restart())
	score, answered = s.Score()
	assert.Zero(t, score)
	assert.Zero(t, answered)
}

func TestRestartKeepsScoreWhenConfigured(t *testing.T) {
	deck := Deck{Items: []Item{mustItem(t, "Dub letní", "Quercus robur")}}
	s := NewSession(seeded(7), WithResetOnRestart(false))
	require.NoError(t, s.Start(deck, AllItems))
	_, _, _ = s.EnsureCurrent()
	_, _ = s.SubmitGuess("Quercus robur")
	_ = s.Next()

	require.NoError(t, s.Restart())
	score, answered := s.Score()
	assert.Equal(t, 1, score)
	assert.Equal(t, 1, answered)
}

func TestSubmitGuessMatching(t *testing.T) {
	tests := []struct {
		guess   string
		correct bool
	}{
		{" Quercus Robur ", true},
		{"quercus robur", true},
		{"Quercus", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.guess, func(t *testing.T) {
			deck := Deck{Items: []Item{mustItem(t, "Dub letní", "Quercus robur")}}
			s := NewSession(seeded(8))
			require.NoError(t, s.Start(deck, AllItems))
			_, _, err := s.EnsureCurrent()
			require.NoError(t, err)

			v, err := s.SubmitGuess(tt.guess)
			require.NoError(t, err)
			assert.Equal(t, tt.correct, v.Correct)
			assert.True(t, v.Counted)
			assert.Equal(t, "Quercus robur", v.Answer)
			assert.True(t, s.Revealed())

			score, answered := s.Score()
			assert.Equal(t, 1, answered)
			if tt.correct {
				assert.Equal(t, 1, score)
			} else {
				assert.Equal(t, 0, score)
			}
		})
	}
}

func TestGuessAndRevealAreIdempotent(t *testing.T) {
	deck := Deck{Items: []Item{mustItem(t, "Dub letní", "Quercus robur")}}
	s := NewSession(seeded(9))
	require.NoError(t, s.Start(deck, AllItems))
	_, _, _ = s.EnsureCurrent()

	_, err := s.SubmitGuess("Quercus robur")
	require.NoError(t, err)
	v, err := s.SubmitGuess("Quercus robur")
	require.NoError(t, err)
	assert.False(t, v.Counted)
	require.NoError(t, s.Reveal())
	require.NoError(t, s.Reveal())

	score, answered := s.Score()
	assert.Equal(t, 1, score)
	assert.Equal(t, 1, answered)
	assert.True(t, s.Revealed())
}

func TestGuessAfterRevealIsNotCounted(t *testing.T) {
	deck := Deck{Items: []Item{mustItem(t, "Dub letní", "Quercus robur")}}
	s := NewSession(seeded(10))
	require.NoError(t, s.Start(deck, AllItems))
	_, _, _ = s.EnsureCurrent()
	require.NoError(t, s.Reveal())

	v, err := s.SubmitGuess("Quercus robur")
	require.NoError(t, err)
	assert.True(t, v.Correct)
	assert.False(t, v.Counted)
	score, answered := s.Score()
	assert.Zero(t, score)
	assert.Zero(t, answered)
}

func TestNextClearsRevealed(t *testing.T) {
	deck := testDeck(t, 2)
	s := NewSession(seeded(11))
	require.NoError(t, s.Start(deck, AllItems))
	_, _, _ = s.EnsureCurrent()
	require.NoError(t, s.Reveal())
	require.NoError(t, s.Next())
	assert.False(t, s.Revealed())

	_, ok, err := s.EnsureCurrent()
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, s.Revealed())
}

func TestInvalidTransitions(t *testing.T) {
	s := NewSession(seeded(12))

	_, _, err := s.EnsureCurrent()
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.ErrorIs(t, s.Reveal(), ErrInvalidTransition)
	assert.ErrorIs(t, s.Next(), ErrInvalidTransition)
	assert.ErrorIs(t, s.Restart(), ErrInvalidTransition)
	_, err = s.SubmitGuess("x")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	require.NoError(t, s.Start(testDeck(t, 1), AllItems))
	// nothing drawn yet
	err = s.Reveal()
	var te *TransitionError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "reveal", te.Op)
	assert.Equal(t, Active, te.State)

	score, answered := s.Score()
	assert.Zero(t, score)
	assert.Zero(t, answered)
}

func TestInvertedRangeLeavesStateUntouched(t *testing.T) {
	deck := testDeck(t, 5)
	s := NewSession(seeded(13))
	require.NoError(t, s.Start(deck, Range{Start: 1, End: 4}))
	_, _, _ = s.EnsureCurrent()
	_, _ = s.SubmitGuess("latin 0")
	before := s.Turn()
	id := s.ID()

	err := s.Start(deck, Range{Start: 3, End: 2})
	require.ErrorIs(t, err, ErrInvalidRange)
	var re *RangeError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, 3, re.Start)

	assert.Equal(t, before, s.Turn())
	assert.Equal(t, id, s.ID())
	assert.Equal(t, 4, s.Len())
}

func TestStartRejectsOutOfBounds(t *testing.T) {
	deck := testDeck(t, 3)
	for _, r := range []Range{{Start: 0, End: 2}, {Start: 2, End: 4}, {Start: 4, End: 4}} {
		s := NewSession()
		assert.ErrorIs(t, s.Start(deck, r), ErrInvalidRange, r.String())
		assert.Equal(t, Idle, s.State())
	}
	assert.ErrorIs(t, NewSession().Start(Deck{}, AllItems), ErrInvalidRange)
}

func TestStartReplacesPreviousSession(t *testing.T) {
	deck := Deck{Items: []Item{mustItem(t, "a", "b"), mustItem(t, "c", "d")}}
	s := NewSession(seeded(14))
	require.NoError(t, s.Start(deck, AllItems))
	_, _, _ = s.EnsureCurrent()
	_, _ = s.SubmitGuess("b")
	firstID := s.ID()

	require.NoError(t, s.Start(deck, Range{Start: 2, End: 2}))
	assert.NotEqual(t, firstID, s.ID())
	score, answered := s.Score()
	assert.Zero(t, score)
	assert.Zero(t, answered)
	_, ok := s.Current()
	assert.False(t, ok)
	assert.Equal(t, 1, s.Remaining())
}

func TestTurnSnapshot(t *testing.T) {
	deck := Deck{Items: []Item{mustItem(t, "Dub letní", "Quercus robur")}}
	s := NewSession(seeded(15))
	require.NoError(t, s.Start(deck, AllItems))

	turn := s.Turn()
	assert.False(t, turn.HasItem)
	assert.False(t, turn.Done)

	_, _, _ = s.EnsureCurrent()
	turn = s.Turn()
	assert.True(t, turn.HasItem)
	assert.Equal(t, 1, turn.Position)
	assert.Equal(t, 1, turn.Total)
	assert.Empty(t, turn.Text)

	require.NoError(t, s.Reveal())
	assert.Equal(t, "Dub letní\nQuercus robur", s.Turn().Text)

	require.NoError(t, s.Next())
	assert.True(t, s.Turn().Done)
}
