package play

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/hanpama/slidequiz/internal/logger"
	"github.com/hanpama/slidequiz/internal/quiz"
	"github.com/hanpama/slidequiz/internal/render"
	"github.com/hanpama/slidequiz/internal/storage"
)

const help = "Type your guess, or :reveal, :next (or an empty line), :restart, :quit"

// Game runs a quiz session against a line-oriented terminal.
type Game struct {
	session  *quiz.Session
	render   *render.Renderer
	images   storage.ImageStore
	in       *bufio.Scanner
	out      io.Writer
	log      *logger.Logger
	prompt   string
	exported map[int]string // slide number -> exported image path
}

type Option func(*Game)

// WithImages exports each drawn image to store so it can be viewed.
func WithImages(store storage.ImageStore) Option {
	return func(g *Game) { g.images = store }
}

func WithLogger(l *logger.Logger) Option {
	return func(g *Game) { g.log = l }
}

// WithPrompt sets the input prompt. Use "" for non-interactive input.
func WithPrompt(p string) Option {
	return func(g *Game) { g.prompt = p }
}

func New(session *quiz.Session, r *render.Renderer, in io.Reader, out io.Writer, opts ...Option) *Game {
	g := &Game{
		session:  session,
		render:   r,
		in:       bufio.NewScanner(in),
		out:      out,
		prompt:   "> ",
		exported: make(map[int]string),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.log == nil {
		g.log = logger.Nop()
	}
	return g
}

// Run starts a pass over the items of deck selected by sel and plays until
// the input ends or the player quits.
func (g *Game) Run(ctx context.Context, deck quiz.Deck, sel quiz.Range) error {
	if err := g.session.Start(deck, sel); err != nil {
		return err
	}
	if err := g.render.Message(help); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		_, ok, err := g.session.EnsureCurrent()
		if err != nil {
			return err
		}
		if !ok {
			again, err := g.finish()
			if err != nil || !again {
				return err
			}
			continue
		}

		if err := g.showTurn(); err != nil {
			return err
		}
		quit, err := g.turn()
		if err != nil || quit {
			return err
		}
	}
}

// turn reads commands until the current item is left behind.
func (g *Game) turn() (quit bool, err error) {
	for {
		line, ok := g.readLine()
		if !ok {
			return true, nil
		}

		switch strings.ToLower(line) {
		case ":quit", ":q":
			return true, nil
		case ":help", ":h", "?":
			if err := g.render.Message(help); err != nil {
				return false, err
			}
		case ":reveal", ":r":
			if err := g.session.Reveal(); err != nil {
				return false, err
			}
			if err := g.showTurn(); err != nil {
				return false, err
			}
		case "", ":next", ":n":
			return false, g.session.Next()
		case ":restart":
			return false, g.restart()
		default:
			v, err := g.session.SubmitGuess(line)
			if err != nil {
				return false, err
			}
			if err := g.render.Verdict(v); err != nil {
				return false, err
			}
			if err := g.showTurn(); err != nil {
				return false, err
			}
		}
	}
}

// finish shows the final score and asks whether to play the same range again.
func (g *Game) finish() (again bool, err error) {
	score, answered := g.session.Score()
	if err := g.render.Summary(score, answered, g.session.Len()); err != nil {
		return false, err
	}
	if err := g.render.Message("All items shown. Type :restart to play again or :quit."); err != nil {
		return false, err
	}
	for {
		line, ok := g.readLine()
		if !ok {
			return false, nil
		}
		switch strings.ToLower(line) {
		case ":restart", ":r":
			return true, g.restart()
		case ":quit", ":q":
			return false, nil
		}
	}
}

func (g *Game) restart() error {
	if err := g.session.Restart(); err != nil {
		return err
	}
	return g.render.Message("Restarted with %d items.", g.session.Len())
}

func (g *Game) showTurn() error {
	turn := g.session.Turn()
	path, err := g.export(turn.Item)
	if err != nil {
		g.log.Warn("image export failed", "slide", turn.Item.Slide(), "error", err)
	}
	return g.render.Turn(turn, path)
}

func (g *Game) export(item quiz.Item) (string, error) {
	if g.images == nil {
		return "", nil
	}
	if path, ok := g.exported[item.Slide()]; ok {
		return path, nil
	}
	key := fmt.Sprintf("%s/slide-%03d.%s", g.session.ID(), item.Slide(), item.Format())
	path, err := g.images.Put(key, bytes.NewReader(item.Image()))
	if err != nil {
		return "", err
	}
	g.exported[item.Slide()] = path
	return path, nil
}

func (g *Game) readLine() (string, bool) {
	if g.prompt != "" {
		fmt.Fprint(g.out, g.prompt)
	}
	if !g.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(g.in.Text()), true
}
