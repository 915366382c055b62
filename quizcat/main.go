package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/mattn/go-isatty"

	"github.com/hanpama/slidequiz"
	"github.com/hanpama/slidequiz/internal/config"
	"github.com/hanpama/slidequiz/internal/logger"
	"github.com/hanpama/slidequiz/internal/play"
	"github.com/hanpama/slidequiz/internal/quiz"
	"github.com/hanpama/slidequiz/internal/render"
	"github.com/hanpama/slidequiz/internal/storage"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage:\n")
	fmt.Fprintf(os.Stderr, "  %s list [-config file] <deck>\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "  %s play [-config file] [-range 3-10|all] [-answer paired|first|last|full] [-images dir] <deck>\n", os.Args[0])
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch os.Args[1] {
	case "list":
		err = list(ctx, os.Args[2:])
	case "play":
		err = playDeck(ctx, os.Args[2:])
	case "-h", "-help", "--help", "help":
		usage()
		return
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type env struct {
	cfg  config.Config
	log  *logger.Logger
	deck slidequiz.Deck
	stat slidequiz.Stats
}

// setup loads configuration, applies the flags that were set on fs and
// extracts the deck named by the first positional argument.
func setup(ctx context.Context, fs *flag.FlagSet, configPath *string, override func(*config.Config)) (*env, error) {
	if fs.NArg() < 1 {
		usage()
		return nil, errors.New("missing deck path")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}
	override(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	file, err := os.Open(fs.Arg(0))
	if err != nil {
		return nil, fmt.Errorf("failed to open deck: %w", err)
	}
	defer file.Close()

	deck, stats, err := slidequiz.Extract(ctx, file,
		slidequiz.WithLogger(log.SugaredLogger.Desugar()),
		slidequiz.WithWorkers(cfg.Extract.Workers),
	)
	if err != nil {
		return nil, err
	}
	log.Info("deck loaded", "path", fs.Arg(0), "items", stats.Items, "slides", stats.Slides)
	return &env{cfg: cfg, log: log, deck: deck, stat: stats}, nil
}

func list(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	configPath := fs.String("config", "", "YAML config file")
	fs.Parse(args)

	e, err := setup(ctx, fs, configPath, func(*config.Config) {})
	if err != nil {
		return err
	}
	defer e.log.Sync()

	return render.New(os.Stdout, colored(os.Stdout)).Deck(e.deck, e.stat)
}

func playDeck(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	configPath := fs.String("config", "", "YAML config file")
	rangeFlag := fs.String("range", "", "items to play: all, N or N-M")
	answerFlag := fs.String("answer", "", "answer mode: paired, first, last or full")
	imagesFlag := fs.String("images", "", "directory images are exported to")
	fs.Parse(args)

	e, err := setup(ctx, fs, configPath, func(cfg *config.Config) {
		if *rangeFlag != "" {
			cfg.Quiz.Range = *rangeFlag
		}
		if *answerFlag != "" {
			cfg.Quiz.Answer = *answerFlag
		}
		if *imagesFlag != "" {
			cfg.Images.Dir = *imagesFlag
		}
	})
	if err != nil {
		return err
	}
	defer e.log.Sync()

	if e.deck.Len() == 0 {
		fmt.Fprintf(os.Stdout, "No quiz items found (%d slides scanned).\n", e.stat.Slides)
		return nil
	}

	sel, err := quiz.ParseRange(e.cfg.Quiz.Range)
	if err != nil {
		return err
	}
	answer, err := quiz.AnswerSelectorByName(e.cfg.Quiz.Answer)
	if err != nil {
		return err
	}
	store, err := storage.NewFSStore(e.cfg.Images.Dir)
	if err != nil {
		return fmt.Errorf("failed to create image directory: %w", err)
	}

	session := quiz.NewSession(
		quiz.WithAnswer(answer),
		quiz.WithResetOnRestart(e.cfg.Quiz.ResetScoreOnRestart),
		quiz.WithLogger(e.log),
	)

	opts := []play.Option{play.WithImages(store), play.WithLogger(e.log)}
	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		opts = append(opts, play.WithPrompt(""))
	}
	game := play.New(session, render.New(os.Stdout, colored(os.Stdout)), os.Stdin, os.Stdout, opts...)
	return game.Run(ctx, e.deck, sel)
}

func colored(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
