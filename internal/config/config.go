package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hanpama/slidequiz/internal/quiz"
)

type Config struct {
	Log     LogConfig     `yaml:"log"`
	Quiz    QuizConfig    `yaml:"quiz"`
	Images  ImagesConfig  `yaml:"images"`
	Extract ExtractConfig `yaml:"extract"`
}

type LogConfig struct {
	Mode string `yaml:"mode"` // dev|prod|off
}

type QuizConfig struct {
	Answer              string `yaml:"answer"` // paired|first|last|full
	ResetScoreOnRestart bool   `yaml:"reset_score_on_restart"`
	Range               string `yaml:"range"`
}

type ImagesConfig struct {
	Dir string `yaml:"dir"`
}

type ExtractConfig struct {
	Workers int `yaml:"workers"` // 0 means GOMAXPROCS
}

func Default() Config {
	return Config{
		Log:    LogConfig{Mode: "off"},
		Quiz:   QuizConfig{Answer: "paired", ResetScoreOnRestart: true, Range: "all"},
		Images: ImagesConfig{Dir: filepath.Join(os.TempDir(), "slidequiz")},
	}
}

// Load reads the YAML file at path (skipped when path is empty), applies
// SLIDEQUIZ_* environment overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Log.Mode = envOr("SLIDEQUIZ_LOG_MODE", c.Log.Mode)
	c.Quiz.Answer = envOr("SLIDEQUIZ_ANSWER", c.Quiz.Answer)
	c.Quiz.ResetScoreOnRestart = envBool("SLIDEQUIZ_RESET_SCORE", c.Quiz.ResetScoreOnRestart)
	c.Quiz.Range = envOr("SLIDEQUIZ_RANGE", c.Quiz.Range)
	c.Images.Dir = envOr("SLIDEQUIZ_IMAGES_DIR", c.Images.Dir)
	if v := os.Getenv("SLIDEQUIZ_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SLIDEQUIZ_WORKERS %q: %w", v, err)
		}
		c.Extract.Workers = n
	}
	return nil
}

func (c Config) Validate() error {
	switch strings.ToLower(c.Log.Mode) {
	case "dev", "development", "prod", "production", "off", "none":
	default:
		return fmt.Errorf("unknown log mode %q", c.Log.Mode)
	}
	if _, err := quiz.AnswerSelectorByName(c.Quiz.Answer); err != nil {
		return err
	}
	if _, err := quiz.ParseRange(c.Quiz.Range); err != nil {
		return fmt.Errorf("invalid quiz range: %w", err)
	}
	if c.Extract.Workers < 0 {
		return fmt.Errorf("extract.workers must not be negative, got %d", c.Extract.Workers)
	}
	return nil
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}
