// Package config loads runtime settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/speevy/klondike/internal/gesture"
	"github.com/speevy/klondike/internal/holder"
)

// Config is the complete runtime configuration.
type Config struct {
	DoubleTapWindow time.Duration `env:"KLONDIKE_DOUBLE_TAP_WINDOW" envDefault:"500ms"`
	DragArmDelay    time.Duration `env:"KLONDIKE_DRAG_ARM_DELAY" envDefault:"200ms"`

	Piles       int `env:"KLONDIKE_PILES" envDefault:"4"`
	Foundations int `env:"KLONDIKE_FOUNDATIONS" envDefault:"7"`

	// Seed deals the first game; zero picks one from the clock.
	Seed     uint64 `env:"KLONDIKE_SEED" envDefault:"0"`
	LogLevel string `env:"KLONDIKE_LOG_LEVEL" envDefault:"info"`

	// RedisAddr selects the Redis store; empty keeps state in memory.
	RedisAddr     string `env:"KLONDIKE_REDIS_ADDR"`
	RedisPassword string `env:"KLONDIKE_REDIS_PASSWORD"`
	RedisDB       int    `env:"KLONDIKE_REDIS_DB" envDefault:"0"`
	RedisKey      string `env:"KLONDIKE_REDIS_KEY" envDefault:"klondike:state"`
}

// ErrInvalid is returned for settings that parse but make no sense.
var ErrInvalid = errors.New("invalid configuration")

// Load reads the given .env files, when present, then parses the
// environment. Variables already set win over .env entries.
func Load(files ...string) (Config, error) {
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) > 0 {
		if err := godotenv.Load(existing...); err != nil {
			return Config{}, fmt.Errorf("load env files: %w", err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings against each other.
func (c Config) Validate() error {
	if err := c.Gesture().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.Piles < 1 || c.Foundations < 1 {
		return fmt.Errorf("%w: need at least one pile and one foundation, got %d and %d", ErrInvalid, c.Piles, c.Foundations)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Gesture returns the gesture timings.
func (c Config) Gesture() gesture.Config {
	return gesture.Config{DoubleTapWindow: c.DoubleTapWindow, ArmDelay: c.DragArmDelay}
}

// Bounds returns the holder counts.
func (c Config) Bounds() holder.Bounds {
	return holder.Bounds{Piles: c.Piles, Foundations: c.Foundations}
}

// Level returns the parsed log level. Validate has already vetted it.
func (c Config) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}
