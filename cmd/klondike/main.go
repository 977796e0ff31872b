// Command klondike plays Klondike from a script of pointer events read on
// stdin and prints the board after every change.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"

	"github.com/speevy/klondike/engine"
	"github.com/speevy/klondike/internal/config"
	"github.com/speevy/klondike/internal/interaction"
	"github.com/speevy/klondike/internal/store"
)

func main() {
	envFile := flag.String("env", ".env", "optional .env file")
	flag.Parse()

	log := logrus.New()
	log.SetOutput(os.Stderr)

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.WithError(err).Fatal("load config")
	}
	log.SetLevel(cfg.Level())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clk := clock.New()
	if err := run(ctx, cfg, os.Stdin, os.Stdout, clk, clk.Sleep, log); err != nil {
		log.WithError(err).Fatal("klondike failed")
	}
}

func openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	if cfg.RedisAddr == "" {
		return store.NewMemoryStore(), nil
	}
	return store.NewRedisStore(ctx, store.RedisOptions{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Key:      cfg.RedisKey,
	})
}

func seedFrom(clk clock.Clock) func() uint64 {
	return func() uint64 { return uint64(clk.Now().UnixNano()) }
}

// loadGame restores the saved game or deals a new one.
func loadGame(ctx context.Context, st store.Store, seed uint64, log logrus.FieldLogger) (*engine.Game, error) {
	data, err := st.Load(ctx)
	if errors.Is(err, store.ErrNotFound) {
		log.WithField("seed", seed).Info("dealing a new game")
		return engine.NewGame(seed, engine.DefaultRules()), nil
	}
	if err != nil {
		return nil, err
	}
	g, err := engine.UnmarshalGame(data)
	if err != nil {
		log.WithError(err).Warn("saved game unreadable, dealing a new one")
		return engine.NewGame(seed, engine.DefaultRules()), nil
	}
	log.Info("restored saved game")
	return g, nil
}

// run plays the script on in. wait advances time for the script's wait
// command.
func run(ctx context.Context, cfg config.Config, in io.Reader, out io.Writer, clk clock.Clock, wait func(time.Duration), log *logrus.Logger) error {
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	newSeed := seedFrom(clk)
	seed := cfg.Seed
	if seed == 0 {
		seed = newSeed()
	}
	g, err := loadGame(ctx, st, seed, log)
	if err != nil {
		return err
	}
	if g.Bounds() != cfg.Bounds() {
		return fmt.Errorf("%w: the engine plays %d piles and %d foundations", config.ErrInvalid, g.Bounds().Piles, g.Bounds().Foundations)
	}

	host := newTextHost(out)
	ctrl, err := interaction.New(g, cfg.Bounds(), host, host, host, interaction.Options{
		Gesture: cfg.Gesture(),
		Clock:   clk,
		Log:     log,
	})
	if err != nil {
		return err
	}
	ctrl.Refresh()

	d := &driver{ctrl: ctrl, host: host, wait: wait, seed: newSeed, log: log.WithField("component", "driver")}

	scriptErr := make(chan error, 1)
	go func() { scriptErr <- d.run(in) }()
	select {
	case err = <-scriptErr:
	case <-ctx.Done():
		log.Info("interrupted")
	}

	var data []byte
	if derr := ctrl.Do(func(interaction.Engine) error {
		var merr error
		data, merr = engine.MarshalGame(g)
		return merr
	}); derr != nil {
		return fmt.Errorf("failed to serialize game: %w", derr)
	}
	if serr := st.Save(context.WithoutCancel(ctx), data); serr != nil {
		return serr
	}
	return err
}
