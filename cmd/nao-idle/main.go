// nao-idle holds the robot in a compliant idle stance with a slow
// breathing pulse on the chest LED. Mostly a demonstration of the
// session loop; runs against the loopback simulator by default.
//
// Usage:
//
//	nao-idle                      # loopback simulator
//	NAO_BACKEND=lola nao-idle     # real robot
package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/teslashibe/go-nao/internal/config"
	"github.com/teslashibe/go-nao/internal/log"
	"github.com/teslashibe/go-nao/pkg/lola"
	"github.com/teslashibe/go-nao/pkg/nao"
	"github.com/teslashibe/go-nao/pkg/session"
	"github.com/teslashibe/go-nao/pkg/sim"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	log.Init(cfg.LogLevel)

	if err := run(cfg); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	limits := nao.DefaultLimits()
	if cfg.LimitsPath != "" {
		var err error
		if limits, err = nao.LoadLimits(cfg.LimitsPath); err != nil {
			return err
		}
	}

	dial := func() (nao.Backend, error) {
		if cfg.Backend == config.BackendLola {
			return lola.Connect(lola.Config{
				Network:      cfg.LolaNetwork,
				Addr:         cfg.LolaAddr,
				ReadTimeout:  cfg.ReadTimeout,
				WriteTimeout: cfg.WriteTimeout,
			})
		}
		return sim.NewBackend(sim.NewLoopback(), cfg.ReadTimeout), nil
	}

	sess := session.New(dial,
		session.WithLimits(limits),
		session.WithPeriod(cfg.TickRate))
	if err := sess.Connect(); err != nil {
		return err
	}
	defer sess.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Breathing chest LED on top of a compliant stance.
	go func() {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		start := time.Now()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				phase := time.Since(start).Seconds() / 4 * 2 * math.Pi
				glow := float32(0.5 + 0.5*math.Sin(phase))
				cmd := nao.NeutralCommand(nil)
				if frame, ok := sess.LatestState(); ok {
					cmd = nao.NeutralCommand(&frame)
				}
				cmd.Leds.Chest = nao.Cyan.Scale(glow)
				sess.SetNextCommand(cmd)
			}
		}
	}()

	log.Info("idling", "backend", cfg.Backend, "period", cfg.TickRate)
	err := sess.Run(ctx)
	c := sess.Counters()
	log.Info("session finished",
		"codec_warnings", c.Codec,
		"validation_warnings", c.Validation,
		"timeouts", c.Timeout,
		"transport_errors", c.Transport,
		"clamped", c.Clamped)
	return err
}
