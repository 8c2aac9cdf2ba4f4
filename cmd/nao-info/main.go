// nao-info connects to the robot, reads one telemetry frame, and
// prints a hardware and battery summary.
//
// Usage:
//
//	NAO_LOLA_ADDR=/tmp/robocup nao-info
//	NAO_BACKEND=sim nao-info
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/teslashibe/go-nao/internal/config"
	"github.com/teslashibe/go-nao/internal/log"
	"github.com/teslashibe/go-nao/pkg/lola"
	"github.com/teslashibe/go-nao/pkg/nao"
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
	var (
		backend nao.Backend
		err     error
	)
	switch cfg.Backend {
	case config.BackendLola:
		var b *lola.Backend
		b, err = lola.ConnectWithRetry(lola.Config{
			Network:      cfg.LolaNetwork,
			Addr:         cfg.LolaAddr,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		}, 5, time.Second)
		if err == nil {
			if hw, hwErr := b.ReadHardwareInfo(); hwErr == nil {
				fmt.Printf("Body:  %s (version %s)\n", hw.BodyID, hw.BodyVersion)
				fmt.Printf("Head:  %s (version %s)\n", hw.HeadID, hw.HeadVersion)
			} else {
				log.Warn("hardware info unavailable", "err", hwErr)
			}
		}
		backend = b
	case config.BackendSim:
		backend = sim.NewBackend(sim.NewLoopback(), cfg.ReadTimeout)
	}
	if err != nil {
		return err
	}
	defer backend.Close()

	frame, err := backend.ReadState()
	if err != nil {
		return err
	}

	fmt.Printf("Frame: seq=%d partial=%v\n", frame.Seq, frame.Partial)
	fmt.Printf("Battery: %.0f%% (%.1f°C)\n", frame.Battery.Charge*100, frame.Battery.Temperature)
	fmt.Println("Joints:")
	for _, j := range nao.Joints() {
		fmt.Printf("  %-16s %8.4f rad  stiffness %.2f  %.1f°C\n",
			j, frame.Position[j], frame.Stiffness[j], frame.Temperature[j])
	}
	return nil
}
