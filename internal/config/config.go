// Package config provides environment-driven configuration for go-nao
// commands.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Backend kinds selectable via NAO_BACKEND.
const (
	BackendLola = "lola"
	BackendSim  = "sim"
)

// Config holds everything a command needs to open a robot session.
// Values come from the environment; defaults target a real NAO.
type Config struct {
	// Backend selects the transport: "lola" or "sim".
	Backend string `env:"NAO_BACKEND" envDefault:"lola"`

	// LolaNetwork and LolaAddr locate the LoLA socket. The daemon
	// listens on a unix socket on the robot; tcp works through a
	// forwarded port.
	LolaNetwork string `env:"NAO_LOLA_NETWORK" envDefault:"unix"`
	LolaAddr    string `env:"NAO_LOLA_ADDR" envDefault:"/tmp/robocup"`

	// SimAddr is the simulator's remote-procedure endpoint.
	SimAddr string `env:"NAO_SIM_ADDR" envDefault:"localhost:23000"`

	// TickRate is the control loop period.
	TickRate time.Duration `env:"NAO_TICK_RATE" envDefault:"12ms"`

	ReadTimeout  time.Duration `env:"NAO_READ_TIMEOUT" envDefault:"250ms"`
	WriteTimeout time.Duration `env:"NAO_WRITE_TIMEOUT" envDefault:"250ms"`

	// LimitsPath optionally overrides the embedded joint limit table.
	LimitsPath string `env:"NAO_LIMITS"`

	LogLevel string `env:"NAO_LOG_LEVEL" envDefault:"info"`
}

// Load parses the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.Backend != BackendLola && cfg.Backend != BackendSim {
		return nil, fmt.Errorf("config: unknown backend %q", cfg.Backend)
	}
	return &cfg, nil
}
