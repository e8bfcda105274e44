package core

import (
	"os"
	"strconv"
	"time"

	"github.com/jabolina/gomp/pkg/gomp/types"
)

// Config is the process manager's bootstrap configuration. The three
// identity fields mirror spec.md's mandatory environment-variable roles;
// everything else has a sane default.
type Config struct {
	Size     int
	Rank     int
	PortBase int

	// InitTimeout bounds the total time Init spends bringing up the full
	// mesh before failing with a Connection error.
	InitTimeout time.Duration

	// SendTimeout bounds how long a single frame write may block the
	// kernel before the transport is declared failed.
	SendTimeout time.Duration

	Logger types.Logger
}

const (
	envSize     = "GOMP_SIZE"
	envRank     = "GOMP_RANK"
	envPortBase = "GOMP_PORT_BASE"

	defaultSize        = 1
	defaultRank        = 0
	defaultPortBase    = 49152
	defaultInitTimeout = 10 * time.Second
	defaultSendTimeout = 10 * time.Second
)

// ConfigFromEnv reads GOMP_SIZE, GOMP_RANK and GOMP_PORT_BASE, defaulting
// to single-process mode (size=1, rank=0) when absent, per spec.md §4.4.
func ConfigFromEnv() Config {
	return Config{
		Size:        envInt(envSize, defaultSize),
		Rank:        envInt(envRank, defaultRank),
		PortBase:    envInt(envPortBase, defaultPortBase),
		InitTimeout: defaultInitTimeout,
		SendTimeout: defaultSendTimeout,
	}
}

func envInt(name string, fallback int) int {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// normalize fills in zero-valued fields with their defaults, so a caller
// building a Config by hand does not have to repeat every default.
func (c Config) normalize() Config {
	if c.Size <= 0 {
		c.Size = defaultSize
	}
	if c.PortBase <= 0 {
		c.PortBase = defaultPortBase
	}
	if c.InitTimeout <= 0 {
		c.InitTimeout = defaultInitTimeout
	}
	if c.SendTimeout <= 0 {
		c.SendTimeout = defaultSendTimeout
	}
	return c
}
