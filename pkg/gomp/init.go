package gomp

import (
	"github.com/jabolina/gomp/pkg/gomp/core"
)

var world *Comm

// Init brings up the runtime from environment configuration (GOMP_SIZE,
// GOMP_RANK, GOMP_PORT_BASE) and returns the world communicator, per
// spec.md §3/§4.4. Init may be called at most once per process between a
// matching pair of Init/Finalize calls.
func Init() (*Comm, error) {
	m, err := core.Init(core.ConfigFromEnv())
	if err != nil {
		return nil, err
	}
	world = newComm(m, 0)
	return world, nil
}

// InitWithConfig is Init with an explicit Config, for embedding gomp in a
// process that wants to set identity or timeouts programmatically instead
// of through the environment.
func InitWithConfig(cfg core.Config) (*Comm, error) {
	m, err := core.Init(cfg)
	if err != nil {
		return nil, err
	}
	world = newComm(m, 0)
	return world, nil
}

// World returns the world communicator established by Init, or nil if the
// runtime has not been initialized.
func World() *Comm {
	return world
}

// Finalize tears down the runtime: every pending request is failed, every
// transport and the listener are closed, and the process may call Init
// again afterward.
func Finalize() error {
	err := core.Finalize()
	world = nil
	return err
}

// Abort closes every transport without draining pending work and
// terminates the process with the given exit code. It never returns.
func Abort(code int) {
	core.Abort(code)
}
