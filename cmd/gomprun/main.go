// Command gomprun launches a single rank of a gomp job: it brings up the
// runtime from GOMP_SIZE/GOMP_RANK/GOMP_PORT_BASE, optionally serves
// Prometheus metrics, runs a barrier so every rank can confirm the mesh is
// up, and tears down cleanly on SIGINT/SIGTERM.
package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jabolina/gomp/pkg/gomp"
	"github.com/jabolina/gomp/pkg/gomp/core"
	"github.com/jabolina/gomp/pkg/gomp/definition"
)

func main() {
	comm, err := gomp.Init()
	if err != nil {
		exitf("init failed: %v", err)
	}

	logger := definition.NewDefaultLogger(comm.Rank())

	if addr := os.Getenv("GOMP_METRICS_ADDR"); addr != "" {
		serveMetrics(addr, comm, logger)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	done := make(chan error, 1)
	go func() { done <- comm.Barrier() }()

	select {
	case err := <-done:
		if err != nil {
			logger.Errorf("startup barrier failed: %v", err)
		} else {
			logger.Infof("rank %d/%d: mesh up", comm.Rank(), comm.Size())
		}
	case <-sig:
		logger.Warn("interrupted before startup barrier completed")
	}

	if err := gomp.Finalize(); err != nil {
		exitf("finalize failed: %v", err)
	}
}

func serveMetrics(addr string, comm *gomp.Comm, logger *definition.DefaultLogger) {
	m, err := core.Current()
	if err != nil {
		logger.Warnf("metrics disabled: %v", err)
		return
	}
	registry := prometheus.NewRegistry()
	registry.MustRegister(definition.NewRuntimeCollector(m))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("metrics server stopped: %v", err)
		}
	}()
	logger.Infof("rank %d serving metrics on %s", comm.Rank(), addr)
}

func exitf(format string, args ...interface{}) {
	logger := definition.NewDefaultLogger(-1)
	logger.Errorf(format, args...)
	os.Exit(1)
}
