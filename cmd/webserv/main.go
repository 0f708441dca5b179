// Command webserv is the process entry point: config-file load, signal
// wiring, listener bind loop, and the event loop's run call. Everything
// here is an explicit collaborator of the core (spec.md §1) — the config
// lexer/parser, argument handling, and OS signal wiring all live outside
// internal/engine on purpose.
package main

import (
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/s00inx/webserv/config"
	"github.com/s00inx/webserv/internal/confload"
	"github.com/s00inx/webserv/internal/engine"
	"github.com/s00inx/webserv/internal/netutil"
	"github.com/s00inx/webserv/internal/router"
)

func main() {
	os.Exit(run())
}

func run() int {
	flag.Usage = func() {
		os.Stderr.WriteString("usage: webserv [config-file]\n")
	}
	flag.Parse()

	confPath := "webserv.conf"
	if flag.NArg() > 0 {
		confPath = flag.Arg(0)
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	servers, err := confload.Load(confPath)
	if err != nil {
		log.Error("config load failed", "path", confPath, "err", err)
		return 1
	}

	loop, err := engine.New(router.New(nil), log)
	if err != nil {
		log.Error("engine init failed", "err", err)
		return 1
	}

	if n := bindListeners(loop, servers, log); n == 0 {
		log.Error("no listeners could be bound")
		return 1
	}

	var shuttingDown atomic.Bool
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutdown signal received")
		shuttingDown.Store(true)
	}()

	log.Info("webserv starting", "config", confPath, "servers", len(servers))
	if err := loop.Run(shuttingDown.Load); err != nil {
		log.Error("event loop terminated", "err", err)
		return 1
	}

	log.Info("webserv shut down cleanly")
	return 0
}

// bindListeners creates a non-blocking listening socket for every
// ServerConfig and registers it with the loop, returning how many
// succeeded. A single bad (host, port) does not abort the others — spec
// exit code 1 is reserved for the case where *none* could be bound.
func bindListeners(loop *engine.Loop, servers []*config.ServerConfig, log *slog.Logger) int {
	ok := 0
	for _, sc := range servers {
		fd, err := netutil.Listen(sc.Host, sc.Port)
		if err != nil {
			log.Error("listen failed", "host", sc.Host, "port", sc.Port, "err", err)
			continue
		}
		if err := loop.AddListener(fd, sc); err != nil {
			log.Error("failed to register listener", "host", sc.Host, "port", sc.Port, "err", err)
			continue
		}
		log.Info("listening", "host", sc.Host, "port", sc.Port)
		ok++
	}
	return ok
}
