package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RogerXXH/limited-tic-tac-toe/internal/game"
	"github.com/RogerXXH/limited-tic-tac-toe/internal/server"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	tablePath := flag.String("table", "game_tree_3x3.data", "solved table path")
	n := flag.Int("n", 3, "board side length")
	m := flag.Int("m", 3, "per-side piece budget / win length")
	base := flag.Int("base", 0, "code digit base (0 = cells+1)")
	flag.Parse()

	params := game.Params{BoardSize: *n, MaxMove: *m, Base: *base}
	if params.Base == 0 {
		params.Base = params.Cells() + 1
	}
	if err := params.Validate(); err != nil {
		log.Printf("[server] %v", err)
		os.Exit(1)
	}

	strategy, err := server.NewPerfectStrategy(params, *tablePath)
	if err != nil {
		log.Printf("[server] %v", err)
		os.Exit(1)
	}
	defer strategy.Close()

	config := server.Config{Addr: *addr, TablePath: *tablePath, Params: params}
	controller := server.NewGameController(server.DefaultGameSettings(params), strategy)
	hub := server.NewHub()
	srv := server.New(config, controller, hub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx.Done())
	go func() {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if controller.Tick() {
					srv.BroadcastTickUpdate()
				}
			}
		}
	}()

	httpServer := &http.Server{
		Addr:    config.Addr,
		Handler: srv.Router(),
	}
	serverErrCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
		close(serverErrCh)
	}()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	log.Printf("[server] listening on %s (%s)", config.Addr, params)
	var runErr error
	select {
	case <-sigCtx.Done():
		log.Printf("[server] shutdown signal received: %v", sigCtx.Err())
	case err, ok := <-serverErrCh:
		if ok {
			runErr = err
			log.Printf("[server] server error: %v", err)
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("[server] graceful shutdown failed: %v", err)
		if closeErr := httpServer.Close(); closeErr != nil && !errors.Is(closeErr, http.ErrServerClosed) {
			log.Printf("[server] forced close failed: %v", closeErr)
		}
	}

	cancel()
	if runErr != nil {
		os.Exit(1)
	}
}
