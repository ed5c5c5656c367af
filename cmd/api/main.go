package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/sedanonpc/ddcore/internal/config"
	"github.com/sedanonpc/ddcore/internal/handler"
	"github.com/sedanonpc/ddcore/internal/service/gateway"
	"github.com/sedanonpc/ddcore/internal/service/realtime"
	"github.com/sedanonpc/ddcore/internal/service/responder"
	"github.com/sedanonpc/ddcore/internal/service/session"
	"github.com/sedanonpc/ddcore/internal/service/upstream"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	store := session.NewStore()
	upstreamClient := upstream.NewClient(cfg.Upstream.URL, cfg.Upstream.ProbeTimeout, cfg.Upstream.ForwardTimeout)
	gw := gateway.New(store, upstreamClient, responder.New())
	hub := realtime.NewHub()

	log.Printf("upstream backend configured at %s", cfg.Upstream.URL)

	router := handler.NewRouter(gw, store, upstreamClient, hub)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("chat gateway listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
