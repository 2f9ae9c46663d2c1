package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"weatherview/internal/api"
	"weatherview/internal/config"
	"weatherview/internal/fetcher"
	"weatherview/internal/store"
	"weatherview/internal/weather"
	"weatherview/internal/weatherapi"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := weatherapi.NewClient(cfg.WeatherAPI.BaseURL, cfg.WeatherAPI.APIKey, cfg.WeatherAPI.Timeout)
	defer client.Close()

	g, gctx := errgroup.WithContext(ctx)

	// Fetches stop when the server does, whatever the reason.
	f := fetcher.New(client)
	svc := weather.NewService(gctx, store.New(), f, cfg.App.DefaultCity)

	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()
	router.Use(gin.Recovery(), api.RequestLogger())
	handler := api.NewHandler(svc)
	handler.RegisterRoutes(router, api.NewRequestSignatureMiddleware(cfg.Auth.Clients, cfg.Auth.MaxAge))

	srv := &http.Server{
		Addr:         cfg.ServerAddr(),
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		slog.Info("server starting", "addr", srv.Addr, "default_city", cfg.App.DefaultCity)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	svc.Start()

	if err := g.Wait(); err != nil {
		slog.Error("server error", "err", err)
	}
	f.Wait()
	slog.Info("server stopped")
}
