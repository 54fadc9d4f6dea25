package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/linesmerrill/dinebuddies-api/api/handlers"
	"github.com/linesmerrill/dinebuddies-api/api/scheduler"
	"github.com/linesmerrill/dinebuddies-api/config"
	"github.com/linesmerrill/dinebuddies-api/obs"
)

const shutdownTimeout = 15 * time.Second

func main() {
	conf, err := config.New()
	if err != nil {
		zap.S().Fatalw("failed to load config", "error", err)
	}
	a := handlers.App{Config: *conf}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := obs.InitTracer(ctx, "dinebuddies-api", a.Config.OTLPEndpoint, a.Config.Env)
	if err != nil {
		zap.S().Fatalw("failed to init tracing", "error", err)
	}

	//initialize database and router
	if err := a.Initialize(); err != nil {
		zap.S().Fatalw("failed to initialize app", "error", err)
	}

	jobs := scheduler.NewScheduler(a.Services.Policy, a.Config.CleanupSchedule)
	if err := jobs.Start(); err != nil {
		zap.S().Fatalw("failed to start scheduler", "error", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%v", a.Config.Port),
		Handler:           a.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.S().Fatalw("server stopped", "error", err)
		}
	}()
	zap.S().Infow("dinebuddies-api is up and running",
		"port", a.Config.Port,
		"url", a.Config.BaseURL,
		"store", a.Config.StoreDriver,
	)

	<-ctx.Done()
	zap.S().Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.S().Errorw("failed to shut down server", "error", err)
	}
	jobs.Stop()
	a.Close(shutdownCtx)
	if err := shutdownTracer(shutdownCtx); err != nil {
		zap.S().Warnw("failed to flush traces", "error", err)
	}
	_ = zap.L().Sync()
}
