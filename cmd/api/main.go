package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LeeJarvis98/moneyx-partner-backend/internal/cache"
	"github.com/LeeJarvis98/moneyx-partner-backend/internal/config"
	"github.com/LeeJarvis98/moneyx-partner-backend/internal/db"
	"github.com/LeeJarvis98/moneyx-partner-backend/internal/license"
	"github.com/LeeJarvis98/moneyx-partner-backend/internal/logging"
	"github.com/LeeJarvis98/moneyx-partner-backend/internal/server"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.New("partner-backend", "info").Fatalf("config load error: %v", err)
	}
	log := logging.New("partner-backend", cfg.LogLevel)

	conn, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("db connect error: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		log.Fatalf("auto migrate error: %v", err)
	}

	ctx := context.Background()
	cc := cache.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.ChainCacheTTL)
	if cfg.RedisAddr != "" && cc == nil {
		log.Warn("redis unreachable; chain cache disabled")
	}

	var licenses license.Store = license.Noop{}
	if cfg.SheetsSpreadsheetID != "" {
		licenses, err = license.NewSheetsStore(ctx, cfg.SheetsCredentialsFile, cfg.SheetsSpreadsheetID, cfg.SheetsName)
		if err != nil {
			log.Warnf("sheets store init failed, license bookkeeping disabled: %v", err)
			licenses = license.Noop{}
		}
	}

	srv := server.New(cfg, conn, cc, licenses, log)
	addr := ":" + cfg.Port

	errCh := make(chan error, 1)
	go func() {
		log.Infof("starting server on %s", addr)
		errCh <- srv.Start(addr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("server stopped: %v", err)
		}
	case sig := <-stop:
		log.Infof("received %s, shutting down", sig)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Echo().Shutdown(shutdownCtx); err != nil {
			log.Errorf("shutdown error: %v", err)
		}
	}
}
