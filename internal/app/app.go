package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cinesync/server/internal/controller"
	connInmemory "github.com/cinesync/server/internal/repository/connection/inmemory"
	roomInmemory "github.com/cinesync/server/internal/repository/room/inmemory"
	"github.com/cinesync/server/internal/service/room"
	"github.com/cinesync/server/pkg/ctxlogger"
)

type AppConfig struct {
	Host           string `json:"host"`
	Port           int    `json:"port"`
	LogLevel       string `json:"log_level"`
	SyncIntervalMs int    `json:"sync_interval_ms"`
	CodeRetryLimit int    `json:"code_retry_limit"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("port must be in 1..65535")
	}
	if cfg.SyncIntervalMs < 1 {
		return fmt.Errorf("sync interval must be greater than 0")
	}
	if cfg.CodeRetryLimit < 1 {
		return fmt.Errorf("code retry limit must be greater than 0")
	}
	return nil
}

func Run(ctx context.Context, cfg *AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: logLevel,
		}),
	}
	logger := slog.New(&h)

	roomRepo := roomInmemory.NewRepo(logger)
	connRepo := connInmemory.NewRepo(logger)
	roomService := room.NewService(roomRepo, connRepo, &room.Config{
		SyncInterval:   time.Duration(cfg.SyncIntervalMs) * time.Millisecond,
		CodeRetryLimit: cfg.CodeRetryLimit,
	}, logger)
	controller := controller.NewController(roomService, logger)
	server := &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Handler: controller.GetMux()}

	// graceful shutdown
	serverCtx, serverStopCtx := context.WithCancel(ctx)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		shutdownCtx, c := context.WithTimeout(serverCtx, 30*time.Second)
		defer c()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	logger.InfoContext(serverCtx, "starting server", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	<-serverCtx.Done()

	return nil
}
