package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/GoArmGo/UserService/internal/config"
	"github.com/GoArmGo/UserService/internal/core/ports"
)

const (
	ModeServer = "server"
	ModeWorker = "worker"
)

type App struct {
	Config   *config.Config
	logger   *slog.Logger
	router   http.Handler
	consumer ports.UserEventConsumer
	archive  ports.EventArchive
	closers  []io.Closer
}

// NewServerApp собирает App для режима server.
func NewServerApp(cfg *config.Config, logger *slog.Logger, router http.Handler, closers ...io.Closer) *App {
	return &App{
		Config:  cfg,
		logger:  logger,
		router:  router,
		closers: closers,
	}
}

// NewWorkerApp собирает App для режима worker.
func NewWorkerApp(
	cfg *config.Config,
	logger *slog.Logger,
	consumer ports.UserEventConsumer,
	archive ports.EventArchive,
	closers ...io.Closer,
) *App {
	return &App{
		Config:   cfg,
		logger:   logger,
		consumer: consumer,
		archive:  archive,
		closers:  closers,
	}
}

// LoggerIns возвращает основной логгер приложения
func (a *App) LoggerIns() *slog.Logger {
	return a.logger
}

// Run запускает приложение в указанном режиме и блокируется до SIGINT/SIGTERM
// или отмены ctx.
func (a *App) Run(ctx context.Context, mode string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.logger.Info("starting", "mode", mode)

	var err error
	switch mode {
	case ModeServer:
		if a.router == nil {
			return errors.New("server mode requires an HTTP handler")
		}
		err = runServer(ctx, fmt.Sprintf(":%s", a.Config.ServerPort), a.router, a.logger)

	case ModeWorker:
		if a.consumer == nil || a.archive == nil {
			return errors.New("worker mode requires a consumer and an archive")
		}
		err = runWorker(ctx, a.consumer, a.archive, a.logger)

	default:
		err = fmt.Errorf("неизвестный режим: %s (используйте 'server' или 'worker')", mode)
	}

	if closeErr := a.Shutdown(); closeErr != nil {
		a.logger.Error("shutdown failed", "error", closeErr)
	}
	return err
}

// Shutdown закрывает все ресурсы приложения в обратном порядке
func (a *App) Shutdown() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
