// Package server initializes and runs the unicampus HTTP server.
// It opens the shared storage backend, keeps the collaboration board in
// sync with other sessions and shuts the listener down gracefully.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/unicampus/internal/client/advisor"
	"github.com/dmitrijs2005/unicampus/internal/client/services"
	"github.com/dmitrijs2005/unicampus/internal/kv"
	"github.com/dmitrijs2005/unicampus/internal/logging"
	"github.com/dmitrijs2005/unicampus/internal/server/config"
	"github.com/dmitrijs2005/unicampus/internal/server/httpapi"
	"github.com/dmitrijs2005/unicampus/internal/storage"
)

const readHeaderTimeout = 5 * time.Second

type App struct {
	config   *config.Config
	logger   logging.Logger
	store    kv.Store
	accounts services.AccountService
	board    *services.Board
	api      *httpapi.Server
}

// NewApp opens storage and builds the services. The registry is
// initialized here so the first request already sees an active account.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	store, err := storage.Open(ctx, c.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	app, err := newApp(ctx, c, store, newGenerator(ctx, c, logger), logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return app, nil
}

func newGenerator(ctx context.Context, c *config.Config, logger logging.Logger) advisor.Generator {
	if c.GeminiAPIKey == "" {
		logger.Info(ctx, "no Gemini API key, advisor serves fallbacks only")
		return advisor.Unavailable{}
	}
	gen, err := advisor.NewGenAIGenerator(ctx, c.GeminiAPIKey, c.GeminiModel)
	if err != nil {
		logger.Warn(ctx, "advisor disabled", "error", err)
		return advisor.Unavailable{}
	}
	return gen
}

func newApp(ctx context.Context, c *config.Config, store kv.Store, gen advisor.Generator, logger logging.Logger) (*App, error) {
	accounts := services.NewAccountService(store, logger)
	if _, err := accounts.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("account registry init error: %w", err)
	}

	board := services.NewBoard(store, logger)
	if err := board.Start(ctx); err != nil {
		return nil, fmt.Errorf("board init error: %w", err)
	}

	api := httpapi.NewServer(httpapi.Deps{
		Accounts: accounts,
		Profiles: services.NewProfileService(store, accounts, logger),
		Hearted:  services.NewHeartedService(store, logger),
		Board:    board,
		Courses:  services.NewCourseService(store, logger),
		Advisor:  advisor.New(gen, advisor.DefaultBreakerConfig(), logger),
		Metrics:  httpapi.NewMetrics("unicampus"),
		Logger:   logger,
	})

	return &App{
		config:   c,
		logger:   logger,
		store:    store,
		accounts: accounts,
		board:    board,
		api:      api,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// serve runs the HTTP server on ln until ctx is done, then drains
// in-flight requests for up to ShutdownTimeout.
func (app *App) serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           app.api.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "HTTP server listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	app.logger.Info(ctx, "HTTP server stopped")
	return nil
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	ln, err := net.Listen("tcp", app.config.Addr)
	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return
	}
	if err := app.serve(ctx, ln); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until a signal arrives or ctx is cancelled, then releases the
// board subscription and the store.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()
	app.Close()
}

// Close releases resources. It is safe to call once after Run returns.
func (app *App) Close() {
	app.api.Close()
	app.board.Close()
	if err := app.store.Close(); err != nil {
		app.logger.Warn(context.Background(), "store close failed", "error", err)
	}
}
