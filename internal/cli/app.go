package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/littleironwaltz/quotesync/config"
	"github.com/littleironwaltz/quotesync/internal/interface/presenter"
	"github.com/littleironwaltz/quotesync/internal/interface/repository"
	"github.com/littleironwaltz/quotesync/internal/logging"
	"github.com/littleironwaltz/quotesync/internal/usecase"
)

// App wires the adapters to the use case for one command invocation
type App struct {
	cfg       *config.Config
	logger    *logrus.Logger
	store     repository.KeyValueStore
	presenter *presenter.ConsolePresenter
	quotes    *usecase.QuoteUseCase
}

// NewApp builds the store selected by cfg and loads the quotes
func NewApp(ctx context.Context, cfg *config.Config, out io.Writer) (*App, error) {
	logger := logging.Setup(logging.ParamsFromConfig(cfg))

	store, err := newStore(cfg)
	if err != nil {
		return nil, err
	}

	view := presenter.NewConsolePresenter(out)
	httpClient := repository.NewHTTPClient(cfg, logger)

	quotes := usecase.NewQuoteUseCase(
		repository.NewQuoteRepository(cfg, store),
		repository.NewRemoteRepository(cfg, httpClient),
		view,
		usecase.WithLogger(logger),
	)
	if err := quotes.Initialize(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to initialize quotes: %w", err)
	}

	return &App{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		presenter: view,
		quotes:    quotes,
	}, nil
}

func newStore(cfg *config.Config) (repository.KeyValueStore, error) {
	switch cfg.StoreBackend {
	case config.BackendRedis:
		return repository.NewRedisStore(repository.NewRedisClient(cfg)), nil
	case config.BackendFile, "":
		return repository.NewFileStore(cfg.StoreDir)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// Close releases the store
func (a *App) Close() error {
	return a.store.Close()
}
