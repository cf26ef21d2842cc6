package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/api-sage/cashflow-ledger/src/internal/adapter/events"
	"github.com/api-sage/cashflow-ledger/src/internal/adapter/feed"
	"github.com/api-sage/cashflow-ledger/src/internal/adapter/http/controller"
	"github.com/api-sage/cashflow-ledger/src/internal/adapter/http/middleware"
	"github.com/api-sage/cashflow-ledger/src/internal/adapter/http/router"
	"github.com/api-sage/cashflow-ledger/src/internal/adapter/queue"
	"github.com/api-sage/cashflow-ledger/src/internal/adapter/repository/memory"
	"github.com/api-sage/cashflow-ledger/src/internal/adapter/repository/postgres"
	"github.com/api-sage/cashflow-ledger/src/internal/adapter/repository/sqlite"
	"github.com/api-sage/cashflow-ledger/src/internal/config"
	"github.com/api-sage/cashflow-ledger/src/internal/domain"
	"github.com/api-sage/cashflow-ledger/src/internal/logger"
	"github.com/api-sage/cashflow-ledger/src/internal/metrics"
	"github.com/api-sage/cashflow-ledger/src/internal/usecase/engine"
	"github.com/api-sage/cashflow-ledger/src/internal/usecase/services"
)

const requestTimeout = 30 * time.Second

// app holds every long-lived dependency of a running process.
type app struct {
	cfg      config.Config
	store    domain.Store
	engine   *engine.Engine
	broker   *events.Broker
	metrics  *metrics.Metrics
	consumer *queue.MovementConsumer
	closers  []func() error
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	a := &app{cfg: cfg, broker: events.NewBroker(events.DefaultBufferSize)}
	a.closers = append(a.closers, func() error { a.broker.Close(); return nil })

	base, err := a.openStore(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	sinks := []events.Publisher{a.broker}

	var rabbit *queue.RabbitMQ
	if cfg.RabbitMQURI != "" {
		rabbit, err = queue.Dial(cfg.RabbitMQURI, cfg.EventsQueue, cfg.MovementsQueue)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.closers = append(a.closers, func() error { rabbit.Close(); return nil })
		if cfg.EventsQueue != "" {
			sinks = append(sinks, queue.NewEventPublisher(rabbit.Channel(), cfg.EventsQueue))
		}
		logger.Info("rabbitmq connected", logger.Fields{
			"eventsQueue":    cfg.EventsQueue,
			"movementsQueue": cfg.MovementsQueue,
		})
	}

	if cfg.MongoURI != "" {
		client, collection, err := feed.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.closers = append(a.closers, func() error {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return client.Disconnect(shutdownCtx)
		})
		sinks = append(sinks, feed.NewProjection(collection))
		logger.Info("transaction feed connected", logger.Fields{"database": cfg.MongoDatabase})
	}

	a.store = events.NewPublishingStore(base, sinks...)
	a.engine = engine.New(a.store, engine.Options{
		MaxAttempts: cfg.MaxCommitAttempts,
		Backoff:     cfg.RetryBackoff,
	})
	if cfg.MetricsEnabled {
		a.metrics = metrics.New()
	}
	if rabbit != nil && cfg.MovementsQueue != "" {
		a.consumer = queue.NewMovementConsumer(rabbit.Channel(), cfg.MovementsQueue, a.engine)
	}

	return a, nil
}

func (a *app) openStore(ctx context.Context) (domain.Store, error) {
	switch a.cfg.StoreDriver {
	case config.StorePostgres:
		db, err := postgres.Open(ctx, a.cfg.DatabaseDSN, postgres.DefaultPoolConfig())
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		return postgres.NewStore(db), nil
	case config.StoreSQLite:
		store, err := sqlite.Open(ctx, a.cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store.Close)
		return store, nil
	case config.StoreMemory, "":
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", a.cfg.StoreDriver)
	}
}

func (a *app) handler() http.Handler {
	opts := router.Options{
		AuthMiddleware: middleware.BasicAuth(a.cfg.ChannelID, a.cfg.ChannelKey),
		RequestTimeout: requestTimeout,
		Streams:        []router.RouteRegistrar{controller.NewEventController(a.broker)},
	}
	if a.metrics != nil {
		opts.MetricsHandler = a.metrics.Handler()
	}

	return router.New(opts,
		controller.NewClientController(services.NewClientService(a.store)),
		controller.NewMovementController(
			services.NewMovementService(a.engine, a.store, a.metrics),
			services.NewTransactionService(a.store, a.store),
		),
	)
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
