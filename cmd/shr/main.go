package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IBM/sarama"

	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/app/commands"
	availabilityapp "github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/app/handlers/availability"
	bookingapp "github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/app/handlers/booking"
	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/app/middleware"
	appoutbox "github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/app/outbox"
	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/app/queries"
	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/app/uow"
	domainproperty "github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/property"
	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/infra/broker/kafka"
	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/infra/config"
	mongodb "github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/infra/db/mongo"
	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/infra/export"
	ginserver "github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/infra/http/gin"
	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/infra/obs"
	infraoutbox "github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/infra/outbox"
	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/infra/payments"
	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/infra/storage/memory"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration invalid", "error", err)
		os.Exit(1)
	}

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("application bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer app.close(logger)

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Checks: app.healthChecks,
	}, app.handlers)

	for _, task := range app.background {
		go task(ctx)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers     ginserver.Handlers
	healthChecks map[string]func() error
	background   []func(context.Context)
	closers      []func(context.Context) error
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	app := &application{healthChecks: map[string]func() error{}}

	var (
		uowFactory uow.UoWFactory
		idStore    middleware.IdempotencyStore
		outboxImpl appoutbox.Outbox
	)

	switch cfg.StorageMode {
	case "memory":
		factory := memory.NewFactory()
		uowFactory = factory
		idStore = memory.NewIdempotencyStore(cfg.IdempotencyTTL)
		outboxImpl = memory.NewOutbox()
	default:
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, client.Close)
		app.healthChecks["mongo"] = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		}
		uowFactory = mongodb.NewFactory(client.DB)
		idStore = mongodb.NewIdempotencyStore(client.DB, cfg.IdempotencyTTL)
		store := infraoutbox.NewStore(client.DB)
		outboxImpl = store

		if len(cfg.KafkaBrokers) > 0 {
			producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
			if err != nil {
				return nil, err
			}
			app.closers = append(app.closers, func(context.Context) error { return producer.Close() })
			worker := &infraoutbox.Worker{
				Store:       store,
				Producer:    producer,
				Interval:    cfg.OutboxPollInterval,
				TopicPrefix: cfg.KafkaTopicPrefix,
				Backoff:     cfg.RetryBackoff,
			}
			app.background = append(app.background, func(runCtx context.Context) {
				if err := worker.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("outbox worker stopped", "error", err)
				}
			})
		}
	}

	if len(cfg.KafkaBrokers) > 0 && cfg.ExportEndpoint != "" {
		sync := &export.TableSync{
			Client:   &http.Client{Timeout: cfg.ExportTimeout},
			Endpoint: cfg.ExportEndpoint,
			Logger:   logger,
			Timeout:  cfg.ExportTimeout,
		}
		consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, "booking-export", sarama.NewConfig(), &export.Consumer{Sync: sync, Logger: logger})
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, func(context.Context) error { return consumer.Close() })
		topic := cfg.KafkaTopicPrefix + "booking.events.v1"
		app.background = append(app.background, func(runCtx context.Context) {
			if err := consumer.Run(runCtx, []string{topic}); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("export consumer stopped", "error", err)
			}
		})
	}

	settings := bookingapp.PricingSettings{
		Fees: domainproperty.ServiceFees{
			GuestBookingFeePercent: cfg.GuestFeePercent,
			HostServiceFeePercent:  cfg.HostFeePercent,
		},
		VATPercent:          cfg.VATPercent,
		BreakdownByteBudget: cfg.BreakdownByteBudget,
	}
	processor := payments.OfflineProcessor{Logger: logger}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, bookingapp.RequestBookingCommand{}.Key(), &bookingapp.RequestBookingHandler{
		UoWFactory: uowFactory,
		Payments:   processor,
		Settings:   settings,
		Outbox:     outboxImpl,
	})
	commands.RegisterHandler(commandBus, bookingapp.ConfirmBookingCommand{}.Key(), &bookingapp.ConfirmBookingHandler{
		UoWFactory: uowFactory,
		Outbox:     outboxImpl,
	})
	commands.RegisterHandler(commandBus, bookingapp.CancelBookingCommand{}.Key(), &bookingapp.CancelBookingHandler{
		UoWFactory: uowFactory,
		Payments:   processor,
		Outbox:     outboxImpl,
		Logger:     logger,
	})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, bookingapp.GetQuoteQuery{}.Key(), &bookingapp.GetQuoteHandler{
		UoWFactory: uowFactory,
		Settings:   settings,
	})
	queries.RegisterHandler(queryBus, availabilityapp.CheckAvailabilityQuery{}.Key(), &availabilityapp.CheckAvailabilityHandler{
		UoWFactory: uowFactory,
	})
	queries.RegisterHandler(queryBus, bookingapp.ListGuestBookingsQuery{}.Key(), &bookingapp.ListGuestBookingsHandler{
		UoWFactory: uowFactory,
		Logger:     logger,
	})

	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Idempotency(idStore, nil),
		middleware.Transaction(uowFactory, nil),
		middleware.OutboxFlush(outboxImpl),
	)
	queryBusWithMiddleware := middleware.ChainQueries(queryBus)

	if len(cfg.KafkaBrokers) > 0 && cfg.PaymentsTopic != "" {
		intake := &payments.Consumer{Commands: commandBusWithMiddleware, Logger: logger}
		consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, "payments-intake", sarama.NewConfig(), intake)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, func(context.Context) error { return consumer.Close() })
		app.background = append(app.background, func(runCtx context.Context) {
			if err := consumer.Run(runCtx, []string{cfg.PaymentsTopic}); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("payments consumer stopped", "error", err)
			}
		})
	}

	app.handlers = ginserver.Handlers{
		Booking: ginserver.BookingHandler{
			Commands: commandBusWithMiddleware,
			Queries:  queryBusWithMiddleware,
		},
		Availability: ginserver.AvailabilityHandler{
			Queries: queryBusWithMiddleware,
		},
		Webhooks: ginserver.WebhookHandler{
			Commands: commandBusWithMiddleware,
		},
	}
	return app, nil
}

func (a *application) close(logger *slog.Logger) {
	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, closeFn := range a.closers {
		if err := closeFn(closeCtx); err != nil {
			logger.Warn("shutdown close failed", "error", err)
		}
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
