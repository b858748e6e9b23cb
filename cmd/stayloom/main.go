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

	"stayloom/internal/app/commands"
	catalogapp "stayloom/internal/app/handlers/catalog"
	paymentapp "stayloom/internal/app/handlers/payment"
	reservationapp "stayloom/internal/app/handlers/reservation"
	"stayloom/internal/app/middleware"
	appoutbox "stayloom/internal/app/outbox"
	"stayloom/internal/app/policies"
	"stayloom/internal/app/queries"
	"stayloom/internal/app/uow"
	"stayloom/internal/infra/broker/kafka"
	"stayloom/internal/infra/config"
	mongodb "stayloom/internal/infra/db/mongo"
	ginserver "stayloom/internal/infra/http/gin"
	"stayloom/internal/infra/obs"
	infraoutbox "stayloom/internal/infra/outbox"
	stripegw "stayloom/internal/infra/payments/stripe"
	"stayloom/internal/infra/storage/memory"
	redisstore "stayloom/internal/infra/storage/redis"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	cfg, err := config.Load()
	if err != nil {
		logger.Warn("using fallback configuration", "error", err)
		cfg.Env = env
		cfg.HTTPAddr = getenv("HTTP_ADDR", ":8080")
		cfg.StorageMode = "memory"
		cfg.BufferDaysBefore = 1
		cfg.BufferDaysAfter = 1
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	app, err := buildApplication(cfg, logger)
	if err != nil {
		logger.Error("application wiring failed", "error", err)
		os.Exit(1)
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	if app.worker != nil {
		go func() {
			if err := app.worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
		app.close()
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers ginserver.Handlers
	worker   *infraoutbox.Worker
	ready    func() error
	close    func()
}

func buildApplication(cfg config.Config, logger *slog.Logger) (application, error) {
	var (
		uowFactory  uow.UoWFactory
		outboxStore appoutbox.Outbox
		idStore     middleware.IdempotencyStore
		worker      *infraoutbox.Worker
		ready       = func() error { return nil }
		closers     []func()
	)

	switch cfg.StorageMode {
	case "mongo":
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return application{}, err
		}
		ready = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		}
		uowFactory = mongodb.Factory{
			DB:               client.DB,
			UnitsRepo:        mongodb.NewUnitRepository(client.DB),
			OccupancyLedger:  mongodb.NewOccupancyLedger(client.DB),
			BookingsRepo:     mongodb.NewBookingRepository(client.DB),
			TransactionsRepo: mongodb.NewTransactionRepository(client.DB),
		}
		store := infraoutbox.NewStore(client.DB)
		outboxStore = store
		idStore = mongodb.NewIdempotencyStore(client.DB, cfg.IdempotencyTTL)

		if len(cfg.KafkaBrokers) > 0 {
			producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
			if err != nil {
				return application{}, err
			}
			closers = append(closers, func() { _ = producer.Close() })
			worker = &infraoutbox.Worker{
				Store:       store,
				Producer:    producer,
				Interval:    cfg.OutboxPollInterval,
				TopicPrefix: cfg.KafkaTopicPrefix,
				Backoff:     cfg.RetryBackoff,
			}
		} else {
			logger.Warn("kafka brokers not configured, outbox events will not be published")
		}
	default:
		uowFactory = memory.Factory{
			UnitsRepo:        memory.NewUnitRepository(),
			OccupancyLedger:  memory.NewLedger(),
			BookingsRepo:     memory.NewBookingRepository(),
			TransactionsRepo: memory.NewTransactionRepository(),
		}
		outboxStore = memory.NewOutbox()
		idStore = memory.NewIdempotencyStore()
	}

	if cfg.RedisAddr != "" {
		redisClient := redisstore.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		closers = append(closers, func() { _ = redisClient.Close() })
		idStore = redisstore.NewIdempotencyStore(redisClient, cfg.IdempotencyTTL)
	}

	var payments policies.PaymentsPort
	if cfg.StripeAPIKey != "" {
		gateway, err := stripegw.NewGateway(cfg.StripeAPIKey, cfg.CheckoutSuccessURL, cfg.CheckoutCancelURL)
		if err != nil {
			return application{}, err
		}
		payments = gateway
	} else {
		logger.Warn("stripe not configured, using local checkout stub")
		payments = memory.Payments{}
	}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler[reservationapp.CreateReservationCommand, *reservationapp.CreateReservationResult](commandBus, reservationapp.CreateReservationCommand{}.Key(), &reservationapp.CreateReservationHandler{
		UoWFactory: uowFactory,
		Payments:   payments,
		Outbox:     outboxStore,
		SuccessURL: cfg.CheckoutSuccessURL,
		CancelURL:  cfg.CheckoutCancelURL,
	})
	commands.RegisterHandler[reservationapp.CancelReservationCommand, *reservationapp.CancelReservationResult](commandBus, reservationapp.CancelReservationCommand{}.Key(), &reservationapp.CancelReservationHandler{
		UoWFactory: uowFactory,
		Outbox:     outboxStore,
	})
	commands.RegisterHandler[reservationapp.RejectReservationCommand, *reservationapp.CancelReservationResult](commandBus, reservationapp.RejectReservationCommand{}.Key(), &reservationapp.RejectReservationHandler{
		UoWFactory: uowFactory,
		Outbox:     outboxStore,
	})
	commands.RegisterHandler[reservationapp.BlockDatesCommand, *reservationapp.BlockDatesResult](commandBus, reservationapp.BlockDatesCommand{}.Key(), &reservationapp.BlockDatesHandler{
		UoWFactory: uowFactory,
	})
	commands.RegisterHandler[reservationapp.UnblockDatesCommand, *reservationapp.BlockDatesResult](commandBus, reservationapp.UnblockDatesCommand{}.Key(), &reservationapp.UnblockDatesHandler{
		UoWFactory: uowFactory,
	})
	commands.RegisterHandler[paymentapp.PaymentEventCommand, *paymentapp.PaymentEventResult](commandBus, paymentapp.PaymentEventCommand{}.Key(), &paymentapp.PaymentEventHandler{
		UoWFactory:   uowFactory,
		Outbox:       outboxStore,
		BufferBefore: cfg.BufferDaysBefore,
		BufferAfter:  cfg.BufferDaysAfter,
		Logger:       logger,
	})
	commands.RegisterHandler[catalogapp.UpsertUnitCommand, *catalogapp.UnitView](commandBus, catalogapp.UpsertUnitCommand{}.Key(), &catalogapp.UpsertUnitHandler{
		UoWFactory: uowFactory,
	})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler[catalogapp.GetUnitQuery, *catalogapp.UnitView](queryBus, catalogapp.GetUnitQuery{}.Key(), &catalogapp.GetUnitHandler{UoWFactory: uowFactory})
	queries.RegisterHandler[catalogapp.ListUnitsQuery, []catalogapp.UnitView](queryBus, catalogapp.ListUnitsQuery{}.Key(), &catalogapp.ListUnitsHandler{UoWFactory: uowFactory})
	queries.RegisterHandler[catalogapp.GetCalendarQuery, *catalogapp.CalendarView](queryBus, catalogapp.GetCalendarQuery{}.Key(), &catalogapp.GetCalendarHandler{UoWFactory: uowFactory})
	queries.RegisterHandler[catalogapp.GetBookingQuery, *catalogapp.BookingView](queryBus, catalogapp.GetBookingQuery{}.Key(), &catalogapp.GetBookingHandler{UoWFactory: uowFactory})
	queries.RegisterHandler[catalogapp.ListGuestBookingsQuery, []catalogapp.BookingView](queryBus, catalogapp.ListGuestBookingsQuery{}.Key(), &catalogapp.ListGuestBookingsHandler{UoWFactory: uowFactory})

	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Validation(),
		middleware.Idempotency(idStore, nil),
		middleware.Transaction(uowFactory, nil),
		middleware.OutboxFlush(outboxStore),
	)
	queryBusWithMiddleware := middleware.ChainQueries(queryBus)

	handlers := ginserver.Handlers{
		Reservation: ginserver.ReservationHandler{
			Commands: commandBusWithMiddleware,
			Queries:  queryBusWithMiddleware,
		},
		Catalog: ginserver.CatalogHandler{
			Queries: queryBusWithMiddleware,
		},
		Payment: ginserver.PaymentWebhookHandler{
			Commands: commandBusWithMiddleware,
			Parser:   stripegw.WebhookParser{SigningSecret: cfg.StripeWebhookSecret},
			Logger:   logger,
		},
		Admin: ginserver.AdminHandler{
			Commands: commandBusWithMiddleware,
		},
	}

	return application{
		handlers: handlers,
		worker:   worker,
		ready:    ready,
		close: func() {
			for _, fn := range closers {
				fn()
			}
		},
	}, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
