package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/baedalgo/delivery/internal/adapter/handler"
	"github.com/baedalgo/delivery/internal/adapter/notifier"
	"github.com/baedalgo/delivery/internal/adapter/storage"
	"github.com/baedalgo/delivery/internal/config"
	"github.com/baedalgo/delivery/internal/core/service"
	"github.com/baedalgo/delivery/internal/port"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize MySQL
	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open mysql")
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to ping mysql")
	}
	logger.Info().Msg("connected to mysql")

	// Initialize Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		PoolSize: 100,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}
	logger.Info().Msg("connected to redis")

	// Initialize adapters
	mysqlAdapter := storage.NewMySQLAdapter(db)
	redisAdapter := storage.NewRedisAdapter(rdb)
	userDirectory := storage.NewMySQLUserDirectory(db)

	// Notification sinks; both optional
	var sinks []port.Notifier
	if cfg.Slack.Enabled() {
		sinks = append(sinks, notifier.NewSlackNotifier(cfg.Slack.Token, cfg.Slack.Channel))
		logger.Info().Str("channel", cfg.Slack.Channel).Msg("slack sink enabled")
	}
	var amqpConn *amqp.Connection
	if cfg.AMQP.Enabled() {
		amqpConn, err = amqp.Dial(cfg.AMQP.URL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect rabbitmq")
		}
		publisher, err := notifier.NewAMQPPublisher(amqpConn, cfg.AMQP.Exchange)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create amqp publisher")
		}
		sinks = append(sinks, publisher)
		logger.Info().Str("exchange", cfg.AMQP.Exchange).Msg("amqp sink enabled")
	}
	if len(sinks) == 0 {
		logger.Warn().Msg("no notification sinks configured")
	}

	// Dispatcher and services
	dispatcher := service.NewDispatcher(sinks,
		cfg.Dispatcher.QueueSize, cfg.Dispatcher.Workers, cfg.Dispatcher.SendTimeout, logger)
	dispatcher.Start()

	orderService := service.NewOrderService(mysqlAdapter, userDirectory, dispatcher, logger)
	searchService := service.NewSearchService(mysqlAdapter, redisAdapter, logger)

	// HTTP server
	httpHandler := handler.NewHTTPHandler(orderService, searchService, redisAdapter, logger)
	mux := http.NewServeMux()
	httpHandler.Register(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	httpServer := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: mux,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", cfg.HTTP.Addr).Msg("http server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server error")
	}
	logger.Info().Msg("http server stopped")

	// Drain pending notifications before dropping connections
	dispatcher.Close()
	logger.Info().Msg("dispatcher drained")

	if amqpConn != nil {
		amqpConn.Close()
	}
	rdb.Close()
	db.Close()
	logger.Info().Msg("connections closed")
}
