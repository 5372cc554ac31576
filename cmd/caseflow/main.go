package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"caseflow/internal/application"
	"caseflow/pkg/broker"
	"caseflow/pkg/config"
	"caseflow/pkg/db"
	"caseflow/pkg/httpserver"
	"caseflow/pkg/metrics"
	"caseflow/pkg/observability"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conf, err := config.NewConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := observability.InitLogger(conf.LoggingLevel)

	logger.Infof("LOGGING_LEVEL = %s", conf.LoggingLevel)
	if strings.ToLower(conf.LoggingLevel) == "debug" {
		broker.EnableSaramaZapLogs(logger)
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	fiberServer := httpserver.NewFiber(conf, m)
	if fiberServer == nil {
		logger.Fatal(errors.New("fiber server is nil"))
	}

	store, err := db.NewPostgres(ctx, conf.Postgres)
	if err != nil {
		logger.Fatal(err)
	}

	kafka, err := broker.NewKafkaBroker(conf.Broker.Kafka, logger)
	if err != nil {
		logger.Fatal(err)
	}
	logger.Info("kafka broker created")

	server := application.NewApp(ctx, &conf, logger, store, fiberServer, kafka, m)

	logger.Info("caseflow service started")

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := server.Run(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Fatal("error listening for server: %w \n", err)
				return
			}

			logger.Infof("server %v closed\n", conf.Server.Port)
		}
	}()

	// graceful shutdown
	osSignal := <-interrupt
	switch osSignal {
	case os.Interrupt:
		logger.Infof("%v Got SIGINT...", conf.Server.Port)
	case syscall.SIGTERM:
		logger.Infof("%v Got SIGTERM...", conf.Server.Port)
	}

	cancel()

	if err := server.Shutdown(); err != nil {
		logger.Fatalf("server %v forced to shutdown: %v", conf.Server.Port, err)
		return
	}

	store.Close()
	logger.Info("postgres db connection closed")

	logger.Infof("server shutdown %v done", conf.Server.Port)
}
