package application

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"caseflow/internal/application/common"
	"caseflow/internal/application/repo"
	"caseflow/internal/application/service"
	use_cases "caseflow/internal/application/use-cases"
	"caseflow/internal/controllers/cron"
	"caseflow/internal/controllers/handler"
	"caseflow/internal/transport/legacy"
	"caseflow/internal/transport/producer"
	"caseflow/internal/transport/tracking"
	"caseflow/pkg/broker"
	"caseflow/pkg/config"
	"caseflow/pkg/db"
	"caseflow/pkg/httpclient"
	"caseflow/pkg/metrics"
)

type App struct {
	ctx            context.Context
	conf           *config.Config
	logger         *zap.SugaredLogger
	postgres       *db.Postgres
	httpServer     *fiber.App
	kafka          *broker.KafkaBroker
	cronController *cron.Controller
}

func NewApp(
	ctx context.Context,
	conf *config.Config,
	logger *zap.SugaredLogger,
	postgres *db.Postgres,
	httpServer *fiber.App,
	kafkaBroker *broker.KafkaBroker,
	m *metrics.Metrics) *App {
	logger.Infof("starting caseflow version %s", common.Version)

	store := repo.NewRepo(postgres, logger)
	tx := repo.NewTransactions(store, logger)
	kafkaProducer := producer.NewProducer(kafkaBroker, logger, conf.Broker.Kafka.MaxAttempts, m)

	// legacy and tracking adapters share one tuned transport behind a
	// retrying wrapper
	baseClient := httpclient.NewClient(conf.HTTPClient)
	retryClient := httpclient.NewRetryClient(baseClient, conf.HTTPClient.MaxRetries, logger)
	legacyClient := legacy.NewClient(retryClient, conf.Clients.LegacyURL, logger)
	trackingClient := tracking.NewClient(retryClient, conf.Clients.TrackingURL, logger)

	srv := service.NewService(store, tx, kafkaProducer, legacyClient, trackingClient, logger, conf.Clients.ActorID, m)
	uc := use_cases.NewUseCase(srv, logger, conf)
	h := handler.NewOpsHandler(uc, logger)
	r := handler.NewRouter(h, httpServer, conf, logger)

	cronController := cron.NewController(ctx, store, logger, m)
	if err := cronController.RegisterSweepJobs(uc, conf.Cron); err != nil {
		logger.Fatalf("registering sweep jobs failed: %v", err)
	}
	cronController.Start()

	r.RegisterRouter()

	return &App{
		ctx:            ctx,
		conf:           conf,
		logger:         logger,
		postgres:       postgres,
		httpServer:     httpServer,
		kafka:          kafkaBroker,
		cronController: cronController,
	}
}

func (a *App) Run() error {
	return a.httpServer.Listen(fmt.Sprintf(":%s", a.conf.Server.Port))
}

func (a *App) Shutdown() error {
	// Stop waits for running sweep bodies to finish.
	if a.cronController != nil {
		a.cronController.Stop()
	}
	if a.kafka != nil {
		if err := a.kafka.Close(); err != nil {
			a.logger.Warnf("closing kafka producer: %v", err)
		}
	}
	return a.httpServer.Shutdown()
}
