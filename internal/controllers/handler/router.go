package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"caseflow/pkg/config"
)

type Router struct {
	handler Handler
	app     *fiber.App
	conf    *config.Config
	logger  *zap.SugaredLogger
}

func NewRouter(handler Handler, app *fiber.App, conf *config.Config, logger *zap.SugaredLogger) *Router {
	return &Router{
		logger:  logger,
		app:     app,
		conf:    conf,
		handler: handler,
	}
}

func (r *Router) RegisterRouter() {
	r.app.Get("/health", r.handler.HealthCheck)

	r.app.Use(
		recover.New(recover.Config{
			EnableStackTrace: true,
		}),
		logger.New(),
	)

	// operator surface only; there is no business API on this service
	r.app.Route("/caseflow", func(router fiber.Router) {
		api := router.Group("/api")

		v1 := api.Group("/v1")

		v1.Get("/outbox/failed", r.handler.ListFailedOutbox)
		v1.Post("/outbox/:id/requeue", r.handler.RequeueOutbox)
	})
}
