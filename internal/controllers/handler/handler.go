package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"caseflow/internal/appers"
	"caseflow/internal/application/common"
	"caseflow/internal/application/entity"
	use_cases "caseflow/internal/application/use-cases"
)

type Handler interface {
	HealthCheck(c *fiber.Ctx) error
	ListFailedOutbox(c *fiber.Ctx) error
	RequeueOutbox(c *fiber.Ctx) error
}

type OpsHandler struct {
	usecase use_cases.UseCaser
	logger  *zap.SugaredLogger
}

func NewOpsHandler(usecase use_cases.UseCaser, logger *zap.SugaredLogger) *OpsHandler {
	return &OpsHandler{usecase: usecase, logger: logger}
}

func (h *OpsHandler) HealthCheck(c *fiber.Ctx) error {
	dbHealthy, kafkaHealthy, err := h.usecase.HealthCheck(c.Context())

	resp := entity.HealthCheckResponse{
		Status:  dbHealthy && kafkaHealthy,
		Message: "success",
		Version: common.Version,
		Checks: entity.HealthCheckResponseData{
			Database: entity.HealthCheckItem{Status: dbHealthy, Type: "postgresql"},
			Kafka:    entity.HealthCheckItem{Status: kafkaHealthy, Type: "kafka"},
		},
	}

	status := fiber.StatusOK
	if !resp.Status {
		resp.Message = "degraded"
		if err != nil {
			resp.Message = err.Error()
		}
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(resp)
}

// ListFailedOutbox exposes records stuck in FAILED so operators can inspect
// the stored error detail before deciding to requeue.
func (h *OpsHandler) ListFailedOutbox(c *fiber.Ctx) error {
	records, err := h.usecase.ListFailedOutbox(c.Context())
	if err != nil {
		h.logger.Errorf("list failed outbox: %v", err)
		return appers.SanitizeError(c, err)
	}

	return c.JSON(fiber.Map{
		"count":   len(records),
		"records": records,
	})
}

func (h *OpsHandler) RequeueOutbox(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return appers.NewErr(c, fiber.StatusBadRequest, err)
	}

	if err := h.usecase.RequeueOutbox(c.Context(), id); err != nil {
		h.logger.Warnf("[ID %d] requeue failed: %v", id, err)
		return appers.SanitizeError(c, err)
	}

	return c.JSON(fiber.Map{"message": "requeued"})
}
