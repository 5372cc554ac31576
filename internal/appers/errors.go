package appers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofrs/uuid"
)

// InvariantViolationError marks a data-consistency bug upstream: the router
// produced an impossible action set, or completion was attempted on an
// already-completed case. Fatal for that case, never retried silently.
type InvariantViolationError struct {
	CaseID uuid.UUID
	Reason string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("invariant violation on case %s: %s", e.CaseID, e.Reason)
}

func NewInvariantViolation(caseID uuid.UUID, reason string) error {
	return &InvariantViolationError{CaseID: caseID, Reason: reason}
}

func IsInvariantViolation(err error) bool {
	var iv *InvariantViolationError
	return errors.As(err, &iv)
}

// AdapterError wraps a failed synchronous call to the legacy or tracking
// system. The whole completion attempt aborts and is replayed next tick.
type AdapterError struct {
	System string
	Err    error
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("%s call failed: %v", e.System, e.Err)
}

func (e *AdapterError) Unwrap() error { return e.Err }

func NewAdapterError(system string, err error) error {
	return &AdapterError{System: system, Err: err}
}

var (
	// ErrAlreadyCompleted is returned by the completion transaction when the
	// completion record is already set. Surfaced as an invariant violation.
	ErrAlreadyCompleted = errors.New("case already completed")
)

type ErrorResp struct {
	StatusCode int    `json:"statusCode,omitempty"`
	StatusDesc string `json:"statusDesc,omitempty"`
}

func (e ErrorResp) Error() string {
	return e.StatusDesc
}

var (
	ErrCaseNotFound = ErrorResp{
		http.StatusNotFound,
		"case not found",
	}
	ErrOutboxNotFound = ErrorResp{
		http.StatusNotFound,
		"outbox record not found",
	}
	ErrOutboxNotRequeueable = ErrorResp{
		http.StatusConflict,
		"only FAILED outbox records can be requeued",
	}
)

func SanitizeError(c *fiber.Ctx, err error) error {
	var errResp ErrorResp

	if ok := errors.As(err, &errResp); ok {
		return c.Status(errResp.StatusCode).JSON(fiber.Map{
			"message": errResp.StatusDesc,
		})
	}
	return NewErr(c, http.StatusInternalServerError, err)
}

func NewErr(ctx *fiber.Ctx, status int, err error) error {
	return ctx.Status(status).JSON(fiber.Map{
		"message": err.Error(),
	})
}
