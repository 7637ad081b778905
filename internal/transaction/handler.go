package transaction

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/txservice/internal/operation"
)

// Processor is the subset of the processor the handlers need.
type Processor interface {
	SubmitCredit(ctx context.Context, req operation.Request) (operation.Outcome, error)
	SubmitDebit(ctx context.Context, req operation.Request) (operation.Outcome, error)
	Reset(ctx context.Context) error
}

// Handler exposes load and authorization endpoints.
type Handler struct {
	processor Processor
}

// NewHandler constructs a transaction handler.
func NewHandler(processor Processor) *Handler {
	return &Handler{processor: processor}
}

// Load credits a balance. Validation errors are returned untouched so the
// error handler can render them as 422.
func (h *Handler) Load(c *fiber.Ctx) error {
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	out, err := h.processor.SubmitCredit(c.UserContext(), req.toOperation())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(toResponse(out))
}

// Authorization debits a balance. A declined authorization is still 201.
func (h *Handler) Authorization(c *fiber.Ctx) error {
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	out, err := h.processor.SubmitDebit(c.UserContext(), req.toOperation())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(toResponse(out))
}

// Reset clears every balance and accepted id.
func (h *Handler) Reset(c *fiber.Ctx) error {
	if err := h.processor.Reset(c.UserContext()); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
