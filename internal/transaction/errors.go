package transaction

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/txservice/internal/operation"
)

// ErrorBody is the single error shape returned by the service. Code is the
// HTTP status. ErrorCode names the violated rule for validation failures.
type ErrorBody struct {
	Message   string    `json:"message"`
	Code      string    `json:"code"`
	ErrorCode string    `json:"errorCode,omitempty"`
	TimeStamp time.Time `json:"timeStamp"`
	Path      string    `json:"path"`
	Reason    string    `json:"reason"`
}

// ErrorHandler translates handler errors into status codes: validation
// failures are 422, Fiber errors keep their code, everything else is 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status := http.StatusInternalServerError
	reason := err.Error()
	var errorCode string

	var verr *operation.ValidationError
	var ferr *fiber.Error
	switch {
	case errors.As(err, &verr):
		status = http.StatusUnprocessableEntity
		errorCode = string(verr.Code)
		reason = verr.Message
	case errors.As(err, &ferr):
		status = ferr.Code
		reason = ferr.Message
	}

	body := ErrorBody{
		Message:   http.StatusText(status),
		Code:      strconv.Itoa(status),
		ErrorCode: errorCode,
		TimeStamp: time.Now().UTC(),
		Path:      c.Path(),
		Reason:    reason,
	}
	return c.Status(status).JSON(body)
}
