package operation

import (
	"fmt"
	"regexp"
	"time"

	"github.com/congo-pay/txservice/internal/money"
)

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// SeenChecker answers whether an operation id was already accepted.
type SeenChecker interface {
	HasSeen(id string) bool
}

// Validate turns a raw request into an Operation or returns the first broken
// rule. Rules are checked in a fixed order; only the duplicate check consults
// state, and nothing is mutated.
func Validate(req Request, required Direction, log SeenChecker) (Operation, error) {
	if req.OperationID == "" {
		return Operation{}, ErrEmptyOperationID
	}
	if log != nil && log.HasSeen(req.OperationID) {
		return Operation{}, ErrDuplicateOperationID
	}
	if req.UserID == "" {
		return Operation{}, ErrEmptyUserID
	}
	if !money.Valid(req.Amount) {
		return Operation{}, ErrNonNumericAmount
	}
	amount, err := money.Parse(req.Amount)
	if err != nil {
		return Operation{}, ErrNonNumericAmount
	}
	if !amount.IsPositive() {
		return Operation{}, ErrNonPositiveAmount
	}
	if req.Currency == "" {
		return Operation{}, ErrEmptyCurrency
	}
	if !currencyPattern.MatchString(req.Currency) {
		return Operation{}, ErrInvalidCurrencyFormat
	}
	if req.Direction != required {
		return Operation{}, &ValidationError{
			Code:    CodeWrongDirection,
			Message: fmt.Sprintf("this endpoint requires %s", required),
		}
	}

	return Operation{
		ID:        req.OperationID,
		UserID:    req.UserID,
		Amount:    amount.Truncate(),
		Currency:  req.Currency,
		Direction: required,
		CreatedAt: time.Now().UTC(),
	}, nil
}
