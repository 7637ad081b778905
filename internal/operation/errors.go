package operation

import "fmt"

// ErrorCode identifies the validation rule an operation violated.
type ErrorCode string

const (
	CodeEmptyOperationID      ErrorCode = "EMPTY_OPERATION_ID"
	CodeDuplicateOperationID  ErrorCode = "DUPLICATE_OPERATION_ID"
	CodeEmptyUserID           ErrorCode = "EMPTY_USER_ID"
	CodeNonNumericAmount      ErrorCode = "NON_NUMERIC_AMOUNT"
	CodeNonPositiveAmount     ErrorCode = "NON_POSITIVE_AMOUNT"
	CodeEmptyCurrency         ErrorCode = "EMPTY_CURRENCY"
	CodeInvalidCurrencyFormat ErrorCode = "INVALID_CURRENCY_FORMAT"
	CodeWrongDirection        ErrorCode = "WRONG_DIRECTION"
)

// ValidationError reports the first rule an inbound operation broke.
type ValidationError struct {
	Code    ErrorCode
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches any ValidationError carrying the same code, so callers can use
// errors.Is(err, operation.ErrDuplicateOperationID).
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && t.Code == e.Code
}

func newValidationError(code ErrorCode, message string) *ValidationError {
	return &ValidationError{Code: code, Message: message}
}

var (
	ErrEmptyOperationID      = newValidationError(CodeEmptyOperationID, "the message ID is empty")
	ErrDuplicateOperationID  = newValidationError(CodeDuplicateOperationID, "the message ID already exists")
	ErrEmptyUserID           = newValidationError(CodeEmptyUserID, "the user ID is empty")
	ErrNonNumericAmount      = newValidationError(CodeNonNumericAmount, "the amount is non-numeric")
	ErrNonPositiveAmount     = newValidationError(CodeNonPositiveAmount, "the amount is less than or equal to 0")
	ErrEmptyCurrency         = newValidationError(CodeEmptyCurrency, "the currency is empty")
	ErrInvalidCurrencyFormat = newValidationError(CodeInvalidCurrencyFormat, "the currency must be 3 uppercase letters")
	ErrWrongDirection        = newValidationError(CodeWrongDirection, "the direction does not match the endpoint")
)
