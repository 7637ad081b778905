package transaction

import (
	"github.com/congo-pay/txservice/internal/money"
	"github.com/congo-pay/txservice/internal/operation"
)

// Amount is the money object shared by requests and responses.
type Amount struct {
	Amount        string              `json:"amount"`
	Currency      string              `json:"currency"`
	DebitOrCredit operation.Direction `json:"debitOrCredit"`
}

// Request is the body of PUT /load and PUT /authorization.
type Request struct {
	MessageID         string `json:"messageId"`
	UserID            string `json:"userId"`
	TransactionAmount Amount `json:"transactionAmount"`
}

// Response reports the balance after an operation.
type Response struct {
	MessageID    string               `json:"messageId"`
	UserID       string               `json:"userId"`
	ResponseCode operation.ResultCode `json:"responseCode"`
	Balance      BalanceAmount        `json:"balance"`
}

// BalanceAmount is Amount with a typed, always two-decimal value.
type BalanceAmount struct {
	Amount        money.Money         `json:"amount"`
	Currency      string              `json:"currency"`
	DebitOrCredit operation.Direction `json:"debitOrCredit"`
}

func (r Request) toOperation() operation.Request {
	return operation.Request{
		OperationID: r.MessageID,
		UserID:      r.UserID,
		Amount:      r.TransactionAmount.Amount,
		Currency:    r.TransactionAmount.Currency,
		Direction:   r.TransactionAmount.DebitOrCredit,
	}
}

func toResponse(out operation.Outcome) Response {
	return Response{
		MessageID:    out.OperationID,
		UserID:       out.UserID,
		ResponseCode: out.Result,
		Balance: BalanceAmount{
			Amount:        out.Balance,
			Currency:      out.Currency,
			DebitOrCredit: out.Direction,
		},
	}
}
