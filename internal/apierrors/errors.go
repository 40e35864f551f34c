// Package apierrors defines the closed set of error kinds the ledger API
// surfaces, and maps them to HTTP status codes. Only the HTTP layer
// (internal/api) depends on this package; the core package internal/ledger
// imports neither it nor net/http.
package apierrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies one of the error kinds from the external interface
// contract. The set is closed; no other codes exist.
type Code string

const (
	CodeWrongArguments             Code = "WRONG_ARGUMENTS"
	CodeUserAlreadyExists          Code = "USER_ALREADY_EXISTS"
	CodeUserDoesNotExist           Code = "USER_DOES_NOT_EXIST"
	CodeNotEnoughMoney             Code = "NOT_ENOUGH_MONEY"
	CodeTooManyRequestsToUser      Code = "TOO_MANY_REQUESTS_TO_USER"
	CodeSenderDoesNotExist         Code = "SENDER_DOES_NOT_EXIST"
	CodeReceiverDoesNotExist       Code = "RECEIVER_DOES_NOT_EXIST"
	CodeTooManyRequestsToSender    Code = "TOO_MANY_REQUESTS_TO_SENDER"
	CodeTooManyRequestsToReceiver  Code = "TOO_MANY_REQUESTS_TO_RECEIVER"
)

// httpStatus maps each code to the status the API layer should return.
var httpStatus = map[Code]int{
	CodeWrongArguments:            http.StatusBadRequest,
	CodeUserAlreadyExists:         http.StatusConflict,
	CodeUserDoesNotExist:          http.StatusNotFound,
	CodeNotEnoughMoney:            http.StatusPaymentRequired,
	CodeTooManyRequestsToUser:     http.StatusTooManyRequests,
	CodeSenderDoesNotExist:        http.StatusNotFound,
	CodeReceiverDoesNotExist:      http.StatusNotFound,
	CodeTooManyRequestsToSender:   http.StatusTooManyRequests,
	CodeTooManyRequestsToReceiver: http.StatusTooManyRequests,
}

// Error is a coded error returned by the API layer.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// HTTPStatus returns the status code the API layer should write for err.
// Unrecognized errors map to 500.
func HTTPStatus(err error) int {
	var coded *Error
	if errors.As(err, &coded) {
		if status, ok := httpStatus[coded.Code]; ok {
			return status
		}
	}
	return http.StatusInternalServerError
}

// New builds an Error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func WrongArguments(reason string) *Error {
	return New(CodeWrongArguments, "wrong arguments: "+reason)
}

func UserAlreadyExists(user string) *Error {
	return New(CodeUserAlreadyExists, "user already exists: "+user)
}

func UserDoesNotExist(user string) *Error {
	return New(CodeUserDoesNotExist, "user does not exist: "+user)
}

func NotEnoughMoney() *Error {
	return New(CodeNotEnoughMoney, "not enough money")
}

func TooManyRequestsToUser(user string) *Error {
	return New(CodeTooManyRequestsToUser, "too many requests to user: "+user)
}

func SenderDoesNotExist(user string) *Error {
	return New(CodeSenderDoesNotExist, "sender does not exist: "+user)
}

func ReceiverDoesNotExist(user string) *Error {
	return New(CodeReceiverDoesNotExist, "receiver does not exist: "+user)
}

func TooManyRequestsToSender(user string) *Error {
	return New(CodeTooManyRequestsToSender, "too many requests to sender: "+user)
}

func TooManyRequestsToReceiver(user string) *Error {
	return New(CodeTooManyRequestsToReceiver, "too many requests to receiver: "+user)
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code == code
	}
	return false
}
