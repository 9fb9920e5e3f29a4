package api

import (
	"fmt"
)

// Response codes used by the marketplace API envelope.
const (
	CodeSuccess       = 200
	CodeError         = 500
	CodeServerError   = 600
	CodeInvalidParams = 400

	CodeTokenExpired      = 10001
	CodeInvalidAuthHeader = 10002
	CodeUserNotExist      = 10003
	CodeUserWrongPassword = 10004
	CodeTokenCheckFailed  = 10005
	CodeRoleCheckFailed   = 10006
)

// RequestError is a transport failure: the HTTP call itself did not
// complete. Cancellation errors stay reachable through Unwrap.
type RequestError struct {
	URL string
	Err error
}

func (err *RequestError) Error() string {
	return fmt.Sprintf("request %s: %s", err.URL, err.Err)
}

func (err *RequestError) Unwrap() error {
	return err.Err
}

// EnvelopeError is a response whose envelope code is not CodeSuccess.
// The message is the server-supplied one, shown to the user as-is.
type EnvelopeError struct {
	Code int
	Msg  string
}

func (err *EnvelopeError) Error() string {
	if err.Msg == "" {
		return fmt.Sprintf("api error %d", err.Code)
	}

	return err.Msg
}

// DecodeError is a response body that could not be parsed.
type DecodeError struct {
	Err error
}

func (err *DecodeError) Error() string {
	return "malformed api response"
}

func (err *DecodeError) Unwrap() error {
	return err.Err
}
