// Package lax implements tools for building easy RESTful APIs.
//
//      ^ ^
//  ("\(-_-)/")
//  )(       )(
// ((...) (...))
//
// Take it easy!
//
// Every response is wrapped in the marketplace envelope:
// {"code": ..., "data": ..., "msg": ...}.
package lax

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Envelope response codes.
const (
	CodeSuccess       = 200
	CodeError         = 500
	CodeInvalidParams = 400
)

// A flag for debugging the server.
var debug bool

// EnableDebugMode enables debugging for the API, so debug output is printed.
func EnableDebugMode() {
	debug = true
}

// DisableDebugMode disables debugging for the API, so debug output is hidden.
func DisableDebugMode() {
	debug = false
}

// DebugModeEnabled returns `true` if debug mode is enabled.
func DebugModeEnabled() bool {
	return debug
}

// Request wraps http.Request to provide convenience methods.
type Request struct {
	*http.Request
}

// JSON loads JSON data from a request into the given address.
func (request *Request) JSON(ptr interface{}) error {
	return json.NewDecoder(request.Body).Decode(ptr)
}

// BearerToken returns the token from the Authorization header, or "".
func (request *Request) BearerToken() string {
	header := request.Header.Get("Authorization")

	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}

	return strings.TrimPrefix(header, "Bearer ")
}

// MethodHandler is a handle for an HTTP method.
type MethodHandler = func(request *Request) interface{}

// View represents a view for a RESTful API.
type View struct {
	// The handler for HEAD requests.
	Head MethodHandler
	// The handler for GET requests.
	Get MethodHandler
	// The handler for POST requests.
	Post MethodHandler
	// The handler for PUT requests.
	Put MethodHandler
	// The handler for DELETE requests.
	Delete MethodHandler
}

// Response represents an envelope to return.
type Response struct {
	Code int         `json:"code"`
	Data interface{} `json:"data"`
	Msg  string      `json:"msg"`
}

// MakeResponse creates a success envelope with data.
func MakeResponse(data interface{}) *Response {
	return &Response{CodeSuccess, data, "ok"}
}

// MakeErrorResponse creates an error envelope with a code and message.
func MakeErrorResponse(code int, msg string) *Response {
	return &Response{code, nil, msg}
}

// MakeBadRequestResponse creates an invalid-params envelope from one object.
func MakeBadRequestResponse(data interface{}) *Response {
	switch v := data.(type) {
	case error:
		// Get the string from errors for invalid-params responses.
		return &Response{CodeInvalidParams, nil, v.Error()}
	case string:
		return &Response{CodeInvalidParams, nil, v}
	default:
		return &Response{CodeInvalidParams, v, "invalid params"}
	}
}

// A default handler for handling methods that are not allowed.
func methodNotAllowedHandler(request *Request) interface{} {
	return &Response{CodeInvalidParams, nil, "Method Not Allowed"}
}

// Get the pointer to the handler for the HTTP request method.
func dispatch(view *View, requestMethod string) MethodHandler {
	var handler MethodHandler

	if strings.EqualFold(requestMethod, "get") {
		handler = view.Get
	} else if strings.EqualFold(requestMethod, "post") {
		handler = view.Post
	} else if strings.EqualFold(requestMethod, "put") {
		handler = view.Put
	} else if strings.EqualFold(requestMethod, "delete") {
		handler = view.Delete
	} else if strings.EqualFold(requestMethod, "head") {
		handler = view.Head
	}

	if handler == nil {
		handler = methodNotAllowedHandler
	}

	return handler
}

// Normalise response data into an envelope we can write out.
func normalise(response interface{}) (*Response, error) {
	switch v := response.(type) {
	case *Response:
		return v, nil
	case error:
		return &Response{CodeError, nil, "Internal Server Error"}, v
	default:
		return MakeResponse(v), nil
	}
}

// Wrap creates an HandlerFunc from a View.
//
// The HTTP status is always 200; clients read the envelope code instead.
func Wrap(view View) http.HandlerFunc {
	return func(writer http.ResponseWriter, httpRequest *http.Request) {
		request := Request{httpRequest}
		method := dispatch(&view, request.Method)
		response, responseErr := normalise(method(&request))

		if responseErr != nil && debug {
			response.Msg = responseErr.Error()
		}

		writer.Header().Set("Content-Type", "application/json")

		outputEncoder := json.NewEncoder(writer)
		outputEncoder.SetEscapeHTML(false)

		if err := outputEncoder.Encode(response); err != nil {
			http.Error(
				writer,
				"Internal Server Error",
				http.StatusInternalServerError,
			)
		}
	}
}
