// Package api implements the HTTP client for the marketplace API: request
// construction, auth header injection, envelope validation, and the typed
// endpoint surface.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/dense-analysis/skinwarp/internal/currency"
)

// TokenSource supplies the persisted session token used when a request
// does not carry an explicit one. The user store is the usual source.
type TokenSource interface {
	Token() string
}

// Client talks to the marketplace API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	converter  *currency.Converter
}

// NewClient creates a Client for the API at baseURL. tokens may be nil
// for unauthenticated use.
func NewClient(baseURL string, tokens TokenSource, converter *currency.Converter) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		tokens:    tokens,
		converter: converter,
	}
}

// Params describes one request to the API.
type Params struct {
	// Method defaults to GET.
	Method string
	Query  url.Values
	// Body is JSON-encoded when present.
	Body any
	// Headers are merged last, so caller headers win on conflict.
	Headers map[string]string
	// Token overrides the token source for this request.
	Token string
}

// envelope is the wrapper around every API response.
type envelope struct {
	Code int             `json:"code"`
	Data json.RawMessage `json:"data"`
	Msg  string          `json:"msg"`
}

// fetch executes one request and decodes the envelope's data into out.
//
// Failures split into three classes the caller can tell apart:
// *RequestError for transport, *EnvelopeError for a non-success code,
// and *DecodeError for an unparsable body. Context cancellation is
// wrapped, never swallowed.
func (client *Client) fetch(ctx context.Context, endpoint string, params Params, out any) error {
	method := params.Method

	if method == "" {
		method = http.MethodGet
	}

	fullURL := client.baseURL + "/" + endpoint

	if len(params.Query) > 0 {
		fullURL += "?" + params.Query.Encode()
	}

	var bodyReader io.Reader

	if params.Body != nil {
		encoded, err := json.Marshal(params.Body)

		if err != nil {
			return &RequestError{URL: fullURL, Err: err}
		}

		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)

	if err != nil {
		return &RequestError{URL: fullURL, Err: err}
	}

	if params.Body != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	token := params.Token

	if token == "" && client.tokens != nil {
		token = client.tokens.Token()
	}

	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	for key, value := range params.Headers {
		request.Header.Set(key, value)
	}

	slog.Debug("fetch", "method", method, "url", fullURL)

	response, err := client.httpClient.Do(request)

	if err != nil {
		return &RequestError{URL: fullURL, Err: err}
	}

	defer response.Body.Close()

	content, err := io.ReadAll(response.Body)

	if err != nil {
		return &RequestError{URL: fullURL, Err: err}
	}

	var payload envelope

	if err := json.Unmarshal(content, &payload); err != nil {
		return &DecodeError{Err: err}
	}

	if payload.Code != CodeSuccess {
		return &EnvelopeError{Code: payload.Code, Msg: payload.Msg}
	}

	if out != nil && payload.Data != nil {
		if err := json.Unmarshal(payload.Data, out); err != nil {
			return &DecodeError{Err: err}
		}
	}

	return nil
}
