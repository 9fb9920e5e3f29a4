package lax

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doRequest(t *testing.T, view View, method string, body string) *Response {
	t.Helper()

	var reader *strings.Reader

	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}

	request := httptest.NewRequest(method, "/test", reader)
	recorder := httptest.NewRecorder()
	Wrap(view)(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)

	response := &Response{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), response))

	return response
}

func TestWrapSuccessEnvelope(t *testing.T) {
	view := View{
		Get: func(request *Request) interface{} {
			return map[string]string{"hello": "world"}
		},
	}

	response := doRequest(t, view, http.MethodGet, "")

	assert.Equal(t, CodeSuccess, response.Code)
	assert.Equal(t, "ok", response.Msg)
	assert.Equal(t, map[string]interface{}{"hello": "world"}, response.Data)
}

func TestWrapErrorEnvelope(t *testing.T) {
	view := View{
		Get: func(request *Request) interface{} {
			return MakeErrorResponse(10003, "user does not exist")
		},
	}

	response := doRequest(t, view, http.MethodGet, "")

	assert.Equal(t, 10003, response.Code)
	assert.Equal(t, "user does not exist", response.Msg)
	assert.Nil(t, response.Data)
}

func TestWrapInternalError(t *testing.T) {
	view := View{
		Get: func(request *Request) interface{} {
			return errors.New("database exploded")
		},
	}

	response := doRequest(t, view, http.MethodGet, "")

	assert.Equal(t, CodeError, response.Code)
	// Internal details are hidden outside debug mode.
	assert.Equal(t, "Internal Server Error", response.Msg)
}

func TestWrapMethodNotAllowed(t *testing.T) {
	view := View{
		Get: func(request *Request) interface{} {
			return "ok"
		},
	}

	response := doRequest(t, view, http.MethodDelete, "")

	assert.Equal(t, CodeInvalidParams, response.Code)
}

func TestBearerToken(t *testing.T) {
	request := &Request{httptest.NewRequest(http.MethodGet, "/test", nil)}
	assert.Equal(t, "", request.BearerToken())

	request.Header.Set("Authorization", "Bearer abc123")
	assert.Equal(t, "abc123", request.BearerToken())

	request.Header.Set("Authorization", "Basic abc123")
	assert.Equal(t, "", request.BearerToken())
}

func TestRequestJSON(t *testing.T) {
	view := View{
		Post: func(request *Request) interface{} {
			form := struct {
				Name string `json:"name"`
			}{}

			if err := request.JSON(&form); err != nil {
				return MakeBadRequestResponse(err)
			}

			return form.Name
		},
	}

	response := doRequest(t, view, http.MethodPost, `{"name": "test"}`)
	assert.Equal(t, CodeSuccess, response.Code)
	assert.Equal(t, "test", response.Data)

	response = doRequest(t, view, http.MethodPost, `{not json`)
	assert.Equal(t, CodeInvalidParams, response.Code)
}
