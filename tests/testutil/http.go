package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/erp/credit/internal/domain/identity"
	"github.com/erp/credit/internal/interfaces/http/middleware"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// APIClient sends requests to an in-process handler as one tenant and actor,
// using the header identity mode of the auth middleware.
type APIClient struct {
	t       *testing.T
	handler http.Handler
	base    string
	headers map[string]string
}

// NewAPIClient creates a client for the /api/v1 routes of handler
func NewAPIClient(t *testing.T, handler http.Handler, tenantID uuid.UUID) *APIClient {
	return &APIClient{
		t:       t,
		handler: handler,
		base:    "/api/v1",
		headers: map[string]string{middleware.TenantHeader: tenantID.String()},
	}
}

// As returns a copy of the client acting as actor
func (c *APIClient) As(actor identity.Actor) *APIClient {
	headers := make(map[string]string, len(c.headers)+3)
	for k, v := range c.headers {
		headers[k] = v
	}
	headers[middleware.UserIDHeader] = actor.UserID.String()
	headers[middleware.UserNameHeader] = actor.Name
	var caps []string
	for _, capability := range actor.Capabilities.List() {
		caps = append(caps, capability.String())
	}
	headers[middleware.CapabilitiesHeader] = strings.Join(caps, ",")
	return &APIClient{t: c.t, handler: c.handler, base: c.base, headers: headers}
}

// Do sends a request with an optional JSON body
func (c *APIClient) Do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		reader = ToJSONReader(c.t, body)
	}
	req := httptest.NewRequest(method, c.base+path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	return w
}

// Envelope is the response envelope with a typed payload
type Envelope[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// DecodeData asserts the status and returns the decoded data payload
func DecodeData[T any](t *testing.T, w *httptest.ResponseRecorder, status int) T {
	t.Helper()

	require.Equal(t, status, w.Code, w.Body.String())
	var env Envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "Failed to parse JSON response")
	require.True(t, env.Success, "Expected success to be true")
	return env.Data
}

// AssertErrorResponse asserts an error envelope with the given status and code
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()

	assert.Equal(t, status, w.Code, w.Body.String())
	var env Envelope[json.RawMessage]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "Failed to parse JSON response")
	assert.False(t, env.Success, "Expected success to be false")
	require.NotNil(t, env.Error, "Expected error object in response")
	assert.Equal(t, code, env.Error.Code, "Unexpected error code")
}

// ToJSONReader converts a value to a JSON io.Reader.
func ToJSONReader(t *testing.T, v any) io.Reader {
	t.Helper()

	data, err := json.Marshal(v)
	require.NoError(t, err, "Failed to marshal to JSON")
	return bytes.NewReader(data)
}
