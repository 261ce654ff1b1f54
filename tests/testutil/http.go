package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/erp/puntoventa/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// APIClient sends requests straight into an engine under one tenant
type APIClient struct {
	Engine   *gin.Engine
	TenantID uuid.UUID
	// Prefix is prepended to every path, "/api/v1" by default
	Prefix string
}

// NewAPIClient creates a client for tenantID
func NewAPIClient(engine *gin.Engine, tenantID uuid.UUID) *APIClient {
	return &APIClient{Engine: engine, TenantID: tenantID, Prefix: "/api/v1"}
}

// ForTenant returns a client for another tenant on the same engine
func (c *APIClient) ForTenant(tenantID uuid.UUID) *APIClient {
	return &APIClient{Engine: c.Engine, TenantID: tenantID, Prefix: c.Prefix}
}

// Do sends body as JSON. A nil body sends no payload.
func (c *APIClient) Do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		reader = ToJSONReader(t, body)
	}
	req := httptest.NewRequest(method, c.Prefix+path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.TenantID != uuid.Nil {
		req.Header.Set("X-Tenant-ID", c.TenantID.String())
	}
	w := httptest.NewRecorder()
	c.Engine.ServeHTTP(w, req)
	return w
}

// MustDo is Do that requires the expected status
func (c *APIClient) MustDo(t *testing.T, method, path string, body any, status int) *httptest.ResponseRecorder {
	t.Helper()
	w := c.Do(t, method, path, body)
	require.Equal(t, status, w.Code, "%s %s: %s", method, path, w.Body.String())
	return w
}

// DecodeData unmarshals the data field of a success envelope into T
func DecodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope), w.Body.String())
	require.True(t, envelope.Success, w.Body.String())

	var data T
	require.NoError(t, json.Unmarshal(envelope.Data, &data))
	return data
}

// RequireError asserts an error envelope with status and API code
func RequireError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) dto.ErrorInfo {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.False(t, resp.Success)
	require.NotNil(t, resp.Error, w.Body.String())
	require.Equal(t, code, resp.Error.Code, w.Body.String())
	return *resp.Error
}

// ToJSONReader marshals v for a request body
func ToJSONReader(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}
