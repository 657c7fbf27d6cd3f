package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erp/credit/internal/domain/identity"
	"github.com/erp/credit/internal/domain/shared"
	"github.com/erp/credit/internal/interfaces/http/dto"
	"github.com/erp/credit/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// testRequest describes one call against a handler router
type testRequest struct {
	method string
	path   string
	body   any
	tenant uuid.UUID
	actor  identity.Actor
}

// newTestRouter mounts register on an engine whose first middleware plays
// the part of Auth: the tenant and actor of each request come from the
// X-Test-Tenant header and the actor stored in actors.
func newTestRouter(register func(r *gin.Engine)) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(func(c *gin.Context) {
		if raw := c.GetHeader("X-Test-Tenant"); raw != "" {
			c.Set(middleware.TenantIDKey, uuid.MustParse(raw))
		}
		if raw := c.GetHeader("X-Test-Actor"); raw != "" {
			var a struct {
				UserID uuid.UUID
				Name   string
				Caps   []string
			}
			_ = json.Unmarshal([]byte(raw), &a)
			c.Set(middleware.ActorKey, identity.Actor{UserID: a.UserID, Name: a.Name, Capabilities: identity.ParseCapabilities(a.Caps...)})
		}
		c.Next()
	})
	register(r)
	return r
}

func perform(t *testing.T, r *gin.Engine, req testRequest) (*httptest.ResponseRecorder, dto.Response) {
	t.Helper()

	var body *bytes.Reader
	switch b := req.body.(type) {
	case nil:
		body = bytes.NewReader(nil)
	case string:
		body = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	httpReq := httptest.NewRequest(req.method, req.path, body)
	httpReq.Header.Set("Content-Type", "application/json")
	if req.tenant != uuid.Nil {
		httpReq.Header.Set("X-Test-Tenant", req.tenant.String())
	}
	if req.actor.UserID != uuid.Nil {
		caps := make([]string, 0)
		for _, c := range req.actor.Capabilities.List() {
			caps = append(caps, c.String())
		}
		raw, _ := json.Marshal(map[string]any{"UserID": req.actor.UserID, "Name": req.actor.Name, "Caps": caps})
		httpReq.Header.Set("X-Test-Actor", string(raw))
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httpReq)

	var resp dto.Response
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w, resp
}

// ==================== BaseHandler ====================

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{shared.ErrNotFound, http.StatusNotFound, dto.ErrCodeNotFound},
		{shared.NewDomainError("ITEM_NOT_FOUND", "Line not found"), http.StatusNotFound, dto.ErrCodeNotFound},
		{shared.NewDomainError(shared.CodeForbidden, "Only sales credit users may approve"), http.StatusForbidden, dto.ErrCodeForbidden},
		{shared.NewDomainError(shared.CodeLicenseInvalid, "License expired"), http.StatusUnprocessableEntity, dto.ErrCodeLicenseInvalid},
		{shared.NewDomainError(shared.CodeConcurrencyConflict, "Modified concurrently"), http.StatusConflict, dto.ErrCodeConcurrencyConflict},
		{shared.NewDomainError(shared.CodeConsistency, "Residual out of range"), http.StatusConflict, dto.ErrCodeConsistency},
		{shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive"), http.StatusBadRequest, dto.ErrCodeInvalidInput},
		{shared.NewDomainError("ALREADY_APPLIED", "Payment already applied"), http.StatusUnprocessableEntity, dto.ErrCodeInvalidState},
		{fmt.Errorf("wrapped: %w", shared.NewDomainError(shared.CodeInvalidState, "Order is not a draft")), http.StatusUnprocessableEntity, dto.ErrCodeInvalidState},
		{errors.New("pq: connection reset"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			h := &BaseHandler{}
			r := newTestRouter(func(r *gin.Engine) {
				r.GET("/x", func(c *gin.Context) { h.HandleError(c, tt.err) })
			})

			w, resp := perform(t, r, testRequest{method: http.MethodGet, path: "/x"})

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.RequestID)
			if tt.wantStatus == http.StatusInternalServerError {
				assert.Equal(t, "An unexpected error occurred", resp.Error.Message)
			}
		})
	}
}

func TestBaseHandler_PathAndTenant(t *testing.T) {
	h := &BaseHandler{}
	r := newTestRouter(func(r *gin.Engine) {
		r.GET("/orders/:id", func(c *gin.Context) {
			if _, ok := h.tenantID(c); !ok {
				return
			}
			id, ok := h.pathUUID(c, "id", "order")
			if !ok {
				return
			}
			h.Success(c, id)
		})
	})

	t.Run("missing tenant", func(t *testing.T) {
		w, resp := perform(t, r, testRequest{method: http.MethodGet, path: "/orders/" + uuid.NewString()})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrCodeUnauthorized, resp.Error.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		w, resp := perform(t, r, testRequest{method: http.MethodGet, path: "/orders/42", tenant: uuid.New()})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid order ID format", resp.Error.Message)
	})

	t.Run("ok", func(t *testing.T) {
		id := uuid.New()
		w, resp := perform(t, r, testRequest{method: http.MethodGet, path: "/orders/" + id.String(), tenant: uuid.New()})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, id.String(), resp.Data)
	})
}

func TestBaseHandler_SuccessWithMeta(t *testing.T) {
	h := &BaseHandler{}
	r := newTestRouter(func(r *gin.Engine) {
		r.GET("/x", func(c *gin.Context) { h.SuccessWithMeta(c, []int{1, 2}, 45, 2, 20) })
	})

	w, resp := perform(t, r, testRequest{method: http.MethodGet, path: "/x"})

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(45), resp.Meta.Total)
	assert.Equal(t, 3, resp.Meta.TotalPages)
}
