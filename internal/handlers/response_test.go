package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/services"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestHandleServiceErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", services.NewNotFoundError("order", "o-1"), http.StatusNotFound},
		{"forbidden", services.NewForbiddenError("order belongs to another customer"), http.StatusForbidden},
		{"validation", services.NewValidationError("quantity", "must be positive"), http.StatusBadRequest},
		{"invalid state", services.NewInvalidStateError("submit design", "approved", "draft"), http.StatusBadRequest},
		{"conflict", services.NewConflictError("return", "already exists"), http.StatusConflict},
		{"upstream", services.NewUpstreamError("stripe", "declined", nil), http.StatusBadRequest},
		{"wrapped not found", fmt.Errorf("checkout: %w", services.NewNotFoundError("stock", "s-1")), http.StatusNotFound},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		c, w := testContext()
		HandleServiceError(c, testLogger(), tc.err)
		assert.Equal(t, tc.want, w.Code, tc.name)
	}
}

func TestHandleServiceErrorHidesInternalDetails(t *testing.T) {
	c, w := testContext()
	HandleServiceError(c, testLogger(), errors.New("dial tcp 10.0.0.5:5432: connection refused"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Internal server error", body["message"])
	assert.NotContains(t, w.Body.String(), "5432")
}

func TestSuccessResponseEnvelope(t *testing.T) {
	c, w := testContext()
	SuccessResponse(c, http.StatusCreated, "Order created", gin.H{"id": "o-1"})

	assert.Equal(t, http.StatusCreated, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Order created", body["message"])
	assert.NotEmpty(t, body["timestamp"])
	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "o-1", data["id"])
}

func TestSuccessResponseOmitsNilData(t *testing.T) {
	c, w := testContext()
	SuccessResponse(c, http.StatusOK, "Deleted", nil)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	_, present := body["data"]
	assert.False(t, present)
}
