//go:build unit || e2e

package httptest

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

// AssertSuccessResponse checks the status code and decodes the envelope's
// data payload into targetStruct when one is given.
func AssertSuccessResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, targetStruct any) {
	t.Helper()

	if !assert.Equal(t, expectedStatus, w.Code,
		fmt.Sprintf("Expected status %d, got %d. Response: %s", expectedStatus, w.Code, w.Body.String())) {
		return
	}

	if targetStruct == nil {
		return
	}

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	err := json.Unmarshal(w.Body.Bytes(), &envelope)
	assert.NoError(t, err, fmt.Sprintf("Failed to decode response JSON: %s", w.Body.String()))
	assert.True(t, envelope.Success, "Expected success=true in envelope")
	assert.NoError(t, json.Unmarshal(envelope.Data, targetStruct),
		fmt.Sprintf("Failed to decode data payload: %s", w.Body.String()))
}

// AssertErrorResponse checks the status code and, when expectedCode is not
// empty, the machine-readable error_code.
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedCode string) {
	t.Helper()

	assert.Equal(t, expectedStatus, w.Code,
		fmt.Sprintf("Expected status %d, got %d. Response: %s", expectedStatus, w.Code, w.Body.String()))

	var errorResponse struct {
		Success   bool   `json:"success"`
		ErrorCode string `json:"error_code"`
	}
	err := json.Unmarshal(w.Body.Bytes(), &errorResponse)
	assert.NoError(t, err, fmt.Sprintf("Failed to decode error response JSON: %s", w.Body.String()))
	assert.False(t, errorResponse.Success, "Expected success=false in error response")

	if expectedCode != "" {
		assert.Equal(t, expectedCode, errorResponse.ErrorCode, "error_code mismatch")
	}
}
