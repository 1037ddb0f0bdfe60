package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "Without details",
			err:      NewAppError(ErrorTypeValidation, "VALIDATION_ERROR", "bad input"),
			expected: "VALIDATION_ERROR: bad input",
		},
		{
			name:     "With details",
			err:      NewAppErrorWithCause(ErrorTypeDatabase, "DATABASE_ERROR", "query failed", fmt.Errorf("connection refused")),
			expected: "DATABASE_ERROR: query failed - connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := NewAppErrorWithCause(ErrorTypeInternal, "INTERNAL_ERROR", "wrapped", cause)
	assert.Equal(t, cause, err.Unwrap())
}

func TestDefaultHTTPStatus(t *testing.T) {
	tests := []struct {
		errorType ErrorType
		status    int
	}{
		{ErrorTypeValidation, http.StatusBadRequest},
		{ErrorTypeNotFound, http.StatusNotFound},
		{ErrorTypeConflict, http.StatusConflict},
		{ErrorTypeRateLimit, http.StatusTooManyRequests},
		{ErrorTypeTimeout, http.StatusRequestTimeout},
		{ErrorTypeDatabase, http.StatusInternalServerError},
		{ErrorTypeGeocoding, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.errorType), func(t *testing.T) {
			err := NewAppError(tt.errorType, "CODE", "msg")
			assert.Equal(t, tt.status, err.HTTPStatus)
		})
	}
}

func TestNewNotFoundError(t *testing.T) {
	err := NewNotFoundError("offer")
	assert.Equal(t, ErrorTypeNotFound, err.Type)
	assert.Equal(t, "offer not found", err.Message)
	assert.Equal(t, "offer", err.Metadata["resource"])
}

func TestNewGeocodingError(t *testing.T) {
	cause := fmt.Errorf("provider status 429")
	err := NewGeocodingError("Warszawa", cause)

	assert.Equal(t, ErrorTypeGeocoding, err.Type)
	assert.Equal(t, "Warszawa", err.Metadata["query"])
	assert.Equal(t, cause, err.Unwrap())
}

func TestIsErrorType(t *testing.T) {
	err := NewValidationError("title", "title is required")

	assert.True(t, IsErrorType(err, ErrorTypeValidation))
	assert.False(t, IsErrorType(err, ErrorTypeNotFound))
	assert.False(t, IsErrorType(fmt.Errorf("plain"), ErrorTypeValidation))
}

func TestAppError_ToJSON(t *testing.T) {
	err := NewTimeoutError("geocode", 10*time.Second).WithCorrelationID("corr-1")

	data, jsonErr := err.ToJSON()
	require.NoError(t, jsonErr)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "timeout", decoded["type"])
	assert.Equal(t, "corr-1", decoded["correlation_id"])
}
