package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected string
	}{
		{"not found", "NOT_FOUND", ErrCodeNotFound},
		{"invalid state", "INVALID_STATE", ErrCodeInvalidState},
		{"insufficient stock", "INSUFFICIENT_STOCK", ErrCodeInsufficientStock},
		{"already converted", "ALREADY_CONVERTED", ErrCodeAlreadyConverted},
		{"external service", "EXTERNAL_SERVICE_UNAVAILABLE", ErrCodeExternalService},
		{"validation prefix", "INVALID_QUANTITY", ErrCodeValidation},
		{"unknown passes through", "SOMETHING_ELSE", "SOMETHING_ELSE"},
		{"already normalized", ErrCodeNotFound, ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeErrorCode(tt.code))
		})
	}
}

func TestGetHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, GetHTTPStatus(ErrCodeNotFound))
	assert.Equal(t, http.StatusUnprocessableEntity, GetHTTPStatus(ErrCodeInsufficientStock))
	assert.Equal(t, http.StatusConflict, GetHTTPStatus(ErrCodeAlreadyConverted))
	assert.Equal(t, http.StatusBadGateway, GetHTTPStatus(ErrCodeExternalService))
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus("NO_SUCH_CODE"))
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]string{"a"}, 45, 2, 20)
	assert.True(t, resp.Success)
	assert.Equal(t, int64(45), resp.Meta.Total)
	assert.Equal(t, 3, resp.Meta.TotalPages)
}
