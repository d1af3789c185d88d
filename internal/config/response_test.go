package config

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondError(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, http.StatusBadRequest, "Geçersiz menü numarası", quietLogger())

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "bad_request", body.Error)
	assert.Equal(t, "Geçersiz menü numarası", body.Message)
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "unauthorized", errorCode(http.StatusUnauthorized))
	assert.Equal(t, "too_many_requests", errorCode(http.StatusTooManyRequests))
	assert.Equal(t, "internal_server_error", errorCode(http.StatusInternalServerError))
	assert.Equal(t, "error", errorCode(799))
}
