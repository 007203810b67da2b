package validation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "clabs/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contractServer(t *testing.T, signatureCode string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		code := apperrors.CodeValidation
		if r.URL.Path == "/api/payments/verify" {
			code = signatureCode
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "rejected", "code": code})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestValidateAllPasses(t *testing.T) {
	srv := contractServer(t, apperrors.CodeSignatureMismatch)

	require.NoError(t, NewContractValidator(srv.URL).ValidateAll(context.Background()))
}

func TestValidateAllReportsWrongCode(t *testing.T) {
	srv := contractServer(t, apperrors.CodeValidation)

	err := NewContractValidator(srv.URL).ValidateAll(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "forged payment signature")
	assert.Contains(t, err.Error(), apperrors.CodeSignatureMismatch)
}

func TestValidateAllReportsWrongStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := NewContractValidator(srv.URL).ValidateAll(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 400, got 200")
}
