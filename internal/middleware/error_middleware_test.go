package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nazrin/tadikahub/internal/app/models/dto"
	"github.com/nazrin/tadikahub/internal/pkg/apperrors"
)

func respondWith(t *testing.T, err error) (int, dto.APIResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	HandleAPIError(c, err)

	var body dto.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestHandleAPIErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err        error
		wantStatus int
		wantCode   dto.ErrorCode
	}{
		{apperrors.ErrApplicationNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{apperrors.ErrDocumentNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{apperrors.ErrInvoiceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{apperrors.ErrMissingDocuments, http.StatusBadRequest, dto.ErrorCodeMissingDocuments},
		{apperrors.ErrFileTooLarge, http.StatusBadRequest, dto.ErrorCodeFileTooLarge},
		{apperrors.ErrIncompleteDocuments, http.StatusBadRequest, dto.ErrorCodeIncompleteDocs},
		{apperrors.ErrMissingRemarks, http.StatusBadRequest, dto.ErrorCodeMissingRemarks},
		{apperrors.ErrInvalidPayment, http.StatusBadRequest, dto.ErrorCodeInvalidRequest},
		{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials},
		{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden},
		{apperrors.ErrExternalUnavailable, http.StatusServiceUnavailable, dto.ErrorCodeExternalServiceError},
		{apperrors.ErrTunnelNotReady, http.StatusServiceUnavailable, dto.ErrorCodeExternalServiceError},
		{fmt.Errorf("something unexpected"), http.StatusInternalServerError, dto.ErrorCodeInternalServer},
	}

	for _, tc := range cases {
		status, body := respondWith(t, tc.err)
		assert.Equal(t, tc.wantStatus, status, "error %v", tc.err)
		require.NotNil(t, body.Error, "error %v", tc.err)
		assert.Equal(t, tc.wantCode, body.Error.Code, "error %v", tc.err)
	}
}

func TestHandleAPIErrorMatchesWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("%w: birth_cert, address_proof", apperrors.ErrMissingDocuments)

	status, body := respondWith(t, wrapped)
	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, body.Error)
	assert.Equal(t, dto.ErrorCodeMissingDocuments, body.Error.Code)
	// The wrapped detail survives so callers see which types are missing.
	assert.Contains(t, fmt.Sprint(body.Error.Details), "birth_cert")
}
