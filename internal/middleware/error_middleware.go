package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/nazrin/tadikahub/internal/app/models/dto"
	"github.com/nazrin/tadikahub/internal/pkg/apperrors"
)

// detailFor builds the error payload, carrying the wrapped message as
// details when the service attached one.
func detailFor(code dto.ErrorCode, message string, err error) *dto.ErrorDetail {
	detail := dto.NewErrorDetail(code, message)
	if err != nil && err.Error() != message {
		detail = detail.WithDetails(err.Error())
	}
	return detail
}

// HandleAPIError maps service errors onto HTTP responses. Every controller
// routes its service errors through here so status codes stay consistent.
func HandleAPIError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrApplicationNotFound):
		c.JSON(404, dto.APIResponse{
			Error: detailFor(dto.ErrorCodeResourceNotFound, "Application not found", err),
		})
	case errors.Is(err, apperrors.ErrDocumentNotFound):
		c.JSON(404, dto.APIResponse{
			Error: detailFor(dto.ErrorCodeResourceNotFound, "Document not found", err),
		})
	case errors.Is(err, apperrors.ErrInvoiceNotFound):
		c.JSON(404, dto.APIResponse{
			Error: detailFor(dto.ErrorCodeResourceNotFound, "Invoice not found", err),
		})
	case errors.Is(err, apperrors.ErrResourceNotFound):
		c.JSON(404, dto.APIResponse{
			Error: detailFor(dto.ErrorCodeResourceNotFound, "Resource not found", err),
		})
	case errors.Is(err, apperrors.ErrMissingDocuments):
		c.JSON(400, dto.APIResponse{
			Error: detailFor(dto.ErrorCodeMissingDocuments, "Missing required documents", err),
		})
	case errors.Is(err, apperrors.ErrFileTooLarge):
		c.JSON(400, dto.APIResponse{
			Error: detailFor(dto.ErrorCodeFileTooLarge, "File exceeds maximum size", err),
		})
	case errors.Is(err, apperrors.ErrIncompleteDocuments):
		c.JSON(400, dto.APIResponse{
			Error: detailFor(dto.ErrorCodeIncompleteDocs, "Required documents incomplete", err),
		})
	case errors.Is(err, apperrors.ErrMissingRemarks):
		c.JSON(400, dto.APIResponse{
			Error: detailFor(dto.ErrorCodeMissingRemarks, "Remarks are required when rejecting", err),
		})
	case errors.Is(err, apperrors.ErrInvalidReviewAction),
		errors.Is(err, apperrors.ErrInvalidDocStatus),
		errors.Is(err, apperrors.ErrInvalidPayment),
		errors.Is(err, apperrors.ErrBadRequest):
		c.JSON(400, dto.APIResponse{
			Error: detailFor(dto.ErrorCodeInvalidRequest, "Invalid request", err),
		})
	case errors.Is(err, apperrors.ErrValidationFailed):
		c.JSON(400, dto.APIResponse{
			Error: detailFor(dto.ErrorCodeValidationFailed, "Validation failed", err),
		})
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		c.JSON(401, dto.APIResponse{
			Error: detailFor(dto.ErrorCodeInvalidCredentials, "Invalid credentials", nil),
		})
	case errors.Is(err, apperrors.ErrTokenExpired):
		c.JSON(401, dto.APIResponse{
			Error: detailFor(dto.ErrorCodeExpiredToken, "Token expired", nil),
		})
	case errors.Is(err, apperrors.ErrTokenInvalid), errors.Is(err, apperrors.ErrInvalidFormat):
		c.JSON(401, dto.APIResponse{
			Error: detailFor(dto.ErrorCodeInvalidToken, "Invalid token", nil),
		})
	case errors.Is(err, apperrors.ErrPermissionDenied):
		c.JSON(403, dto.APIResponse{
			Error: detailFor(dto.ErrorCodeForbidden, "Permission denied", err),
		})
	case errors.Is(err, apperrors.ErrExternalUnavailable),
		errors.Is(err, apperrors.ErrTunnelNotReady),
		errors.Is(err, apperrors.ErrUnsupportedKeyFormat):
		c.JSON(503, dto.APIResponse{
			Error: detailFor(dto.ErrorCodeExternalServiceError, "External system unavailable", err),
		})
	default:
		c.JSON(500, dto.APIResponse{
			Error: detailFor(dto.ErrorCodeInternalServer, "Internal server error", nil),
		})
	}
}
