package controllers

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nazrin/tadikahub/internal/app/models/dto"
	"github.com/nazrin/tadikahub/internal/app/services"
	"github.com/nazrin/tadikahub/internal/middleware"
	"github.com/nazrin/tadikahub/internal/pkg/apperrors"
)

// DocumentController handles registration document operations
type DocumentController struct {
	registrationService services.RegistrationService
	logger              zerolog.Logger
}

// NewDocumentController creates a new DocumentController
func NewDocumentController(registrationService services.RegistrationService, logger zerolog.Logger) *DocumentController {
	return &DocumentController{
		registrationService: registrationService,
		logger:              logger,
	}
}

// VerifyDocument handles a document verification decision
// @Summary Verify a document
// @Description Marks one uploaded document verified or rejected
// @Tags documents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Document ID"
// @Param request body dto.VerifyDocumentRequest true "Verification decision"
// @Success 200 {object} dto.APIResponse "Document updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid status"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Document not found"
// @Router /documents/{id}/verify [post]
func (c *DocumentController) VerifyDocument(ctx *gin.Context) {
	documentID := ctx.Param("id")

	req, ok := middleware.BodyFromContext[dto.VerifyDocumentRequest](ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid verification data")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}
	if req.ReviewerName == "" {
		req.ReviewerName = reviewerNameFromContext(ctx)
	}

	doc, err := c.registrationService.VerifyDocument(ctx, documentID, req, ctx.ClientIP())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      doc,
		Timestamp: time.Now(),
	})
}

// DownloadDocument streams a stored document file
// @Summary Download a document
// @Description Streams the stored file with its original name
// @Tags documents
// @Produce octet-stream
// @Security BearerAuth
// @Param id path string true "Document ID"
// @Success 200 {file} binary "Document file"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Document or file not found"
// @Router /documents/{id}/download [get]
func (c *DocumentController) DownloadDocument(ctx *gin.Context) {
	documentID := ctx.Param("id")

	path, doc, err := c.registrationService.ResolveDocumentPath(documentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if _, err := os.Stat(path); err != nil {
		c.logger.Error().Err(err).Str("documentId", documentID).Str("path", path).Msg("Stored document file missing")
		middleware.HandleAPIError(ctx, apperrors.ErrDocumentNotFound)
		return
	}

	if doc.MimeType != "" {
		ctx.Header("Content-Type", doc.MimeType)
	}
	ctx.FileAttachment(path, doc.OriginalName)
}
