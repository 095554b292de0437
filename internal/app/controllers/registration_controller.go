package controllers

import (
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nazrin/tadikahub/internal/app/models"
	"github.com/nazrin/tadikahub/internal/app/models/dto"
	"github.com/nazrin/tadikahub/internal/app/services"
	"github.com/nazrin/tadikahub/internal/middleware"
	"github.com/nazrin/tadikahub/internal/pkg/helpers"
)

// allDocTypes lists every document type accepted on submission. Required
// types are enforced in the service, "other" is optional.
var allDocTypes = []models.DocType{
	models.DocBirthCert,
	models.DocStudentIC,
	models.DocGuardianIC,
	models.DocAddressProof,
	models.DocOther,
}

// RegistrationController handles registration application operations
type RegistrationController struct {
	registrationService services.RegistrationService
	logger              zerolog.Logger
}

// NewRegistrationController creates a new RegistrationController
func NewRegistrationController(registrationService services.RegistrationService, logger zerolog.Logger) *RegistrationController {
	return &RegistrationController{
		registrationService: registrationService,
		logger:              logger,
	}
}

// collectFiles groups the multipart file parts by document type. Each type
// is uploaded under the field name "files_<type>".
func collectFiles(form *multipart.Form) services.FilesByType {
	files := make(services.FilesByType)
	for _, docType := range allDocTypes {
		if headers := form.File["files_"+string(docType)]; len(headers) > 0 {
			files[docType] = headers
		}
	}
	return files
}

// SubmitApplication handles a guardian's self-service application submission
// @Summary Submit a registration application
// @Description Creates a new admission application with its supporting documents in one multipart request
// @Tags registrations
// @Accept multipart/form-data
// @Produce json
// @Success 201 {object} dto.APIResponse{data=dto.ApplicationResponse} "Application submitted"
// @Failure 400 {object} dto.ErrorResponse "Invalid form data, missing documents or oversized file"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /registrations [post]
func (c *RegistrationController) SubmitApplication(ctx *gin.Context) {
	var req dto.SubmitApplicationRequest
	if err := ctx.ShouldBind(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid application data")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	form, err := ctx.MultipartForm()
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid multipart form")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	resp, err := c.registrationService.Submit(ctx, &req, collectFiles(form), ctx.ClientIP())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data:      resp,
		Timestamp: time.Now(),
	})
}

// ListApplications returns the merged application listing
// @Summary List applications
// @Description Returns persisted and legacy mock applications merged, newest first
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (1-based)"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ApplicationListResponse} "Applications retrieved"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /registrations [get]
func (c *RegistrationController) ListApplications(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)

	resp, err := c.registrationService.List(page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      resp,
		Timestamp: time.Now(),
	})
}

// LookupApplication handles the guardian self-service status lookup
// @Summary Look up an application
// @Description Finds one application by reference number and guardian IC. Both must match.
// @Tags registrations
// @Produce json
// @Param ref query string true "Application reference number"
// @Param guardianIc query string true "Guardian IC number"
// @Success 200 {object} dto.APIResponse{data=dto.ApplicationResponse} "Application found"
// @Failure 400 {object} dto.ErrorResponse "Missing ref or guardian IC"
// @Failure 404 {object} dto.ErrorResponse "No matching application"
// @Router /registrations/lookup [get]
func (c *RegistrationController) LookupApplication(ctx *gin.Context) {
	ref := ctx.Query("ref")
	guardianIC := ctx.Query("guardianIc")

	resp, err := c.registrationService.Lookup(ref, guardianIC)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      resp,
		Timestamp: time.Now(),
	})
}

// ReviewApplication handles an approve/reject decision
// @Summary Review an application
// @Description Approves or rejects an application. Approval requires all required document types, rejection requires remarks.
// @Tags registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Param request body dto.ReviewApplicationRequest true "Review decision"
// @Success 200 {object} dto.APIResponse{data=dto.ApplicationResponse} "Review applied"
// @Failure 400 {object} dto.ErrorResponse "Incomplete documents, missing remarks or invalid action"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /registrations/{id}/review [post]
func (c *RegistrationController) ReviewApplication(ctx *gin.Context) {
	applicationID := ctx.Param("id")

	req, ok := middleware.BodyFromContext[dto.ReviewApplicationRequest](ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid review data")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}
	if req.ReviewerName == "" {
		req.ReviewerName = reviewerNameFromContext(ctx)
	}

	resp, err := c.registrationService.Review(ctx, applicationID, req, ctx.ClientIP())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      resp,
		Timestamp: time.Now(),
	})
}

// reviewerNameFromContext pulls the authenticated reviewer's display name
// set by the auth middleware, if any.
func reviewerNameFromContext(ctx *gin.Context) string {
	if name, exists := ctx.Get(middleware.ContextDisplayName); exists {
		if s, ok := name.(string); ok {
			return s
		}
	}
	return ""
}
