package dto

import (
	"github.com/nazrin/tadikahub/internal/app/models"
)

// SubmitApplicationRequest carries the multipart form fields of a new
// application. Files arrive separately, keyed by document type.
type SubmitApplicationRequest struct {
	StudentName     string `form:"studentName" binding:"required"`
	StudentIC       string `form:"studentIc" binding:"required"`
	DateOfBirth     string `form:"dateOfBirth" binding:"required"`
	GuardianName    string `form:"guardianName" binding:"required"`
	GuardianIC      string `form:"guardianIc" binding:"required"`
	GuardianPhone   string `form:"guardianPhone" binding:"required"`
	GuardianEmail   string `form:"guardianEmail"`
	Address         string `form:"address"`
	CentreID        string `form:"centreId" binding:"required"`
	CentreName      string `form:"centreName" binding:"required"`
	EducationLevel  string `form:"educationLevel" binding:"required"`
	SubsidyCategory string `form:"subsidyCategory"`
}

// ReviewApplicationRequest is the JSON body of a review decision
type ReviewApplicationRequest struct {
	Action       string `json:"action" binding:"required,oneof=approve reject"`
	Remarks      string `json:"remarks"`
	ReviewerName string `json:"reviewerName"`
}

// VerifyDocumentRequest is the JSON body of a document verification
type VerifyDocumentRequest struct {
	Status       string `json:"status" binding:"required,oneof=verified rejected"`
	Remarks      string `json:"remarks"`
	ReviewerName string `json:"reviewerName"`
}

// ApplicationResponse is one application annotated with its documents and
// derived summary.
type ApplicationResponse struct {
	models.RegistrationApplication
	Documents []models.RegistrationDocument `json:"documents"`
	Summary   models.DocumentSummary        `json:"documentSummary"`
}

// ApplicationListResponse is the paginated merged listing
type ApplicationListResponse struct {
	Applications []ApplicationResponse `json:"applications"`
	Pagination   PaginationInfo        `json:"pagination"`
}
