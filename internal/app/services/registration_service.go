package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nazrin/tadikahub/internal/app/models"
	"github.com/nazrin/tadikahub/internal/app/models/dto"
	"github.com/nazrin/tadikahub/internal/app/repositories"
	"github.com/nazrin/tadikahub/internal/pkg/apperrors"
	"github.com/nazrin/tadikahub/internal/pkg/filestorage"
	"github.com/nazrin/tadikahub/internal/pkg/helpers"
	"github.com/nazrin/tadikahub/internal/pkg/logger"
	"github.com/nazrin/tadikahub/internal/pkg/validation"
	"github.com/nazrin/tadikahub/internal/seed"
)

// FilesByType groups uploaded files by their document type.
type FilesByType map[models.DocType][]*multipart.FileHeader

// RegistrationService defines the registration workflow operations
type RegistrationService interface {
	Submit(ctx context.Context, input *dto.SubmitApplicationRequest, files FilesByType, clientIP string) (*dto.ApplicationResponse, error)
	List(page, size int) (*dto.ApplicationListResponse, error)
	Review(ctx context.Context, applicationID string, req *dto.ReviewApplicationRequest, clientIP string) (*dto.ApplicationResponse, error)
	VerifyDocument(ctx context.Context, documentID string, req *dto.VerifyDocumentRequest, clientIP string) (*models.RegistrationDocument, error)
	Lookup(ref, guardianIC string) (*dto.ApplicationResponse, error)
	ResolveDocumentPath(documentID string) (string, *models.RegistrationDocument, error)
}

// registrationServiceImpl implements the RegistrationService interface
type registrationServiceImpl struct {
	repo    *repositories.RegistrationRepository
	storage *filestorage.LocalStorage
}

// NewRegistrationService creates a new registration service instance
func NewRegistrationService(repo *repositories.RegistrationRepository, storage *filestorage.LocalStorage) RegistrationService {
	return &registrationServiceImpl{
		repo:    repo,
		storage: storage,
	}
}

// validateSubmission runs every pre-write check: each required document type
// must have at least one file and no file may exceed the size cap. Nothing
// touches disk until all checks pass.
func (s *registrationServiceImpl) validateSubmission(input *dto.SubmitApplicationRequest, files FilesByType) error {
	if !validation.ValidIC(input.StudentIC) {
		return fmt.Errorf("%w: student IC must look like 210101-10-1234", apperrors.ErrValidationFailed)
	}
	if !validation.ValidIC(input.GuardianIC) {
		return fmt.Errorf("%w: guardian IC must look like 880101-10-1234", apperrors.ErrValidationFailed)
	}
	if !validation.ValidPhone(input.GuardianPhone) {
		return fmt.Errorf("%w: guardian phone is not a valid Malaysian number", apperrors.ErrValidationFailed)
	}
	if !validation.ValidName(input.StudentName) || !validation.ValidName(input.GuardianName) {
		return fmt.Errorf("%w: names must be between 2 and 100 characters", apperrors.ErrValidationFailed)
	}

	var missing []string
	for _, docType := range models.RequiredDocTypes {
		if len(files[docType]) == 0 {
			missing = append(missing, string(docType))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrMissingDocuments, strings.Join(missing, ", "))
	}

	for docType, headers := range files {
		for _, fh := range headers {
			if fh.Size > s.storage.MaxSize() {
				return fmt.Errorf("%w: %s (%s) is %d bytes, cap is %d",
					apperrors.ErrFileTooLarge, fh.Filename, docType, fh.Size, s.storage.MaxSize())
			}
		}
	}
	return nil
}

// Submit creates an application with its documents and audit entries.
func (s *registrationServiceImpl) Submit(ctx context.Context, input *dto.SubmitApplicationRequest, files FilesByType, clientIP string) (*dto.ApplicationResponse, error) {
	if err := s.validateSubmission(input, files); err != nil {
		return nil, err
	}

	now := time.Now()
	app := &models.RegistrationApplication{
		ID:              uuid.New().String(),
		Source:          models.SourceSelfService,
		StudentName:     input.StudentName,
		StudentIC:       input.StudentIC,
		DateOfBirth:     input.DateOfBirth,
		GuardianName:    input.GuardianName,
		GuardianIC:      input.GuardianIC,
		GuardianPhone:   input.GuardianPhone,
		GuardianEmail:   input.GuardianEmail,
		Address:         input.Address,
		CentreID:        input.CentreID,
		CentreName:      input.CentreName,
		EducationLevel:  input.EducationLevel,
		SubsidyCategory: input.SubsidyCategory,
		Status:          models.StatusSubmitted,
		AppliedDate:     now,
	}

	// Files land on disk before any record is written, so a storage failure
	// cannot leave a durable application behind with no documents and no
	// audit trail. Stored names key off the document id, which does not
	// depend on the ref allocated later.
	var docs []models.RegistrationDocument
	for docType, headers := range files {
		for _, fh := range headers {
			docID := uuid.New().String()
			stored, err := s.storage.SaveDocument(fh, app.ID, docID)
			if err != nil {
				s.discardSubmission(app.ID, false, false)
				return nil, fmt.Errorf("error storing document %s: %w", fh.Filename, err)
			}

			docs = append(docs, models.RegistrationDocument{
				ID:            docID,
				ApplicationID: app.ID,
				DocType:       docType,
				Status:        models.DocUploaded,
				OriginalName:  fh.Filename,
				StoredName:    stored.StoredName,
				RelativePath:  stored.RelativePath,
				MimeType:      stored.MimeType,
				Size:          stored.Size,
				UploadedAt:    now,
				UpdatedAt:     now,
			})
		}
	}

	if err := s.repo.InsertApplication(app); err != nil {
		s.discardSubmission(app.ID, false, false)
		return nil, fmt.Errorf("error creating application: %w", err)
	}
	for i := range docs {
		docs[i].ApplicationRef = app.ApplicationRef
	}

	if err := s.repo.InsertDocuments(docs); err != nil {
		s.discardSubmission(app.ID, true, false)
		return nil, fmt.Errorf("error persisting documents: %w", err)
	}

	for _, doc := range docs {
		if err := s.repo.AppendAudit(models.RegistrationAudit{
			ActorType:  models.ActorGuardian,
			ActorName:  app.GuardianName,
			Action:     models.AuditDocumentUploaded,
			EntityType: "document",
			EntityID:   doc.ID,
			After:      string(doc.Status),
			IPAddress:  clientIP,
			Notes:      fmt.Sprintf("%s: %s", doc.DocType, doc.OriginalName),
		}); err != nil {
			s.discardSubmission(app.ID, true, true)
			return nil, err
		}
	}

	if err := s.repo.AppendAudit(models.RegistrationAudit{
		ActorType:  models.ActorGuardian,
		ActorName:  app.GuardianName,
		Action:     models.AuditApplicationSubmitted,
		EntityType: "application",
		EntityID:   app.ID,
		After:      string(app.Status),
		IPAddress:  clientIP,
		Notes:      app.ApplicationRef,
	}); err != nil {
		s.discardSubmission(app.ID, true, true)
		return nil, err
	}

	logger.Info().Str("ref", app.ApplicationRef).Str("centre", app.CentreID).Msg("Application submitted")
	return s.annotate(app), nil
}

// discardSubmission unwinds a partially persisted submission so a failed
// Submit leaves no durable trace. Cleanup is best effort: failures here are
// logged while the original error propagates to the caller.
func (s *registrationServiceImpl) discardSubmission(appID string, appInserted, docsInserted bool) {
	if docsInserted {
		if err := s.repo.DeleteDocumentsByApplication(appID); err != nil {
			logger.Error().Err(err).Str("applicationId", appID).Msg("Failed to discard document records")
		}
	}
	if appInserted {
		if err := s.repo.DeleteApplication(appID); err != nil {
			logger.Error().Err(err).Str("applicationId", appID).Msg("Failed to discard application record")
		}
	}
	if err := s.storage.RemoveApplicationFiles(appID); err != nil {
		logger.Error().Err(err).Str("applicationId", appID).Msg("Failed to discard stored files")
	}
}

// annotate attaches documents and the derived summary to one application.
func (s *registrationServiceImpl) annotate(app *models.RegistrationApplication) *dto.ApplicationResponse {
	docs := s.repo.ListDocumentsByApplication(app.ID)
	if docs == nil {
		docs = []models.RegistrationDocument{}
	}
	return &dto.ApplicationResponse{
		RegistrationApplication: *app,
		Documents:               docs,
		Summary:                 models.SummarizeDocuments(docs),
	}
}

// List returns the union of persisted applications and the legacy mock
// dataset, newest first, paginated.
func (s *registrationServiceImpl) List(page, size int) (*dto.ApplicationListResponse, error) {
	merged := append(s.repo.ListApplications(), seed.MockApplications()...)

	sort.Slice(merged, func(i, j int) bool {
		return merged[i].AppliedDate.After(merged[j].AppliedDate)
	})

	total := len(merged)
	start, end := helpers.CalculateSliceIndices(page, size, total)

	apps := make([]dto.ApplicationResponse, 0, end-start)
	for i := start; i < end; i++ {
		apps = append(apps, *s.annotate(&merged[i]))
	}

	return &dto.ApplicationListResponse{
		Applications: apps,
		Pagination:   helpers.NewPaginationInfo(int64(total), page, size),
	}, nil
}

// Review applies an approve or reject decision to an application.
func (s *registrationServiceImpl) Review(ctx context.Context, applicationID string, req *dto.ReviewApplicationRequest, clientIP string) (*dto.ApplicationResponse, error) {
	app, err := s.repo.FindApplicationByID(applicationID)
	if err != nil {
		return nil, err
	}

	before := app.Status
	switch req.Action {
	case "approve":
		summary := models.SummarizeDocuments(s.repo.ListDocumentsByApplication(app.ID))
		if !summary.HasAllRequired {
			return nil, fmt.Errorf("%w: %d of %d required document types uploaded",
				apperrors.ErrIncompleteDocuments, summary.UploadedRequiredCount, summary.RequiredCount)
		}
		app.Status = models.StatusApproved
	case "reject":
		if strings.TrimSpace(req.Remarks) == "" {
			return nil, fmt.Errorf("%w: rejection must include remarks", apperrors.ErrMissingRemarks)
		}
		app.Status = models.StatusRejected
	default:
		return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidReviewAction, req.Action)
	}

	now := time.Now()
	app.ReviewedDate = &now
	app.ReviewedBy = req.ReviewerName
	app.Remarks = req.Remarks

	if err := s.repo.UpdateApplication(app); err != nil {
		return nil, fmt.Errorf("error updating application: %w", err)
	}

	action := models.AuditApplicationApproved
	if app.Status == models.StatusRejected {
		action = models.AuditApplicationRejected
	}
	if err := s.repo.AppendAudit(models.RegistrationAudit{
		ActorType:  models.ActorAdmin,
		ActorName:  req.ReviewerName,
		Action:     action,
		EntityType: "application",
		EntityID:   app.ID,
		Before:     string(before),
		After:      string(app.Status),
		IPAddress:  clientIP,
		Notes:      req.Remarks,
	}); err != nil {
		return nil, err
	}

	logger.Info().Str("ref", app.ApplicationRef).Str("status", string(app.Status)).Str("reviewer", req.ReviewerName).Msg("Application reviewed")
	return s.annotate(app), nil
}

// VerifyDocument marks one document verified or rejected.
func (s *registrationServiceImpl) VerifyDocument(ctx context.Context, documentID string, req *dto.VerifyDocumentRequest, clientIP string) (*models.RegistrationDocument, error) {
	doc, err := s.repo.FindDocumentByID(documentID)
	if err != nil {
		return nil, err
	}

	before := doc.Status
	switch req.Status {
	case "verified":
		doc.Status = models.DocVerified
	case "rejected":
		doc.Status = models.DocRejected
	default:
		return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidDocStatus, req.Status)
	}
	doc.Remarks = req.Remarks
	doc.UpdatedAt = time.Now()

	if err := s.repo.UpdateDocument(doc); err != nil {
		return nil, fmt.Errorf("error updating document: %w", err)
	}

	action := models.AuditDocumentVerified
	if doc.Status == models.DocRejected {
		action = models.AuditDocumentRejected
	}
	if err := s.repo.AppendAudit(models.RegistrationAudit{
		ActorType:  models.ActorAdmin,
		ActorName:  req.ReviewerName,
		Action:     action,
		EntityType: "document",
		EntityID:   doc.ID,
		Before:     string(before),
		After:      string(doc.Status),
		IPAddress:  clientIP,
		Notes:      req.Remarks,
	}); err != nil {
		return nil, err
	}

	return doc, nil
}

// Lookup is the guardian self-service lookup: the ref and guardian IC must
// both match, so a ref alone cannot be used to browse other applications.
func (s *registrationServiceImpl) Lookup(ref, guardianIC string) (*dto.ApplicationResponse, error) {
	if strings.TrimSpace(ref) == "" || strings.TrimSpace(guardianIC) == "" {
		return nil, fmt.Errorf("%w: ref and guardian IC are both required", apperrors.ErrValidationFailed)
	}

	app, err := s.repo.FindByRefAndGuardianIC(ref, guardianIC)
	if err == nil {
		return s.annotate(app), nil
	}

	for _, mock := range seed.MockApplications() {
		if strings.EqualFold(mock.ApplicationRef, ref) && mock.GuardianIC == guardianIC {
			return s.annotate(&mock), nil
		}
	}

	return nil, apperrors.ErrApplicationNotFound
}

// ResolveDocumentPath maps a document id to its absolute on-disk path for
// streaming. The file's existence is not re-checked at this layer.
func (s *registrationServiceImpl) ResolveDocumentPath(documentID string) (string, *models.RegistrationDocument, error) {
	doc, err := s.repo.FindDocumentByID(documentID)
	if err != nil {
		return "", nil, err
	}
	return s.storage.FullPath(doc.RelativePath), doc, nil
}
