package services

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nazrin/tadikahub/internal/app/models"
	"github.com/nazrin/tadikahub/internal/app/models/dto"
	"github.com/nazrin/tadikahub/internal/app/repositories"
	"github.com/nazrin/tadikahub/internal/pkg/apperrors"
	"github.com/nazrin/tadikahub/internal/pkg/filestorage"
)

func newTestService(t *testing.T) (RegistrationService, *repositories.RegistrationRepository) {
	t.Helper()

	repo, err := repositories.NewRegistrationRepository(t.TempDir())
	require.NoError(t, err)

	storage, err := filestorage.NewLocalStorage(t.TempDir(), models.MaxDocumentSize)
	require.NoError(t, err)

	return NewRegistrationService(repo, storage), repo
}

// multipartFile builds a real multipart.FileHeader the way gin receives one.
func multipartFile(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))
	return req.MultipartForm.File["file"][0]
}

func validInput() *dto.SubmitApplicationRequest {
	return &dto.SubmitApplicationRequest{
		StudentName:    "Nur Aisyah binti Rahman",
		StudentIC:      "210404-14-0422",
		DateOfBirth:    "2021-04-04",
		GuardianName:   "Rahman bin Yusof",
		GuardianIC:     "880112-14-5523",
		GuardianPhone:  "0123456789",
		CentreID:       "CTR-001",
		CentreName:     "Tadika Seri Indah",
		EducationLevel: "preschool",
	}
}

func allRequiredFiles(t *testing.T) FilesByType {
	t.Helper()
	files := make(FilesByType)
	for _, docType := range models.RequiredDocTypes {
		name := fmt.Sprintf("%s.pdf", docType)
		files[docType] = []*multipart.FileHeader{multipartFile(t, name, []byte("pdf"))}
	}
	return files
}

func TestSubmitAllocatesSequentialRefs(t *testing.T) {
	svc, _ := newTestService(t)

	first, err := svc.Submit(context.Background(), validInput(), allRequiredFiles(t), "10.0.0.1")
	require.NoError(t, err)
	second, err := svc.Submit(context.Background(), validInput(), allRequiredFiles(t), "10.0.0.1")
	require.NoError(t, err)

	year := time.Now().Year()
	assert.Equal(t, fmt.Sprintf("APP-%d-00001", year), first.ApplicationRef)
	assert.Equal(t, fmt.Sprintf("APP-%d-00002", year), second.ApplicationRef)
	assert.Equal(t, models.StatusSubmitted, first.Status)
	assert.Equal(t, models.SourceSelfService, first.Source)
}

func TestSubmitAttachesDocumentsAndSummary(t *testing.T) {
	svc, _ := newTestService(t)

	resp, err := svc.Submit(context.Background(), validInput(), allRequiredFiles(t), "10.0.0.1")
	require.NoError(t, err)

	assert.Len(t, resp.Documents, len(models.RequiredDocTypes))
	assert.True(t, resp.Summary.HasAllRequired)
	for _, doc := range resp.Documents {
		assert.Equal(t, models.DocUploaded, doc.Status)
		assert.Equal(t, resp.ApplicationRef, doc.ApplicationRef)
	}
}

func TestSubmitRejectsMissingRequiredType(t *testing.T) {
	svc, repo := newTestService(t)

	files := allRequiredFiles(t)
	delete(files, models.DocAddressProof)

	_, err := svc.Submit(context.Background(), validInput(), files, "10.0.0.1")
	require.ErrorIs(t, err, apperrors.ErrMissingDocuments)
	assert.Contains(t, err.Error(), "address_proof")

	// Nothing may be persisted on a failed submission.
	assert.Empty(t, repo.ListApplications())
	assert.Empty(t, repo.ListAudit())
}

func TestSubmitRejectsOversizedFile(t *testing.T) {
	repo, err := repositories.NewRegistrationRepository(t.TempDir())
	require.NoError(t, err)
	storage, err := filestorage.NewLocalStorage(t.TempDir(), 16)
	require.NoError(t, err)
	svc := NewRegistrationService(repo, storage)

	files := allRequiredFiles(t)
	files[models.DocBirthCert] = []*multipart.FileHeader{
		multipartFile(t, "big.pdf", bytes.Repeat([]byte("x"), 64)),
	}

	_, err = svc.Submit(context.Background(), validInput(), files, "10.0.0.1")
	require.ErrorIs(t, err, apperrors.ErrFileTooLarge)
	assert.Empty(t, repo.ListApplications())
}

func TestSubmitRejectsMalformedIC(t *testing.T) {
	svc, _ := newTestService(t)

	input := validInput()
	input.GuardianIC = "not-an-ic"

	_, err := svc.Submit(context.Background(), input, allRequiredFiles(t), "10.0.0.1")
	require.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestSubmitWritesAuditTrail(t *testing.T) {
	svc, repo := newTestService(t)

	resp, err := svc.Submit(context.Background(), validInput(), allRequiredFiles(t), "10.0.0.5")
	require.NoError(t, err)

	entries := repo.ListAudit()
	// One entry per uploaded document plus the submission itself.
	require.Len(t, entries, len(models.RequiredDocTypes)+1)

	var submissions, uploads int
	for _, entry := range entries {
		assert.Equal(t, models.ActorGuardian, entry.ActorType)
		assert.Equal(t, "10.0.0.5", entry.IPAddress)
		assert.NotEmpty(t, entry.ID)
		assert.False(t, entry.Timestamp.IsZero())
		switch entry.Action {
		case models.AuditApplicationSubmitted:
			submissions++
			assert.Equal(t, resp.ID, entry.EntityID)
		case models.AuditDocumentUploaded:
			uploads++
		}
	}
	assert.Equal(t, 1, submissions)
	assert.Equal(t, len(models.RequiredDocTypes), uploads)
}

// insertIncompleteApplication persists an application directly with only
// the given document types attached.
func insertIncompleteApplication(t *testing.T, repo *repositories.RegistrationRepository, docTypes ...models.DocType) *models.RegistrationApplication {
	t.Helper()

	app := &models.RegistrationApplication{
		ID:           uuid.New().String(),
		Source:       models.SourceSelfService,
		StudentName:  "Lim Jia Hao",
		GuardianName: "Lim Wei Sheng",
		GuardianIC:   "850623-10-6611",
		Status:       models.StatusSubmitted,
		AppliedDate:  time.Now(),
	}
	require.NoError(t, repo.InsertApplication(app))

	docs := make([]models.RegistrationDocument, 0, len(docTypes))
	for _, docType := range docTypes {
		docs = append(docs, models.RegistrationDocument{
			ID:            uuid.New().String(),
			ApplicationID: app.ID,
			DocType:       docType,
			Status:        models.DocUploaded,
			UploadedAt:    time.Now(),
		})
	}
	require.NoError(t, repo.InsertDocuments(docs))
	return app
}

func TestReviewApproveRequiresAllDocumentTypes(t *testing.T) {
	svc, repo := newTestService(t)
	app := insertIncompleteApplication(t, repo,
		models.DocBirthCert, models.DocStudentIC, models.DocGuardianIC)

	_, err := svc.Review(context.Background(), app.ID, &dto.ReviewApplicationRequest{
		Action:       "approve",
		ReviewerName: "Puan Salmah",
	}, "10.0.0.2")
	require.ErrorIs(t, err, apperrors.ErrIncompleteDocuments)

	// Adding the missing type unblocks approval.
	require.NoError(t, repo.InsertDocuments([]models.RegistrationDocument{{
		ID:            uuid.New().String(),
		ApplicationID: app.ID,
		DocType:       models.DocAddressProof,
		Status:        models.DocUploaded,
		UploadedAt:    time.Now(),
	}}))

	resp, err := svc.Review(context.Background(), app.ID, &dto.ReviewApplicationRequest{
		Action:       "approve",
		ReviewerName: "Puan Salmah",
	}, "10.0.0.2")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, resp.Status)
	assert.Equal(t, "Puan Salmah", resp.ReviewedBy)
	require.NotNil(t, resp.ReviewedDate)
}

func TestReviewRejectRequiresRemarks(t *testing.T) {
	svc, repo := newTestService(t)
	app := insertIncompleteApplication(t, repo, models.DocBirthCert)

	_, err := svc.Review(context.Background(), app.ID, &dto.ReviewApplicationRequest{
		Action:       "reject",
		ReviewerName: "Puan Salmah",
	}, "10.0.0.2")
	require.ErrorIs(t, err, apperrors.ErrMissingRemarks)

	resp, err := svc.Review(context.Background(), app.ID, &dto.ReviewApplicationRequest{
		Action:       "reject",
		Remarks:      "Birth certificate unreadable",
		ReviewerName: "Puan Salmah",
	}, "10.0.0.2")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, resp.Status)
}

func TestReviewRecordsStatusTransitionInAudit(t *testing.T) {
	svc, repo := newTestService(t)
	app := insertIncompleteApplication(t, repo, models.RequiredDocTypes...)

	_, err := svc.Review(context.Background(), app.ID, &dto.ReviewApplicationRequest{
		Action:       "approve",
		ReviewerName: "Puan Salmah",
	}, "10.0.0.2")
	require.NoError(t, err)

	entries := repo.ListAudit()
	require.NotEmpty(t, entries)
	latest := entries[0]
	assert.Equal(t, models.AuditApplicationApproved, latest.Action)
	assert.Equal(t, models.ActorAdmin, latest.ActorType)
	assert.Equal(t, string(models.StatusSubmitted), latest.Before)
	assert.Equal(t, string(models.StatusApproved), latest.After)
}

func TestReviewUnknownApplication(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Review(context.Background(), "missing-id", &dto.ReviewApplicationRequest{
		Action: "approve",
	}, "10.0.0.2")
	require.ErrorIs(t, err, apperrors.ErrApplicationNotFound)
}

func TestVerifyDocument(t *testing.T) {
	svc, repo := newTestService(t)
	app := insertIncompleteApplication(t, repo, models.DocBirthCert)
	doc := repo.ListDocumentsByApplication(app.ID)[0]

	updated, err := svc.VerifyDocument(context.Background(), doc.ID, &dto.VerifyDocumentRequest{
		Status:       "verified",
		ReviewerName: "Puan Salmah",
	}, "10.0.0.2")
	require.NoError(t, err)
	assert.Equal(t, models.DocVerified, updated.Status)

	entries := repo.ListAudit()
	require.NotEmpty(t, entries)
	assert.Equal(t, models.AuditDocumentVerified, entries[0].Action)
	assert.Equal(t, string(models.DocUploaded), entries[0].Before)
	assert.Equal(t, string(models.DocVerified), entries[0].After)
}

func TestVerifyDocumentRejectedKeepsRemarks(t *testing.T) {
	svc, repo := newTestService(t)
	app := insertIncompleteApplication(t, repo, models.DocGuardianIC)
	doc := repo.ListDocumentsByApplication(app.ID)[0]

	updated, err := svc.VerifyDocument(context.Background(), doc.ID, &dto.VerifyDocumentRequest{
		Status:  "rejected",
		Remarks: "Photocopy too dark",
	}, "10.0.0.2")
	require.NoError(t, err)
	assert.Equal(t, models.DocRejected, updated.Status)
	assert.Equal(t, "Photocopy too dark", updated.Remarks)
}

func TestLookupRequiresBothFactors(t *testing.T) {
	svc, _ := newTestService(t)

	submitted, err := svc.Submit(context.Background(), validInput(), allRequiredFiles(t), "10.0.0.1")
	require.NoError(t, err)

	// Both match, ref case-insensitively.
	found, err := svc.Lookup(submitted.ApplicationRef, "880112-14-5523")
	require.NoError(t, err)
	assert.Equal(t, submitted.ID, found.ID)

	lower, err := svc.Lookup(fmt.Sprintf("app%s", submitted.ApplicationRef[3:]), "880112-14-5523")
	require.NoError(t, err)
	assert.Equal(t, submitted.ID, lower.ID)

	// Correct ref, wrong IC.
	_, err = svc.Lookup(submitted.ApplicationRef, "990101-01-9999")
	require.ErrorIs(t, err, apperrors.ErrApplicationNotFound)

	// Missing factors.
	_, err = svc.Lookup("", "880112-14-5523")
	require.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestLookupFindsLegacyMockApplications(t *testing.T) {
	svc, _ := newTestService(t)

	found, err := svc.Lookup("APP-2025-90001", "880112-14-5523")
	require.NoError(t, err)
	assert.Equal(t, "mock-0001", found.ID)
	assert.Equal(t, models.SourceMock, found.Source)
}

func TestListMergesPersistedAndMockNewestFirst(t *testing.T) {
	svc, repo := newTestService(t)

	submitted, err := svc.Submit(context.Background(), validInput(), allRequiredFiles(t), "10.0.0.1")
	require.NoError(t, err)

	listing, err := svc.List(1, 50)
	require.NoError(t, err)

	require.Len(t, repo.ListApplications(), 1)
	require.Len(t, listing.Applications, 4) // one persisted + three mock
	assert.Equal(t, submitted.ID, listing.Applications[0].ID)

	for i := 1; i < len(listing.Applications); i++ {
		assert.False(t, listing.Applications[i-1].AppliedDate.Before(listing.Applications[i].AppliedDate))
	}
}

func TestListPaginates(t *testing.T) {
	svc, _ := newTestService(t)

	listing, err := svc.List(1, 2)
	require.NoError(t, err)
	assert.Len(t, listing.Applications, 2)
	assert.Equal(t, int64(3), listing.Pagination.TotalItems)

	second, err := svc.List(2, 2)
	require.NoError(t, err)
	assert.Len(t, second.Applications, 1)
}

func TestResolveDocumentPath(t *testing.T) {
	svc, _ := newTestService(t)

	resp, err := svc.Submit(context.Background(), validInput(), allRequiredFiles(t), "10.0.0.1")
	require.NoError(t, err)

	doc := resp.Documents[0]
	path, resolved, err := svc.ResolveDocumentPath(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, resolved.ID)
	assert.FileExists(t, path)

	_, _, err = svc.ResolveDocumentPath("missing-doc")
	require.ErrorIs(t, err, apperrors.ErrDocumentNotFound)
}

func TestSubmitStorageFailureLeavesNoDurableState(t *testing.T) {
	repo, err := repositories.NewRegistrationRepository(t.TempDir())
	require.NoError(t, err)
	uploadDir := t.TempDir()
	storage, err := filestorage.NewLocalStorage(uploadDir, models.MaxDocumentSize)
	require.NoError(t, err)
	svc := NewRegistrationService(repo, storage)

	// A header with no backing part fails when the service opens it to copy
	// its content, after other files may already be on disk.
	files := allRequiredFiles(t)
	files[models.DocAddressProof] = []*multipart.FileHeader{{Filename: "proof.pdf", Size: 3}}

	_, err = svc.Submit(context.Background(), validInput(), files, "10.0.0.1")
	require.Error(t, err)

	assert.Empty(t, repo.ListApplications(), "failed submission must not leave an application record")
	assert.Empty(t, repo.ListAudit(), "failed submission must not leave audit entries")

	entries, err := os.ReadDir(uploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "failed submission must not leave stored files")
}
