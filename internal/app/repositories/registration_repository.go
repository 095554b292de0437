package repositories

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nazrin/tadikahub/internal/app/models"
	"github.com/nazrin/tadikahub/internal/pkg/apperrors"
	"github.com/nazrin/tadikahub/internal/pkg/jsonstore"
	"github.com/nazrin/tadikahub/internal/pkg/logger"
)

// JSON table file names, one per logical table.
const (
	applicationsFile = "registration-applications.json"
	documentsFile    = "edms-documents.json"
	auditFile        = "edms-audit.json"
)

// RegistrationRepository persists applications, documents and the audit
// trail in JSON table files under one data directory.
type RegistrationRepository struct {
	apps  *jsonstore.Table[models.RegistrationApplication]
	docs  *jsonstore.Table[models.RegistrationDocument]
	audit *jsonstore.Table[models.RegistrationAudit]
}

// NewRegistrationRepository creates the repository rooted at dataDir.
func NewRegistrationRepository(dataDir string) (*RegistrationRepository, error) {
	apps, err := jsonstore.NewTable[models.RegistrationApplication](filepath.Join(dataDir, applicationsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to open applications table: %w", err)
	}
	docs, err := jsonstore.NewTable[models.RegistrationDocument](filepath.Join(dataDir, documentsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to open documents table: %w", err)
	}
	audit, err := jsonstore.NewTable[models.RegistrationAudit](filepath.Join(dataDir, auditFile))
	if err != nil {
		return nil, fmt.Errorf("failed to open audit table: %w", err)
	}

	return &RegistrationRepository{apps: apps, docs: docs, audit: audit}, nil
}

// InsertApplication allocates the application ref and persists the record.
// The ref is sequential within the application's calendar year, computed by
// counting existing refs with that year's prefix; counting and appending
// happen under the same table lock.
func (r *RegistrationRepository) InsertApplication(app *models.RegistrationApplication) error {
	return r.apps.Update(func(records []models.RegistrationApplication) ([]models.RegistrationApplication, error) {
		prefix := fmt.Sprintf("APP-%d-", app.AppliedDate.Year())
		seq := 1
		for _, existing := range records {
			if strings.HasPrefix(existing.ApplicationRef, prefix) {
				seq++
			}
		}
		app.ApplicationRef = fmt.Sprintf("%s%05d", prefix, seq)
		return append(records, *app), nil
	})
}

// ListApplications returns every persisted application.
func (r *RegistrationRepository) ListApplications() []models.RegistrationApplication {
	return r.apps.Load()
}

// FindApplicationByID looks up one application.
func (r *RegistrationRepository) FindApplicationByID(id string) (*models.RegistrationApplication, error) {
	for _, app := range r.apps.Load() {
		if app.ID == id {
			return &app, nil
		}
	}
	return nil, apperrors.ErrApplicationNotFound
}

// FindByRefAndGuardianIC is the two-factor guardian lookup: case-insensitive
// on the application ref, exact on the guardian IC. Both must match.
func (r *RegistrationRepository) FindByRefAndGuardianIC(ref, guardianIC string) (*models.RegistrationApplication, error) {
	for _, app := range r.apps.Load() {
		if strings.EqualFold(app.ApplicationRef, ref) && app.GuardianIC == guardianIC {
			return &app, nil
		}
	}
	return nil, apperrors.ErrApplicationNotFound
}

// UpdateApplication replaces the stored record matching the given ID.
func (r *RegistrationRepository) UpdateApplication(app *models.RegistrationApplication) error {
	return r.apps.Update(func(records []models.RegistrationApplication) ([]models.RegistrationApplication, error) {
		for i := range records {
			if records[i].ID == app.ID {
				records[i] = *app
				return records, nil
			}
		}
		return nil, apperrors.ErrApplicationNotFound
	})
}

// DeleteApplication removes one application record. Used to unwind a
// submission whose later writes failed; no error if the id is absent.
func (r *RegistrationRepository) DeleteApplication(id string) error {
	return r.apps.Update(func(records []models.RegistrationApplication) ([]models.RegistrationApplication, error) {
		kept := make([]models.RegistrationApplication, 0, len(records))
		for _, rec := range records {
			if rec.ID != id {
				kept = append(kept, rec)
			}
		}
		return kept, nil
	})
}

// InsertDocuments appends the given document records.
func (r *RegistrationRepository) InsertDocuments(docs []models.RegistrationDocument) error {
	return r.docs.Update(func(records []models.RegistrationDocument) ([]models.RegistrationDocument, error) {
		return append(records, docs...), nil
	})
}

// DeleteDocumentsByApplication removes every document record attached to
// one application. Used to unwind a failed submission.
func (r *RegistrationRepository) DeleteDocumentsByApplication(applicationID string) error {
	return r.docs.Update(func(records []models.RegistrationDocument) ([]models.RegistrationDocument, error) {
		kept := make([]models.RegistrationDocument, 0, len(records))
		for _, rec := range records {
			if rec.ApplicationID != applicationID {
				kept = append(kept, rec)
			}
		}
		return kept, nil
	})
}

// ListDocumentsByApplication returns the documents attached to one application.
func (r *RegistrationRepository) ListDocumentsByApplication(applicationID string) []models.RegistrationDocument {
	var out []models.RegistrationDocument
	for _, doc := range r.docs.Load() {
		if doc.ApplicationID == applicationID {
			out = append(out, doc)
		}
	}
	return out
}

// FindDocumentByID looks up one document.
func (r *RegistrationRepository) FindDocumentByID(id string) (*models.RegistrationDocument, error) {
	for _, doc := range r.docs.Load() {
		if doc.ID == id {
			return &doc, nil
		}
	}
	return nil, apperrors.ErrDocumentNotFound
}

// UpdateDocument replaces the stored record matching the given ID.
func (r *RegistrationRepository) UpdateDocument(doc *models.RegistrationDocument) error {
	return r.docs.Update(func(records []models.RegistrationDocument) ([]models.RegistrationDocument, error) {
		for i := range records {
			if records[i].ID == doc.ID {
				records[i] = *doc
				return records, nil
			}
		}
		return nil, apperrors.ErrDocumentNotFound
	})
}

// AppendAudit stamps the entry with an id and server timestamp and prepends
// it to the audit table, newest first. Entries are never mutated afterwards.
func (r *RegistrationRepository) AppendAudit(entry models.RegistrationAudit) error {
	entry.ID = uuid.New().String()
	entry.Timestamp = time.Now()

	err := r.audit.Update(func(records []models.RegistrationAudit) ([]models.RegistrationAudit, error) {
		return append([]models.RegistrationAudit{entry}, records...), nil
	})
	if err != nil {
		logger.Error().Err(err).Str("action", string(entry.Action)).Msg("Failed to append audit entry")
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

// ListAudit returns the audit trail, newest first.
func (r *RegistrationRepository) ListAudit() []models.RegistrationAudit {
	return r.audit.Load()
}
