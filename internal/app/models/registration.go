package models

import "time"

// ApplicationSource tags where an application originated. It never changes
// after creation.
type ApplicationSource string

const (
	SourceSelfService ApplicationSource = "self_service"
	SourceInternal    ApplicationSource = "internal"
	SourceMock        ApplicationSource = "mock"
)

// ApplicationStatus defines the admission application lifecycle state
type ApplicationStatus string

const (
	StatusDraft       ApplicationStatus = "draft"
	StatusSubmitted   ApplicationStatus = "submitted"
	StatusUnderReview ApplicationStatus = "under_review"
	StatusApproved    ApplicationStatus = "approved"
	StatusEnrolled    ApplicationStatus = "enrolled"
	StatusRejected    ApplicationStatus = "rejected"
)

// DocType identifies the kind of supporting document attached to an application
type DocType string

const (
	DocBirthCert    DocType = "birth_cert"
	DocStudentIC    DocType = "student_ic"
	DocGuardianIC   DocType = "guardian_ic"
	DocAddressProof DocType = "address_proof"
	DocOther        DocType = "other"
)

// RequiredDocTypes lists the document types every application must carry
// before it can be approved.
var RequiredDocTypes = []DocType{DocBirthCert, DocStudentIC, DocGuardianIC, DocAddressProof}

// DocumentStatus defines the verification state of an uploaded document
type DocumentStatus string

const (
	DocUploaded DocumentStatus = "uploaded"
	DocVerified DocumentStatus = "verified"
	DocRejected DocumentStatus = "rejected"
)

// MaxDocumentSize is the per-file upload cap in bytes (10 MiB)
const MaxDocumentSize = 10 << 20

// RegistrationApplication represents one admission request
type RegistrationApplication struct {
	ID              string            `json:"id"`
	ApplicationRef  string            `json:"applicationRef"`
	Source          ApplicationSource `json:"source"`
	StudentName     string            `json:"studentName"`
	StudentIC       string            `json:"studentIc"`
	DateOfBirth     string            `json:"dateOfBirth"`
	GuardianName    string            `json:"guardianName"`
	GuardianIC      string            `json:"guardianIc"`
	GuardianPhone   string            `json:"guardianPhone"`
	GuardianEmail   string            `json:"guardianEmail,omitempty"`
	Address         string            `json:"address,omitempty"`
	CentreID        string            `json:"centreId"`
	CentreName      string            `json:"centreName"`
	EducationLevel  string            `json:"educationLevel"`
	SubsidyCategory string            `json:"subsidyCategory,omitempty"`
	Status          ApplicationStatus `json:"status"`
	AppliedDate     time.Time         `json:"appliedDate"`
	ReviewedDate    *time.Time        `json:"reviewedDate,omitempty"`
	ReviewedBy      string            `json:"reviewedBy,omitempty"`
	Remarks         string            `json:"remarks,omitempty"`
}

// RegistrationDocument is one uploaded file attached to an application
type RegistrationDocument struct {
	ID             string         `json:"id"`
	ApplicationID  string         `json:"applicationId"`
	ApplicationRef string         `json:"applicationRef"`
	DocType        DocType        `json:"docType"`
	Status         DocumentStatus `json:"status"`
	OriginalName   string         `json:"originalName"`
	StoredName     string         `json:"storedName"`
	RelativePath   string         `json:"relativePath"`
	MimeType       string         `json:"mimeType"`
	Size           int64          `json:"size"`
	Remarks        string         `json:"remarks,omitempty"`
	UploadedAt     time.Time      `json:"uploadedAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// ActorType identifies who performed an audited action
type ActorType string

const (
	ActorGuardian ActorType = "guardian"
	ActorAdmin    ActorType = "admin"
	ActorSystem   ActorType = "system"
)

// AuditAction is the closed set of lifecycle events recorded in the audit trail
type AuditAction string

const (
	AuditApplicationSubmitted AuditAction = "application_submitted"
	AuditApplicationApproved  AuditAction = "application_approved"
	AuditApplicationRejected  AuditAction = "application_rejected"
	AuditDocumentUploaded     AuditAction = "document_uploaded"
	AuditDocumentVerified     AuditAction = "document_verified"
	AuditDocumentRejected     AuditAction = "document_rejected"
)

// RegistrationAudit is one append-only audit log entry. Entries are never
// mutated or deleted after append.
type RegistrationAudit struct {
	ID         string      `json:"id"`
	Timestamp  time.Time   `json:"timestamp"`
	ActorType  ActorType   `json:"actorType"`
	ActorName  string      `json:"actorName"`
	Action     AuditAction `json:"action"`
	EntityType string      `json:"entityType"`
	EntityID   string      `json:"entityId"`
	Before     string      `json:"before,omitempty"`
	After      string      `json:"after,omitempty"`
	IPAddress  string      `json:"ipAddress,omitempty"`
	Notes      string      `json:"notes,omitempty"`
}

// DocumentSummary is derived per application, never persisted
type DocumentSummary struct {
	RequiredCount         int  `json:"requiredCount"`
	UploadedRequiredCount int  `json:"uploadedRequiredCount"`
	VerifiedRequiredCount int  `json:"verifiedRequiredCount"`
	HasAllRequired        bool `json:"hasAllRequired"`
}

// SummarizeDocuments computes the required-document summary for one
// application's documents. A rejected document still counts as uploaded;
// only verification is tracked separately.
func SummarizeDocuments(docs []RegistrationDocument) DocumentSummary {
	uploaded := make(map[DocType]bool)
	verified := make(map[DocType]bool)
	required := make(map[DocType]bool, len(RequiredDocTypes))
	for _, t := range RequiredDocTypes {
		required[t] = true
	}

	for _, d := range docs {
		if !required[d.DocType] {
			continue
		}
		uploaded[d.DocType] = true
		if d.Status == DocVerified {
			verified[d.DocType] = true
		}
	}

	return DocumentSummary{
		RequiredCount:         len(RequiredDocTypes),
		UploadedRequiredCount: len(uploaded),
		VerifiedRequiredCount: len(verified),
		HasAllRequired:        len(uploaded) == len(RequiredDocTypes),
	}
}
