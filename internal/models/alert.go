package models

import (
	"database/sql"
	"time"
)

// Alert severities
const (
	SeverityHigh   = "HIGH"
	SeverityMedium = "MEDIUM"
	SeverityLow    = "LOW"
)

// Alert categories raised by the inconsistency detector
const (
	AlertDuplicateID           = "DUPLICATE_ID"
	AlertOrphanedDependent     = "ORPHANED_DEPENDENT"
	AlertEnrollmentWithoutCode = "ENROLLMENT_WITHOUT_CODE"
)

// Alert is raised by the inconsistency detector and resolved only by an
// operator. SubjectRef identifies the implicated record (a national ID
// or an entity id, depending on category) so the same open finding is
// not raised twice.
type Alert struct {
	ID         int            `db:"id" json:"id"`
	Category   string         `db:"category" json:"category"`
	Severity   string         `db:"severity" json:"severity"`
	Message    string         `db:"message" json:"message"`
	SubjectRef string         `db:"subject_ref" json:"subject_ref"`
	BatchCode  sql.NullString `db:"batch_code" json:"batch_code"`
	Resolved   bool           `db:"resolved" json:"resolved"`
	ResolvedAt sql.NullTime   `db:"resolved_at" json:"resolved_at"`
	ResolvedBy sql.NullInt64  `db:"resolved_by" json:"resolved_by"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at" json:"updated_at"`
}
