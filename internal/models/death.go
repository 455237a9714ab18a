package models

import "time"

// DeathStatus captures the death certificate lifecycle.
type DeathStatus string

const (
	DeathRequested DeathStatus = "REQUESTED"
	DeathIssued    DeathStatus = "ISSUED"
)

// DeathCertificate records a death. When BirthCertificateID is present the
// death timestamp is cross-validated against the birth record at request
// time. EffectsProcessedAt marks the cascade as applied so re-invocations of
// the effects engine stay idempotent.
type DeathCertificate struct {
	ID                 string      `json:"id"`
	SubjectAccount     *string     `json:"subject_account,omitempty"`
	SubjectName        string      `json:"subject_name"`
	BirthCertificateID *string     `json:"birth_certificate_id,omitempty"`
	Cause              string      `json:"cause"`
	Location           string      `json:"location"`
	Examiner           string      `json:"examiner"`
	DeathTime          time.Time   `json:"death_time"`
	RequestedAt        time.Time   `json:"requested_at"`
	IssuedBy           *string     `json:"issued_by,omitempty"`
	IssuedAt           *time.Time  `json:"issued_at,omitempty"`
	EffectsProcessedAt *time.Time  `json:"effects_processed_at,omitempty"`
	Status             DeathStatus `json:"status"`
}
