package models

import "time"

// BirthStatus captures the birth certificate lifecycle.
type BirthStatus string

const (
	BirthRequested BirthStatus = "REQUESTED"
	BirthIssued    BirthStatus = "ISSUED"
	BirthAmended   BirthStatus = "AMENDED"
)

// BirthCertificate records a birth. SubjectAccount links the certificate to a
// living account at most once; amendments may change content but never the
// link.
type BirthCertificate struct {
	ID             string      `json:"id"`
	SubjectName    string      `json:"subject_name"`
	BirthTime      time.Time   `json:"birth_time"`
	BirthLocation  string      `json:"birth_location"`
	Parents        []string    `json:"parents,omitempty"`
	SubjectAccount *string     `json:"subject_account,omitempty"`
	RequestedAt    time.Time   `json:"requested_at"`
	IssuedBy       *string     `json:"issued_by,omitempty"`
	IssuedAt       *time.Time  `json:"issued_at,omitempty"`
	AmendedAt      *time.Time  `json:"amended_at,omitempty"`
	Status         BirthStatus `json:"status"`
}

// Resolvable reports whether the certificate can back downstream eligibility
// checks (driver license issuance, voter registration, age proofs).
func (b *BirthCertificate) Resolvable() bool {
	return b.Status == BirthIssued || b.Status == BirthAmended
}

// AgeAt computes the subject's age in whole years at the given instant.
func (b *BirthCertificate) AgeAt(asOf time.Time) int {
	years := asOf.Year() - b.BirthTime.Year()
	anniversary := b.BirthTime.AddDate(years, 0, 0)
	if anniversary.After(asOf) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}
