package models

import "time"

// LicenseStatus captures the driver license lifecycle. EXPIRED is evaluated
// lazily against the clock oracle on access, never by a background timer.
type LicenseStatus string

const (
	LicenseActive    LicenseStatus = "ACTIVE"
	LicenseSuspended LicenseStatus = "SUSPENDED"
	LicenseRevoked   LicenseStatus = "REVOKED"
	LicenseExpired   LicenseStatus = "EXPIRED"
)

// DriverLicense is a driving credential anchored to an issued birth
// certificate for age derivation.
type DriverLicense struct {
	ID                 string        `json:"id"`
	HolderAccount      string        `json:"holder_account"`
	HolderName         string        `json:"holder_name"`
	BirthCertificateID string        `json:"birth_certificate_id"`
	Class              string        `json:"class"`
	Endorsements       []string      `json:"endorsements,omitempty"`
	Restrictions       []string      `json:"restrictions,omitempty"`
	IssuedBy           string        `json:"issued_by"`
	IssuingAuthority   string        `json:"issuing_authority"`
	IssuedAt           time.Time     `json:"issued_at"`
	ExpiresAt          time.Time     `json:"expires_at"`
	Status             LicenseStatus `json:"status"`
}

// ExpiredBy reports whether the license has lapsed at the given instant.
// Only ACTIVE and SUSPENDED licenses can lapse; REVOKED is terminal.
func (l *DriverLicense) ExpiredBy(now time.Time) bool {
	if l.Status != LicenseActive && l.Status != LicenseSuspended {
		return false
	}
	return now.After(l.ExpiresAt)
}
