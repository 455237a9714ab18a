package models

import "time"

// VoterStatus captures the voter registration lifecycle.
type VoterStatus string

const (
	VoterPending    VoterStatus = "PENDING"
	VoterApproved   VoterStatus = "APPROVED"
	VoterRemoved    VoterStatus = "REMOVED"
	VoterChallenged VoterStatus = "CHALLENGED"
)

// VoterRegistration is keyed by the holder account: one registration per
// account at any time, so the account is the natural key.
type VoterRegistration struct {
	Account            string      `json:"account"`
	BirthCertificateID string      `json:"birth_certificate_id"`
	Address            string      `json:"address"`
	DistrictID         string      `json:"district_id"`
	RegisteredAt       time.Time   `json:"registered_at"`
	ApprovedBy         *string     `json:"approved_by,omitempty"`
	ApprovedAt         *time.Time  `json:"approved_at,omitempty"`
	Status             VoterStatus `json:"status"`
}

// DistrictType categorizes election districts.
type DistrictType string

const (
	DistrictCongressional DistrictType = "CONGRESSIONAL"
	DistrictState         DistrictType = "STATE"
	DistrictCounty        DistrictType = "COUNTY"
	DistrictMunicipal     DistrictType = "MUNICIPAL"
	DistrictSchool        DistrictType = "SCHOOL"
)

// District is an election district. The roster of registered voter accounts
// is owned by the district store and kept consistent by the effects engine.
type District struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Region    string       `json:"region"`
	Type      DistrictType `json:"type"`
	CreatedBy string       `json:"created_by"`
	CreatedAt time.Time    `json:"created_at"`
}

// ValidDistrictType reports whether the given category is known.
func ValidDistrictType(t DistrictType) bool {
	switch t {
	case DistrictCongressional, DistrictState, DistrictCounty, DistrictMunicipal, DistrictSchool:
		return true
	}
	return false
}
