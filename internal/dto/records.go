package dto

import (
	"time"

	"github.com/civisuite/vitals-ledger/internal/models"
)

// RegistrarRequest nominates an account for the registrar role.
type RegistrarRequest struct {
	Account string `json:"account" validate:"required"`
}

// RequestMarriageRequest files a marriage license for two partners. The
// caller must be one of the two named partners.
type RequestMarriageRequest struct {
	Partner1     models.Partner `json:"partner1" validate:"required"`
	Partner2     models.Partner `json:"partner2" validate:"required"`
	Jurisdiction string         `json:"jurisdiction" validate:"required"`
}

// RequestBirthRequest files a birth certificate.
type RequestBirthRequest struct {
	SubjectName   string    `json:"subjectName" validate:"required"`
	BirthTime     time.Time `json:"birthTime" validate:"required"`
	BirthLocation string    `json:"birthLocation" validate:"required"`
	Parents       []string  `json:"parents"`
}

// IssueBirthRequest issues a requested certificate, optionally linking the
// subject account. The link is immutable once set.
type IssueBirthRequest struct {
	SubjectAccount string `json:"subjectAccount"`
}

// AmendBirthRequest updates certificate content. Empty fields are left
// untouched; the subject link can never be amended.
type AmendBirthRequest struct {
	SubjectName   string     `json:"subjectName"`
	BirthTime     *time.Time `json:"birthTime"`
	BirthLocation string     `json:"birthLocation"`
	Parents       []string   `json:"parents"`
}

// RequestDeathRequest files a death certificate.
type RequestDeathRequest struct {
	SubjectAccount     string    `json:"subjectAccount"`
	SubjectName        string    `json:"subjectName" validate:"required"`
	BirthCertificateID string    `json:"birthCertificateId"`
	Cause              string    `json:"cause" validate:"required"`
	Location           string    `json:"location"`
	Examiner           string    `json:"examiner"`
	DeathTime          time.Time `json:"deathTime" validate:"required"`
}

// IssueLicenseRequest issues a driver license against a resolvable birth
// certificate.
type IssueLicenseRequest struct {
	HolderAccount      string   `json:"holderAccount" validate:"required"`
	HolderName         string   `json:"holderName" validate:"required"`
	BirthCertificateID string   `json:"birthCertificateId" validate:"required"`
	Class              string   `json:"class" validate:"required"`
	Endorsements       []string `json:"endorsements"`
	Restrictions       []string `json:"restrictions"`
	ValidityDays       int      `json:"validityDays" validate:"required,gt=0"`
	IssuingAuthority   string   `json:"issuingAuthority" validate:"required"`
}

// AddDistrictRequest registers an election district.
type AddDistrictRequest struct {
	ID     string              `json:"id" validate:"required"`
	Name   string              `json:"name" validate:"required"`
	Region string              `json:"region" validate:"required"`
	Type   models.DistrictType `json:"type" validate:"required"`
}

// RegisterVoterRequest registers the calling account to vote.
type RegisterVoterRequest struct {
	BirthCertificateID string `json:"birthCertificateId" validate:"required"`
	Address            string `json:"address" validate:"required"`
	DistrictID         string `json:"districtId" validate:"required"`
}

// AdjudicateVoterRequest resolves a challenged registration.
type AdjudicateVoterRequest struct {
	Approve bool   `json:"approve"`
	Note    string `json:"note"`
}

// RedistrictRequest moves voter registrations between districts atomically.
type RedistrictRequest struct {
	FromDistrictID string   `json:"fromDistrictId" validate:"required"`
	ToDistrictID   string   `json:"toDistrictId" validate:"required"`
	Accounts       []string `json:"accounts"`
}
