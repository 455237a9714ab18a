package dto

import "time"

// AgeProofRequest asks for a minimal-information age attestation derived
// from an issued birth certificate.
type AgeProofRequest struct {
	BirthCertificateID string    `json:"birthCertificateId" validate:"required"`
	ThresholdYears     int       `json:"thresholdYears" validate:"required,gt=0"`
	AsOf               time.Time `json:"asOf" validate:"required"`
}

// AgeProof is the attestation plus its verifiable artifact. It carries the
// boolean predicate and nothing derived from the underlying birth timestamp
// beyond the blinded commitment.
type AgeProof struct {
	BirthCertificateID string    `json:"birthCertificateId"`
	ThresholdYears     int       `json:"thresholdYears"`
	AsOf               time.Time `json:"asOf"`
	Satisfied          bool      `json:"satisfied"`
	Commitment         string    `json:"commitment"`
	Proof              string    `json:"proof"`
}

// VerifyAgeProofRequest rechecks a previously issued attestation.
type VerifyAgeProofRequest struct {
	Proof AgeProof `json:"proof" validate:"required"`
}

// VerifyAgeProofResult reports whether the artifact is authentic.
type VerifyAgeProofResult struct {
	Valid bool `json:"valid"`
}
