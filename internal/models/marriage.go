package models

import "time"

// MarriageStatus captures the marriage license lifecycle.
type MarriageStatus string

const (
	MarriagePending MarriageStatus = "PENDING"
	MarriageIssued  MarriageStatus = "ISSUED"
	MarriageRevoked MarriageStatus = "REVOKED"
)

// Partner identifies one party on a marriage license.
type Partner struct {
	Account string `json:"account"`
	Name    string `json:"name"`
}

// MarriageLicense is a marriage record owned by the marriage store. The
// identifier is derived from both partner accounts plus a sequence number so
// repeat filings after a revocation stay unique.
type MarriageLicense struct {
	ID           string         `json:"id"`
	Partner1     Partner        `json:"partner1"`
	Partner2     Partner        `json:"partner2"`
	Jurisdiction string         `json:"jurisdiction"`
	IssuedBy     *string        `json:"issued_by,omitempty"`
	IssuedAt     *time.Time     `json:"issued_at,omitempty"`
	RequestedAt  time.Time      `json:"requested_at"`
	Status       MarriageStatus `json:"status"`
}

// InvolvesAccount reports whether the given account is one of the partners.
func (m *MarriageLicense) InvolvesAccount(account string) bool {
	return m.Partner1.Account == account || m.Partner2.Account == account
}
