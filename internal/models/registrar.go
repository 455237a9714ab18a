package models

import "time"

// Registrar is an account authorized to perform issuance and revocation
// operations across record kinds. Registrars are deactivated, never deleted,
// so the audit history stays resolvable.
type Registrar struct {
	Account     string     `json:"account"`
	Active      bool       `json:"active"`
	AddedBy     string     `json:"added_by"`
	AddedAt     time.Time  `json:"added_at"`
	RemovedBy   *string    `json:"removed_by,omitempty"`
	RemovedAt   *time.Time `json:"removed_at,omitempty"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
