package models

import "time"

// AuditAction constants represent actions to be logged.
const (
	AuditActionBootstrap       = "REGISTRAR_BOOTSTRAP"
	AuditActionRegistrarAdd    = "REGISTRAR_ADD"
	AuditActionRegistrarRemove = "REGISTRAR_REMOVE"
	AuditActionRecordRequest   = "RECORD_REQUEST"
	AuditActionRecordIssue     = "RECORD_ISSUE"
	AuditActionRecordAmend     = "RECORD_AMEND"
	AuditActionRecordRevoke    = "RECORD_REVOKE"
	AuditActionRecordSuspend   = "RECORD_SUSPEND"
	AuditActionRecordReinstate = "RECORD_REINSTATE"
	AuditActionDistrictAdd     = "DISTRICT_ADD"
	AuditActionRedistrict      = "REDISTRICT"
	AuditActionCascade         = "CASCADE_APPLY"
	AuditActionSimulation      = "SIMULATION"
	AuditActionDisclosure      = "DISCLOSURE_PROOF"
	AuditActionExtract         = "EXTRACT_GENERATE"
)

// AuditLog represents an audit trail record persisted outside the
// deterministic state machine.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	Actor      *string   `db:"actor" json:"actor,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	Outcome    string    `db:"outcome" json:"outcome"`
	Detail     []byte    `db:"detail" json:"detail,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
