package models

import "time"

// EventKind identifies the mutation an event describes.
type EventKind string

const (
	EventRegistrarBootstrapped EventKind = "REGISTRAR_BOOTSTRAPPED"
	EventRegistrarAdded        EventKind = "REGISTRAR_ADDED"
	EventRegistrarRemoved      EventKind = "REGISTRAR_REMOVED"

	EventMarriageRequested EventKind = "MARRIAGE_REQUESTED"
	EventMarriageIssued    EventKind = "MARRIAGE_ISSUED"
	EventMarriageRevoked   EventKind = "MARRIAGE_REVOKED"

	EventBirthRequested EventKind = "BIRTH_REQUESTED"
	EventBirthIssued    EventKind = "BIRTH_ISSUED"
	EventBirthAmended   EventKind = "BIRTH_AMENDED"

	EventDeathRequested EventKind = "DEATH_REQUESTED"
	EventDeathIssued    EventKind = "DEATH_ISSUED"

	EventLicenseIssued    EventKind = "LICENSE_ISSUED"
	EventLicenseSuspended EventKind = "LICENSE_SUSPENDED"
	EventLicenseReinstate EventKind = "LICENSE_REINSTATED"
	EventLicenseRevoked   EventKind = "LICENSE_REVOKED"
	EventLicenseExpired   EventKind = "LICENSE_EXPIRED"

	EventVoterRegistered EventKind = "VOTER_REGISTERED"
	EventVoterApproved   EventKind = "VOTER_APPROVED"
	EventVoterChallenged EventKind = "VOTER_CHALLENGED"
	EventVoterRemoved    EventKind = "VOTER_REMOVED"

	EventDistrictAdded        EventKind = "DISTRICT_ADDED"
	EventVotersRedistricted   EventKind = "VOTERS_REDISTRICTED"
	EventDeathEffectsApplied  EventKind = "DEATH_EFFECTS_APPLIED"
	EventSimulationStarted    EventKind = "SIMULATION_STARTED"
	EventSimulationEnded      EventKind = "SIMULATION_ENDED"
)

// Event is the structured record emitted by every successful mutation.
// Events carry the engine-assigned sequence so replication consumers can
// replay them in finalization order.
type Event struct {
	Seq       uint64                 `json:"seq"`
	Kind      EventKind              `json:"kind"`
	RecordIDs []string               `json:"record_ids"`
	Actor     string                 `json:"actor"`
	OldStatus string                 `json:"old_status,omitempty"`
	NewStatus string                 `json:"new_status,omitempty"`
	At        time.Time              `json:"at"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}
