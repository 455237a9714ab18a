package models

import "time"

// SimulationScenario tags the kind of what-if run.
type SimulationScenario string

const (
	ScenarioDisaster      SimulationScenario = "DISASTER"
	ScenarioElectionDay   SimulationScenario = "ELECTION_DAY"
	ScenarioRedistricting SimulationScenario = "REDISTRICTING"
)

// SimulationSession is an isolated what-if run against a snapshot of ledger
// state. Sessions never mutate production stores and are discarded on end
// unless commit promotion is explicitly enabled by policy.
type SimulationSession struct {
	ID                string             `json:"id"`
	Scenario          SimulationScenario `json:"scenario"`
	Tag               string             `json:"tag"`
	AffectedDistricts []string           `json:"affected_districts"`
	StartedBy         string             `json:"started_by"`
	StartedAt         time.Time          `json:"started_at"`
	EndedAt           *time.Time         `json:"ended_at,omitempty"`
	Stats             SimulationStats    `json:"stats"`
}

// SimulationStats aggregates what happened inside a session.
type SimulationStats struct {
	OperationsApplied  int            `json:"operations_applied"`
	OperationsRejected int            `json:"operations_rejected"`
	ByEventKind        map[string]int `json:"by_event_kind,omitempty"`
	ProjectedTurnout   map[string]int `json:"projected_turnout,omitempty"`
}
