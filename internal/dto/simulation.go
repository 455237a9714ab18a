package dto

// StartSimulationRequest opens an isolated what-if session.
type StartSimulationRequest struct {
	Scenario          string   `json:"scenario" validate:"required"`
	Tag               string   `json:"tag" validate:"required"`
	AffectedDistricts []string `json:"affectedDistricts" validate:"required,min=1"`
}

// ElectionDayRequest projects election-day turnout inside a running session.
type ElectionDayRequest struct {
	TurnoutPercent int      `json:"turnoutPercent" validate:"required,gte=0,lte=100"`
	Districts      []string `json:"districts" validate:"required,min=1"`
}

// EndSimulationRequest closes the running session. Commit promotion is
// gated by policy and fails NOT_SUPPORTED by default.
type EndSimulationRequest struct {
	Commit bool `json:"commit"`
}
