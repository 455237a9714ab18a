package service

import (
	"context"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/civisuite/vitals-ledger/internal/dto"
	"github.com/civisuite/vitals-ledger/internal/ledger"
	"github.com/civisuite/vitals-ledger/internal/models"
	appErrors "github.com/civisuite/vitals-ledger/pkg/errors"
)

// SimulationService drives the what-if controller: Idle -> Running -> Idle.
// While a session runs, mutating operations targeting an affected district
// are absorbed by the isolated snapshot; production is never touched unless
// the deployment explicitly enables commit promotion.
type SimulationService struct {
	eng         *ledger.Ledger
	audit       auditLogger
	validator   *validator.Validate
	logger      *zap.Logger
	metrics     *MetricsService
	clock       Clock
	allowCommit bool
}

// NewSimulationService constructs the simulation controller.
func NewSimulationService(eng *ledger.Ledger, audit auditLogger, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger, clock Clock, allowCommit bool) *SimulationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if clock == nil {
		clock = UTCClock
	}
	return &SimulationService{eng: eng, audit: audit, validator: validate, logger: logger, metrics: metrics, clock: clock, allowCommit: allowCommit}
}

// Start opens an isolated session for the named scenario over the affected
// districts. Registrars and root may start sessions; nested sessions fail.
func (s *SimulationService) Start(ctx context.Context, actor models.Actor, req dto.StartSimulationRequest) (*models.SimulationSession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid simulation payload")
	}
	scenario, err := parseScenario(req.Scenario)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor); err != nil {
		return nil, err
	}

	now := s.clock()
	session := &models.SimulationSession{
		ID:                uuid.NewString(),
		Scenario:          scenario,
		Tag:               req.Tag,
		AffectedDistricts: append([]string(nil), req.AffectedDistricts...),
		StartedBy:         actor.Account,
		StartedAt:         now,
	}
	if err := s.eng.StartSimulation(session); err != nil {
		recordRejection(s.metrics, err)
		return nil, err
	}

	events, err := s.eng.Execute(ledger.Target{}, func(t *ledger.Txn) error {
		t.Emit(models.Event{
			Kind:      models.EventSimulationStarted,
			RecordIDs: []string{session.ID},
			Actor:     actor.Account,
			At:        now,
			Payload: map[string]interface{}{
				"scenario":  string(scenario),
				"tag":       req.Tag,
				"districts": session.AffectedDistricts,
			},
		})
		return nil
	})
	if err == nil {
		s.observe(events)
	}
	emitAudit(ctx, s.audit, s.logger, &models.AuditLog{
		Actor:      optionalString(actor.Account),
		Action:     models.AuditActionSimulation,
		Resource:   "simulation",
		ResourceID: &session.ID,
		Outcome:    "started",
	})
	return session, nil
}

// SimulateElectionDay opens an ELECTION_DAY session over the given districts
// and folds a turnout projection into its stats: projected voters per
// district computed from the approved roster at the snapshot instant.
func (s *SimulationService) SimulateElectionDay(ctx context.Context, actor models.Actor, req dto.ElectionDayRequest) (*models.SimulationSession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid election day payload")
	}
	if err := s.authorize(actor); err != nil {
		return nil, err
	}

	now := s.clock()
	session := &models.SimulationSession{
		ID:                uuid.NewString(),
		Scenario:          models.ScenarioElectionDay,
		Tag:               "election-day",
		AffectedDistricts: append([]string(nil), req.Districts...),
		StartedBy:         actor.Account,
		StartedAt:         now,
	}
	if err := s.eng.StartSimulation(session); err != nil {
		recordRejection(s.metrics, err)
		return nil, err
	}

	err := s.eng.UpdateSimulationStats(func(stats *models.SimulationStats, snapshot *ledger.Txn) {
		stats.ProjectedTurnout = make(map[string]int, len(req.Districts))
		for _, districtID := range req.Districts {
			approved := 0
			for _, account := range snapshot.RosterAccounts(districtID) {
				if reg, ok := snapshot.Voters().Get(account); ok && reg.Status == models.VoterApproved {
					approved++
				}
			}
			stats.ProjectedTurnout[districtID] = int(math.Round(float64(approved) * float64(req.TurnoutPercent) / 100))
		}
	})
	if err != nil {
		return nil, err
	}

	emitAudit(ctx, s.audit, s.logger, &models.AuditLog{
		Actor:      optionalString(actor.Account),
		Action:     models.AuditActionSimulation,
		Resource:   "simulation",
		ResourceID: &session.ID,
		Outcome:    "started",
	})
	return s.eng.RunningSimulation(), nil
}

// Status returns the running session, or NotFound when idle.
func (s *SimulationService) Status(ctx context.Context) (*models.SimulationSession, error) {
	session := s.eng.RunningSimulation()
	if session == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no simulation session is running")
	}
	return session, nil
}

// End closes the running session. commit=false discards the snapshot.
// commit=true fails NOT_SUPPORTED under the default advisory policy; when the
// deployment flips the policy switch, the snapshot is promoted to production.
func (s *SimulationService) End(ctx context.Context, actor models.Actor, req dto.EndSimulationRequest) (*models.SimulationSession, error) {
	if err := s.authorize(actor); err != nil {
		return nil, err
	}

	now := s.clock()
	var session *models.SimulationSession
	var err error
	outcome := "discarded"
	if req.Commit {
		if !s.allowCommit {
			recordRejection(s.metrics, appErrors.ErrNotSupported)
			return nil, appErrors.Clone(appErrors.ErrNotSupported, "simulation commit promotion is disabled by policy")
		}
		session, err = s.eng.PromoteSimulation(now)
		outcome = "promoted"
	} else {
		session, err = s.eng.EndSimulation(now)
	}
	if err != nil {
		recordRejection(s.metrics, err)
		return nil, err
	}

	events, execErr := s.eng.Execute(ledger.Target{}, func(t *ledger.Txn) error {
		t.Emit(models.Event{
			Kind:      models.EventSimulationEnded,
			RecordIDs: []string{session.ID},
			Actor:     actor.Account,
			At:        now,
			Payload: map[string]interface{}{
				"outcome":             outcome,
				"operations_applied":  session.Stats.OperationsApplied,
				"operations_rejected": session.Stats.OperationsRejected,
			},
		})
		return nil
	})
	if execErr == nil {
		s.observe(events)
	}
	emitAudit(ctx, s.audit, s.logger, &models.AuditLog{
		Actor:      optionalString(actor.Account),
		Action:     models.AuditActionSimulation,
		Resource:   "simulation",
		ResourceID: &session.ID,
		Outcome:    outcome,
	})
	return session, nil
}

// authorize allows root unconditionally and registrars when active.
func (s *SimulationService) authorize(actor models.Actor) error {
	if actor.IsRoot() {
		return nil
	}
	var err error
	viewErr := s.eng.View(ledger.SourceProduction, func(t *ledger.Txn) error {
		err = requireActiveRegistrar(t, actor.Account)
		return nil
	})
	if viewErr != nil {
		return viewErr
	}
	if err != nil {
		recordRejection(s.metrics, err)
	}
	return err
}

func parseScenario(raw string) (models.SimulationScenario, error) {
	switch models.SimulationScenario(strings.ToUpper(raw)) {
	case models.ScenarioDisaster:
		return models.ScenarioDisaster, nil
	case models.ScenarioElectionDay:
		return models.ScenarioElectionDay, nil
	case models.ScenarioRedistricting:
		return models.ScenarioRedistricting, nil
	}
	return "", appErrors.Clone(appErrors.ErrValidation, "unknown simulation scenario")
}

func (s *SimulationService) observe(events []models.Event) {
	logEvents(s.logger, events)
	if s.metrics != nil {
		s.metrics.RecordLedgerEvents(events)
	}
}
