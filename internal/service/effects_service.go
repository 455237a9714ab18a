package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/civisuite/vitals-ledger/internal/dto"
	"github.com/civisuite/vitals-ledger/internal/ledger"
	"github.com/civisuite/vitals-ledger/internal/models"
	appErrors "github.com/civisuite/vitals-ledger/pkg/errors"
)

// EffectsService runs the predefined cross-record cascades. Each cascade is
// one engine step: every sub-effect stages into the same transaction and the
// commit is all-or-nothing, so no reader ever observes a half-applied
// cascade.
type EffectsService struct {
	eng       *ledger.Ledger
	audit     auditLogger
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
	clock     Clock
}

// NewEffectsService constructs the cross-record effects engine.
func NewEffectsService(eng *ledger.Ledger, audit auditLogger, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger, clock Clock) *EffectsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if clock == nil {
		clock = UTCClock
	}
	return &EffectsService{eng: eng, audit: audit, validator: validate, logger: logger, metrics: metrics, clock: clock}
}

// DeathEffectsResult reports what the cascade touched.
type DeathEffectsResult struct {
	DeathCertificateID string   `json:"death_certificate_id"`
	RevokedLicenses    []string `json:"revoked_licenses"`
	RemovedVoter       bool     `json:"removed_voter"`
	AlreadyProcessed   bool     `json:"already_processed"`
}

// ProcessDeathEffects applies the death cascade: every active or suspended
// driver license held by the subject account is revoked, and any pending or
// approved voter registration is removed along with its roster entry.
// Re-invocation on a processed certificate is a no-op success.
func (s *EffectsService) ProcessDeathEffects(ctx context.Context, actor models.Actor, deathCertificateID string) (*DeathEffectsResult, error) {
	now := s.clock()
	result := &DeathEffectsResult{DeathCertificateID: deathCertificateID}
	events, err := s.eng.Execute(ledger.Target{}, func(t *ledger.Txn) error {
		if err := requireActiveRegistrar(t, actor.Account); err != nil {
			return err
		}
		death, ok := t.Deaths().Get(deathCertificateID)
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, "death certificate not found")
		}
		if death.Status != models.DeathIssued {
			return appErrors.Clone(appErrors.ErrInvalidStateTransition, "death certificate is not issued")
		}
		if death.EffectsProcessedAt != nil {
			result.AlreadyProcessed = true
			return nil
		}
		if death.SubjectAccount == nil || *death.SubjectAccount == "" {
			// No linked account means nothing to cascade onto; still mark
			// processed so repeat calls short-circuit.
			processedAt := now
			death.EffectsProcessedAt = &processedAt
			t.Deaths().Put(deathCertificateID, death)
			t.Emit(models.Event{
				Kind:      models.EventDeathEffectsApplied,
				RecordIDs: []string{deathCertificateID},
				Actor:     actor.Account,
				At:        now,
			})
			return nil
		}
		subject := *death.SubjectAccount

		affected := []string{deathCertificateID}
		t.Licenses().ForEach(func(id string, l *models.DriverLicense) bool {
			if l.HolderAccount != subject {
				return true
			}
			if l.Status != models.LicenseActive && l.Status != models.LicenseSuspended {
				return true
			}
			oldStatus := l.Status
			l.Status = models.LicenseRevoked
			t.Licenses().Put(id, l)
			result.RevokedLicenses = append(result.RevokedLicenses, id)
			affected = append(affected, id)
			t.Emit(models.Event{
				Kind:      models.EventLicenseRevoked,
				RecordIDs: []string{id, deathCertificateID},
				Actor:     actor.Account,
				OldStatus: string(oldStatus),
				NewStatus: string(models.LicenseRevoked),
				At:        now,
			})
			return true
		})

		if reg, ok := t.Voters().Get(subject); ok {
			if reg.Status == models.VoterPending || reg.Status == models.VoterApproved {
				oldStatus := reg.Status
				reg.Status = models.VoterRemoved
				t.Voters().Put(subject, reg)
				t.RosterRemove(reg.DistrictID, subject)
				result.RemovedVoter = true
				affected = append(affected, subject)
				t.Emit(models.Event{
					Kind:      models.EventVoterRemoved,
					RecordIDs: []string{subject, reg.DistrictID, deathCertificateID},
					Actor:     actor.Account,
					OldStatus: string(oldStatus),
					NewStatus: string(models.VoterRemoved),
					At:        now,
				})
			}
		}

		processedAt := now
		death.EffectsProcessedAt = &processedAt
		t.Deaths().Put(deathCertificateID, death)
		t.Emit(models.Event{
			Kind:      models.EventDeathEffectsApplied,
			RecordIDs: affected,
			Actor:     actor.Account,
			At:        now,
			Payload: map[string]interface{}{
				"revoked_licenses": len(result.RevokedLicenses),
				"removed_voter":    result.RemovedVoter,
			},
		})
		return nil
	})
	if err != nil {
		recordRejection(s.metrics, err)
		return nil, err
	}
	s.observe(events)
	emitAudit(ctx, s.audit, s.logger, &models.AuditLog{
		Actor:      optionalString(actor.Account),
		Action:     models.AuditActionCascade,
		Resource:   "death_certificate",
		ResourceID: &deathCertificateID,
		Outcome:    "success",
	})
	return result, nil
}

// Redistrict moves voter registrations from one district to another as a
// single atomic step. Both rosters update together; a voter is never in two
// rosters or in none mid-move. An empty account list moves the whole source
// roster.
func (s *EffectsService) Redistrict(ctx context.Context, actor models.Actor, req dto.RedistrictRequest) ([]string, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid redistricting payload")
	}
	if req.FromDistrictID == req.ToDistrictID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "source and destination districts are identical")
	}

	now := s.clock()
	var moved []string
	events, err := s.eng.Execute(ledger.TargetDistricts(req.FromDistrictID, req.ToDistrictID), func(t *ledger.Txn) error {
		if err := requireActiveRegistrar(t, actor.Account); err != nil {
			return err
		}
		if !t.Districts().Has(req.FromDistrictID) {
			return appErrors.Clone(appErrors.ErrNotFound, "source district not found")
		}
		if !t.Districts().Has(req.ToDistrictID) {
			return appErrors.Clone(appErrors.ErrNotFound, "destination district not found")
		}

		accounts := req.Accounts
		if len(accounts) == 0 {
			accounts = t.RosterAccounts(req.FromDistrictID)
		}
		for _, account := range accounts {
			reg, ok := t.Voters().Get(account)
			if !ok {
				return appErrors.Clone(appErrors.ErrNotFound, "voter registration not found: "+account)
			}
			if reg.DistrictID != req.FromDistrictID {
				return appErrors.Clone(appErrors.ErrInvalidStateTransition, "voter is not assigned to the source district: "+account)
			}
			reg.DistrictID = req.ToDistrictID
			t.Voters().Put(account, reg)
			if t.RosterHas(req.FromDistrictID, account) {
				t.RosterRemove(req.FromDistrictID, account)
				t.RosterAdd(req.ToDistrictID, account)
			}
			moved = append(moved, account)
		}

		t.Emit(models.Event{
			Kind:      models.EventVotersRedistricted,
			RecordIDs: []string{req.FromDistrictID, req.ToDistrictID},
			Actor:     actor.Account,
			At:        now,
			Payload:   map[string]interface{}{"moved": len(moved)},
		})
		return nil
	})
	if err != nil {
		recordRejection(s.metrics, err)
		return nil, err
	}
	s.observe(events)
	emitAudit(ctx, s.audit, s.logger, &models.AuditLog{
		Actor:      optionalString(actor.Account),
		Action:     models.AuditActionRedistrict,
		Resource:   "district",
		ResourceID: &req.ToDistrictID,
		Outcome:    "success",
	})
	return moved, nil
}

func (s *EffectsService) observe(events []models.Event) {
	logEvents(s.logger, events)
	if s.metrics != nil {
		s.metrics.RecordLedgerEvents(events)
	}
}
