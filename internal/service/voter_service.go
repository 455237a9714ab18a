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

// VoterService owns voter registrations and roster membership. Registrations
// are keyed by account; a given account is on at most one district roster at
// any time. Operations carry their district as the execution target so a
// running simulation that covers the district absorbs them.
type VoterService struct {
	eng       *ledger.Ledger
	audit     auditLogger
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
	clock     Clock
}

// NewVoterService constructs the voter registration service.
func NewVoterService(eng *ledger.Ledger, audit auditLogger, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger, clock Clock) *VoterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if clock == nil {
		clock = UTCClock
	}
	return &VoterService{eng: eng, audit: audit, validator: validate, logger: logger, metrics: metrics, clock: clock}
}

// Register files a voter registration for the calling account. Requires a
// resolvable, issued birth certificate and an existing district. A second
// registration while a non-removed one exists fails.
func (s *VoterService) Register(ctx context.Context, actor models.Actor, req dto.RegisterVoterRequest) (*models.VoterRegistration, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid voter registration payload")
	}

	now := s.clock()
	var created *models.VoterRegistration
	events, err := s.eng.Execute(ledger.TargetDistricts(req.DistrictID), func(t *ledger.Txn) error {
		birth, ok := t.Births().Get(req.BirthCertificateID)
		if !ok || !birth.Resolvable() {
			return appErrors.Clone(appErrors.ErrNotFound, "birth certificate not found or not issued")
		}
		if !t.Districts().Has(req.DistrictID) {
			return appErrors.Clone(appErrors.ErrNotFound, "district not found")
		}
		if existing, ok := t.Voters().Get(actor.Account); ok && existing.Status != models.VoterRemoved {
			return appErrors.ErrAlreadyRegistered
		}
		created = &models.VoterRegistration{
			Account:            actor.Account,
			BirthCertificateID: req.BirthCertificateID,
			Address:            req.Address,
			DistrictID:         req.DistrictID,
			RegisteredAt:       now,
			Status:             models.VoterPending,
		}
		t.Voters().Put(actor.Account, created)
		t.Emit(models.Event{
			Kind:      models.EventVoterRegistered,
			RecordIDs: []string{actor.Account, req.DistrictID},
			Actor:     actor.Account,
			NewStatus: string(models.VoterPending),
			At:        now,
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
		Action:     models.AuditActionRecordRequest,
		Resource:   "voter_registration",
		ResourceID: &created.Account,
		Outcome:    "success",
	})
	return created, nil
}

// Approve transitions PENDING -> APPROVED and places the account on its
// district roster. After approval the account is on exactly one roster.
func (s *VoterService) Approve(ctx context.Context, actor models.Actor, account string) (*models.VoterRegistration, error) {
	now := s.clock()
	var result *models.VoterRegistration
	events, err := s.eng.Execute(s.targetFor(account), func(t *ledger.Txn) error {
		if err := requireActiveRegistrar(t, actor.Account); err != nil {
			return err
		}
		reg, ok := t.Voters().Get(account)
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, "voter registration not found")
		}
		if reg.Status != models.VoterPending {
			return appErrors.ErrInvalidStateTransition
		}
		reg.Status = models.VoterApproved
		reg.ApprovedBy = optionalString(actor.Account)
		approvedAt := now
		reg.ApprovedAt = &approvedAt
		t.Voters().Put(account, reg)
		t.RosterAdd(reg.DistrictID, account)
		result = reg
		t.Emit(models.Event{
			Kind:      models.EventVoterApproved,
			RecordIDs: []string{account, reg.DistrictID},
			Actor:     actor.Account,
			OldStatus: string(models.VoterPending),
			NewStatus: string(models.VoterApproved),
			At:        now,
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
		Action:     models.AuditActionRecordIssue,
		Resource:   "voter_registration",
		ResourceID: &account,
		Outcome:    "success",
	})
	return result, nil
}

// Challenge transitions APPROVED -> CHALLENGED. The account stays on the
// roster until adjudication resolves the challenge.
func (s *VoterService) Challenge(ctx context.Context, actor models.Actor, account string) (*models.VoterRegistration, error) {
	now := s.clock()
	var result *models.VoterRegistration
	events, err := s.eng.Execute(s.targetFor(account), func(t *ledger.Txn) error {
		if err := requireActiveRegistrar(t, actor.Account); err != nil {
			return err
		}
		reg, ok := t.Voters().Get(account)
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, "voter registration not found")
		}
		if reg.Status != models.VoterApproved {
			return appErrors.ErrInvalidStateTransition
		}
		reg.Status = models.VoterChallenged
		t.Voters().Put(account, reg)
		result = reg
		t.Emit(models.Event{
			Kind:      models.EventVoterChallenged,
			RecordIDs: []string{account, reg.DistrictID},
			Actor:     actor.Account,
			OldStatus: string(models.VoterApproved),
			NewStatus: string(models.VoterChallenged),
			At:        now,
		})
		return nil
	})
	if err != nil {
		recordRejection(s.metrics, err)
		return nil, err
	}
	s.observe(events)
	return result, nil
}

// Adjudicate resolves a CHALLENGED registration to APPROVED or REMOVED.
func (s *VoterService) Adjudicate(ctx context.Context, actor models.Actor, account string, req dto.AdjudicateVoterRequest) (*models.VoterRegistration, error) {
	now := s.clock()
	var result *models.VoterRegistration
	events, err := s.eng.Execute(s.targetFor(account), func(t *ledger.Txn) error {
		if err := requireActiveRegistrar(t, actor.Account); err != nil {
			return err
		}
		reg, ok := t.Voters().Get(account)
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, "voter registration not found")
		}
		if reg.Status != models.VoterChallenged {
			return appErrors.ErrInvalidStateTransition
		}
		kind := models.EventVoterRemoved
		newStatus := models.VoterRemoved
		if req.Approve {
			kind = models.EventVoterApproved
			newStatus = models.VoterApproved
		} else {
			t.RosterRemove(reg.DistrictID, account)
		}
		reg.Status = newStatus
		t.Voters().Put(account, reg)
		result = reg
		t.Emit(models.Event{
			Kind:      kind,
			RecordIDs: []string{account, reg.DistrictID},
			Actor:     actor.Account,
			OldStatus: string(models.VoterChallenged),
			NewStatus: string(newStatus),
			At:        now,
			Payload:   map[string]interface{}{"note": req.Note},
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
		Action:     models.AuditActionRecordRevoke,
		Resource:   "voter_registration",
		ResourceID: &account,
		Outcome:    "success",
	})
	return result, nil
}

// Remove transitions PENDING or APPROVED -> REMOVED and drops the account
// from its district roster.
func (s *VoterService) Remove(ctx context.Context, actor models.Actor, account string) (*models.VoterRegistration, error) {
	now := s.clock()
	var result *models.VoterRegistration
	events, err := s.eng.Execute(s.targetFor(account), func(t *ledger.Txn) error {
		if err := requireActiveRegistrar(t, actor.Account); err != nil {
			return err
		}
		reg, ok := t.Voters().Get(account)
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, "voter registration not found")
		}
		if reg.Status != models.VoterPending && reg.Status != models.VoterApproved {
			return appErrors.ErrInvalidStateTransition
		}
		oldStatus := reg.Status
		reg.Status = models.VoterRemoved
		t.Voters().Put(account, reg)
		t.RosterRemove(reg.DistrictID, account)
		result = reg
		t.Emit(models.Event{
			Kind:      models.EventVoterRemoved,
			RecordIDs: []string{account, reg.DistrictID},
			Actor:     actor.Account,
			OldStatus: string(oldStatus),
			NewStatus: string(models.VoterRemoved),
			At:        now,
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
		Action:     models.AuditActionRecordRevoke,
		Resource:   "voter_registration",
		ResourceID: &account,
		Outcome:    "success",
	})
	return result, nil
}

// Get returns the registration held by an account.
func (s *VoterService) Get(ctx context.Context, source ledger.Source, account string) (*models.VoterRegistration, error) {
	var out *models.VoterRegistration
	err := s.eng.View(source, func(t *ledger.Txn) error {
		reg, ok := t.Voters().Get(account)
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, "voter registration not found")
		}
		out = reg
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// List returns registrations, optionally filtered by district.
func (s *VoterService) List(ctx context.Context, source ledger.Source, districtID string) ([]models.VoterRegistration, error) {
	var out []models.VoterRegistration
	err := s.eng.View(source, func(t *ledger.Txn) error {
		t.Voters().ForEach(func(_ string, reg *models.VoterRegistration) bool {
			if districtID != "" && reg.DistrictID != districtID {
				return true
			}
			out = append(out, *reg)
			return true
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// targetFor resolves the execution target from the current registration's
// district, so district-scoped simulations absorb mutations to voters inside
// their affected set. The simulation snapshot is consulted first when one is
// running; it starts as a full clone, so registrations created during the
// simulation are only visible there. A missing registration yields an
// untargeted step that fails inside Execute with the real error.
func (s *VoterService) targetFor(account string) ledger.Target {
	var districtID string
	lookup := func(t *ledger.Txn) error {
		if reg, ok := t.Voters().Get(account); ok {
			districtID = reg.DistrictID
		}
		return nil
	}
	_ = s.eng.View(ledger.SourceSimulation, lookup)
	if districtID == "" {
		_ = s.eng.View(ledger.SourceProduction, lookup)
	}
	if districtID == "" {
		return ledger.Target{}
	}
	return ledger.TargetDistricts(districtID)
}

func (s *VoterService) observe(events []models.Event) {
	logEvents(s.logger, events)
	if s.metrics != nil {
		s.metrics.RecordLedgerEvents(events)
	}
}
