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

// MarriageService owns the marriage license store and its state machine:
// PENDING -> ISSUED -> REVOKED, registrar-gated past the initial request.
type MarriageService struct {
	eng       *ledger.Ledger
	audit     auditLogger
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
	clock     Clock
}

// NewMarriageService constructs the marriage store service.
func NewMarriageService(eng *ledger.Ledger, audit auditLogger, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger, clock Clock) *MarriageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if clock == nil {
		clock = UTCClock
	}
	return &MarriageService{eng: eng, audit: audit, validator: validate, logger: logger, metrics: metrics, clock: clock}
}

// Request files a license for two partners. The caller must be one of the
// named partners; a second filing for the same pair while a non-revoked
// license exists fails ALREADY_EXISTS.
func (s *MarriageService) Request(ctx context.Context, actor models.Actor, req dto.RequestMarriageRequest) (*models.MarriageLicense, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid marriage request payload")
	}
	if req.Partner1.Account == "" || req.Partner2.Account == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "both partner accounts are required")
	}
	if req.Partner1.Account == req.Partner2.Account {
		return nil, appErrors.Clone(appErrors.ErrValidation, "partners must be distinct accounts")
	}
	if actor.Account != req.Partner1.Account && actor.Account != req.Partner2.Account {
		return nil, appErrors.Clone(appErrors.ErrNotAuthorized, "caller must be one of the named partners")
	}

	pairKey := ledger.PairKey(req.Partner1.Account, req.Partner2.Account)
	now := s.clock()

	var created *models.MarriageLicense
	events, err := s.eng.Execute(ledger.Target{}, func(t *ledger.Txn) error {
		var priorFilings uint64
		var conflict error
		t.Marriages().ForEach(func(_ string, m *models.MarriageLicense) bool {
			if ledger.PairKey(m.Partner1.Account, m.Partner2.Account) != pairKey {
				return true
			}
			priorFilings++
			if m.Status != models.MarriageRevoked {
				conflict = appErrors.Clone(appErrors.ErrAlreadyExists, "a non-revoked license already exists for this partner pair")
				return false
			}
			return true
		})
		if conflict != nil {
			return conflict
		}

		id := ledger.DeriveID(ledger.KindMarriage, priorFilings, req.Partner1.Account, req.Partner2.Account)
		created = &models.MarriageLicense{
			ID:           id,
			Partner1:     req.Partner1,
			Partner2:     req.Partner2,
			Jurisdiction: req.Jurisdiction,
			RequestedAt:  now,
			Status:       models.MarriagePending,
		}
		t.Marriages().Put(id, created)
		t.Emit(models.Event{
			Kind:      models.EventMarriageRequested,
			RecordIDs: []string{id},
			Actor:     actor.Account,
			NewStatus: string(models.MarriagePending),
			At:        now,
			Payload:   map[string]interface{}{"jurisdiction": req.Jurisdiction},
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
		Resource:   "marriage_license",
		ResourceID: &created.ID,
		Outcome:    "success",
	})
	return created, nil
}

// Issue transitions PENDING -> ISSUED. Registrar only.
func (s *MarriageService) Issue(ctx context.Context, actor models.Actor, id string) (*models.MarriageLicense, error) {
	return s.transition(ctx, actor, id, models.MarriagePending, models.MarriageIssued, models.EventMarriageIssued, models.AuditActionRecordIssue)
}

// Revoke transitions ISSUED -> REVOKED. Registrar only; revoking a pending
// license is an invalid transition, never a silent coercion.
func (s *MarriageService) Revoke(ctx context.Context, actor models.Actor, id string) (*models.MarriageLicense, error) {
	return s.transition(ctx, actor, id, models.MarriageIssued, models.MarriageRevoked, models.EventMarriageRevoked, models.AuditActionRecordRevoke)
}

func (s *MarriageService) transition(ctx context.Context, actor models.Actor, id string, from, to models.MarriageStatus, kind models.EventKind, auditAction string) (*models.MarriageLicense, error) {
	now := s.clock()
	var result *models.MarriageLicense
	events, err := s.eng.Execute(ledger.Target{}, func(t *ledger.Txn) error {
		if err := requireActiveRegistrar(t, actor.Account); err != nil {
			return err
		}
		license, ok := t.Marriages().Get(id)
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, "marriage license not found")
		}
		if license.Status != from {
			return appErrors.ErrInvalidStateTransition
		}
		license.Status = to
		if to == models.MarriageIssued {
			license.IssuedBy = &actor.Account
			license.IssuedAt = &now
		}
		t.Marriages().Put(id, license)
		result = license
		t.Emit(models.Event{
			Kind:      kind,
			RecordIDs: []string{id},
			Actor:     actor.Account,
			OldStatus: string(from),
			NewStatus: string(to),
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
		Action:     auditAction,
		Resource:   "marriage_license",
		ResourceID: &id,
		Outcome:    "success",
	})
	return result, nil
}

// Get returns a license by id.
func (s *MarriageService) Get(ctx context.Context, source ledger.Source, id string) (*models.MarriageLicense, error) {
	var out *models.MarriageLicense
	err := s.eng.View(source, func(t *ledger.Txn) error {
		license, ok := t.Marriages().Get(id)
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, "marriage license not found")
		}
		out = license
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// List returns licenses, optionally filtered to those naming an account.
func (s *MarriageService) List(ctx context.Context, source ledger.Source, account string) ([]models.MarriageLicense, error) {
	var out []models.MarriageLicense
	err := s.eng.View(source, func(t *ledger.Txn) error {
		t.Marriages().ForEach(func(_ string, m *models.MarriageLicense) bool {
			if account == "" || m.InvolvesAccount(account) {
				out = append(out, *m)
			}
			return true
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MarriageService) observe(events []models.Event) {
	logEvents(s.logger, events)
	if s.metrics != nil {
		s.metrics.RecordLedgerEvents(events)
	}
}
