package service

import (
	"context"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/civisuite/vitals-ledger/internal/dto"
	"github.com/civisuite/vitals-ledger/internal/ledger"
	"github.com/civisuite/vitals-ledger/internal/models"
	appErrors "github.com/civisuite/vitals-ledger/pkg/errors"
)

// DeathService owns the death certificate store. Lifecycle: REQUESTED ->
// ISSUED. Uniqueness and date consistency are enforced at request time, so
// an issued certificate is always internally consistent.
type DeathService struct {
	eng       *ledger.Ledger
	audit     auditLogger
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
	clock     Clock
}

// NewDeathService constructs the death store service.
func NewDeathService(eng *ledger.Ledger, audit auditLogger, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger, clock Clock) *DeathService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if clock == nil {
		clock = UTCClock
	}
	return &DeathService{eng: eng, audit: audit, validator: validate, logger: logger, metrics: metrics, clock: clock}
}

// Request files a death certificate. Registrar only. Fails
// DUPLICATE_DEATH_RECORD when the subject account already holds an issued
// certificate and DATE_INCONSISTENCY when a linked birth record postdates
// the death. Resubmitting an identical request while the first is still
// pending deduplicates to the existing record.
func (s *DeathService) Request(ctx context.Context, actor models.Actor, req dto.RequestDeathRequest) (*models.DeathCertificate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid death certificate payload")
	}

	now := s.clock()
	var created *models.DeathCertificate
	var deduplicated bool
	events, err := s.eng.Execute(ledger.Target{}, func(t *ledger.Txn) error {
		if err := requireActiveRegistrar(t, actor.Account); err != nil {
			return err
		}

		if req.SubjectAccount != "" {
			var duplicate error
			t.Deaths().ForEach(func(_ string, d *models.DeathCertificate) bool {
				if d.SubjectAccount != nil && *d.SubjectAccount == req.SubjectAccount && d.Status == models.DeathIssued {
					duplicate = appErrors.ErrDuplicateDeathRecord
					return false
				}
				return true
			})
			if duplicate != nil {
				return duplicate
			}
		}

		if req.BirthCertificateID != "" {
			birth, ok := t.Births().Get(req.BirthCertificateID)
			if !ok {
				return appErrors.Clone(appErrors.ErrNotFound, "referenced birth certificate not found")
			}
			if req.DeathTime.Before(birth.BirthTime) {
				return appErrors.ErrDateInconsistency
			}
		}

		var priorFilings uint64
		t.Deaths().ForEach(func(_ string, d *models.DeathCertificate) bool {
			if d.SubjectName != req.SubjectName || !d.DeathTime.Equal(req.DeathTime) {
				return true
			}
			if d.Status == models.DeathRequested && accountMatches(d.SubjectAccount, req.SubjectAccount) {
				created = d
				deduplicated = true
				return false
			}
			priorFilings++
			return true
		})
		if deduplicated {
			return nil
		}

		id := ledger.DeriveID(ledger.KindDeath, priorFilings, req.SubjectName, strconv.FormatInt(req.DeathTime.UnixNano(), 10), req.SubjectAccount)
		created = &models.DeathCertificate{
			ID:                 id,
			SubjectAccount:     optionalString(req.SubjectAccount),
			SubjectName:        req.SubjectName,
			BirthCertificateID: optionalString(req.BirthCertificateID),
			Cause:              req.Cause,
			Location:           req.Location,
			Examiner:           req.Examiner,
			DeathTime:          req.DeathTime,
			RequestedAt:        now,
			Status:             models.DeathRequested,
		}
		t.Deaths().Put(id, created)
		t.Emit(models.Event{
			Kind:      models.EventDeathRequested,
			RecordIDs: []string{id},
			Actor:     actor.Account,
			NewStatus: string(models.DeathRequested),
			At:        now,
		})
		return nil
	})
	if err != nil {
		recordRejection(s.metrics, err)
		return nil, err
	}
	s.observe(events)
	if !deduplicated {
		emitAudit(ctx, s.audit, s.logger, &models.AuditLog{
			Actor:      optionalString(actor.Account),
			Action:     models.AuditActionRecordRequest,
			Resource:   "death_certificate",
			ResourceID: &created.ID,
			Outcome:    "success",
		})
	}
	return created, nil
}

// accountMatches compares an optional stored account reference against the
// requested one; empty request matches an unset reference.
func accountMatches(stored *string, requested string) bool {
	if stored == nil {
		return requested == ""
	}
	return *stored == requested
}

// Issue transitions REQUESTED -> ISSUED. Registrar only. The duplicate check
// runs again here: two pending certificates for one account can both exist,
// but only one may ever be issued.
func (s *DeathService) Issue(ctx context.Context, actor models.Actor, id string) (*models.DeathCertificate, error) {
	now := s.clock()
	var result *models.DeathCertificate
	events, err := s.eng.Execute(ledger.Target{}, func(t *ledger.Txn) error {
		if err := requireActiveRegistrar(t, actor.Account); err != nil {
			return err
		}
		cert, ok := t.Deaths().Get(id)
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, "death certificate not found")
		}
		if cert.Status != models.DeathRequested {
			return appErrors.ErrInvalidStateTransition
		}
		if cert.SubjectAccount != nil {
			var duplicate error
			t.Deaths().ForEach(func(otherID string, d *models.DeathCertificate) bool {
				if otherID == id {
					return true
				}
				if d.SubjectAccount != nil && *d.SubjectAccount == *cert.SubjectAccount && d.Status == models.DeathIssued {
					duplicate = appErrors.ErrDuplicateDeathRecord
					return false
				}
				return true
			})
			if duplicate != nil {
				return duplicate
			}
		}
		cert.Status = models.DeathIssued
		cert.IssuedBy = &actor.Account
		cert.IssuedAt = &now
		t.Deaths().Put(id, cert)
		result = cert
		t.Emit(models.Event{
			Kind:      models.EventDeathIssued,
			RecordIDs: []string{id},
			Actor:     actor.Account,
			OldStatus: string(models.DeathRequested),
			NewStatus: string(models.DeathIssued),
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
		Resource:   "death_certificate",
		ResourceID: &id,
		Outcome:    "success",
	})
	return result, nil
}

// Get returns a certificate by id.
func (s *DeathService) Get(ctx context.Context, source ledger.Source, id string) (*models.DeathCertificate, error) {
	var out *models.DeathCertificate
	err := s.eng.View(source, func(t *ledger.Txn) error {
		cert, ok := t.Deaths().Get(id)
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, "death certificate not found")
		}
		out = cert
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// List returns all certificates in id order.
func (s *DeathService) List(ctx context.Context, source ledger.Source) ([]models.DeathCertificate, error) {
	var out []models.DeathCertificate
	err := s.eng.View(source, func(t *ledger.Txn) error {
		t.Deaths().ForEach(func(_ string, d *models.DeathCertificate) bool {
			out = append(out, *d)
			return true
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *DeathService) observe(events []models.Event) {
	logEvents(s.logger, events)
	if s.metrics != nil {
		s.metrics.RecordLedgerEvents(events)
	}
}
