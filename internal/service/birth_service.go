package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/civisuite/vitals-ledger/internal/dto"
	"github.com/civisuite/vitals-ledger/internal/ledger"
	"github.com/civisuite/vitals-ledger/internal/models"
	appErrors "github.com/civisuite/vitals-ledger/pkg/errors"
)

// BirthService owns the birth certificate store. Lifecycle: REQUESTED ->
// ISSUED -> AMENDED, registrar-gated throughout; the subject-account link is
// set at most once and survives every amendment.
type BirthService struct {
	eng       *ledger.Ledger
	audit     auditLogger
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
	clock     Clock
}

// NewBirthService constructs the birth store service.
func NewBirthService(eng *ledger.Ledger, audit auditLogger, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger, clock Clock) *BirthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if clock == nil {
		clock = UTCClock
	}
	return &BirthService{eng: eng, audit: audit, validator: validate, logger: logger, metrics: metrics, clock: clock}
}

func birthContentKey(name string, birthUnix int64, location string) string {
	return strings.Join([]string{name, strconv.FormatInt(birthUnix, 10), location}, "|")
}

// Request files a birth certificate. Registrar only. Resubmitting an
// identical request while the first is still pending deduplicates to the
// existing record rather than minting a second one.
func (s *BirthService) Request(ctx context.Context, actor models.Actor, req dto.RequestBirthRequest) (*models.BirthCertificate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid birth certificate payload")
	}

	now := s.clock()
	contentKey := birthContentKey(req.SubjectName, req.BirthTime.UnixNano(), req.BirthLocation)

	var result *models.BirthCertificate
	var deduplicated bool
	events, err := s.eng.Execute(ledger.Target{}, func(t *ledger.Txn) error {
		if err := requireActiveRegistrar(t, actor.Account); err != nil {
			return err
		}

		var priorFilings uint64
		t.Births().ForEach(func(_ string, b *models.BirthCertificate) bool {
			if birthContentKey(b.SubjectName, b.BirthTime.UnixNano(), b.BirthLocation) != contentKey {
				return true
			}
			if b.Status == models.BirthRequested {
				result = b
				deduplicated = true
				return false
			}
			priorFilings++
			return true
		})
		if deduplicated {
			return nil
		}

		id := ledger.DeriveID(ledger.KindBirth, priorFilings, req.SubjectName, strconv.FormatInt(req.BirthTime.UnixNano(), 10), req.BirthLocation)
		result = &models.BirthCertificate{
			ID:            id,
			SubjectName:   req.SubjectName,
			BirthTime:     req.BirthTime,
			BirthLocation: req.BirthLocation,
			Parents:       append([]string(nil), req.Parents...),
			RequestedAt:   now,
			Status:        models.BirthRequested,
		}
		t.Births().Put(id, result)
		t.Emit(models.Event{
			Kind:      models.EventBirthRequested,
			RecordIDs: []string{id},
			Actor:     actor.Account,
			NewStatus: string(models.BirthRequested),
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
			Resource:   "birth_certificate",
			ResourceID: &result.ID,
			Outcome:    "success",
		})
	}
	return result, nil
}

// Issue transitions REQUESTED -> ISSUED and optionally links the subject
// account. Linking an account that already holds a certificate fails
// ALREADY_LINKED.
func (s *BirthService) Issue(ctx context.Context, actor models.Actor, id string, req dto.IssueBirthRequest) (*models.BirthCertificate, error) {
	now := s.clock()
	var result *models.BirthCertificate
	events, err := s.eng.Execute(ledger.Target{}, func(t *ledger.Txn) error {
		if err := requireActiveRegistrar(t, actor.Account); err != nil {
			return err
		}
		cert, ok := t.Births().Get(id)
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, "birth certificate not found")
		}
		if cert.Status != models.BirthRequested {
			return appErrors.ErrInvalidStateTransition
		}
		if req.SubjectAccount != "" {
			if _, linked := t.BirthLink(req.SubjectAccount); linked {
				return appErrors.ErrAlreadyLinked
			}
			cert.SubjectAccount = &req.SubjectAccount
			t.StageBirthLink(req.SubjectAccount, id)
		}
		cert.Status = models.BirthIssued
		cert.IssuedBy = &actor.Account
		cert.IssuedAt = &now
		t.Births().Put(id, cert)
		result = cert
		t.Emit(models.Event{
			Kind:      models.EventBirthIssued,
			RecordIDs: []string{id},
			Actor:     actor.Account,
			OldStatus: string(models.BirthRequested),
			NewStatus: string(models.BirthIssued),
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
		Resource:   "birth_certificate",
		ResourceID: &id,
		Outcome:    "success",
	})
	return result, nil
}

// Amend updates certificate content. ISSUED and AMENDED records stay
// amendable; the subject link never changes here.
func (s *BirthService) Amend(ctx context.Context, actor models.Actor, id string, req dto.AmendBirthRequest) (*models.BirthCertificate, error) {
	now := s.clock()
	var result *models.BirthCertificate
	events, err := s.eng.Execute(ledger.Target{}, func(t *ledger.Txn) error {
		if err := requireActiveRegistrar(t, actor.Account); err != nil {
			return err
		}
		cert, ok := t.Births().Get(id)
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, "birth certificate not found")
		}
		if cert.Status != models.BirthIssued && cert.Status != models.BirthAmended {
			return appErrors.ErrInvalidStateTransition
		}
		oldStatus := cert.Status
		if req.SubjectName != "" {
			cert.SubjectName = req.SubjectName
		}
		if req.BirthTime != nil {
			cert.BirthTime = *req.BirthTime
		}
		if req.BirthLocation != "" {
			cert.BirthLocation = req.BirthLocation
		}
		if req.Parents != nil {
			cert.Parents = append([]string(nil), req.Parents...)
		}
		cert.Status = models.BirthAmended
		cert.AmendedAt = &now
		t.Births().Put(id, cert)
		result = cert
		t.Emit(models.Event{
			Kind:      models.EventBirthAmended,
			RecordIDs: []string{id},
			Actor:     actor.Account,
			OldStatus: string(oldStatus),
			NewStatus: string(models.BirthAmended),
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
		Action:     models.AuditActionRecordAmend,
		Resource:   "birth_certificate",
		ResourceID: &id,
		Outcome:    "success",
	})
	return result, nil
}

// Get returns a certificate by id.
func (s *BirthService) Get(ctx context.Context, source ledger.Source, id string) (*models.BirthCertificate, error) {
	var out *models.BirthCertificate
	err := s.eng.View(source, func(t *ledger.Txn) error {
		cert, ok := t.Births().Get(id)
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, "birth certificate not found")
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
func (s *BirthService) List(ctx context.Context, source ledger.Source) ([]models.BirthCertificate, error) {
	var out []models.BirthCertificate
	err := s.eng.View(source, func(t *ledger.Txn) error {
		t.Births().ForEach(func(_ string, b *models.BirthCertificate) bool {
			out = append(out, *b)
			return true
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *BirthService) observe(events []models.Event) {
	logEvents(s.logger, events)
	if s.metrics != nil {
		s.metrics.RecordLedgerEvents(events)
	}
}
