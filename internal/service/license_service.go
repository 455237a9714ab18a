package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/civisuite/vitals-ledger/internal/dto"
	"github.com/civisuite/vitals-ledger/internal/ledger"
	"github.com/civisuite/vitals-ledger/internal/models"
	appErrors "github.com/civisuite/vitals-ledger/pkg/errors"
)

// LicenseService owns the driver license store. Lifecycle: ACTIVE <->
// SUSPENDED, either to REVOKED (terminal), and lapsing to EXPIRED evaluated
// lazily against the clock whenever a record is accessed. There is no
// background timer.
type LicenseService struct {
	eng        *ledger.Ledger
	audit      auditLogger
	validator  *validator.Validate
	logger     *zap.Logger
	metrics    *MetricsService
	clock      Clock
	minimumAge int
}

// NewLicenseService constructs the driver license service.
func NewLicenseService(eng *ledger.Ledger, audit auditLogger, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger, clock Clock, minimumAge int) *LicenseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if clock == nil {
		clock = UTCClock
	}
	if minimumAge <= 0 {
		minimumAge = 16
	}
	return &LicenseService{eng: eng, audit: audit, validator: validate, logger: logger, metrics: metrics, clock: clock, minimumAge: minimumAge}
}

// Issue mints a license against a resolvable birth certificate. The computed
// age at issuance must meet the configured minimum; exactly the minimum age
// passes.
func (s *LicenseService) Issue(ctx context.Context, actor models.Actor, req dto.IssueLicenseRequest) (*models.DriverLicense, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid driver license payload")
	}

	now := s.clock()
	var created *models.DriverLicense
	events, err := s.eng.Execute(ledger.Target{}, func(t *ledger.Txn) error {
		if err := requireActiveRegistrar(t, actor.Account); err != nil {
			return err
		}
		birth, ok := t.Births().Get(req.BirthCertificateID)
		if !ok || !birth.Resolvable() {
			return appErrors.Clone(appErrors.ErrNotFound, "birth certificate not found or not issued")
		}
		if birth.AgeAt(now) < s.minimumAge {
			return appErrors.ErrUnderage
		}

		var priorFilings uint64
		t.Licenses().ForEach(func(_ string, l *models.DriverLicense) bool {
			if l.HolderAccount == req.HolderAccount {
				priorFilings++
			}
			return true
		})

		id := ledger.DeriveID(ledger.KindLicense, priorFilings, req.HolderAccount, req.Class)
		created = &models.DriverLicense{
			ID:                 id,
			HolderAccount:      req.HolderAccount,
			HolderName:         req.HolderName,
			BirthCertificateID: req.BirthCertificateID,
			Class:              req.Class,
			Endorsements:       append([]string(nil), req.Endorsements...),
			Restrictions:       append([]string(nil), req.Restrictions...),
			IssuedBy:           actor.Account,
			IssuingAuthority:   req.IssuingAuthority,
			IssuedAt:           now,
			ExpiresAt:          now.AddDate(0, 0, req.ValidityDays),
			Status:             models.LicenseActive,
		}
		t.Licenses().Put(id, created)
		t.Emit(models.Event{
			Kind:      models.EventLicenseIssued,
			RecordIDs: []string{id, req.BirthCertificateID},
			Actor:     actor.Account,
			NewStatus: string(models.LicenseActive),
			At:        now,
			Payload:   map[string]interface{}{"class": req.Class, "authority": req.IssuingAuthority},
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
		Resource:   "driver_license",
		ResourceID: &created.ID,
		Outcome:    "success",
	})
	return created, nil
}

// Suspend transitions ACTIVE -> SUSPENDED.
func (s *LicenseService) Suspend(ctx context.Context, actor models.Actor, id string) (*models.DriverLicense, error) {
	return s.transition(ctx, actor, id, []models.LicenseStatus{models.LicenseActive}, models.LicenseSuspended, models.EventLicenseSuspended, models.AuditActionRecordSuspend)
}

// Reinstate transitions SUSPENDED -> ACTIVE.
func (s *LicenseService) Reinstate(ctx context.Context, actor models.Actor, id string) (*models.DriverLicense, error) {
	return s.transition(ctx, actor, id, []models.LicenseStatus{models.LicenseSuspended}, models.LicenseActive, models.EventLicenseReinstate, models.AuditActionRecordReinstate)
}

// Revoke transitions ACTIVE or SUSPENDED -> REVOKED. Terminal.
func (s *LicenseService) Revoke(ctx context.Context, actor models.Actor, id string) (*models.DriverLicense, error) {
	return s.transition(ctx, actor, id, []models.LicenseStatus{models.LicenseActive, models.LicenseSuspended}, models.LicenseRevoked, models.EventLicenseRevoked, models.AuditActionRecordRevoke)
}

func (s *LicenseService) transition(ctx context.Context, actor models.Actor, id string, from []models.LicenseStatus, to models.LicenseStatus, kind models.EventKind, auditAction string) (*models.DriverLicense, error) {
	now := s.clock()
	var result *models.DriverLicense
	events, err := s.eng.Execute(ledger.Target{}, func(t *ledger.Txn) error {
		if err := requireActiveRegistrar(t, actor.Account); err != nil {
			return err
		}
		license, ok := t.Licenses().Get(id)
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, "driver license not found")
		}
		lapseLicense(t, license, now)
		valid := false
		for _, status := range from {
			if license.Status == status {
				valid = true
				break
			}
		}
		if !valid {
			return appErrors.ErrInvalidStateTransition
		}
		oldStatus := license.Status
		license.Status = to
		t.Licenses().Put(id, license)
		result = license
		t.Emit(models.Event{
			Kind:      kind,
			RecordIDs: []string{id},
			Actor:     actor.Account,
			OldStatus: string(oldStatus),
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
		Resource:   "driver_license",
		ResourceID: &id,
		Outcome:    "success",
	})
	return result, nil
}

// lapseLicense materializes lazy expiration inside the current step. The
// EXPIRED transition is only ever taken here, on access.
func lapseLicense(t *ledger.Txn, license *models.DriverLicense, now time.Time) {
	if license.ExpiredBy(now) {
		oldStatus := license.Status
		license.Status = models.LicenseExpired
		t.Licenses().Put(license.ID, license)
		t.Emit(models.Event{
			Kind:      models.EventLicenseExpired,
			RecordIDs: []string{license.ID},
			Actor:     "system",
			OldStatus: string(oldStatus),
			NewStatus: string(models.LicenseExpired),
			At:        now,
		})
	}
}

// Get returns a license by id, materializing lazy expiration on production
// reads. Simulation-source reads present the computed status without
// mutating the snapshot.
func (s *LicenseService) Get(ctx context.Context, source ledger.Source, id string) (*models.DriverLicense, error) {
	now := s.clock()
	if source == ledger.SourceSimulation {
		var out *models.DriverLicense
		err := s.eng.View(source, func(t *ledger.Txn) error {
			license, ok := t.Licenses().Get(id)
			if !ok {
				return appErrors.Clone(appErrors.ErrNotFound, "driver license not found")
			}
			if license.ExpiredBy(now) {
				license.Status = models.LicenseExpired
			}
			out = license
			return nil
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	}

	var out *models.DriverLicense
	events, err := s.eng.Execute(ledger.Target{}, func(t *ledger.Txn) error {
		license, ok := t.Licenses().Get(id)
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, "driver license not found")
		}
		lapseLicense(t, license, now)
		out = license
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.observe(events)
	return out, nil
}

// List returns licenses, optionally filtered by holder account, with lapse
// evaluated for presentation.
func (s *LicenseService) List(ctx context.Context, source ledger.Source, holder string) ([]models.DriverLicense, error) {
	now := s.clock()
	var out []models.DriverLicense
	err := s.eng.View(source, func(t *ledger.Txn) error {
		t.Licenses().ForEach(func(_ string, l *models.DriverLicense) bool {
			if holder != "" && l.HolderAccount != holder {
				return true
			}
			if l.ExpiredBy(now) {
				l.Status = models.LicenseExpired
			}
			out = append(out, *l)
			return true
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *LicenseService) observe(events []models.Event) {
	logEvents(s.logger, events)
	if s.metrics != nil {
		s.metrics.RecordLedgerEvents(events)
	}
}
