package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/civisuite/vitals-ledger/internal/ledger"
	"github.com/civisuite/vitals-ledger/internal/models"
	appErrors "github.com/civisuite/vitals-ledger/pkg/errors"
)

// RegistryService maintains the set of accounts authorized to act as
// registrars. Registrars are marked inactive on removal, never deleted.
type RegistryService struct {
	eng     *ledger.Ledger
	audit   auditLogger
	logger  *zap.Logger
	metrics *MetricsService
	clock   Clock
}

// NewRegistryService constructs the access registry service.
func NewRegistryService(eng *ledger.Ledger, audit auditLogger, metrics *MetricsService, logger *zap.Logger, clock Clock) *RegistryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = UTCClock
	}
	return &RegistryService{eng: eng, audit: audit, logger: logger, metrics: metrics, clock: clock}
}

// Bootstrap seats the first registrar. Only the root authority may call it,
// and only while no registrar exists yet.
func (s *RegistryService) Bootstrap(ctx context.Context, actor models.Actor, candidate string) (*models.Registrar, error) {
	if candidate == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "candidate account is required")
	}
	if !actor.IsRoot() {
		return nil, appErrors.Clone(appErrors.ErrNotAuthorized, "bootstrap requires the root authority")
	}

	var created *models.Registrar
	now := s.clock()
	events, err := s.eng.Execute(ledger.Target{}, func(t *ledger.Txn) error {
		if t.Registrars().Len() > 0 {
			return appErrors.ErrAlreadyInitialized
		}
		created = &models.Registrar{
			Account: candidate,
			Active:  true,
			AddedBy: actor.Account,
			AddedAt: now,
		}
		t.Registrars().Put(candidate, created)
		t.Emit(models.Event{
			Kind:      models.EventRegistrarBootstrapped,
			RecordIDs: []string{candidate},
			Actor:     actor.Account,
			NewStatus: "ACTIVE",
			At:        now,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.observe(events)
	emitAudit(ctx, s.audit, s.logger, &models.AuditLog{
		Actor:      optionalString(actor.Account),
		Action:     models.AuditActionBootstrap,
		Resource:   "registrar",
		ResourceID: &candidate,
		Outcome:    "success",
	})
	return created, nil
}

// Add authorizes another account as registrar. Adding an already-active
// registrar is a no-op success.
func (s *RegistryService) Add(ctx context.Context, actor models.Actor, candidate string) (*models.Registrar, error) {
	if candidate == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "candidate account is required")
	}

	var result *models.Registrar
	now := s.clock()
	events, err := s.eng.Execute(ledger.Target{}, func(t *ledger.Txn) error {
		if err := requireActiveRegistrar(t, actor.Account); err != nil {
			return err
		}
		if existing, ok := t.Registrars().Get(candidate); ok && existing.Active {
			result = existing
			return nil
		}
		result = &models.Registrar{
			Account: candidate,
			Active:  true,
			AddedBy: actor.Account,
			AddedAt: now,
		}
		t.Registrars().Put(candidate, result)
		t.Emit(models.Event{
			Kind:      models.EventRegistrarAdded,
			RecordIDs: []string{candidate},
			Actor:     actor.Account,
			NewStatus: "ACTIVE",
			At:        now,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.observe(events)
	emitAudit(ctx, s.audit, s.logger, &models.AuditLog{
		Actor:      optionalString(actor.Account),
		Action:     models.AuditActionRegistrarAdd,
		Resource:   "registrar",
		ResourceID: &candidate,
		Outcome:    "success",
	})
	return result, nil
}

// Remove marks a registrar inactive, preserving its audit history.
func (s *RegistryService) Remove(ctx context.Context, actor models.Actor, target string) (*models.Registrar, error) {
	var result *models.Registrar
	now := s.clock()
	events, err := s.eng.Execute(ledger.Target{}, func(t *ledger.Txn) error {
		if err := requireActiveRegistrar(t, actor.Account); err != nil {
			return err
		}
		registrar, ok := t.Registrars().Get(target)
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, "target was never a registrar")
		}
		if !registrar.Active {
			result = registrar
			return nil
		}
		registrar.Active = false
		registrar.RemovedBy = &actor.Account
		registrar.RemovedAt = &now
		t.Registrars().Put(target, registrar)
		result = registrar
		t.Emit(models.Event{
			Kind:      models.EventRegistrarRemoved,
			RecordIDs: []string{target},
			Actor:     actor.Account,
			OldStatus: "ACTIVE",
			NewStatus: "INACTIVE",
			At:        now,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.observe(events)
	emitAudit(ctx, s.audit, s.logger, &models.AuditLog{
		Actor:      optionalString(actor.Account),
		Action:     models.AuditActionRegistrarRemove,
		Resource:   "registrar",
		ResourceID: &target,
		Outcome:    "success",
	})
	return result, nil
}

// List returns all registrars, active and inactive, in account order.
func (s *RegistryService) List(ctx context.Context, source ledger.Source) ([]models.Registrar, error) {
	var out []models.Registrar
	err := s.eng.View(source, func(t *ledger.Txn) error {
		t.Registrars().ForEach(func(_ string, r *models.Registrar) bool {
			out = append(out, *r)
			return true
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *RegistryService) observe(events []models.Event) {
	logEvents(s.logger, events)
	if s.metrics != nil {
		s.metrics.RecordLedgerEvents(events)
	}
}
