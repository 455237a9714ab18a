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

// DistrictService owns the election district registry and its rosters. The
// roster itself is only ever mutated by the voter and effects services; this
// service creates districts and serves reads.
type DistrictService struct {
	eng       *ledger.Ledger
	audit     auditLogger
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
	clock     Clock
}

// NewDistrictService constructs the district registry service.
func NewDistrictService(eng *ledger.Ledger, audit auditLogger, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger, clock Clock) *DistrictService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if clock == nil {
		clock = UTCClock
	}
	return &DistrictService{eng: eng, audit: audit, validator: validate, logger: logger, metrics: metrics, clock: clock}
}

// Add registers an election district under a caller-chosen identifier.
func (s *DistrictService) Add(ctx context.Context, actor models.Actor, req dto.AddDistrictRequest) (*models.District, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid district payload")
	}
	if !models.ValidDistrictType(req.Type) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown district type")
	}

	now := s.clock()
	var created *models.District
	events, err := s.eng.Execute(ledger.Target{}, func(t *ledger.Txn) error {
		if err := requireActiveRegistrar(t, actor.Account); err != nil {
			return err
		}
		if t.Districts().Has(req.ID) {
			return appErrors.Clone(appErrors.ErrAlreadyExists, "district already registered")
		}
		created = &models.District{
			ID:        req.ID,
			Name:      req.Name,
			Region:    req.Region,
			Type:      req.Type,
			CreatedBy: actor.Account,
			CreatedAt: now,
		}
		t.Districts().Put(req.ID, created)
		t.Emit(models.Event{
			Kind:      models.EventDistrictAdded,
			RecordIDs: []string{req.ID},
			Actor:     actor.Account,
			At:        now,
			Payload:   map[string]interface{}{"name": req.Name, "type": string(req.Type)},
		})
		return nil
	})
	if err != nil {
		recordRejection(s.metrics, err)
		return nil, err
	}
	logEvents(s.logger, events)
	if s.metrics != nil {
		s.metrics.RecordLedgerEvents(events)
	}
	emitAudit(ctx, s.audit, s.logger, &models.AuditLog{
		Actor:      optionalString(actor.Account),
		Action:     models.AuditActionDistrictAdd,
		Resource:   "district",
		ResourceID: &created.ID,
		Outcome:    "success",
	})
	return created, nil
}

// Get returns one district by id.
func (s *DistrictService) Get(ctx context.Context, source ledger.Source, id string) (*models.District, error) {
	var out *models.District
	err := s.eng.View(source, func(t *ledger.Txn) error {
		d, ok := t.Districts().Get(id)
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, "district not found")
		}
		out = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// List returns all districts.
func (s *DistrictService) List(ctx context.Context, source ledger.Source) ([]models.District, error) {
	var out []models.District
	err := s.eng.View(source, func(t *ledger.Txn) error {
		t.Districts().ForEach(func(_ string, d *models.District) bool {
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

// RosterEntry is one line of a district roster read.
type RosterEntry struct {
	Account string             `json:"account"`
	Status  models.VoterStatus `json:"status"`
}

// Roster returns the accounts currently assigned to a district, with their
// registration status.
func (s *DistrictService) Roster(ctx context.Context, source ledger.Source, districtID string) ([]RosterEntry, error) {
	var out []RosterEntry
	err := s.eng.View(source, func(t *ledger.Txn) error {
		if !t.Districts().Has(districtID) {
			return appErrors.Clone(appErrors.ErrNotFound, "district not found")
		}
		for _, account := range t.RosterAccounts(districtID) {
			entry := RosterEntry{Account: account}
			if reg, ok := t.Voters().Get(account); ok {
				entry.Status = reg.Status
			}
			out = append(out, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
