package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/civisuite/vitals-ledger/internal/ledger"
	"github.com/civisuite/vitals-ledger/internal/models"
	appErrors "github.com/civisuite/vitals-ledger/pkg/errors"
)

// Clock is the engine's current-time oracle. Lazy license expiration and
// record timestamps read it; tests pin it to fixed instants.
type Clock func() time.Time

// UTCClock is the production clock.
func UTCClock() time.Time {
	return time.Now().UTC()
}

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// requireActiveRegistrar is the capability check consulted at the top of
// every registrar-gated operation. The transport-level JWT role never
// substitutes for this: the registrar set inside the ledger is authoritative.
func requireActiveRegistrar(t *ledger.Txn, account string) error {
	registrar, ok := t.Registrars().Get(account)
	if !ok || !registrar.Active {
		return appErrors.Clone(appErrors.ErrNotAuthorized, "caller is not an active registrar")
	}
	return nil
}

func emitAudit(ctx context.Context, sink auditLogger, logger *zap.Logger, log *models.AuditLog) {
	if sink == nil || log == nil {
		return
	}
	if err := sink.CreateAuditLog(ctx, log); err != nil && logger != nil {
		logger.Warn("failed to persist audit log", zap.Error(err))
	}
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	v := value
	return &v
}

func recordRejection(metrics *MetricsService, err error) {
	if metrics == nil || err == nil {
		return
	}
	metrics.RecordLedgerRejection(appErrors.FromError(err).Code)
}

func logEvents(logger *zap.Logger, events []models.Event) {
	if logger == nil {
		return
	}
	for _, ev := range events {
		logger.Info("ledger_event",
			zap.Uint64("seq", ev.Seq),
			zap.String("kind", string(ev.Kind)),
			zap.Strings("record_ids", ev.RecordIDs),
			zap.String("actor", ev.Actor),
		)
	}
}
