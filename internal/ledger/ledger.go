package ledger

import (
	"sync"
	"time"

	"github.com/civisuite/vitals-ledger/internal/models"
	appErrors "github.com/civisuite/vitals-ledger/pkg/errors"
)

// Source selects which state a read is served from.
type Source string

const (
	SourceProduction Source = "production"
	SourceSimulation Source = "simulation"
)

// Target declares which districts a mutating operation touches. While a
// simulation is running, operations targeting an affected district are
// redirected to the isolated snapshot; everything else hits production.
type Target struct {
	Districts []string
}

// TargetDistricts is a convenience constructor.
func TargetDistricts(districts ...string) Target {
	return Target{Districts: districts}
}

type simRun struct {
	session *models.SimulationSession
	state   *State
	nextSeq uint64
}

// Ledger is the deterministic single-writer state machine. Each submitted
// operation is applied as one indivisible step against the current state
// before the next is considered; ordering comes from the caller (the host
// ledger's finalization order), never from internal reordering.
type Ledger struct {
	mu sync.Mutex

	prod    *State
	nextSeq uint64

	journal    []models.Event
	journalCap int

	sim *simRun
}

// New builds an empty ledger. journalCap bounds the replayable event window
// kept in memory; zero means the default of 10000.
func New(journalCap int) *Ledger {
	if journalCap <= 0 {
		journalCap = 10000
	}
	return &Ledger{prod: NewState(), nextSeq: 1, journalCap: journalCap}
}

// Execute applies one operation as a single atomic step. The step function
// performs all validation against the staged view before mutating anything;
// returning an error discards every staged write and emitted event. On
// success committed events carry engine-assigned sequence numbers.
func (l *Ledger) Execute(target Target, step func(*Txn) error) ([]models.Event, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	run := l.routeTarget(target)

	var txn *Txn
	if run != nil {
		txn = newTxn(run.state)
	} else {
		txn = newTxn(l.prod)
	}

	if err := step(txn); err != nil {
		if run != nil {
			run.session.Stats.OperationsRejected++
		}
		return nil, err
	}
	txn.commit()

	events := txn.events
	if run != nil {
		for i := range events {
			events[i].Seq = run.nextSeq
			run.nextSeq++
		}
		run.session.Stats.OperationsApplied++
		if run.session.Stats.ByEventKind == nil {
			run.session.Stats.ByEventKind = make(map[string]int)
		}
		for _, ev := range events {
			run.session.Stats.ByEventKind[string(ev.Kind)]++
		}
		return events, nil
	}

	for i := range events {
		events[i].Seq = l.nextSeq
		l.nextSeq++
	}
	l.journal = append(l.journal, events...)
	if overflow := len(l.journal) - l.journalCap; overflow > 0 {
		l.journal = append([]models.Event(nil), l.journal[overflow:]...)
	}
	return events, nil
}

func (l *Ledger) routeTarget(target Target) *simRun {
	if l.sim == nil {
		return nil
	}
	for _, district := range target.Districts {
		for _, affected := range l.sim.session.AffectedDistricts {
			if district == affected {
				return l.sim
			}
		}
	}
	return nil
}

// View runs a read-only function against the requested state. The function
// receives an uncommitted transaction so reads share the copy-safe table
// accessors; nothing it stages is ever applied. Requesting the simulation
// source without a running session fails NOT_FOUND.
func (l *Ledger) View(source Source, fn func(*Txn) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch source {
	case SourceSimulation:
		if l.sim == nil {
			return appErrors.Clone(appErrors.ErrNotFound, "no simulation session is running")
		}
		return fn(newTxn(l.sim.state))
	default:
		return fn(newTxn(l.prod))
	}
}

// Events returns up to limit journal entries with sequence greater than
// after, in order.
func (l *Ledger) Events(after uint64, limit int) []models.Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	if limit <= 0 || limit > 1000 {
		limit = 1000
	}
	out := make([]models.Event, 0, limit)
	for _, ev := range l.journal {
		if ev.Seq <= after {
			continue
		}
		out = append(out, ev)
		if len(out) == limit {
			break
		}
	}
	return out
}

// StartSimulation snapshots production state into an isolated copy. Nested
// sessions are rejected.
func (l *Ledger) StartSimulation(session *models.SimulationSession) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.sim != nil {
		return appErrors.ErrSimulationRunning
	}
	l.sim = &simRun{session: session, state: l.prod.Clone(), nextSeq: 1}
	return nil
}

// RunningSimulation returns a copy of the active session, or nil.
func (l *Ledger) RunningSimulation() *models.SimulationSession {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.sim == nil {
		return nil
	}
	copied := *l.sim.session
	return &copied
}

// UpdateSimulationStats lets scenario runners fold aggregates into the
// session under the writer lock. The transaction is a read view over the
// snapshot; nothing it stages is applied.
func (l *Ledger) UpdateSimulationStats(fn func(stats *models.SimulationStats, snapshot *Txn)) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.sim == nil {
		return appErrors.Clone(appErrors.ErrNotFound, "no simulation session is running")
	}
	fn(&l.sim.session.Stats, newTxn(l.sim.state))
	return nil
}

// EndSimulation discards the snapshot and returns the closed session.
// Whether promotion is permitted at all is a policy decision made above the
// engine.
func (l *Ledger) EndSimulation(endedAt time.Time) (*models.SimulationSession, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.sim == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no simulation session is running")
	}
	session := l.sim.session
	session.EndedAt = &endedAt
	l.sim = nil
	return session, nil
}

// PromoteSimulation replaces production state with the simulation snapshot
// and closes the session. Only reachable when the deployment explicitly
// enables commit promotion; the default policy never calls this.
func (l *Ledger) PromoteSimulation(endedAt time.Time) (*models.SimulationSession, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.sim == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no simulation session is running")
	}
	session := l.sim.session
	session.EndedAt = &endedAt
	l.prod = l.sim.state
	l.nextSeq += l.sim.nextSeq - 1
	l.sim = nil
	return session, nil
}
