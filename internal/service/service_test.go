package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/civisuite/vitals-ledger/internal/dto"
	"github.com/civisuite/vitals-ledger/internal/ledger"
	"github.com/civisuite/vitals-ledger/internal/models"
)

var (
	rootActor      = models.Actor{Account: "root-1", Role: models.RoleRoot}
	registrarActor = models.Actor{Account: "registrar-1", Role: models.RoleRegistrar}
	citizenActor   = models.Actor{Account: "citizen-1", Role: models.RoleCitizen}
)

// testNow is the pinned instant every service test runs at.
var testNow = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time {
	return testNow
}

type capturedAudit struct {
	mu   sync.Mutex
	logs []models.AuditLog
}

func (c *capturedAudit) CreateAuditLog(_ context.Context, log *models.AuditLog) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logs = append(c.logs, *log)
	return nil
}

func (c *capturedAudit) actions() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.logs))
	for _, log := range c.logs {
		out = append(out, log.Action)
	}
	return out
}

// newTestLedger returns an engine with registrar-1 already seated.
func newTestLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	eng := ledger.New(0)
	_, err := eng.Execute(ledger.Target{}, func(txn *ledger.Txn) error {
		txn.Registrars().Put(registrarActor.Account, &models.Registrar{
			Account: registrarActor.Account,
			Active:  true,
			AddedBy: rootActor.Account,
			AddedAt: testNow,
		})
		return nil
	})
	require.NoError(t, err)
	return eng
}

// issueBirth files and issues a certificate born at the given instant,
// optionally linked to a subject account.
func issueBirth(t *testing.T, eng *ledger.Ledger, name string, bornAt time.Time, account string) *models.BirthCertificate {
	t.Helper()
	births := NewBirthService(eng, nil, nil, nil, nil, fixedClock)
	cert, err := births.Request(context.Background(), registrarActor, dto.RequestBirthRequest{
		SubjectName:   name,
		BirthTime:     bornAt,
		BirthLocation: "Springfield General",
	})
	require.NoError(t, err)
	cert, err = births.Issue(context.Background(), registrarActor, cert.ID, dto.IssueBirthRequest{SubjectAccount: account})
	require.NoError(t, err)
	return cert
}

// addDistrict registers a district through the district service.
func addDistrict(t *testing.T, eng *ledger.Ledger, id string) {
	t.Helper()
	districts := NewDistrictService(eng, nil, nil, nil, nil, fixedClock)
	_, err := districts.Add(context.Background(), registrarActor, dto.AddDistrictRequest{
		ID:     id,
		Name:   "District " + id,
		Region: "Central",
		Type:   models.DistrictCounty,
	})
	require.NoError(t, err)
}

// approvedVoter registers and approves a voter backed by an issued linked
// birth certificate.
func approvedVoter(t *testing.T, eng *ledger.Ledger, account, districtID string) *models.VoterRegistration {
	t.Helper()
	bornAt := testNow.AddDate(-30, 0, 0)
	cert := issueBirth(t, eng, "Voter "+account, bornAt, account)

	voters := NewVoterService(eng, nil, nil, nil, nil, fixedClock)
	_, err := voters.Register(context.Background(), models.Actor{Account: account, Role: models.RoleCitizen}, dto.RegisterVoterRequest{
		BirthCertificateID: cert.ID,
		Address:            "12 Elm St",
		DistrictID:         districtID,
	})
	require.NoError(t, err)
	reg, err := voters.Approve(context.Background(), registrarActor, account)
	require.NoError(t, err)
	return reg
}
