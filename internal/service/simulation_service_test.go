package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civisuite/vitals-ledger/internal/dto"
	"github.com/civisuite/vitals-ledger/internal/ledger"
	"github.com/civisuite/vitals-ledger/internal/models"
	appErrors "github.com/civisuite/vitals-ledger/pkg/errors"
)

func startRequest(districts ...string) dto.StartSimulationRequest {
	return dto.StartSimulationRequest{
		Scenario:          "DISASTER",
		Tag:               "flood-drill",
		AffectedDistricts: districts,
	}
}

func TestSimulationStartAndStatus(t *testing.T) {
	eng := newTestLedger(t)
	svc := NewSimulationService(eng, nil, nil, nil, nil, fixedClock, false)

	session, err := svc.Start(context.Background(), registrarActor, startRequest("district-1"))
	require.NoError(t, err)
	assert.Equal(t, models.ScenarioDisaster, session.Scenario)
	assert.Equal(t, registrarActor.Account, session.StartedBy)

	status, err := svc.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, session.ID, status.ID)
}

func TestSimulationStartRequiresRegistrarOrRoot(t *testing.T) {
	eng := newTestLedger(t)
	svc := NewSimulationService(eng, nil, nil, nil, nil, fixedClock, false)

	_, err := svc.Start(context.Background(), citizenActor, startRequest("district-1"))
	assert.ErrorIs(t, err, appErrors.ErrNotAuthorized)

	_, err = svc.Start(context.Background(), rootActor, startRequest("district-1"))
	require.NoError(t, err)
}

func TestSimulationNestedStartRejected(t *testing.T) {
	eng := newTestLedger(t)
	svc := NewSimulationService(eng, nil, nil, nil, nil, fixedClock, false)

	_, err := svc.Start(context.Background(), registrarActor, startRequest("district-1"))
	require.NoError(t, err)

	_, err = svc.Start(context.Background(), registrarActor, startRequest("district-2"))
	assert.ErrorIs(t, err, appErrors.ErrSimulationRunning)
}

func TestSimulationUnknownScenarioRejected(t *testing.T) {
	eng := newTestLedger(t)
	svc := NewSimulationService(eng, nil, nil, nil, nil, fixedClock, false)

	_, err := svc.Start(context.Background(), registrarActor, dto.StartSimulationRequest{
		Scenario:          "ZOMBIE_OUTBREAK",
		Tag:               "nope",
		AffectedDistricts: []string{"district-1"},
	})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestSimulationStatusWhenIdle(t *testing.T) {
	eng := newTestLedger(t)
	svc := NewSimulationService(eng, nil, nil, nil, nil, fixedClock, false)

	_, err := svc.Status(context.Background())
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestSimulationEndDiscardsSnapshot(t *testing.T) {
	eng := newTestLedger(t)
	addDistrict(t, eng, "district-1")
	cert := issueBirth(t, eng, "Sim Citizen", testNow.AddDate(-30, 0, 0), "sim-citizen")
	svc := NewSimulationService(eng, nil, nil, nil, nil, fixedClock, false)

	_, err := svc.Start(context.Background(), registrarActor, startRequest("district-1"))
	require.NoError(t, err)

	// A registration targeting the affected district is absorbed by the
	// snapshot and never reaches production.
	voters := NewVoterService(eng, nil, nil, nil, nil, fixedClock)
	_, err = voters.Register(context.Background(), models.Actor{Account: "sim-citizen"}, dto.RegisterVoterRequest{
		BirthCertificateID: cert.ID,
		Address:            "12 Elm St",
		DistrictID:         "district-1",
	})
	require.NoError(t, err)

	session, err := svc.End(context.Background(), registrarActor, dto.EndSimulationRequest{Commit: false})
	require.NoError(t, err)
	require.NotNil(t, session.EndedAt)
	assert.Equal(t, 1, session.Stats.OperationsApplied)

	_, err = voters.Get(context.Background(), ledger.SourceProduction, "sim-citizen")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestSimulationCommitDisabledByPolicy(t *testing.T) {
	eng := newTestLedger(t)
	svc := NewSimulationService(eng, nil, nil, nil, nil, fixedClock, false)

	_, err := svc.Start(context.Background(), registrarActor, startRequest("district-1"))
	require.NoError(t, err)

	_, err = svc.End(context.Background(), registrarActor, dto.EndSimulationRequest{Commit: true})
	assert.ErrorIs(t, err, appErrors.ErrNotSupported)

	// The session is still running after a refused commit.
	_, err = svc.Status(context.Background())
	require.NoError(t, err)
}

func TestSimulationCommitPromotesWhenAllowed(t *testing.T) {
	eng := newTestLedger(t)
	addDistrict(t, eng, "district-1")
	cert := issueBirth(t, eng, "Sim Citizen", testNow.AddDate(-30, 0, 0), "sim-citizen")
	svc := NewSimulationService(eng, nil, nil, nil, nil, fixedClock, true)

	_, err := svc.Start(context.Background(), registrarActor, startRequest("district-1"))
	require.NoError(t, err)

	voters := NewVoterService(eng, nil, nil, nil, nil, fixedClock)
	_, err = voters.Register(context.Background(), models.Actor{Account: "sim-citizen"}, dto.RegisterVoterRequest{
		BirthCertificateID: cert.ID,
		Address:            "12 Elm St",
		DistrictID:         "district-1",
	})
	require.NoError(t, err)

	_, err = svc.End(context.Background(), registrarActor, dto.EndSimulationRequest{Commit: true})
	require.NoError(t, err)

	reg, err := voters.Get(context.Background(), ledger.SourceProduction, "sim-citizen")
	require.NoError(t, err)
	assert.Equal(t, models.VoterPending, reg.Status)
}

func TestSimulationElectionDayTurnout(t *testing.T) {
	eng := newTestLedger(t)
	addDistrict(t, eng, "district-1")
	approvedVoter(t, eng, "voter-a", "district-1")
	approvedVoter(t, eng, "voter-b", "district-1")
	svc := NewSimulationService(eng, nil, nil, nil, nil, fixedClock, false)

	session, err := svc.SimulateElectionDay(context.Background(), registrarActor, dto.ElectionDayRequest{
		TurnoutPercent: 50,
		Districts:      []string{"district-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.ScenarioElectionDay, session.Scenario)
	assert.Equal(t, 1, session.Stats.ProjectedTurnout["district-1"])
}
