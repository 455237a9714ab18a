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

func TestVoterRegisterRequiresIssuedBirthAndDistrict(t *testing.T) {
	eng := newTestLedger(t)
	addDistrict(t, eng, "district-1")
	svc := NewVoterService(eng, nil, nil, nil, nil, fixedClock)
	actor := models.Actor{Account: "citizen-9", Role: models.RoleCitizen}

	_, err := svc.Register(context.Background(), actor, dto.RegisterVoterRequest{
		BirthCertificateID: "bc_missing",
		Address:            "12 Elm St",
		DistrictID:         "district-1",
	})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	cert := issueBirth(t, eng, "Citizen Nine", testNow.AddDate(-25, 0, 0), "citizen-9")
	_, err = svc.Register(context.Background(), actor, dto.RegisterVoterRequest{
		BirthCertificateID: cert.ID,
		Address:            "12 Elm St",
		DistrictID:         "district-missing",
	})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	created, err := svc.Register(context.Background(), actor, dto.RegisterVoterRequest{
		BirthCertificateID: cert.ID,
		Address:            "12 Elm St",
		DistrictID:         "district-1",
	})
	require.NoError(t, err)
	assert.Equal(t, models.VoterPending, created.Status)
	assert.Equal(t, actor.Account, created.Account)
}

func TestVoterDoubleRegistrationRejected(t *testing.T) {
	eng := newTestLedger(t)
	addDistrict(t, eng, "district-1")
	addDistrict(t, eng, "district-2")
	svc := NewVoterService(eng, nil, nil, nil, nil, fixedClock)
	actor := models.Actor{Account: "citizen-9", Role: models.RoleCitizen}
	cert := issueBirth(t, eng, "Citizen Nine", testNow.AddDate(-25, 0, 0), "citizen-9")

	_, err := svc.Register(context.Background(), actor, dto.RegisterVoterRequest{
		BirthCertificateID: cert.ID,
		Address:            "12 Elm St",
		DistrictID:         "district-1",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), actor, dto.RegisterVoterRequest{
		BirthCertificateID: cert.ID,
		Address:            "99 Oak Ave",
		DistrictID:         "district-2",
	})
	assert.ErrorIs(t, err, appErrors.ErrAlreadyRegistered)
}

func TestVoterApprovePlacesOnRoster(t *testing.T) {
	eng := newTestLedger(t)
	addDistrict(t, eng, "district-1")
	reg := approvedVoter(t, eng, "citizen-9", "district-1")
	assert.Equal(t, models.VoterApproved, reg.Status)
	require.NotNil(t, reg.ApprovedBy)
	assert.Equal(t, registrarActor.Account, *reg.ApprovedBy)

	err := eng.View(ledger.SourceProduction, func(txn *ledger.Txn) error {
		assert.True(t, txn.RosterHas("district-1", "citizen-9"))
		return nil
	})
	require.NoError(t, err)
}

func TestVoterApproveNonPendingIsInvalid(t *testing.T) {
	eng := newTestLedger(t)
	addDistrict(t, eng, "district-1")
	approvedVoter(t, eng, "citizen-9", "district-1")
	svc := NewVoterService(eng, nil, nil, nil, nil, fixedClock)

	_, err := svc.Approve(context.Background(), registrarActor, "citizen-9")
	assert.ErrorIs(t, err, appErrors.ErrInvalidStateTransition)
}

func TestVoterChallengeKeepsRosterUntilAdjudication(t *testing.T) {
	eng := newTestLedger(t)
	addDistrict(t, eng, "district-1")
	approvedVoter(t, eng, "citizen-9", "district-1")
	svc := NewVoterService(eng, nil, nil, nil, nil, fixedClock)

	challenged, err := svc.Challenge(context.Background(), registrarActor, "citizen-9")
	require.NoError(t, err)
	assert.Equal(t, models.VoterChallenged, challenged.Status)

	err = eng.View(ledger.SourceProduction, func(txn *ledger.Txn) error {
		assert.True(t, txn.RosterHas("district-1", "citizen-9"))
		return nil
	})
	require.NoError(t, err)

	// Upholding the registration keeps the roster entry.
	upheld, err := svc.Adjudicate(context.Background(), registrarActor, "citizen-9", dto.AdjudicateVoterRequest{Approve: true})
	require.NoError(t, err)
	assert.Equal(t, models.VoterApproved, upheld.Status)
}

func TestVoterAdjudicateRemovalDropsRoster(t *testing.T) {
	eng := newTestLedger(t)
	addDistrict(t, eng, "district-1")
	approvedVoter(t, eng, "citizen-9", "district-1")
	svc := NewVoterService(eng, nil, nil, nil, nil, fixedClock)

	_, err := svc.Challenge(context.Background(), registrarActor, "citizen-9")
	require.NoError(t, err)

	removed, err := svc.Adjudicate(context.Background(), registrarActor, "citizen-9", dto.AdjudicateVoterRequest{Approve: false, Note: "failed residency check"})
	require.NoError(t, err)
	assert.Equal(t, models.VoterRemoved, removed.Status)

	err = eng.View(ledger.SourceProduction, func(txn *ledger.Txn) error {
		assert.False(t, txn.RosterHas("district-1", "citizen-9"))
		return nil
	})
	require.NoError(t, err)
}

func TestVoterAdjudicateRequiresChallenge(t *testing.T) {
	eng := newTestLedger(t)
	addDistrict(t, eng, "district-1")
	approvedVoter(t, eng, "citizen-9", "district-1")
	svc := NewVoterService(eng, nil, nil, nil, nil, fixedClock)

	_, err := svc.Adjudicate(context.Background(), registrarActor, "citizen-9", dto.AdjudicateVoterRequest{Approve: false})
	assert.ErrorIs(t, err, appErrors.ErrInvalidStateTransition)
}

func TestVoterRemoveThenReregister(t *testing.T) {
	eng := newTestLedger(t)
	addDistrict(t, eng, "district-1")
	approvedVoter(t, eng, "citizen-9", "district-1")
	svc := NewVoterService(eng, nil, nil, nil, nil, fixedClock)

	removed, err := svc.Remove(context.Background(), registrarActor, "citizen-9")
	require.NoError(t, err)
	assert.Equal(t, models.VoterRemoved, removed.Status)

	err = eng.View(ledger.SourceProduction, func(txn *ledger.Txn) error {
		assert.False(t, txn.RosterHas("district-1", "citizen-9"))
		return nil
	})
	require.NoError(t, err)

	// A removed account may register again.
	reg, err := svc.Get(context.Background(), ledger.SourceProduction, "citizen-9")
	require.NoError(t, err)
	created, err := svc.Register(context.Background(), models.Actor{Account: "citizen-9"}, dto.RegisterVoterRequest{
		BirthCertificateID: reg.BirthCertificateID,
		Address:            "12 Elm St",
		DistrictID:         "district-1",
	})
	require.NoError(t, err)
	assert.Equal(t, models.VoterPending, created.Status)
}

func TestVoterListByDistrict(t *testing.T) {
	eng := newTestLedger(t)
	addDistrict(t, eng, "district-1")
	addDistrict(t, eng, "district-2")
	approvedVoter(t, eng, "voter-a", "district-1")
	approvedVoter(t, eng, "voter-b", "district-2")
	svc := NewVoterService(eng, nil, nil, nil, nil, fixedClock)

	all, err := svc.List(context.Background(), ledger.SourceProduction, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	first, err := svc.List(context.Background(), ledger.SourceProduction, "district-1")
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, "voter-a", first[0].Account)
}
