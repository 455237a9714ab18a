package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civisuite/vitals-ledger/internal/dto"
	"github.com/civisuite/vitals-ledger/internal/ledger"
	"github.com/civisuite/vitals-ledger/internal/models"
	appErrors "github.com/civisuite/vitals-ledger/pkg/errors"
)

func deathRequest(name, account string) dto.RequestDeathRequest {
	return dto.RequestDeathRequest{
		SubjectAccount: account,
		SubjectName:    name,
		Cause:          "natural causes",
		Location:       "County Hospital",
		Examiner:       "Dr. Ruiz",
		DeathTime:      testNow.Add(-24 * time.Hour),
	}
}

func TestDeathRequestRegistrarOnly(t *testing.T) {
	eng := newTestLedger(t)
	svc := NewDeathService(eng, nil, nil, nil, nil, fixedClock)

	_, err := svc.Request(context.Background(), citizenActor, deathRequest("John Doe", ""))
	assert.ErrorIs(t, err, appErrors.ErrNotAuthorized)

	created, err := svc.Request(context.Background(), registrarActor, deathRequest("John Doe", ""))
	require.NoError(t, err)
	assert.Equal(t, models.DeathRequested, created.Status)
}

func TestDeathRequestDateInconsistency(t *testing.T) {
	eng := newTestLedger(t)
	birth := issueBirth(t, eng, "John Doe", testNow.AddDate(1, 0, 0), "")
	svc := NewDeathService(eng, nil, nil, nil, nil, fixedClock)

	req := deathRequest("John Doe", "")
	req.BirthCertificateID = birth.ID
	_, err := svc.Request(context.Background(), registrarActor, req)
	assert.ErrorIs(t, err, appErrors.ErrDateInconsistency)
}

func TestDeathDuplicateIssuedPerAccount(t *testing.T) {
	eng := newTestLedger(t)
	svc := NewDeathService(eng, nil, nil, nil, nil, fixedClock)

	first, err := svc.Request(context.Background(), registrarActor, deathRequest("John Doe", "john"))
	require.NoError(t, err)
	_, err = svc.Issue(context.Background(), registrarActor, first.ID)
	require.NoError(t, err)

	_, err = svc.Request(context.Background(), registrarActor, deathRequest("John Doe", "john"))
	assert.ErrorIs(t, err, appErrors.ErrDuplicateDeathRecord)
}

func TestDeathTwoPendingOnlyOneIssuable(t *testing.T) {
	eng := newTestLedger(t)
	svc := NewDeathService(eng, nil, nil, nil, nil, fixedClock)

	first, err := svc.Request(context.Background(), registrarActor, deathRequest("John Doe", "john"))
	require.NoError(t, err)
	second := deathRequest("John Doe", "john")
	second.DeathTime = second.DeathTime.Add(time.Hour)
	other, err := svc.Request(context.Background(), registrarActor, second)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)

	_, err = svc.Issue(context.Background(), registrarActor, first.ID)
	require.NoError(t, err)
	_, err = svc.Issue(context.Background(), registrarActor, other.ID)
	assert.ErrorIs(t, err, appErrors.ErrDuplicateDeathRecord)
}

func TestDeathIssueTwiceIsInvalid(t *testing.T) {
	eng := newTestLedger(t)
	svc := NewDeathService(eng, nil, nil, nil, nil, fixedClock)

	created, err := svc.Request(context.Background(), registrarActor, deathRequest("John Doe", ""))
	require.NoError(t, err)
	_, err = svc.Issue(context.Background(), registrarActor, created.ID)
	require.NoError(t, err)

	_, err = svc.Issue(context.Background(), registrarActor, created.ID)
	assert.ErrorIs(t, err, appErrors.ErrInvalidStateTransition)
}

func TestDeathSameNameDifferentAccountsAllowed(t *testing.T) {
	eng := newTestLedger(t)
	svc := NewDeathService(eng, nil, nil, nil, nil, fixedClock)

	first, err := svc.Request(context.Background(), registrarActor, deathRequest("John Doe", "john-a"))
	require.NoError(t, err)
	_, err = svc.Issue(context.Background(), registrarActor, first.ID)
	require.NoError(t, err)

	second, err := svc.Request(context.Background(), registrarActor, deathRequest("John Doe", "john-b"))
	require.NoError(t, err)
	_, err = svc.Issue(context.Background(), registrarActor, second.ID)
	require.NoError(t, err)
}

func TestDeathRequestDeduplicatesIdenticalPending(t *testing.T) {
	eng := newTestLedger(t)
	svc := NewDeathService(eng, nil, nil, nil, nil, fixedClock)

	first, err := svc.Request(context.Background(), registrarActor, deathRequest("John Doe", "john"))
	require.NoError(t, err)

	before := eng.Events(0, 100)
	again, err := svc.Request(context.Background(), registrarActor, deathRequest("John Doe", "john"))
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	// The resubmission resolves to the pending record without a new event.
	assert.Len(t, eng.Events(0, 100), len(before))

	all, err := svc.List(context.Background(), ledger.SourceProduction)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
