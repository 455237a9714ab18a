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

func birthRequest(name string) dto.RequestBirthRequest {
	return dto.RequestBirthRequest{
		SubjectName:   name,
		BirthTime:     time.Date(2000, time.June, 1, 8, 30, 0, 0, time.UTC),
		BirthLocation: "Springfield General",
		Parents:       []string{"parent-1", "parent-2"},
	}
}

func TestBirthRequestRegistrarOnly(t *testing.T) {
	eng := newTestLedger(t)
	svc := NewBirthService(eng, nil, nil, nil, nil, fixedClock)

	_, err := svc.Request(context.Background(), citizenActor, birthRequest("June Doe"))
	assert.ErrorIs(t, err, appErrors.ErrNotAuthorized)

	created, err := svc.Request(context.Background(), registrarActor, birthRequest("June Doe"))
	require.NoError(t, err)
	assert.Equal(t, models.BirthRequested, created.Status)
	assert.Contains(t, created.ID, ledger.KindBirth+"_")
}

func TestBirthRequestDeduplicatesPending(t *testing.T) {
	eng := newTestLedger(t)
	svc := NewBirthService(eng, nil, nil, nil, nil, fixedClock)

	first, err := svc.Request(context.Background(), registrarActor, birthRequest("June Doe"))
	require.NoError(t, err)

	second, err := svc.Request(context.Background(), registrarActor, birthRequest("June Doe"))
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	all, err := svc.List(context.Background(), ledger.SourceProduction)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestBirthIssueLinksSubjectOnce(t *testing.T) {
	eng := newTestLedger(t)
	svc := NewBirthService(eng, nil, nil, nil, nil, fixedClock)

	first, err := svc.Request(context.Background(), registrarActor, birthRequest("June Doe"))
	require.NoError(t, err)
	issued, err := svc.Issue(context.Background(), registrarActor, first.ID, dto.IssueBirthRequest{SubjectAccount: "june"})
	require.NoError(t, err)
	require.NotNil(t, issued.SubjectAccount)
	assert.Equal(t, "june", *issued.SubjectAccount)

	// A second certificate cannot link the same account.
	other, err := svc.Request(context.Background(), registrarActor, birthRequest("Someone Else"))
	require.NoError(t, err)
	_, err = svc.Issue(context.Background(), registrarActor, other.ID, dto.IssueBirthRequest{SubjectAccount: "june"})
	assert.ErrorIs(t, err, appErrors.ErrAlreadyLinked)
}

func TestBirthIssueWithoutLink(t *testing.T) {
	eng := newTestLedger(t)
	svc := NewBirthService(eng, nil, nil, nil, nil, fixedClock)

	created, err := svc.Request(context.Background(), registrarActor, birthRequest("June Doe"))
	require.NoError(t, err)
	issued, err := svc.Issue(context.Background(), registrarActor, created.ID, dto.IssueBirthRequest{})
	require.NoError(t, err)
	assert.Equal(t, models.BirthIssued, issued.Status)
	assert.Nil(t, issued.SubjectAccount)
}

func TestBirthAmendUpdatesContentNotLink(t *testing.T) {
	eng := newTestLedger(t)
	svc := NewBirthService(eng, nil, nil, nil, nil, fixedClock)

	created, err := svc.Request(context.Background(), registrarActor, birthRequest("June Doe"))
	require.NoError(t, err)
	_, err = svc.Issue(context.Background(), registrarActor, created.ID, dto.IssueBirthRequest{SubjectAccount: "june"})
	require.NoError(t, err)

	newTime := time.Date(2000, time.June, 1, 9, 0, 0, 0, time.UTC)
	amended, err := svc.Amend(context.Background(), registrarActor, created.ID, dto.AmendBirthRequest{
		SubjectName: "June Q. Doe",
		BirthTime:   &newTime,
	})
	require.NoError(t, err)
	assert.Equal(t, models.BirthAmended, amended.Status)
	assert.Equal(t, "June Q. Doe", amended.SubjectName)
	assert.Equal(t, newTime, amended.BirthTime)
	assert.Equal(t, "Springfield General", amended.BirthLocation)
	require.NotNil(t, amended.SubjectAccount)
	assert.Equal(t, "june", *amended.SubjectAccount)

	// Amended records stay amendable.
	again, err := svc.Amend(context.Background(), registrarActor, created.ID, dto.AmendBirthRequest{BirthLocation: "County Hospital"})
	require.NoError(t, err)
	assert.Equal(t, "County Hospital", again.BirthLocation)
}

func TestBirthAmendRequestedIsInvalid(t *testing.T) {
	eng := newTestLedger(t)
	svc := NewBirthService(eng, nil, nil, nil, nil, fixedClock)

	created, err := svc.Request(context.Background(), registrarActor, birthRequest("June Doe"))
	require.NoError(t, err)

	_, err = svc.Amend(context.Background(), registrarActor, created.ID, dto.AmendBirthRequest{SubjectName: "Changed"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidStateTransition)
}

func TestBirthAgeAtWholeYears(t *testing.T) {
	cert := &models.BirthCertificate{BirthTime: time.Date(2010, time.March, 15, 12, 0, 0, 0, time.UTC)}

	dayBefore := time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, 15, cert.AgeAt(dayBefore))

	onBirthday := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, 16, cert.AgeAt(onBirthday))
}
