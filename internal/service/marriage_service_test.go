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

func marriageRequest(partner1, partner2 string) dto.RequestMarriageRequest {
	return dto.RequestMarriageRequest{
		Partner1:     models.Partner{Account: partner1, Name: "Partner One"},
		Partner2:     models.Partner{Account: partner2, Name: "Partner Two"},
		Jurisdiction: "Hamilton County",
	}
}

func TestMarriageRequestByPartner(t *testing.T) {
	eng := newTestLedger(t)
	svc := NewMarriageService(eng, nil, nil, nil, nil, fixedClock)

	actor := models.Actor{Account: "alice", Role: models.RoleCitizen}
	created, err := svc.Request(context.Background(), actor, marriageRequest("alice", "bob"))
	require.NoError(t, err)
	assert.Equal(t, models.MarriagePending, created.Status)
	assert.Equal(t, testNow, created.RequestedAt)
	assert.Contains(t, created.ID, ledger.KindMarriage+"_")
}

func TestMarriageRequestRejectsThirdParty(t *testing.T) {
	eng := newTestLedger(t)
	svc := NewMarriageService(eng, nil, nil, nil, nil, fixedClock)

	_, err := svc.Request(context.Background(), citizenActor, marriageRequest("alice", "bob"))
	assert.ErrorIs(t, err, appErrors.ErrNotAuthorized)
}

func TestMarriageRequestRejectsSelfMarriage(t *testing.T) {
	eng := newTestLedger(t)
	svc := NewMarriageService(eng, nil, nil, nil, nil, fixedClock)

	actor := models.Actor{Account: "alice", Role: models.RoleCitizen}
	_, err := svc.Request(context.Background(), actor, marriageRequest("alice", "alice"))
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestMarriageDuplicatePairRejectedUntilRevoked(t *testing.T) {
	eng := newTestLedger(t)
	svc := NewMarriageService(eng, nil, nil, nil, nil, fixedClock)
	alice := models.Actor{Account: "alice", Role: models.RoleCitizen}

	first, err := svc.Request(context.Background(), alice, marriageRequest("alice", "bob"))
	require.NoError(t, err)

	// Same pair in either order is blocked while the first filing lives.
	_, err = svc.Request(context.Background(), alice, marriageRequest("bob", "alice"))
	assert.ErrorIs(t, err, appErrors.ErrAlreadyExists)

	_, err = svc.Issue(context.Background(), registrarActor, first.ID)
	require.NoError(t, err)
	_, err = svc.Request(context.Background(), alice, marriageRequest("alice", "bob"))
	assert.ErrorIs(t, err, appErrors.ErrAlreadyExists)

	_, err = svc.Revoke(context.Background(), registrarActor, first.ID)
	require.NoError(t, err)

	second, err := svc.Request(context.Background(), alice, marriageRequest("alice", "bob"))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestMarriageIssueRequiresRegistrar(t *testing.T) {
	eng := newTestLedger(t)
	svc := NewMarriageService(eng, nil, nil, nil, nil, fixedClock)
	alice := models.Actor{Account: "alice", Role: models.RoleCitizen}

	created, err := svc.Request(context.Background(), alice, marriageRequest("alice", "bob"))
	require.NoError(t, err)

	_, err = svc.Issue(context.Background(), alice, created.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotAuthorized)

	issued, err := svc.Issue(context.Background(), registrarActor, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MarriageIssued, issued.Status)
	require.NotNil(t, issued.IssuedBy)
	assert.Equal(t, registrarActor.Account, *issued.IssuedBy)
}

func TestMarriageRevokePendingIsInvalid(t *testing.T) {
	eng := newTestLedger(t)
	svc := NewMarriageService(eng, nil, nil, nil, nil, fixedClock)
	alice := models.Actor{Account: "alice", Role: models.RoleCitizen}

	created, err := svc.Request(context.Background(), alice, marriageRequest("alice", "bob"))
	require.NoError(t, err)

	_, err = svc.Revoke(context.Background(), registrarActor, created.ID)
	assert.ErrorIs(t, err, appErrors.ErrInvalidStateTransition)
}

func TestMarriageIssueTwiceIsInvalid(t *testing.T) {
	eng := newTestLedger(t)
	svc := NewMarriageService(eng, nil, nil, nil, nil, fixedClock)
	alice := models.Actor{Account: "alice", Role: models.RoleCitizen}

	created, err := svc.Request(context.Background(), alice, marriageRequest("alice", "bob"))
	require.NoError(t, err)
	_, err = svc.Issue(context.Background(), registrarActor, created.ID)
	require.NoError(t, err)

	_, err = svc.Issue(context.Background(), registrarActor, created.ID)
	assert.ErrorIs(t, err, appErrors.ErrInvalidStateTransition)
}

func TestMarriageListFiltersByAccount(t *testing.T) {
	eng := newTestLedger(t)
	svc := NewMarriageService(eng, nil, nil, nil, nil, fixedClock)

	_, err := svc.Request(context.Background(), models.Actor{Account: "alice"}, marriageRequest("alice", "bob"))
	require.NoError(t, err)
	_, err = svc.Request(context.Background(), models.Actor{Account: "carol"}, marriageRequest("carol", "dave"))
	require.NoError(t, err)

	all, err := svc.List(context.Background(), ledger.SourceProduction, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := svc.List(context.Background(), ledger.SourceProduction, "bob")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "bob", mine[0].Partner2.Account)
}
