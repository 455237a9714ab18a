package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civisuite/vitals-ledger/internal/dto"
	appErrors "github.com/civisuite/vitals-ledger/pkg/errors"
)

func newDisclosureFixture(t *testing.T) (*DisclosureService, string) {
	t.Helper()
	eng := newTestLedger(t)
	cert := issueBirth(t, eng, "Proof Subject", testNow.AddDate(-21, 0, 0), "citizen-21")
	svc := NewDisclosureService(eng, nil, nil, nil, nil, nil, "attestation-secret", time.Minute)
	return svc, cert.ID
}

func TestAgeProofDeterministic(t *testing.T) {
	svc, certID := newDisclosureFixture(t)
	req := dto.AgeProofRequest{BirthCertificateID: certID, ThresholdYears: 18, AsOf: testNow}

	first, err := svc.ProveAgeAtLeast(context.Background(), citizenActor, req)
	require.NoError(t, err)
	second, err := svc.ProveAgeAtLeast(context.Background(), citizenActor, req)
	require.NoError(t, err)

	assert.True(t, first.Satisfied)
	assert.Equal(t, first.Commitment, second.Commitment)
	assert.Equal(t, first.Proof, second.Proof)
}

func TestAgeProofThresholdBoundary(t *testing.T) {
	svc, certID := newDisclosureFixture(t)

	// Subject turns 21 exactly on testNow.
	onBirthday, err := svc.ProveAgeAtLeast(context.Background(), citizenActor, dto.AgeProofRequest{
		BirthCertificateID: certID, ThresholdYears: 21, AsOf: testNow,
	})
	require.NoError(t, err)
	assert.True(t, onBirthday.Satisfied)

	dayBefore, err := svc.ProveAgeAtLeast(context.Background(), citizenActor, dto.AgeProofRequest{
		BirthCertificateID: certID, ThresholdYears: 21, AsOf: testNow.AddDate(0, 0, -1),
	})
	require.NoError(t, err)
	assert.False(t, dayBefore.Satisfied)
}

func TestAgeProofHidesBirthTime(t *testing.T) {
	svc, certID := newDisclosureFixture(t)

	proof, err := svc.ProveAgeAtLeast(context.Background(), citizenActor, dto.AgeProofRequest{
		BirthCertificateID: certID, ThresholdYears: 18, AsOf: testNow,
	})
	require.NoError(t, err)

	birthTime := testNow.AddDate(-21, 0, 0)
	assert.NotContains(t, proof.Commitment, birthTime.Format(time.RFC3339))
	assert.NotContains(t, proof.Proof, birthTime.Format(time.RFC3339))
}

func TestAgeProofUnknownCertificate(t *testing.T) {
	svc, _ := newDisclosureFixture(t)

	_, err := svc.ProveAgeAtLeast(context.Background(), citizenActor, dto.AgeProofRequest{
		BirthCertificateID: "bc_missing", ThresholdYears: 18, AsOf: testNow,
	})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestAgeProofRequiresIssuedCertificate(t *testing.T) {
	eng := newTestLedger(t)
	births := NewBirthService(eng, nil, nil, nil, nil, fixedClock)
	pending, err := births.Request(context.Background(), registrarActor, dto.RequestBirthRequest{
		SubjectName:   "Pending Subject",
		BirthTime:     testNow.AddDate(-21, 0, 0),
		BirthLocation: "Springfield General",
	})
	require.NoError(t, err)

	svc := NewDisclosureService(eng, nil, nil, nil, nil, nil, "attestation-secret", time.Minute)
	_, err = svc.ProveAgeAtLeast(context.Background(), citizenActor, dto.AgeProofRequest{
		BirthCertificateID: pending.ID, ThresholdYears: 18, AsOf: testNow,
	})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestAgeProofVerifyRoundTrip(t *testing.T) {
	svc, certID := newDisclosureFixture(t)

	proof, err := svc.ProveAgeAtLeast(context.Background(), citizenActor, dto.AgeProofRequest{
		BirthCertificateID: certID, ThresholdYears: 18, AsOf: testNow,
	})
	require.NoError(t, err)

	result, err := svc.Verify(context.Background(), dto.VerifyAgeProofRequest{Proof: *proof})
	require.NoError(t, err)
	assert.True(t, result.Valid)
}

func TestAgeProofVerifyRejectsTampering(t *testing.T) {
	svc, certID := newDisclosureFixture(t)

	proof, err := svc.ProveAgeAtLeast(context.Background(), citizenActor, dto.AgeProofRequest{
		BirthCertificateID: certID, ThresholdYears: 25, AsOf: testNow,
	})
	require.NoError(t, err)
	require.False(t, proof.Satisfied)

	forged := *proof
	forged.Satisfied = true
	result, err := svc.Verify(context.Background(), dto.VerifyAgeProofRequest{Proof: forged})
	require.NoError(t, err)
	assert.False(t, result.Valid)

	mangled := *proof
	mangled.Commitment = mangled.Commitment[1:] + "0"
	result, err = svc.Verify(context.Background(), dto.VerifyAgeProofRequest{Proof: mangled})
	require.NoError(t, err)
	assert.False(t, result.Valid)
}

func TestAgeProofDifferentSecretsDiverge(t *testing.T) {
	eng := newTestLedger(t)
	cert := issueBirth(t, eng, "Proof Subject", testNow.AddDate(-21, 0, 0), "citizen-21")
	req := dto.AgeProofRequest{BirthCertificateID: cert.ID, ThresholdYears: 18, AsOf: testNow}

	one := NewDisclosureService(eng, nil, nil, nil, nil, nil, "secret-one", time.Minute)
	two := NewDisclosureService(eng, nil, nil, nil, nil, nil, "secret-two", time.Minute)

	p1, err := one.ProveAgeAtLeast(context.Background(), citizenActor, req)
	require.NoError(t, err)
	p2, err := two.ProveAgeAtLeast(context.Background(), citizenActor, req)
	require.NoError(t, err)

	assert.NotEqual(t, p1.Commitment, p2.Commitment)
	assert.NotEqual(t, p1.Proof, p2.Proof)
}
