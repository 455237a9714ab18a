package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civisuite/vitals-ledger/internal/dto"
	"github.com/civisuite/vitals-ledger/internal/models"
	appErrors "github.com/civisuite/vitals-ledger/pkg/errors"
)

type disclosureServiceMock struct {
	proveResp  *dto.AgeProof
	proveErr   error
	verifyResp *dto.VerifyAgeProofResult
}

func (m *disclosureServiceMock) ProveAgeAtLeast(ctx context.Context, actor models.Actor, req dto.AgeProofRequest) (*dto.AgeProof, error) {
	if m.proveErr != nil {
		return nil, m.proveErr
	}
	return m.proveResp, nil
}

func (m *disclosureServiceMock) Verify(ctx context.Context, req dto.VerifyAgeProofRequest) (*dto.VerifyAgeProofResult, error) {
	return m.verifyResp, nil
}

func TestDisclosureHandlerProveAge(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &disclosureServiceMock{proveResp: &dto.AgeProof{
		BirthCertificateID: "bc_1",
		ThresholdYears:     18,
		Satisfied:          true,
		Commitment:         "aa",
		Proof:              "bb",
	}}
	h := NewDisclosureHandler(mock)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(dto.AgeProofRequest{
		BirthCertificateID: "bc_1",
		ThresholdYears:     18,
		AsOf:               time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
	})
	req, _ := http.NewRequest(http.MethodPost, "/disclosure/age-proofs", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	setClaims(c, "citizen-1", models.RoleCitizen)

	h.ProveAge(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data dto.AgeProof `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.True(t, envelope.Data.Satisfied)
	assert.Equal(t, "bc_1", envelope.Data.BirthCertificateID)
}

func TestDisclosureHandlerProveAgeNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &disclosureServiceMock{proveErr: appErrors.ErrNotFound}
	h := NewDisclosureHandler(mock)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(dto.AgeProofRequest{
		BirthCertificateID: "bc_missing",
		ThresholdYears:     18,
		AsOf:               time.Now(),
	})
	req, _ := http.NewRequest(http.MethodPost, "/disclosure/age-proofs", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	setClaims(c, "citizen-1", models.RoleCitizen)

	h.ProveAge(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDisclosureHandlerVerifyAge(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &disclosureServiceMock{verifyResp: &dto.VerifyAgeProofResult{Valid: false}}
	h := NewDisclosureHandler(mock)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(dto.VerifyAgeProofRequest{Proof: dto.AgeProof{
		BirthCertificateID: "bc_1",
		ThresholdYears:     18,
		AsOf:               time.Now(),
		Commitment:         "aa",
		Proof:              "bb",
	}})
	req, _ := http.NewRequest(http.MethodPost, "/disclosure/age-proofs/verify", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	setClaims(c, "citizen-1", models.RoleCitizen)

	h.VerifyAge(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data dto.VerifyAgeProofResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.False(t, envelope.Data.Valid)
}
