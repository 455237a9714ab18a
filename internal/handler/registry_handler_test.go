package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civisuite/vitals-ledger/internal/dto"
	"github.com/civisuite/vitals-ledger/internal/ledger"
	"github.com/civisuite/vitals-ledger/internal/models"
	appErrors "github.com/civisuite/vitals-ledger/pkg/errors"
)

type registryServiceMock struct {
	bootstrapErr error
	removeErr    error
	lastActor    models.Actor
	lastTarget   string
}

func (m *registryServiceMock) Bootstrap(ctx context.Context, actor models.Actor, candidate string) (*models.Registrar, error) {
	m.lastActor = actor
	m.lastTarget = candidate
	if m.bootstrapErr != nil {
		return nil, m.bootstrapErr
	}
	return &models.Registrar{Account: candidate, Active: true}, nil
}

func (m *registryServiceMock) Add(ctx context.Context, actor models.Actor, candidate string) (*models.Registrar, error) {
	m.lastActor = actor
	return &models.Registrar{Account: candidate, Active: true}, nil
}

func (m *registryServiceMock) Remove(ctx context.Context, actor models.Actor, target string) (*models.Registrar, error) {
	m.lastTarget = target
	if m.removeErr != nil {
		return nil, m.removeErr
	}
	return &models.Registrar{Account: target, Active: false}, nil
}

func (m *registryServiceMock) List(ctx context.Context, source ledger.Source) ([]models.Registrar, error) {
	return []models.Registrar{{Account: "registrar-1", Active: true}}, nil
}

func TestRegistryHandlerBootstrap(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &registryServiceMock{}
	h := NewRegistryHandler(mock)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(dto.RegistrarRequest{Account: "registrar-1"})
	req, _ := http.NewRequest(http.MethodPost, "/registrars/bootstrap", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	setClaims(c, "root", models.RoleRoot)

	h.Bootstrap(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "root", mock.lastActor.Account)
	assert.Equal(t, "registrar-1", mock.lastTarget)
}

func TestRegistryHandlerBootstrapConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &registryServiceMock{bootstrapErr: appErrors.ErrAlreadyInitialized}
	h := NewRegistryHandler(mock)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(dto.RegistrarRequest{Account: "registrar-2"})
	req, _ := http.NewRequest(http.MethodPost, "/registrars/bootstrap", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	setClaims(c, "root", models.RoleRoot)

	h.Bootstrap(c)
	assert.Equal(t, appErrors.ErrAlreadyInitialized.Status, w.Code)
}

func TestRegistryHandlerRemoveUsesPathParam(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &registryServiceMock{}
	h := NewRegistryHandler(mock)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodDelete, "/registrars/registrar-9", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "account", Value: "registrar-9"}}
	setClaims(c, "registrar-1", models.RoleRegistrar)

	h.Remove(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "registrar-9", mock.lastTarget)
}

func TestRegistryHandlerList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewRegistryHandler(&registryServiceMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/registrars", nil)
	c.Request = req
	setClaims(c, "citizen-1", models.RoleCitizen)

	h.List(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data []models.Registrar `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "registrar-1", envelope.Data[0].Account)
}
