package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civisuite/vitals-ledger/internal/models"
	"github.com/civisuite/vitals-ledger/internal/service"
)

func TestRegisterRoutesSkipsDisabledSimulationSurface(t *testing.T) {
	gin.SetMode(gin.TestMode)
	auth := service.NewAuthService(nil, nil, service.AuthConfig{
		Secret:       "test-secret",
		Expiration:   time.Hour,
		Issuer:       "vitals-ledger-test",
		DevTokenMint: true,
	})
	token, _, err := auth.MintToken("registrar-1", models.RoleRegistrar)
	require.NoError(t, err)

	r := gin.New()
	RegisterRoutes(r, Handlers{}, RouterDeps{AuthService: auth})

	// A deployment without the simulation surface must answer 404, not
	// dereference a nil handler.
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/simulations/current", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	assert.NotPanics(t, func() { r.ServeHTTP(w, req) })
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRegisterRoutesSkipsOptionalSurfaces(t *testing.T) {
	gin.SetMode(gin.TestMode)
	auth := service.NewAuthService(nil, nil, service.AuthConfig{Secret: "test-secret", Expiration: time.Hour})

	r := gin.New()
	RegisterRoutes(r, Handlers{}, RouterDeps{AuthService: auth})

	for _, path := range []string{"/auth/dev-token", "/api/v1/extracts/download"} {
		req, _ := http.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		assert.NotPanics(t, func() { r.ServeHTTP(w, req) })
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
}
