package handler

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/civisuite/vitals-ledger/internal/middleware"
	"github.com/civisuite/vitals-ledger/internal/models"
	"github.com/civisuite/vitals-ledger/internal/service"
)

// Handlers bundles every handler the router mounts. Optional surfaces
// (extracts, simulations, the dev token mint) may be nil and their routes
// are skipped.
type Handlers struct {
	Auth       *AuthHandler
	Registry   *RegistryHandler
	Marriage   *MarriageHandler
	Birth      *BirthHandler
	Death      *DeathHandler
	License    *LicenseHandler
	District   *DistrictHandler
	Voter      *VoterHandler
	Disclosure *DisclosureHandler
	Simulation *SimulationHandler
	Event      *EventHandler
	Extract    *ExtractHandler
	Metrics    *MetricsHandler
}

// RouterDeps carries the cross-cutting services the middleware chain needs.
type RouterDeps struct {
	AuthService *service.AuthService
	Metrics     *service.MetricsService
	Audit       *service.AuditService
	EnableDocs  bool
}

// RegisterRoutes mounts all API routes on the engine. Role middleware is a
// coarse transport gate; the authoritative registrar check happens inside
// each ledger step against the in-ledger registrar set.
func RegisterRoutes(r *gin.Engine, h Handlers, deps RouterDeps) {
	staff := middleware.RequireRoles(models.RoleRoot, models.RoleRegistrar)

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	if deps.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	if h.Auth != nil {
		r.POST("/auth/dev-token", h.Auth.Mint)
	}

	if h.Extract != nil {
		// Downloads authenticate by signed token so issued links work
		// without a bearer token.
		r.GET("/api/v1/extracts/download", h.Extract.Download)
	}

	api := r.Group("/api/v1")
	api.Use(middleware.JWT(deps.AuthService))

	registrars := api.Group("/registrars")
	{
		registrars.POST("/bootstrap", middleware.RequireRoles(models.RoleRoot), h.Registry.Bootstrap)
		registrars.POST("", staff, h.Registry.Add)
		registrars.DELETE("/:account", staff, h.Registry.Remove)
		registrars.GET("", h.Registry.List)
	}

	marriages := api.Group("/marriages")
	{
		marriages.POST("", h.Marriage.Request)
		marriages.POST("/:id/issue", staff, h.Marriage.Issue)
		marriages.POST("/:id/revoke", staff, h.Marriage.Revoke)
		marriages.GET("/:id", h.Marriage.Get)
		marriages.GET("", h.Marriage.List)
	}

	births := api.Group("/births")
	{
		births.POST("", staff, h.Birth.Request)
		births.POST("/:id/issue", staff, h.Birth.Issue)
		births.PATCH("/:id", staff, h.Birth.Amend)
		births.GET("/:id", h.Birth.Get)
		births.GET("", h.Birth.List)
	}

	deaths := api.Group("/deaths")
	{
		deaths.POST("", staff, h.Death.Request)
		deaths.POST("/:id/issue", staff, h.Death.Issue)
		deaths.POST("/:id/effects", staff, h.Death.ProcessEffects)
		deaths.GET("/:id", h.Death.Get)
		deaths.GET("", h.Death.List)
	}

	licenses := api.Group("/licenses")
	{
		licenses.POST("", staff, h.License.Issue)
		licenses.POST("/:id/suspend", staff, h.License.Suspend)
		licenses.POST("/:id/reinstate", staff, h.License.Reinstate)
		licenses.POST("/:id/revoke", staff, h.License.Revoke)
		licenses.GET("/:id", h.License.Get)
		licenses.GET("", h.License.List)
	}

	districts := api.Group("/districts")
	{
		districts.POST("", staff, h.District.Add)
		districts.POST("/redistrict", staff, h.District.Redistrict)
		districts.GET("/:id", h.District.Get)
		districts.GET("/:id/roster", h.District.Roster)
		districts.GET("", h.District.List)
	}

	voters := api.Group("/voters")
	{
		voters.POST("", h.Voter.Register)
		voters.POST("/:account/approve", staff, h.Voter.Approve)
		voters.POST("/:account/challenge", staff, h.Voter.Challenge)
		voters.POST("/:account/adjudicate", staff, h.Voter.Adjudicate)
		voters.DELETE("/:account", staff, h.Voter.Remove)
		voters.GET("/:account", h.Voter.Get)
		voters.GET("", h.Voter.List)
	}

	disclosure := api.Group("/disclosure")
	{
		disclosure.POST("/age-proofs", h.Disclosure.ProveAge)
		disclosure.POST("/age-proofs/verify", h.Disclosure.VerifyAge)
	}

	if h.Simulation != nil {
		simulations := api.Group("/simulations")
		simulations.Use(staff)
		{
			simulations.POST("", h.Simulation.Start)
			simulations.POST("/election-day", h.Simulation.ElectionDay)
			simulations.GET("/current", h.Simulation.Status)
			simulations.POST("/end", h.Simulation.End)
		}
	}

	api.GET("/events", h.Event.List)

	if h.Extract != nil {
		audited := middleware.Audit(deps.Audit, models.AuditActionExtract, "extract")
		extracts := api.Group("/extracts")
		{
			extracts.POST("/certificates/:id", staff, audited, h.Extract.Certificate)
			extracts.POST("/rosters/:id", staff, audited, h.Extract.Roster)
		}
	}
}
