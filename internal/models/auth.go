package models

import "github.com/golang-jwt/jwt/v5"

// ActorRole is the coarse transport-level role carried in bearer tokens.
// The authoritative registrar capability check is the access registry; the
// token role only gates routes before a service is ever reached.
type ActorRole string

const (
	RoleRoot      ActorRole = "ROOT"
	RoleRegistrar ActorRole = "REGISTRAR"
	RoleCitizen   ActorRole = "CITIZEN"
)

// JWTClaims carries the authenticated actor identity through a request.
type JWTClaims struct {
	Account string    `json:"account"`
	Role    ActorRole `json:"role"`
	jwt.RegisteredClaims
}

// Actor is the identity a service operation runs as.
type Actor struct {
	Account string
	Role    ActorRole
}

// IsRoot reports whether the actor holds the root authority role.
func (a Actor) IsRoot() bool {
	return a.Role == RoleRoot
}
