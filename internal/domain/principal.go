package domain

import "slices"

// AuthMethod describes how a caller authenticated with the API.
type AuthMethod string

const (
	AuthMethodGateway AuthMethod = "gateway"
	AuthMethodJWT     AuthMethod = "jwt"
)

// Principal captures normalized caller identity independent of auth mechanism.
type Principal struct {
	ID          string
	AuthMethod  AuthMethod
	Subject     string
	Issuer      string
	Username    string
	Email       string
	Name        string
	Picture     string
	Scopes      []string
	Credentials map[string]string
}

// HasScope checks if the principal possesses a scope.
func (p Principal) HasScope(scope string) bool {
	return slices.Contains(p.Scopes, scope)
}
