package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"promptforge/internal/domain"
	authvalidator "promptforge/internal/infrastructure/auth"
	"promptforge/internal/interfaces/httpserver/responses"
)

const principalContextKey = "principal"

var errNoBearer = errors.New("no bearer token")

// AuthMiddleware accepts identity headers injected by the gateway or a bearer
// token validated against the configured JWKS. validator may be nil.
func AuthMiddleware(validator *authvalidator.JWTValidator, logger zerolog.Logger, fallbackIssuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		gatewayPrincipal, hasGateway := principalFromGatewayHeaders(c.Request.Header, fallbackIssuer)
		jwtPrincipal, hasJWT, jwtErr := principalFromJWT(c, validator)

		if jwtErr != nil && !errors.Is(jwtErr, errNoBearer) {
			logger.Warn().Err(jwtErr).Msg("jwt validation failed")
			responses.HandleErrorWithStatus(c, http.StatusUnauthorized, jwtErr, "unauthorized")
			return
		}

		switch {
		case hasGateway && hasJWT:
			if !strings.EqualFold(gatewayPrincipal.Subject, jwtPrincipal.Subject) {
				logger.Warn().Msg("principal mismatch between JWT and gateway headers")
				responses.HandleErrorWithStatus(c, http.StatusUnauthorized, errors.New("principal subjects mismatch"), "conflicting credentials")
				return
			}
			setPrincipal(c, jwtPrincipal)
		case hasJWT:
			setPrincipal(c, jwtPrincipal)
		case hasGateway:
			setPrincipal(c, gatewayPrincipal)
		default:
			logger.Warn().
				Str("path", c.FullPath()).
				Str("method", c.Request.Method).
				Msg("unauthenticated request")
			responses.HandleErrorWithStatus(c, http.StatusUnauthorized, errors.New("authentication required"), "unauthorized")
			return
		}

		c.Next()
	}
}

// PrincipalFromContext returns the authenticated principal, if any.
func PrincipalFromContext(c *gin.Context) (domain.Principal, bool) {
	val, ok := c.Get(principalContextKey)
	if !ok {
		return domain.Principal{}, false
	}
	principal, ok := val.(domain.Principal)
	return principal, ok
}

// SetPrincipal stores principal on the request context.
func SetPrincipal(c *gin.Context, principal domain.Principal) {
	setPrincipal(c, principal)
}

func setPrincipal(c *gin.Context, principal domain.Principal) {
	c.Set(principalContextKey, principal)
	c.Set("user_subject", principal.Subject)
	c.Writer.Header().Set("X-Auth-Method", string(principal.AuthMethod))
}

func principalFromJWT(c *gin.Context, validator *authvalidator.JWTValidator) (domain.Principal, bool, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return domain.Principal{}, false, errNoBearer
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return domain.Principal{}, false, errNoBearer
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return domain.Principal{}, false, errNoBearer
	}
	if validator == nil {
		return domain.Principal{}, false, errors.New("bearer tokens are not accepted")
	}
	claims, err := validator.Validate(c.Request.Context(), token)
	if err != nil {
		return domain.Principal{}, false, err
	}

	credentials := map[string]string{"token_id": claims.TokenID}
	if claims.Issuer != "" {
		credentials["issuer"] = claims.Issuer
	}
	return domain.Principal{
		ID:          claims.Subject,
		AuthMethod:  domain.AuthMethodJWT,
		Subject:     claims.Subject,
		Issuer:      claims.Issuer,
		Username:    claims.PreferredUsername,
		Email:       claims.Email,
		Name:        claims.Name,
		Picture:     claims.Picture,
		Scopes:      claims.Scopes,
		Credentials: credentials,
	}, true, nil
}

func principalFromGatewayHeaders(headers http.Header, fallbackIssuer string) (domain.Principal, bool) {
	userID := strings.TrimSpace(headers.Get("X-User-ID"))
	subject := strings.TrimSpace(headers.Get("X-User-Subject"))

	principalID := firstNonEmpty(userID, subject)
	if principalID == "" {
		return domain.Principal{}, false
	}

	credentials := map[string]string{}
	if userID != "" {
		credentials["gateway_user_id"] = userID
	}
	if subject != "" {
		credentials["gateway_subject"] = subject
	}

	return domain.Principal{
		ID:          principalID,
		AuthMethod:  domain.AuthMethodGateway,
		Subject:     firstNonEmpty(subject, principalID),
		Issuer:      fallbackIssuer,
		Username:    strings.TrimSpace(headers.Get("X-User-Username")),
		Email:       strings.TrimSpace(headers.Get("X-User-Email")),
		Scopes:      parseScopes(headers.Get("X-Scopes")),
		Credentials: credentials,
	}, true
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func parseScopes(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ' ' })
}
