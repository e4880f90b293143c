package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// PrincipalClaims represent the subset of JWT claims we care about.
type PrincipalClaims struct {
	Subject           string
	Issuer            string
	Audience          []string
	PreferredUsername string
	Email             string
	Name              string
	Picture           string
	Scopes            []string
	ExpiresAt         time.Time
	IssuedAt          time.Time
	NotBefore         time.Time
	TokenID           string
}

// JWTValidator validates RS256 bearer tokens against a JWKS endpoint.
type JWTValidator struct {
	issuer       string
	audience     string
	jwksURL      string
	logger       zerolog.Logger
	refreshEvery time.Duration
	clockSkew    time.Duration
	keyfunc      atomic.Value // jwt.Keyfunc
	lastErr      atomic.Value // lastErrWrap
}

// lastErrWrap avoids storing a bare nil in atomic.Value.
type lastErrWrap struct{ Err error }

const (
	jwksInitialRetryInterval   = time.Second
	jwksInitialRetryMaxBackoff = 10 * time.Second
	jwksInitialRetryTimeout    = 2 * time.Minute
)

// NewJWTValidator fetches the JWKS, retrying with backoff until it loads or
// the retry window closes.
func NewJWTValidator(
	ctx context.Context,
	jwksURL,
	issuer,
	audience string,
	refreshEvery,
	clockSkew time.Duration,
	logger zerolog.Logger,
) (*JWTValidator, error) {
	if jwksURL == "" {
		return nil, errors.New("jwks url is required")
	}
	v := newValidator(issuer, audience, clockSkew, logger)
	v.jwksURL = jwksURL
	v.refreshEvery = refreshEvery
	if err := v.initJWKS(ctx); err != nil {
		return nil, err
	}
	return v, nil
}

// NewStaticJWTValidator validates against a fixed key set.
func NewStaticJWTValidator(kf jwt.Keyfunc, issuer, audience string, clockSkew time.Duration, logger zerolog.Logger) *JWTValidator {
	v := newValidator(issuer, audience, clockSkew, logger)
	v.keyfunc.Store(kf)
	return v
}

func newValidator(issuer, audience string, clockSkew time.Duration, logger zerolog.Logger) *JWTValidator {
	v := &JWTValidator{
		issuer:    issuer,
		audience:  audience,
		logger:    logger,
		clockSkew: clockSkew,
	}
	v.lastErr.Store(lastErrWrap{Err: nil})
	return v
}

func (v *JWTValidator) initJWKS(ctx context.Context) error {
	options := keyfunc.Options{
		Ctx: ctx,
		RefreshErrorHandler: func(err error) {
			v.lastErr.Store(lastErrWrap{Err: err})
			if err != nil {
				v.logger.Error().Err(err).Msg("jwks refresh failed")
			}
		},
		RefreshInterval:   v.refreshEvery,
		RefreshUnknownKID: true,
	}

	backoff := jwksInitialRetryInterval
	deadline := time.Now().Add(jwksInitialRetryTimeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	for attempt := 1; ; attempt++ {
		jwks, err := keyfunc.Get(v.jwksURL, options)
		if err == nil {
			v.lastErr.Store(lastErrWrap{Err: nil})
			v.keyfunc.Store(jwt.Keyfunc(jwks.Keyfunc))
			return nil
		}

		v.logger.Warn().
			Err(err).
			Str("jwks_url", v.jwksURL).
			Int("attempt", attempt).
			Msg("initial jwks fetch failed, retrying")

		select {
		case <-ctx.Done():
			return fmt.Errorf("fetch jwks: %w", ctx.Err())
		case <-time.After(backoff):
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("fetch jwks: %w", err)
		}
		backoff = min(backoff*2, jwksInitialRetryMaxBackoff)
	}
}

// Validate parses and validates the given JWT returning principal claims.
func (v *JWTValidator) Validate(_ context.Context, rawToken string) (*PrincipalClaims, error) {
	kf, _ := v.keyfunc.Load().(jwt.Keyfunc)
	if kf == nil {
		return nil, errors.New("jwks not initialised")
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{"RS256"}), jwt.WithoutClaimsValidation())
	token, err := parser.ParseWithClaims(rawToken, jwt.MapClaims{}, kf)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}

	iss, _ := mapClaims["iss"].(string)
	if v.issuer != "" && iss != v.issuer {
		return nil, fmt.Errorf("issuer mismatch %s", iss)
	}

	audiences, err := claimAudiences(mapClaims["aud"])
	if err != nil {
		return nil, err
	}
	if v.audience != "" && !contains(audiences, v.audience) {
		return nil, errors.New("audience mismatch")
	}

	sub, _ := mapClaims["sub"].(string)
	if sub == "" {
		return nil, errors.New("sub claim missing")
	}

	var scopes []string
	if scopeStr, ok := mapClaims["scope"].(string); ok && scopeStr != "" {
		scopes = strings.Fields(scopeStr)
	}

	expires := jwtNumericTime(mapClaims["exp"])
	issued := jwtNumericTime(mapClaims["iat"])
	notBefore := jwtNumericTime(mapClaims["nbf"])

	now := time.Now().UTC()
	if !expires.IsZero() && now.After(expires.Add(v.clockSkew)) {
		return nil, errors.New("token expired")
	}
	if !notBefore.IsZero() && now.Add(v.clockSkew).Before(notBefore) {
		return nil, errors.New("token not yet valid")
	}

	return &PrincipalClaims{
		Subject:           sub,
		Issuer:            iss,
		Audience:          audiences,
		PreferredUsername: claimString(mapClaims["preferred_username"]),
		Email:             claimString(mapClaims["email"]),
		Name:              claimString(mapClaims["name"]),
		Picture:           claimString(mapClaims["picture"]),
		Scopes:            scopes,
		ExpiresAt:         expires,
		IssuedAt:          issued,
		NotBefore:         notBefore,
		TokenID:           claimString(mapClaims["jti"]),
	}, nil
}

// Ready indicates whether the key set has been loaded and the last refresh succeeded.
func (v *JWTValidator) Ready() bool {
	if kf, _ := v.keyfunc.Load().(jwt.Keyfunc); kf == nil {
		return false
	}
	if wrap, ok := v.lastErr.Load().(lastErrWrap); ok && wrap.Err != nil {
		return false
	}
	return true
}

func claimAudiences(raw any) ([]string, error) {
	switch val := raw.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{val}, nil
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("aud claim unsupported type %T", val)
	}
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

func jwtNumericTime(value any) time.Time {
	switch timeValue := value.(type) {
	case float64:
		return time.Unix(int64(timeValue), 0).UTC()
	case int64:
		return time.Unix(timeValue, 0).UTC()
	case json.Number:
		if unixTime, err := timeValue.Int64(); err == nil {
			return time.Unix(unixTime, 0).UTC()
		}
	}
	return time.Time{}
}

func claimString(value any) string {
	if str, ok := value.(string); ok {
		return str
	}
	return ""
}
