package authhandler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"promptforge/internal/domain/user"
	middleware "promptforge/internal/interfaces/httpserver/middlewares"
	"promptforge/internal/interfaces/httpserver/responses"
	"promptforge/internal/utils/platformerrors"
	"promptforge/internal/utils/ptr"
)

const appUserContextKey = "app_user"

// AuthHandler resolves authenticated principals into local users.
type AuthHandler struct {
	userService *user.Service
	logger      zerolog.Logger
}

func NewAuthHandler(userService *user.Service, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{userService: userService, logger: logger}
}

type MeResponse struct {
	ID         uint    `json:"id"`
	Object     string  `json:"object"`
	Subject    string  `json:"subject"`
	Issuer     string  `json:"issuer"`
	AuthMethod string  `json:"auth_method"`
	Username   *string `json:"username,omitempty"`
	Email      *string `json:"email,omitempty"`
	Name       *string `json:"name,omitempty"`
}

// GetUserFromContext returns the ensured application user from the request context.
func GetUserFromContext(c *gin.Context) (*user.User, bool) {
	val, ok := c.Get(appUserContextKey)
	if !ok || val == nil {
		return nil, false
	}
	usr, ok := val.(*user.User)
	return usr, ok && usr != nil
}

// SetUserInContext stores usr as the caller.
func SetUserInContext(c *gin.Context, usr *user.User) {
	c.Set(appUserContextKey, usr)
}

// EnsureAppUser upserts the caller into users and stores the record on the
// context. It must run after AuthMiddleware.
func (h *AuthHandler) EnsureAppUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetUserFromContext(c); ok {
			c.Next()
			return
		}

		principal, ok := middleware.PrincipalFromContext(c)
		if !ok {
			responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "authentication required", "5e1d3524-929e-4c7a-9bb7-0a8b74fa6f10")
			return
		}

		issuer := principal.Issuer
		if issuer == "" {
			issuer = principal.Credentials["issuer"]
		}
		identity := user.Identity{
			Provider: string(principal.AuthMethod),
			Issuer:   issuer,
			Subject:  principal.Subject,
		}
		if identity.Issuer == "" || identity.Subject == "" {
			responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "invalid user identity", "a6c6d3d0-5ca3-4235-9d54-8c4af3b04d62")
			return
		}
		if principal.Username != "" {
			identity.Username = ptr.ToString(principal.Username)
		}
		if principal.Email != "" {
			identity.Email = ptr.ToString(principal.Email)
		}
		if principal.Name != "" {
			identity.Name = ptr.ToString(principal.Name)
		}
		if principal.Picture != "" {
			identity.Picture = ptr.ToString(principal.Picture)
		}

		usr, err := h.userService.EnsureUser(c.Request.Context(), identity)
		if err != nil {
			h.logger.Error().Err(err).Msg("failed to ensure user from principal")
			responses.HandleNewError(c, platformerrors.ErrorTypeInternal, "unable to resolve user identity", "7f6b30e8-6dc0-4af9-b42f-6fd717fe5a0c")
			return
		}

		SetUserInContext(c, usr)
		c.Next()
	}
}

// GetMe godoc
// @Summary Get the current user
// @Description Returns the local user record resolved from the caller's identity.
// @Tags Authentication API
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MeResponse
// @Failure 401 {object} responses.ErrorResponse
// @Router /v1/me [get]
func (h *AuthHandler) GetMe(c *gin.Context) {
	usr, ok := GetUserFromContext(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "authentication required", "3b8e1f5a-7c2d-4e96-a1f0-d4c8b2e6a915")
		return
	}
	c.JSON(http.StatusOK, MeResponse{
		ID:         usr.ID,
		Object:     "user",
		Subject:    usr.Subject,
		Issuer:     usr.Issuer,
		AuthMethod: usr.AuthProvider,
		Username:   usr.Username,
		Email:      usr.Email,
		Name:       usr.Name,
	})
}
