package users

import (
	"github.com/gin-gonic/gin"

	"promptforge/internal/interfaces/httpserver/handlers/authhandler"
)

type UsersRoute struct {
	auth *authhandler.AuthHandler
}

func NewUsersRoute(auth *authhandler.AuthHandler) *UsersRoute {
	return &UsersRoute{auth: auth}
}

func (r *UsersRoute) RegisterRouter(router gin.IRouter) {
	router.GET("/me", r.auth.GetMe)
}
