package routes

import (
	"github.com/google/wire"

	"promptforge/internal/interfaces/httpserver/handlers"
	v1 "promptforge/internal/interfaces/httpserver/routes/v1"
	"promptforge/internal/interfaces/httpserver/routes/v1/chats"
	"promptforge/internal/interfaces/httpserver/routes/v1/generation"
	"promptforge/internal/interfaces/httpserver/routes/v1/prompts"
	"promptforge/internal/interfaces/httpserver/routes/v1/usage"
	"promptforge/internal/interfaces/httpserver/routes/v1/users"
)

var RouteProvider = wire.NewSet(
	handlers.HandlerProvider,

	v1.NewV1Route,
	prompts.NewPromptRoute,
	chats.NewChatRoute,
	generation.NewGenerationRoute,
	usage.NewUsageRoute,
	users.NewUsersRoute,
)
