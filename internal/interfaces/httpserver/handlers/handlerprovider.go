package handlers

import (
	"github.com/google/wire"

	"promptforge/internal/interfaces/httpserver/handlers/authhandler"
	"promptforge/internal/interfaces/httpserver/handlers/chathandler"
	"promptforge/internal/interfaces/httpserver/handlers/generationhandler"
	"promptforge/internal/interfaces/httpserver/handlers/jobhandler"
	"promptforge/internal/interfaces/httpserver/handlers/prompthandler"
	"promptforge/internal/interfaces/httpserver/handlers/usagehandler"
)

var HandlerProvider = wire.NewSet(
	authhandler.NewAuthHandler,
	prompthandler.NewPromptHandler,
	chathandler.NewChatHandler,
	generationhandler.NewGenerationHandler,
	jobhandler.NewJobHandler,
	usagehandler.NewUsageHandler,
)
