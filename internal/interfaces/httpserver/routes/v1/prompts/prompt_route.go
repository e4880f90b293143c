package prompts

import (
	"github.com/gin-gonic/gin"

	"promptforge/internal/interfaces/httpserver/handlers/chathandler"
	"promptforge/internal/interfaces/httpserver/handlers/generationhandler"
	"promptforge/internal/interfaces/httpserver/handlers/jobhandler"
	"promptforge/internal/interfaces/httpserver/handlers/prompthandler"
)

type PromptRoute struct {
	prompts    *prompthandler.PromptHandler
	chats      *chathandler.ChatHandler
	generation *generationhandler.GenerationHandler
	jobs       *jobhandler.JobHandler
}

func NewPromptRoute(
	prompts *prompthandler.PromptHandler,
	chats *chathandler.ChatHandler,
	generation *generationhandler.GenerationHandler,
	jobs *jobhandler.JobHandler,
) *PromptRoute {
	return &PromptRoute{
		prompts:    prompts,
		chats:      chats,
		generation: generation,
		jobs:       jobs,
	}
}

func (r *PromptRoute) RegisterRouter(router gin.IRouter) {
	promptRouter := router.Group("/prompts")
	promptRouter.GET("", r.prompts.ListPrompts)
	promptRouter.POST("", r.prompts.CreatePrompt)
	promptRouter.PATCH("/:prompt_id", r.prompts.UpdatePrompt)
	promptRouter.DELETE("/:prompt_id", r.prompts.DeletePrompt)

	owned := promptRouter.Group("/:prompt_id", r.prompts.PromptMiddleware())
	owned.GET("", r.prompts.GetPrompt)
	owned.GET("/schema", r.prompts.GetPromptSchema)
	owned.GET("/chats", r.chats.ListChats)
	owned.GET("/files", r.chats.ListFiles)
	owned.POST("/generate", r.generation.GenerateStateful)
	owned.POST("/jobs", r.jobs.EnqueueJob)
}
