package generation

import (
	"github.com/gin-gonic/gin"

	"promptforge/internal/interfaces/httpserver/handlers/generationhandler"
	"promptforge/internal/interfaces/httpserver/handlers/jobhandler"
	"promptforge/internal/interfaces/httpserver/handlers/prompthandler"
)

type GenerationRoute struct {
	prompts    *prompthandler.PromptHandler
	generation *generationhandler.GenerationHandler
	jobs       *jobhandler.JobHandler
}

func NewGenerationRoute(
	prompts *prompthandler.PromptHandler,
	generation *generationhandler.GenerationHandler,
	jobs *jobhandler.JobHandler,
) *GenerationRoute {
	return &GenerationRoute{prompts: prompts, generation: generation, jobs: jobs}
}

func (r *GenerationRoute) RegisterRouter(router gin.IRouter) {
	router.POST("/generate-with-ai/:prompt_id", r.prompts.PromptMiddleware(), r.generation.GenerateStateless)
	router.GET("/jobs/:job_id", r.jobs.GetJob)
}
