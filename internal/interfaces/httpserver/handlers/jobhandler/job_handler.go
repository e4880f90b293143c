package jobhandler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"promptforge/internal/application/generator"
	"promptforge/internal/domain/prompt"
	"promptforge/internal/interfaces/httpserver/handlers/authhandler"
	"promptforge/internal/interfaces/httpserver/handlers/prompthandler"
	genreq "promptforge/internal/interfaces/httpserver/requests/generation"
	"promptforge/internal/interfaces/httpserver/responses"
	"promptforge/internal/interfaces/httpserver/responses/jobres"
	"promptforge/internal/utils/platformerrors"
)

const JobIDParam = "job_id"

// JobHandler queues generations and reports their status.
type JobHandler struct {
	jobService *generator.JobService
}

func NewJobHandler(jobService *generator.JobService) *JobHandler {
	return &JobHandler{jobService: jobService}
}

// EnqueueJob godoc
// @Summary Queue a generation
// @Description Stores a queued job and returns immediately. use_chats selects the stateful mode; file_ids reference files stored for the prompt.
// @Tags Generation API
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param prompt_id path string true "Prompt ID"
// @Param request body genreq.EnqueueRequest true "Job"
// @Success 202 {object} jobres.JobResponse
// @Failure 400 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /v1/prompts/{prompt_id}/jobs [post]
func (h *JobHandler) EnqueueJob(c *gin.Context) {
	usr, ok := authhandler.GetUserFromContext(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "authentication required", "")
		return
	}
	p, ok := prompthandler.GetPromptFromContext(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeNotFound, prompt.ErrPromptNotFound, "")
		return
	}

	var req genreq.EnqueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, err.Error(), "4d8f2b6a-0c3e-4a71-b9d5-e7a1c3f5b208")
		return
	}

	j, err := h.jobService.Enqueue(c.Request.Context(), p, usr.ID, generator.EnqueueInput{
		Content:  req.Content,
		UseChats: req.UseChats,
		FileIDs:  req.FileIDs,
	})
	if err != nil {
		responses.HandleError(c, err, "failed to queue generation")
		return
	}
	c.Header("Location", "/v1/jobs/"+j.PublicID)
	c.JSON(http.StatusAccepted, jobres.NewJobResponse(j))
}

// GetJob godoc
// @Summary Get a generation job
// @Tags Generation API
// @Produce json
// @Security BearerAuth
// @Param job_id path string true "Job ID"
// @Success 200 {object} jobres.JobResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /v1/jobs/{job_id} [get]
func (h *JobHandler) GetJob(c *gin.Context) {
	usr, ok := authhandler.GetUserFromContext(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "authentication required", "")
		return
	}
	j, err := h.jobService.Get(c.Request.Context(), c.Param(JobIDParam), usr.ID)
	if err != nil {
		responses.HandleError(c, err, "failed to load job")
		return
	}
	c.JSON(http.StatusOK, jobres.NewJobResponse(j))
}
