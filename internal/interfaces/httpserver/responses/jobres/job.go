package jobres

import (
	"encoding/json"

	"promptforge/internal/domain/job"
)

type JobError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type JobResponse struct {
	ID         string          `json:"id"`
	Object     string          `json:"object"`
	Status     string          `json:"status"`
	Mode       string          `json:"mode"`
	Result     json.RawMessage `json:"result,omitempty" swaggertype:"object"`
	Error      *JobError       `json:"error,omitempty"`
	Attempts   int             `json:"attempts"`
	CreatedAt  int64           `json:"created_at"`
	StartedAt  *int64          `json:"started_at,omitempty"`
	FinishedAt *int64          `json:"finished_at,omitempty"`
}

func NewJobResponse(j *job.Job) JobResponse {
	mode := "stateless"
	if j.UseChats {
		mode = "stateful"
	}
	resp := JobResponse{
		ID:        j.PublicID,
		Object:    "generation.job",
		Status:    string(j.Status),
		Mode:      mode,
		Result:    j.Result,
		Attempts:  j.Attempts,
		CreatedAt: j.CreatedAt.Unix(),
	}
	if j.StartedAt != nil {
		started := j.StartedAt.Unix()
		resp.StartedAt = &started
	}
	if j.FinishedAt != nil {
		finished := j.FinishedAt.Unix()
		resp.FinishedAt = &finished
	}
	if j.Status == job.StatusFailed {
		resp.Error = &JobError{Kind: deref(j.ErrorKind), Message: deref(j.ErrorMessage)}
	}
	return resp
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
