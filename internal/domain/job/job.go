package job

import (
	"context"
	"encoding/json"
	"time"
)

type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

func (s Status) Finished() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// Job is a queued generation. FileIDs are public ids of stored prompt files.
type Job struct {
	ID           uint
	PublicID     string
	PromptID     uint
	UserID       uint
	Content      string
	UseChats     bool
	FileIDs      []string
	Status       Status
	Result       json.RawMessage
	RawText      *string
	ErrorKind    *string
	ErrorMessage *string
	Attempts     int
	StartedAt    *time.Time
	FinishedAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Repository interface {
	Create(ctx context.Context, job *Job) error
	GetByPublicID(ctx context.Context, publicID string) (*Job, error)
	GetByPublicIDAndUserID(ctx context.Context, publicID string, userID uint) (*Job, error)
	// MarkRunning moves a queued job to running and bumps attempts. It
	// reports false when another worker claimed the job first.
	MarkRunning(ctx context.Context, id uint, at time.Time) (bool, error)
	Update(ctx context.Context, job *Job) error
	ListIDsByStatus(ctx context.Context, status Status, limit int) ([]string, error)
	// ReleaseStale puts running jobs started before the cutoff back to queued.
	ReleaseStale(ctx context.Context, startedBefore time.Time) (int64, error)
	DeleteFinishedBefore(ctx context.Context, before time.Time) (int64, error)
}
