package dbschema

import (
	"encoding/json"
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"

	"promptforge/internal/domain/job"
	"promptforge/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(GenerationJob{})
}

// GenerationJob is a queued or finished async generation.
type GenerationJob struct {
	BaseModel
	PublicID     string         `gorm:"type:varchar(64);uniqueIndex;not null"`
	PromptID     uint           `gorm:"not null;index"`
	Prompt       Prompt         `gorm:"foreignKey:PromptID;constraint:OnDelete:CASCADE"`
	UserID       uint           `gorm:"not null;index"`
	Content      string         `gorm:"type:text;not null;default:''"`
	UseChats     bool           `gorm:"not null;default:false"`
	FileIDs      pq.StringArray `gorm:"column:file_ids;type:text[]"`
	Status       string         `gorm:"type:varchar(20);not null;index:idx_generation_jobs_status"`
	Result       datatypes.JSON `gorm:"type:json"`
	RawText      *string        `gorm:"type:text"`
	ErrorKind    *string        `gorm:"type:varchar(64)"`
	ErrorMessage *string        `gorm:"type:text"`
	Attempts     int            `gorm:"not null;default:0"`
	StartedAt    *time.Time
	FinishedAt   *time.Time `gorm:"index"`
}

func (GenerationJob) TableName() string {
	return database.TablePrefix + "generation_jobs"
}

func NewSchemaGenerationJob(j *job.Job) *GenerationJob {
	var result datatypes.JSON
	if len(j.Result) > 0 {
		result = datatypes.JSON(j.Result)
	}
	return &GenerationJob{
		BaseModel:    BaseModel{ID: j.ID, CreatedAt: j.CreatedAt, UpdatedAt: j.UpdatedAt},
		PublicID:     j.PublicID,
		PromptID:     j.PromptID,
		UserID:       j.UserID,
		Content:      j.Content,
		UseChats:     j.UseChats,
		FileIDs:      pq.StringArray(j.FileIDs),
		Status:       string(j.Status),
		Result:       result,
		RawText:      j.RawText,
		ErrorKind:    j.ErrorKind,
		ErrorMessage: j.ErrorMessage,
		Attempts:     j.Attempts,
		StartedAt:    j.StartedAt,
		FinishedAt:   j.FinishedAt,
	}
}

func (g *GenerationJob) EtoD() *job.Job {
	var result json.RawMessage
	if len(g.Result) > 0 {
		result = json.RawMessage(g.Result)
	}
	return &job.Job{
		ID:           g.ID,
		PublicID:     g.PublicID,
		PromptID:     g.PromptID,
		UserID:       g.UserID,
		Content:      g.Content,
		UseChats:     g.UseChats,
		FileIDs:      []string(g.FileIDs),
		Status:       job.Status(g.Status),
		Result:       result,
		RawText:      g.RawText,
		ErrorKind:    g.ErrorKind,
		ErrorMessage: g.ErrorMessage,
		Attempts:     g.Attempts,
		StartedAt:    g.StartedAt,
		FinishedAt:   g.FinishedAt,
		CreatedAt:    g.CreatedAt,
		UpdatedAt:    g.UpdatedAt,
	}
}
