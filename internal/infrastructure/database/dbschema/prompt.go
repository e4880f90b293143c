package dbschema

import (
	"encoding/json"

	"gorm.io/datatypes"

	"promptforge/internal/domain/prompt"
	"promptforge/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(Prompt{})
}

// Prompt stores json_schema as json, not jsonb, so the declared property
// order is returned exactly as written.
type Prompt struct {
	BaseModel
	PublicID    string         `gorm:"type:varchar(64);uniqueIndex;not null"`
	UserID      uint           `gorm:"not null;index:idx_prompts_user_created"`
	User        User           `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Name        string         `gorm:"type:varchar(255);not null"`
	Description string         `gorm:"type:text;not null"`
	JSONSchema  datatypes.JSON `gorm:"column:json_schema;type:json"`
	CountUsage  int64          `gorm:"not null;default:0"`
}

func NewSchemaPrompt(p *prompt.Prompt) *Prompt {
	var schema datatypes.JSON
	if p.HasSchema() {
		schema = datatypes.JSON(p.JSONSchema)
	}
	return &Prompt{
		BaseModel:   BaseModel{ID: p.ID, CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt},
		PublicID:    p.PublicID,
		UserID:      p.UserID,
		Name:        p.Name,
		Description: p.Description,
		JSONSchema:  schema,
		CountUsage:  p.CountUsage,
	}
}

func (p *Prompt) EtoD() *prompt.Prompt {
	var schema json.RawMessage
	if len(p.JSONSchema) > 0 {
		schema = json.RawMessage(p.JSONSchema)
	}
	return &prompt.Prompt{
		ID:          p.ID,
		PublicID:    p.PublicID,
		UserID:      p.UserID,
		Name:        p.Name,
		Description: p.Description,
		JSONSchema:  schema,
		CountUsage:  p.CountUsage,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
