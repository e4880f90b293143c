package dbschema

import (
	"promptforge/internal/domain/user"
	"promptforge/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(User{})
}

// User is a caller identity known to the service.
type User struct {
	BaseModel
	AuthProvider string  `gorm:"type:varchar(50);not null;default:'gateway'"`
	Issuer       string  `gorm:"type:varchar(255);not null;uniqueIndex:ux_users_issuer_subject"`
	Subject      string  `gorm:"type:varchar(255);not null;uniqueIndex:ux_users_issuer_subject"`
	Username     *string `gorm:"type:varchar(150)"`
	Email        *string `gorm:"type:varchar(320)"`
	Name         *string `gorm:"type:varchar(255)"`
	Picture      *string `gorm:"type:varchar(512)"`
}

func NewSchemaUser(u *user.User) *User {
	if u == nil {
		return nil
	}
	return &User{
		BaseModel:    BaseModel{ID: u.ID, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt},
		AuthProvider: u.AuthProvider,
		Issuer:       u.Issuer,
		Subject:      u.Subject,
		Username:     u.Username,
		Email:        u.Email,
		Name:         u.Name,
		Picture:      u.Picture,
	}
}

func (u *User) EtoD() *user.User {
	if u == nil {
		return nil
	}
	return &user.User{
		ID:           u.ID,
		AuthProvider: u.AuthProvider,
		Issuer:       u.Issuer,
		Subject:      u.Subject,
		Username:     u.Username,
		Email:        u.Email,
		Name:         u.Name,
		Picture:      u.Picture,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
