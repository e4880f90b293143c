package userrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"promptforge/internal/domain/user"
	"promptforge/internal/infrastructure/database/dbschema"
	"promptforge/internal/infrastructure/database/transaction"
	"promptforge/internal/utils/platformerrors"
)

type UserGormRepository struct {
	db *transaction.Database
}

var _ user.Repository = (*UserGormRepository)(nil)

func NewUserGormRepository(db *transaction.Database) user.Repository {
	return &UserGormRepository{db: db}
}

// FindByIssuerAndSubject returns nil without error when no user matches.
func (repo *UserGormRepository) FindByIssuerAndSubject(ctx context.Context, issuer, subject string) (*user.User, error) {
	var entity dbschema.User
	err := repo.db.GetTx(ctx).
		Where("issuer = ? AND subject = ?", issuer, subject).
		First(&entity).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to find user by issuer and subject", err, "b2a7c2d5-53b2-44a3-8f8f-927f94e9a4db")
	}
	return entity.EtoD(), nil
}

func (repo *UserGormRepository) FindByID(ctx context.Context, id uint) (*user.User, error) {
	var entity dbschema.User
	err := repo.db.GetTx(ctx).Where("id = ?", id).First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to find user by ID", err, "a9d3f8e4-21c7-4f5b-9a2e-6d8f9e1a2b3c")
	}
	return entity.EtoD(), nil
}

// Upsert inserts the identity or refreshes its profile fields, then reloads
// the row to pick up the id and timestamps.
func (repo *UserGormRepository) Upsert(ctx context.Context, usr *user.User) (*user.User, error) {
	schemaUser := dbschema.NewSchemaUser(usr)
	tx := repo.db.GetTx(ctx)

	assignments := map[string]any{
		"auth_provider": schemaUser.AuthProvider,
		"username":      schemaUser.Username,
		"email":         schemaUser.Email,
		"name":          schemaUser.Name,
		"picture":       schemaUser.Picture,
		"updated_at":    gorm.Expr("NOW()"),
	}
	if err := tx.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "issuer"}, {Name: "subject"}},
			DoUpdates: clause.Assignments(assignments),
		}).
		Create(schemaUser).Error; err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to upsert user", err, "3b31d2bd-3260-4233-b0c8-09909fa0f154")
	}

	var persisted dbschema.User
	if err := tx.
		Where("issuer = ? AND subject = ?", schemaUser.Issuer, schemaUser.Subject).
		First(&persisted).Error; err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to reload upserted user", err, "f71f98cb-3154-4ad2-9076-7e58628a4098")
	}
	return persisted.EtoD(), nil
}
