package repository

import (
	"github.com/google/wire"

	"promptforge/internal/infrastructure/database/repository/chatrepo"
	"promptforge/internal/infrastructure/database/repository/filerepo"
	"promptforge/internal/infrastructure/database/repository/jobrepo"
	"promptforge/internal/infrastructure/database/repository/promptrepo"
	"promptforge/internal/infrastructure/database/repository/tokenusagerepo"
	"promptforge/internal/infrastructure/database/repository/userrepo"
)

var RepositoryProvider = wire.NewSet(
	promptrepo.NewPromptGormRepository,
	chatrepo.NewChatGormRepository,
	filerepo.NewFileGormRepository,
	jobrepo.NewJobGormRepository,
	tokenusagerepo.NewTokenUsageRepository,
	userrepo.NewUserGormRepository,
)
