package postgres

import (
	"context"
	"time"

	"etwin/internal/domain/entity"
	domainerrors "etwin/internal/domain/errors"
	"etwin/internal/domain/repository"
	"etwin/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// externalAccountRepository implements the domain.ExternalAccountRepository interface.
type externalAccountRepository struct {
	db *gorm.DB
}

// NewExternalAccountRepository is the constructor for externalAccountRepository.
func NewExternalAccountRepository(db *gorm.DB) repository.ExternalAccountRepository {
	return &externalAccountRepository{db: db}
}

// Touch upserts the last observed username of the remote account.
func (repo *externalAccountRepository) Touch(ctx context.Context, user entity.RemoteUser, now time.Time) error {
	remoteM := &model.RemoteUserModel{
		Service:   string(user.Key.Service),
		Server:    user.Key.Server,
		RemoteID:  user.Key.RemoteID,
		Username:  user.Username,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "service"}, {Name: "server"}, {Name: "remote_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"username", "updated_at"}),
		}).
		Create(remoteM).Error
	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to touch remote user")
	}

	return nil
}

func (repo *externalAccountRepository) Find(ctx context.Context, key entity.RemoteAccountKey) (*entity.RemoteUser, error) {
	var remoteM model.RemoteUserModel
	err := repo.db.WithContext(ctx).
		Where("service = ? AND server = ? AND remote_id = ?", key.Service, key.Server, key.RemoteID).
		First(&remoteM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrRemoteUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find remote user")
	}

	return &entity.RemoteUser{Key: key, Username: remoteM.Username}, nil
}
