package postgres

import (
	"context"
	"time"

	"etwin/internal/domain/entity"
	domainerrors "etwin/internal/domain/errors"
	"etwin/internal/domain/repository"
	"etwin/internal/infra/persistence/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sessionRepository implements the domain.SessionRepository interface.
type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository is the constructor for sessionRepository.
func NewSessionRepository(db *gorm.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

func (repo *sessionRepository) Create(ctx context.Context, session *entity.Session) error {
	sessionM := &model.SessionModel{
		ID:              session.ID,
		UserID:          session.User.ID,
		UserDisplayName: session.User.DisplayName,
		CTime:           session.CTime,
		ATime:           session.ATime,
	}
	if err := repo.db.WithContext(ctx).Create(sessionM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return repository.ErrUserNotFound
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create session")
	}

	return nil
}

// GetAndTouch advances atime in a single statement; GREATEST keeps it monotonic.
func (repo *sessionRepository) GetAndTouch(ctx context.Context, id uuid.UUID, now time.Time) (*entity.Session, error) {
	var sessionM model.SessionModel
	result := repo.db.WithContext(ctx).
		Model(&sessionM).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Update("atime", gorm.Expr("GREATEST(atime, ?)", now))
	if result.Error != nil {
		return nil, domainerrors.NewDatabaseExecuteError(result.Error, "failed to touch session")
	}
	if result.RowsAffected == 0 {
		return nil, repository.ErrSessionNotFound
	}

	return &entity.Session{
		ID:    sessionM.ID,
		User:  entity.ShortUser{ID: sessionM.UserID, DisplayName: sessionM.UserDisplayName},
		CTime: sessionM.CTime,
		ATime: sessionM.ATime,
	}, nil
}

func (repo *sessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := repo.db.WithContext(ctx).Where("id = ?", id).Delete(&model.SessionModel{}).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to delete session")
	}

	return nil
}
