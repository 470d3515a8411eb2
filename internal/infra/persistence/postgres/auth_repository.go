package postgres

import (
	"context"
	"time"

	"etwin/internal/domain/entity"
	domainerrors "etwin/internal/domain/errors"
	"etwin/internal/domain/repository"
	"etwin/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// authRepository implements the domain.AuthRepository interface.
type authRepository struct {
	db *gorm.DB
}

// NewAuthRepository is the constructor for authRepository.
func NewAuthRepository(db *gorm.DB) repository.AuthRepository {
	return &authRepository{db: db}
}

// SetPasswordHash upserts the password of the user.
func (repo *authRepository) SetPasswordHash(ctx context.Context, userID uuid.UUID, hash string, now time.Time) error {
	passwordM := &model.PasswordModel{UserID: userID, PasswordHash: hash, UpdatedAt: now}

	err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"password_hash", "updated_at"}),
		}).
		Create(passwordM).Error
	if err != nil {
		if isForeignKeyConstraintViolation(err) {
			return repository.ErrUserNotFound
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to set password")
	}

	return nil
}

func (repo *authRepository) GetPasswordHash(ctx context.Context, userID uuid.UUID) (string, error) {
	var passwordM model.PasswordModel
	if err := repo.db.WithContext(ctx).Where("user_id = ?", userID).First(&passwordM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", repository.ErrNoPassword
		}

		return "", errors.Wrap(err, "failed to get password hash")
	}

	return passwordM.PasswordHash, nil
}

func (repo *authRepository) CreateEmailVerification(ctx context.Context, verification *entity.EmailVerification) error {
	verificationM := &model.EmailVerificationModel{
		UserID:         verification.UserID,
		Email:          verification.Email,
		CTime:          verification.CTime,
		ValidationTime: verification.ValidationTime,
	}
	if err := repo.db.WithContext(ctx).Create(verificationM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return repository.ErrUserNotFound
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create email verification")
	}

	return nil
}
