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
)

// userRepository implements the domain.UserRepository interface using GORM.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository is the constructor for userRepository.
// It returns the repository as a domain.UserRepository interface, adhering to dependency inversion.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// Create inserts the user and the first entry of its display name history.
// The first user ever created is flagged as administrator.
// The unique constraints of the users table arbitrate concurrent claims of a
// username or an email.
func (repo *userRepository) Create(ctx context.Context, user *entity.User) error {
	userM := fromUserDomain(user)

	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		first, err := isFirstUser(tx)
		if err != nil {
			return err
		}
		userM.IsAdministrator = first

		if err := tx.Create(userM).Error; err != nil {
			return err
		}

		history := &model.UserDisplayNameModel{UserID: user.ID, DisplayName: user.DisplayName, Since: user.CreatedAt}

		return tx.Create(history).Error
	})
	if err == nil {
		user.IsAdministrator = userM.IsAdministrator

		return nil
	}

	if constraint, ok := uniqueViolation(err); ok {
		return repo.uniquenessError(ctx, user, constraint)
	}
	if isNotNullConstraintViolation(err) || isCheckConstraintViolation(err) {
		return domainerrors.ErrInvalidInput.WrapMessage("missing required user information")
	}

	return domainerrors.NewDatabaseExecuteError(err, "failed to create user")
}

// isFirstUser reports whether the users table is empty. The check is repeated
// under an advisory lock so concurrent first registrations elect one administrator.
func isFirstUser(tx *gorm.DB) (bool, error) {
	var exists bool
	if err := tx.Raw("SELECT EXISTS (SELECT 1 FROM users)").Scan(&exists).Error; err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", "users:first").Error; err != nil {
		return false, err
	}
	if err := tx.Raw("SELECT EXISTS (SELECT 1 FROM users)").Scan(&exists).Error; err != nil {
		return false, err
	}

	return !exists, nil
}

// uniquenessError names the value that was already taken.
func (repo *userRepository) uniquenessError(ctx context.Context, user *entity.User, constraint string) error {
	switch constraint {
	case constraintUsersUsername:
		return domainerrors.ErrUsernameAlreadyInUse.WrapMessage(*user.Username)
	case constraintUsersEmail:
		return domainerrors.ErrEmailAlreadyInUse.WrapMessage(*user.Email)
	}

	// The constraint name was lost: look the values up. The failed insert ran
	// in a savepoint so the surrounding transaction is still usable.
	if user.Username != nil {
		if _, err := repo.FindByUsername(ctx, *user.Username); err == nil {
			return domainerrors.ErrUsernameAlreadyInUse.WrapMessage(*user.Username)
		}
	}
	if user.Email != nil {
		if _, err := repo.FindByEmail(ctx, *user.Email); err == nil {
			return domainerrors.ErrEmailAlreadyInUse.WrapMessage(*user.Email)
		}
	}

	return errors.Errorf("user %s already exists", user.ID)
}

// FindByID retrieves a single user by their unique ID.
func (repo *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return repo.findOne(ctx, "id = ?", id)
}

// FindByUsername retrieves a single user by their username.
func (repo *userRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return repo.findOne(ctx, "username = ?", username)
}

// FindByEmail retrieves a single user by their email address.
func (repo *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return repo.findOne(ctx, "email = ?", email)
}

func (repo *userRepository) findOne(ctx context.Context, query string, arg any) (*entity.User, error) {
	var userM model.UserModel
	if err := repo.db.WithContext(ctx).Where(query, arg).First(&userM).Error; err != nil {
		// If the error is 'record not found', return a domain-specific error.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user")
	}

	// Map the persistence model back to a pure domain entity before returning.
	return toUserDomain(&userM), nil
}

// UpdateDisplayName changes the current display name and appends it to the history.
func (repo *userRepository) UpdateDisplayName(ctx context.Context, id uuid.UUID, displayName string, now time.Time) error {
	return repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.UserModel{}).
			Where("id = ?", id).
			Updates(map[string]any{"display_name": displayName, "updated_at": now})
		if result.Error != nil {
			return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update display name")
		}
		if result.RowsAffected == 0 {
			return repository.ErrUserNotFound
		}

		history := &model.UserDisplayNameModel{UserID: id, DisplayName: displayName, Since: now}
		if err := tx.Create(history).Error; err != nil {
			return domainerrors.NewDatabaseExecuteError(err, "failed to append display name history")
		}

		return nil
	})
}

// HardDelete removes the user. Credentials and sessions cascade.
func (repo *userRepository) HardDelete(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).Where("id = ?", id).Delete(&model.UserModel{})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete user")
	}
	if result.RowsAffected == 0 {
		return repository.ErrUserNotFound
	}

	return nil
}

// --- Mapper Functions ---
// These helpers convert between domain entities and persistence models.

// toUserDomain converts a GORM UserModel to a domain User entity.
func toUserDomain(data *model.UserModel) *entity.User {
	if data == nil {
		return nil
	}

	return &entity.User{
		ID:              data.ID,
		DisplayName:     data.DisplayName,
		Username:        data.Username,
		Email:           data.Email,
		IsAdministrator: data.IsAdministrator,
		CreatedAt:       data.CreatedAt,
		UpdatedAt:       data.UpdatedAt,
	}
}

// fromUserDomain converts a domain User entity to a GORM UserModel for persistence.
func fromUserDomain(data *entity.User) *model.UserModel {
	if data == nil {
		return nil
	}

	return &model.UserModel{
		ID:              data.ID,
		DisplayName:     data.DisplayName,
		Username:        data.Username,
		Email:           data.Email,
		IsAdministrator: data.IsAdministrator,
		CreatedAt:       data.CreatedAt,
		UpdatedAt:       data.UpdatedAt,
	}
}
