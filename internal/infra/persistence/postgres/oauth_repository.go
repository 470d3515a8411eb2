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

// oauthRepository implements the domain.OauthRepository interface.
type oauthRepository struct {
	db *gorm.DB
}

// NewOauthRepository is the constructor for oauthRepository.
func NewOauthRepository(db *gorm.DB) repository.OauthRepository {
	return &oauthRepository{db: db}
}

func (repo *oauthRepository) CreateClient(ctx context.Context, client *entity.OauthClient) error {
	if err := repo.db.WithContext(ctx).Create(fromOauthClientDomain(client)).Error; err != nil {
		if constraint, ok := uniqueViolation(err); ok && client.Key != nil {
			if constraint == constraintOauthClientsKey || constraint == "" {
				return repository.ErrOauthClientKeyTaken
			}
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create oauth client")
	}

	return nil
}

func (repo *oauthRepository) FindClientByID(ctx context.Context, id uuid.UUID) (*entity.OauthClient, error) {
	return repo.findClient(ctx, "id = ?", id)
}

func (repo *oauthRepository) FindClientByKey(ctx context.Context, key string) (*entity.OauthClient, error) {
	return repo.findClient(ctx, "key = ?", key)
}

func (repo *oauthRepository) findClient(ctx context.Context, query string, arg any) (*entity.OauthClient, error) {
	var clientM model.OauthClientModel
	if err := repo.db.WithContext(ctx).Where(query, arg).First(&clientM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrOauthClientNotFound
		}

		return nil, errors.Wrap(err, "failed to find oauth client")
	}

	return toOauthClientDomain(&clientM), nil
}

func (repo *oauthRepository) CreateAccessToken(ctx context.Context, token *entity.OauthAccessToken) error {
	tokenM := &model.OauthAccessTokenModel{
		Key:            token.Key,
		ClientID:       token.Client.ID,
		UserID:         token.User.ID,
		CTime:          token.CTime,
		ATime:          token.ATime,
		ExpirationTime: token.ExpirationTime,
	}
	if err := repo.db.WithContext(ctx).Create(tokenM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrInvalidInput.WrapMessage("unknown client or user")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create access token")
	}

	return nil
}

// GetAndTouchAccessToken advances atime and loads the client and user
// references in one round trip each.
func (repo *oauthRepository) GetAndTouchAccessToken(ctx context.Context, key string, now time.Time) (*entity.OauthAccessToken, error) {
	var tokenM model.OauthAccessTokenModel
	result := repo.db.WithContext(ctx).
		Model(&tokenM).
		Clauses(clause.Returning{}).
		Where("key = ?", key).
		Update("atime", gorm.Expr("GREATEST(atime, ?)", now))
	if result.Error != nil {
		return nil, domainerrors.NewDatabaseExecuteError(result.Error, "failed to touch access token")
	}
	if result.RowsAffected == 0 {
		return nil, repository.ErrAccessTokenNotFound
	}

	client, err := repo.FindClientByID(ctx, tokenM.ClientID)
	if err != nil {
		return nil, err
	}

	var userM model.UserModel
	if err := repo.db.WithContext(ctx).Where("id = ?", tokenM.UserID).First(&userM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrAccessTokenNotFound
		}

		return nil, errors.Wrap(err, "failed to load access token user")
	}

	return &entity.OauthAccessToken{
		Key:            tokenM.Key,
		Client:         client.Short(),
		User:           entity.ShortUser{ID: userM.ID, DisplayName: userM.DisplayName},
		CTime:          tokenM.CTime,
		ATime:          tokenM.ATime,
		ExpirationTime: tokenM.ExpirationTime,
	}, nil
}

// --- Mapper Functions ---

func toOauthClientDomain(data *model.OauthClientModel) *entity.OauthClient {
	return &entity.OauthClient{
		ID:          data.ID,
		Key:         data.Key,
		DisplayName: data.DisplayName,
		AppURI:      data.AppURI,
		CallbackURI: data.CallbackURI,
		SecretHash:  data.SecretHash,
		CreatedAt:   data.CreatedAt,
	}
}

func fromOauthClientDomain(data *entity.OauthClient) *model.OauthClientModel {
	return &model.OauthClientModel{
		ID:          data.ID,
		Key:         data.Key,
		DisplayName: data.DisplayName,
		AppURI:      data.AppURI,
		CallbackURI: data.CallbackURI,
		SecretHash:  data.SecretHash,
		CreatedAt:   data.CreatedAt,
	}
}
