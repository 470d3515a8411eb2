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

// remoteTokenRepository implements the domain.RemoteTokenRepository interface.
type remoteTokenRepository struct {
	db *gorm.DB
}

// NewRemoteTokenRepository is the constructor for remoteTokenRepository.
func NewRemoteTokenRepository(db *gorm.DB) repository.RemoteTokenRepository {
	return &remoteTokenRepository{db: db}
}

// TouchSession records the key as the single session of its account. A key
// last observed for another account is taken away from it.
func (repo *remoteTokenRepository) TouchSession(ctx context.Context, session *entity.RemoteSession, now time.Time) error {
	account := session.User.Key

	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.
			Where("service = ? AND server = ? AND session_key = ? AND remote_id <> ?", account.Service, account.Server, session.Key, account.RemoteID).
			Delete(&model.RemoteSessionModel{}).Error
		if err != nil {
			return err
		}

		sessionM := &model.RemoteSessionModel{
			Service:    string(account.Service),
			Server:     account.Server,
			RemoteID:   account.RemoteID,
			SessionKey: session.Key,
			CTime:      session.CTime,
			ATime:      now,
		}

		// The creation time survives as long as the key does not change.
		return tx.
			Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "service"}, {Name: "server"}, {Name: "remote_id"}},
				DoUpdates: clause.Assignments(map[string]any{
					"ctime":       gorm.Expr("CASE WHEN remote_sessions.session_key = excluded.session_key THEN remote_sessions.ctime ELSE excluded.ctime END"),
					"session_key": gorm.Expr("excluded.session_key"),
					"atime":       gorm.Expr("excluded.atime"),
				}),
			}).
			Create(sessionM).Error
	})
	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to touch remote session")
	}

	return nil
}

func (repo *remoteTokenRepository) RevokeSession(ctx context.Context, service entity.RemoteService, server, key string) error {
	err := repo.db.WithContext(ctx).
		Where("service = ? AND server = ? AND session_key = ?", service, server, key).
		Delete(&model.RemoteSessionModel{}).Error
	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to revoke remote session")
	}

	return nil
}

func (repo *remoteTokenRepository) FindSession(ctx context.Context, key entity.RemoteAccountKey) (*entity.RemoteSession, error) {
	var sessionM model.RemoteSessionModel
	err := repo.db.WithContext(ctx).
		Where("service = ? AND server = ? AND remote_id = ?", key.Service, key.Server, key.RemoteID).
		First(&sessionM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrRemoteTokenNotFound
		}

		return nil, errors.Wrap(err, "failed to find remote session")
	}

	// The username is not part of the token table.
	return &entity.RemoteSession{
		Key:   sessionM.SessionKey,
		User:  entity.RemoteUser{Key: key},
		CTime: sessionM.CTime,
		ATime: sessionM.ATime,
	}, nil
}

func (repo *remoteTokenRepository) TouchTwinoidOauth(ctx context.Context, token *entity.TwinoidOauthToken, now time.Time) error {
	tokenM := &model.TwinoidOauthModel{
		TwinoidUserID:  token.TwinoidUserID,
		AccessToken:    token.AccessToken,
		RefreshToken:   token.RefreshToken,
		ExpirationTime: token.ExpirationTime,
		UpdatedAt:      now,
	}

	err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "twinoid_user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"access_token", "refresh_token", "expiration_time", "updated_at"}),
		}).
		Create(tokenM).Error
	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to touch twinoid token")
	}

	return nil
}

func (repo *remoteTokenRepository) FindTwinoidOauth(ctx context.Context, twinoidUserID string) (*entity.TwinoidOauthToken, error) {
	var tokenM model.TwinoidOauthModel
	if err := repo.db.WithContext(ctx).Where("twinoid_user_id = ?", twinoidUserID).First(&tokenM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrRemoteTokenNotFound
		}

		return nil, errors.Wrap(err, "failed to find twinoid token")
	}

	return &entity.TwinoidOauthToken{
		AccessToken:    tokenM.AccessToken,
		RefreshToken:   tokenM.RefreshToken,
		ExpirationTime: tokenM.ExpirationTime,
		TwinoidUserID:  tokenM.TwinoidUserID,
	}, nil
}
