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
	"gorm.io/plugin/dbresolver"
)

// errNoTransaction is returned when a lock is requested outside of a transaction.
var errNoTransaction = errors.New("link locks require a transaction")

// linkRepository implements the domain.LinkRepository interface.
// Locks are transaction scoped advisory locks, so they are only available
// on repositories handed out by the TransactionManager.
type linkRepository struct {
	db   *gorm.DB
	inTx bool
}

// NewLinkRepository creates a read-side LinkRepository. Writers get their
// repository from the TransactionManager.
func NewLinkRepository(db *gorm.DB) repository.LinkRepository {
	return &linkRepository{db: db}
}

// reader pins link reads to the primary: link views are rebuilt right after
// the write that changed them.
func (repo *linkRepository) reader(ctx context.Context) *gorm.DB {
	return repo.db.WithContext(ctx).Clauses(dbresolver.Write)
}

func (repo *linkRepository) advisoryLock(ctx context.Context, name string) error {
	if !repo.inTx {
		return errNoTransaction
	}
	if err := repo.db.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(hashtext(?))", name).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to acquire link lock")
	}

	return nil
}

func (repo *linkRepository) LockRemote(ctx context.Context, key entity.RemoteAccountKey) error {
	return repo.advisoryLock(ctx, "remote:"+key.String())
}

func (repo *linkRepository) LockUserServer(ctx context.Context, userID uuid.UUID, service entity.RemoteService, server string) error {
	return repo.advisoryLock(ctx, "user:"+userID.String()+"/"+string(service)+"/"+server)
}

func (repo *linkRepository) FindCurrentByRemote(ctx context.Context, key entity.RemoteAccountKey) (*entity.LinkRecord, error) {
	var linkM model.LinkModel
	err := repo.reader(ctx).
		Where("service = ? AND server = ? AND remote_id = ? AND unlinked_at IS NULL", key.Service, key.Server, key.RemoteID).
		First(&linkM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrLinkNotFound
		}

		return nil, errors.Wrap(err, "failed to find link by remote")
	}

	return toLinkDomain(&linkM), nil
}

func (repo *linkRepository) FindCurrentByUserServer(ctx context.Context, userID uuid.UUID, service entity.RemoteService, server string) (*entity.LinkRecord, error) {
	var linkM model.LinkModel
	err := repo.reader(ctx).
		Where("user_id = ? AND service = ? AND server = ? AND unlinked_at IS NULL", userID, service, server).
		First(&linkM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrLinkNotFound
		}

		return nil, errors.Wrap(err, "failed to find link by user")
	}

	return toLinkDomain(&linkM), nil
}

func (repo *linkRepository) ListClosedByRemote(ctx context.Context, key entity.RemoteAccountKey) ([]*entity.LinkRecord, error) {
	var linkMs []model.LinkModel
	err := repo.reader(ctx).
		Where("service = ? AND server = ? AND remote_id = ? AND unlinked_at IS NOT NULL", key.Service, key.Server, key.RemoteID).
		Order("linked_at ASC").
		Find(&linkMs).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list closed links")
	}

	return toLinkDomains(linkMs), nil
}

func (repo *linkRepository) ListCurrentByUser(ctx context.Context, userID uuid.UUID) ([]*entity.LinkRecord, error) {
	var linkMs []model.LinkModel
	err := repo.reader(ctx).
		Where("user_id = ? AND unlinked_at IS NULL", userID).
		Find(&linkMs).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list user links")
	}

	return toLinkDomains(linkMs), nil
}

// Create relies on the partial unique indexes to refuse a second current link.
func (repo *linkRepository) Create(ctx context.Context, record *entity.LinkRecord) error {
	if err := repo.db.WithContext(ctx).Create(fromLinkDomain(record)).Error; err != nil {
		if constraint, ok := uniqueViolation(err); ok {
			switch constraint {
			case constraintLinksCurrentUser:
				return errors.Errorf("user %s already has a current link on %s/%s", record.UserID, record.Key.Service, record.Key.Server)
			default:
				return errors.Errorf("remote account %s already has a current link", record.Key)
			}
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create link")
	}

	return nil
}

func (repo *linkRepository) Close(ctx context.Context, id uuid.UUID, unlinkedAt time.Time, unlinkedBy uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Model(&model.LinkModel{}).
		Where("id = ? AND unlinked_at IS NULL", id).
		Updates(map[string]any{"unlinked_at": unlinkedAt, "unlinked_by": unlinkedBy})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to close link")
	}
	if result.RowsAffected == 0 {
		return repository.ErrLinkNotFound
	}

	return nil
}

// --- Mapper Functions ---

func toLinkDomain(data *model.LinkModel) *entity.LinkRecord {
	return &entity.LinkRecord{
		ID: data.ID,
		Key: entity.RemoteAccountKey{
			Service:  entity.RemoteService(data.Service),
			Server:   data.Server,
			RemoteID: data.RemoteID,
		},
		UserID:     data.UserID,
		LinkedAt:   data.LinkedAt,
		LinkedBy:   data.LinkedBy,
		UnlinkedAt: data.UnlinkedAt,
		UnlinkedBy: data.UnlinkedBy,
	}
}

func toLinkDomains(data []model.LinkModel) []*entity.LinkRecord {
	records := make([]*entity.LinkRecord, 0, len(data))
	for i := range data {
		records = append(records, toLinkDomain(&data[i]))
	}

	return records
}

func fromLinkDomain(data *entity.LinkRecord) *model.LinkModel {
	return &model.LinkModel{
		ID:         data.ID,
		Service:    string(data.Key.Service),
		Server:     data.Key.Server,
		RemoteID:   data.Key.RemoteID,
		UserID:     data.UserID,
		LinkedAt:   data.LinkedAt,
		LinkedBy:   data.LinkedBy,
		UnlinkedAt: data.UnlinkedAt,
		UnlinkedBy: data.UnlinkedBy,
	}
}
