package impl

import (
	"context"
	"log/slog"
	"slices"

	deliverycontext "etwin/internal/delivery/context"
	"etwin/internal/domain/entity"
	domainerrors "etwin/internal/domain/errors"
	"etwin/internal/domain/repository"
	"etwin/internal/domain/service"
	"etwin/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// linkService implements the LinkUsecase interface.
type linkService struct {
	txManager    repository.TransactionManager
	userRepo     repository.UserRepository
	linkRepo     repository.LinkRepository
	externalRepo repository.ExternalAccountRepository
	uuidGen      service.UUIDGenerator
	clock        service.Clock
	logger       *slog.Logger
}

// LinkServiceParams holds dependencies for LinkService, injected by Fx.
type LinkServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	UserRepo     repository.UserRepository
	LinkRepo     repository.LinkRepository
	ExternalRepo repository.ExternalAccountRepository
	UUIDGen      service.UUIDGenerator
	Clock        service.Clock
	Logger       *slog.Logger
}

// NewLinkService is the constructor for linkService.
func NewLinkService(params LinkServiceParams) usecase.LinkUsecase {
	return &linkService{
		txManager:    params.TxManager,
		userRepo:     params.UserRepo,
		linkRepo:     params.LinkRepo,
		externalRepo: params.ExternalRepo,
		uuidGen:      params.UUIDGen,
		clock:        params.Clock,
		logger:       params.Logger,
	}
}

func (srv *linkService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func (srv *linkService) GetLinkFromDinoparc(ctx context.Context, server, dparcUserID string) (*entity.VersionedLink, error) {
	key := entity.DinoparcKey(server, dparcUserID)
	if err := validateKey(key); err != nil {
		return nil, err
	}

	return srv.getLinkFrom(ctx, key)
}

func (srv *linkService) GetLinkFromHammerfest(ctx context.Context, server, hfUserID string) (*entity.VersionedLink, error) {
	key := entity.HammerfestKey(server, hfUserID)
	if err := validateKey(key); err != nil {
		return nil, err
	}

	return srv.getLinkFrom(ctx, key)
}

func (srv *linkService) GetLinkFromTwinoid(ctx context.Context, tidUserID string) (*entity.VersionedLink, error) {
	key := entity.TwinoidKey(tidUserID)
	if err := validateKey(key); err != nil {
		return nil, err
	}

	return srv.getLinkFrom(ctx, key)
}

func (srv *linkService) LinkToDinoparc(ctx context.Context, options usecase.LinkOptions) (*entity.VersionedLink, error) {
	return srv.linkTo(ctx, entity.DinoparcKey(options.Server, options.RemoteUserID), options.UserID, options.LinkedBy)
}

func (srv *linkService) LinkToHammerfest(ctx context.Context, options usecase.LinkOptions) (*entity.VersionedLink, error) {
	return srv.linkTo(ctx, entity.HammerfestKey(options.Server, options.RemoteUserID), options.UserID, options.LinkedBy)
}

func (srv *linkService) LinkToTwinoid(ctx context.Context, options usecase.LinkOptions) (*entity.VersionedLink, error) {
	return srv.linkTo(ctx, entity.TwinoidKey(options.RemoteUserID), options.UserID, options.LinkedBy)
}

func (srv *linkService) UnlinkFromDinoparc(ctx context.Context, options usecase.UnlinkOptions) (*entity.VersionedLink, error) {
	return srv.unlinkFrom(ctx, entity.DinoparcKey(options.Server, options.RemoteUserID), options.UserID, options.UnlinkedBy)
}

func (srv *linkService) UnlinkFromHammerfest(ctx context.Context, options usecase.UnlinkOptions) (*entity.VersionedLink, error) {
	return srv.unlinkFrom(ctx, entity.HammerfestKey(options.Server, options.RemoteUserID), options.UserID, options.UnlinkedBy)
}

func (srv *linkService) UnlinkFromTwinoid(ctx context.Context, options usecase.UnlinkOptions) (*entity.VersionedLink, error) {
	return srv.unlinkFrom(ctx, entity.TwinoidKey(options.RemoteUserID), options.UserID, options.UnlinkedBy)
}

// GetVersionedLinks returns, for each server, the versioned link of the remote
// account currently linked to the user.
func (srv *linkService) GetVersionedLinks(ctx context.Context, userID uuid.UUID) (*entity.VersionedLinks, error) {
	records, err := srv.linkRepo.ListCurrentByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list current links")
	}

	links := &entity.VersionedLinks{}
	for _, record := range records {
		slot := links.Slot(record.Key.Service, record.Key.Server)
		if slot == nil {
			srv.log(ctx).Warn("Ignoring link to unknown server", slog.String("key", record.Key.String()))

			continue
		}

		versioned, err := srv.getLinkFrom(ctx, record.Key)
		if err != nil {
			return nil, err
		}
		*slot = *versioned
	}

	return links, nil
}

func (srv *linkService) linkTo(ctx context.Context, key entity.RemoteAccountKey, userID, linkedBy uuid.UUID) (*entity.VersionedLink, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	srv.log(ctx).Debug("Linking remote account", slog.String("key", key.String()), slog.Any("userID", userID))

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		linkRepo := repoFactory.LinkRepo()

		// Remote key first, then the user slot: every writer locks in this order.
		if err := linkRepo.LockRemote(ctx, key); err != nil {
			return errors.Wrap(err, "failed to lock remote account")
		}
		if err := linkRepo.LockUserServer(ctx, userID, key.Service, key.Server); err != nil {
			return errors.Wrap(err, "failed to lock user server")
		}

		if _, err := repoFactory.UserRepo().FindByID(ctx, userID); err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return errors.Wrap(domainerrors.ErrUserNotFound, "cannot link unknown user")
			}

			return errors.Wrap(err, "failed to find user")
		}

		current, err := findOptionalLink(linkRepo.FindCurrentByRemote(ctx, key))
		if err != nil {
			return errors.Wrap(err, "failed to find current link of remote account")
		}
		if current != nil {
			if current.UserID == userID {
				return nil
			}

			return errors.Wrap(domainerrors.ErrRemoteAccountAlreadyLinked, key.String())
		}

		held, err := findOptionalLink(linkRepo.FindCurrentByUserServer(ctx, userID, key.Service, key.Server))
		if err != nil {
			return errors.Wrap(err, "failed to find current link of user")
		}
		if held != nil {
			return errors.Wrap(domainerrors.ErrUserAlreadyLinked, held.Key.String())
		}

		record := &entity.LinkRecord{
			ID:       srv.uuidGen.Next(),
			Key:      key,
			UserID:   userID,
			LinkedAt: srv.clock.Now(),
			LinkedBy: linkedBy,
		}
		if err := linkRepo.Create(ctx, record); err != nil {
			return errors.Wrap(err, "failed to create link")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Failed to link remote account", slog.String("key", key.String()), slog.Any("userID", userID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute link transaction")
	}

	return srv.getLinkFrom(ctx, key)
}

func (srv *linkService) unlinkFrom(ctx context.Context, key entity.RemoteAccountKey, userID, unlinkedBy uuid.UUID) (*entity.VersionedLink, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	srv.log(ctx).Debug("Unlinking remote account", slog.String("key", key.String()), slog.Any("userID", userID))

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		linkRepo := repoFactory.LinkRepo()

		if err := linkRepo.LockRemote(ctx, key); err != nil {
			return errors.Wrap(err, "failed to lock remote account")
		}
		if err := linkRepo.LockUserServer(ctx, userID, key.Service, key.Server); err != nil {
			return errors.Wrap(err, "failed to lock user server")
		}

		current, err := findOptionalLink(linkRepo.FindCurrentByRemote(ctx, key))
		if err != nil {
			return errors.Wrap(err, "failed to find current link of remote account")
		}
		if current == nil || current.UserID != userID {
			return errors.Wrap(domainerrors.ErrLinkNotFound, key.String())
		}

		if err := linkRepo.Close(ctx, current.ID, srv.clock.Now(), unlinkedBy); err != nil {
			return errors.Wrap(err, "failed to close link")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Failed to unlink remote account", slog.String("key", key.String()), slog.Any("userID", userID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute unlink transaction")
	}

	return srv.getLinkFrom(ctx, key)
}

func (srv *linkService) getLinkFrom(ctx context.Context, key entity.RemoteAccountKey) (*entity.VersionedLink, error) {
	current, err := findOptionalLink(srv.linkRepo.FindCurrentByRemote(ctx, key))
	if err != nil {
		return nil, errors.Wrap(err, "failed to find current link")
	}

	closed, err := srv.linkRepo.ListClosedByRemote(ctx, key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list closed links")
	}

	remote, err := srv.externalRepo.Find(ctx, key)
	switch {
	case errors.Is(err, repository.ErrRemoteUserNotFound):
		remote = &entity.RemoteUser{Key: key}
	case err != nil:
		return nil, errors.Wrap(err, "failed to find remote user")
	}

	users := newShortUserResolver(srv.userRepo)
	versioned := &entity.VersionedLink{Old: make([]entity.Link, 0, len(closed))}

	if current != nil {
		link, err := users.link(ctx, *remote, current)
		if err != nil {
			return nil, err
		}
		versioned.Current = link
	}

	for _, record := range closed {
		link, err := users.link(ctx, *remote, record)
		if err != nil {
			return nil, err
		}
		versioned.Old = append(versioned.Old, *link)
	}

	slices.SortStableFunc(versioned.Old, func(a, b entity.Link) int {
		return a.Link.Time.Compare(b.Link.Time)
	})

	return versioned, nil
}

// shortUserResolver loads each referenced user once per view.
type shortUserResolver struct {
	userRepo repository.UserRepository
	cache    map[uuid.UUID]entity.ShortUser
}

func newShortUserResolver(userRepo repository.UserRepository) *shortUserResolver {
	return &shortUserResolver{userRepo: userRepo, cache: make(map[uuid.UUID]entity.ShortUser)}
}

func (r *shortUserResolver) resolve(ctx context.Context, id uuid.UUID) (entity.ShortUser, error) {
	if short, ok := r.cache[id]; ok {
		return short, nil
	}

	short := entity.ShortUser{ID: id}
	user, err := r.userRepo.FindByID(ctx, id)
	switch {
	case err == nil:
		short = user.Short()
	case errors.Is(err, repository.ErrUserNotFound):
		// Deleted users keep their id in the history.
	default:
		return entity.ShortUser{}, errors.Wrap(err, "failed to resolve link user")
	}

	r.cache[id] = short

	return short, nil
}

func (r *shortUserResolver) link(ctx context.Context, remote entity.RemoteUser, record *entity.LinkRecord) (*entity.Link, error) {
	owner, err := r.resolve(ctx, record.UserID)
	if err != nil {
		return nil, err
	}
	linkedBy, err := r.resolve(ctx, record.LinkedBy)
	if err != nil {
		return nil, err
	}

	link := &entity.Link{
		Remote: remote,
		User:   owner,
		Link:   entity.LinkAction{Time: record.LinkedAt, User: linkedBy},
	}

	if record.UnlinkedAt != nil {
		unlink := entity.LinkAction{Time: *record.UnlinkedAt}
		if record.UnlinkedBy != nil {
			if unlink.User, err = r.resolve(ctx, *record.UnlinkedBy); err != nil {
				return nil, err
			}
		}
		link.Unlink = &unlink
	}

	return link, nil
}

func findOptionalLink(record *entity.LinkRecord, err error) (*entity.LinkRecord, error) {
	if errors.Is(err, repository.ErrLinkNotFound) {
		return nil, nil
	}

	return record, err
}

func validateKey(key entity.RemoteAccountKey) error {
	if !key.Service.IsValidServer(key.Server) {
		return domainerrors.ErrInvalidInput.WithDetails("unknown " + key.Service.String() + " server: " + key.Server)
	}
	if key.RemoteID == "" {
		return domainerrors.ErrInvalidInput.WithDetails("missing " + key.Service.String() + " user id")
	}

	return nil
}
