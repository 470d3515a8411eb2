package impl

import (
	"context"
	"sync"
	"testing"
	"time"

	"etwin/internal/domain/entity"
	domainerrors "etwin/internal/domain/errors"
	"etwin/internal/usecase"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkService_ConcurrentLinksOfOneRemoteAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.registerUser(t, "alice")
	bob := env.registerUser(t, "bob")

	var (
		wg   sync.WaitGroup
		errs = make([]error, 2)
	)
	for i, user := range []*entity.UserAndSession{alice, bob} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = env.links.LinkToHammerfest(ctx, usecase.LinkOptions{
				UserID:       user.User.ID,
				Server:       entity.HammerfestServerFr,
				RemoteUserID: "42",
				LinkedBy:     user.User.ID,
			})
		}()
	}
	wg.Wait()

	var succeeded, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domainerrors.ErrRemoteAccountAlreadyLinked):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, conflicts)

	link, err := env.links.GetLinkFromHammerfest(ctx, entity.HammerfestServerFr, "42")
	require.NoError(t, err)
	require.NotNil(t, link.Current)
	assert.Empty(t, link.Old)
}

func TestLinkService_RelinkKeepsHistory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.registerUser(t, "alice")
	bob := env.registerUser(t, "bob")
	aliceID, bobID := alice.User.ID, bob.User.ID

	_, err := env.links.LinkToDinoparc(ctx, usecase.LinkOptions{UserID: aliceID, Server: entity.DinoparcServerEnCom, RemoteUserID: "9", LinkedBy: aliceID})
	require.NoError(t, err)

	env.clock.Advance(time.Hour)
	_, err = env.links.UnlinkFromDinoparc(ctx, usecase.UnlinkOptions{UserID: aliceID, Server: entity.DinoparcServerEnCom, RemoteUserID: "9", UnlinkedBy: aliceID})
	require.NoError(t, err)

	env.clock.Advance(time.Hour)
	got, err := env.links.LinkToDinoparc(ctx, usecase.LinkOptions{UserID: bobID, Server: entity.DinoparcServerEnCom, RemoteUserID: "9", LinkedBy: bobID})
	require.NoError(t, err)

	remote := entity.RemoteUser{Key: entity.DinoparcKey(entity.DinoparcServerEnCom, "9")}
	aliceShort := entity.ShortUser{ID: aliceID, DisplayName: "alice"}
	bobShort := entity.ShortUser{ID: bobID, DisplayName: "bob"}
	want := &entity.VersionedLink{
		Current: &entity.Link{
			Remote: remote,
			User:   bobShort,
			Link:   entity.LinkAction{Time: testEpoch.Add(2 * time.Hour), User: bobShort},
		},
		Old: []entity.Link{{
			Remote: remote,
			User:   aliceShort,
			Link:   entity.LinkAction{Time: testEpoch, User: aliceShort},
			Unlink: &entity.LinkAction{Time: testEpoch.Add(time.Hour), User: aliceShort},
		}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("LinkToDinoparc() mismatch (-want +got):\n%s", diff)
	}
}

func TestLinkService_LinkIsIdempotentForSameUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.registerUser(t, "alice")
	options := usecase.LinkOptions{UserID: alice.User.ID, RemoteUserID: "38", LinkedBy: alice.User.ID}

	first, err := env.links.LinkToTwinoid(ctx, options)
	require.NoError(t, err)

	env.clock.Advance(time.Minute)
	second, err := env.links.LinkToTwinoid(ctx, options)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestLinkService_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.registerUser(t, "alice")
	aliceID := alice.User.ID

	_, err := env.links.LinkToHammerfest(ctx, usecase.LinkOptions{UserID: aliceID, Server: entity.HammerfestServerNet, RemoteUserID: "1", LinkedBy: aliceID})
	require.NoError(t, err)

	tests := []struct {
		name    string
		run     func() error
		wantErr error
	}{
		{
			name: "second account on same server",
			run: func() error {
				_, err := env.links.LinkToHammerfest(ctx, usecase.LinkOptions{UserID: aliceID, Server: entity.HammerfestServerNet, RemoteUserID: "2", LinkedBy: aliceID})

				return err
			},
			wantErr: domainerrors.ErrUserAlreadyLinked,
		},
		{
			name: "unknown server",
			run: func() error {
				_, err := env.links.LinkToHammerfest(ctx, usecase.LinkOptions{UserID: aliceID, Server: "dinoparc.com", RemoteUserID: "1", LinkedBy: aliceID})

				return err
			},
			wantErr: domainerrors.ErrInvalidInput,
		},
		{
			name: "unknown user",
			run: func() error {
				_, err := env.links.LinkToHammerfest(ctx, usecase.LinkOptions{UserID: uuid.New(), Server: entity.HammerfestServerFr, RemoteUserID: "1", LinkedBy: aliceID})

				return err
			},
			wantErr: domainerrors.ErrUserNotFound,
		},
		{
			name: "unlink account held by nobody",
			run: func() error {
				_, err := env.links.UnlinkFromHammerfest(ctx, usecase.UnlinkOptions{UserID: aliceID, Server: entity.HammerfestServerFr, RemoteUserID: "1", UnlinkedBy: aliceID})

				return err
			},
			wantErr: domainerrors.ErrLinkNotFound,
		},
		{
			name: "unlink account held by another user",
			run: func() error {
				_, err := env.links.UnlinkFromHammerfest(ctx, usecase.UnlinkOptions{UserID: uuid.New(), Server: entity.HammerfestServerNet, RemoteUserID: "1", UnlinkedBy: aliceID})

				return err
			},
			wantErr: domainerrors.ErrLinkNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.run(), tt.wantErr)
		})
	}
}

func TestLinkService_GetVersionedLinks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.registerUser(t, "alice")
	aliceID := alice.User.ID

	_, err := env.links.LinkToHammerfest(ctx, usecase.LinkOptions{UserID: aliceID, Server: entity.HammerfestServerEs, RemoteUserID: "5", LinkedBy: aliceID})
	require.NoError(t, err)
	_, err = env.links.LinkToTwinoid(ctx, usecase.LinkOptions{UserID: aliceID, RemoteUserID: "38", LinkedBy: aliceID})
	require.NoError(t, err)

	links, err := env.links.GetVersionedLinks(ctx, aliceID)
	require.NoError(t, err)
	require.NotNil(t, links.HammerfestEs.Current)
	assert.Equal(t, "5", links.HammerfestEs.Current.Remote.Key.RemoteID)
	require.NotNil(t, links.Twinoid.Current)
	assert.Equal(t, "38", links.Twinoid.Current.Remote.Key.RemoteID)
	assert.Nil(t, links.HammerfestFr.Current)
	assert.Nil(t, links.DinoparcCom.Current)
}
