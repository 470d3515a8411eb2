package impl

import (
	"context"
	"testing"
	"time"

	"etwin/internal/domain/entity"
	domainerrors "etwin/internal/domain/errors"
	"etwin/internal/domain/repository"
	"etwin/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_GetUserByID(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.registerUser(t, "admin")
	alice := env.registerUser(t, "alice")
	bob := env.registerUser(t, "bob")

	tests := []struct {
		name         string
		acx          entity.AuthContext
		wantComplete bool
	}{
		{name: "guest", acx: entity.Guest()},
		{name: "other user", acx: userAcx(bob)},
		{name: "self", acx: userAcx(alice), wantComplete: true},
		{name: "administrator", acx: userAcx(admin), wantComplete: true},
		{name: "system", acx: entity.System(), wantComplete: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := env.users.GetUserByID(ctx, tt.acx, alice.User.ID)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, alice.User.ID, got.User.ID)
			assert.Equal(t, "alice", got.User.DisplayName)
			assert.Equal(t, tt.wantComplete, got.Complete)

			if tt.wantComplete {
				require.NotNil(t, got.User.Username)
				assert.Equal(t, "alice", *got.User.Username)
				require.NotNil(t, got.HasPassword)
				assert.True(t, *got.HasPassword)
			} else {
				assert.Nil(t, got.User.Username)
				assert.Nil(t, got.HasPassword)
			}
		})
	}

	t.Run("unknown user", func(t *testing.T) {
		got, err := env.users.GetUserByID(ctx, entity.Guest(), uuid.New())
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestUserService_FirstUserIsAdministrator(t *testing.T) {
	env := newTestEnv(t)

	assert.True(t, env.registerUser(t, "admin").IsAdministrator)
	assert.False(t, env.registerUser(t, "alice").IsAdministrator)
}

func TestUserService_LinkWithCredentials(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.registerUser(t, "admin")
	alice := env.registerUser(t, "alice")
	require.NoError(t, env.hammerfest.CreateUser(entity.HammerfestServerFr, "77", "alicehf", "pw"))
	credentials := entity.RemoteCredentials{Server: entity.HammerfestServerFr, Username: "alicehf", Password: "pw"}

	link, err := env.users.LinkToHammerfestWithCredentials(ctx, userAcx(alice), alice.User.ID, credentials)
	require.NoError(t, err)
	require.NotNil(t, link.Current)
	assert.Equal(t, alice.User.ID, link.Current.User.ID)
	assert.Equal(t, "alicehf", link.Current.Remote.Username)

	user, err := env.users.GetUserByID(ctx, userAcx(alice), alice.User.ID)
	require.NoError(t, err)
	require.NotNil(t, user.Links.HammerfestFr.Current)

	// Logging in through the linked account reaches the same user.
	loggedIn, err := env.auth.RegisterOrLoginWithHammerfest(ctx, entity.Guest(), credentials)
	require.NoError(t, err)
	assert.Equal(t, alice.User.ID, loggedIn.User.ID)
}

// failingSessionStore stores everything but remote sessions.
type failingSessionStore struct {
	repository.RemoteTokenRepository
}

func (failingSessionStore) TouchSession(context.Context, *entity.RemoteSession, time.Time) error {
	return errors.New("token store offline")
}

func TestUserService_RemoteSessionRecordingIsBestEffort(t *testing.T) {
	env := newTestEnv(t, withRemoteTokenRepository(failingSessionStore{}))
	ctx := context.Background()
	alice := env.registerUser(t, "alice")
	require.NoError(t, env.hammerfest.CreateUser(entity.HammerfestServerFr, "77", "alicehf", "pw"))
	require.NoError(t, env.dinoparc.CreateUser(entity.DinoparcServerCom, "8", "alicedp", "pw"))

	link, err := env.users.LinkToHammerfestWithCredentials(ctx, userAcx(alice), alice.User.ID,
		entity.RemoteCredentials{Server: entity.HammerfestServerFr, Username: "alicehf", Password: "pw"})
	require.NoError(t, err)
	require.NotNil(t, link.Current)

	link, err = env.users.LinkToDinoparcWithCredentials(ctx, userAcx(alice), alice.User.ID,
		entity.RemoteCredentials{Server: entity.DinoparcServerCom, Username: "alicedp", Password: "pw"})
	require.NoError(t, err)
	require.NotNil(t, link.Current)

	loggedIn, err := env.auth.RegisterOrLoginWithHammerfest(ctx, entity.Guest(),
		entity.RemoteCredentials{Server: entity.HammerfestServerFr, Username: "alicehf", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, alice.User.ID, loggedIn.User.ID)
}

func TestUserService_LinkWithSessionKey(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.registerUser(t, "alice")
	require.NoError(t, env.hammerfest.CreateUser(entity.HammerfestServerNet, "3", "hf", "pw"))

	session, err := env.hammerfest.CreateSession(ctx, entity.RemoteCredentials{Server: entity.HammerfestServerNet, Username: "hf", Password: "pw"})
	require.NoError(t, err)

	link, err := env.users.LinkToHammerfestWithSessionKey(ctx, userAcx(alice), alice.User.ID, entity.HammerfestServerNet, session.Key)
	require.NoError(t, err)
	require.NotNil(t, link.Current)
	assert.Equal(t, "3", link.Current.Remote.Key.RemoteID)

	_, err = env.users.LinkToHammerfestWithSessionKey(ctx, userAcx(alice), alice.User.ID, entity.HammerfestServerNet, "unknown-session-key")
	assert.ErrorIs(t, err, domainerrors.ErrInvalidHammerfestSession)
}

func TestUserService_LinkToTwinoidWithOauth(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.registerUser(t, "alice")
	env.twinoid.CreateUser("38", "Demurgos")
	env.twinoid.GrantAccessToken("tid-token", "38")

	link, err := env.users.LinkToTwinoidWithOauth(ctx, userAcx(alice), alice.User.ID, usecase.TwinoidOauthInput{AccessToken: "tid-token", ExpiresIn: 3600})
	require.NoError(t, err)
	require.NotNil(t, link.Current)
	assert.Equal(t, "Demurgos", link.Current.Remote.Username)

	_, err = env.users.LinkToTwinoidWithOauth(ctx, userAcx(alice), alice.User.ID, usecase.TwinoidOauthInput{AccessToken: "bad"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidTwinoidToken)
}

func TestUserService_LinkWithRefIsAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.registerUser(t, "admin")
	alice := env.registerUser(t, "alice")
	require.NoError(t, env.dinoparc.CreateUser(entity.DinoparcServerSpCom, "12", "dino", "pw"))

	_, err := env.users.LinkToDinoparcWithRef(ctx, userAcx(alice), alice.User.ID, entity.DinoparcServerSpCom, "12")
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	link, err := env.users.LinkToDinoparcWithRef(ctx, userAcx(admin), alice.User.ID, entity.DinoparcServerSpCom, "12")
	require.NoError(t, err)
	require.NotNil(t, link.Current)
	assert.Equal(t, alice.User.ID, link.Current.User.ID)
	assert.Equal(t, admin.User.ID, link.Current.Link.User.ID)

	_, err = env.users.LinkToDinoparcWithRef(ctx, userAcx(admin), alice.User.ID, entity.DinoparcServerSpCom, "404")
	assert.ErrorIs(t, err, domainerrors.ErrInvalidDinoparcRef)

	_, err = env.users.LinkToHammerfestWithRef(ctx, userAcx(admin), alice.User.ID, entity.HammerfestServerFr, "404")
	assert.ErrorIs(t, err, domainerrors.ErrInvalidHammerfestRef)

	_, err = env.users.LinkToTwinoidWithRef(ctx, userAcx(admin), alice.User.ID, "404")
	assert.ErrorIs(t, err, domainerrors.ErrInvalidTwinoidRef)
}

func TestUserService_LinkPermissions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.registerUser(t, "admin")
	alice := env.registerUser(t, "alice")
	bob := env.registerUser(t, "bob")
	credentials := entity.RemoteCredentials{Server: entity.HammerfestServerFr, Username: "hf", Password: "pw"}

	tests := []struct {
		name    string
		acx     entity.AuthContext
		wantErr error
	}{
		{name: "guest", acx: entity.Guest(), wantErr: domainerrors.ErrUnauthorized},
		{name: "other user", acx: userAcx(bob), wantErr: domainerrors.ErrForbidden},
		{name: "administrator for another user", acx: userAcx(admin), wantErr: domainerrors.ErrForbidden},
		{name: "system", acx: entity.System(), wantErr: domainerrors.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.users.LinkToHammerfestWithCredentials(ctx, tt.acx, alice.User.ID, credentials)
			assert.ErrorIs(t, err, tt.wantErr)

			_, err = env.users.LinkToTwinoidWithRef(ctx, tt.acx, alice.User.ID, "38")
			if tt.name == "administrator for another user" {
				assert.ErrorIs(t, err, domainerrors.ErrInvalidTwinoidRef)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestUserService_Unlink(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.registerUser(t, "admin")
	alice := env.registerUser(t, "alice")
	bob := env.registerUser(t, "bob")

	link := func() {
		t.Helper()
		_, err := env.links.LinkToTwinoid(ctx, usecase.LinkOptions{UserID: alice.User.ID, RemoteUserID: "38", LinkedBy: alice.User.ID})
		require.NoError(t, err)
	}

	link()
	_, err := env.users.UnlinkFromTwinoid(ctx, userAcx(bob), alice.User.ID, "38")
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	got, err := env.users.UnlinkFromTwinoid(ctx, userAcx(alice), alice.User.ID, "38")
	require.NoError(t, err)
	assert.Nil(t, got.Current)
	require.Len(t, got.Old, 1)
	assert.Equal(t, alice.User.ID, got.Old[0].Unlink.User.ID)

	env.clock.Advance(time.Minute)
	link()
	got, err = env.users.UnlinkFromTwinoid(ctx, userAcx(admin), alice.User.ID, "38")
	require.NoError(t, err)
	require.Len(t, got.Old, 2)
	assert.Equal(t, admin.User.ID, got.Old[1].Unlink.User.ID)

	_, err = env.users.UnlinkFromTwinoid(ctx, userAcx(alice), alice.User.ID, "38")
	assert.ErrorIs(t, err, domainerrors.ErrLinkNotFound)
}
