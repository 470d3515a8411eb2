package remote

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"etwin/internal/domain/entity"
	domainerrors "etwin/internal/domain/errors"
	"etwin/internal/infra/generator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHammerfestMemoryClient(t *testing.T) {
	ctx := context.Background()
	clock := generator.NewVirtualClock(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC))
	client := NewHammerfestMemoryClient(clock)
	require.NoError(t, client.CreateUser(entity.HammerfestServerFr, "123", "alice", "aaaaa"))

	t.Run("duplicate seed is rejected", func(t *testing.T) {
		err := client.CreateUser(entity.HammerfestServerFr, "124", "alice", "bbbbb")
		assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := client.CreateSession(ctx, entity.RemoteCredentials{Server: entity.HammerfestServerFr, Username: "alice", Password: "nope"})
		assert.ErrorIs(t, err, domainerrors.ErrInvalidHammerfestCredentials)
	})

	t.Run("accounts are per server", func(t *testing.T) {
		_, err := client.CreateSession(ctx, entity.RemoteCredentials{Server: entity.HammerfestServerEs, Username: "alice", Password: "aaaaa"})
		assert.ErrorIs(t, err, domainerrors.ErrInvalidHammerfestCredentials)
	})

	t.Run("session round trip", func(t *testing.T) {
		session, err := client.CreateSession(ctx, entity.RemoteCredentials{Server: entity.HammerfestServerFr, Username: "alice", Password: "aaaaa"})
		require.NoError(t, err)
		assert.Len(t, session.Key, sessionKeyLength)
		assert.Equal(t, entity.HammerfestKey(entity.HammerfestServerFr, "123"), session.User.Key)

		clock.Advance(time.Minute)
		tested, err := client.TestSession(ctx, entity.HammerfestServerFr, session.Key)
		require.NoError(t, err)
		require.NotNil(t, tested)
		assert.Equal(t, session.User, tested.User)
		assert.True(t, tested.ATime.After(session.ATime))

		unknown, err := client.TestSession(ctx, entity.HammerfestServerFr, "unknown")
		require.NoError(t, err)
		assert.Nil(t, unknown)
	})

	t.Run("profiles", func(t *testing.T) {
		profile, err := client.GetProfileByID(ctx, entity.HammerfestServerFr, "123")
		require.NoError(t, err)
		assert.Equal(t, "alice", profile.User.Username)

		missing, err := client.GetProfileByID(ctx, entity.HammerfestServerFr, "999")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("unknown server", func(t *testing.T) {
		_, err := client.GetProfileByID(ctx, entity.DinoparcServerCom, "123")
		assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
	})

	t.Run("unavailable", func(t *testing.T) {
		client.SetUnavailable(true)
		defer client.SetUnavailable(false)

		_, err := client.CreateSession(ctx, entity.RemoteCredentials{Server: entity.HammerfestServerFr, Username: "alice", Password: "aaaaa"})
		assert.ErrorIs(t, err, domainerrors.ErrRemoteUnavailable)
	})
}

func TestDinoparcMemoryClient_InvalidCredentials(t *testing.T) {
	client := NewDinoparcMemoryClient(generator.NewSystemClock())
	require.NoError(t, client.CreateUser(entity.DinoparcServerEnCom, "1", "bob", "bbbbb"))

	_, err := client.CreateSession(context.Background(), entity.RemoteCredentials{Server: entity.DinoparcServerEnCom, Username: "bob", Password: "x"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidDinoparcCredentials)

	session, err := client.CreateSession(context.Background(), entity.RemoteCredentials{Server: entity.DinoparcServerEnCom, Username: "bob", Password: "bbbbb"})
	require.NoError(t, err)
	assert.Equal(t, entity.RemoteServiceDinoparc, session.User.Key.Service)
}

func TestTwinoidMemoryClient(t *testing.T) {
	client := NewTwinoidMemoryClient()
	client.CreateUser("38", "Demurgos")
	client.GrantAccessToken("tok", "38")

	user, err := client.GetMe(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, entity.RemoteUser{Key: entity.TwinoidKey("38"), Username: "Demurgos"}, *user)

	_, err = client.GetMe(context.Background(), "other")
	assert.ErrorIs(t, err, domainerrors.ErrInvalidTwinoidToken)
}

func TestTwinoidHTTPClient_GetMe(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    *entity.RemoteUser
		wantErr error
	}{
		{
			name:   "ok",
			status: http.StatusOK,
			body:   `{"id":38,"name":"Demurgos"}`,
			want:   &entity.RemoteUser{Key: entity.TwinoidKey("38"), Username: "Demurgos"},
		},
		{name: "unauthorized", status: http.StatusUnauthorized, wantErr: domainerrors.ErrInvalidTwinoidToken},
		{name: "forbidden", status: http.StatusForbidden, wantErr: domainerrors.ErrInvalidTwinoidToken},
		{name: "server error", status: http.StatusServiceUnavailable, wantErr: domainerrors.ErrRemoteUnavailable},
		{name: "rate limited", status: http.StatusTooManyRequests, wantErr: domainerrors.ErrRemoteUnavailable},
		{name: "not found", status: http.StatusNotFound, wantErr: domainerrors.ErrRemoteUnavailable},
		{name: "redirect", status: http.StatusNotModified, wantErr: domainerrors.ErrRemoteUnavailable},
		{name: "malformed body", status: http.StatusOK, body: `{`, wantErr: domainerrors.ErrRemoteUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/graph/me", r.URL.Path)
				assert.Equal(t, "id,name", r.URL.Query().Get("fields"))
				assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer server.Close()

			client := NewTwinoidHTTPClient(server.URL+"/", time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
			user, err := client.GetMe(context.Background(), "secret")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, user)
		})
	}
}

func TestTwinoidHTTPClient_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	client := NewTwinoidHTTPClient(server.URL, time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
	_, err := client.GetMe(context.Background(), "secret")

	assert.ErrorIs(t, err, domainerrors.ErrRemoteUnavailable)
}
