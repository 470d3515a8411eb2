package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"etwin/config"
	httpmiddleware "etwin/internal/delivery/http/middleware"
	"etwin/internal/delivery/http/router"
	"etwin/internal/delivery/http/router/handler"
	"etwin/internal/domain/entity"
	"etwin/internal/infra/auth"
	"etwin/internal/infra/generator"
	"etwin/internal/infra/mail"
	"etwin/internal/infra/persistence/memory"
	"etwin/internal/infra/pubsub"
	"etwin/internal/infra/remote"
	"etwin/internal/usecase/impl"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	echo       *echo.Echo
	hammerfest *remote.HammerfestMemoryClient
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{
		Auth: &config.AuthConfig{
			BcryptCost:     4,
			EmailTokenTTL:  24 * time.Hour,
			AccessTokenTTL: time.Hour,
			SessionCookie:  "sid",
		},
	}
	cfg.SecretKey.Token = "dev_secret"
	cfg.HTTP.MaxRequestBodySize = "100KB"

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := generator.NewVirtualClock(time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC))
	uuidGen := generator.NewUUIDGenerator()
	hasher := auth.NewBcryptHasher(cfg)
	emailTokens, err := auth.NewEmailTokenService(cfg)
	require.NoError(t, err)

	store := memory.NewStore()
	userRepo := memory.NewUserRepository(store)
	authRepo := memory.NewAuthRepository(store)
	externalRepo := memory.NewExternalAccountRepository(store)
	remoteTokenRepo := memory.NewRemoteTokenRepository(store)
	txManager := memory.NewTransactionManager(store)
	hammerfest := remote.NewHammerfestMemoryClient(clock)
	dinoparc := remote.NewDinoparcMemoryClient(clock)
	twinoid := remote.NewTwinoidMemoryClient()

	links := impl.NewLinkService(impl.LinkServiceParams{
		TxManager: txManager, UserRepo: userRepo, LinkRepo: memory.NewLinkRepository(store),
		ExternalRepo: externalRepo, UUIDGen: uuidGen, Clock: clock, Logger: logger,
	})
	oauth := impl.NewOauthService(impl.OauthServiceParams{
		OauthRepo: memory.NewOauthRepository(store), UserRepo: userRepo, Hasher: hasher,
		UUIDGen: uuidGen, Clock: clock, Config: cfg, Logger: logger,
	})
	authUC := impl.NewAuthService(impl.AuthServiceParams{
		TxManager: txManager, UserRepo: userRepo, AuthRepo: authRepo,
		SessionRepo: memory.NewSessionRepository(store), ExternalRepo: externalRepo,
		RemoteTokenRepo: remoteTokenRepo, Links: links, Oauth: oauth, Hasher: hasher,
		EmailTokens: emailTokens, Mailer: pubsub.NewNoopMailer(logger), Templater: mail.NewEmailTemplater(cfg),
		HammerfestClient: hammerfest, DinoparcClient: dinoparc, TwinoidClient: twinoid,
		UUIDGen: uuidGen, Clock: clock, Logger: logger,
	})
	userUC := impl.NewUserService(impl.UserServiceParams{
		UserRepo: userRepo, AuthRepo: authRepo, ExternalRepo: externalRepo,
		RemoteTokenRepo: remoteTokenRepo, Links: links, HammerfestClient: hammerfest,
		DinoparcClient: dinoparc, TwinoidClient: twinoid, Clock: clock, Logger: logger,
	})

	e := NewEcho(ServerParams{
		Cfg:             cfg,
		Logger:          logger,
		ErrorMiddleware: httpmiddleware.NewErrorMiddleware(logger),
		RouterParams: router.RouterParams{
			AuthHandler:    handler.NewAuthHandler(handler.AuthHandlerParams{AuthUC: authUC, Config: cfg, Logger: logger}),
			UserHandler:    handler.NewUserHandler(handler.UserHandlerParams{UserUC: userUC, Logger: logger}),
			AuthMiddleware: httpmiddleware.NewAuthMiddleware(authUC, cfg),
		},
	})

	return &testServer{echo: e, hammerfest: hammerfest}
}

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Details string `json:"details"`
	} `json:"error"`
}

func (s *testServer) do(t *testing.T, method, path, body string, cookies ...*http.Cookie) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())

	return rec, env
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "sid" {
			return cookie
		}
	}
	require.FailNow(t, "no session cookie")

	return nil
}

func (s *testServer) register(t *testing.T, username string) (*http.Cookie, string) {
	t.Helper()

	rec, env := s.do(t, http.MethodPost, "/auth/register/username",
		`{"username":"`+username+`","display_name":"`+username+`","password":"hunter22"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var data struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))

	return sessionCookie(t, rec), data.User.ID
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestServer_SessionFlow(t *testing.T) {
	s := newTestServer(t)

	_, env := s.do(t, http.MethodGet, "/auth/self", "")
	assert.JSONEq(t, `{"type":"Guest","scope":"Default"}`, string(env.Data))

	cookie, userID := s.register(t, "alice")

	rec, env := s.do(t, http.MethodGet, "/auth/self", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"type":"User","scope":"Default","user":{"id":"`+userID+`","display_name":"alice"},"is_administrator":true}`, string(env.Data))

	// Registering again is reserved to guests.
	rec, env = s.do(t, http.MethodPost, "/auth/register/username", `{"username":"bob","display_name":"bob","password":"x"}`, cookie)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	rec, _ = s.do(t, http.MethodDelete, "/auth/session", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	cleared := sessionCookie(t, rec)
	assert.Empty(t, cleared.Value)

	_, env = s.do(t, http.MethodGet, "/auth/self", "", cookie)
	assert.JSONEq(t, `{"type":"Guest","scope":"Default"}`, string(env.Data))
}

func TestServer_LoginErrors(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "alice")

	tests := []struct {
		name     string
		path     string
		body     string
		wantCode int
		wantErr  string
	}{
		{name: "wrong password", path: "/auth/login", body: `{"login":"alice","password":"nope"}`, wantCode: http.StatusUnauthorized, wantErr: "INVALID_PASSWORD"},
		{name: "unknown user", path: "/auth/login", body: `{"login":"bob","password":"nope"}`, wantCode: http.StatusNotFound, wantErr: "USER_NOT_FOUND"},
		{name: "missing password", path: "/auth/login", body: `{"login":"alice"}`, wantCode: http.StatusBadRequest, wantErr: "INVALID_INPUT"},
		{name: "malformed body", path: "/auth/login", body: `{`, wantCode: http.StatusBadRequest, wantErr: "INVALID_INPUT"},
		{name: "username taken", path: "/auth/register/username", body: `{"username":"alice","display_name":"Alice","password":"x"}`, wantCode: http.StatusConflict, wantErr: "USERNAME_ALREADY_IN_USE"},
		{name: "invalid username", path: "/auth/register/username", body: `{"username":"A","display_name":"Alice","password":"x"}`, wantCode: http.StatusBadRequest, wantErr: "INVALID_INPUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := s.do(t, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantErr, env.Error.Code)
			assert.False(t, env.Success)
		})
	}
}

func TestServer_BearerTokenIsChecked(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/self", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer unknown")
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServer_LinkHammerfest(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.hammerfest.CreateUser(entity.HammerfestServerFr, "123", "alicehf", "pw"))
	cookie, userID := s.register(t, "alice")

	rec, env := s.do(t, http.MethodPut, "/users/"+userID+"/links/hammerfest",
		`{"method":"credentials","server":"hammerfest.fr","username":"alicehf","password":"pw"}`, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var link struct {
		Current struct {
			Remote struct {
				ID       string `json:"id"`
				Username string `json:"username"`
			} `json:"remote"`
		} `json:"current"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &link))
	assert.Equal(t, "123", link.Current.Remote.ID)
	assert.Equal(t, "alicehf", link.Current.Remote.Username)

	// Guests see the links but not the private fields.
	_, env = s.do(t, http.MethodGet, "/users/"+userID, "")
	var user map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &user))
	assert.NotContains(t, user, "username")
	assert.Contains(t, user, "links")

	rec, env = s.do(t, http.MethodPut, "/users/"+userID+"/links/hammerfest", `{"method":"credentials","server":"hammerfest.fr"}`, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Error.Details, "username")

	rec, _ = s.do(t, http.MethodDelete, "/users/"+userID+"/links/hammerfest", `{"server":"hammerfest.fr","remote_id":"123"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = s.do(t, http.MethodDelete, "/users/"+userID+"/links/hammerfest", `{"server":"hammerfest.fr","remote_id":"123"}`, cookie)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/users/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
