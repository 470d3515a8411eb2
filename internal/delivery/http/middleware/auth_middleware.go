package middleware

import (
	"net/http"
	"strings"

	"etwin/config"
	deliverycontext "etwin/internal/delivery/context"
	"etwin/internal/domain/entity"
	domainerrors "etwin/internal/domain/errors"
	"etwin/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// AuthMiddleware resolves the caller of every request into an AuthContext.
type AuthMiddleware struct {
	authUC usecase.AuthUsecase
	cfg    *config.Config
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(authUC usecase.AuthUsecase, cfg *config.Config) *AuthMiddleware {
	return &AuthMiddleware{authUC: authUC, cfg: cfg}
}

// Authenticate reads, in order, a Bearer access token, Basic client
// credentials and the session cookie. Requests without any of them continue
// as guests; invalid credentials are rejected.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		acx, err := m.resolve(c)
		if err != nil {
			return err
		}
		deliverycontext.SetAuthContext(c, acx)

		return next(c)
	}
}

func (m *AuthMiddleware) resolve(c echo.Context) (entity.AuthContext, error) {
	ctx := c.Request().Context()
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)

	if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
		acx, err := m.authUC.AuthenticateAccessToken(ctx, token)
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.ErrUnauthorized.WithDetails("invalid access token")
		}

		return acx, err
	}

	if login, password, ok := c.Request().BasicAuth(); ok {
		acx, err := m.authUC.AuthenticateCredentials(ctx, entity.Credentials{Login: login, Password: []byte(password)})
		if errors.Is(err, domainerrors.ErrInvalidSecret) || errors.Is(err, domainerrors.ErrNotFound) || errors.Is(err, domainerrors.ErrOauthClientNotFound) {
			return nil, domainerrors.ErrUnauthorized.WithDetails("invalid client credentials")
		}

		return acx, err
	}

	cookie, err := c.Cookie(m.cfg.Auth.SessionCookie)
	if err != nil {
		return entity.Guest(), nil
	}
	sessionID, err := uuid.Parse(cookie.Value)
	if err != nil {
		ClearSessionCookie(c, m.cfg)

		return entity.Guest(), nil
	}

	result, err := m.authUC.AuthenticateSession(ctx, entity.Guest(), sessionID)
	if err != nil {
		return nil, err
	}
	if result == nil {
		ClearSessionCookie(c, m.cfg)

		return entity.Guest(), nil
	}

	return entity.NewUserAuthContext(result.User), nil
}

// SetSessionCookie hands the session id to the browser.
func SetSessionCookie(c echo.Context, cfg *config.Config, session *entity.Session) {
	c.SetCookie(&http.Cookie{
		Name:     cfg.Auth.SessionCookie,
		Value:    session.ID.String(),
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.Auth.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie removes the session cookie from the browser.
func ClearSessionCookie(c echo.Context, cfg *config.Config) {
	c.SetCookie(&http.Cookie{
		Name:     cfg.Auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.Auth.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}
