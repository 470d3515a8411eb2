// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"

	"etwin/config"
	deliverycontext "etwin/internal/delivery/context"
	"etwin/internal/delivery/http/middleware"
	"etwin/internal/delivery/http/response"
	"etwin/internal/delivery/http/validator"
	"etwin/internal/domain/entity"
	domainerrors "etwin/internal/domain/errors"
	"etwin/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// AuthHandlerParams holds dependencies for AuthHandler, injected by Fx.
type AuthHandlerParams struct {
	fx.In

	AuthUC usecase.AuthUsecase
	Config *config.Config
	Logger *slog.Logger
}

// AuthHandler serves the registration, login and session endpoints.
type AuthHandler struct {
	authUC usecase.AuthUsecase
	cfg    *config.Config
	logger *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler.
func NewAuthHandler(params AuthHandlerParams) *AuthHandler {
	return &AuthHandler{
		authUC: params.AuthUC,
		cfg:    params.Config,
		logger: params.Logger,
	}
}

// EmailRequest asks for a registration email.
type EmailRequest struct {
	Email  string `json:"email" validate:"required,email"`
	Locale string `json:"locale" validate:"omitempty,oneof=en-US fr-FR es-SP"`
}

// RegisterWithVerifiedEmailRequest finishes an email registration.
type RegisterWithVerifiedEmailRequest struct {
	EmailToken  string `json:"email_token" validate:"required"`
	DisplayName string `json:"display_name" validate:"required,displayname"`
	Password    string `json:"password" validate:"required,max=72"`
}

// RegisterWithUsernameRequest creates an account with a username.
type RegisterWithUsernameRequest struct {
	Username    string `json:"username" validate:"required,username"`
	DisplayName string `json:"display_name" validate:"required,displayname"`
	Password    string `json:"password" validate:"required,max=72"`
}

// LoginRequest logs in with a username or an email.
type LoginRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RemoteCredentialsRequest carries the credentials of a Hammerfest or Dinoparc account.
type RemoteCredentialsRequest struct {
	Server   string `json:"server" validate:"required"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TwinoidRequest carries a Twinoid OAuth access token.
type TwinoidRequest struct {
	AccessToken string `json:"access_token" validate:"required"`
}

func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domainerrors.ErrInvalidInput.WithDetails("malformed request body")
	}
	if err := c.Validate(req); err != nil {
		return domainerrors.ErrInvalidInput.WithDetails(validator.Describe(err))
	}

	return nil
}

// Self returns the identity of the caller.
func (h *AuthHandler) Self(c echo.Context) error {
	return response.Success(c, http.StatusOK, toAuthContextView(deliverycontext.GetAuthContext(c)), "")
}

// Email sends a registration email.
func (h *AuthHandler) Email(c echo.Context) error {
	var req EmailRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	input := usecase.RegisterOrLoginWithEmailInput{Email: req.Email, Locale: req.Locale}
	if err := h.authUC.RegisterOrLoginWithEmail(c.Request().Context(), deliverycontext.GetAuthContext(c), input); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusAccepted, nil, "Registration email sent")
}

// RegisterWithVerifiedEmail creates the account owning a verified email.
func (h *AuthHandler) RegisterWithVerifiedEmail(c echo.Context) error {
	var req RegisterWithVerifiedEmailRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.authUC.RegisterWithVerifiedEmail(c.Request().Context(), deliverycontext.GetAuthContext(c), usecase.RegisterWithVerifiedEmailInput{
		EmailToken:  req.EmailToken,
		DisplayName: req.DisplayName,
		Password:    []byte(req.Password),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return h.sessionCreated(c, http.StatusCreated, result, "User registered successfully")
}

// RegisterWithUsername creates an account identified by a username.
func (h *AuthHandler) RegisterWithUsername(c echo.Context) error {
	var req RegisterWithUsernameRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.authUC.RegisterWithUsername(c.Request().Context(), deliverycontext.GetAuthContext(c), usecase.RegisterWithUsernameInput{
		Username:    req.Username,
		DisplayName: req.DisplayName,
		Password:    []byte(req.Password),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return h.sessionCreated(c, http.StatusCreated, result, "User registered successfully")
}

// Login authenticates with a username or email and a password.
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.authUC.LoginWithCredentials(c.Request().Context(), deliverycontext.GetAuthContext(c), usecase.LoginInput{
		Login:    req.Login,
		Password: []byte(req.Password),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return h.sessionCreated(c, http.StatusOK, result, "Login successful")
}

// Hammerfest logs in through a Hammerfest account.
func (h *AuthHandler) Hammerfest(c echo.Context) error {
	var req RemoteCredentialsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.authUC.RegisterOrLoginWithHammerfest(c.Request().Context(), deliverycontext.GetAuthContext(c), req.credentials())
	if err != nil {
		return errors.WithStack(err)
	}

	return h.sessionCreated(c, http.StatusOK, result, "Login successful")
}

// Dinoparc logs in through a Dinoparc account.
func (h *AuthHandler) Dinoparc(c echo.Context) error {
	var req RemoteCredentialsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.authUC.RegisterOrLoginWithDinoparc(c.Request().Context(), deliverycontext.GetAuthContext(c), req.credentials())
	if err != nil {
		return errors.WithStack(err)
	}

	return h.sessionCreated(c, http.StatusOK, result, "Login successful")
}

// Twinoid logs in through a Twinoid access token.
func (h *AuthHandler) Twinoid(c echo.Context) error {
	var req TwinoidRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.authUC.RegisterOrLoginWithTwinoidOauth(c.Request().Context(), deliverycontext.GetAuthContext(c), req.AccessToken)
	if err != nil {
		return errors.WithStack(err)
	}

	return h.sessionCreated(c, http.StatusOK, result, "Login successful")
}

// Logout deletes the session named by the cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(h.cfg.Auth.SessionCookie); err == nil {
		if sessionID, err := uuid.Parse(cookie.Value); err == nil {
			if err := h.authUC.Logout(c.Request().Context(), sessionID); err != nil {
				return errors.WithStack(err)
			}
		}
	}
	middleware.ClearSessionCookie(c, h.cfg)

	return response.Success(c, http.StatusOK, toAuthContextView(entity.Guest()), "Logout successful")
}

func (h *AuthHandler) sessionCreated(c echo.Context, status int, result *entity.UserAndSession, message string) error {
	middleware.SetSessionCookie(c, h.cfg, result.Session)

	return response.Success(c, status, toUserAndSessionView(result), message)
}

func (r RemoteCredentialsRequest) credentials() entity.RemoteCredentials {
	return entity.RemoteCredentials{Server: r.Server, Username: r.Username, Password: r.Password}
}

// HealthCheck reports that the server is up.
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{"status": "ok"}, "")
}
