package handler

import (
	"log/slog"
	"net/http"

	deliverycontext "etwin/internal/delivery/context"
	"etwin/internal/delivery/http/response"
	"etwin/internal/domain/entity"
	domainerrors "etwin/internal/domain/errors"
	"etwin/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// Link methods accepted by the link endpoints.
const (
	linkMethodCredentials = "credentials"
	linkMethodSessionKey  = "session_key"
	linkMethodOauth       = "oauth"
	linkMethodRef         = "ref"
)

// UserHandlerParams holds dependencies for UserHandler, injected by Fx.
type UserHandlerParams struct {
	fx.In

	UserUC usecase.UserUsecase
	Logger *slog.Logger
}

// UserHandler serves the user profile and link management endpoints.
type UserHandler struct {
	userUC usecase.UserUsecase
	logger *slog.Logger
}

// NewUserHandler is the constructor for UserHandler.
func NewUserHandler(params UserHandlerParams) *UserHandler {
	return &UserHandler{
		userUC: params.UserUC,
		logger: params.Logger,
	}
}

// LinkHammerfestRequest links a Hammerfest account with one of three methods.
type LinkHammerfestRequest struct {
	Method     string `json:"method" validate:"required,oneof=credentials session_key ref"`
	Server     string `json:"server" validate:"required"`
	Username   string `json:"username" validate:"required_if=Method credentials"`
	Password   string `json:"password" validate:"required_if=Method credentials"`
	SessionKey string `json:"session_key" validate:"required_if=Method session_key"`
	RemoteID   string `json:"remote_id" validate:"required_if=Method ref"`
}

// LinkDinoparcRequest links a Dinoparc account with its credentials or by reference.
type LinkDinoparcRequest struct {
	Method   string `json:"method" validate:"required,oneof=credentials ref"`
	Server   string `json:"server" validate:"required"`
	Username string `json:"username" validate:"required_if=Method credentials"`
	Password string `json:"password" validate:"required_if=Method credentials"`
	RemoteID string `json:"remote_id" validate:"required_if=Method ref"`
}

// LinkTwinoidRequest links a Twinoid account with an OAuth token or by reference.
type LinkTwinoidRequest struct {
	Method       string  `json:"method" validate:"required,oneof=oauth ref"`
	AccessToken  string  `json:"access_token" validate:"required_if=Method oauth"`
	RefreshToken *string `json:"refresh_token"`
	ExpiresIn    int64   `json:"expires_in" validate:"gte=0"`
	RemoteID     string  `json:"remote_id" validate:"required_if=Method ref"`
}

// UnlinkRequest names the remote account to unlink. Server is ignored for Twinoid.
type UnlinkRequest struct {
	Server   string `json:"server"`
	RemoteID string `json:"remote_id" validate:"required"`
}

func userIDParam(c echo.Context) (uuid.UUID, error) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, domainerrors.ErrInvalidInput.WithDetails("malformed user id")
	}

	return userID, nil
}

// GetUser returns a user and its links, stripped of private fields for
// other callers.
func (h *UserHandler) GetUser(c echo.Context) error {
	userID, err := userIDParam(c)
	if err != nil {
		return err
	}

	user, err := h.userUC.GetUserByID(c.Request().Context(), deliverycontext.GetAuthContext(c), userID)
	if err != nil {
		return errors.WithStack(err)
	}
	if user == nil {
		return domainerrors.ErrUserNotFound.WithDetails(userID.String())
	}

	return response.Success(c, http.StatusOK, toUserWithLinksView(user), "")
}

// LinkHammerfest links a Hammerfest account to the user.
func (h *UserHandler) LinkHammerfest(c echo.Context) error {
	userID, err := userIDParam(c)
	if err != nil {
		return err
	}
	var req LinkHammerfestRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, acx := c.Request().Context(), deliverycontext.GetAuthContext(c)

	var link *entity.VersionedLink
	switch req.Method {
	case linkMethodCredentials:
		link, err = h.userUC.LinkToHammerfestWithCredentials(ctx, acx, userID, entity.RemoteCredentials{Server: req.Server, Username: req.Username, Password: req.Password})
	case linkMethodSessionKey:
		link, err = h.userUC.LinkToHammerfestWithSessionKey(ctx, acx, userID, req.Server, req.SessionKey)
	case linkMethodRef:
		link, err = h.userUC.LinkToHammerfestWithRef(ctx, acx, userID, req.Server, req.RemoteID)
	default:
		return domainerrors.ErrInvalidInput.WithDetails("unknown link method " + req.Method)
	}
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toVersionedLinkView(link), "Hammerfest account linked")
}

// LinkDinoparc links a Dinoparc account to the user.
func (h *UserHandler) LinkDinoparc(c echo.Context) error {
	userID, err := userIDParam(c)
	if err != nil {
		return err
	}
	var req LinkDinoparcRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, acx := c.Request().Context(), deliverycontext.GetAuthContext(c)

	var link *entity.VersionedLink
	if req.Method == linkMethodCredentials {
		link, err = h.userUC.LinkToDinoparcWithCredentials(ctx, acx, userID, entity.RemoteCredentials{Server: req.Server, Username: req.Username, Password: req.Password})
	} else {
		link, err = h.userUC.LinkToDinoparcWithRef(ctx, acx, userID, req.Server, req.RemoteID)
	}
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toVersionedLinkView(link), "Dinoparc account linked")
}

// LinkTwinoid links a Twinoid account to the user.
func (h *UserHandler) LinkTwinoid(c echo.Context) error {
	userID, err := userIDParam(c)
	if err != nil {
		return err
	}
	var req LinkTwinoidRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, acx := c.Request().Context(), deliverycontext.GetAuthContext(c)

	var link *entity.VersionedLink
	if req.Method == linkMethodOauth {
		link, err = h.userUC.LinkToTwinoidWithOauth(ctx, acx, userID, usecase.TwinoidOauthInput{
			AccessToken:  req.AccessToken,
			RefreshToken: req.RefreshToken,
			ExpiresIn:    req.ExpiresIn,
		})
	} else {
		link, err = h.userUC.LinkToTwinoidWithRef(ctx, acx, userID, req.RemoteID)
	}
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toVersionedLinkView(link), "Twinoid account linked")
}

// Unlink closes the link between the user and a remote account.
func (h *UserHandler) Unlink(c echo.Context) error {
	userID, err := userIDParam(c)
	if err != nil {
		return err
	}
	var req UnlinkRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, acx := c.Request().Context(), deliverycontext.GetAuthContext(c)

	var link *entity.VersionedLink
	switch entity.RemoteService(c.Param("service")) {
	case entity.RemoteServiceHammerfest:
		link, err = h.userUC.UnlinkFromHammerfest(ctx, acx, userID, req.Server, req.RemoteID)
	case entity.RemoteServiceDinoparc:
		link, err = h.userUC.UnlinkFromDinoparc(ctx, acx, userID, req.Server, req.RemoteID)
	case entity.RemoteServiceTwinoid:
		link, err = h.userUC.UnlinkFromTwinoid(ctx, acx, userID, req.RemoteID)
	default:
		return domainerrors.ErrInvalidInput.WithDetails("unknown remote service " + c.Param("service"))
	}
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toVersionedLinkView(link), "Account unlinked")
}
