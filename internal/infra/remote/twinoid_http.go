package remote

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"etwin/internal/domain/entity"
	domainerrors "etwin/internal/domain/errors"
	"etwin/internal/domain/service"

	"github.com/pkg/errors"
)

const defaultTwinoidBaseURL = "https://twinoid.com"

// twinoidMe is the subset of the Graph API "me" object the core reads.
type twinoidMe struct {
	ID   json.Number `json:"id"`
	Name string      `json:"name"`
}

// twinoidHTTPClient resolves access tokens through the Twinoid Graph API.
type twinoidHTTPClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewTwinoidHTTPClient creates a Graph API client. An empty baseURL targets twinoid.com.
func NewTwinoidHTTPClient(baseURL string, timeout time.Duration, logger *slog.Logger) service.TwinoidClient {
	if baseURL == "" {
		baseURL = defaultTwinoidBaseURL
	}

	return &twinoidHTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

func (c *twinoidHTTPClient) GetMe(ctx context.Context, accessToken string) (*entity.RemoteUser, error) {
	endpoint := c.baseURL + "/graph/me?" + url.Values{"fields": {"id,name"}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "Twinoid request failed", slog.Any("error", err))

		return nil, domainerrors.ErrRemoteUnavailable.WithDetails(err.Error())
	}
	defer resp.Body.Close()

	// Only a rejected token is the caller's fault. Rate limits and any other
	// unexpected status are reported as an unavailable remote.
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, domainerrors.ErrInvalidTwinoidToken
	default:
		c.logger.WarnContext(ctx, "Unexpected Twinoid response", slog.Int("status", resp.StatusCode))

		return nil, domainerrors.ErrRemoteUnavailable.WithDetails(resp.Status)
	}

	var me twinoidMe
	if err := json.NewDecoder(resp.Body).Decode(&me); err != nil {
		return nil, domainerrors.ErrRemoteUnavailable.WithDetails("malformed twinoid response")
	}
	if me.ID == "" {
		return nil, domainerrors.ErrRemoteUnavailable.WithDetails("twinoid response without id")
	}

	return &entity.RemoteUser{Key: entity.TwinoidKey(me.ID.String()), Username: me.Name}, nil
}
