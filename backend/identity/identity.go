// Package identity exchanges short-lived login codes for stable external identities.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"admissions/backend/config"
)

var (
	// ErrInvalidCode is returned when the provider rejects the login code.
	ErrInvalidCode = errors.New("identity: invalid login code")
	// ErrUnavailable is returned when the provider cannot be reached or answers garbage.
	ErrUnavailable = errors.New("identity: provider unavailable")
)

type Exchanger interface {
	Exchange(ctx context.Context, code string) (string, error)
}

// WeChatClient resolves mini-program login codes through jscode2session.
type WeChatClient struct {
	baseURL    string
	appID      string
	secret     string
	httpClient *http.Client
}

func NewWeChatClient(baseURL, appID, secret string, httpClient *http.Client) *WeChatClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &WeChatClient{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		appID:      appID,
		secret:     secret,
		httpClient: httpClient,
	}
}

type sessionResponse struct {
	OpenID     string `json:"openid"`
	SessionKey string `json:"session_key"`
	UnionID    string `json:"unionid"`
	ErrCode    int    `json:"errcode"`
	ErrMsg     string `json:"errmsg"`
}

func (c *WeChatClient) Exchange(ctx context.Context, code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", ErrInvalidCode
	}

	query := url.Values{}
	query.Set("appid", c.appID)
	query.Set("secret", c.secret)
	query.Set("js_code", code)
	query.Set("grant_type", "authorization_code")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/sns/jscode2session?"+query.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build session request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var payload sessionResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("%w: decode body: %v", ErrUnavailable, err)
	}
	if payload.ErrCode != 0 {
		return "", fmt.Errorf("%w: %d %s", ErrInvalidCode, payload.ErrCode, payload.ErrMsg)
	}
	if payload.OpenID == "" {
		return "", fmt.Errorf("%w: empty openid", ErrUnavailable)
	}
	return payload.OpenID, nil
}

// Static treats the login code itself as the identity. For local runs and tests.
type Static struct{}

func (Static) Exchange(_ context.Context, code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", ErrInvalidCode
	}
	return code, nil
}

// New picks the exchanger configured by IDENTITY_PROVIDER.
func New(cfg *config.Config) (Exchanger, error) {
	switch strings.ToLower(cfg.IdentityProvider) {
	case "", "wechat":
		if cfg.WeChatAppID == "" || cfg.WeChatSecret == "" {
			return nil, errors.New("WECHAT_APP_ID and WECHAT_SECRET are required for the wechat identity provider")
		}
		return NewWeChatClient(cfg.WeChatBaseURL, cfg.WeChatAppID, cfg.WeChatSecret, nil), nil
	case "static":
		return Static{}, nil
	default:
		return nil, fmt.Errorf("unknown IDENTITY_PROVIDER %q", cfg.IdentityProvider)
	}
}
