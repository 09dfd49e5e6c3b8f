package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/goliatone/go-sheetlog/core"
)

// AccessToken is the opaque bearer token returned by the token endpoint.
type AccessToken string

func (t AccessToken) String() string {
	return string(t)
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
	ExpiresIn   int64  `json:"expires_in,omitempty"`
}

type TokenExchangeClient struct {
	transport core.TransportAdapter
	tokenURL  string
}

func NewTokenExchangeClient(transport core.TransportAdapter, tokenURL string) *TokenExchangeClient {
	tokenURL = strings.TrimSpace(tokenURL)
	if tokenURL == "" {
		tokenURL = core.DefaultTokenURL
	}
	return &TokenExchangeClient{
		transport: transport,
		tokenURL:  tokenURL,
	}
}

// ExchangeForAccessToken trades a signed assertion for a bearer token using
// the JWT-bearer grant.
func (c *TokenExchangeClient) ExchangeForAccessToken(ctx context.Context, assertion SignedAssertion) (AccessToken, error) {
	if c == nil || c.transport == nil {
		return "", core.ConfigError("auth: token exchange transport is not configured")
	}
	if strings.TrimSpace(string(assertion)) == "" {
		return "", core.ConfigError("auth: signed assertion is required")
	}

	form := url.Values{}
	form.Set("grant_type", core.JWTBearerGrantType)
	form.Set("assertion", string(assertion))

	res, err := c.transport.Do(ctx, core.TransportRequest{
		Method: http.MethodPost,
		URL:    c.tokenURL,
		Headers: map[string]string{
			core.HeaderContentType: core.ContentTypeForm,
		},
		Body: []byte(form.Encode()),
	})
	if err != nil {
		if core.IsTransportError(err) || core.IsConfigError(err) {
			return "", err
		}
		return "", core.TransportError(err, "auth: token request failed", map[string]any{"url": c.tokenURL})
	}

	body := string(res.Body)
	if !res.OK() {
		return "", core.AuthError(
			fmt.Sprintf("failed to obtain access token: %d %s", res.StatusCode, body),
			res.StatusCode,
			body,
		)
	}

	var payload tokenResponse
	if err := json.Unmarshal(res.Body, &payload); err != nil {
		return "", core.AuthError(
			fmt.Sprintf("failed to decode access token response: %v", err),
			res.StatusCode,
			body,
		)
	}
	if payload.AccessToken == "" {
		return "", core.AuthError("access token response is missing access_token", res.StatusCode, body)
	}
	return AccessToken(payload.AccessToken), nil
}
