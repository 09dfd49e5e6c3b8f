package core

import (
	"strings"
)

// BearerTokenSigner sets the Authorization header for bearer-authenticated
// transport requests.
type BearerTokenSigner struct{}

func (BearerTokenSigner) Sign(req *TransportRequest, token string) error {
	if req == nil {
		return ConfigError("core: transport request is required")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return ConfigError("core: access token is required for bearer signing")
	}
	if req.Headers == nil {
		req.Headers = map[string]string{}
	}
	req.Headers[HeaderAuthorization] = BearerPrefix + token
	return nil
}
