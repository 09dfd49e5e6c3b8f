package auth

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goliatone/go-sheetlog/core"
)

// assertionHeader and assertionClaims are structs rather than maps so the
// serialized bytes, and therefore the signature, follow a fixed field order.
type assertionHeader struct {
	Algorithm string `json:"alg"`
	Type      string `json:"typ"`
}

type assertionClaims struct {
	Issuer    string `json:"iss"`
	Scope     string `json:"scope"`
	Audience  string `json:"aud"`
	ExpiresAt int64  `json:"exp"`
	IssuedAt  int64  `json:"iat"`
}

// EncodeSegment is base64url without padding.
func EncodeSegment(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

func DecodeSegment(segment string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(segment, "="))
}

func buildSigningInput(header assertionHeader, claims assertionClaims) (string, error) {
	headerRaw, err := json.Marshal(header)
	if err != nil {
		return "", core.SigningError(err, "auth: marshal assertion header")
	}
	claimsRaw, err := json.Marshal(claims)
	if err != nil {
		return "", core.SigningError(err, "auth: marshal assertion claims")
	}
	return EncodeSegment(headerRaw) + "." + EncodeSegment(claimsRaw), nil
}

// ParseAssertionClaims decodes the payload segment of an assertion without
// verifying its signature.
func ParseAssertionClaims(assertion SignedAssertion) (map[string]any, error) {
	parts := strings.Split(string(assertion), ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("auth: assertion must have 3 segments, got %d", len(parts))
	}
	raw, err := DecodeSegment(parts[1])
	if err != nil {
		return nil, fmt.Errorf("auth: decode assertion payload: %w", err)
	}
	claims := map[string]any{}
	if err := json.Unmarshal(raw, &claims); err != nil {
		return nil, fmt.Errorf("auth: unmarshal assertion payload: %w", err)
	}
	return claims, nil
}
