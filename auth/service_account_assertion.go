package auth

import (
	"crypto/rsa"
	"crypto/x509"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-sheetlog/core"
)

// SignedAssertion is a compact header.payload.signature JWT.
type SignedAssertion string

func (a SignedAssertion) String() string {
	return string(a)
}

type AssertionSignerConfig struct {
	Scope    string
	Audience string
	Lifetime time.Duration
}

type AssertionSigner struct {
	config AssertionSignerConfig
	method *jwt.SigningMethodRSA
}

func NewAssertionSigner(cfg AssertionSignerConfig) *AssertionSigner {
	scope := strings.TrimSpace(cfg.Scope)
	if scope == "" {
		scope = core.SpreadsheetsScope
	}
	audience := strings.TrimSpace(cfg.Audience)
	if audience == "" {
		audience = core.DefaultAudience
	}
	lifetime := cfg.Lifetime
	if lifetime <= 0 {
		lifetime = core.AssertionLifetime
	}
	method, ok := jwt.GetSigningMethod(core.AssertionAlgorithm).(*jwt.SigningMethodRSA)
	if !ok {
		method = jwt.SigningMethodRS256
	}
	return &AssertionSigner{
		config: AssertionSignerConfig{
			Scope:    scope,
			Audience: audience,
			Lifetime: lifetime,
		},
		method: method,
	}
}

// CreateSignedAssertion builds and signs the assertion presented to the token
// endpoint. The claims expire exactly one lifetime after now.
func (s *AssertionSigner) CreateSignedAssertion(cred core.ServiceCredential, now time.Time) (SignedAssertion, error) {
	if s == nil {
		return "", core.ConfigError("auth: assertion signer is not configured")
	}
	cred = cred.Normalized()
	if cred.ClientEmail == "" {
		return "", core.ConfigError("missing client email")
	}

	keyBytes, err := DecodePrivateKey(cred.PrivateKeyPEM)
	if err != nil {
		return "", err
	}
	privateKey, err := parseRSAPrivateKey(keyBytes)
	if err != nil {
		return "", err
	}

	issuedAt := now.UTC().Unix()
	claims := assertionClaims{
		Issuer:    cred.ClientEmail,
		Scope:     s.config.Scope,
		Audience:  s.config.Audience,
		ExpiresAt: issuedAt + int64(s.config.Lifetime/time.Second),
		IssuedAt:  issuedAt,
	}
	header := assertionHeader{
		Algorithm: core.AssertionAlgorithm,
		Type:      core.AssertionType,
	}

	signingInput, err := buildSigningInput(header, claims)
	if err != nil {
		return "", err
	}
	signature, err := s.method.Sign(signingInput, privateKey)
	if err != nil {
		return "", core.SigningError(err, "auth: sign assertion")
	}
	return SignedAssertion(signingInput + "." + EncodeSegment(signature)), nil
}

// parseRSAPrivateKey imports PKCS#8 key material, falling back to PKCS#1 for
// keys exported as "RSA PRIVATE KEY".
func parseRSAPrivateKey(der []byte) (*rsa.PrivateKey, error) {
	parsed, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		pkcs1, pkcs1Err := x509.ParsePKCS1PrivateKey(der)
		if pkcs1Err != nil {
			return nil, core.SigningError(err, "auth: import private key")
		}
		return pkcs1, nil
	}
	privateKey, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, core.SigningError(jwt.ErrInvalidKeyType, "auth: private key is not an rsa key")
	}
	return privateKey, nil
}
