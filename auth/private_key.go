package auth

import (
	"encoding/base64"
	"regexp"
	"strings"

	"github.com/goliatone/go-sheetlog/core"
)

var pemDelimiterPattern = regexp.MustCompile(`-----(BEGIN|END)[A-Z0-9 ]*-----`)

// DecodePrivateKey turns a PEM string, as stored in an environment variable,
// into the raw DER bytes of the key. Literal "\n" escapes, CRLF line endings
// and surrounding whitespace all normalize to the same bytes.
func DecodePrivateKey(pem string) ([]byte, error) {
	if strings.TrimSpace(pem) == "" {
		return nil, core.ConfigError("missing private key")
	}

	normalized := strings.ReplaceAll(pem, "\r", "")
	normalized = strings.ReplaceAll(normalized, `\n`, "\n")
	normalized = pemDelimiterPattern.ReplaceAllString(normalized, "")
	body := strings.Join(strings.Fields(normalized), "")
	if body == "" {
		return nil, core.ConfigError("missing private key")
	}

	raw, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return nil, core.WrapConfigError(err, "invalid private key")
	}
	return raw, nil
}
