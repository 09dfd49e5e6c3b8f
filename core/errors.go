package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ErrorConfig    = "SHEETLOG_CONFIG_ERROR"
	ErrorSigning   = "SHEETLOG_SIGNING_ERROR"
	ErrorTransport = "SHEETLOG_TRANSPORT_ERROR"
	ErrorAuth      = "SHEETLOG_AUTH_ERROR"
	ErrorAPI       = "SHEETLOG_API_ERROR"
	ErrorInternal  = "SHEETLOG_INTERNAL_ERROR"
)

const (
	MetadataStatusCode = "status_code"
	MetadataBody       = "body"
)

// ConfigError reports missing or invalid required configuration.
func ConfigError(message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryBadInput).
		WithCode(http.StatusBadRequest).
		WithTextCode(ErrorConfig)
}

func WrapConfigError(source error, message string) *goerrors.Error {
	if source == nil {
		return ConfigError(message)
	}
	return goerrors.Wrap(source, goerrors.CategoryBadInput, message).
		WithCode(http.StatusBadRequest).
		WithTextCode(ErrorConfig)
}

// SigningError wraps a failure of the signing primitive.
func SigningError(source error, message string) *goerrors.Error {
	if source == nil {
		return goerrors.New(message, goerrors.CategoryInternal).
			WithCode(http.StatusInternalServerError).
			WithTextCode(ErrorSigning)
	}
	return goerrors.Wrap(source, goerrors.CategoryInternal, message).
		WithCode(http.StatusInternalServerError).
		WithTextCode(ErrorSigning)
}

func InternalError(source error, message string) *goerrors.Error {
	if source == nil {
		return goerrors.New(message, goerrors.CategoryInternal).
			WithCode(http.StatusInternalServerError).
			WithTextCode(ErrorInternal)
	}
	return goerrors.Wrap(source, goerrors.CategoryInternal, message).
		WithCode(http.StatusInternalServerError).
		WithTextCode(ErrorInternal)
}

// TransportError reports a network-level failure reaching an endpoint.
func TransportError(source error, message string, metadata map[string]any) *goerrors.Error {
	var err *goerrors.Error
	if source == nil {
		err = goerrors.New(message, goerrors.CategoryExternal)
	} else {
		err = goerrors.Wrap(source, goerrors.CategoryExternal, message)
	}
	err = err.WithCode(http.StatusBadGateway).WithTextCode(ErrorTransport)
	if len(metadata) > 0 {
		err = err.WithMetadata(metadata)
	}
	return err
}

// AuthError reports a non-success response from the token endpoint.
func AuthError(message string, statusCode int, body string) *goerrors.Error {
	return remoteError(message, goerrors.CategoryAuth, ErrorAuth, statusCode, body)
}

// APIError reports a non-success response from the spreadsheet API.
func APIError(message string, statusCode int, body string) *goerrors.Error {
	return remoteError(message, goerrors.CategoryExternal, ErrorAPI, statusCode, body)
}

func remoteError(message string, category goerrors.Category, textCode string, statusCode int, body string) *goerrors.Error {
	code := statusCode
	if code <= 0 {
		code = http.StatusBadGateway
	}
	return goerrors.New(message, category).
		WithCode(code).
		WithTextCode(textCode).
		WithMetadata(map[string]any{
			MetadataStatusCode: statusCode,
			MetadataBody:       body,
		})
}

func IsConfigError(err error) bool    { return hasTextCode(err, ErrorConfig) }
func IsSigningError(err error) bool   { return hasTextCode(err, ErrorSigning) }
func IsTransportError(err error) bool { return hasTextCode(err, ErrorTransport) }
func IsAuthError(err error) bool      { return hasTextCode(err, ErrorAuth) }
func IsAPIError(err error) bool       { return hasTextCode(err, ErrorAPI) }

// ErrorStatus returns the remote HTTP status carried by an auth or API error,
// or zero when the error did not come from a remote response.
func ErrorStatus(err error) int {
	rich, ok := asRich(err)
	if !ok {
		return 0
	}
	switch value := rich.Metadata[MetadataStatusCode].(type) {
	case int:
		return value
	case int64:
		return int(value)
	case float64:
		return int(value)
	}
	return 0
}

func ErrorBody(err error) string {
	rich, ok := asRich(err)
	if !ok {
		return ""
	}
	body, _ := rich.Metadata[MetadataBody].(string)
	return body
}

// ErrorFields flattens an error into structured log fields.
func ErrorFields(err error) map[string]any {
	if err == nil {
		return map[string]any{}
	}
	fields := map[string]any{"error": err.Error()}
	rich, ok := asRich(err)
	if !ok {
		fields["error_text_code"] = ErrorInternal
		return fields
	}
	fields["error_category"] = string(rich.Category)
	fields["error_text_code"] = rich.TextCode
	if status := ErrorStatus(err); status > 0 {
		fields[MetadataStatusCode] = status
	}
	if body := strings.TrimSpace(ErrorBody(err)); body != "" {
		fields["response_body"] = body
	}
	return fields
}

func hasTextCode(err error, textCode string) bool {
	rich, ok := asRich(err)
	if !ok {
		return false
	}
	return rich.TextCode == textCode
}

func asRich(err error) (*goerrors.Error, bool) {
	if err == nil {
		return nil, false
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) || rich == nil {
		return nil, false
	}
	return rich, true
}
