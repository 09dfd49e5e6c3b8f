package core

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	EnvClientEmail          = "GOOGLE_CLIENT_EMAIL"
	EnvPrivateKey           = "GOOGLE_PRIVATE_KEY"
	EnvSheetID              = "SHEET_ID"
	EnvSheetName            = "SHEET_NAME"
	EnvTokenURL             = "GOOGLE_TOKEN_URL"
	EnvAudience             = "GOOGLE_AUDIENCE"
	EnvScope                = "GOOGLE_SCOPE"
	EnvSheetsBaseURL        = "GOOGLE_SHEETS_BASE_URL"
	EnvRequestTimeout       = "HTTP_REQUEST_TIMEOUT"
	EnvMaxResponseBodyBytes = "HTTP_MAX_RESPONSE_BODY_BYTES"
	EnvPort                 = "PORT"
	EnvGreeting             = "GREETING"
	EnvServiceName          = "SERVICE_NAME"
	EnvLogLevel             = "LOG_LEVEL"
)

type envBinding struct {
	name    string
	section string
	key     string
}

var envBindings = []envBinding{
	{name: EnvServiceName, key: "service_name"},
	{name: EnvClientEmail, section: "credential", key: "client_email"},
	{name: EnvPrivateKey, section: "credential", key: "private_key"},
	{name: EnvSheetID, section: "sheet", key: "id"},
	{name: EnvSheetName, section: "sheet", key: "name"},
	{name: EnvTokenURL, section: "google", key: "token_url"},
	{name: EnvAudience, section: "google", key: "audience"},
	{name: EnvScope, section: "google", key: "scope"},
	{name: EnvSheetsBaseURL, section: "google", key: "sheets_base_url"},
	{name: EnvPort, section: "server", key: "port"},
	{name: EnvGreeting, section: "server", key: "greeting"},
	{name: EnvLogLevel, section: "server", key: "log_level"},
}

// EnvConfigLoader reads the worker-style environment variables into the raw
// config map consumed by CfgxConfigProvider.
type EnvConfigLoader struct {
	Lookup func(key string) (string, bool)
}

func NewEnvConfigLoader() EnvConfigLoader {
	return EnvConfigLoader{Lookup: os.LookupEnv}
}

func (l EnvConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	lookup := l.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}

	raw := map[string]any{}
	for _, binding := range envBindings {
		value, ok := lookup(binding.name)
		if !ok {
			continue
		}
		if binding.key != "private_key" {
			value = strings.TrimSpace(value)
		}
		if strings.TrimSpace(value) == "" {
			continue
		}
		setRaw(raw, binding.section, binding.key, value)
	}

	if value, ok := lookup(EnvRequestTimeout); ok && strings.TrimSpace(value) != "" {
		timeout, err := parseTimeout(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("core: %s is invalid: %w", EnvRequestTimeout, err)
		}
		setRaw(raw, "http", "request_timeout", timeout)
	}
	if value, ok := lookup(EnvMaxResponseBodyBytes); ok && strings.TrimSpace(value) != "" {
		limit, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("core: %s is invalid: %w", EnvMaxResponseBodyBytes, err)
		}
		setRaw(raw, "http", "max_response_body_bytes", limit)
	}
	return raw, nil
}

// parseTimeout accepts Go durations ("15s") and bare seconds ("15").
func parseTimeout(value string) (time.Duration, error) {
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}
	return time.ParseDuration(value)
}

func setRaw(raw map[string]any, section string, key string, value any) {
	if section == "" {
		raw[key] = value
		return
	}
	nested, ok := raw[section].(map[string]any)
	if !ok {
		nested = map[string]any{}
		raw[section] = nested
	}
	nested[key] = value
}
