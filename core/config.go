package core

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

type CredentialConfig struct {
	ClientEmail string `koanf:"client_email" mapstructure:"client_email"`
	PrivateKey  string `koanf:"private_key" mapstructure:"private_key"`
}

type SheetConfig struct {
	ID   string `koanf:"id" mapstructure:"id"`
	Name string `koanf:"name" mapstructure:"name"`
}

type GoogleConfig struct {
	TokenURL      string `koanf:"token_url" mapstructure:"token_url"`
	Audience      string `koanf:"audience" mapstructure:"audience"`
	Scope         string `koanf:"scope" mapstructure:"scope"`
	SheetsBaseURL string `koanf:"sheets_base_url" mapstructure:"sheets_base_url"`
}

type HTTPConfig struct {
	RequestTimeout       time.Duration `koanf:"request_timeout" mapstructure:"request_timeout"`
	MaxResponseBodyBytes int64         `koanf:"max_response_body_bytes" mapstructure:"max_response_body_bytes"`
}

type ServerConfig struct {
	Port     string `koanf:"port" mapstructure:"port"`
	Greeting string `koanf:"greeting" mapstructure:"greeting"`
	LogLevel string `koanf:"log_level" mapstructure:"log_level"`
}

type Config struct {
	ServiceName string           `koanf:"service_name" mapstructure:"service_name"`
	Credential  CredentialConfig `koanf:"credential" mapstructure:"credential"`
	Sheet       SheetConfig      `koanf:"sheet" mapstructure:"sheet"`
	Google      GoogleConfig     `koanf:"google" mapstructure:"google"`
	HTTP        HTTPConfig       `koanf:"http" mapstructure:"http"`
	Server      ServerConfig     `koanf:"server" mapstructure:"server"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: DefaultServiceName,
		Google: GoogleConfig{
			TokenURL:      DefaultTokenURL,
			Scope:         SpreadsheetsScope,
			SheetsBaseURL: DefaultSheetsBaseURL,
		},
		HTTP: HTTPConfig{
			RequestTimeout:       DefaultRequestTimeout,
			MaxResponseBodyBytes: DefaultMaxResponseBodyBytes,
		},
		Server: ServerConfig{
			Port:     DefaultPort,
			Greeting: DefaultGreeting,
			LogLevel: DefaultLogLevel,
		},
	}
}

// Validate checks process-level settings only. Credential and sheet values
// are checked per logging attempt so that a missing value never prevents the
// handler from serving.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("core: config is required")
	}
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if err := validateEndpoint("google.token_url", c.Google.TokenURL); err != nil {
		return err
	}
	if err := validateEndpoint("google.sheets_base_url", c.Google.SheetsBaseURL); err != nil {
		return err
	}
	if strings.TrimSpace(c.Google.Scope) == "" {
		return fmt.Errorf("core: google.scope is required")
	}
	if c.HTTP.RequestTimeout < 0 {
		return fmt.Errorf("core: http.request_timeout must not be negative")
	}
	if strings.TrimSpace(c.Server.Port) == "" {
		return fmt.Errorf("core: server.port is required")
	}
	return nil
}

// ServiceCredential returns the credential carried by the config.
func (c Config) ServiceCredential() ServiceCredential {
	return ServiceCredential{
		ClientEmail:   c.Credential.ClientEmail,
		PrivateKeyPEM: c.Credential.PrivateKey,
	}.Normalized()
}

// Audience is the assertion aud claim. It defaults to the token endpoint.
func (c Config) Audience() string {
	if audience := strings.TrimSpace(c.Google.Audience); audience != "" {
		return audience
	}
	if tokenURL := strings.TrimSpace(c.Google.TokenURL); tokenURL != "" {
		return tokenURL
	}
	return DefaultAudience
}

func validateEndpoint(name string, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fmt.Errorf("core: %s is required", name)
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("core: %s is invalid: %w", name, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("core: %s must be an http(s) url", name)
	}
	if parsed.Host == "" {
		return fmt.Errorf("core: %s must include a host", name)
	}
	return nil
}
