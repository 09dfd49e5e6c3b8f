package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-config/cfgx"
	opts "github.com/goliatone/go-options"
)

type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

type OptionsResolver interface {
	Resolve(defaults Config, loaded Config, runtime Config) (Config, error)
}

// LoadConfig resolves the effective configuration with the precedence
// defaults < loaded < runtime. Nil provider or resolver fall back to the
// cfgx provider and the go-options resolver.
func LoadConfig(ctx context.Context, runtime Config, provider ConfigProvider, resolver OptionsResolver) (Config, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if provider == nil {
		provider = NewCfgxConfigProvider(nil)
	}
	if resolver == nil {
		resolver = GoOptionsResolver{}
	}
	defaults := DefaultConfig()
	loaded, err := provider.Load(ctx, defaults)
	if err != nil {
		return Config{}, WrapConfigError(err, "core: load config")
	}
	resolved, err := resolver.Resolve(defaults, loaded, runtime)
	if err != nil {
		return Config{}, WrapConfigError(err, "core: resolve config")
	}
	return resolved, nil
}

type staticRawConfigLoader struct {
	Values map[string]any
}

func (l staticRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.Values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.Values))
	for key, value := range l.Values {
		out[key] = value
	}
	return out, nil
}

type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
}

func (p *CfgxConfigProvider) Load(ctx context.Context, defaults Config) (Config, error) {
	if p == nil {
		return defaults, nil
	}
	loader := p.Loader
	if loader == nil {
		loader = staticRawConfigLoader{}
	}
	raw, err := loader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}
	cfg, err := cfgx.Build[Config](raw,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type GoOptionsResolver struct{}

func (GoOptionsResolver) Resolve(defaults Config, loaded Config, runtime Config) (Config, error) {
	defaultLayer := configToLayerMap(defaults, true)
	loadedLayer := configToLayerMap(loaded, false)
	runtimeLayer := configToLayerMap(runtime, false)

	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("defaults", 0),
			defaultLayer,
			opts.WithSnapshotID[map[string]any]("defaults"),
		),
		opts.NewLayer(
			opts.NewScope("config", 10),
			loadedLayer,
			opts.WithSnapshotID[map[string]any]("config"),
		),
		opts.NewLayer(
			opts.NewScope("runtime", 20),
			runtimeLayer,
			opts.WithSnapshotID[map[string]any]("runtime"),
		),
	)
	if err != nil {
		return Config{}, fmt.Errorf("core: options stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return Config{}, fmt.Errorf("core: options merge failed: %w", err)
	}
	resolved, err := cfgx.Build[Config](merged.Value,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	if err := resolved.Validate(); err != nil {
		return Config{}, err
	}
	return resolved, nil
}

func configToLayerMap(cfg Config, includeZero bool) map[string]any {
	layer := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.ServiceName) != "" {
		layer["service_name"] = cfg.ServiceName
	}

	putSection(layer, "credential", includeZero, map[string]any{
		"client_email": cfg.Credential.ClientEmail,
		"private_key":  cfg.Credential.PrivateKey,
	})
	putSection(layer, "sheet", includeZero, map[string]any{
		"id":   cfg.Sheet.ID,
		"name": cfg.Sheet.Name,
	})
	putSection(layer, "google", includeZero, map[string]any{
		"token_url":       cfg.Google.TokenURL,
		"audience":        cfg.Google.Audience,
		"scope":           cfg.Google.Scope,
		"sheets_base_url": cfg.Google.SheetsBaseURL,
	})

	httpSection := map[string]any{}
	if includeZero || cfg.HTTP.RequestTimeout > 0 {
		httpSection["request_timeout"] = cfg.HTTP.RequestTimeout
	}
	if includeZero || cfg.HTTP.MaxResponseBodyBytes > 0 {
		httpSection["max_response_body_bytes"] = cfg.HTTP.MaxResponseBodyBytes
	}
	if len(httpSection) > 0 {
		layer["http"] = httpSection
	}

	putSection(layer, "server", includeZero, map[string]any{
		"port":      cfg.Server.Port,
		"greeting":  cfg.Server.Greeting,
		"log_level": cfg.Server.LogLevel,
	})
	return layer
}

// putSection copies the non-empty string values of a section into the layer.
// The private key keeps its whitespace; every other value is trimmed.
func putSection(layer map[string]any, name string, includeZero bool, values map[string]any) {
	section := map[string]any{}
	for key, value := range values {
		text, _ := value.(string)
		if !includeZero && strings.TrimSpace(text) == "" {
			continue
		}
		if key != "private_key" {
			text = strings.TrimSpace(text)
		}
		section[key] = text
	}
	if len(section) > 0 {
		layer[name] = section
	}
}
