package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/goliatone/go-sheetlog/auth"
	"github.com/goliatone/go-sheetlog/core"
)

type appendRequest struct {
	Values         [][]any `json:"values"`
	MajorDimension string  `json:"majorDimension"`
}

type AppendClient struct {
	transport core.TransportAdapter
	baseURL   string
	signer    core.BearerTokenSigner
}

func NewAppendClient(transport core.TransportAdapter, baseURL string) *AppendClient {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = core.DefaultSheetsBaseURL
	}
	return &AppendClient{
		transport: transport,
		baseURL:   baseURL,
	}
}

// AppendRow appends record as a single row below the existing data of the
// sheet named sheetName.
func (c *AppendClient) AppendRow(ctx context.Context, sheetID string, sheetName string, token auth.AccessToken, record core.LogRecord) error {
	if c == nil || c.transport == nil {
		return core.ConfigError("sheets: append transport is not configured")
	}
	sheetID = strings.TrimSpace(sheetID)
	if sheetID == "" || strings.TrimSpace(sheetName) == "" {
		return core.ConfigError("missing sheet configuration")
	}

	body, err := EncodeAppendBody(record)
	if err != nil {
		return err
	}
	endpoint := c.AppendURL(sheetID, sheetName)
	req := core.TransportRequest{
		Method: http.MethodPost,
		URL:    endpoint,
		Headers: map[string]string{
			core.HeaderContentType: core.ContentTypeJSON,
		},
		Body: body,
	}
	if err := c.signer.Sign(&req, token.String()); err != nil {
		return err
	}

	res, err := c.transport.Do(ctx, req)
	if err != nil {
		if core.IsTransportError(err) || core.IsConfigError(err) {
			return err
		}
		return core.TransportError(err, "sheets: append request failed", map[string]any{"sheet_id": sheetID})
	}
	if !res.OK() {
		text := string(res.Body)
		return core.APIError(
			fmt.Sprintf("failed to append row: %d %s", res.StatusCode, text),
			res.StatusCode,
			text,
		)
	}
	return nil
}

// AppendURL is the values:append endpoint for the A1 anchor of sheetName.
func (c *AppendClient) AppendURL(sheetID string, sheetName string) string {
	baseURL := core.DefaultSheetsBaseURL
	if c != nil && c.baseURL != "" {
		baseURL = c.baseURL
	}
	return fmt.Sprintf(
		"%s/v4/spreadsheets/%s/values/%s%s?valueInputOption=%s",
		baseURL,
		url.PathEscape(strings.TrimSpace(sheetID)),
		EncodeURIComponent(sheetName),
		core.AppendRangeSuffix,
		core.AppendValueInputOption,
	)
}

// EncodeAppendBody serializes the append payload without HTML escaping so the
// URL column is written exactly as received.
func EncodeAppendBody(record core.LogRecord) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(appendRequest{
		Values:         [][]any{record.Values()},
		MajorDimension: core.AppendMajorDimension,
	}); err != nil {
		return nil, core.WrapConfigError(err, "sheets: encode append body")
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

var uriComponentReplacer = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EncodeURIComponent escapes s the way browsers' encodeURIComponent does:
// everything except letters, digits and -_.!~*'() is percent-encoded.
func EncodeURIComponent(s string) string {
	return uriComponentReplacer.Replace(url.QueryEscape(s))
}
