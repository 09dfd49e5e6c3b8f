package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-sheetlog/core"
)

func TestNewApp_ServesGreetingAndLogsFailureInBackground(t *testing.T) {
	var logs bytes.Buffer
	cfg := core.DefaultConfig()
	cfg.Server.Greeting = "hello"

	app := newApp(cfg, newLogProvider(&logs, "debug"))

	rec := httptest.NewRecorder()
	app.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/anything", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "hello" {
		t.Fatalf("expected greeting, got %d %q", rec.Code, rec.Body.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := app.tasks.Wait(ctx); err != nil {
		t.Fatalf("wait: %v", err)
	}
	output := logs.String()
	if !strings.Contains(output, "failed to log request to google sheets") {
		t.Fatalf("expected background failure to be logged, got %q", output)
	}
	if !strings.Contains(output, core.ErrorConfig) {
		t.Fatalf("expected config error text code in log, got %q", output)
	}
}

func TestNewApp_RejectsTasksAfterClose(t *testing.T) {
	var logs bytes.Buffer
	app := newApp(core.DefaultConfig(), newLogProvider(&logs, "debug"))
	app.tasks.Close()

	rec := httptest.NewRecorder()
	app.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/late", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != core.DefaultGreeting {
		t.Fatalf("expected greeting during shutdown, got %d %q", rec.Code, rec.Body.String())
	}
	if err := app.tasks.Wait(context.Background()); err != nil {
		t.Fatalf("wait: %v", err)
	}
	output := logs.String()
	if !strings.Contains(output, "background task rejected after shutdown") {
		t.Fatalf("expected rejected task warning, got %q", output)
	}
	if strings.Contains(output, "failed to log request to google sheets") {
		t.Fatalf("expected rejected task not to run, got %q", output)
	}
}

func TestNewLogProvider_WritesNamedJSONRecords(t *testing.T) {
	var buf bytes.Buffer
	provider := newLogProvider(&buf, "debug")

	logger := provider.GetLogger("sheetlog.requestlog")
	if _, ok := logger.(glog.FieldsLogger); !ok {
		t.Fatalf("expected provider logger to support fields, got %T", logger)
	}
	core.LogWithLevel(context.Background(), logger, "error", "append failed", map[string]any{
		"status":        "failure",
		"stage":         "token",
		"client_secret": "hunter2",
	})

	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &record); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if record["msg"] != "append failed" || record["level"] != "error" {
		t.Fatalf("unexpected record header: %#v", record)
	}
	if record["logger"] != "sheetlog.requestlog" {
		t.Fatalf("expected logger name attribute, got %#v", record["logger"])
	}
	if record["status"] != "failure" || record["stage"] != "token" {
		t.Fatalf("expected fields on record, got %#v", record)
	}
	if record["client_secret"] != core.RedactedValue {
		t.Fatalf("expected secret to be redacted, got %#v", record["client_secret"])
	}
}

func TestNewLogProvider_HonorsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogProvider(&buf, "warn").GetLogger("sheetlog")

	logger.Debug("hidden")
	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected debug and info suppressed at warn level, got %q", buf.String())
	}
	logger.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("expected warn record, got %q", buf.String())
	}
}

func TestNewLogProvider_FatalUsesExitFunc(t *testing.T) {
	var buf bytes.Buffer
	code := -1
	logger := newLogProvider(&buf, "info", glog.WithExitFunc(func(c int) { code = c })).GetLogger("sheetlog")

	logger.Fatal("failed to load config")
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(buf.String(), "failed to load config") {
		t.Fatalf("expected fatal message written, got %q", buf.String())
	}
}
