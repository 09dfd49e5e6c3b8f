package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"
	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/joho/godotenv"

	"github.com/goliatone/go-sheetlog/core"
	"github.com/goliatone/go-sheetlog/edge"
	"github.com/goliatone/go-sheetlog/requestlog"
)

const (
	functionName    = "SheetLog"
	envFunctionName = "FUNCTION_TARGET"
	drainTimeout    = 10 * time.Second
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := core.LoadConfig(ctx, core.Config{}, core.NewCfgxConfigProvider(core.NewEnvConfigLoader()), nil)
	if err != nil {
		bootLogger := newLogProvider(os.Stderr, core.DefaultLogLevel).GetLogger(core.DefaultServiceName)
		bootLogger.Fatal("failed to load config", "error", err)
	}

	provider := newLogProvider(os.Stderr, cfg.Server.LogLevel)
	logger := provider.GetLogger(cfg.ServiceName)

	runtime := newApp(cfg, provider)
	functions.HTTP(functionName, runtime.handler.ServeHTTP)
	if strings.TrimSpace(os.Getenv(envFunctionName)) == "" {
		_ = os.Setenv(envFunctionName, functionName)
	}

	errs := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Server.Port, "function", functionName)
		errs <- funcframework.Start(cfg.Server.Port)
	}()

	select {
	case err := <-errs:
		if err != nil {
			logger.Error("server stopped", "error", err)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received, draining background tasks")
	}

	// funcframework has no graceful stop, so the listener keeps answering until
	// the process exits. Requests served in that window still get the greeting
	// but their rows are dropped with a warning instead of being cut mid-write.
	runtime.tasks.Close()

	drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	if err := runtime.tasks.Wait(drainCtx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			logger.Warn("background tasks still running at shutdown", "timeout", drainTimeout.String())
		} else {
			logger.Error("background task drain failed", "error", err)
		}
	}
}

type app struct {
	handler *edge.Handler
	tasks   *edge.BackgroundTasks
}

// newLogProvider builds the JSON logger every component draws its named
// logger from.
func newLogProvider(w io.Writer, level string, opts ...glog.Option) *glog.BaseLogger {
	options := append([]glog.Option{
		glog.WithLoggerTypeJSON(),
		glog.WithWriter(w),
		glog.WithLevel(level),
	}, opts...)
	return glog.NewLogger(options...)
}

func newApp(cfg core.Config, provider core.LoggerProvider) app {
	edgeLogger := provider.GetLogger("sheetlog.edge")
	tasks := edge.NewBackgroundTasks(context.Background(), edgeLogger)
	logger := requestlog.New(cfg, requestlog.WithLoggerProvider(provider))
	return app{
		handler: edge.NewHandler(cfg.Server.Greeting, logger, tasks, edge.WithLogger(edgeLogger)),
		tasks:   tasks,
	}
}
