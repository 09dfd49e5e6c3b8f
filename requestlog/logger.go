package requestlog

import (
	"context"
	"fmt"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/google/uuid"

	"github.com/goliatone/go-sheetlog/adapters/gologger"
	"github.com/goliatone/go-sheetlog/auth"
	"github.com/goliatone/go-sheetlog/core"
	"github.com/goliatone/go-sheetlog/sheets"
	"github.com/goliatone/go-sheetlog/transport"
)

const loggerName = "sheetlog.requestlog"

const (
	StageAssertion = "assertion"
	StageToken     = "token"
	StageAppend    = "append"
)

type AssertionSigner interface {
	CreateSignedAssertion(cred core.ServiceCredential, now time.Time) (auth.SignedAssertion, error)
}

type TokenExchanger interface {
	ExchangeForAccessToken(ctx context.Context, assertion auth.SignedAssertion) (auth.AccessToken, error)
}

type RowAppender interface {
	AppendRow(ctx context.Context, sheetID string, sheetName string, token auth.AccessToken, record core.LogRecord) error
}

// Logger appends one row per inbound request to the configured sheet. It
// holds no per-request state; every call signs a new assertion and fetches a
// new token.
type Logger struct {
	config    core.Config
	logger    core.Logger
	metrics   core.MetricsRecorder
	signer    AssertionSigner
	exchanger TokenExchanger
	appender  RowAppender
	now       func() time.Time
}

func New(cfg core.Config, opts ...Option) *Logger {
	builder := loggerBuilder{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := gologger.Resolve(loggerName, builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger(loggerName); named != nil {
			logger = glog.Ensure(named)
		}
	}
	if builder.metricsRecorder == nil {
		builder.metricsRecorder = core.NopMetricsRecorder{}
	}
	if builder.now == nil {
		builder.now = func() time.Time { return time.Now().UTC() }
	}
	if builder.transport == nil {
		rest := transport.NewRESTAdapter(nil, cfg.HTTP.RequestTimeout)
		if cfg.HTTP.MaxResponseBodyBytes > 0 {
			rest.MaxResponseBodyBytes = cfg.HTTP.MaxResponseBodyBytes
		}
		builder.transport = rest
	}
	if builder.signer == nil {
		builder.signer = auth.NewAssertionSigner(auth.AssertionSignerConfig{
			Scope:    cfg.Google.Scope,
			Audience: cfg.Audience(),
		})
	}
	if builder.exchanger == nil {
		builder.exchanger = auth.NewTokenExchangeClient(builder.transport, cfg.Google.TokenURL)
	}
	if builder.appender == nil {
		builder.appender = sheets.NewAppendClient(builder.transport, cfg.Google.SheetsBaseURL)
	}

	return &Logger{
		config:    cfg,
		logger:    logger,
		metrics:   builder.metricsRecorder,
		signer:    builder.signer,
		exchanger: builder.exchanger,
		appender:  builder.appender,
		now:       builder.now,
	}
}

// Task returns the unit of work to register with the host so the request is
// logged after the response has been sent.
func (l *Logger) Task(req core.InboundRequest) core.Task {
	return func(ctx context.Context) {
		l.LogRequest(ctx, req)
	}
}

// LogRequest runs the logging pipeline for req. It never returns an error and
// never panics; failures are reported to the diagnostic logger only.
func (l *Logger) LogRequest(ctx context.Context, req core.InboundRequest) {
	if l == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	startedAt := l.now()
	attemptID := uuid.NewString()

	var (
		stage string
		err   error
	)
	defer func() {
		if recovered := recover(); recovered != nil {
			err = core.InternalError(fmt.Errorf("panic: %v", recovered), "requestlog: pipeline panicked")
		}
		l.observe(ctx, attemptID, startedAt, req, stage, err)
	}()

	err = l.run(ctx, req, startedAt, &stage)
}

// run executes the pipeline steps in order. stage names the step in progress
// so a failure or panic can be attributed to it.
func (l *Logger) run(ctx context.Context, req core.InboundRequest, now time.Time, stage *string) error {
	*stage = StageAssertion
	assertion, err := l.signer.CreateSignedAssertion(l.config.ServiceCredential(), now)
	if err != nil {
		return err
	}
	*stage = StageToken
	token, err := l.exchanger.ExchangeForAccessToken(ctx, assertion)
	if err != nil {
		return err
	}
	*stage = StageAppend
	record := core.NewLogRecord(req, now)
	return l.appender.AppendRow(ctx, l.config.Sheet.ID, l.config.Sheet.Name, token, record)
}

func (l *Logger) observe(
	ctx context.Context,
	attemptID string,
	startedAt time.Time,
	req core.InboundRequest,
	stage string,
	err error,
) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	duration := l.now().Sub(startedAt)

	fields := map[string]any{
		"attempt_id":  attemptID,
		"method":      req.Method,
		"url":         core.RedactURL(req.URL),
		"status":      status,
		"duration_ms": duration.Milliseconds(),
	}
	tags := map[string]string{"status": status}
	if err != nil {
		for key, value := range core.ErrorFields(err) {
			fields[key] = value
		}
		fields["stage"] = stage
		tags["stage"] = stage
	}

	l.metrics.IncCounter(ctx, "sheetlog.append.total", 1, core.CloneTags(tags))
	l.metrics.ObserveHistogram(ctx, "sheetlog.append.duration_ms", float64(duration.Milliseconds()), core.CloneTags(tags))

	if err != nil {
		core.LogWithLevel(ctx, l.logger, "error", "failed to log request to google sheets", fields)
		return
	}
	core.LogWithLevel(ctx, l.logger, "debug", "request logged to google sheets", fields)
}
