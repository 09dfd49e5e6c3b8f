package requestlog

import (
	"time"

	"github.com/goliatone/go-sheetlog/core"
)

type Option func(*loggerBuilder)

type loggerBuilder struct {
	logger          core.Logger
	loggerProvider  core.LoggerProvider
	metricsRecorder core.MetricsRecorder
	transport       core.TransportAdapter
	signer          AssertionSigner
	exchanger       TokenExchanger
	appender        RowAppender
	now             func() time.Time
}

func WithLogger(logger core.Logger) Option {
	return func(b *loggerBuilder) {
		b.logger = logger
	}
}

func WithLoggerProvider(provider core.LoggerProvider) Option {
	return func(b *loggerBuilder) {
		b.loggerProvider = provider
	}
}

func WithMetricsRecorder(recorder core.MetricsRecorder) Option {
	return func(b *loggerBuilder) {
		b.metricsRecorder = recorder
	}
}

// WithTransport replaces the REST transport shared by the token exchange and
// append clients.
func WithTransport(transport core.TransportAdapter) Option {
	return func(b *loggerBuilder) {
		b.transport = transport
	}
}

func WithAssertionSigner(signer AssertionSigner) Option {
	return func(b *loggerBuilder) {
		b.signer = signer
	}
}

func WithTokenExchanger(exchanger TokenExchanger) Option {
	return func(b *loggerBuilder) {
		b.exchanger = exchanger
	}
}

func WithRowAppender(appender RowAppender) Option {
	return func(b *loggerBuilder) {
		b.appender = appender
	}
}

func WithClock(now func() time.Time) Option {
	return func(b *loggerBuilder) {
		b.now = now
	}
}
