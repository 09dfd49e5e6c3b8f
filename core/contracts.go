package core

import (
	"context"

	glog "github.com/goliatone/go-logger/glog"
)

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type TransportRequest struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
}

type TransportResponse struct {
	StatusCode int
	Body       []byte
}

func (r TransportResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

type TransportAdapter interface {
	Kind() string
	Do(ctx context.Context, req TransportRequest) (TransportResponse, error)
}

// Task is a unit of background work registered with the host.
type Task func(ctx context.Context)

// LifetimeExtender is the host hook that keeps the process serving a request
// alive until a background task registered through it has settled.
type LifetimeExtender interface {
	WaitUntil(task Task)
}
