package edge

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-sheetlog/core"
)

// RequestTasker builds the background unit of work for an inbound request.
type RequestTasker interface {
	Task(req core.InboundRequest) core.Task
}

// Handler answers every request with the fixed greeting and hands a snapshot
// of the request to the background logger. The response never waits on, or
// observes the outcome of, the logging task.
type Handler struct {
	greeting string
	tasker   RequestTasker
	extender core.LifetimeExtender
	logger   core.Logger
	now      func() time.Time
}

type HandlerOption func(*Handler)

// WithLogger sets the logger used to report scheduling failures.
func WithLogger(logger core.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = logger
	}
}

func NewHandler(greeting string, tasker RequestTasker, extender core.LifetimeExtender, opts ...HandlerOption) *Handler {
	if greeting == "" {
		greeting = core.DefaultGreeting
	}
	h := &Handler{
		greeting: greeting,
		tasker:   tasker,
		extender: extender,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	h.logger = glog.Ensure(h.logger)
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.schedule(r)

	w.Header().Set(core.HeaderContentType, core.ContentTypeText)
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, h.greeting)
}

func (h *Handler) schedule(r *http.Request) {
	if h.tasker == nil || h.extender == nil || r == nil {
		return
	}
	var req core.InboundRequest
	defer func() {
		// scheduling must never break the response
		if recovered := recover(); recovered != nil {
			core.LogWithLevel(r.Context(), h.logger, "error", "failed to schedule request log task", map[string]any{
				"method": req.Method,
				"url":    core.RedactURL(req.URL),
				"panic":  fmt.Sprint(recovered),
			})
		}
	}()
	req = core.InboundRequest{
		Method:     r.Method,
		URL:        RequestURL(r),
		ReceivedAt: h.now(),
	}
	task := h.tasker.Task(req)
	if task != nil {
		h.extender.WaitUntil(task)
	}
}

// RequestURL reconstructs the absolute URL the client requested.
func RequestURL(r *http.Request) string {
	if r == nil || r.URL == nil {
		return ""
	}
	if r.URL.IsAbs() {
		return r.URL.String()
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")); forwarded != "" {
		scheme = strings.ToLower(strings.TrimSpace(strings.Split(forwarded, ",")[0]))
	}
	host := r.Host
	if host == "" {
		host = r.URL.Host
	}
	requestURI := r.RequestURI
	if requestURI == "" {
		requestURI = r.URL.RequestURI()
	}
	return scheme + "://" + host + requestURI
}
