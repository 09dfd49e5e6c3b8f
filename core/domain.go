package core

import (
	"strings"
	"time"
)

// ServiceCredential identifies the service account used to sign assertions.
type ServiceCredential struct {
	ClientEmail   string
	PrivateKeyPEM string
}

func (c ServiceCredential) Normalized() ServiceCredential {
	return ServiceCredential{
		ClientEmail:   strings.TrimSpace(c.ClientEmail),
		PrivateKeyPEM: c.PrivateKeyPEM,
	}
}

// InboundRequest is the snapshot of an inbound request handed to the
// background logging task. It is taken before the response is written.
type InboundRequest struct {
	Method     string
	URL        string
	ReceivedAt time.Time
}

type LogRecord struct {
	Timestamp string
	Method    string
	URL       string
}

// NewLogRecord stamps the record with the time the request was received, or
// with fallback when the snapshot carries no receive time.
func NewLogRecord(req InboundRequest, fallback time.Time) LogRecord {
	at := req.ReceivedAt
	if at.IsZero() {
		at = fallback
	}
	return LogRecord{
		Timestamp: FormatLogTimestamp(at),
		Method:    req.Method,
		URL:       req.URL,
	}
}

// Values returns the row appended to the sheet, in column order.
func (r LogRecord) Values() []any {
	return []any{r.Timestamp, r.Method, r.URL}
}

func FormatLogTimestamp(at time.Time) string {
	return at.UTC().Format(LogTimestampLayout)
}
