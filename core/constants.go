package core

import "time"

const (
	DefaultServiceName = "sheetlog"

	DefaultTokenURL      = "https://oauth2.googleapis.com/token"
	DefaultAudience      = DefaultTokenURL
	SpreadsheetsScope    = "https://www.googleapis.com/auth/spreadsheets"
	DefaultSheetsBaseURL = "https://sheets.googleapis.com"

	JWTBearerGrantType = "urn:ietf:params:oauth:grant-type:jwt-bearer"
	AssertionAlgorithm = "RS256"
	AssertionType      = "JWT"
	AssertionLifetime  = 3600 * time.Second

	AppendValueInputOption = "RAW"
	AppendMajorDimension   = "ROWS"
	AppendRangeSuffix      = "!A1:append"

	DefaultRequestTimeout             = 30 * time.Second
	DefaultMaxResponseBodyBytes int64 = 1 << 20 // 1 MiB

	DefaultLogLevel = "info"
	DefaultPort     = "8080"
	DefaultGreeting = "Hello from Cloudflare Worker! 👋"

	// LogTimestampLayout matches the ISO-8601 form with millisecond precision
	// written into the first column of each row.
	LogTimestampLayout = "2006-01-02T15:04:05.000Z"

	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	BearerPrefix        = "Bearer "
	ContentTypeForm     = "application/x-www-form-urlencoded"
	ContentTypeJSON     = "application/json"
	ContentTypeText     = "text/plain; charset=utf-8"
)
