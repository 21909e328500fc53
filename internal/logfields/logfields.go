package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeySlug       = "slug"
	KeyVersion    = "version"
	KeyLocale     = "locale"
	KeyPath       = "path"
	KeyFile       = "file"
	KeyIssues     = "issues"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeyRequestID  = "request_id"
	KeyMethod     = "method"
	KeyStatus     = "status"
	KeyCacheKind  = "cache_kind"
	KeySubject    = "subject"
	KeyJob        = "job"
	KeyError      = "error"
	KeyUserAgent  = "user_agent"
	KeyRemoteAddr = "remote_addr"
	KeyRoute      = "route"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Slug(s string) slog.Attr       { return slog.String(KeySlug, s) }
func Version(v string) slog.Attr    { return slog.String(KeyVersion, v) }
func Locale(l string) slog.Attr     { return slog.String(KeyLocale, l) }
func Path(p string) slog.Attr       { return slog.String(KeyPath, p) }
func File(f string) slog.Attr       { return slog.String(KeyFile, f) }
func Issues(n int) slog.Attr        { return slog.Int(KeyIssues, n) }
func Count(n int) slog.Attr         { return slog.Int(KeyCount, n) }
func RequestID(id string) slog.Attr { return slog.String(KeyRequestID, id) }
func Method(m string) slog.Attr     { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr     { return slog.Int(KeyStatus, code) }
func CacheKind(k string) slog.Attr  { return slog.String(KeyCacheKind, k) }
func Subject(s string) slog.Attr    { return slog.String(KeySubject, s) }
func Job(name string) slog.Attr     { return slog.String(KeyJob, name) }
func UserAgent(ua string) slog.Attr { return slog.String(KeyUserAgent, ua) }
func RemoteAddr(a string) slog.Attr { return slog.String(KeyRemoteAddr, a) }
func Route(r string) slog.Attr      { return slog.String(KeyRoute, r) }

// Duration reports d in fractional milliseconds.
func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
