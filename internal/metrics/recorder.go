package metrics

import "time"

// ResultLabel enumerates document resolution outcomes.
type ResultLabel string

const (
	ResultFound    ResultLabel = "found"
	ResultNotFound ResultLabel = "not_found"
	ResultRejected ResultLabel = "rejected"
	ResultCanceled ResultLabel = "canceled"
)

// Recorder defines observability hooks for the docs pipeline.
type Recorder interface {
	ObserveResolveDuration(result ResultLabel, d time.Duration)
	ObserveListDuration(version string, d time.Duration)
	SetListedDocuments(version string, n int)
	IncCacheLookup(kind string, hit bool)
	IncCacheInvalidation(source string)
	IncSecurityIssue(rule string)
	ObserveHTTPRequest(route string, status int, d time.Duration)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not
// configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveResolveDuration(ResultLabel, time.Duration) {}
func (NoopRecorder) ObserveListDuration(string, time.Duration)         {}
func (NoopRecorder) SetListedDocuments(string, int)                    {}
func (NoopRecorder) IncCacheLookup(string, bool)                       {}
func (NoopRecorder) IncCacheInvalidation(string)                       {}
func (NoopRecorder) IncSecurityIssue(string)                           {}
func (NoopRecorder) ObserveHTTPRequest(string, int, time.Duration)     {}
