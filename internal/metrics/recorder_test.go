package metrics

import "time"

// testRecorder counts calls; other packages' tests use their own fakes.
type testRecorder struct {
	resolves      map[ResultLabel]int
	cacheLookups  map[string]int
	invalidations map[string]int
}

func newTestRecorder() *testRecorder {
	return &testRecorder{resolves: map[ResultLabel]int{}, cacheLookups: map[string]int{}, invalidations: map[string]int{}}
}

func (t *testRecorder) ObserveResolveDuration(result ResultLabel, _ time.Duration) {
	t.resolves[result]++
}
func (t *testRecorder) ObserveListDuration(string, time.Duration) {}
func (t *testRecorder) SetListedDocuments(string, int)            {}
func (t *testRecorder) IncCacheLookup(kind string, hit bool) {
	if hit {
		t.cacheLookups[kind+":hit"]++
		return
	}
	t.cacheLookups[kind+":miss"]++
}
func (t *testRecorder) IncCacheInvalidation(source string)            { t.invalidations[source]++ }
func (t *testRecorder) IncSecurityIssue(string)                       {}
func (t *testRecorder) ObserveHTTPRequest(string, int, time.Duration) {}

var (
	_ Recorder = (*testRecorder)(nil)
	_ Recorder = NoopRecorder{}
	_ Recorder = (*PrometheusRecorder)(nil)
)
