package metrics

import (
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "mdxsite"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	resolveDuration *prom.HistogramVec
	listDuration    *prom.HistogramVec
	listedDocs      *prom.GaugeVec
	cacheLookups    *prom.CounterVec
	invalidations   *prom.CounterVec
	securityIssues  *prom.CounterVec
	httpDuration    *prom.HistogramVec
}

// NewPrometheusRecorder constructs the collectors and registers them on reg,
// or on a fresh registry when reg is nil.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		resolveDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "resolve_duration_seconds",
			Help:      "Duration of single document resolutions by outcome",
			Buckets:   prom.DefBuckets,
		}, []string{"result"}),
		listDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "list_duration_seconds",
			Help:      "Duration of version listings",
			Buckets:   prom.DefBuckets,
		}, []string{"version"}),
		listedDocs: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "listed_documents",
			Help:      "Documents returned by the last listing of a version",
		}, []string{"version"}),
		cacheLookups: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by cache kind and result",
		}, []string{"kind", "result"}),
		invalidations: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "cache_invalidations_total",
			Help:      "Cache invalidations by source",
		}, []string{"source"}),
		securityIssues: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "security_issues_total",
			Help:      "Content security findings by rule",
		}, []string{"rule"}),
		httpDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "API request duration by route and status",
			Buckets:   prom.DefBuckets,
		}, []string{"route", "status"}),
	}
	reg.MustRegister(pr.resolveDuration, pr.listDuration, pr.listedDocs, pr.cacheLookups,
		pr.invalidations, pr.securityIssues, pr.httpDuration)
	return pr
}

func (p *PrometheusRecorder) ObserveResolveDuration(result ResultLabel, d time.Duration) {
	if p == nil {
		return
	}
	p.resolveDuration.WithLabelValues(string(result)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveListDuration(version string, d time.Duration) {
	if p == nil {
		return
	}
	p.listDuration.WithLabelValues(version).Observe(d.Seconds())
}

func (p *PrometheusRecorder) SetListedDocuments(version string, n int) {
	if p == nil {
		return
	}
	p.listedDocs.WithLabelValues(version).Set(float64(n))
}

func (p *PrometheusRecorder) IncCacheLookup(kind string, hit bool) {
	if p == nil {
		return
	}
	res := "miss"
	if hit {
		res = "hit"
	}
	p.cacheLookups.WithLabelValues(kind, res).Inc()
}

func (p *PrometheusRecorder) IncCacheInvalidation(source string) {
	if p == nil {
		return
	}
	p.invalidations.WithLabelValues(source).Inc()
}

func (p *PrometheusRecorder) IncSecurityIssue(rule string) {
	if p == nil {
		return
	}
	p.securityIssues.WithLabelValues(rule).Inc()
}

func (p *PrometheusRecorder) ObserveHTTPRequest(route string, status int, d time.Duration) {
	if p == nil {
		return
	}
	p.httpDuration.WithLabelValues(route, strconv.Itoa(status)).Observe(d.Seconds())
}
