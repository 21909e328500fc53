// Package metrics records document resolution, cache and HTTP metrics.
//
// Components receive a Recorder and default to NoopRecorder, so metrics can
// be switched on without nil checks anywhere in the pipeline:
//
//	resolver := docs.New(cfg, docs.WithRecorder(metrics.NewPrometheusRecorder(reg)))
//
// PrometheusRecorder registers its collectors on the given registry and
// HTTPHandler serves that registry in the Prometheus exposition format.
package metrics
