// Package metrics provides observability hooks for configuration resolution.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so callers never need nil checks:
//
//	loader := config.NewLoader(config.WithRecorder(metrics.NewPrometheusRecorder(reg)))
//
// The command line has no long-running process to scrape, so PrometheusRecorder
// output is exported with WriteTextfile in the node_exporter textfile format.
package metrics
