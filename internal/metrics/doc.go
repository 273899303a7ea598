// Package metrics provides observability hooks for pipeline runs.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so nothing needs a nil check:
//
//	p := pipeline.New(reg, pipeline.WithRecorder(metrics.NewPrometheusRecorder(promReg)))
//
// The build command writes the registry to a node_exporter textfile after a
// run; the watch command serves it over HTTP.
package metrics
