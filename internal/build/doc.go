// Package build runs every pipeline of a project configuration.
//
// All execution paths (CLI build, watch loop, tests) route through
// BuildService so they share one runner and therefore one outcome cache.
package build
