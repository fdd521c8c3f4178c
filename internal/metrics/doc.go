// Package metrics provides internal Prometheus collectors for the
// engine. This package is internal and should not be imported by
// external projects.
package metrics
