// Package internaldefs exposes stable metric name definitions shared by the
// exporter implementations, so the Prometheus and OTel exporters always agree
// on metric names.
package internaldefs
