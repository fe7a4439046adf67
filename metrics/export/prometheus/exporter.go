// Package prometheus renders authcore engine counters in Prometheus text
// exposition format without pulling in the client library.
package prometheus

import (
	"net/http"
	"strconv"
	"strings"

	authcore "github.com/authcore-io/authcore"
	"github.com/authcore-io/authcore/metrics/export/internaldefs"
)

type metricsSource interface {
	MetricsSnapshot() authcore.MetricsSnapshot
	AuditDropped() uint64
}

// Exporter renders engine metrics. It implements [http.Handler].
type Exporter struct {
	source metricsSource
}

// NewExporter creates an [Exporter] reading from the given engine.
func NewExporter(engine *authcore.Engine) *Exporter {
	return &Exporter{source: engine}
}

// Render produces the full exposition payload.
func (e *Exporter) Render() string {
	snapshot := e.source.MetricsSnapshot()

	var b strings.Builder
	for _, def := range internaldefs.CounterDefs {
		b.WriteString("# HELP " + def.Name + " " + def.Help + "\n")
		b.WriteString("# TYPE " + def.Name + " counter\n")
		b.WriteString(def.Name + " " + strconv.FormatUint(snapshot.Counters[def.ID], 10) + "\n")
	}

	b.WriteString("# HELP authcore_audit_dropped_total Audit events shed under backpressure.\n")
	b.WriteString("# TYPE authcore_audit_dropped_total counter\n")
	b.WriteString("authcore_audit_dropped_total " + strconv.FormatUint(e.source.AuditDropped(), 10) + "\n")

	return b.String()
}

// ServeHTTP implements [http.Handler].
func (e *Exporter) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	_, _ = w.Write([]byte(e.Render()))
}
