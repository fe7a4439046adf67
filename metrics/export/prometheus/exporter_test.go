package prometheus

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	authcore "github.com/authcore-io/authcore"
)

type stubSource struct {
	snapshot authcore.MetricsSnapshot
	dropped  uint64
}

func (s *stubSource) MetricsSnapshot() authcore.MetricsSnapshot { return s.snapshot }
func (s *stubSource) AuditDropped() uint64                      { return s.dropped }

func TestRender(t *testing.T) {
	source := &stubSource{
		snapshot: authcore.MetricsSnapshot{Counters: map[authcore.MetricID]uint64{
			authcore.MetricSignInSuccess: 7,
			authcore.MetricSignOut:       2,
		}},
		dropped: 3,
	}
	exporter := &Exporter{source: source}

	out := exporter.Render()

	for _, line := range []string{
		"authcore_signin_success_total 7",
		"authcore_signout_total 2",
		"authcore_signup_success_total 0",
		"authcore_audit_dropped_total 3",
		"# TYPE authcore_signin_success_total counter",
	} {
		if !strings.Contains(out, line) {
			t.Fatalf("expected %q in output:\n%s", line, out)
		}
	}
}

func TestServeHTTP(t *testing.T) {
	exporter := &Exporter{source: &stubSource{
		snapshot: authcore.MetricsSnapshot{Counters: map[authcore.MetricID]uint64{}},
	}}

	rec := httptest.NewRecorder()
	exporter.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "authcore_signup_success_total 0") {
		t.Fatalf("unexpected body:\n%s", rec.Body.String())
	}
}
