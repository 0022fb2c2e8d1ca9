package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthCheckerBasic(t *testing.T) {
	hc := NewHealthChecker("almanac", "v1")
	hc.AddCheck("ok", func() CheckResult { return CheckResult{Status: StatusHealthy} })
	status := hc.CheckHealth()
	if status.Status != StatusHealthy {
		t.Fatalf("expected healthy")
	}
}

func TestHealthCheckerDegradedAndUnhealthy(t *testing.T) {
	hc := NewHealthChecker("almanac", "v1")
	hc.AddCheck("ok", func() CheckResult { return CheckResult{Status: StatusHealthy} })
	hc.AddCheck("slow", func() CheckResult { return CheckResult{Status: StatusDegraded} })
	if got := hc.CheckHealth().Status; got != StatusDegraded {
		t.Fatalf("expected degraded, got %s", got)
	}

	hc.AddCheck("down", func() CheckResult { return CheckResult{Status: StatusUnhealthy} })
	if got := hc.CheckHealth().Status; got != StatusUnhealthy {
		t.Fatalf("expected unhealthy, got %s", got)
	}
}

func TestHTTPServiceHealthCheck(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) }))
	defer s.Close()
	res := HTTPServiceHealthCheck("dispatcher", s.URL)()
	if res.Status != StatusHealthy {
		t.Fatalf("expected healthy")
	}
}

func TestKafkaHealthCheckNilClient(t *testing.T) {
	res := KafkaHealthCheck(nil)()
	if res.Status != StatusUnhealthy {
		t.Fatalf("expected unhealthy for nil client, got %q", res.Status)
	}
}

func TestConfigurationHealthCheck(t *testing.T) {
	res := ConfigurationHealthCheck(map[string]string{"DATABASE_URL": "postgres://x"})()
	if res.Status != StatusHealthy {
		t.Fatalf("expected healthy")
	}
	res = ConfigurationHealthCheck(map[string]string{"DATABASE_URL": ""})()
	if res.Status != StatusUnhealthy {
		t.Fatalf("expected unhealthy with missing config")
	}
}
