package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func scrape(t *testing.T, h http.Handler, path string) (int, string) {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	body, _ := io.ReadAll(w.Result().Body)
	return w.Code, string(body)
}

// TestHandler_ExposesRecordedMetrics は記録したメトリクスがスクレイプ結果に含まれることを検証する。
func TestHandler_ExposesRecordedMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordLogin(ResultOK)
	c.RecordOrder(ResultOK)
	c.RecordHashLatency(50 * time.Millisecond)

	status, body := scrape(t, Handler(reg), "/")

	if status != http.StatusOK {
		t.Fatalf("status = %d, want %d", status, http.StatusOK)
	}
	for _, name := range []string{
		`chefsite_logins_total{result="ok"} 1`,
		`chefsite_orders_total{result="ok"} 1`,
		"chefsite_password_hash_seconds_count 1",
	} {
		if !strings.Contains(body, name) {
			t.Errorf("response should contain %q\n%s", name, body)
		}
	}
}

// TestHandler_EmptyRegistry_StillServes は何も記録していない状態でもスクレイプが成功することを検証する。
func TestHandler_EmptyRegistry_StillServes(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg)

	status, body := scrape(t, Handler(reg), "/metrics")
	if status != http.StatusOK {
		t.Fatalf("status = %d, want %d", status, http.StatusOK)
	}
	if !strings.Contains(body, "chefsite_password_hash_seconds") {
		t.Errorf("histogram should be exposed before any observation\n%s", body)
	}
}
