// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 認証・注文・問い合わせの結果ラベル。
const (
	ResultOK        = "ok"
	ResultDuplicate = "duplicate"
	ResultInvalid   = "invalid"
	ResultError     = "error"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ハンドラー、ミドルウェア、ワーカーから利用する。
type MetricsCollector interface {
	RecordRegistration(result string)
	RecordLogin(result string)
	RecordLogout()
	RecordOrder(result string)
	RecordContact(result string)
	RecordHTTPStatus(statusCode int)
	RecordHashLatency(duration time.Duration)
	RecordSessionsPurged(count int64)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	registrations  *prometheus.CounterVec
	logins         *prometheus.CounterVec
	logouts        prometheus.Counter
	orders         *prometheus.CounterVec
	contacts       *prometheus.CounterVec
	httpStatus     *prometheus.CounterVec
	hashLatency    prometheus.Histogram
	sessionsPurged prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chefsite_registrations_total",
			Help: "アカウント登録の試行数（結果別）",
		}, []string{"result"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chefsite_logins_total",
			Help: "ログインの試行数（結果別）",
		}, []string{"result"}),
		logouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chefsite_logouts_total",
			Help: "ログアウトの合計数",
		}),
		orders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chefsite_orders_total",
			Help: "注文の試行数（結果別）",
		}, []string{"result"}),
		contacts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chefsite_contact_messages_total",
			Help: "お問い合わせの試行数（結果別）",
		}, []string{"result"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chefsite_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		hashLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "chefsite_password_hash_seconds",
			Help:    "パスワードハッシュ生成・照合の所要時間（秒）",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		sessionsPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chefsite_sessions_purged_total",
			Help: "クリーンアップで削除された期限切れセッションの合計数",
		}),
	}

	reg.MustRegister(
		c.registrations,
		c.logins,
		c.logouts,
		c.orders,
		c.contacts,
		c.httpStatus,
		c.hashLatency,
		c.sessionsPurged,
	)

	return c
}

// RecordRegistration はアカウント登録の結果を記録する。
func (c *Collector) RecordRegistration(result string) {
	c.registrations.WithLabelValues(result).Inc()
}

// RecordLogin はログインの結果を記録する。
func (c *Collector) RecordLogin(result string) {
	c.logins.WithLabelValues(result).Inc()
}

// RecordLogout はログアウトを記録する。
func (c *Collector) RecordLogout() {
	c.logouts.Inc()
}

// RecordOrder は注文の結果を記録する。
func (c *Collector) RecordOrder(result string) {
	c.orders.WithLabelValues(result).Inc()
}

// RecordContact はお問い合わせの結果を記録する。
func (c *Collector) RecordContact(result string) {
	c.contacts.WithLabelValues(result).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordHashLatency はパスワードハッシュ処理の所要時間を記録する。
func (c *Collector) RecordHashLatency(duration time.Duration) {
	c.hashLatency.Observe(duration.Seconds())
}

// RecordSessionsPurged は削除された期限切れセッション数を記録する。
func (c *Collector) RecordSessionsPurged(count int64) {
	c.sessionsPurged.Add(float64(count))
}

// Nop は何も記録しないMetricsCollector。メトリクス不要のテストやワーカー起動時に使う。
type Nop struct{}

func (Nop) RecordRegistration(string) {}
func (Nop) RecordLogin(string) {}
func (Nop) RecordLogout() {}
func (Nop) RecordOrder(string) {}
func (Nop) RecordContact(string) {}
func (Nop) RecordHTTPStatus(int) {}
func (Nop) RecordHashLatency(time.Duration) {}
func (Nop) RecordSessionsPurged(int64) {}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
