// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// AuthRecorder は認証フローのメトリクス記録インターフェース。
// サービス層から利用する。
type AuthRecorder interface {
	RecordLoginSuccess(outcome string)
	RecordLoginFailure(reason string)
	RecordTokenInvalid()
	RecordOAuthLatency(duration time.Duration)
}

// NopAuthRecorder は何も記録しないAuthRecorder実装。テスト用。
type NopAuthRecorder struct{}

func (NopAuthRecorder) RecordLoginSuccess(outcome string) {}

func (NopAuthRecorder) RecordLoginFailure(reason string) {}

func (NopAuthRecorder) RecordTokenInvalid() {}

func (NopAuthRecorder) RecordOAuthLatency(duration time.Duration) {}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	loginSuccess *prometheus.CounterVec
	loginFail    *prometheus.CounterVec
	tokenInvalid prometheus.Counter
	httpStatus   *prometheus.CounterVec
	oauthLatency prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		loginSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cinelog_login_success_total",
			Help: "ログイン成功の合計数（名寄せ結果別）",
		}, []string{"outcome"}),
		loginFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cinelog_login_fail_total",
			Help: "ログイン失敗の合計数（失敗段階別）",
		}, []string{"reason"}),
		tokenInvalid: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cinelog_token_invalid_total",
			Help: "無効セッショントークンの検証失敗数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cinelog_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		oauthLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cinelog_oauth_roundtrip_seconds",
			Help:    "OAuthトークン交換とプロフィール取得の合計レイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.loginSuccess,
		c.loginFail,
		c.tokenInvalid,
		c.httpStatus,
		c.oauthLatency,
	)

	return c
}

// RecordLoginSuccess はログイン成功を名寄せ結果別に記録する。
func (c *Collector) RecordLoginSuccess(outcome string) {
	c.loginSuccess.WithLabelValues(outcome).Inc()
}

// RecordLoginFailure はログイン失敗を失敗段階別に記録する。
func (c *Collector) RecordLoginFailure(reason string) {
	c.loginFail.WithLabelValues(reason).Inc()
}

// RecordTokenInvalid はトークン検証失敗を記録する。
func (c *Collector) RecordTokenInvalid() {
	c.tokenInvalid.Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordOAuthLatency はOAuth往復のレイテンシを記録する。
func (c *Collector) RecordOAuthLatency(duration time.Duration) {
	c.oauthLatency.Observe(duration.Seconds())
}

// compile-time interface check
var _ AuthRecorder = (*Collector)(nil)
var _ AuthRecorder = NopAuthRecorder{}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
