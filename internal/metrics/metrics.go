// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hitoshi/contesthub/internal/reminder"
)

// Collector はコンテスト一覧の取得とリマインダースイープのメトリクスを収集する。
type Collector struct {
	listingFetchSuccess prometheus.Counter
	listingFetchFail    prometheus.Counter
	listingFetchLatency prometheus.Histogram
	listingContests     prometheus.Gauge

	sweepRuns      prometheus.Counter
	sweepPending   prometheus.Gauge
	sweepReminders *prometheus.CounterVec
	sweepDuration  prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		listingFetchSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "contesthub_listing_fetch_success_total",
			Help: "コンテスト一覧取得成功の合計数",
		}),
		listingFetchFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "contesthub_listing_fetch_fail_total",
			Help: "コンテスト一覧取得失敗の合計数",
		}),
		listingFetchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "contesthub_listing_fetch_latency_seconds",
			Help:    "コンテスト一覧取得のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		listingContests: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "contesthub_listing_contests",
			Help: "直近の取得で正規化できたコンテスト数",
		}),
		sweepRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "contesthub_sweep_runs_total",
			Help: "リマインダースイープの実行回数",
		}),
		sweepPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "contesthub_sweep_pending_reminders",
			Help: "直近のスイープで読み込んだ未送信リマインダー数",
		}),
		sweepReminders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "contesthub_sweep_reminders_total",
			Help: "スイープで処理したリマインダー数（結果別）",
		}, []string{"result"}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "contesthub_sweep_duration_seconds",
			Help:    "リマインダースイープの所要時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.listingFetchSuccess,
		c.listingFetchFail,
		c.listingFetchLatency,
		c.listingContests,
		c.sweepRuns,
		c.sweepPending,
		c.sweepReminders,
		c.sweepDuration,
	)

	return c
}

// RecordListingFetchSuccess は一覧取得の成功と件数、所要時間を記録する。
func (c *Collector) RecordListingFetchSuccess(count int, duration time.Duration) {
	c.listingFetchSuccess.Inc()
	c.listingContests.Set(float64(count))
	c.listingFetchLatency.Observe(duration.Seconds())
}

// RecordListingFetchFailure は一覧取得の失敗を記録する。
func (c *Collector) RecordListingFetchFailure() {
	c.listingFetchFail.Inc()
}

// RecordSweep はスイープ1回分の結果を記録する。
func (c *Collector) RecordSweep(result reminder.SweepResult, duration time.Duration) {
	c.sweepRuns.Inc()
	c.sweepPending.Set(float64(result.Pending))
	c.sweepReminders.WithLabelValues("sent").Add(float64(result.Sent))
	c.sweepReminders.WithLabelValues("failed").Add(float64(result.Failed))
	c.sweepReminders.WithLabelValues("skipped").Add(float64(result.Skipped))
	c.sweepDuration.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// compile-time interface check
var _ reminder.SweepMetrics = (*Collector)(nil)
