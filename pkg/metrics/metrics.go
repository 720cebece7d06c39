package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Provider 拉取延迟（毫秒）
	ProviderFetchLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "provider_fetch_latency_ms",
			Help:    "External provider fetch latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"source", "status"},
	)

	// 状态读写延迟（秒）
	StateOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "review_state_op_duration_seconds",
			Help:    "Review state load/save duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"operation", "namespace"},
	)

	// HTTP 请求延迟（秒）
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// 审阅操作计数
	ReviewMutationCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_mutation_count",
			Help: "Total number of review state mutations",
		},
		[]string{"operation", "namespace", "status"}, // operation: mark, track, resolve
	)

	// 各分类待处理数量
	NeedsReviewGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "needs_review_items",
			Help: "Items currently awaiting review per category",
		},
		[]string{"category"},
	)

	// 通知投递计数
	NotificationDeliveryCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_delivery_count",
			Help: "Total number of notifier webhook deliveries",
		},
		[]string{"event", "status"}, // status: success, failed, skipped
	)

	// 慢查询计数
	SlowQueryCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_slow_query_count",
			Help: "Total number of database queries exceeding the slow threshold",
		},
		[]string{"command"},
	)
)

// RecordProviderFetchLatency 记录 provider 拉取延迟
func RecordProviderFetchLatency(source, status string, duration time.Duration) {
	ProviderFetchLatency.WithLabelValues(source, status).Observe(float64(duration.Milliseconds()))
}

// RecordStateOpDuration 记录状态读写延迟
func RecordStateOpDuration(operation, namespace string, duration time.Duration) {
	StateOpDuration.WithLabelValues(operation, namespace).Observe(duration.Seconds())
}

// RecordHTTPRequestDuration 记录 HTTP 请求延迟
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// IncrementReviewMutation 增加审阅操作计数
func IncrementReviewMutation(operation, namespace, status string) {
	ReviewMutationCount.WithLabelValues(operation, namespace, status).Inc()
}

// SetNeedsReview 更新分类待处理数量
func SetNeedsReview(category string, count int) {
	NeedsReviewGauge.WithLabelValues(category).Set(float64(count))
}

// IncrementNotificationDelivery 增加通知投递计数
func IncrementNotificationDelivery(event, status string) {
	NotificationDeliveryCount.WithLabelValues(event, status).Inc()
}

// IncrementSlowQuery 增加慢查询计数
func IncrementSlowQuery(command string) {
	SlowQueryCount.WithLabelValues(command).Inc()
}
