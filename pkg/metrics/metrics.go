// Package metrics 定义服务的Prometheus指标
//
// 指标分三类：
//   - HTTP层：请求数、耗时、并发数
//   - 借阅业务：借还结果、行锁等待耗时、事务重试次数
//   - 基础设施：缓存命中、熔断器状态、消息发布
//
// 所有指标通过promauto注册到默认Registry，/metrics 端点由promhttp暴露。
// 辅助函数内部会确保指标已初始化，单元测试中无需显式调用InitMetrics。
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// HTTP指标
	HTTPRequestsTotal      *prometheus.CounterVec
	HTTPRequestDuration    *prometheus.HistogramVec
	HTTPRequestsInProgress prometheus.Gauge

	// 借阅业务指标
	LendingOperationsTotal *prometheus.CounterVec
	LedgerLockWaitDuration *prometheus.HistogramVec
	TransactionRetries     *prometheus.CounterVec

	// 基础设施指标
	CacheRequestsTotal     *prometheus.CounterVec
	CircuitBreakerState    *prometheus.GaugeVec
	MessagesPublishedTotal *prometheus.CounterVec
)

// InitMetrics 初始化所有指标（幂等）
func InitMetrics() {
	once.Do(func() {
		HTTPRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "HTTP请求总数",
			},
			[]string{"method", "path", "status"},
		)

		HTTPRequestDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP请求耗时（秒）",
				Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
			},
			[]string{"method", "path"},
		)

		HTTPRequestsInProgress = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_progress",
				Help: "正在处理的HTTP请求数",
			},
		)

		// operation: borrow | return | delete | adjust
		// result: success 或 错误码（如40001）
		LendingOperationsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lending_operations_total",
				Help: "借阅相关操作结果统计",
			},
			[]string{"operation", "result"},
		)

		// 行锁等待耗时，持续升高说明热点图书竞争激烈
		LedgerLockWaitDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledger_lock_wait_seconds",
				Help:    "SELECT FOR UPDATE 获取图书行锁的耗时（秒）",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"operation"},
		)

		TransactionRetries = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transaction_retries_total",
				Help: "因锁超时/死锁触发的事务重试次数",
			},
			[]string{"reason"},
		)

		CacheRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_requests_total",
				Help: "缓存访问统计",
			},
			[]string{"cache", "result"}, // result: hit | miss | error
		)

		// 0=关闭 1=半开 2=打开
		CircuitBreakerState = promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "circuit_breaker_state",
				Help: "熔断器状态",
			},
			[]string{"name"},
		)

		MessagesPublishedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "messages_published_total",
				Help: "发布到RabbitMQ的消息数",
			},
			[]string{"routing_key", "status"},
		)
	})
}

// ObserveHTTP 记录一次HTTP请求
func ObserveHTTP(method, path, status string, elapsed time.Duration) {
	InitMetrics()
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// RecordLending 记录借阅操作结果
func RecordLending(operation, result string) {
	InitMetrics()
	LendingOperationsTotal.WithLabelValues(operation, result).Inc()
}

// ObserveLockWait 记录获取行锁耗时
func ObserveLockWait(operation string, elapsed time.Duration) {
	InitMetrics()
	LedgerLockWaitDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// IncTransactionRetry 记录一次事务重试
func IncTransactionRetry(reason string) {
	InitMetrics()
	TransactionRetries.WithLabelValues(reason).Inc()
}

// RecordCache 记录缓存访问结果
func RecordCache(cache, result string) {
	InitMetrics()
	CacheRequestsTotal.WithLabelValues(cache, result).Inc()
}

// SetCircuitBreakerState 更新熔断器状态
func SetCircuitBreakerState(name string, state int) {
	InitMetrics()
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordPublish 记录消息发布结果
func RecordPublish(routingKey, status string) {
	InitMetrics()
	MessagesPublishedTotal.WithLabelValues(routingKey, status).Inc()
}

// IncInProgress / DecInProgress 维护在途请求数
func IncInProgress() {
	InitMetrics()
	HTTPRequestsInProgress.Inc()
}

func DecInProgress() {
	InitMetrics()
	HTTPRequestsInProgress.Dec()
}
