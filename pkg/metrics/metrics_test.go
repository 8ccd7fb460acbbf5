package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestInitMetrics_Idempotent(t *testing.T) {
	InitMetrics()
	first := LendingOperationsTotal
	InitMetrics()

	assert.Same(t, first, LendingOperationsTotal, "重复初始化不应重新注册")
}

func TestRecordLending(t *testing.T) {
	InitMetrics()
	counter := LendingOperationsTotal.WithLabelValues("borrow", "40001")
	before := testutil.ToFloat64(counter)

	RecordLending("borrow", "40001")
	RecordLending("borrow", "40001")

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
}

func TestObserveHTTP(t *testing.T) {
	InitMetrics()
	counter := HTTPRequestsTotal.WithLabelValues("POST", "/api/books/:id/borrow", "200")
	before := testutil.ToFloat64(counter)

	ObserveHTTP("POST", "/api/books/:id/borrow", "200", 15*time.Millisecond)

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
	assert.Equal(t, 1, testutil.CollectAndCount(HTTPRequestDuration, "http_request_duration_seconds"))
}

func TestInProgressGauge(t *testing.T) {
	InitMetrics()
	base := testutil.ToFloat64(HTTPRequestsInProgress)

	IncInProgress()
	IncInProgress()
	DecInProgress()

	assert.Equal(t, base+1, testutil.ToFloat64(HTTPRequestsInProgress))
}

func TestIncTransactionRetry(t *testing.T) {
	InitMetrics()
	counter := TransactionRetries.WithLabelValues("deadlock")
	before := testutil.ToFloat64(counter)

	IncTransactionRetry("deadlock")

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}
