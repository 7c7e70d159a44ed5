package monitor

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/tsfdsong/snowflake/app/pkg/snowflake"
)

var (
	// 请求指标
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "idgen_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"route", "code"})

	requestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "idgen_http_request_latency_seconds",
		Help:    "HTTP request latency distribution",
		Buckets: prometheus.ExponentialBuckets(0.00001, 2, 16), // 10微秒到0.3秒
	}, []string{"route"})

	// 批量发号大小
	batchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "idgen_batch_size",
		Help:    "Batch issuance size distribution",
		Buckets: prometheus.ExponentialBuckets(1, 2, 13), // 1到4096
	})
)

// RecordRequest 记录请求
func RecordRequest(route string, code int, latency time.Duration) {
	requestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
	requestLatency.WithLabelValues(route).Observe(latency.Seconds())
}

// RecordBatch 记录批量发号
func RecordBatch(count int) {
	batchSize.Observe(float64(count))
}

// StatsSource 生成器计数来源
type StatsSource interface {
	Stats() snowflake.Stats
	DatacenterID() int64
	MachineID() int64
}

// GeneratorCollector 把生成器累计计数导出为 Prometheus counter
type GeneratorCollector struct {
	src StatsSource

	issued        *prometheus.Desc
	casRetries    *prometheus.Desc
	sequenceWaits *prometheus.Desc
	clockErrors   *prometheus.Desc
}

func NewGeneratorCollector(src StatsSource) *GeneratorCollector {
	labels := prometheus.Labels{
		"datacenter": strconv.FormatInt(src.DatacenterID(), 10),
		"machine":    strconv.FormatInt(src.MachineID(), 10),
	}
	return &GeneratorCollector{
		src: src,
		issued: prometheus.NewDesc("idgen_ids_issued_total",
			"Total number of ids issued", nil, labels),
		casRetries: prometheus.NewDesc("idgen_cas_retries_total",
			"Total number of lost compare-and-swap races", nil, labels),
		sequenceWaits: prometheus.NewDesc("idgen_sequence_waits_total",
			"Total number of waits for the next millisecond after sequence exhaustion", nil, labels),
		clockErrors: prometheus.NewDesc("idgen_clock_errors_total",
			"Total number of clock errors returned to callers", nil, labels),
	}
}

func (c *GeneratorCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.issued
	ch <- c.casRetries
	ch <- c.sequenceWaits
	ch <- c.clockErrors
}

func (c *GeneratorCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.src.Stats()
	ch <- prometheus.MustNewConstMetric(c.issued, prometheus.CounterValue, float64(stats.Issued))
	ch <- prometheus.MustNewConstMetric(c.casRetries, prometheus.CounterValue, float64(stats.CASRetries))
	ch <- prometheus.MustNewConstMetric(c.sequenceWaits, prometheus.CounterValue, float64(stats.SequenceWaits))
	ch <- prometheus.MustNewConstMetric(c.clockErrors, prometheus.CounterValue, float64(stats.ClockErrors))
}
