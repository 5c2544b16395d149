package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "clubsocial"

var (
	postsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "posts_generated_total",
			Help:      "Auto-generation outcomes per source type",
		},
		[]string{"source_type", "outcome"},
	)

	publishAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_attempts_total",
			Help:      "Per-platform publish attempts by outcome",
		},
		[]string{"platform", "outcome"},
	)

	publishDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "publish_duration_seconds",
			Help:      "Per-platform publish latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"platform"},
	)

	postsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "posts_publish_total",
			Help:      "Publish calls by resulting post status",
		},
		[]string{"status"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)
)

func init() {
	prometheus.MustRegister(postsGenerated, publishAttempts, publishDuration, postsPublished, httpRequests)
}

// 生成结果
const (
	OutcomeCreated = "created"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// RecordGenerated 记录自动生成结果
func RecordGenerated(sourceType, outcome string) {
	postsGenerated.WithLabelValues(sourceType, outcome).Inc()
}

// RecordPublishAttempt 记录单平台发布结果与耗时
func RecordPublishAttempt(platform string, success bool, elapsed time.Duration) {
	outcome := OutcomeFailure
	if success {
		outcome = OutcomeSuccess
	}
	publishAttempts.WithLabelValues(platform, outcome).Inc()
	publishDuration.WithLabelValues(platform).Observe(elapsed.Seconds())
}

// RecordPublished 记录一次发布后的帖子状态
func RecordPublished(status string) {
	postsPublished.WithLabelValues(status).Inc()
}

// Middleware 记录 HTTP 请求数
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, endpoint, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// Handler 暴露 /metrics
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
