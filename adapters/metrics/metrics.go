// prometheus 指標，同步與回調的結果都在這裡記錄
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"idbridge/callback"
	"idbridge/directory"
)

const namespace = "idbridge"

type Metrics struct {
	syncTotal       *prometheus.CounterVec
	syncUsers       *prometheus.CounterVec
	syncDuration    *prometheus.HistogramVec
	callbackTotal   *prometheus.CounterVec
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

var (
	_ directory.IMetrics = (*Metrics)(nil)
	_ callback.IMetrics  = (*Metrics)(nil)
)

// New 建立並註冊指標，reg 為 nil 時使用 prometheus.DefaultRegisterer，重複註冊不視為錯誤
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		syncTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "directory_sync_total",
			Help:      "全量同步次數，依結果區分",
		}, []string{"source", "result"}),
		syncUsers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "directory_synced_users_total",
			Help:      "全量同步成功寫入的成員數",
		}, []string{"source"}),
		syncDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "directory_sync_duration_seconds",
			Help:      "全量同步耗時",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}, []string{"source"}),
		callbackTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "callback_events_total",
			Help:      "回調請求數，依終止狀態與事件分類區分",
		}, []string{"state", "category"}),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP 請求數",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP 請求耗時",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	collectors := []prometheus.Collector{
		m.syncTotal, m.syncUsers, m.syncDuration, m.callbackTotal, m.requestsTotal, m.requestDuration,
	}
	for i, c := range collectors {
		registered, err := register(reg, c)
		if err != nil {
			return nil, err
		}
		collectors[i] = registered
	}
	m.syncTotal = collectors[0].(*prometheus.CounterVec)
	m.syncUsers = collectors[1].(*prometheus.CounterVec)
	m.syncDuration = collectors[2].(*prometheus.HistogramVec)
	m.callbackTotal = collectors[3].(*prometheus.CounterVec)
	m.requestsTotal = collectors[4].(*prometheus.CounterVec)
	m.requestDuration = collectors[5].(*prometheus.HistogramVec)
	return m, nil
}

// register 已註冊時沿用既有的 collector
func register(reg prometheus.Registerer, c prometheus.Collector) (prometheus.Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector, nil
		}
		return nil, err
	}
	return c, nil
}

func (m *Metrics) ObserveSync(source string, synced int, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.syncTotal.WithLabelValues(source, result).Inc()
	m.syncUsers.WithLabelValues(source).Add(float64(synced))
	m.syncDuration.WithLabelValues(source).Observe(duration.Seconds())
}

func (m *Metrics) ObserveCallback(state callback.State, category string) {
	m.callbackTotal.WithLabelValues(state.String(), category).Inc()
}

// GinMiddleware 記錄每個請求，route 使用註冊時的路徑樣板避免高基數
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
