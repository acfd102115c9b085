// Package metrics 提供 Prometheus 指标注册与暴露
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	pkglogger "github.com/wyfcoding/medsupply/pkg/logger"
)

// Metrics 门户指标集合
type Metrics struct {
	// HTTP 请求计数
	HTTPRequestsTotal *prometheus.CounterVec
	// HTTP 请求耗时
	HTTPRequestDuration prometheus.Histogram

	// 下单成功计数
	OrdersPlacedTotal prometheus.Counter
	// 下单行项目计数
	OrderItemsTotal prometheus.Counter
	// 库存不足拒绝计数
	StockRejectionsTotal prometheus.Counter

	// 邮件发送成功计数
	EmailsSentTotal prometheus.Counter
	// 邮件发送失败计数
	EmailsFailedTotal prometheus.Counter
}

// New 创建指标实例
func New(serviceName string) *Metrics {
	return &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medsupply",
			Subsystem: serviceName,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "medsupply",
			Subsystem: serviceName,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}),
		OrdersPlacedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "medsupply",
			Subsystem: serviceName,
			Name:      "orders_placed_total",
			Help:      "Total orders successfully placed",
		}),
		OrderItemsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "medsupply",
			Subsystem: serviceName,
			Name:      "order_items_total",
			Help:      "Total order line items created",
		}),
		StockRejectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "medsupply",
			Subsystem: serviceName,
			Name:      "stock_rejections_total",
			Help:      "Orders rejected for insufficient stock",
		}),
		EmailsSentTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "medsupply",
			Subsystem: serviceName,
			Name:      "emails_sent_total",
			Help:      "Order notification emails sent",
		}),
		EmailsFailedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "medsupply",
			Subsystem: serviceName,
			Name:      "emails_failed_total",
			Help:      "Order notification emails failed",
		}),
	}
}

// Register 注册全部指标
func (m *Metrics) Register() error {
	collectors := []prometheus.Collector{
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.OrdersPlacedTotal,
		m.OrderItemsTotal,
		m.StockRejectionsTotal,
		m.EmailsSentTotal,
		m.EmailsFailedTotal,
	}

	for _, c := range collectors {
		if err := prometheus.Register(c); err != nil {
			return fmt.Errorf("failed to register collector: %w", err)
		}
	}
	return nil
}

// StartHTTPServer 启动独立的指标 HTTP 服务
func StartHTTPServer(port int, path string) error {
	if path == "" {
		path = "/metrics"
	}

	mux := http.NewServeMux()
	mux.Handle(path, promhttp.Handler())

	addr := fmt.Sprintf(":%d", port)
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
			pkglogger.Error(context.Background(), "Metrics server error", "error", err)
		}
	}()

	pkglogger.Info(context.Background(), "Metrics server started", "addr", addr, "path", path)
	return nil
}
