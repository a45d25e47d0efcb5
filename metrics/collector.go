// Package metrics 把容器的构建事件导出为 Prometheus 指标。
package metrics

import (
	"net/http"
	"time"

	"github.com/gocrud/beans/di"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector 实现 di.Observer
type Collector struct {
	Created      *prometheus.CounterVec // components_created_total{scope}
	Failures     *prometheus.CounterVec // component_failures_total{kind}
	Construction prometheus.Histogram   // component_construction_seconds
}

var _ di.Observer = (*Collector)(nil)

// NewCollector 创建指标并注册到 registerer
func NewCollector(namespace string, registerer prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		Created: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "components_created_total",
				Help:      "Total number of components constructed and wired",
			},
			[]string{"scope"},
		),
		Failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "component_failures_total",
				Help:      "Total number of component construction failures",
			},
			[]string{"kind"},
		),
		Construction: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "component_construction_seconds",
				Help:      "Time spent constructing and wiring a component",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			},
		),
	}

	for _, collector := range []prometheus.Collector{c.Created, c.Failures, c.Construction} {
		if err := registerer.Register(collector); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Collector) OnCreated(_ string, scope di.ScopeType, elapsed time.Duration) {
	c.Created.WithLabelValues(scope.String()).Inc()
	c.Construction.Observe(elapsed.Seconds())
}

func (c *Collector) OnFailed(_ string, err error) {
	c.Failures.WithLabelValues(di.KindOf(err)).Inc()
}

// Handler 返回暴露 gatherer 中指标的 HTTP 处理器
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
