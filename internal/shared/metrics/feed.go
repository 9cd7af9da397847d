package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// FeedCollectors agrupa as métricas do feed-service. Os componentes recebem
// apenas callbacks (OnFetch, OnResult, ...), montados no main.
type FeedCollectors struct {
	FetchTotal    *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec
	Opportunities prometheus.Gauge
	Exports       *prometheus.CounterVec
	WSConnections prometheus.Gauge
}

// NewFeedCollectors cria e registra as métricas em reg.
func NewFeedCollectors(reg prometheus.Registerer) *FeedCollectors {
	c := &FeedCollectors{
		FetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feed_fetch_total",
			Help: "buscas de oportunidades por modo e resultado",
		}, []string{"mode", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "feed_fetch_duration_seconds",
			Help:    "latência da chamada ao backend",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15, 30},
		}, []string{"mode"}),
		Opportunities: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "feed_opportunities",
			Help: "oportunidades simples na última carga",
		}),
		Exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feed_exports_total",
			Help: "exportações por resultado",
		}, []string{"outcome"}),
		WSConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "feed_ws_connections",
			Help: "conexões websocket abertas",
		}),
	}
	reg.MustRegister(c.FetchTotal, c.FetchDuration, c.Opportunities, c.Exports, c.WSConnections)
	return c
}

func (c *FeedCollectors) ObserveFetch(mode, outcome string, d time.Duration) {
	c.FetchTotal.WithLabelValues(mode, outcome).Inc()
	c.FetchDuration.WithLabelValues(mode).Observe(d.Seconds())
}

func (c *FeedCollectors) SetOpportunities(n int) { c.Opportunities.Set(float64(n)) }

func (c *FeedCollectors) ObserveExport(outcome string) { c.Exports.WithLabelValues(outcome).Inc() }

func (c *FeedCollectors) WSOpened() { c.WSConnections.Inc() }

func (c *FeedCollectors) WSClosed() { c.WSConnections.Dec() }
