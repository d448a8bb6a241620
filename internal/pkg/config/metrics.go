package config

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes configuration load state for a component.
type Metrics struct {
	LoadTimestamp  prometheus.Gauge
	FallbacksTotal *prometheus.CounterVec
	FallbackActive prometheus.Gauge
}

// NewMetrics registers the metrics of component on reg.
func NewMetrics(reg prometheus.Registerer, component string) *Metrics {
	m := &Metrics{
		LoadTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: fmt.Sprintf("%s_config_load_timestamp", component),
			Help: fmt.Sprintf("Unix timestamp of last %s configuration load", component),
		}),
		FallbacksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_config_fallbacks_total", component),
			Help: fmt.Sprintf("Total number of %s settings replaced by their default", component),
		}, []string{"key"}),
		FallbackActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: fmt.Sprintf("%s_config_fallback_active", component),
			Help: fmt.Sprintf("1 if any %s setting currently uses its default after a bad value", component),
		}),
	}
	reg.MustRegister(m.LoadTimestamp, m.FallbacksTotal, m.FallbackActive)
	return m
}

// Record marks a load and counts fallbacks.
func (m *Metrics) Record(fallbacks []Fallback) {
	m.LoadTimestamp.SetToCurrentTime()
	for _, f := range fallbacks {
		m.FallbacksTotal.WithLabelValues(f.Key).Inc()
	}
	if len(fallbacks) > 0 {
		m.FallbackActive.Set(1)
	} else {
		m.FallbackActive.Set(0)
	}
}
