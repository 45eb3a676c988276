package storefront

import "github.com/prometheus/client_golang/prometheus"

type shopMetrics struct {
	cartAdds    *prometheus.CounterVec
	unavailable *prometheus.CounterVec
}

func newShopMetrics(reg prometheus.Registerer) *shopMetrics {
	m := &shopMetrics{
		cartAdds: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ubermelon",
				Name:      "cart_adds_total",
				Help:      "Melons added to carts",
			},
			[]string{"melon_id"},
		),
		unavailable: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ubermelon",
				Name:      "unavailable_feature_total",
				Help:      "Requests for features that are not implemented yet",
			},
			[]string{"feature"},
		),
	}

	reg.MustRegister(m.cartAdds, m.unavailable)
	return m
}

// nil-safe so handlers work without a registry

func (m *shopMetrics) addedToCart(melonID string) {
	if m == nil {
		return
	}
	m.cartAdds.WithLabelValues(melonID).Inc()
}

func (m *shopMetrics) featureUnavailable(feature string) {
	if m == nil {
		return
	}
	m.unavailable.WithLabelValues(feature).Inc()
}
