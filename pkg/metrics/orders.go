package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics records counters for the order and inventory engine.
type OrderMetrics struct {
	placed        prometheus.Counter
	canceled      *prometheus.CounterVec
	stockRestored prometheus.Counter
}

// NewOrderMetrics registers the order metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	placed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Orders that successfully reserved stock.",
	})
	canceled := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_canceled_total",
		Help: "Canceled orders by trigger.",
	}, []string{"trigger"})
	stockRestored := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stock_restored_units_total",
		Help: "Units of stock returned by cancellations.",
	})
	reg.MustRegister(placed, canceled, stockRestored)
	return &OrderMetrics{
		placed:        placed,
		canceled:      canceled,
		stockRestored: stockRestored,
	}
}

// IncPlaced counts one successful order placement.
func (m *OrderMetrics) IncPlaced() {
	if m == nil || m.placed == nil {
		return
	}
	m.placed.Inc()
}

// IncCanceled counts one cancellation for the given trigger (request/cascade).
func (m *OrderMetrics) IncCanceled(trigger string) {
	if m == nil || m.canceled == nil {
		return
	}
	if trigger == "" {
		trigger = "unknown"
	}
	m.canceled.WithLabelValues(trigger).Inc()
}

// AddStockRestored counts units returned to inventory.
func (m *OrderMetrics) AddStockRestored(units int) {
	if m == nil || m.stockRestored == nil || units <= 0 {
		return
	}
	m.stockRestored.Add(float64(units))
}
