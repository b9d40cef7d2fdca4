package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// Storefront records checkout and cart activity. A nil *Storefront is a
// valid no-op recorder.
type Storefront struct {
	ordersCreated      prometheus.Counter
	orderAmount        prometheus.Histogram
	cartItemsAdded     prometheus.Counter
	statusTransitions  *prometheus.CounterVec
	paymentTransitions *prometheus.CounterVec
	importedProducts   *prometheus.CounterVec
}

// NewStorefront registers the storefront metrics on the provided registerer.
func NewStorefront(reg prometheus.Registerer) *Storefront {
	if reg == nil {
		return nil
	}
	s := &Storefront{
		ordersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storefront_orders_created_total",
			Help: "Orders created from carts.",
		}),
		orderAmount: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "storefront_order_total_amount",
			Help:    "Order totals at checkout.",
			Buckets: []float64{500, 1000, 2500, 5000, 10000, 25000, 50000, 100000, 250000},
		}),
		cartItemsAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storefront_cart_items_added_total",
			Help: "Units added to carts.",
		}),
		statusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_order_status_transitions_total",
			Help: "Applied order status transitions.",
		}, []string{"from", "to"}),
		paymentTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_payment_status_transitions_total",
			Help: "Applied payment status transitions.",
		}, []string{"from", "to"}),
		importedProducts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_bulk_import_products_total",
			Help: "Bulk import rows by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(
		s.ordersCreated,
		s.orderAmount,
		s.cartItemsAdded,
		s.statusTransitions,
		s.paymentTransitions,
		s.importedProducts,
	)
	return s
}

// OrderCreated records a committed order and its total.
func (s *Storefront) OrderCreated(total decimal.Decimal) {
	if s == nil {
		return
	}
	s.ordersCreated.Inc()
	s.orderAmount.Observe(total.InexactFloat64())
}

// CartItemsAdded records quantity units added to a cart.
func (s *Storefront) CartItemsAdded(quantity int) {
	if s == nil || quantity <= 0 {
		return
	}
	s.cartItemsAdded.Add(float64(quantity))
}

// OrderStatusChanged records an applied order status transition.
func (s *Storefront) OrderStatusChanged(from, to string) {
	if s == nil {
		return
	}
	s.statusTransitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

// PaymentStatusChanged records an applied payment status transition.
func (s *Storefront) PaymentStatusChanged(from, to string) {
	if s == nil {
		return
	}
	s.paymentTransitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

// ProductsImported records bulk import outcomes.
func (s *Storefront) ProductsImported(succeeded, failed int) {
	if s == nil {
		return
	}
	s.importedProducts.WithLabelValues("success").Add(float64(succeeded))
	s.importedProducts.WithLabelValues("failed").Add(float64(failed))
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
