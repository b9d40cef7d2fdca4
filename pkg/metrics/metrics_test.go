package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorefrontMetricsExportCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewStorefront(reg)

	m.OrderCreated(decimal.RequireFromString("200.00"))
	m.OrderCreated(decimal.RequireFromString("1500.50"))
	m.CartItemsAdded(2)
	m.CartItemsAdded(3)
	m.CartItemsAdded(0)
	m.OrderStatusChanged("pending", "processing")
	m.PaymentStatusChanged("pending", "paid")
	m.ProductsImported(4, 1)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	assertValue(t, mfs, "storefront_orders_created_total", nil, 2)
	assertValue(t, mfs, "storefront_cart_items_added_total", nil, 5)
	assertValue(t, mfs, "storefront_order_status_transitions_total", map[string]string{"from": "pending", "to": "processing"}, 1)
	assertValue(t, mfs, "storefront_payment_status_transitions_total", map[string]string{"from": "pending", "to": "paid"}, 1)
	assertValue(t, mfs, "storefront_bulk_import_products_total", map[string]string{"outcome": "failed"}, 1)

	hist := findMetric(t, mfs, "storefront_order_total_amount", nil).GetHistogram()
	assert.Equal(t, uint64(2), hist.GetSampleCount())
	assert.InDelta(t, 1700.5, hist.GetSampleSum(), 0.001)
}

func TestHTTPMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTP(reg)
	m.Observe("GET", "/api/v1/products/{id}", 200, 15*time.Millisecond)
	m.Observe("GET", "", 404, time.Millisecond)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assertValue(t, mfs, "http_requests_total", map[string]string{"route": "/api/v1/products/{id}", "status": "200"}, 1)
	assertValue(t, mfs, "http_requests_total", map[string]string{"route": "unknown", "status": "404"}, 1)
}

func TestNilRecordersAreNoops(t *testing.T) {
	var s *Storefront
	s.OrderCreated(decimal.NewFromInt(1))
	s.CartItemsAdded(1)
	s.OrderStatusChanged("a", "b")

	var h *HTTP
	h.Observe("GET", "/", 200, time.Second)

	assert.Nil(t, NewStorefront(nil))
	assert.Nil(t, NewHTTP(nil))
}

func assertValue(t *testing.T, mfs []*dto.MetricFamily, name string, labels map[string]string, want float64) {
	t.Helper()
	assert.Equal(t, want, findMetric(t, mfs, name, labels).GetCounter().GetValue(), name)
}

func findMetric(t *testing.T, mfs []*dto.MetricFamily, name string, labels map[string]string) *dto.Metric {
	t.Helper()
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if matchesLabels(metric.GetLabel(), labels) {
				return metric
			}
		}
	}
	require.FailNow(t, fmt.Sprintf("metric %q with labels %v not found", name, labels))
	return nil
}

func matchesLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	for name, value := range want {
		found := false
		for _, p := range pairs {
			if p.GetName() == name && p.GetValue() == value {
				found = true
			}
		}
		if !found {
			return false
		}
	}
	return true
}
