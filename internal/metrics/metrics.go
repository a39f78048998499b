package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "coupon_engine"

// Recorder exposes validation metrics. A nil *Recorder is a no-op.
type Recorder struct {
	validations *prometheus.CounterVec
	discounts   prometheus.Histogram
}

// NewRecorder creates a Recorder and registers its collectors on reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validations_total",
			Help:      "Coupon validation requests by outcome.",
		}, []string{"outcome"}),
		discounts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "discount_amount",
			Help:      "Discount granted per successful redemption.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
	}
	reg.MustRegister(r.validations, r.discounts)
	return r
}

// ObserveValidation counts one validation with the given outcome.
func (r *Recorder) ObserveValidation(outcome string) {
	if r == nil {
		return
	}
	r.validations.WithLabelValues(outcome).Inc()
}

// ObserveDiscount records the discount of a successful redemption.
func (r *Recorder) ObserveDiscount(amount float64) {
	if r == nil {
		return
	}
	r.discounts.Observe(amount)
}
