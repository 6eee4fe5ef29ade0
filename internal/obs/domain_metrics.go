package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// DraftCreatedTotal counts opened order drafts.
	DraftCreatedTotal prometheus.Counter
	// DraftSubmitTotal counts submit outcomes by result.
	DraftSubmitTotal *prometheus.CounterVec
	// StockWarningTotal counts line items rendered with an insufficient-stock warning.
	StockWarningTotal prometheus.Counter
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		DraftCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "draft_created_total",
			Help:      "Number of order drafts opened.",
		})
		DraftSubmitTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "draft_submit_total",
			Help:      "Count of draft submission outcomes.",
		}, []string{"result"})
		StockWarningTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_warning_total",
			Help:      "Number of line items flagged for exceeding available stock.",
		})

		mustRegisterCollector(reg, DraftCreatedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				DraftCreatedTotal = v
			}
		})
		mustRegisterCollector(reg, DraftSubmitTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				DraftSubmitTotal = v
			}
		})
		mustRegisterCollector(reg, StockWarningTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				StockWarningTotal = v
			}
		})
	})
}
