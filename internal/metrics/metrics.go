// Package metrics exposes Prometheus collectors for the crawler.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	fetchesTotal          *prometheus.CounterVec
	fetchedBytesTotal     *prometheus.CounterVec
	categoryLinksTotal    *prometheus.CounterVec
	productLinksTotal     *prometheus.CounterVec
	listingPagesTotal     prometheus.Counter
	lastRunDurationSecond prometheus.Gauge

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		fetchesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "basler_fetches_total",
				Help: "Total number of fetches, labeled by cache bucket and result.",
			},
			[]string{"bucket", "result"},
		)

		fetchedBytesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "basler_fetched_bytes_total",
				Help: "Total number of bytes downloaded from the network, labeled by cache bucket.",
			},
			[]string{"bucket"},
		)

		categoryLinksTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "basler_category_links_total",
				Help: "Product-category links processed, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		productLinksTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "basler_product_links_total",
				Help: "Product links persisted, labeled by result.",
			},
			[]string{"result"},
		)

		listingPagesTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "basler_listing_pages_total",
				Help: "Product listing pages walked.",
			},
		)

		lastRunDurationSecond = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "basler_last_run_duration_seconds",
				Help: "Wall time of the last completed crawl run.",
			},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveFetch counts a fetch; result is one of cache_hit, network or failed.
func ObserveFetch(bucket, result string, bytesFetched int) {
	Init()
	fetchesTotal.WithLabelValues(bucket, result).Inc()
	if bytesFetched > 0 {
		fetchedBytesTotal.WithLabelValues(bucket).Add(float64(bytesFetched))
	}
}

func ObserveCategoryLink(outcome string) {
	Init()
	categoryLinksTotal.WithLabelValues(outcome).Inc()
}

func ObserveProductLink(result string) {
	Init()
	productLinksTotal.WithLabelValues(result).Inc()
}

func ObserveListingPage() {
	Init()
	listingPagesTotal.Inc()
}

func ObserveRunDuration(seconds float64) {
	Init()
	lastRunDurationSecond.Set(seconds)
}
