package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Application counters scraped via the /metrics server.
var (
	LinksCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tinylink_links_created_total",
		Help: "Number of short links created.",
	})

	RedirectsServed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tinylink_redirects_total",
		Help: "Number of redirects served.",
	})

	RedirectMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tinylink_redirect_misses_total",
		Help: "Number of redirect requests for unknown or reserved codes.",
	})
)
