// Package metrics provides the Prometheus collector for translator
// progress accounting.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collector holds the translator metrics. Each collector owns its own
// registry so parallel translator instances never collide on registration.
type Collector struct {
	registry *prometheus.Registry

	// Parse progress
	LinesScanned    prometheus.Counter
	FeaturesMatched prometheus.Counter

	// Gene-annotation table outcomes
	GenesCreated        prometheus.Counter
	GenesSuperseded     prometheus.Counter
	GenesDiscarded      prometheus.Counter
	ConflictsUnresolved prometheus.Counter
}

// NewCollector creates and registers the translator metrics under the given
// namespace.
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		LinesScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_scanned_total",
			Help:      "Total number of source lines scanned",
		}),
		FeaturesMatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "features_matched_total",
			Help:      "Total number of feature lines matching the feature filter",
		}),
		GenesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "genes_created_total",
			Help:      "Total number of gene-annotation records inserted",
		}),
		GenesSuperseded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "genes_superseded_total",
			Help:      "Total number of gene-annotation records replaced by a more complete record",
		}),
		GenesDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "genes_discarded_total",
			Help:      "Total number of candidate gene-annotation records discarded",
		}),
		ConflictsUnresolved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conflicts_unresolved_total",
			Help:      "Total number of duplicate conflicts no tie-break rule could resolve",
		}),
	}

	c.registry.MustRegister(
		c.LinesScanned,
		c.FeaturesMatched,
		c.GenesCreated,
		c.GenesSuperseded,
		c.GenesDiscarded,
		c.ConflictsUnresolved,
	)
	return c
}

// Registry returns the collector's registry for exposition.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
