package observability

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusObserver counts events by type, source, and severity.
//
// Metrics collected:
//   - <namespace>_events_total{type,source,level}
type PrometheusObserver struct {
	events *prometheus.CounterVec
}

// NewPrometheusObserver creates a PrometheusObserver and registers its
// collectors with registerer. When registerer is nil the default Prometheus
// registerer is used. Registering twice against the same registerer reuses the
// collector that is already registered.
func NewPrometheusObserver(registerer prometheus.Registerer, namespace string) (*PrometheusObserver, error) {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "flux"
	}

	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_total",
		Help:      "Total number of dispatcher and store events observed",
	}, []string{"type", "source", "level"})

	if err := registerer.Register(events); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}
		existing, ok := are.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil, err
		}
		events = existing
	}

	return &PrometheusObserver{events: events}, nil
}

func (o *PrometheusObserver) OnEvent(ctx context.Context, event Event) {
	o.events.WithLabelValues(string(event.Type), event.Source, event.Level.String()).Inc()
}

// Counter returns the counter for one label combination.
func (o *PrometheusObserver) Counter(typ EventType, source string, level Level) prometheus.Counter {
	return o.events.WithLabelValues(string(typ), source, level.String())
}
