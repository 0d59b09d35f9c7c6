package metrics

import (
	"fmt"
	"io"
	"strconv"

	"github.com/indigo-web/lantern/http/method"
	"github.com/indigo-web/lantern/http/status"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

const namespace = "lantern"

// Registry holds the server's collectors. All the methods are safe to call on a nil
// Registry, in which case they do nothing.
type Registry struct {
	registry *prometheus.Registry

	exchanges      *prometheus.CounterVec
	connections    prometheus.Gauge
	streamedBytes  prometheus.Counter
	abortedStreams prometheus.Counter
	housekeeping   prometheus.Counter
	backlog        prometheus.Gauge
}

func New() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}

	r.exchanges = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "exchanges_total",
		Help:      "Completed request-response exchanges",
	}, []string{"method", "code"})

	r.connections = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "transport",
		Name:      "open_connections",
		Help:      "Currently open client connections",
	})

	r.streamedBytes = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "stream",
		Name:      "sent_bytes_total",
		Help:      "File bytes handed over to connections by stream sessions",
	})

	r.abortedStreams = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "stream",
		Name:      "aborted_total",
		Help:      "Stream sessions interrupted before the whole file was sent",
	})

	r.housekeeping = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "loop",
		Name:      "housekeeping_ticks_total",
		Help:      "Housekeeping timer firings",
	})

	r.backlog = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "loop",
		Name:      "backlog_tasks",
		Help:      "Tasks waiting in the event loop queue, sampled on housekeeping",
	})

	r.registry.MustRegister(
		r.exchanges,
		r.connections,
		r.streamedBytes,
		r.abortedStreams,
		r.housekeeping,
		r.backlog,
	)

	return r
}

// Prometheus exposes the underlying registry, so it can be served by other means or
// extended by custom collectors.
func (r *Registry) Prometheus() *prometheus.Registry {
	if r == nil {
		return nil
	}

	return r.registry
}

func (r *Registry) Exchange(m method.Method, code status.Code) {
	if r == nil {
		return
	}

	r.exchanges.WithLabelValues(m.String(), strconv.Itoa(int(code))).Inc()
}

func (r *Registry) ConnOpened() {
	if r != nil {
		r.connections.Inc()
	}
}

func (r *Registry) ConnClosed() {
	if r != nil {
		r.connections.Dec()
	}
}

func (r *Registry) Streamed(n int) {
	if r != nil {
		r.streamedBytes.Add(float64(n))
	}
}

func (r *Registry) StreamAborted() {
	if r != nil {
		r.abortedStreams.Inc()
	}
}

// Housekeeping records a timer firing together with the loop backlog observed by it.
func (r *Registry) Housekeeping(backlog int) {
	if r == nil {
		return
	}

	r.housekeeping.Inc()
	r.backlog.Set(float64(backlog))
}

// Render writes all the metrics in the Prometheus text exposition format.
func (r *Registry) Render(w io.Writer) error {
	if r == nil {
		return nil
	}

	families, err := r.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	for _, family := range families {
		if _, err = expfmt.MetricFamilyToText(w, family); err != nil {
			return fmt.Errorf("render metrics: %w", err)
		}
	}

	return nil
}
