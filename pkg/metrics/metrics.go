// Package metrics exposes store activity as prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tableflip.dev/benchquest/pkg/events"
)

const namespace = "benchquest"

// Collector counts bus events on its own registry.
type Collector struct {
	Registry *prometheus.Registry

	QuestsCompleted     prometheus.Counter
	TimersCompleted     prometheus.Counter
	ChecklistsCompleted prometheus.Counter
	JournalLogs         prometheus.Counter
	ProtocolChanges     *prometheus.CounterVec
	PlayerLevel         prometheus.Gauge
	HTTPRequests        *prometheus.CounterVec

	unsubscribe func()
}

// New registers the metrics on a fresh registry. Call Register to start
// counting.
func New() *Collector {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Collector{
		Registry: reg,
		QuestsCompleted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quests_completed_total",
			Help:      "Quests completed.",
		}),
		TimersCompleted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "timers_completed_total",
			Help:      "Research timers that ran to zero.",
		}),
		ChecklistsCompleted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checklists_completed_total",
			Help:      "Checklists with every item checked.",
		}),
		JournalLogs: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "journal_logs_total",
			Help:      "Lines appended to the journal.",
		}),
		ProtocolChanges: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "protocol_changes_total",
			Help:      "Protocol saves, deletions and runs.",
		}, []string{"kind"}),
		PlayerLevel: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "player_level",
			Help:      "Current player level.",
		}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served.",
		}, []string{"method", "status"}),
	}
}

// Register subscribes to bus and seeds the level gauge.
func (c *Collector) Register(bus *events.Bus, level int) {
	c.PlayerLevel.Set(float64(level))
	c.unsubscribe = bus.SubscribeAll(c.HandleEvent)
}

// Unregister stops counting.
func (c *Collector) Unregister() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
}

func (c *Collector) HandleEvent(ev events.Event) {
	switch ev.Topic {
	case events.QuestCompleted:
		c.QuestsCompleted.Inc()
	case events.TimerCompleted:
		c.TimersCompleted.Inc()
	case events.ChecklistCompleted:
		c.ChecklistsCompleted.Inc()
	case events.JournalLogged:
		c.JournalLogs.Inc()
	case events.ProtocolChanged:
		c.ProtocolChanges.WithLabelValues("saved").Inc()
	case events.ProtocolDeleted:
		c.ProtocolChanges.WithLabelValues("deleted").Inc()
	case events.ProtocolRun:
		c.ProtocolChanges.WithLabelValues("run").Inc()
	case events.PlayerLevelUp:
		c.PlayerLevel.Set(float64(ev.Value))
	}
}

// Handler serves the registry in the prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{Registry: c.Registry})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Flush keeps streaming responses working through the wrapper.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Middleware counts requests by method and status.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		c.HTTPRequests.WithLabelValues(r.Method, strconv.Itoa(sw.status)).Inc()
	})
}
