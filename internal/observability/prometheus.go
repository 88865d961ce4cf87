package observability

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricPrefix = "satrec_"

// Prometheus implements Metrics on top of client_golang collectors.
type Prometheus struct {
	lookups     *prometheus.HistogramVec
	writes      *prometheus.HistogramVec
	derives     *prometheus.HistogramVec
	derivedTLEs *prometheus.CounterVec
	httpReqs    *prometheus.CounterVec
	httpDur     *prometheus.HistogramVec
	kafka       *prometheus.HistogramVec
	cache       *prometheus.CounterVec
}

func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	ms := prometheus.DefBuckets
	p := &Prometheus{
		lookups: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    metricPrefix + "lookup_seconds",
			Help:    "Satellite lookup latency by source.",
			Buckets: ms,
		}, []string{"source"}),
		writes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    metricPrefix + "store_write_seconds",
			Help:    "Store write latency by operation and result.",
			Buckets: ms,
		}, []string{"op", "result"}),
		derives: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    metricPrefix + "derive_seconds",
			Help:    "Time spent deriving orbital state for a call.",
			Buckets: ms,
		}, []string{"result"}),
		derivedTLEs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metricPrefix + "derived_tles_total",
			Help: "TLE pairs submitted to derivation by result.",
		}, []string{"result"}),
		httpReqs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metricPrefix + "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"route", "method", "code"}),
		httpDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    metricPrefix + "http_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: ms,
		}, []string{"route", "method"}),
		kafka: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    metricPrefix + "kafka_process_seconds",
			Help:    "Kafka message processing time by result.",
			Buckets: ms,
		}, []string{"result"}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metricPrefix + "cache_lookups_total",
			Help: "Cache lookups by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(p.lookups, p.writes, p.derives, p.derivedTLEs, p.httpReqs, p.httpDur, p.kafka, p.cache)
	return p
}

// Handler exposes the gatherer in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "error"
}

func seconds(ms float64) float64 { return ms / 1000.0 }

func (p *Prometheus) ObserveLookup(source string, cacheMs, dbMs float64) {
	p.lookups.WithLabelValues(source).Observe(seconds(cacheMs + dbMs))
}

func (p *Prometheus) ObserveWrite(op string, dbWriteMs float64, ok bool) {
	p.writes.WithLabelValues(op, result(ok)).Observe(seconds(dbWriteMs))
}

func (p *Prometheus) ObserveDerive(entries int, deriveMs float64, ok bool) {
	p.derives.WithLabelValues(result(ok)).Observe(seconds(deriveMs))
	p.derivedTLEs.WithLabelValues(result(ok)).Add(float64(entries))
}

func (p *Prometheus) ObserveHTTP(method, route string, status int, durMs float64) {
	p.httpReqs.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	p.httpDur.WithLabelValues(route, method).Observe(seconds(durMs))
}

func (p *Prometheus) ObserveKafka(processMs float64, ok bool) {
	p.kafka.WithLabelValues(result(ok)).Observe(seconds(processMs))
}

func (p *Prometheus) IncCacheHit()  { p.cache.WithLabelValues("hit").Inc() }
func (p *Prometheus) IncCacheMiss() { p.cache.WithLabelValues("miss").Inc() }
