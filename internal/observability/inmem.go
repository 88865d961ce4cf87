package observability

import "sync"

// observe is one recorded event. Only the fields relevant to Kind are set.
type observe struct {
	Kind    string
	Source  string
	Op      string
	Method  string
	Route   string
	Status  int
	Entries int
	CacheMs float64
	DbMs    float64
	Dur     float64
	OK      bool
}

// Inmem keeps the last max events; handy for tests and local debugging.
type Inmem struct {
	mu     sync.Mutex
	last   []*observe
	max    int
	totals struct {
		cacheHits, cacheMiss int
	}
}

func NewInmem(max int) *Inmem {
	return &Inmem{
		max: max,
	}
}

func (m *Inmem) push(v *observe) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = append(m.last, v)
	if len(m.last) > m.max {
		m.last = m.last[len(m.last)-m.max:]
	}
}

// Last returns a copy of the recorded kinds, oldest first.
func (m *Inmem) Last() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	kinds := make([]string, 0, len(m.last))
	for _, o := range m.last {
		kinds = append(kinds, o.Kind)
	}
	return kinds
}

func (m *Inmem) ObserveLookup(source string, cacheMs, dbMs float64) {
	m.push(&observe{Kind: "lookup", Source: source, CacheMs: cacheMs, DbMs: dbMs})
}

func (m *Inmem) ObserveWrite(op string, dbWriteMs float64, ok bool) {
	m.push(&observe{Kind: "write", Op: op, DbMs: dbWriteMs, OK: ok})
}

func (m *Inmem) ObserveDerive(entries int, deriveMs float64, ok bool) {
	m.push(&observe{Kind: "derive", Entries: entries, Dur: deriveMs, OK: ok})
}

func (m *Inmem) ObserveHTTP(method, route string, status int, durMs float64) {
	m.push(&observe{Kind: "http", Method: method, Route: route, Status: status, Dur: durMs})
}

func (m *Inmem) ObserveKafka(processMs float64, ok bool) {
	m.push(&observe{Kind: "kafka", Dur: processMs, OK: ok})
}

// CacheTotals returns the hit and miss counters.
func (m *Inmem) CacheTotals() (hits, misses int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totals.cacheHits, m.totals.cacheMiss
}

func (m *Inmem) IncCacheHit() {
	m.mu.Lock()
	m.totals.cacheHits++
	m.mu.Unlock()
}
func (m *Inmem) IncCacheMiss() {
	m.mu.Lock()
	m.totals.cacheMiss++
	m.mu.Unlock()
}
