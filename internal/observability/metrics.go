package observability

// Write operations reported through ObserveWrite.
const (
	OpCreate     = "create"
	OpBulkCreate = "bulk_create"
	OpUpdate     = "update"
	OpDelete     = "delete"
)

type Metrics interface {
	ObserveLookup(source string, cacheMs, dbMs float64)
	ObserveWrite(op string, dbWriteMs float64, ok bool)
	ObserveDerive(entries int, deriveMs float64, ok bool)
	ObserveHTTP(method, route string, status int, durMs float64)
	ObserveKafka(processMs float64, ok bool)
	IncCacheHit()
	IncCacheMiss()
}

type Noop struct{}

func NewNoop() Noop { return Noop{} }

func (Noop) ObserveLookup(string, float64, float64)   {}
func (Noop) ObserveWrite(string, float64, bool)       {}
func (Noop) ObserveDerive(int, float64, bool)         {}
func (Noop) ObserveHTTP(string, string, int, float64) {}
func (Noop) ObserveKafka(float64, bool)               {}
func (Noop) IncCacheHit()                             {}
func (Noop) IncCacheMiss()                            {}
