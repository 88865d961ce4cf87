package observability

import (
	"fmt"
	"net/http"
)

func AppendServerTiming(w http.ResponseWriter, name string, durMs float64, desc string) {
	var v string
	switch {
	case durMs > 0 && desc != "":
		v = fmt.Sprintf("%s;dur=%.2f;desc=%q", name, durMs, desc)
	case durMs > 0:
		v = fmt.Sprintf("%s;dur=%.2f", name, durMs)
	case desc != "":
		v = fmt.Sprintf("%s;desc=%q", name, desc)
	default:
		return
	}
	w.Header().Add("Server-Timing", v)
}

func SetIfPos(w http.ResponseWriter, key string, ms float64) {
	if ms > 0 {
		w.Header().Set(key, fmt.Sprintf("%.2f", ms))
	}
}

// SetLookupHeaders reports where a satellite was read from and how long each
// tier took.
func SetLookupHeaders(w http.ResponseWriter, source string, cacheMs, dbMs float64) {
	AppendServerTiming(w, "cache", cacheMs, "")
	AppendServerTiming(w, "db", dbMs, "")
	AppendServerTiming(w, "source", 0, source)
	w.Header().Set("X-Source", source)
	SetIfPos(w, "X-Cache-Time", cacheMs)
	SetIfPos(w, "X-DB-Time", dbMs)
}
