// Package observability keeps process-wide counters served on /stats
// and classifies errors into stable buckets for those counters.
package observability

import (
	"sync"
	"sync/atomic"
)

// StatsSnapshot is the /stats payload.
type StatsSnapshot struct {
	ClipRequests      uint64            `json:"clip_requests"`
	PagesFetched      uint64            `json:"pages_fetched"`
	ImagesFetched     uint64            `json:"images_fetched"`
	Publishes         uint64            `json:"publishes"`
	ErrorsTotal       uint64            `json:"errors_total"`
	ErrorsByType      map[string]uint64 `json:"errors_by_type,omitempty"`
	ErrorsByComponent map[string]uint64 `json:"errors_by_component,omitempty"`
}

var (
	clipRequests  uint64
	pagesFetched  uint64
	imagesFetched uint64
	publishes     uint64
	errorsTotal   uint64

	statsMu           sync.Mutex
	errorsByType      = map[string]uint64{}
	errorsByComponent = map[string]uint64{}
)

func IncClipRequests() {
	atomic.AddUint64(&clipRequests, 1)
}

func IncPagesFetched() {
	atomic.AddUint64(&pagesFetched, 1)
}

func IncImagesFetched() {
	atomic.AddUint64(&imagesFetched, 1)
}

func IncPublishes() {
	atomic.AddUint64(&publishes, 1)
}

func IncError(errType, component string) {
	if errType == "" {
		errType = "unknown"
	}
	if component == "" {
		component = "unknown"
	}
	atomic.AddUint64(&errorsTotal, 1)
	statsMu.Lock()
	errorsByType[errType]++
	errorsByComponent[component]++
	statsMu.Unlock()
}

func Snapshot() StatsSnapshot {
	statsMu.Lock()
	errorsTypeCopy := copyMap(errorsByType)
	errorsComponentCopy := copyMap(errorsByComponent)
	statsMu.Unlock()

	return StatsSnapshot{
		ClipRequests:      atomic.LoadUint64(&clipRequests),
		PagesFetched:      atomic.LoadUint64(&pagesFetched),
		ImagesFetched:     atomic.LoadUint64(&imagesFetched),
		Publishes:         atomic.LoadUint64(&publishes),
		ErrorsTotal:       atomic.LoadUint64(&errorsTotal),
		ErrorsByType:      errorsTypeCopy,
		ErrorsByComponent: errorsComponentCopy,
	}
}

func copyMap(src map[string]uint64) map[string]uint64 {
	if len(src) == 0 {
		return map[string]uint64{}
	}
	out := make(map[string]uint64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
