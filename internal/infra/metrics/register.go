package metrics

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "eventbot"

var (
	registerOnce sync.Once
	pending      []prometheus.Collector
)

// register queues collectors from the init funcs of this package.
func register(cs ...prometheus.Collector) { pending = append(pending, cs...) }

// MustRegister adds every queued collector to the default registry.
// Both binaries call it at startup; repeated calls are no-ops.
func MustRegister() {
	registerOnce.Do(func() { prometheus.MustRegister(pending...) })
}

// norm keeps label cardinality down: " Stats" and "stats" are one series.
func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
