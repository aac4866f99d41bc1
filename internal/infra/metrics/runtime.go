package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(buildInfo, dbPool, cacheLookups) }

var (
	buildInfo = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "build_info",
		Help:      "Always 1; labels carry the running build.",
	}, []string{"version", "commit"})

	// state: total | idle | acquired
	dbPool = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "db_pool_conns",
		Help:      "Postgres pool connections by state.",
	}, []string{"state"})

	// cache: company_list | company_name | company_id; result: hit | miss
	cacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_requests_total",
		Help:      "Directory cache lookups by cache and result.",
	}, []string{"cache", "result"})
)

func SetBuildInfo(version, commit string) {
	buildInfo.Reset()
	buildInfo.WithLabelValues(version, commit).Set(1)
}

func SetDBPoolConns(total, idle, acquired int32) {
	dbPool.WithLabelValues("total").Set(float64(total))
	dbPool.WithLabelValues("idle").Set(float64(idle))
	dbPool.WithLabelValues("acquired").Set(float64(acquired))
}

func IncCacheRequest(cache, result string) {
	cacheLookups.WithLabelValues(norm(cache), norm(result)).Inc()
}
