package models

// SystemMetrics is a point-in-time view of the process counters.
type SystemMetrics struct {
	RequestCount              float64            `json:"request_count"`
	AvgLatencyMs              float64            `json:"avg_latency_ms"`
	ErrorRate                 float64            `json:"error_rate"`
	CacheHitRatio             float64            `json:"cache_hit_ratio"`
	CacheInvalidationFailures float64            `json:"cache_invalidation_failures"`
	AvgDBQueryMs              float64            `json:"avg_db_query_ms"`
	MarksByAction             map[string]float64 `json:"marks_by_action"`
	AnomaliesByKind           map[string]float64 `json:"anomalies_by_kind"`
}
