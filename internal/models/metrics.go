package models

import "time"

// SystemMetrics is a point-in-time summary of process instrumentation.
type SystemMetrics struct {
	RequestsTotal            uint64    `json:"requestsTotal"`
	AverageRequestDurationMs float64   `json:"averageRequestDurationMs"`
	CacheHits                uint64    `json:"cacheHits"`
	CacheMisses              uint64    `json:"cacheMisses"`
	CacheHitRatio            float64   `json:"cacheHitRatio"`
	LoginsSucceeded          uint64    `json:"loginsSucceeded"`
	LoginsFailed             uint64    `json:"loginsFailed"`
	ExportsTotal             uint64    `json:"exportsTotal"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}
