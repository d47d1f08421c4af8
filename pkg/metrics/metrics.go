package metrics

import "time"

type Metrics interface {
	// Business
	RecordUseCaseExecution(useCaseName string, success bool, duration time.Duration)
	RecordRequestRejected(kind string)
	RecordStudentEvent(eventType string, status string)

	// Infrastructure
	ObserveHTTPRequestDuration(method, path, statusCode string, duration float64)
	IncRateLimited(path string)

	// Performance and Resilience
	IncCacheHit(cacheType string)
	IncCacheMiss(cacheType string)
	IncOutboxEventsProcessed(status string)
}
