package telemetry

// SLI metric names used for instrumentation.
const (
	// Latency
	MetricAPILatencyP50 = "api.latency.p50"
	MetricAPILatencyP95 = "api.latency.p95"
	MetricAPILatencyP99 = "api.latency.p99"

	// Throughput
	MetricRequestsPerSec = "api.requests_per_second"

	// Analysis pipeline
	MetricAnalysisDuration = "analysis.duration_seconds"
	MetricTraceScanRate    = "analysis.traces_per_second"

	// Availability
	MetricUptime = "service.uptime_percentage"

	// Business
	MetricFilesAnalyzed     = "business.files_analyzed"
	MetricUnreadableUploads = "business.unreadable_uploads"
)
