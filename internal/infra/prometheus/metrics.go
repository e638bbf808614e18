package prometheus

import (
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Application counters for the scan pipeline and the cleanup job. Registered
// on the default registry served by the metrics server.
var (
	ScansPublished = promauto.NewCounter(prom.CounterOpts{
		Name: "qrtrail_scans_published_total",
		Help: "Scan events published to the stream.",
	})

	ScanPublishFailures = promauto.NewCounter(prom.CounterOpts{
		Name: "qrtrail_scan_publish_failures_total",
		Help: "Scan events that could not be published.",
	})

	ScansRecorded = promauto.NewCounter(prom.CounterOpts{
		Name: "qrtrail_scans_recorded_total",
		Help: "Scan events fully persisted with counters updated.",
	})

	ScanRecordFailures = promauto.NewCounterVec(prom.CounterOpts{
		Name: "qrtrail_scan_record_failures_total",
		Help: "Persistence failures while recording scans, by operation.",
	}, []string{"op"})

	CleanupDeletedCodes = promauto.NewCounter(prom.CounterOpts{
		Name: "qrtrail_cleanup_deleted_codes_total",
		Help: "Expired guest codes removed by the cleanup job.",
	})

	CleanupDeletedScans = promauto.NewCounter(prom.CounterOpts{
		Name: "qrtrail_cleanup_deleted_scans_total",
		Help: "Scan events removed alongside expired guest codes.",
	})
)
