package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// registry for all lockbox metrics, served by the gateway
var Registry = prometheus.NewRegistry()

var (
	// lock acquisition counter - acquired vs reacquired vs busy
	// a high busy rate means clients keep colliding on the same files
	// labels: status (acquired/reacquired/busy)
	LockAcquireTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "lockbox_lock_acquire_total",
			Help: "total number of lock acquisition attempts",
		},
		[]string{"status"},
	)

	// lock release counter
	// released should roughly match acquired over time, rejected means a
	// client released something it did not hold
	// labels: status (released/rejected)
	LockReleaseTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "lockbox_lock_release_total",
			Help: "total number of lock release attempts",
		},
		[]string{"status"},
	)

	// locks dropped by the ttl sweeper
	// spikes indicate clients dying mid-upload
	LockExpireTotal = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Name: "lockbox_lock_expire_total",
			Help: "total number of locks dropped after their ttl",
		},
	)

	// currently held locks
	// without a ttl this only goes down on release, a steady climb is a lock leak
	LocksActive = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "lockbox_locks_active",
			Help: "current number of held locks",
		},
	)

	// file store operations by outcome
	// labels: op (create/write/read/delete), result (ok/permission_denied/not_found/error)
	FileOpsTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "lockbox_file_ops_total",
			Help: "total number of file store operations",
		},
		[]string{"op", "result"},
	)

	// payload bytes appended by write_chunk
	BytesWritten = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Name: "lockbox_bytes_written_total",
			Help: "total bytes appended to stored files",
		},
	)

	// payload bytes returned by read_chunk
	BytesRead = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Name: "lockbox_bytes_read_total",
			Help: "total bytes read from stored files",
		},
	)

	// rpc latency - histogram to track p50/p90/p99 per method
	// labels: method, code (grpc status code)
	RPCDuration = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lockbox_rpc_duration_seconds",
			Help:    "time taken to serve an rpc",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
		},
		[]string{"method", "code"},
	)

	// service uptime - always 1 when running
	// prometheus uses this to detect service restarts
	Up = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "lockbox_up",
			Help: "whether the service is up (always 1 when running)",
		},
	)
)

func init() {
	Registry.MustRegister(collectors.NewGoCollector())
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	Up.Set(1)
}
