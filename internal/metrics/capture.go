// Package metrics provides Prometheus metrics for frame capture.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	framesCaptured = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "camgrab",
		Subsystem: "capture",
		Name:      "frames_total",
		Help:      "Total frames successfully read from a device",
	}, []string{"device_id"})

	captureErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "camgrab",
		Subsystem: "capture",
		Name:      "errors_total",
		Help:      "Total failed frame acquisitions by error code",
	}, []string{"device_id", "code"})

	waitRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "camgrab",
		Subsystem: "capture",
		Name:      "wait_retries_total",
		Help:      "Total completion waits that exceeded the per-attempt timeout",
	}, []string{"device_id"})

	requestsInFlight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "camgrab",
		Subsystem: "capture",
		Name:      "requests_in_flight",
		Help:      "Capture requests currently queued with the driver",
	}, []string{"device_id"})

	readDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "camgrab",
		Subsystem: "capture",
		Name:      "read_duration_seconds",
		Help:      "Time spent waiting for and extracting one frame",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
	}, []string{"device_id"})

	// Local cache for status reporting without scraping Prometheus.
	captureCache   = make(map[string]*CaptureMetrics)
	captureCacheMu sync.RWMutex
)

// CaptureMetrics holds current counter values for a device.
type CaptureMetrics struct {
	Frames      float64
	Errors      float64
	WaitRetries float64
	InFlight    float64
}

// IncFramesCaptured records one successfully read frame.
func IncFramesCaptured(deviceID string) {
	framesCaptured.WithLabelValues(deviceID).Inc()
	updateCache(deviceID, func(m *CaptureMetrics) { m.Frames++ })
}

// IncCaptureError records one failed acquisition with its error code.
func IncCaptureError(deviceID, code string) {
	captureErrors.WithLabelValues(deviceID, code).Inc()
	updateCache(deviceID, func(m *CaptureMetrics) { m.Errors++ })
}

// IncWaitRetry records one completion wait timeout.
func IncWaitRetry(deviceID string) {
	waitRetries.WithLabelValues(deviceID).Inc()
	updateCache(deviceID, func(m *CaptureMetrics) { m.WaitRetries++ })
}

// SetRequestsInFlight records how many requests are queued with the driver.
func SetRequestsInFlight(deviceID string, count int) {
	requestsInFlight.WithLabelValues(deviceID).Set(float64(count))
	updateCache(deviceID, func(m *CaptureMetrics) { m.InFlight = float64(count) })
}

// ObserveReadDuration records the latency of one read.
func ObserveReadDuration(deviceID string, seconds float64) {
	readDuration.WithLabelValues(deviceID).Observe(seconds)
}

// DeleteCaptureMetrics removes all metrics for a device.
func DeleteCaptureMetrics(deviceID string) {
	framesCaptured.DeleteLabelValues(deviceID)
	captureErrors.DeletePartialMatch(prometheus.Labels{"device_id": deviceID})
	waitRetries.DeleteLabelValues(deviceID)
	requestsInFlight.DeleteLabelValues(deviceID)
	readDuration.DeleteLabelValues(deviceID)

	captureCacheMu.Lock()
	delete(captureCache, deviceID)
	captureCacheMu.Unlock()
}

// GetCaptureMetrics returns current metric values for a device.
func GetCaptureMetrics(deviceID string) *CaptureMetrics {
	captureCacheMu.RLock()
	defer captureCacheMu.RUnlock()
	if m, ok := captureCache[deviceID]; ok {
		dup := *m
		return &dup
	}
	return nil
}

func updateCache(deviceID string, update func(*CaptureMetrics)) {
	captureCacheMu.Lock()
	defer captureCacheMu.Unlock()
	m, ok := captureCache[deviceID]
	if !ok {
		m = &CaptureMetrics{}
		captureCache[deviceID] = m
	}
	update(m)
}
