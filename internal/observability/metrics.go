package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	httpRequestsTotal     *prometheus.CounterVec
	httpLatencySeconds    *prometheus.HistogramVec
	httpErrorsTotal       *prometheus.CounterVec
	submissionsTotal      *prometheus.CounterVec
	quizScore             prometheus.Histogram
	gradingTotal          prometheus.Counter
	notificationsTotal    *prometheus.CounterVec
	notificationStreams   *prometheus.GaugeVec
	courseCacheTotal      *prometheus.CounterVec
	uploadRejectedTotal   *prometheus.CounterVec
	gradebookExportsTotal prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coursehub_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "coursehub_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coursehub_http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		submissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coursehub_submissions_total",
			Help: "Submission attempts by assignment type and outcome.",
		}, []string{"type", "outcome"})

		quizScore = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "coursehub_quiz_score_percent",
			Help:    "Distribution of auto-graded quiz scores.",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		})

		gradingTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coursehub_grading_total",
			Help: "Number of manual grade updates.",
		})

		notificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coursehub_notifications_created_total",
			Help: "Notifications persisted by trigger.",
		}, []string{"trigger"})

		notificationStreams = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "coursehub_notification_streams",
			Help: "Open notification streams by transport.",
		}, []string{"transport"})

		courseCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coursehub_course_cache_total",
			Help: "Course catalog cache lookups by result.",
		}, []string{"result"})

		uploadRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coursehub_upload_rejected_total",
			Help: "Rejected image uploads by reason.",
		}, []string{"reason"})

		gradebookExportsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coursehub_gradebook_exports_total",
			Help: "Number of gradebook spreadsheets generated.",
		})

		prometheus.MustRegister(
			httpRequestsTotal, httpLatencySeconds, httpErrorsTotal,
			submissionsTotal, quizScore, gradingTotal,
			notificationsTotal, notificationStreams,
			courseCacheTotal, uploadRejectedTotal, gradebookExportsTotal,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// Submissions exposes the submission outcome counter.
func Submissions() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionsTotal
}

// QuizScores exposes the quiz score histogram.
func QuizScores() prometheus.Histogram {
	RegisterMetrics()
	return quizScore
}

// Gradings exposes the manual grading counter.
func Gradings() prometheus.Counter {
	RegisterMetrics()
	return gradingTotal
}

// NotificationsCreated exposes the notification counter.
func NotificationsCreated() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsTotal
}

// NotificationStreams exposes the open stream gauge.
func NotificationStreams() *prometheus.GaugeVec {
	RegisterMetrics()
	return notificationStreams
}

// CourseCache exposes the catalog cache counter.
func CourseCache() *prometheus.CounterVec {
	RegisterMetrics()
	return courseCacheTotal
}

// UploadRejected exposes the rejected upload counter.
func UploadRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadRejectedTotal
}

// GradebookExports exposes the export counter.
func GradebookExports() prometheus.Counter {
	RegisterMetrics()
	return gradebookExportsTotal
}
