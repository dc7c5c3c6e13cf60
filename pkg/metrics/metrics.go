package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics набор prometheus-метрик сервиса
type Metrics struct {
	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// База данных
	DBQueriesTotal  *prometheus.CounterVec
	DBQueryDuration *prometheus.HistogramVec

	// Connection pool
	DBPoolOpenConnections *prometheus.GaugeVec
	DBPoolInUse           *prometheus.GaugeVec
	DBPoolIdle            *prometheus.GaugeVec

	// Доменные счётчики
	AppointmentsCreatedTotal *prometheus.CounterVec
	SlotConflictsTotal       *prometheus.CounterVec
	TempBlocksCleanedTotal   *prometheus.CounterVec
}

// New создает и регистрирует метрики сервиса
func New(serviceName string) *Metrics {
	constLabels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "path", "status"}),

		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "path"}),

		DBQueriesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "db_queries_total",
			Help:        "Total number of database queries",
			ConstLabels: constLabels,
		}, []string{"operation", "status"}),

		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query duration in seconds",
			ConstLabels: constLabels,
			Buckets:     []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"operation"}),

		DBPoolOpenConnections: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_pool_open_connections",
			Help:        "Number of open connections in the pool",
			ConstLabels: constLabels,
		}, []string{"db"}),

		DBPoolInUse: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_pool_in_use_connections",
			Help:        "Number of connections currently in use",
			ConstLabels: constLabels,
		}, []string{"db"}),

		DBPoolIdle: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_pool_idle_connections",
			Help:        "Number of idle connections in the pool",
			ConstLabels: constLabels,
		}, []string{"db"}),

		AppointmentsCreatedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "appointments_created_total",
			Help:        "Total number of appointments created",
			ConstLabels: constLabels,
		}, []string{"status"}),

		SlotConflictsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "slot_conflicts_total",
			Help:        "Total number of booking attempts rejected because the slot was taken",
			ConstLabels: constLabels,
		}, []string{"source"}),

		TempBlocksCleanedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "temporary_blocks_cleaned_total",
			Help:        "Total number of expired temporary blocks removed",
			ConstLabels: constLabels,
		}, []string{"trigger"}),
	}
}

// IncAppointmentCreated инкрементирует счётчик созданных записей
func (m *Metrics) IncAppointmentCreated(status string) {
	m.AppointmentsCreatedTotal.WithLabelValues(status).Inc()
}

// IncSlotConflict инкрементирует счётчик отклонённых из-за занятости слота попыток
// source - где обнаружен конфликт: "precheck" или "unique_index"
func (m *Metrics) IncSlotConflict(source string) {
	m.SlotConflictsTotal.WithLabelValues(source).Inc()
}
