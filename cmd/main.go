package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	cancelAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/cancel_appointment"
	checkSlotHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/check_slot"
	confirmAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/confirm_appointment"
	createAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/create_appointment"
	getAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_appointment"
	getAvailableSlotsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_available_slots"
	publicAvailabilityHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/public_availability"
	rescheduleAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/reschedule_appointment"
	tempBlocksHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/temp_blocks"
	updateStatusHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/update_appointment_status"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/config"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/cache"
	appointmentsRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointments"
	scheduleRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/schedule"
	servicesRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/services"
	tempBlocksRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/tempblocks"
	"github.com/m04kA/SMC-AppointmentService/internal/jobs"
	appointmentsService "github.com/m04kA/SMC-AppointmentService/internal/service/appointments"
	"github.com/m04kA/SMC-AppointmentService/internal/service/availability"
	scheduleService "github.com/m04kA/SMC-AppointmentService/internal/service/schedule"
	tempBlocksService "github.com/m04kA/SMC-AppointmentService/internal/service/tempblocks"
	createAppointmentUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_appointment"
	publicAvailabilityUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/public_availability"
	rescheduleAppointmentUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/reschedule_appointment"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/metrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/simpletxmanager"
	"github.com/m04kA/SMC-AppointmentService/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-AppointmentService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Подключаемся к Redis (если включен)
	var availabilityCache availability.Cache
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Fatal("Failed to ping redis: %v", err)
		}
		defer redisClient.Close()

		availabilityCache = cache.NewAvailabilityCache(redisClient, domain.AvailabilityCacheTTL, log)
		log.Info("Availability cache enabled (redis=%s, ttl=%s)", cfg.Redis.Addr, domain.AvailabilityCacheTTL)
	} else {
		log.Info("Availability cache disabled")
	}

	// Инициализируем репозитории (с метриками или без)
	var (
		serviceRepository     *servicesRepo.Repository
		scheduleRepository    *scheduleRepo.Repository
		appointmentRepository *appointmentsRepo.Repository
		blockRepository       *tempBlocksRepo.Repository
	)

	// Интерфейс для transaction manager (используется в usecases)
	type TxManager interface {
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		serviceRepository = servicesRepo.NewRepository(wrappedDB)
		scheduleRepository = scheduleRepo.NewRepository(wrappedDB)
		appointmentRepository = appointmentsRepo.NewRepository(wrappedDB)
		blockRepository = tempBlocksRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		serviceRepository = servicesRepo.NewRepository(db)
		scheduleRepository = scheduleRepo.NewRepository(db)
		appointmentRepository = appointmentsRepo.NewRepository(db)
		blockRepository = tempBlocksRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем сервисы
	builder := scheduleService.NewBuilder(scheduleRepository, log)
	engine := availability.NewEngine(
		builder,
		appointmentRepository,
		blockRepository,
		serviceRepository,
		availabilityCache,
		log,
	)
	blockManager := tempBlocksService.NewManager(blockRepository, engine, serviceRepository, log)
	appointmentSvc := appointmentsService.NewService(appointmentRepository, engine, log)

	// Инициализируем use cases
	// Интерфейсная переменная: typed-nil указатель не должен попасть в use case
	var domainMetrics createAppointmentUC.Metrics
	if metricsCollector != nil {
		domainMetrics = metricsCollector
	}
	createAppointmentUseCase := createAppointmentUC.NewUseCase(
		appointmentRepository,
		serviceRepository,
		engine,
		blockManager,
		txMgr,
		domainMetrics,
		log,
	)
	rescheduleAppointmentUseCase := rescheduleAppointmentUC.NewUseCase(
		appointmentRepository,
		engine,
		txMgr,
		log,
	)
	publicAvailabilityUseCase := publicAvailabilityUC.NewUseCase(
		builder,
		appointmentRepository,
		blockRepository,
		log,
	)

	// Инициализируем handlers
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(engine, log)
	checkSlot := checkSlotHandler.NewHandler(engine, log)
	createAppointment := createAppointmentHandler.NewHandler(createAppointmentUseCase, log)
	getAppointment := getAppointmentHandler.NewHandler(appointmentSvc, log)
	cancelAppointment := cancelAppointmentHandler.NewHandler(appointmentSvc, log)
	confirmAppointment := confirmAppointmentHandler.NewHandler(appointmentSvc, log)
	updateStatus := updateStatusHandler.NewHandler(appointmentSvc, log)
	rescheduleAppointment := rescheduleAppointmentHandler.NewHandler(rescheduleAppointmentUseCase, log)
	tempBlocks := tempBlocksHandler.NewHandler(blockManager, log)
	publicAvailability := publicAvailabilityHandler.NewHandler(publicAvailabilityUseCase, log)

	// Фоновая уборка истёкших блокировок
	scheduler := jobs.NewScheduler(blockManager, metricsCollector, log)
	if err := scheduler.Start(); err != nil {
		log.Fatal("Failed to start background scheduler: %v", err)
	}

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// Публичный эндпоинт календаря (кешируется CDN)
	r.HandleFunc("/public/availability", publicAvailability.Handle).Methods(http.MethodGet)

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (сессия опциональна)
	// ============================================================

	// Доступность слотов дня
	api.HandleFunc("/availability", getAvailableSlots.Handle).Methods(http.MethodGet)

	// Проверка слота под услугу
	api.HandleFunc("/availability/check", checkSlot.Handle).Methods(http.MethodGet)

	// Запись по токену резервации (клиентский доступ)
	api.HandleFunc("/appointments/token/{token}", getAppointment.HandleByToken).Methods(http.MethodGet)
	api.HandleFunc("/appointments/token/{token}/cancel", cancelAppointment.HandleByToken).Methods(http.MethodPatch)
	api.HandleFunc("/appointments/token/{token}/reschedule", rescheduleAppointment.HandleByToken).Methods(http.MethodPatch)

	// Записи (админ-панель)
	api.HandleFunc("/appointments/{appointmentId}", getAppointment.HandleByID).Methods(http.MethodGet)
	api.HandleFunc("/appointments/{appointmentId}/cancel", cancelAppointment.Handle).Methods(http.MethodPatch)
	api.HandleFunc("/appointments/{appointmentId}/confirm", confirmAppointment.Handle).Methods(http.MethodPatch)
	api.HandleFunc("/appointments/{appointmentId}/complete", updateStatus.HandleComplete).Methods(http.MethodPatch)
	api.HandleFunc("/appointments/{appointmentId}/archive", updateStatus.HandleArchive).Methods(http.MethodPatch)
	api.HandleFunc("/appointments/{appointmentId}/reschedule", rescheduleAppointment.Handle).Methods(http.MethodPatch)

	// ============================================================
	// SESSION ROUTES (требуют X-Session-ID header)
	// ============================================================

	session := api.PathPrefix("").Subrouter()
	session.Use(middleware.Session)

	// Создание записи
	session.HandleFunc("/appointments", createAppointment.Handle).Methods(http.MethodPost)

	// Временные блокировки слотов
	session.HandleFunc("/temporary-blocks", tempBlocks.HandleCreate).Methods(http.MethodPost)
	session.HandleFunc("/temporary-blocks/extend", tempBlocks.HandleExtend).Methods(http.MethodPatch)
	session.HandleFunc("/temporary-blocks", tempBlocks.HandleRelease).Methods(http.MethodDelete)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем фоновые задачи
	scheduler.Stop()

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
