package create_appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	apptRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointments"
	serviceRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/services"
)

// UseCase use case для создания записи клиента
type UseCase struct {
	apptRepo     AppointmentRepository
	serviceRepo  ServiceRepository
	checker      AvailabilityChecker
	blockManager TempBlockManager
	txManager    TransactionManager
	metrics      Metrics // может быть nil
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	svcRepo ServiceRepository,
	checker AvailabilityChecker,
	blockManager TempBlockManager,
	txManager TransactionManager,
	domainMetrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		apptRepo:     appointmentRepo,
		serviceRepo:  svcRepo,
		checker:      checker,
		blockManager: blockManager,
		txManager:    txManager,
		metrics:      domainMetrics,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case создания записи
// Использует сериализуемую транзакцию для предотвращения гонки данных;
// финальная гарантия "не больше одной записи на слот" - уникальный
// индекс БД, превращающий гонку в ErrSlotNotAvailable у проигравшего
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateAppointment: service=%d, date=%s, time=%s, session=%s",
		req.ServiceID, req.Date.Format(domain.DateFormat), req.StartTime, req.SessionID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateAppointment: validation failed: %v", err)
		return nil, err
	}

	// 2. Валидация даты
	now := uc.timeProvider.Now()
	if err := validateDate(req.Date, now); err != nil {
		uc.logger.Warn("CreateAppointment: date validation failed: %v", err)
		return nil, err
	}

	// 3. Проверяем существование услуги
	if _, err := uc.serviceRepo.GetByID(ctx, req.ServiceID); err != nil {
		if errors.Is(err, serviceRepo.ErrServiceNotFound) {
			uc.logger.Warn("CreateAppointment: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateAppointment: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	// Переменная для хранения результата
	var result *domain.Appointment

	// 4. Выполняем операции с БД в сериализуемой транзакции
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 4.1. Повторная проверка доступности внутри транзакции
		// Собственная временная блокировка сессии не мешает её же записи
		if !uc.checker.IsSlotAvailableForService(txCtx, req.Date, req.StartTime, req.ServiceID, req.SessionID, nil) {
			uc.logger.Warn("CreateAppointment: slot %s %s not available",
				req.Date.Format(domain.DateFormat), req.StartTime)
			uc.incSlotConflict("precheck")
			return ErrSlotNotAvailable
		}

		// 4.2. Создаем запись со статусом pending
		appt := &domain.Appointment{
			ServiceID:        req.ServiceID,
			CustomerName:     req.CustomerName,
			CustomerEmail:    req.CustomerEmail,
			CustomerPhone:    req.CustomerPhone,
			PreferredDate:    req.Date,
			PreferredTime:    req.StartTime,
			Status:           domain.StatusPending,
			ReservationToken: uuid.NewString(),
			Notes:            req.Notes,
		}

		created, err := uc.apptRepo.Create(txCtx, appt)
		if err != nil {
			if errors.Is(err, apptRepo.ErrSlotTaken) {
				uc.logger.Warn("CreateAppointment: lost race for slot %s %s",
					req.Date.Format(domain.DateFormat), req.StartTime)
				uc.incSlotConflict("unique_index")
				return ErrSlotNotAvailable
			}
			uc.logger.Error("CreateAppointment: failed to create appointment: %v", err)
			return fmt.Errorf("%w: failed to create appointment: %v", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		return nil, err
	}

	// 5. Снимаем временную блокировку сессии - слот теперь занят записью
	if err := uc.blockManager.Release(ctx, req.SessionID); err != nil {
		uc.logger.Warn("CreateAppointment: failed to release temp block for session %s: %v", req.SessionID, err)
	}

	// 6. Сбрасываем кеш доступности даты
	uc.checker.InvalidateDate(ctx, req.Date)

	if uc.metrics != nil {
		uc.metrics.IncAppointmentCreated(string(result.Status))
	}

	uc.logger.Info("CreateAppointment: successfully created appointment id=%d", result.ID)

	return &Response{
		ID:               result.ID,
		ServiceID:        result.ServiceID,
		CustomerName:     result.CustomerName,
		CustomerEmail:    result.CustomerEmail,
		CustomerPhone:    result.CustomerPhone,
		Date:             result.PreferredDate,
		StartTime:        result.PreferredTime,
		Status:           string(result.Status),
		ReservationToken: result.ReservationToken,
		Notes:            result.Notes,
		CreatedAt:        result.CreatedAt,
		UpdatedAt:        result.UpdatedAt,
	}, nil
}

func (uc *UseCase) incSlotConflict(source string) {
	if uc.metrics != nil {
		uc.metrics.IncSlotConflict(source)
	}
}
