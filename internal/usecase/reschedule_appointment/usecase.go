package reschedule_appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	apptRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointments"
)

// UseCase use case для переноса записи на новые дату и время
type UseCase struct {
	apptRepo     AppointmentRepository
	checker      AvailabilityChecker
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	checker AvailabilityChecker,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		apptRepo:     appointmentRepo,
		checker:      checker,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case переноса записи
// Перенос сбрасывает подтверждение: запись возвращается в pending,
// мастер заново подтверждает новые дату и время
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RescheduleAppointment: validation failed: %v", err)
		return nil, err
	}

	// 2. Валидация новой даты
	now := uc.timeProvider.Now()
	if err := validateDate(req.Date, now); err != nil {
		uc.logger.Warn("RescheduleAppointment: date validation failed: %v", err)
		return nil, err
	}

	// 3. Загружаем запись по ID или токену
	appt, err := uc.loadAppointment(ctx, req)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("RescheduleAppointment: id=%d, %s %s -> %s %s",
		appt.ID, appt.BookingDate().Format(domain.DateFormat), appt.StartTime(),
		req.Date.Format(domain.DateFormat), req.StartTime)

	// 4. Проверяем, что статус допускает перенос
	if !appt.CanBeRescheduled() {
		uc.logger.Warn("RescheduleAppointment: appointment id=%d has status %s", appt.ID, appt.Status)
		return nil, ErrNotReschedulable
	}

	oldDate := appt.BookingDate()

	// 5. Выполняем операции с БД в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 5.1. Проверка доступности нового слота
		// Сама переносимая запись исключается из расчёта занятости -
		// перенос в пределах своего же диапазона разрешён
		if !uc.checker.IsSlotAvailableForService(txCtx, req.Date, req.StartTime, appt.ServiceID, req.SessionID, &appt.ID) {
			uc.logger.Warn("RescheduleAppointment: slot %s %s not available",
				req.Date.Format(domain.DateFormat), req.StartTime)
			return ErrSlotNotAvailable
		}

		// 5.2. Переносим запись
		if err := uc.apptRepo.Reschedule(txCtx, appt.ID, req.Date, req.StartTime); err != nil {
			if errors.Is(err, apptRepo.ErrSlotTaken) {
				uc.logger.Warn("RescheduleAppointment: lost race for slot %s %s",
					req.Date.Format(domain.DateFormat), req.StartTime)
				return ErrSlotNotAvailable
			}
			if errors.Is(err, apptRepo.ErrAppointmentNotFound) {
				return ErrAppointmentNotFound
			}
			uc.logger.Error("RescheduleAppointment: failed to reschedule id=%d: %v", appt.ID, err)
			return fmt.Errorf("%w: failed to reschedule appointment: %v", ErrInternal, err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	// 6. Сбрасываем кеш доступности старой и новой даты
	uc.checker.InvalidateDate(ctx, oldDate)
	uc.checker.InvalidateDate(ctx, req.Date)

	// 7. Перечитываем запись
	updated, err := uc.apptRepo.GetByID(ctx, appt.ID)
	if err != nil {
		uc.logger.Error("RescheduleAppointment: failed to reload id=%d: %v", appt.ID, err)
		return nil, fmt.Errorf("%w: failed to reload appointment: %v", ErrInternal, err)
	}

	uc.logger.Info("RescheduleAppointment: successfully rescheduled appointment id=%d", updated.ID)

	return &Response{
		ID:              updated.ID,
		ServiceID:       updated.ServiceID,
		Date:            updated.PreferredDate,
		StartTime:       updated.PreferredTime,
		Status:          string(updated.Status),
		RescheduleCount: updated.RescheduleCount,
		UpdatedAt:       updated.UpdatedAt,
	}, nil
}

func (uc *UseCase) loadAppointment(ctx context.Context, req *Request) (*domain.Appointment, error) {
	var (
		appt *domain.Appointment
		err  error
	)
	if req.AppointmentID != nil {
		appt, err = uc.apptRepo.GetByID(ctx, *req.AppointmentID)
	} else {
		appt, err = uc.apptRepo.GetByToken(ctx, *req.ReservationToken)
	}
	if errors.Is(err, apptRepo.ErrAppointmentNotFound) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		uc.logger.Error("RescheduleAppointment: failed to load appointment: %v", err)
		return nil, fmt.Errorf("%w: failed to load appointment: %v", ErrInternal, err)
	}
	return appt, nil
}
