package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	storage "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointments"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Service жизненный цикл записи после создания:
// подтверждение, отмена, завершение, архивация.
// Создание и перенос живут в отдельных usecase - там транзакции
// и повторная проверка доступности
type Service struct {
	apptRepo    AppointmentRepository
	invalidator CacheInvalidator
	logger      Logger
}

// NewService создает сервис жизненного цикла записей
func NewService(apptRepo AppointmentRepository, invalidator CacheInvalidator, logger Logger) *Service {
	return &Service{
		apptRepo:    apptRepo,
		invalidator: invalidator,
		logger:      logger,
	}
}

// GetByID возвращает запись по ID (админский доступ)
func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	appt, err := s.apptRepo.GetByID(ctx, id)
	if errors.Is(err, storage.ErrAppointmentNotFound) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - get appointment: %v", ErrInternal, err)
	}
	return appt, nil
}

// GetByToken возвращает запись по токену резервации (доступ клиента)
func (s *Service) GetByToken(ctx context.Context, token string) (*domain.Appointment, error) {
	appt, err := s.apptRepo.GetByToken(ctx, token)
	if errors.Is(err, storage.ErrAppointmentNotFound) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByToken - get appointment: %v", ErrInternal, err)
	}
	return appt, nil
}

// ListByDate возвращает записи на дату
func (s *Service) ListByDate(ctx context.Context, date time.Time, activeOnly bool) ([]*domain.Appointment, error) {
	appts, err := s.apptRepo.GetByDate(ctx, date, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByDate - get appointments: %v", ErrInternal, err)
	}
	return appts, nil
}

// ListByDateRange возвращает записи за период
func (s *Service) ListByDateRange(ctx context.Context, from, to time.Time, activeOnly bool) ([]*domain.Appointment, error) {
	appts, err := s.apptRepo.GetByDateRange(ctx, from, to, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByDateRange - get appointments: %v", ErrInternal, err)
	}
	return appts, nil
}

// Confirm подтверждает запись на указанные дату и время
// Подтверждённые дата и время могут отличаться от желаемых -
// согласованный по телефону вариант фиксируется здесь
func (s *Service) Confirm(ctx context.Context, id int64, date time.Time, startTime types.TimeString) (*domain.Appointment, error) {
	appt, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !appt.CanBeConfirmed() {
		return nil, fmt.Errorf("%w: Confirm - appointment %d has status %s", ErrInvalidTransition, id, appt.Status)
	}

	oldDate := appt.BookingDate()

	if err := s.apptRepo.Confirm(ctx, id, date, startTime); err != nil {
		if errors.Is(err, storage.ErrAppointmentNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("%w: Confirm - update appointment: %v", ErrInternal, err)
	}

	s.invalidateDates(ctx, oldDate, date)
	return s.GetByID(ctx, id)
}

// Cancel отменяет запись с указанием причины
func (s *Service) Cancel(ctx context.Context, id int64, reason *string) (*domain.Appointment, error) {
	appt, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !appt.CanBeCancelled() {
		return nil, fmt.Errorf("%w: Cancel - appointment %d has status %s", ErrInvalidTransition, id, appt.Status)
	}

	if err := s.apptRepo.Cancel(ctx, id, reason); err != nil {
		if errors.Is(err, storage.ErrAppointmentNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("%w: Cancel - update appointment: %v", ErrInternal, err)
	}

	// Отмена освобождает слоты - кеш даты устаревает немедленно
	s.invalidator.InvalidateDate(ctx, appt.BookingDate())
	return s.GetByID(ctx, id)
}

// CancelByToken отменяет запись клиента по токену резервации
func (s *Service) CancelByToken(ctx context.Context, token string, reason *string) (*domain.Appointment, error) {
	appt, err := s.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.Cancel(ctx, appt.ID, reason)
}

// Complete помечает запись завершённой
func (s *Service) Complete(ctx context.Context, id int64) (*domain.Appointment, error) {
	appt, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !appt.CanBeCompleted() {
		return nil, fmt.Errorf("%w: Complete - appointment %d has status %s", ErrInvalidTransition, id, appt.Status)
	}

	if err := s.apptRepo.UpdateStatus(ctx, id, domain.StatusCompleted); err != nil {
		if errors.Is(err, storage.ErrAppointmentNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("%w: Complete - update appointment: %v", ErrInternal, err)
	}

	// Завершённая запись перестаёт быть активной - слоты освобождаются
	s.invalidator.InvalidateDate(ctx, appt.BookingDate())
	return s.GetByID(ctx, id)
}

// Archive помечает запись архивной (скрывается из рабочих списков)
func (s *Service) Archive(ctx context.Context, id int64) (*domain.Appointment, error) {
	appt, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !appt.CanBeArchived() {
		return nil, fmt.Errorf("%w: Archive - appointment %d has status %s", ErrInvalidTransition, id, appt.Status)
	}

	if err := s.apptRepo.Archive(ctx, id); err != nil {
		if errors.Is(err, storage.ErrAppointmentNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("%w: Archive - update appointment: %v", ErrInternal, err)
	}

	return s.GetByID(ctx, id)
}

func (s *Service) invalidateDates(ctx context.Context, dates ...time.Time) {
	seen := make(map[string]bool, len(dates))
	for _, d := range dates {
		key := d.Format(domain.DateFormat)
		if seen[key] {
			continue
		}
		seen[key] = true
		s.invalidator.InvalidateDate(ctx, d)
	}
}
