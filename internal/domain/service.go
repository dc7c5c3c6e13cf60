package domain

import "time"

// Service услуга практики (например, массаж 50 минут)
// Длительность фиксируется на момент бронирования через lookup по ID
type Service struct {
	ID              int64
	Name            string
	DurationMinutes int
	Price           float64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// SlotsNeeded возвращает количество слотов сетки, занимаемых услугой
func (s *Service) SlotsNeeded() int {
	return SlotsNeeded(s.DurationMinutes)
}

// MinDurationService возвращает услугу с минимальной длительностью
// Используется для базовой проверки слота при создании временной блокировки
func MinDurationService(services []*Service) *Service {
	var min *Service
	for _, svc := range services {
		if min == nil || svc.DurationMinutes < min.DurationMinutes {
			min = svc
		}
	}
	return min
}
