package availability

import "github.com/m04kA/SMC-AppointmentService/pkg/types"

// SlotAvailability доступность одного слота сетки для бронирования
// Сериализуется в JSON при кешировании
type SlotAvailability struct {
	Time                 types.TimeString `json:"time"`
	IsAvailable          bool             `json:"isAvailable"`
	IsBooked             bool             `json:"isBooked"`
	IsBuffer             bool             `json:"isBuffer"`
	IsTemporarilyBlocked bool             `json:"isTemporarilyBlocked"`

	// ServiceAvailability вычисляется только для доступных слотов:
	// влезает ли услуга (все необходимые последовательные слоты свободны)
	ServiceAvailability map[int64]bool `json:"serviceAvailability,omitempty"`
}
