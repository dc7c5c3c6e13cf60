package get_available_slots

import (
	availability "github.com/m04kA/SMC-AppointmentService/internal/service/availability"
)

// SlotResponse HTTP модель одного слота
type SlotResponse struct {
	Time                 string         `json:"time"`
	IsAvailable          bool           `json:"isAvailable"`
	IsBooked             bool           `json:"isBooked"`
	IsBuffer             bool           `json:"isBuffer"`
	IsTemporarilyBlocked bool           `json:"isTemporarilyBlocked"`
	ServiceAvailability  map[int64]bool `json:"serviceAvailability,omitempty"`
}

// SlotsResponse HTTP модель ответа со слотами дня
type SlotsResponse struct {
	Date  string         `json:"date"`
	Slots []SlotResponse `json:"slots"`
}

// FromEngineResult конвертирует результат движка в HTTP response
func FromEngineResult(date string, slots []availability.SlotAvailability) *SlotsResponse {
	resp := &SlotsResponse{
		Date:  date,
		Slots: make([]SlotResponse, 0, len(slots)),
	}
	for _, s := range slots {
		resp.Slots = append(resp.Slots, SlotResponse{
			Time:                 s.Time.String(),
			IsAvailable:          s.IsAvailable,
			IsBooked:             s.IsBooked,
			IsBuffer:             s.IsBuffer,
			IsTemporarilyBlocked: s.IsTemporarilyBlocked,
			ServiceAvailability:  s.ServiceAvailability,
		})
	}
	return resp
}
