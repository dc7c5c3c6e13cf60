package get_appointment

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// AppointmentResponse HTTP response model
type AppointmentResponse struct {
	ID                 int64   `json:"id"`
	ServiceID          int64   `json:"serviceId"`
	CustomerName       string  `json:"customerName"`
	CustomerEmail      string  `json:"customerEmail"`
	CustomerPhone      string  `json:"customerPhone"`
	PreferredDate      string  `json:"preferredDate"`
	PreferredTime      string  `json:"preferredTime"`
	ConfirmedDate      *string `json:"confirmedDate,omitempty"`
	ConfirmedTime      *string `json:"confirmedTime,omitempty"`
	Status             string  `json:"status"`
	RescheduleCount    int     `json:"rescheduleCount"`
	ReservationToken   string  `json:"reservationToken"`
	IsArchived         bool    `json:"isArchived"`
	Notes              *string `json:"notes,omitempty"`
	CancellationReason *string `json:"cancellationReason,omitempty"`
	CreatedAt          string  `json:"createdAt"`
	UpdatedAt          string  `json:"updatedAt"`
}

// FromDomain конвертирует доменную запись в HTTP response
func FromDomain(a *domain.Appointment) *AppointmentResponse {
	resp := &AppointmentResponse{
		ID:                 a.ID,
		ServiceID:          a.ServiceID,
		CustomerName:       a.CustomerName,
		CustomerEmail:      a.CustomerEmail,
		CustomerPhone:      a.CustomerPhone,
		PreferredDate:      a.PreferredDate.Format(domain.DateFormat),
		PreferredTime:      a.PreferredTime.String(),
		Status:             string(a.Status),
		RescheduleCount:    a.RescheduleCount,
		ReservationToken:   a.ReservationToken,
		IsArchived:         a.IsArchived,
		Notes:              a.Notes,
		CancellationReason: a.CancellationReason,
		CreatedAt:          a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          a.UpdatedAt.Format(time.RFC3339),
	}
	if a.ConfirmedDate != nil {
		d := a.ConfirmedDate.Format(domain.DateFormat)
		resp.ConfirmedDate = &d
	}
	if a.ConfirmedTime != nil {
		t := a.ConfirmedTime.String()
		resp.ConfirmedTime = &t
	}
	return resp
}
