package create_appointment

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	createAppointment "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_appointment"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// CreateAppointmentRequest HTTP request model
type CreateAppointmentRequest struct {
	ServiceID     int64   `json:"serviceId"`
	CustomerName  string  `json:"customerName"`
	CustomerEmail string  `json:"customerEmail"`
	CustomerPhone string  `json:"customerPhone"`
	Date          string  `json:"date"`      // "2026-09-15"
	StartTime     string  `json:"startTime"` // "10:00"
	Notes         *string `json:"notes,omitempty"`
}

// AppointmentResponse HTTP response model
type AppointmentResponse struct {
	ID               int64   `json:"id"`
	ServiceID        int64   `json:"serviceId"`
	CustomerName     string  `json:"customerName"`
	CustomerEmail    string  `json:"customerEmail"`
	CustomerPhone    string  `json:"customerPhone"`
	Date             string  `json:"date"`
	StartTime        string  `json:"startTime"`
	Status           string  `json:"status"`
	ReservationToken string  `json:"reservationToken"`
	Notes            *string `json:"notes,omitempty"`
	CreatedAt        string  `json:"createdAt"`
	UpdatedAt        string  `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateAppointmentRequest) ToUseCaseRequest(sessionID string) (*createAppointment.Request, error) {
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, err
	}

	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, err
	}

	return &createAppointment.Request{
		ServiceID:     r.ServiceID,
		CustomerName:  r.CustomerName,
		CustomerEmail: r.CustomerEmail,
		CustomerPhone: r.CustomerPhone,
		Date:          date,
		StartTime:     startTime,
		Notes:         r.Notes,
		SessionID:     sessionID,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createAppointment.Response) *AppointmentResponse {
	return &AppointmentResponse{
		ID:               resp.ID,
		ServiceID:        resp.ServiceID,
		CustomerName:     resp.CustomerName,
		CustomerEmail:    resp.CustomerEmail,
		CustomerPhone:    resp.CustomerPhone,
		Date:             resp.Date.Format(domain.DateFormat),
		StartTime:        resp.StartTime.String(),
		Status:           resp.Status,
		ReservationToken: resp.ReservationToken,
		Notes:            resp.Notes,
		CreatedAt:        resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        resp.UpdatedAt.Format(time.RFC3339),
	}
}
