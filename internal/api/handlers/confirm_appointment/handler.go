package confirm_appointment

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentsService "github.com/m04kA/SMC-AppointmentService/internal/service/appointments"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

const (
	msgInvalidID           = "некорректный идентификатор записи"
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgInvalidDateTime     = "некорректные дата или время, ожидается YYYY-MM-DD и HH:MM"
	msgAppointmentNotFound = "запись не найдена"
	msgCannotConfirm       = "запись нельзя подтвердить в текущем статусе"
)

type Handler struct {
	service AppointmentService
	logger  Logger
}

func NewHandler(service AppointmentService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// ConfirmRequest HTTP request model
// Подтверждённые дата и время могут отличаться от желаемых клиентом
type ConfirmRequest struct {
	Date      string `json:"date"`      // "2026-09-15"
	StartTime string `json:"startTime"` // "10:00"
}

// ConfirmResponse HTTP response model
type ConfirmResponse struct {
	ID            int64  `json:"id"`
	Status        string `json:"status"`
	ConfirmedDate string `json:"confirmedDate"`
	ConfirmedTime string `json:"confirmedTime"`
}

// Handle PATCH /api/v1/appointments/{appointmentId}/confirm
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["appointmentId"]
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}

	var req ConfirmRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /appointments/{id}/confirm - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	date, err := time.Parse(domain.DateFormat, req.Date)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidDateTime)
		return
	}
	startTime, err := types.NewTimeStringFromString(req.StartTime)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidDateTime)
		return
	}

	appt, err := h.service.Confirm(r.Context(), id, date, startTime)
	if err != nil {
		switch {
		case errors.Is(err, appointmentsService.ErrAppointmentNotFound):
			h.logger.Warn("PATCH /appointments/{id}/confirm - Appointment not found: id=%d", id)
			handlers.RespondNotFound(w, msgAppointmentNotFound)
		case errors.Is(err, appointmentsService.ErrInvalidTransition):
			h.logger.Warn("PATCH /appointments/{id}/confirm - Invalid transition: %v", err)
			handlers.RespondError(w, http.StatusConflict, msgCannotConfirm)
		default:
			h.logger.Error("PATCH /appointments/{id}/confirm - Failed to confirm: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /appointments/{id}/confirm - Appointment confirmed: id=%d, date=%s, time=%s",
		appt.ID, req.Date, req.StartTime)
	handlers.RespondJSON(w, http.StatusOK, ConfirmResponse{
		ID:            appt.ID,
		Status:        string(appt.Status),
		ConfirmedDate: appt.ConfirmedDate.Format(domain.DateFormat),
		ConfirmedTime: appt.ConfirmedTime.String(),
	})
}
