package update_appointment_status

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentsService "github.com/m04kA/SMC-AppointmentService/internal/service/appointments"
)

const (
	msgInvalidID           = "некорректный идентификатор записи"
	msgAppointmentNotFound = "запись не найдена"
	msgInvalidTransition   = "операция недопустима в текущем статусе записи"
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

// StatusResponse HTTP response model
type StatusResponse struct {
	ID         int64  `json:"id"`
	Status     string `json:"status"`
	IsArchived bool   `json:"isArchived"`
}

// HandleComplete PATCH /api/v1/appointments/{appointmentId}/complete
func (h *Handler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "PATCH /appointments/{id}/complete", h.service.Complete)
}

// HandleArchive PATCH /api/v1/appointments/{appointmentId}/archive
func (h *Handler) HandleArchive(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "PATCH /appointments/{id}/archive", h.service.Archive)
}

func (h *Handler) handle(
	w http.ResponseWriter,
	r *http.Request,
	route string,
	op func(ctx context.Context, id int64) (*domain.Appointment, error),
) {
	idStr := mux.Vars(r)["appointmentId"]
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}

	appt, err := op(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, appointmentsService.ErrAppointmentNotFound):
			h.logger.Warn("%s - Appointment not found: id=%d", route, id)
			handlers.RespondNotFound(w, msgAppointmentNotFound)
		case errors.Is(err, appointmentsService.ErrInvalidTransition):
			h.logger.Warn("%s - Invalid transition: %v", route, err)
			handlers.RespondError(w, http.StatusConflict, msgInvalidTransition)
		default:
			h.logger.Error("%s - Failed to update appointment: %v", route, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("%s - Appointment updated: id=%d, status=%s", route, appt.ID, appt.Status)
	handlers.RespondJSON(w, http.StatusOK, StatusResponse{
		ID:         appt.ID,
		Status:     string(appt.Status),
		IsArchived: appt.IsArchived,
	})
}
