package get_appointment

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	appointmentsService "github.com/m04kA/SMC-AppointmentService/internal/service/appointments"
)

const (
	msgInvalidID           = "некорректный идентификатор записи"
	msgAppointmentNotFound = "запись не найдена"
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

// HandleByID GET /api/v1/appointments/{appointmentId}
func (h *Handler) HandleByID(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["appointmentId"]
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}

	appt, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.respondError(w, "GET /appointments/{id}", err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, FromDomain(appt))
}

// HandleByToken GET /api/v1/appointments/token/{token}
// Публичный доступ клиента к своей записи по токену резервации
func (h *Handler) HandleByToken(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]

	appt, err := h.service.GetByToken(r.Context(), token)
	if err != nil {
		h.respondError(w, "GET /appointments/token/{token}", err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, FromDomain(appt))
}

func (h *Handler) respondError(w http.ResponseWriter, route string, err error) {
	if errors.Is(err, appointmentsService.ErrAppointmentNotFound) {
		h.logger.Warn("%s - Appointment not found", route)
		handlers.RespondNotFound(w, msgAppointmentNotFound)
		return
	}
	h.logger.Error("%s - Failed to get appointment: %v", route, err)
	handlers.RespondInternalError(w)
}
