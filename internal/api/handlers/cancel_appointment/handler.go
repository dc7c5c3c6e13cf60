package cancel_appointment

import (
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
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgAppointmentNotFound = "запись не найдена"
	msgCannotCancel        = "запись нельзя отменить в текущем статусе"
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

// CancelRequest HTTP request model
type CancelRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// CancelResponse HTTP response model
type CancelResponse struct {
	ID                 int64   `json:"id"`
	Status             string  `json:"status"`
	CancellationReason *string `json:"cancellationReason,omitempty"`
}

// Handle PATCH /api/v1/appointments/{appointmentId}/cancel
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["appointmentId"]
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}

	req, ok := h.decodeBody(w, r)
	if !ok {
		return
	}

	appt, err := h.service.Cancel(r.Context(), id, req.Reason)
	if err != nil {
		h.respondError(w, "PATCH /appointments/{id}/cancel", err)
		return
	}

	h.logger.Info("PATCH /appointments/{id}/cancel - Appointment cancelled: id=%d", appt.ID)
	handlers.RespondJSON(w, http.StatusOK, fromDomain(appt))
}

// HandleByToken PATCH /api/v1/appointments/token/{token}/cancel
// Отмена клиентом своей записи по токену резервации
func (h *Handler) HandleByToken(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]

	req, ok := h.decodeBody(w, r)
	if !ok {
		return
	}

	appt, err := h.service.CancelByToken(r.Context(), token, req.Reason)
	if err != nil {
		h.respondError(w, "PATCH /appointments/token/{token}/cancel", err)
		return
	}

	h.logger.Info("PATCH /appointments/token/{token}/cancel - Appointment cancelled: id=%d", appt.ID)
	handlers.RespondJSON(w, http.StatusOK, fromDomain(appt))
}

func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request) (*CancelRequest, bool) {
	var req CancelRequest
	// Пустое тело допустимо - причина опциональна
	if r.Body != nil && r.ContentLength != 0 {
		if err := handlers.DecodeJSON(r, &req); err != nil {
			h.logger.Warn("cancel appointment - Invalid request body: %v", err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)
			return nil, false
		}
	}
	return &req, true
}

func (h *Handler) respondError(w http.ResponseWriter, route string, err error) {
	switch {
	case errors.Is(err, appointmentsService.ErrAppointmentNotFound):
		h.logger.Warn("%s - Appointment not found", route)
		handlers.RespondNotFound(w, msgAppointmentNotFound)
	case errors.Is(err, appointmentsService.ErrInvalidTransition):
		h.logger.Warn("%s - Invalid transition: %v", route, err)
		handlers.RespondError(w, http.StatusConflict, msgCannotCancel)
	default:
		h.logger.Error("%s - Failed to cancel appointment: %v", route, err)
		handlers.RespondInternalError(w)
	}
}

func fromDomain(a *domain.Appointment) *CancelResponse {
	return &CancelResponse{
		ID:                 a.ID,
		Status:             string(a.Status),
		CancellationReason: a.CancellationReason,
	}
}
