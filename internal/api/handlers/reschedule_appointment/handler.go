package reschedule_appointment

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	rescheduleAppointment "github.com/m04kA/SMC-AppointmentService/internal/usecase/reschedule_appointment"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

const (
	msgInvalidID           = "некорректный идентификатор записи"
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgInvalidDateTime     = "некорректные дата или время, ожидается YYYY-MM-DD и HH:MM"
	msgInvalidDate         = "новая дата не может быть в прошлом"
	msgAppointmentNotFound = "запись не найдена"
	msgNotReschedulable    = "запись нельзя перенести в текущем статусе"
	msgSlotNotAvailable    = "выбранный слот недоступен, выберите другое время"
)

type Handler struct {
	useCase RescheduleAppointmentUseCase
	logger  Logger
}

func NewHandler(useCase RescheduleAppointmentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// RescheduleRequest HTTP request model
type RescheduleRequest struct {
	Date      string `json:"date"`      // "2026-09-15"
	StartTime string `json:"startTime"` // "10:00"
}

// RescheduleResponse HTTP response model
type RescheduleResponse struct {
	ID              int64  `json:"id"`
	Date            string `json:"date"`
	StartTime       string `json:"startTime"`
	Status          string `json:"status"`
	RescheduleCount int    `json:"rescheduleCount"`
}

// Handle PATCH /api/v1/appointments/{appointmentId}/reschedule
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["appointmentId"]
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}

	h.execute(w, r, &rescheduleAppointment.Request{AppointmentID: &id})
}

// HandleByToken PATCH /api/v1/appointments/token/{token}/reschedule
// Перенос клиентом своей записи по токену резервации
func (h *Handler) HandleByToken(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]
	h.execute(w, r, &rescheduleAppointment.Request{ReservationToken: &token})
}

func (h *Handler) execute(w http.ResponseWriter, r *http.Request, useCaseReq *rescheduleAppointment.Request) {
	var req RescheduleRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("reschedule appointment - Invalid request body: %v", err)
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

	useCaseReq.Date = date
	useCaseReq.StartTime = startTime
	useCaseReq.SessionID = middleware.SessionID(r)

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, rescheduleAppointment.ErrAppointmentNotFound):
			h.logger.Warn("reschedule appointment - Appointment not found")
			handlers.RespondNotFound(w, msgAppointmentNotFound)
		case errors.Is(err, rescheduleAppointment.ErrNotReschedulable):
			h.logger.Warn("reschedule appointment - Not reschedulable: %v", err)
			handlers.RespondError(w, http.StatusConflict, msgNotReschedulable)
		case errors.Is(err, rescheduleAppointment.ErrSlotNotAvailable):
			h.logger.Warn("reschedule appointment - Slot not available: %s %s", req.Date, req.StartTime)
			handlers.RespondError(w, http.StatusConflict, msgSlotNotAvailable)
		case errors.Is(err, rescheduleAppointment.ErrInvalidDate):
			h.logger.Warn("reschedule appointment - Date in the past: %s", req.Date)
			handlers.RespondBadRequest(w, msgInvalidDate)
		case errors.Is(err, rescheduleAppointment.ErrInvalidInput):
			h.logger.Warn("reschedule appointment - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)
		default:
			h.logger.Error("reschedule appointment - Failed: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("reschedule appointment - Appointment rescheduled: id=%d, date=%s, time=%s",
		result.ID, req.Date, req.StartTime)
	handlers.RespondJSON(w, http.StatusOK, RescheduleResponse{
		ID:              result.ID,
		Date:            result.Date.Format(domain.DateFormat),
		StartTime:       result.StartTime.String(),
		Status:          result.Status,
		RescheduleCount: result.RescheduleCount,
	})
}
