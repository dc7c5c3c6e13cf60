package check_slot

import (
	"net/http"
	"strconv"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

const (
	msgMissingParams = "обязательные параметры: date, time, serviceId"
	msgInvalidDate   = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidTime   = "некорректный формат времени, ожидается HH:MM"
	msgInvalidID     = "некорректный идентификатор"
)

type Handler struct {
	engine AvailabilityEngine
	logger Logger
}

func NewHandler(engine AvailabilityEngine, logger Logger) *Handler {
	return &Handler{
		engine: engine,
		logger: logger,
	}
}

// CheckResponse HTTP модель ответа проверки слота
type CheckResponse struct {
	Date        string `json:"date"`
	Time        string `json:"time"`
	ServiceID   int64  `json:"serviceId"`
	IsAvailable bool   `json:"isAvailable"`
}

// Handle GET /api/v1/availability/check?date&time&serviceId&excludeAppointmentId
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	dateStr := q.Get("date")
	timeStr := q.Get("time")
	serviceIDStr := q.Get("serviceId")
	if dateStr == "" || timeStr == "" || serviceIDStr == "" {
		handlers.RespondBadRequest(w, msgMissingParams)
		return
	}

	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	slotTime, err := types.NewTimeStringFromString(timeStr)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidTime)
		return
	}

	serviceID, err := strconv.ParseInt(serviceIDStr, 10, 64)
	if err != nil || serviceID <= 0 {
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}

	var excludeAppointmentID *int64
	if v := q.Get("excludeAppointmentId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			handlers.RespondBadRequest(w, msgInvalidID)
			return
		}
		excludeAppointmentID = &id
	}

	sessionID := middleware.SessionID(r)

	available := h.engine.IsSlotAvailableForService(r.Context(), date, slotTime, serviceID, sessionID, excludeAppointmentID)
	handlers.RespondJSON(w, http.StatusOK, CheckResponse{
		Date:        dateStr,
		Time:        slotTime.String(),
		ServiceID:   serviceID,
		IsAvailable: available,
	})
}
