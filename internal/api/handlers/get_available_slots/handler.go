package get_available_slots

import (
	"net/http"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

const (
	msgMissingDate = "не указана дата, ожидается параметр date=YYYY-MM-DD"
	msgInvalidDate = "некорректный формат даты, ожидается YYYY-MM-DD"
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

// Handle GET /api/v1/availability?date=YYYY-MM-DD
// Сессия запрашивающего берётся из X-Session-ID (опционально) -
// её собственная временная блокировка показывается доступной
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		h.logger.Warn("GET /availability - Invalid date %q: %v", dateStr, err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	sessionID := middleware.SessionID(r)

	slots := h.engine.ListAvailableSlots(r.Context(), date, sessionID)
	handlers.RespondJSON(w, http.StatusOK, FromEngineResult(dateStr, slots))
}
