package public_availability

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	publicAvailability "github.com/m04kA/SMC-AppointmentService/internal/usecase/public_availability"
)

const (
	msgInvalidDate   = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidParams = "некорректные параметры запроса"
)

type Handler struct {
	useCase PublicAvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase PublicAvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /public/availability?date&range&cache
// Анонимный эндпоинт для календаря сайта; ответ кешируется CDN
// согласно заголовку Cache-Control
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	req := &publicAvailability.Request{
		CacheMode: q.Get("cache"),
	}

	if dateStr := q.Get("date"); dateStr != "" {
		date, err := time.Parse(domain.DateFormat, dateStr)
		if err != nil {
			handlers.RespondBadRequest(w, msgInvalidDate)
			return
		}
		req.Date = &date
	}

	if rangeStr := q.Get("range"); rangeStr != "" {
		rangeDays, err := strconv.Atoi(rangeStr)
		if err != nil || rangeDays < 0 {
			handlers.RespondBadRequest(w, msgInvalidParams)
			return
		}
		req.RangeDays = rangeDays
	}

	result, err := h.useCase.Execute(r.Context(), req)
	if err != nil {
		if errors.Is(err, publicAvailability.ErrInvalidInput) {
			h.logger.Warn("GET /public/availability - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidParams)
			return
		}
		h.logger.Error("GET /public/availability - Failed: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	w.Header().Set("Cache-Control", result.CacheControl)
	handlers.RespondJSON(w, http.StatusOK, result)
}
