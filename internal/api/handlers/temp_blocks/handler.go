package temp_blocks

import (
	"errors"
	"net/http"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	tempblocksService "github.com/m04kA/SMC-AppointmentService/internal/service/tempblocks"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDateTime    = "некорректные дата или время, ожидается YYYY-MM-DD и HH:MM"
	msgSlotNotAvailable   = "слот недоступен для удержания"
	msgNoActiveBlock      = "у сессии нет активной блокировки"
)

type Handler struct {
	manager TempBlockManager
	logger  Logger
}

func NewHandler(manager TempBlockManager, logger Logger) *Handler {
	return &Handler{
		manager: manager,
		logger:  logger,
	}
}

// CreateBlockRequest HTTP request model
type CreateBlockRequest struct {
	Date string `json:"date"` // "2026-09-15"
	Time string `json:"time"` // "10:00"
}

// BlockResponse HTTP response model
type BlockResponse struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	ExpiresAt string `json:"expiresAt"`
}

// HandleCreate POST /api/v1/temporary-blocks
// Заменяет прежнюю блокировку сессии, если она была
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateBlockRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /temporary-blocks - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	date, err := time.Parse(domain.DateFormat, req.Date)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidDateTime)
		return
	}
	slotTime, err := types.NewTimeStringFromString(req.Time)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidDateTime)
		return
	}

	sessionID := middleware.SessionID(r)

	block, err := h.manager.Create(r.Context(), sessionID, date, slotTime)
	if err != nil {
		if errors.Is(err, tempblocksService.ErrSlotNotAvailable) {
			h.logger.Warn("POST /temporary-blocks - Slot not available: %s %s", req.Date, req.Time)
			handlers.RespondError(w, http.StatusConflict, msgSlotNotAvailable)
			return
		}
		h.logger.Error("POST /temporary-blocks - Failed to create block: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("POST /temporary-blocks - Block created: id=%s, date=%s, time=%s",
		block.ID, req.Date, req.Time)
	handlers.RespondJSON(w, http.StatusCreated, fromDomain(block))
}

// HandleExtend PATCH /api/v1/temporary-blocks/extend
func (h *Handler) HandleExtend(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.SessionID(r)

	block, err := h.manager.Extend(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, tempblocksService.ErrNoActiveBlock) {
			h.logger.Warn("PATCH /temporary-blocks/extend - No active block for session")
			handlers.RespondNotFound(w, msgNoActiveBlock)
			return
		}
		h.logger.Error("PATCH /temporary-blocks/extend - Failed to extend block: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, fromDomain(block))
}

// HandleRelease DELETE /api/v1/temporary-blocks
// Идемпотентен: отсутствие блокировки - тоже успех
func (h *Handler) HandleRelease(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.SessionID(r)

	if err := h.manager.Release(r.Context(), sessionID); err != nil {
		h.logger.Error("DELETE /temporary-blocks - Failed to release block: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusNoContent, nil)
}

func fromDomain(b *domain.TemporaryBlock) *BlockResponse {
	return &BlockResponse{
		ID:        b.ID,
		Date:      b.Date.Format(domain.DateFormat),
		Time:      b.Time.String(),
		ExpiresAt: b.ExpiresAt.Format(time.RFC3339),
	}
}
