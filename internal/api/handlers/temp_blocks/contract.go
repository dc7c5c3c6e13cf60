package temp_blocks

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

type TempBlockManager interface {
	Create(ctx context.Context, sessionID string, date time.Time, slotTime types.TimeString) (*domain.TemporaryBlock, error)
	Extend(ctx context.Context, sessionID string) (*domain.TemporaryBlock, error)
	Release(ctx context.Context, sessionID string) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
