package tempblocks

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
)

var blockColumns = []string{
	"id",
	"block_date",
	"block_time",
	"session_id",
	"created_at",
	"expires_at",
}

// Repository репозиторий временных блокировок слотов
// Индекс (block_date, session_id, expires_at) позволяет фильтровать
// по сессии и сроку жизни на стороне БД
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория временных блокировок
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает временную блокировку
func (r *Repository) Create(ctx context.Context, block *domain.TemporaryBlock) (*domain.TemporaryBlock, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("temporary_blocks").
		Columns(blockColumns...).
		Values(block.ID, block.Date, block.Time, block.SessionID, block.CreatedAt, block.ExpiresAt).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return block, nil
}

// GetActiveBySession возвращает активную блокировку сессии
// (expires_at > now; у сессии не больше одной)
func (r *Repository) GetActiveBySession(ctx context.Context, sessionID string, now time.Time) (*domain.TemporaryBlock, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(blockColumns...).
		From("temporary_blocks").
		Where(squirrel.Eq{"session_id": sessionID}).
		Where(squirrel.Gt{"expires_at": now}).
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveBySession - build select query: %v", ErrBuildQuery, err)
	}

	var block domain.TemporaryBlock
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&block.ID, &block.Date, &block.Time, &block.SessionID, &block.CreatedAt, &block.ExpiresAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrBlockNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveBySession - scan block: %v", ErrScanRow, err)
	}

	return &block, nil
}

// GetActiveByDate возвращает все неистёкшие блокировки на дату
func (r *Repository) GetActiveByDate(ctx context.Context, date time.Time, now time.Time) ([]*domain.TemporaryBlock, error) {
	return r.GetActiveByDateRange(ctx, date, date, now)
}

// GetActiveByDateRange возвращает все неистёкшие блокировки за период
func (r *Repository) GetActiveByDateRange(ctx context.Context, from, to time.Time, now time.Time) ([]*domain.TemporaryBlock, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(blockColumns...).
		From("temporary_blocks").
		Where(squirrel.GtOrEq{"block_date": from.Format(domain.DateFormat)}).
		Where(squirrel.LtOrEq{"block_date": to.Format(domain.DateFormat)}).
		Where(squirrel.Gt{"expires_at": now}).
		OrderBy("block_date ASC, block_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveByDateRange - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveByDateRange - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	result := make([]*domain.TemporaryBlock, 0)
	for rows.Next() {
		var block domain.TemporaryBlock
		if err := rows.Scan(
			&block.ID, &block.Date, &block.Time, &block.SessionID, &block.CreatedAt, &block.ExpiresAt,
		); err != nil {
			return nil, fmt.Errorf("%w: GetActiveByDateRange - scan block: %v", ErrScanRow, err)
		}
		result = append(result, &block)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetActiveByDateRange - rows error: %v", ErrScanRow, err)
	}

	return result, nil
}

// ExtendBySession продлевает блокировку сессии до expiresAt
func (r *Repository) ExtendBySession(ctx context.Context, sessionID string, now, expiresAt time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("temporary_blocks").
		Set("expires_at", expiresAt).
		Where(squirrel.Eq{"session_id": sessionID}).
		Where(squirrel.Gt{"expires_at": now}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: ExtendBySession - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: ExtendBySession - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: ExtendBySession - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrBlockNotFound
	}

	return nil
}

// DeleteBySession удаляет все блокировки сессии; идемпотентна
func (r *Repository) DeleteBySession(ctx context.Context, sessionID string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("temporary_blocks").
		Where(squirrel.Eq{"session_id": sessionID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: DeleteBySession - build delete query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: DeleteBySession - execute delete: %v", ErrExecQuery, err)
	}

	return nil
}

// DeleteExpired удаляет все блокировки с истёкшим сроком жизни
// Возвращает количество удалённых блокировок
func (r *Repository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("temporary_blocks").
		Where(squirrel.LtOrEq{"expires_at": now}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteExpired - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteExpired - execute delete: %v", ErrExecQuery, err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteExpired - get rows affected: %v", ErrExecQuery, err)
	}

	return deleted, nil
}
