package appointments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

const pqUniqueViolation = "23505"

// effectiveDate выражение действующей даты записи
// (подтверждённая, если есть, иначе желаемая)
const (
	effectiveDate = "COALESCE(confirmed_date, preferred_date)"
	effectiveTime = "COALESCE(confirmed_time, preferred_time)"
)

var appointmentColumns = []string{
	"id",
	"service_id",
	"customer_name",
	"customer_email",
	"customer_phone",
	"preferred_date",
	"preferred_time",
	"confirmed_date",
	"confirmed_time",
	"status",
	"reschedule_count",
	"reservation_token",
	"is_archived",
	"notes",
	"cancellation_reason",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий записей клиентов
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория записей
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает запись
// Частичный уникальный индекс на (действующая дата, действующее время)
// среди активных записей превращает гонку двух одновременных бронирований
// одного слота в ErrSlotTaken у проигравшего - проверка доступности перед
// вставкой остаётся, но не является последней линией защиты
func (r *Repository) Create(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("appointments").
		Columns(
			"service_id",
			"customer_name",
			"customer_email",
			"customer_phone",
			"preferred_date",
			"preferred_time",
			"status",
			"reservation_token",
			"notes",
		).
		Values(
			appt.ServiceID,
			appt.CustomerName,
			appt.CustomerEmail,
			appt.CustomerPhone,
			appt.PreferredDate,
			appt.PreferredTime,
			appt.Status,
			appt.ReservationToken,
			appt.Notes,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&appt.ID, &appt.CreatedAt, &appt.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return nil, ErrSlotTaken
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return appt, nil
}

// GetByID получает запись по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	return r.scanOne(executor.QueryRowContext(ctx, query, args...))
}

// GetByToken получает запись по токену резервации (публичный доступ клиента)
func (r *Repository) GetByToken(ctx context.Context, token string) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"reservation_token": token}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByToken - build select query: %v", ErrBuildQuery, err)
	}

	return r.scanOne(executor.QueryRowContext(ctx, query, args...))
}

// GetByDate получает записи на дату по действующей дате
// activeOnly ограничивает выборку статусами pending/confirmed.
// Внутри транзакции выборка блокируется FOR UPDATE - используется
// usecase создания записи для исключения гонки проверки и вставки
func (r *Repository) GetByDate(ctx context.Context, date time.Time, activeOnly bool) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{effectiveDate: date.Format(domain.DateFormat)}).
		OrderBy(effectiveTime + " ASC")

	if activeOnly {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": activeStatusStrings()})
	}

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByDate - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByDate - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanAppointments(rows)
}

// GetByDateRange получает записи за период по действующей дате
func (r *Repository) GetByDateRange(ctx context.Context, from, to time.Time, activeOnly bool) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.GtOrEq{effectiveDate: from.Format(domain.DateFormat)}).
		Where(squirrel.LtOrEq{effectiveDate: to.Format(domain.DateFormat)}).
		OrderBy(effectiveDate+" ASC", effectiveTime+" ASC")

	if activeOnly {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": activeStatusStrings()})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByDateRange - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByDateRange - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanAppointments(rows)
}

// UpdateStatus обновляет статус записи
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus) error {
	return r.execUpdate(ctx, "UpdateStatus", psqlbuilder.Update("appointments").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}))
}

// Confirm подтверждает запись на указанные дату и время
func (r *Repository) Confirm(ctx context.Context, id int64, date time.Time, startTime types.TimeString) error {
	return r.execUpdate(ctx, "Confirm", psqlbuilder.Update("appointments").
		Set("status", domain.StatusConfirmed).
		Set("confirmed_date", date).
		Set("confirmed_time", startTime).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}))
}

// Cancel отменяет запись с указанием причины
func (r *Repository) Cancel(ctx context.Context, id int64, reason *string) error {
	return r.execUpdate(ctx, "Cancel", psqlbuilder.Update("appointments").
		Set("status", domain.StatusCancelled).
		Set("cancellation_reason", reason).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}))
}

// Reschedule переносит запись на новые дату и время
// Подтверждение сбрасывается, запись возвращается в pending,
// счётчик переносов увеличивается
func (r *Repository) Reschedule(ctx context.Context, id int64, date time.Time, startTime types.TimeString) error {
	builder := psqlbuilder.Update("appointments").
		Set("preferred_date", date).
		Set("preferred_time", startTime).
		Set("confirmed_date", nil).
		Set("confirmed_time", nil).
		Set("status", domain.StatusPending).
		Set("reschedule_count", squirrel.Expr("reschedule_count + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id})

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: Reschedule - build update query: %v", ErrBuildQuery, err)
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return ErrSlotTaken
		}
		return fmt.Errorf("%w: Reschedule - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Reschedule - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrAppointmentNotFound
	}

	return nil
}

// Archive помечает запись архивной
func (r *Repository) Archive(ctx context.Context, id int64) error {
	return r.execUpdate(ctx, "Archive", psqlbuilder.Update("appointments").
		Set("is_archived", true).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}))
}

func (r *Repository) execUpdate(ctx context.Context, op string, builder squirrel.UpdateBuilder) error {
	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: %s - build update query: %v", ErrBuildQuery, op, err)
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}
	if rowsAffected == 0 {
		return ErrAppointmentNotFound
	}

	return nil
}

func (r *Repository) scanOne(row *sql.Row) (*domain.Appointment, error) {
	var appt domain.Appointment
	var confirmedTime sql.NullString

	err := row.Scan(
		&appt.ID,
		&appt.ServiceID,
		&appt.CustomerName,
		&appt.CustomerEmail,
		&appt.CustomerPhone,
		&appt.PreferredDate,
		&appt.PreferredTime,
		&appt.ConfirmedDate,
		&confirmedTime,
		&appt.Status,
		&appt.RescheduleCount,
		&appt.ReservationToken,
		&appt.IsArchived,
		&appt.Notes,
		&appt.CancellationReason,
		&appt.CancelledAt,
		&appt.CreatedAt,
		&appt.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: scan appointment: %v", ErrScanRow, err)
	}

	if err := assignConfirmedTime(&appt, confirmedTime); err != nil {
		return nil, err
	}

	return &appt, nil
}

func (r *Repository) scanAppointments(rows *sql.Rows) ([]*domain.Appointment, error) {
	result := make([]*domain.Appointment, 0)
	for rows.Next() {
		var appt domain.Appointment
		var confirmedTime sql.NullString

		if err := rows.Scan(
			&appt.ID,
			&appt.ServiceID,
			&appt.CustomerName,
			&appt.CustomerEmail,
			&appt.CustomerPhone,
			&appt.PreferredDate,
			&appt.PreferredTime,
			&appt.ConfirmedDate,
			&confirmedTime,
			&appt.Status,
			&appt.RescheduleCount,
			&appt.ReservationToken,
			&appt.IsArchived,
			&appt.Notes,
			&appt.CancellationReason,
			&appt.CancelledAt,
			&appt.CreatedAt,
			&appt.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: scanAppointments - scan appointment: %v", ErrScanRow, err)
		}

		if err := assignConfirmedTime(&appt, confirmedTime); err != nil {
			return nil, err
		}

		result = append(result, &appt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanAppointments - rows error: %v", ErrScanRow, err)
	}
	return result, nil
}

func assignConfirmedTime(appt *domain.Appointment, v sql.NullString) error {
	if !v.Valid {
		return nil
	}
	s := v.String
	if len(s) > len(domain.TimeFormat) {
		s = s[:len(domain.TimeFormat)]
	}
	ts, err := types.NewTimeStringFromString(s)
	if err != nil {
		return fmt.Errorf("%w: parse confirmed_time: %v", ErrScanRow, err)
	}
	appt.ConfirmedTime = &ts
	return nil
}

func activeStatusStrings() []string {
	statuses := make([]string, len(domain.ActiveStatuses))
	for i, s := range domain.ActiveStatuses {
		statuses[i] = string(s)
	}
	return statuses
}
