package schedule

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Repository репозиторий сущностей расписания: шаблоны, привязки,
// месячные расписания и глобальные блокировки
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория расписаний
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// --- Шаблоны ---

// CreateTemplate создает шаблон недельного расписания
func (r *Repository) CreateTemplate(ctx context.Context, tpl *domain.ScheduleTemplate) (*domain.ScheduleTemplate, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	scheduleJSON, err := json.Marshal(tpl.Schedule)
	if err != nil {
		return nil, fmt.Errorf("%w: CreateTemplate - marshal schedule: %v", ErrMarshal, err)
	}

	query, args, err := psqlbuilder.Insert("schedule_templates").
		Columns("name", "schedule", "is_default").
		Values(tpl.Name, scheduleJSON, tpl.IsDefault).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: CreateTemplate - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&tpl.ID, &tpl.CreatedAt, &tpl.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: CreateTemplate - execute insert: %v", ErrExecQuery, err)
	}

	return tpl, nil
}

// GetTemplateByID получает шаблон по ID
func (r *Repository) GetTemplateByID(ctx context.Context, id int64) (*domain.ScheduleTemplate, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "name", "schedule", "is_default", "created_at", "updated_at").
		From("schedule_templates").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetTemplateByID - build select query: %v", ErrBuildQuery, err)
	}

	var tpl domain.ScheduleTemplate
	var scheduleJSON []byte

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&tpl.ID, &tpl.Name, &scheduleJSON, &tpl.IsDefault, &tpl.CreatedAt, &tpl.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetTemplateByID - scan template: %v", ErrScanRow, err)
	}

	if err := json.Unmarshal(scheduleJSON, &tpl.Schedule); err != nil {
		return nil, fmt.Errorf("%w: GetTemplateByID - unmarshal schedule: %v", ErrMarshal, err)
	}

	return &tpl, nil
}

// UpdateTemplate обновляет шаблон
func (r *Repository) UpdateTemplate(ctx context.Context, tpl *domain.ScheduleTemplate) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	scheduleJSON, err := json.Marshal(tpl.Schedule)
	if err != nil {
		return fmt.Errorf("%w: UpdateTemplate - marshal schedule: %v", ErrMarshal, err)
	}

	query, args, err := psqlbuilder.Update("schedule_templates").
		Set("name", tpl.Name).
		Set("schedule", scheduleJSON).
		Set("is_default", tpl.IsDefault).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": tpl.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateTemplate - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateTemplate - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateTemplate - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrTemplateNotFound
	}

	return nil
}

// DeleteTemplate удаляет шаблон
func (r *Repository) DeleteTemplate(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("schedule_templates").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: DeleteTemplate - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: DeleteTemplate - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: DeleteTemplate - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrTemplateNotFound
	}

	return nil
}

// --- Привязки шаблонов ---

// CreateAssignment создает привязку шаблона к году или месяцу
func (r *Repository) CreateAssignment(ctx context.Context, a *domain.TemplateAssignment) (*domain.TemplateAssignment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("template_assignments").
		Columns("template_id", "year", "month").
		Values(a.TemplateID, a.Year, a.Month).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: CreateAssignment - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&a.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: CreateAssignment - execute insert: %v", ErrExecQuery, err)
	}

	return a, nil
}

// GetAssignmentForMonth возвращает действующую привязку шаблона для (year, month)
// Привязка к конкретному месяцу имеет приоритет над годовой (month IS NULL);
// приоритет разрешается сортировкой NULLS LAST
func (r *Repository) GetAssignmentForMonth(ctx context.Context, year, month int) (*domain.TemplateAssignment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "template_id", "year", "month").
		From("template_assignments").
		Where(squirrel.Eq{"year": year}).
		Where(squirrel.Or{
			squirrel.Eq{"month": month},
			squirrel.Eq{"month": nil},
		}).
		OrderBy("month ASC NULLS LAST").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetAssignmentForMonth - build select query: %v", ErrBuildQuery, err)
	}

	var a domain.TemplateAssignment
	err = executor.QueryRowContext(ctx, query, args...).Scan(&a.ID, &a.TemplateID, &a.Year, &a.Month)
	if err == sql.ErrNoRows {
		return nil, ErrAssignmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetAssignmentForMonth - scan assignment: %v", ErrScanRow, err)
	}

	return &a, nil
}

// DeleteAssignment удаляет привязку шаблона
func (r *Repository) DeleteAssignment(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("template_assignments").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: DeleteAssignment - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: DeleteAssignment - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: DeleteAssignment - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrAssignmentNotFound
	}

	return nil
}

// --- Месячные расписания ---

// GetMonthlySchedule получает месячное расписание для (year, month)
func (r *Repository) GetMonthlySchedule(ctx context.Context, year, month int) (*domain.MonthlySchedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "year", "month", "template_id", "blocked_slots", "created_at", "updated_at").
		From("monthly_schedules").
		Where(squirrel.Eq{"year": year, "month": month}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetMonthlySchedule - build select query: %v", ErrBuildQuery, err)
	}

	var ms domain.MonthlySchedule
	var blockedJSON []byte

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&ms.ID, &ms.Year, &ms.Month, &ms.TemplateID, &blockedJSON, &ms.CreatedAt, &ms.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrMonthlyScheduleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetMonthlySchedule - scan monthly schedule: %v", ErrScanRow, err)
	}

	if err := json.Unmarshal(blockedJSON, &ms.BlockedSlots); err != nil {
		return nil, fmt.Errorf("%w: GetMonthlySchedule - unmarshal blocked slots: %v", ErrMarshal, err)
	}

	return &ms, nil
}

// UpsertMonthlySchedule создает или обновляет месячное расписание
// Месячная запись материализуется при первом обращении админки к месяцу
func (r *Repository) UpsertMonthlySchedule(ctx context.Context, ms *domain.MonthlySchedule) (*domain.MonthlySchedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	blockedJSON, err := json.Marshal(ms.BlockedSlots)
	if err != nil {
		return nil, fmt.Errorf("%w: UpsertMonthlySchedule - marshal blocked slots: %v", ErrMarshal, err)
	}

	query, args, err := psqlbuilder.Insert("monthly_schedules").
		Columns("year", "month", "template_id", "blocked_slots").
		Values(ms.Year, ms.Month, ms.TemplateID, blockedJSON).
		Suffix(`ON CONFLICT (year, month) DO UPDATE
			SET template_id = EXCLUDED.template_id,
			    blocked_slots = EXCLUDED.blocked_slots,
			    updated_at = NOW()
			RETURNING id, created_at, updated_at`).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: UpsertMonthlySchedule - build upsert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&ms.ID, &ms.CreatedAt, &ms.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: UpsertMonthlySchedule - execute upsert: %v", ErrExecQuery, err)
	}

	return ms, nil
}

// --- Глобальные блокировки ---

// CreateBlockedSlot создает глобальную блокировку диапазона дат/времени
func (r *Repository) CreateBlockedSlot(ctx context.Context, b *domain.BlockedSlot) (*domain.BlockedSlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("blocked_slots").
		Columns("start_date", "end_date", "start_time", "end_time", "is_all_day", "reason").
		Values(b.StartDate, b.EndDate, b.StartTime, b.EndTime, b.IsAllDay, b.Reason).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: CreateBlockedSlot - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: CreateBlockedSlot - execute insert: %v", ErrExecQuery, err)
	}

	return b, nil
}

// GetBlockedSlotsForDate возвращает все глобальные блокировки, чей диапазон
// дат покрывает указанную дату
func (r *Repository) GetBlockedSlotsForDate(ctx context.Context, date time.Time) ([]*domain.BlockedSlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	day := date.Format(domain.DateFormat)

	query, args, err := psqlbuilder.Select("id", "start_date", "end_date", "start_time", "end_time", "is_all_day", "reason", "created_at").
		From("blocked_slots").
		Where(squirrel.LtOrEq{"start_date": day}).
		Where(squirrel.GtOrEq{"COALESCE(end_date, start_date)": day}).
		OrderBy("start_date ASC, id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetBlockedSlotsForDate - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetBlockedSlotsForDate - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanBlockedSlots(rows)
}

// DeleteBlockedSlot удаляет глобальную блокировку
func (r *Repository) DeleteBlockedSlot(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("blocked_slots").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: DeleteBlockedSlot - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: DeleteBlockedSlot - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: DeleteBlockedSlot - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrBlockedSlotNotFound
	}

	return nil
}

func (r *Repository) scanBlockedSlots(rows *sql.Rows) ([]*domain.BlockedSlot, error) {
	result := make([]*domain.BlockedSlot, 0)
	for rows.Next() {
		var b domain.BlockedSlot
		var startTime, endTime, reason sql.NullString
		if err := rows.Scan(
			&b.ID, &b.StartDate, &b.EndDate, &startTime, &endTime,
			&b.IsAllDay, &reason, &b.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: scanBlockedSlots - scan blocked slot: %v", ErrScanRow, err)
		}
		b.Reason = reason.String
		if startTime.Valid {
			ts, err := parseTimeColumn(startTime.String)
			if err != nil {
				return nil, fmt.Errorf("%w: scanBlockedSlots - parse start_time: %v", ErrScanRow, err)
			}
			b.StartTime = &ts
		}
		if endTime.Valid {
			ts, err := parseTimeColumn(endTime.String)
			if err != nil {
				return nil, fmt.Errorf("%w: scanBlockedSlots - parse end_time: %v", ErrScanRow, err)
			}
			b.EndTime = &ts
		}
		result = append(result, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBlockedSlots - rows error: %v", ErrScanRow, err)
	}
	return result, nil
}

// parseTimeColumn конвертирует значение TIME колонки ("HH:MM:SS") в TimeString
func parseTimeColumn(s string) (types.TimeString, error) {
	if len(s) > len(domain.TimeFormat) {
		s = s[:len(domain.TimeFormat)]
	}
	return types.NewTimeStringFromString(s)
}
