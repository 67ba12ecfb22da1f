package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dineops/attendance-backend-go/internal/domain/shift"
	"github.com/dineops/attendance-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type shiftRepository struct {
	db *database.DB
}

func NewShiftRepository(db *database.DB) shift.ShiftRepository {
	return &shiftRepository{db: db}
}

const shiftColumns = `
	s.id, s.user_id, s.date, s.start_time, s.end_time,
	s.start_photo_ref, s.end_photo_ref,
	s.status, s.approval_status, s.remarks, s.approved_by, s.approved_at,
	s.late_minutes, s.is_overtime, s.total_hours,
	s.created_at, s.updated_at`

func scanShift(row pgx.Row) (shift.Shift, error) {
	var s shift.Shift
	err := row.Scan(
		&s.ID, &s.UserID, &s.Date, &s.StartTime, &s.EndTime,
		&s.StartPhotoRef, &s.EndPhotoRef,
		&s.Status, &s.ApprovalStatus, &s.Remarks, &s.ApprovedBy, &s.ApprovedAt,
		&s.LateMinutes, &s.IsOvertime, &s.TotalHours,
		&s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

// InsertActive implements shift.ShiftRepository. The WHERE NOT EXISTS
// guard plus the partial unique index on (user_id) WHERE status =
// 'active' make the single-active-shift invariant hold under
// concurrent starts: one insert wins, the other surfaces
// ErrShiftAlreadyActive.
func (r *shiftRepository) InsertActive(ctx context.Context, s shift.Shift) (shift.Shift, error) {
	q := GetQuerier(ctx, r.db)

	s.ID = uuid.Must(uuid.NewV7()).String()

	query := `
		INSERT INTO shifts (
			id, user_id, date, start_time, start_photo_ref,
			status, approval_status, late_minutes, is_overtime
		)
		SELECT $1, $2, $3, $4, $5, 'active', 'pending', $6, false
		WHERE NOT EXISTS (
			SELECT 1 FROM shifts WHERE user_id = $2 AND status = 'active'
		)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		s.ID,
		s.UserID,
		s.Date,
		s.StartTime,
		s.StartPhotoRef,
		s.LateMinutes,
	).Scan(&s.CreatedAt, &s.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return shift.Shift{}, shift.ErrShiftAlreadyActive
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return shift.Shift{}, shift.ErrShiftAlreadyActive
		}
		return shift.Shift{}, fmt.Errorf("failed to insert shift: %w", err)
	}

	s.Status = shift.StatusActive
	s.ApprovalStatus = shift.ApprovalPending
	return s, nil
}

// GetActive implements shift.ShiftRepository.
func (r *shiftRepository) GetActive(ctx context.Context, userID string) (shift.Shift, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM shifts s
		WHERE s.user_id = $1
		  AND s.status = 'active'
		LIMIT 1
	`, shiftColumns)

	s, err := scanShift(q.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return shift.Shift{}, shift.ErrNoActiveShift
		}
		return shift.Shift{}, fmt.Errorf("failed to get active shift: %w", err)
	}

	return s, nil
}

// CompleteActive implements shift.ShiftRepository. The conditional
// UPDATE on status = 'active' is the atomic close; zero rows means
// there was nothing to close.
func (r *shiftRepository) CompleteActive(ctx context.Context, userID string, end shift.EndMutation) (shift.Shift, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		UPDATE shifts s
		SET end_time = $2,
			end_photo_ref = $3,
			total_hours = $4,
			is_overtime = $5,
			status = 'completed',
			approval_status = 'pending',
			updated_at = NOW()
		WHERE s.user_id = $1
		  AND s.id = $6
		  AND s.status = 'active'
		RETURNING %s
	`, shiftColumns)

	s, err := scanShift(q.QueryRow(ctx, query,
		userID,
		end.EndTime,
		end.EndPhotoRef,
		end.TotalHours,
		end.IsOvertime,
		end.ShiftID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return shift.Shift{}, shift.ErrNoActiveShift
		}
		return shift.Shift{}, fmt.Errorf("failed to complete shift: %w", err)
	}

	return s, nil
}

// GetByID implements shift.ShiftRepository.
func (r *shiftRepository) GetByID(ctx context.Context, id string) (shift.Shift, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT %s, u.display_name, u.email
		FROM shifts s
		LEFT JOIN users u ON u.id = s.user_id
		WHERE s.id = $1
	`, shiftColumns)

	var s shift.Shift
	err := q.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.UserID, &s.Date, &s.StartTime, &s.EndTime,
		&s.StartPhotoRef, &s.EndPhotoRef,
		&s.Status, &s.ApprovalStatus, &s.Remarks, &s.ApprovedBy, &s.ApprovedAt,
		&s.LateMinutes, &s.IsOvertime, &s.TotalHours,
		&s.CreatedAt, &s.UpdatedAt,
		&s.UserName, &s.UserEmail,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return shift.Shift{}, shift.ErrShiftNotFound
		}
		return shift.Shift{}, fmt.Errorf("failed to get shift: %w", err)
	}

	return s, nil
}

// buildQueryConditions translates a filter into WHERE clauses shared
// by the count and page queries.
func buildQueryConditions(filter shift.ShiftFilter, disputeMarker string) ([]string, []interface{}) {
	conditions := []string{}
	args := []interface{}{}

	add := func(cond string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if filter.UserID != nil {
		add("s.user_id = $%d", *filter.UserID)
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		add("s.date >= $%d", *filter.StartDate)
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		add("s.date <= $%d", *filter.EndDate)
	}
	if filter.Status != nil {
		add("s.status = $%d", *filter.Status)
	}
	if filter.ApprovalStatus != nil {
		add("s.approval_status = $%d", *filter.ApprovalStatus)
	}
	if filter.LateOnly {
		conditions = append(conditions, "s.late_minutes > 0")
	}
	if filter.OvertimeOnly {
		conditions = append(conditions, "s.is_overtime = true")
	}
	// A blank marker never matches, mirroring Shift.Triage
	if filter.DisputedOnly && disputeMarker != "" {
		add("s.remarks ILIKE '%%' || $%d || '%%'", disputeMarker)
	}
	if filter.Search != nil {
		args = append(args, *filter.Search)
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(u.display_name ILIKE '%%' || $%d || '%%' OR u.email ILIKE '%%' || $%d || '%%')",
			n, n,
		))
	}

	return conditions, args
}

// Query implements shift.ShiftRepository.
func (r *shiftRepository) Query(ctx context.Context, filter shift.ShiftFilter, disputeMarker string) ([]shift.Shift, int64, error) {
	q := GetQuerier(ctx, r.db)

	conditions, args := buildQueryConditions(filter, disputeMarker)
	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM shifts s
		LEFT JOIN users u ON u.id = s.user_id
		%s
	`, where)

	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count shifts: %w", err)
	}

	offset := (filter.Page - 1) * filter.PageSize
	pageQuery := fmt.Sprintf(`
		SELECT %s, u.display_name, u.email
		FROM shifts s
		LEFT JOIN users u ON u.id = s.user_id
		%s
		ORDER BY s.start_time DESC, s.id DESC
		LIMIT $%d OFFSET $%d
	`, shiftColumns, where, len(args)+1, len(args)+2)
	args = append(args, filter.PageSize, offset)

	rows, err := q.Query(ctx, pageQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query shifts: %w", err)
	}
	defer rows.Close()

	shifts := []shift.Shift{}
	for rows.Next() {
		var s shift.Shift
		err := rows.Scan(
			&s.ID, &s.UserID, &s.Date, &s.StartTime, &s.EndTime,
			&s.StartPhotoRef, &s.EndPhotoRef,
			&s.Status, &s.ApprovalStatus, &s.Remarks, &s.ApprovedBy, &s.ApprovedAt,
			&s.LateMinutes, &s.IsOvertime, &s.TotalHours,
			&s.CreatedAt, &s.UpdatedAt,
			&s.UserName, &s.UserEmail,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan shift row: %w", err)
		}
		shifts = append(shifts, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate shift rows: %w", err)
	}

	return shifts, total, nil
}

// QueryByUser implements shift.ShiftRepository.
func (r *shiftRepository) QueryByUser(ctx context.Context, userID string, filter shift.MyShiftFilter, disputeMarker string) ([]shift.Shift, int64, error) {
	full := shift.ShiftFilter{
		UserID:         &userID,
		StartDate:      filter.StartDate,
		EndDate:        filter.EndDate,
		Status:         filter.Status,
		ApprovalStatus: filter.ApprovalStatus,
		LateOnly:       filter.LateOnly,
		OvertimeOnly:   filter.OvertimeOnly,
		DisputedOnly:   filter.DisputedOnly,
		Page:           filter.Page,
		PageSize:       filter.PageSize,
	}
	return r.Query(ctx, full, disputeMarker)
}

// UpdateApproval implements shift.ShiftRepository. Zero rows on the
// conditional UPDATE means either a missing record or a record no
// longer pending; a follow-up existence probe tells them apart. Both
// statements run in one transaction so the probe sees the same
// snapshot the UPDATE did.
func (r *shiftRepository) UpdateApproval(ctx context.Context, id string, d shift.ApprovalMutation) (shift.Shift, error) {
	var decided shift.Shift
	txErr := WithTransaction(ctx, r.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)

		query := fmt.Sprintf(`
			UPDATE shifts s
			SET approval_status = $2,
				approved_by = $3,
				approved_at = $4,
				remarks = COALESCE($5, s.remarks),
				updated_at = NOW()
			WHERE s.id = $1
			  AND s.status = 'completed'
			  AND s.approval_status = 'pending'
			RETURNING %s
		`, shiftColumns)

		s, err := scanShift(q.QueryRow(ctx, query,
			id,
			d.Status,
			d.ApprovedBy,
			d.ApprovedAt,
			d.Remarks,
		))
		if err == nil {
			decided = s
			return nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("failed to update approval: %w", err)
		}

		var exists bool
		if probeErr := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM shifts WHERE id = $1)`, id).Scan(&exists); probeErr != nil {
			return fmt.Errorf("failed to probe shift: %w", probeErr)
		}
		if !exists {
			return shift.ErrShiftNotFound
		}
		return shift.ErrNotPending
	})
	if txErr != nil {
		return shift.Shift{}, txErr
	}
	return decided, nil
}

// Summarize implements shift.ShiftRepository.
func (r *shiftRepository) Summarize(ctx context.Context, userID string, w shift.StatsWindow) (shift.StatsRow, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"user_id = $1"}
	args := []interface{}{userID}

	if w.Month != nil {
		args = append(args, *w.Month)
		conditions = append(conditions, fmt.Sprintf("EXTRACT(MONTH FROM date) = $%d", len(args)))
	}
	if w.Year != nil {
		args = append(args, *w.Year)
		conditions = append(conditions, fmt.Sprintf("EXTRACT(YEAR FROM date) = $%d", len(args)))
	}

	query := fmt.Sprintf(`
		SELECT COUNT(*),
			   COUNT(*) FILTER (WHERE status = 'completed'),
			   COUNT(*) FILTER (WHERE status = 'active'),
			   COALESCE(SUM(total_hours) FILTER (WHERE status = 'completed'), 0),
			   COUNT(DISTINCT date)
		FROM shifts
		WHERE %s
	`, strings.Join(conditions, " AND "))

	var row shift.StatsRow
	err := q.QueryRow(ctx, query, args...).Scan(
		&row.TotalShifts,
		&row.CompletedShifts,
		&row.ActiveShifts,
		&row.TotalHours,
		&row.DaysPresent,
	)
	if err != nil {
		return shift.StatsRow{}, fmt.Errorf("failed to summarize shifts: %w", err)
	}

	return row, nil
}

// ListExpiredPhotoRefs implements shift.ShiftRepository.
func (r *shiftRepository) ListExpiredPhotoRefs(ctx context.Context, cutoff time.Time, limit int) ([]shift.PhotoRef, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, start_photo_ref, end_photo_ref
		FROM shifts
		WHERE created_at < $1
		  AND (start_photo_ref IS NOT NULL OR end_photo_ref IS NOT NULL)
		ORDER BY created_at
		LIMIT $2
	`

	rows, err := q.Query(ctx, query, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired photo refs: %w", err)
	}
	defer rows.Close()

	refs := []shift.PhotoRef{}
	for rows.Next() {
		var ref shift.PhotoRef
		if err := rows.Scan(&ref.ShiftID, &ref.StartPhotoRef, &ref.EndPhotoRef); err != nil {
			return nil, fmt.Errorf("failed to scan photo ref row: %w", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate photo ref rows: %w", err)
	}

	return refs, nil
}

// ClearPhotoRefs implements shift.ShiftRepository.
func (r *shiftRepository) ClearPhotoRefs(ctx context.Context, shiftID string) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `
		UPDATE shifts
		SET start_photo_ref = NULL,
			end_photo_ref = NULL,
			updated_at = NOW()
		WHERE id = $1
	`, shiftID)
	if err != nil {
		return fmt.Errorf("failed to clear photo refs: %w", err)
	}

	return nil
}
