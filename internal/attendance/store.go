package attendance

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"kintai-backend/internal/platform/db"
)

type RecordStore interface {
	Insert(ctx context.Context, rec *Record) (uint64, error)
	GetByID(ctx context.Context, id uint64) (*Record, error)
	GetByUserDate(ctx context.Context, userID, workDate string) (*Record, error)
	SetCheckOut(ctx context.Context, id uint64, out time.Time, hours float64) error
	Override(ctx context.Context, rec *Record) error
	List(ctx context.Context, q ListQuery) ([]Record, int64, error)
	Delete(ctx context.Context, id uint64) (int64, error)
}

type Store struct{ db db.DBTX }

func NewStore(q db.DBTX) RecordStore { return &Store{db: q} }

const selectCols = `
	record_id, user_id, DATE_FORMAT(work_date, '%Y-%m-%d') AS work_date,
	check_in_at, check_out_at, status, total_hours,
	modified_by, modified_at, original_status, edit_reason`

// Insert: UNIQUE(user_id, work_date) 違反はそのままエラーで返す（Service側で1062判定）
func (s *Store) Insert(ctx context.Context, rec *Record) (uint64, error) {
	const q = `
	INSERT INTO attendance_records (user_id, work_date, check_in_at, status)
	VALUES (?, ?, ?, ?)`
	res, err := s.db.ExecContext(ctx, q, rec.UserID, rec.WorkDate, rec.CheckInAt, rec.Status)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

func (s *Store) GetByID(ctx context.Context, id uint64) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
	SELECT `+selectCols+`
	FROM attendance_records
	WHERE record_id = ?`, id)
	return scanOne(row)
}

func (s *Store) GetByUserDate(ctx context.Context, userID, workDate string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
	SELECT `+selectCols+`
	FROM attendance_records
	WHERE user_id = ? AND work_date = ?`, userID, workDate)
	return scanOne(row)
}

func scanOne(row *sql.Row) (*Record, error) {
	var r recordRow
	err := row.Scan(&r.RecordID, &r.UserID, &r.WorkDate, &r.CheckInAt, &r.CheckOutAt,
		&r.Status, &r.TotalHours, &r.ModifiedBy, &r.ModifiedAt, &r.OriginalStatus, &r.EditReason)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	m := r.toModel()
	return &m, nil
}

func (s *Store) SetCheckOut(ctx context.Context, id uint64, out time.Time, hours float64) error {
	const q = `
	UPDATE attendance_records
	SET check_out_at = ?, total_hours = ?
	WHERE record_id = ?`
	_, err := s.db.ExecContext(ctx, q, out, hours, id)
	return err
}

// Override: ステータス上書き＋監査項目。バージョン検査は行わない（last write wins）。
func (s *Store) Override(ctx context.Context, rec *Record) error {
	const q = `
	UPDATE attendance_records
	SET status = ?, original_status = ?, edit_reason = ?, modified_by = ?, modified_at = ?
	WHERE record_id = ?`
	_, err := s.db.ExecContext(ctx, q,
		rec.Status, strOrNil(rec.OriginalStatus), strOrNil(rec.EditReason),
		strOrNil(rec.ModifiedBy), rec.ModifiedAt, rec.RecordID)
	return err
}

// List: 条件に応じて動的WHERE + ORDER + LIMIT/OFFSET
func (s *Store) List(ctx context.Context, q ListQuery) ([]Record, int64, error) {
	var (
		buf    bytes.Buffer
		args   []any
		wheres []string
	)

	buf.WriteString(`
	SELECT ` + selectCols + `
	FROM attendance_records
	`)
	if q.UserID != nil && *q.UserID != "" {
		wheres = append(wheres, "user_id = ?")
		args = append(args, *q.UserID)
	}
	if q.Status != nil && *q.Status != "" {
		wheres = append(wheres, "status = ?")
		args = append(args, *q.Status)
	}
	if q.On != nil && *q.On != "" {
		wheres = append(wheres, "work_date = ?")
		args = append(args, normalizeDateString(*q.On))
	} else {
		if q.From != nil && *q.From != "" {
			wheres = append(wheres, "work_date >= ?")
			args = append(args, normalizeDateString(*q.From))
		}
		if q.To != nil && *q.To != "" {
			wheres = append(wheres, "work_date <= ?")
			args = append(args, normalizeDateString(*q.To))
		}
	}
	if len(wheres) > 0 {
		buf.WriteString(" WHERE " + strings.Join(wheres, " AND "))
	}

	switch q.Sort {
	case SortWorkDateAsc:
		buf.WriteString(" ORDER BY work_date ASC, record_id ASC")
	case SortCheckInDesc:
		buf.WriteString(" ORDER BY check_in_at DESC, record_id DESC")
	case SortCheckInAsc:
		buf.WriteString(" ORDER BY check_in_at ASC, record_id ASC")
	default:
		buf.WriteString(" ORDER BY work_date DESC, record_id DESC")
	}

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	buf.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, q.Offset))

	rows, err := s.db.QueryContext(ctx, buf.String(), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r recordRow
		if err := rows.Scan(&r.RecordID, &r.UserID, &r.WorkDate, &r.CheckInAt, &r.CheckOutAt,
			&r.Status, &r.TotalHours, &r.ModifiedBy, &r.ModifiedAt, &r.OriginalStatus, &r.EditReason); err != nil {
			return nil, 0, err
		}
		out = append(out, r.toModel())
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	// COUNT（ORDER BY より前までを再構築）
	var cntBuf bytes.Buffer
	cntBuf.WriteString("SELECT COUNT(*) FROM attendance_records")
	if len(wheres) > 0 {
		cntBuf.WriteString(" WHERE " + strings.Join(wheres, " AND "))
	}
	var total int64
	if err := s.db.QueryRowContext(ctx, cntBuf.String(), args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *Store) Delete(ctx context.Context, id uint64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM attendance_records WHERE record_id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ===== helpers =====

func strOrNil(s *string) any {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}

func normalizeDateString(v string) string {
	v = strings.TrimSpace(strings.ToLower(v))
	if v == "today" {
		return time.Now().UTC().Format(DateLayout)
	}
	// assume YYYY-MM-DD
	return v
}
