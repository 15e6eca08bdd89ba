package report

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"kintai-backend/internal/platform/db"
)

const DateLayout = "2006-01-02"

// 出力エンコーディング。sjis は日本語ロケールのExcelでそのまま開ける（CP932）
const (
	EncodingUTF8 = "utf8"
	EncodingSJIS = "sjis"
)

// ===== Error model (attendance/settings と同型) =====
type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeInternal        Code = "INTERNAL"
)

type APIError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string      { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func ErrInvalid(msg string) *APIError  { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrInternal(msg string) *APIError { return &APIError{Code: CodeInternal, Message: msg} }

func toHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) && api.Code == CodeInvalidArgument {
		return 400
	}
	return 500
}

// ===== Service =====

type Service struct {
	// 抽出はREAD ONLY Txで行い、勤怠×プロフィールの結合を同一スナップショットで読む
	runRO  func(ctx context.Context, fn func(ctx context.Context, q db.DBTX) error) error
	stores func(q db.DBTX) ReportStore
}

func NewService(dbh *sql.DB) *Service {
	return &Service{
		runRO: func(ctx context.Context, fn func(ctx context.Context, q db.DBTX) error) error {
			return db.ReadOnly(ctx, dbh, fn)
		},
		stores: func(q db.DBTX) ReportStore { return NewStore(q) },
	}
}

var csvHeader = []string{"date", "employee_code", "name", "department", "status", "check_in", "check_out", "total_hours"}

// WriteCSV: 期間内の勤怠をCSVで書き出す。バイト列の互換性は保証しない（人間向け帳票）。
func (s *Service) WriteCSV(ctx context.Context, w io.Writer, q Query, encoding string) error {
	from, err := time.ParseInLocation(DateLayout, q.From, time.UTC)
	if err != nil {
		return ErrInvalid("from must be YYYY-MM-DD")
	}
	to, err := time.ParseInLocation(DateLayout, q.To, time.UTC)
	if err != nil {
		return ErrInvalid("to must be YYYY-MM-DD")
	}
	if to.Before(from) {
		return ErrInvalid("to must be >= from")
	}
	switch encoding {
	case "", EncodingUTF8, EncodingSJIS:
	default:
		return ErrInvalid("encoding must be utf8 or sjis")
	}

	var rows []Row
	err = s.runRO(ctx, func(ctx context.Context, dbq db.DBTX) error {
		rows, err = s.stores(dbq).AttendanceRows(ctx, q)
		return err
	})
	if err != nil {
		return err
	}

	out := w
	if encoding == EncodingSJIS {
		// Excel(CP932)でそのまま開けるようShiftJISに変換して書く
		out = transform.NewWriter(w, japanese.ShiftJIS.NewEncoder())
	}

	cw := csv.NewWriter(out)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.WorkDate,
			r.EmployeeCode,
			r.Name,
			r.Department,
			r.Status,
			r.CheckInAt.Format(time.RFC3339),
			fmtTime(r.CheckOutAt),
			fmtHours(r.TotalHours),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func fmtTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

// 表示は2桁切り詰め
func fmtHours(h *float64) string {
	if h == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *h)
}
