package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	mysql "github.com/go-sql-driver/mysql"

	"kintai-backend/internal/platform/authz"
	"kintai-backend/internal/settings"
)

// ===== Error model (identity/invitation/settings と同型) =====
type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeForbidden       Code = "FORBIDDEN"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeInternal        Code = "INTERNAL"
)

type APIError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string       { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func ErrInvalid(msg string) *APIError   { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrForbidden(msg string) *APIError { return &APIError{Code: CodeForbidden, Message: msg} }
func ErrNotFound(msg string) *APIError  { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrConflict(msg string) *APIError  { return &APIError{Code: CodeConflict, Message: msg} }
func ErrInternal(msg string) *APIError  { return &APIError{Code: CodeInternal, Message: msg} }

func toHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument:
			return 400
		case CodeForbidden:
			return 403
		case CodeNotFound:
			return 404
		case CodeConflict:
			return 409
		default:
			return 500
		}
	}
	return 500
}

func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	return false
}

// ===== インターフェース群 =====

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// ThresholdProvider: settings.Service が実装する
type ThresholdProvider interface {
	GetLateThreshold(ctx context.Context) (settings.LateThreshold, error)
}

// ===== Service本体 =====

type Service struct {
	store      RecordStore
	authorizer *authz.Authorizer
	thresholds ThresholdProvider
	clock      Clock
}

func NewService(db *sql.DB, a *authz.Authorizer, th ThresholdProvider) *Service {
	return &Service{
		store:      NewStore(db),
		authorizer: a,
		thresholds: th,
		clock:      realClock{},
	}
}

// CheckIn: 本人の当日分を作成。lateしきい値の判定は打刻時の一度だけ。
// 同日2回目はUNIQUE制約の1062で弾かれ、既存行には触らない。
func (s *Service) CheckIn(ctx context.Context, actorID string) (RecordResponse, error) {
	if actorID == "" {
		return RecordResponse{}, ErrInvalid("actor is required")
	}

	now := s.clock.Now().UTC()
	th, err := s.thresholds.GetLateThreshold(ctx)
	if err != nil {
		return RecordResponse{}, ErrInternal("failed to load late threshold")
	}

	status := StatusPresent
	if isLate(now, th) {
		status = StatusLate
	}

	rec := Record{
		UserID:    actorID,
		WorkDate:  now.Format(DateLayout),
		CheckInAt: now,
		Status:    status,
	}
	id, err := s.store.Insert(ctx, &rec)
	if err != nil {
		if isDuplicateKey(err) {
			return RecordResponse{}, ErrConflict("already checked in for today")
		}
		return RecordResponse{}, err
	}
	rec.RecordID = id
	return rec.toDTO(), nil
}

// CheckOut: 当日分に退勤時刻を打ち、総労働時間を導出。ステータスの再計算はしない。
func (s *Service) CheckOut(ctx context.Context, actorID string) (RecordResponse, error) {
	if actorID == "" {
		return RecordResponse{}, ErrInvalid("actor is required")
	}

	now := s.clock.Now().UTC()
	rec, err := s.store.GetByUserDate(ctx, actorID, now.Format(DateLayout))
	if err != nil {
		return RecordResponse{}, err
	}
	if rec == nil {
		return RecordResponse{}, ErrNotFound("not checked in today")
	}
	if rec.CheckOutAt != nil {
		return RecordResponse{}, ErrConflict("already checked out")
	}

	hours := totalHours(rec.CheckInAt, now)
	if err := s.store.SetCheckOut(ctx, rec.RecordID, now, hours); err != nil {
		return RecordResponse{}, err
	}
	rec.CheckOutAt = &now
	rec.TotalHours = &hours
	return rec.toDTO(), nil
}

// Get: 本人 or manager/admin のみ
func (s *Service) Get(ctx context.Context, actorID string, id uint64) (RecordResponse, error) {
	rec, err := s.store.GetByID(ctx, id)
	if err != nil {
		return RecordResponse{}, err
	}
	if rec == nil {
		return RecordResponse{}, ErrNotFound("record not found")
	}

	ok, err := s.authorizer.CanActOn(ctx, actorID, rec.UserID)
	if err != nil {
		return RecordResponse{}, ErrInternal("role check failed")
	}
	if !ok {
		return RecordResponse{}, ErrForbidden("forbidden")
	}
	return rec.toDTO(), nil
}

// List: 非権限者は強制的に自分の行だけに絞る
func (s *Service) List(ctx context.Context, actorID string, q ListQuery) ([]RecordResponse, int64, error) {
	priv, err := s.authorizer.IsPrivileged(ctx, actorID)
	if err != nil {
		return nil, 0, ErrInternal("role check failed")
	}
	if !priv {
		q.UserID = &actorID
	}

	if q.Sort == "" {
		q.Sort = DefaultSort
	}
	if q.Limit <= 0 {
		q.Limit = DefaultPageLimit
	}
	if q.Limit > MaxPageLimit {
		q.Limit = MaxPageLimit
	}
	if q.Status != nil && *q.Status != "" && !validStatus(*q.Status) {
		return nil, 0, ErrInvalid("invalid status filter")
	}

	rows, total, err := s.store.List(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	out := make([]RecordResponse, 0, len(rows))
	for i := 0; i < len(rows); i++ {
		out = append(out, rows[i].toDTO())
	}
	return out, total, nil
}

// Override: 権限者によるステータス上書き。
// 変更前のステータスは original_status に一度だけ退避する（同値上書きでは触らない）。
func (s *Service) Override(ctx context.Context, actorID string, id uint64, req OverrideRequest) (RecordResponse, error) {
	if !validStatus(req.Status) {
		return RecordResponse{}, ErrInvalid("status must be one of present/absent/late/half-day")
	}
	reason := strings.TrimSpace(req.Reason)
	if len([]rune(reason)) < MinEditReasonLen {
		return RecordResponse{}, ErrInvalid(fmt.Sprintf("reason must be at least %d characters", MinEditReasonLen))
	}

	priv, err := s.authorizer.IsPrivileged(ctx, actorID)
	if err != nil {
		return RecordResponse{}, ErrInternal("role check failed")
	}
	if !priv {
		return RecordResponse{}, ErrForbidden("forbidden")
	}

	rec, err := s.store.GetByID(ctx, id)
	if err != nil {
		return RecordResponse{}, err
	}
	if rec == nil {
		return RecordResponse{}, ErrNotFound("record not found")
	}

	if req.Status != rec.Status && rec.OriginalStatus == nil {
		orig := rec.Status
		rec.OriginalStatus = &orig
	}
	now := s.clock.Now().UTC()
	rec.Status = req.Status
	rec.EditReason = &reason
	rec.ModifiedBy = &actorID
	rec.ModifiedAt = &now

	if err := s.store.Override(ctx, rec); err != nil {
		return RecordResponse{}, err
	}
	return rec.toDTO(), nil
}

// Delete: manager/admin のみ
func (s *Service) Delete(ctx context.Context, actorID string, id uint64) error {
	priv, err := s.authorizer.IsPrivileged(ctx, actorID)
	if err != nil {
		return ErrInternal("role check failed")
	}
	if !priv {
		return ErrForbidden("forbidden")
	}

	n, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound("record not found")
	}
	return nil
}
