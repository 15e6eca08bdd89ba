package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	mysql "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kintai-backend/internal/platform/authz"
	"kintai-backend/internal/settings"
)

// ===== fakes =====

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type fixedThreshold struct{ th settings.LateThreshold }

func (f fixedThreshold) GetLateThreshold(ctx context.Context) (settings.LateThreshold, error) {
	return f.th, nil
}

type fakeRoles struct{ roles map[string][]string }

func (f fakeRoles) HasRole(ctx context.Context, userID, role string) (bool, error) {
	for _, r := range f.roles[userID] {
		if r == role {
			return true, nil
		}
	}
	return false, nil
}

type fakeRecordStore struct {
	records   map[uint64]*Record
	nextID    uint64
	lastQuery ListQuery
}

func newFakeRecordStore() *fakeRecordStore {
	return &fakeRecordStore{records: map[uint64]*Record{}, nextID: 1}
}

func (f *fakeRecordStore) Insert(ctx context.Context, rec *Record) (uint64, error) {
	for _, r := range f.records {
		if r.UserID == rec.UserID && r.WorkDate == rec.WorkDate {
			return 0, &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}
		}
	}
	id := f.nextID
	f.nextID++
	cp := *rec
	cp.RecordID = id
	f.records[id] = &cp
	return id, nil
}

func (f *fakeRecordStore) GetByID(ctx context.Context, id uint64) (*Record, error) {
	r, ok := f.records[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRecordStore) GetByUserDate(ctx context.Context, userID, workDate string) (*Record, error) {
	for _, r := range f.records {
		if r.UserID == userID && r.WorkDate == workDate {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeRecordStore) SetCheckOut(ctx context.Context, id uint64, out time.Time, hours float64) error {
	r, ok := f.records[id]
	if !ok {
		return errors.New("no such record")
	}
	r.CheckOutAt = &out
	r.TotalHours = &hours
	return nil
}

func (f *fakeRecordStore) Override(ctx context.Context, rec *Record) error {
	r, ok := f.records[rec.RecordID]
	if !ok {
		return errors.New("no such record")
	}
	r.Status = rec.Status
	r.OriginalStatus = rec.OriginalStatus
	r.EditReason = rec.EditReason
	r.ModifiedBy = rec.ModifiedBy
	r.ModifiedAt = rec.ModifiedAt
	return nil
}

func (f *fakeRecordStore) List(ctx context.Context, q ListQuery) ([]Record, int64, error) {
	f.lastQuery = q
	return nil, 0, nil
}

func (f *fakeRecordStore) Delete(ctx context.Context, id uint64) (int64, error) {
	if _, ok := f.records[id]; !ok {
		return 0, nil
	}
	delete(f.records, id)
	return 1, nil
}

func newTestService(store RecordStore, now time.Time, th settings.LateThreshold, roles map[string][]string) *Service {
	return &Service{
		store:      store,
		authorizer: authz.New(fakeRoles{roles: roles}),
		thresholds: fixedThreshold{th: th},
		clock:      fixedClock{t: now},
	}
}

func apiCode(t *testing.T, err error) Code {
	t.Helper()
	var api *APIError
	require.True(t, errors.As(err, &api), "expected *APIError, got %v", err)
	return api.Code
}

var defaultRoles = map[string][]string{
	"emp1": {"employee"},
	"emp2": {"employee"},
	"mgr1": {"employee", "manager"},
	"adm1": {"admin"},
}

// ===== check-in / check-out =====

func TestCheckInAfterThresholdIsLate(t *testing.T) {
	store := newFakeRecordStore()
	now := time.Date(2024, 1, 1, 9, 20, 0, 0, time.UTC)
	svc := newTestService(store, now, settings.LateThreshold{Hours: 9, Minutes: 15}, defaultRoles)

	res, err := svc.CheckIn(context.Background(), "emp1")
	require.NoError(t, err)
	assert.Equal(t, StatusLate, res.Status)
	assert.Equal(t, "2024-01-01", res.WorkDate)
	assert.Equal(t, now, res.CheckInAt)
	assert.Nil(t, res.CheckOutAt)
	assert.Nil(t, res.TotalHours)
}

func TestCheckInAtThresholdIsPresent(t *testing.T) {
	store := newFakeRecordStore()
	now := time.Date(2024, 1, 1, 9, 15, 0, 0, time.UTC)
	svc := newTestService(store, now, settings.LateThreshold{Hours: 9, Minutes: 15}, defaultRoles)

	res, err := svc.CheckIn(context.Background(), "emp1")
	require.NoError(t, err)
	assert.Equal(t, StatusPresent, res.Status)
}

func TestCheckInTwiceConflictKeepsOriginal(t *testing.T) {
	store := newFakeRecordStore()
	first := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestService(store, first, settings.LateThreshold{Hours: 9, Minutes: 15}, defaultRoles)

	orig, err := svc.CheckIn(context.Background(), "emp1")
	require.NoError(t, err)

	// 同日の2回目は競合。既存行は変更されない
	svc.clock = fixedClock{t: first.Add(2 * time.Hour)}
	_, err = svc.CheckIn(context.Background(), "emp1")
	assert.Equal(t, CodeConflict, apiCode(t, err))

	kept, err := store.GetByID(context.Background(), orig.RecordID)
	require.NoError(t, err)
	assert.Equal(t, first, kept.CheckInAt)
	assert.Equal(t, StatusPresent, kept.Status)
}

func TestCheckOutDerivesTotalHours(t *testing.T) {
	store := newFakeRecordStore()
	in := time.Date(2024, 1, 1, 9, 20, 0, 0, time.UTC)
	svc := newTestService(store, in, settings.LateThreshold{Hours: 9, Minutes: 15}, defaultRoles)

	_, err := svc.CheckIn(context.Background(), "emp1")
	require.NoError(t, err)

	svc.clock = fixedClock{t: time.Date(2024, 1, 1, 17, 20, 0, 0, time.UTC)}
	res, err := svc.CheckOut(context.Background(), "emp1")
	require.NoError(t, err)
	require.NotNil(t, res.TotalHours)
	assert.InDelta(t, 8.0, *res.TotalHours, 0.001)
	// ステータスは退勤時に再計算しない
	assert.Equal(t, StatusLate, res.Status)
}

func TestCheckOutWithoutCheckIn(t *testing.T) {
	store := newFakeRecordStore()
	now := time.Date(2024, 1, 1, 17, 0, 0, 0, time.UTC)
	svc := newTestService(store, now, settings.LateThreshold{Hours: 9, Minutes: 15}, defaultRoles)

	_, err := svc.CheckOut(context.Background(), "emp1")
	assert.Equal(t, CodeNotFound, apiCode(t, err))
}

func TestCheckOutTwiceConflict(t *testing.T) {
	store := newFakeRecordStore()
	in := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestService(store, in, settings.LateThreshold{Hours: 9, Minutes: 15}, defaultRoles)

	_, err := svc.CheckIn(context.Background(), "emp1")
	require.NoError(t, err)

	svc.clock = fixedClock{t: in.Add(8 * time.Hour)}
	_, err = svc.CheckOut(context.Background(), "emp1")
	require.NoError(t, err)

	_, err = svc.CheckOut(context.Background(), "emp1")
	assert.Equal(t, CodeConflict, apiCode(t, err))
}

// ===== override =====

func seedRecord(store *fakeRecordStore, userID, date, status string) uint64 {
	id, _ := store.Insert(context.Background(), &Record{
		UserID:    userID,
		WorkDate:  date,
		CheckInAt: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		Status:    status,
	})
	return id
}

func TestOverrideCapturesOriginalStatusOnce(t *testing.T) {
	store := newFakeRecordStore()
	now := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	svc := newTestService(store, now, settings.LateThreshold{Hours: 9, Minutes: 15}, defaultRoles)
	id := seedRecord(store, "emp1", "2024-01-01", StatusPresent)

	res, err := svc.Override(context.Background(), "mgr1", id, OverrideRequest{
		Status: StatusAbsent,
		Reason: "forgot to mark absence",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusAbsent, res.Status)
	require.NotNil(t, res.OriginalStatus)
	assert.Equal(t, StatusPresent, *res.OriginalStatus)
	require.NotNil(t, res.ModifiedBy)
	assert.Equal(t, "mgr1", *res.ModifiedBy)
	require.NotNil(t, res.ModifiedAt)
	assert.Equal(t, now, *res.ModifiedAt)

	// 2回目の上書きでも original_status は最初の値のまま
	res, err = svc.Override(context.Background(), "adm1", id, OverrideRequest{
		Status: StatusHalfDay,
		Reason: "left early for appointment",
	})
	require.NoError(t, err)
	require.NotNil(t, res.OriginalStatus)
	assert.Equal(t, StatusPresent, *res.OriginalStatus)
}

func TestOverrideSameStatusLeavesOriginalUnset(t *testing.T) {
	store := newFakeRecordStore()
	now := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	svc := newTestService(store, now, settings.LateThreshold{Hours: 9, Minutes: 15}, defaultRoles)
	id := seedRecord(store, "emp1", "2024-01-01", StatusPresent)

	res, err := svc.Override(context.Background(), "mgr1", id, OverrideRequest{
		Status: StatusPresent,
		Reason: "confirmed by team lead",
	})
	require.NoError(t, err)
	assert.Nil(t, res.OriginalStatus)
	require.NotNil(t, res.ModifiedBy)
	assert.Equal(t, "mgr1", *res.ModifiedBy)
}

func TestOverrideReasonTooShort(t *testing.T) {
	store := newFakeRecordStore()
	now := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	svc := newTestService(store, now, settings.LateThreshold{Hours: 9, Minutes: 15}, defaultRoles)
	id := seedRecord(store, "emp1", "2024-01-01", StatusPresent)

	_, err := svc.Override(context.Background(), "mgr1", id, OverrideRequest{
		Status: StatusAbsent,
		Reason: "typo",
	})
	assert.Equal(t, CodeInvalidArgument, apiCode(t, err))
}

func TestOverrideInvalidStatus(t *testing.T) {
	store := newFakeRecordStore()
	now := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	svc := newTestService(store, now, settings.LateThreshold{Hours: 9, Minutes: 15}, defaultRoles)
	id := seedRecord(store, "emp1", "2024-01-01", StatusPresent)

	_, err := svc.Override(context.Background(), "mgr1", id, OverrideRequest{
		Status: "vacation",
		Reason: "this is a long enough reason",
	})
	assert.Equal(t, CodeInvalidArgument, apiCode(t, err))
}

func TestOverrideByEmployeeForbidden(t *testing.T) {
	store := newFakeRecordStore()
	now := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	svc := newTestService(store, now, settings.LateThreshold{Hours: 9, Minutes: 15}, defaultRoles)
	id := seedRecord(store, "emp1", "2024-01-01", StatusPresent)

	// 本人であっても override は不可
	_, err := svc.Override(context.Background(), "emp1", id, OverrideRequest{
		Status: StatusAbsent,
		Reason: "trying to edit my own row",
	})
	assert.Equal(t, CodeForbidden, apiCode(t, err))

	kept, _ := store.GetByID(context.Background(), id)
	assert.Equal(t, StatusPresent, kept.Status)
	assert.Nil(t, kept.ModifiedBy)
}

// ===== read / delete =====

func TestGetOwnerAndPrivileged(t *testing.T) {
	store := newFakeRecordStore()
	now := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	svc := newTestService(store, now, settings.LateThreshold{Hours: 9, Minutes: 15}, defaultRoles)
	id := seedRecord(store, "emp1", "2024-01-01", StatusPresent)

	_, err := svc.Get(context.Background(), "emp1", id)
	assert.NoError(t, err)

	_, err = svc.Get(context.Background(), "mgr1", id)
	assert.NoError(t, err)

	_, err = svc.Get(context.Background(), "emp2", id)
	assert.Equal(t, CodeForbidden, apiCode(t, err))
}

func TestListScopesNonPrivilegedToOwnRows(t *testing.T) {
	store := newFakeRecordStore()
	now := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	svc := newTestService(store, now, settings.LateThreshold{Hours: 9, Minutes: 15}, defaultRoles)

	other := "emp2"
	_, _, err := svc.List(context.Background(), "emp1", ListQuery{UserID: &other})
	require.NoError(t, err)
	require.NotNil(t, store.lastQuery.UserID)
	assert.Equal(t, "emp1", *store.lastQuery.UserID)

	// manager はフィルタ指定がそのまま通る
	_, _, err = svc.List(context.Background(), "mgr1", ListQuery{UserID: &other})
	require.NoError(t, err)
	require.NotNil(t, store.lastQuery.UserID)
	assert.Equal(t, other, *store.lastQuery.UserID)
}

func TestDeleteRequiresPrivilege(t *testing.T) {
	store := newFakeRecordStore()
	now := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	svc := newTestService(store, now, settings.LateThreshold{Hours: 9, Minutes: 15}, defaultRoles)
	id := seedRecord(store, "emp1", "2024-01-01", StatusPresent)

	err := svc.Delete(context.Background(), "emp1", id)
	assert.Equal(t, CodeForbidden, apiCode(t, err))
	assert.Len(t, store.records, 1)

	err = svc.Delete(context.Background(), "mgr1", id)
	assert.NoError(t, err)
	assert.Len(t, store.records, 0)

	err = svc.Delete(context.Background(), "mgr1", id)
	assert.Equal(t, CodeNotFound, apiCode(t, err))
}
