package report

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"kintai-backend/internal/platform/db"
)

type fakeReportStore struct {
	rows  []Row
	query Query
}

func (f *fakeReportStore) AttendanceRows(ctx context.Context, q Query) ([]Row, error) {
	f.query = q
	return f.rows, nil
}

func newTestService(store ReportStore) *Service {
	return &Service{
		runRO: func(ctx context.Context, fn func(ctx context.Context, q db.DBTX) error) error {
			return fn(ctx, nil)
		},
		stores: func(q db.DBTX) ReportStore { return store },
	}
}

func sampleRows() []Row {
	out := time.Date(2024, 4, 1, 17, 20, 0, 0, time.UTC)
	hours := 8.0
	return []Row{
		{
			WorkDate:     "2024-04-01",
			EmployeeCode: "EMP-0001",
			Name:         "山田 太郎",
			Department:   "開発",
			Status:       "late",
			CheckInAt:    time.Date(2024, 4, 1, 9, 20, 0, 0, time.UTC),
			CheckOutAt:   &out,
			TotalHours:   &hours,
		},
		{
			// 未退勤の行は末尾2列が空欄
			WorkDate:     "2024-04-01",
			EmployeeCode: "EMP-0002",
			Name:         "鈴木 花子",
			Department:   "営業",
			Status:       "present",
			CheckInAt:    time.Date(2024, 4, 1, 8, 55, 0, 0, time.UTC),
		},
	}
}

func TestWriteCSV(t *testing.T) {
	store := &fakeReportStore{rows: sampleRows()}
	svc := newTestService(store)

	var buf bytes.Buffer
	err := svc.WriteCSV(context.Background(), &buf, Query{From: "2024-04-01", To: "2024-04-30"}, EncodingUTF8)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "date,employee_code,name,department,status,check_in,check_out,total_hours", lines[0])
	assert.Equal(t, "2024-04-01,EMP-0001,山田 太郎,開発,late,2024-04-01T09:20:00Z,2024-04-01T17:20:00Z,8.00", lines[1])
	assert.Equal(t, "2024-04-01,EMP-0002,鈴木 花子,営業,present,2024-04-01T08:55:00Z,,", lines[2])

	assert.Equal(t, "2024-04-01", store.query.From)
	assert.Equal(t, "2024-04-30", store.query.To)
}

func TestWriteCSVShiftJIS(t *testing.T) {
	store := &fakeReportStore{rows: sampleRows()}
	svc := newTestService(store)

	var buf bytes.Buffer
	err := svc.WriteCSV(context.Background(), &buf, Query{From: "2024-04-01", To: "2024-04-30"}, EncodingSJIS)
	require.NoError(t, err)

	raw := buf.Bytes()
	assert.False(t, strings.Contains(string(raw), "山田 太郎")) // もうUTF-8ではない

	// 復号すればUTF-8版と同じ内容
	decoded, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), raw)
	require.NoError(t, err)
	assert.Contains(t, string(decoded), "山田 太郎")
	assert.Contains(t, string(decoded), "8.00")
}

func TestWriteCSVValidation(t *testing.T) {
	svc := newTestService(&fakeReportStore{})

	for _, tc := range []struct {
		name     string
		q        Query
		encoding string
	}{
		{"bad from", Query{From: "04/01/2024", To: "2024-04-30"}, EncodingUTF8},
		{"bad to", Query{From: "2024-04-01", To: "yesterday"}, EncodingUTF8},
		{"reversed range", Query{From: "2024-04-30", To: "2024-04-01"}, EncodingUTF8},
		{"bad encoding", Query{From: "2024-04-01", To: "2024-04-30"}, "ebcdic"},
	} {
		var buf bytes.Buffer
		err := svc.WriteCSV(context.Background(), &buf, tc.q, tc.encoding)
		var api *APIError
		require.True(t, errors.As(err, &api), "%s: expected *APIError, got %v", tc.name, err)
		assert.Equal(t, CodeInvalidArgument, api.Code, tc.name)
		assert.Zero(t, buf.Len(), "%s: ヘッダすら書かない", tc.name)
	}
}
