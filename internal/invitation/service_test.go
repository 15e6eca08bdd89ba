package invitation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type fakeInviteStore struct {
	byToken map[string]*Invitation
}

func newFakeInviteStore() *fakeInviteStore {
	return &fakeInviteStore{byToken: map[string]*Invitation{}}
}

func (f *fakeInviteStore) Insert(ctx context.Context, inv *Invitation) error {
	cp := *inv
	f.byToken[inv.Token] = &cp
	return nil
}

func (f *fakeInviteStore) GetByToken(ctx context.Context, token string) (*Invitation, error) {
	inv, ok := f.byToken[token]
	if !ok {
		return nil, nil
	}
	cp := *inv
	return &cp, nil
}

func (f *fakeInviteStore) MarkAccepted(ctx context.Context, invitationID string, at time.Time) (int64, error) {
	for _, inv := range f.byToken {
		if inv.InvitationID == invitationID && inv.Status == StatusPending {
			inv.Status = StatusAccepted
			inv.AcceptedAt = &at
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeInviteStore) List(ctx context.Context, limit, offset int) ([]Invitation, int64, error) {
	var out []Invitation
	for _, inv := range f.byToken {
		out = append(out, *inv)
	}
	return out, int64(len(out)), nil
}

func newTestService(store InviteStore, now time.Time) *Service {
	return &Service{store: store, clock: fixedClock{t: now}, tokens: uuidGen{}}
}

func apiCode(t *testing.T, err error) Code {
	t.Helper()
	var api *APIError
	require.True(t, errors.As(err, &api), "expected *APIError, got %v", err)
	return api.Code
}

func TestCreateDefaults(t *testing.T) {
	store := newFakeInviteStore()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(store, now)

	res, err := svc.Create(context.Background(), "mgr1", CreateInvitationRequest{
		Email:      "new@example.com",
		Name:       "新人 太郎",
		Department: "開発",
		Role:       "employee",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, res.Status)
	assert.Equal(t, "mgr1", res.InvitedBy)
	assert.Equal(t, now.Add(7*24*time.Hour), res.ExpiresAt)

	// トークンはUUIDv4
	_, err = uuid.Parse(res.Token)
	assert.NoError(t, err)
}

func TestCreateRejectsUnknownRole(t *testing.T) {
	svc := newTestService(newFakeInviteStore(), time.Now())

	_, err := svc.Create(context.Background(), "mgr1", CreateInvitationRequest{
		Email:      "new@example.com",
		Name:       "x",
		Department: "dev",
		Role:       "superuser",
	})
	assert.Equal(t, CodeInvalidArgument, apiCode(t, err))
}

func TestEffectiveStatusLazyExpiry(t *testing.T) {
	now := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	inv := Invitation{Status: StatusPending, ExpiresAt: now.Add(-time.Second)}
	assert.Equal(t, StatusExpired, inv.EffectiveStatus(now))

	inv.ExpiresAt = now.Add(time.Second)
	assert.Equal(t, StatusPending, inv.EffectiveStatus(now))

	// accepted は期限切れでも accepted のまま
	inv.Status = StatusAccepted
	inv.ExpiresAt = now.Add(-time.Hour)
	assert.Equal(t, StatusAccepted, inv.EffectiveStatus(now))
}

func TestPrefillExpiredInvitation(t *testing.T) {
	store := newFakeInviteStore()
	now := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	svc := newTestService(store, now)

	// DB上は pending のままでも、期限切れなら使えない
	store.byToken["tok"] = &Invitation{
		InvitationID: "inv1",
		Token:        "tok",
		Status:       StatusPending,
		ExpiresAt:    now.Add(-time.Minute),
		Email:        "a@example.com",
	}

	_, err := svc.Prefill(context.Background(), "tok")
	assert.Equal(t, CodeNotFound, apiCode(t, err))
}

func TestPrefillPendingInvitation(t *testing.T) {
	store := newFakeInviteStore()
	now := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	svc := newTestService(store, now)

	store.byToken["tok"] = &Invitation{
		InvitationID: "inv1",
		Token:        "tok",
		Status:       StatusPending,
		ExpiresAt:    now.Add(time.Hour),
		Email:        "a@example.com",
		Name:         "A",
		Department:   "dev",
		Role:         "manager",
	}

	res, err := svc.Prefill(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", res.Email)
	assert.Equal(t, "manager", res.Role)
}

func TestPrefillMissingToken(t *testing.T) {
	svc := newTestService(newFakeInviteStore(), time.Now())
	_, err := svc.Prefill(context.Background(), "nope")
	assert.Equal(t, CodeNotFound, apiCode(t, err))
}

func TestUsable(t *testing.T) {
	now := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	assert.False(t, usable(nil, now))
	assert.False(t, usable(&Invitation{Status: StatusAccepted, ExpiresAt: now.Add(time.Hour)}, now))
	assert.False(t, usable(&Invitation{Status: StatusPending, ExpiresAt: now.Add(-time.Hour)}, now))
	assert.True(t, usable(&Invitation{Status: StatusPending, ExpiresAt: now.Add(time.Hour)}, now))
	// ちょうど期限時刻まではセーフ
	assert.True(t, usable(&Invitation{Status: StatusPending, ExpiresAt: now}, now))
}
