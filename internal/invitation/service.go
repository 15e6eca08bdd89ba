package invitation

import (
	"context"
	"database/sql"
	"errors"
	"time"

	mysql "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"kintai-backend/internal/platform/authz"
	"kintai-backend/internal/platform/db"
)

// ===== インターフェース群 =====

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// TokenGen: 招待トークン。時刻が漏れるULIDではなく全ビット乱数のUUIDv4を使う
type TokenGen interface {
	New() string
}

type uuidGen struct{}

func (uuidGen) New() string { return uuid.NewString() }

// ===== Service本体 =====

type Service struct {
	store  InviteStore
	clock  Clock
	tokens TokenGen
}

func NewService(dbh *sql.DB) *Service {
	return &Service{
		store:  NewStore(dbh),
		clock:  realClock{},
		tokens: uuidGen{},
	}
}

// Create: 権限者が招待を発行。トークンはサーバ側で生成し、期限は既定7日。
func (s *Service) Create(ctx context.Context, actorID string, req CreateInvitationRequest) (InvitationResponse, error) {
	if !authz.ValidRole(req.Role) {
		return InvitationResponse{}, ErrInvalid("role must be one of employee/manager/admin")
	}

	days := DefaultExpiryDays
	if req.ExpiryDays != nil {
		days = *req.ExpiryDays
	}
	if days < 1 || days > MaxExpiryDays {
		return InvitationResponse{}, ErrInvalid("expiry_days out of range")
	}

	now := s.clock.Now().UTC()
	inv := Invitation{
		InvitationID: ulid.Make().String(),
		Email:        req.Email,
		Name:         req.Name,
		Department:   req.Department,
		Role:         req.Role,
		Token:        s.tokens.New(),
		Status:       StatusPending,
		InvitedBy:    actorID,
		ExpiresAt:    now.Add(time.Duration(days) * 24 * time.Hour),
		CreatedAt:    now,
	}

	if err := s.store.Insert(ctx, &inv); err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 {
			// トークンUNIQUE。乱数衝突は実質起きない
			return InvitationResponse{}, ErrConflict("token collision, retry")
		}
		return InvitationResponse{}, err
	}
	return inv.toDTO(now), nil
}

// Prefill: 登録画面向け。pending かつ未失効のものだけ返す（失効は読み取り時判定）。
func (s *Service) Prefill(ctx context.Context, token string) (PrefillResponse, error) {
	if token == "" {
		return PrefillResponse{}, ErrInvalid("token is required")
	}
	inv, err := s.store.GetByToken(ctx, token)
	if err != nil {
		return PrefillResponse{}, err
	}
	if !usable(inv, s.clock.Now().UTC()) {
		return PrefillResponse{}, ErrNotFound("invitation not found or expired")
	}
	return PrefillResponse{
		Email:      inv.Email,
		Name:       inv.Name,
		Department: inv.Department,
		Role:       inv.Role,
	}, nil
}

// Redeem: 登録トランザクション内から呼ばれる。渡されたTx上で消し込む。
// トークンが無い・失効済みなら (nil, nil) で、登録側は自己申告値にフォールバックする。
func (s *Service) Redeem(ctx context.Context, q db.DBTX, token string, now time.Time) (*Redeemed, error) {
	store := NewStore(q)
	inv, err := store.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if !usable(inv, now) {
		return nil, nil
	}

	n, err := store.MarkAccepted(ctx, inv.InvitationID, now)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// 並行登録に先を越された
		return nil, nil
	}
	return &Redeemed{
		InvitationID: inv.InvitationID,
		Email:        inv.Email,
		Name:         inv.Name,
		Department:   inv.Department,
		Role:         inv.Role,
	}, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]InvitationResponse, int64, error) {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}

	rows, total, err := s.store.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	now := s.clock.Now().UTC()
	out := make([]InvitationResponse, 0, len(rows))
	for i := 0; i < len(rows); i++ {
		out = append(out, rows[i].toDTO(now))
	}
	return out, total, nil
}
