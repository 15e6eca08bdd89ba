package identity

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	mysql "github.com/go-sql-driver/mysql"
	"github.com/oklog/ulid/v2"

	"kintai-backend/internal/invitation"
	"kintai-backend/internal/platform/auth"
	"kintai-backend/internal/platform/authz"
	"kintai-backend/internal/platform/db"
)

// ===== Error model (attendance/invitation と同型) =====
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

type IDGen interface {
	New() (string, error)
}

type ulidGen struct{}

func (ulidGen) New() (string, error) {
	t := time.Now().UTC()
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(t), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// InviteRedeemer: invitation.Service が実装する
type InviteRedeemer interface {
	Redeem(ctx context.Context, q db.DBTX, token string, now time.Time) (*invitation.Redeemed, error)
}

// ===== Service本体 =====

type Service struct {
	db         *sql.DB
	store      ProfileStore
	authorizer *authz.Authorizer
	invites    InviteRedeemer
	clock      Clock
	id         IDGen

	// Tx境界とTx内ストア生成。テストで差し替える
	runTx    func(ctx context.Context, fn func(ctx context.Context, q db.DBTX) error) error
	profiles func(q db.DBTX) ProfileStore
	accounts func(q db.DBTX) auth.AccountStore
}

func NewService(dbh *sql.DB, a *authz.Authorizer, invites InviteRedeemer) *Service {
	return &Service{
		db:         dbh,
		store:      NewStore(dbh),
		authorizer: a,
		invites:    invites,
		clock:      realClock{},
		id:         ulidGen{},
		runTx: func(ctx context.Context, fn func(ctx context.Context, q db.DBTX) error) error {
			return db.RunInTx(ctx, dbh, nil, fn)
		},
		profiles: func(q db.DBTX) ProfileStore { return NewStore(q) },
		accounts: func(q db.DBTX) auth.AccountStore { return auth.NewStore(q) },
	}
}

// enrollment: 登録で確定する値。招待があれば招待側を優先する
type enrollment struct {
	Name       string
	Department string
	Role       string
}

func resolveEnrollment(req RegisterRequest, red *invitation.Redeemed) enrollment {
	e := enrollment{
		Name:       strings.TrimSpace(req.Name),
		Department: strings.TrimSpace(req.Department),
		Role:       authz.RoleEmployee,
	}
	if red == nil {
		return e
	}
	if red.Name != "" {
		e.Name = red.Name
	}
	if red.Department != "" {
		e.Department = red.Department
	}
	if authz.ValidRole(red.Role) {
		e.Role = red.Role
	}
	return e
}

// Register: アカウント＋プロフィール＋ロール付与（＋招待消込）を1Txで行う。
func (s *Service) Register(ctx context.Context, req RegisterRequest) (ProfileResponse, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" {
		return ProfileResponse{}, ErrInvalid("email is required")
	}
	if len(req.Password) < MinPasswordLen {
		return ProfileResponse{}, ErrInvalid(fmt.Sprintf("password must be at least %d characters", MinPasswordLen))
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return ProfileResponse{}, ErrInternal("failed to hash password")
	}

	userID, err := s.id.New()
	if err != nil {
		return ProfileResponse{}, ErrInternal("failed to generate id")
	}
	now := s.clock.Now().UTC()

	var created Profile
	err = s.runTx(ctx, func(ctx context.Context, q db.DBTX) error {
		accounts := s.accounts(q)
		profiles := s.profiles(q)

		exists, err := accounts.GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		if exists != nil {
			return ErrConflict("email already registered")
		}

		// 招待トークンは失効・不明なら黙ってフォールバック（登録自体は通す）
		var red *invitation.Redeemed
		if req.InviteToken != "" {
			red, err = s.invites.Redeem(ctx, q, req.InviteToken, now)
			if err != nil {
				return err
			}
		}
		enr := resolveEnrollment(req, red)
		if enr.Name == "" {
			return ErrInvalid("name is required")
		}

		if err := accounts.Create(ctx, &auth.Account{
			UserID:       userID,
			Email:        email,
			PasswordHash: hash,
		}); err != nil {
			if isDuplicateKey(err) {
				return ErrConflict("email already registered")
			}
			return err
		}

		code, err := profiles.NextEmployeeCode(ctx)
		if err != nil {
			return err
		}

		created = Profile{
			UserID:       userID,
			Name:         enr.Name,
			Email:        email,
			EmployeeCode: code,
			Department:   enr.Department,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := profiles.CreateProfile(ctx, &created); err != nil {
			return err
		}

		return profiles.GrantRole(ctx, userID, enr.Role, userID)
	})
	if err != nil {
		var api *APIError
		if errors.As(err, &api) {
			return ProfileResponse{}, api
		}
		return ProfileResponse{}, ErrInternal("registration failed")
	}

	return created.toDTO(), nil
}

// GetProfile: 認証済みなら誰でも参照可（制限なし）
func (s *Service) GetProfile(ctx context.Context, userID string) (ProfileResponse, error) {
	p, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return ProfileResponse{}, err
	}
	if p == nil {
		return ProfileResponse{}, ErrNotFound("profile not found")
	}
	return p.toDTO(), nil
}

func (s *Service) ListProfiles(ctx context.Context, limit, offset int) ([]ProfileResponse, int64, error) {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}

	rows, total, err := s.store.ListProfiles(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	out := make([]ProfileResponse, 0, len(rows))
	for i := 0; i < len(rows); i++ {
		out = append(out, rows[i].toDTO())
	}
	return out, total, nil
}

// UpdateProfile: 本人 or manager/admin。employee_code は触らない。
func (s *Service) UpdateProfile(ctx context.Context, actorID, userID string, req UpdateProfileRequest) (ProfileResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return ProfileResponse{}, ErrInvalid("name is required")
	}

	ok, err := s.authorizer.CanActOn(ctx, actorID, userID)
	if err != nil {
		return ProfileResponse{}, ErrInternal("role check failed")
	}
	if !ok {
		return ProfileResponse{}, ErrForbidden("forbidden")
	}

	n, err := s.store.UpdateProfile(ctx, userID, name, strings.TrimSpace(req.Department))
	if err != nil {
		return ProfileResponse{}, err
	}
	if n == 0 {
		// 同値更新でも affected=0 になり得るため存在確認で判別
		if p, err := s.store.GetProfile(ctx, userID); err == nil && p != nil {
			return p.toDTO(), nil
		}
		return ProfileResponse{}, ErrNotFound("profile not found")
	}
	return s.GetProfile(ctx, userID)
}

// GrantRole: manager/admin のみ。付与は追記のみで剥奪・更新は無い。
func (s *Service) GrantRole(ctx context.Context, actorID string, req GrantRoleRequest) error {
	if !authz.ValidRole(req.Role) {
		return ErrInvalid("role must be one of employee/manager/admin")
	}

	priv, err := s.authorizer.IsPrivileged(ctx, actorID)
	if err != nil {
		return ErrInternal("role check failed")
	}
	if !priv {
		return ErrForbidden("forbidden")
	}

	target, err := s.store.GetProfile(ctx, req.UserID)
	if err != nil {
		return err
	}
	if target == nil {
		return ErrNotFound("user not found")
	}

	if err := s.store.GrantRole(ctx, req.UserID, req.Role, actorID); err != nil {
		if isDuplicateKey(err) {
			return ErrConflict("role already granted")
		}
		return err
	}
	return nil
}

func (s *Service) ListRoles(ctx context.Context, userID string) (RolesResponse, error) {
	roles, err := s.store.ListRoles(ctx, userID)
	if err != nil {
		return RolesResponse{}, err
	}
	return RolesResponse{UserID: userID, Roles: roles}, nil
}
