package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrAlreadyExists  = errors.New("already exists")
	ErrNotFound       = errors.New("not found")
	ErrAuthentication = errors.New("authentication failed")
)

const tokenTTL = 24 * time.Hour

type Service struct {
	store  AccountStore
	secret []byte
}

func NewService(db *sql.DB, secret []byte) *Service {
	return &Service{store: NewStore(db), secret: secret}
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (string, error)
}

func (s *Service) Secret() []byte { return s.secret }

// Login: email+password を検証して JWT を返す。
// role はクレームに入れない（1ユーザ複数ロールのため、権限判定は毎回 user_roles を見る）。
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	acct, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if acct == nil {
		return "", ErrAuthentication
	}
	if acct.IsDisabled {
		return "", errors.New("account disabled")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return "", ErrAuthentication
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": acct.UserID,
		"exp": time.Now().Add(tokenTTL).Unix(),
	})

	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

// HashPassword: 登録フローから使う
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
