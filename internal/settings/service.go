package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
)

// ===== Error model (attendance/invitation と同型) =====
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
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument:
			return 400
		default:
			return 500
		}
	}
	return 500
}

// ===== Service =====

type Service struct {
	store SettingStore
}

func NewService(db *sql.DB) *Service {
	return &Service{store: NewStore(db)}
}

// GetLateThreshold: 行が無ければ既定値 09:15 にフォールバック
func (s *Service) GetLateThreshold(ctx context.Context) (LateThreshold, error) {
	raw, err := s.store.GetRaw(ctx, KeyLateThreshold)
	if err != nil {
		return LateThreshold{}, ErrInternal("failed to load setting")
	}
	if raw == nil {
		return DefaultLateThreshold, nil
	}
	var th LateThreshold
	if err := json.Unmarshal(raw, &th); err != nil {
		// 壊れた値は既定値で動かしつつログに残す
		log.Printf("[WARN] broken late_threshold value: %v", err)
		return DefaultLateThreshold, nil
	}
	return th, nil
}

func (s *Service) UpdateLateThreshold(ctx context.Context, actorID string, th LateThreshold) (LateThreshold, error) {
	if th.Hours < 0 || th.Hours > 23 {
		return LateThreshold{}, ErrInvalid("hours must be between 0 and 23")
	}
	if th.Minutes < 0 || th.Minutes > 59 {
		return LateThreshold{}, ErrInvalid("minutes must be between 0 and 59")
	}

	raw, err := json.Marshal(th)
	if err != nil {
		return LateThreshold{}, ErrInternal("failed to encode setting")
	}
	if err := s.store.Upsert(ctx, KeyLateThreshold, raw, actorID); err != nil {
		return LateThreshold{}, ErrInternal("failed to save setting")
	}
	return th, nil
}
