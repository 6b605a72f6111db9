package calendar

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Ошибки разбора принципала.
var (
	ErrInvalidUserID = errors.New("invalid user id")
	ErrUnknownRole   = errors.New("unknown role")
)

// Роль пользователя в системе.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// ParseRole проверяет, что роль известна.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleAdmin, RoleUser:
		return r, nil
	}
	return "", ErrUnknownRole
}

// Principal — аутентифицированный пользователь, от имени которого идёт запрос.
type Principal struct {
	UserID uuid.UUID
	Role   Role
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// NewPrincipal:
//   - проверяет идентификатор пользователя;
//   - проверяет роль;
//   - возвращает нормализованный результат или ошибку.
func NewPrincipal(userID, role string) (Principal, error) {
	id, err := uuid.Parse(userID)
	if err != nil || id == uuid.Nil {
		return Principal{}, ErrInvalidUserID
	}
	r, err := ParseRole(role)
	if err != nil {
		return Principal{}, err
	}
	return Principal{UserID: id, Role: r}, nil
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
