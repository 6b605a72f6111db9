package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/Leganyst/clinic-booking/internal/calendar"
)

// Claims: в sub лежит ID пользователя, в role его роль.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

const tokenIssuer = "clinic-booking"

var errMissingToken = errors.New("missing bearer token")

// IssueToken подписывает HS256-токен для принципала.
func IssueToken(secret []byte, p calendar.Principal, ttl time.Duration, now time.Time) (string, error) {
	claims := Claims{
		Role: string(p.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID.String(),
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseToken проверяет подпись и срок действия и возвращает принципала.
func ParseToken(secret []byte, raw string) (calendar.Principal, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithExpirationRequired())
	if err != nil {
		return calendar.Principal{}, err
	}
	if !token.Valid {
		return calendar.Principal{}, jwt.ErrTokenInvalidClaims
	}
	return calendar.NewPrincipal(claims.Subject, claims.Role)
}

func bearerToken(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", errMissingToken
	}
	values := md.Get("authorization")
	if len(values) == 0 {
		return "", errMissingToken
	}
	raw, found := strings.CutPrefix(values[0], "Bearer ")
	if !found || strings.TrimSpace(raw) == "" {
		return "", errMissingToken
	}
	return strings.TrimSpace(raw), nil
}

// только для администраторов
var adminMethods = map[string]bool{
	MethodGenerateSlots:      true,
	MethodBlockSlot:          true,
	MethodDeleteSlot:         true,
	MethodAllBookings:        true,
	MethodCompleteBooking:    true,
	MethodExpirePastBookings: true,
}

// AuthInterceptor разбирает токен, кладёт принципала в контекст и проверяет роль.
// Методы вне CalendarService (например, health) пропускаются.
func AuthInterceptor(secret []byte) grpc.UnaryServerInterceptor {
	prefix := "/" + ServiceName + "/"
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if !strings.HasPrefix(info.FullMethod, prefix) {
			return handler(ctx, req)
		}

		raw, err := bearerToken(ctx)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}
		p, err := ParseToken(secret, raw)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}
		if adminMethods[info.FullMethod] && !p.IsAdmin() {
			return nil, status.Error(codes.PermissionDenied, "admin role required")
		}

		return handler(calendar.WithPrincipal(ctx, p), req)
	}
}
