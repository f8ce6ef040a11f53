package hmactoken

import (
	"context"
	"errors"
	"strings"
	"time"

	"concierium/internal/ports/auth"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrSecretEmpty  = errors.New("jwt secret is empty")
	ErrTokenEmpty   = errors.New("token is empty")
	ErrTokenInvalid = errors.New("token invalid")
)

const defaultTTL = 7 * 24 * time.Hour

// Token emite y verifica tokens HS256 con claims {sub, email, role}.
// Implementa auth.AuthVerifier y users.TokenIssuer.
type Token struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func New(secret string) (*Token, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, ErrSecretEmpty
	}
	return &Token{
		secret: []byte(secret),
		ttl:    defaultTTL,
		now:    time.Now,
	}, nil
}

func (t *Token) Issue(claims auth.Claims) (string, error) {
	if strings.TrimSpace(claims.UserID) == "" {
		return "", errors.New("claims missing user id")
	}

	now := t.now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   claims.UserID,
		"email": claims.Email,
		"role":  claims.Role,
		"iat":   now.Unix(),
		"exp":   now.Add(t.ttl).Unix(),
	})
	return tok.SignedString(t.secret)
}

func (t *Token) Verify(ctx context.Context, raw string) (auth.Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	parsed, err := jwt.Parse(raw, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now), jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return auth.Claims{}, ErrTokenInvalid
	}

	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return auth.Claims{}, ErrTokenInvalid
	}

	sub, _ := mc["sub"].(string)
	if strings.TrimSpace(sub) == "" {
		return auth.Claims{}, ErrTokenInvalid
	}
	email, _ := mc["email"].(string)
	role, _ := mc["role"].(string)

	return auth.Claims{
		UserID: sub,
		Email:  email,
		Role:   strings.ToLower(strings.TrimSpace(role)),
	}, nil
}
