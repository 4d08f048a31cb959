package util

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenSignature = errors.New("token signature invalid")
	ErrTokenMalformed = errors.New("token malformed")
)

// Claims 自定义 JWT 负载
type Claims struct {
	UserID   uint   `json:"id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// GenerateToken 生成用户的 JWT，可指定有效期
func GenerateToken(secret, issuer string, userID uint, username string, ttl time.Duration) (string, error) {
	return GenerateTokenAt(secret, issuer, userID, username, ttl, time.Now())
}

// GenerateTokenAt is GenerateToken with an explicit issue time.
func GenerateTokenAt(secret, issuer string, userID uint, username string, ttl time.Duration, now time.Time) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret is empty")
	}
	if userID == 0 {
		return "", errors.New("invalid user ID")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}

	claims := &Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken 解析并验证 JWT，返回 Claims
func ParseToken(secret, issuer, tokenStr string) (*Claims, error) {
	return ParseTokenAt(secret, issuer, tokenStr, time.Now())
}

// ParseTokenAt validates tokenStr as of now. Failures are reported as
// ErrTokenExpired, ErrTokenSignature or ErrTokenMalformed.
func ParseTokenAt(secret, issuer, tokenStr string, now time.Time) (*Claims, error) {
	if tokenStr == "" {
		return nil, ErrTokenMalformed
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenSignature
		default:
			return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
		}
	}

	if !token.Valid || claims.UserID == 0 {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}
