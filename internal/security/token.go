package security

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// Claims is the token payload for admin-console and customer sessions.
type Claims struct {
	Subject string `json:"sub_name,omitempty"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}

type TokenManager interface {
	GenerateToken(subject, role string, ttl time.Duration) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type tokenManager struct {
	secret []byte
	issuer string
}

func NewTokenManager(secret, issuer string) TokenManager {
	return &tokenManager{
		secret: []byte(secret),
		issuer: issuer,
	}
}

func (m *tokenManager) GenerateToken(subject, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Subject: subject,
		Role:    role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    m.issuer,
			ID:        generateJTI(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *tokenManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}

// Simple unique ID generator
func generateJTI() string {
	return strconv.FormatInt(time.Now().UnixNano(), 16)
}
