package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/terraincognita07/glowlog/internal/security"
)

const (
	accessTokenPurpose     = "access"
	refreshTokenLength     = 48
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 14 * 24 * time.Hour
)

var (
	ErrAccessTokenMissing        = errors.New("missing access token")
	ErrAccessTokenInvalid        = errors.New("invalid access token")
	ErrAccessTokenExpired        = errors.New("expired access token")
	ErrAccessTokenInvalidPurpose = errors.New("invalid access token purpose")
	ErrAccessTokenInvalidUserID  = errors.New("invalid access token user id")
)

type AccessClaims struct {
	UserID  uint   `json:"uid"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// BuildAccessToken signs an HS256 token. The jti lets a logout deny-list the
// token until it expires.
func BuildAccessToken(secretKey []byte, userID uint, ttl time.Duration, now time.Time) (string, *AccessClaims, error) {
	if ttl <= 0 {
		ttl = DefaultAccessTokenTTL
	}
	if now.IsZero() {
		now = time.Now()
	}

	claims := &AccessClaims{
		UserID:  userID,
		Purpose: accessTokenPurpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secretKey)
	if err != nil {
		return "", nil, fmt.Errorf("sign access token: %w", err)
	}
	return signed, claims, nil
}

func ParseAccessToken(secretKey []byte, rawToken string, now time.Time) (*AccessClaims, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, ErrAccessTokenMissing
	}
	if now.IsZero() {
		now = time.Now()
	}

	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(rawToken, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return secretKey, nil
	}, jwt.WithTimeFunc(func() time.Time { return now }))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrAccessTokenExpired
		}
		return nil, ErrAccessTokenInvalid
	}
	if !token.Valid {
		return nil, ErrAccessTokenInvalid
	}
	if claims.Purpose != accessTokenPurpose {
		return nil, ErrAccessTokenInvalidPurpose
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.Time.After(now) {
		return nil, ErrAccessTokenExpired
	}
	if claims.UserID == 0 {
		return nil, ErrAccessTokenInvalidUserID
	}
	return claims, nil
}

// GenerateRefreshToken returns an opaque random refresh token.
func GenerateRefreshToken() (string, error) {
	return security.Token(refreshTokenLength)
}
