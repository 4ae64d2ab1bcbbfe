package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that fails verification,
// whether by signature, signing method, or expiry.
var ErrInvalidToken = errors.New("invalid token")

// TokenManager issues and verifies the access/refresh token pair. The two
// token kinds are signed with separate secrets and expire independently;
// there is no rotation or revocation list.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewTokenManager builds a new manager.
func NewTokenManager(accessSecret, refreshSecret string, accessTTLMinutes, refreshTTLMinutes int) *TokenManager {
	if accessTTLMinutes <= 0 {
		accessTTLMinutes = 60
	}
	if refreshTTLMinutes <= 0 {
		refreshTTLMinutes = 7 * 24 * 60
	}
	return &TokenManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     time.Duration(accessTTLMinutes) * time.Minute,
		refreshTTL:    time.Duration(refreshTTLMinutes) * time.Minute,
	}
}

// Claims describes the JWT payload carried by both token kinds.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// IssueAccessToken signs a short-lived token embedding the user identifier.
func (tm *TokenManager) IssueAccessToken(userID string) (string, time.Time, error) {
	return sign(userID, tm.accessSecret, tm.accessTTL)
}

// IssueRefreshToken signs a long-lived token under the refresh secret.
func (tm *TokenManager) IssueRefreshToken(userID string) (string, time.Time, error) {
	return sign(userID, tm.refreshSecret, tm.refreshTTL)
}

// ParseAccessToken verifies an access token and returns its claims.
func (tm *TokenManager) ParseAccessToken(tokenStr string) (*Claims, error) {
	return parse(tokenStr, tm.accessSecret)
}

// ParseRefreshToken verifies a refresh token and returns its claims.
func (tm *TokenManager) ParseRefreshToken(tokenStr string) (*Claims, error) {
	return parse(tokenStr, tm.refreshSecret)
}

// Refresh verifies the refresh token and issues a new access token for the
// embedded identity.
func (tm *TokenManager) Refresh(refreshToken string) (string, time.Time, error) {
	claims, err := tm.ParseRefreshToken(refreshToken)
	if err != nil {
		return "", time.Time{}, err
	}
	return tm.IssueAccessToken(claims.UserID)
}

func sign(userID string, secret []byte, ttl time.Duration) (string, time.Time, error) {
	expiresAt := time.Now().Add(ttl)
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

func parse(tokenStr string, secret []byte) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	return claims, nil
}
