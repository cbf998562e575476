package services

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/geokeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// sessionClaims are the registered claims plus the signed-in username.
type sessionClaims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

func generateToken(username string, secretKey []byte, now time.Time, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Username: username,
	})
	return token.SignedString(secretKey)
}

func usernameFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &sessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if errors.Is(err, jwt.ErrTokenExpired) {
		return "", common.ErrTokenExpired
	}
	if err != nil {
		return "", errors.Join(common.ErrInvalidToken, err)
	}
	if !token.Valid {
		return "", common.ErrInvalidToken
	}

	return claims.Username, nil
}
