package utils

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"github.com/abm5616/farmcloud/config"
)

var errInvalidToken = errors.New("invalid token")

// ParseToken validates a signed admin token and returns the user ID
// claim.
func ParseToken(tokenString string) (int, error) {
	cfg := config.LoadConfig()
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidToken
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil {
		return 0, err
	}
	if !token.Valid {
		return 0, errInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errInvalidToken
	}
	userID, ok := claims["user_id"].(float64)
	if !ok {
		return 0, errInvalidToken
	}
	return int(userID), nil
}
