package jwtauth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/reemaRaven/streetsign/internal/streetsign/domain/models"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is the subset of the token payload the server acts on.
type Claims struct {
	UserID    int
	LoginName string
	IsAdmin   bool
}

func GetToken(u models.User, ttl time.Duration, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":   u.ID,
		"loginname": u.LoginName,
		"is_admin":  u.IsAdmin,
		"exp":       time.Now().Add(ttl).Unix(),
	})

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token error: %w", err)
	}

	return signed, nil
}

func ValidateToken(tokenString, secret string) (Claims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v error: %w", t.Header["alg"], ErrInvalidToken)
		}

		return []byte(secret), nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("parse token error: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return Claims{}, ErrInvalidToken
	}

	loginName, ok := claims["loginname"].(string)
	if !ok {
		return Claims{}, ErrInvalidToken
	}

	isAdmin, ok := claims["is_admin"].(bool)
	if !ok {
		return Claims{}, ErrInvalidToken
	}

	return Claims{
		UserID:    int(userID),
		LoginName: loginName,
		IsAdmin:   isAdmin,
	}, nil
}
