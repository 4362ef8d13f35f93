package utils

import (
	"errors"
	"time"

	"fitstudio/config"

	"github.com/golang-jwt/jwt"
)

// Actor roles carried in token claims.
const (
	RoleCoach    = "coach"
	RoleCustomer = "customer"
)

func secretKey() []byte {
	secret := config.AppConfig.JWTSecret
	if secret == "" {
		secret = "fitstudio-dev"
	}
	return []byte(secret)
}

// GenerateToken creates a signed JWT with the given subject, studio and
// role. The token expires after the specified duration.
func GenerateToken(subject, bizID, role string, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":  subject,
		"biz":  bizID,
		"role": role,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(duration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secretKey())
}

// ValidateToken parses and validates a token string and returns the token if valid.
func ValidateToken(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Ensure that the token's signing method is HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secretKey(), nil
	})
}

// ExtractIdentity returns the subject, studio and role claims from a
// valid token string.
func ExtractIdentity(tokenString string) (subject, bizID, role string, err error) {
	token, err := ValidateToken(tokenString)
	if err != nil {
		return "", "", "", err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", "", "", errors.New("invalid token")
	}
	subject, _ = claims["sub"].(string)
	bizID, _ = claims["biz"].(string)
	role, _ = claims["role"].(string)
	if subject == "" || role == "" {
		return "", "", "", errors.New("token does not carry identity claims")
	}
	return subject, bizID, role, nil
}
