package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrBadCredentials is returned on a failed admin login.
	ErrBadCredentials = errors.New("invalid username or password")

	// ErrInvalidToken is returned for expired, malformed or foreign tokens.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// AdminAuth issues and verifies HS256 tokens for the admin panel.
type AdminAuth struct {
	username string
	password string
	secret   []byte
	expiry   time.Duration
	now      func() time.Time
}

// NewAdminAuth constructs an AdminAuth from the configured credentials.
func NewAdminAuth(username, password, secret string, expiry time.Duration) *AdminAuth {
	return &AdminAuth{
		username: username,
		password: password,
		secret:   []byte(secret),
		expiry:   expiry,
		now:      time.Now,
	}
}

// Login checks the credentials and returns a signed token.
func (a *AdminAuth) Login(username, password string) (string, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) == 1
	if !userOK || !passOK {
		return "", ErrBadCredentials
	}

	now := a.now()
	claims := jwt.MapClaims{
		"sub":  username,
		"type": "admin",
		"iat":  jwt.NewNumericDate(now),
		"exp":  jwt.NewNumericDate(now.Add(a.expiry)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Verify parses a token and returns the admin username it was issued to.
func (a *AdminAuth) Verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.now))
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["type"] != "admin" {
		return "", ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	if sub != a.username {
		return "", ErrInvalidToken
	}
	return sub, nil
}
