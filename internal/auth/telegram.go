// Package auth implements the two identity paths of the platform:
// Telegram WebApp init-data validation for attendees and JWT-based
// admin panel logins.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidInitData is returned when init data fails HMAC validation.
	ErrInvalidInitData = errors.New("invalid telegram init data")

	// ErrExpiredInitData is returned when auth_date is too old.
	ErrExpiredInitData = errors.New("telegram init data expired")
)

// TelegramUser is the user payload embedded in WebApp init data.
type TelegramUser struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// TelegramValidator verifies Telegram WebApp init data strings.
//
// Validation follows the Bot API scheme: the secret key is
// HMAC-SHA256("WebAppData", botToken); the received hash must equal
// HMAC-SHA256(secret, data-check-string) where the data-check-string is
// every field except hash, sorted by key and joined as key=value lines.
type TelegramValidator struct {
	secret []byte
	maxAge time.Duration
	now    func() time.Time
}

// NewTelegramValidator derives the validation secret from the bot token.
func NewTelegramValidator(botToken string, maxAge time.Duration) *TelegramValidator {
	mac := hmac.New(sha256.New, []byte("WebAppData"))
	mac.Write([]byte(botToken))
	return &TelegramValidator{
		secret: mac.Sum(nil),
		maxAge: maxAge,
		now:    time.Now,
	}
}

// Validate checks the signature and freshness of initData and returns
// the embedded user.
func (v *TelegramValidator) Validate(initData string) (*TelegramUser, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, fmt.Errorf("parse init data: %w", ErrInvalidInitData)
	}
	receivedHash := values.Get("hash")
	if receivedHash == "" {
		return nil, ErrInvalidInitData
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		if k != "hash" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+values.Get(k))
	}
	checkString := strings.Join(pairs, "\n")

	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(checkString))
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(receivedHash)) {
		return nil, ErrInvalidInitData
	}

	authDate, err := strconv.ParseInt(values.Get("auth_date"), 10, 64)
	if err != nil {
		return nil, ErrInvalidInitData
	}
	if v.now().Sub(time.Unix(authDate, 0)) > v.maxAge {
		return nil, ErrExpiredInitData
	}

	var user TelegramUser
	if err := json.Unmarshal([]byte(values.Get("user")), &user); err != nil {
		return nil, fmt.Errorf("parse user payload: %w", ErrInvalidInitData)
	}
	if user.ID == 0 {
		return nil, ErrInvalidInitData
	}
	return &user, nil
}
