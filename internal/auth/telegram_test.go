package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBotToken = "12345:TEST-TOKEN"

// signInitData builds a valid init data string the way Telegram does.
func signInitData(t *testing.T, botToken string, fields map[string]string) string {
	t.Helper()

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+fields[k])
	}

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))
	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(strings.Join(pairs, "\n")))
	hash := hex.EncodeToString(mac.Sum(nil))

	q := url.Values{}
	for k, v := range fields {
		q.Set(k, v)
	}
	q.Set("hash", hash)
	return q.Encode()
}

func validFields(authDate time.Time) map[string]string {
	return map[string]string{
		"auth_date": fmt.Sprintf("%d", authDate.Unix()),
		"query_id":  "AAF03QwyAAAAAHTdDDI-abcd",
		"user":      `{"id":777000,"first_name":"Eva","last_name":"K","username":"evak"}`,
	}
}

func TestTelegramValidateOK(t *testing.T) {
	v := NewTelegramValidator(testBotToken, 24*time.Hour)
	initData := signInitData(t, testBotToken, validFields(time.Now()))

	user, err := v.Validate(initData)
	require.NoError(t, err)
	assert.Equal(t, int64(777000), user.ID)
	assert.Equal(t, "evak", user.Username)
	assert.Equal(t, "Eva", user.FirstName)
}

func TestTelegramValidateWrongToken(t *testing.T) {
	v := NewTelegramValidator(testBotToken, 24*time.Hour)
	initData := signInitData(t, "other:TOKEN", validFields(time.Now()))

	_, err := v.Validate(initData)
	assert.ErrorIs(t, err, ErrInvalidInitData)
}

func TestTelegramValidateTampered(t *testing.T) {
	v := NewTelegramValidator(testBotToken, 24*time.Hour)
	fields := validFields(time.Now())
	initData := signInitData(t, testBotToken, fields)
	tampered := strings.Replace(initData, "777000", "777001", 1)

	_, err := v.Validate(tampered)
	assert.ErrorIs(t, err, ErrInvalidInitData)
}

func TestTelegramValidateExpired(t *testing.T) {
	v := NewTelegramValidator(testBotToken, 24*time.Hour)
	initData := signInitData(t, testBotToken, validFields(time.Now().Add(-48*time.Hour)))

	_, err := v.Validate(initData)
	assert.ErrorIs(t, err, ErrExpiredInitData)
}

func TestTelegramValidateMissingHash(t *testing.T) {
	v := NewTelegramValidator(testBotToken, 24*time.Hour)
	_, err := v.Validate("auth_date=123&user=%7B%22id%22%3A1%7D")
	assert.ErrorIs(t, err, ErrInvalidInitData)
}
