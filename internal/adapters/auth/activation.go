package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"eventmanager/internal/domain"
)

// macHexLen is the number of hex characters of the HMAC kept in a token.
const macHexLen = 40

// Token purposes. The purpose is part of the MAC, so a token minted for one
// flow never verifies in another.
const (
	purposeActivation    = "activation"
	purposePasswordReset = "password-reset"
)

// stateTokens mints tokens whose validity is a function of the user's mutable
// state. Tokens are "<base36 unix seconds>-<hex hmac>"; the MAC covers the
// purpose, the user's id, password hash, active flag, last login and
// updated_at. Any write to the account row moves updated_at, so every
// outstanding token dies with it. No revocation list is kept.
type stateTokens struct {
	purpose string
	secret  []byte
	ttl     time.Duration
	now     func() time.Time
}

// NewActivationTokens returns the tokens mailed at signup.
func NewActivationTokens(secret string, ttl time.Duration) domain.ActivationTokens {
	return &stateTokens{purpose: purposeActivation, secret: []byte(secret), ttl: ttl, now: time.Now}
}

// NewPasswordResetTokens returns the tokens mailed by a password reset request.
// Changing the password invalidates them.
func NewPasswordResetTokens(secret string, ttl time.Duration) domain.PasswordResetTokens {
	return &stateTokens{purpose: purposePasswordReset, secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (a *stateTokens) Make(user *domain.User) (string, error) {
	ts := a.now().Unix()
	return a.makeAt(user, ts), nil
}

func (a *stateTokens) Check(user *domain.User, token string) bool {
	if user == nil || token == "" {
		return false
	}
	tsPart, macPart, ok := strings.Cut(token, "-")
	if !ok || len(macPart) != macHexLen {
		return false
	}
	ts, err := strconv.ParseInt(tsPart, 36, 64)
	if err != nil || ts < 0 {
		return false
	}
	want := a.makeAt(user, ts)
	if !hmac.Equal([]byte(want), []byte(token)) {
		return false
	}
	age := a.now().Sub(time.Unix(ts, 0))
	return age >= 0 && age <= a.ttl
}

func (a *stateTokens) makeAt(user *domain.User, ts int64) string {
	mac := hmac.New(sha256.New, a.secret)
	mac.Write([]byte(a.purpose))
	mac.Write([]byte{0})
	mac.Write([]byte(user.ID))
	mac.Write([]byte{0})
	mac.Write([]byte(user.PasswordHash))
	mac.Write([]byte{0})
	mac.Write([]byte(strconv.FormatBool(user.IsActive)))
	mac.Write([]byte{0})
	if user.LastLogin != nil {
		mac.Write([]byte(strconv.FormatInt(user.LastLogin.UTC().Unix(), 10)))
	}
	mac.Write([]byte{0})
	mac.Write([]byte(strconv.FormatInt(user.UpdatedAt.UTC().UnixMicro(), 10)))
	mac.Write([]byte{0})
	mac.Write([]byte(strconv.FormatInt(ts, 10)))
	sum := hex.EncodeToString(mac.Sum(nil))
	return strconv.FormatInt(ts, 36) + "-" + sum[:macHexLen]
}
