package auth

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/Cheertaboi/tgshop/internal/models"
)

var (
	ErrMalformedUser     = &Error{Reason: "malformed user"}
	ErrMalformedAuthDate = &Error{Reason: "malformed auth_date"}
	ErrExpired           = &Error{Reason: "init data expired"}
)

// Verifier authenticates launch payloads for a single bot.
type Verifier struct {
	BotToken string
	// MaxAge rejects payloads whose auth_date is older than this. Zero disables the check.
	MaxAge time.Duration
	Now    func() time.Time
}

// NewVerifier returns a Verifier without an age limit.
func NewVerifier(botToken string) *Verifier {
	return &Verifier{BotToken: botToken, Now: time.Now}
}

// Authenticate verifies initData and decodes the caller identity.
func (v *Verifier) Authenticate(initData string) (models.Identity, error) {
	fields, err := Verify(initData, v.BotToken)
	if err != nil {
		return models.Identity{}, err
	}

	if v.MaxAge > 0 {
		if err := v.checkFresh(fields["auth_date"]); err != nil {
			return models.Identity{}, err
		}
	}

	return ParseIdentity(fields)
}

func (v *Verifier) checkFresh(authDate string) error {
	sec, err := strconv.ParseInt(authDate, 10, 64)
	if err != nil {
		return ErrMalformedAuthDate
	}
	now := time.Now
	if v.Now != nil {
		now = v.Now
	}
	if now().Sub(time.Unix(sec, 0)) > v.MaxAge {
		return ErrExpired
	}
	return nil
}

// ParseIdentity decodes the user field of verified fields. A payload without
// a user yields a zero User.
func ParseIdentity(fields map[string]string) (models.Identity, error) {
	id := models.Identity{Fields: fields}
	raw, ok := fields["user"]
	if !ok || raw == "" {
		return id, nil
	}
	if err := json.Unmarshal([]byte(raw), &id.User); err != nil {
		return models.Identity{}, ErrMalformedUser
	}
	return id, nil
}
