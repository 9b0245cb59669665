// Package auth verifies launch payloads (initData) handed to the storefront
// web view by the chat platform client.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// webAppKey is the fixed key the platform uses to derive the signing secret
// from the bot token.
var webAppKey = []byte("WebAppData")

const hashField = "hash"

// Error is returned for every payload that fails authentication.
type Error struct {
	Reason string
}

func (e *Error) Error() string { return e.Reason }

var (
	ErrMissingHash = &Error{Reason: "missing hash"}
	ErrInvalidHash = &Error{Reason: "invalid hash"}
	ErrMalformed   = &Error{Reason: "malformed init data"}
)

// Verify checks the hash of initData against botToken and returns the signed
// fields without the hash. It holds no state and is safe for concurrent use.
func Verify(initData, botToken string) (map[string]string, error) {
	if initData == "" {
		return nil, ErrMissingHash
	}

	fields, err := parse(initData)
	if err != nil {
		return nil, err
	}

	received := fields[hashField]
	delete(fields, hashField)
	if received == "" {
		return nil, ErrMissingHash
	}

	expected := computeHash(fields, botToken)
	if !hmac.Equal([]byte(expected), []byte(received)) {
		return nil, ErrInvalidHash
	}
	return fields, nil
}

// DataCheckString builds the canonical string that gets signed: fields sorted
// byte-wise by name, rendered as name=value and joined with "\n".
func DataCheckString(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(fields[k])
	}
	return b.String()
}

// Sign returns fields encoded as a launch payload with a valid hash. The hash
// field of the input, if any, is ignored.
func Sign(fields map[string]string, botToken string) string {
	values := make(url.Values, len(fields)+1)
	signed := make(map[string]string, len(fields))
	for k, v := range fields {
		if k == hashField {
			continue
		}
		signed[k] = v
		values.Set(k, v)
	}
	values.Set(hashField, computeHash(signed, botToken))
	return values.Encode()
}

func secretKey(botToken string) []byte {
	mac := hmac.New(sha256.New, webAppKey)
	mac.Write([]byte(botToken))
	return mac.Sum(nil)
}

func computeHash(fields map[string]string, botToken string) string {
	mac := hmac.New(sha256.New, secretKey(botToken))
	mac.Write([]byte(DataCheckString(fields)))
	return hex.EncodeToString(mac.Sum(nil))
}

// parse splits a query string into a map. Blank values are kept and the last
// occurrence of a duplicate key wins.
func parse(raw string) (map[string]string, error) {
	fields := make(map[string]string)
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		k, err := url.QueryUnescape(key)
		if err != nil {
			return nil, ErrMalformed
		}
		v, err := url.QueryUnescape(value)
		if err != nil {
			return nil, ErrMalformed
		}
		fields[k] = v
	}
	return fields, nil
}
