package auth

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "TEST_TOKEN"

// Computed independently with the platform's reference algorithm.
const (
	annHash    = "23f8ca6038aba86b996759af2ad82086ed9e84a31ebf63415f74947b644c6ae9"
	annPayload = "auth_date=1700000000&hash=" + annHash +
		"&query_id=AAA&user=%7B%22id%22%3A42%2C%22first_name%22%3A%22Ann%22%7D"
)

func annFields() map[string]string {
	return map[string]string{
		"auth_date": "1700000000",
		"query_id":  "AAA",
		"user":      `{"id":42,"first_name":"Ann"}`,
	}
}

func TestDataCheckString(t *testing.T) {
	got := DataCheckString(annFields())
	want := "auth_date=1700000000\nquery_id=AAA\nuser={\"id\":42,\"first_name\":\"Ann\"}"
	assert.Equal(t, want, got)
	assert.False(t, strings.HasSuffix(got, "\n"))
}

func TestDataCheckString_ByteOrder(t *testing.T) {
	// Upper case sorts before lower case and "a_b" before "ab".
	got := DataCheckString(map[string]string{"ab": "2", "a_b": "1", "Z": "0", "empty": ""})
	assert.Equal(t, "Z=0\na_b=1\nab=2\nempty=", got)
}

func TestVerify_KnownVector(t *testing.T) {
	fields, err := Verify(annPayload, testToken)
	require.NoError(t, err)
	assert.Equal(t, annFields(), fields)
	_, hasHash := fields["hash"]
	assert.False(t, hasHash)
}

func TestSign_MatchesKnownVector(t *testing.T) {
	assert.Equal(t, annPayload, Sign(annFields(), testToken))
}

func TestVerify_RoundTrip(t *testing.T) {
	cases := []map[string]string{
		annFields(),
		{"user": `{"id":7,"first_name":"Zoë Ü"}`, "auth_date": "1"},
		{"query_id": "", "auth_date": "1700000000"},
		{"chat_type": "sender", "start_param": "a b&c=d"},
	}
	for _, fields := range cases {
		got, err := Verify(Sign(fields, testToken), testToken)
		require.NoError(t, err)
		assert.Equal(t, fields, got)
	}
}

func TestVerify_PermutedPairs(t *testing.T) {
	permuted := "user=%7B%22id%22%3A42%2C%22first_name%22%3A%22Ann%22%7D&hash=" + annHash +
		"&query_id=AAA&auth_date=1700000000"
	fields, err := Verify(permuted, testToken)
	require.NoError(t, err)
	assert.Equal(t, annFields(), fields)
}

func TestVerify_TamperedHash(t *testing.T) {
	for i := range annHash {
		flipped := []byte(annHash)
		if flipped[i] == '0' {
			flipped[i] = '1'
		} else {
			flipped[i] = '0'
		}
		payload := strings.Replace(annPayload, annHash, string(flipped), 1)

		_, err := Verify(payload, testToken)
		require.ErrorIs(t, err, ErrInvalidHash, "position %d", i)
	}
}

func TestVerify_UpperCaseHashRejected(t *testing.T) {
	payload := strings.Replace(annPayload, annHash, strings.ToUpper(annHash), 1)
	_, err := Verify(payload, testToken)
	assert.ErrorIs(t, err, ErrInvalidHash)
}

func TestVerify_TamperedField(t *testing.T) {
	payload := strings.Replace(annPayload, "query_id=AAA", "query_id=AAB", 1)
	_, err := Verify(payload, testToken)
	assert.ErrorIs(t, err, ErrInvalidHash)
}

func TestVerify_WrongToken(t *testing.T) {
	_, err := Verify(annPayload, "OTHER_TOKEN")
	assert.ErrorIs(t, err, ErrInvalidHash)
}

func TestVerify_MissingHash(t *testing.T) {
	cases := []string{
		"",
		"auth_date=1700000000&query_id=AAA",
		"auth_date=1700000000&hash=",
		"&&",
	}
	for _, payload := range cases {
		_, err := Verify(payload, testToken)
		assert.ErrorIs(t, err, ErrMissingHash, "payload %q", payload)
		assert.EqualError(t, err, "missing hash")
	}
}

func TestVerify_Malformed(t *testing.T) {
	_, err := Verify("user=%zz&hash=abc", testToken)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestVerify_ErrorType(t *testing.T) {
	_, err := Verify("a=b&hash=00", testToken)
	var authErr *Error
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, "invalid hash", authErr.Reason)
}

func TestVerify_DuplicateKeyLastWins(t *testing.T) {
	fields := map[string]string{"auth_date": "2", "query_id": "Q"}
	payload := "auth_date=1&" + Sign(fields, testToken)
	got, err := Verify(payload, testToken)
	require.NoError(t, err)
	assert.Equal(t, "2", got["auth_date"])
}

func TestVerify_KeyWithoutValue(t *testing.T) {
	fields := map[string]string{"flag": "", "auth_date": "1"}
	payload := "flag&auth_date=1&hash=" + computeHash(fields, testToken)
	got, err := Verify(payload, testToken)
	require.NoError(t, err)
	assert.Equal(t, fields, got)
}
