package account

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base32"
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	salt    = []byte("smkn4padalarang.core.account.token_gen")
	nowFunc = time.Now // mockable

	// errors
	errInvalidToken = errors.New("invalid token")
	errTokenExpired = errors.New("token expired")
)

// tokenGenerator makes and checks password reset tokens. A token is bound to the account's
// password hash and last login, so it stops working once the password is changed or the account logs in.
type tokenGenerator struct {
	secretKey []byte
	timeout   time.Duration
}

// encodeUID base64 encodes the given Account ID.
func encodeUID(acc Account) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.Itoa(acc.ID)))
}

// decodeUID base64 decodes the given UID into an Account ID.
func decodeUID(uid string) (int, error) {
	idBytes, err := base64.RawURLEncoding.DecodeString(uid)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(string(idBytes))
}

// makeToken generates a password reset token for the given Account.
func (gen tokenGenerator) makeToken(acc Account) string {
	return gen.makeTokenWithTimestamp(acc, numDaysSince2001(nowFunc()))
}

// verifyToken checks that a password reset token is valid for the given Account.
func (gen tokenGenerator) verifyToken(acc Account, token string) error {
	if token == "" {
		return errInvalidToken
	}

	parts := strings.SplitN(token, "-", 2)
	if len(parts) < 2 {
		return errInvalidToken
	}

	data, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(parts[0])
	if err != nil {
		return errInvalidToken
	}
	ts, err := strconv.Atoi(string(data))
	if err != nil {
		return errInvalidToken
	}

	// check that the token has not been tampered with
	if subtle.ConstantTimeCompare([]byte(gen.makeTokenWithTimestamp(acc, ts)), []byte(token)) == 0 {
		return errInvalidToken
	}

	// check that the timestamp is within limit
	if (numDaysSince2001(nowFunc()) - ts) > int(gen.timeout/(24*time.Hour)) {
		return errTokenExpired
	}
	return nil
}

func (gen tokenGenerator) makeTokenWithTimestamp(acc Account, ts int) string {
	tsB32 := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString([]byte(strconv.Itoa(ts)))
	return fmt.Sprintf("%s-%s", tsB32, gen.sign(hashValue(acc, ts)))
}

func (gen tokenGenerator) sign(val []byte) string {
	key := sha256.Sum256(append(append([]byte{}, salt...), gen.secretKey...))
	h := hmac.New(sha256.New, key[:])
	_, _ = h.Write(val)
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

func numDaysSince2001(t time.Time) int {
	ref := time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)
	return int(math.Ceil(t.Sub(ref).Hours() / 24))
}

func hashValue(acc Account, ts int) []byte {
	var val bytes.Buffer
	val.WriteString(strconv.Itoa(acc.ID))
	val.WriteString(acc.PasswordHash)
	if acc.LastLogin.Valid {
		val.WriteString(acc.LastLogin.Time.UTC().Format(time.RFC3339Nano))
	}
	val.WriteString(strconv.Itoa(ts))
	return val.Bytes()
}
