package account

import (
	"testing"
	"time"

	"github.com/volatiletech/null/v8"
)

func TestMakeVerifyToken(t *testing.T) {
	gen := tokenGenerator{secretKey: []byte("secret"), timeout: 3 * 24 * time.Hour}

	now := time.Now()
	acc := Account{
		ID:        1,
		Username:  "budi",
		Email:     null.StringFrom("budi@test.id"),
		Role:      RoleTeacher,
		CreatedAt: now,
		UpdatedAt: now,
		LastLogin: null.TimeFrom(now),
	}
	_ = acc.SetPassword("pwd")

	validToken := gen.makeToken(acc)

	// generate an expired token
	dayLate := gen.timeout + (24 * time.Hour)
	nowFunc = func() time.Time { return time.Now().Add(-dayLate) }
	expiredToken := gen.makeToken(acc)
	nowFunc = time.Now // reset

	loggedIn := acc
	loggedIn.LastLogin = null.TimeFrom(now.Add(time.Minute))

	otherGen := tokenGenerator{secretKey: []byte("other"), timeout: gen.timeout}

	tests := []struct {
		name    string
		gen     tokenGenerator
		acc     Account
		token   string
		wantErr error
	}{
		{name: "no token", gen: gen, acc: acc, wantErr: errInvalidToken},
		{name: "invalid parts len", gen: gen, acc: acc, token: "lmaooolol", wantErr: errInvalidToken},
		{name: "invalid base32", gen: gen, acc: acc, token: "hahaha-sigsig-sig", wantErr: errInvalidToken},
		{name: "invalid timestamp", gen: gen, acc: acc, token: "NRXWY-sigsig-sig", wantErr: errInvalidToken},
		{name: "invalid token", gen: gen, acc: acc, token: "HE4TS-sigsig-sig", wantErr: errInvalidToken},
		{name: "other secret key", gen: otherGen, acc: acc, token: validToken, wantErr: errInvalidToken},
		{name: "logged in since", gen: gen, acc: loggedIn, token: validToken, wantErr: errInvalidToken},
		{name: "expired token", gen: gen, acc: acc, token: expiredToken, wantErr: errTokenExpired},
		{name: "valid token", gen: gen, acc: acc, token: validToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.gen.verifyToken(tt.acc, tt.token); err != tt.wantErr {
				t.Errorf("verifyToken() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEncodeDecodeUID(t *testing.T) {
	uid := encodeUID(Account{ID: 42})
	id, err := decodeUID(uid)
	if err != nil {
		t.Fatalf("decodeUID() error = %v", err)
	}
	if id != 42 {
		t.Errorf("decodeUID() = %d, want 42", id)
	}

	if _, err = decodeUID("%%%"); err == nil {
		t.Error("decodeUID() expected an error")
	}
}
