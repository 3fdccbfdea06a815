package account

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"

	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func TestCheckPasswordPolicy(t *testing.T) {
	fsys := fstest.MapFS{
		"common.txt": &fstest.MapFile{Data: []byte("password\n  P@ssw0rd  \n\nqwerty123\n")},
	}
	var logger nopLogger
	LoadCommonPasswords(fsys, "common.txt", logger)
	defer LoadCommonPasswords(fstest.MapFS{"empty.txt": &fstest.MapFile{}}, "empty.txt", logger)

	tests := []struct {
		name  string
		pwd   string
		attrs []string
		want  string
	}{
		{name: "too short", pwd: "Ab#1", want: pwdMinLenTag},
		{name: "whitespace", pwd: "Rahasia #2024", want: pwdNoSpaceTag},
		{name: "all numeric", pwd: "1234567890", want: pwdNotAllNumTag},
		{name: "no special", pwd: "Rahasia2024", want: pwdComplexityTag},
		{name: "no upper", pwd: "rahasia#2024", want: pwdComplexityTag},
		{name: "no digit", pwd: "Rahasia#Kita", want: pwdComplexityTag},
		{name: "similar to username", pwd: "Budisantoso#1", attrs: []string{"budisantoso"}, want: pwdAttrSimTag},
		{name: "common password", pwd: "P@ssw0rd", want: pwdNoCommonTag},
		{name: "empty attrs skipped", pwd: "Rahasia#2024", attrs: []string{"", "budi"}},
		{name: "valid", pwd: "Rahasia#2024", attrs: []string{"budi", "budi@test.id"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, checkPasswordPolicy(tt.pwd, tt.attrs...))
		})
	}
}

func TestPasswordPolicyError(t *testing.T) {
	err := passwordPolicyError("short")
	if assert.IsType(t, &core.ValidationError{}, err) {
		verr := err.(*core.ValidationError)
		assert.Equal(t, []core.FieldError{{Field: "password", Error: pwdMinLenText}}, verr.Fields)
	}
	assert.NoError(t, passwordPolicyError("Rahasia#2024"))
}

func TestRoleSatisfies(t *testing.T) {
	tests := []struct {
		role Role
		tier Tier
		want bool
	}{
		{RoleAdmin, TierAdmin, true},
		{RoleAdmin, TierTeacherOrAdmin, true},
		{RoleAdmin, TierAuthenticated, true},
		{RoleTeacher, TierAdmin, false},
		{RoleTeacher, TierTeacherOrAdmin, true},
		{RoleTeacher, TierAuthenticated, true},
		{RoleStudent, TierAdmin, false},
		{RoleStudent, TierTeacherOrAdmin, false},
		{RoleStudent, TierAuthenticated, true},
		{Role("Kepsek"), TierAuthenticated, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+tt.tier.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.role.Satisfies(tt.tier))
		})
	}
	assert.False(t, Role("Kepsek").Valid())
	assert.True(t, RoleStudent.Valid())
}
