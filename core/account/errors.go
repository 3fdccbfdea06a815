package account

import (
	"github.com/pkg/errors"

	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core"
)

// Kind classifies account errors so transports can map them to a response.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidCredentials
	KindInvalidToken
	KindInsufficientPrivilege
	KindDuplicateAccount
	KindAlreadyClaimed
	KindMissingField
	KindNotFound
)

// Error is a terminal, user-visible account error.
type Error struct {
	Kind    Kind
	message string
}

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, message: msg}
}

func (err Error) Error() string {
	return err.message
}

var (
	ErrInvalidCredentials    = newError(KindInvalidCredentials, "Incorrect username or password")
	ErrInvalidToken          = newError(KindInvalidToken, "Could not validate credentials")
	ErrInsufficientPrivilege = newError(KindInsufficientPrivilege, "The user doesn't have enough privileges")
	ErrDuplicateAccount      = newError(KindDuplicateAccount, "The user with this username already exists in the system")
	ErrTeacherClaimed        = newError(KindAlreadyClaimed, "Teacher already has an account")
	ErrStudentClaimed        = newError(KindAlreadyClaimed, "Student already has an account")
	ErrNIPRequired           = newError(KindMissingField, "NIP is required for teacher registration")
	ErrNISNRequired          = newError(KindMissingField, "NISN is required for student registration")
	ErrNewTeacherFields      = newError(KindMissingField, "Nama and Jenis Kelamin are required for new teacher registration")
	ErrNewStudentFields      = newError(KindMissingField, "Nama and Jenis Kelamin are required for new student registration")
	ErrNotFound              = newError(KindNotFound, "user not found")

	errInvalidResetLink = errors.New("The reset link is invalid or has expired")
)

// KindOf returns the Kind of err's cause, or KindUnknown.
func KindOf(err error) Kind {
	if e, ok := errors.Cause(err).(*Error); ok {
		return e.Kind
	}
	return KindUnknown
}

var errEmailTaken = core.NewValidationError(nil, core.FieldError{Field: "email", Error: "a user with this email already exists"})
