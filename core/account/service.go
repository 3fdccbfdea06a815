package account

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/roster"
)

type (
	Repository interface {
		CreateAccount(ctx context.Context, acc Account, exec ...core.DBExecutor) (Account, error)
		// GetAccount returns ErrNotFound when no Account matches.
		GetAccount(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (Account, error)
		UpdateAccount(ctx context.Context, acc Account, exec ...core.DBExecutor) (Account, error)
	}

	Service struct {
		db      core.Transactor
		repo    Repository
		roster  roster.Repository
		mailSvc core.EmailService
		tokens  tokenGenerator
	}
)

func NewService(
	db core.Transactor,
	repo Repository,
	rosterRepo roster.Repository,
	mailSvc core.EmailService,
	conf *core.Config,
) *Service {
	return &Service{
		db:      db,
		repo:    repo,
		roster:  rosterRepo,
		mailSvc: mailSvc,
		tokens: tokenGenerator{
			secretKey: []byte(conf.SecretKey),
			timeout:   conf.PasswordResetTimeoutDelta,
		},
	}
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// Register creates an Account, attaching it to an existing unclaimed Teacher/Student record
// or creating that record (and a Teacher's first assignment) in the same transaction.
func (svc *Service) Register(ctx context.Context, reg Registration) (Account, error) {
	var acc Account
	err := svc.db.InTx(ctx, func(exec core.DBExecutor) error {
		var err error
		acc, err = svc.register(ctx, reg, exec)
		return err
	})
	if err != nil {
		if core.IsUniqueViolation(err) {
			// a concurrent registration won the race: report which record it claimed
			return Account{}, svc.resolveConflict(ctx, reg, err)
		}
		return Account{}, err
	}
	return acc, nil
}

func (svc *Service) register(ctx context.Context, reg Registration, exec core.DBExecutor) (Account, error) {
	if err := svc.checkUnclaimed(ctx, reg, exec); err != nil {
		return Account{}, err
	}

	ts := now()
	acc := Account{
		Username:  reg.Username,
		Email:     null.NewString(reg.Email, reg.Email != ""),
		Role:      reg.Role,
		CreatedAt: ts,
		UpdatedAt: ts,
	}

	switch reg.Role {
	case RoleTeacher:
		teacherID, err := svc.resolveTeacher(ctx, reg, exec)
		if err != nil {
			return Account{}, err
		}
		acc.TeacherID = null.IntFrom(teacherID)
	case RoleStudent:
		studentID, err := svc.resolveStudent(ctx, reg, exec)
		if err != nil {
			return Account{}, err
		}
		acc.StudentID = null.IntFrom(studentID)
	}

	if err := acc.SetPassword(reg.Password); err != nil {
		return Account{}, errors.Wrap(err, "hashing password")
	}
	acc, err := svc.repo.CreateAccount(ctx, acc, exec)
	if err != nil {
		return Account{}, errors.Wrap(err, "creating account")
	}
	return acc, nil
}

// checkUnclaimed rejects a username (or e-mail) already used by another Account.
func (svc *Service) checkUnclaimed(ctx context.Context, reg Registration, exec ...core.DBExecutor) error {
	if _, err := svc.repo.GetAccount(ctx, GetFilter{Username: reg.Username}, exec...); err == nil {
		return ErrDuplicateAccount
	} else if errors.Cause(err) != ErrNotFound {
		return errors.Wrap(err, "getting account by username")
	}
	if reg.Email != "" {
		if _, err := svc.repo.GetAccount(ctx, GetFilter{Email: reg.Email}, exec...); err == nil {
			return errEmailTaken
		} else if errors.Cause(err) != ErrNotFound {
			return errors.Wrap(err, "getting account by email")
		}
	}
	return nil
}

// resolveTeacher returns the ID of the Teacher the new Account links to.
func (svc *Service) resolveTeacher(ctx context.Context, reg Registration, exec core.DBExecutor) (int, error) {
	if reg.NIP == "" {
		return 0, ErrNIPRequired
	}

	teacher, err := svc.roster.GetTeacher(ctx, roster.TeacherFilter{NIP: reg.NIP}, exec)
	switch {
	case err == nil:
		if claimed, err := svc.isClaimed(ctx, GetFilter{TeacherID: teacher.ID}, exec); err != nil {
			return 0, err
		} else if claimed {
			return 0, ErrTeacherClaimed
		}
		return teacher.ID, nil
	case errors.Cause(err) != roster.ErrTeacherNotFound:
		return 0, errors.Wrap(err, "getting teacher by NIP")
	}

	if reg.Name == "" || reg.Gender == "" {
		return 0, ErrNewTeacherFields
	}
	teacher, err = svc.roster.CreateTeacher(ctx, roster.Teacher{
		NIP:    reg.NIP,
		Name:   reg.Name,
		Gender: reg.Gender,
		Phone:  null.NewString(reg.Phone, reg.Phone != ""),
	}, exec)
	if err != nil {
		return 0, errors.Wrap(err, "creating teacher")
	}

	if reg.SubjectID != nil {
		if err = svc.assignFirstSubject(ctx, teacher.ID, *reg.SubjectID, reg.TeacherClassID, exec); err != nil {
			return 0, err
		}
	}
	return teacher.ID, nil
}

// assignFirstSubject creates a new Teacher's first assignment. Unknown subjects or classes are skipped.
func (svc *Service) assignFirstSubject(ctx context.Context, teacherID, subjectID int, classID *int, exec core.DBExecutor) error {
	if _, err := svc.roster.GetSubject(ctx, subjectID, exec); err != nil {
		if errors.Cause(err) == roster.ErrSubjectNotFound {
			return nil
		}
		return errors.Wrap(err, "getting subject")
	}
	if classID != nil {
		if _, err := svc.roster.GetClass(ctx, *classID, exec); err != nil {
			if errors.Cause(err) == roster.ErrClassNotFound {
				return nil
			}
			return errors.Wrap(err, "getting class")
		}
	}
	_, err := svc.roster.CreateAssignment(ctx, roster.Assignment{
		TeacherID: teacherID,
		SubjectID: subjectID,
		ClassID:   null.IntFromPtr(classID),
	}, exec)
	return errors.Wrap(err, "creating assignment")
}

// resolveStudent returns the ID of the Student the new Account links to.
func (svc *Service) resolveStudent(ctx context.Context, reg Registration, exec core.DBExecutor) (int, error) {
	if reg.NISN == "" {
		return 0, ErrNISNRequired
	}

	student, err := svc.roster.GetStudent(ctx, roster.StudentFilter{NISN: reg.NISN}, exec)
	switch {
	case err == nil:
		if claimed, err := svc.isClaimed(ctx, GetFilter{StudentID: student.ID}, exec); err != nil {
			return 0, err
		} else if claimed {
			return 0, ErrStudentClaimed
		}
		return student.ID, nil
	case errors.Cause(err) != roster.ErrStudentNotFound:
		return 0, errors.Wrap(err, "getting student by NISN")
	}

	if reg.Name == "" || reg.Gender == "" {
		return 0, ErrNewStudentFields
	}
	if reg.RegisteredClassID != nil {
		if _, err = svc.roster.GetClass(ctx, *reg.RegisteredClassID, exec); err != nil {
			if errors.Cause(err) == roster.ErrClassNotFound {
				return 0, core.NewValidationError(nil, core.FieldError{Field: "id_kelas_registered", Error: err.Error()})
			}
			return 0, errors.Wrap(err, "getting class")
		}
	}
	student, err = svc.roster.CreateStudent(ctx, roster.Student{
		ClassID: null.IntFromPtr(reg.RegisteredClassID),
		NISN:    reg.NISN,
		Name:    reg.Name,
		Gender:  reg.Gender,
		Phone:   null.NewString(reg.Phone, reg.Phone != ""),
	}, exec)
	if err != nil {
		return 0, errors.Wrap(err, "creating student")
	}
	return student.ID, nil
}

func (svc *Service) isClaimed(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (bool, error) {
	_, err := svc.repo.GetAccount(ctx, filter, exec...)
	switch {
	case err == nil:
		return true, nil
	case errors.Cause(err) == ErrNotFound:
		return false, nil
	}
	return false, errors.Wrap(err, "getting linked account")
}

// resolveConflict maps a unique violation raised while committing a registration to the
// account error describing what the competing registration claimed first.
func (svc *Service) resolveConflict(ctx context.Context, reg Registration, cause error) error {
	if err := svc.checkUnclaimed(ctx, reg); err != nil {
		return err
	}

	switch reg.Role {
	case RoleTeacher:
		if teacher, err := svc.roster.GetTeacher(ctx, roster.TeacherFilter{NIP: reg.NIP}); err == nil {
			if claimed, _ := svc.isClaimed(ctx, GetFilter{TeacherID: teacher.ID}); claimed {
				return ErrTeacherClaimed
			}
		}
	case RoleStudent:
		if student, err := svc.roster.GetStudent(ctx, roster.StudentFilter{NISN: reg.NISN}); err == nil {
			if claimed, _ := svc.isClaimed(ctx, GetFilter{StudentID: student.ID}); claimed {
				return ErrStudentClaimed
			}
		}
	}
	return errors.Wrap(cause, "registering account")
}

// Authenticate checks the credentials and records the login.
// Unknown usernames and wrong passwords both yield ErrInvalidCredentials.
func (svc *Service) Authenticate(ctx context.Context, username, pwd string) (Account, error) {
	acc, err := svc.repo.GetAccount(ctx, GetFilter{Username: core.CleanString(username, true /* lower */)})
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Account{}, ErrInvalidCredentials
		}
		return Account{}, errors.Wrap(err, "getting account by username")
	}
	if err = acc.CheckPassword(pwd); err != nil {
		return Account{}, ErrInvalidCredentials
	}

	acc.LastLogin = null.TimeFrom(now())
	if acc, err = svc.repo.UpdateAccount(ctx, acc); err != nil {
		return Account{}, errors.Wrap(err, "setting last login")
	}
	return acc, nil
}

// Authorize re-fetches the live Account named by a verified token and checks it against tier.
func (svc *Service) Authorize(ctx context.Context, username string, tier Tier) (Account, error) {
	acc, err := svc.repo.GetAccount(ctx, GetFilter{Username: username})
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Account{}, ErrInvalidToken
		}
		return Account{}, errors.Wrap(err, "getting account by username")
	}
	if !acc.Role.Satisfies(tier) {
		return Account{}, ErrInsufficientPrivilege
	}
	return acc, nil
}

func (svc *Service) GetByID(ctx context.Context, id int) (Account, error) {
	return svc.repo.GetAccount(ctx, GetFilter{ID: id})
}

func (svc *Service) GetByUsername(ctx context.Context, username string) (Account, error) {
	return svc.repo.GetAccount(ctx, GetFilter{Username: core.CleanString(username, true /* lower */)})
}

// Profile returns the Account with its linked Teacher or Student record.
func (svc *Service) Profile(ctx context.Context, acc Account) (Profile, error) {
	p := Profile{ID: acc.ID, Username: acc.Username, Role: acc.Role}
	switch {
	case acc.IsTeacher() && acc.TeacherID.Valid:
		teacher, err := svc.roster.GetTeacher(ctx, roster.TeacherFilter{ID: acc.TeacherID.Int})
		if err != nil && errors.Cause(err) != roster.ErrTeacherNotFound {
			return Profile{}, errors.Wrap(err, "getting teacher")
		} else if err == nil {
			p.Teacher = &teacher
		}
	case acc.IsStudent() && acc.StudentID.Valid:
		student, err := svc.roster.GetStudent(ctx, roster.StudentFilter{ID: acc.StudentID.Int})
		if err != nil && errors.Cause(err) != roster.ErrStudentNotFound {
			return Profile{}, errors.Wrap(err, "getting student")
		} else if err == nil {
			p.Student = &student
		}
	}
	return p, nil
}

// UpdateProfile applies the allow-listed fields of up to the account's own roster record and password.
func (svc *Service) UpdateProfile(ctx context.Context, acc Account, up ProfileUpdate) error {
	return svc.db.InTx(ctx, func(exec core.DBExecutor) error {
		switch {
		case acc.IsTeacher() && acc.TeacherID.Valid:
			if err := svc.updateTeacherProfile(ctx, acc.TeacherID.Int, up, exec); err != nil {
				return err
			}
		case acc.IsStudent() && acc.StudentID.Valid:
			if err := svc.updateStudentProfile(ctx, acc.StudentID.Int, up, exec); err != nil {
				return err
			}
		}

		if up.Password != nil {
			if err := acc.SetPassword(*up.Password); err != nil {
				return errors.Wrap(err, "hashing password")
			}
			acc.UpdatedAt = now()
			if _, err := svc.repo.UpdateAccount(ctx, acc, exec); err != nil {
				return errors.Wrap(err, "updating account")
			}
		}
		return nil
	})
}

func (svc *Service) updateTeacherProfile(ctx context.Context, id int, up ProfileUpdate, exec core.DBExecutor) error {
	teacher, err := svc.roster.GetTeacher(ctx, roster.TeacherFilter{ID: id}, exec)
	if err != nil {
		return errors.Wrap(err, "getting teacher")
	}
	if up.Name != nil {
		teacher.Name = *up.Name
	}
	if up.Gender != nil {
		teacher.Gender = *up.Gender
	}
	if up.Email != nil {
		teacher.Email = null.NewString(*up.Email, *up.Email != "")
	}
	if up.Phone != nil {
		teacher.Phone = null.NewString(*up.Phone, *up.Phone != "")
	}
	_, err = svc.roster.UpdateTeacher(ctx, teacher, exec)
	return errors.Wrap(err, "updating teacher")
}

func (svc *Service) updateStudentProfile(ctx context.Context, id int, up ProfileUpdate, exec core.DBExecutor) error {
	student, err := svc.roster.GetStudent(ctx, roster.StudentFilter{ID: id}, exec)
	if err != nil {
		return errors.Wrap(err, "getting student")
	}
	if up.Name != nil {
		student.Name = *up.Name
	}
	if up.Gender != nil {
		student.Gender = *up.Gender
	}
	if up.Phone != nil {
		student.Phone = null.NewString(*up.Phone, *up.Phone != "")
	}
	if up.Address != nil {
		student.Address = null.NewString(*up.Address, *up.Address != "")
	}
	if up.BirthDate != nil {
		student.BirthDate = *up.BirthDate
	}
	_, err = svc.roster.UpdateStudent(ctx, student, exec)
	return errors.Wrap(err, "updating student")
}

// RequestPasswordReset mails a password reset link to the Account owning email.
func (svc *Service) RequestPasswordReset(ctx context.Context, email string) error {
	acc, err := svc.repo.GetAccount(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
	if err != nil {
		return err
	}
	svc.sendPasswordResetMail(ctx, acc)
	return nil
}

func (svc *Service) sendPasswordResetMail(ctx context.Context, acc Account) {
	name := acc.Username
	if p, err := svc.Profile(ctx, acc); err == nil {
		if p.Teacher != nil {
			name = p.Teacher.Name
		} else if p.Student != nil {
			name = p.Student.Name
		}
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: name, Address: acc.Email.String}},
		Subject:      "Atur ulang kata sandi",
		TemplateName: "password_reset",
		TemplateData: map[string]interface{}{
			"Name":     name,
			"Username": acc.Username,
			"UID":      encodeUID(acc),
			"Token":    svc.tokens.makeToken(acc),
		},
	})
}

// ResetPassword sets a new password given a valid reset link.
func (svc *Service) ResetPassword(ctx context.Context, rp ResetPassword) error {
	id, err := decodeUID(rp.UID)
	if err != nil {
		return core.NewValidationError(errInvalidResetLink)
	}
	acc, err := svc.repo.GetAccount(ctx, GetFilter{ID: id})
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return core.NewValidationError(errInvalidResetLink)
		}
		return errors.Wrap(err, "getting account")
	}
	if err = svc.tokens.verifyToken(acc, rp.Token); err != nil {
		return core.NewValidationError(errInvalidResetLink)
	}
	if err = passwordPolicyError(rp.Password, acc.Username, acc.Email.String); err != nil {
		return err
	}
	return svc.SetPassword(ctx, acc, rp.Password)
}

// SetPassword replaces the password of acc without applying the password policy.
func (svc *Service) SetPassword(ctx context.Context, acc Account, pwd string) error {
	if err := acc.SetPassword(pwd); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	acc.UpdatedAt = now()
	_, err := svc.repo.UpdateAccount(ctx, acc)
	return errors.Wrap(err, "updating account")
}

// SaveAdmin creates an Admin account, or promotes and updates the Account named username.
func (svc *Service) SaveAdmin(ctx context.Context, username, email, pwd string) (Account, error) {
	username = core.CleanString(username, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	acc, err := svc.repo.GetAccount(ctx, GetFilter{Username: username})
	exists := err == nil
	if err != nil && errors.Cause(err) != ErrNotFound {
		return Account{}, errors.Wrap(err, "getting account by username")
	}

	ts := now()
	if !exists {
		acc = Account{Username: username, CreatedAt: ts}
	}
	acc.Role = RoleAdmin
	acc.TeacherID = null.Int{}
	acc.StudentID = null.Int{}
	if email != "" {
		acc.Email = null.StringFrom(email)
	}
	acc.UpdatedAt = ts
	if err = acc.SetPassword(pwd); err != nil {
		return Account{}, errors.Wrap(err, "hashing password")
	}

	if exists {
		return svc.repo.UpdateAccount(ctx, acc)
	}
	return svc.repo.CreateAccount(ctx, acc)
}
