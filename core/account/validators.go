package account

import (
	"bufio"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core"
)

var (
	roleTag  = "role"
	roleText = "role must be one of: Admin, Guru, Siswa"

	// password policy
	pwdMinLen     = 8
	pwdMinLenTag  = "pwdminlen"
	pwdMinLenText = fmt.Sprintf("password must contain at least %d characters", pwdMinLen)

	pwdNoSpaceTag  = "pwdnospace"
	pwdNoSpaceText = "password must not contain whitespace"

	pwdNotAllNumTag  = "pwdnotallnum"
	pwdNotAllNumText = "password cannot be entirely numeric"

	pwdComplexityTag  = "pwdcplx"
	pwdComplexityText = "password must contain at least 1 uppercase character, 1 lowercase character, 1 digit and 1 special character"
	specialRegex      = regexp.MustCompile("[^A-Za-z0-9]")

	pwdMaxSim      = .7
	pwdAttrSimTag  = "pwdtoosim"
	pwdAttrSimText = "password cannot be similar to user attributes"

	pwdNoCommonTag  = "pwdnocommon"
	pwdNoCommonText = "password is too common"

	pwdTexts = map[string]string{
		pwdMinLenTag:     pwdMinLenText,
		pwdNoSpaceTag:    pwdNoSpaceText,
		pwdNotAllNumTag:  pwdNotAllNumText,
		pwdComplexityTag: pwdComplexityText,
		pwdAttrSimTag:    pwdAttrSimText,
		pwdNoCommonTag:   pwdNoCommonText,
	}

	commonPasswords   []string
	commonPasswordsMu sync.RWMutex
)

// InitValidators registers the account validation tags and the password policy.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(roleTag, func(fl validator.FieldLevel) bool {
		return Role(fl.Field().String()).Valid()
	})
	core.RegisterCustomTranslation(validate, translator, roleTag, roleText)

	validate.RegisterStructValidation(passwordStructValidation, Registration{}, ProfileUpdate{})
	for tag, text := range pwdTexts {
		core.RegisterCustomTranslation(validate, translator, tag, text)
	}
}

// LoadCommonPasswords loads the list of passwords rejected by the policy, one per line.
func LoadCommonPasswords(fsys fs.FS, path string, logger core.Logger) {
	file, err := fsys.Open(path)
	if err != nil {
		logger.Error(fmt.Sprintf("account.LoadCommonPasswords(%s): %v", path, err), err)
		return
	}
	defer func() { _ = file.Close() }()

	pwds := make([]string, 0, 1024)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if pwd := strings.ToLower(strings.TrimSpace(scanner.Text())); pwd != "" {
			pwds = append(pwds, pwd)
		}
	}
	if err = scanner.Err(); err != nil {
		logger.Error(fmt.Sprintf("account.LoadCommonPasswords(%s): %v", path, err), err)
	}
	sort.Strings(pwds)

	commonPasswordsMu.Lock()
	commonPasswords = pwds
	commonPasswordsMu.Unlock()
}

// passwordStructValidation applies the password policy on Registration and ProfileUpdate.
func passwordStructValidation(sl validator.StructLevel) {
	var pwd string
	var attrs []string
	switch v := sl.Current().Interface().(type) {
	case Registration:
		pwd = v.Password
		attrs = []string{v.Username, v.Email, v.Name}
	case ProfileUpdate:
		if v.Password == nil {
			return
		}
		pwd = *v.Password
		attrs = []string{v.username}
		if v.Email != nil {
			attrs = append(attrs, *v.Email)
		}
		if v.Name != nil {
			attrs = append(attrs, *v.Name)
		}
	default:
		return
	}
	if pwd == "" {
		return
	}
	if tag := checkPasswordPolicy(pwd, attrs...); tag != "" {
		sl.ReportError(pwd, "password", "Password", tag, "")
	}
}

// passwordPolicyError returns a core.ValidationError if pwd breaks the password policy.
func passwordPolicyError(pwd string, attrs ...string) error {
	if tag := checkPasswordPolicy(pwd, attrs...); tag != "" {
		return core.NewValidationError(nil, core.FieldError{Field: "password", Error: pwdTexts[tag]})
	}
	return nil
}

// checkPasswordPolicy returns the tag of the first rule broken by pwd, or "":
// - minLen: 8
// - no whitespace
// - no all numeric
// - complexity: 1 upper, 1 lower, 1 digit, 1 special
// - no user attrs similarity
// - no common password
func checkPasswordPolicy(pwd string, attrs ...string) string {
	var (
		digitCount         int
		hasUpper, hasLower bool
	)

	pwdLen := len([]rune(pwd))
	if pwdLen < pwdMinLen {
		return pwdMinLenTag
	}
	for _, char := range pwd {
		if unicode.IsSpace(char) {
			return pwdNoSpaceTag
		}
		if unicode.IsDigit(char) {
			digitCount++
		}
		if !hasUpper && unicode.IsUpper(char) {
			hasUpper = true
		}
		if !hasLower && unicode.IsLower(char) {
			hasLower = true
		}
	}

	if digitCount == pwdLen {
		return pwdNotAllNumTag
	}

	if !(hasUpper && hasLower && digitCount > 0 && specialRegex.MatchString(pwd)) {
		return pwdComplexityTag
	}

	lpwd := strings.ToLower(pwd)
	for _, attr := range attrs {
		if attr == "" {
			continue
		}
		ratio := difflib.NewMatcher(strings.Split(lpwd, ""), strings.Split(strings.ToLower(attr), "")).QuickRatio()
		if ratio >= pwdMaxSim {
			return pwdAttrSimTag
		}
	}

	commonPasswordsMu.RLock()
	defer commonPasswordsMu.RUnlock()
	if idx := sort.SearchStrings(commonPasswords, lpwd); idx < len(commonPasswords) && commonPasswords[idx] == lpwd {
		return pwdNoCommonTag
	}
	return ""
}
