package account

// Role is the closed set of account roles. The values are the ones stored in `pengguna.role`.
type Role string

const (
	RoleAdmin   Role = "Admin"
	RoleTeacher Role = "Guru"
	RoleStudent Role = "Siswa"
)

var Roles = []Role{RoleAdmin, RoleTeacher, RoleStudent}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return true
	}
	return false
}

// Tier is the authorization level an operation requires.
type Tier int

const (
	TierAuthenticated Tier = iota
	TierTeacherOrAdmin
	TierAdmin
)

// tierRoles lists the roles allowed through each Tier.
var tierRoles = map[Tier][]Role{
	TierAuthenticated:  {RoleAdmin, RoleTeacher, RoleStudent},
	TierTeacherOrAdmin: {RoleAdmin, RoleTeacher},
	TierAdmin:          {RoleAdmin},
}

// Satisfies reports whether r may access operations guarded by tier.
func (r Role) Satisfies(tier Tier) bool {
	for _, role := range tierRoles[tier] {
		if role == r {
			return true
		}
	}
	return false
}

func (t Tier) String() string {
	switch t {
	case TierAuthenticated:
		return "authenticated"
	case TierTeacherOrAdmin:
		return "teacher-or-admin"
	case TierAdmin:
		return "admin"
	}
	return "unknown"
}
