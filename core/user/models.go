package user

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/acfjba/platformdigital-sub000/core"
)

// Roles
const (
	// Platform
	RoleSystemAdmin = "system_admin"

	// School
	RolePrimaryAdmin = "primary_admin"
	RoleHeadTeacher  = "head_teacher"
	RoleTeacher      = "teacher"
	RoleLibrarian    = "librarian"
)

var (
	SchoolRoles = []string{RolePrimaryAdmin, RoleHeadTeacher, RoleTeacher, RoleLibrarian}
	AllRoles    = append([]string{RoleSystemAdmin}, SchoolRoles...)

	// school managers see everything within their school
	ManagerRoles = []string{RolePrimaryAdmin, RoleHeadTeacher}

	rolePriorities = map[string]int{
		RoleSystemAdmin:  50,
		RolePrimaryAdmin: 40,
		RoleHeadTeacher:  30,
		RoleTeacher:      20,
		RoleLibrarian:    10,
	}

	Roles = []Role{
		{Name: "Librarian", Value: RoleLibrarian},
		{Name: "Teacher", Value: RoleTeacher},
		{Name: "Head Teacher", Value: RoleHeadTeacher},
		{Name: "Primary Admin", Value: RolePrimaryAdmin},
		{Name: "System Admin", Value: RoleSystemAdmin},
	}
)

func RolePriority(role string) int {
	return rolePriorities[role]
}

// IsValidRole reports whether role is a known role.
func IsValidRole(role string) bool {
	_, ok := rolePriorities[role]
	return ok
}

// HasAnyRole reports whether role is one of roles.
func HasAnyRole(role string, roles ...string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type User struct {
	ID           string    `json:"id" firestore:"-"`
	SchoolID     string    `json:"school_id" firestore:"schoolId"`
	Name         string    `json:"name" firestore:"name"`
	Username     string    `json:"username" firestore:"username"`
	Email        string    `json:"email" firestore:"email"`
	Role         string    `json:"role" firestore:"role"`
	IsActive     bool      `json:"is_active" firestore:"isActive"`
	PasswordHash []byte    `json:"-" firestore:"passwordHash"`
	CreatedAt    time.Time `json:"created_at" firestore:"createdAt"` // UTC
	UpdatedAt    time.Time `json:"updated_at" firestore:"updatedAt"` // UTC
	LastLogin    time.Time `json:"last_login" firestore:"lastLogin"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsSystemAdmin() bool {
	return u.Role == RoleSystemAdmin
}

// IsSchoolAdmin reports whether the user administers their school.
func (u *User) IsSchoolAdmin() bool {
	return u.Role == RolePrimaryAdmin || u.IsSystemAdmin()
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	SchoolID        string `json:"-"`
	Name            string `json:"name" validate:"required"`
	Username        string `json:"username" validate:"omitempty,min=3,alphanum_"`
	Email           string `json:"email" validate:"omitempty,email"`
	Role            string `json:"role" validate:"required,allroles"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (nu *NewUser) Validate(ctx context.Context, validate *validator.Validate, svc ServiceInterface) error {
	nu.Name = core.CleanName(nu.Name)
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Role = core.CleanString(nu.Role, true /* lower */)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, nu.Username, nu.Email)
}

// UpdateUser defines what information may be provided to modify an existing User.
type UpdateUser struct {
	Name            string `json:"name"`
	Username        string `json:"username" validate:"omitempty,min=3,alphanum_"`
	Email           string `json:"email" validate:"omitempty,email"`
	IsActive        *bool  `json:"is_active"`
	Role            string `json:"role" validate:"omitempty,allroles"`
	Password        string `json:"password" validate:"omitempty"`
	PasswordConfirm string `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`
}

func (uu *UpdateUser) Validate(ctx context.Context, origUsr User, validate *validator.Validate, svc ServiceInterface) error {
	name := core.CleanName(uu.Name)
	if name != "" {
		uu.Name = name
	} else {
		uu.Name = origUsr.Name
	}

	uname := core.CleanString(uu.Username, true /* lower */)
	if uname != "" {
		uu.Username = uname
	} else {
		uu.Username = origUsr.Username
	}

	email := core.CleanString(uu.Email, true /* lower */)
	if email != "" {
		uu.Email = email
	} else {
		uu.Email = origUsr.Email
	}

	role := core.CleanString(uu.Role, true /* lower */)
	if role != "" {
		uu.Role = role
	} else {
		uu.Role = origUsr.Role
	}

	if err := validate.Struct(uu); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, uu.Username, uu.Email, origUsr)
}

type QueryFilter struct {
	SchoolID string   `query:"-"`
	Search   string   `query:"search"`
	Roles    []string `query:"role"`
	IsActive *bool    `query:"is_active"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

// Match applies the filter to usr, for backends filtering in memory.
func (qf *QueryFilter) Match(usr User) bool {
	if qf.SchoolID != "" && usr.SchoolID != qf.SchoolID {
		return false
	}
	if !core.ContainsFold(qf.Search, usr.Name, usr.Username, usr.Email) {
		return false
	}
	if len(qf.Roles) > 0 && !HasAnyRole(usr.Role, qf.Roles...) {
		return false
	}
	if qf.IsActive != nil && usr.IsActive != *qf.IsActive {
		return false
	}
	return true
}

// GetFilter looks up a single user by one of its fields, in this order.
type GetFilter struct {
	ID              string
	Username        string
	Email           string
	UsernameOrEmail string
}

// Match reports whether usr is the one looked up.
func (gf GetFilter) Match(usr User) bool {
	switch {
	case gf.ID != "":
		return usr.ID == gf.ID
	case gf.Username != "":
		return usr.Username == gf.Username
	case gf.Email != "":
		return usr.Email == gf.Email
	case gf.UsernameOrEmail != "":
		return usr.Username == gf.UsernameOrEmail || usr.Email == gf.UsernameOrEmail
	}
	return false
}
