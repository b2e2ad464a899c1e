package profile

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound = errors.New("profile not found")
)

type Role string

const (
	RoleStudent Role = "student"
	RoleTutor   Role = "tutor"
	RoleHOD     Role = "hod"
	RoleAdmin   Role = "admin"
)

// Roles in display order.
var Roles = []Role{RoleStudent, RoleTutor, RoleHOD, RoleAdmin}

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTutor, RoleHOD, RoleAdmin:
		return true
	}
	return false
}

// Staff reports whether r takes part in the approval chain.
func (r Role) Staff() bool { return r == RoleTutor || r == RoleHOD || r == RoleAdmin }

// Table: profiles. ID is shared with the authentication identity.
type Profile struct {
	ID             string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	Role           Role      `gorm:"column:role;size:20;not null;default:'student';index" json:"role"`
	FirstName      string    `gorm:"column:first_name;size:100" json:"first_name"`
	LastName       string    `gorm:"column:last_name;size:100" json:"last_name"`
	Email          string    `gorm:"column:email;size:255" json:"email"`
	Department     *string   `gorm:"column:department;size:150;index" json:"department"`
	RegisterNumber *string   `gorm:"column:register_number;size:50" json:"register_number"`
	TutorID        *string   `gorm:"column:tutor_id;size:36;index" json:"tutor_id"`
	AvatarURL      *string   `gorm:"column:avatar_url;type:text" json:"avatar_url"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Profile) TableName() string { return "profiles" }

func (p *Profile) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// DepartmentOr returns the department or def when unset.
func (p *Profile) DepartmentOr(def string) string {
	if p.Department == nil || *p.Department == "" {
		return def
	}
	return *p.Department
}

// SelfUpdate holds the fields a user may change on their own profile.
type SelfUpdate struct {
	FirstName *string
	LastName  *string
	AvatarURL *string
}

// AdminUpdate holds the sensitive fields only an admin may change.
type AdminUpdate struct {
	Role           *Role
	Department     *string
	RegisterNumber *string
	TutorID        *string
}

// ListFilter narrows the admin user list.
type ListFilter struct {
	Role       Role
	Department string
	Search     string
}
