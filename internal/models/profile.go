package models

import (
	"time"

	"gorm.io/datatypes"
)

// Role identifies which kind of profile an authenticated user carries.
type Role string

const (
	// RoleTeacher marks principals backed by a TeacherProfile.
	RoleTeacher Role = "teacher"
	// RoleStudent marks principals backed by a StudentProfile.
	RoleStudent Role = "student"
)

// TeacherProfile holds the teaching-side profile of a user account.
type TeacherProfile struct {
	ID             uint              `gorm:"primaryKey" json:"id"`
	UserID         uint              `gorm:"uniqueIndex;not null" json:"user_id"`
	FullName       string            `gorm:"size:255;not null" json:"full_name"`
	Email          string            `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Bio            string            `gorm:"type:text" json:"bio"`
	Specialization string            `gorm:"size:100" json:"specialization"`
	Institution    string            `gorm:"size:100" json:"institution"`
	Department     string            `gorm:"size:100" json:"department"`
	IsVerified     bool              `gorm:"not null;default:false" json:"is_verified"`
	Status         string            `gorm:"size:20;not null;default:active" json:"status"`
	Metadata       datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// StudentProfile holds the learner-side profile of a user account.
type StudentProfile struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	UserID        uint              `gorm:"uniqueIndex;not null" json:"user_id"`
	FullName      string            `gorm:"size:255;not null" json:"full_name"`
	Email         string            `gorm:"size:255;uniqueIndex;not null" json:"email"`
	StudentNumber string            `gorm:"size:50;uniqueIndex" json:"student_number"`
	GradeLevel    string            `gorm:"size:50" json:"grade_level"`
	SchoolName    string            `gorm:"size:100" json:"school_name"`
	Status        string            `gorm:"size:20;not null;default:active" json:"status"`
	Metadata      datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// Principal is the authenticated identity the identity provider hands to the
// domain. Exactly one of TeacherID/StudentID is set, matching Role; the domain
// trusts it without re-validating credentials.
type Principal struct {
	UserID    uint
	Role      Role
	TeacherID uint
	StudentID uint
}

// IsTeacher reports whether the principal acts through a teacher profile.
func (p Principal) IsTeacher() bool {
	return p.Role == RoleTeacher && p.TeacherID != 0
}

// IsStudent reports whether the principal acts through a student profile.
func (p Principal) IsStudent() bool {
	return p.Role == RoleStudent && p.StudentID != 0
}
