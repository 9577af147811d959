package models

// Role controls which staff-only routes a user may call.
type Role string

const (
	RoleUser   Role = "USER"
	RoleAdmin  Role = "ADMIN"
	RoleDoctor Role = "DOCTOR"
)

type UserStatus string

const (
	UserStatusActive   UserStatus = "ACTIVE"
	UserStatusInactive UserStatus = "INACTIVE"
)

// User represents a customer or staff member of the shop.
type User struct {
	Base
	Email    string     `json:"email" gorm:"uniqueIndex;type:varchar(255);not null" validate:"required,email"`
	Password string     `json:"-" gorm:"type:varchar(255);not null" validate:"required,min=6"`
	FullName string     `json:"full_name" gorm:"type:varchar(255);not null" validate:"required,min=2,max=255"`
	Phone    string     `json:"phone" gorm:"type:varchar(32)"`
	Address  string     `json:"address" gorm:"type:varchar(255)"`
	Role     Role       `json:"role" gorm:"type:varchar(16);not null;default:USER"`
	Status   UserStatus `json:"status" gorm:"type:varchar(16);not null;default:ACTIVE"`
}

// IsStaff reports whether the user may manage appointments.
func (u *User) IsStaff() bool {
	return u.Role == RoleAdmin || u.Role == RoleDoctor
}
