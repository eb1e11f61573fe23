package models

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID             string     `bson:"_id" json:"id"`
	Name           string     `bson:"name" json:"name" validate:"required,min=2,max=80"`
	Email          string     `bson:"email" json:"email" validate:"required,email"`
	Phone          string     `bson:"phone" json:"phone" validate:"required,e164"`
	PasswordHash   string     `bson:"password_hash" json:"-"`
	IsVerified     bool       `bson:"is_verified" json:"is_verified"`
	Role           string     `bson:"role" json:"role" validate:"omitempty,oneof=user admin"`
	IsHost         bool       `bson:"is_host" json:"is_host"`
	OTPCode        string     `bson:"otp_code,omitempty" json:"-"`
	OTPExpiresAt   *time.Time `bson:"otp_expires_at,omitempty" json:"-"`
	ResetToken     string     `bson:"reset_token,omitempty" json:"-"`
	ResetExpiresAt *time.Time `bson:"reset_expires_at,omitempty" json:"-"`
	CreatedAt      time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `bson:"updated_at" json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsStaleUnverified reports whether the account outlived the verification grace period.
func (u *User) IsStaleUnverified(now time.Time, grace time.Duration) bool {
	return !u.IsVerified && !u.CreatedAt.After(now.Add(-grace))
}
