package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the profile row. In live mode its ID is the identity's ID.
type User struct {
	ID         string  `json:"id" gorm:"primaryKey"`
	Email      string  `json:"email" gorm:"uniqueIndex;not null"`
	Username   string  `json:"username" gorm:"not null"`
	Name       string  `json:"name"`
	Role       string  `json:"role" gorm:"not null;default:user"`
	ProfilePic *string `json:"profilePic"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Identity is the account record owned by the identity provider.
type Identity struct {
	ID           string    `gorm:"primaryKey"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RevokedToken records a logged-out access token until it would have expired.
type RevokedToken struct {
	JTI       string    `gorm:"primaryKey"`
	ExpiresAt time.Time `gorm:"index"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ResetPasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type UpdateProfileRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
}

// Session is the result of a successful login.
type Session struct {
	AccessToken string `json:"access_token"`
	User        *User  `json:"user"`
}

func (i *Identity) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	i.PasswordHash = string(hashedPassword)
	return nil
}

func (i *Identity) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(i.PasswordHash), []byte(password))
	return err == nil
}
