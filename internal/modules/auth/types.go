package auth

import (
	"errors"
	"time"
)

type LoginDTO struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterDTO struct {
	FullName string `json:"fullName" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type GoogleLoginDTO struct {
	IDToken string `json:"idToken" binding:"required"`
}

type userResponse struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	Name          string     `json:"name"`
	Role          string     `json:"role"`
	Provider      string     `json:"provider"`
	LastLoginTime *time.Time `json:"lastLoginTime,omitempty"`
}

type loginResponse struct {
	Token       string        `json:"token"`
	User        *userResponse `json:"user"`
	FirstLogin  bool          `json:"firstLogin"`
	RedirectURL string        `json:"redirectUrl,omitempty"`
}

// Sentinel errors; the handler maps each to a user-facing message the way the
// old client surfaced Firebase auth codes.
var (
	errUserNotFound       = errors.New("user not found")
	errWrongPassword      = errors.New("wrong password")
	errInvalidEmail       = errors.New("invalid email")
	errAccountDisabled    = errors.New("account disabled")
	errAlreadyRegistered  = errors.New("already registered")
	errInvalidGoogleToken = errors.New("invalid google token")
)
