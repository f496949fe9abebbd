package models

import "time"

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Sign-in providers.
const (
	ProviderPassword = "password"
	ProviderGoogle   = "google"
)

// UserModel is an auth identity: an end user or an admin operator.
type UserModel struct {
	Base
	Email          string     `json:"email"           gorm:"uniqueIndex;not null"`
	Name           string     `json:"name"`
	Password       string     `json:"-"` // empty for federated identities
	Role           string     `json:"role"            gorm:"index;default:'user'"`
	Provider       string     `json:"provider"        gorm:"default:'password'"`
	Disabled       bool       `json:"-"               gorm:"default:false"`
	FirstLoginDone bool       `json:"-"               gorm:"default:false"`
	LastLoginTime  *time.Time `json:"last_login_time"`
	LastLoginIP    string     `json:"-"`
}

func (UserModel) TableName() string { return "users" }

// ProfileModel is the profile document written best-effort after
// registration. An auth identity can exist without one; a missing profile is
// backfilled on the next federated sign-in.
type ProfileModel struct {
	Base
	UserID   string `json:"user_id"  gorm:"uniqueIndex;not null"`
	FullName string `json:"fullName"`
	Initials string `json:"initials"`
	Email    string `json:"email"    gorm:"index"`
	Role     string `json:"role"     gorm:"default:'user'"`
}

func (ProfileModel) TableName() string { return "profiles" }

// UserSession is a server-side login session a JWT is bound to.
type UserSession struct {
	Base
	UserID    string     `json:"-"          gorm:"index;not null"`
	IP        string     `json:"ip"`
	UA        string     `json:"ua"`
	ExpiresAt time.Time  `json:"expires_at" gorm:"index"`
	RevokedAt *time.Time `json:"-"          gorm:"index"`
}

func (UserSession) TableName() string { return "user_sessions" }
