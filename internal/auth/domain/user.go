package domain

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Username and password bounds accepted at signup.
const (
	UsernameMinLen = 3
	UsernameMaxLen = 50
	PasswordMinLen = 8
)

type User struct {
	ID           int64
	Username     string
	PasswordHash string // argon2id encoded, or a placeholder for externally created accounts
	Role         string
	MFAEnabled   bool
	MFASecret    *string // base32 TOTP secret; set while pending and once enabled
	CreatedAt    time.Time
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// PublicUser is the user record as returned to clients.
type PublicUser struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	Role       string `json:"role"`
	MFAEnabled bool   `json:"mfa_enabled"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		Username:   u.Username,
		Role:       u.Role,
		MFAEnabled: u.MFAEnabled,
	}
}
