// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is a credential record. PasswordHash and RefreshTokenHash never
// leave the server; handlers work with PublicUser.
type User struct {
	ID       string
	FullName string
	UserName string
	// PasswordHash is a bcrypt hash of the account password.
	PasswordHash []byte
	Role         Role
	// RefreshTokenHash is the hex SHA-256 of the active refresh token,
	// empty when the user has no session.
	RefreshTokenHash string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// PublicUser is the user projection safe to attach to a request or send to a client.
type PublicUser struct {
	ID        string    `json:"id"`
	FullName  string    `json:"fullName"`
	UserName  string    `json:"username"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:        u.ID,
		FullName:  u.FullName,
		UserName:  u.UserName,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

func (u *PublicUser) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
