// Package common contains shared constants and sentinel errors used across
// newsnow components.
package common

// Cookie names carrying the session credentials. Both are issued by login,
// read by the session middleware and cleared by logout.
const (
	AccessTokenCookieName  = "accessToken"
	RefreshTokenCookieName = "refreshToken"
)
