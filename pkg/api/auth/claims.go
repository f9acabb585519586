// Package auth provides JWT authentication for the JabaBox API.
package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// TokenType indicates whether a token is an access token or refresh token.
type TokenType string

const (
	// TokenTypeAccess is a short-lived token used for API authorization.
	TokenTypeAccess TokenType = "access"
	// TokenTypeRefresh is a long-lived token used to obtain new access tokens.
	TokenTypeRefresh TokenType = "refresh"
)

// Claims represents JWT claims for JabaBox authentication. Every token is
// scoped to exactly one account; handlers resolve the account from the
// AccountID claim on every request rather than trusting anything else in
// the token.
type Claims struct {
	jwt.RegisteredClaims

	// AccountID is the unique identifier (UUID) of the account.
	AccountID string `json:"aid"`

	// Login is the account's login name.
	Login string `json:"login"`

	// TokenType indicates whether this is an access or refresh token.
	TokenType TokenType `json:"token_type"`
}

// IsAccessToken returns true if this is an access token.
func (c *Claims) IsAccessToken() bool {
	return c.TokenType == TokenTypeAccess
}

// IsRefreshToken returns true if this is a refresh token.
func (c *Claims) IsRefreshToken() bool {
	return c.TokenType == TokenTypeRefresh
}
