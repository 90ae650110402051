package domain

import "time"

// Claims is the verified content of an access token.
type Claims struct {
	Subject   int64
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Token is what a successful login hands back to the caller.
type Token struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

const TokenTypeBearer = "bearer"
