package domain

import "time"

// Session is an issued bearer token.
type Session struct {
	Token     string
	ExpiresAt time.Time
}
