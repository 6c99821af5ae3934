// Package models defines the authentication data model.
package models

import "time"

// Challenge is a pending one-time verification code for an email
// address. At most one live challenge exists per email; issuing a new
// one overwrites the previous.
type Challenge struct {
	Email     string    `db:"email"`
	Code      string    `db:"code"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}

// Expired reports whether the challenge is past its expiry at the
// given instant. The comparison is strictly greater-than: a code
// verified exactly at its expiry is still accepted.
func (c *Challenge) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
