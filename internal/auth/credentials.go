package auth

import (
	"errors"
	"strings"
)

// The single account the demo accepts.
const (
	DemoUsername = "admin"
	DemoPassword = "1234"
)

// Inline messages shown on the login form.
const (
	MsgMissingCredentials = "Please enter both username and password."
	MsgInvalidCredentials = "Invalid credentials. Try username: admin and password: 1234"
	MsgSessionUnavailable = "Unable to start a session. Please try again."
)

var (
	// ErrMissingCredentials is returned when either field is blank.
	ErrMissingCredentials = errors.New("username and password required")
	// ErrInvalidCredentials is returned for any pair other than the demo account.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Checker verifies a username/password pair against one account whose
// password is held only as a bcrypt hash.
type Checker struct {
	username     string
	passwordHash string
}

// NewDemoChecker hashes DemoPassword with the given bcrypt cost.
func NewDemoChecker(cost int) (*Checker, error) {
	hash, err := HashPassword(DemoPassword, cost)
	if err != nil {
		return nil, err
	}
	return &Checker{username: DemoUsername, passwordHash: hash}, nil
}

// ValidatePresence applies the presence rule: the username must contain a
// non-space character and the password must be non-empty.
func ValidatePresence(username, password string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return ErrMissingCredentials
	}
	return nil
}

// Verify compares the pair exactly; the username is not trimmed here.
func (c *Checker) Verify(username, password string) error {
	if username != c.username {
		return ErrInvalidCredentials
	}
	if err := ComparePassword(c.passwordHash, password); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
