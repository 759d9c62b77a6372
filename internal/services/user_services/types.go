package user_services

import "errors"

// Logger interface for all user services
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

var (
	ErrUserExists         = errors.New("an account with this email or phone already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSignup      = errors.New("invalid signup")
	ErrUserNotFound       = errors.New("user not found")
)

// mask keeps the first four characters of an identifier for logs.
func mask(s string) string {
	return s[:min(4, len(s))] + "****"
}
