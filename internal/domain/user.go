package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Password length bounds. The upper bound is bcrypt's input limit.
const (
	MinPasswordLength = 12
	MaxPasswordLength = 72
)

// Column limits of the users table, in characters.
const (
	MaxEmailLength = 120
	MaxNameLength  = 50
)

// Common validation errors
var (
	ErrEmptyUserID         = errors.New("user ID cannot be empty")
	ErrEmptyUsername       = errors.New("username cannot be empty")
	ErrInvalidUsername     = errors.New("username must be 3-80 letters, digits, '.', '_' or '-'")
	ErrInvalidEmail        = errors.New("invalid email format")
	ErrEmptyEmail          = errors.New("email cannot be empty")
	ErrEmailTooLong        = errors.New("email must be at most 120 characters long")
	ErrNameTooLong         = errors.New("first and last name must be at most 50 characters long")
	ErrPasswordTooShort    = errors.New("password must be at least 12 characters long")
	ErrPasswordTooLong     = errors.New("password must be at most 72 characters long")
	ErrEmptyPassword       = errors.New("password cannot be empty")
	ErrEmptyHashedPassword = errors.New("hashed password cannot be empty")
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]{3,80}$`)

// User owns tasks, categories and tags. Deleting a user removes everything
// they own.
type User struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Password       string    `json:"-"` // plaintext, only held until hashed
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser creates a new User with the given credentials.
//
// The password is kept in plaintext on the returned value; callers must hash
// it before the user is stored.
func NewUser(username, email, password string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Username:  strings.TrimSpace(username),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Password:  password,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}

	if u.Username == "" {
		return ErrEmptyUsername
	}
	if !usernamePattern.MatchString(u.Username) {
		return ErrInvalidUsername
	}

	if u.Email == "" {
		return ErrEmptyEmail
	}
	if utf8.RuneCountInString(u.Email) > MaxEmailLength {
		return ErrEmailTooLong
	}
	if !ValidateEmailFormat(u.Email) {
		return ErrInvalidEmail
	}

	if utf8.RuneCountInString(u.FirstName) > MaxNameLength ||
		utf8.RuneCountInString(u.LastName) > MaxNameLength {
		return ErrNameTooLong
	}

	if u.Password != "" {
		return ValidatePassword(u.Password)
	}

	// Stored users carry only the hash.
	if u.HashedPassword == "" {
		return ErrEmptyPassword
	}

	return nil
}

// FullName returns "First Last", falling back to the first name alone and
// then to the username.
func (u *User) FullName() string {
	first := strings.TrimSpace(u.FirstName)
	last := strings.TrimSpace(u.LastName)
	switch {
	case first != "" && last != "":
		return first + " " + last
	case first != "":
		return first
	default:
		return u.Username
	}
}

// ValidatePassword checks a plaintext password against the length bounds.
func ValidatePassword(password string) error {
	switch n := len(password); {
	case n == 0:
		return ErrEmptyPassword
	case n < MinPasswordLength:
		return ErrPasswordTooShort
	case n > MaxPasswordLength:
		return ErrPasswordTooLong
	}
	return nil
}

// ValidateEmailFormat performs a basic shape check: a non-empty local part,
// an @, and a domain containing an inner dot.
func ValidateEmailFormat(email string) bool {
	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return false
	}

	domainPart := email[at+1:]
	if len(domainPart) < 3 || strings.ContainsRune(domainPart, '@') {
		return false
	}

	dot := strings.IndexByte(domainPart, '.')
	return dot > 0 && dot < len(domainPart)-1
}
