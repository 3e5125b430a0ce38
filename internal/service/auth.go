// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     parses requests, writes the JSON envelope
//	Service (business layer) validates, enforces rules, orchestrates
//	Repository (data layer)  reads/writes the database
//
// Handlers only know about HTTP. Services only know about business rules.
// Neither knows about SQL. The services take repository interfaces, not the
// concrete sqlite types, so tests can inject in-memory fakes.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/sakif/student-portal/internal/apperror"
	"github.com/sakif/student-portal/internal/auth"
	"github.com/sakif/student-portal/internal/model"
	"github.com/sakif/student-portal/internal/repository"
)

// MinPasswordLength is the registration floor. bcrypt's own 72-byte ceiling
// is enforced by the PasswordService.
const MinPasswordLength = 6

// phonePattern accepts digits, "+", "-", spaces, and parentheses, 10 to 15
// characters total. Loose on purpose: the portal serves several countries'
// number formats and the column is informational, not dialable.
var phonePattern = regexp.MustCompile(`^[0-9+\-\s()]{10,15}$`)

// emailDomainHasDot reports whether the part after the last "@" contains a
// dot. mail.ParseAddress allows bare hostnames like "a@b"; real student
// addresses always have a dotted domain.
func emailDomainHasDot(email string) bool {
	at := strings.LastIndexByte(email, '@')
	if at < 0 {
		return false
	}
	return strings.Contains(email[at+1:], ".")
}

// RegisterInput carries the registration form fields into the service layer.
type RegisterInput struct {
	Name       string
	Email      string
	RollNo     string
	Department string
	Phone      string
	Password   string
}

// AuthService handles registration and login.
type AuthService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all dependencies injected.
func NewAuthService(users repository.UserRepository, passwords *auth.PasswordService, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:     users,
		passwords: passwords,
		logger:    logger,
	}
}

// Register validates the input, enforces uniqueness, hashes the password,
// and creates the user. On success the returned user carries the generated
// ID and creation timestamp; the Password field holds only the hash and is
// excluded from JSON by its struct tag.
//
// VALIDATION ORDER:
// Field-level problems (blank, bad format, short password) fail fast with a
// single 400-class error, matching the form's field-by-field feedback.
// Uniqueness is different: all three columns are checked INDEPENDENTLY and
// every violation is reported together in one 409-class error. A student
// who reused their email, roll number, and phone should fix all three after
// one submit, not discover them one at a time. That accumulate-all policy
// is a UX contract, not an accident.
//
// The pre-checks race with concurrent registrations (time-of-check vs
// time-of-use), so they are NOT the real guard. The schema's UNIQUE indexes
// are, and the repository translates an index violation into the same
// conflict error this method produces. Either path yields the same 409.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	// Required, non-blank after trimming. The password value itself is never
	// trimmed (leading and trailing spaces are part of it), but a password
	// that is ALL whitespace is still blank and rejected.
	fields := []struct {
		name  string
		value *string
	}{
		{"name", &in.Name},
		{"email", &in.Email},
		{"roll_no", &in.RollNo},
		{"department", &in.Department},
		{"phone", &in.Phone},
	}
	for _, f := range fields {
		*f.value = strings.TrimSpace(*f.value)
		if *f.value == "" {
			return nil, apperror.ValidationFailed(f.name, fmt.Sprintf("Field '%s' is required", f.name))
		}
	}
	if strings.TrimSpace(in.Password) == "" {
		return nil, apperror.ValidationFailed("password", "Field 'password' is required")
	}

	// The address must parse, round-trip to the input unchanged (rejecting
	// display-name forms like "Asha <a@b.edu>" that would otherwise be
	// stored and uniqueness-checked verbatim), and carry a dotted domain.
	addr, err := mail.ParseAddress(in.Email)
	if err != nil || addr.Address != in.Email || !emailDomainHasDot(in.Email) {
		return nil, apperror.ValidationFailed("email", "Invalid email format")
	}
	if !phonePattern.MatchString(in.Phone) {
		return nil, apperror.ValidationFailed("phone", "Invalid phone number format")
	}
	if len(in.Password) < MinPasswordLength {
		return nil, apperror.ValidationFailed("password", "Password must be at least 6 characters long")
	}

	// Uniqueness pre-checks: collect every violation before returning.
	var violations []string

	exists, err := s.users.EmailExists(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("checking email uniqueness: %w", err)
	}
	if exists {
		violations = append(violations, "Email already exists")
	}

	exists, err = s.users.RollNoExists(ctx, in.RollNo)
	if err != nil {
		return nil, fmt.Errorf("checking roll number uniqueness: %w", err)
	}
	if exists {
		violations = append(violations, "Roll number already exists")
	}

	exists, err = s.users.PhoneExists(ctx, in.Phone)
	if err != nil {
		return nil, fmt.Errorf("checking phone uniqueness: %w", err)
	}
	if exists {
		violations = append(violations, "Phone number already exists")
	}

	if len(violations) > 0 {
		return nil, apperror.Conflict(violations)
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &model.User{
		Name:       in.Name,
		Email:      in.Email,
		RollNo:     in.RollNo,
		Department: in.Department,
		Phone:      in.Phone,
		Password:   hash,
	}

	// The repository fills in ID and CreatedAt. A UNIQUE violation that
	// slipped past the pre-checks comes back as the same conflict error.
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("student registered",
		slog.Int64("userID", user.ID),
		slog.String("rollNo", user.RollNo),
	)

	return user, nil
}

// Login authenticates by email and password.
//
// An unknown email and a wrong password produce the SAME error on purpose:
// a distinct "no such account" response would let anyone probe which emails
// are registered. Handlers map ErrUnauthorized to 401 with the generic
// message carried here.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperror.ValidationFailed("credentials", "Email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		// Collapse not-found into the generic credentials error. Anything
		// else is a real store failure and propagates as a 500.
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("Invalid email or password")
		}
		return nil, fmt.Errorf("looking up user by email: %w", err)
	}

	if err := s.passwords.Verify(user.Password, password); err != nil {
		return nil, apperror.Unauthorized("Invalid email or password")
	}

	// Best-effort: a failed last_login update is logged, never surfaced.
	// The student authenticated successfully; a bookkeeping hiccup must not
	// undo that.
	now := time.Now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("failed to update last_login",
			slog.Int64("userID", user.ID),
			slog.String("error", err.Error()),
		)
	} else {
		user.LastLogin = &now
	}

	s.logger.Info("student logged in", slog.Int64("userID", user.ID))

	return user, nil
}

// GetUserByID returns the stored profile for the given ID. Used by the
// complaint flow to confirm a student exists, and by tests for the
// register/re-fetch round trip.
func (s *AuthService) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	if id <= 0 {
		return nil, apperror.ValidationFailed("id", "Student ID is required")
	}
	return s.users.GetByID(ctx, id)
}
