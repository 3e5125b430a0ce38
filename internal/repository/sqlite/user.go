package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/student-portal/internal/apperror"
	"github.com/sakif/student-portal/internal/model"
	"github.com/sakif/student-portal/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// Create inserts a new user row and fills in the generated ID and CreatedAt.
//
// WHY LastInsertId?
// The id column is INTEGER PRIMARY KEY AUTOINCREMENT, so SQLite assigns it.
// sql.Result.LastInsertId() returns the rowid of the insert, which for an
// integer primary key IS the primary key.
//
// A UNIQUE violation on email, roll_no, or phone is translated into the
// conflict AppError rather than bubbling up as an opaque driver error. The
// service layer pre-checks these columns for the accumulate-all UX, but this
// translation is what actually closes the check-then-insert race.
func (db *DB) Create(ctx context.Context, user *model.User) error {
	user.CreatedAt = time.Now().UTC().Truncate(time.Second)

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (name, email, roll_no, department, phone, password, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.Name,
		user.Email,
		user.RollNo,
		user.Department,
		user.Phone,
		user.Password,
		user.CreatedAt,
	)
	if err != nil {
		if conflict := translateUniqueErr(err); conflict != nil {
			return conflict
		}
		return fmt.Errorf("sqlite: inserting user (email=%s): %w", user.Email, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading generated user id: %w", err)
	}
	user.ID = id

	return nil
}

// GetByID retrieves a user by their numeric ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *DB) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return db.getUser(ctx, `WHERE id = ?`, id)
}

// GetByEmail retrieves a user by exact email match (case-sensitive as
// stored). Returns apperror.ErrNotFound if the email is unknown; the login
// path collapses that into the generic bad-credentials response.
func (db *DB) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return db.getUser(ctx, `WHERE email = ?`, email)
}

func (db *DB) getUser(ctx context.Context, where string, arg any) (*model.User, error) {
	var (
		u         model.User
		lastLogin sql.NullTime
	)

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, email, roll_no, department, phone, password, created_at, last_login
		 FROM users `+where,
		arg,
	).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.RollNo,
		&u.Department,
		&u.Phone,
		&u.Password,
		&u.CreatedAt,
		&lastLogin,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("Student")
		}
		return nil, fmt.Errorf("sqlite: getting user: %w", err)
	}

	// sql.NullTime maps the NULL-able last_login column onto the model's
	// *time.Time: Valid=false stays nil.
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLogin = &t
	}

	return &u, nil
}

// EmailExists reports whether any user already has the given email.
func (db *DB) EmailExists(ctx context.Context, email string) (bool, error) {
	return db.exists(ctx, `SELECT 1 FROM users WHERE email = ?`, email)
}

// RollNoExists reports whether any user already has the given roll number.
func (db *DB) RollNoExists(ctx context.Context, rollNo string) (bool, error) {
	return db.exists(ctx, `SELECT 1 FROM users WHERE roll_no = ?`, rollNo)
}

// PhoneExists reports whether any user already has the given phone number.
func (db *DB) PhoneExists(ctx context.Context, phone string) (bool, error) {
	return db.exists(ctx, `SELECT 1 FROM users WHERE phone = ?`, phone)
}

func (db *DB) exists(ctx context.Context, query string, arg any) (bool, error) {
	var one int
	err := db.conn.QueryRowContext(ctx, query, arg).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("sqlite: existence check: %w", err)
	}
	return true, nil
}

// UpdateLastLogin stamps the user's most recent successful authentication.
func (db *DB) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	_, err := db.conn.ExecContext(ctx,
		`UPDATE users SET last_login = ? WHERE id = ?`,
		at.UTC().Truncate(time.Second), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating last_login for user %d: %w", id, err)
	}
	return nil
}
