// Package repository defines the storage interfaces the service layer
// depends on. The sqlite subpackage provides the production implementation;
// tests substitute in-memory fakes.
package repository

import (
	"context"
	"time"

	"github.com/sakif/student-portal/internal/model"
)

// ComplaintFilter narrows a complaint listing. A nil StudentID means
// "all students" (the admin view).
type ComplaintFilter struct {
	StudentID *int64
}

type UserRepository interface {
	// Create inserts the user and fills in the generated ID and CreatedAt.
	// A write that violates a UNIQUE column returns a conflict AppError
	// naming every violated column the driver reports.
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	RollNoExists(ctx context.Context, rollNo string) (bool, error)
	PhoneExists(ctx context.Context, phone string) (bool, error)
	// UpdateLastLogin records a successful authentication. Callers treat
	// a failure here as best-effort; it must not fail the login itself.
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
}

type ComplaintRepository interface {
	// Create inserts the complaint and fills in the generated ID,
	// CreatedAt, and UpdatedAt. Status must already be set.
	Create(ctx context.Context, complaint *model.Complaint) error
	// List returns complaints joined with the owning student's name and
	// roll number, newest first by creation time.
	List(ctx context.Context, filter ComplaintFilter) ([]model.ComplaintWithStudent, error)
}
