package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/student-portal/internal/apperror"
	"github.com/sakif/student-portal/internal/model"
	"github.com/sakif/student-portal/internal/repository"
)

// MinDescriptionLength is enforced server-side. The submission form applies
// the same bound, but a form bound protects nobody who talks to the API
// directly.
const MinDescriptionLength = 20

// SubmitComplaintInput carries the submission form fields into the service.
type SubmitComplaintInput struct {
	StudentID   int64
	Title       string
	Category    string
	Description string
}

// ComplaintService handles complaint submission and listing.
type ComplaintService struct {
	complaints repository.ComplaintRepository
	users      repository.UserRepository
	logger     *slog.Logger
}

// NewComplaintService creates a ComplaintService. It takes the user
// repository too: submission must confirm the referenced student exists
// before writing.
func NewComplaintService(
	complaints repository.ComplaintRepository,
	users repository.UserRepository,
	logger *slog.Logger,
) *ComplaintService {
	return &ComplaintService{
		complaints: complaints,
		users:      users,
		logger:     logger,
	}
}

// Submit validates the input, confirms the student exists, and inserts the
// complaint with status Pending and a server-assigned creation timestamp.
// No endpoint ever transitions the status afterwards; that is an operator
// concern outside the API surface.
func (s *ComplaintService) Submit(ctx context.Context, in SubmitComplaintInput) (*model.Complaint, error) {
	fields := []struct {
		name  string
		value *string
	}{
		{"title", &in.Title},
		{"category", &in.Category},
		{"description", &in.Description},
	}
	for _, f := range fields {
		*f.value = strings.TrimSpace(*f.value)
		if *f.value == "" {
			return nil, apperror.ValidationFailed(f.name, fmt.Sprintf("Field '%s' is required", f.name))
		}
	}
	if in.StudentID <= 0 {
		return nil, apperror.ValidationFailed("student_id", "Student ID is required")
	}
	if len(in.Description) < MinDescriptionLength {
		return nil, apperror.ValidationFailed("description",
			fmt.Sprintf("Description must be at least %d characters long", MinDescriptionLength))
	}

	// The student must exist before we write. The foreign key would reject
	// a dangling reference anyway, but checking first turns it into a clean
	// 404 instead of a constraint error.
	if _, err := s.users.GetByID(ctx, in.StudentID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFound("Student")
		}
		return nil, fmt.Errorf("verifying student %d: %w", in.StudentID, err)
	}

	complaint := &model.Complaint{
		StudentID:   in.StudentID,
		Title:       in.Title,
		Category:    in.Category,
		Description: in.Description,
		Status:      model.StatusPending,
	}

	if err := s.complaints.Create(ctx, complaint); err != nil {
		s.logger.Error("failed to create complaint",
			slog.Int64("studentID", in.StudentID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating complaint: %w", err)
	}

	s.logger.Info("complaint submitted",
		slog.Int64("complaintID", complaint.ID),
		slog.Int64("studentID", complaint.StudentID),
		slog.String("category", complaint.Category),
	)

	return complaint, nil
}

// List returns complaints newest first, joined with each owner's name and
// roll number. A nil studentID returns every student's complaints (the
// admin view). An empty result is a success, not an error.
func (s *ComplaintService) List(ctx context.Context, studentID *int64) ([]model.ComplaintWithStudent, error) {
	if studentID != nil && *studentID <= 0 {
		return nil, apperror.ValidationFailed("student_id", "Invalid student ID")
	}

	complaints, err := s.complaints.List(ctx, repository.ComplaintFilter{StudentID: studentID})
	if err != nil {
		s.logger.Error("failed to list complaints", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing complaints: %w", err)
	}

	return complaints, nil
}
