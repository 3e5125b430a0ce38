package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/sakif/student-portal/internal/model"
	"github.com/sakif/student-portal/internal/repository"
)

// ComplaintRepo provides the complaint repository methods on top of the
// shared DB. It exists as a separate receiver type because both
// repository.UserRepository and repository.ComplaintRepository declare a
// Create method with different signatures, so a single *DB cannot
// implement both.
type ComplaintRepo struct {
	*DB
}

// Complaints returns the complaint repository view of this DB.
func (db *DB) Complaints() *ComplaintRepo {
	return &ComplaintRepo{DB: db}
}

// compile-time check that *ComplaintRepo implements repository.ComplaintRepository
var _ repository.ComplaintRepository = (*ComplaintRepo)(nil)

// Create inserts a new complaint and fills in the generated ID and both
// timestamps. The caller (the service layer) has already verified the
// student exists and set Status; the foreign key rejects a dangling
// student_id that slips through anyway.
func (db *ComplaintRepo) Create(ctx context.Context, complaint *model.Complaint) error {
	now := time.Now().UTC().Truncate(time.Second)
	complaint.CreatedAt = now
	complaint.UpdatedAt = now

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO complaints (student_id, title, category, description, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		complaint.StudentID,
		complaint.Title,
		complaint.Category,
		complaint.Description,
		complaint.Status,
		complaint.CreatedAt,
		complaint.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting complaint (studentID=%d): %w", complaint.StudentID, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading generated complaint id: %w", err)
	}
	complaint.ID = id

	return nil
}

// List returns complaints joined with the owning student's name and roll
// number, newest first. With filter.StudentID set, only that student's rows
// are returned; nil means all students (the admin view).
//
// WHY BUILD THE WHERE CLAUSE CONDITIONALLY?
// The two variants share everything but the filter, so we append "WHERE"
// and the argument only when the filter is present. The placeholder keeps
// the query parameterized either way.
func (db *ComplaintRepo) List(ctx context.Context, filter repository.ComplaintFilter) ([]model.ComplaintWithStudent, error) {
	query := `
		SELECT c.id, c.student_id, c.title, c.category, c.description, c.status,
		       c.created_at, c.updated_at, u.name, u.roll_no
		FROM complaints c
		JOIN users u ON c.student_id = u.id`
	var args []any
	if filter.StudentID != nil {
		query += ` WHERE c.student_id = ?`
		args = append(args, *filter.StudentID)
	}
	query += ` ORDER BY c.created_at DESC, c.id DESC`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing complaints: %w", err)
	}
	// rows MUST be closed, or the connection leaks back into the pool
	// holding an open cursor.
	defer rows.Close()

	// Start from an empty (non-nil) slice so zero results marshal as []
	// rather than null. The listing contract says an empty result is still
	// a success, with total 0.
	complaints := []model.ComplaintWithStudent{}
	for rows.Next() {
		var c model.ComplaintWithStudent
		if err := rows.Scan(
			&c.ID,
			&c.StudentID,
			&c.Title,
			&c.Category,
			&c.Description,
			&c.Status,
			&c.CreatedAt,
			&c.UpdatedAt,
			&c.StudentName,
			&c.RollNo,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning complaint row: %w", err)
		}
		complaints = append(complaints, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating complaint rows: %w", err)
	}

	return complaints, nil
}
