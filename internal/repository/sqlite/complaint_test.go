package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/sakif/student-portal/internal/model"
	"github.com/sakif/student-portal/internal/repository"
)

// createTestComplaint inserts a complaint for the given student with a
// caller-controlled creation time, so ordering tests don't depend on the
// wall clock ticking between inserts.
func createTestComplaint(t *testing.T, db *DB, studentID int64, title string, createdAt time.Time) *model.Complaint {
	t.Helper()
	c := &model.Complaint{
		StudentID:   studentID,
		Title:       title,
		Category:    "Hostel",
		Description: "The water supply has been intermittent for a week now.",
		Status:      model.StatusPending,
	}
	if err := db.Complaints().Create(context.Background(), c); err != nil {
		t.Fatalf("failed to create test complaint: %v", err)
	}
	// Backdate for deterministic ordering.
	if _, err := db.conn.Exec(`UPDATE complaints SET created_at = ? WHERE id = ?`, createdAt.UTC(), c.ID); err != nil {
		t.Fatalf("failed to backdate complaint: %v", err)
	}
	c.CreatedAt = createdAt.UTC()
	return c
}

func TestComplaintCreate(t *testing.T) {
	db := newTestDB(t)
	student := createTestUser(t, db, "200001")

	c := &model.Complaint{
		StudentID:   student.ID,
		Title:       "Broken projector in LH-3",
		Category:    "Infrastructure",
		Description: "The projector in lecture hall 3 has not worked since Monday.",
		Status:      model.StatusPending,
	}
	if err := db.Complaints().Create(context.Background(), c); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if c.ID == 0 {
		t.Error("Create() did not set complaint.ID")
	}
	if c.CreatedAt.IsZero() || c.UpdatedAt.IsZero() {
		t.Error("Create() did not set timestamps")
	}
}

func TestComplaintCreate_UnknownStudentRejected(t *testing.T) {
	db := newTestDB(t)

	// No such user. The foreign key (PRAGMA foreign_keys=ON) must reject
	// the insert even though the service layer normally checks first.
	c := &model.Complaint{
		StudentID:   999999,
		Title:       "Ghost complaint",
		Category:    "Other",
		Description: "This row should never exist.",
		Status:      model.StatusPending,
	}
	if err := db.Complaints().Create(context.Background(), c); err == nil {
		t.Fatal("Create() should fail for a nonexistent student_id")
	}

	// And nothing was written.
	all, err := db.Complaints().List(context.Background(),repository.ComplaintFilter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 0 {
		t.Errorf("List() returned %d rows, want 0", len(all))
	}
}

func TestComplaintList_NewestFirstAcrossStudents(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "200002")
	bob := createTestUser(t, db, "200003")

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	createTestComplaint(t, db, alice.ID, "oldest", base)
	createTestComplaint(t, db, bob.ID, "middle", base.Add(1*time.Hour))
	createTestComplaint(t, db, alice.ID, "newest", base.Add(2*time.Hour))

	all, err := db.Complaints().List(context.Background(),repository.ComplaintFilter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if len(all) != 3 {
		t.Fatalf("List() returned %d rows, want 3", len(all))
	}
	wantOrder := []string{"newest", "middle", "oldest"}
	for i, want := range wantOrder {
		if all[i].Title != want {
			t.Errorf("List()[%d].Title = %q, want %q", i, all[i].Title, want)
		}
	}

	// The join must carry the owning student's identity.
	if all[0].StudentName != alice.Name || all[0].RollNo != alice.RollNo {
		t.Errorf("List()[0] student = (%q, %q), want (%q, %q)",
			all[0].StudentName, all[0].RollNo, alice.Name, alice.RollNo)
	}
}

func TestComplaintList_FilterByStudent(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "200004")
	bob := createTestUser(t, db, "200005")

	base := time.Date(2026, 8, 2, 9, 0, 0, 0, time.UTC)
	createTestComplaint(t, db, alice.ID, "alice-1", base)
	createTestComplaint(t, db, bob.ID, "bob-1", base.Add(time.Minute))
	createTestComplaint(t, db, alice.ID, "alice-2", base.Add(2*time.Minute))

	got, err := db.Complaints().List(context.Background(),repository.ComplaintFilter{StudentID: &alice.ID})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("List() returned %d rows, want 2", len(got))
	}
	for _, c := range got {
		if c.StudentID != alice.ID {
			t.Errorf("List() leaked complaint %q owned by student %d", c.Title, c.StudentID)
		}
	}
}

func TestComplaintList_EmptyIsNotAnError(t *testing.T) {
	db := newTestDB(t)

	got, err := db.Complaints().List(context.Background(),repository.ComplaintFilter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	// Must be an empty slice here, not nil, so the envelope marshals
	// "complaints": [] instead of null.
	if got == nil {
		t.Fatal("List() returned nil, want empty slice")
	}
	if len(got) != 0 {
		t.Errorf("List() returned %d rows, want 0", len(got))
	}
}

func TestComplaintCascadeDelete(t *testing.T) {
	db := newTestDB(t)
	student := createTestUser(t, db, "200006")
	createTestComplaint(t, db, student.ID, "doomed", time.Now())

	// Deleting the user must cascade to their complaints (ON DELETE CASCADE).
	if _, err := db.conn.Exec(`DELETE FROM users WHERE id = ?`, student.ID); err != nil {
		t.Fatalf("deleting user: %v", err)
	}

	all, err := db.Complaints().List(context.Background(),repository.ComplaintFilter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 0 {
		t.Errorf("List() returned %d rows after cascade delete, want 0", len(all))
	}
}
