package model

import "time"

// Complaint status values. The schema enforces the same set with a CHECK
// constraint. No endpoint transitions a complaint out of Pending; the other
// two values exist for operators updating rows out of band.
const (
	StatusPending    = "Pending"
	StatusInProgress = "In Progress"
	StatusResolved   = "Resolved"
)

// Complaint is a student-submitted issue report. Every complaint references
// an existing user (student_id is a foreign key with ON DELETE CASCADE) and
// starts life as Pending with a server-assigned creation timestamp.
type Complaint struct {
	ID          int64     `json:"id"`
	StudentID   int64     `json:"student_id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ComplaintWithStudent is a Complaint joined with the owning student's public
// identity, as returned by the listing endpoint.
//
// STRUCT EMBEDDING:
// Embedding Complaint promotes its fields and JSON tags, so the encoded
// object is flat: {"id":..,"title":..,"student_name":..,"roll_no":..}.
// This mirrors the SQL join that produces it.
type ComplaintWithStudent struct {
	Complaint
	StudentName string `json:"student_name"`
	RollNo      string `json:"roll_no"`
}
