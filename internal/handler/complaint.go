package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sakif/student-portal/internal/service"
)

// ComplaintHandler owns the complaint submission and listing endpoints.
type ComplaintHandler struct {
	complaints *service.ComplaintService
	logger     *slog.Logger
}

// NewComplaintHandler creates a ComplaintHandler.
func NewComplaintHandler(complaints *service.ComplaintService, logger *slog.Logger) *ComplaintHandler {
	return &ComplaintHandler{complaints: complaints, logger: logger}
}

type submitComplaintRequest struct {
	Title       string `json:"title"`
	Category    string `json:"category"`
	Description string `json:"description"`
	StudentID   int64  `json:"student_id"`
}

// HandleSubmit files a new complaint.
//
// HTTP: POST /submit_complaint
// Body: {"title","category","description","student_id"}
//
// Responses:
//
//	200 {"success":true,"message":"Complaint submitted successfully","complaint":{...}}
//	400 field missing / description too short / missing student_id
//	404 {"success":false,"message":"Student not found"}, and no row written
//	500 unexpected store failure
func (h *ComplaintHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitComplaintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("submit complaint: invalid JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, Envelope{Success: false, Message: "Invalid JSON data"})
		return
	}

	complaint, err := h.complaints.Submit(r.Context(), service.SubmitComplaintInput{
		StudentID:   req.StudentID,
		Title:       req.Title,
		Category:    req.Category,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, Envelope{
		Success:   true,
		Message:   "Complaint submitted successfully",
		Complaint: complaint,
	})
}

// HandleList returns complaints, newest first, each joined with the owning
// student's name and roll number.
//
// HTTP: GET /get_complaints?student_id=<optional int>
//
// With student_id, only that student's complaints; without it, everyone's
// (the admin view). Zero results is still a success with total 0:
//
//	200 {"success":true,"message":"Complaints retrieved successfully",
//	     "complaints":[...],"total":N}
//	400 malformed student_id
func (h *ComplaintHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	var studentID *int64
	if raw := r.URL.Query().Get("student_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			writeJSON(w, http.StatusBadRequest, Envelope{Success: false, Message: "Invalid student ID"})
			return
		}
		studentID = &id
	}

	complaints, err := h.complaints.List(r.Context(), studentID)
	if err != nil {
		writeError(w, err)
		return
	}

	total := len(complaints)
	writeJSON(w, http.StatusOK, Envelope{
		Success:    true,
		Message:    "Complaints retrieved successfully",
		Complaints: complaints,
		Total:      &total,
	})
}
