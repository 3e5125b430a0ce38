package handler_test

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sakif/student-portal/internal/handler"
)

// registerStudent registers a student through the real handler and returns
// the generated id.
func registerStudent(t *testing.T, authH *handler.AuthHandler, email, rollNo, phone string) int64 {
	t.Helper()
	body := `{
		"name": "Test Student",
		"email": "` + email + `",
		"roll_no": "` + rollNo + `",
		"department": "Physics",
		"phone": "` + phone + `",
		"password": "abc123secret"
	}`
	rr := postJSON(t, authH.HandleRegister, "/register", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("registering student: status %d, body %s", rr.Code, rr.Body.String())
	}
	env := decodeEnvelope(t, rr)
	return int64(env["user"].(map[string]any)["id"].(float64))
}

func submitBody(studentID int64, title string) string {
	return `{
		"title": "` + title + `",
		"category": "Hostel",
		"description": "The water supply has been intermittent for over a week now.",
		"student_id": ` + itoa(studentID) + `
	}`
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

func TestHandleSubmit(t *testing.T) {
	t.Run("success returns the created complaint", func(t *testing.T) {
		authH, complaintH := newTestHandlers(t)
		studentID := registerStudent(t, authH, "s1@college.edu", "PH-001", "9000000001")

		rr := postJSON(t, complaintH.HandleSubmit, "/submit_complaint", submitBody(studentID, "No hot water"))

		assert.Equal(t, http.StatusOK, rr.Code)
		env := decodeEnvelope(t, rr)
		assert.Equal(t, true, env["success"])
		assert.Equal(t, "Complaint submitted successfully", env["message"])

		complaint := env["complaint"].(map[string]any)
		assert.Equal(t, "No hot water", complaint["title"])
		assert.Equal(t, "Pending", complaint["status"])
		assert.NotZero(t, complaint["id"])
	})

	t.Run("unknown student returns 404 and writes nothing", func(t *testing.T) {
		_, complaintH := newTestHandlers(t)

		rr := postJSON(t, complaintH.HandleSubmit, "/submit_complaint", submitBody(424242, "Ghost"))

		assert.Equal(t, http.StatusNotFound, rr.Code)
		env := decodeEnvelope(t, rr)
		assert.Equal(t, "Student not found", env["message"])

		// Listing confirms nothing was written.
		listReq := httptest.NewRequest(http.MethodGet, "/get_complaints", nil)
		listRR := httptest.NewRecorder()
		complaintH.HandleList(listRR, listReq)
		listEnv := decodeEnvelope(t, listRR)
		assert.Equal(t, float64(0), listEnv["total"])
	})

	t.Run("missing title", func(t *testing.T) {
		authH, complaintH := newTestHandlers(t)
		studentID := registerStudent(t, authH, "s2@college.edu", "PH-002", "9000000002")

		body := `{"title":"","category":"Hostel","description":"long enough description here","student_id":` + itoa(studentID) + `}`
		rr := postJSON(t, complaintH.HandleSubmit, "/submit_complaint", body)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		env := decodeEnvelope(t, rr)
		assert.Equal(t, "Field 'title' is required", env["message"])
	})

	t.Run("description below the minimum", func(t *testing.T) {
		authH, complaintH := newTestHandlers(t)
		studentID := registerStudent(t, authH, "s3@college.edu", "PH-003", "9000000003")

		body := `{"title":"T","category":"Hostel","description":"too short","student_id":` + itoa(studentID) + `}`
		rr := postJSON(t, complaintH.HandleSubmit, "/submit_complaint", body)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestHandleList(t *testing.T) {
	t.Run("empty listing is success with total 0", func(t *testing.T) {
		_, complaintH := newTestHandlers(t)

		req := httptest.NewRequest(http.MethodGet, "/get_complaints", nil)
		rr := httptest.NewRecorder()
		complaintH.HandleList(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		env := decodeEnvelope(t, rr)
		assert.Equal(t, true, env["success"])
		assert.Equal(t, float64(0), env["total"])
		// complaints must be [] in the JSON, not null
		assert.Contains(t, rr.Body.String(), `"complaints":[]`)
	})

	t.Run("lists all complaints with joined student identity", func(t *testing.T) {
		authH, complaintH := newTestHandlers(t)
		s1 := registerStudent(t, authH, "s4@college.edu", "PH-004", "9000000004")
		s2 := registerStudent(t, authH, "s5@college.edu", "PH-005", "9000000005")

		postJSON(t, complaintH.HandleSubmit, "/submit_complaint", submitBody(s1, "From s1"))
		postJSON(t, complaintH.HandleSubmit, "/submit_complaint", submitBody(s2, "From s2"))

		req := httptest.NewRequest(http.MethodGet, "/get_complaints", nil)
		rr := httptest.NewRecorder()
		complaintH.HandleList(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		env := decodeEnvelope(t, rr)
		assert.Equal(t, float64(2), env["total"])

		for _, raw := range env["complaints"].([]any) {
			c := raw.(map[string]any)
			assert.NotEmpty(t, c["student_name"])
			assert.NotEmpty(t, c["roll_no"])
		}
	})

	t.Run("filter returns only that student's complaints", func(t *testing.T) {
		authH, complaintH := newTestHandlers(t)
		s1 := registerStudent(t, authH, "s6@college.edu", "PH-006", "9000000006")
		s2 := registerStudent(t, authH, "s7@college.edu", "PH-007", "9000000007")

		postJSON(t, complaintH.HandleSubmit, "/submit_complaint", submitBody(s1, "Mine"))
		postJSON(t, complaintH.HandleSubmit, "/submit_complaint", submitBody(s2, "Not mine"))

		req := httptest.NewRequest(http.MethodGet, "/get_complaints?student_id="+itoa(s1), nil)
		rr := httptest.NewRecorder()
		complaintH.HandleList(rr, req)

		env := decodeEnvelope(t, rr)
		assert.Equal(t, float64(1), env["total"])
		c := env["complaints"].([]any)[0].(map[string]any)
		assert.Equal(t, "Mine", c["title"])
	})

	t.Run("malformed student_id", func(t *testing.T) {
		_, complaintH := newTestHandlers(t)

		req := httptest.NewRequest(http.MethodGet, "/get_complaints?student_id=abc", nil)
		rr := httptest.NewRecorder()
		complaintH.HandleList(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
