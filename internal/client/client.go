// Package client is a typed HTTP client for the student portal API. The
// CLI builds on it; tests drive it against an httptest server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sakif/student-portal/internal/model"
)

// Client talks to one portal server. The zero value is not usable; use New.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client for the given base URL, e.g. "http://localhost:8080".
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// APIError is a non-2xx response decoded from the envelope. The itemized
// Errors list is populated for 409 conflicts.
type APIError struct {
	StatusCode int
	Message    string
	Errors     []string
}

func (e *APIError) Error() string {
	if len(e.Errors) > 0 {
		return fmt.Sprintf("%s (%d): %v", e.Message, e.StatusCode, e.Errors)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.StatusCode)
}

// envelope mirrors the server's response shape with concrete payload types.
type envelope struct {
	Success    bool                         `json:"success"`
	Message    string                       `json:"message"`
	User       *model.User                  `json:"user,omitempty"`
	Complaint  *model.Complaint             `json:"complaint,omitempty"`
	Complaints []model.ComplaintWithStudent `json:"complaints,omitempty"`
	Total      int                          `json:"total,omitempty"`
	Errors     []string                     `json:"errors,omitempty"`
}

// RegisterInput is the registration form.
type RegisterInput struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	RollNo     string `json:"roll_no"`
	Department string `json:"department"`
	Phone      string `json:"phone"`
	Password   string `json:"password"`
}

// Register creates an account and returns the created profile.
func (c *Client) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	env, err := c.post(ctx, "/register", in)
	if err != nil {
		return nil, err
	}
	return env.User, nil
}

// Login authenticates and returns the profile. The caller is responsible
// for remembering it (see internal/session); the server keeps no state.
func (c *Client) Login(ctx context.Context, email, password string) (*model.User, error) {
	env, err := c.post(ctx, "/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	return env.User, nil
}

// SubmitComplaintInput is the complaint form plus the owning student.
type SubmitComplaintInput struct {
	Title       string `json:"title"`
	Category    string `json:"category"`
	Description string `json:"description"`
	StudentID   int64  `json:"student_id"`
}

// SubmitComplaint files a complaint and returns the created record.
func (c *Client) SubmitComplaint(ctx context.Context, in SubmitComplaintInput) (*model.Complaint, error) {
	env, err := c.post(ctx, "/submit_complaint", in)
	if err != nil {
		return nil, err
	}
	return env.Complaint, nil
}

// ListComplaints returns complaints newest first. A nil studentID lists
// every student's complaints.
func (c *Client) ListComplaints(ctx context.Context, studentID *int64) ([]model.ComplaintWithStudent, int, error) {
	path := "/get_complaints"
	if studentID != nil {
		path += "?student_id=" + url.QueryEscape(strconv.FormatInt(*studentID, 10))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("client: building request: %w", err)
	}

	env, err := c.do(req)
	if err != nil {
		return nil, 0, err
	}
	// The server sends [] for zero rows, but normalize anyway so callers
	// can always range.
	if env.Complaints == nil {
		env.Complaints = []model.ComplaintWithStudent{}
	}
	return env.Complaints, env.Total, nil
}

func (c *Client) post(ctx context.Context, path string, body any) (*envelope, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("client: encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("client: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

func (c *Client) do(req *http.Request) (*envelope, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("client: decoding response from %s: %w", req.URL.Path, err)
	}

	if !env.Success {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    env.Message,
			Errors:     env.Errors,
		}
	}
	return &env, nil
}
