package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/student-portal/internal/service"
)

// AuthHandler owns the registration and login endpoints.
//
// HANDLER RESPONSIBILITIES:
// Parse the JSON body, call the service, translate the result into the
// envelope. All validation and database work happens behind the service;
// the handler never sees SQL or bcrypt.
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(auth *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

// registerRequest mirrors the registration form. Field names are the wire
// contract; the frontend posts exactly these keys.
type registerRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	RollNo     string `json:"roll_no"`
	Department string `json:"department"`
	Phone      string `json:"phone"`
	Password   string `json:"password"`
}

// HandleRegister creates a student account.
//
// HTTP: POST /register
// Body: {"name","email","roll_no","department","phone","password"}
//
// Responses:
//
//	200 {"success":true,"message":"Registration successful","user":{...}}
//	400 field missing / bad format / short password
//	409 {"success":false,"message":"Validation failed","errors":[...]}
//	500 unexpected store failure
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("register: invalid JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, Envelope{Success: false, Message: "Invalid JSON data"})
		return
	}

	user, err := h.auth.Register(r.Context(), service.RegisterInput{
		Name:       req.Name,
		Email:      req.Email,
		RollNo:     req.RollNo,
		Department: req.Department,
		Phone:      req.Phone,
		Password:   req.Password,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	// The user's Password field is the bcrypt hash, but its json:"-" tag
	// keeps it out of the encoded envelope.
	writeJSON(w, http.StatusOK, Envelope{
		Success: true,
		Message: "Registration successful",
		User:    user,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin authenticates a student.
//
// HTTP: POST /login
// Body: {"email","password"}
//
// Responses:
//
//	200 {"success":true,"message":"Login successful","user":{...}}
//	400 missing fields or bad JSON
//	401 {"success":false,"message":"Invalid email or password"}
//
// No token or cookie is issued. The client keeps the returned profile in
// its own session store with a local idle timeout; subsequent requests are
// not authenticated server-side. A deliberate simplification, not an
// oversight.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("login: invalid JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, Envelope{Success: false, Message: "Invalid JSON data"})
		return
	}

	user, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, Envelope{
		Success: true,
		Message: "Login successful",
		User:    user,
	})
}
