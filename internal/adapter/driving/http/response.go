package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/examdesk/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// AdminResponse describes the caller of the admin dashboard endpoint.
type AdminResponse struct {
	Message string         `json:"message"`
	Admin   PrincipalBrief `json:"admin"`
	Time    string         `json:"time"`
}

// PrincipalBrief is the JSON representation of an admin principal.
type PrincipalBrief struct {
	ClientID  string  `json:"client_id"`
	Role      string  `json:"role"`
	IssuedAt  *string `json:"issued_at"`
	ExpiresAt *string `json:"expires_at"`
}

// StatsResponse carries dashboard counters.
type StatsResponse struct {
	TotalExams     int    `json:"total_exams"`
	TotalCustomers int    `json:"total_customers"`
	Time           string `json:"time"`
}

// CustomerResponse is the admin view of a customer credential, token included.
type CustomerResponse struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	Token     string  `json:"token"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
	LastLogin *string `json:"last_login"`
}

// LoginResponse is the customer's own view after logging in. It never echoes the token.
type LoginResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// RecoveryTargetResponse names the account a recovery token would recover.
type RecoveryTargetResponse struct {
	Email string `json:"email"`
}

// RecoveryResetResponse carries the freshly issued access token.
type RecoveryResetResponse struct {
	Token string `json:"token"`
}

// PruneResponse reports how many recovery grants were removed.
type PruneResponse struct {
	Removed int64 `json:"removed"`
}

// ExamResponse is the JSON representation of an exam.
type ExamResponse struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Subject         string          `json:"subject"`
	Description     string          `json:"description"`
	DurationMinutes int             `json:"duration_minutes"`
	Questions       json.RawMessage `json:"questions"`
	CreatedBy       string          `json:"created_by"`
	CreatedAt       string          `json:"created_at"`
	UpdatedAt       string          `json:"updated_at"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatOptionalTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

// toCustomerResponse converts a domain Credential to its admin JSON representation.
func toCustomerResponse(c model.Credential) CustomerResponse {
	return CustomerResponse{
		ID:        c.ID,
		Email:     c.Email,
		Token:     c.Token,
		Status:    string(c.Status),
		CreatedAt: formatTime(c.CreatedAt),
		UpdatedAt: formatTime(c.UpdatedAt),
		LastLogin: formatOptionalTime(c.LastLogin),
	}
}

// toExamResponse converts a domain Exam to its JSON representation.
func toExamResponse(e model.Exam) ExamResponse {
	questions := e.Questions
	if len(questions) == 0 {
		questions = json.RawMessage("[]")
	}

	return ExamResponse{
		ID:              e.ID,
		Title:           e.Title,
		Subject:         e.Subject,
		Description:     e.Description,
		DurationMinutes: e.DurationMinutes,
		Questions:       questions,
		CreatedBy:       e.CreatedBy,
		CreatedAt:       formatTime(e.CreatedAt),
		UpdatedAt:       formatTime(e.UpdatedAt),
	}
}

func toPrincipalBrief(p model.AdminPrincipal) PrincipalBrief {
	return PrincipalBrief{
		ClientID:  p.ClientID,
		Role:      p.Role,
		IssuedAt:  formatOptionalTime(p.IssuedAt),
		ExpiresAt: formatOptionalTime(p.ExpiresAt),
	}
}

// CustomerListResponse wraps the admin customer listing.
type CustomerListResponse struct {
	Count     int                `json:"count"`
	Customers []CustomerResponse `json:"customers"`
}
