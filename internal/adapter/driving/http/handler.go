package httphandler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ericfisherdev/examdesk/internal/application"
)

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	accounts *application.AccountService
	exams    *application.ExamService
	pruner   *application.GrantPruner
	logger   *slog.Logger
}

// NewHandler creates a Handler with all required dependencies. pruner may be
// nil, in which case the manual prune endpoint reports 503.
func NewHandler(
	accounts *application.AccountService,
	exams *application.ExamService,
	pruner *application.GrantPruner,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		accounts: accounts,
		exams:    exams,
		pruner:   pruner,
		logger:   logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered. Admin
// routes sit behind the AuthGate; everything is wrapped with logging, CORS
// and recovery middleware.
func NewServeMux(h *Handler, gate *application.AuthGate, allowedOrigin string, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /exams", h.ListExams)
	mux.HandleFunc("GET /exams/{id}", h.GetExam)
	mux.HandleFunc("POST /customer-login", h.CustomerLogin)
	mux.HandleFunc("POST /customer-recover", h.RequestRecovery)
	mux.HandleFunc("GET /customer-recover/{token}", h.ConfirmRecovery)
	mux.HandleFunc("POST /customer-recover/{token}/reset", h.FinalizeRecovery)

	mux.HandleFunc("GET /admin", requireAdmin(gate, h.AdminHome))
	mux.HandleFunc("GET /admin/stats", requireAdmin(gate, h.Stats))
	mux.HandleFunc("GET /admin/exams", requireAdmin(gate, h.ListExams))
	mux.HandleFunc("POST /admin/exams", requireAdmin(gate, h.CreateExam))
	mux.HandleFunc("GET /admin/exams/{id}", requireAdmin(gate, h.GetExam))
	mux.HandleFunc("PUT /admin/exams/{id}", requireAdmin(gate, h.UpdateExam))
	mux.HandleFunc("DELETE /admin/exams/{id}", requireAdmin(gate, h.DeleteExam))
	mux.HandleFunc("GET /admin/customers", requireAdmin(gate, h.ListCustomers))
	mux.HandleFunc("POST /admin/customers", requireAdmin(gate, h.CreateCustomer))
	mux.HandleFunc("DELETE /admin/customers/{id}", requireAdmin(gate, h.DeleteCustomer))
	mux.HandleFunc("POST /admin/customers/{id}/regenerate-token", requireAdmin(gate, h.RegenerateToken))
	mux.HandleFunc("POST /admin/recovery/prune", requireAdmin(gate, h.PruneRecovery))

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = corsMiddleware(allowedOrigin, wrapped)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// --- Exams ---

// ListExams returns every exam. It serves both the public catalog and the
// admin listing.
func (h *Handler) ListExams(w http.ResponseWriter, r *http.Request) {
	exams, err := h.exams.List(r.Context())
	if err != nil {
		h.internalError(w, "failed to list exams", err)
		return
	}

	resp := make([]ExamResponse, 0, len(exams))
	for _, e := range exams {
		resp = append(resp, toExamResponse(e))
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetExam returns a single exam by id.
func (h *Handler) GetExam(w http.ResponseWriter, r *http.Request) {
	exam, err := h.exams.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, err, "exam not found")
		return
	}

	writeJSON(w, http.StatusOK, toExamResponse(*exam))
}

// CreateExam stores a new exam owned by the calling admin.
func (h *Handler) CreateExam(w http.ResponseWriter, r *http.Request) {
	var req ExamRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.ValidateCreate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	exam, err := h.exams.Create(r.Context(), req.patch(), principal.ClientID)
	if err != nil {
		h.internalError(w, "failed to create exam", err)
		return
	}

	writeJSON(w, http.StatusCreated, toExamResponse(*exam))
}

// UpdateExam applies a partial update to an exam.
func (h *Handler) UpdateExam(w http.ResponseWriter, r *http.Request) {
	var req ExamRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.ValidateUpdate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	exam, err := h.exams.Update(r.Context(), r.PathValue("id"), req.patch())
	if err != nil {
		h.writeServiceError(w, err, "exam not found")
		return
	}

	writeJSON(w, http.StatusOK, toExamResponse(*exam))
}

// DeleteExam removes an exam.
func (h *Handler) DeleteExam(w http.ResponseWriter, r *http.Request) {
	if err := h.exams.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.writeServiceError(w, err, "exam not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Admin ---

// AdminHome describes the authenticated admin.
func (h *Handler) AdminHome(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	writeJSON(w, http.StatusOK, AdminResponse{
		Message: "admin access granted",
		Admin:   toPrincipalBrief(principal),
		Time:    time.Now().UTC().Format(time.RFC3339),
	})
}

// Stats returns dashboard counters.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	exams, err := h.exams.Count(r.Context())
	if err != nil {
		h.internalError(w, "failed to count exams", err)
		return
	}

	customers, err := h.accounts.ListCustomers(r.Context())
	if err != nil {
		h.internalError(w, "failed to list customers", err)
		return
	}

	writeJSON(w, http.StatusOK, StatsResponse{
		TotalExams:     exams,
		TotalCustomers: len(customers),
		Time:           time.Now().UTC().Format(time.RFC3339),
	})
}

// ListCustomers returns every customer credential, tokens included.
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	creds, err := h.accounts.ListCustomers(r.Context())
	if err != nil {
		h.internalError(w, "failed to list customers", err)
		return
	}

	resp := CustomerListResponse{
		Count:     len(creds),
		Customers: make([]CustomerResponse, 0, len(creds)),
	}
	for _, c := range creds {
		resp.Customers = append(resp.Customers, toCustomerResponse(c))
	}

	writeJSON(w, http.StatusOK, resp)
}

// CreateCustomer registers a customer and mails them their token.
func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req CreateCustomerRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cred, err := h.accounts.CreateCustomer(r.Context(), req.Email)
	if err != nil {
		h.writeServiceError(w, err, "customer not found")
		return
	}

	writeJSON(w, http.StatusCreated, toCustomerResponse(*cred))
}

// DeleteCustomer removes a customer credential.
func (h *Handler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.DeleteCustomer(r.Context(), r.PathValue("id")); err != nil {
		h.writeServiceError(w, err, "customer not found")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "customer deleted"})
}

// RegenerateToken rotates a customer's access token.
func (h *Handler) RegenerateToken(w http.ResponseWriter, r *http.Request) {
	cred, err := h.accounts.RegenerateToken(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, err, "customer not found")
		return
	}

	writeJSON(w, http.StatusOK, toCustomerResponse(*cred))
}

// PruneRecovery removes inert recovery grants immediately.
func (h *Handler) PruneRecovery(w http.ResponseWriter, r *http.Request) {
	if h.pruner == nil {
		writeError(w, http.StatusServiceUnavailable, "pruner not running")
		return
	}

	removed, err := h.pruner.PruneNow(r.Context())
	if err != nil {
		h.internalError(w, "manual prune failed", err)
		return
	}

	writeJSON(w, http.StatusOK, PruneResponse{Removed: removed})
}

// --- Customers ---

// CustomerLogin resolves an access token to the customer it belongs to.
func (h *Handler) CustomerLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cred, err := h.accounts.Login(r.Context(), req.Token)
	if err != nil {
		h.writeServiceError(w, err, "invalid token")
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{ID: cred.ID, Email: cred.Email})
}

// RequestRecovery mails a recovery link to a registered customer.
func (h *Handler) RequestRecovery(w http.ResponseWriter, r *http.Request) {
	var req RecoverRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.accounts.RequestRecovery(r.Context(), req.Email); err != nil {
		h.writeServiceError(w, err, "email not found")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "recovery email sent"})
}

// ConfirmRecovery reports which account a recovery token would recover,
// without consuming it.
func (h *Handler) ConfirmRecovery(w http.ResponseWriter, r *http.Request) {
	grant, err := h.accounts.ConfirmRecovery(r.Context(), r.PathValue("token"))
	if err != nil {
		h.writeServiceError(w, err, "invalid or expired token")
		return
	}

	writeJSON(w, http.StatusOK, RecoveryTargetResponse{Email: grant.Email})
}

// FinalizeRecovery consumes a recovery token and returns a new access token.
func (h *Handler) FinalizeRecovery(w http.ResponseWriter, r *http.Request) {
	cred, err := h.accounts.FinalizeRecovery(r.Context(), r.PathValue("token"))
	if err != nil {
		h.writeServiceError(w, err, "customer not found")
		return
	}

	writeJSON(w, http.StatusOK, RecoveryResetResponse{Token: cred.Token})
}

// writeServiceError maps an application error to a status code. notFound is
// the message used for ErrNotFound.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error, notFound string) {
	switch {
	case errors.Is(err, application.ErrInvalidEmail):
		writeError(w, http.StatusBadRequest, "invalid email")
	case errors.Is(err, application.ErrDuplicateEmail):
		writeError(w, http.StatusConflict, "email already exists")
	case errors.Is(err, application.ErrRecoveryInvalid):
		writeError(w, http.StatusNotFound, "invalid or expired token")
	case errors.Is(err, application.ErrNotFound):
		writeError(w, http.StatusNotFound, notFound)
	default:
		h.internalError(w, "request failed", err)
	}
}

func (h *Handler) internalError(w http.ResponseWriter, msg string, err error) {
	h.logger.Error(msg, "error", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}
