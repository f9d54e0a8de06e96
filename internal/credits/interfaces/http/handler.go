package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"collections-cloud/internal/audit"
	"collections-cloud/internal/auth"
	creditsapp "collections-cloud/internal/credits/application"
	credits "collections-cloud/internal/credits/domain"
)

// Handler handles credit lifecycle and schedule APIs under /api/v1/credits.
type Handler struct {
	service       *creditsapp.CreditService
	clientChecker auth.ClientTenantChecker
	auditLogger   audit.Logger
}

// NewHandler constructs a handler.
func NewHandler(service *creditsapp.CreditService, clientChecker auth.ClientTenantChecker, auditLogger audit.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("credit handler: nil service")
	}
	return &Handler{service: service, clientChecker: clientChecker, auditLogger: auditLogger}, nil
}

// ServeHTTP routes credit requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if path == "/api/v1/credits" {
		switch r.Method {
		case http.MethodGet:
			h.handleList(w, r)
		case http.MethodPost:
			h.handleCreate(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}
	if strings.HasPrefix(path, "/api/v1/credits/") {
		rest := strings.TrimPrefix(path, "/api/v1/credits/")
		h.handleByID(w, r, rest)
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := credits.CreditFilter{
		ClientID:    query.Get("client_id"),
		CollectorID: query.Get("collector_id"),
		OpenOnly:    query.Get("open") == "true",
	}
	if status := query.Get("status"); status != "" {
		normalized, ok := credits.NormalizeStatus(status)
		if !ok {
			http.Error(w, "invalid status", http.StatusBadRequest)
			return
		}
		filter.Status = normalized
	}
	list, err := h.service.List(r.Context(), filter)
	if err != nil {
		respondError(w, err)
		return
	}
	result := make([]creditResponse, 0, len(list))
	for _, credit := range list {
		result = append(result, toCreditResponse(&credit))
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ClientID          string           `json:"client_id"`
		CollectorID       string           `json:"collector_id"`
		Amount            decimal.Decimal  `json:"amount"`
		TotalAmount       decimal.Decimal  `json:"total_amount"`
		InstallmentAmount *decimal.Decimal `json:"installment_amount"`
		TotalInstallments *int             `json:"total_installments"`
		Frequency         string           `json:"frequency"`
		StartDate         string           `json:"start_date"`
		EndDate           string           `json:"end_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		http.Error(w, "invalid start_date", http.StatusBadRequest)
		return
	}
	var endDate time.Time
	if req.EndDate != "" {
		endDate, err = parseDate(req.EndDate)
		if err != nil {
			http.Error(w, "invalid end_date", http.StatusBadRequest)
			return
		}
	}
	if h.clientChecker != nil {
		if err := h.clientChecker.EnsureClientTenant(r.Context(), auth.TenantIDFromContext(r.Context()), req.ClientID); err != nil {
			respondError(w, err)
			return
		}
	}
	credit, err := h.service.Create(r.Context(), creditsapp.CreateInput{
		ClientID:          req.ClientID,
		CollectorID:       req.CollectorID,
		Amount:            req.Amount,
		TotalAmount:       req.TotalAmount,
		InstallmentAmount: req.InstallmentAmount,
		TotalInstallments: req.TotalInstallments,
		Frequency:         req.Frequency,
		StartDate:         startDate,
		EndDate:           endDate,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toCreditResponse(credit))
	h.logAudit(r, credit.ID, "credit.create", map[string]any{
		"client_id":    credit.ClientID,
		"total_amount": credit.TotalAmount.String(),
	})
}

func (h *Handler) handleByID(w http.ResponseWriter, r *http.Request, rest string) {
	if rest == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	parts := strings.Split(rest, "/")
	id := parts[0]
	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		credit, err := h.service.Get(r.Context(), id)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, toCreditResponse(credit))
		return
	}
	if len(parts) != 2 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	switch parts[1] {
	case "schedule":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleSchedule(w, r, id)
	case "payments":
		switch r.Method {
		case http.MethodGet:
			h.handleListPayments(w, r, id)
		case http.MethodPost:
			h.handleRecordPayment(w, r, id)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case "status":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleUpdateStatus(w, r, id)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleSchedule(w http.ResponseWriter, r *http.Request, id string) {
	var asOf time.Time
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			http.Error(w, "invalid as_of", http.StatusBadRequest)
			return
		}
		asOf = parsed
	}
	metrics, err := h.service.Schedule(r.Context(), id, asOf)
	if err != nil {
		respondError(w, err)
		return
	}
	response := scheduleResponse{
		CreditID:         id,
		Expected:         metrics.Expected,
		Completed:        metrics.Completed,
		Overdue:          metrics.Overdue,
		OverdueAmount:    metrics.OverdueAmount,
		Pending:          metrics.Pending,
		PendingAvailable: metrics.Pending != nil,
	}
	respondJSON(w, http.StatusOK, response)
}

func (h *Handler) handleListPayments(w http.ResponseWriter, r *http.Request, id string) {
	list, err := h.service.ListPayments(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	result := make([]paymentResponse, 0, len(list))
	for _, payment := range list {
		result = append(result, toPaymentResponse(payment))
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *Handler) handleRecordPayment(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Amount            decimal.Decimal `json:"amount"`
		InstallmentNumber int             `json:"installment_number"`
		PaymentDate       string          `json:"payment_date"`
		Status            string          `json:"status"`
		Notes             string          `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	var paymentDate time.Time
	if req.PaymentDate != "" {
		parsed, err := parseDate(req.PaymentDate)
		if err != nil {
			http.Error(w, "invalid payment_date", http.StatusBadRequest)
			return
		}
		paymentDate = parsed
	}
	status := req.Status
	if status == "" {
		status = string(credits.PaymentStatusCompleted)
	}
	payment, err := h.service.RecordPayment(r.Context(), creditsapp.RecordPaymentInput{
		CreditID:          id,
		CollectorID:       auth.SubjectFromContext(r.Context()),
		Amount:            req.Amount,
		InstallmentNumber: req.InstallmentNumber,
		PaymentDate:       paymentDate,
		Status:            status,
		Notes:             req.Notes,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toPaymentResponse(*payment))
	h.logAudit(r, id, "credit.payment", map[string]any{
		"payment_id":         payment.ID,
		"amount":             payment.Amount.String(),
		"installment_number": payment.InstallmentNumber,
	})
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	credit, err := h.service.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toCreditResponse(credit))
	h.logAudit(r, id, "credit.status", map[string]any{"status": req.Status})
}

type creditResponse struct {
	ID                string           `json:"id"`
	ClientID          string           `json:"client_id"`
	CollectorID       string           `json:"collector_id,omitempty"`
	Amount            decimal.Decimal  `json:"amount"`
	TotalAmount       decimal.Decimal  `json:"total_amount"`
	Balance           decimal.Decimal  `json:"balance"`
	InstallmentAmount *decimal.Decimal `json:"installment_amount"`
	TotalInstallments *int             `json:"total_installments"`
	PaidInstallments  *int             `json:"paid_installments"`
	Frequency         string           `json:"frequency"`
	StartDate         string           `json:"start_date"`
	EndDate           string           `json:"end_date,omitempty"`
	Status            string           `json:"status"`
}

func toCreditResponse(credit *credits.Credit) creditResponse {
	response := creditResponse{
		ID:                credit.ID,
		ClientID:          credit.ClientID,
		CollectorID:       credit.CollectorID,
		Amount:            credit.Amount,
		TotalAmount:       credit.TotalAmount,
		Balance:           credit.Balance,
		InstallmentAmount: credit.InstallmentAmount,
		TotalInstallments: credit.TotalInstallments,
		PaidInstallments:  credit.PaidInstallments,
		Frequency:         string(credit.Frequency),
		StartDate:         credit.StartDate.Format("2006-01-02"),
		Status:            string(credit.Status),
	}
	if !credit.EndDate.IsZero() {
		response.EndDate = credit.EndDate.Format("2006-01-02")
	}
	return response
}

// scheduleResponse renders derived schedule metrics. Pending is null with
// pending_available false when the credit lacks a planned term.
type scheduleResponse struct {
	CreditID         string          `json:"credit_id"`
	Expected         int             `json:"expected_installments"`
	Completed        int             `json:"completed_installments"`
	Overdue          bool            `json:"is_overdue"`
	OverdueAmount    decimal.Decimal `json:"overdue_amount"`
	Pending          *int            `json:"pending_installments"`
	PendingAvailable bool            `json:"pending_available"`
}

type paymentResponse struct {
	ID                string          `json:"id"`
	CreditID          string          `json:"credit_id"`
	CollectorID       string          `json:"collector_id,omitempty"`
	Amount            decimal.Decimal `json:"amount"`
	InstallmentNumber int             `json:"installment_number"`
	PaymentDate       string          `json:"payment_date"`
	Status            string          `json:"status"`
	Notes             string          `json:"notes,omitempty"`
}

func toPaymentResponse(payment credits.Payment) paymentResponse {
	return paymentResponse{
		ID:                payment.ID,
		CreditID:          payment.CreditID,
		CollectorID:       payment.CollectorID,
		Amount:            payment.Amount,
		InstallmentNumber: payment.InstallmentNumber,
		PaymentDate:       payment.PaymentDate.Format(time.RFC3339),
		Status:            string(payment.Status),
		Notes:             payment.Notes,
	}
}

func parseDate(value string) (time.Time, error) {
	if parsed, err := time.Parse("2006-01-02", value); err == nil {
		return parsed.UTC(), nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, err
	}
	return parsed.UTC(), nil
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (h *Handler) logAudit(r *http.Request, creditID, action string, meta map[string]any) {
	if h.auditLogger == nil {
		return
	}
	tenantID := auth.TenantIDFromContext(r.Context())
	if tenantID == "" {
		return
	}
	payload, _ := json.Marshal(meta)
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		TenantID:     tenantID,
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: "credit",
		ResourceID:   creditID,
		Metadata:     payload,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

func respondError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, auth.ErrTenantMismatch) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	if errors.Is(err, auth.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if errors.Is(err, credits.ErrCreditNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if errors.Is(err, credits.ErrMissingScheduleData) {
		http.Error(w, "schedule data missing", http.StatusUnprocessableEntity)
		return
	}
	http.Error(w, err.Error(), http.StatusBadRequest)
}
