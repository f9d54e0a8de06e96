package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"collections-cloud/internal/audit"
	"collections-cloud/internal/auth"
	billingapp "collections-cloud/internal/billing/application"
	billing "collections-cloud/internal/billing/domain"
)

// Handler handles the operator billing console under /api/v1/billing.
// Route policy restricts the whole prefix to the superadmin role.
type Handler struct {
	service     *billingapp.BillingService
	auditLogger audit.Logger
}

// NewHandler constructs a handler.
func NewHandler(service *billingapp.BillingService, auditLogger audit.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("billing handler: nil service")
	}
	return &Handler{service: service, auditLogger: auditLogger}, nil
}

// ServeHTTP routes billing requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if path == "/api/v1/billing/subscriptions" {
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
	if strings.HasPrefix(path, "/api/v1/billing/subscriptions/") {
		rest := strings.TrimPrefix(path, "/api/v1/billing/subscriptions/")
		h.handleByTenant(w, r, rest)
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	result := make([]subscriptionResponse, 0, len(list))
	for _, sub := range list {
		result = append(result, toResponse(sub))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TenantID     string          `json:"tenant_id"`
		Plan         string          `json:"plan"`
		MonthlyPrice decimal.Decimal `json:"monthly_price"`
		Trial        bool            `json:"trial"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	sub, err := h.service.Create(r.Context(), billingapp.CreateInput{
		TenantID:     req.TenantID,
		Plan:         req.Plan,
		MonthlyPrice: req.MonthlyPrice,
		Trial:        req.Trial,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(toResponse(*sub))
	h.logAudit(r, sub.TenantID, "billing.create", map[string]any{"plan": string(sub.Plan)})
}

func (h *Handler) handleByTenant(w http.ResponseWriter, r *http.Request, rest string) {
	if rest == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	parts := strings.Split(rest, "/")
	tenantID := parts[0]
	if len(parts) == 1 && r.Method == http.MethodGet {
		sub, err := h.service.Get(r.Context(), tenantID)
		if err != nil {
			respondError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(toResponse(*sub))
		return
	}
	if len(parts) != 2 || r.Method != http.MethodPost {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	var sub *billing.Subscription
	var err error
	action := parts[1]
	switch action {
	case "suspend":
		sub, err = h.service.Suspend(r.Context(), tenantID)
	case "reactivate":
		sub, err = h.service.Reactivate(r.Context(), tenantID)
	case "cancel":
		sub, err = h.service.Cancel(r.Context(), tenantID)
	case "plan":
		var req struct {
			Plan string `json:"plan"`
		}
		if decodeErr := json.NewDecoder(r.Body).Decode(&req); decodeErr != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		sub, err = h.service.ChangePlan(r.Context(), tenantID, req.Plan)
	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toResponse(*sub))
	h.logAudit(r, tenantID, "billing."+action, map[string]any{"status": string(sub.Status), "plan": string(sub.Plan)})
}

type subscriptionResponse struct {
	ID           string          `json:"id"`
	TenantID     string          `json:"tenant_id"`
	Plan         string          `json:"plan"`
	Status       string          `json:"status"`
	MonthlyPrice decimal.Decimal `json:"monthly_price"`
	PeriodStart  string          `json:"period_start"`
	PeriodEnd    string          `json:"period_end"`
}

func toResponse(sub billing.Subscription) subscriptionResponse {
	return subscriptionResponse{
		ID:           sub.ID,
		TenantID:     sub.TenantID,
		Plan:         string(sub.Plan),
		Status:       string(sub.Status),
		MonthlyPrice: sub.MonthlyPrice,
		PeriodStart:  sub.PeriodStart.Format("2006-01-02"),
		PeriodEnd:    sub.PeriodEnd.Format("2006-01-02"),
	}
}

func (h *Handler) logAudit(r *http.Request, tenantID, action string, meta map[string]any) {
	if h.auditLogger == nil {
		return
	}
	payload, _ := json.Marshal(meta)
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		TenantID:     tenantID,
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: "subscription",
		ResourceID:   tenantID,
		Metadata:     payload,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

func respondError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, billing.ErrSubscriptionNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusBadRequest)
}
