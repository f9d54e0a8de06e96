package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"collections-cloud/internal/audit"
	"collections-cloud/internal/auth"
	collectorsapp "collections-cloud/internal/collectors/application"
	collectors "collections-cloud/internal/collectors/domain"
)

// Handler handles collector registry APIs under /api/v1/collectors.
type Handler struct {
	service     *collectorsapp.CollectorService
	auditLogger audit.Logger
}

// NewHandler constructs a handler.
func NewHandler(service *collectorsapp.CollectorService, auditLogger audit.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("collector handler: nil service")
	}
	return &Handler{service: service, auditLogger: auditLogger}, nil
}

// ServeHTTP routes collector requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if path == "/api/v1/collectors" {
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
	if strings.HasPrefix(path, "/api/v1/collectors/") {
		rest := strings.TrimPrefix(path, "/api/v1/collectors/")
		h.handleByID(w, r, rest)
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	list, err := h.service.List(r.Context(), activeOnly)
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toResponses(list))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
		Zone  string `json:"zone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	collector, err := h.service.Create(r.Context(), collectorsapp.CreateInput{
		Name:  req.Name,
		Phone: req.Phone,
		Zone:  req.Zone,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(toResponse(*collector))
	h.logAudit(r, collector.ID, "collector.create", map[string]any{"name": collector.Name})
}

func (h *Handler) handleByID(w http.ResponseWriter, r *http.Request, rest string) {
	if rest == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	parts := strings.Split(rest, "/")
	id := parts[0]
	if len(parts) == 1 && r.Method == http.MethodGet {
		collector, err := h.service.Get(r.Context(), id)
		if err != nil {
			respondError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(toResponse(*collector))
		return
	}
	if len(parts) == 2 && parts[1] == "active" && r.Method == http.MethodPost {
		var req struct {
			Active bool `json:"active"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		collector, err := h.service.SetActive(r.Context(), id, req.Active)
		if err != nil {
			respondError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(toResponse(*collector))
		h.logAudit(r, collector.ID, "collector.active", map[string]any{"active": req.Active})
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

type collectorResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Zone   string `json:"zone"`
	Active bool   `json:"active"`
}

func toResponse(collector collectors.Collector) collectorResponse {
	return collectorResponse{
		ID:     collector.ID,
		Name:   collector.Name,
		Phone:  collector.Phone,
		Zone:   collector.Zone,
		Active: collector.Active,
	}
}

func toResponses(list []collectors.Collector) []collectorResponse {
	result := make([]collectorResponse, 0, len(list))
	for _, collector := range list {
		result = append(result, toResponse(collector))
	}
	return result
}

func (h *Handler) logAudit(r *http.Request, collectorID, action string, meta map[string]any) {
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
		ResourceType: "collector",
		ResourceID:   collectorID,
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
	if errors.Is(err, collectors.ErrCollectorNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusBadRequest)
}
