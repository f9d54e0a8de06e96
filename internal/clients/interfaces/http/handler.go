package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"collections-cloud/internal/audit"
	"collections-cloud/internal/auth"
	clientsapp "collections-cloud/internal/clients/application"
	clients "collections-cloud/internal/clients/domain"
)

// Handler handles borrower registry APIs under /api/v1/clients.
type Handler struct {
	service     *clientsapp.ClientService
	auditLogger audit.Logger
}

// NewHandler constructs a handler.
func NewHandler(service *clientsapp.ClientService, auditLogger audit.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("client handler: nil service")
	}
	return &Handler{service: service, auditLogger: auditLogger}, nil
}

// ServeHTTP routes client requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if path == "/api/v1/clients" {
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
	if strings.HasPrefix(path, "/api/v1/clients/") {
		rest := strings.TrimPrefix(path, "/api/v1/clients/")
		h.handleByID(w, r, rest)
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	collectorID := r.URL.Query().Get("collector_id")
	list, err := h.service.List(r.Context(), collectorID)
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toResponses(list))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Document    string `json:"document"`
		Phone       string `json:"phone"`
		Address     string `json:"address"`
		CollectorID string `json:"collector_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	client, err := h.service.Create(r.Context(), clientsapp.CreateInput{
		Name:        req.Name,
		Document:    req.Document,
		Phone:       req.Phone,
		Address:     req.Address,
		CollectorID: req.CollectorID,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(toResponse(*client))
	h.logAudit(r, client.ID, "client.create", map[string]any{"name": client.Name})
}

func (h *Handler) handleByID(w http.ResponseWriter, r *http.Request, rest string) {
	if rest == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	parts := strings.Split(rest, "/")
	id := parts[0]
	if len(parts) == 1 && r.Method == http.MethodGet {
		client, err := h.service.Get(r.Context(), id)
		if err != nil {
			respondError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(toResponse(*client))
		return
	}
	if len(parts) == 2 && parts[1] == "assign" && r.Method == http.MethodPost {
		var req struct {
			CollectorID string `json:"collector_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		client, err := h.service.AssignCollector(r.Context(), id, req.CollectorID)
		if err != nil {
			respondError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(toResponse(*client))
		h.logAudit(r, client.ID, "client.assign", map[string]any{"collector_id": req.CollectorID})
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

type clientResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Document    string `json:"document"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	CollectorID string `json:"collector_id,omitempty"`
	Status      string `json:"status"`
}

func toResponse(client clients.Client) clientResponse {
	return clientResponse{
		ID:          client.ID,
		Name:        client.Name,
		Document:    client.Document,
		Phone:       client.Phone,
		Address:     client.Address,
		CollectorID: client.CollectorID,
		Status:      client.Status,
	}
}

func toResponses(list []clients.Client) []clientResponse {
	result := make([]clientResponse, 0, len(list))
	for _, client := range list {
		result = append(result, toResponse(client))
	}
	return result
}

func (h *Handler) logAudit(r *http.Request, clientID, action string, meta map[string]any) {
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
		ResourceType: "client",
		ResourceID:   clientID,
		ClientID:     clientID,
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
	if errors.Is(err, clients.ErrClientNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusBadRequest)
}
