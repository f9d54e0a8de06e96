package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"collections-cloud/internal/audit"
	"collections-cloud/internal/auth"
	"collections-cloud/internal/observability/metrics"
	reports "collections-cloud/internal/reports/application"
)

// Handler handles portfolio report APIs under /api/v1/reports.
type Handler struct {
	service     *reports.ReportService
	auditLogger audit.Logger
}

// NewHandler constructs a handler.
func NewHandler(service *reports.ReportService, auditLogger audit.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("report handler: nil service")
	}
	return &Handler{service: service, auditLogger: auditLogger}, nil
}

// ServeHTTP routes report requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/api/v1/reports/portfolio" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	h.handlePortfolio(w, r)
}

func (h *Handler) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	query := r.URL.Query()
	var asOf time.Time
	if raw := query.Get("as_of"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			http.Error(w, "invalid as_of", http.StatusBadRequest)
			return
		}
		asOf = parsed.UTC()
	}
	format := query.Get("format")
	if format == "" {
		format = "json"
	}

	report, err := h.service.BuildPortfolio(r.Context(), query.Get("collector_id"), asOf)
	if err != nil {
		metrics.ObserveReportExport(format, metrics.ResultError, time.Since(start))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	switch format {
	case "json":
		respondJSON(w, toPortfolioResponse(report))
	case "pdf":
		payload, err := BuildPortfolioPDF(report)
		if err != nil {
			metrics.ObserveReportExport(format, metrics.ResultError, time.Since(start))
			http.Error(w, "export failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="portfolio.pdf"`)
		_, _ = w.Write(payload)
	case "xlsx":
		payload, err := BuildPortfolioXLSX(report)
		if err != nil {
			metrics.ObserveReportExport(format, metrics.ResultError, time.Since(start))
			http.Error(w, "export failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="portfolio.xlsx"`)
		_, _ = w.Write(payload)
	case "html":
		payload, err := BuildPortfolioHTML(report)
		if err != nil {
			metrics.ObserveReportExport(format, metrics.ResultError, time.Since(start))
			http.Error(w, "export failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(payload)
	default:
		http.Error(w, "unsupported format", http.StatusBadRequest)
		return
	}
	metrics.ObserveReportExport(format, metrics.ResultSuccess, time.Since(start))
	h.logAudit(r, format)
}

type portfolioRowResponse struct {
	CreditID      string          `json:"credit_id"`
	ClientID      string          `json:"client_id"`
	CollectorID   string          `json:"collector_id,omitempty"`
	Status        string          `json:"status"`
	Frequency     string          `json:"frequency"`
	Balance       decimal.Decimal `json:"balance"`
	Expected      int             `json:"expected_installments"`
	Completed     int             `json:"completed_installments"`
	Pending       *int            `json:"pending_installments"`
	Overdue       bool            `json:"is_overdue"`
	OverdueAmount decimal.Decimal `json:"overdue_amount"`
}

type portfolioResponse struct {
	TenantID    string                 `json:"tenant_id"`
	CollectorID string                 `json:"collector_id,omitempty"`
	AsOf        string                 `json:"as_of"`
	Rows        []portfolioRowResponse `json:"rows"`
	Totals      struct {
		OpenCredits    int             `json:"open_credits"`
		OverdueCredits int             `json:"overdue_credits"`
		Balance        decimal.Decimal `json:"balance"`
		OverdueAmount  decimal.Decimal `json:"overdue_amount"`
	} `json:"totals"`
}

func toPortfolioResponse(report *reports.PortfolioReport) portfolioResponse {
	response := portfolioResponse{
		TenantID:    report.TenantID,
		CollectorID: report.CollectorID,
		AsOf:        report.AsOf.Format("2006-01-02"),
		Rows:        make([]portfolioRowResponse, 0, len(report.Rows)),
	}
	response.Totals.OpenCredits = report.Totals.OpenCredits
	response.Totals.OverdueCredits = report.Totals.OverdueCredits
	response.Totals.Balance = report.Totals.Balance
	response.Totals.OverdueAmount = report.Totals.OverdueAmount
	for _, row := range report.Rows {
		response.Rows = append(response.Rows, portfolioRowResponse{
			CreditID:      row.CreditID,
			ClientID:      row.ClientID,
			CollectorID:   row.CollectorID,
			Status:        string(row.Status),
			Frequency:     string(row.Frequency),
			Balance:       row.Balance,
			Expected:      row.Expected,
			Completed:     row.Completed,
			Pending:       row.Pending,
			Overdue:       row.Overdue,
			OverdueAmount: row.OverdueAmount,
		})
	}
	return response
}

func respondJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

func (h *Handler) logAudit(r *http.Request, format string) {
	if h.auditLogger == nil {
		return
	}
	tenantID := auth.TenantIDFromContext(r.Context())
	if tenantID == "" {
		return
	}
	payload, _ := json.Marshal(map[string]any{"format": format})
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		TenantID:     tenantID,
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       "report.portfolio",
		ResourceType: "report",
		Metadata:     payload,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}
